/*
Copyright © 2021 the SanProc authors.
This file is part of SanProc.

SanProc is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

SanProc is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with SanProc.  If not, see <http://www.gnu.org/licenses/>.
*/

package sanprocutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sanmodel/sanproc"
	"github.com/sanmodel/sanproc/kinetics/simpleadm"
	"github.com/sanmodel/sanproc/stats"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// checkOutputFile extracts and expands the output file path, checking
// that its directory exists.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`sanprocutil: you need to specify an output file configuration variable (for example: OutputFile="output.csv")`)
	}
	f = os.ExpandEnv(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("sanprocutil: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkLogFile returns the log file path, defaulting to the output
// file path with a ".log" extension.
func checkLogFile(logFile, outputFile string) string {
	if logFile == "" {
		return strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return os.ExpandEnv(logFile)
}

// ReactorConfig assembles a reactor configuration from the
// configuration variables in cfg.
func ReactorConfig(cfg *viper.Viper) (sanproc.CSTRConfig, error) {
	mode, err := sanproc.ParsePressureMode(cfg.GetString("Reactor.PressureMode"))
	if err != nil {
		return sanproc.CSTRConfig{}, err
	}
	return sanproc.CSTRConfig{
		VLiq:           cfg.GetFloat64("Reactor.LiquidVolume"),
		VGas:           cfg.GetFloat64("Reactor.GasVolume"),
		T:              cfg.GetFloat64("Reactor.Temperature"),
		HeadspaceP:     cfg.GetFloat64("Reactor.HeadspacePressure"),
		ExternalP:      cfg.GetFloat64("Reactor.ExternalPressure"),
		PipeResistance: cfg.GetFloat64("Reactor.PipeResistance"),
		PressureMode:   mode,
		RetainIDs:      cfg.GetStringSlice("Reactor.RetainIDs"),
		FractionRetain: cfg.GetFloat64("Reactor.FractionRetain"),
	}, nil
}

// GetStringMapString returns a map[string]string from a viper
// configuration, accounting for the fact that it might be a json
// object if it was set from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch i.(type) {
	case map[string]string:
		return i.(map[string]string), nil
	case map[string]interface{}:
		return cast.ToStringMapString(i), nil
	case string:
		b := bytes.NewBuffer(([]byte)(i.(string)))
		d := json.NewDecoder(b)
		o := make(map[string]string)
		if err := d.Decode(&o); err != nil {
			return nil, fmt.Errorf("sanprocutil: parsing %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("sanprocutil: invalid type for %s: %#v", varName, i)
	}
}

// influentConcentrations extracts the influent composition [mg/L] from
// the Influent.Concentrations configuration variable.
func influentConcentrations(cfg *viper.Viper) (map[string]float64, error) {
	m, err := GetStringMapString("Influent.Concentrations", cfg)
	if err != nil {
		return nil, err
	}
	o := make(map[string]float64, len(m))
	for id, s := range m {
		v, err := cast.ToFloat64E(s)
		if err != nil {
			return nil, fmt.Errorf("sanprocutil: influent concentration of %s: %v", id, err)
		}
		if v < 0 {
			return nil, fmt.Errorf("sanprocutil: influent concentration of %s must not be negative; have %g", id, v)
		}
		o[id] = v
	}
	return o, nil
}

// saProblem extracts the sensitivity analysis parameter bounds from
// the SA.Parameters configuration variable. Parameter names are
// returned in sorted order so runs are reproducible.
func saProblem(cfg *viper.Viper) (stats.Problem, error) {
	m, err := GetStringMapString("SA.Parameters", cfg)
	if err != nil {
		return stats.Problem{}, err
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	p := stats.Problem{Names: names, Bounds: make([][2]float64, len(names))}
	for i, name := range names {
		parts := strings.Split(m[name], ",")
		if len(parts) != 2 {
			return stats.Problem{}, fmt.Errorf("sanprocutil: bounds of parameter %s must be \"lower,upper\"; have %q", name, m[name])
		}
		for j, part := range parts {
			v, err := cast.ToFloat64E(strings.TrimSpace(part))
			if err != nil {
				return stats.Problem{}, fmt.Errorf("sanprocutil: bounds of parameter %s: %v", name, err)
			}
			p.Bounds[i][j] = v
		}
	}
	if err := p.Check(); err != nil {
		return stats.Problem{}, err
	}
	return p, nil
}

// applyParams overlays the sampled parameter values x, named by names,
// onto the base kinetic parameter set.
func applyParams(base simpleadm.Params, names []string, x []float64) (simpleadm.Params, error) {
	p := base
	for i, name := range names {
		v := x[i]
		switch name {
		case "KMSu":
			p.KMSu = v
		case "KSSu":
			p.KSSu = v
		case "KMAc":
			p.KMAc = v
		case "KSAc":
			p.KSAc = v
		case "KMH2":
			p.KMH2 = v
		case "KSH2":
			p.KSH2 = v
		case "YSu":
			p.YSu = v
		case "YAc":
			p.YAc = v
		case "YH2":
			p.YH2 = v
		case "FAcSu":
			p.FAcSu = v
		case "KDec":
			p.KDec = v
		case "KLa":
			p.KLa = v
		case "T":
			p.T = v
		default:
			return p, fmt.Errorf("sanprocutil: unknown kinetic parameter %q; valid options are KMSu, KSSu, KMAc, KSAc, KMH2, KSH2, YSu, YAc, YH2, FAcSu, KDec, KLa, and T", name)
		}
	}
	return p, nil
}

// saConfig bundles everything a sensitivity analysis run needs.
type saConfig struct {
	outputFile string
	metric     string
	problem    stats.Problem
	base       simpleadm.Params
	rcfg       sanproc.CSTRConfig
	flow       float64
	conc       map[string]float64
	days       float64
	stepSize   float64
	bootstrap  int
	seed       uint64
}

// saSetup assembles a sensitivity analysis configuration from the
// configuration variables in cfg.
func saSetup(cfg *viper.Viper) (*saConfig, error) {
	rcfg, err := ReactorConfig(cfg)
	if err != nil {
		return nil, err
	}
	conc, err := influentConcentrations(cfg)
	if err != nil {
		return nil, err
	}
	problem, err := saProblem(cfg)
	if err != nil {
		return nil, err
	}
	outputFile, err := checkOutputFile(cfg.GetString("OutputFile"))
	if err != nil {
		return nil, err
	}
	metric := cfg.GetString("SA.Metric")
	if err := checkMetric(metric); err != nil {
		return nil, err
	}
	// A sampled parameter overrides any fixed value; verify the names
	// before the first simulation rather than inside it.
	base := simpleadm.DefaultParams()
	base.T = rcfg.T
	if _, err := applyParams(base, problem.Names, make([]float64, problem.Len())); err != nil {
		return nil, err
	}
	return &saConfig{
		outputFile: outputFile,
		metric:     metric,
		problem:    problem,
		base:       base,
		rcfg:       rcfg,
		flow:       cfg.GetFloat64("Influent.Flow"),
		conc:       conc,
		days:       cfg.GetFloat64("Sim.Days"),
		stepSize:   cfg.GetFloat64("Sim.StepSize"),
		bootstrap:  cfg.GetInt("SA.Bootstrap"),
		seed:       uint64(cfg.GetInt("SA.Seed")),
	}, nil
}
