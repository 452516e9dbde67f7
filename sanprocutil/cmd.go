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

// Package sanprocutil glues the SanProc process models to a command
// line interface: configuration binding, simulation drivers, and
// sensitivity analysis drivers.
package sanprocutil

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/sanmodel/sanproc"
	"github.com/sanmodel/sanproc/kinetics/simpleadm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to SanProc.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path to the desired CSV output location.
              It can include environment variables.`,
			defaultVal: "sanproc_output.csv",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), saCmd.PersistentFlags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the desired logfile location. It can include
              environment variables. If LogFile is left blank, the logfile will be
              saved in the same location as the OutputFile.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Sim.Days",
			usage: `
              Sim.Days is the simulated duration in days.`,
			defaultVal: 100.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), saCmd.PersistentFlags()},
		},
		{
			name: "Sim.StepSize",
			usage: `
              Sim.StepSize is the integration step size in days.`,
			defaultVal: 0.01,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), saCmd.PersistentFlags()},
		},
		{
			name: "Sim.WriteInterval",
			usage: `
              Sim.WriteInterval is the interval in days between rows of the
              output time series. It is rounded to a whole number of steps.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Sim.Solver",
			usage: `
              Sim.Solver selects the time integrator. Valid options are
              "rk4" and "euler".`,
			defaultVal: "rk4",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Reactor.LiquidVolume",
			usage: `
              Reactor.LiquidVolume is the liquid-phase volume of the
              anaerobic reactor [m³].`,
			defaultVal: 3400.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), saCmd.PersistentFlags()},
		},
		{
			name: "Reactor.GasVolume",
			usage: `
              Reactor.GasVolume is the headspace volume of the anaerobic
              reactor [m³].`,
			defaultVal: 300.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), saCmd.PersistentFlags()},
		},
		{
			name: "Reactor.Temperature",
			usage: `
              Reactor.Temperature is the reactor operating temperature [K].`,
			defaultVal: 308.15,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), saCmd.PersistentFlags()},
		},
		{
			name: "Reactor.PressureMode",
			usage: `
              Reactor.PressureMode selects the headspace pressure closure.
              Valid options are "variable", which computes the headspace
              pressure from the accumulated gas and vents it through a pipe
              resistance, and "fixed", which holds the headspace at
              Reactor.HeadspacePressure.`,
			defaultVal: "variable",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), saCmd.PersistentFlags()},
		},
		{
			name: "Reactor.HeadspacePressure",
			usage: `
              Reactor.HeadspacePressure is the headspace pressure [bar]
              held when Reactor.PressureMode is "fixed".`,
			defaultVal: 1.013,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), saCmd.PersistentFlags()},
		},
		{
			name: "Reactor.ExternalPressure",
			usage: `
              Reactor.ExternalPressure is the pressure [bar] downstream of
              the biogas extraction pipe when Reactor.PressureMode is
              "variable".`,
			defaultVal: 1.013,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), saCmd.PersistentFlags()},
		},
		{
			name: "Reactor.PipeResistance",
			usage: `
              Reactor.PipeResistance is the biogas extraction pipe
              resistance coefficient [m³/d/bar] when Reactor.PressureMode
              is "variable".`,
			defaultVal: 5.0e4,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), saCmd.PersistentFlags()},
		},
		{
			name: "Reactor.RetainIDs",
			usage: `
              Reactor.RetainIDs lists the component IDs retained in the
              reactor (e.g. by a membrane or settling).`,
			defaultVal: []string{"X_su", "X_ac", "X_h2"},
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), saCmd.PersistentFlags()},
		},
		{
			name: "Reactor.FractionRetain",
			usage: `
              Reactor.FractionRetain is the retained fraction of the
              components listed in Reactor.RetainIDs.`,
			defaultVal: 0.95,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), saCmd.PersistentFlags()},
		},
		{
			name: "Influent.Flow",
			usage: `
              Influent.Flow is the influent flow rate [m³/d].`,
			defaultVal: 170.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), saCmd.PersistentFlags()},
		},
		{
			name: "Influent.Concentrations",
			usage: `
              Influent.Concentrations maps component IDs to influent
              concentrations [mg/L]. Components not listed enter at zero.`,
			defaultVal: map[string]string{
				"S_su": "5000",
				"S_ac": "1000",
				"X_su": "500",
				"X_ac": "300",
				"X_h2": "150",
			},
			flagsets: []*pflag.FlagSet{runCmd.Flags(), saCmd.PersistentFlags()},
		},
		{
			name: "SA.Metric",
			usage: `
              SA.Metric is the model output analyzed by the sensitivity
              commands. Valid options are "methane" (headspace methane
              concentration [M] at the end of the simulation), "cod"
              (effluent soluble COD [mg/L]), and "gasflow" (biogas outflow
              [m³/d]).`,
			defaultVal: "methane",
			flagsets:   []*pflag.FlagSet{saCmd.PersistentFlags()},
		},
		{
			name: "SA.Parameters",
			usage: `
              SA.Parameters maps kinetic parameter names to "lower,upper"
              bound pairs. Valid parameter names are the field names of the
              simpleadm kinetic parameter set (KMSu, KSSu, KMAc, KSAc,
              KMH2, KSH2, YSu, YAc, YH2, FAcSu, KDec, KLa, and T).`,
			defaultVal: map[string]string{
				"KMAc": "4,16",
				"KDec": "0.005,0.08",
			},
			flagsets: []*pflag.FlagSet{saCmd.PersistentFlags()},
		},
		{
			name: "SA.Bootstrap",
			usage: `
              SA.Bootstrap is the number of bootstrap resamples used for
              confidence intervals.`,
			defaultVal: 100,
			flagsets:   []*pflag.FlagSet{saCmd.PersistentFlags()},
		},
		{
			name: "SA.Seed",
			usage: `
              SA.Seed seeds the random number generator used for
              sensitivity sampling.`,
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{saCmd.PersistentFlags()},
		},
		{
			name: "SA.Trajectories",
			usage: `
              SA.Trajectories is the number of Morris trajectories.`,
			defaultVal: 20,
			flagsets:   []*pflag.FlagSet{morrisCmd.Flags()},
		},
		{
			name: "SA.Levels",
			usage: `
              SA.Levels is the (even) number of grid levels per parameter
              for Morris sampling.`,
			defaultVal: 4,
			flagsets:   []*pflag.FlagSet{morrisCmd.Flags()},
		},
		{
			name: "SA.Samples",
			usage: `
              SA.Samples is the number of Saltelli base samples for Sobol
              analysis; the model is evaluated SA.Samples*(k+2) times for
              k parameters.`,
			defaultVal: 256,
			flagsets:   []*pflag.FlagSet{sobolCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("SANPROC")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := b.String()
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(saCmd)
	saCmd.AddCommand(morrisCmd)
	saCmd.AddCommand(sobolCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("sanproc: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "sanproc",
	Short: "A sanitation unit-process simulation framework.",
	Long: `SanProc simulates sanitation and resource recovery unit processes,
centered on a dynamic anaerobic digester model with a biogas headspace.
Use the subcommands specified below to access the model functionality.

Refer to the subcommand documentation for configuration options and default
settings. Configuration can be changed by using a configuration file (and
providing the path to the file using the --config flag), by using
command-line arguments, or by setting environment variables in the format
'SANPROC_var' where 'var' is the name of the variable to be set. Refer to
https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of SanProc.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("SanProc v%s\n", sanproc.Version)
	},
	DisableAutoGenTag: true,
}

// runCmd is a command that runs a dynamic digester simulation.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a dynamic digester simulation.",
	Long: `run integrates the configured anaerobic reactor over time and
writes a CSV time series of the reactor state (liquid concentrations
[kg/m³], headspace gas concentrations [M], and flow [m³/d]).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rcfg, err := ReactorConfig(Cfg)
		if err != nil {
			return err
		}
		conc, err := influentConcentrations(Cfg)
		if err != nil {
			return err
		}
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		kp := simpleadm.DefaultParams()
		kp.T = rcfg.T
		return Run(
			cmd,
			checkLogFile(Cfg.GetString("LogFile"), outputFile),
			outputFile,
			Cfg.GetString("Sim.Solver"),
			Cfg.GetFloat64("Sim.Days"),
			Cfg.GetFloat64("Sim.StepSize"),
			Cfg.GetFloat64("Sim.WriteInterval"),
			rcfg, kp,
			Cfg.GetFloat64("Influent.Flow"),
			conc)
	},
	DisableAutoGenTag: true,
}

// saCmd groups the sensitivity analysis commands.
var saCmd = &cobra.Command{
	Use:   "sa",
	Short: "Run a sensitivity analysis.",
	Long: `sa analyzes the sensitivity of a digester simulation metric to
the kinetic parameters listed in SA.Parameters. Use the subcommands
specified below to choose an analysis method.`,
	DisableAutoGenTag: true,
}

var morrisCmd = &cobra.Command{
	Use:   "morris",
	Short: "Morris elementary-effects screening",
	Long: `morris samples Morris trajectories over the parameter bounds,
evaluates the simulation metric at each point, and writes the
elementary-effect statistics (μ, μ*, σ, and the bootstrapped μ* 95%
confidence interval) for each parameter as CSV.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sa, err := saSetup(Cfg)
		if err != nil {
			return err
		}
		return RunMorris(cmd, sa,
			Cfg.GetInt("SA.Trajectories"),
			Cfg.GetInt("SA.Levels"))
	},
	DisableAutoGenTag: true,
}

var sobolCmd = &cobra.Command{
	Use:   "sobol",
	Short: "Sobol variance decomposition",
	Long: `sobol evaluates the simulation metric over a Saltelli sample of
the parameter bounds and writes the first-order and total-order Sobol
indices with bootstrapped 95% confidence intervals for each parameter
as CSV.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sa, err := saSetup(Cfg)
		if err != nil {
			return err
		}
		return RunSobol(cmd, sa, Cfg.GetInt("SA.Samples"))
	},
	DisableAutoGenTag: true,
}
