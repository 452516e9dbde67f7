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
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/sanmodel/sanproc"
	"github.com/sanmodel/sanproc/integrate"
	"github.com/sanmodel/sanproc/stats"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// checkMetric validates a sensitivity analysis metric name.
func checkMetric(metric string) error {
	switch metric {
	case "methane", "cod", "gasflow":
		return nil
	}
	return fmt.Errorf("sanprocutil: invalid metric %q; valid options are methane, cod, and gasflow", metric)
}

// evalMetric extracts the named metric from a reactor at the end of a
// simulation.
func evalMetric(metric string, r *sanproc.AnaerobicCSTR) (float64, error) {
	r.UpdateOutputs()
	sm := r.StateMap()
	switch metric {
	case "methane":
		return sm["S_ch4_gas"], nil
	case "cod":
		// Soluble COD in the effluent, converted back to mg/L.
		var cod float64
		for _, id := range []string{"S_su", "S_ac", "S_h2", "S_ch4"} {
			cod += sm[id] * 1000
		}
		return cod, nil
	case "gasflow":
		return r.GasFlow(), nil
	}
	return 0, checkMetric(metric)
}

// simulate runs one digester simulation at the sampled parameter point
// x and returns the configured metric.
func (sa *saConfig) simulate(x []float64) (float64, error) {
	kp, err := applyParams(sa.base, sa.problem.Names, x)
	if err != nil {
		return 0, err
	}
	r, err := buildReactor(sa.rcfg, kp, sa.flow, sa.conc)
	if err != nil {
		return 0, err
	}
	sim := &reactorSim{
		r:        r,
		stepSize: sa.stepSize,
		steps:    uint64(math.Ceil(sa.days / sa.stepSize)),
	}
	s, err := integrate.NewRK4(0, sa.stepSize, sim)
	if err != nil {
		return 0, err
	}
	if _, _, err := s.Solve(); err != nil {
		return 0, err
	}
	if sim.err != nil {
		return 0, sim.err
	}
	return evalMetric(sa.metric, r)
}

// evaluate runs one simulation per row of the sample matrix x, logging
// progress as it goes.
func (sa *saConfig) evaluate(log *logrus.Logger, x *mat.Dense) ([]float64, error) {
	n, _ := x.Dims()
	logEvery := n / 10
	if logEvery < 1 {
		logEvery = 1
	}
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		v, err := sa.simulate(x.RawRowView(i))
		if err != nil {
			return nil, err
		}
		y[i] = v
		if (i+1)%logEvery == 0 {
			log.WithFields(logrus.Fields{
				"done":  i + 1,
				"total": n,
			}).Info("evaluating samples")
		}
	}
	return y, nil
}

// writeResultCSV writes one row per parameter, with the parameter name
// followed by one value per column.
func writeResultCSV(path string, header []string, names []string, cols ...[]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("sanprocutil: problem creating output file: %v", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for i, name := range names {
		row := make([]string, len(cols)+1)
		row[0] = name
		for j, col := range cols {
			row[j+1] = strconv.FormatFloat(col[i], 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// RunMorris runs a Morris elementary-effects screening of the
// configured simulation metric and writes per-parameter statistics to
// the configured output file as CSV.
func RunMorris(CobraCommand *cobra.Command, sa *saConfig, trajectories, levels int) error {
	startTime := time.Now()
	log := logrus.New()
	log.SetOutput(CobraCommand.OutOrStdout())

	rng := rand.New(rand.NewSource(sa.seed))
	x, err := stats.SampleMorris(sa.problem, trajectories, levels, rng)
	if err != nil {
		return err
	}
	n, _ := x.Dims()
	log.WithFields(logrus.Fields{
		"metric":       sa.metric,
		"trajectories": trajectories,
		"levels":       levels,
		"simulations":  n,
	}).Info("starting Morris screening")

	y, err := sa.evaluate(log, x)
	if err != nil {
		return err
	}
	res, err := stats.AnalyzeMorris(sa.problem, x, y, sa.bootstrap, rng)
	if err != nil {
		return err
	}
	err = writeResultCSV(sa.outputFile,
		[]string{"parameter", "mu", "mu_star", "sigma", "mu_star_conf"},
		res.Names, res.Mu, res.MuStar, res.Sigma, res.MuStarConf)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"output":  sa.outputFile,
		"elapsed": time.Since(startTime),
	}).Info("Morris screening finished")
	return nil
}

// RunSobol runs a Sobol variance decomposition of the configured
// simulation metric over a Saltelli sample of n base points and writes
// the per-parameter indices to the configured output file as CSV.
func RunSobol(CobraCommand *cobra.Command, sa *saConfig, n int) error {
	startTime := time.Now()
	log := logrus.New()
	log.SetOutput(CobraCommand.OutOrStdout())

	rng := rand.New(rand.NewSource(sa.seed))
	x, err := stats.SampleSaltelli(sa.problem, n, rng)
	if err != nil {
		return err
	}
	rows, _ := x.Dims()
	log.WithFields(logrus.Fields{
		"metric":      sa.metric,
		"samples":     n,
		"simulations": rows,
	}).Info("starting Sobol analysis")

	y, err := sa.evaluate(log, x)
	if err != nil {
		return err
	}
	res, err := stats.AnalyzeSobol(sa.problem, y, n, sa.bootstrap, rng)
	if err != nil {
		return err
	}
	err = writeResultCSV(sa.outputFile,
		[]string{"parameter", "s1", "s1_conf", "st", "st_conf"},
		res.Names, res.S1, res.S1Conf, res.ST, res.STConf)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"output":  sa.outputFile,
		"elapsed": time.Since(startTime),
	}).Info("Sobol analysis finished")
	return nil
}
