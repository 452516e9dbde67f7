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
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/sanmodel/sanproc"
	"github.com/sanmodel/sanproc/integrate"
	"github.com/sanmodel/sanproc/kinetics/simpleadm"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// buildReactor creates a reactor with the given configuration, bound
// to a simpleadm mechanism with the given kinetic parameters and fed
// by an influent with the given flow [m³/d] and composition [mg/L].
func buildReactor(rcfg sanproc.CSTRConfig, kp simpleadm.Params, influentFlow float64, influentConc map[string]float64) (*sanproc.AnaerobicCSTR, error) {
	cmps, err := simpleadm.NewComponents()
	if err != nil {
		return nil, err
	}
	mech, err := simpleadm.NewMechanism(kp)
	if err != nil {
		return nil, err
	}
	r, err := sanproc.NewAnaerobicCSTR(cmps, rcfg)
	if err != nil {
		return nil, err
	}
	r.In.Flow = influentFlow
	for id, c := range influentConc {
		if err := r.In.SetConc(id, c); err != nil {
			return nil, err
		}
	}
	if err := r.Bind(mech); err != nil {
		return nil, err
	}
	if err := r.InitState(); err != nil {
		return nil, err
	}
	return r, nil
}

// reactorSim adapts a reactor to the integrate.Integrable contract:
// it runs for a fixed number of steps, stores each accepted state back
// on the reactor, and optionally writes every writeEvery-th state as a
// CSV row.
type reactorSim struct {
	r          *sanproc.AnaerobicCSTR
	stepSize   float64
	steps      uint64
	writeEvery uint64
	w          *csv.Writer
	err        error
}

func (s *reactorSim) GetState() []float64 { return s.r.State() }

func (s *reactorSim) SetState(i uint64, y []float64) {
	if s.err != nil {
		return
	}
	if err := s.r.SetState(y); err != nil {
		s.err = err
		return
	}
	// Step i completes at time (i+1)*h.
	if s.w != nil && (i+1)%s.writeEvery == 0 {
		s.writeRow(float64(i+1)*s.stepSize, y)
	}
}

func (s *reactorSim) Stop(i uint64) bool { return s.err != nil || i >= s.steps }

func (s *reactorSim) Func(t float64, y []float64) []float64 { return s.r.Eval(t, y) }

func (s *reactorSim) writeRow(t float64, y []float64) {
	row := make([]string, len(y)+1)
	row[0] = strconv.FormatFloat(t, 'g', -1, 64)
	for i, v := range y {
		row[i+1] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	if err := s.w.Write(row); err != nil {
		s.err = err
	}
}

// newSolver returns the Solve method of the named integrator over sim.
func newSolver(solver string, stepSize float64, sim *reactorSim) (func() (uint64, float64, error), error) {
	switch solver {
	case "rk4":
		s, err := integrate.NewRK4(0, stepSize, sim)
		if err != nil {
			return nil, err
		}
		return s.Solve, nil
	case "euler":
		s, err := integrate.NewEuler(0, stepSize, sim)
		if err != nil {
			return nil, err
		}
		return s.Solve, nil
	}
	return nil, fmt.Errorf("sanprocutil: invalid solver %q; valid options are rk4 and euler", solver)
}

// Run integrates a digester simulation over time and writes the state
// time series to outputFile as CSV.
//
// CobraCommand is the cobra.Command instance where Run is called from;
// log output is written to its output stream and to LogFile.
//
// Solver selects the time integrator; valid options are "rk4" and
// "euler". Days is the simulated duration, StepSize the integration
// step, and WriteInterval the output interval, all in days.
//
// The reactor is configured by rcfg, bound to a simpleadm mechanism
// with kinetic parameters kp, and fed by an influent with flow
// InfluentFlow [m³/d] and composition InfluentConc [mg/L].
func Run(CobraCommand *cobra.Command, LogFile, OutputFile, Solver string,
	Days, StepSize, WriteInterval float64,
	rcfg sanproc.CSTRConfig, kp simpleadm.Params,
	InfluentFlow float64, InfluentConc map[string]float64) error {

	if Days <= 0 {
		return fmt.Errorf("sanprocutil: simulation duration must be positive, not %g days", Days)
	}
	if WriteInterval <= 0 {
		return fmt.Errorf("sanprocutil: write interval must be positive, not %g days", WriteInterval)
	}

	startTime := time.Now()

	logfile, err := os.Create(LogFile)
	if err != nil {
		return fmt.Errorf("sanprocutil: problem creating log file: %v", err)
	}
	defer logfile.Close()
	log := logrus.New()
	log.SetOutput(io.MultiWriter(CobraCommand.OutOrStdout(), logfile))

	reactor, err := buildReactor(rcfg, kp, InfluentFlow, InfluentConc)
	if err != nil {
		return err
	}

	f, err := os.Create(OutputFile)
	if err != nil {
		return fmt.Errorf("sanprocutil: problem creating output file: %v", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(append([]string{"t"}, reactor.StateKeys()...)); err != nil {
		return err
	}

	steps := uint64(math.Ceil(Days / StepSize))
	writeEvery := uint64(math.Round(WriteInterval / StepSize))
	if writeEvery < 1 {
		writeEvery = 1
	}
	sim := &reactorSim{
		r:          reactor,
		stepSize:   StepSize,
		steps:      steps,
		writeEvery: writeEvery,
		w:          w,
	}
	sim.writeRow(0, reactor.State())

	log.WithFields(logrus.Fields{
		"solver":   Solver,
		"days":     Days,
		"stepSize": StepSize,
		"steps":    steps,
	}).Info("starting simulation")

	solve, err := newSolver(Solver, StepSize, sim)
	if err != nil {
		return err
	}
	n, tEnd, err := solve()
	if err != nil {
		return err
	}
	if sim.err != nil {
		return sim.err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	reactor.UpdateOutputs()
	log.WithFields(logrus.Fields{
		"steps":             n,
		"t":                 tEnd,
		"gasFlow":           reactor.GasFlow(),
		"headspacePressure": reactor.HeadspaceP(),
		"effluentFlow":      reactor.LiquidOut.Flow,
		"elapsed":           time.Since(startTime),
	}).Info("simulation finished")

	return nil
}
