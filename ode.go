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

package sanproc

import "gonum.org/v1/gonum/mat"

// DerivFunc evaluates the time derivative of the reactor state at time
// t [d]. feed is the influent state [concentrations mg/L..., flow
// m³/d] and dfeed its time derivative; y is the integrator-owned
// current state. The result is written into the reactor's shared
// derivative buffer (retrievable via DState) rather than returned, so
// the integrator hot path performs no per-call allocation.
type DerivFunc func(t float64, feed, y, dfeed []float64)

// compileODE builds the derivative function for the current binding.
// Called once per Bind; the returned closure captures the model,
// geometry, and pressure closure strategy.
func (r *AnaerobicCSTR) compileODE() DerivFunc {
	n := r.cmps.Len()
	fRetain := r.fRetain
	VLiq := r.VLiq
	dstate := func() []float64 { return r.dstate }

	if r.model == nil {
		// Pure hydraulic flow-through: advective balance with no
		// reaction contribution.
		return func(t float64, feed, y, dfeed []float64) {
			d := dstate()
			Q := y[len(y)-1]
			QIn := feed[len(feed)-1]
			for i := 0; i < n; i++ {
				sIn := feed[i] / mgLPerKgM3
				d[i] = (QIn*sIn - Q*y[i]*(1-fRetain[i])) / VLiq
			}
			d[len(d)-1] = dfeed[len(dfeed)-1]
			r.updateDState()
		}
	}

	b := r.bound
	model := r.model
	nGas := b.nGas
	VGas := r.VGas
	hasExo := len(r.exoVars) > 0
	exoVars := r.exoVars

	var fQGas gasFlowFunc
	if r.mode == FixedHeadspacePressure {
		fQGas = r.fixedGasFlow()
	} else {
		fQGas = r.variableGasFlow()
	}

	// Reused buffers; the derivative function is not re-entrant.
	sIn := make([]float64, n)
	gasRhos := make([]float64, nGas)
	modelState := make([]float64, n+nGas+1+len(exoVars))
	contrib := mat.NewVecDense(n, nil)

	return func(t float64, feed, y, dfeed []float64) {
		d := dstate()
		sLiq := y[:n]
		sGas := y[n : n+nGas]
		Q := y[len(y)-1]
		QIn := feed[len(feed)-1]
		for i := 0; i < n; i++ {
			sIn[i] = feed[i] / mgLPerKgM3 // mg/L to kg/m³
		}

		ms := y
		if hasExo {
			copy(modelState, y)
			for i, v := range exoVars {
				modelState[len(y)+i] = v.Eval(t)
			}
			ms = modelState
		}

		// Parameters must be refreshed before stoichiometry and rates.
		model.ParamsEval(ms)
		stoichio := model.StoichioEval()
		rhos := model.RateEval(ms)

		contrib.MulVec(stoichio.T(), mat.NewVecDense(len(rhos), rhos))
		for i := 0; i < n; i++ {
			d[i] = (QIn*sIn[i]-Q*sLiq[i]*(1-fRetain[i]))/VLiq + contrib.AtVec(i)
		}

		for i, ri := range b.gasRateIdx {
			gasRhos[i] = rhos[ri]
		}
		qGas := fQGas(gasRhos, sGas)
		for i := 0; i < nGas; i++ {
			d[n+i] = -qGas*sGas[i]/VGas + gasRhos[i]*VLiq/VGas*b.massToMol[i]
		}

		// Flow is algebraic: it mirrors the influent flow signal.
		d[len(d)-1] = dfeed[len(dfeed)-1]
		r.updateDState()
	}
}

// Eval evaluates the compiled derivative function using the influent
// stream's current state as the feed, writing into the derivative
// buffer. It is a convenience for integrators that treat the influent
// as constant over a step.
func (r *AnaerobicCSTR) Eval(t float64, y []float64) []float64 {
	r.deriv(t, r.In.FeedState(), y, r.In.FeedDState())
	return r.dstate
}
