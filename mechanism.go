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

// Model is an interface for biochemical kinetic models (typically
// ADM1-like) that drive the dynamic anaerobic CSTR.
//
// Callers must invoke ParamsEval before StoichioEval or RateEval for a
// given state: stoichiometry and rates may depend on parameters that
// ParamsEval refreshes (temperature correction, pH inhibition, gas
// solubility).
type Model interface {
	// Components returns the component set the model is defined over.
	// The reactor state layout is derived from it.
	Components() *Components

	// ParamsEval refreshes internally cached state-dependent
	// parameters from the given reactor state vector.
	ParamsEval(state []float64)

	// StoichioEval returns the stoichiometric matrix with one row per
	// process and one column per component, mapping process rates to
	// per-component production rates. The returned matrix may be
	// cached between calls; callers must not modify it.
	StoichioEval() *mat.Dense

	// RateEval returns the process rate vector [kg/m³/d measured
	// units] for the given reactor state vector. The returned slice
	// may be reused between calls.
	RateEval(state []float64) []float64

	// BiogasIDs returns the ordered component IDs tracked in the
	// biogas phase.
	BiogasIDs() []string

	// BiogasRateIndices returns, for each biogas component in
	// BiogasIDs order, the index in the rate vector of the gas
	// transfer process that moves that component from the liquid to
	// the headspace.
	BiogasRateIndices() []int
}

// ExogenousVar is a time-varying exogenous input (e.g. a temperature
// schedule) appended to the state passed into the kinetic model.
type ExogenousVar struct {
	Name string
	Eval func(t float64) float64
}
