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

// UpdateOutputs projects the current state and derivative vectors onto
// the effluent streams. Call after each integrator step (or at run
// completion) to synchronize LiquidOut and GasOut with the state.
func (r *AnaerobicCSTR) UpdateOutputs() {
	r.updateState()
	r.updateDState()
}

// updateState maps the state vector onto the effluent stream state
// arrays. The liquid effluent carries the non-retained fraction of
// each component converted back to mg/L plus the flow; the gas
// effluent reuses the full component-indexed layout, with the tracked
// biogas components scattered to their component indices, water
// overwritten with the saturated vapor equivalent, and the last entry
// set to the cached gas outflow. Stream buffers are allocated on first
// use and overwritten in place afterwards.
func (r *AnaerobicCSTR) updateState() {
	if r.state == nil {
		return
	}
	n := r.cmps.Len()
	b := r.bound
	y := r.state
	liq, gas := r.LiquidOut, r.GasOut

	if liq.State == nil {
		liq.State = make([]float64, n+1)
	}
	for i := 0; i < n; i++ {
		liq.State[i] = y[i] * (1 - r.fRetain[i]) * mgLPerKgM3 // kg/m³ to mg/L
	}
	liq.State[n] = y[len(y)-1]

	if gas.State == nil {
		gas.State = make([]float64, n+1)
	}
	for i, ci := range b.gasIdx {
		gas.State[ci] = y[n+i]
	}
	gas.State[r.cmps.IndexH2O()] = b.sVapor
	gas.State[n] = r.qGas
	iMass := r.cmps.IMass()
	chemMW := r.cmps.ChemMW()
	for i := 0; i < n; i++ {
		// M biogas to measured-unit mg/L.
		gas.State[i] = gas.State[i] * chemMW[i] / iMass[i] * mgLPerKgM3
	}
	if r.mode == FixedHeadspacePressure {
		gas.P = r.headspaceP * PaPerBar
	} else if r.pGas > 0 {
		gas.P = r.pGas * PaPerBar
	}
	gas.T = r.T
}

// updateDState maps the derivative vector onto the effluent stream
// derivative arrays. The gas effluent derivative carries no
// information and stays zero.
func (r *AnaerobicCSTR) updateDState() {
	if r.dstate == nil {
		return
	}
	n := r.cmps.Len()
	dy := r.dstate
	liq, gas := r.LiquidOut, r.GasOut

	if liq.DState == nil {
		liq.DState = make([]float64, n+1)
	}
	for i := 0; i < n; i++ {
		liq.DState[i] = dy[i] * (1 - r.fRetain[i]) * mgLPerKgM3
	}
	liq.DState[n] = dy[len(dy)-1]

	if gas.DState == nil {
		gas.DState = make([]float64, n+1)
	}
}
