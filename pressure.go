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

import "fmt"

// PressureMode selects how the headspace pressure closure computes the
// biogas outflow. The choice is structural: it is resolved once when a
// kinetic model is bound, not re-evaluated per derivative call.
type PressureMode int

const (
	// VariableHeadspacePressure computes the headspace pressure from
	// the accumulated gas-phase concentrations and the gas outflow
	// from a linear pipe-resistance law.
	VariableHeadspacePressure PressureMode = iota

	// FixedHeadspacePressure holds the headspace at the configured
	// pressure and computes the gas outflow required to vent the
	// instantaneously produced gas.
	FixedHeadspacePressure
)

func (m PressureMode) String() string {
	switch m {
	case VariableHeadspacePressure:
		return "variable"
	case FixedHeadspacePressure:
		return "fixed"
	default:
		return fmt.Sprintf("PressureMode(%d)", int(m))
	}
}

// ParsePressureMode converts a name to a PressureMode.
func ParsePressureMode(name string) (PressureMode, error) {
	switch name {
	case "variable":
		return VariableHeadspacePressure, nil
	case "fixed":
		return FixedHeadspacePressure, nil
	}
	return 0, fmt.Errorf("sanproc: invalid pressure mode %q; valid options are variable and fixed", name)
}

// gasFlowFunc computes the biogas outflow [m³/d] from the gas transfer
// rates (one per biogas component, in BiogasIDs order) and the current
// headspace gas concentrations [M]. Implementations cache the computed
// headspace pressure and outflow on the reactor for reporting.
type gasFlowFunc func(gasRhos, sGas []float64) float64

// fixedGasFlow returns the fixed-headspace-pressure closure. The
// headspace is treated as instantaneously vented: the outflow exactly
// carries away the gas transferred from the liquid, keeping total
// pressure at the configured value.
func (r *AnaerobicCSTR) fixedGasFlow() gasFlowFunc {
	b := r.bound
	denom := r.headspaceP - b.pVapor
	return func(gasRhos, sGas []float64) float64 {
		var sum float64
		for i, rho := range gasRhos {
			sum += rho * b.massToMol[i]
		}
		r.qGas = RGas * r.T / denom * r.VLiq * sum
		return r.qGas
	}
}

// variableGasFlow returns the variable-headspace-pressure closure:
// total pressure is the sum of the gas partial pressures plus water
// vapor, and outflow follows a linear pipe-resistance law against the
// external pressure.
func (r *AnaerobicCSTR) variableGasFlow() gasFlowFunc {
	b := r.bound
	gl := gasLaw{T: r.T}
	return func(gasRhos, sGas []float64) float64 {
		P := b.pVapor
		for _, S := range sGas {
			P += gl.pressure(S)
		}
		r.pGas = P
		r.qGas = r.pipeResistance * (P - r.externalP)
		return r.qGas
	}
}
