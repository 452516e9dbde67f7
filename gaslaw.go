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

// RGas is the universal gas constant [bar·m³/(kmol·K)].
const RGas = 8.3145e-2

// gasLaw converts between partial pressure [bar] and molar
// concentration [M ≡ kmol/m³] at a fixed temperature according to the
// ideal gas law. Pure algebra; inputs are assumed non-negative.
type gasLaw struct {
	T float64 // [K]
}

// pressure returns the partial pressure [bar] of a gas at molar
// concentration S [M].
func (g gasLaw) pressure(S float64) float64 { return S * RGas * g.T }

// concentration returns the molar concentration [M] of a gas at
// partial pressure p [bar].
func (g gasLaw) concentration(p float64) float64 { return p / (RGas * g.T) }

// IdealGasPressure returns the partial pressure [bar] of a gas at
// molar concentration S [M] at the reactor operating temperature.
func (r *AnaerobicCSTR) IdealGasPressure(S float64) float64 {
	return gasLaw{T: r.T}.pressure(S)
}

// IdealGasConcentration returns the molar concentration [M] of a gas
// at partial pressure p [bar] at the reactor operating temperature.
func (r *AnaerobicCSTR) IdealGasConcentration(p float64) float64 {
	return gasLaw{T: r.T}.concentration(p)
}

// VaporPressure returns the saturated water vapor pressure [bar] at
// the reactor operating temperature.
func (r *AnaerobicCSTR) VaporPressure() float64 {
	return WaterPsat(r.T) / PaPerBar
}
