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

// Package units holds static sanitation process unit models: anaerobic
// treatment units with first-order emission estimates, and
// moisture-targeted sludge separation. Unlike the dynamic reactor in
// the root package, these units map an influent waste flow to effluent
// flows in a single evaluation.
package units

// WaterID is the component ID of water in waste flows.
const WaterID = "H2O"

// WasteFlow is a static mass-flow description of a waste stream.
type WasteFlow struct {
	Flow float64 // volumetric flow [m³/d]
	COD  float64 // chemical oxygen demand [mg/L]
	TN   float64 // total nitrogen [mg/L as N]

	// Mass holds component mass flows [kg/d] by component ID.
	Mass map[string]float64
}

// NewWasteFlow returns an empty waste flow.
func NewWasteFlow() *WasteFlow {
	return &WasteFlow{Mass: make(map[string]float64)}
}

// Copy returns a deep copy of the waste flow.
func (w *WasteFlow) Copy() *WasteFlow {
	o := &WasteFlow{
		Flow: w.Flow,
		COD:  w.COD,
		TN:   w.TN,
		Mass: make(map[string]float64, len(w.Mass)),
	}
	for id, m := range w.Mass {
		o.Mass[id] = m
	}
	return o
}

// TotalMass returns the total mass flow [kg/d].
func (w *WasteFlow) TotalMass() float64 {
	sum := 0.
	for _, m := range w.Mass {
		sum += m
	}
	return sum
}

// Moisture returns the water mass fraction, or zero for an empty flow.
func (w *WasteFlow) Moisture() float64 {
	tot := w.TotalMass()
	if tot == 0 {
		return 0
	}
	return w.Mass[WaterID] / tot
}

// CODLoad returns the COD mass load [kg/d].
func (w *WasteFlow) CODLoad() float64 { return w.COD * w.Flow / 1e3 }

// NLoad returns the total nitrogen mass load [kg/d].
func (w *WasteFlow) NLoad() float64 { return w.TN * w.Flow / 1e3 }
