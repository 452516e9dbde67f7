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

// Package sanproc implements unit-process models for sanitation and
// wastewater treatment systems, including a dynamic anaerobic CSTR
// with a biogas headspace driven by pluggable kinetic models.
package sanproc

import (
	"fmt"
	"math"
)

// Unit conversion factors.
const (
	PaPerBar   = 1.e5 // Pa per bar
	mgLPerKgM3 = 1.e3 // mg/L per kg/m³
)

// Component describes one chemical component tracked by the model.
type Component struct {
	ID string

	// IMass is the component mass per unit measured mass (e.g. per g
	// COD for organics, per g C for inorganic carbon) [g/g measured].
	IMass float64

	// ChemMW is the component molecular weight [g/mol].
	ChemMW float64
}

// Components is an ordered, immutable set of chemical components.
// The declared order fixes the layout of all state vectors.
type Components struct {
	comps []Component
	index map[string]int
	h2o   int
}

// NewComponents creates a component set from comps, which must contain
// a component with ID "H2O" and no duplicate IDs.
func NewComponents(comps []Component) (*Components, error) {
	c := &Components{
		comps: make([]Component, len(comps)),
		index: make(map[string]int),
		h2o:   -1,
	}
	copy(c.comps, comps)
	for i, cmp := range comps {
		if cmp.ID == "" {
			return nil, fmt.Errorf("sanproc: component %d has an empty ID", i)
		}
		if _, ok := c.index[cmp.ID]; ok {
			return nil, fmt.Errorf("sanproc: duplicate component ID %s", cmp.ID)
		}
		c.index[cmp.ID] = i
		if cmp.ID == "H2O" {
			c.h2o = i
		}
	}
	if c.h2o < 0 {
		return nil, fmt.Errorf("sanproc: component set is missing H2O")
	}
	return c, nil
}

// Len returns the number of components in the set.
func (c *Components) Len() int { return len(c.comps) }

// IDs returns the ordered component IDs.
func (c *Components) IDs() []string {
	ids := make([]string, len(c.comps))
	for i, cmp := range c.comps {
		ids[i] = cmp.ID
	}
	return ids
}

// Index returns the array index of the component with the given ID.
func (c *Components) Index(id string) (int, error) {
	i, ok := c.index[id]
	if !ok {
		return 0, fmt.Errorf("sanproc: unknown component ID %s; valid IDs are %v", id, c.IDs())
	}
	return i, nil
}

// Indices returns the array indices of the components with the given IDs.
func (c *Components) Indices(ids []string) ([]int, error) {
	idx := make([]int, len(ids))
	for i, id := range ids {
		var err error
		if idx[i], err = c.Index(id); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

// IndexH2O returns the array index of water.
func (c *Components) IndexH2O() int { return c.h2o }

// IMass returns the mass-per-measured-mass factors of all components
// in declared order.
func (c *Components) IMass() []float64 {
	o := make([]float64, len(c.comps))
	for i, cmp := range c.comps {
		o[i] = cmp.IMass
	}
	return o
}

// ChemMW returns the molecular weights of all components in declared
// order [g/mol].
func (c *Components) ChemMW() []float64 {
	o := make([]float64, len(c.comps))
	for i, cmp := range c.comps {
		o[i] = cmp.ChemMW
	}
	return o
}

// WaterPsat returns the saturated vapor pressure of water at
// temperature T [K] in Pa, using the Antoine correlation
// (valid between roughly 274 and 373 K).
func WaterPsat(T float64) float64 {
	const (
		A = 8.07131
		B = 1730.63
		C = 233.426

		paPerMmHg = 133.322
	)
	tc := T - 273.15 // °C
	return math.Pow(10, A-B/(C+tc)) * paPerMmHg
}
