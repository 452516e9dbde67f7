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

package units

import (
	"fmt"
	"math"
)

// SludgeSeparator splits a waste flow into a water-rich supernatant
// and a solid-rich sludge. Insoluble components all report to the
// sludge; water and soluble components are split by a common fraction
// solved so that the sludge reaches the target moisture content.
type SludgeSeparator struct {
	// SludgeMoisture is the target water mass fraction of the sludge.
	SludgeMoisture float64
	// SolidIDs are the components that report entirely to the sludge.
	SolidIDs []string

	solids map[string]bool
}

// NewSludgeSeparator creates a separator with the given target sludge
// moisture and solid component IDs.
func NewSludgeSeparator(sludgeMoisture float64, solidIDs []string) (*SludgeSeparator, error) {
	if sludgeMoisture <= 0 || sludgeMoisture >= 1 {
		return nil, fmt.Errorf("units: sludge moisture must be within (0, 1), not %g", sludgeMoisture)
	}
	solids := make(map[string]bool, len(solidIDs))
	for _, id := range solidIDs {
		if id == WaterID {
			return nil, fmt.Errorf("units: water cannot be a solid component")
		}
		solids[id] = true
	}
	return &SludgeSeparator{
		SludgeMoisture: sludgeMoisture,
		SolidIDs:       solidIDs,
		solids:         solids,
	}, nil
}

// sludgeMoistureAt returns the sludge moisture when the fraction split
// of each soluble component leaves with the supernatant.
func (u *SludgeSeparator) sludgeMoistureAt(in *WasteFlow, split float64) float64 {
	water := 0.
	total := 0.
	for id, m := range in.Mass {
		if u.solids[id] {
			total += m
			continue
		}
		kept := m * (1 - split)
		total += kept
		if id == WaterID {
			water = kept
		}
	}
	if total == 0 {
		return 0
	}
	return water / total
}

// Run splits the influent, returning the supernatant and the sludge.
// It fails when the influent cannot reach the target moisture, e.g.
// when it carries no solids.
func (u *SludgeSeparator) Run(in *WasteFlow) (*WasteFlow, *WasteFlow, error) {
	const (
		lo        = 1e-3
		hi        = 1 - 1e-3
		tolerance = 1e-12
		maxIter   = 200
	)
	// Moisture decreases monotonically with the supernatant split, so
	// the target is reachable only if it is bracketed.
	if u.sludgeMoistureAt(in, lo) < u.SludgeMoisture {
		return nil, nil, fmt.Errorf("units: cannot reach sludge moisture %g; the influent moisture ceiling is %g",
			u.SludgeMoisture, u.sludgeMoistureAt(in, lo))
	}
	if u.sludgeMoistureAt(in, hi) > u.SludgeMoisture {
		return nil, nil, fmt.Errorf("units: cannot reach sludge moisture %g; the influent carries too little solid mass",
			u.SludgeMoisture)
	}

	a, b := lo, hi
	var split float64
	for i := 0; i < maxIter; i++ {
		split = (a + b) / 2
		mc := u.sludgeMoistureAt(in, split)
		if math.Abs(mc-u.SludgeMoisture) < tolerance {
			break
		}
		if mc > u.SludgeMoisture {
			a = split
		} else {
			b = split
		}
	}

	eff := NewWasteFlow()
	sludge := NewWasteFlow()
	for id, m := range in.Mass {
		if u.solids[id] {
			sludge.Mass[id] = m
			continue
		}
		eff.Mass[id] = m * split
		sludge.Mass[id] = m * (1 - split)
	}
	// Volumetric flow follows the water split; dissolved loads follow
	// the same split as water.
	eff.Flow = in.Flow * split
	sludge.Flow = in.Flow - eff.Flow
	eff.COD = in.COD
	sludge.COD = in.COD
	eff.TN = in.TN
	sludge.TN = in.TN
	return eff, sludge, nil
}

// BeltThickener is a gravity belt thickener parameterization of the
// sludge separator.
type BeltThickener struct {
	*SludgeSeparator

	// MaxCapacity is the hydraulic loading limit per belt [m³/h] and
	// PowerDemand the power draw per belt [kW].
	MaxCapacity float64
	PowerDemand float64
}

// NewBeltThickener creates a gravity belt thickener. Typical thickened
// sludge moisture is 0.90 to 0.96.
func NewBeltThickener(sludgeMoisture float64, solidIDs []string) (*BeltThickener, error) {
	s, err := NewSludgeSeparator(sludgeMoisture, solidIDs)
	if err != nil {
		return nil, err
	}
	return &BeltThickener{
		SludgeSeparator: s,
		MaxCapacity:     100,
		PowerDemand:     4.1,
	}, nil
}

// NumBelts returns the number of belts needed for the given influent
// flow [m³/d].
func (u *BeltThickener) NumBelts(flow float64) int {
	return int(math.Ceil(flow / 24 / u.MaxCapacity))
}

// SludgeCentrifuge is a scroll solid-bowl centrifuge parameterization
// of the sludge separator, reaching lower cake moisture than gravity
// thickening.
type SludgeCentrifuge struct {
	*SludgeSeparator
}

// NewSludgeCentrifuge creates a sludge dewatering centrifuge. Typical
// cake moisture is 0.8.
func NewSludgeCentrifuge(sludgeMoisture float64, solidIDs []string) (*SludgeCentrifuge, error) {
	s, err := NewSludgeSeparator(sludgeMoisture, solidIDs)
	if err != nil {
		return nil, err
	}
	return &SludgeCentrifuge{SludgeSeparator: s}, nil
}
