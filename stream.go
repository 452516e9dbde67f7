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

// Phase is the physical phase of a stream.
type Phase int

// Stream phases.
const (
	Liquid Phase = iota
	Gas
)

func (p Phase) String() string {
	switch p {
	case Liquid:
		return "liquid"
	case Gas:
		return "gas"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Stream holds the composition and flow of a waste stream, along with
// its dynamic state representation used during simulation.
//
// The dynamic state layout is [per-component concentration..., flow],
// with length Components.Len()+1. Concentrations are in reporting
// units [mg/L] for liquid streams and measured-unit equivalents for
// gas streams; flow is in m³/d. State and DState are allocated on
// first use and afterwards overwritten in place.
type Stream struct {
	Name  string
	Phase Phase
	T     float64 // [K]
	P     float64 // [Pa]

	Conc []float64 // per-component concentration [mg/L]
	Flow float64   // total volumetric flow [m³/d]

	State  []float64
	DState []float64

	cmps *Components
}

// NewStream creates an empty stream of the given phase over the
// component set cmps.
func NewStream(name string, cmps *Components, phase Phase) *Stream {
	return &Stream{
		Name:  name,
		Phase: phase,
		T:     298.15,
		P:     1.013 * PaPerBar,
		Conc:  make([]float64, cmps.Len()),
		cmps:  cmps,
	}
}

// Components returns the component set this stream is defined over.
func (s *Stream) Components() *Components { return s.cmps }

// SetConc sets the concentration [mg/L] of the component with the
// given ID.
func (s *Stream) SetConc(id string, conc float64) error {
	i, err := s.cmps.Index(id)
	if err != nil {
		return err
	}
	s.Conc[i] = conc
	return nil
}

// GetConc returns the concentration [mg/L] of the component with the
// given ID.
func (s *Stream) GetConc(id string) (float64, error) {
	i, err := s.cmps.Index(id)
	if err != nil {
		return 0, err
	}
	return s.Conc[i], nil
}

// CopyLike overwrites the composition, flow, and metadata of s with
// those of other. The dynamic state arrays are not copied.
func (s *Stream) CopyLike(other *Stream) {
	s.Phase = other.Phase
	s.T = other.T
	s.P = other.P
	s.Flow = other.Flow
	copy(s.Conc, other.Conc)
}

// Empty zeroes the stream composition and flow.
func (s *Stream) Empty() {
	for i := range s.Conc {
		s.Conc[i] = 0
	}
	s.Flow = 0
}

// FeedState returns the stream's dynamic state vector
// [concentrations..., flow]. If the dynamic state has not been set, it
// is synthesized from the static composition and flow.
func (s *Stream) FeedState() []float64 {
	if s.State != nil {
		return s.State
	}
	o := make([]float64, len(s.Conc)+1)
	copy(o, s.Conc)
	o[len(o)-1] = s.Flow
	return o
}

// FeedDState returns the time derivative of the stream's dynamic
// state, or a zero vector of matching length if none has been set.
func (s *Stream) FeedDState() []float64 {
	if s.DState != nil {
		return s.DState
	}
	return make([]float64, len(s.Conc)+1)
}
