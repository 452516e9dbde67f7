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

// Package integrate provides fixed-step time integration of ordinary
// differential equations over an Integrable contract, used to drive
// the dynamic process models.
package integrate

import "fmt"

// Integrable is something with a state vector that can be integrated
// over time. Implementations manage their own state storage and decide
// when the integration stops.
type Integrable interface {
	// GetState returns the current state vector.
	GetState() []float64
	// SetState stores the state vector of completed step i.
	SetState(i uint64, s []float64)
	// Stop reports whether to stop the integration before step i.
	Stop(i uint64) bool
	// Func evaluates the state derivative at time t and state s. The
	// returned slice may be reused between calls.
	Func(t float64, s []float64) []float64
}

// RK4 is a fixed-step fourth-order Runge-Kutta integrator.
type RK4 struct {
	T0        float64 // initial time
	StepSize  float64
	Integrand Integrable

	buf *buffers
}

// NewRK4 returns an RK4 integrator starting at time t0 with the given
// step size.
func NewRK4(t0, stepSize float64, integrand Integrable) (*RK4, error) {
	if stepSize <= 0 {
		return nil, fmt.Errorf("integrate: step size must be positive, not %g", stepSize)
	}
	if integrand == nil {
		return nil, fmt.Errorf("integrate: integrand must not be nil")
	}
	return &RK4{T0: t0, StepSize: stepSize, Integrand: integrand}, nil
}

// buffers holds the per-stage work slices, allocated once per solve.
type buffers struct {
	k1, k2, k3, k4 []float64
	tmp, next      []float64
}

func newBuffers(n int) *buffers {
	return &buffers{
		k1:   make([]float64, n),
		k2:   make([]float64, n),
		k3:   make([]float64, n),
		k4:   make([]float64, n),
		tmp:  make([]float64, n),
		next: make([]float64, n),
	}
}

// Solve advances the integrand until its Stop method returns true.
// It returns the number of steps taken and the final time.
func (r *RK4) Solve() (uint64, float64, error) {
	h := r.StepSize
	t := r.T0
	var i uint64
	for !r.Integrand.Stop(i) {
		s := r.Integrand.GetState()
		if r.buf == nil || len(r.buf.tmp) != len(s) {
			r.buf = newBuffers(len(s))
		}
		b := r.buf

		for j, d := range r.Integrand.Func(t, s) {
			b.k1[j] = h * d
			b.tmp[j] = s[j] + b.k1[j]/2
		}
		for j, d := range r.Integrand.Func(t+h/2, b.tmp) {
			b.k2[j] = h * d
			b.tmp[j] = s[j] + b.k2[j]/2
		}
		for j, d := range r.Integrand.Func(t+h/2, b.tmp) {
			b.k3[j] = h * d
			b.tmp[j] = s[j] + b.k3[j]
		}
		for j, d := range r.Integrand.Func(t+h, b.tmp) {
			b.k4[j] = h * d
		}
		for j := range b.next {
			b.next[j] = s[j] + (b.k1[j]+2*b.k2[j]+2*b.k3[j]+b.k4[j])/6
		}
		r.Integrand.SetState(i, b.next)
		t += h
		i++
	}
	return i, t, nil
}

// Euler is a fixed-step forward Euler integrator. It is mainly useful
// as a cross-check for RK4 results at small step sizes.
type Euler struct {
	T0        float64
	StepSize  float64
	Integrand Integrable
}

// NewEuler returns a forward Euler integrator starting at time t0 with
// the given step size.
func NewEuler(t0, stepSize float64, integrand Integrable) (*Euler, error) {
	if stepSize <= 0 {
		return nil, fmt.Errorf("integrate: step size must be positive, not %g", stepSize)
	}
	if integrand == nil {
		return nil, fmt.Errorf("integrate: integrand must not be nil")
	}
	return &Euler{T0: t0, StepSize: stepSize, Integrand: integrand}, nil
}

// Solve advances the integrand until its Stop method returns true.
// It returns the number of steps taken and the final time.
func (e *Euler) Solve() (uint64, float64, error) {
	h := e.StepSize
	t := e.T0
	var i uint64
	var next []float64
	for !e.Integrand.Stop(i) {
		s := e.Integrand.GetState()
		if len(next) != len(s) {
			next = make([]float64, len(s))
		}
		for j, d := range e.Integrand.Func(t, s) {
			next[j] = s[j] + h*d
		}
		e.Integrand.SetState(i, next)
		t += h
		i++
	}
	return i, t, nil
}
