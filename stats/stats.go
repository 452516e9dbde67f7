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

// Package stats provides global sensitivity analysis of process model
// parameters: Morris elementary effects screening, Sobol variance
// decomposition from Saltelli samples, and rank and moment correlation
// measures between parameters and model metrics.
package stats

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Problem defines the uncertain model parameters for a sensitivity
// analysis: one name and one lower/upper bound pair per parameter.
type Problem struct {
	Names  []string
	Bounds [][2]float64
}

// Len returns the number of parameters.
func (p Problem) Len() int { return len(p.Names) }

// Check validates the problem definition.
func (p Problem) Check() error {
	if len(p.Names) == 0 {
		return fmt.Errorf("stats: problem has no parameters")
	}
	if len(p.Bounds) != len(p.Names) {
		return fmt.Errorf("stats: problem has %d names but %d bounds", len(p.Names), len(p.Bounds))
	}
	for i, b := range p.Bounds {
		if b[0] >= b[1] {
			return fmt.Errorf("stats: parameter %s has invalid bounds [%g, %g]", p.Names[i], b[0], b[1])
		}
	}
	return nil
}

// scale maps a point from the unit hypercube to the parameter bounds,
// writing into dst.
func (p Problem) scale(dst, unit []float64) {
	for i, b := range p.Bounds {
		dst[i] = b[0] + unit[i]*(b[1]-b[0])
	}
}

// SampleUniform draws n independent samples of the parameters from
// uniform distributions over their bounds, one sample per row.
func SampleUniform(p Problem, n int, rng *rand.Rand) (*mat.Dense, error) {
	if err := p.Check(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, fmt.Errorf("stats: sample size must be positive, not %d", n)
	}
	k := p.Len()
	x := mat.NewDense(n, k, nil)
	for j := 0; j < k; j++ {
		u := distuv.Uniform{Min: p.Bounds[j][0], Max: p.Bounds[j][1], Src: rng}
		for i := 0; i < n; i++ {
			x.Set(i, j, u.Rand())
		}
	}
	return x, nil
}

// Evaluate applies the model function to each row of the sample
// matrix, returning one output value per row.
func Evaluate(x *mat.Dense, f func(x []float64) float64) []float64 {
	n, k := x.Dims()
	y := make([]float64, n)
	row := make([]float64, k)
	for i := 0; i < n; i++ {
		mat.Row(row, i, x)
		y[i] = f(row)
	}
	return y
}
