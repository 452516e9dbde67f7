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

package stats

import (
	"fmt"

	"github.com/GaryBoone/GoStats/stats"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	gstat "gonum.org/v1/gonum/stat"
)

// SampleSaltelli builds a Saltelli sample for first and total-order
// Sobol indices: two independent uniform matrices A and B plus, for
// each parameter, A with that parameter's column taken from B. The
// returned matrix has n·(k+2) rows for k parameters, grouped per base
// sample as [A, AB_1 … AB_k, B].
func SampleSaltelli(p Problem, n int, rng *rand.Rand) (*mat.Dense, error) {
	if err := p.Check(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, fmt.Errorf("stats: sample size must be positive, not %d", n)
	}
	k := p.Len()
	a, err := SampleUniform(p, n, rng)
	if err != nil {
		return nil, err
	}
	b, err := SampleUniform(p, n, rng)
	if err != nil {
		return nil, err
	}

	x := mat.NewDense(n*(k+2), k, nil)
	row := make([]float64, k)
	for i := 0; i < n; i++ {
		base := i * (k + 2)
		mat.Row(row, i, a)
		x.SetRow(base, row)
		for j := 0; j < k; j++ {
			mat.Row(row, i, a)
			row[j] = b.At(i, j)
			x.SetRow(base+1+j, row)
		}
		mat.Row(row, i, b)
		x.SetRow(base+k+1, row)
	}
	return x, nil
}

// SobolResult holds first-order (S1) and total-order (ST) sensitivity
// indices per parameter with bootstrapped 95% confidence halfwidths.
type SobolResult struct {
	Names  []string
	S1     []float64
	ST     []float64
	S1Conf []float64
	STConf []float64
	N      int
}

// AnalyzeSobol computes Sobol indices from the model outputs y
// matching a Saltelli sample of base size n, with confidence intervals
// from the given number of bootstrap resamples.
func AnalyzeSobol(p Problem, y []float64, n, bootstrap int, rng *rand.Rand) (*SobolResult, error) {
	if err := p.Check(); err != nil {
		return nil, err
	}
	k := p.Len()
	if len(y) != n*(k+2) {
		return nil, fmt.Errorf("stats: have %d outputs, want %d for %d base samples of %d parameters", len(y), n*(k+2), n, k)
	}

	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	o := &SobolResult{
		Names:  p.Names,
		S1:     make([]float64, k),
		ST:     make([]float64, k),
		S1Conf: make([]float64, k),
		STConf: make([]float64, k),
		N:      n,
	}
	for j := 0; j < k; j++ {
		o.S1[j], o.ST[j] = sobolIndices(y, all, j, k)
	}
	if bootstrap >= 2 {
		idx := make([]int, n)
		s1 := make([]stats.Stats, k)
		st := make([]stats.Stats, k)
		for b := 0; b < bootstrap; b++ {
			for i := range idx {
				idx[i] = rng.Intn(n)
			}
			for j := 0; j < k; j++ {
				v1, vt := sobolIndices(y, idx, j, k)
				s1[j].Update(v1)
				st[j].Update(vt)
			}
		}
		for j := 0; j < k; j++ {
			o.S1Conf[j] = 1.96 * s1[j].SampleStandardDeviation()
			o.STConf[j] = 1.96 * st[j].SampleStandardDeviation()
		}
	}
	return o, nil
}

// sobolIndices computes the Saltelli 2010 estimators of the first and
// total-order indices of parameter j over the given base sample
// indices.
func sobolIndices(y []float64, idx []int, j, k int) (s1, st float64) {
	n := len(idx)
	ya := make([]float64, 0, 2*n)
	for _, i := range idx {
		base := i * (k + 2)
		ya = append(ya, y[base], y[base+k+1])
	}
	v := gstat.Variance(ya, nil)
	if v == 0 {
		return 0, 0
	}

	sum1 := 0.
	sumT := 0.
	for _, i := range idx {
		base := i * (k + 2)
		yA := y[base]
		yB := y[base+k+1]
		yAB := y[base+1+j]
		sum1 += yB * (yAB - yA)
		sumT += (yA - yAB) * (yA - yAB)
	}
	s1 = sum1 / float64(n) / v
	st = sumT / (2 * float64(n)) / v
	return s1, st
}
