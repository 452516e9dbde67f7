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
	"math"

	"github.com/GaryBoone/GoStats/stats"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// SampleMorris builds Morris one-at-a-time trajectories over the
// parameter space: each trajectory perturbs every parameter once, in
// random order, by a fixed grid step. The returned matrix has
// trajectories·(k+1) rows for k parameters.
func SampleMorris(p Problem, trajectories, levels int, rng *rand.Rand) (*mat.Dense, error) {
	if err := p.Check(); err != nil {
		return nil, err
	}
	if trajectories <= 0 {
		return nil, fmt.Errorf("stats: trajectory count must be positive, not %d", trajectories)
	}
	if levels < 2 || levels%2 != 0 {
		return nil, fmt.Errorf("stats: level count must be a positive even number, not %d", levels)
	}
	k := p.Len()
	delta := float64(levels) / (2 * float64(levels-1))

	x := mat.NewDense(trajectories*(k+1), k, nil)
	unit := make([]float64, k)
	step := make([]float64, k)
	scaled := make([]float64, k)
	for t := 0; t < trajectories; t++ {
		// Base point on the lower half of the grid, with a random
		// direction per parameter.
		for j := 0; j < k; j++ {
			g := rng.Intn(levels / 2)
			unit[j] = float64(g) / float64(levels-1)
			step[j] = delta
			if rng.Intn(2) == 0 {
				unit[j] += delta
				step[j] = -delta
			}
		}
		row := t * (k + 1)
		p.scale(scaled, unit)
		x.SetRow(row, scaled)
		for s, j := range rng.Perm(k) {
			unit[j] += step[j]
			p.scale(scaled, unit)
			x.SetRow(row+s+1, scaled)
		}
	}
	return x, nil
}

// MorrisResult holds the elementary effects statistics of each
// parameter: the mean effect μ, the mean absolute effect μ*, the
// effect standard deviation σ, and the bootstrapped 95% confidence
// halfwidth of μ*.
type MorrisResult struct {
	Names        []string
	Mu           []float64
	MuStar       []float64
	Sigma        []float64
	MuStarConf   []float64
	Trajectories int
}

// AnalyzeMorris computes elementary effects from a Morris sample
// matrix and the matching model outputs y, with the μ* confidence
// interval estimated from the given number of bootstrap resamples.
func AnalyzeMorris(p Problem, x *mat.Dense, y []float64, bootstrap int, rng *rand.Rand) (*MorrisResult, error) {
	if err := p.Check(); err != nil {
		return nil, err
	}
	k := p.Len()
	rows, cols := x.Dims()
	if cols != k {
		return nil, fmt.Errorf("stats: sample has %d columns for %d parameters", cols, k)
	}
	if rows%(k+1) != 0 {
		return nil, fmt.Errorf("stats: sample has %d rows, not a multiple of %d", rows, k+1)
	}
	if len(y) != rows {
		return nil, fmt.Errorf("stats: have %d outputs for %d sample rows", len(y), rows)
	}
	nTraj := rows / (k + 1)

	// effects[j][t] is the elementary effect of parameter j in
	// trajectory t.
	effects := make([][]float64, k)
	for j := range effects {
		effects[j] = make([]float64, nTraj)
	}
	for t := 0; t < nTraj; t++ {
		base := t * (k + 1)
		for s := 0; s < k; s++ {
			r := base + s
			j, err := changedColumn(x, r, r+1)
			if err != nil {
				return nil, err
			}
			span := p.Bounds[j][1] - p.Bounds[j][0]
			du := (x.At(r+1, j) - x.At(r, j)) / span
			effects[j][t] = (y[r+1] - y[r]) / du
		}
	}

	o := &MorrisResult{
		Names:        p.Names,
		Mu:           make([]float64, k),
		MuStar:       make([]float64, k),
		Sigma:        make([]float64, k),
		MuStarConf:   make([]float64, k),
		Trajectories: nTraj,
	}
	abs := make([]float64, nTraj)
	for j := 0; j < k; j++ {
		ee := effects[j]
		for t, e := range ee {
			abs[t] = math.Abs(e)
		}
		o.Mu[j] = stats.StatsMean(ee)
		o.MuStar[j] = stats.StatsMean(abs)
		if nTraj > 1 {
			o.Sigma[j] = stats.StatsSampleStandardDeviation(ee)
			o.MuStarConf[j] = bootstrapConf(abs, bootstrap, rng)
		}
	}
	return o, nil
}

// changedColumn returns the single column differing between rows a and
// b of x.
func changedColumn(x *mat.Dense, a, b int) (int, error) {
	_, k := x.Dims()
	changed := -1
	for j := 0; j < k; j++ {
		if x.At(a, j) == x.At(b, j) {
			continue
		}
		if changed >= 0 {
			return 0, fmt.Errorf("stats: rows %d and %d differ in more than one parameter", a, b)
		}
		changed = j
	}
	if changed < 0 {
		return 0, fmt.Errorf("stats: rows %d and %d are identical", a, b)
	}
	return changed, nil
}

// bootstrapConf returns the 95% confidence halfwidth of the mean of
// data, estimated from the spread of bootstrap resample means.
func bootstrapConf(data []float64, resamples int, rng *rand.Rand) float64 {
	if resamples < 2 {
		return 0
	}
	var d stats.Stats
	for b := 0; b < resamples; b++ {
		var m stats.Stats
		for range data {
			m.Update(data[rng.Intn(len(data))])
		}
		d.Update(m.Mean())
	}
	return 1.96 * d.SampleStandardDeviation()
}

// MorrisConverge runs Morris screening in batches of trajectories
// until the μ* estimates stabilize: the analysis converges when no
// parameter's μ* moved by more than threshold of the largest μ*
// between batches. It returns the final result and whether the
// threshold was met before maxTrajectories.
func MorrisConverge(p Problem, f func(x []float64) float64, levels, batch, maxTrajectories int, threshold float64, bootstrap int, rng *rand.Rand) (*MorrisResult, bool, error) {
	if err := p.Check(); err != nil {
		return nil, false, err
	}
	if batch <= 0 || maxTrajectories < batch {
		return nil, false, fmt.Errorf("stats: need a positive batch size no greater than the trajectory limit; have %d and %d", batch, maxTrajectories)
	}
	if threshold <= 0 {
		return nil, false, fmt.Errorf("stats: convergence threshold must be positive, not %g", threshold)
	}

	k := p.Len()
	var xAll *mat.Dense
	var yAll []float64
	var prev []float64
	for nTraj := batch; nTraj <= maxTrajectories; nTraj += batch {
		x, err := SampleMorris(p, batch, levels, rng)
		if err != nil {
			return nil, false, err
		}
		y := Evaluate(x, f)
		xAll = appendRows(xAll, x)
		yAll = append(yAll, y...)

		res, err := AnalyzeMorris(p, xAll, yAll, bootstrap, rng)
		if err != nil {
			return nil, false, err
		}
		if prev != nil {
			scale := 0.
			for _, m := range res.MuStar {
				scale = math.Max(scale, m)
			}
			maxShift := 0.
			for j := 0; j < k; j++ {
				maxShift = math.Max(maxShift, math.Abs(res.MuStar[j]-prev[j]))
			}
			if scale == 0 || maxShift/scale <= threshold {
				return res, true, nil
			}
		}
		prev = append(prev[:0], res.MuStar...)
	}
	res, err := AnalyzeMorris(p, xAll, yAll, bootstrap, rng)
	return res, false, err
}

// appendRows stacks b below a, either of which may carry prior data.
func appendRows(a, b *mat.Dense) *mat.Dense {
	if a == nil {
		return b
	}
	ra, c := a.Dims()
	rb, _ := b.Dims()
	o := mat.NewDense(ra+rb, c, nil)
	o.Slice(0, ra, 0, c).(*mat.Dense).Copy(a)
	o.Slice(ra, ra+rb, 0, c).(*mat.Dense).Copy(b)
	return o
}
