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
	"sort"

	"gonum.org/v1/gonum/mat"
	gstat "gonum.org/v1/gonum/stat"
)

// CorrelationKind selects the correlation measure between parameters
// and model metrics.
type CorrelationKind int

const (
	// Pearson is the linear moment correlation coefficient.
	Pearson CorrelationKind = iota
	// Spearman is the rank correlation coefficient.
	Spearman
	// Kendall is the rank concordance coefficient τ.
	Kendall
)

func (k CorrelationKind) String() string {
	switch k {
	case Pearson:
		return "pearson"
	case Spearman:
		return "spearman"
	case Kendall:
		return "kendall"
	default:
		return fmt.Sprintf("CorrelationKind(%d)", int(k))
	}
}

// ParseCorrelationKind converts a name to a CorrelationKind.
func ParseCorrelationKind(name string) (CorrelationKind, error) {
	switch name {
	case "pearson":
		return Pearson, nil
	case "spearman":
		return Spearman, nil
	case "kendall":
		return Kendall, nil
	}
	return 0, fmt.Errorf("stats: invalid correlation %q; valid options are pearson, spearman, and kendall", name)
}

// Correlate returns the correlation of the given kind between x and y.
func Correlate(kind CorrelationKind, x, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0, fmt.Errorf("stats: correlating %d against %d values", len(x), len(y))
	}
	if len(x) < 2 {
		return 0, fmt.Errorf("stats: need at least two values, have %d", len(x))
	}
	switch kind {
	case Pearson:
		return gstat.Correlation(x, y, nil), nil
	case Spearman:
		return gstat.Correlation(ranks(x), ranks(y), nil), nil
	case Kendall:
		return gstat.Kendall(x, y, nil), nil
	}
	return 0, fmt.Errorf("stats: invalid correlation kind %v", kind)
}

// Correlations returns the correlation of each sample column against
// the metric values, one coefficient per parameter.
func Correlations(kind CorrelationKind, p Problem, x *mat.Dense, metric []float64) ([]float64, error) {
	if err := p.Check(); err != nil {
		return nil, err
	}
	n, k := x.Dims()
	if k != p.Len() {
		return nil, fmt.Errorf("stats: sample has %d columns for %d parameters", k, p.Len())
	}
	if len(metric) != n {
		return nil, fmt.Errorf("stats: have %d metric values for %d samples", len(metric), n)
	}
	o := make([]float64, k)
	col := make([]float64, n)
	for j := 0; j < k; j++ {
		mat.Col(col, j, x)
		r, err := Correlate(kind, col, metric)
		if err != nil {
			return nil, err
		}
		o[j] = r
	}
	return o, nil
}

// ranks returns the fractional ranks of data, with ties assigned the
// average of their rank range.
func ranks(data []float64) []float64 {
	n := len(data)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return data[idx[a]] < data[idx[b]] })

	o := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && data[idx[j+1]] == data[idx[i]] {
			j++
		}
		r := float64(i+j)/2 + 1
		for m := i; m <= j; m++ {
			o[idx[m]] = r
		}
		i = j + 1
	}
	return o
}
