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
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/mat"
)

func TestCorrelate(t *testing.T) {
	x := []float64{-2, -1, 0, 1, 2}
	linear := []float64{-4, -2, 0, 2, 4}
	cubed := []float64{-8, -1, 0, 1, 8}

	tests := []struct {
		name string
		kind CorrelationKind
		y    []float64
		want float64
	}{
		{"pearson linear", Pearson, linear, 1},
		{"spearman linear", Spearman, linear, 1},
		{"spearman monotone", Spearman, cubed, 1},
		{"kendall monotone", Kendall, cubed, 1},
	}
	for _, test := range tests {
		r, err := Correlate(test.kind, x, test.y)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(r-test.want) > 1e-12 {
			t.Errorf("%s: have %g, want %g", test.name, r, test.want)
		}
	}

	// Pearson is below one for a nonlinear monotone relation.
	r, err := Correlate(Pearson, x, cubed)
	if err != nil {
		t.Fatal(err)
	}
	if r >= 1 || r <= 0 {
		t.Errorf("pearson on cubic: have %g, want within (0, 1)", r)
	}
}

func TestCorrelateErrors(t *testing.T) {
	if _, err := Correlate(Pearson, []float64{1, 2}, []float64{1}); err == nil {
		t.Error("length mismatch should be an error")
	}
	if _, err := Correlate(Pearson, []float64{1}, []float64{1}); err == nil {
		t.Error("single value should be an error")
	}
	if _, err := Correlate(CorrelationKind(9), []float64{1, 2}, []float64{1, 2}); err == nil {
		t.Error("invalid kind should be an error")
	}
}

func TestRanksTies(t *testing.T) {
	have := ranks([]float64{3, 1, 2, 2})
	want := []float64{4, 1, 2.5, 2.5}
	if diff := cmp.Diff(want, have); diff != "" {
		t.Errorf("rank mismatch (-want +have):\n%s", diff)
	}
}

func TestCorrelations(t *testing.T) {
	p := testProblem()
	x := mat.NewDense(4, 2, []float64{
		0.1, 9,
		0.4, 7,
		0.6, 3,
		0.9, 1,
	})
	// The metric follows the first parameter and opposes the second.
	metric := []float64{1, 4, 6, 9}

	rs, err := Correlations(Spearman, p, x, metric)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(rs[0]-1) > 1e-12 {
		t.Errorf("first parameter: have %g, want 1", rs[0])
	}
	if math.Abs(rs[1]+1) > 1e-12 {
		t.Errorf("second parameter: have %g, want -1", rs[1])
	}
}

func TestCorrelationsErrors(t *testing.T) {
	p := testProblem()
	x := mat.NewDense(3, 2, nil)
	if _, err := Correlations(Pearson, p, x, []float64{1, 2}); err == nil {
		t.Error("metric length mismatch should be an error")
	}
}

func TestParseCorrelationKind(t *testing.T) {
	for _, kind := range []CorrelationKind{Pearson, Spearman, Kendall} {
		parsed, err := ParseCorrelationKind(kind.String())
		if err != nil {
			t.Fatal(err)
		}
		if parsed != kind {
			t.Errorf("round trip: have %v, want %v", parsed, kind)
		}
	}
	if _, err := ParseCorrelationKind("xxxx"); err == nil {
		t.Error("invalid name should be an error")
	}
}
