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

package sanprocutil

import (
	"math"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/sanmodel/sanproc/stats"
)

func testSAConfig(t *testing.T, metric string) *saConfig {
	t.Helper()
	rcfg, kp, conc := testRunSetup()
	return &saConfig{
		outputFile: filepath.Join(t.TempDir(), "sa.csv"),
		metric:     metric,
		problem: stats.Problem{
			Names:  []string{"KDec"},
			Bounds: [][2]float64{{0.005, 0.08}},
		},
		base:      kp,
		rcfg:      rcfg,
		flow:      170,
		conc:      conc,
		days:      0.05,
		stepSize:  0.002,
		bootstrap: 20,
		seed:      3,
	}
}

// checkResultCSV verifies a per-parameter result file: a header, one
// row per parameter, and finite values.
func checkResultCSV(t *testing.T, path string, wantCols int) {
	t.Helper()
	rows := readCSV(t, path)
	if len(rows) != 2 {
		t.Fatalf("have %d rows, want 2", len(rows))
	}
	if len(rows[1]) != wantCols {
		t.Fatalf("have %d columns, want %d", len(rows[1]), wantCols)
	}
	if rows[1][0] != "KDec" {
		t.Errorf("have parameter %q, want KDec", rows[1][0])
	}
	for j, cell := range rows[1][1:] {
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			t.Fatalf("column %d: %v", j+1, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("column %d is not finite: %g", j+1, v)
		}
	}
}

func TestRunMorris(t *testing.T) {
	sa := testSAConfig(t, "gasflow")
	if err := RunMorris(testCommand(), sa, 2, 4); err != nil {
		t.Fatal(err)
	}
	checkResultCSV(t, sa.outputFile, 5)
}

func TestRunSobol(t *testing.T) {
	sa := testSAConfig(t, "methane")
	if err := RunSobol(testCommand(), sa, 4); err != nil {
		t.Fatal(err)
	}
	checkResultCSV(t, sa.outputFile, 5)
}

func TestCheckMetric(t *testing.T) {
	for _, metric := range []string{"methane", "cod", "gasflow"} {
		if err := checkMetric(metric); err != nil {
			t.Errorf("%s: %v", metric, err)
		}
	}
	if err := checkMetric("sludge"); err == nil {
		t.Error("invalid metric should be an error")
	}
}

func TestEvalMetric(t *testing.T) {
	rcfg, kp, conc := testRunSetup()
	r, err := buildReactor(rcfg, kp, 170, conc)
	if err != nil {
		t.Fatal(err)
	}
	// At the initial state the soluble COD is the influent soluble
	// COD: 5000 mg/L sugar plus 1000 mg/L acetate.
	cod, err := evalMetric("cod", r)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(cod-6000) > 1e-9 {
		t.Errorf("have COD %g, want 6000", cod)
	}
	if _, err := evalMetric("sludge", r); err == nil {
		t.Error("invalid metric should be an error")
	}
}
