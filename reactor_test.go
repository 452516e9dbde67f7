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

import (
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
)

const testTolerance = 1.e-10

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

func absDifferent(a, b float64) bool {
	return math.Abs(a-b) > testTolerance
}

// testComponents returns a five-component set used throughout the
// reactor tests: a soluble substrate, dissolved methane and inorganic
// carbon (the tracked biogas species), biomass, and water.
func testComponents(t *testing.T) *Components {
	t.Helper()
	cmps, err := NewComponents([]Component{
		{ID: "S_s", IMass: 1, ChemMW: 180},
		{ID: "S_ch4", IMass: 0.25, ChemMW: 16.04},
		{ID: "S_ic", IMass: 44.01 / 12.011, ChemMW: 44.01},
		{ID: "X_b", IMass: 1, ChemMW: 113},
		{ID: "H2O", IMass: 1, ChemMW: 18.02},
	})
	if err != nil {
		t.Fatal(err)
	}
	return cmps
}

// mockModel is a configurable kinetic model for testing. It records
// the order of contract calls and the length of the state vectors it
// is handed.
type mockModel struct {
	cmps       *Components
	stoichio   *mat.Dense
	rates      []float64
	biogasIDs  []string
	gasRateIdx []int

	sequence  []string
	stateLens []int
}

func (m *mockModel) Components() *Components { return m.cmps }

func (m *mockModel) ParamsEval(state []float64) {
	m.sequence = append(m.sequence, "params")
	m.stateLens = append(m.stateLens, len(state))
}

func (m *mockModel) StoichioEval() *mat.Dense {
	m.sequence = append(m.sequence, "stoichio")
	return m.stoichio
}

func (m *mockModel) RateEval(state []float64) []float64 {
	m.sequence = append(m.sequence, "rates")
	return m.rates
}

func (m *mockModel) BiogasIDs() []string    { return m.biogasIDs }
func (m *mockModel) BiogasRateIndices() []int { return m.gasRateIdx }

// zeroRateModel returns a model with two tracked biogas species and
// all-zero kinetics.
func zeroRateModel(cmps *Components) *mockModel {
	return &mockModel{
		cmps:       cmps,
		stoichio:   mat.NewDense(2, cmps.Len(), nil),
		rates:      make([]float64, 2),
		biogasIDs:  []string{"S_ch4", "S_ic"},
		gasRateIdx: []int{0, 1},
	}
}

func TestStateLayout(t *testing.T) {
	cmps := testComponents(t)
	r, err := NewAnaerobicCSTR(cmps, DefaultCSTRConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Bind(zeroRateModel(cmps)); err != nil {
		t.Fatal(err)
	}
	n, k := cmps.Len(), 2
	if len(r.StateKeys()) != n+k+1 {
		t.Fatalf("state length: have %d, want %d", len(r.StateKeys()), n+k+1)
	}
	want := []string{"S_s", "S_ch4", "S_ic", "X_b", "H2O", "S_ch4_gas", "S_ic_gas", "Q"}
	for i, k := range r.StateKeys() {
		if k != want[i] {
			t.Errorf("state key %d: have %s, want %s", i, k, want[i])
		}
	}
	if err := r.InitState(); err != nil {
		t.Fatal(err)
	}
	if len(r.State()) != n+k+1 || len(r.DState()) != n+k+1 {
		t.Errorf("initialized state/dstate lengths %d/%d, want %d",
			len(r.State()), len(r.DState()), n+k+1)
	}
}

func TestSetStateLength(t *testing.T) {
	cmps := testComponents(t)
	r, err := NewAnaerobicCSTR(cmps, DefaultCSTRConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Bind(zeroRateModel(cmps)); err != nil {
		t.Fatal(err)
	}
	if err := r.SetState(make([]float64, 3)); err == nil {
		t.Fatal("expected error for wrong state length")
	} else if !strings.Contains(err.Error(), "length 8") {
		t.Errorf("error %q does not name the required length", err)
	}
	if err := r.SetState(make([]float64, 8)); err != nil {
		t.Errorf("correct-length state assignment failed: %v", err)
	}
}

func TestIdealGasRoundTrip(t *testing.T) {
	cmps := testComponents(t)
	r, err := NewAnaerobicCSTR(cmps, DefaultCSTRConfig())
	if err != nil {
		t.Fatal(err)
	}
	for _, S := range []float64{0, 1e-6, 0.014, 0.3, 55.5} {
		got := r.IdealGasConcentration(r.IdealGasPressure(S))
		if S == 0 {
			if got != 0 {
				t.Errorf("round trip of 0: have %g", got)
			}
			continue
		}
		if different(got, S, testTolerance) {
			t.Errorf("round trip of %g: have %g", S, got)
		}
	}
	// p = S·R·T directly.
	want := 0.014 * RGas * r.T
	if different(r.IdealGasPressure(0.014), want, testTolerance) {
		t.Errorf("partial pressure: have %g, want %g", r.IdealGasPressure(0.014), want)
	}
}

func TestInitStateUnitConversion(t *testing.T) {
	cmps := testComponents(t)
	r, err := NewAnaerobicCSTR(cmps, DefaultCSTRConfig())
	if err != nil {
		t.Fatal(err)
	}
	// Influent concentrations are reported in mg/L; internal state is
	// kg/m³, so initialization scales by 1e-3.
	if err := r.In.SetConc("S_s", 5000); err != nil {
		t.Fatal(err)
	}
	r.In.Flow = 50
	if err := r.Bind(zeroRateModel(cmps)); err != nil {
		t.Fatal(err)
	}
	if err := r.InitState(); err != nil {
		t.Fatal(err)
	}
	state := r.StateMap()
	if absDifferent(state["S_s"], 5) {
		t.Errorf("initial substrate: have %g kg/m³, want 5", state["S_s"])
	}
	if absDifferent(state["Q"], 50) {
		t.Errorf("initial flow: have %g, want 50", state["Q"])
	}
	for _, k := range []string{"S_ch4_gas", "S_ic_gas"} {
		if state[k] != 0 {
			t.Errorf("initial headspace %s: have %g, want 0", k, state[k])
		}
	}
}

func TestBindFixedPressureDegenerate(t *testing.T) {
	cmps := testComponents(t)
	cfg := DefaultCSTRConfig()
	cfg.PressureMode = FixedHeadspacePressure
	cfg.HeadspaceP = 0.01 // below the vapor pressure at 308.15 K
	r, err := NewAnaerobicCSTR(cmps, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Bind(zeroRateModel(cmps)); err == nil {
		t.Fatal("expected configuration error for headspace pressure below vapor pressure")
	}
}

func TestParsePressureMode(t *testing.T) {
	for _, mode := range []PressureMode{VariableHeadspacePressure, FixedHeadspacePressure} {
		parsed, err := ParsePressureMode(mode.String())
		if err != nil {
			t.Fatal(err)
		}
		if parsed != mode {
			t.Errorf("round trip: have %v, want %v", parsed, mode)
		}
	}
	if _, err := ParsePressureMode("sideways"); err == nil {
		t.Error("invalid mode name should be an error")
	}
}

func TestVaporPressure(t *testing.T) {
	cmps := testComponents(t)
	r, err := NewAnaerobicCSTR(cmps, DefaultCSTRConfig())
	if err != nil {
		t.Fatal(err)
	}
	pv := r.VaporPressure()
	// Antoine at 35 °C gives roughly 5.6 kPa.
	if pv < 0.05 || pv > 0.06 {
		t.Errorf("water vapor pressure at 308.15 K: have %g bar", pv)
	}
}
