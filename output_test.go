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

import "testing"

func TestUpdateOutputs(t *testing.T) {
	cmps := testComponents(t)
	cfg := DefaultCSTRConfig()
	cfg.RetainIDs = []string{"X_b"}
	r, err := NewAnaerobicCSTR(cmps, cfg)
	if err != nil {
		t.Fatal(err)
	}
	m := zeroRateModel(cmps)
	m.rates = []float64{0.5, 0.2}
	if err := r.Bind(m); err != nil {
		t.Fatal(err)
	}
	if err := r.InitState(); err != nil {
		t.Fatal(err)
	}
	n := cmps.Len()
	state := make([]float64, n+2+1)
	iS, _ := cmps.Index("S_s")
	iX, _ := cmps.Index("X_b")
	state[iS] = 2    // kg/m³
	state[iX] = 1.5  // kg/m³
	state[n] = 0.03  // S_ch4_gas [M]
	state[n+1] = 0.01 // S_ic_gas [M]
	state[n+2] = 120 // Q [m³/d]
	if err := r.SetState(state); err != nil {
		t.Fatal(err)
	}
	r.Eval(0, r.State()) // caches the gas outflow
	r.UpdateOutputs()

	liq, gas := r.LiquidOut, r.GasOut
	if absDifferent(liq.State[iS], 2000) {
		t.Errorf("effluent substrate: have %g mg/L, want 2000", liq.State[iS])
	}
	// 95% of the biomass is retained.
	if absDifferent(liq.State[iX], 1.5*0.05*1000) {
		t.Errorf("effluent biomass: have %g mg/L, want %g", liq.State[iX], 75.)
	}
	if absDifferent(liq.State[n], 120) {
		t.Errorf("effluent flow: have %g, want 120", liq.State[n])
	}

	// Biogas entries are scattered to the component-indexed layout and
	// converted from M to measured-unit mg/L.
	iCh4, _ := cmps.Index("S_ch4")
	wantCh4 := 0.03 * 16.04 / 0.25 * 1000
	if different(gas.State[iCh4], wantCh4, testTolerance) {
		t.Errorf("biogas CH4: have %g, want %g", gas.State[iCh4], wantCh4)
	}
	iW := cmps.IndexH2O()
	wantVapor := r.VaporPressure() / (RGas * r.T) * 18.02 / 1 * 1000
	if different(gas.State[iW], wantVapor, testTolerance) {
		t.Errorf("biogas vapor: have %g, want %g", gas.State[iW], wantVapor)
	}
	if different(gas.State[n], r.GasFlow(), testTolerance) {
		t.Errorf("biogas flow: have %g, want %g", gas.State[n], r.GasFlow())
	}
	// Untracked components stay zero in the gas stream.
	if gas.State[iS] != 0 || gas.State[iX] != 0 {
		t.Errorf("untracked gas entries nonzero: %g, %g", gas.State[iS], gas.State[iX])
	}

	// Buffers are reused, not reallocated, on subsequent calls.
	p0 := &liq.State[0]
	g0 := &gas.State[0]
	r.UpdateOutputs()
	if p0 != &liq.State[0] || g0 != &gas.State[0] {
		t.Error("output stream state buffers were reallocated")
	}
	if different(gas.State[iCh4], wantCh4, testTolerance) {
		t.Errorf("biogas CH4 after reprojection: have %g, want %g", gas.State[iCh4], wantCh4)
	}

	// The gas derivative stream carries no information.
	for i, v := range gas.DState {
		if v != 0 {
			t.Errorf("gas dstate %d: have %g, want 0", i, v)
		}
	}
}

func TestUpdateDState(t *testing.T) {
	cmps := testComponents(t)
	cfg := DefaultCSTRConfig()
	cfg.VLiq = 1000
	r, err := NewAnaerobicCSTR(cmps, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Bind(zeroRateModel(cmps)); err != nil {
		t.Fatal(err)
	}
	r.In.SetConc("S_s", 10000)
	r.In.Flow = 100
	if err := r.InitState(); err != nil {
		t.Fatal(err)
	}
	y := make([]float64, len(r.State()))
	copy(y, r.State())
	iS, _ := cmps.Index("S_s")
	y[iS] = 2
	r.Eval(0, y)

	// The liquid derivative projection mirrors the state projection:
	// kg/m³/d to mg/L/d.
	want := (100*10 - 100*2) / 1000. * 1000
	if absDifferent(r.LiquidOut.DState[iS], want) {
		t.Errorf("projected derivative: have %g, want %g", r.LiquidOut.DState[iS], want)
	}
}
