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

package simpleadm

import (
	"math"
	"testing"

	"github.com/sanmodel/sanproc"
)

const testTolerance = 1.e-10

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

// Test whether COD is conserved by the biological processes. The gas
// transfer processes move mass out of the liquid and are excluded.
func TestCODBalance(t *testing.T) {
	m, err := NewMechanism(DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	// COD per measured unit mass: organics are measured as COD,
	// inorganic carbon and water carry none.
	cod := [nComponents]float64{
		iSSu: 1, iSAc: 1, iSH2: 1, iSCh4: 1,
		iXSu: 1, iXAc: 1, iXH2: 1,
	}
	s := m.StoichioEval()
	for proc := iUptakeSu; proc <= iDecayH2; proc++ {
		sum := 0.
		for i := 0; i < nComponents; i++ {
			sum += s.At(proc, i) * cod[i]
		}
		if math.Abs(sum) > testTolerance {
			t.Errorf("process %d: COD imbalance %g", proc, sum)
		}
	}
}

// Test whether carbon is conserved by the biological processes.
func TestCarbonBalance(t *testing.T) {
	m, err := NewMechanism(DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	// Carbon content per measured unit mass [kg C/kg].
	carbon := [nComponents]float64{
		iSSu: cSu * mwC, iSAc: cAc * mwC, iSCh4: cCh4 * mwC,
		iSIC: 1,
		iXSu: cBio * mwC, iXAc: cBio * mwC, iXH2: cBio * mwC,
	}
	s := m.StoichioEval()
	for proc := iUptakeSu; proc <= iDecayH2; proc++ {
		sum := 0.
		for i := 0; i < nComponents; i++ {
			sum += s.At(proc, i) * carbon[i]
		}
		if math.Abs(sum) > testTolerance {
			t.Errorf("process %d: carbon imbalance %g", proc, sum)
		}
	}
}

func TestRates(t *testing.T) {
	p := DefaultParams()
	m, err := NewMechanism(p)
	if err != nil {
		t.Fatal(err)
	}
	state := make([]float64, nComponents+nGas+1)
	// Each substrate at its half-saturation concentration.
	state[iSSu] = p.KSSu
	state[iSAc] = p.KSAc
	state[iSH2] = p.KSH2
	state[iSCh4] = 0.01
	state[iSIC] = 0.04
	state[iXSu] = 1
	state[iXAc] = 2
	state[iXH2] = 0.5

	m.ParamsEval(state)
	r := m.RateEval(state)

	want := []float64{
		p.KMSu * 0.5 * 1,
		p.KMAc * 0.5 * 2,
		p.KMH2 * 0.5 * 0.5,
		p.KDec * 1,
		p.KDec * 2,
		p.KDec * 0.5,
		// Empty headspace: transfer is stripping at kLa·S.
		p.KLa * p.KSH2,
		p.KLa * 0.01,
		p.KLa * 0.04,
	}
	if len(r) != len(want) {
		t.Fatalf("have %d rates, want %d", len(r), len(want))
	}
	for i, w := range want {
		if different(r[i], w, testTolerance) {
			t.Errorf("process %d: have %g, want %g", i, r[i], w)
		}
	}
}

// Test that gas transfer vanishes when the liquid is at Henry's-law
// equilibrium with the headspace.
func TestGasTransferEquilibrium(t *testing.T) {
	p := DefaultParams()
	m, err := NewMechanism(p)
	if err != nil {
		t.Fatal(err)
	}
	state := make([]float64, nComponents+nGas+1)
	state[nComponents] = 1e-5 // S_h2_gas [M]
	state[nComponents+1] = 0.04
	state[nComponents+2] = 0.01
	m.ParamsEval(state)

	conv := []float64{codH2, codCh4, mwC}
	liq := []int{iSH2, iSCh4, iSIC}
	for i := 0; i < nGas; i++ {
		pPart := state[nComponents+i] * sanproc.RGas * p.T
		state[liq[i]] = conv[i] * m.kH[i] * pPart
	}
	r := m.RateEval(state)
	for i, proc := range m.BiogasRateIndices() {
		if math.Abs(r[proc]) > testTolerance {
			t.Errorf("%s transfer at equilibrium: have %g, want 0", m.BiogasIDs()[i], r[proc])
		}
	}
}

// Test that an exogenous temperature variable lowers gas solubility,
// increasing the stripping rate for the same dissolved concentration.
func TestExogenousTemperature(t *testing.T) {
	p := DefaultParams()
	m, err := NewMechanism(p)
	if err != nil {
		t.Fatal(err)
	}
	m.TemperatureIndex = nComponents + nGas + 1

	state := make([]float64, nComponents+nGas+2)
	state[iSCh4] = 0.05
	state[nComponents+1] = 0.04 // S_ch4_gas [M]

	state[len(state)-1] = p.T
	m.ParamsEval(state)
	rCool := m.RateEval(state)[iTransferCh4]

	state[len(state)-1] = p.T + 15
	m.ParamsEval(state)
	rWarm := m.RateEval(state)[iTransferCh4]

	if rWarm <= rCool {
		t.Errorf("stripping rate should increase with temperature: %g at %g K, %g at %g K",
			rCool, p.T, rWarm, p.T+15)
	}
}

func TestNewMechanismErrors(t *testing.T) {
	p := DefaultParams()
	p.T = 0
	if _, err := NewMechanism(p); err == nil {
		t.Error("zero temperature should be an error")
	}
	p = DefaultParams()
	p.FAcSu = 1.2
	if _, err := NewMechanism(p); err == nil {
		t.Error("acetate fraction above one should be an error")
	}
	p = DefaultParams()
	p.YAc = 1
	if _, err := NewMechanism(p); err == nil {
		t.Error("unit yield should be an error")
	}
}

// Test the mechanism coupled to a reactor: bind, initialize from an
// influent, and check the pressure buildup and biogas production signs
// of a single derivative evaluation.
func TestReactorCoupling(t *testing.T) {
	m, err := NewMechanism(DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	cfg := sanproc.DefaultCSTRConfig()
	cfg.RetainIDs = []string{"X_su", "X_ac", "X_h2"}
	r, err := sanproc.NewAnaerobicCSTR(m.Components(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Bind(m); err != nil {
		t.Fatal(err)
	}
	for id, conc := range map[string]float64{ // mg/L
		"S_su": 5000, "S_ac": 1000, "S_ch4": 50,
		"X_su": 500, "X_ac": 300, "X_h2": 100,
	} {
		if err := r.In.SetConc(id, conc); err != nil {
			t.Fatal(err)
		}
	}
	r.In.Flow = 170
	if err := r.InitState(); err != nil {
		t.Fatal(err)
	}

	d := r.Eval(0, r.State())
	for i, v := range d {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("state entry %d (%s): derivative is %g", i, r.StateKeys()[i], v)
		}
	}
	// Dissolved methane strips into the empty headspace.
	iCh4Gas := nComponents + 1
	if d[iCh4Gas] <= 0 {
		t.Errorf("d(S_ch4_gas)/dt: have %g, want > 0", d[iCh4Gas])
	}
	// Constant influent flow: the flow derivative passes through.
	if d[len(d)-1] != 0 {
		t.Errorf("dQ/dt: have %g, want 0", d[len(d)-1])
	}
}
