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

// Package simpleadm contains a simplified anaerobic digestion
// mechanism: three soluble substrates degraded by three biomass
// guilds, with hydrogen, methane, and carbon dioxide transferred to
// the biogas headspace.
package simpleadm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/sanmodel/sanproc"
)

// physical constants
const (
	// Molar masses [grams per mole]
	mwSu  = 180.16
	mwAc  = 60.05
	mwH2  = 2.016
	mwCh4 = 16.04
	mwCO2 = 44.01
	mwBio = 113.11 // C5H7NO2
	mwH2O = 18.02
	mwC   = 12.011

	// Chemical oxygen demand per mole [grams COD per mole]
	codSu  = 192.0 // C6H12O6 + 6O2
	codAc  = 64.0  // CH3COOH + 2O2
	codH2  = 16.0  // H2 + 1/2 O2
	codCh4 = 64.0  // CH4 + 2O2
	codBio = 160.0 // C5H7NO2 + 5O2

	// Carbon contents [kmol C per kg COD]
	cSu  = 0.0313
	cAc  = 0.0313
	cCh4 = 0.0156
	cBio = 0.0313
)

// Indices of individual components in the liquid concentration array.
const (
	iSSu int = iota
	iSAc
	iSH2
	iSCh4
	iSIC
	iXSu
	iXAc
	iXH2
	iH2O
)

// nComponents is the number of liquid components and nGas the number
// of biogas species tracked by this mechanism.
const (
	nComponents = 9
	nGas        = 3
)

// Indices of individual processes in the rate vector.
const (
	iUptakeSu int = iota
	iUptakeAc
	iUptakeH2
	iDecaySu
	iDecayAc
	iDecayH2
	iTransferH2
	iTransferCh4
	iTransferIC
	nProcesses
)

// Params holds the kinetic and physicochemical parameters of the
// mechanism. Uptake follows Monod kinetics; gas transfer follows
// two-film theory with van't Hoff-corrected Henry constants.
type Params struct {
	// Maximum specific uptake rates [kg COD substrate/kg COD
	// biomass/d] and half-saturation coefficients [kg COD/m³].
	KMSu, KSSu float64
	KMAc, KSAc float64
	KMH2, KSH2 float64

	// Biomass yields [kg COD biomass/kg COD substrate].
	YSu, YAc, YH2 float64

	// FAcSu is the acetate fraction of the non-biomass sugar uptake
	// products; the remainder goes to hydrogen.
	FAcSu float64

	// KDec is the first-order biomass decay constant [1/d].
	KDec float64

	// KLa is the overall gas transfer coefficient [1/d].
	KLa float64

	// T is the operating temperature [K] used for Henry constants
	// and headspace partial pressures unless an exogenous
	// temperature variable overrides it.
	T float64
}

// DefaultParams returns mesophilic parameter values following the
// ADM1 benchmark.
func DefaultParams() Params {
	return Params{
		KMSu: 30, KSSu: 0.5,
		KMAc: 8, KSAc: 0.15,
		KMH2: 35, KSH2: 7e-6,
		YSu: 0.10, YAc: 0.05, YH2: 0.06,
		FAcSu: 0.67,
		KDec:  0.02,
		KLa:   200,
		T:     308.15,
	}
}

// Henry constants at the 298.15 K reference [M/bar] and the
// corresponding van't Hoff enthalpies [J/mol].
const (
	tRefHenry = 298.15
	rJ        = 8.3145 // J/(mol K)

	kHRefH2  = 7.8e-4
	kHRefCh4 = 1.4e-3
	kHRefIC  = 3.5e-2

	dHH2  = -4180.
	dHCh4 = -14240.
	dHIC  = -19410.
)

// Mechanism fulfils the github.com/sanmodel/sanproc.Model interface.
type Mechanism struct {
	// TemperatureIndex is the position in the reactor state vector of
	// an exogenous temperature variable [K], or -1 to use the constant
	// Params.T.
	TemperatureIndex int

	p    Params
	cmps *sanproc.Components

	stoichio *mat.Dense
	rates    []float64
	kH       [nGas]float64 // h2, ch4, ic [M/bar]
	t        float64       // current temperature [K]
}

// NewComponents returns the component set this mechanism is defined
// over. Soluble and particulate organics are measured as COD and
// inorganic carbon as C.
func NewComponents() (*sanproc.Components, error) {
	return sanproc.NewComponents([]sanproc.Component{
		{ID: "S_su", IMass: mwSu / codSu, ChemMW: mwSu},
		{ID: "S_ac", IMass: mwAc / codAc, ChemMW: mwAc},
		{ID: "S_h2", IMass: mwH2 / codH2, ChemMW: mwH2},
		{ID: "S_ch4", IMass: mwCh4 / codCh4, ChemMW: mwCh4},
		{ID: "S_IC", IMass: mwCO2 / mwC, ChemMW: mwCO2},
		{ID: "X_su", IMass: mwBio / codBio, ChemMW: mwBio},
		{ID: "X_ac", IMass: mwBio / codBio, ChemMW: mwBio},
		{ID: "X_h2", IMass: mwBio / codBio, ChemMW: mwBio},
		{ID: "H2O", IMass: 1, ChemMW: mwH2O},
	})
}

// NewMechanism creates a Mechanism with the given parameters.
func NewMechanism(p Params) (*Mechanism, error) {
	if p.T <= 0 {
		return nil, fmt.Errorf("simpleadm: temperature must be positive, not %g K", p.T)
	}
	if p.FAcSu < 0 || p.FAcSu > 1 {
		return nil, fmt.Errorf("simpleadm: acetate fraction must be within [0, 1], not %g", p.FAcSu)
	}
	for _, y := range []float64{p.YSu, p.YAc, p.YH2} {
		if y < 0 || y >= 1 {
			return nil, fmt.Errorf("simpleadm: biomass yields must be within [0, 1), not %g", y)
		}
	}
	cmps, err := NewComponents()
	if err != nil {
		return nil, err
	}
	m := &Mechanism{
		TemperatureIndex: -1,
		p:                p,
		cmps:             cmps,
		rates:            make([]float64, nProcesses),
		t:                p.T,
	}
	m.stoichio = m.buildStoichio()
	m.refreshHenry(p.T)
	return m, nil
}

// buildStoichio assembles the process stoichiometry [measured kg per
// kg COD substrate]. Rows are processes, columns are components.
func (m *Mechanism) buildStoichio() *mat.Dense {
	p := m.p
	s := mat.NewDense(nProcesses, nComponents, nil)

	// Sugar uptake: acetate and hydrogen products plus new biomass;
	// the carbon carried away by hydrogen is released as CO2.
	fH2 := 1 - p.FAcSu
	s.Set(iUptakeSu, iSSu, -1)
	s.Set(iUptakeSu, iSAc, p.FAcSu*(1-p.YSu))
	s.Set(iUptakeSu, iSH2, fH2*(1-p.YSu))
	s.Set(iUptakeSu, iXSu, p.YSu)
	s.Set(iUptakeSu, iSIC, (cSu-cAc*p.FAcSu*(1-p.YSu)-cBio*p.YSu)*mwC)

	// Aceticlastic methanogenesis.
	s.Set(iUptakeAc, iSAc, -1)
	s.Set(iUptakeAc, iSCh4, 1-p.YAc)
	s.Set(iUptakeAc, iXAc, p.YAc)
	s.Set(iUptakeAc, iSIC, (cAc-cCh4*(1-p.YAc)-cBio*p.YAc)*mwC)

	// Hydrogenotrophic methanogenesis consumes inorganic carbon.
	s.Set(iUptakeH2, iSH2, -1)
	s.Set(iUptakeH2, iSCh4, 1-p.YH2)
	s.Set(iUptakeH2, iXH2, p.YH2)
	s.Set(iUptakeH2, iSIC, (-cCh4*(1-p.YH2)-cBio*p.YH2)*mwC)

	// Decay recycles biomass to the sugar pool.
	for i, ix := range []int{iXSu, iXAc, iXH2} {
		s.Set(iDecaySu+i, ix, -1)
		s.Set(iDecaySu+i, iSSu, 1)
		s.Set(iDecaySu+i, iSIC, (cBio-cSu)*mwC)
	}

	// Gas transfer removes the dissolved species from the liquid.
	s.Set(iTransferH2, iSH2, -1)
	s.Set(iTransferCh4, iSCh4, -1)
	s.Set(iTransferIC, iSIC, -1)
	return s
}

// refreshHenry updates the Henry constants to temperature T [K] using
// the van't Hoff relation.
func (m *Mechanism) refreshHenry(T float64) {
	m.kH[0] = kHRefH2 * math.Exp(dHH2/rJ*(1/tRefHenry-1/T))
	m.kH[1] = kHRefCh4 * math.Exp(dHCh4/rJ*(1/tRefHenry-1/T))
	m.kH[2] = kHRefIC * math.Exp(dHIC/rJ*(1/tRefHenry-1/T))
}

// Components returns the component set the mechanism is defined over.
func (m *Mechanism) Components() *sanproc.Components { return m.cmps }

// ParamsEval refreshes the temperature-dependent gas solubilities
// from the given reactor state vector.
func (m *Mechanism) ParamsEval(state []float64) {
	T := m.p.T
	if m.TemperatureIndex >= 0 && m.TemperatureIndex < len(state) {
		T = state[m.TemperatureIndex]
	}
	if T != m.t {
		m.t = T
		m.refreshHenry(T)
	}
}

// StoichioEval returns the cached stoichiometric matrix.
func (m *Mechanism) StoichioEval() *mat.Dense { return m.stoichio }

// RateEval returns the process rates [kg/m³/d measured units] for the
// given reactor state vector: liquid concentrations [kg/m³] followed
// by biogas molar concentrations [M] and flow.
func (m *Mechanism) RateEval(state []float64) []float64 {
	p := m.p
	r := m.rates

	monod := func(s, ks float64) float64 { return s / (ks + s) }
	r[iUptakeSu] = p.KMSu * monod(state[iSSu], p.KSSu) * state[iXSu]
	r[iUptakeAc] = p.KMAc * monod(state[iSAc], p.KSAc) * state[iXAc]
	r[iUptakeH2] = p.KMH2 * monod(state[iSH2], p.KSH2) * state[iXH2]

	r[iDecaySu] = p.KDec * state[iXSu]
	r[iDecayAc] = p.KDec * state[iXAc]
	r[iDecayH2] = p.KDec * state[iXH2]

	// Two-film gas transfer against Henry's-law equilibrium with the
	// headspace partial pressures [bar].
	sGas := state[nComponents : nComponents+nGas]
	pH2 := sGas[0] * sanproc.RGas * m.t
	pCh4 := sGas[1] * sanproc.RGas * m.t
	pIC := sGas[2] * sanproc.RGas * m.t
	r[iTransferH2] = p.KLa * (state[iSH2] - codH2*m.kH[0]*pH2)
	r[iTransferCh4] = p.KLa * (state[iSCh4] - codCh4*m.kH[1]*pCh4)
	r[iTransferIC] = p.KLa * (state[iSIC] - mwC*m.kH[2]*pIC)
	return r
}

// BiogasIDs returns the component IDs tracked in the biogas phase.
func (m *Mechanism) BiogasIDs() []string {
	return []string{"S_h2", "S_ch4", "S_IC"}
}

// BiogasRateIndices returns the rate-vector index of the gas transfer
// process for each biogas component, in BiogasIDs order.
func (m *Mechanism) BiogasRateIndices() []int {
	return []int{iTransferH2, iTransferCh4, iTransferIC}
}
