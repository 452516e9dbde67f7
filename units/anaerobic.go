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

package units

import (
	"fmt"

	"github.com/sanmodel/sanproc"
)

// Component IDs used by the anaerobic treatment units.
const (
	AmmoniaID      = "NH3"
	NonAmmoniaID   = "NonNH3"
	MethaneID      = "CH4"
	NitrousOxideID = "N2O"
)

// mwN2OPerN converts N mass to N2O mass.
const mwN2OPerN = 44. / 28.

// GasEmissions holds the gaseous outputs of an anaerobic treatment
// unit [kg/d]. Biogas methane is the captured fraction; fugitive
// methane and nitrous oxide escape to the atmosphere.
type GasEmissions struct {
	BiogasCH4   float64
	FugitiveCH4 float64
	N2O         float64
}

// BaffledReactorConfig parameterizes an anaerobic baffled reactor.
type BaffledReactorConfig struct {
	// DegradedIDs are the components degraded at the same removal
	// fraction as COD.
	DegradedIDs []string `toml:"degraded_ids"`

	// CaptureBiogas selects whether produced methane is collected as
	// biogas or escapes as fugitive CH4.
	CaptureBiogas bool `toml:"capture_biogas"`

	// N2OEmission enables fugitive N2O from the degraded nitrogen.
	N2OEmission bool `toml:"n2o_emission"`

	CODRemoval float64 `toml:"cod_removal"` // fraction of COD removed
	NRemoval   float64 `toml:"n_removal"`   // fraction of total N removed

	// MCFDecay is the methane correction factor and MaxCH4Emission
	// the maximum methane emission [kg CH4/kg COD degraded].
	MCFDecay       float64 `toml:"mcf_decay"`
	MaxCH4Emission float64 `toml:"max_ch4_emission"`

	NMaxDecay  float64 `toml:"n_max_decay"`  // maximum fraction of degraded N denitrified
	N2OEFDecay float64 `toml:"n2o_ef_decay"` // N2O emission factor [kg N2O-N/kg N denitrified]
}

// DefaultBaffledReactorConfig returns baffled reactor parameters for a
// multi-compartment reactor treating domestic wastewater.
func DefaultBaffledReactorConfig() BaffledReactorConfig {
	return BaffledReactorConfig{
		DegradedIDs:    []string{"OtherSS"},
		CaptureBiogas:  true,
		CODRemoval:     0.7,
		NRemoval:       0.05,
		MCFDecay:       0.4,
		MaxCH4Emission: 0.25,
		NMaxDecay:      0.8,
		N2OEFDecay:     0.005,
	}
}

// BaffledReactor is an anaerobic baffled reactor with first-order
// estimates of biogas production and fugitive gas emissions.
type BaffledReactor struct {
	cfg BaffledReactorConfig
}

// NewBaffledReactor creates a baffled reactor with the given
// configuration.
func NewBaffledReactor(cfg BaffledReactorConfig) (*BaffledReactor, error) {
	if err := checkFraction("COD removal", cfg.CODRemoval); err != nil {
		return nil, err
	}
	if err := checkFraction("N removal", cfg.NRemoval); err != nil {
		return nil, err
	}
	return &BaffledReactor{cfg: cfg}, nil
}

// Run treats the influent waste, returning the treated effluent and
// the gaseous emissions.
func (u *BaffledReactor) Run(in *WasteFlow) (*WasteFlow, GasEmissions, error) {
	cfg := u.cfg
	treated := in.Copy()

	codDeg := in.CODLoad() * cfg.CODRemoval // kg/d
	treated.COD *= 1 - cfg.CODRemoval
	for _, id := range cfg.DegradedIDs {
		treated.Mass[id] *= 1 - cfg.CODRemoval
	}

	var gas GasEmissions
	ch4 := codDeg * cfg.MCFDecay * cfg.MaxCH4Emission
	if cfg.CaptureBiogas {
		gas.BiogasCH4 = ch4
	} else {
		gas.FugitiveCH4 = ch4
	}

	nLoss := in.NLoad() * cfg.NRemoval
	nh3Rmd, otherRmd := sanproc.AllocateNRemoval(nLoss, in.Mass[AmmoniaID])
	treated.Mass[AmmoniaID] = in.Mass[AmmoniaID] - nh3Rmd
	treated.Mass[NonAmmoniaID] = in.Mass[NonAmmoniaID] - otherRmd
	if treated.Mass[NonAmmoniaID] < 0 {
		return nil, gas, fmt.Errorf("units: nitrogen removal %g kg/d exceeds the influent NH3 and NonNH3 inventory", nLoss)
	}
	if cfg.N2OEmission {
		gas.N2O = nLoss * cfg.NMaxDecay * cfg.N2OEFDecay * mwN2OPerN
	}
	return treated, gas, nil
}

// DigestionConfig parameterizes decay-based anaerobic digestion.
type DigestionConfig struct {
	DegradedIDs   []string `toml:"degraded_ids"`
	CaptureBiogas bool     `toml:"capture_biogas"`
	N2OEmission   bool     `toml:"n2o_emission"`

	Tau        float64 `toml:"tau"` // residence time [d]
	CODRemoval float64 `toml:"cod_removal"`

	MCFDecay       float64 `toml:"mcf_decay"`
	MaxCH4Emission float64 `toml:"max_ch4_emission"`

	// DecayKN is the first-order nitrogen loss constant [1/yr].
	DecayKN    float64 `toml:"decay_k_n"`
	NMaxDecay  float64 `toml:"n_max_decay"`
	N2OEFDecay float64 `toml:"n2o_ef_decay"`
}

// DefaultDigestionConfig returns digestion parameters for unheated
// small-scale digesters.
func DefaultDigestionConfig() DigestionConfig {
	return DigestionConfig{
		DegradedIDs:    []string{"OtherSS"},
		CaptureBiogas:  true,
		Tau:            60,
		CODRemoval:     0.86,
		MCFDecay:       1,
		MaxCH4Emission: 0.25,
		DecayKN:        0.693,
		NMaxDecay:      0.8,
		N2OEFDecay:     0.005,
	}
}

// Digestion is anaerobic digestion of wastes with first-order decay
// estimates of methane production and nitrogen loss.
type Digestion struct {
	cfg DigestionConfig
}

// NewDigestion creates a digestion unit with the given configuration.
func NewDigestion(cfg DigestionConfig) (*Digestion, error) {
	if err := checkFraction("COD removal", cfg.CODRemoval); err != nil {
		return nil, err
	}
	if cfg.Tau <= 0 {
		return nil, fmt.Errorf("units: residence time must be positive, not %g d", cfg.Tau)
	}
	return &Digestion{cfg: cfg}, nil
}

// Run digests the influent waste, returning the treated effluent and
// the gaseous emissions.
func (u *Digestion) Run(in *WasteFlow) (*WasteFlow, GasEmissions, error) {
	cfg := u.cfg
	treated := in.Copy()

	codDeg := in.CODLoad() * cfg.CODRemoval
	treated.COD *= 1 - cfg.CODRemoval
	for _, id := range cfg.DegradedIDs {
		treated.Mass[id] *= 1 - cfg.CODRemoval
	}

	var gas GasEmissions
	ch4 := codDeg * cfg.MCFDecay * cfg.MaxCH4Emission
	if cfg.CaptureBiogas {
		gas.BiogasCH4 = ch4
	} else {
		gas.FugitiveCH4 = ch4
	}

	if cfg.N2OEmission {
		nLossFrac := sanproc.FirstOrderDecay(cfg.DecayKN, cfg.Tau/365, cfg.NMaxDecay)
		nLoss := nLossFrac * in.NLoad()
		nh3Rmd, otherRmd := sanproc.AllocateNRemoval(nLoss, in.Mass[AmmoniaID])
		treated.Mass[AmmoniaID] = in.Mass[AmmoniaID] - nh3Rmd
		treated.Mass[NonAmmoniaID] = in.Mass[NonAmmoniaID] - otherRmd
		gas.N2O = nLoss * cfg.N2OEFDecay * mwN2OPerN
	}
	return treated, gas, nil
}

// SludgeDigesterConfig parameterizes a conventional sludge digester.
type SludgeDigesterConfig struct {
	// SubstrateIDs and BiomassIDs classify the degradable components:
	// substrates contribute COD through the stream COD, active biomass
	// through the biomass-to-COD factor.
	SubstrateIDs []string `toml:"substrate_ids"`
	BiomassIDs   []string `toml:"biomass_ids"`

	HRT float64 `toml:"hrt"` // hydraulic retention time [d]
	SRT float64 `toml:"srt"` // solids retention time [d]
	T   float64 `toml:"t"`   // digester temperature [K]

	Y float64 `toml:"y"` // biomass yield [kg VSS/kg BOD]
	B float64 `toml:"b"` // endogenous decay coefficient [1/d]

	OrganicsConversion float64 `toml:"organics_conversion"` // fraction of organics converted
	CODFactor          float64 `toml:"cod_factor"`          // biomass-to-COD factor [kg COD/kg VSS]

	MethaneYield    float64 `toml:"methane_yield"`    // methane yield from digested organics [m³/kg COD]
	MethaneFraction float64 `toml:"methane_fraction"` // methane fraction of the biogas, remainder CO2
}

// DefaultSludgeDigesterConfig returns mesophilic sludge digester
// parameters following Metcalf & Eddy.
func DefaultSludgeDigesterConfig() SludgeDigesterConfig {
	return SludgeDigesterConfig{
		HRT:                20,
		SRT:                20,
		T:                  35 + 273.15,
		Y:                  0.08,
		B:                  0.03,
		OrganicsConversion: 0.7,
		CODFactor:          1.42,
		MethaneYield:       0.4,
		MethaneFraction:    0.65,
	}
}

// SludgeDigesterBiogas holds the volumetric biogas production of a
// sludge digester [m³/d].
type SludgeDigesterBiogas struct {
	CH4 float64
	CO2 float64
}

// SludgeDigester is a conventional anaerobic digester for wastewater
// treatment sludge.
type SludgeDigester struct {
	cfg SludgeDigesterConfig
}

// NewSludgeDigester creates a sludge digester with the given
// configuration.
func NewSludgeDigester(cfg SludgeDigesterConfig) (*SludgeDigester, error) {
	if cfg.SRT <= 0 {
		return nil, fmt.Errorf("units: solids retention time must be positive, not %g d", cfg.SRT)
	}
	if err := checkFraction("organics conversion", cfg.OrganicsConversion); err != nil {
		return nil, err
	}
	if cfg.MethaneFraction <= 0 || cfg.MethaneFraction > 1 {
		return nil, fmt.Errorf("units: methane fraction must be within (0, 1], not %g", cfg.MethaneFraction)
	}
	return &SludgeDigester{cfg: cfg}, nil
}

// Run digests the influent sludge, returning the digested sludge and
// the biogas production estimated from the Metcalf & Eddy digestion
// yield.
func (u *SludgeDigester) Run(in *WasteFlow) (*WasteFlow, SludgeDigesterBiogas, error) {
	cfg := u.cfg
	digested := in.Copy()

	// Biomass-derived COD is accounted separately from the stream COD,
	// which covers the substrates.
	biomassCOD := 0.
	for _, id := range cfg.BiomassIDs {
		biomassCOD += in.Mass[id] * cfg.CODFactor
	}
	substrateCOD := in.CODLoad()
	totCOD := biomassCOD + substrateCOD // kg/d

	digestionYield := cfg.Y * totCOD * cfg.OrganicsConversion / (1 + cfg.B*cfg.SRT)
	methaneVol := cfg.MethaneYield*totCOD*cfg.OrganicsConversion - cfg.CODFactor*digestionYield
	if methaneVol < 0 {
		return nil, SludgeDigesterBiogas{}, fmt.Errorf("units: negative methane production %g m³/d; digestion yield exceeds conversion", methaneVol)
	}

	for _, ids := range [][]string{cfg.SubstrateIDs, cfg.BiomassIDs} {
		for _, id := range ids {
			digested.Mass[id] *= 1 - cfg.OrganicsConversion
		}
	}
	digested.COD *= 1 - cfg.OrganicsConversion

	return digested, SludgeDigesterBiogas{
		CH4: methaneVol,
		CO2: methaneVol / cfg.MethaneFraction * (1 - cfg.MethaneFraction),
	}, nil
}

func checkFraction(name string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("units: %s must be within [0, 1], not %g", name, v)
	}
	return nil
}
