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

import "fmt"

// CSTRConfig holds the physical configuration of an anaerobic CSTR.
type CSTRConfig struct {
	VLiq float64 // liquid-phase volume [m³]
	VGas float64 // headspace volume [m³]
	T    float64 // operating temperature [K]

	HeadspaceP     float64 // headspace pressure, if fixed [bar]
	ExternalP      float64 // external (atmospheric) pressure [bar]
	PipeResistance float64 // biogas extraction pipe resistance [m³/d/bar]
	PressureMode   PressureMode

	// RetainIDs are the IDs of components assumed to be ideally
	// retained in the reactor (e.g. by a membrane); FractionRetain is
	// the retained fraction for those components.
	RetainIDs      []string
	FractionRetain float64
}

// DefaultCSTRConfig returns the default reactor configuration,
// following Rosen & Jeppsson's BSM2 ADM1 implementation.
func DefaultCSTRConfig() CSTRConfig {
	return CSTRConfig{
		VLiq:           3400,
		VGas:           300,
		T:              308.15,
		HeadspaceP:     1.013,
		ExternalP:      1.013,
		PipeResistance: 5.0e4,
		PressureMode:   VariableHeadspacePressure,
		FractionRetain: 0.95,
	}
}

// AnaerobicCSTR is a continuously stirred tank reactor with a biogas
// headspace. Liquid-phase concentrations, headspace gas
// concentrations, and the liquid flow rate form one combined state
// vector integrated over time by an external integrator.
//
// A reactor instance is not safe for concurrent use: the derivative
// function and the output projector overwrite shared buffers in place
// and must be called strictly sequentially.
type AnaerobicCSTR struct {
	In        *Stream // influent
	GasOut    *Stream // biogas effluent
	LiquidOut *Stream // treated liquid effluent

	cmps *Components

	VLiq, VGas float64
	T          float64

	headspaceP     float64
	externalP      float64
	pipeResistance float64
	mode           PressureMode

	fRetain []float64
	exoVars []ExogenousVar

	model Model
	bound *binding

	state  []float64
	dstate []float64
	deriv  DerivFunc

	pGas float64 // cached headspace pressure [bar]
	qGas float64 // cached gas outflow [m³/d]
}

// binding holds constants derived once when a kinetic model is bound.
type binding struct {
	nGas       int
	gasIdx     []int     // component index of each biogas species
	gasRateIdx []int     // rate-vector index of each gas transfer process
	massToMol  []float64 // IMass/ChemMW of each biogas species [kmol/kg measured]
	pVapor     float64   // saturated vapor pressure at T [bar]
	sVapor     float64   // vapor concentration equivalent [M]
	stateKeys  []string
}

// NewAnaerobicCSTR creates a reactor over the given component set with
// the given configuration. The influent and the two effluent streams
// (gas, liquid) are created empty and exposed as In, GasOut, and
// LiquidOut.
func NewAnaerobicCSTR(cmps *Components, cfg CSTRConfig) (*AnaerobicCSTR, error) {
	if cfg.VLiq <= 0 || cfg.VGas <= 0 {
		return nil, fmt.Errorf("sanproc: reactor volumes must be positive; have V_liq=%g, V_gas=%g", cfg.VLiq, cfg.VGas)
	}
	if cfg.T <= 0 {
		return nil, fmt.Errorf("sanproc: temperature must be positive; have %g K", cfg.T)
	}
	fRetain := make([]float64, cmps.Len())
	for _, id := range cfg.RetainIDs {
		i, err := cmps.Index(id)
		if err != nil {
			return nil, err
		}
		fRetain[i] = cfg.FractionRetain
	}
	r := &AnaerobicCSTR{
		cmps:           cmps,
		VLiq:           cfg.VLiq,
		VGas:           cfg.VGas,
		T:              cfg.T,
		headspaceP:     cfg.HeadspaceP,
		externalP:      cfg.ExternalP,
		pipeResistance: cfg.PipeResistance,
		mode:           cfg.PressureMode,
		fRetain:        fRetain,
	}
	r.In = NewStream("influent", cmps, Liquid)
	r.GasOut = NewStream("biogas", cmps, Gas)
	r.LiquidOut = NewStream("effluent", cmps, Liquid)
	r.GasOut.T = cfg.T
	r.LiquidOut.T = cfg.T
	return r, nil
}

// Components returns the component set the reactor is defined over.
func (r *AnaerobicCSTR) Components() *Components { return r.cmps }

// HeadspaceP returns the headspace pressure [bar]: the configured
// value in fixed mode, or the last computed value in variable mode.
func (r *AnaerobicCSTR) HeadspaceP() float64 {
	if r.mode == FixedHeadspacePressure {
		return r.headspaceP
	}
	return r.pGas
}

// SetHeadspaceP sets the fixed-mode headspace pressure [bar].
func (r *AnaerobicCSTR) SetHeadspaceP(p float64) { r.headspaceP = p }

// ExternalP returns the external (atmospheric) pressure [bar].
func (r *AnaerobicCSTR) ExternalP() float64 { return r.externalP }

// SetExternalP sets the external (atmospheric) pressure [bar].
func (r *AnaerobicCSTR) SetExternalP(p float64) { r.externalP = p }

// PipeResistance returns the biogas extraction pipe resistance
// coefficient [m³/d/bar].
func (r *AnaerobicCSTR) PipeResistance() float64 { return r.pipeResistance }

// SetPipeResistance sets the biogas extraction pipe resistance
// coefficient [m³/d/bar].
func (r *AnaerobicCSTR) SetPipeResistance(k float64) { r.pipeResistance = k }

// Mode returns the active headspace pressure closure mode.
func (r *AnaerobicCSTR) Mode() PressureMode { return r.mode }

// SetMode selects the headspace pressure closure mode. It must be
// called before Bind; changing the mode after binding has no effect on
// the compiled derivative function.
func (r *AnaerobicCSTR) SetMode(m PressureMode) { r.mode = m }

// GasFlow returns the biogas outflow [m³/d] computed by the most
// recent derivative evaluation.
func (r *AnaerobicCSTR) GasFlow() float64 { return r.qGas }

// RetainFractions returns the per-component retention fractions.
func (r *AnaerobicCSTR) RetainFractions() []float64 { return r.fRetain }

// AddExogenousVar registers a time-varying exogenous input whose value
// is appended to the state passed into the kinetic model. It must be
// called before Bind.
func (r *AnaerobicCSTR) AddExogenousVar(v ExogenousVar) { r.exoVars = append(r.exoVars, v) }

// Model returns the bound kinetic model, or nil if none is bound.
func (r *AnaerobicCSTR) Model() Model { return r.model }

// Bind attaches a kinetic model to the reactor, derives the constants
// that depend on it (vapor pressure at T, biogas component index
// mapping, state labeling), and compiles the derivative function.
// Binding a nil model is allowed and selects the pure hydraulic
// flow-through fallback.
func (r *AnaerobicCSTR) Bind(model Model) error {
	b, err := r.deriveBinding(model)
	if err != nil {
		return err
	}
	r.model = model
	r.bound = b
	r.state = nil
	r.dstate = nil
	r.deriv = r.compileODE()
	return nil
}

// deriveBinding computes the immutable constant bundle for the given
// model without mutating the reactor.
func (r *AnaerobicCSTR) deriveBinding(model Model) (*binding, error) {
	pVapor := WaterPsat(r.T) / PaPerBar
	b := &binding{
		pVapor: pVapor,
		sVapor: gasLaw{T: r.T}.concentration(pVapor),
	}
	if r.mode == FixedHeadspacePressure && r.headspaceP <= pVapor {
		return nil, fmt.Errorf("sanproc: fixed headspace pressure %g bar does not exceed the saturated vapor pressure %g bar at %g K", r.headspaceP, pVapor, r.T)
	}
	keys := r.cmps.IDs()
	if model != nil {
		ids := model.BiogasIDs()
		rateIdx := model.BiogasRateIndices()
		if len(rateIdx) != len(ids) {
			return nil, fmt.Errorf("sanproc: model reports %d biogas components but %d gas transfer rate indices", len(ids), len(rateIdx))
		}
		gasIdx, err := r.cmps.Indices(ids)
		if err != nil {
			return nil, err
		}
		b.nGas = len(ids)
		b.gasIdx = gasIdx
		b.gasRateIdx = rateIdx
		b.massToMol = make([]float64, len(ids))
		iMass := r.cmps.IMass()
		chemMW := r.cmps.ChemMW()
		for i, ci := range gasIdx {
			b.massToMol[i] = iMass[ci] / chemMW[ci]
		}
		for _, id := range ids {
			keys = append(keys, id+"_gas")
		}
	}
	b.stateKeys = append(keys, "Q")
	return b, nil
}

// StateKeys returns the labels of the state vector entries: component
// IDs, biogas component IDs suffixed "_gas", then "Q".
func (r *AnaerobicCSTR) StateKeys() []string {
	if r.bound == nil {
		return nil
	}
	return r.bound.stateKeys
}

// InitState initializes the state vector from the influent stream's
// composition and flow: liquid concentrations converted from mg/L to
// kg/m³, headspace gas concentrations zero, and flow equal to the
// influent flow. The derivative buffer is zeroed. Bind must be called
// first.
func (r *AnaerobicCSTR) InitState() error {
	if r.bound == nil {
		return fmt.Errorf("sanproc: reactor must be bound to a model (or explicitly to nil) before state initialization")
	}
	n := r.cmps.Len()
	state := make([]float64, n+r.bound.nGas+1)
	for i, c := range r.In.Conc {
		state[i] = c / mgLPerKgM3 // mg/L to kg/m³
	}
	state[len(state)-1] = r.In.Flow
	r.state = state
	r.dstate = make([]float64, len(state))
	return nil
}

// State returns the current state vector. The returned slice is the
// live buffer shared with the integrator.
func (r *AnaerobicCSTR) State() []float64 { return r.state }

// DState returns the derivative buffer written by the most recent
// derivative evaluation.
func (r *AnaerobicCSTR) DState() []float64 { return r.dstate }

// SetState overwrites the reactor state. The vector length must equal
// the bound layout length (liquid components + biogas components + 1).
func (r *AnaerobicCSTR) SetState(state []float64) error {
	if r.bound == nil {
		return fmt.Errorf("sanproc: reactor must be bound before state assignment")
	}
	want := len(r.bound.stateKeys)
	if len(state) != want {
		return fmt.Errorf("sanproc: state must have length %d, not %d", want, len(state))
	}
	if r.state == nil {
		r.state = make([]float64, want)
		r.dstate = make([]float64, want)
	}
	copy(r.state, state)
	return nil
}

// StateMap returns the current state labeled by StateKeys, or nil if
// the state has not been initialized.
func (r *AnaerobicCSTR) StateMap() map[string]float64 {
	if r.state == nil {
		return nil
	}
	o := make(map[string]float64, len(r.state))
	for i, k := range r.bound.stateKeys {
		o[k] = r.state[i]
	}
	return o
}

// ODE returns the compiled derivative function, or nil if the reactor
// has not been bound.
func (r *AnaerobicCSTR) ODE() DerivFunc { return r.deriv }
