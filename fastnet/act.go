// Copyright (c) 2025, The Fastnet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fastnet

import (
	"github.com/emer/etable/minmax"
	"github.com/goki/gosl/sltype"
	"github.com/goki/ki/kit"

	"github.com/nsim/fastnet/izhi"
	"github.com/nsim/fastnet/xx1"
)

///////////////////////////////////////////////////////////////////////
//  act.go contains the model parameters and the per-neuron
//  integration kernels for each model variant

// Models is the closed set of neuron update rules.  The variant is chosen
// once at configuration time and selects a fixed code path for the whole
// run: the integration step hoists the switch out of its inner loop, so
// there is no per-neuron dispatch.
type Models int

//go:generate stringer -type=Models

var KiT_Models = kit.Enums.AddEnum(ModelsN, kit.NotBitFlag, nil)

func (ev Models) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *Models) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

// The model variants
const (
	// Izhi is the Izhikevich quadratic spiking model: membrane potential
	// with a coupled recovery variable, spike cut at a peak potential.
	// Inputs are currents added directly, without conductance smoothing.
	Izhi Models = iota

	// LIF is the leaky integrate-and-fire spiking model: exponential
	// decay toward rest, hard threshold and reset, integer refractory
	// period, and conductance smoothing of inputs.
	LIF

	// Rate is a rate-coded model: activation is the noisy-XX1 saturating
	// transfer of the integrated input, and the graded activation itself
	// is what propagates to receivers.
	Rate

	ModelsN
)

// ActParams contains all the parameters for computing neuron state updates,
// for all model variants.  Only the sub-params of the selected Model are
// consulted in the hot path; the rest are inert.
type ActParams struct {
	Model    Models        `desc:"which neuron update rule drives integration -- selects a fixed code path per run"`
	Izhi     izhi.Params   `view:"inline" desc:"Izhikevich model parameters (Model = Izhi)"`
	LIF      LIFParams     `view:"inline" desc:"leaky integrate-and-fire parameters (Model = LIF)"`
	XX1      xx1.Params    `view:"inline" desc:"noisy X/X+1 transfer function parameters (Model = Rate)"`
	Dt       DtParams      `view:"inline" desc:"time and rate constants for temporal integration"`
	Init     ActInitParams `view:"inline" desc:"initial values for key state variables"`
	Noise    NoiseParams   `view:"inline" desc:"stochastic input noise"`
	VmRange  minmax.F32    `view:"inline" desc:"clamp range for Vm in the LIF and Rate models -- the Izhi model is bounded by its spike cut instead, so runaway inputs surface as kernel failures rather than silent clipping"`
	SpikeThr float32       `def:"0.5" desc:"activation threshold for the firing predicate of the Rate model -- the spiking models fire on their own dynamics"`
}

func (ac *ActParams) Defaults() {
	ac.Model = Izhi
	ac.Izhi.Defaults()
	ac.LIF.Defaults()
	ac.XX1.Defaults()
	ac.Dt.Defaults()
	ac.Init.Defaults()
	ac.Noise.Defaults()
	ac.SpikeThr = 0.5
	ac.ModelDefaults()
	ac.Update()
}

// ModelDefaults sets the initial-state and Vm clamp-range defaults
// appropriate for the selected Model.  Call after changing Model.
func (ac *ActParams) ModelDefaults() {
	switch ac.Model {
	case Izhi:
		ac.Init.Vm = ac.Izhi.C
		ac.VmRange.Set(-90, 40)
	case LIF:
		ac.Init.Vm = ac.LIF.ERev
		ac.VmRange.Set(-90, -40)
	case Rate:
		ac.Init.Vm = 0.4
		ac.VmRange.Set(0, 2)
	}
}

// Update must be called after any changes to parameters.
func (ac *ActParams) Update() {
	ac.Izhi.Update()
	ac.LIF.Update()
	ac.XX1.Update()
	ac.Dt.Update()
	ac.Init.Update()
	ac.Noise.Update()
}

// Validate returns an ErrInvalidParameter error if any parameter of the
// selected model is outside its valid domain.
func (ac *ActParams) Validate() error {
	if ac.Model < Izhi || ac.Model >= ModelsN {
		return paramErrf("model %d unknown", int(ac.Model))
	}
	if ac.Dt.Integ <= 0 {
		return paramErrf("Dt.Integ (step size) must be positive, got %g", ac.Dt.Integ)
	}
	if ac.Dt.GTau < 1 {
		return paramErrf("Dt.GTau must be >= 1, got %g", ac.Dt.GTau)
	}
	if ac.Dt.AvgTau <= 0 {
		return paramErrf("Dt.AvgTau must be positive, got %g", ac.Dt.AvgTau)
	}
	switch ac.Model {
	case Izhi:
		if err := ac.Izhi.Validate(); err != nil {
			return paramErrf("%v", err)
		}
	case LIF:
		if err := ac.LIF.Validate(); err != nil {
			return paramErrf("%v", err)
		}
	case Rate:
		if ac.XX1.Gain <= 0 {
			return paramErrf("XX1.Gain must be positive, got %g", ac.XX1.Gain)
		}
		if ac.XX1.NVar <= 0 {
			return paramErrf("XX1.NVar must be positive, got %g", ac.XX1.NVar)
		}
		if ac.SpikeThr <= 0 {
			return paramErrf("SpikeThr must be positive, got %g", ac.SpikeThr)
		}
	}
	if err := ac.Noise.Validate(); err != nil {
		return paramErrf("%v", err)
	}
	if ac.VmRange.Max <= ac.VmRange.Min {
		return paramErrf("VmRange is empty: [%g, %g]", ac.VmRange.Min, ac.VmRange.Max)
	}
	return nil
}

///////////////////////////////////////////////////////////////////////
//  LIFParams

// LIFParams are the leaky integrate-and-fire parameters, in mV / ms units.
type LIFParams struct {
	ERev float32 `def:"-65" desc:"resting / leak reversal potential (mV) -- Vm decays toward this without input"`
	Thr  float32 `def:"-50" desc:"firing threshold (mV)"`
	VmR  float32 `def:"-65" desc:"post-spike reset potential (mV) -- Vm is held here through the refractory period"`
	Tr   int32   `def:"3" min:"0" desc:"refractory period in steps after a spike, during which Vm stays at VmR and inputs are ignored"`
	Tau  float32 `def:"10" min:"1" desc:"membrane time constant in steps -- how slowly Vm approaches its input-driven equilibrium"`
	Gain float32 `def:"10" desc:"gain on synaptic and external input, converting summed weights into membrane drive"`

	VmDt float32 `view:"-" json:"-" xml:"-" desc:"rate = 1 / Tau"`
}

func (lp *LIFParams) Defaults() {
	lp.ERev = -65
	lp.Thr = -50
	lp.VmR = -65
	lp.Tr = 3
	lp.Tau = 10
	lp.Gain = 10
	lp.Update()
}

func (lp *LIFParams) Update() {
	lp.VmDt = 1 / lp.Tau
}

// Validate returns an error if the parameters are outside the usable domain.
func (lp *LIFParams) Validate() error {
	if lp.Tau < 1 {
		return paramErrf("LIF.Tau must be >= 1, got %g", lp.Tau)
	}
	if lp.Tr < 0 {
		return paramErrf("LIF.Tr must be non-negative, got %d", lp.Tr)
	}
	if lp.Thr <= lp.VmR {
		return paramErrf("LIF.Thr (%g) must be above the reset potential VmR (%g)", lp.Thr, lp.VmR)
	}
	return nil
}

///////////////////////////////////////////////////////////////////////
//  DtParams

// DtParams are time and rate constants for temporal integration.
type DtParams struct {
	Integ  float32 `def:"1,0.5" min:"0" desc:"overall step size for numerical integration, in model time units -- 1 = one ms per step for the spiking models -- reduce for improved numerical stability if needed"`
	VmTau  float32 `def:"3.3" min:"1" desc:"membrane potential and activation time constant in steps for the Rate model"`
	GTau   float32 `def:"1.4" min:"1" desc:"time constant in steps for integrating synaptic conductance from raw accumulated input, damping step-to-step oscillation (LIF and Rate models; Izhi consumes raw input directly as current)"`
	AvgTau float32 `def:"200" desc:"time constant in spikes for the running ISIAvg average"`

	VmDt  float32 `view:"-" json:"-" xml:"-" desc:"rate = Integ / VmTau"`
	GDt   float32 `view:"-" json:"-" xml:"-" desc:"rate = Integ / GTau"`
	AvgDt float32 `view:"-" json:"-" xml:"-" desc:"rate = 1 / AvgTau"`
}

func (dp *DtParams) Defaults() {
	dp.Integ = 1
	dp.VmTau = 3.3
	dp.GTau = 1.4
	dp.AvgTau = 200
	dp.Update()
}

func (dp *DtParams) Update() {
	dp.VmDt = dp.Integ / dp.VmTau
	dp.GDt = dp.Integ / dp.GTau
	dp.AvgDt = 1 / dp.AvgTau
}

// GFmRaw integrates a synaptic conductance toward its raw input value,
// smoothing on GTau.
func (dp *DtParams) GFmRaw(geRaw float32, ge *float32) {
	*ge += dp.GDt * (geRaw - *ge)
}

///////////////////////////////////////////////////////////////////////
//  ActInitParams

// ActInitParams are initial values for key state variables, set by
// InitActs at the start of a run and used as the targets for DecayState.
// Vm is set per-model by ModelDefaults.
type ActInitParams struct {
	Vm  float32 `desc:"initial membrane potential"`
	Act float32 `def:"0" desc:"initial activation value"`
	Ge  float32 `def:"0" desc:"initial integrated conductance"`
}

func (ai *ActInitParams) Defaults() {
	ai.Vm = -65
	ai.Act = 0
	ai.Ge = 0
}

func (ai *ActInitParams) Update() {
}

///////////////////////////////////////////////////////////////////////
//  Init

// InitActs initializes all activation state for neuron ni to the Init
// values.  The Off flag is preserved; external input is cleared.
func (ac *ActParams) InitActs(st *State, ni int) {
	st.Vm[ni] = ac.Init.Vm
	if ac.Model == Izhi {
		st.Rec[ni] = ac.Izhi.InitRec(ac.Init.Vm)
	} else {
		st.Rec[ni] = 0
	}
	st.Ge[ni] = ac.Init.Ge
	st.GeRaw[ni] = 0
	st.Ext[ni] = 0
	st.Act[ni] = ac.Init.Act
	st.Spike[ni] = 0
	st.ISI[ni] = -1
	st.ISIAvg[ni] = -1
	st.ClearFlag(ni, NeurHasExt)
}

// DecayState decays activation state for neuron ni toward the Init values
// in proportion to decay (0 = no change, 1 = full reset), and clears the
// accumulated raw input.
func (ac *ActParams) DecayState(st *State, ni int, decay float32) {
	if decay > 0 {
		st.Vm[ni] -= decay * (st.Vm[ni] - ac.Init.Vm)
		st.Act[ni] -= decay * (st.Act[ni] - ac.Init.Act)
		st.Ge[ni] -= decay * (st.Ge[ni] - ac.Init.Ge)
	}
	st.GeRaw[ni] = 0
}

///////////////////////////////////////////////////////////////////////
//  Cycle kernels, one per model variant

// IzhiCycle advances neuron ni one step under the Izhikevich model.
// randctr must be a per-neuron copy of the step counter.
func (ac *ActParams) IzhiCycle(st *State, ni int, randctr *sltype.Uint2) {
	ge := st.GeRaw[ni] + st.Ext[ni]
	if ac.Noise.Type == GeNoise {
		ge += ac.Noise.Gen(ni, randctr)
	}
	st.Ge[ni] = ge

	vm := st.Vm[ni]
	rec := st.Rec[ni]
	if ac.Noise.Type == VmNoise {
		vm += ac.Noise.Gen(ni, randctr)
	}
	// two half steps on Vm for stability near the spike peak
	dt := ac.Dt.Integ
	vm = ac.Izhi.VmFmVm(vm, rec, ge, 0.5*dt)
	vm = ac.Izhi.VmFmVm(vm, rec, ge, 0.5*dt)
	rec = ac.Izhi.RecFmVm(rec, vm, dt)
	spiked := ac.Izhi.Fired(vm)
	if spiked {
		vm = ac.Izhi.C
		rec += ac.Izhi.D
		st.Spike[ni] = 1
		st.Act[ni] = 1
	} else {
		st.Spike[ni] = 0
		st.Act[ni] = 0
	}
	st.Vm[ni] = vm
	st.Rec[ni] = rec
	ac.ISIFmSpike(st, ni, spiked)
}

// LIFCycle advances neuron ni one step under the leaky integrate-and-fire
// model.  randctr must be a per-neuron copy of the step counter.
func (ac *ActParams) LIFCycle(st *State, ni int, randctr *sltype.Uint2) {
	geRaw := ac.LIF.Gain * (st.GeRaw[ni] + st.Ext[ni])
	if ac.Noise.Type == GeNoise {
		geRaw += ac.Noise.Gen(ni, randctr)
	}
	ge := st.Ge[ni]
	ac.Dt.GFmRaw(geRaw, &ge)
	st.Ge[ni] = ge

	vm := st.Vm[ni]
	spiked := false
	isi := st.ISI[ni]
	if isi >= 0 && isi < float32(ac.LIF.Tr) {
		vm = ac.LIF.VmR // refractory hold
	} else {
		vm += ac.Dt.Integ * ac.LIF.VmDt * ((ac.LIF.ERev - vm) + ge)
		if ac.Noise.Type == VmNoise {
			vm += ac.Noise.Gen(ni, randctr)
		}
		vm = ac.VmRange.ClipVal(vm)
		if vm >= ac.LIF.Thr {
			spiked = true
			vm = ac.LIF.VmR
		}
	}
	st.Vm[ni] = vm
	if spiked {
		st.Spike[ni] = 1
		st.Act[ni] = 1
	} else {
		st.Spike[ni] = 0
		st.Act[ni] = 0
	}
	ac.ISIFmSpike(st, ni, spiked)
}

// RateCycle advances neuron ni one step under the rate-coded model.
// randctr must be a per-neuron copy of the step counter.
func (ac *ActParams) RateCycle(st *State, ni int, randctr *sltype.Uint2) {
	geRaw := st.GeRaw[ni] + st.Ext[ni]
	if ac.Noise.Type == GeNoise {
		geRaw += ac.Noise.Gen(ni, randctr)
	}
	ge := st.Ge[ni]
	ac.Dt.GFmRaw(geRaw, &ge)
	st.Ge[ni] = ge

	vm := st.Vm[ni]
	vm += ac.Dt.VmDt * (ge - vm)
	if ac.Noise.Type == VmNoise {
		vm += ac.Noise.Gen(ni, randctr)
	}
	vm = ac.VmRange.ClipVal(vm)
	st.Vm[ni] = vm

	nwAct := ac.XX1.NoisyXX1(ge - ac.XX1.Thr)
	act := st.Act[ni]
	act += ac.Dt.VmDt * (nwAct - act)
	st.Act[ni] = act
	spiked := act >= ac.SpikeThr
	if spiked {
		st.Spike[ni] = 1
	} else {
		st.Spike[ni] = 0
	}
	ac.ISIFmSpike(st, ni, spiked)
}

// ISIFmSpike updates the inter-spike-interval tracking from this step's
// firing.  ISI counts up from 0 after each spike; ISIAvg integrates
// intervals on AvgTau once a first full interval exists.
func (ac *ActParams) ISIFmSpike(st *State, ni int, spiked bool) {
	isi := st.ISI[ni]
	if spiked {
		if isi >= 0 {
			if st.ISIAvg[ni] < 0 {
				st.ISIAvg[ni] = isi
			} else {
				st.ISIAvg[ni] += ac.Dt.AvgDt * (isi - st.ISIAvg[ni])
			}
		}
		st.ISI[ni] = 0
	} else if isi >= 0 {
		st.ISI[ni] = isi + 1
	}
}
