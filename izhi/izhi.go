// Copyright (c) 2025, The Fastnet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package izhi implements the Izhikevich spiking neuron equations: a quadratic
membrane potential update coupled to a slow recovery variable, with a hard
spike cut at a peak potential.  Four parameters (A, B, C, D) select the
firing regime; the named preset constructors reproduce the standard
cortical cell classes from Izhikevich (2003).

The model runs in mV / ms units with a nominal 1 ms step.  The potential
update is conventionally split into two half-steps per step for numerical
stability near the spike peak, which is how the integration step uses it.
*/
package izhi

import "fmt"

// Params are the Izhikevich model parameters.  Defaults are the
// regular-spiking cortical cell; use the preset constructors for
// other firing regimes.
type Params struct {
	A     float32 `def:"0.02" min:"0" desc:"recovery time scale -- smaller values produce slower recovery"`
	B     float32 `def:"0.2" desc:"sensitivity of the recovery variable to subthreshold fluctuations of the membrane potential"`
	C     float32 `def:"-65" desc:"post-spike reset value of the membrane potential (mV)"`
	D     float32 `def:"8" desc:"post-spike increment of the recovery variable"`
	VPeak float32 `def:"30" desc:"spike cut potential (mV) -- reaching this value fires the neuron and triggers the reset"`
}

func (ip *Params) Defaults() {
	*ip = RegularSpiking()
}

func (ip *Params) Update() {
}

// Validate returns an error if the parameters are outside the usable domain.
func (ip *Params) Validate() error {
	if ip.A < 0 {
		return fmt.Errorf("izhi.Params: A must be non-negative, got %g", ip.A)
	}
	if ip.VPeak <= ip.C {
		return fmt.Errorf("izhi.Params: VPeak (%g) must be above the reset potential C (%g)", ip.VPeak, ip.C)
	}
	return nil
}

// VmFmVm advances the membrane potential by one Euler substep of size dt
// given the current potential, recovery value, and input current:
// v += dt * (0.04 v^2 + 5 v + 140 - u + i)
func (ip *Params) VmFmVm(vm, rec, i, dt float32) float32 {
	return vm + dt*((0.04*vm+5)*vm+140-rec+i)
}

// RecFmVm advances the recovery variable by one Euler step of size dt:
// u += dt * a * (b v - u)
func (ip *Params) RecFmVm(rec, vm, dt float32) float32 {
	return rec + dt*ip.A*(ip.B*vm-rec)
}

// Fired returns true if the membrane potential has reached the spike cut.
func (ip *Params) Fired(vm float32) bool {
	return vm >= ip.VPeak
}

// InitRec returns the equilibrium recovery value for an initial potential,
// u = b v, the standard initialization.
func (ip *Params) InitRec(vm float32) float32 {
	return ip.B * vm
}

//////////////////////////////////////////////////////////////////////
//  Presets

// RegularSpiking is the standard excitatory cortical cell: adapting
// spike rate with increasing interspike intervals under constant input.
func RegularSpiking() Params {
	return Params{A: 0.02, B: 0.2, C: -65, D: 8, VPeak: 30}
}

// IntrinsicallyBursting fires an initial burst then single spikes.
func IntrinsicallyBursting() Params {
	return Params{A: 0.02, B: 0.2, C: -55, D: 4, VPeak: 30}
}

// Chattering fires rhythmic bursts of closely spaced spikes.
func Chattering() Params {
	return Params{A: 0.02, B: 0.2, C: -50, D: 2, VPeak: 30}
}

// FastSpiking is the typical inhibitory interneuron: sustained high-rate
// firing with negligible adaptation.
func FastSpiking() Params {
	return Params{A: 0.1, B: 0.2, C: -65, D: 2, VPeak: 30}
}

// LowThresholdSpiking is an inhibitory cell with rebound and adaptation.
func LowThresholdSpiking() Params {
	return Params{A: 0.02, B: 0.25, C: -65, D: 2, VPeak: 30}
}

// ThalamoCortical produces rebound bursts after hyperpolarization.
func ThalamoCortical() Params {
	return Params{A: 0.02, B: 0.25, C: -65, D: 0.05, VPeak: 30}
}

// Resonator oscillates subthreshold and fires selectively on resonant input.
func Resonator() Params {
	return Params{A: 0.1, B: 0.26, C: -65, D: 2, VPeak: 30}
}
