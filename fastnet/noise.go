// Copyright (c) 2025, The Fastnet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fastnet

import (
	"fmt"

	"github.com/goki/gosl/slrand"
	"github.com/goki/gosl/sltype"
	"github.com/goki/ki/kit"
)

// NoiseType is where stochastic noise is injected during integration.
type NoiseType int

//go:generate stringer -type=NoiseType

var KiT_NoiseType = kit.Enums.AddEnum(NoiseTypeN, kit.NotBitFlag, nil)

func (ev NoiseType) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *NoiseType) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

// The noise types
const (
	// NoNoise means no noise added -- the simulation is fully deterministic
	NoNoise NoiseType = iota

	// VmNoise means noise is added to the membrane potential each step
	VmNoise

	// GeNoise means noise is added to the excitatory input each step
	GeNoise

	NoiseTypeN
)

// NoiseDist is the distribution noise values are drawn from.
type NoiseDist int

//go:generate stringer -type=NoiseDist

var KiT_NoiseDist = kit.Enums.AddEnum(NoiseDistN, kit.NotBitFlag, nil)

func (ev NoiseDist) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *NoiseDist) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

// The noise distributions
const (
	// Uniform draws from [Mean-Var, Mean+Var)
	Uniform NoiseDist = iota

	// Gaussian draws from a normal distribution with given Mean and
	// standard deviation Var
	Gaussian

	NoiseDistN
)

// NoiseParams configures stochastic input noise.  Draws use a counter-based
// generator keyed by neuron index, with the counter advanced once per step:
// a draw depends only on (seed, step, neuron), never on thread count or the
// order neurons are processed in, so noisy runs remain bit-for-bit
// reproducible under any parallelism.  There is no shared generator state
// to contend on or lock.
type NoiseParams struct {
	Type NoiseType `desc:"where noise is injected (off, membrane potential, excitatory input)"`
	Dist NoiseDist `desc:"distribution noise values are drawn from"`
	Mean float32   `def:"0" desc:"mean of the distribution"`
	Var  float32   `def:"0.01" min:"0" desc:"width of the distribution: standard deviation for Gaussian, half-range for Uniform"`
}

func (np *NoiseParams) Defaults() {
	np.Type = NoNoise
	np.Dist = Gaussian
	np.Mean = 0
	np.Var = 0.01
}

func (np *NoiseParams) Update() {
}

// Validate returns an error if the noise configuration is out of domain.
func (np *NoiseParams) Validate() error {
	if np.Type < NoNoise || np.Type >= NoiseTypeN {
		return fmt.Errorf("noise type %d unknown", int(np.Type))
	}
	if np.Dist < Uniform || np.Dist >= NoiseDistN {
		return fmt.Errorf("noise distribution %d unknown", int(np.Dist))
	}
	if np.Var < 0 {
		return fmt.Errorf("noise Var must be non-negative, got %g", np.Var)
	}
	return nil
}

// Gen generates a noise value for neuron ni, advancing the local counter.
// The counter must be a per-neuron copy of the step counter, never shared
// between neurons.
func (np *NoiseParams) Gen(ni int, ctr *sltype.Uint2) float32 {
	switch np.Dist {
	case Uniform:
		return np.Mean + np.Var*(2*slrand.Float(ctr, uint32(ni))-1)
	case Gaussian:
		return np.Mean + np.Var*slrand.NormFloat(ctr, uint32(ni))
	}
	return np.Mean
}
