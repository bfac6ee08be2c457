// Copyright (c) 2025, The Fastnet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package xx1 provides the noisy X-over-X-plus-1 saturating transfer function
used by the rate-coded neuron model: a sigmoid-like response that is roughly
linear above threshold and saturates toward 1 for large inputs.

The raw x/(x+1) function has a hard corner at threshold.  Convolving it with
a gaussian noise kernel rounds that corner off, producing graded output for
inputs slightly below threshold.  The convolution is approximated with a
hand-optimized piecewise function (sigmoid tail below zero, linear
interpolation just above, gain-corrected x/(x+1) beyond), so no lookup
table is needed and the function is cheap enough for the per-neuron
integration hot path.
*/
package xx1

import "github.com/chewxy/math32"

// Params holds the noisy X/(X+1) transfer function parameters.
// Derived fields are computed by Update and must be refreshed after
// any change to the primary parameters.
type Params struct {
	Thr          float32 `def:"0.5" desc:"threshold on the input drive below which output is (nearly) zero"`
	Gain         float32 `def:"80,100,40,20" min:"0" desc:"multiplier on the input drive above threshold -- higher values produce a sharper transition to saturation"`
	NVar         float32 `def:"0.005,0.01" min:"0" desc:"variance of the gaussian noise kernel convolved with x/(x+1) -- determines how rounded the function is near threshold -- this is a fixed smoothing of the function, not stochastic noise"`
	SigMult      float32 `def:"0.33" view:"-" json:"-" xml:"-" desc:"multiplier on the sigmoid used below threshold"`
	SigMultPow   float32 `def:"0.8" view:"-" json:"-" xml:"-" desc:"power for computing SigMultEff as a function of gain * nvar"`
	SigGain      float32 `def:"3" view:"-" json:"-" xml:"-" desc:"gain multiplier on (x - thr) for the below-threshold sigmoid"`
	InterpRange  float32 `def:"0.01" view:"-" json:"-" xml:"-" desc:"range above zero over which to interpolate between the sigmoid and gain-corrected regimes"`
	GainCorRange float32 `def:"10" view:"-" json:"-" xml:"-" desc:"range in units of nvar over which to apply the gain correction that compensates for the convolution"`
	GainCor      float32 `def:"0.1" view:"-" json:"-" xml:"-" desc:"gain correction multiplier"`

	SigGainNVar float32 `view:"-" json:"-" xml:"-" desc:"SigGain / NVar"`
	SigMultEff  float32 `view:"-" json:"-" xml:"-" desc:"overall multiplier on the sigmoidal component below threshold = SigMult * (Gain * NVar)^SigMultPow"`
	SigValAt0   float32 `view:"-" json:"-" xml:"-" desc:"0.5 * SigMultEff -- value at x = 0, anchors the interpolation"`
	InterpVal   float32 `view:"-" json:"-" xml:"-" desc:"function value at InterpRange minus SigValAt0 -- slope of the interpolation"`
}

func (xp *Params) Update() {
	xp.SigGainNVar = xp.SigGain / xp.NVar
	xp.SigMultEff = xp.SigMult * math32.Pow(xp.Gain*xp.NVar, xp.SigMultPow)
	xp.SigValAt0 = 0.5 * xp.SigMultEff
	xp.InterpVal = xp.XX1GainCor(xp.InterpRange) - xp.SigValAt0
}

func (xp *Params) Defaults() {
	xp.Thr = 0.5
	xp.Gain = 100
	xp.NVar = 0.005
	xp.SigMult = 0.33
	xp.SigMultPow = 0.8
	xp.SigGain = 3.0
	xp.InterpRange = 0.01
	xp.GainCorRange = 10.0
	xp.GainCor = 0.1
	xp.Update()
}

// XX1 computes the basic x/(x+1) saturating function.
func (xp *Params) XX1(x float32) float32 { return x / (x + 1) }

// XX1GainCor computes x/(x+1) with a gain correction applied within
// GainCorRange of threshold, compensating for the noise convolution.
func (xp *Params) XX1GainCor(x float32) float32 {
	gainCorFact := (xp.GainCorRange - (x / xp.NVar)) / xp.GainCorRange
	if gainCorFact < 0 {
		return xp.XX1(xp.Gain * x)
	}
	newGain := xp.Gain * (1 - xp.GainCor*gainCorFact)
	return xp.XX1(newGain * x)
}

// NoisyXX1 computes the noisy x/(x+1) transfer of x, where x is the input
// drive in threshold-offset units (x = 0 at threshold).  Directly computes
// a close approximation to x/(x+1) convolved with a gaussian of variance
// NVar, without a lookup table.  The approximation is accurate for the
// standard parameter range (NVar .01 or less; larger NVar with high gains
// drifts, but such configurations are not used here).
func (xp *Params) NoisyXX1(x float32) float32 {
	if x < 0 { // sigmoidal tail
		return xp.SigMultEff / (1 + math32.Exp(-(x * xp.SigGainNVar)))
	} else if x < xp.InterpRange {
		interp := 1 - ((xp.InterpRange - x) / xp.InterpRange)
		return xp.SigValAt0 + interp*xp.InterpVal
	} else {
		return xp.XX1GainCor(x)
	}
}
