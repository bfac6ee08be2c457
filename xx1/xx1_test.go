// Copyright (c) 2025, The Fastnet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xx1

import (
	"testing"

	"github.com/chewxy/math32"
)

// difTol is the numerical difference tolerance for comparing vs. target values
const difTol = float32(1.0e-10)

func TestNoisyXX1(t *testing.T) {
	xp := Params{}
	xp.Defaults()

	tstx := []float32{-0.05, -0.04, -0.03, -0.02, -0.01, 0, .01, .02, .03, .04, .05, .1, .2, .3, .4, .5}
	cory := []float32{1.7735989e-14, 7.155215e-12, 2.8866178e-09, 1.1645374e-06, 0.00046864923, 0.094767615, 0.47916666, 0.65277773, 0.742268, 0.7967479, 0.8333333, 0.90909094, 0.95238096, 0.96774197, 0.9756098, 0.98039216}
	ny := make([]float32, len(tstx))

	for i := range tstx {
		ny[i] = xp.NoisyXX1(tstx[i])
		dif := math32.Abs(ny[i] - cory[i])
		if dif > difTol { // allow for small numerical diffs
			t.Errorf("NoisyXX1 err: idx: %v, x: %v, y: %v, cor y: %v, dif: %v\n", i, tstx[i], ny[i], cory[i], dif)
		}
	}
}

func TestMonotonicSaturation(t *testing.T) {
	xp := Params{}
	xp.Defaults()

	last := float32(-1)
	for x := float32(-0.1); x < 2.0; x += 0.01 {
		y := xp.NoisyXX1(x)
		if y < last {
			t.Errorf("NoisyXX1 not monotonic at x: %v, y: %v < previous: %v\n", x, y, last)
		}
		if y < 0 || y >= 1 {
			t.Errorf("NoisyXX1 out of [0,1) at x: %v, y: %v\n", x, y)
		}
		last = y
	}
}
