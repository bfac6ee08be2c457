// Copyright (c) 2025, The Fastnet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fastnet

import "github.com/goki/gosl/slrand"

// fastnet.Time contains the step counters and simulated time for running
// a network, plus the shared counter for the step-keyed random stream.
type Time struct {
	Step        int     `desc:"number of integration steps performed since the last reset"`
	Time        float32 `desc:"accumulated amount of time the network has been running, in simulation-time (not real world time), in seconds"`
	TimePerStep float32 `def:"0.001" desc:"amount of simulated time to increment per step"`

	RandCtr slrand.Counter `view:"-" desc:"counter for the step-keyed random stream -- advanced by a fixed amount once per step, so stochastic draws depend only on (seed, step, neuron) and are identical across thread counts"`
}

// NewTime returns a new Time struct with default parameters
func NewTime() *Time {
	tm := &Time{}
	tm.Defaults()
	return tm
}

// Defaults sets default values
func (tm *Time) Defaults() {
	tm.TimePerStep = 0.001
}

// Seed seeds the step-keyed random stream and resets its counter.
// Runs started from the same seed consume identical streams.
func (tm *Time) Seed(seed int64) {
	tm.RandCtr.Seed(uint32(seed))
}

// Reset resets the counters back to zero and the random stream back to
// its seeded origin
func (tm *Time) Reset() {
	tm.Step = 0
	tm.Time = 0
	if tm.TimePerStep == 0 {
		tm.Defaults()
	}
	tm.RandCtr.Reset()
}

// StepInc increments the counters after one integration step.  The random
// counter always advances by the same amount regardless of how many draws
// the step consumed, keeping the stream aligned to step boundaries.
func (tm *Time) StepInc() {
	tm.Step++
	tm.Time += tm.TimePerStep
	tm.RandCtr.Add(2)
}
