// Copyright (c) 2025, The Fastnet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fastnet

import (
	"github.com/goki/ki/kit"
)

// RunStatus is the lifecycle state of a Run
type RunStatus int

//go:generate stringer -type=RunStatus

var KiT_RunStatus = kit.Enums.AddEnum(RunStatusN, kit.NotBitFlag, nil)

func (ev RunStatus) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *RunStatus) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// Idle is a run that has been configured but not started
	Idle RunStatus = iota

	// Running is a run between Start and completion
	Running

	// Completed is a run that finished all of its configured steps
	Completed

	// Failed is a run stopped by a step error, which is preserved in Err
	// along with all results up to the failing step
	Failed

	RunStatusN
)

// Run drives a network through a fixed number of integration steps,
// tracking lifecycle status, recording state on a stride, and preserving
// results up to the point of any failure.  A Run owns its own Time, so
// independent runs of the same network do not share counters.
type Run struct {
	Net     *Network `desc:"the network to run -- must be Built"`
	Steps   int      `min:"0" desc:"total number of steps to run"`
	RndSeed int64    `desc:"seed for the step-keyed random stream -- runs with the same seed produce identical results"`
	Rec     Recorder `view:"add-fields" desc:"state recording for this run"`
	Time    Time     `desc:"step and time counters for this run"`

	Status    RunStatus `inactive:"+" desc:"lifecycle state"`
	StepsDone int       `inactive:"+" desc:"number of steps completed so far"`
	Err       error     `view:"-" desc:"the step error that moved the run to Failed"`
}

// NewRun returns a run of the given network for the given number of
// steps, with default recording
func NewRun(nt *Network, steps int) *Run {
	rn := &Run{Net: nt, Steps: steps}
	rn.Rec.Defaults()
	return rn
}

// Validate returns an error wrapping ErrInvalidParameter if the run
// configuration cannot be started
func (rn *Run) Validate() error {
	if rn.Net == nil {
		return paramErrf("run has no network")
	}
	if rn.Steps < 0 {
		return paramErrf("steps must be non-negative, got %d", rn.Steps)
	}
	if !rn.Net.IsBuilt() {
		return paramErrf("network %v has not been built", rn.Net.Nm)
	}
	return nil
}

// Start moves the run from Idle (or a finished state) to Running: it
// seeds the random stream, resets the counters, reinitializes network
// state, and configures the recorder.  Apply external inputs after
// Start; they persist across steps until cleared.  A zero-step run
// completes immediately, leaving network state untouched with an empty
// recording.  Returns an error and leaves the run unstarted if the
// configuration is invalid.
func (rn *Run) Start() error {
	if rn.Status == Running {
		return paramErrf("run is already running")
	}
	if err := rn.Validate(); err != nil {
		return err
	}
	rn.Err = nil
	rn.StepsDone = 0
	if err := rn.Rec.Configure(rn.Net, rn.Steps); err != nil {
		return err
	}
	if rn.Steps == 0 {
		rn.Status = Completed
		return nil
	}
	rn.Time.Defaults()
	rn.Time.Seed(rn.RndSeed)
	rn.Time.Reset()
	rn.Net.InitActs()
	rn.Status = Running
	return nil
}

// Step advances the run by one integration step.  On a step error the
// run transitions to Failed: StepsDone keeps the count of fully
// completed steps and all rows recorded before the failure are
// preserved.  Returns an error if the run is not Running.
func (rn *Run) Step() error {
	if rn.Status != Running {
		return paramErrf("run is not running (status %v)", rn.Status)
	}
	step := rn.Time.Step // index of the step about to execute
	if err := rn.Net.Cycle(&rn.Time); err != nil {
		rn.Err = err
		rn.Status = Failed
		return err
	}
	rn.StepsDone = step + 1
	rn.Rec.Record(rn.Net, step)
	if rn.StepsDone >= rn.Steps {
		rn.Status = Completed
	}
	return nil
}

// Go runs the full configured number of steps, starting the run first if
// it is not already Running, and returns when the run is Completed or
// Failed.  Calling Go on a finished run starts it over.
func (rn *Run) Go() error {
	if rn.Status != Running {
		if err := rn.Start(); err != nil {
			return err
		}
	}
	for rn.Status == Running {
		if err := rn.Step(); err != nil {
			return err
		}
	}
	return nil
}

// State returns the current status, the number of completed steps, and
// the error from a failed step (nil otherwise)
func (rn *Run) State() (RunStatus, int, error) {
	return rn.Status, rn.StepsDone, rn.Err
}
