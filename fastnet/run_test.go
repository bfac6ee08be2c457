// Copyright (c) 2025, The Fastnet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fastnet

import (
	"errors"
	"testing"

	"github.com/chewxy/math32"
	"github.com/emer/etable/etensor"
)

func TestRunZeroSteps(t *testing.T) {
	nt := buildTestNet(t, 8, 2, true)
	defer nt.StopThreads()
	runSteps(t, nt, 3, 5) // leave the network mid-activity
	marker := nt.State.Vm[0]

	rn := NewRun(nt, 0)
	if rn.Status != Idle {
		t.Errorf("new run status: %v\n", rn.Status)
	}
	if err := rn.Start(); err != nil {
		t.Fatalf("start failed: %v\n", err)
	}
	status, done, err := rn.State()
	if status != Completed || done != 0 || err != nil {
		t.Errorf("zero-step run state: %v %v %v\n", status, done, err)
	}
	if rn.Rec.Rows != 0 {
		t.Errorf("zero-step run recorded %v rows\n", rn.Rec.Rows)
	}
	if nt.State.Vm[0] != marker {
		t.Errorf("zero-step run touched network state: %v != %v\n", nt.State.Vm[0], marker)
	}
}

func TestRunLifecycle(t *testing.T) {
	nt := buildTestNet(t, 8, 2, true)
	defer nt.StopThreads()

	rn := NewRun(nt, 5)
	if err := rn.Step(); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("step before start: %v\n", err)
	}
	if err := rn.Start(); err != nil {
		t.Fatalf("start failed: %v\n", err)
	}
	if rn.Status != Running {
		t.Errorf("status after start: %v\n", rn.Status)
	}
	if err := rn.Start(); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("start while running: %v\n", err)
	}
	for s := 0; s < 5; s++ {
		if err := rn.Step(); err != nil {
			t.Fatalf("step %v failed: %v\n", s, err)
		}
		if rn.StepsDone != s+1 {
			t.Errorf("steps done after step %v: %v\n", s, rn.StepsDone)
		}
	}
	status, done, err := rn.State()
	if status != Completed || done != 5 || err != nil {
		t.Errorf("final state: %v %v %v\n", status, done, err)
	}
	if err := rn.Step(); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("step after completion: %v\n", err)
	}

	// invalid configurations never start
	bad := NewRun(nil, 3)
	if err := bad.Start(); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("nil network: %v\n", err)
	}
	bad = NewRun(nt, -1)
	if err := bad.Start(); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("negative steps: %v\n", err)
	}
	bad = NewRun(NewNetwork("unbuilt", 4), 3)
	if err := bad.Start(); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("unbuilt network: %v\n", err)
	}
	if bad.Status != Idle {
		t.Errorf("failed start changed status: %v\n", bad.Status)
	}
}

func TestRunFailure(t *testing.T) {
	const steps = 6
	nt := buildTestNet(t, 8, 2, true)
	defer nt.StopThreads()

	clean := NewRun(nt, steps)
	clean.RndSeed = 29
	if err := clean.Go(); err != nil {
		t.Fatalf("clean run failed: %v\n", err)
	}
	cleanVm := make([][]float32, steps)
	for r := 0; r < steps; r++ {
		cleanVm[r] = append([]float32(nil), clean.Rec.RowVar(r, "Vm")...)
	}

	rn := NewRun(nt, steps)
	rn.RndSeed = 29
	if err := rn.Start(); err != nil {
		t.Fatalf("start failed: %v\n", err)
	}
	for s := 0; s < 3; s++ {
		if err := rn.Step(); err != nil {
			t.Fatalf("step %v failed: %v\n", s, err)
		}
	}
	nt.SetExt(0, math32.NaN())
	err := rn.Step()
	if !errors.Is(err, ErrKernelFailure) {
		t.Fatalf("expected kernel failure, got: %v\n", err)
	}
	status, done, serr := rn.State()
	if status != Failed || done != 3 || !errors.Is(serr, ErrKernelFailure) {
		t.Errorf("failed state: %v %v %v\n", status, done, serr)
	}

	// results up to the failing step are preserved and match the clean run
	for r := 0; r < 3; r++ {
		CmprFloats(rn.Rec.RowVar(r, "Vm"), cleanVm[r], "recorded row before failure", t)
	}
	// the failing step itself was never recorded
	for _, v := range rn.Rec.RowVar(3, "Vm") {
		if v != 0 {
			t.Errorf("failing step left a recorded row\n")
			break
		}
	}

	// a failed run can be started over; Start clears the external inputs
	if err := rn.Go(); err != nil {
		t.Fatalf("restart after failure: %v\n", err)
	}
	status, done, serr = rn.State()
	if status != Completed || done != steps || serr != nil {
		t.Errorf("restarted run state: %v %v %v\n", status, done, serr)
	}
}

func TestRunSeedReproducibility(t *testing.T) {
	const steps = 40
	nt := buildTestNet(t, 16, 4, true)
	defer nt.StopThreads()

	rn := NewRun(nt, steps)
	rn.RndSeed = 11
	if err := rn.Go(); err != nil {
		t.Fatalf("run failed: %v\n", err)
	}
	first := append([]float32(nil), rn.Rec.Buf.Values...)

	if err := rn.Go(); err != nil {
		t.Fatalf("rerun failed: %v\n", err)
	}
	CmprFloats(rn.Rec.Buf.Values, first, "same seed, full recording", t)

	rn.RndSeed = 12
	if err := rn.Go(); err != nil {
		t.Fatalf("reseeded run failed: %v\n", err)
	}
	same := true
	for i, v := range rn.Rec.Buf.Values {
		if v != first[i] {
			same = false
			break
		}
	}
	if same {
		t.Errorf("different seeds should not reproduce the same recording\n")
	}
}

func TestRunRecorder(t *testing.T) {
	const steps = 10
	nt := buildTestNet(t, 8, 2, true)
	defer nt.StopThreads()

	dense := NewRun(nt, steps)
	dense.RndSeed = 5
	dense.Rec.Vars = []string{"Vm", "Act", "GeRaw"}
	if err := dense.Go(); err != nil {
		t.Fatalf("dense run failed: %v\n", err)
	}
	if dense.Rec.Rows != steps {
		t.Errorf("dense rows: %v\n", dense.Rec.Rows)
	}
	denseVm := make([][]float32, steps)
	for r := 0; r < steps; r++ {
		denseVm[r] = append([]float32(nil), dense.Rec.RowVar(r, "Vm")...)
	}

	// stride 3 over 10 steps records steps 0, 3, 6, 9
	strided := NewRun(nt, steps)
	strided.RndSeed = 5
	strided.Rec.Vars = []string{"Vm", "Act", "GeRaw"}
	strided.Rec.Every = 3
	if err := strided.Go(); err != nil {
		t.Fatalf("strided run failed: %v\n", err)
	}
	if strided.Rec.Rows != 4 {
		t.Errorf("strided rows: %v\n", strided.Rec.Rows)
	}
	for r := 0; r < 4; r++ {
		CmprFloats(strided.Rec.RowVar(r, "Vm"), denseVm[3*r], "strided row", t)
	}
	if strided.Rec.Value(0, 0, 0) != strided.Rec.RowVar(0, "Vm")[0] {
		t.Errorf("value accessor disagrees with row accessor\n")
	}
	if strided.Rec.RowVar(0, "Bogus") != nil {
		t.Errorf("unknown variable should yield no row\n")
	}
	if strided.Rec.RowVar(4, "Vm") != nil {
		t.Errorf("out-of-range row should yield no row\n")
	}

	// caller-supplied buffer: exact shape required, then filled in place
	rn := NewRun(nt, steps)
	rn.RndSeed = 5
	buf := etensor.NewFloat32([]int{steps, 2, 8}, nil, []string{"Row", "Var", "Neuron"})
	rn.Rec.SetBuf(buf)
	if err := rn.Go(); err != nil {
		t.Fatalf("caller-buffer run failed: %v\n", err)
	}
	if rn.Rec.Buf != buf {
		t.Errorf("recorder replaced the caller's buffer\n")
	}
	CmprFloats(rn.Rec.RowVar(steps-1, "Vm"), denseVm[steps-1], "caller-buffer row", t)

	bad := NewRun(nt, steps)
	bad.Rec.SetBuf(etensor.NewFloat32([]int{steps, 2, 4}, nil, nil))
	if err := bad.Start(); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("mis-shaped buffer: %v\n", err)
	}

	bad = NewRun(nt, steps)
	bad.Rec.Vars = []string{"Vm", "NoSuchVar"}
	if err := bad.Start(); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("unknown variable: %v\n", err)
	}
	bad = NewRun(nt, steps)
	bad.Rec.Every = 0
	if err := bad.Start(); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("zero stride: %v\n", err)
	}
}
