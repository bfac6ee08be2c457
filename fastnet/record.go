// Copyright (c) 2025, The Fastnet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fastnet

import (
	"github.com/emer/etable/etensor"
)

// Recorder captures selected neuron state variables into a tensor buffer
// at a fixed step stride, giving a complete [row, variable, neuron] trace
// of a run without any per-step allocation.
type Recorder struct {
	Vars    []string         `desc:"names of the state variables to record"`
	Every   int              `def:"1" min:"1" desc:"record stride: a row is captured after steps 0, Every, 2*Every, ..."`
	Rows    int              `inactive:"+" desc:"number of rows for the configured run length"`
	Buf     *etensor.Float32 `view:"-" desc:"buffer of recorded values with shape [Rows, len(Vars), N] -- allocated by Configure, or supplied beforehand with SetBuf"`
	OwnBuf  bool             `view:"-" desc:"whether Configure allocated Buf (false when caller-supplied)"`
	VarIdxs []int            `view:"-" desc:"resolved variable indexes, in Vars order"`
}

// Defaults records membrane potential and firing every step
func (rc *Recorder) Defaults() {
	rc.Vars = []string{"Vm", "Spike"}
	rc.Every = 1
}

// SetBuf supplies a caller-owned buffer for recorded values.  Configure
// validates its shape against the run length instead of allocating.
func (rc *Recorder) SetBuf(buf *etensor.Float32) {
	rc.Buf = buf
	rc.OwnBuf = false
}

// Configure resolves the variable names against the network and prepares
// the buffer for a run of the given number of steps.  A caller-supplied
// buffer must have shape [Rows, len(Vars), N] exactly.  Returns an error
// wrapping ErrInvalidParameter on an unknown variable, an invalid stride,
// or a mis-shaped buffer.
func (rc *Recorder) Configure(nt *Network, steps int) error {
	if len(rc.Vars) == 0 && rc.Every == 0 {
		rc.Defaults()
	}
	if rc.Every < 1 {
		return paramErrf("recorder stride must be at least 1, got %d", rc.Every)
	}
	rc.VarIdxs = make([]int, len(rc.Vars))
	for vi, vnm := range rc.Vars {
		idx, err := VarIndexByName(vnm)
		if err != nil {
			return paramErrf("recorder: %v", err)
		}
		rc.VarIdxs[vi] = idx
	}
	rc.Rows = 0
	if steps > 0 {
		rc.Rows = (steps + rc.Every - 1) / rc.Every
	}
	n := nt.State.N
	nv := len(rc.Vars)
	if rc.Buf != nil && !rc.OwnBuf {
		if rc.Buf.NumDims() != 3 || rc.Buf.Dim(0) != rc.Rows || rc.Buf.Dim(1) != nv || rc.Buf.Dim(2) != n {
			return paramErrf("recorder buffer shape %v does not match required [%d, %d, %d]", rc.Buf.Shapes(), rc.Rows, nv, n)
		}
		return nil
	}
	rc.Buf = etensor.NewFloat32([]int{rc.Rows, nv, n}, nil, []string{"Row", "Var", "Neuron"})
	rc.OwnBuf = true
	return nil
}

// Record captures a row of state from the network if the given step index
// falls on the stride.  Steps beyond the configured run length are not
// recorded.  Call after Cycle for the step.
func (rc *Recorder) Record(nt *Network, step int) {
	if rc.Every <= 0 || step%rc.Every != 0 {
		return
	}
	row := step / rc.Every
	if row >= rc.Rows {
		return
	}
	n := nt.State.N
	nv := len(rc.VarIdxs)
	for vi, vidx := range rc.VarIdxs {
		src := nt.State.VarSliceByIndex(vidx)
		off := (row*nv + vi) * n
		copy(rc.Buf.Values[off:off+n], src)
	}
}

// RowVar returns the recorded values for the given row and variable name,
// aliasing the buffer.  Returns nil if the variable was not recorded.
func (rc *Recorder) RowVar(row int, varNm string) []float32 {
	vi := -1
	for i, vnm := range rc.Vars {
		if vnm == varNm {
			vi = i
			break
		}
	}
	if vi < 0 || row < 0 || row >= rc.Rows {
		return nil
	}
	n := rc.Buf.Dim(2)
	off := (row*len(rc.Vars) + vi) * n
	return rc.Buf.Values[off : off+n]
}

// Value returns the recorded value for the given row, variable index
// (in Vars order), and neuron
func (rc *Recorder) Value(row, vi, ni int) float32 {
	return rc.Buf.Value([]int{row, vi, ni})
}
