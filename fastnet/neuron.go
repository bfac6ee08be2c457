// Copyright (c) 2025, The Fastnet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fastnet

import (
	"fmt"

	"github.com/goki/ki/bitflag"
	"github.com/goki/ki/kit"
	"github.com/goki/mat32"
)

// State holds all neuron-level simulation state in structure-of-arrays
// layout: one contiguous float32 slice per variable, indexed by neuron
// index.  This is the layout the integration and propagation kernels
// iterate over, so slices must never be reallocated mid-run.
// All variables are accessible by name through VarSlice / VarByName.
type State struct {
	N      int       `inactive:"+" desc:"number of neurons -- fixed at allocation"`
	Vm     []float32 `desc:"membrane potential (mV for spiking models, normalized for Rate)"`
	Rec    []float32 `desc:"recovery variable of the Izhikevich model (unused by LIF, Rate)"`
	Ge     []float32 `desc:"integrated excitatory input conductance / current driving this step"`
	GeRaw  []float32 `desc:"raw synaptic input -- overwritten by each propagation pass and consumed by the following integration"`
	Ext    []float32 `desc:"external input drive, added to synaptic input each step"`
	Act    []float32 `desc:"firing output communicated to receivers: 0/1 spike for spiking models, graded rate for the Rate model"`
	Spike  []float32 `desc:"whether the neuron fired this step (0 or 1)"`
	ISI    []float32 `desc:"current inter-spike interval -- counts up since last spike, -1 = never spiked"`
	ISIAvg []float32 `desc:"running average inter-spike interval, -1 until second spike"`
	Flags  []int32   `view:"-" desc:"bit flags for binary neuron state (see NeurFlags)"`
}

// NeuronVars are the named per-neuron state variables, in State field order.
var NeuronVars = []string{"Vm", "Rec", "Ge", "GeRaw", "Ext", "Act", "Spike", "ISI", "ISIAvg"}

var NeuronVarsMap map[string]int

func init() {
	NeuronVarsMap = make(map[string]int, len(NeuronVars))
	for i, v := range NeuronVars {
		NeuronVarsMap[v] = i
	}
}

// Alloc allocates all state slices for n neurons.
func (st *State) Alloc(n int) {
	st.N = n
	st.Vm = make([]float32, n)
	st.Rec = make([]float32, n)
	st.Ge = make([]float32, n)
	st.GeRaw = make([]float32, n)
	st.Ext = make([]float32, n)
	st.Act = make([]float32, n)
	st.Spike = make([]float32, n)
	st.ISI = make([]float32, n)
	st.ISIAvg = make([]float32, n)
	st.Flags = make([]int32, n)
}

// VarNames returns the list of neuron variable names.
func (st *State) VarNames() []string {
	return NeuronVars
}

// VarIndexByName returns the index of a neuron variable, or an error if
// the name is not valid.
func VarIndexByName(varNm string) (int, error) {
	i, ok := NeuronVarsMap[varNm]
	if !ok {
		return -1, fmt.Errorf("fastnet.VarIndexByName: variable name: %v not valid", varNm)
	}
	return i, nil
}

// VarSliceByIndex returns the state slice for a variable index
// (0 = first variable in NeuronVars).
func (st *State) VarSliceByIndex(idx int) []float32 {
	switch idx {
	case 0:
		return st.Vm
	case 1:
		return st.Rec
	case 2:
		return st.Ge
	case 3:
		return st.GeRaw
	case 4:
		return st.Ext
	case 5:
		return st.Act
	case 6:
		return st.Spike
	case 7:
		return st.ISI
	case 8:
		return st.ISIAvg
	}
	return nil
}

// VarSlice returns the state slice for a named variable, or error.
func (st *State) VarSlice(varNm string) ([]float32, error) {
	i, err := VarIndexByName(varNm)
	if err != nil {
		return nil, err
	}
	return st.VarSliceByIndex(i), nil
}

// VarByName returns the value of a named variable for a given neuron, or error.
func (st *State) VarByName(varNm string, ni int) (float32, error) {
	sl, err := st.VarSlice(varNm)
	if err != nil {
		return mat32.NaN(), err
	}
	if ni < 0 || ni >= st.N {
		return mat32.NaN(), fmt.Errorf("fastnet.State VarByName: neuron index %d out of range [0, %d)", ni, st.N)
	}
	return sl[ni], nil
}

// UnitVals fills vals with the values of a named variable across all
// neurons, allocating if needed.
func (st *State) UnitVals(vals *[]float32, varNm string) error {
	sl, err := st.VarSlice(varNm)
	if err != nil {
		return err
	}
	if *vals == nil || cap(*vals) < st.N {
		*vals = make([]float32, st.N)
	}
	*vals = (*vals)[:st.N]
	copy(*vals, sl)
	return nil
}

//////////////////////////////////////////////////////////////////////
//  Flags

// HasFlag returns true if the given flag is set for neuron ni.
func (st *State) HasFlag(ni int, f NeurFlags) bool {
	return bitflag.Has32(st.Flags[ni], int(f))
}

// SetFlag sets the given flag for neuron ni.
func (st *State) SetFlag(ni int, f NeurFlags) {
	bitflag.Set32(&st.Flags[ni], int(f))
}

// ClearFlag clears the given flag for neuron ni.
func (st *State) ClearFlag(ni int, f NeurFlags) {
	bitflag.Clear32(&st.Flags[ni], int(f))
}

// IsOff returns true if neuron ni has been turned off (lesioned).
// Off neurons neither integrate nor contribute input to their targets.
func (st *State) IsOff(ni int) bool {
	return st.HasFlag(ni, NeurOff)
}

// NeurFlags are bit-flags encoding relevant binary state for neurons.
type NeurFlags int32

//go:generate stringer -type=NeurFlags

var KiT_NeurFlags = kit.Enums.AddEnum(NeurFlagsN, kit.BitFlag, nil)

func (ev NeurFlags) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *NeurFlags) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

// The neuron flags
const (
	// NeurOff flag indicates that this neuron has been turned off (i.e., lesioned)
	NeurOff NeurFlags = iota

	// NeurHasExt means the neuron has external input in its Ext field
	NeurHasExt

	NeurFlagsN
)
