// Copyright (c) 2025, The Fastnet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fastnet

import (
	"fmt"
	"strings"
	"sync"

	"github.com/c2h5oh/datasize"
	"github.com/chewxy/math32"
	"github.com/emer/emergent/erand"
	"github.com/emer/emergent/prjn"
	"github.com/emer/emergent/timer"
	"github.com/emer/etable/etensor"
	"github.com/emer/etable/minmax"
	"github.com/goki/gosl/sltype"
	"github.com/goki/ki/ints"
)

// fastnet.Network is a complete simulation network: the neuron state
// arrays, the static connection table, the model parameters, and the
// worker goroutines that carry the integration passes.  A network is
// configured, connected, and Built once; after that, Cycle advances it
// one step at a time.
type Network struct {
	Nm      string     `desc:"network name"`
	State   State      `desc:"neuron state variables, one slice per variable"`
	Conns   *ConnTable `desc:"synaptic connectivity -- nil until connected or Built (Build installs an empty table if none was set)"`
	Act     ActParams  `view:"add-fields" desc:"model parameters governing neuron updates"`
	SelfCon bool       `desc:"allow connections from a neuron to itself when building connectivity"`

	NThreads    int  `desc:"number of worker goroutines to use -- 0 selects the number of CPUs at Build time.  Results are identical for any setting"`
	LockThreads bool `desc:"pin worker goroutines to OS threads -- can improve performance on large networks"`
	RecFunTimes bool `desc:"record timing for each pass and each thread, for TimerReport -- off by default to keep the step path clean"`

	Chunks   [][2]int               `view:"-" desc:"contiguous [lo, hi) neuron index ranges, one per worker"`
	ThrChans []RangeFunChan         `view:"-" desc:"dispatch channels, one per worker"`
	ThrTimes []timer.Time           `view:"-" desc:"accumulated time per worker"`
	FunTimes map[string]*timer.Time `view:"-" desc:"accumulated time per pass name"`
	WaitGp   sync.WaitGroup         `view:"-" desc:"fork-join barrier for the workers"`
	ThrErrs  []error                `view:"-" desc:"per-worker kernel failure slots, merged after each barrier"`

	ActHist  [][]float32 `view:"-" desc:"ring of past activation values indexed by step mod depth -- allocated at Build when the connection table has transmission delays"`
	DelSlots []int       `view:"-" desc:"scratch table of history ring slots per delay value, filled each step before the gather pass"`
}

// NewNetwork returns a new network of n neurons with default parameters
func NewNetwork(name string, n int) *Network {
	nt := &Network{Nm: name}
	nt.State.Alloc(n)
	nt.Defaults()
	return nt
}

// Defaults sets default parameter values
func (nt *Network) Defaults() {
	nt.Act.Defaults()
}

// IsBuilt returns true if Build has been called on the current structure
func (nt *Network) IsBuilt() bool {
	return nt.Chunks != nil
}

// ConnectFrom sets the network connectivity from parallel connection
// lists: src[i] -> tgt[i] with weight wt[i] and optional delay del[i]
// in steps (nil del = fixed single-step latency).  See BuildConns.
// Call Build after connecting.
func (nt *Network) ConnectFrom(src, tgt []int32, wt []float32, del []int32) error {
	ct, err := BuildConns(nt.State.N, src, tgt, wt, del, nt.SelfCon)
	if err != nil {
		return err
	}
	nt.Conns = ct
	return nil
}

// ConnectPattern sets the network connectivity from an emergent
// projection pattern with a uniform delay (0 = fixed single-step
// latency), drawing weights from the given distribution.
// Call Build after connecting.
func (nt *Network) ConnectPattern(pat prjn.Pattern, wtRnd erand.RndParams, delay int32) error {
	ct, err := ConnsFromPattern(nt.State.N, pat, wtRnd, delay, nt.SelfCon)
	if err != nil {
		return err
	}
	nt.Conns = ct
	return nil
}

// Build validates the configuration, allocates all remaining state,
// starts the worker threads, and leaves the network in its initial
// state.  It must be called before Cycle, and called again after any
// structural change.  Returns an error wrapping ErrInvalidConnectivity
// or ErrInvalidParameter on an invalid configuration.
func (nt *Network) Build() error {
	if nt.State.N <= 0 {
		return connErrf("network %v: size must be positive, got %d", nt.Nm, nt.State.N)
	}
	nt.Act.Update()
	if err := nt.Act.Validate(); err != nil {
		return err
	}
	if nt.Conns == nil {
		ct, err := BuildConns(nt.State.N, nil, nil, nil, nil, nt.SelfCon)
		if err != nil {
			return err
		}
		nt.Conns = ct
	}
	if nt.Conns.N != nt.State.N {
		return connErrf("network %v: connection table spans %d neurons, network has %d", nt.Nm, nt.Conns.N, nt.State.N)
	}
	if nt.ThrChans != nil {
		nt.StopThreads()
	}
	nt.BuildThreads()
	nt.StartThreads()
	if nt.Conns.Delays {
		depth := int(nt.Conns.MaxDelay) + 1
		nt.ActHist = make([][]float32, depth)
		for i := range nt.ActHist {
			nt.ActHist[i] = make([]float32, nt.State.N)
		}
		nt.DelSlots = make([]int, nt.Conns.MaxDelay+1)
	} else {
		nt.ActHist = nil
		nt.DelSlots = nil
	}
	nt.InitActs()
	return nil
}

// InitActs initializes all neuron activation state to the configured
// initial values, and clears the activity history
func (nt *Network) InitActs() {
	st := &nt.State
	for ni := 0; ni < st.N; ni++ {
		nt.Act.InitActs(st, ni)
	}
	for _, h := range nt.ActHist {
		for i := range h {
			h[i] = 0
		}
	}
}

// DecayState decays activation state toward initial values by the given
// proportion (0 = no change, 1 = full reset)
func (nt *Network) DecayState(decay float32) {
	st := &nt.State
	for ni := 0; ni < st.N; ni++ {
		nt.Act.DecayState(st, ni, decay)
	}
}

///////////////////////////////////////////////////////////////////////
//  External input

// SetExt sets the external input for neuron ni and flags it as driven
func (nt *Network) SetExt(ni int, ext float32) {
	nt.State.Ext[ni] = ext
	nt.State.SetFlag(ni, NeurHasExt)
}

// ApplyExt applies external inputs from the given tensor, mapping values
// in order onto neurons 0..Len-1 (extra values are ignored)
func (nt *Network) ApplyExt(ext etensor.Tensor) {
	mx := ints.MinInt(ext.Len(), nt.State.N)
	for ni := 0; ni < mx; ni++ {
		nt.SetExt(ni, float32(ext.FloatVal1D(ni)))
	}
}

// ApplyExtSlice applies external inputs from the given slice, mapping
// values in order onto neurons 0..len-1 (extra values are ignored)
func (nt *Network) ApplyExtSlice(ext []float32) {
	mx := ints.MinInt(len(ext), nt.State.N)
	for ni := 0; ni < mx; ni++ {
		nt.SetExt(ni, ext[ni])
	}
}

// ClearExt removes all external inputs
func (nt *Network) ClearExt() {
	st := &nt.State
	for ni := 0; ni < st.N; ni++ {
		st.Ext[ni] = 0
		st.ClearFlag(ni, NeurHasExt)
	}
}

///////////////////////////////////////////////////////////////////////
//  Lesioning

// LesionNeuron turns off neuron ni: it no longer updates or contributes
// activity.  Connectivity is unaffected and the neuron can be restored
// with UnLesionNeurons.
func (nt *Network) LesionNeuron(ni int) {
	st := &nt.State
	st.SetFlag(ni, NeurOff)
	st.Act[ni] = 0
	st.Spike[ni] = 0
}

// UnLesionNeurons restores all lesioned neurons to active status
func (nt *Network) UnLesionNeurons() {
	st := &nt.State
	for ni := 0; ni < st.N; ni++ {
		st.ClearFlag(ni, NeurOff)
	}
}

///////////////////////////////////////////////////////////////////////
//  Cycle

// Cycle advances the network one integration step at the given time:
// first the gather pass accumulates source activity into each receiver's
// GeRaw, then the integration pass updates every neuron, then the time
// counters advance.  Returns an error wrapping ErrKernelFailure if any
// neuron reached a non-finite state during the step; the network state
// is left as computed, so the failing values can be inspected.
func (nt *Network) Cycle(tm *Time) error {
	nt.Propagate(tm)
	nt.Integrate(tm)
	tm.StepInc()
	var err error
	for th := range nt.ThrErrs {
		if err == nil && nt.ThrErrs[th] != nil {
			err = nt.ThrErrs[th]
		}
		nt.ThrErrs[th] = nil
	}
	return err
}

// Propagate runs the gather pass: each receiver's GeRaw is overwritten
// with the weighted sum of its source neurons' firing.  With transmission
// delays, source firing is read from the activity history at step - delay,
// so a spike at step s arrives at its receiver exactly at step s + delay.
// Steps before the start of the run are silent.
func (nt *Network) Propagate(tm *Time) {
	ct := nt.Conns
	if !ct.Delays {
		nt.ThrRangeFun(func(th, lo, hi int) { nt.PropRange(lo, hi) }, "Propagate")
		return
	}
	depth := len(nt.ActHist)
	for d := 1; d <= int(ct.MaxDelay); d++ {
		s := tm.Step - d
		if s < 0 {
			nt.DelSlots[d] = -1
		} else {
			nt.DelSlots[d] = s % depth
		}
	}
	nt.ThrRangeFun(func(th, lo, hi int) { nt.PropRangeDel(lo, hi) }, "Propagate")
}

// PropRange does the gather for receivers [lo, hi) in the fixed
// single-step latency mode, reading the previous step's activations
// directly from Act.
func (nt *Network) PropRange(lo, hi int) {
	ct := nt.Conns
	st := &nt.State
	for ri := lo; ri < hi; ri++ {
		sum := float32(0)
		nc := int(ct.RConN[ri])
		cst := int(ct.RConIdxSt[ri])
		for ci := 0; ci < nc; ci++ {
			sum += ct.RConWt[cst+ci] * st.Act[ct.RConSrc[cst+ci]]
		}
		st.GeRaw[ri] = sum
	}
}

// PropRangeDel does the gather for receivers [lo, hi) with per-connection
// transmission delays, reading source firing from the activity history
// ring through the per-delay slot table computed for this step.
func (nt *Network) PropRangeDel(lo, hi int) {
	ct := nt.Conns
	st := &nt.State
	for ri := lo; ri < hi; ri++ {
		sum := float32(0)
		nc := int(ct.RConN[ri])
		cst := int(ct.RConIdxSt[ri])
		for ci := 0; ci < nc; ci++ {
			sl := nt.DelSlots[ct.RConDel[cst+ci]]
			if sl < 0 {
				continue
			}
			sum += ct.RConWt[cst+ci] * nt.ActHist[sl][ct.RConSrc[cst+ci]]
		}
		st.GeRaw[ri] = sum
	}
}

// Integrate runs the integration pass, advancing every neuron one step
// under the selected model.  The model switch is hoisted out of the
// per-neuron loop: each variant has a dedicated chunk function.
func (nt *Network) Integrate(tm *Time) {
	randctr := tm.RandCtr.Uint2() // shared step counter, copied per neuron
	step := tm.Step
	var hist []float32
	if nt.Conns.Delays {
		hist = nt.ActHist[step%len(nt.ActHist)]
	}
	switch nt.Act.Model {
	case Izhi:
		nt.ThrRangeFun(func(th, lo, hi int) { nt.IzhiRange(th, lo, hi, step, randctr, hist) }, "Integrate")
	case LIF:
		nt.ThrRangeFun(func(th, lo, hi int) { nt.LIFRange(th, lo, hi, step, randctr, hist) }, "Integrate")
	case Rate:
		nt.ThrRangeFun(func(th, lo, hi int) { nt.RateRange(th, lo, hi, step, randctr, hist) }, "Integrate")
	}
}

// IzhiRange integrates neurons [lo, hi) under the Izhikevich model
func (nt *Network) IzhiRange(th, lo, hi, step int, randctr sltype.Uint2, hist []float32) {
	st := &nt.State
	for ni := lo; ni < hi; ni++ {
		if !st.IsOff(ni) {
			ctr := randctr
			nt.Act.IzhiCycle(st, ni, &ctr)
		}
		if hist != nil {
			hist[ni] = st.Act[ni]
		}
	}
	nt.chunkCheck(th, lo, hi, step)
}

// LIFRange integrates neurons [lo, hi) under the leaky integrate-and-fire
// model
func (nt *Network) LIFRange(th, lo, hi, step int, randctr sltype.Uint2, hist []float32) {
	st := &nt.State
	for ni := lo; ni < hi; ni++ {
		if !st.IsOff(ni) {
			ctr := randctr
			nt.Act.LIFCycle(st, ni, &ctr)
		}
		if hist != nil {
			hist[ni] = st.Act[ni]
		}
	}
	nt.chunkCheck(th, lo, hi, step)
}

// RateRange integrates neurons [lo, hi) under the rate-coded model
func (nt *Network) RateRange(th, lo, hi, step int, randctr sltype.Uint2, hist []float32) {
	st := &nt.State
	for ni := lo; ni < hi; ni++ {
		if !st.IsOff(ni) {
			ctr := randctr
			nt.Act.RateCycle(st, ni, &ctr)
		}
		if hist != nil {
			hist[ni] = st.Act[ni]
		}
	}
	nt.chunkCheck(th, lo, hi, step)
}

// chunkCheck scans neurons [lo, hi) for non-finite membrane or activation
// state and records a kernel failure in this thread's error slot.  The
// lowest-indexed failing neuron in the chunk is the one reported, so the
// merged error is the same for any thread count.
func (nt *Network) chunkCheck(th, lo, hi, step int) {
	if nt.ThrErrs[th] != nil {
		return
	}
	st := &nt.State
	for ni := lo; ni < hi; ni++ {
		vm := st.Vm[ni]
		act := st.Act[ni]
		if math32.IsNaN(vm) || math32.IsInf(vm, 0) || math32.IsNaN(act) || math32.IsInf(act, 0) {
			nt.ThrErrs[th] = kernErrf("step %d: neuron %d diverged: Vm = %g, Act = %g", step, ni, vm, act)
			return
		}
	}
}

///////////////////////////////////////////////////////////////////////
//  Statistics and reports

// ActAvgMax returns the average and maximum activation over all neurons,
// excluding lesioned ones
func (nt *Network) ActAvgMax() minmax.AvgMax32 {
	var am minmax.AvgMax32
	am.Init()
	st := &nt.State
	for ni := 0; ni < st.N; ni++ {
		if st.IsOff(ni) {
			continue
		}
		am.UpdateVal(st.Act[ni], int32(ni))
	}
	am.CalcAvg()
	return am
}

// VarAvgMax returns the average and maximum of the given state variable
// over all neurons, excluding lesioned ones.  Returns an error on an
// invalid variable name.
func (nt *Network) VarAvgMax(varNm string) (minmax.AvgMax32, error) {
	var am minmax.AvgMax32
	am.Init()
	vr, err := nt.State.VarSlice(varNm)
	if err != nil {
		return am, err
	}
	st := &nt.State
	for ni, v := range vr {
		if st.IsOff(ni) {
			continue
		}
		am.UpdateVal(v, int32(ni))
	}
	am.CalcAvg()
	return am, nil
}

// SizeReport returns a string describing the memory footprint of the
// network state, history, and connectivity
func (nt *Network) SizeReport() string {
	var b strings.Builder
	n := nt.State.N
	stMem := n * (len(NeuronVars) + 1) * 4 // +1 for flags
	histMem := len(nt.ActHist) * n * 4
	synMem := 0
	nsyn := 0
	if nt.Conns != nil {
		ct := nt.Conns
		nsyn = ct.M
		synMem = 4 * (len(ct.RConSrc) + len(ct.RConDel) + len(ct.SConIdx) +
			len(ct.RConN) + len(ct.RConIdxSt) + len(ct.SConN) + len(ct.SConIdxSt))
		synMem += 4 * len(ct.RConWt)
	}
	tot := stMem + histMem + synMem
	fmt.Fprintf(&b, "%14s:\t Neurons: %d\t StateMem: %v\n", nt.Nm, n,
		(datasize.ByteSize)(stMem).HumanReadable())
	fmt.Fprintf(&b, "%14s:\t Syns: %d\t SynMem: %v\t HistMem: %v\n", nt.Nm, nsyn,
		(datasize.ByteSize)(synMem).HumanReadable(),
		(datasize.ByteSize)(histMem).HumanReadable())
	fmt.Fprintf(&b, "%14s:\t Total: %v\n", nt.Nm, (datasize.ByteSize)(tot).HumanReadable())
	return b.String()
}

// ThreadReport returns a string describing the neuron index chunk
// assigned to each worker thread
func (nt *Network) ThreadReport() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v: %d neurons across %d threads\n", nt.Nm, nt.State.N, nt.NThreads)
	for th, ck := range nt.Chunks {
		fmt.Fprintf(&b, "\tThr %d:\t [%d, %d)\t n: %d\n", th, ck[0], ck[1], ck[1]-ck[0])
	}
	return b.String()
}
