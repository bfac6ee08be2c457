// Copyright (c) 2025, The Fastnet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fastnet

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/emer/emergent/erand"
	"github.com/emer/emergent/prjn"
	"github.com/emer/etable/etensor"
	"github.com/emer/etable/minmax"
)

// ConnTable is the static synaptic connectivity of a network, stored in
// compressed receiver-major form: all connections terminating on a given
// receiver are contiguous, which is what the gather-based propagation pass
// walks.  A sender-grouped index overlay supports the send-side view
// without duplicating the synapse data.  Tables are built once and never
// mutated structurally afterward.
type ConnTable struct {
	N        int   `desc:"number of neurons the table spans -- all source and target indexes are < N"`
	M        int   `desc:"total number of connections (synapses)"`
	Delays   bool  `desc:"whether per-connection transmission delays are present -- when false every connection has the fixed single-step latency"`
	MaxDelay int32 `desc:"largest transmission delay in the table, in steps -- 0 when Delays is false"`

	RConN     []int32   `view:"-" desc:"number of connections terminating on each receiver"`
	RConIdxSt []int32   `view:"-" desc:"starting index into the receiver-ordered synapse arrays for each receiver"`
	RConSrc   []int32   `view:"-" desc:"source neuron index per synapse, grouped by receiver"`
	RConWt    []float32 `view:"-" desc:"weight per synapse, grouped by receiver"`
	RConDel   []int32   `view:"-" desc:"transmission delay in steps per synapse, grouped by receiver -- nil when Delays is false"`

	SConN     []int32 `view:"-" desc:"number of connections originating at each sender"`
	SConIdxSt []int32 `view:"-" desc:"starting index into SConIdx for each sender"`
	SConIdx   []int32 `view:"-" desc:"indexes into the receiver-ordered synapse arrays, grouped by sender"`

	WtStats     minmax.AvgMax32 `inactive:"+" desc:"average and max of the weight values"`
	RConNAvgMax minmax.AvgMax32 `inactive:"+" desc:"average and max fan-in per receiver"`
	SConNAvgMax minmax.AvgMax32 `inactive:"+" desc:"average and max fan-out per sender"`
}

// BuildConns builds a connection table over n neurons from parallel
// connection lists: src[i] -> tgt[i] with weight wt[i] and, if del is
// non-nil, transmission delay del[i] in steps.  A nil del builds a table
// in the fixed single-step latency mode.  Delays must be at least 1: the
// propagation pass reads source firing from a previous step, so the
// minimum latency is one step.  selfCon permits src == tgt connections.
// The inputs are copied; connections terminating on the same receiver
// keep their input order.  All validation failures return an error
// wrapping ErrInvalidConnectivity.
func BuildConns(n int, src, tgt []int32, wt []float32, del []int32, selfCon bool) (*ConnTable, error) {
	if n <= 0 {
		return nil, connErrf("network size must be positive, got %d", n)
	}
	m := len(src)
	if len(tgt) != m || len(wt) != m {
		return nil, connErrf("connection list length mismatch: src %d, tgt %d, wt %d", m, len(tgt), len(wt))
	}
	if del != nil && len(del) != m {
		return nil, connErrf("connection list length mismatch: src %d, del %d", m, len(del))
	}
	ct := &ConnTable{N: n, M: m, Delays: del != nil}
	ct.RConN = make([]int32, n)
	ct.WtStats.Init()
	for i := 0; i < m; i++ {
		si := src[i]
		ri := tgt[i]
		if si < 0 || si >= int32(n) {
			return nil, connErrf("connection %d: source %d out of range [0, %d)", i, si, n)
		}
		if ri < 0 || ri >= int32(n) {
			return nil, connErrf("connection %d: target %d out of range [0, %d)", i, ri, n)
		}
		if si == ri && !selfCon {
			return nil, connErrf("connection %d: self connection on neuron %d not enabled", i, si)
		}
		if del != nil {
			if del[i] < 1 {
				return nil, connErrf("connection %d: delay %d below the minimum latency of one step", i, del[i])
			}
			if del[i] > ct.MaxDelay {
				ct.MaxDelay = del[i]
			}
		}
		ct.RConN[ri]++
		ct.WtStats.UpdateVal(wt[i], int32(i))
	}
	ct.WtStats.CalcAvg()

	ct.RConIdxSt = make([]int32, n)
	setIdxSt(ct.RConN, ct.RConIdxSt, &ct.RConNAvgMax)
	ct.RConSrc = make([]int32, m)
	ct.RConWt = make([]float32, m)
	if del != nil {
		ct.RConDel = make([]int32, m)
	}
	rconN := make([]int32, n) // current fill per receiver
	for i := 0; i < m; i++ {
		ri := tgt[i]
		ci := ct.RConIdxSt[ri] + rconN[ri]
		rconN[ri]++
		ct.RConSrc[ci] = src[i]
		ct.RConWt[ci] = wt[i]
		if del != nil {
			ct.RConDel[ci] = del[i]
		}
	}

	ct.SConN = make([]int32, n)
	for ci := 0; ci < m; ci++ {
		ct.SConN[ct.RConSrc[ci]]++
	}
	ct.SConIdxSt = make([]int32, n)
	setIdxSt(ct.SConN, ct.SConIdxSt, &ct.SConNAvgMax)
	ct.SConIdx = make([]int32, m)
	sconN := make([]int32, n)
	for ci := 0; ci < m; ci++ {
		si := ct.RConSrc[ci]
		ct.SConIdx[ct.SConIdxSt[si]+sconN[si]] = int32(ci)
		sconN[si]++
	}
	return ct, nil
}

// setIdxSt fills starting offsets from per-neuron counts and accumulates
// the fan statistics.
func setIdxSt(n, idxst []int32, am *minmax.AvgMax32) {
	idx := int32(0)
	am.Init()
	for i, nv := range n {
		idxst[i] = idx
		idx += nv
		am.UpdateVal(float32(nv), int32(i))
	}
	am.CalcAvg()
}

// ConnsFromPattern builds a connection table over n neurons from an
// emergent projection pattern applied to the population connecting to
// itself, drawing each weight from the given random distribution (which
// uses the global random source -- seed it for reproducible tables).
// delay applies uniformly to every connection; pass 0 to build the table
// in the fixed single-step latency mode.  Connections are generated in
// receiver-major order, ascending by source within each receiver.
func ConnsFromPattern(n int, pat prjn.Pattern, wtRnd erand.RndParams, delay int32, selfCon bool) (*ConnTable, error) {
	if n <= 0 {
		return nil, connErrf("network size must be positive, got %d", n)
	}
	if pat == nil {
		return nil, connErrf("nil projection pattern")
	}
	if delay < 0 {
		return nil, connErrf("uniform delay %d is negative", delay)
	}
	shp := etensor.NewShape([]int{n}, nil, nil)
	_, _, cons := pat.Connect(shp, shp, true)
	cbits := cons.Values
	m := 0
	for ri := 0; ri < n; ri++ {
		rbi := ri * n
		for si := 0; si < n; si++ {
			if cbits.Index(rbi + si) {
				m++
			}
		}
	}
	src := make([]int32, 0, m)
	tgt := make([]int32, 0, m)
	wt := make([]float32, 0, m)
	var del []int32
	if delay > 0 {
		del = make([]int32, 0, m)
	}
	for ri := 0; ri < n; ri++ {
		rbi := ri * n
		for si := 0; si < n; si++ {
			if !cbits.Index(rbi + si) {
				continue
			}
			src = append(src, int32(si))
			tgt = append(tgt, int32(ri))
			wt = append(wt, float32(wtRnd.Gen(-1)))
			if delay > 0 {
				del = append(del, delay)
			}
		}
	}
	return BuildConns(n, src, tgt, wt, del, selfCon)
}

///////////////////////////////////////////////////////////////////////
//  Accessors

// RecvNSyns returns the number of connections terminating on receiver ri.
func (ct *ConnTable) RecvNSyns(ri int) int {
	return int(ct.RConN[ri])
}

// RecvSrcs returns the source neuron indexes of the connections
// terminating on receiver ri, in table order.
func (ct *ConnTable) RecvSrcs(ri int) []int32 {
	st := ct.RConIdxSt[ri]
	return ct.RConSrc[st : st+ct.RConN[ri]]
}

// RecvWts returns the weights of the connections terminating on
// receiver ri, in table order.
func (ct *ConnTable) RecvWts(ri int) []float32 {
	st := ct.RConIdxSt[ri]
	return ct.RConWt[st : st+ct.RConN[ri]]
}

// RecvDels returns the transmission delays of the connections terminating
// on receiver ri.  Returns nil when the table has no per-connection delays.
func (ct *ConnTable) RecvDels(ri int) []int32 {
	if !ct.Delays {
		return nil
	}
	st := ct.RConIdxSt[ri]
	return ct.RConDel[st : st+ct.RConN[ri]]
}

// SendSynIdxs returns, for sender si, the indexes into the
// receiver-ordered synapse arrays of all connections originating at si.
func (ct *ConnTable) SendSynIdxs(si int) []int32 {
	st := ct.SConIdxSt[si]
	return ct.SConIdx[st : st+ct.SConN[si]]
}

// SynIdx returns the index in the receiver-ordered synapse arrays of the
// connection from sidx to ridx (1D flat indexes), or -1 if not connected.
func (ct *ConnTable) SynIdx(sidx, ridx int) int {
	nc := int(ct.RConN[ridx])
	st := int(ct.RConIdxSt[ridx])
	for ci := 0; ci < nc; ci++ {
		if int(ct.RConSrc[st+ci]) == sidx {
			return st + ci
		}
	}
	return -1
}

// SynWt returns the weight of the connection from sidx to ridx.
// Returns math32.NaN() if not connected.
func (ct *ConnTable) SynWt(sidx, ridx int) float32 {
	ci := ct.SynIdx(sidx, ridx)
	if ci < 0 {
		return math32.NaN()
	}
	return ct.RConWt[ci]
}

// SetSynWt sets the weight of the connection from sidx to ridx.
// Returns an error if not connected.
func (ct *ConnTable) SetSynWt(sidx, ridx int, val float32) error {
	ci := ct.SynIdx(sidx, ridx)
	if ci < 0 {
		return fmt.Errorf("ConnTable.SetSynWt: no connection from %d to %d", sidx, ridx)
	}
	ct.RConWt[ci] = val
	return nil
}

// SynDelay returns the transmission delay in steps from sidx to ridx:
// the per-connection delay when delays are enabled, else the fixed
// single-step latency of 1.  Returns -1 if not connected.
func (ct *ConnTable) SynDelay(sidx, ridx int) int32 {
	ci := ct.SynIdx(sidx, ridx)
	if ci < 0 {
		return -1
	}
	if !ct.Delays {
		return 1
	}
	return ct.RConDel[ci]
}

// WtVals copies all synapse weights in the natural (receiver-based)
// ordering into the given slice, which is resized only if not big enough.
func (ct *ConnTable) WtVals(vals *[]float32) {
	if *vals == nil || cap(*vals) < ct.M {
		*vals = make([]float32, ct.M)
	} else {
		*vals = (*vals)[:ct.M]
	}
	copy(*vals, ct.RConWt)
}
