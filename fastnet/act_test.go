// Copyright (c) 2025, The Fastnet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fastnet

import (
	"errors"
	"testing"

	"github.com/chewxy/math32"
	"github.com/goki/gosl/sltype"
)

// tolerance for comparing known exact float values
const difTol = float32(1.0e-10)

func CmprFloats(got, trg []float32, msg string, t *testing.T) {
	for i := range got {
		dif := math32.Abs(got[i] - trg[i])
		if dif > difTol { // allow for small numerical diffs
			t.Errorf("%v err: idx: %v, got: %v, trg: %v, dif: %v\n", msg, i, got[i], trg[i], dif)
		}
	}
}

// newActState returns ActParams for the given model plus a single-neuron
// state initialized to the model's defaults
func newActState(model Models) (*ActParams, *State) {
	ac := &ActParams{}
	ac.Defaults()
	ac.Model = model
	ac.ModelDefaults()
	ac.Update()
	st := &State{}
	st.Alloc(1)
	ac.InitActs(st, 0)
	return ac, st
}

func TestLIFDecay(t *testing.T) {
	ac, st := newActState(LIF)
	ac.LIF.Tau = 2 // dt/tau = 0.5: exact halving toward rest
	ac.Dt.GTau = 1
	ac.Update()
	st.Vm[0] = -55

	trg := []float32{-60, -62.5, -63.75, -64.375}
	got := make([]float32, len(trg))
	ctr := sltype.Uint2{}
	for i := range trg {
		ac.LIFCycle(st, 0, &ctr)
		got[i] = st.Vm[0]
		if st.Spike[0] != 0 {
			t.Errorf("step %v: spurious spike during decay\n", i)
		}
	}
	CmprFloats(got, trg, "LIF decay toward rest", t)
	if st.ISI[0] != -1 {
		t.Errorf("ISI changed without any spike: %v\n", st.ISI[0])
	}
}

func TestLIFSpikeRefractory(t *testing.T) {
	ac, st := newActState(LIF)
	ac.Dt.GTau = 1
	ac.Update()
	// Gain 10 * Ext 15 = 150 of drive: crosses threshold on the first step
	st.Ext[0] = 15

	ctr := sltype.Uint2{}
	ac.LIFCycle(st, 0, &ctr)
	if st.Spike[0] != 1 || st.Act[0] != 1 {
		t.Errorf("expected spike on first step, got Spike: %v, Act: %v\n", st.Spike[0], st.Act[0])
	}
	if st.Vm[0] != ac.LIF.VmR {
		t.Errorf("Vm not reset after spike: %v != %v\n", st.Vm[0], ac.LIF.VmR)
	}
	if st.ISI[0] != 0 {
		t.Errorf("ISI not reset after spike: %v\n", st.ISI[0])
	}
	// refractory: Tr steps held at reset, not firing
	for i := 0; i < int(ac.LIF.Tr); i++ {
		ac.LIFCycle(st, 0, &ctr)
		if st.Spike[0] != 0 {
			t.Errorf("refractory step %v: fired\n", i)
		}
		if st.Vm[0] != ac.LIF.VmR {
			t.Errorf("refractory step %v: Vm moved off reset: %v\n", i, st.Vm[0])
		}
		if st.ISI[0] != float32(i+1) {
			t.Errorf("refractory step %v: ISI: %v\n", i, st.ISI[0])
		}
	}
	// with this much drive the first post-refractory step fires again
	ac.LIFCycle(st, 0, &ctr)
	if st.Spike[0] != 1 {
		t.Errorf("expected spike on first post-refractory step\n")
	}
	if st.ISIAvg[0] != float32(ac.LIF.Tr) {
		t.Errorf("first full interval: ISIAvg: %v, want %v\n", st.ISIAvg[0], float32(ac.LIF.Tr))
	}
}

func TestIzhiSpikeBookkeeping(t *testing.T) {
	ac, st := newActState(Izhi)
	st.Ext[0] = 10 // steady current, regular spiking

	ctr := sltype.Uint2{}
	nspk := 0
	prevRec := st.Rec[0]
	for i := 0; i < 300; i++ {
		ac.IzhiCycle(st, 0, &ctr)
		if st.Ge[0] != 10 {
			t.Errorf("step %v: Ge should mirror the input current: %v\n", i, st.Ge[0])
		}
		if st.Spike[0] == 1 {
			nspk++
			if st.Vm[0] != ac.Izhi.C {
				t.Errorf("step %v: Vm not cut to C after spike: %v\n", i, st.Vm[0])
			}
			if st.Act[0] != 1 {
				t.Errorf("step %v: Act should be 1 on a spike step\n", i)
			}
			if st.Rec[0] <= prevRec {
				t.Errorf("step %v: recovery did not jump at spike: %v <= %v\n", i, st.Rec[0], prevRec)
			}
		} else if st.Act[0] != 0 {
			t.Errorf("step %v: Act should be 0 off spikes: %v\n", i, st.Act[0])
		}
		prevRec = st.Rec[0]
	}
	if nspk < 3 {
		t.Errorf("regular spiking cell should fire repeatedly, got %v spikes\n", nspk)
	}
	if st.ISIAvg[0] <= 0 {
		t.Errorf("ISIAvg not tracking intervals: %v\n", st.ISIAvg[0])
	}
}

func TestRateSaturation(t *testing.T) {
	ac, st := newActState(Rate)
	st.Ext[0] = 1

	ctr := sltype.Uint2{}
	prev := st.Act[0]
	for i := 0; i < 200; i++ {
		ac.RateCycle(st, 0, &ctr)
		act := st.Act[0]
		if act < prev-difTol {
			t.Errorf("step %v: activation not monotone under constant drive: %v < %v\n", i, act, prev)
		}
		if act < 0 || act >= 1 {
			t.Errorf("step %v: activation out of range: %v\n", i, act)
		}
		prev = act
	}
	if st.Act[0] < ac.SpikeThr {
		t.Errorf("strong drive should saturate above firing threshold: %v\n", st.Act[0])
	}
	if st.Spike[0] != 1 {
		t.Errorf("firing predicate should hold at saturation\n")
	}
	if st.ISI[0] != 0 {
		t.Errorf("ISI should pin at 0 while above threshold: %v\n", st.ISI[0])
	}
}

func TestISIFmSpike(t *testing.T) {
	ac, st := newActState(LIF)

	// first ever spike: no interval to record yet
	ac.ISIFmSpike(st, 0, true)
	if st.ISI[0] != 0 || st.ISIAvg[0] != -1 {
		t.Errorf("first spike: ISI: %v, ISIAvg: %v\n", st.ISI[0], st.ISIAvg[0])
	}
	for i := 0; i < 4; i++ {
		ac.ISIFmSpike(st, 0, false)
	}
	ac.ISIFmSpike(st, 0, true) // interval of 4
	if st.ISIAvg[0] != 4 {
		t.Errorf("first full interval should set the average: %v\n", st.ISIAvg[0])
	}
	for i := 0; i < 3; i++ {
		ac.ISIFmSpike(st, 0, false)
	}
	ac.ISIFmSpike(st, 0, true) // interval of 3
	exp := float32(4) + ac.Dt.AvgDt*(3-4)
	CmprFloats([]float32{st.ISIAvg[0]}, []float32{exp}, "ISIAvg integration", t)
}

func TestActValidate(t *testing.T) {
	ac := &ActParams{}
	ac.Defaults()
	if err := ac.Validate(); err != nil {
		t.Errorf("defaults should validate: %v\n", err)
	}
	for _, md := range []Models{Izhi, LIF, Rate} {
		ac.Defaults()
		ac.Model = md
		ac.ModelDefaults()
		ac.Update()
		if err := ac.Validate(); err != nil {
			t.Errorf("%v defaults should validate: %v\n", md, err)
		}
	}

	ac.Defaults()
	ac.Dt.Integ = 0
	err := ac.Validate()
	if !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("zero step size: got %v\n", err)
	}

	ac.Defaults()
	ac.Model = LIF
	ac.ModelDefaults()
	ac.LIF.Thr = ac.LIF.VmR - 1
	err = ac.Validate()
	if !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("threshold below reset: got %v\n", err)
	}

	ac.Defaults()
	ac.VmRange.Set(1, -1)
	err = ac.Validate()
	if !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("empty Vm range: got %v\n", err)
	}

	ac.Defaults()
	ac.Noise.Type = GeNoise
	ac.Noise.Var = -0.1
	err = ac.Validate()
	if !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("negative noise variance: got %v\n", err)
	}

	ac.Defaults()
	ac.Model = ModelsN
	err = ac.Validate()
	if !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("unknown model: got %v\n", err)
	}
}

func TestNoiseGen(t *testing.T) {
	np := NoiseParams{}
	np.Defaults()
	np.Type = GeNoise
	np.Dist = Uniform
	np.Mean = 0.5
	np.Var = 0.25

	base := sltype.Uint2{X: 7, Y: 3}
	c1 := base
	c2 := base
	v1 := np.Gen(0, &c1)
	v2 := np.Gen(0, &c2)
	if v1 != v2 {
		t.Errorf("same counter and neuron must reproduce: %v != %v\n", v1, v2)
	}
	c3 := base
	v3 := np.Gen(1, &c3)
	if v3 == v1 {
		t.Errorf("different neurons should draw from different streams\n")
	}
	for ni := 0; ni < 100; ni++ {
		c := base
		v := np.Gen(ni, &c)
		if v < np.Mean-np.Var || v >= np.Mean+np.Var {
			t.Errorf("uniform draw out of bounds: %v\n", v)
		}
	}

	np.Dist = Gaussian
	cg1 := base
	cg2 := base
	g1 := np.Gen(0, &cg1)
	g2 := np.Gen(0, &cg2)
	if g1 != g2 {
		t.Errorf("gaussian draw must reproduce: %v != %v\n", g1, g2)
	}
}
