// Copyright (c) 2025, The Fastnet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fastnet

import (
	"fmt"
	"runtime"
	"sort"

	"github.com/emer/emergent/timer"
)

// RangeFun is a function that operates on a contiguous range of neuron
// indexes [lo, hi), running on worker thread th.
type RangeFun func(th, lo, hi int)

// RangeFunChan is a channel that runs RangeFun functions
type RangeFunChan chan RangeFun

// BuildThreads constructs the thread allocation: near-equal contiguous
// chunks of the neuron index space, one per worker.  NThreads <= 0 uses
// runtime.NumCPU(), capped at the number of neurons.  Because every
// neuron is computed independently within a pass, the chunking affects
// scheduling only, never results.
func (nt *Network) BuildThreads() {
	if nt.NThreads <= 0 {
		nt.NThreads = runtime.NumCPU()
	}
	n := nt.State.N
	if nt.NThreads > n && n > 0 {
		nt.NThreads = n
	}
	nt.Chunks = make([][2]int, nt.NThreads)
	ch := n / nt.NThreads
	ex := n % nt.NThreads
	lo := 0
	for th := 0; th < nt.NThreads; th++ {
		hi := lo + ch
		if th < ex {
			hi++
		}
		nt.Chunks[th] = [2]int{lo, hi}
		lo = hi
	}
	nt.ThrChans = make([]RangeFunChan, nt.NThreads)
	nt.ThrTimes = make([]timer.Time, nt.NThreads)
	nt.ThrErrs = make([]error, nt.NThreads)
	nt.FunTimes = make(map[string]*timer.Time)
	for th := 0; th < nt.NThreads; th++ {
		nt.ThrChans[th] = make(RangeFunChan)
	}
}

// StartThreads starts up the computation threads, which monitor the
// channels for work
func (nt *Network) StartThreads() {
	for th := 0; th < nt.NThreads; th++ {
		go nt.ThrWorker(th) // start the worker thread for this channel
	}
}

// StopThreads stops the computation threads
func (nt *Network) StopThreads() {
	for th := 0; th < nt.NThreads; th++ {
		close(nt.ThrChans[th])
	}
}

// ThrWorker is the worker function run by the worker threads
func (nt *Network) ThrWorker(tt int) {
	if nt.LockThreads {
		runtime.LockOSThread()
	}
	for fun := range nt.ThrChans[tt] {
		ck := nt.Chunks[tt]
		if nt.RecFunTimes {
			nt.ThrTimes[tt].Start()
			fun(tt, ck[0], ck[1])
			nt.ThrTimes[tt].Stop()
		} else {
			fun(tt, ck[0], ck[1])
		}
		nt.WaitGp.Done()
	}
	if nt.LockThreads {
		runtime.UnlockOSThread()
	}
}

// ThrRangeFun calls function on the full neuron index space, using
// threaded (go routine worker) computation if NThreads > 1 and otherwise
// just running the function directly in the current thread.  It returns
// after all workers have finished their chunk (fork-join barrier).
func (nt *Network) ThrRangeFun(fun RangeFun, funame string) {
	if nt.RecFunTimes {
		nt.FunTimerStart(funame)
	}
	if nt.NThreads <= 1 {
		fun(0, 0, nt.State.N)
	} else {
		for th := 0; th < nt.NThreads; th++ {
			nt.WaitGp.Add(1)
			nt.ThrChans[th] <- fun
		}
		nt.WaitGp.Wait()
	}
	if nt.RecFunTimes {
		nt.FunTimerStop(funame)
	}
}

// TimerReport reports the amount of time spent in each function, and in
// each thread.  Requires RecFunTimes to have been set during the run.
func (nt *Network) TimerReport() {
	fmt.Printf("TimerReport: %v, NThreads: %v\n", nt.Nm, nt.NThreads)
	fmt.Printf("\tFunction Name\tTotal Secs\tPct\n")
	nfn := len(nt.FunTimes)
	fnms := make([]string, nfn)
	idx := 0
	for k := range nt.FunTimes {
		fnms[idx] = k
		idx++
	}
	sort.StringSlice(fnms).Sort()
	pcts := make([]float64, nfn)
	tot := 0.0
	for i, fn := range fnms {
		pcts[i] = nt.FunTimes[fn].TotalSecs()
		tot += pcts[i]
	}
	for i, fn := range fnms {
		fmt.Printf("\t%v \t%6.4g\t%6.4g\n", fn, pcts[i], 100*(pcts[i]/tot))
	}
	fmt.Printf("\tTotal   \t%6.4g\n", tot)

	if nt.NThreads <= 1 {
		return
	}
	fmt.Printf("\n\tThr\tTotal Secs\tPct\n")
	pcts = make([]float64, nt.NThreads)
	tot = 0.0
	for th := 0; th < nt.NThreads; th++ {
		pcts[th] = nt.ThrTimes[th].TotalSecs()
		tot += pcts[th]
	}
	for th := 0; th < nt.NThreads; th++ {
		fmt.Printf("\t%v \t%6.4g\t%6.4g\n", th, pcts[th], 100*(pcts[th]/tot))
	}
}

// ThrTimerReset resets the per-thread timers
func (nt *Network) ThrTimerReset() {
	for th := 0; th < nt.NThreads; th++ {
		nt.ThrTimes[th].Reset()
	}
}

// FunTimerStart starts function timer for given function name -- ensures
// creation of timer
func (nt *Network) FunTimerStart(fun string) {
	ft, ok := nt.FunTimes[fun]
	if !ok {
		ft = &timer.Time{}
		nt.FunTimes[fun] = ft
	}
	ft.Start()
}

// FunTimerStop stops function timer -- timer must already exist
func (nt *Network) FunTimerStop(fun string) {
	ft := nt.FunTimes[fun]
	ft.Stop()
}
