// Copyright (c) 2025, The Fastnet Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package fastnet is the overall repository for the fastnet parallel
spiking-network simulation engine, implemented in the Go language (golang).

This top-level of the repository has no functional code -- everything is
organized into the following sub-packages:

* fastnet: the core engine: structure-of-arrays neuron state, compressed
sparse connectivity with optional per-connection transmission delays,
gather-based input propagation, threaded fork-join integration over the
neuron index space, state recording, and the run lifecycle.  Results are
bit-identical for any thread count and reproducible from a seed.

* izhi: the Izhikevich quadratic spiking neuron model, with the standard
published presets (regular spiking, fast spiking, chattering, etc).

* xx1: the noisy X-over-X-plus-1 rate-coded activation function, used by
the rate model variant.

* examples: these compile into runnable programs.  examples/bench is a
parameterized performance benchmark over network size and thread count,
and examples/twocell is the minimal two-neuron network demonstrating
delayed spike transmission, logging a full trace to CSV.
*/
package fastnet
