// Copyright © 2024 The bigrig authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package rng provides the process-wide random number generator used by
// the bigrig CLI. The simulation kernel itself never touches this
// package: every sampler takes a *rand.Rand explicitly, so that a given
// (seed, input) pair is always reproducible regardless of call order
// elsewhere in the process. This package exists only as the seed-once
// convenience accessor for the command-line entry point.
package rng

import (
	"math/rand"
	"time"
)

var global *rand.Rand

// Seed initializes the process-wide generator with a user-provided seed,
// for reproducible runs.
func Seed(seed int64) {
	global = rand.New(rand.NewSource(seed))
}

// SeedFromEntropy initializes the process-wide generator from a
// time-derived seed, for runs that do not need to be reproduced.
func SeedFromEntropy() {
	global = rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Global returns the process-wide generator, seeding it from entropy on
// first use if nothing has seeded it yet.
func Global() *rand.Rand {
	if global == nil {
		SeedFromEntropy()
	}
	return global
}
