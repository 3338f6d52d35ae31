// Copyright © 2024 The bigrig authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package spread implements the anagenetic (within-branch) part of the
// DEC+J process: sampling a single dispersal-or-extinction transition out
// of a range, and walking a branch across a period.List to produce the
// ordered sequence of transitions that occur along it.
package spread

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/js-arias/bigrig/dist"
	"github.com/js-arias/bigrig/model"
	"github.com/js-arias/bigrig/period"
)

// ErrNoTransition is returned when a range admits no anagenetic event at
// all (every dispersion and extinction weight is zero).
var ErrNoTransition = errors.New("spread: no transition is possible")

// Mode selects the algorithm used to sample a single transition.
type Mode int

const (
	// Fast samples the waiting time and the region analytically: one
	// exponential draw for the time, one uniform draw over the combined
	// weight to pick which region changes state.
	Fast Mode = iota
	// Sim samples a transition by rejection: rolls an independent
	// exponential waiting time per region and keeps the minimum. Kept
	// as a correctness check against Fast; asymptotically equivalent
	// but linear-per-roll instead of two draws.
	Sim
)

// Transition is a single anagenetic event: region i of InitialState flips
// state after WaitingTime has elapsed, producing FinalState.
type Transition struct {
	WaitingTime  float64
	InitialState dist.Dist
	FinalState   dist.Dist
	PeriodIndex  int
}

// Sample draws a single transition out of d under m, using the requested
// mode.
func Sample(d dist.Dist, m *model.Model, rng *rand.Rand, mode Mode) (Transition, error) {
	switch mode {
	case Fast:
		return sampleFast(d, m, rng)
	case Sim:
		return sampleRejection(d, m, rng)
	default:
		return Transition{}, fmt.Errorf("spread: unrecognized mode %d", mode)
	}
}

// sampleRejection imagines every region's potential event (extinction if
// occupied, dispersion if empty) as an independent exponential process, and
// returns the one that fires first. Exists as a check against sampleFast,
// not for production use: it is linear in the region count per draw
// instead of analytic.
func sampleRejection(d dist.Dist, m *model.Model, rng *rand.Rand) (Transition, error) {
	n := d.Regions()
	best := Transition{WaitingTime: math.Inf(1)}
	found := false

	for i := 0; i < n; i++ {
		var rate float64
		if d.At(i) {
			rate = m.ExtinctionWeightForIndex(d, i)
		} else {
			rate = m.DispersionWeightForIndex(d, i)
		}
		if rate <= 0 {
			continue
		}
		wait := distuv.Exponential{Rate: rate, Src: rng}.Rand()
		if wait < best.WaitingTime {
			best = Transition{
				WaitingTime:  wait,
				InitialState: d,
				FinalState:   d.FlipRegion(i),
			}
			found = true
		}
	}
	if !found {
		return Transition{}, ErrNoTransition
	}
	return best, nil
}

// flipRegion picks a single region to flip by drawing uniformly over the
// combined dispersion/extinction weight, walking regions in order and
// subtracting each one's contribution until the running roll goes
// non-positive. The returned transition's WaitingTime is left unset
// (infinite), to be overwritten by the caller.
func flipRegion(d dist.Dist, m *model.Model, rng *rand.Rand) (Transition, error) {
	total := m.TotalRateWeight(d)
	if total <= 0 {
		return Transition{}, ErrNoTransition
	}

	roll := distuv.Uniform{Min: 0, Max: total, Src: rng}.Rand()
	for i := 0; i < d.Regions(); i++ {
		if d.At(i) {
			roll -= m.ExtinctionWeightForIndex(d, i)
		} else {
			roll -= m.DispersionWeightForIndex(d, i)
		}
		if roll <= 0 {
			return Transition{
				WaitingTime:  math.Inf(1),
				InitialState: d,
				FinalState:   d.FlipRegion(i),
			}, nil
		}
	}
	return Transition{}, fmt.Errorf("spread: %w: failed to pick a region", ErrNoTransition)
}

// sampleFast draws the waiting time and the flipped region independently:
// one exponential draw over the combined rate for the waiting time, and a
// separate weighted draw (via flipRegion) for which region changes.
func sampleFast(d dist.Dist, m *model.Model, rng *rand.Rand) (Transition, error) {
	total := m.TotalRateWeight(d)
	if total <= 0 {
		return Transition{}, ErrNoTransition
	}
	wait := distuv.Exponential{Rate: total, Src: rng}.Rand()

	tr, err := flipRegion(d, m, rng)
	if err != nil {
		return Transition{}, err
	}
	tr.WaitingTime = wait
	return tr, nil
}

// SimulateTransitions walks a branch of length equal to the span of
// periods, starting in state init, and returns every anagenetic transition
// that occurs along it in order. A draw whose waiting time would carry
// past the current period's end is discarded and not recorded; the time
// left in that period is instead carried as a remainder and added to the
// waiting time of the next period's first draw, relying on the memoryless
// property of the exponential distribution.
func SimulateTransitions(init dist.Dist, periods *period.List, rng *rand.Rand, mode Mode) ([]Transition, error) {
	var results []Transition
	state := init
	var remainder float64

	for i := 0; i < periods.Len(); i++ {
		p := periods.At(i)
		brlen := p.Length
		for {
			tr, err := Sample(state, p.Model, rng, mode)
			if err != nil {
				return nil, fmt.Errorf("period %d: %w", p.Index, err)
			}
			tr.PeriodIndex = p.Index
			tr.WaitingTime += remainder
			remainder = 0

			remaining := brlen - tr.WaitingTime
			if remaining < 0 {
				remainder = brlen
				break
			}

			brlen = remaining
			state = tr.FinalState
			results = append(results, tr)
		}
	}
	return results, nil
}
