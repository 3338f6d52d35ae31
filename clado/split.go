// Copyright © 2024 The bigrig authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package clado implements the cladogenetic (speciation) part of the
// DEC+J process: sampling how a range splits between two daughter
// lineages, under the singleton/sympatric/allopatric/jump taxonomy.
package clado

import (
	"errors"
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/js-arias/bigrig/dist"
	"github.com/js-arias/bigrig/model"
)

// ErrNoSplit is returned when a split cannot be produced, either because
// the model admits no cladogenesis event for the range, or (Sim/Adjusted)
// a rejection loop could not find an acceptable candidate in a bounded
// number of tries.
var ErrNoSplit = errors.New("clado: no split is possible")

// maxRejectionTries bounds the Sim/Adjusted rejection loops so a
// degenerate model (e.g. an adjustment matrix of all zeros) cannot spin
// forever instead of reporting ErrNoSplit.
const maxRejectionTries = 1_000_000

// Type classifies a split's cladogenetic mode.
type Type int

const (
	Singleton Type = iota
	Allopatric
	Sympatric
	Jump
	Invalid
)

func (t Type) String() string {
	switch t {
	case Singleton:
		return "singleton"
	case Allopatric:
		return "allopatric"
	case Sympatric:
		return "sympatric"
	case Jump:
		return "jump"
	default:
		return "invalid"
	}
}

// Split is the outcome of a cladogenesis event: the ancestral range Top
// divides into Left and Right.
type Split struct {
	Left, Right, Top dist.Dist
	Type             Type
	PeriodIndex      int
}

// DetermineSplitType classifies a daughter pair against their parent,
// without reference to any model. Both daughters must be non-empty for
// any classification other than Invalid.
func DetermineSplitType(parent, left, right dist.Dist) Type {
	if left.IsEmpty() || right.IsEmpty() {
		return Invalid
	}

	if left.Bits() == parent.Bits() && right.Bits() == parent.Bits() && parent.Singleton() {
		return Singleton
	}

	leftSingleOutside := left.Singleton() && left.Intersect(parent).IsEmpty()
	rightSingleOutside := right.Singleton() && right.Intersect(parent).IsEmpty()
	if right.Bits() == parent.Bits() && leftSingleOutside {
		return Jump
	}
	if left.Bits() == parent.Bits() && rightSingleOutside {
		return Jump
	}

	union := left.Union(right)
	disjoint := left.Intersect(right).IsEmpty()
	if disjoint && union.Bits() == parent.Bits() && (left.Singleton() || right.Singleton()) {
		return Allopatric
	}

	if left.Bits() == parent.Bits() && right.Singleton() && right.Intersect(parent).Bits() == right.Bits() {
		return Sympatric
	}
	if right.Bits() == parent.Bits() && left.Singleton() && left.Intersect(parent).Bits() == left.Bits() {
		return Sympatric
	}

	return Invalid
}

// Sample draws a split of d under m via the combinatorial (Fast) method.
func Sample(d dist.Dist, m *model.Model, rng *rand.Rand) (Split, error) {
	return sampleFast(d, m, rng)
}

func trivialSplit(d dist.Dist) Split {
	return Split{Left: d, Right: d, Top: d, Type: Singleton}
}

// sampleFast rolls a split type combinatorially and then picks a region
// uniformly among the candidates for that type, per spec.md §4.4.
func sampleFast(d dist.Dist, m *model.Model, rng *rand.Rand) (Split, error) {
	if !m.JumpsOK() && d.Singleton() {
		return trivialSplit(d), nil
	}

	typ, err := rollSplitType(d, m, rng)
	if err != nil {
		return Split{}, err
	}
	if typ == Singleton {
		return trivialSplit(d), nil
	}

	var maxIndex int
	if typ == Jump {
		maxIndex = d.EmptyRegionCount()
	} else {
		maxIndex = d.FullRegionCount()
	}
	if maxIndex == 0 {
		return Split{}, fmt.Errorf("%w: no candidate region for a %v split", ErrNoSplit, typ)
	}

	pick := int(distuv.Uniform{Min: 0, Max: float64(maxIndex), Src: rng}.Rand())
	if pick >= maxIndex {
		pick = maxIndex - 1
	}

	var flipped int
	if typ == Jump {
		flipped, err = d.UnsetIndex(pick)
	} else {
		flipped, err = d.SetIndex(pick)
	}
	if err != nil {
		return Split{}, fmt.Errorf("clado: %w", err)
	}

	left := d
	if typ == Allopatric {
		left = d.FlipRegion(flipped)
	}
	right := dist.Single(d.Regions(), flipped)

	if (distuv.Bernoulli{P: 0.5, Src: rng}).Rand() == 1 {
		left, right = right, left
	}

	return Split{Left: left, Right: right, Top: d, Type: typ}, nil
}

// rollSplitType rolls a cladogenesis type proportional to the model's
// weights for d.
func rollSplitType(d dist.Dist, m *model.Model, rng *rand.Rand) (Type, error) {
	total := m.TotalNonsingletonWeight(d)
	if d.Singleton() {
		total = m.TotalSingletonWeight(d)
	}
	if total <= 0 {
		return Invalid, fmt.Errorf("%w: total speciation weight is zero", ErrNoSplit)
	}

	if d.Singleton() {
		jump := m.JumpWeight(d) / total
		if (distuv.Bernoulli{P: jump, Src: rng}).Rand() == 1 {
			return Jump, nil
		}
		return Singleton, nil
	}

	allo := m.AllopatryWeight(d)
	sym := m.SympatryWeight(d)
	jump := m.JumpWeight(d)

	roll := distuv.Uniform{Min: 0, Max: total, Src: rng}.Rand()
	options := []struct {
		weight float64
		typ    Type
	}{
		{allo, Allopatric},
		{sym, Sympatric},
		{jump, Jump},
	}
	for _, o := range options {
		if roll <= o.weight {
			return o.typ, nil
		}
		roll -= o.weight
	}
	return Invalid, fmt.Errorf("%w: roll exhausted every split type", ErrNoSplit)
}

// SampleRejection draws a split by generating uniformly random daughter
// pairs and classifying them, accepting with probability proportional to
// the matching cladogenesis parameter. It does not support Duplicity for
// allopatric/copy splits; kept only to validate Fast against an
// independent method.
func SampleRejection(d dist.Dist, m *model.Model, rng *rand.Rand) (Split, error) {
	if !m.JumpsOK() && d.Singleton() {
		return trivialSplit(d), nil
	}

	maxMask := (uint64(1) << d.Regions()) - 1
	params, err := m.NormalizedCladogenesisParams()
	if err != nil {
		return Split{}, fmt.Errorf("clado: %w", err)
	}
	accept := distuv.Uniform{Min: 0, Max: params.Sum(), Src: rng}

	for try := 0; try < maxRejectionTries; try++ {
		left := dist.New(randNonZeroMask(rng, maxMask), d.Regions())
		right := dist.New(randNonZeroMask(rng, maxMask), d.Regions())
		typ := DetermineSplitType(d, left, right)
		if typ == Invalid {
			continue
		}

		roll := accept.Rand()
		var ok bool
		switch typ {
		case Sympatric:
			ok = roll <= params.Sympatry
		case Allopatric:
			ok = roll <= params.Allopatry
		case Singleton:
			ok = roll <= params.Copy
		case Jump:
			ok = roll <= params.Jump
		}
		if ok {
			return Split{Left: left, Right: right, Top: d, Type: typ}, nil
		}
	}
	return Split{}, fmt.Errorf("%w: rejection sampler exceeded %d tries", ErrNoSplit, maxRejectionTries)
}

// randNonZeroMask draws a uniform integer in [1, maxMask].
func randNonZeroMask(rng *rand.Rand, maxMask uint64) uint64 {
	return 1 + uint64(distuv.Uniform{Min: 0, Max: float64(maxMask), Src: rng}.Rand())
}

// generateUniformSplit draws uniformly random daughter pairs of a
// specific type, used by the Adjusted sampler for the sympatric and
// allopatric branches (which need no region-pair re-weighting).
func generateUniformSplit(parent dist.Dist, typ Type, rng *rand.Rand) (Split, error) {
	maxMask := (uint64(1) << parent.Regions()) - 1
	for try := 0; try < maxRejectionTries; try++ {
		left := dist.New(randNonZeroMask(rng, maxMask), parent.Regions())
		idx := int(distuv.Uniform{Min: 0, Max: float64(parent.Regions()), Src: rng}.Rand())
		right := dist.Empty(parent.Regions()).FlipRegion(idx)

		if left.Union(right).Bits() != parent.Bits() {
			continue
		}
		if (distuv.Bernoulli{P: 0.5, Src: rng}).Rand() == 1 {
			left, right = right, left
		}
		if DetermineSplitType(parent, left, right) == typ {
			return Split{Left: left, Right: right, Top: parent, Type: typ}, nil
		}
	}
	return Split{}, fmt.Errorf("%w: adjusted %v sampler exceeded %d tries", ErrNoSplit, typ, maxRejectionTries)
}

// generateAdjustedJumpSplit draws a jump split whose source/destination
// region pair is accepted according to the adjustment matrix.
func generateAdjustedJumpSplit(parent dist.Dist, m *model.Model, rng *rand.Rand) (Split, error) {
	for try := 0; try < maxRejectionTries; try++ {
		from := int(distuv.Uniform{Min: 0, Max: float64(parent.Regions()), Src: rng}.Rand())
		if !parent.At(from) {
			continue
		}
		to := int(distuv.Uniform{Min: 0, Max: float64(parent.Regions()), Src: rng}.Rand())
		if parent.At(to) {
			continue
		}

		prob := m.AdjustmentProb(from, to)
		if prob < 1.0 && (distuv.Bernoulli{P: prob, Src: rng}).Rand() != 1 {
			continue
		}

		left := parent
		right := dist.Empty(parent.Regions()).FlipRegion(to)
		if (distuv.Bernoulli{P: 0.5, Src: rng}).Rand() == 1 {
			left, right = right, left
		}
		if DetermineSplitType(parent, left, right) == Jump {
			return Split{Left: left, Right: right, Top: parent, Type: Jump}, nil
		}
	}
	return Split{}, fmt.Errorf("%w: adjusted jump sampler exceeded %d tries", ErrNoSplit, maxRejectionTries)
}

// SampleAdjusted draws a split identically to Fast, except the jump
// branch's source/destination region pair is rejection-sampled against
// the model's adjustment matrix rather than picked uniformly.
func SampleAdjusted(d dist.Dist, m *model.Model, rng *rand.Rand) (Split, error) {
	if !m.JumpsOK() && d.Singleton() {
		return trivialSplit(d), nil
	}

	sym := m.SympatryWeight(d)
	allo := m.AllopatryWeight(d) + sym
	cp := m.CopyWeight(d) + allo
	jump := m.JumpWeight(d) + cp
	if jump <= 0 {
		return Split{}, fmt.Errorf("%w: total speciation weight is zero", ErrNoSplit)
	}

	roll := distuv.Uniform{Min: 0, Max: jump, Src: rng}.Rand()
	switch {
	case roll <= sym:
		return generateUniformSplit(d, Sympatric, rng)
	case roll <= allo:
		return generateUniformSplit(d, Allopatric, rng)
	case roll <= cp:
		return trivialSplit(d), nil
	default:
		return generateAdjustedJumpSplit(d, m, rng)
	}
}
