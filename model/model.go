// Copyright © 2024 The bigrig authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package model implements the event-weight computations of the
// generalized DEC+J biogeography model: dispersion and extinction rates,
// the four cladogenesis modes, optional per-region overrides, and an
// optional region-adjacency adjustment matrix.
package model

import (
	"errors"
	"fmt"

	"github.com/js-arias/bigrig/dist"
)

// ErrInvalidModel is returned when a model's parameters cannot produce any
// event for some range the model must be able to act on (e.g. all
// cladogenesis weights zero for both the singleton and non-singleton
// cases).
var ErrInvalidModel = errors.New("model: invalid parameters")

// RateParams holds the dispersion and extinction rates of the simplest DEC
// model. Both must be non-negative.
type RateParams struct {
	Dispersion float64
	Extinction float64
}

// CladoParams holds the weights of the four cladogenesis modes. All must
// be non-negative.
type CladoParams struct {
	Allopatry float64
	Sympatry  float64
	Copy      float64
	Jump      float64
}

// Sum returns the sum of the four weights.
func (c CladoParams) Sum() float64 {
	return c.Allopatry + c.Sympatry + c.Copy + c.Jump
}

// Normalize divides each weight by their sum. It fails if the sum is not
// strictly positive.
func (c CladoParams) Normalize() (CladoParams, error) {
	sum := c.Sum()
	if sum <= 0 {
		return CladoParams{}, fmt.Errorf("%w: cladogenesis weights sum to %v", ErrInvalidModel, sum)
	}
	return CladoParams{
		Allopatry: c.Allopatry / sum,
		Sympatry:  c.Sympatry / sum,
		Copy:      c.Copy / sum,
		Jump:      c.Jump / sum,
	}, nil
}

// PerRegionParams is an optional per-region override of rates and
// cladogenesis weights.
type PerRegionParams struct {
	Rates        *RateParams
	Cladogenesis *CladoParams
}

// TreeParams carries the parameters only relevant when the tree itself is
// being simulated jointly with the range process.
type TreeParams struct {
	// Cladogenesis is a speciation rate used as a clock independent of
	// the range-dependent speciation weight; it overrides
	// TotalSpeciationWeight.
	Cladogenesis float64
}

// Model aggregates the rate and cladogenesis parameters, optional
// per-region overrides, an optional adjustment matrix, and the flags that
// select among mathematically distinct conventions for edge cases.
type Model struct {
	Rates RateParams
	Clado CladoParams

	// PerRegion, if non-nil, overrides Rates/Clado for specific region
	// indices. A nil entry, or a nil field within an entry, falls back
	// to the global parameters.
	PerRegion []PerRegionParams

	// Adjustment, if non-nil, re-weights dispersion and jump events by
	// region pair.
	Adjustment *AdjustmentMatrix

	// Duplicity selects, for the two-region case, whether allopatry and
	// copy splits are counted by outcome (false, the default, matching
	// Matzke's +J) or by process (true).
	Duplicity bool

	// ExtinctionOfSingletons allows a singleton range to go extinct
	// instead of treating extinction as impossible for it.
	ExtinctionOfSingletons bool

	// Tree, if non-nil, activates tree-simulation mode: speciation is a
	// constant-rate clock rather than a function of the current range.
	Tree *TreeParams
}

// New creates a model with the given rates, cladogenesis weights, and
// two-region duplicity flag.
func New(rates RateParams, clado CladoParams, duplicity bool) *Model {
	return &Model{Rates: rates, Clado: clado, Duplicity: duplicity}
}

func (m *Model) hasPerRegion() bool { return len(m.PerRegion) > 0 }

func (m *Model) hasAdjustment() bool { return m.Adjustment != nil }

// perRegionRates returns the effective rate parameters for region i,
// falling back to the global rates if no override is set.
func (m *Model) perRegionRates(i int) RateParams {
	if m.hasPerRegion() && i < len(m.PerRegion) && m.PerRegion[i].Rates != nil {
		return *m.PerRegion[i].Rates
	}
	return m.Rates
}

// perRegionClado returns the effective cladogenesis parameters for region
// i, falling back to the global weights if no override is set.
func (m *Model) perRegionClado(i int) CladoParams {
	if m.hasPerRegion() && i < len(m.PerRegion) && m.PerRegion[i].Cladogenesis != nil {
		return *m.PerRegion[i].Cladogenesis
	}
	return m.Clado
}

// dispersionRateForRegion returns the dispersion rate attributed to region
// i (the destination of a dispersal event), per-region override preferred.
func (m *Model) dispersionRateForRegion(i int) float64 {
	return m.perRegionRates(i).Dispersion
}

// dispersionRate returns the (possibly adjustment-weighted) dispersion
// rate from region `from` into region `to`.
func (m *Model) dispersionRate(from, to int) float64 {
	dis := m.dispersionRateForRegion(to)
	if !m.hasAdjustment() {
		return dis
	}
	return dis * m.Adjustment.Get(from, to)
}

// DispersionWeightForIndex returns the per-region dispersion weight for an
// absent region j, i.e. the rate at which region j would be newly occupied
// from d. It returns 0 if region j is already occupied.
func (m *Model) DispersionWeightForIndex(d dist.Dist, j int) float64 {
	if d.At(j) {
		return 0
	}
	if !m.hasAdjustment() {
		return m.dispersionRateForRegion(j) * float64(d.FullRegionCount())
	}
	var sum float64
	for i := 0; i < d.Regions(); i++ {
		if d.At(i) {
			sum += m.dispersionRate(i, j)
		}
	}
	return sum
}

// DispersionWeight returns the total dispersion weight W_d(D).
func (m *Model) DispersionWeight(d dist.Dist) float64 {
	if !m.hasPerRegion() && !m.hasAdjustment() {
		return m.Rates.Dispersion * float64(d.EmptyRegionCount())
	}
	var sum float64
	for j := 0; j < d.Regions(); j++ {
		if d.At(j) {
			continue
		}
		sum += m.DispersionWeightForIndex(d, j)
	}
	return sum
}

// ExtinctionWeightForIndex returns the per-region extinction weight
// contribution of occupied region i, i.e. the rate at which d would lose
// region i. It returns 0 if region i is unoccupied, or if d is a singleton
// and ExtinctionOfSingletons is false.
func (m *Model) ExtinctionWeightForIndex(d dist.Dist, i int) float64 {
	if !d.At(i) {
		return 0
	}
	if d.Singleton() && !m.ExtinctionOfSingletons {
		return 0
	}
	return m.perRegionRates(i).Extinction
}

// ExtinctionWeight returns the total extinction weight W_e(D).
func (m *Model) ExtinctionWeight(d dist.Dist) float64 {
	if !m.hasPerRegion() {
		if d.Singleton() && !m.ExtinctionOfSingletons {
			return 0
		}
		return m.Rates.Extinction * float64(d.FullRegionCount())
	}
	var sum float64
	for i := 0; i < d.Regions(); i++ {
		sum += m.ExtinctionWeightForIndex(d, i)
	}
	return sum
}

// TotalRateWeight returns the combined anagenetic event rate
// W_e(D) + W_d(D).
func (m *Model) TotalRateWeight(d dist.Dist) float64 {
	return m.ExtinctionWeight(d) + m.DispersionWeight(d)
}

// JumpCount returns the number of distinct jump-split outcomes for d.
func (m *Model) JumpCount(d dist.Dist) int {
	return 2 * d.EmptyRegionCount()
}

// AllopatryCount returns the number of distinct allopatric-split outcomes
// for d.
func (m *Model) AllopatryCount(d dist.Dist) int {
	if d.Singleton() {
		return 0
	}
	n := 2 * d.FullRegionCount()
	if !m.Duplicity && d.FullRegionCount() == 2 {
		n -= 2
	}
	return n
}

// SympatryCount returns the number of distinct sympatric-split outcomes
// for d.
func (m *Model) SympatryCount(d dist.Dist) int {
	if d.Singleton() {
		return 0
	}
	return 2 * d.FullRegionCount()
}

// CopyCount returns the number of distinct copy-split outcomes for d.
func (m *Model) CopyCount(d dist.Dist) int {
	if !d.Singleton() {
		return 0
	}
	if m.Duplicity {
		return 1
	}
	return 2
}

func (m *Model) jumpParam(d dist.Dist) float64      { return m.cladoParamsFor(d).Jump }
func (m *Model) allopatryParam(d dist.Dist) float64 { return m.cladoParamsFor(d).Allopatry }
func (m *Model) sympatryParam(d dist.Dist) float64  { return m.cladoParamsFor(d).Sympatry }
func (m *Model) copyParam(d dist.Dist) float64      { return m.cladoParamsFor(d).Copy }

// cladoParamsFor returns the effective cladogenesis parameters for a
// range. A per-region override only has an unambiguous target region when
// the range is a singleton; non-singleton ranges always use the global
// weights, since a split's region draw has not happened yet.
func (m *Model) cladoParamsFor(d dist.Dist) CladoParams {
	if m.hasPerRegion() && d.Singleton() {
		if i, err := d.SetIndex(0); err == nil {
			return m.perRegionClado(i)
		}
	}
	return m.Clado
}

// JumpWeight returns the jump cladogenesis weight for d.
func (m *Model) JumpWeight(d dist.Dist) float64 {
	return float64(m.JumpCount(d)) * m.jumpParam(d)
}

// AllopatryWeight returns the allopatric cladogenesis weight for d.
func (m *Model) AllopatryWeight(d dist.Dist) float64 {
	return float64(m.AllopatryCount(d)) * m.allopatryParam(d)
}

// SympatryWeight returns the sympatric cladogenesis weight for d.
func (m *Model) SympatryWeight(d dist.Dist) float64 {
	return float64(m.SympatryCount(d)) * m.sympatryParam(d)
}

// CopyWeight returns the copy cladogenesis weight for d.
func (m *Model) CopyWeight(d dist.Dist) float64 {
	return float64(m.CopyCount(d)) * m.copyParam(d)
}

// TotalSingletonWeight returns the total cladogenesis weight available
// when d is a singleton (copy + jump).
func (m *Model) TotalSingletonWeight(d dist.Dist) float64 {
	return m.CopyWeight(d) + m.JumpWeight(d)
}

// TotalNonsingletonWeight returns the total cladogenesis weight available
// when d is not a singleton (sympatry + allopatry + jump).
func (m *Model) TotalNonsingletonWeight(d dist.Dist) float64 {
	return m.SympatryWeight(d) + m.AllopatryWeight(d) + m.JumpWeight(d)
}

// TotalSpeciationWeight returns the speciation weight used to roll a
// cladogenesis type. If Tree is set, it returns the constant
// Tree.Cladogenesis clock instead.
func (m *Model) TotalSpeciationWeight(d dist.Dist) float64 {
	if m.Tree != nil {
		return m.Tree.Cladogenesis
	}
	if d.Singleton() {
		return m.TotalSingletonWeight(d)
	}
	return m.TotalNonsingletonWeight(d)
}

// TotalEventWeight returns the combined anagenetic and cladogenetic event
// rate for d; used only for the joint tree/range simulator.
func (m *Model) TotalEventWeight(d dist.Dist) float64 {
	return m.TotalSpeciationWeight(d) + m.TotalRateWeight(d)
}

// JumpsOK reports whether jump cladogenesis is enabled, i.e. the jump
// weight is strictly positive.
func (m *Model) JumpsOK() bool { return m.Clado.Jump > 0 }

// AdjustmentProb returns the acceptance probability used by the adjusted
// rejection split sampler for a jump from region `from` to region `to`.
// It is 1.0 if no adjustment matrix is set.
func (m *Model) AdjustmentProb(from, to int) float64 {
	if !m.hasAdjustment() {
		return 1.0
	}
	return m.Adjustment.Get(from, to)
}

// NormalizedCladogenesisParams returns the model's global cladogenesis
// weights, normalized to sum to 1.
func (m *Model) NormalizedCladogenesisParams() (CladoParams, error) {
	return m.Clado.Normalize()
}

// NormalizedCladogenesisParamsFor returns the range-specific cladogenesis
// weights (accounting for singleton/non-singleton counts), normalized to
// sum to 1.
func (m *Model) NormalizedCladogenesisParamsFor(d dist.Dist) (CladoParams, error) {
	c := CladoParams{
		Allopatry: m.AllopatryWeight(d),
		Sympatry:  m.SympatryWeight(d),
		Copy:      m.CopyWeight(d),
		Jump:      m.JumpWeight(d),
	}
	return c.Normalize()
}

// CheckOK validates that the model can produce at least one cladogenesis
// event for both the full range and a singleton range of regionCount
// regions, and that any per-region overrides cover every region.
func (m *Model) CheckOK(regionCount int) error {
	var errs []error
	full := dist.Full(regionCount)
	single := dist.Single(regionCount, 0)
	if m.TotalNonsingletonWeight(full) == 0 {
		errs = append(errs, fmt.Errorf("%w: sympatry, allopatry and jump weights are all zero", ErrInvalidModel))
	}
	if m.TotalSingletonWeight(single) == 0 {
		errs = append(errs, fmt.Errorf("%w: copy and jump weights are all zero", ErrInvalidModel))
	}
	if m.hasPerRegion() && len(m.PerRegion) != regionCount {
		errs = append(errs, fmt.Errorf("%w: per-region parameters cover %d regions, want %d", ErrInvalidModel, len(m.PerRegion), regionCount))
	}
	return errors.Join(errs...)
}
