// Copyright © 2024 The bigrig authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package model

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrInvalidMatrixShape is returned when an adjustment matrix's row-major
// value slice does not match its declared region count.
var ErrInvalidMatrixShape = errors.New("model: invalid adjustment matrix shape")

// AdjustmentMatrix is a square, row-major matrix of non-negative region-pair
// weights used to re-weight dispersion and jump events. The diagonal is
// never read by any sampler.
type AdjustmentMatrix struct {
	n    int
	vals []float64
}

// NewAdjustmentMatrix builds an adjustment matrix from a row-major slice
// of n*n values.
func NewAdjustmentMatrix(n int, vals []float64) (*AdjustmentMatrix, error) {
	if len(vals) != n*n {
		return nil, fmt.Errorf("%w: got %d values, want %d", ErrInvalidMatrixShape, len(vals), n*n)
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	return &AdjustmentMatrix{n: n, vals: cp}, nil
}

// Get returns the adjustment weight for dispersal from region `from` to
// region `to`.
func (a *AdjustmentMatrix) Get(from, to int) float64 {
	return a.vals[from*a.n+to]
}

// Regions returns the region count the matrix is defined over.
func (a *AdjustmentMatrix) Regions() int { return a.n }

// ApplyExponent replaces every non-zero entry a with a^k.
func (a *AdjustmentMatrix) ApplyExponent(k float64) {
	for i, v := range a.vals {
		if v != 0 {
			a.vals[i] = math.Pow(v, k)
		}
	}
}

// Simulate fills the matrix symmetrically with IID Gamma(alpha, beta)
// off-diagonal entries, using rng for randomness. The diagonal is always
// set to zero; it is never consulted by any sampler, but is zeroed
// explicitly so output is deterministic for a given seed.
func (a *AdjustmentMatrix) Simulate(alpha, beta float64, rng *rand.Rand) {
	gamma := distuv.Gamma{Alpha: alpha, Beta: beta, Src: rng}
	for i := 0; i < a.n; i++ {
		a.vals[i*a.n+i] = 0
		for j := i + 1; j < a.n; j++ {
			v := gamma.Rand()
			a.vals[i*a.n+j] = v
			a.vals[j*a.n+i] = v
		}
	}
}
