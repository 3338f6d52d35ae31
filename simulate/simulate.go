// Copyright © 2024 The bigrig authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package simulate implements the two top-level tree-walking modes of the
// biogeography process: annotating a caller-supplied tree with a range
// history, and jointly simulating a tree and its range history under a
// birth-death process.
package simulate

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/js-arias/bigrig/clado"
	"github.com/js-arias/bigrig/dist"
	"github.com/js-arias/bigrig/model"
	"github.com/js-arias/bigrig/period"
	"github.com/js-arias/bigrig/phylo"
	"github.com/js-arias/bigrig/spread"
)

// ErrNoTreeParams is returned when SimulateTree is called with a model
// that has no Tree parameters set.
var ErrNoTreeParams = errors.New("simulate: model has no tree parameters")

// AnnotateTree walks a caller-supplied tree in preorder, starting from
// root at root with the given initial range, and fills in every node's
// FinalState, Split and Transitions by sampling the anagenetic and
// cladogenetic processes across periods.
func AnnotateTree(tr *phylo.Tree, initial dist.Dist, periods *period.List, rng *rand.Rand, mode spread.Mode) error {
	tr.AssignAbsTimes()
	tr.Root.FinalState = initial

	return annotate(tr.Root, 0, periods, rng, mode)
}

// annotate fills in n's Split (if internal) and recurses into each child,
// walking the child's incoming branch across the periods spanning
// [n.AbsTime, child.AbsTime].
func annotate(n *phylo.Node, t0 float64, periods *period.List, rng *rand.Rand, mode spread.Mode) error {
	if n.IsLeaf() {
		return nil
	}

	splitPeriod, err := periods.Get(n.AbsTime)
	if err != nil {
		return fmt.Errorf("simulate: node %s: %w", n.StringID(), err)
	}
	s, err := clado.Sample(n.FinalState, splitPeriod.Model, rng)
	if err != nil {
		return fmt.Errorf("simulate: node %s: %w", n.StringID(), err)
	}
	s.PeriodIndex = splitPeriod.Index
	n.Split = s

	daughters := [2]dist.Dist{s.Left, s.Right}
	for i, c := range n.Children {
		sub := periods.Sub(n.AbsTime, c.AbsTime)
		trs, err := spread.SimulateTransitions(daughters[i], sub, rng, mode)
		if err != nil {
			return fmt.Errorf("simulate: branch to %s: %w", c.StringID(), err)
		}
		c.Transitions = trs
		c.FinalState = daughters[i]
		if len(trs) > 0 {
			c.FinalState = trs[len(trs)-1].FinalState
		}
		if err := annotate(c, n.AbsTime, periods, rng, mode); err != nil {
			return err
		}
	}
	return nil
}

// SimulateTree jointly simulates a tree topology and its range history
// under a birth-death process coupled to range evolution, for an absolute
// duration of T million years starting from initial at time 0. m.Tree
// must be set; its Cladogenesis field is the constant speciation clock.
func SimulateTree(initial dist.Dist, m *model.Model, periods *period.List, t float64, rng *rand.Rand, mode spread.Mode) (*phylo.Tree, error) {
	if m.Tree == nil {
		return nil, ErrNoTreeParams
	}
	root := &phylo.Node{FinalState: initial}
	if err := simulateBranch(root, 0, t, periods, rng, mode); err != nil {
		return nil, err
	}
	return phylo.New(root), nil
}

// simulateBranch runs the joint speciation/range-event race starting at
// absolute time t0 in state n.FinalState, terminating the branch at
// absolute time tMax (a surviving leaf), at extinction (an extinct leaf,
// when a range-event empties the range), or at a speciation event
// (recursing into two children). Range-events are sampled exactly as in
// AnnotateTree, via spread.Sample against the combined anagenetic rate;
// the branch races that clock against a separate constant speciation
// clock (m.Tree.Cladogenesis).
func simulateBranch(n *phylo.Node, t0, tMax float64, periods *period.List, rng *rand.Rand, mode spread.Mode) error {
	t := t0
	state := n.FinalState

	for {
		p, err := periods.Get(t)
		if err != nil {
			return fmt.Errorf("simulate: %w", err)
		}

		lambda := p.Model.TotalSpeciationWeight(state)
		rangeRate := p.Model.TotalRateWeight(state)
		total := lambda + rangeRate
		if total <= 0 {
			n.Brlen = tMax - t0
			n.FinalState = state
			n.AbsTime = tMax
			return nil
		}

		tau := distuv.Exponential{Rate: total, Src: rng}.Rand()
		if t+tau > tMax {
			n.Brlen = tMax - t0
			n.FinalState = state
			n.AbsTime = tMax
			return nil
		}
		t += tau

		roll := distuv.Uniform{Min: 0, Max: total, Src: rng}.Rand()
		if roll <= lambda {
			n.Brlen = t - t0
			n.FinalState = state
			n.AbsTime = t
			return speciate(n, t, tMax, p, periods, rng, mode)
		}

		tr, err := spread.Sample(state, p.Model, rng, mode)
		if err != nil {
			return fmt.Errorf("simulate: %w", err)
		}
		tr.WaitingTime = tau
		tr.PeriodIndex = p.Index
		n.Transitions = append(n.Transitions, tr)
		state = tr.FinalState

		if state.IsEmpty() {
			n.Brlen = t - t0
			n.FinalState = state
			n.AbsTime = t
			return nil
		}
	}
}

// speciate applies a cladogenesis split to n's state at time t and
// recurses into two new child branches, each run to tMax.
func speciate(n *phylo.Node, t, tMax float64, p period.Period, periods *period.List, rng *rand.Rand, mode spread.Mode) error {
	s, err := clado.Sample(n.FinalState, p.Model, rng)
	if err != nil {
		return fmt.Errorf("simulate: %w", err)
	}
	s.PeriodIndex = p.Index
	n.Split = s

	for _, daughter := range [2]dist.Dist{s.Left, s.Right} {
		child := &phylo.Node{FinalState: daughter}
		if err := simulateBranch(child, t, tMax, periods, rng, mode); err != nil {
			return err
		}
		n.AddChild(child)
	}
	return nil
}

// ExpectedPureBirthLeaves returns the expected leaf count of a pure-birth
// (Yule) process with speciation rate lambda run for duration t,
// 2*e^(lambda*t), for use validating SimulateTree in tests.
func ExpectedPureBirthLeaves(lambda, t float64) float64 {
	return 2 * math.Exp(lambda*t)
}

// ExpectedPureBirthBranchSum returns the expected sum of branch lengths of
// a pure-birth process with speciation rate lambda run for duration t,
// (2/lambda)*(e^(lambda*t)-1).
func ExpectedPureBirthBranchSum(lambda, t float64) float64 {
	return (2 / lambda) * (math.Exp(lambda*t) - 1)
}

// ExpectedReconstructedLeaves returns the expected reconstructed
// (extinction-pruned) leaf count of a birth-death process with speciation
// rate lambda, extinction rate mu, run for duration t, 2*e^((lambda-mu)t).
func ExpectedReconstructedLeaves(lambda, mu, t float64) float64 {
	return 2 * math.Exp((lambda-mu)*t)
}
