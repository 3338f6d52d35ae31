// Copyright © 2024 The bigrig authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package simulate_test

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/js-arias/bigrig/dist"
	"github.com/js-arias/bigrig/model"
	"github.com/js-arias/bigrig/period"
	"github.com/js-arias/bigrig/phylo"
	"github.com/js-arias/bigrig/simulate"
	"github.com/js-arias/bigrig/spread"
)

func testModel() *model.Model {
	return model.New(model.RateParams{Dispersion: 1, Extinction: 1}, model.CladoParams{Sympatry: 1, Jump: 1}, false)
}

func TestAnnotateTree(t *testing.T) {
	tr, err := phylo.ParseNewick(strings.NewReader("((a:1,b:1):1,c:2);"))
	if err != nil {
		t.Fatalf("ParseNewick: %v", err)
	}

	m := testModel()
	list, err := period.New([]period.Period{{Start: 0, Length: 10, Model: m}})
	if err != nil {
		t.Fatalf("period.New: %v", err)
	}

	initial := dist.Full(4)
	rng := rand.New(rand.NewSource(1))
	if err := simulate.AnnotateTree(tr, initial, list, rng, spread.Fast); err != nil {
		t.Fatalf("AnnotateTree: %v", err)
	}

	var leaves int
	tr.Preorder(func(n *phylo.Node) {
		if n.IsLeaf() {
			leaves++
			if n.FinalState.Regions() != 4 {
				t.Errorf("leaf %s FinalState.Regions() = %d, want 4", n.Label, n.FinalState.Regions())
			}
		}
	})
	if leaves != 3 {
		t.Errorf("leaves = %d, want 3", leaves)
	}
}

func TestSimulateTreeRequiresTreeParams(t *testing.T) {
	m := testModel()
	list, err := period.New([]period.Period{{Start: 0, Length: 10, Model: m}})
	if err != nil {
		t.Fatalf("period.New: %v", err)
	}
	rng := rand.New(rand.NewSource(1))

	if _, err := simulate.SimulateTree(dist.Full(4), m, list, 5, rng, spread.Fast); err == nil {
		t.Errorf("expected an error when model.Tree is nil")
	}
}

func TestSimulateTreeProducesABinaryTree(t *testing.T) {
	m := testModel()
	m.Tree = &model.TreeParams{Cladogenesis: 2}
	list, err := period.New([]period.Period{{Start: 0, Length: 100, Model: m}})
	if err != nil {
		t.Fatalf("period.New: %v", err)
	}
	rng := rand.New(rand.NewSource(7))

	tr, err := simulate.SimulateTree(dist.Full(4), m, list, 2, rng, spread.Fast)
	if err != nil {
		t.Fatalf("SimulateTree: %v", err)
	}

	var walk func(n *phylo.Node)
	walk = func(n *phylo.Node) {
		if !n.IsLeaf() && len(n.Children) != 2 {
			t.Errorf("internal node has %d children, want 2", len(n.Children))
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(tr.Root)
	if tr.LeafCount() < 1 {
		t.Errorf("LeafCount = %d, want at least 1", tr.LeafCount())
	}
}

func TestExpectedPureBirthFormulas(t *testing.T) {
	lambda, tt := 0.5, 2.0
	if got, want := simulate.ExpectedPureBirthLeaves(lambda, tt), 2*math.Exp(lambda*tt); got != want {
		t.Errorf("ExpectedPureBirthLeaves = %v, want %v", got, want)
	}
	want := (2 / lambda) * (math.Exp(lambda*tt) - 1)
	if got := simulate.ExpectedPureBirthBranchSum(lambda, tt); got != want {
		t.Errorf("ExpectedPureBirthBranchSum = %v, want %v", got, want)
	}
}
