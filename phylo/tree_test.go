// Copyright © 2024 The bigrig authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package phylo_test

import (
	"strings"
	"testing"

	"github.com/js-arias/bigrig/phylo"
)

func TestParseNewickCounts(t *testing.T) {
	tr, err := phylo.ParseNewick(strings.NewReader("((a:1,b:1):1,c:2);"))
	if err != nil {
		t.Fatalf("ParseNewick: %v", err)
	}
	if got, want := tr.LeafCount(), 3; got != want {
		t.Errorf("LeafCount = %d, want %d", got, want)
	}
	if got, want := tr.NodeCount(), 5; got != want {
		t.Errorf("NodeCount = %d, want %d", got, want)
	}
}

func TestParseNewickQuotedLabel(t *testing.T) {
	tr, err := phylo.ParseNewick(strings.NewReader("(a:1,'homo sapiens':1);"))
	if err != nil {
		t.Fatalf("ParseNewick: %v", err)
	}
	var labels []string
	tr.Preorder(func(n *phylo.Node) {
		if n.IsLeaf() {
			labels = append(labels, n.Label)
		}
	})
	if len(labels) != 2 || labels[1] != "homo sapiens" {
		t.Errorf("labels = %v, want [a, homo sapiens]", labels)
	}
}

func TestParseNewickUnderscoreLabel(t *testing.T) {
	tr, err := phylo.ParseNewick(strings.NewReader("(Homo_sapiens:1,b:1);"))
	if err != nil {
		t.Fatalf("ParseNewick: %v", err)
	}
	if tr.Root.Children[0].Label != "Homo sapiens" {
		t.Errorf("Label = %q, want %q", tr.Root.Children[0].Label, "Homo sapiens")
	}
}

func TestParseNewickRejectsMissingSemicolon(t *testing.T) {
	if _, err := phylo.ParseNewick(strings.NewReader("(a:1,b:1)")); err == nil {
		t.Errorf("expected an error for a missing terminating ';'")
	}
}

func TestToNewickRoundTrip(t *testing.T) {
	tr, err := phylo.ParseNewick(strings.NewReader("((a:1,b:2):3,c:4);"))
	if err != nil {
		t.Fatalf("ParseNewick: %v", err)
	}
	out := phylo.ToNewick(tr.Root, phylo.DefaultLabel)

	tr2, err := phylo.ParseNewick(strings.NewReader(out))
	if err != nil {
		t.Fatalf("re-parsing rendered Newick %q: %v", out, err)
	}
	if got, want := tr2.LeafCount(), tr.LeafCount(); got != want {
		t.Errorf("round trip LeafCount = %d, want %d", got, want)
	}
}

func TestAssignAbsTimes(t *testing.T) {
	tr, err := phylo.ParseNewick(strings.NewReader("((a:1,b:1):1,c:2);"))
	if err != nil {
		t.Fatalf("ParseNewick: %v", err)
	}
	tr.AssignAbsTimes()
	if got, want := tr.Root.AbsTime, tr.Root.Brlen; got != want {
		t.Errorf("root AbsTime = %v, want %v", got, want)
	}
	for _, c := range tr.Root.Children {
		if c.AbsTime != tr.Root.AbsTime+c.Brlen {
			t.Errorf("child AbsTime = %v, want %v", c.AbsTime, tr.Root.AbsTime+c.Brlen)
		}
	}
}
