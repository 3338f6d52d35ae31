// Copyright © 2024 The bigrig authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package phylo implements the rooted binary tree structures walked or
// jointly simulated by the biogeography process: nodes carrying a range
// state, the cladogenesis split that produced it, and the ordered
// anagenetic transitions along the branch leading to it.
package phylo

import (
	"strconv"

	"github.com/js-arias/bigrig/clado"
	"github.com/js-arias/bigrig/dist"
	"github.com/js-arias/bigrig/spread"
)

// Node is a single node of a phylogeny, annotated with its range history.
// Unlike the original's shared_ptr graph, each child is referenced only
// from its parent's Children slice of pointers.
type Node struct {
	Label string
	Brlen float64

	// AbsTime is the node's absolute age, measured as elapsed time
	// since the start of the root's branch (root AbsTime is its own
	// Brlen, 0 for a root with no branch length, increasing toward the
	// tips).
	AbsTime float64

	// NodeID identifies internal nodes in preorder assignment order;
	// unset (0) for leaves, which are identified by Label instead.
	NodeID int

	// FinalState is the range at this node, after every transition of
	// its incoming branch and (for internal nodes) before any
	// cladogenesis split.
	FinalState dist.Dist

	// Split is the cladogenesis event that produced this node's
	// children, zero-valued for leaves.
	Split clado.Split

	// Transitions is the ordered anagenetic history of the branch
	// leading to this node from its parent.
	Transitions []spread.Transition

	Children []*Node
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// AddChild appends c to n's children.
func (n *Node) AddChild(c *Node) {
	n.Children = append(n.Children, c)
}

// StringID returns the node's label if it is a leaf, or its numeric node
// ID otherwise, mirroring the original's leaf-label/internal-ID split.
func (n *Node) StringID() string {
	if n.IsLeaf() {
		return n.Label
	}
	return strconv.Itoa(n.NodeID)
}

// LeafCount returns the number of leaf descendants of n, including n
// itself if it is a leaf.
func (n *Node) LeafCount() int {
	if n.IsLeaf() {
		return 1
	}
	count := 0
	for _, c := range n.Children {
		count += c.LeafCount()
	}
	return count
}

// NodeCount returns the total number of nodes in n's subtree, including n
// itself and every leaf.
func (n *Node) NodeCount() int {
	count := 1
	for _, c := range n.Children {
		count += c.NodeCount()
	}
	return count
}

// AssignIDs numbers every internal node in preorder, starting from 0, and
// returns the next unused ID (equivalently, the number of internal
// nodes numbered).
func (n *Node) AssignIDs(next int) int {
	if n.IsLeaf() {
		return next
	}
	n.NodeID = next
	next++
	for _, c := range n.Children {
		next = c.AssignIDs(next)
	}
	return next
}

// AssignAbsTimes sets n's AbsTime to t+n.Brlen, then recurses into every
// child with that value as their base time.
func (n *Node) AssignAbsTimes(t float64) {
	n.AbsTime = t + n.Brlen
	for _, c := range n.Children {
		c.AssignAbsTimes(n.AbsTime)
	}
}

// Preorder calls visit on n and then, recursively, on every descendant, in
// a parent-before-children (preorder) traversal.
func (n *Node) Preorder(visit func(*Node)) {
	visit(n)
	for _, c := range n.Children {
		c.Preorder(visit)
	}
}
