// Copyright © 2024 The bigrig authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package phylo

import (
	"fmt"
	"strconv"
	"strings"
)

// Tree is a rooted binary phylogeny.
type Tree struct {
	Root *Node
}

// New wraps root in a Tree, assigning internal node IDs in preorder.
func New(root *Node) *Tree {
	root.AssignIDs(0)
	return &Tree{Root: root}
}

// LeafCount returns the total number of leaves in the tree.
func (t *Tree) LeafCount() int { return t.Root.LeafCount() }

// NodeCount returns the total number of nodes in the tree, leaves included.
func (t *Tree) NodeCount() int { return t.Root.NodeCount() }

// AssignAbsTimes sets every node's AbsTime relative to a root at time 0.
func (t *Tree) AssignAbsTimes() {
	t.Root.AssignAbsTimes(0)
}

// Preorder visits every node of the tree, parent before children.
func (t *Tree) Preorder(visit func(*Node)) {
	t.Root.Preorder(visit)
}

// ToNewick renders the tree as a Newick string, calling label for each
// node's trailing label:branch-length text (or any other per-node
// annotation a caller wants appended in its place).
func ToNewick(n *Node, label func(*Node) string) string {
	var sb strings.Builder
	writeNewick(&sb, n, label)
	sb.WriteByte(';')
	return sb.String()
}

func writeNewick(sb *strings.Builder, n *Node, label func(*Node) string) {
	if !n.IsLeaf() {
		sb.WriteByte('(')
		for i, c := range n.Children {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeNewick(sb, c, label)
		}
		sb.WriteByte(')')
	}
	sb.WriteString(label(n))
}

// DefaultLabel is the ToNewick label function used when a caller has no
// extra per-node annotation to append: the node's string ID followed by
// its branch length.
func DefaultLabel(n *Node) string {
	return fmt.Sprintf("%s:%s", quoteIfNeeded(n.StringID()), strconv.FormatFloat(n.Brlen, 'g', -1, 64))
}

// newickSpecial are the characters that force a label to be single-quoted
// in Newick output.
const newickSpecial = " \t\n(),:;'"

// quoteIfNeeded single-quotes s if it contains a character with syntactic
// meaning in Newick, doubling any single quotes already inside it.
func quoteIfNeeded(s string) string {
	if s == "" || !strings.ContainsAny(s, newickSpecial) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
