package mcts

import "sync/atomic"

// Tree is a fixed-capacity arena of nodes addressed by int32 indices. The
// root lives at index 0. Expansion reserves contiguous child ranges by
// advancing nuNodes; nodes are never freed individually, the whole arena is
// cleared or swapped instead.
type Tree[M MoveLike] struct {
	maxNodes int32
	nuNodes  atomic.Int32
	nodes    []Node[M]
}

func NewTree[M MoveLike](maxNodes int, nullMove M, tieValue Float) *Tree[M] {
	if maxNodes < 1 {
		failf("Tree: maxNodes %d < 1", maxNodes)
	}
	t := &Tree[M]{
		maxNodes: int32(maxNodes),
		nodes:    make([]Node[M], maxNodes),
	}
	t.nuNodes.Store(1)
	t.nodes[0].init(nullMove, tieValue, 0, tieValue, 0)
	return t
}

func (t *Tree[M]) Root() *Node[M] { return &t.nodes[0] }

func (t *Tree[M]) NuNodes() int32 { return t.nuNodes.Load() }

func (t *Tree[M]) MaxNodes() int { return int(t.maxNodes) }

// Node returns the node at index i.
func (t *Tree[M]) Node(i int32) *Node[M] {
	if i < 0 || i >= t.nuNodes.Load() {
		failf("Tree.Node: index %d out of range [0, %d)", i, t.nuNodes.Load())
	}
	return &t.nodes[i]
}

// Clear discards all nodes but the root and resets the root statistics.
// Single-threaded use only.
func (t *Tree[M]) Clear(nullMove M, tieValue Float) {
	t.nuNodes.Store(1)
	t.nodes[0].init(nullMove, tieValue, 0, tieValue, 0)
}

// ClearRootValue resets the root playout statistics, keeping its children.
func (t *Tree[M]) ClearRootValue(tieValue Float) {
	t.nodes[0].clearValue(tieValue)
}

// SetMaxNodes reallocates the arena and clears the tree. Single-threaded use
// only.
func (t *Tree[M]) SetMaxNodes(maxNodes int, nullMove M, tieValue Float) {
	if maxNodes < 1 {
		failf("Tree.SetMaxNodes: maxNodes %d < 1", maxNodes)
	}
	t.maxNodes = int32(maxNodes)
	t.nodes = make([]Node[M], maxNodes)
	t.Clear(nullMove, tieValue)
}

// Swap exchanges the contents of two trees in O(1). Single-threaded use
// only.
func (t *Tree[M]) Swap(other *Tree[M]) {
	t.maxNodes, other.maxNodes = other.maxNodes, t.maxNodes
	t.nodes, other.nodes = other.nodes, t.nodes
	n := t.nuNodes.Load()
	t.nuNodes.Store(other.nuNodes.Load())
	other.nuNodes.Store(n)
}

func (t *Tree[M]) AddValue(n *Node[M], v Float) {
	n.AddValue(v)
}

func (t *Tree[M]) AddRaveValue(n *Node[M], v, weight Float) {
	n.AddRaveValue(v, weight)
}

// CopySubtree copies the subtree rooted at srcNode into dst at dstNode,
// omitting subtrees below nodes with a count smaller than minCount. Returns
// false if the checker aborted the copy; the partial copy is still a
// structurally valid tree. Both trees must not be modified concurrently, and
// dst must have capacity for the full source tree.
func (t *Tree[M]) CopySubtree(dst *Tree[M], dstNode *Node[M], srcNode *Node[M],
	minCount Float, checker *IntervalChecker) bool {
	dstNode.copyDataFrom(srcNode)
	dstNode.unlink()
	return t.copyChildren(dst, dstNode, srcNode, minCount, checker)
}

func (t *Tree[M]) copyChildren(dst *Tree[M], dstNode *Node[M], srcNode *Node[M],
	minCount Float, checker *IntervalChecker) bool {
	if !srcNode.HasChildren() || srcNode.Count() < minCount {
		return true
	}
	if checker != nil && checker.Check() {
		return false
	}
	nuChildren := srcNode.NuChildren()
	first := dst.nuNodes.Load()
	if first+nuChildren > dst.maxNodes {
		failf("Tree.CopySubtree: destination capacity exceeded")
	}
	dst.nuNodes.Store(first + nuChildren)
	srcFirst := srcNode.FirstChild()
	for i := int32(0); i < nuChildren; i++ {
		child := &dst.nodes[first+i]
		child.copyDataFrom(&t.nodes[srcFirst+i])
		child.unlink()
	}
	// Link before recursing so an aborted copy leaves every copied level
	// reachable.
	dstNode.link(first, nuChildren)
	for i := int32(0); i < nuChildren; i++ {
		if !t.copyChildren(dst, &dst.nodes[first+i], &t.nodes[srcFirst+i],
			minCount, checker) {
			return false
		}
	}
	return true
}

// ExtractSubtree copies the subtree rooted at node into dst, making it the
// new root there. Returns false if the checker aborted the copy.
func (t *Tree[M]) ExtractSubtree(dst *Tree[M], node *Node[M],
	checker *IntervalChecker) bool {
	if dst.maxNodes < t.maxNodes {
		failf("Tree.ExtractSubtree: destination smaller than source")
	}
	dst.nuNodes.Store(1)
	return t.CopySubtree(dst, dst.Root(), node, 0, checker)
}
