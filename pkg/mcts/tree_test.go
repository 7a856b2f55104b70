package mcts

import "testing"

func expandTestNode(t *testing.T, tree *Tree[testMove], node *Node[testMove],
	moves ...testMove) {
	t.Helper()
	expander := NewNodeExpander(tree, node, nil)
	for _, mv := range moves {
		expander.AddChild(mv, 0.5, 0)
	}
	if !expander.Link() {
		t.Fatal("Link failed")
	}
}

func childByMove(tree *Tree[testMove], node *Node[testMove], mv testMove) *Node[testMove] {
	for it := NewChildIterator(tree, node); it.Ok(); it.Next() {
		if it.Node().Move() == mv {
			return it.Node()
		}
	}
	return nil
}

func TestExpanderAndIterator(t *testing.T) {
	tree := NewTree[testMove](100, testNullMove, 0.5)
	expander := NewNodeExpander(tree, tree.Root(), nil)
	expander.AddChild(0, 0.4, 1)
	expander.AddChild(1, 0.9, 1)
	expander.AddChild(2, 0.6, 1)
	if !expander.Link() {
		t.Fatal("Link failed")
	}
	if tree.NuNodes() != 4 {
		t.Errorf("NuNodes = %d, want 4", tree.NuNodes())
	}
	best := expander.BestChild()
	if best == nil || best.Move() != 1 {
		t.Fatalf("BestChild = %v, want move 1", best)
	}
	var got []testMove
	for it := NewChildIterator(tree, tree.Root()); it.Ok(); it.Next() {
		got = append(got, it.Node().Move())
	}
	if len(got) != 3 || got[0] != 0 || got[1] != 1 || got[2] != 2 {
		t.Errorf("iterated moves %v, want [0 1 2]", got)
	}
}

func TestExpanderOutOfMemory(t *testing.T) {
	tree := NewTree[testMove](3, testNullMove, 0.5)
	expander := NewNodeExpander(tree, tree.Root(), nil)
	for mv := 0; mv < 3; mv++ {
		expander.AddChild(testMove(mv), 0.5, 0)
	}
	if expander.Link() {
		t.Fatal("Link should fail with insufficient capacity")
	}
	if tree.NuNodes() != 1 {
		t.Errorf("failed Link must not grow the arena, NuNodes = %d", tree.NuNodes())
	}
	if tree.Root().HasChildren() {
		t.Error("failed Link must not publish children")
	}
}

func TestExpanderNoChildren(t *testing.T) {
	tree := NewTree[testMove](10, testNullMove, 0.5)
	expander := NewNodeExpander(tree, tree.Root(), nil)
	if !expander.Link() {
		t.Error("linking zero children must succeed")
	}
	if expander.BestChild() != nil {
		t.Error("BestChild of a terminal node must be nil")
	}
}

func buildReuseTree(t *testing.T) *Tree[testMove] {
	t.Helper()
	tree := NewTree[testMove](100, testNullMove, 0.5)
	expandTestNode(t, tree, tree.Root(), 0, 1)
	c0 := childByMove(tree, tree.Root(), 0)
	c1 := childByMove(tree, tree.Root(), 1)
	for i := 0; i < 20; i++ {
		c0.AddValue(0.8)
	}
	for i := 0; i < 4; i++ {
		c1.AddValue(0.3)
	}
	expandTestNode(t, tree, c0, 5, 6)
	expandTestNode(t, tree, c1, 7)
	return tree
}

func TestExtractSubtree(t *testing.T) {
	tree := buildReuseTree(t)
	c0 := childByMove(tree, tree.Root(), 0)
	dst := NewTree[testMove](100, testNullMove, 0.5)
	if !tree.ExtractSubtree(dst, c0, nil) {
		t.Fatal("ExtractSubtree aborted")
	}
	if dst.NuNodes() != 3 {
		t.Errorf("extracted %d nodes, want 3", dst.NuNodes())
	}
	root := dst.Root()
	if root.Count() != 20 || root.Value() != 0.8 {
		t.Errorf("root stats = (%f, %f), want (0.8, 20)", root.Value(), root.Count())
	}
	if childByMove(dst, root, 5) == nil || childByMove(dst, root, 6) == nil {
		t.Error("children of the extracted node are missing")
	}
}

func TestCopySubtreePrune(t *testing.T) {
	tree := buildReuseTree(t)
	dst := NewTree[testMove](100, testNullMove, 0.5)
	// Children of nodes with count < 10 are dropped, the nodes themselves
	// stay.
	if !tree.CopySubtree(dst, dst.Root(), tree.Root(), 10, nil) {
		t.Fatal("CopySubtree aborted")
	}
	c0 := childByMove(dst, dst.Root(), 0)
	c1 := childByMove(dst, dst.Root(), 1)
	if c0 == nil || c1 == nil {
		t.Fatal("direct children missing after pruning copy")
	}
	if !c0.HasChildren() {
		t.Error("children of a node above the threshold were dropped")
	}
	if c1.HasChildren() {
		t.Error("children of a node below the threshold were kept")
	}
	if c1.Count() != 4 {
		t.Errorf("pruned node lost its statistics, count = %f", c1.Count())
	}

	// Pruning again with the same threshold must not grow the tree.
	dst2 := NewTree[testMove](100, testNullMove, 0.5)
	if !dst.CopySubtree(dst2, dst2.Root(), dst.Root(), 10, nil) {
		t.Fatal("second CopySubtree aborted")
	}
	if dst2.NuNodes() > dst.NuNodes() {
		t.Errorf("repeated pruning grew the tree: %d > %d", dst2.NuNodes(), dst.NuNodes())
	}
}

func TestCopySubtreeAborted(t *testing.T) {
	tree := buildReuseTree(t)
	dst := NewTree[testMove](100, testNullMove, 0.5)
	src := &fakeTimeSource{}
	checker := NewTimeIntervalChecker(src, 1)
	checker.SetDeterministic(1)
	src.now = 2 // already past the deadline
	if tree.CopySubtree(dst, dst.Root(), tree.Root(), 0, checker) {
		t.Fatal("copy should have been aborted")
	}
	// The partial copy must still be a valid tree: every published child
	// index is inside the arena.
	var walk func(n *Node[testMove])
	walk = func(n *Node[testMove]) {
		for it := NewChildIterator(dst, n); it.Ok(); it.Next() {
			walk(it.Node())
		}
	}
	walk(dst.Root())
}

func TestTreeSwap(t *testing.T) {
	a := NewTree[testMove](100, testNullMove, 0.5)
	expandTestNode(t, a, a.Root(), 0, 1, 2)
	b := NewTree[testMove](100, testNullMove, 0.5)
	a.Swap(b)
	if a.NuNodes() != 1 || b.NuNodes() != 4 {
		t.Errorf("after swap: a=%d b=%d, want 1 and 4", a.NuNodes(), b.NuNodes())
	}
	if childByMove(b, b.Root(), 2) == nil {
		t.Error("children did not move with the swap")
	}
}

func TestFindNode(t *testing.T) {
	tree := buildReuseTree(t)
	node := FindNode(tree, []testMove{0, 6})
	if node == nil || node.Move() != 6 {
		t.Fatalf("FindNode returned %v, want node with move 6", node)
	}
	if FindNode(tree, []testMove{0, 9}) != nil {
		t.Error("FindNode found a node for a move that was never expanded")
	}
	if FindNode(tree, nil) != tree.Root() {
		t.Error("empty sequence must return the root")
	}
}

func TestTreeClear(t *testing.T) {
	tree := buildReuseTree(t)
	tree.Root().AddValue(1)
	tree.Clear(testNullMove, 0.5)
	if tree.NuNodes() != 1 {
		t.Errorf("NuNodes after Clear = %d, want 1", tree.NuNodes())
	}
	root := tree.Root()
	if root.HasChildren() || root.Count() != 0 || root.Value() != 0.5 {
		t.Error("root was not reset by Clear")
	}
}

func TestClearRootValueKeepsChildren(t *testing.T) {
	tree := buildReuseTree(t)
	for i := 0; i < 5; i++ {
		tree.Root().AddValue(1)
	}
	tree.ClearRootValue(0.5)
	root := tree.Root()
	if root.Count() != 0 || root.Value() != 0.5 {
		t.Error("root statistics were not reset")
	}
	if !root.HasChildren() {
		t.Error("children must survive ClearRootValue")
	}
}
