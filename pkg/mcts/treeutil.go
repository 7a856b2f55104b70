package mcts

// FindNode follows a move sequence from the root and returns the node it
// leads to, or nil if any move along the way has no corresponding child.
func FindNode[M MoveLike](t *Tree[M], sequence []M) *Node[M] {
	node := t.Root()
	for _, mv := range sequence {
		var child *Node[M]
		for it := NewChildIterator(t, node); it.Ok(); it.Next() {
			if it.Node().Move() == mv {
				child = it.Node()
				break
			}
		}
		if child == nil {
			return nil
		}
		node = child
	}
	return node
}
