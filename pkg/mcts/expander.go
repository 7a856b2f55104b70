package mcts

// ChildValue is a move with its prior statistics, produced by the game state
// during expansion.
type ChildValue[M MoveLike] struct {
	Move  M
	Value Float
	Count Float
}

// NodeExpander collects the children of a node during expansion and links
// them into the tree in one atomic publish. The children buffer is owned by
// the caller and reused across expansions.
type NodeExpander[M MoveLike] struct {
	tree      *Tree[M]
	parent    *Node[M]
	children  []ChildValue[M]
	bestChild int
	bestValue Float
}

func NewNodeExpander[M MoveLike](tree *Tree[M], parent *Node[M],
	buf []ChildValue[M]) NodeExpander[M] {
	return NodeExpander[M]{
		tree:      tree,
		parent:    parent,
		children:  buf[:0],
		bestChild: -1,
	}
}

// AddChild adds a candidate child with prior value statistics.
func (e *NodeExpander[M]) AddChild(mv M, value, count Float) {
	e.children = append(e.children, ChildValue[M]{Move: mv, Value: value, Count: count})
	if e.bestChild < 0 || value > e.bestValue {
		e.bestChild = len(e.children) - 1
		e.bestValue = value
	}
}

// Link reserves arena space for the collected children, initializes them and
// publishes them on the parent. Returns false if the tree is out of memory;
// the arena is left untouched in that case. Zero children is a successful
// no-op (terminal node).
func (e *NodeExpander[M]) Link() bool {
	n := int32(len(e.children))
	if n == 0 {
		return true
	}
	t := e.tree
	var first int32
	for {
		cur := t.nuNodes.Load()
		if cur+n > t.maxNodes {
			return false
		}
		if t.nuNodes.CompareAndSwap(cur, cur+n) {
			first = cur
			break
		}
	}
	for i, c := range e.children {
		t.nodes[first+int32(i)].init(c.Move, c.Value, c.Count, c.Value, c.Count)
	}
	e.parent.link(first, n)
	return true
}

// BestChild returns the linked child with the highest prior value, or nil if
// there are no children. Valid only after a successful Link.
func (e *NodeExpander[M]) BestChild() *Node[M] {
	if e.bestChild < 0 || !e.parent.HasChildren() {
		return nil
	}
	return e.tree.Node(e.parent.FirstChild() + int32(e.bestChild))
}

// Buf returns the (possibly grown) children buffer for reuse by the caller.
func (e *NodeExpander[M]) Buf() []ChildValue[M] {
	return e.children
}

// ChildIterator walks the children of a node in index order.
type ChildIterator[M MoveLike] struct {
	tree *Tree[M]
	cur  int32
	end  int32
}

func NewChildIterator[M MoveLike](t *Tree[M], n *Node[M]) ChildIterator[M] {
	nu := n.NuChildren()
	if nu == 0 {
		return ChildIterator[M]{tree: t}
	}
	first := n.FirstChild()
	return ChildIterator[M]{tree: t, cur: first, end: first + nu}
}

func (it *ChildIterator[M]) Ok() bool { return it.cur < it.end }

func (it *ChildIterator[M]) Next() { it.cur++ }

func (it *ChildIterator[M]) Node() *Node[M] { return &it.tree.nodes[it.cur] }
