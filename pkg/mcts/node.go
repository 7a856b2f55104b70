package mcts

import "sync/atomic"

// Node is an element of the tree arena. Children occupy a contiguous index
// range published by a single atomic store of firstChild after all child
// data is written, so readers either see no children or fully initialized
// ones.
//
// Value and RAVE statistics use the dirty update discipline of DirtyStats:
// individual fields are loaded and stored atomically but a whole update is
// not, and concurrent updates may be lost.
//
// The move is written only during expansion, before the node is published,
// and read-only afterwards, so it needs no atomics.
type Node[M MoveLike] struct {
	move       M
	value      atomicFloat
	count      atomicFloat
	raveValue  atomicFloat
	raveCount  atomicFloat
	nuChildren atomic.Int32
	firstChild atomic.Int32
}

func (n *Node[M]) init(mv M, value, count, raveValue, raveCount Float) {
	n.move = mv
	n.value.Store(value)
	n.count.Store(count)
	n.raveValue.Store(raveValue)
	n.raveCount.Store(raveCount)
	n.nuChildren.Store(0)
	n.firstChild.Store(0)
}

func (n *Node[M]) Move() M { return n.move }

func (n *Node[M]) Count() Float { return n.count.Load() }

// Value returns the mean playout value. Undefined if Count is zero.
func (n *Node[M]) Value() Float { return n.value.Load() }

func (n *Node[M]) RaveCount() Float { return n.raveCount.Load() }

// RaveValue returns the mean RAVE value. Undefined if RaveCount is zero.
func (n *Node[M]) RaveValue() Float { return n.raveValue.Load() }

func (n *Node[M]) HasChildren() bool { return n.nuChildren.Load() > 0 }

func (n *Node[M]) NuChildren() int32 { return n.nuChildren.Load() }

func (n *Node[M]) FirstChild() int32 { return n.firstChild.Load() }

// AddValue adds a playout result to the running mean.
func (n *Node[M]) AddValue(v Float) {
	count := n.count.Load()
	value := n.value.Load()
	count++
	value += (v - value) / count
	n.value.Store(value)
	n.count.Store(count)
}

// AddRaveValue adds a weighted RAVE sample to the running mean.
func (n *Node[M]) AddRaveValue(v, weight Float) {
	count := n.raveCount.Load()
	value := n.raveValue.Load()
	count += weight
	value += weight * (v - value) / count
	n.raveValue.Store(value)
	n.raveCount.Store(count)
}

// clearValue resets the playout statistics but keeps children and RAVE data.
func (n *Node[M]) clearValue(value Float) {
	n.value.Store(value)
	n.count.Store(0)
}

// link publishes a fully initialized child range.
func (n *Node[M]) link(firstChild, nuChildren int32) {
	n.firstChild.Store(firstChild)
	n.nuChildren.Store(nuChildren)
}

func (n *Node[M]) unlink() {
	n.nuChildren.Store(0)
	n.firstChild.Store(0)
}

// copyDataFrom copies move and statistics but not the child links.
func (n *Node[M]) copyDataFrom(src *Node[M]) {
	n.move = src.move
	n.value.Store(src.value.Load())
	n.count.Store(src.count.Load())
	n.raveValue.Store(src.raveValue.Load())
	n.raveCount.Store(src.raveCount.Load())
}
