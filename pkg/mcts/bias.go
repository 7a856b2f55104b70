package mcts

import "math"

const nuPrecompChildCounts = 64

// BiasTerm computes the UCT-style exploration bonus
//
//	c * sqrt(log(parentCount+1) / (childCount+1))
//
// The parent part is recomputed once per node-selection pass via
// StartIteration instead of once per child comparison, and the child part is
// a table lookup for small integer counts.
type BiasTerm struct {
	constant    Float
	parentCount Float
	parentPart  Float
	invSqrt     [nuPrecompChildCounts]Float
}

func NewBiasTerm(constant Float) *BiasTerm {
	b := &BiasTerm{}
	b.SetBiasTermConstant(constant)
	return b
}

func (b *BiasTerm) SetBiasTermConstant(constant Float) {
	b.constant = constant
	b.parentCount = -1
	b.parentPart = 0
	for i := range b.invSqrt {
		b.invSqrt[i] = Float(1 / math.Sqrt(float64(i+1)))
	}
}

func (b *BiasTerm) BiasTermConstant() Float {
	return b.constant
}

// StartIteration fixes the parent part for the current selection pass.
func (b *BiasTerm) StartIteration(parentCount Float) {
	if b.constant == 0 || parentCount == b.parentCount {
		return
	}
	b.parentCount = parentCount
	b.parentPart = b.constant * Float(math.Sqrt(math.Log(float64(parentCount)+1)))
}

// Get returns the bonus for a child with the given count.
func (b *BiasTerm) Get(childCount Float) Float {
	if b.constant == 0 {
		return 0
	}
	if n := int(childCount); Float(n) == childCount && n < nuPrecompChildCounts {
		return b.parentPart * b.invSqrt[n]
	}
	return b.parentPart / Float(math.Sqrt(float64(childCount)+1))
}
