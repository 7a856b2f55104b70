package mcts

import (
	"math"
	"testing"
)

func TestBiasTermDecreasesWithCount(t *testing.T) {
	b := NewBiasTerm(0.7)
	b.StartIteration(1000)
	prev := Float(math.Inf(1))
	for count := Float(0); count < 100; count++ {
		v := b.Get(count)
		if v <= 0 {
			t.Fatalf("bias at count %f = %f, want > 0", count, v)
		}
		if v >= prev {
			t.Errorf("bias not decreasing at count %f", count)
		}
		prev = v
	}
}

func TestBiasTermTableMatchesFormula(t *testing.T) {
	b := NewBiasTerm(1)
	parentCount := Float(500)
	b.StartIteration(parentCount)
	parentPart := Float(math.Sqrt(math.Log(float64(parentCount) + 1)))
	// Counts around the precomputed-table boundary.
	for _, count := range []Float{0, 1, 63, 64, 65, 1000} {
		want := parentPart / Float(math.Sqrt(float64(count)+1))
		got := b.Get(count)
		if math.Abs(float64(got-want)) > 1e-6 {
			t.Errorf("bias(%f) = %f, want %f", count, got, want)
		}
	}
}

func TestBiasTermZeroConstant(t *testing.T) {
	b := NewBiasTerm(0)
	b.StartIteration(1000)
	if v := b.Get(5); v != 0 {
		t.Errorf("bias with zero constant = %f, want 0", v)
	}
}

func TestBiasTermCachesParentPart(t *testing.T) {
	b := NewBiasTerm(0.7)
	b.StartIteration(100)
	v1 := b.Get(10)
	// Same parent count must not change the result.
	b.StartIteration(100)
	if v2 := b.Get(10); v2 != v1 {
		t.Errorf("bias changed on repeated StartIteration: %f vs %f", v1, v2)
	}
	b.StartIteration(10000)
	if v3 := b.Get(10); v3 <= v1 {
		t.Errorf("bias must grow with the parent count: %f <= %f", v3, v1)
	}
}
