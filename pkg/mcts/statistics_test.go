package mcts

import (
	"math"
	"testing"
)

func TestDirtyStats(t *testing.T) {
	var s DirtyStats
	if s.Count() != 0 {
		t.Fatalf("fresh stats count = %f", s.Count())
	}
	for _, v := range []Float{1, 0, 1, 1} {
		s.Add(v)
	}
	if s.Count() != 4 {
		t.Errorf("count = %f, want 4", s.Count())
	}
	if math.Abs(float64(s.Mean()-0.75)) > 1e-6 {
		t.Errorf("mean = %f, want 0.75", s.Mean())
	}
	var c DirtyStats
	c.CopyFrom(&s)
	if c.Count() != s.Count() || c.Mean() != s.Mean() {
		t.Error("CopyFrom did not copy the snapshot")
	}
	s.Clear()
	if s.Count() != 0 || s.Mean() != 0 {
		t.Error("Clear did not reset the stats")
	}
}

func TestExtStats(t *testing.T) {
	var s ExtStats
	s.Clear()
	if s.String() != "-" {
		t.Errorf("empty stats string = %q", s.String())
	}
	for _, v := range []float64{4, 2, 6} {
		s.Add(v)
	}
	if s.Count() != 3 || s.Min() != 2 || s.Max() != 6 {
		t.Errorf("count/min/max = %f/%f/%f", s.Count(), s.Min(), s.Max())
	}
	if math.Abs(s.Mean()-4) > 1e-9 {
		t.Errorf("mean = %f, want 4", s.Mean())
	}
	if s.String() != "4.0 (2..6)" {
		t.Errorf("string = %q", s.String())
	}
}

func TestNodeAddValue(t *testing.T) {
	var n Node[testMove]
	n.init(1, 0.5, 0, 0.5, 0)
	n.AddValue(1)
	if n.Count() != 1 || n.Value() != 1 {
		t.Errorf("after first add: value %f count %f", n.Value(), n.Count())
	}
	n.AddValue(0)
	if n.Count() != 2 || n.Value() != 0.5 {
		t.Errorf("after second add: value %f count %f", n.Value(), n.Count())
	}
}

func TestNodeAddRaveValueWeighted(t *testing.T) {
	var n Node[testMove]
	n.init(1, 0.5, 0, 0, 0)
	n.AddRaveValue(1, 2)
	if n.RaveCount() != 2 || n.RaveValue() != 1 {
		t.Errorf("after weighted add: value %f count %f", n.RaveValue(), n.RaveCount())
	}
	n.AddRaveValue(0, 2)
	if n.RaveCount() != 4 || n.RaveValue() != 0.5 {
		t.Errorf("after second add: value %f count %f", n.RaveValue(), n.RaveCount())
	}
}
