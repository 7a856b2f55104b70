package mcts

import (
	"fmt"
	"math"
	"sync/atomic"
)

// atomicFloat is a Float with atomic load/store. Read-modify-write sequences
// on it are deliberately not atomic as a unit; see DirtyStats.
type atomicFloat struct {
	bits atomic.Uint32
}

func (f *atomicFloat) Load() Float {
	return math.Float32frombits(f.bits.Load())
}

func (f *atomicFloat) Store(v Float) {
	f.bits.Store(math.Float32bits(v))
}

// DirtyStats accumulates a running mean that may be updated by many
// goroutines without locks. Concurrent Adds can lose updates; the search
// only needs the estimate to converge over many samples, and the cost of
// synchronizing every update on the hottest path would dwarf the loss.
type DirtyStats struct {
	count atomicFloat
	mean  atomicFloat
}

func (s *DirtyStats) Clear() {
	s.count.Store(0)
	s.mean.Store(0)
}

// Add records one sample, racily.
func (s *DirtyStats) Add(v Float) {
	count := s.count.Load() + 1
	mean := s.mean.Load()
	mean += (v - mean) / count
	s.mean.Store(mean)
	s.count.Store(count)
}

func (s *DirtyStats) Mean() Float {
	return s.mean.Load()
}

func (s *DirtyStats) Count() Float {
	return s.count.Load()
}

// CopyFrom overwrites this accumulator with a snapshot of another. Must not
// run concurrently with Add on the destination.
func (s *DirtyStats) CopyFrom(other *DirtyStats) {
	s.mean.Store(other.Mean())
	s.count.Store(other.Count())
}

// ExtStats tracks mean, minimum and maximum of a thread-local sample stream.
// Not safe for concurrent use; each worker owns its own instance.
type ExtStats struct {
	count float64
	mean  float64
	min   float64
	max   float64
}

func (s *ExtStats) Clear() {
	s.count = 0
	s.mean = 0
	s.min = math.MaxFloat64
	s.max = -math.MaxFloat64
}

func (s *ExtStats) Add(v float64) {
	if s.count == 0 {
		s.min = v
		s.max = v
	} else {
		if v < s.min {
			s.min = v
		}
		if v > s.max {
			s.max = v
		}
	}
	s.count++
	s.mean += (v - s.mean) / s.count
}

func (s *ExtStats) Count() float64 { return s.count }
func (s *ExtStats) Mean() float64  { return s.mean }
func (s *ExtStats) Min() float64   { return s.min }
func (s *ExtStats) Max() float64   { return s.max }

func (s *ExtStats) String() string {
	if s.count == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f (%.0f..%.0f)", s.mean, s.min, s.max)
}
