package mcts

import "time"

// TimeSource is a monotonic clock returning elapsed seconds since an
// arbitrary epoch. The search never reads the wall clock directly so that
// tests and deterministic runs can substitute their own source.
type TimeSource interface {
	Now() float64
}

// WallTimeSource measures real time from its creation.
type WallTimeSource struct {
	start time.Time
}

func NewWallTimeSource() *WallTimeSource {
	return &WallTimeSource{start: time.Now()}
}

func (s *WallTimeSource) Now() float64 {
	return time.Since(s.start).Seconds()
}

// Timer measures elapsed time on a TimeSource.
type Timer struct {
	src   TimeSource
	start float64
}

func NewTimer(src TimeSource) Timer {
	return Timer{src: src, start: src.Now()}
}

func (t *Timer) Reset(src TimeSource) {
	t.src = src
	t.start = src.Now()
}

func (t *Timer) Elapsed() float64 {
	return t.src.Now() - t.start
}
