package mcts

import "math"

// IntervalChecker amortizes an expensive abort predicate over many cheap
// calls. Check returns a cached result except every countInterval-th call,
// when the predicate runs and the interval is rescaled so that the predicate
// fires roughly once per timeInterval of real time. The rescale factor is
// clamped to [0.1, 10] per adjustment and the interval to the uint32 range.
//
// In deterministic mode the interval is a fixed iteration count, making the
// sequence of checks independent of execution speed.
type IntervalChecker struct {
	timeSource      TimeSource
	f               func() bool
	timeInterval    float64
	lastTime        float64
	count           uint32
	countInterval   uint32
	isFirstCheck    bool
	isDeterministic bool
	result          bool
}

func NewIntervalChecker(src TimeSource, timeInterval float64, f func() bool) *IntervalChecker {
	return &IntervalChecker{
		timeSource:    src,
		f:             f,
		timeInterval:  timeInterval,
		isFirstCheck:  true,
		count:         1,
		countInterval: 1,
	}
}

// Check decrements the iteration counter and runs the expensive predicate
// only when it reaches zero. Once the predicate has returned true, Check
// keeps returning true.
func (c *IntervalChecker) Check() bool {
	c.count--
	if c.count == 0 {
		return c.checkExpensive()
	}
	return c.result
}

func (c *IntervalChecker) checkExpensive() bool {
	if c.result {
		return true
	}
	if c.isDeterministic {
		c.result = c.f()
		c.count = c.countInterval
		return c.result
	}
	now := c.timeSource.Now()
	if !c.isFirstCheck {
		diff := now - c.lastTime
		var adjustFactor float64
		if diff == 0 {
			adjustFactor = 10
		} else {
			adjustFactor = c.timeInterval / diff
			if adjustFactor > 10 {
				adjustFactor = 10
			} else if adjustFactor < 0.1 {
				adjustFactor = 0.1
			}
		}
		newCountInterval := adjustFactor * float64(c.countInterval)
		switch {
		case newCountInterval > float64(math.MaxUint32):
			c.countInterval = math.MaxUint32
		case newCountInterval < 1:
			c.countInterval = 1
		default:
			c.countInterval = uint32(newCountInterval)
		}
		c.result = c.f()
	} else {
		c.isFirstCheck = false
	}
	c.lastTime = now
	c.count = c.countInterval
	return c.result
}

// SetDeterministic switches to a fixed iteration count between predicate
// evaluations.
func (c *IntervalChecker) SetDeterministic(interval uint32) {
	if interval < 1 {
		failf("IntervalChecker.SetDeterministic: interval %d < 1", interval)
	}
	c.isDeterministic = true
	c.count = interval
	c.countInterval = interval
}

// NewTimeIntervalChecker returns a checker whose predicate fires when the
// global abort flag is set or maxTime has elapsed on src. It is used to make
// long single-threaded copies (pruning, subtree extraction) cancellable.
func NewTimeIntervalChecker(src TimeSource, maxTime float64) *IntervalChecker {
	start := src.Now()
	return NewIntervalChecker(src, 0.1, func() bool {
		return Aborted() || src.Now()-start > maxTime
	})
}
