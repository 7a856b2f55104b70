package mcts

import "time"

// Float is the numeric type used for node counts and values. Counts are
// fractional to support weighted prior initialization. float32 keeps nodes
// small, which matters because the tree arena is sized from a memory budget.
type Float = float32

// MaxFloatCount is the largest count that can still be represented exactly
// by Float. The search aborts when the root count reaches it.
const MaxFloatCount Float = (1 << 24) - 1

// MoveLike constrains the move representation to small dense integers. A move
// must convert to an index in [0, GameModel.MoveRange), which lets the
// per-move tables (RAVE first-play, last-good-reply) be flat arrays and lets
// moves live in lock-free int32 slots.
type MoveLike interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32
}

// PlayerMove is a move tagged with the player who made it.
type PlayerMove[M MoveLike] struct {
	Player int
	Move   M
}

type SeedGeneratorFnType func() int64

var seedGeneratorFn SeedGeneratorFnType = func() int64 {
	return time.Now().UnixNano()
}

// SetSeedGeneratorFn sets the seed source for the per-thread random number
// generators handed to states implementing RandState. By default the current
// time in nanoseconds is used; tests set a constant for reproducibility.
func SetSeedGeneratorFn(f SeedGeneratorFnType) {
	if f != nil {
		seedGeneratorFn = f
	}
}
