package mcts

import "math"

// firstPlayNone marks a move as not yet played in the RAVE first-play
// tables.
const firstPlayNone int32 = math.MaxInt32

// threadState is the per-worker search state. Everything in it is owned by
// one worker; only the shared tree and the shared tables are touched
// concurrently.
type threadState[M MoveLike] struct {
	threadID   int
	state      State[M]
	isOutOfMem bool

	// Path of the current simulation through the tree, root first.
	nodes []*Node[M]

	// Per-player evaluation of the current simulation.
	eval []Float

	// firstPlay[p][mv] is the move index at which player p first played mv
	// in the current simulation, or firstPlayNone.
	firstPlay [][]int32

	isWinner []bool

	genBuf []ChildValue[M]

	// Each worker gets its own bias term so the cached parent part is not
	// shared state.
	biasTerm BiasTerm

	statLen       ExtStats
	statInTreeLen ExtStats
}

func newThreadState[M MoveLike](threadID int, state State[M],
	nuPlayers, moveRange int) *threadState[M] {
	ts := &threadState[M]{
		threadID:  threadID,
		state:     state,
		eval:      make([]Float, nuPlayers),
		firstPlay: make([][]int32, nuPlayers),
		isWinner:  make([]bool, nuPlayers),
	}
	for p := range ts.firstPlay {
		ts.firstPlay[p] = make([]int32, moveRange)
	}
	return ts
}

// searchThread runs one worker's search loop. The loop function is fixed at
// creation; each search triggers one run via startSearchLoop and waits for
// it with waitSearchLoopFinished. Thread 0 has no goroutine, its loop runs
// on the caller.
type searchThread[M MoveLike] struct {
	ts    *threadState[M]
	start chan struct{}
	done  chan struct{}
	quit  chan struct{}
}

func newSearchThread[M MoveLike](ts *threadState[M],
	loop func(*threadState[M])) *searchThread[M] {
	t := &searchThread[M]{
		ts:    ts,
		start: make(chan struct{}),
		done:  make(chan struct{}),
		quit:  make(chan struct{}),
	}
	if ts.threadID == 0 {
		return t
	}
	ready := make(chan struct{})
	go func() {
		close(ready)
		for {
			select {
			case <-t.quit:
				return
			case <-t.start:
				loop(t.ts)
				t.done <- struct{}{}
			}
		}
	}()
	<-ready
	return t
}

func (t *searchThread[M]) startSearchLoop() {
	if t.ts.threadID == 0 {
		failf("startSearchLoop called on main thread")
	}
	t.start <- struct{}{}
}

func (t *searchThread[M]) waitSearchLoopFinished() {
	if t.ts.threadID == 0 {
		failf("waitSearchLoopFinished called on main thread")
	}
	<-t.done
}

func (t *searchThread[M]) close() {
	if t.ts.threadID != 0 {
		close(t.quit)
	}
}
