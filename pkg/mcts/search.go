package mcts

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"sync/atomic"
	"unsafe"
)

const defaultTreeMemory = 256 << 20

// Search is a Monte-Carlo tree search over a GameModel. One instance owns a
// fixed pool of worker threads and two node arenas (the live tree and a
// scratch tree for pruning and subtree extraction) sized from a memory
// budget.
//
// The tree statistics are updated with the dirty lock-free discipline of
// DirtyStats: workers share the tree without locks and tolerate lost
// updates. Everything outside the tree, the last-good-reply tables and the
// simulation counter is owned by the orchestrator or by a single worker.
//
// Not safe for concurrent use; only one Search call may run at a time and
// parameter setters must not be called during a search.
type Search[M MoveLike] struct {
	game     GameModel[M]
	iterHook IterationHook

	nuThreads int
	threads   []*searchThread[M]

	tree    *Tree[M]
	tmpTree *Tree[M]
	lgr     *LastGoodReply[M]

	// Value estimates of the root position per player, from the last
	// completed search and accumulated during the current one.
	rootVal []DirtyStats

	// Prior value per player for newly expanded nodes.
	initVal []DirtyStats

	nuSimulations atomic.Int64

	// Root player of the current search.
	player int

	// Count of the root node of the previous search when its statistics
	// were discarded on subtree reuse.
	reuseCount Float

	// Limits of the current search.
	maxCount       Float
	minSimulations Float
	maxTime        float64
	timeSource     TimeSource
	timer          Timer
	lastTime       float64

	// Parameters.
	expandThreshold    Float
	biasTermConstant   Float
	reuseSubtree       bool
	reuseTree          bool
	pruneFullTree      bool
	rave               bool
	raveCheckSame      bool
	raveEquivalence    Float
	weightRaveUpdates  bool
	useLastGoodReply   bool
	lgrDrawsAsWins     bool
	pruneCountStart    Float
	deterministic      bool
	callback           func(elapsed, remaining float64)
	lastReuseParam     ReuseParam
	haveLastReuseParam bool

	unregisterFault func()
}

func maxNodesForMemory[M MoveLike](memory int) int {
	// Memory is shared by the live tree and the pruning scratch tree.
	maxNodes := memory / int(unsafe.Sizeof(Node[M]{})) / 2
	if maxNodes < 2 {
		maxNodes = 2
	}
	if maxNodes > math.MaxInt32 {
		maxNodes = math.MaxInt32
	}
	return maxNodes
}

// NewSearch creates a search with a persistent pool of nuThreads workers and
// a tree memory budget in bytes (0 selects a default). The caller must call
// Close when done with it.
func NewSearch[M MoveLike](game GameModel[M], nuThreads, memory int) *Search[M] {
	if nuThreads < 1 {
		nuThreads = 1
	}
	if memory <= 0 {
		memory = defaultTreeMemory
	}
	nuPlayers := game.NuPlayers()
	moveRange := game.MoveRange()
	maxNodes := maxNodesForMemory[M](memory)
	s := &Search[M]{
		game:              game,
		nuThreads:         nuThreads,
		tree:              NewTree(maxNodes, game.NullMove(), game.TieValue()),
		tmpTree:           NewTree(maxNodes, game.NullMove(), game.TieValue()),
		lgr:               NewLastGoodReply(nuPlayers, moveRange, game.NullMove()),
		rootVal:           make([]DirtyStats, nuPlayers),
		initVal:           make([]DirtyStats, nuPlayers),
		reuseSubtree:      true,
		reuseTree:         false,
		pruneFullTree:     true,
		weightRaveUpdates: true,
		lgrDrawsAsWins:    true,
		raveEquivalence:   1000,
		pruneCountStart:   16,
	}
	s.iterHook, _ = game.(IterationHook)
	for i := 0; i < nuThreads; i++ {
		state := game.NewState()
		if rs, ok := state.(RandState); ok {
			rs.SetRand(rand.New(rand.NewSource(seedGeneratorFn())))
		}
		ts := newThreadState(i, state, nuPlayers, moveRange)
		for p := range ts.firstPlay {
			for m := range ts.firstPlay[p] {
				ts.firstPlay[p][m] = firstPlayNone
			}
		}
		s.threads = append(s.threads, newSearchThread(ts, s.searchLoop))
	}
	s.unregisterFault = RegisterFaultHandler(func() {
		s.Dump(os.Stderr)
	})
	return s
}

// Close stops the worker goroutines and releases the fault handler. The
// search must not be used afterwards.
func (s *Search[M]) Close() {
	for _, t := range s.threads {
		t.close()
	}
	if s.unregisterFault != nil {
		s.unregisterFault()
		s.unregisterFault = nil
	}
}

func (s *Search[M]) Tree() *Tree[M] { return s.tree }

func (s *Search[M]) NuSimulations() int64 { return s.nuSimulations.Load() }

// ReuseCount returns the visit count carried over from the previous search
// by subtree reuse.
func (s *Search[M]) ReuseCount() Float { return s.reuseCount }

// LastTime returns the duration of the last search in seconds.
func (s *Search[M]) LastTime() float64 { return s.lastTime }

// RootVal returns the value statistics of the root position for a player,
// accumulated during the last search.
func (s *Search[M]) RootVal(player int) *DirtyStats { return &s.rootVal[player] }

// State returns the game state of a worker thread.
func (s *Search[M]) State(threadID int) State[M] {
	if threadID < 0 || threadID >= len(s.threads) {
		failf("Search.State: thread %d out of range [0, %d)", threadID, len(s.threads))
	}
	return s.threads[threadID].ts.state
}

// Search runs simulations until one of the limits triggers and returns the
// selected move. maxCount limits the root visit count; zero selects
// time-limited mode with maxTime seconds, but at least minSimulations
// simulations run even if the time is exceeded. If alwaysSearch is false and
// subtree extraction was aborted, Search returns early without searching,
// which keeps the previous tree intact for reuse. Returns false if no move
// could be produced.
func (s *Search[M]) Search(maxCount, minSimulations Float, maxTime float64,
	timeSource TimeSource, alwaysSearch bool) (M, bool) {
	game := s.game
	if maxCount > 0 {
		// A fixed simulation count means no time limit, but maxTime is
		// still used in a few places.
		maxTime = math.MaxFloat64
	}
	nuPlayers := game.NuPlayers()
	clearTree := true
	sequence, isFollowup := game.CheckFollowup()
	isSame := false
	if isFollowup && len(sequence) == 0 {
		isSame = true
		isFollowup = false
	}
	// An unchanged position is not a strict followup, so the reply tables
	// are reinitialized for it as well.
	keepLastGoodReply := isFollowup
	for i := 0; i < nuPlayers; i++ {
		s.initVal[i].Clear()
		s.initVal[i].Add(game.TieValue())
	}
	if isSame || (isFollowup && len(sequence) <= nuPlayers) {
		for i := 0; i < nuPlayers; i++ {
			if s.rootVal[i].Count() > 0 {
				s.initVal[i].CopyFrom(&s.rootVal[i])
			}
		}
	}
	s.reuseCount = 0
	if ((s.reuseSubtree && isFollowup) || (s.reuseTree && isSame)) &&
		s.haveLastReuseParam && s.reuseParam() == s.lastReuseParam {
		if len(sequence) == 0 {
			clearTree = false
		} else {
			timer := NewTimer(timeSource)
			s.tmpTree.Clear(game.NullMove(), game.TieValue())
			if node := FindNode(s.tree, sequence); node != nil {
				checker := NewTimeIntervalChecker(timeSource, maxTime)
				if s.deterministic {
					checker.SetDeterministic(1000000)
				}
				aborted := !s.tree.ExtractSubtree(s.tmpTree, node, checker)
				// Root values mean something else than inner node values
				// (position value vs. move value), so they are discarded.
				s.reuseCount = s.tmpTree.Root().Count()
				s.tmpTree.ClearRootValue(game.TieValue())
				if aborted && !alwaysSearch {
					return game.NullMove(), false
				}
				if s.tree.NuNodes() > 1 && s.tmpTree.NuNodes() > 1 {
					s.tree.Swap(s.tmpTree)
					clearTree = false
					maxTime -= timer.Elapsed()
					if maxTime < 0 {
						maxTime = 0
					}
				}
			}
		}
	}
	if clearTree {
		s.tree.Clear(game.NullMove(), game.TieValue())
	}

	s.lastReuseParam = s.reuseParam()
	s.haveLastReuseParam = true
	s.timer.Reset(timeSource)
	s.timeSource = timeSource
	if hook, ok := game.(StartSearchHook); ok {
		hook.OnStartSearch()
	}
	s.player = game.ToPlay()
	for i := 0; i < nuPlayers; i++ {
		s.rootVal[i].Clear()
	}
	if s.useLastGoodReply && !keepLastGoodReply {
		s.lgr.Init()
	}
	for _, t := range s.threads {
		t.ts.statLen.Clear()
		t.ts.statInTreeLen.Clear()
		t.ts.isOutOfMem = false
		t.ts.state.StartSearch()
	}
	s.maxCount = maxCount
	s.minSimulations = minSimulations
	s.maxTime = maxTime
	s.nuSimulations.Store(0)
	pruneMinCount := s.pruneCountStart

	// Multi-threading hurts very short searches: too many early updates are
	// lost, e.g. when every thread expands the root and only the children
	// of the last one survive.
	nuThreads := s.nuThreads
	if maxTime < 0.5 ||
		(maxCount > 0 &&
			float64(maxCount-s.reuseCount)/game.ExpectedSimPerSec() < 0.5) {
		nuThreads = 1
	}
	if s.deterministic {
		nuThreads = 1
	}

	for {
		for i := 1; i < nuThreads; i++ {
			s.threads[i].startSearchLoop()
		}
		s.searchLoop(s.threads[0].ts)
		for i := 1; i < nuThreads; i++ {
			s.threads[i].waitSearchLoopFinished()
		}
		isOutOfMem := false
		for _, t := range s.threads {
			if t.ts.isOutOfMem {
				isOutOfMem = true
				t.ts.isOutOfMem = false
			}
		}
		if !isOutOfMem {
			break
		}
		if !s.pruneFullTree {
			break
		}
		elapsed := s.timer.Elapsed()
		newMinCount, ok := s.prune(timeSource, maxTime-elapsed, pruneMinCount)
		if !ok {
			break
		}
		pruneMinCount = newMinCount
	}

	s.lastTime = s.timer.Elapsed()
	return s.SelectMove(nil)
}

func (s *Search[M]) searchLoop(ts *threadState[M]) {
	ts.biasTerm.SetBiasTermConstant(s.biasTermConstant)
	state := ts.state
	timeInterval := 0.1
	if s.maxCount == 0 && s.maxTime < 1 {
		timeInterval = 0.1 * s.maxTime
	}
	checker := NewIntervalChecker(s.timeSource, timeInterval, func() bool {
		return s.checkAbortExpensive(ts)
	})
	if s.deterministic {
		interval := uint32(math.Max(1, s.game.ExpectedSimPerSec()/5))
		checker.SetDeterministic(interval)
	}
	for {
		n := s.nuSimulations.Add(1) - 1
		rootCount := s.tree.Root().Count()
		if rootCount > 0 && Float(n) > s.minSimulations &&
			(s.checkAbort() || checker.Check()) {
			break
		}
		ts.nodes = ts.nodes[:0]
		ts.nodes = append(ts.nodes, s.tree.Root())
		state.StartSimulation(int(n))
		isTerminal := s.playInTree(ts)
		if ts.isOutOfMem {
			return
		}
		ts.statInTreeLen.Add(float64(state.NuMoves()))
		if !isTerminal {
			s.playout(ts)
			state.EvaluatePlayout(ts.eval)
		} else {
			state.EvaluateTerminal(ts.eval)
		}
		ts.statLen.Add(float64(state.NuMoves()))
		s.updateValues(ts)
		if s.rave {
			s.updateRaveValues(ts)
		}
		if s.useLastGoodReply {
			s.updateLastGoodReply(ts)
		}
		if s.iterHook != nil {
			s.iterHook.OnSearchIteration(int(n))
		}
	}
}

func (s *Search[M]) playInTree(ts *threadState[M]) (isTerminal bool) {
	state := ts.state
	root := s.tree.Root()
	node := root
	for node.HasChildren() {
		node = s.selectChild(ts, node)
		ts.nodes = append(ts.nodes, node)
		state.PlayInTree(node.Move())
	}
	state.FinishInTree()
	if node.Count() >= s.expandThreshold || node == root {
		initVal := s.initVal[state.ToPlay()].Mean()
		next, ok := s.expandNode(ts, node, initVal)
		switch {
		case !ok:
			ts.isOutOfMem = true
		case next == nil:
			isTerminal = true
		default:
			ts.nodes = append(ts.nodes, next)
			state.PlayExpandedChild(next.Move())
		}
	}
	return isTerminal
}

func (s *Search[M]) expandNode(ts *threadState[M], node *Node[M],
	initVal Float) (bestChild *Node[M], ok bool) {
	expander := NewNodeExpander(s.tree, node, ts.genBuf)
	ts.state.GenChildren(&expander, initVal)
	ts.genBuf = expander.Buf()
	if !expander.Link() {
		return nil, false
	}
	return expander.BestChild(), true
}

func (s *Search[M]) selectChild(ts *threadState[M], node *Node[M]) *Node[M] {
	nodeCount := node.Count()
	ts.biasTerm.StartIteration(nodeCount)
	var beta Float
	if s.rave {
		beta = Float(math.Sqrt(float64(s.raveEquivalence) /
			(3*float64(nodeCount) + float64(s.raveEquivalence))))
	}
	betaInv := 1 - beta
	var bestChild *Node[M]
	bestValue := Float(math.Inf(-1))
	for it := NewChildIterator(s.tree, node); it.Ok(); it.Next() {
		child := it.Node()
		value := beta*child.RaveValue() + betaInv*child.Value() +
			ts.biasTerm.Get(child.Count())
		if value > bestValue {
			bestValue = value
			bestChild = child
		}
	}
	return bestChild
}

func (s *Search[M]) playout(ts *threadState[M]) {
	state := ts.state
	state.StartPlayout()
	null := s.game.NullMove()
	for {
		lgr2, lgr1 := null, null
		if s.useLastGoodReply {
			if nuMoves := state.NuMoves(); nuMoves > 0 {
				last := state.GetMove(nuMoves - 1).Move
				secondLast := null
				if nuMoves > 1 {
					secondLast = state.GetMove(nuMoves - 2).Move
				}
				lgr2, lgr1 = s.lgr.Get(state.ToPlay(), last, secondLast)
			}
		}
		if !state.GenAndPlayPlayoutMove(lgr2, lgr1) {
			break
		}
	}
}

func (s *Search[M]) updateValues(ts *threadState[M]) {
	state := ts.state
	eval := ts.eval
	s.tree.AddValue(s.tree.Root(), eval[s.player])
	for i := 1; i < len(ts.nodes); i++ {
		mv := state.GetMove(i - 1)
		s.tree.AddValue(ts.nodes[i], eval[mv.Player])
	}
	for i := range eval {
		s.rootVal[i].Add(eval[i])
		s.initVal[i].Add(eval[i])
	}
}

func raveWeight(first, i, length int) Float {
	return 2 - Float(first-i)/Float(length-i)
}

func (s *Search[M]) updateRaveValues(ts *threadState[M]) {
	state := ts.state
	nuMoves := state.NuMoves()
	if nuMoves == 0 {
		return
	}
	nuNodes := len(ts.nodes)
	// Walk backwards so the earliest occurrence of a move wins in the
	// first-play table.
	i := nuMoves - 1
	for ; i >= nuNodes; i-- {
		mv := state.GetMove(i)
		if !state.SkipRave(mv.Move) {
			ts.firstPlay[mv.Player][int32(mv.Move)] = int32(i)
		}
	}
	for {
		mv := state.GetMove(i)
		if !state.SkipRave(mv.Move) {
			ts.firstPlay[mv.Player][int32(mv.Move)] = int32(i)
		}
		s.updateRaveValuesAt(ts, i, mv.Player)
		if i == 0 {
			break
		}
		i--
	}
	for i := 0; i < nuMoves; i++ {
		mv := state.GetMove(i)
		ts.firstPlay[mv.Player][int32(mv.Move)] = firstPlayNone
	}
}

func (s *Search[M]) updateRaveValuesAt(ts *threadState[M], i, player int) {
	node := ts.nodes[i]
	if !node.HasChildren() {
		return
	}
	length := ts.state.NuMoves()
	eval := ts.eval[player]
	for it := NewChildIterator(s.tree, node); it.Ok(); it.Next() {
		child := it.Node()
		m := int32(child.Move())
		first := ts.firstPlay[player][m]
		if first == firstPlayNone {
			continue
		}
		if s.raveCheckSame {
			otherPlayedSame := false
			for p := range ts.firstPlay {
				if p != player {
					firstOther := ts.firstPlay[p][m]
					if firstOther >= int32(i) && firstOther <= first {
						otherPlayedSame = true
						break
					}
				}
			}
			if otherPlayedSame {
				continue
			}
		}
		weight := Float(1)
		if s.weightRaveUpdates {
			// Decreases linearly from 2 at the start of a simulation to 1
			// at the end, relative to the remaining simulation length.
			weight = raveWeight(int(first), i, length)
		}
		s.tree.AddRaveValue(child, eval, weight)
	}
}

// markWinners fills isWinner from the evaluation. With drawsAsWins, every
// player who reached the best result counts as a winner; otherwise only a
// unique best result produces a winner.
func markWinners(eval []Float, isWinner []bool, drawsAsWins bool) {
	maxEval := eval[0]
	for _, v := range eval[1:] {
		if v > maxEval {
			maxEval = v
		}
	}
	nuWinners := 0
	for i, v := range eval {
		isWinner[i] = v == maxEval
		if isWinner[i] {
			nuWinners++
		}
	}
	if !drawsAsWins && nuWinners > 1 {
		for i := range isWinner {
			isWinner[i] = false
		}
	}
}

func (s *Search[M]) updateLastGoodReply(ts *threadState[M]) {
	state := ts.state
	markWinners(ts.eval, ts.isWinner, s.lgrDrawsAsWins)
	nuMoves := state.NuMoves()
	if nuMoves <= 1 {
		return
	}
	null := s.game.NullMove()
	// Backwards, so the reply to the first occurrence of a move sticks.
	for i := nuMoves - 1; i > 0; i-- {
		reply := state.GetMove(i)
		last := state.GetMove(i - 1).Move
		secondLast := null
		if i >= 2 {
			secondLast = state.GetMove(i - 2).Move
		}
		if ts.isWinner[reply.Player] {
			s.lgr.Store(reply.Player, last, secondLast, reply.Move)
		} else {
			s.lgr.Forget(reply.Player, last, secondLast, reply.Move)
		}
	}
}

func (s *Search[M]) checkAbort() bool {
	count := s.tree.Root().Count() + s.reuseCount
	if count >= MaxFloatCount {
		return true
	}
	return s.maxCount > 0 && count >= s.maxCount
}

func (s *Search[M]) checkAbortExpensive(ts *threadState[M]) bool {
	if Aborted() {
		return true
	}
	count := s.tree.Root().Count() + s.reuseCount
	time := s.timer.Elapsed()
	if !s.deterministic && time < 0.1 {
		// Simulations per second are too noisy for very small times.
		return false
	}
	var simsPerSec float64
	if time == 0 {
		simsPerSec = s.game.ExpectedSimPerSec()
	} else {
		simsPerSec = float64(s.nuSimulations.Load()) / time
	}
	var remainingTime float64
	var remainingSims Float
	if s.maxCount == 0 {
		if time > s.maxTime {
			return true
		}
		remainingTime = s.maxTime - time
		remainingSims = Float(remainingTime * simsPerSec)
	} else {
		remainingSims = s.maxCount - count
		remainingTime = float64(remainingSims) / simsPerSec
	}
	if ts.threadID == 0 && s.callback != nil {
		s.callback(time, remainingTime)
	}
	if count+remainingSims > MaxFloatCount {
		remainingSims = MaxFloatCount - count
	}
	return s.checkMoveCannotChange(count, remainingSims)
}

// checkMoveCannotChange reports whether the move with the highest count can
// no longer be overtaken within the remaining simulations.
func (s *Search[M]) checkMoveCannotChange(count, remaining Float) bool {
	if remaining > count {
		return false
	}
	var maxCount, secondMaxCount Float
	for it := NewChildIterator(s.tree, s.tree.Root()); it.Ok(); it.Next() {
		n := it.Node().Count()
		if n > maxCount {
			secondMaxCount = maxCount
			maxCount = n
		} else if n > secondMaxCount {
			secondMaxCount = n
		}
	}
	return maxCount > secondMaxCount+remaining
}

func (s *Search[M]) prune(timeSource TimeSource, maxTime float64,
	pruneMinCount Float) (newMinCount Float, ok bool) {
	checker := NewTimeIntervalChecker(timeSource, maxTime)
	if s.deterministic {
		checker.SetDeterministic(1000000)
	}
	s.tmpTree.Clear(s.game.NullMove(), s.game.TieValue())
	if !s.tree.CopySubtree(s.tmpTree, s.tmpTree.Root(), s.tree.Root(),
		pruneMinCount, checker) {
		return pruneMinCount, false
	}
	percent := int(int64(s.tmpTree.NuNodes()) * 100 / int64(s.tree.NuNodes()))
	s.tree.Swap(s.tmpTree)
	if percent > 50 {
		if pruneMinCount >= 0.5*math.MaxFloat32 {
			return pruneMinCount, false
		}
		return pruneMinCount * 2, true
	}
	return pruneMinCount, true
}

// SelectChildFinal returns the child with the highest visit count, ties
// broken by value, skipping excluded moves. Returns nil if the node has no
// eligible children.
func (s *Search[M]) SelectChildFinal(node *Node[M], exclude []M) *Node[M] {
	var result *Node[M]
	maxCount := Float(-1)
	maxCountValue := Float(math.Inf(-1))
	for it := NewChildIterator(s.tree, node); it.Ok(); it.Next() {
		child := it.Node()
		excluded := false
		for _, mv := range exclude {
			if child.Move() == mv {
				excluded = true
				break
			}
		}
		if excluded {
			continue
		}
		count := child.Count()
		if count > maxCount ||
			(count == maxCount && child.Value() > maxCountValue) {
			maxCount = count
			maxCountValue = child.Value()
			result = child
		}
	}
	return result
}

// SelectMove returns the move to play after a search. Returns false if the
// root has no eligible children.
func (s *Search[M]) SelectMove(exclude []M) (M, bool) {
	child := s.SelectChildFinal(s.tree.Root(), exclude)
	if child == nil {
		return s.game.NullMove(), false
	}
	return child.Move(), true
}

// Value returns the estimated value of the root position for the root
// player of the last search. The root statistics are authoritative unless
// they were discarded on subtree reuse; then the best child has seen more
// simulations than the root and its value is the better estimate.
func (s *Search[M]) Value() Float {
	root := s.tree.Root()
	child := s.SelectChildFinal(root, nil)
	if child != nil && child.Count() > root.Count() {
		return child.Value()
	}
	if root.Count() > 0 {
		return root.Value()
	}
	return s.game.TieValue()
}

// WriteInfo writes a one-look summary of the last search.
func (s *Search[M]) WriteInfo(w io.Writer) {
	root := s.tree.Root()
	ts := s.threads[0].ts
	simsPerSec := 0.0
	if s.lastTime > 0 {
		simsPerSec = float64(s.nuSimulations.Load()) / s.lastTime
	}
	fmt.Fprintf(w,
		"Val: %.2f, Cnt: %.0f, ReCnt: %.0f, Sim: %d, Nds: %d, Tm: %.2fs\n"+
			"Sim/s: %.0f, Len: %s, Dp: %s\n",
		s.Value(), root.Count(), s.reuseCount, s.nuSimulations.Load(),
		s.tree.NuNodes(), s.lastTime, simsPerSec,
		ts.statLen.String(), ts.statInTreeLen.String())
}

// Dump writes the diagnostic state of every worker thread.
func (s *Search[M]) Dump(w io.Writer) {
	for i, t := range s.threads {
		fmt.Fprintf(w, "Thread state %d:\n", i)
		t.ts.state.Dump(w)
	}
}
