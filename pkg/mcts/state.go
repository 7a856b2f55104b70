package mcts

import (
	"io"
	"math/rand"
)

// State is the per-thread view of the game used during simulations. Each
// worker owns one instance; the search never shares a State between threads,
// so implementations need no synchronization of their own.
//
// A simulation runs as: StartSimulation, then PlayInTree for each in-tree
// move (PlayExpandedChild after an expansion), FinishInTree when leaving the
// tree, StartPlayout, GenAndPlayPlayoutMove until it returns false, and
// finally EvaluatePlayout or EvaluateTerminal.
type State[M MoveLike] interface {
	// StartSearch is called once on every thread state before the search
	// loop starts.
	StartSearch()

	// StartSimulation resets the state to the root position. n is the
	// global simulation number.
	StartSimulation(n int)

	// GenChildren generates the children of the current position into the
	// expander, seeding each with at least initVal as prior value.
	GenChildren(expander *NodeExpander[M], initVal Float)

	// PlayInTree plays a move during the in-tree phase.
	PlayInTree(mv M)

	// FinishInTree is called when the in-tree phase ends, before the
	// playout starts.
	FinishInTree()

	// PlayExpandedChild plays the child selected right after an expansion.
	PlayExpandedChild(mv M)

	// StartPlayout is called once before the playout moves.
	StartPlayout()

	// GenAndPlayPlayoutMove generates and plays one playout move. lgr2 and
	// lgr1 are last-good-reply suggestions (two-move and one-move context);
	// either may be the null move. Returns false if the game is over.
	GenAndPlayPlayoutMove(lgr2, lgr1 M) bool

	// EvaluatePlayout writes the playout result per player into eval.
	EvaluatePlayout(eval []Float)

	// EvaluateTerminal writes the result of a terminal in-tree position per
	// player into eval.
	EvaluateTerminal(eval []Float)

	// NuMoves returns the number of moves played in the current simulation.
	NuMoves() int

	// GetMove returns the i-th move of the current simulation.
	GetMove(i int) PlayerMove[M]

	// ToPlay returns the player to move at the current simulation position.
	ToPlay() int

	// SkipRave reports whether a move should be excluded from RAVE updates.
	SkipRave(mv M) bool

	// Dump writes diagnostic information, used by the fault handler.
	Dump(w io.Writer)
}

// GameModel describes a game and creates per-thread states for it.
type GameModel[M MoveLike] interface {
	// NewState creates a fresh per-thread state.
	NewState() State[M]

	// MoveString returns a human-readable representation of a move.
	MoveString(mv M) string

	// NuPlayers returns the number of players.
	NuPlayers() int

	// ToPlay returns the player to play at the current root position.
	ToPlay() int

	// TieValue returns the evaluation of a tie, used to initialize unvisited
	// nodes.
	TieValue() Float

	// MoveRange returns an exclusive upper bound on int(move) for all legal
	// moves.
	MoveRange() int

	// NullMove returns a value outside the legal move range.
	NullMove() M

	// CheckFollowup reports whether the current root position is reachable
	// from the previous search's position, returning the connecting move
	// sequence. An empty sequence with ok true means the position is
	// unchanged.
	CheckFollowup() (sequence []M, ok bool)

	// ExpectedSimPerSec estimates the simulation rate, used to decide
	// whether a short search is worth multi-threading and to size the
	// deterministic check interval.
	ExpectedSimPerSec() float64
}

// RandState is implemented by states that want a per-thread random number
// generator seeded from the search's seed source.
type RandState interface {
	SetRand(rnd *rand.Rand)
}

// StartSearchHook is implemented by game models that need a callback at the
// start of every search, before the thread states are initialized.
type StartSearchHook interface {
	OnStartSearch()
}

// IterationHook is implemented by game models that want to observe completed
// simulations, e.g. for live statistics.
type IterationHook interface {
	OnSearchIteration(n int)
}
