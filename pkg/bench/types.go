package bench

import (
	"sync/atomic"

	"github.com/treeply/go-mcts/pkg/mcts"
)

type MatchResult int

const (
	Agent1Win MatchResult = 1
	Agent2Win MatchResult = -1
	Draw      MatchResult = 0
)

// Game is a playable position. The arena and the agents each own their own
// instance; the arena drives all of them with the same move sequence.
type Game[M mcts.MoveLike] interface {
	mcts.GameModel[M]

	// Play makes a move in the current position.
	Play(mv M)

	// Reset returns to the starting position.
	Reset()

	// Terminated reports whether the game is over.
	Terminated() bool

	// Winner returns the winning player of a terminated game, ok false on a
	// draw.
	Winner() (player int, ok bool)

	// LegalMoves returns the legal moves in the current position.
	LegalMoves() []M
}

// Agent selects moves for one side of a match.
type Agent[M mcts.MoveLike] interface {
	Name() string

	// Reset prepares the agent for a new game from the starting position.
	Reset()

	// SelectMove picks a move in the agent's current position. Returns
	// false if the position has no moves.
	SelectMove() (M, bool)

	// PlayMove advances the agent's position by a move (its own or the
	// opponent's).
	PlayMove(mv M)

	// Close releases the agent's resources.
	Close()
}

// ArenaStats counts finished games across all workers.
type ArenaStats struct {
	agent1Wins       atomic.Uint32
	agent2Wins       atomic.Uint32
	draws            atomic.Uint32
	firstToMoveWins  atomic.Uint32
	secondToMoveWins atomic.Uint32
}

func (s *ArenaStats) Total() int {
	return s.Agent1Wins() + s.Agent2Wins() + s.Draws()
}

func (s *ArenaStats) Agent1Wins() int { return int(s.agent1Wins.Load()) }

func (s *ArenaStats) Agent2Wins() int { return int(s.agent2Wins.Load()) }

func (s *ArenaStats) Draws() int { return int(s.draws.Load()) }

func (s *ArenaStats) FirstToMoveWins() int { return int(s.firstToMoveWins.Load()) }

func (s *ArenaStats) SecondToMoveWins() int { return int(s.secondToMoveWins.Load()) }

// WorkerInfo is a snapshot delivered to listeners when a worker finishes a
// game.
type WorkerInfo[M mcts.MoveLike] struct {
	WorkerID      int
	NGames        int
	FinishedGames int
	Moves         []M
	Result        MatchResult
	Agent1Name    string
	Agent2Name    string
}

type SummaryInfo struct {
	TotalGames       int    `json:"total_games"`
	Agent1Wins       int    `json:"agent1_wins"`
	Agent2Wins       int    `json:"agent2_wins"`
	FirstToMoveWins  int    `json:"first_to_move_wins"`
	SecondToMoveWins int    `json:"second_to_move_wins"`
	Draws            int    `json:"draws"`
	Workers          int    `json:"workers"`
	Agent1Name       string `json:"agent1_name"`
	Agent2Name       string `json:"agent2_name"`
}

// GameOutcome is the result of a single game from the first mover's
// perspective.
type GameOutcome struct {
	FirstPlayerWon bool
	IsDraw         bool
}

// toAgentResult maps a game outcome to the winning agent, given which agent
// moved first.
func toAgentResult(outcome GameOutcome, agent1WentFirst bool) MatchResult {
	if outcome.IsDraw {
		return Draw
	}
	if agent1WentFirst == outcome.FirstPlayerWon {
		return Agent1Win
	}
	return Agent2Win
}
