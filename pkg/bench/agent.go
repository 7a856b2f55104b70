package bench

import (
	"math/rand"
	"time"

	"github.com/treeply/go-mcts/pkg/mcts"
)

// SearchConfig configures the tree search behind a SearchAgent.
type SearchConfig struct {
	Threads          int
	Memory           int
	MaxCount         mcts.Float
	BiasTermConstant mcts.Float
	Rave             bool
	LastGoodReply    bool
}

// SearchAgent selects moves with a Monte-Carlo tree search. The agent owns
// its game instance, so the search can reuse subtrees across the moves of
// one game.
type SearchAgent[M mcts.MoveLike] struct {
	name       string
	game       Game[M]
	search     *mcts.Search[M]
	maxCount   mcts.Float
	timeSource mcts.TimeSource
}

func NewSearchAgent[M mcts.MoveLike](name string, game Game[M],
	cfg SearchConfig) *SearchAgent[M] {
	if cfg.Threads < 1 {
		cfg.Threads = 1
	}
	if cfg.MaxCount == 0 {
		cfg.MaxCount = 1000
	}
	s := mcts.NewSearch[M](game, cfg.Threads, cfg.Memory)
	s.SetBiasTermConstant(cfg.BiasTermConstant)
	s.SetRave(cfg.Rave)
	s.SetLastGoodReply(cfg.LastGoodReply)
	return &SearchAgent[M]{
		name:       name,
		game:       game,
		search:     s,
		maxCount:   cfg.MaxCount,
		timeSource: mcts.NewWallTimeSource(),
	}
}

func (a *SearchAgent[M]) Name() string { return a.name }

func (a *SearchAgent[M]) Reset() { a.game.Reset() }

func (a *SearchAgent[M]) SelectMove() (M, bool) {
	return a.search.Search(a.maxCount, 0, 0, a.timeSource, true)
}

func (a *SearchAgent[M]) PlayMove(mv M) { a.game.Play(mv) }

func (a *SearchAgent[M]) Close() { a.search.Close() }

// Search exposes the underlying search, e.g. for WriteInfo.
func (a *SearchAgent[M]) Search() *mcts.Search[M] { return a.search }

// RandomAgent plays uniformly random legal moves, a baseline opponent.
type RandomAgent[M mcts.MoveLike] struct {
	name string
	game Game[M]
	rnd  *rand.Rand
}

func NewRandomAgent[M mcts.MoveLike](name string, game Game[M]) *RandomAgent[M] {
	return &RandomAgent[M]{
		name: name,
		game: game,
		rnd:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (a *RandomAgent[M]) Name() string { return a.name }

func (a *RandomAgent[M]) Reset() { a.game.Reset() }

func (a *RandomAgent[M]) SelectMove() (M, bool) {
	moves := a.game.LegalMoves()
	if len(moves) == 0 {
		return a.game.NullMove(), false
	}
	return moves[a.rnd.Intn(len(moves))], true
}

func (a *RandomAgent[M]) PlayMove(mv M) { a.game.Play(mv) }

func (a *RandomAgent[M]) Close() {}
