package bench

import (
	"context"
	"sync"

	"github.com/treeply/go-mcts/pkg/mcts"
)

// AgentFactory creates a fresh agent. The arena calls it once per worker so
// each worker owns its agents exclusively.
type AgentFactory[M mcts.MoveLike] func() Agent[M]

// Arena plays a series of games between two agent configurations and counts
// the results. The first mover alternates between the agents so neither side
// profits from a first-move advantage.
type Arena[M mcts.MoveLike] struct {
	ArenaStats
	NewGame   func() Game[M]
	NewAgent1 AgentFactory[M]
	NewAgent2 AgentFactory[M]
	NGames    int
	NWorkers  int
	ctx       context.Context
}

func NewArena[M mcts.MoveLike](newGame func() Game[M],
	agent1, agent2 AgentFactory[M]) *Arena[M] {
	return &Arena[M]{
		NewGame:   newGame,
		NewAgent1: agent1,
		NewAgent2: agent2,
		NGames:    100,
		NWorkers:  2,
		ctx:       context.Background(),
	}
}

func (a *Arena[M]) WithContext(ctx context.Context) *Arena[M] {
	a.ctx = ctx
	return a
}

// Run plays all games and blocks until they finish or the context is
// cancelled. Listener methods may be called from multiple workers
// concurrently; a nil listener is allowed.
func (a *Arena[M]) Run(listener Listener[M]) SummaryInfo {
	if a.NWorkers < 1 {
		a.NWorkers = 1
	}
	names := a.agentNames()
	if listener != nil {
		listener.OnStart(a.summary(names))
	}
	nGames := a.NGames / a.NWorkers
	rest := a.NGames % a.NWorkers
	var wg sync.WaitGroup
	for i := 0; i < a.NWorkers; i++ {
		delta := 0
		if rest > 0 {
			delta = 1
			rest--
		}
		wg.Add(1)
		go func(id, nGames int) {
			defer wg.Done()
			a.worker(id, nGames, names, listener)
		}(i, nGames+delta)
	}
	wg.Wait()
	info := a.summary(names)
	if listener != nil {
		listener.OnFinish(info)
	}
	return info
}

func (a *Arena[M]) agentNames() [2]string {
	agent1 := a.NewAgent1()
	agent2 := a.NewAgent2()
	names := [2]string{agent1.Name(), agent2.Name()}
	agent1.Close()
	agent2.Close()
	return names
}

func (a *Arena[M]) summary(names [2]string) SummaryInfo {
	return SummaryInfo{
		TotalGames:       a.NGames,
		Agent1Wins:       a.Agent1Wins(),
		Agent2Wins:       a.Agent2Wins(),
		FirstToMoveWins:  a.FirstToMoveWins(),
		SecondToMoveWins: a.SecondToMoveWins(),
		Draws:            a.Draws(),
		Workers:          a.NWorkers,
		Agent1Name:       names[0],
		Agent2Name:       names[1],
	}
}

func (a *Arena[M]) worker(id, nGames int, names [2]string, listener Listener[M]) {
	agent1 := a.NewAgent1()
	agent2 := a.NewAgent2()
	defer agent1.Close()
	defer agent2.Close()
	game := a.NewGame()

	for i := 0; i < nGames; i++ {
		select {
		case <-a.ctx.Done():
			return
		default:
		}
		// Alternate the first mover.
		agent1First := (id+i)%2 == 0
		first, second := agent1, agent2
		if !agent1First {
			first, second = agent2, agent1
		}
		outcome, moves, ok := a.playGame(game, first, second)
		if !ok {
			return
		}
		result := toAgentResult(outcome, agent1First)
		switch result {
		case Draw:
			a.draws.Add(1)
		case Agent1Win:
			a.agent1Wins.Add(1)
		case Agent2Win:
			a.agent2Wins.Add(1)
		}
		if !outcome.IsDraw {
			if outcome.FirstPlayerWon {
				a.firstToMoveWins.Add(1)
			} else {
				a.secondToMoveWins.Add(1)
			}
		}
		if listener != nil {
			listener.OnGameFinished(WorkerInfo[M]{
				WorkerID:      id,
				NGames:        nGames,
				FinishedGames: a.Total(),
				Moves:         moves,
				Result:        result,
				Agent1Name:    names[0],
				Agent2Name:    names[1],
			})
		}
	}
}

// playGame plays one game with first moving first. Returns ok false if the
// context was cancelled mid-game.
func (a *Arena[M]) playGame(game Game[M], first, second Agent[M]) (GameOutcome, []M, bool) {
	game.Reset()
	first.Reset()
	second.Reset()
	var moves []M
	agents := [2]Agent[M]{first, second}
	firstPlayer := game.ToPlay()
	for !game.Terminated() {
		select {
		case <-a.ctx.Done():
			return GameOutcome{}, moves, false
		default:
		}
		var current Agent[M]
		if game.ToPlay() == firstPlayer {
			current = agents[0]
		} else {
			current = agents[1]
		}
		mv, ok := current.SelectMove()
		if !ok {
			break
		}
		first.PlayMove(mv)
		second.PlayMove(mv)
		game.Play(mv)
		moves = append(moves, mv)
	}
	winner, ok := game.Winner()
	if !ok {
		return GameOutcome{IsDraw: true}, moves, true
	}
	return GameOutcome{FirstPlayerWon: winner == firstPlayer}, moves, true
}
