package bench

import (
	"fmt"
	"io"
	"sync"

	"github.com/muesli/termenv"

	"github.com/treeply/go-mcts/pkg/mcts"
)

// Listener observes arena progress. Methods may be called from multiple
// worker goroutines concurrently.
type Listener[M mcts.MoveLike] interface {
	OnStart(info SummaryInfo)
	OnGameFinished(info WorkerInfo[M])
	OnFinish(info SummaryInfo)
}

// ConsoleListener writes colored progress lines and a final summary to a
// terminal.
type ConsoleListener[M mcts.MoveLike] struct {
	mu  sync.Mutex
	out *termenv.Output

	// Quiet suppresses the per-game lines and keeps only the summary.
	Quiet bool
}

func NewConsoleListener[M mcts.MoveLike](w io.Writer) *ConsoleListener[M] {
	return &ConsoleListener[M]{out: termenv.NewOutput(w)}
}

func (l *ConsoleListener[M]) OnStart(info SummaryInfo) {
	l.mu.Lock()
	defer l.mu.Unlock()
	title := l.out.String(fmt.Sprintf("%s vs %s", info.Agent1Name, info.Agent2Name)).Bold()
	fmt.Fprintf(l.out, "%s  (%d games, %d workers)\n",
		title, info.TotalGames, info.Workers)
}

func (l *ConsoleListener[M]) OnGameFinished(info WorkerInfo[M]) {
	if l.Quiet {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	var result termenv.Style
	switch info.Result {
	case Agent1Win:
		result = l.out.String(info.Agent1Name).Foreground(termenv.ANSIGreen)
	case Agent2Win:
		result = l.out.String(info.Agent2Name).Foreground(termenv.ANSIRed)
	default:
		result = l.out.String("draw").Foreground(termenv.ANSIYellow)
	}
	fmt.Fprintf(l.out, "[%d] game %d/%d: %s in %d moves\n",
		info.WorkerID, info.FinishedGames, info.NGames, result, len(info.Moves))
}

func (l *ConsoleListener[M]) OnFinish(info SummaryInfo) {
	l.mu.Lock()
	defer l.mu.Unlock()
	header := l.out.String("Results").Bold().Underline()
	fmt.Fprintf(l.out, "\n%s\n", header)
	fmt.Fprintf(l.out, "%-24s %d\n", info.Agent1Name, info.Agent1Wins)
	fmt.Fprintf(l.out, "%-24s %d\n", info.Agent2Name, info.Agent2Wins)
	fmt.Fprintf(l.out, "%-24s %d\n", "draws", info.Draws)
	fmt.Fprintf(l.out, "%-24s %d/%d\n", "first/second mover wins",
		info.FirstToMoveWins, info.SecondToMoveWins)
}
