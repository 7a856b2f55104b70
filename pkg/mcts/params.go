package mcts

// ReuseParam is the snapshot of parameters that affect the meaning of stored
// node statistics. Tree reuse between searches is only valid if the snapshot
// is unchanged, otherwise old values would be blended on different terms.
type ReuseParam struct {
	Rave              bool
	WeightRaveUpdates bool
	RaveEquivalence   Float
}

func (s *Search[M]) reuseParam() ReuseParam {
	return ReuseParam{
		Rave:              s.rave,
		WeightRaveUpdates: s.weightRaveUpdates,
		RaveEquivalence:   s.raveEquivalence,
	}
}

// LastReuseParam returns the parameter snapshot of the last completed search
// and whether one exists.
func (s *Search[M]) LastReuseParam() (ReuseParam, bool) {
	return s.lastReuseParam, s.haveLastReuseParam
}

// ExpandThreshold returns the visit count a node needs before it is
// expanded.
func (s *Search[M]) ExpandThreshold() Float { return s.expandThreshold }

// SetExpandThreshold sets the visit count a node needs before it is
// expanded. Higher values trade tree depth for memory.
func (s *Search[M]) SetExpandThreshold(t Float) { s.expandThreshold = t }

func (s *Search[M]) BiasTermConstant() Float { return s.biasTermConstant }

// SetBiasTermConstant sets the exploration constant of the UCT bias term.
// Zero disables the term.
func (s *Search[M]) SetBiasTermConstant(c Float) { s.biasTermConstant = c }

func (s *Search[M]) ReuseSubtree() bool { return s.reuseSubtree }

// SetReuseSubtree enables reusing the subtree of the previous search if the
// current position is a followup of the previous one.
func (s *Search[M]) SetReuseSubtree(enable bool) { s.reuseSubtree = enable }

func (s *Search[M]) ReuseTree() bool { return s.reuseTree }

// SetReuseTree enables reusing the full tree if the position is unchanged
// since the previous search.
func (s *Search[M]) SetReuseTree(enable bool) { s.reuseTree = enable }

func (s *Search[M]) PruneFullTree() bool { return s.pruneFullTree }

// SetPruneFullTree enables pruning low-count nodes and retrying when the
// tree runs out of memory during a search.
func (s *Search[M]) SetPruneFullTree(enable bool) { s.pruneFullTree = enable }

func (s *Search[M]) Rave() bool { return s.rave }

// SetRave enables the RAVE heuristic.
func (s *Search[M]) SetRave(enable bool) { s.rave = enable }

func (s *Search[M]) RaveCheckSame() bool { return s.raveCheckSame }

// SetRaveCheckSame makes RAVE updates skip moves that another player played
// earlier at the same point, for games where moves of different players can
// collide (e.g. shared cells).
func (s *Search[M]) SetRaveCheckSame(enable bool) { s.raveCheckSame = enable }

func (s *Search[M]) RaveEquivalence() Float { return s.raveEquivalence }

// SetRaveEquivalence sets the parent count at which the RAVE estimate and
// the value estimate get equal weight.
func (s *Search[M]) SetRaveEquivalence(v Float) { s.raveEquivalence = v }

func (s *Search[M]) WeightRaveUpdates() bool { return s.weightRaveUpdates }

// SetWeightRaveUpdates weights RAVE updates by how early in the simulation
// the move was played.
func (s *Search[M]) SetWeightRaveUpdates(enable bool) { s.weightRaveUpdates = enable }

func (s *Search[M]) LastGoodReply() bool { return s.useLastGoodReply }

// SetLastGoodReply enables the last-good-reply playout heuristic.
func (s *Search[M]) SetLastGoodReply(enable bool) { s.useLastGoodReply = enable }

func (s *Search[M]) LastGoodReplyDrawsAsWins() bool { return s.lgrDrawsAsWins }

// SetLastGoodReplyDrawsAsWins counts players who reach the best result in a
// drawn simulation as winners for last-good-reply updates.
func (s *Search[M]) SetLastGoodReplyDrawsAsWins(enable bool) { s.lgrDrawsAsWins = enable }

func (s *Search[M]) PruneCountStart() Float { return s.pruneCountStart }

// SetPruneCountStart sets the initial count threshold for out-of-memory
// pruning. The threshold doubles whenever pruning frees too little space.
func (s *Search[M]) SetPruneCountStart(v Float) { s.pruneCountStart = v }

// SetTreeMemory sets the memory budget in bytes shared by the search tree
// and its pruning scratch tree. Must not be called during a search.
func (s *Search[M]) SetTreeMemory(memory int) {
	maxNodes := maxNodesForMemory[M](memory)
	s.tree.SetMaxNodes(maxNodes, s.game.NullMove(), s.game.TieValue())
	s.tmpTree.SetMaxNodes(maxNodes, s.game.NullMove(), s.game.TieValue())
	s.haveLastReuseParam = false
}

func (s *Search[M]) Deterministic() bool { return s.deterministic }

// SetDeterministic makes searches reproducible: a fixed check interval
// replaces the time-adaptive one and multi-threading is disabled. Searches
// must be limited by simulation count, not time.
func (s *Search[M]) SetDeterministic(enable bool) { s.deterministic = enable }

// SetCallback sets a callback invoked periodically on the main search thread
// with the elapsed time and the estimated remaining time in seconds.
func (s *Search[M]) SetCallback(f func(elapsed, remaining float64)) {
	s.callback = f
}
