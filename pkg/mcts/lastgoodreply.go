package mcts

import "sync/atomic"

const lgrMaxHashSize = 1 << 20

// LastGoodReply remembers, per player, the last move that answered an
// opponent move in a won playout (LGRF-2). Replies to the single last move
// are exact; replies to the last two moves are stored in a hash table whose
// collisions are tolerated because the playout policy validates any
// suggested reply for legality before playing it.
//
// All slots are atomic so workers can share the tables without locks; a lost
// store just forgets one reply.
type LastGoodReply[M MoveLike] struct {
	nuPlayers int
	moveRange int32
	null      int32
	hashSize  int32
	reply1    []atomic.Int32
	reply2    []atomic.Int32
}

func NewLastGoodReply[M MoveLike](nuPlayers, moveRange int, nullMove M) *LastGoodReply[M] {
	hashSize := int32(1)
	want := int64(moveRange) * int64(moveRange)
	if want > lgrMaxHashSize {
		want = lgrMaxHashSize
	}
	for int64(hashSize) < want {
		hashSize <<= 1
	}
	l := &LastGoodReply[M]{
		nuPlayers: nuPlayers,
		moveRange: int32(moveRange),
		null:      int32(nullMove),
		hashSize:  hashSize,
		reply1:    make([]atomic.Int32, nuPlayers*moveRange),
		reply2:    make([]atomic.Int32, int(hashSize)*nuPlayers),
	}
	l.Init()
	return l
}

// Init erases all stored replies.
func (l *LastGoodReply[M]) Init() {
	for i := range l.reply1 {
		l.reply1[i].Store(l.null)
	}
	for i := range l.reply2 {
		l.reply2[i].Store(l.null)
	}
}

func (l *LastGoodReply[M]) hash(last, secondLast M) int32 {
	// Knuth multiplicative hashing on the combined move pair.
	h := uint32(int32(secondLast))*uint32(l.moveRange) + uint32(int32(last))
	return int32((h * 2654435761) & uint32(l.hashSize-1))
}

// Get returns the stored replies for the given context, the two-move reply
// first. A slot holding the null move means no reply is known.
func (l *LastGoodReply[M]) Get(player int, last, secondLast M) (reply2, reply1 M) {
	if int32(secondLast) != l.null {
		idx := int32(player)*l.hashSize + l.hash(last, secondLast)
		reply2 = M(l.reply2[idx].Load())
	} else {
		reply2 = M(l.null)
	}
	reply1 = M(l.reply1[int32(player)*l.moveRange+int32(last)].Load())
	return reply2, reply1
}

// Store records mv as the reply for the given context.
func (l *LastGoodReply[M]) Store(player int, last, secondLast, mv M) {
	if int32(secondLast) != l.null {
		idx := int32(player)*l.hashSize + l.hash(last, secondLast)
		l.reply2[idx].Store(int32(mv))
	}
	l.reply1[int32(player)*l.moveRange+int32(last)].Store(int32(mv))
}

// Forget clears the stored replies for the given context, but only if they
// still hold mv. A concurrent Store of a different reply wins.
func (l *LastGoodReply[M]) Forget(player int, last, secondLast, mv M) {
	if int32(secondLast) != l.null {
		idx := int32(player)*l.hashSize + l.hash(last, secondLast)
		l.reply2[idx].CompareAndSwap(int32(mv), l.null)
	}
	l.reply1[int32(player)*l.moveRange+int32(last)].CompareAndSwap(int32(mv), l.null)
}
