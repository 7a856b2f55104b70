package mcts

import "testing"

func TestLastGoodReplyStoreGet(t *testing.T) {
	lgr := NewLastGoodReply[testMove](2, 9, testNullMove)
	lgr.Init()

	r2, r1 := lgr.Get(0, 3, testNullMove)
	if r2 != testNullMove || r1 != testNullMove {
		t.Fatalf("empty table returned (%d, %d)", r2, r1)
	}

	lgr.Store(0, 3, 7, 5)
	r2, r1 = lgr.Get(0, 3, 7)
	if r2 != 5 {
		t.Errorf("two-move reply = %d, want 5", r2)
	}
	if r1 != 5 {
		t.Errorf("one-move reply = %d, want 5", r1)
	}

	// The one-move reply does not depend on the second-last move.
	_, r1 = lgr.Get(0, 3, 8)
	if r1 != 5 {
		t.Errorf("one-move reply with other context = %d, want 5", r1)
	}

	// Replies are per player.
	r2, r1 = lgr.Get(1, 3, 7)
	if r2 != testNullMove || r1 != testNullMove {
		t.Errorf("player 1 sees player 0 replies: (%d, %d)", r2, r1)
	}
}

func TestLastGoodReplyNullSecondLast(t *testing.T) {
	lgr := NewLastGoodReply[testMove](2, 9, testNullMove)
	lgr.Init()
	lgr.Store(1, 4, testNullMove, 2)
	r2, r1 := lgr.Get(1, 4, testNullMove)
	if r2 != testNullMove {
		t.Errorf("two-move reply without context = %d, want null", r2)
	}
	if r1 != 2 {
		t.Errorf("one-move reply = %d, want 2", r1)
	}
}

func TestLastGoodReplyForget(t *testing.T) {
	lgr := NewLastGoodReply[testMove](2, 9, testNullMove)
	lgr.Init()
	lgr.Store(0, 3, 7, 5)

	// Forgetting a different reply leaves the stored one alone.
	lgr.Forget(0, 3, 7, 6)
	if _, r1 := lgr.Get(0, 3, 7); r1 != 5 {
		t.Errorf("reply was forgotten by a non-matching Forget, got %d", r1)
	}

	lgr.Forget(0, 3, 7, 5)
	r2, r1 := lgr.Get(0, 3, 7)
	if r2 != testNullMove || r1 != testNullMove {
		t.Errorf("reply survived Forget: (%d, %d)", r2, r1)
	}
}

func TestLastGoodReplyInitClears(t *testing.T) {
	lgr := NewLastGoodReply[testMove](2, 9, testNullMove)
	lgr.Init()
	lgr.Store(0, 1, 2, 3)
	lgr.Init()
	r2, r1 := lgr.Get(0, 1, 2)
	if r2 != testNullMove || r1 != testNullMove {
		t.Errorf("Init did not clear the tables: (%d, %d)", r2, r1)
	}
}
