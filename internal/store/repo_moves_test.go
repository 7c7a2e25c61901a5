package store

import (
	"errors"
	"testing"
)

func TestMovesAppendListOrder(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	p1 := mustCreateParty(t, st, ctx, "alice", 10000)
	p2 := mustCreateParty(t, st, ctx, "bob", 10000)
	sess := mustCreateHumanSession(t, st, ctx, p1, p2)

	from, to, piece := "E2", "E4", "White Pawn"
	m1, err := st.AppendMove(ctx, Move{
		SessionID: sess.ID, PartyID: &p1, Seq: 1,
		FromSquare: &from, ToSquare: &to, ConfigAfter: []byte(`{"turn":"black"}`), Piece: &piece,
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if m1.ID == "" || m1.CreatedAt.IsZero() {
		t.Fatalf("returned move incomplete: %+v", m1)
	}

	// Abandonment sentinel: no actor, squares or piece.
	if _, err := st.AppendMove(ctx, Move{
		SessionID: sess.ID, Seq: 2, ConfigAfter: []byte(`{"turn":"black"}`),
	}); err != nil {
		t.Fatalf("append sentinel: %v", err)
	}

	moves, err := st.ListMovesBySession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(moves) != 2 || moves[0].Seq != 1 || moves[1].Seq != 2 {
		t.Fatalf("unexpected log: %+v", moves)
	}
	if moves[1].PartyID != nil || moves[1].FromSquare != nil || moves[1].Piece != nil {
		t.Fatalf("sentinel carries play data: %+v", moves[1])
	}

	last, err := st.LastMoveBySession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("last: %v", err)
	}
	if last.Seq != 2 {
		t.Fatalf("last seq = %d, want 2", last.Seq)
	}
}

func TestMovesDuplicateSeqRejected(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	p1 := mustCreateParty(t, st, ctx, "alice", 10000)
	p2 := mustCreateParty(t, st, ctx, "bob", 10000)
	sess := mustCreateHumanSession(t, st, ctx, p1, p2)

	if _, err := st.AppendMove(ctx, Move{SessionID: sess.ID, Seq: 1, ConfigAfter: []byte(`{}`)}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := st.AppendMove(ctx, Move{SessionID: sess.ID, Seq: 1, ConfigAfter: []byte(`{}`)}); err == nil {
		t.Fatal("expected unique violation for duplicate seq")
	}
}

func TestLastMoveEmptySession(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	p1 := mustCreateParty(t, st, ctx, "alice", 10000)
	p2 := mustCreateParty(t, st, ctx, "bob", 10000)
	sess := mustCreateHumanSession(t, st, ctx, p1, p2)

	if _, err := st.LastMoveBySession(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
