package engine

import (
	"context"
	"encoding/json"
	"time"

	"chess-arena/internal/store"
)

// Storage boundaries of the engine. *store.Store satisfies all three; tests
// substitute in-memory fakes.

type PartyStore interface {
	GetParty(ctx context.Context, id string) (*store.Party, error)
	ListPartiesByPoints(ctx context.Context, descending bool) ([]store.Party, error)
}

type SessionStore interface {
	CreateSession(ctx context.Context, draft store.Session) (*store.Session, error)
	GetSession(ctx context.Context, id string) (*store.Session, error)
	FindActiveSessionByParty(ctx context.Context, partyID string) (*store.Session, error)
	UpdateSessionState(ctx context.Context, id string, cfg json.RawMessage, moveCount int) error
	FinishSession(ctx context.Context, id string, winnerID *string, endedAt time.Time) error
	ListFinishedSessions(ctx context.Context) ([]store.Session, error)
	ListSessionsByParty(ctx context.Context, partyID string, startedSince *time.Time) ([]store.Session, error)
	GetWonSession(ctx context.Context, id, winnerID string) (*store.Session, error)
}

type MoveStore interface {
	AppendMove(ctx context.Context, m store.Move) (*store.Move, error)
	ListMovesBySession(ctx context.Context, sessionID string) ([]store.Move, error)
	LastMoveBySession(ctx context.Context, sessionID string) (*store.Move, error)
}

// Ledger meters the token economy. The engine orders its calls so that no
// validation failure leaves a balance mutated.
type Ledger interface {
	HasSufficientTokens(ctx context.Context, partyID string, amountTU int64) (bool, error)
	DebitTokens(ctx context.Context, partyID string, amountTU int64) (int64, error)
	CreditPoints(ctx context.Context, partyID string, amountTU int64) error
}
