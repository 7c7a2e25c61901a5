package store

import (
	"encoding/json"
	"time"
)

// Session lifecycle. A finished session never becomes active again.
const (
	SessionActive   = "active"
	SessionFinished = "finished"
)

// Monetary and points amounts are int64 token units (TU): one
// ten-thousandth of a token. 4500 TU = 0.45 tokens.

type Party struct {
	ID        string
	Name      string
	TokensTU  int64
	PointsTU  int64
	CreatedAt time.Time
}

// Session is one game instance. Player1 always plays the side that moves
// first. Exactly one of Player2ID / AILevel is set.
type Session struct {
	ID        string
	Status    string
	Config    json.RawMessage
	MoveCount int
	StartedAt time.Time
	EndedAt   *time.Time
	Player1ID string
	Player2ID *string
	AILevel   *string
	WinnerID  *string
}

// Move is one immutable ply. A record with nil PartyID, FromSquare,
// ToSquare and Piece is the abandonment sentinel.
type Move struct {
	ID          string
	SessionID   string
	PartyID     *string
	Seq         int
	FromSquare  *string
	ToSquare    *string
	ConfigAfter json.RawMessage
	Piece       *string
	CreatedAt   time.Time
}
