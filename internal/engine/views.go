package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"chess-arena/internal/store"
)

// Move effects surfaced in history exports.
const (
	EffectCheck     = "CHECK"
	EffectCheckmate = "CHECKMATE"
	EffectAbandon   = "ABANDON"
)

type StatusView struct {
	SessionID  string
	Status     string
	Config     json.RawMessage
	Opponent   string
	TurnParty  *string
	MoveCount  int
	WinnerID   *string
	StartedAt  time.Time
	EndedAt    *time.Time
}

type HistoryItem struct {
	SessionID string
	Status    string
	MoveCount int
	StartedAt time.Time
	WinnerID  *string
}

type MoveDetail struct {
	Seq         int
	PlayerName  string
	PartyID     *string
	FromSquare  *string
	ToSquare    *string
	Piece       *string
	Effect      string
	ConfigAfter json.RawMessage
	TimeElapsed string
	CreatedAt   time.Time
}

type RankedParty struct {
	ID       string
	Name     string
	PointsTU int64
}

type Certificate struct {
	SessionID  string
	WinnerName string
	Opponent   string
	MoveCount  int
	StartedAt  time.Time
	EndedAt    *time.Time
}

// SessionStatus reports the caller-facing view of one session. Only
// participants may look.
func (e *Engine) SessionStatus(ctx context.Context, partyID, sessionID string) (*StatusView, error) {
	sess, err := e.getSessionForParty(ctx, partyID, sessionID)
	if err != nil {
		return nil, err
	}
	view := &StatusView{
		SessionID: sess.ID,
		Status:    sess.Status,
		Config:    sess.Config,
		Opponent:  e.opponentLabel(ctx, sess, partyID),
		MoveCount: sess.MoveCount,
		WinnerID:  sess.WinnerID,
		StartedAt: sess.StartedAt,
		EndedAt:   sess.EndedAt,
	}
	if sess.Status == store.SessionActive {
		side, err := e.oracle.TurnOwner(sess.Config)
		if err != nil {
			return nil, fmt.Errorf("%w: turn owner: %v", ErrDependency, err)
		}
		if side == SideFirst {
			p1 := sess.Player1ID
			view.TurnParty = &p1
		} else {
			view.TurnParty = sess.Player2ID
		}
	}
	return view, nil
}

// History lists a party's sessions, optionally only those started at or
// after the given time.
func (e *Engine) History(ctx context.Context, partyID string, startedSince *time.Time) ([]HistoryItem, error) {
	sessions, err := e.sessions.ListSessionsByParty(ctx, partyID, startedSince)
	if err != nil {
		return nil, err
	}
	out := make([]HistoryItem, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, HistoryItem{
			SessionID: s.ID,
			Status:    s.Status,
			MoveCount: s.MoveCount,
			StartedAt: s.StartedAt,
			WinnerID:  s.WinnerID,
		})
	}
	return out, nil
}

// SessionMoves reconstructs the annotated move log of a session: acting
// player name, check/checkmate/abandon effect, and the time spent on each
// ply derived from consecutive timestamps.
func (e *Engine) SessionMoves(ctx context.Context, partyID, sessionID string) ([]MoveDetail, error) {
	sess, err := e.getSessionForParty(ctx, partyID, sessionID)
	if err != nil {
		return nil, err
	}
	moves, err := e.moves.ListMovesBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	names := map[string]string{}
	if p, err := e.parties.GetParty(ctx, sess.Player1ID); err == nil {
		names[p.ID] = p.Name
	}
	if sess.Player2ID != nil {
		if p, err := e.parties.GetParty(ctx, *sess.Player2ID); err == nil {
			names[p.ID] = p.Name
		}
	}

	out := make([]MoveDetail, 0, len(moves))
	prev := sess.StartedAt
	for i, m := range moves {
		d := MoveDetail{
			Seq:         m.Seq,
			PlayerName:  "AI",
			PartyID:     m.PartyID,
			FromSquare:  m.FromSquare,
			ToSquare:    m.ToSquare,
			Piece:       m.Piece,
			ConfigAfter: m.ConfigAfter,
			TimeElapsed: formatElapsed(m.CreatedAt.Sub(prev)),
			CreatedAt:   m.CreatedAt,
		}
		if m.PartyID != nil {
			if name, ok := names[*m.PartyID]; ok {
				d.PlayerName = name
			}
		}
		if check, err := e.oracle.InCheck(m.ConfigAfter); err == nil && check {
			d.Effect = EffectCheck
		}
		if i == len(moves)-1 && sess.Status == store.SessionFinished {
			if m.Piece == nil {
				d.Effect = EffectAbandon
			} else if decisive, err := e.oracle.IsDecisive(m.ConfigAfter); err == nil && decisive {
				d.Effect = EffectCheckmate
			}
		}
		out = append(out, d)
		prev = m.CreatedAt
	}
	return out, nil
}

// Ranking lists every party ordered by competitive points; order is "asc"
// or "desc".
func (e *Engine) Ranking(ctx context.Context, order string) ([]RankedParty, error) {
	var descending bool
	switch order {
	case "asc":
	case "desc":
		descending = true
	default:
		return nil, fmt.Errorf("%w: order must be asc or desc", ErrInvalidArgument)
	}
	parties, err := e.parties.ListPartiesByPoints(ctx, descending)
	if err != nil {
		return nil, err
	}
	out := make([]RankedParty, 0, len(parties))
	for _, p := range parties {
		out = append(out, RankedParty{ID: p.ID, Name: p.Name, PointsTU: p.PointsTU})
	}
	return out, nil
}

// FinishedSessions lists all completed sessions.
func (e *Engine) FinishedSessions(ctx context.Context) ([]HistoryItem, error) {
	sessions, err := e.sessions.ListFinishedSessions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]HistoryItem, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, HistoryItem{
			SessionID: s.ID,
			Status:    s.Status,
			MoveCount: s.MoveCount,
			StartedAt: s.StartedAt,
			WinnerID:  s.WinnerID,
		})
	}
	return out, nil
}

// WinCertificate resolves the data for a victory certificate. It fails
// closed: the session must exist, be finished, and have the caller as its
// declared winner.
func (e *Engine) WinCertificate(ctx context.Context, partyID, sessionID string) (*Certificate, error) {
	sess, err := e.sessions.GetWonSession(ctx, sessionID, partyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: no won game with that id", ErrNotFound)
		}
		return nil, err
	}
	winner, err := e.parties.GetParty(ctx, partyID)
	if err != nil {
		return nil, err
	}
	opponent := e.opponentLabel(ctx, sess, partyID)
	return &Certificate{
		SessionID:  sess.ID,
		WinnerName: winner.Name,
		Opponent:   opponent,
		MoveCount:  sess.MoveCount,
		StartedAt:  sess.StartedAt,
		EndedAt:    sess.EndedAt,
	}, nil
}

func (e *Engine) getSessionForParty(ctx context.Context, partyID, sessionID string) (*store.Session, error) {
	sess, err := e.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: game not found", ErrNotFound)
		}
		return nil, err
	}
	if sess.Player1ID != partyID && (sess.Player2ID == nil || *sess.Player2ID != partyID) {
		return nil, fmt.Errorf("%w: you are not part of the game", ErrForbidden)
	}
	return sess, nil
}

func (e *Engine) opponentLabel(ctx context.Context, sess *store.Session, partyID string) string {
	if sess.AILevel != nil {
		return "AI-" + *sess.AILevel
	}
	other := sess.Player1ID
	if other == partyID && sess.Player2ID != nil {
		other = *sess.Player2ID
	}
	if p, err := e.parties.GetParty(ctx, other); err == nil {
		return p.Name
	}
	return other
}

// formatElapsed renders a duration as 2h 3m 4s / 3m 4s / 4s.
func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	secs := int(d.Seconds())
	switch {
	case secs >= 3600:
		return fmt.Sprintf("%dh %dm %ds", secs/3600, (secs%3600)/60, secs%60)
	case secs >= 60:
		return fmt.Sprintf("%dm %ds", secs/60, secs%60)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}
