package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

const sessionColumns = `id, status, config, move_count, started_at, ended_at, player1_id, player2_id, ai_level, winner_id`

func scanSession(row interface{ Scan(...any) error }) (*Session, error) {
	var s Session
	var cfg []byte
	err := row.Scan(&s.ID, &s.Status, &cfg, &s.MoveCount, &s.StartedAt, &s.EndedAt, &s.Player1ID, &s.Player2ID, &s.AILevel, &s.WinnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.Config = json.RawMessage(cfg)
	return &s, nil
}

// CreateSession persists a new active session draft and returns it with its
// generated id.
func (s *Store) CreateSession(ctx context.Context, draft Session) (*Session, error) {
	draft.ID = NewID()
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO sessions (id, status, config, move_count, started_at, player1_id, player2_id, ai_level)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		draft.ID, draft.Status, string(draft.Config), draft.MoveCount, draft.StartedAt,
		draft.Player1ID, draft.Player2ID, draft.AILevel)
	if err != nil {
		return nil, err
	}
	return s.GetSession(ctx, draft.ID)
}

func (s *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id)
	return scanSession(row)
}

// FindActiveSessionByParty resolves the single active session a party is in,
// on either side of the board.
func (s *Store) FindActiveSessionByParty(ctx context.Context, partyID string) (*Session, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT `+sessionColumns+` FROM sessions
		WHERE status = $1 AND (player1_id = $2 OR player2_id = $2)`,
		SessionActive, partyID)
	return scanSession(row)
}

// UpdateSessionState stores a new configuration snapshot and move counter.
func (s *Store) UpdateSessionState(ctx context.Context, id string, cfg json.RawMessage, moveCount int) error {
	res, err := s.DB.ExecContext(ctx, `UPDATE sessions SET config = $1, move_count = $2 WHERE id = $3`,
		string(cfg), moveCount, id)
	if err != nil {
		return err
	}
	return oneRow(res)
}

// FinishSession closes a session: status, end timestamp and winner are set
// in one statement so the transition is atomic. It refuses to touch a
// session that is already finished.
func (s *Store) FinishSession(ctx context.Context, id string, winnerID *string, endedAt time.Time) error {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE sessions SET status = $1, winner_id = $2, ended_at = $3
		WHERE id = $4 AND status = $5`,
		SessionFinished, winnerID, endedAt, id, SessionActive)
	if err != nil {
		return err
	}
	return oneRow(res)
}

func (s *Store) ListFinishedSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE status = $1 ORDER BY ended_at DESC`, SessionFinished)
	if err != nil {
		return nil, err
	}
	return collectSessions(rows)
}

// ListSessionsByParty returns a party's sessions, optionally only those
// started at or after the given time.
func (s *Store) ListSessionsByParty(ctx context.Context, partyID string, startedSince *time.Time) ([]Session, error) {
	q := `SELECT ` + sessionColumns + ` FROM sessions WHERE (player1_id = $1 OR player2_id = $1)`
	args := []any{partyID}
	if startedSince != nil {
		args = append(args, *startedSince)
		q += ` AND started_at >= $2`
	}
	q += ` ORDER BY started_at ASC`
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collectSessions(rows)
}

// GetWonSession resolves a finished session only when the given party is its
// declared winner. Certificate lookups fail closed through this query.
func (s *Store) GetWonSession(ctx context.Context, id, winnerID string) (*Session, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1 AND winner_id = $2`, id, winnerID)
	return scanSession(row)
}

func collectSessions(rows *sql.Rows) ([]Session, error) {
	defer rows.Close()
	out := []Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sess)
	}
	return out, rows.Err()
}

func oneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
