package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

const moveColumns = `id, session_id, party_id, seq, from_square, to_square, config_after, piece, created_at`

func scanMove(row interface{ Scan(...any) error }) (*Move, error) {
	var m Move
	var cfg []byte
	err := row.Scan(&m.ID, &m.SessionID, &m.PartyID, &m.Seq, &m.FromSquare, &m.ToSquare, &cfg, &m.Piece, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	m.ConfigAfter = json.RawMessage(cfg)
	return &m, nil
}

// AppendMove records one ply. Moves are never updated or deleted; the unique
// (session_id, seq) constraint rejects duplicate sequence numbers.
func (s *Store) AppendMove(ctx context.Context, m Move) (*Move, error) {
	m.ID = NewID()
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO moves (id, session_id, party_id, seq, from_square, to_square, config_after, piece)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		m.ID, m.SessionID, m.PartyID, m.Seq, m.FromSquare, m.ToSquare, string(m.ConfigAfter), m.Piece)
	if err != nil {
		return nil, err
	}
	row := s.DB.QueryRowContext(ctx, `SELECT `+moveColumns+` FROM moves WHERE id = $1`, m.ID)
	return scanMove(row)
}

// ListMovesBySession returns the full ordered move log of a session.
func (s *Store) ListMovesBySession(ctx context.Context, sessionID string) ([]Move, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT `+moveColumns+` FROM moves WHERE session_id = $1 ORDER BY seq ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Move{}
	for rows.Next() {
		m, err := scanMove(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (s *Store) LastMoveBySession(ctx context.Context, sessionID string) (*Move, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+moveColumns+` FROM moves WHERE session_id = $1 ORDER BY seq DESC LIMIT 1`, sessionID)
	return scanMove(row)
}
