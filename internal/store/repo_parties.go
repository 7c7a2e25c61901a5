package store

import (
	"context"
	"database/sql"
	"errors"
)

func (s *Store) CreateParty(ctx context.Context, name string, tokensTU int64) (string, error) {
	id := NewID()
	_, err := s.DB.ExecContext(ctx, `INSERT INTO parties (id, name, tokens_tu, points_tu) VALUES ($1,$2,$3,0)`, id, name, tokensTU)
	return id, err
}

func (s *Store) GetParty(ctx context.Context, id string) (*Party, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT id, name, tokens_tu, points_tu, created_at FROM parties WHERE id = $1`, id)
	var p Party
	if err := row.Scan(&p.ID, &p.Name, &p.TokensTU, &p.PointsTU, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) CountParties(ctx context.Context) (int, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT COUNT(1) FROM parties`)
	var c int
	if err := row.Scan(&c); err != nil {
		return 0, err
	}
	return c, nil
}

// ListPartiesByPoints returns every party ordered by competitive points.
func (s *Store) ListPartiesByPoints(ctx context.Context, descending bool) ([]Party, error) {
	q := `SELECT id, name, tokens_tu, points_tu, created_at FROM parties ORDER BY points_tu ASC, id ASC`
	if descending {
		q = `SELECT id, name, tokens_tu, points_tu, created_at FROM parties ORDER BY points_tu DESC, id ASC`
	}
	rows, err := s.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Party{}
	for rows.Next() {
		var p Party
		if err := rows.Scan(&p.ID, &p.Name, &p.TokensTU, &p.PointsTU, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DebitTokens subtracts amount from a party's spendable balance, serialized
// per party via a row lock. Fails with ErrInsufficientFunds when the balance
// does not cover the amount.
func (s *Store) DebitTokens(ctx context.Context, partyID string, amountTU int64) (int64, error) {
	if amountTU < 0 {
		return 0, errors.New("amount must be positive")
	}
	tx, err := s.DB.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var bal int64
	row := tx.QueryRowContext(ctx, `SELECT tokens_tu FROM parties WHERE id = $1 FOR UPDATE`, partyID)
	if err := row.Scan(&bal); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	if bal < amountTU {
		return 0, ErrInsufficientFunds
	}
	newBal := bal - amountTU
	if _, err := tx.ExecContext(ctx, `UPDATE parties SET tokens_tu = $1 WHERE id = $2`, newBal, partyID); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return newBal, nil
}

// CreditPoints adds a signed amount to a party's competitive points.
// Negative amounts are penalties; the balance may go negative.
func (s *Store) CreditPoints(ctx context.Context, partyID string, amountTU int64) error {
	tx, err := s.DB.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var pts int64
	row := tx.QueryRowContext(ctx, `SELECT points_tu FROM parties WHERE id = $1 FOR UPDATE`, partyID)
	if err := row.Scan(&pts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE parties SET points_tu = $1 WHERE id = $2`, pts+amountTU, partyID); err != nil {
		return err
	}
	return tx.Commit()
}

// SetTokens replaces a party's spendable balance. Admin recharge only.
func (s *Store) SetTokens(ctx context.Context, partyID string, amountTU int64) error {
	res, err := s.DB.ExecContext(ctx, `UPDATE parties SET tokens_tu = $1 WHERE id = $2`, amountTU, partyID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
