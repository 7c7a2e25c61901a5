// Package ledger meters the token economy and the competitive points
// balance. Mutations are serialized per party at the storage layer; callers
// own the ordering relative to session mutations.
package ledger

import (
	"context"

	"chess-arena/internal/store"
)

type Ledger struct {
	Store *store.Store
}

func New(s *store.Store) *Ledger {
	return &Ledger{Store: s}
}

// HasSufficientTokens reports whether a party can afford amountTU. The
// check-then-debit sequence is not atomic; DebitTokens re-checks under a
// row lock.
func (l *Ledger) HasSufficientTokens(ctx context.Context, partyID string, amountTU int64) (bool, error) {
	p, err := l.Store.GetParty(ctx, partyID)
	if err != nil {
		return false, err
	}
	return p.TokensTU >= amountTU, nil
}

func (l *Ledger) DebitTokens(ctx context.Context, partyID string, amountTU int64) (int64, error) {
	return l.Store.DebitTokens(ctx, partyID, amountTU)
}

// CreditPoints applies a signed points adjustment. Negative amounts are
// penalties.
func (l *Ledger) CreditPoints(ctx context.Context, partyID string, amountTU int64) error {
	return l.Store.CreditPoints(ctx, partyID, amountTU)
}

// SetTokens replaces a spendable balance outright. Admin recharges only.
func (l *Ledger) SetTokens(ctx context.Context, partyID string, amountTU int64) error {
	return l.Store.SetTokens(ctx, partyID, amountTU)
}
