package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"chess-arena/internal/store"
)

// CreateSession opens a new session for the initiator, against either a
// second human or a computer opponent at the given level. The creation cost
// is debited only after the session is persisted, so a rejected creation
// never spends tokens. Exactly one of opponentID / level must be set; the
// transport boundary enforces that.
func (e *Engine) CreateSession(ctx context.Context, initiatorID string, opponentID *string, level *SkillLevel) (*store.Session, error) {
	lockKeys := []string{initiatorID}
	if opponentID != nil {
		lockKeys = append(lockKeys, *opponentID)
	}
	unlock := e.partyLocks.lockAll(lockKeys...)
	defer unlock()

	ok, err := e.ledger.HasSufficientTokens(ctx, initiatorID, e.cfg.CreateCostTU)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: party %s", ErrNotFound, initiatorID)
		}
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: insufficient tokens", ErrInsufficientFunds)
	}

	if _, err := e.sessions.FindActiveSessionByParty(ctx, initiatorID); err == nil {
		return nil, fmt.Errorf("%w: you already have an active game", ErrConflict)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	if opponentID != nil {
		if *opponentID == initiatorID {
			return nil, fmt.Errorf("%w: cannot play against yourself", ErrConflict)
		}
		if _, err := e.parties.GetParty(ctx, *opponentID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("%w: opponent not found", ErrNotFound)
			}
			return nil, err
		}
		if _, err := e.sessions.FindActiveSessionByParty(ctx, *opponentID); err == nil {
			return nil, fmt.Errorf("%w: opponent already has an active game", ErrConflict)
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}

	cfg, err := e.oracle.NewGame()
	if err != nil {
		return nil, fmt.Errorf("%w: new game: %v", ErrDependency, err)
	}

	sess, err := e.sessions.CreateSession(ctx, store.Session{
		Status:    store.SessionActive,
		Config:    cfg,
		MoveCount: 0,
		StartedAt: time.Now(),
		Player1ID: initiatorID,
		Player2ID: opponentID,
		AILevel:   (*string)(level),
	})
	if err != nil {
		return nil, err
	}

	if _, err := e.ledger.DebitTokens(ctx, initiatorID, e.cfg.CreateCostTU); err != nil {
		// The session stands; the economy layer reconciles the missed debit.
		log.Warn().Err(err).Str("session_id", sess.ID).Str("party_id", initiatorID).
			Msg("creation debit failed after persist")
	}
	return sess, nil
}
