package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"chess-arena/internal/store"
)

// Abandon forfeits the caller's active session. Only the party on turn may
// abandon, so nobody dodges an unfavorable position mid-opponent-turn. The
// other human participant wins and takes the prize; against a computer
// there is no credited winner. The abandoning party always takes the
// penalty, and a sentinel move with null actor, squares and piece marks the
// forfeit in the log.
func (e *Engine) Abandon(ctx context.Context, partyID string) error {
	sess, err := e.sessions.FindActiveSessionByParty(ctx, partyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: no active game found", ErrNotFound)
		}
		return err
	}

	unlock := e.sessionLocks.lock(sess.ID)
	defer unlock()

	sess, err = e.sessions.GetSession(ctx, sess.ID)
	if err != nil {
		return err
	}
	if sess.Status != store.SessionActive {
		return fmt.Errorf("%w: no active game found", ErrNotFound)
	}

	if err := e.checkTurn(sess, partyID); err != nil {
		return err
	}

	var winnerID *string
	if sess.Player1ID == partyID {
		winnerID = sess.Player2ID
	} else {
		p1 := sess.Player1ID
		winnerID = &p1
	}

	seq := sess.MoveCount + 1
	if err := e.sessions.UpdateSessionState(ctx, sess.ID, sess.Config, seq); err != nil {
		return err
	}
	if err := e.sessions.FinishSession(ctx, sess.ID, winnerID, time.Now()); err != nil {
		return err
	}
	if _, err := e.moves.AppendMove(ctx, store.Move{
		SessionID:   sess.ID,
		Seq:         seq,
		ConfigAfter: sess.Config,
	}); err != nil {
		return err
	}

	if winnerID != nil {
		if err := e.ledger.CreditPoints(ctx, *winnerID, e.cfg.WinPrizeTU); err != nil {
			log.Error().Err(err).Str("session_id", sess.ID).Str("party_id", *winnerID).
				Msg("abandon prize credit failed; session settled regardless")
		}
	}
	if err := e.ledger.CreditPoints(ctx, partyID, e.cfg.AbandonPenaltyTU); err != nil {
		log.Error().Err(err).Str("session_id", sess.ID).Str("party_id", partyID).
			Msg("abandon penalty credit failed; session settled regardless")
	}
	return nil
}
