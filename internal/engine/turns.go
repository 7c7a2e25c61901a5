package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"chess-arena/internal/store"
)

// MoveOutcome summarizes one processed human turn, including the chained
// computer reply when the opponent is a computer.
type MoveOutcome struct {
	SessionID string
	Narrative string
	Finished  bool
	Draw      bool
	WinnerID  *string
	// Set when the move stood but a token debit failed; the economy layer
	// reconciles asynchronously.
	LedgerWarning string
}

// SubmitMove runs the whole turn pipeline as one exclusive unit per session:
// validation, legality, state mutation, move logging, token debit, the
// synchronous computer reply, and settlement on a terminal configuration.
func (e *Engine) SubmitMove(ctx context.Context, partyID, origin, destination string) (*MoveOutcome, error) {
	sess, err := e.sessions.FindActiveSessionByParty(ctx, partyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: no active game found", ErrNotFound)
		}
		return nil, err
	}

	unlock := e.sessionLocks.lock(sess.ID)
	defer unlock()

	// Re-read under the lock; a concurrent move or abandon may have
	// advanced or closed the session between lookup and acquisition.
	sess, err = e.sessions.GetSession(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	if sess.Status != store.SessionActive {
		return nil, fmt.Errorf("%w: game is finished", ErrInvalidState)
	}

	if err := e.checkTurn(sess, partyID); err != nil {
		return nil, err
	}

	origin = strings.ToUpper(origin)
	destination = strings.ToUpper(destination)
	if !e.oracle.ValidLocation(origin) || !e.oracle.ValidLocation(destination) {
		return nil, fmt.Errorf("%w: invalid start or end location", ErrInvalidArgument)
	}

	ok, err := e.ledger.HasSufficientTokens(ctx, partyID, e.cfg.MoveCostTU)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: insufficient tokens", ErrInsufficientFunds)
	}

	legal, err := e.oracle.LegalDestinations(sess.Config, origin)
	if err != nil {
		return nil, fmt.Errorf("%w: legal destinations: %v", ErrDependency, err)
	}
	if !contains(legal, destination) {
		piece, _ := e.oracle.PieceAt(sess.Config, origin)
		if piece == "" {
			return nil, fmt.Errorf("%w: no piece at start location", ErrIllegalMove)
		}
		if len(legal) > 0 {
			return nil, fmt.Errorf("%w: available end locations: %s", ErrIllegalMove, strings.Join(legal, ", "))
		}
		return nil, fmt.Errorf("%w: no available moves from start location", ErrIllegalMove)
	}

	piece, err := e.oracle.PieceAt(sess.Config, origin)
	if err != nil {
		return nil, fmt.Errorf("%w: piece lookup: %v", ErrDependency, err)
	}

	newCfg, err := e.oracle.ApplyMove(sess.Config, origin, destination)
	if err != nil {
		// The oracle rejected a move it had itself enumerated.
		return nil, fmt.Errorf("%w: apply move: %v", ErrDependency, err)
	}

	out := &MoveOutcome{SessionID: sess.ID}
	seq := sess.MoveCount + 1
	if err := e.recordPly(ctx, sess.ID, &partyID, seq, &origin, &destination, &piece, newCfg); err != nil {
		return nil, err
	}
	e.debitMove(ctx, sess.ID, partyID, out)
	out.Narrative = fmt.Sprintf("You moved a %s from %s to %s.", piece, origin, destination)

	terminal, err := e.oracle.IsTerminal(newCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: terminal check: %v", ErrDependency, err)
	}
	if terminal {
		if err := e.settle(ctx, sess, newCfg, partyID, out); err != nil {
			return nil, err
		}
		return out, nil
	}

	if sess.AILevel != nil {
		ply, err := e.oracle.ComputerMove(newCfg, SkillLevel(*sess.AILevel))
		if err != nil {
			return nil, fmt.Errorf("%w: computer move: %v", ErrDependency, err)
		}
		seq++
		if err := e.recordPly(ctx, sess.ID, nil, seq, &ply.From, &ply.To, &ply.Piece, ply.Config); err != nil {
			return nil, err
		}
		// The computer incurs no cost; its ply is debited from the human.
		e.debitMove(ctx, sess.ID, partyID, out)
		out.Narrative += fmt.Sprintf(" AI moved a %s from %s to %s.", ply.Piece, ply.From, ply.To)
		newCfg = ply.Config

		terminal, err = e.oracle.IsTerminal(newCfg)
		if err != nil {
			return nil, fmt.Errorf("%w: terminal check: %v", ErrDependency, err)
		}
		if terminal {
			if err := e.settle(ctx, sess, newCfg, partyID, out); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// checkTurn fails with ErrForbidden unless the configuration's turn owner
// maps to the acting party. Participant 1 always plays the first-moving
// side.
func (e *Engine) checkTurn(sess *store.Session, partyID string) error {
	side, err := e.oracle.TurnOwner(sess.Config)
	if err != nil {
		return fmt.Errorf("%w: turn owner: %v", ErrDependency, err)
	}
	actor := SideSecond
	if sess.Player1ID == partyID {
		actor = SideFirst
	} else if sess.Player2ID == nil || *sess.Player2ID != partyID {
		return fmt.Errorf("%w: you are not part of the game", ErrForbidden)
	}
	if side != actor {
		return fmt.Errorf("%w: not your turn", ErrForbidden)
	}
	return nil
}

// recordPly appends the move and advances the session snapshot together;
// a failure in either leaves the turn unprocessed.
func (e *Engine) recordPly(ctx context.Context, sessionID string, partyID *string, seq int, from, to, piece *string, cfg json.RawMessage) error {
	if _, err := e.moves.AppendMove(ctx, store.Move{
		SessionID:   sessionID,
		PartyID:     partyID,
		Seq:         seq,
		FromSquare:  from,
		ToSquare:    to,
		ConfigAfter: cfg,
		Piece:       piece,
	}); err != nil {
		return err
	}
	return e.sessions.UpdateSessionState(ctx, sessionID, cfg, seq)
}

// debitMove charges the per-move cost. The move has already been applied
// and logged, so a failure here is reported, not rolled back.
func (e *Engine) debitMove(ctx context.Context, sessionID, partyID string, out *MoveOutcome) {
	if _, err := e.ledger.DebitTokens(ctx, partyID, e.cfg.MoveCostTU); err != nil {
		out.LedgerWarning = "move applied but token debit failed; balance will be reconciled"
		log.Warn().Err(err).Str("session_id", sessionID).Str("party_id", partyID).
			Msg("move debit failed after apply")
	}
}

// settle closes the session on a terminal configuration. The winner of a
// decisive result is the side NOT on turn; a computer win leaves the winner
// unset. Points are credited only on a decisive result, and a credit
// failure never reverts the transition.
func (e *Engine) settle(ctx context.Context, sess *store.Session, cfg json.RawMessage, actorID string, out *MoveOutcome) error {
	decisive, err := e.oracle.IsDecisive(cfg)
	if err != nil {
		return fmt.Errorf("%w: decisive check: %v", ErrDependency, err)
	}

	var winnerID *string
	if decisive {
		side, err := e.oracle.TurnOwner(cfg)
		if err != nil {
			return fmt.Errorf("%w: turn owner: %v", ErrDependency, err)
		}
		if side == SideFirst {
			winnerID = sess.Player2ID
		} else {
			p1 := sess.Player1ID
			winnerID = &p1
		}
	}

	if err := e.sessions.FinishSession(ctx, sess.ID, winnerID, time.Now()); err != nil {
		return err
	}
	if decisive && winnerID != nil {
		if err := e.ledger.CreditPoints(ctx, *winnerID, e.cfg.WinPrizeTU); err != nil {
			log.Error().Err(err).Str("session_id", sess.ID).Str("party_id", *winnerID).
				Msg("win prize credit failed; session settled regardless")
		}
	}

	out.Finished = true
	out.Draw = !decisive
	out.WinnerID = winnerID
	switch {
	case !decisive:
		out.Narrative += " Game finished. Stalemate!"
	case winnerID != nil && *winnerID == actorID:
		out.Narrative += " Game finished. You won!"
	default:
		out.Narrative += " Game finished. You lost."
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
