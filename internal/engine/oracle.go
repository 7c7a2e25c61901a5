package engine

import (
	"encoding/json"
	"fmt"
)

// Side identifies one of the two sides of the board. The session's
// participant 1 always plays SideFirst (the side that moves first).
type Side int

const (
	SideFirst Side = iota
	SideSecond
)

// SkillLevel selects the strength of the computer opponent.
type SkillLevel string

const (
	SkillMonkey       SkillLevel = "MONKEY"
	SkillBeginner     SkillLevel = "BEGINNER"
	SkillIntermediate SkillLevel = "INTERMEDIATE"
	SkillAdvanced     SkillLevel = "ADVANCED"
	SkillExperienced  SkillLevel = "EXPERIENCED"
)

var skillLevels = map[SkillLevel]bool{
	SkillMonkey:       true,
	SkillBeginner:     true,
	SkillIntermediate: true,
	SkillAdvanced:     true,
	SkillExperienced:  true,
}

func ParseSkillLevel(s string) (SkillLevel, error) {
	lvl := SkillLevel(s)
	if !skillLevels[lvl] {
		return "", fmt.Errorf("%w: unknown skill level %q", ErrInvalidArgument, s)
	}
	return lvl, nil
}

// ComputerPly is one computer-selected move and the configuration it
// produced.
type ComputerPly struct {
	From   string
	To     string
	Piece  string
	Config json.RawMessage
}

// Oracle is the external authority on move legality and resulting board
// state. Configurations are opaque snapshots owned by the oracle's
// representation; the engine only interrogates them through this interface.
type Oracle interface {
	// NewGame returns the configuration of a fresh game.
	NewGame() (json.RawMessage, error)
	// ValidLocation reports whether loc names a board square.
	ValidLocation(loc string) bool
	// LegalDestinations lists the squares reachable from origin. Empty when
	// there is no piece at origin or it has no legal moves.
	LegalDestinations(cfg json.RawMessage, origin string) ([]string, error)
	// ApplyMove applies origin->destination and returns the new
	// configuration. Fails with ErrIllegalMove when the move is not legal.
	ApplyMove(cfg json.RawMessage, origin, destination string) (json.RawMessage, error)
	// ComputerMove selects and applies a move for the side on turn.
	ComputerMove(cfg json.RawMessage, level SkillLevel) (ComputerPly, error)
	// IsTerminal reports whether the game has ended.
	IsTerminal(cfg json.RawMessage) (bool, error)
	// IsDecisive reports whether the game has ended with a winner, as
	// opposed to a drawn result.
	IsDecisive(cfg json.RawMessage) (bool, error)
	// InCheck reports whether the side on turn is in check.
	InCheck(cfg json.RawMessage) (bool, error)
	// TurnOwner reports which side moves next.
	TurnOwner(cfg json.RawMessage) (Side, error)
	// PieceAt describes the piece on a square ("White Pawn"), or "" when
	// the square is empty.
	PieceAt(cfg json.RawMessage, square string) (string, error)
}
