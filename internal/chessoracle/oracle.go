package chessoracle

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/notnil/chess"

	"chess-arena/internal/engine"
)

// Oracle adapts the notnil/chess rules engine to the session engine's
// board-agnostic contract. Sessions store the snapshot produced here; every
// call restores a live game from the snapshot's FEN.
type Oracle struct{}

func New() *Oracle {
	return &Oracle{}
}

func (o *Oracle) NewGame() (json.RawMessage, error) {
	return encode(snapshot(chess.NewGame(), nil))
}

// ValidLocation reports whether loc names a board square. Callers normalize
// to upper case first.
func (o *Oracle) ValidLocation(loc string) bool {
	_, ok := squareByName[loc]
	return ok
}

// LegalDestinations lists the squares reachable from origin, sorted and
// deduplicated (promotions yield one entry per target square).
func (o *Oracle) LegalDestinations(raw json.RawMessage, origin string) ([]string, error) {
	g, from, err := restoreWithSquare(raw, origin)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for _, mv := range g.ValidMoves() {
		if mv.S1() == from {
			seen[squareName(mv.S2())] = true
		}
	}
	out := make([]string, 0, len(seen))
	for sq := range seen {
		out = append(out, sq)
	}
	sort.Strings(out)
	return out, nil
}

// ApplyMove plays origin->destination and returns the resulting snapshot.
// A pawn reaching the last rank always promotes to a queen.
func (o *Oracle) ApplyMove(raw json.RawMessage, origin, destination string) (json.RawMessage, error) {
	g, from, err := restoreWithSquare(raw, origin)
	if err != nil {
		return nil, err
	}
	to, ok := squareByName[destination]
	if !ok {
		return nil, fmt.Errorf("unknown square %q", destination)
	}

	var chosen *chess.Move
	for _, mv := range g.ValidMoves() {
		if mv.S1() != from || mv.S2() != to {
			continue
		}
		if chosen == nil || mv.Promo() == chess.Queen {
			chosen = mv
		}
	}
	if chosen == nil {
		return nil, fmt.Errorf("%w: %s to %s", engine.ErrIllegalMove, origin, destination)
	}
	if err := g.Move(chosen); err != nil {
		return nil, err
	}
	return encode(snapshot(g, chosen))
}

// ComputerMove picks and plays a reply for the side on turn at the given
// skill level.
func (o *Oracle) ComputerMove(raw json.RawMessage, level engine.SkillLevel) (engine.ComputerPly, error) {
	cfg, err := decode(raw)
	if err != nil {
		return engine.ComputerPly{}, err
	}
	g, err := restore(cfg)
	if err != nil {
		return engine.ComputerPly{}, err
	}
	mv := selectMove(g, level)
	if mv == nil {
		return engine.ComputerPly{}, fmt.Errorf("no legal moves in position %s", cfg.FEN)
	}

	piece := g.Position().Board().Piece(mv.S1())
	if err := g.Move(mv); err != nil {
		return engine.ComputerPly{}, err
	}
	next, err := encode(snapshot(g, mv))
	if err != nil {
		return engine.ComputerPly{}, err
	}
	return engine.ComputerPly{
		From:   squareName(mv.S1()),
		To:     squareName(mv.S2()),
		Piece:  pieceNames[pieceLetter(piece)],
		Config: next,
	}, nil
}

func (o *Oracle) IsTerminal(raw json.RawMessage) (bool, error) {
	cfg, err := decode(raw)
	return cfg.IsFinished, err
}

func (o *Oracle) IsDecisive(raw json.RawMessage) (bool, error) {
	cfg, err := decode(raw)
	return cfg.IsFinished && cfg.CheckMate, err
}

func (o *Oracle) InCheck(raw json.RawMessage) (bool, error) {
	cfg, err := decode(raw)
	return cfg.Check, err
}

func (o *Oracle) TurnOwner(raw json.RawMessage) (engine.Side, error) {
	cfg, err := decode(raw)
	if err != nil {
		return engine.SideFirst, err
	}
	if cfg.Turn == "black" {
		return engine.SideSecond, nil
	}
	return engine.SideFirst, nil
}

// PieceAt names the piece on a square, e.g. "White Pawn"; empty when the
// square is vacant.
func (o *Oracle) PieceAt(raw json.RawMessage, square string) (string, error) {
	cfg, err := decode(raw)
	if err != nil {
		return "", err
	}
	letter, ok := cfg.Pieces[strings.ToUpper(square)]
	if !ok {
		return "", nil
	}
	return pieceNames[letter], nil
}

func restoreWithSquare(raw json.RawMessage, origin string) (*chess.Game, chess.Square, error) {
	cfg, err := decode(raw)
	if err != nil {
		return nil, chess.NoSquare, err
	}
	g, err := restore(cfg)
	if err != nil {
		return nil, chess.NoSquare, err
	}
	from, ok := squareByName[origin]
	if !ok {
		return nil, chess.NoSquare, fmt.Errorf("unknown square %q", origin)
	}
	return g, from, nil
}
