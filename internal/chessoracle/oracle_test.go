package chessoracle

import (
	"encoding/json"
	"testing"

	"chess-arena/internal/engine"
)

func mustNewGame(t *testing.T, o *Oracle) json.RawMessage {
	t.Helper()
	cfg, err := o.NewGame()
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	return cfg
}

func mustApply(t *testing.T, o *Oracle, cfg json.RawMessage, from, to string) json.RawMessage {
	t.Helper()
	next, err := o.ApplyMove(cfg, from, to)
	if err != nil {
		t.Fatalf("ApplyMove %s %s: %v", from, to, err)
	}
	return next
}

func TestNewGameSnapshot(t *testing.T) {
	o := New()
	raw := mustNewGame(t, o)

	cfg, err := decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Turn != "white" {
		t.Fatalf("turn = %q, want white", cfg.Turn)
	}
	if cfg.IsFinished || cfg.CheckMate || cfg.Check {
		t.Fatalf("fresh game carries terminal flags: %+v", cfg)
	}
	if len(cfg.Pieces) != 32 {
		t.Fatalf("piece count = %d, want 32", len(cfg.Pieces))
	}
	if cfg.Pieces["E1"] != "K" || cfg.Pieces["E8"] != "k" {
		t.Fatalf("kings misplaced: E1=%q E8=%q", cfg.Pieces["E1"], cfg.Pieces["E8"])
	}
}

func TestValidLocation(t *testing.T) {
	o := New()
	for _, loc := range []string{"A1", "H8", "E4"} {
		if !o.ValidLocation(loc) {
			t.Fatalf("ValidLocation(%s) = false", loc)
		}
	}
	for _, loc := range []string{"I1", "A9", "", "E"} {
		if o.ValidLocation(loc) {
			t.Fatalf("ValidLocation(%q) = true", loc)
		}
	}
}

func TestLegalDestinationsOpeningPawn(t *testing.T) {
	o := New()
	cfg := mustNewGame(t, o)

	dests, err := o.LegalDestinations(cfg, "E2")
	if err != nil {
		t.Fatalf("LegalDestinations: %v", err)
	}
	if len(dests) != 2 || dests[0] != "E3" || dests[1] != "E4" {
		t.Fatalf("destinations from E2 = %v, want [E3 E4]", dests)
	}

	dests, err = o.LegalDestinations(cfg, "E4")
	if err != nil {
		t.Fatalf("LegalDestinations empty square: %v", err)
	}
	if len(dests) != 0 {
		t.Fatalf("destinations from empty E4 = %v, want none", dests)
	}
}

func TestApplyMoveAdvancesTurn(t *testing.T) {
	o := New()
	cfg := mustNewGame(t, o)
	next := mustApply(t, o, cfg, "E2", "E4")

	got, err := decode(next)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Turn != "black" {
		t.Fatalf("turn after white move = %q, want black", got.Turn)
	}
	if got.Pieces["E4"] != "P" {
		t.Fatalf("E4 = %q, want P", got.Pieces["E4"])
	}
	if _, occupied := got.Pieces["E2"]; occupied {
		t.Fatal("E2 still occupied after the pawn advanced")
	}

	side, err := o.TurnOwner(next)
	if err != nil {
		t.Fatalf("TurnOwner: %v", err)
	}
	if side != engine.SideSecond {
		t.Fatalf("turn owner = %v, want second side", side)
	}
}

func TestApplyMoveRejectsIllegal(t *testing.T) {
	o := New()
	cfg := mustNewGame(t, o)
	if _, err := o.ApplyMove(cfg, "E2", "E5"); err == nil {
		t.Fatal("expected illegal move to be rejected")
	}
}

func TestFoolsMateIsDecisive(t *testing.T) {
	o := New()
	cfg := mustNewGame(t, o)
	cfg = mustApply(t, o, cfg, "F2", "F3")
	cfg = mustApply(t, o, cfg, "E7", "E5")
	cfg = mustApply(t, o, cfg, "G2", "G4")
	cfg = mustApply(t, o, cfg, "D8", "H4")

	terminal, err := o.IsTerminal(cfg)
	if err != nil || !terminal {
		t.Fatalf("IsTerminal = %v, %v; want true", terminal, err)
	}
	decisive, err := o.IsDecisive(cfg)
	if err != nil || !decisive {
		t.Fatalf("IsDecisive = %v, %v; want true", decisive, err)
	}
	check, err := o.InCheck(cfg)
	if err != nil || !check {
		t.Fatalf("InCheck = %v, %v; want true", check, err)
	}
	// White is mated, so white is still on turn and the second side won.
	side, err := o.TurnOwner(cfg)
	if err != nil {
		t.Fatalf("TurnOwner: %v", err)
	}
	if side != engine.SideFirst {
		t.Fatalf("turn owner at mate = %v, want first side", side)
	}
}

func TestStalemateIsTerminalNotDecisive(t *testing.T) {
	o := New()
	raw, err := encode(boardConfig{
		Turn: "black",
		FEN:  "7k/5Q2/5K2/8/8/8/8/8 b - - 0 1",
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	dests, err := o.LegalDestinations(raw, "H8")
	if err != nil {
		t.Fatalf("LegalDestinations: %v", err)
	}
	if len(dests) != 0 {
		t.Fatalf("stalemated king has destinations %v", dests)
	}
}

func TestComputerMoveIsLegal(t *testing.T) {
	o := New()
	cfg := mustNewGame(t, o)
	cfg = mustApply(t, o, cfg, "E2", "E4")

	for _, level := range []engine.SkillLevel{engine.SkillMonkey, engine.SkillBeginner, engine.SkillIntermediate} {
		ply, err := o.ComputerMove(cfg, level)
		if err != nil {
			t.Fatalf("ComputerMove %s: %v", level, err)
		}
		dests, err := o.LegalDestinations(cfg, ply.From)
		if err != nil {
			t.Fatalf("LegalDestinations: %v", err)
		}
		found := false
		for _, d := range dests {
			if d == ply.To {
				found = true
			}
		}
		if !found {
			t.Fatalf("computer played %s-%s, not a legal destination (%v)", ply.From, ply.To, dests)
		}
		side, err := o.TurnOwner(ply.Config)
		if err != nil {
			t.Fatalf("TurnOwner: %v", err)
		}
		if side != engine.SideFirst {
			t.Fatalf("turn owner after reply = %v, want first side", side)
		}
		if ply.Piece == "" {
			t.Fatal("computer ply carries no piece name")
		}
	}
}

func TestComputerCapturesHangingQueen(t *testing.T) {
	o := New()
	// Black to move, undefended white queen en prise on F6.
	raw, err := encode(boardConfig{
		Turn: "black",
		FEN:  "rnbqkbnr/pppppppp/5Q2/8/8/8/PPPPPPPP/RNB1KBNR b KQkq - 0 1",
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	ply, err := o.ComputerMove(raw, engine.SkillIntermediate)
	if err != nil {
		t.Fatalf("ComputerMove: %v", err)
	}
	if ply.To != "F6" {
		t.Fatalf("computer played %s-%s, expected a capture on F6", ply.From, ply.To)
	}
}

func TestPieceAt(t *testing.T) {
	o := New()
	cfg := mustNewGame(t, o)

	name, err := o.PieceAt(cfg, "E1")
	if err != nil {
		t.Fatalf("PieceAt: %v", err)
	}
	if name != "White King" {
		t.Fatalf("E1 = %q, want White King", name)
	}
	name, err = o.PieceAt(cfg, "D8")
	if err != nil {
		t.Fatalf("PieceAt: %v", err)
	}
	if name != "Black Queen" {
		t.Fatalf("D8 = %q, want Black Queen", name)
	}
	name, err = o.PieceAt(cfg, "E4")
	if err != nil {
		t.Fatalf("PieceAt: %v", err)
	}
	if name != "" {
		t.Fatalf("empty square returned %q", name)
	}
}
