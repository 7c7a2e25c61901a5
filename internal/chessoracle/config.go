package chessoracle

import (
	"encoding/json"
	"strings"

	"github.com/notnil/chess"
)

// boardConfig is the structured export the engine stores as the opaque
// session configuration: whose turn it is, the terminal flags, and the
// occupied squares. The FEN carries the full position for restoration.
type boardConfig struct {
	Turn       string            `json:"turn"`
	FEN        string            `json:"fen"`
	Check      bool              `json:"check"`
	CheckMate  bool              `json:"checkMate"`
	IsFinished bool              `json:"isFinished"`
	Pieces     map[string]string `json:"pieces"`
}

var squareByName = make(map[string]chess.Square, 64)

func init() {
	for i := 0; i < 64; i++ {
		sq := chess.Square(i)
		squareByName[strings.ToUpper(sq.String())] = sq
	}
}

var letterByType = map[chess.PieceType]string{
	chess.King:   "K",
	chess.Queen:  "Q",
	chess.Rook:   "R",
	chess.Bishop: "B",
	chess.Knight: "N",
	chess.Pawn:   "P",
}

var pieceNames = map[string]string{
	"P": "White Pawn",
	"N": "White Knight",
	"B": "White Bishop",
	"R": "White Rook",
	"Q": "White Queen",
	"K": "White King",
	"p": "Black Pawn",
	"n": "Black Knight",
	"b": "Black Bishop",
	"r": "Black Rook",
	"q": "Black Queen",
	"k": "Black King",
}

func pieceLetter(p chess.Piece) string {
	letter := letterByType[p.Type()]
	if p.Color() == chess.Black {
		letter = strings.ToLower(letter)
	}
	return letter
}

func squareName(sq chess.Square) string {
	return strings.ToUpper(sq.String())
}

// snapshot derives the stored configuration from a live game. lastMove is
// the move that produced the position, nil for a fresh game.
func snapshot(g *chess.Game, lastMove *chess.Move) boardConfig {
	pos := g.Position()

	turn := "white"
	if pos.Turn() == chess.Black {
		turn = "black"
	}

	status := pos.Status()
	finished := g.Outcome() != chess.NoOutcome ||
		status == chess.Checkmate || status == chess.Stalemate
	mate := g.Method() == chess.Checkmate || status == chess.Checkmate

	pieces := make(map[string]string)
	for sq, p := range pos.Board().SquareMap() {
		if p != chess.NoPiece {
			pieces[squareName(sq)] = pieceLetter(p)
		}
	}

	return boardConfig{
		Turn:       turn,
		FEN:        pos.String(),
		Check:      lastMove != nil && lastMove.HasTag(chess.Check),
		CheckMate:  mate,
		IsFinished: finished,
		Pieces:     pieces,
	}
}

func encode(cfg boardConfig) (json.RawMessage, error) {
	return json.Marshal(cfg)
}

func decode(raw json.RawMessage) (boardConfig, error) {
	var cfg boardConfig
	err := json.Unmarshal(raw, &cfg)
	return cfg, err
}

// restore rebuilds a playable game from a stored configuration.
func restore(cfg boardConfig) (*chess.Game, error) {
	opt, err := chess.FEN(cfg.FEN)
	if err != nil {
		return nil, err
	}
	return chess.NewGame(opt), nil
}
