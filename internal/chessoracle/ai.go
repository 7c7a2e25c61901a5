package chessoracle

import (
	"math/rand"

	"github.com/notnil/chess"

	"chess-arena/internal/engine"
)

const mateScore = 1_000_000

// Search depth in plies per skill level. The weakest level plays a uniform
// random legal move.
var searchDepth = map[engine.SkillLevel]int{
	engine.SkillMonkey:       0,
	engine.SkillBeginner:     1,
	engine.SkillIntermediate: 2,
	engine.SkillAdvanced:     3,
	engine.SkillExperienced:  4,
}

var pieceValue = map[chess.PieceType]int{
	chess.Pawn:   100,
	chess.Knight: 320,
	chess.Bishop: 330,
	chess.Rook:   500,
	chess.Queen:  900,
	chess.King:   0,
}

// selectMove picks a reply for the side on turn. Levels above the weakest
// run a fixed-depth alpha-beta search over material; ties are broken at
// random so repeated games diverge.
func selectMove(g *chess.Game, level engine.SkillLevel) *chess.Move {
	moves := g.ValidMoves()
	if len(moves) == 0 {
		return nil
	}

	depth := searchDepth[level]
	if depth == 0 {
		return moves[rand.Intn(len(moves))]
	}

	bestScore := -2 * mateScore
	var best []*chess.Move
	for _, mv := range moves {
		child := g.Clone()
		if err := child.Move(mv); err != nil {
			continue
		}
		score := -negamax(child, depth-1, -2*mateScore, -bestScore)
		switch {
		case score > bestScore:
			bestScore = score
			best = best[:0]
			best = append(best, mv)
		case score == bestScore:
			best = append(best, mv)
		}
	}
	if len(best) == 0 {
		return moves[rand.Intn(len(moves))]
	}
	return best[rand.Intn(len(best))]
}

func negamax(g *chess.Game, depth, alpha, beta int) int {
	moves := g.ValidMoves()
	if len(moves) == 0 {
		if g.Position().Status() == chess.Checkmate {
			return -mateScore
		}
		return 0
	}
	if g.Outcome() == chess.Draw {
		return 0
	}
	if depth == 0 {
		return evaluate(g.Position())
	}

	best := -2 * mateScore
	for _, mv := range moves {
		child := g.Clone()
		if err := child.Move(mv); err != nil {
			continue
		}
		score := -negamax(child, depth-1, -beta, -alpha)
		if score > best {
			best = score
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			break
		}
	}
	return best
}

// evaluate scores material from the perspective of the side on turn.
func evaluate(pos *chess.Position) int {
	total := 0
	for _, p := range pos.Board().SquareMap() {
		v := pieceValue[p.Type()]
		if p.Color() == pos.Turn() {
			total += v
		} else {
			total -= v
		}
	}
	return total
}
