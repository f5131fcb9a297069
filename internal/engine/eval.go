package engine

import "github.com/tczajka/wazir-drop/internal/board"

// Evaluator scores positions from the side to move's view in x10000
// units. Its stack methods mirror make/unmake exactly; the NNUE state in
// internal/nnue is the tournament implementation.
type Evaluator interface {
	// Reset refreshes internal state for a new search root.
	Reset(pos *board.Position)
	// Push records a regular move already made on pos.
	Push(pos *board.Position, m board.Move)
	// PushNull records a null move.
	PushNull()
	// Pop discards the last pushed frame.
	Pop()
	// Evaluate returns the static score for the side to move.
	Evaluate(pos *board.Position) int
}

// MaterialEvaluator is the fallback when no weight blob is available:
// a plain material count over board and hand.
type MaterialEvaluator struct{}

// Material values in x10000 units; a piece in hand is worth a little
// extra for the freedom of the drop square.
var materialValue = [board.NumPieces]int{
	board.Alfil:   1000,
	board.Dabbaba: 1800,
	board.Ferz:    2600,
	board.Knight:  4200,
	board.Wazir:   0,
}

const handBonus = 200

// Reset implements Evaluator.
func (MaterialEvaluator) Reset(*board.Position) {}

// Push implements Evaluator.
func (MaterialEvaluator) Push(*board.Position, board.Move) {}

// PushNull implements Evaluator.
func (MaterialEvaluator) PushNull() {}

// Pop implements Evaluator.
func (MaterialEvaluator) Pop() {}

// Evaluate implements Evaluator.
func (MaterialEvaluator) Evaluate(pos *board.Position) int {
	me := pos.SideToMove()
	return sideMaterial(pos, me) - sideMaterial(pos, me.Other())
}

func sideMaterial(pos *board.Position, c board.Color) int {
	total := 0
	for piece := board.Alfil; piece < board.Wazir; piece++ {
		v := materialValue[piece]
		total += v * pos.PieceBB(board.NewColoredPiece(piece, c)).PopCount()
		total += (v + handBonus) * pos.NumCaptured(c, piece)
	}
	return total
}
