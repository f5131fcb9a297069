package engine

import (
	"strings"
	"time"

	"github.com/tczajka/wazir-drop/internal/board"
)

// Search margins, in x10000 evaluation units.
const (
	nullMoveMargin  = 1000 // static eval must beat beta by this to try a null move
	maxNullMoves    = 2    // consecutive null moves allowed
	futilityMargin  = 6000 // depth-1 skip threshold for quiet non-checks
	lmrMoveCount    = 5    // boring moves after this many are reduced
	panicDrop       = 400  // root score drop that triggers panic time
	mateGuardMargin = MaxPly
)

// SearchResult reports one completed search.
type SearchResult struct {
	Move  board.Move
	Score int
	Depth int
	Nodes uint64
	Time  time.Duration
	PV    []board.Move
}

// PVString formats the principal variation in long notation.
func (r SearchResult) PVString() string {
	parts := make([]string, len(r.PV))
	for i, m := range r.PV {
		parts[i] = m.String()
	}
	return strings.Join(parts, " ")
}

// pvTable is the triangular principal-variation table.
type pvTable struct {
	moves  [MaxPly][MaxPly]board.Move
	length [MaxPly]int
}

// searcher is the per-move search state. It is single-threaded and
// cooperative: the only suspension point is the deadline poll.
type searcher struct {
	pos      *board.Position
	eval     Evaluator
	tt       *TransTable
	killers  *Killers
	history  *History
	tc       *TimeControl
	optimism int
	myColor  board.Color

	nodes   uint64
	stopped bool
	pv      pvTable
}

// Search runs iterative deepening under the time controller and returns
// the best completed iteration's root move.
func (s *searcher) Search() SearchResult {
	start := time.Now()
	s.nodes = 0
	s.stopped = false
	s.tt.NewEpoch()
	s.eval.Reset(s.pos)

	var result SearchResult
	prevScore := 0

	for depth := 1; depth <= MaxDepth; depth++ {
		score := s.negamax(depth, 0, -Infinity, Infinity)
		if s.stopped {
			break
		}

		result.Score = score
		result.Depth = depth
		if s.pv.length[0] > 0 {
			result.Move = s.pv.moves[0][0]
			result.PV = append(result.PV[:0], s.pv.moves[0][:s.pv.length[0]]...)
		}

		if IsWinScore(score) || IsLossScore(score) {
			break
		}
		// Panic mode: the new iteration sees the position much worse
		// than the previous one did. Buy time for one more look.
		if depth > 1 && score < prevScore-panicDrop {
			s.tc.Panic()
		}
		prevScore = score

		if s.tc.Expired() {
			break
		}
	}

	if result.Move == board.NoMove {
		// Deadline hit before depth 1 finished: any legal move beats
		// forfeiting on time.
		if ml := s.pos.LegalMoves(); ml.Len() > 0 {
			result.Move = ml.Get(0)
		}
	}
	result.Nodes = s.nodes
	result.Time = time.Since(start)
	return result
}

// pollTime checks the deadline every pollInterval nodes.
func (s *searcher) pollTime() {
	if s.nodes%pollInterval == 0 && s.tc.Expired() {
		s.stopped = true
	}
}

// staticEval returns the evaluator's score plus the optimism bias for the
// engine's color, so equal positions look slightly better than a draw and
// voluntary repetitions are avoided.
func (s *searcher) staticEval() int {
	score := s.eval.Evaluate(s.pos)
	if s.pos.SideToMove() == s.myColor {
		return score + s.optimism
	}
	return score - s.optimism
}

// terminal returns the game-over score at this node, or ok=false.
func (s *searcher) terminal(ply int) (int, bool) {
	if s.pos.Stage() != board.StageOver {
		// Null moves advance the ply without ever setting the stage;
		// treat anything at or past the horizon as the draw it is.
		if s.pos.Ply() >= board.MaxGamePly {
			return DrawScore, true
		}
		return 0, false
	}
	if s.pos.WazirCaptured(s.pos.SideToMove()) {
		return -(WinScore - ply), true
	}
	// 102-ply horizon with both wazirs on board.
	return DrawScore, true
}

// givesCheck reports whether a move's destination attacks the enemy wazir.
func (s *searcher) givesCheck(m board.Move) bool {
	ew := s.pos.WazirSquare(s.pos.SideToMove().Other())
	if ew == board.NoSquare {
		return false
	}
	return board.Reach1(m.ColoredPiece().Piece(), m.To()).IsSet(ew)
}

// negamax is the PVS recursion. Scores are from the side to move's view.
func (s *searcher) negamax(depth, ply, alpha, beta int) int {
	s.nodes++
	s.pollTime()
	if s.stopped {
		return 0
	}

	s.pv.length[ply] = ply

	if score, over := s.terminal(ply); over {
		return score
	}
	if ply >= MaxPly-1 {
		return s.staticEval()
	}
	if ply > 0 && s.history.HasRepetition() {
		return DrawScore
	}

	// Transposition table probe.
	ttMove := board.NoMove
	if entry, ok := s.tt.Probe(s.pos.Hash()); ok {
		ttMove = entry.Move
		if ply > 0 && int(entry.Depth) >= depth {
			score := scoreFromTT(int(entry.Score), ply)
			switch entry.Bound {
			case BoundExact:
				return score
			case BoundLower:
				if score >= beta {
					return score
				}
			case BoundUpper:
				if score <= alpha {
					return score
				}
			}
		}
	}

	inCheck := s.pos.InCheck(s.pos.SideToMove())

	if depth <= 0 && !inCheck {
		return s.quiescence(ply, alpha, beta)
	}

	// Check extension: children of an in-check node keep the full depth.
	childDepth := depth - 1
	if inCheck {
		childDepth = depth
	}

	var staticEval int
	if !inCheck {
		staticEval = s.staticEval()
	}

	// Null-move pruning.
	if !inCheck && depth >= 2 &&
		staticEval >= beta+nullMoveMargin &&
		s.pos.NullMoveCount() < maxNullMoves &&
		beta < WinScore-mateGuardMargin && beta > -WinScore+mateGuardMargin {
		undo := s.pos.MakeNull()
		s.eval.PushNull()
		s.history.Push(s.pos.Hash(), true)
		score := -s.negamax(depth-1, ply+1, -beta, -beta+1)
		s.history.Pop()
		s.eval.Pop()
		s.pos.UnmakeNull(undo)
		if s.stopped {
			return 0
		}
		if score >= beta {
			return beta
		}
	}

	futile := !inCheck && depth == 1 && staticEval+futilityMargin <= alpha

	killers := s.killers.Get(ply)
	bestScore := -Infinity
	bestMove := board.NoMove
	bound := BoundUpper
	moveCount := 0
	cutoff := false

	s.pos.GenerateMoves(ttMove, killers, func(m board.Move) bool {
		isCapture := m.IsCapture()
		givesCheck := s.givesCheck(m)

		if futile && !isCapture && !givesCheck && moveCount > 0 {
			return true
		}
		moveCount++

		undo := s.pos.Make(m)
		s.eval.Push(s.pos, m)
		s.history.Push(s.pos.Hash(), isCapture || m.IsDrop())

		var score int
		if moveCount == 1 {
			score = -s.negamax(childDepth, ply+1, -beta, -alpha)
		} else {
			// Late-move reduction for boring moves.
			d := childDepth
			if depth > 1 && moveCount > lmrMoveCount &&
				!inCheck && !isCapture && !givesCheck &&
				m != ttMove && m != killers[0] && m != killers[1] {
				d--
			}
			score = -s.negamax(d, ply+1, -alpha-1, -alpha)
			if score > alpha && d < childDepth && !s.stopped {
				score = -s.negamax(childDepth, ply+1, -alpha-1, -alpha)
			}
			if score > alpha && score < beta && !s.stopped {
				score = -s.negamax(childDepth, ply+1, -beta, -alpha)
			}
		}

		s.history.Pop()
		s.eval.Pop()
		s.pos.Unmake(m, undo)

		if s.stopped {
			return false
		}

		if score > bestScore {
			bestScore = score
			bestMove = m
			if score > alpha {
				alpha = score
				bound = BoundExact
				s.pv.moves[ply][ply] = m
				for j := ply + 1; j < s.pv.length[ply+1]; j++ {
					s.pv.moves[ply][j] = s.pv.moves[ply+1][j]
				}
				s.pv.length[ply] = s.pv.length[ply+1]
			}
		}
		if score >= beta {
			cutoff = true
			return false
		}
		return true
	})

	if s.stopped {
		return 0
	}
	if moveCount == 0 {
		// The side to move cannot even emit a pseudomove: its wazir is
		// boxed in with nothing else to play. Treat as lost.
		return -(WinScore - ply)
	}

	if cutoff {
		s.tt.Store(s.pos.Hash(), depth, scoreToTT(bestScore, ply), BoundLower, bestMove)
		if !bestMove.IsCapture() {
			s.killers.Insert(ply, bestMove)
		}
		return bestScore
	}

	s.tt.Store(s.pos.Hash(), depth, scoreToTT(bestScore, ply), bound, bestMove)
	return bestScore
}

// quiescence resolves captures (and checks via the evasion generator)
// until the position is quiet.
func (s *searcher) quiescence(ply, alpha, beta int) int {
	s.nodes++
	s.pollTime()
	if s.stopped {
		return 0
	}

	if score, over := s.terminal(ply); over {
		return score
	}
	if ply >= MaxPly-1 {
		return s.staticEval()
	}

	if s.pos.InCheck(s.pos.SideToMove()) {
		// Evasions only; there is no stand pat while in check.
		bestScore := -Infinity
		s.pos.GenerateMoves(board.NoMove, [2]board.Move{}, func(m board.Move) bool {
			undo := s.pos.Make(m)
			s.eval.Push(s.pos, m)
			s.history.Push(s.pos.Hash(), m.IsCapture() || m.IsDrop())
			score := -s.quiescence(ply+1, -beta, -alpha)
			s.history.Pop()
			s.eval.Pop()
			s.pos.Unmake(m, undo)

			if s.stopped {
				return false
			}
			if score > bestScore {
				bestScore = score
				if score > alpha {
					alpha = score
				}
			}
			return score < beta
		})
		if s.stopped {
			return 0
		}
		if bestScore == -Infinity {
			return -(WinScore - ply)
		}
		return bestScore
	}

	standPat := s.staticEval()
	if standPat >= beta {
		return beta
	}
	if standPat > alpha {
		alpha = standPat
	}

	s.pos.GenerateCaptures(func(m board.Move) bool {
		undo := s.pos.Make(m)
		s.eval.Push(s.pos, m)
		score := -s.quiescence(ply+1, -beta, -alpha)
		s.eval.Pop()
		s.pos.Unmake(m, undo)

		if s.stopped {
			return false
		}
		if score > alpha {
			alpha = score
		}
		return score < beta
	})
	if s.stopped {
		return 0
	}
	if alpha >= beta {
		return beta
	}
	return alpha
}
