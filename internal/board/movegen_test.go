package board

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bruteForceLegal enumerates every pseudolegal move and keeps those that
// do not leave the mover's wazir attacked: the generator's contract,
// checked the slow way.
func bruteForceLegal(p *Position) map[Move]bool {
	me := p.SideToMove()
	var pseudo []Move

	for piece := Alfil; piece < NoPieceType; piece++ {
		cp := NewColoredPiece(piece, me)
		for froms := p.PieceBB(cp); !froms.Empty(); {
			from := froms.PopLSB()
			for dests := Reach1(piece, from); !dests.Empty(); {
				to := dests.PopLSB()
				switch victim := p.PieceAt(to); {
				case victim == NoPiece:
					pseudo = append(pseudo, NewJump(cp, from, to))
				case victim.Color() != me:
					pseudo = append(pseudo, NewCapture(cp, from, to, victim.Piece()))
				}
			}
		}
	}
	for piece := Alfil; piece < Wazir; piece++ {
		if p.NumCaptured(me, piece) == 0 {
			continue
		}
		cp := NewColoredPiece(piece, me)
		for dests := p.LegalDropMask(); !dests.Empty(); {
			pseudo = append(pseudo, NewDrop(cp, dests.PopLSB()))
		}
	}

	legal := make(map[Move]bool)
	for _, m := range pseudo {
		// Taking the enemy wazir wins immediately; the safety filter
		// applies to every other move.
		if m.Captured() == Wazir {
			legal[m] = true
			continue
		}
		undo := p.Make(m)
		if !p.InCheck(me) {
			legal[m] = true
		}
		p.Unmake(m, undo)
	}
	return legal
}

func TestGeneratorMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for game := 0; game < 10; game++ {
		playRandomGame(t, rng, 60, func(p *Position, _ Move) {
			want := bruteForceLegal(p)
			if len(want) == 0 {
				return // pseudomove tail, checked separately
			}
			got := make(map[Move]bool)
			p.GenerateMoves(NoMove, [2]Move{}, func(m Move) bool {
				require.False(t, got[m], "duplicate move %v", m)
				got[m] = true
				return true
			})
			require.Equal(t, len(want), len(got))
			for m := range want {
				require.True(t, got[m], "generator missed %v\n%s", m, p)
			}
		})
	}
}

func TestGeneratorSkipsTTMoveAndKillers(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	playRandomGame(t, rng, 30, func(p *Position, _ Move) {
		all := p.LegalMoves().Slice()
		if len(all) < 3 || p.InCheck(p.SideToMove()) {
			return
		}
		tt := all[len(all)-1]
		var killers [2]Move
		for _, m := range all {
			if !m.IsCapture() && m != tt {
				killers[0] = m
				break
			}
		}
		seen := make(map[Move]int)
		p.GenerateMoves(tt, killers, func(m Move) bool {
			seen[m]++
			return true
		})
		for m, n := range seen {
			require.Equal(t, 1, n, "move %v emitted %d times", m, n)
		}
		require.Equal(t, len(all), len(seen))
	})
}

func TestCaptureOfWazirEmittedFirst(t *testing.T) {
	// Enemy wazir on e4, own knight on d2: the capture leads the stream,
	// ahead of every quiet knight move.
	p, err := ParsePosition(20, "AAAAAAAADDDDFFNaaaaaaaaddddff",
		`........
		 ........
		 ........
		 ........
		 ....w...
		 ........
		 ...N....
		 W.......`)
	require.NoError(t, err)

	var moves []Move
	p.GenerateMoves(NoMove, [2]Move{}, func(m Move) bool {
		moves = append(moves, m)
		return true
	})
	require.NotEmpty(t, moves)
	first := moves[0]
	assert.Equal(t, Wazir, first.Captured())
	assert.Equal(t, RedKnight, first.ColoredPiece())
	assert.Equal(t, E4, first.To())
}

func TestJumpCheckBeforeQuietJump(t *testing.T) {
	// Ferz on c3 against a wazir on a1: Fc3-b2 gives check and must
	// come out of the jump-checks bucket, ahead of the quiet ferz moves.
	p, err := ParsePosition(20, "AAAAAAAADDDDFFNaaaaaaaaddddfn",
		`.......W
		 ........
		 ........
		 ........
		 ........
		 ..F.....
		 ........
		 w.......`)
	require.NoError(t, err)

	check := NewJump(RedFerz, C3, B2)
	quiet := NewJump(RedFerz, C3, D4)
	checkIdx, quietIdx := -1, -1
	idx := 0
	p.GenerateMoves(NoMove, [2]Move{}, func(m Move) bool {
		switch m {
		case check:
			checkIdx = idx
		case quiet:
			quietIdx = idx
		}
		idx++
		return true
	})
	require.NotEqual(t, -1, checkIdx, "check jump not generated")
	require.NotEqual(t, -1, quietIdx, "quiet jump not generated")
	assert.Less(t, checkIdx, quietIdx)
}

func TestEvasionsMatchBruteForce(t *testing.T) {
	// Red wazir a1 in check from the dabbaba on a3; b1 is covered but a2
	// is free, and the ferz on b4 can capture the checker.
	p, err := ParsePosition(10, "AAAAAAAADDDFNaaaaaaaaddddfn",
		`w.......
		 ........
		 ........
		 ........
		 .F......
		 d.......
		 ..f.....
		 W.......`)
	require.NoError(t, err)
	require.True(t, p.InCheck(Red))

	want := bruteForceLegal(p)
	require.NotEmpty(t, want)
	var moves []Move
	p.GenerateMoves(NoMove, [2]Move{}, func(m Move) bool {
		moves = append(moves, m)
		return true
	})
	require.Len(t, moves, len(want))
	for _, m := range moves {
		assert.True(t, want[m], "illegal evasion %v", m)
	}
	// Captures of the checker come first.
	assert.True(t, moves[0].IsCapture())
	assert.Equal(t, A3, moves[0].To())
}

func TestCheckmatedSideGetsPseudomoves(t *testing.T) {
	// Red is checkmated: the dabbaba on a3 checks a1, b3-ferz covers a2,
	// c2-ferz covers b1, and nothing can capture the checker. The
	// generator must fall back to wazir pseudomoves into check.
	p, err := ParsePosition(10, "AAAAAAAADDDNaaaaaaaaddddffn",
		`w.......
		 ........
		 ........
		 ........
		 ........
		 df......
		 ..f.....
		 W.......`)
	require.NoError(t, err)
	require.True(t, p.InCheck(Red))
	require.Empty(t, bruteForceLegal(p))

	var moves []Move
	p.GenerateMoves(NoMove, [2]Move{}, func(m Move) bool {
		moves = append(moves, m)
		return true
	})
	require.Len(t, moves, 2)
	for _, m := range moves {
		assert.Equal(t, RedWazir, m.ColoredPiece())
	}
}

func TestGeneratorStopsOnCutoff(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	playRandomGame(t, rng, 10, func(p *Position, _ Move) {
		count := 0
		done := p.GenerateMoves(NoMove, [2]Move{}, func(Move) bool {
			count++
			return false
		})
		assert.False(t, done)
		assert.Equal(t, 1, count)
	})
}

func TestGeneratedMovesNeverLeaveOwnWazirAttacked(t *testing.T) {
	rng := rand.New(rand.NewSource(10))
	playRandomGame(t, rng, 80, func(p *Position, _ Move) {
		if len(bruteForceLegal(p)) == 0 {
			return
		}
		me := p.SideToMove()
		p.GenerateMoves(NoMove, [2]Move{}, func(m Move) bool {
			if m.Captured() == Wazir {
				return true // wins at once, exempt from the filter
			}
			undo := p.Make(m)
			inCheck := p.InCheck(me)
			p.Unmake(m, undo)
			assert.False(t, inCheck, "move %v leaves own wazir attacked", m)
			return true
		})
	})
}
