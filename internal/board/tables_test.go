package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReach1KnownSquares(t *testing.T) {
	assert.Equal(t, SquareBB(B3)|SquareBB(C2), Reach1(Knight, A1))
	assert.Equal(t, SquareBB(C3), Reach1(Alfil, A1))
	assert.Equal(t, SquareBB(A3)|SquareBB(C1), Reach1(Dabbaba, A1))
	assert.Equal(t, SquareBB(B2), Reach1(Ferz, A1))
	assert.Equal(t, SquareBB(A2)|SquareBB(B1), Reach1(Wazir, A1))

	// A central wazir has all four neighbors.
	assert.Equal(t, 4, Reach1(Wazir, E4).PopCount())
	assert.Equal(t, 8, Reach1(Knight, E4).PopCount())
}

func TestReach1Symmetric(t *testing.T) {
	for p := Alfil; p < NoPieceType; p++ {
		for from := A1; from < NoSquare; from++ {
			for bb := Reach1(p, from); !bb.Empty(); {
				to := bb.PopLSB()
				assert.True(t, Reach1(p, to).IsSet(from),
					"%v leap %v->%v not symmetric", p, from, to)
			}
		}
	}
}

func TestReach1NeverContainsOrigin(t *testing.T) {
	for p := Alfil; p < NoPieceType; p++ {
		for sq := A1; sq < NoSquare; sq++ {
			assert.False(t, Reach1(p, sq).IsSet(sq))
		}
	}
}

func TestReach2MatchesTwoLeaps(t *testing.T) {
	for p := Alfil; p < NoPieceType; p++ {
		for sq := A1; sq < NoSquare; sq++ {
			var want Bitboard
			for mid := Reach1(p, sq); !mid.Empty(); {
				want |= Reach1(p, mid.PopLSB())
			}
			require.Equal(t, want, Reach2(p, sq), "%v from %v", p, sq)
		}
	}
}

func TestReach3MatchesThreeLeaps(t *testing.T) {
	for p := Alfil; p < NoPieceType; p++ {
		for sq := A1; sq < NoSquare; sq++ {
			var want Bitboard
			for mid := Reach2(p, sq); !mid.Empty(); {
				want |= Reach1(p, mid.PopLSB())
			}
			require.Equal(t, want, Reach3(p, sq), "%v from %v", p, sq)
		}
	}
}

func TestEscapeTables(t *testing.T) {
	for p := Alfil; p < NoPieceType; p++ {
		for w := A1; w < NoSquare; w++ {
			var wantDest, wantSrc Bitboard
			for adj := WazirAdjacent(w); !adj.Empty(); {
				d := adj.PopLSB()
				wantDest |= Reach1(p, d)
				wantSrc |= Reach2(p, d)
			}
			require.Equal(t, wantDest, EscapeDest(p, w), "dest %v wazir %v", p, w)
			require.Equal(t, wantSrc, EscapeSrc(p, w), "src %v wazir %v", p, w)
		}
	}
}

func TestAlfilColorBound(t *testing.T) {
	// An alfil never leaves its color complex: c3 reaches only
	// same-colored squares two diagonal steps away.
	for bb := Reach1(Alfil, C3); !bb.Empty(); {
		to := bb.PopLSB()
		assert.Equal(t, (int(C3.File())+C3.Rank())&1, (to.File()+to.Rank())&1)
	}
}
