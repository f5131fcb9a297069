package board

// Precomputed reachability tables, filled once at init.
//
// reach1[p][s] holds the destinations one p-leap away from s. reach2 and
// reach3 hold the squares reachable by a sequence of two and three p-leaps
// (the origin itself reappears for pieces with involutive leaps).
//
// The escape-attack tables are indexed by the enemy wazir square w:
// escDest[p][w] is every square from which a p attacks some flight square
// of w, and escSrc[p][w] is every square from which a p can reach such an
// attacking square in one leap.
var (
	reach1  [NumPieces][64]Bitboard
	reach2  [NumPieces][64]Bitboard
	reach3  [NumPieces][64]Bitboard
	escDest [NumPieces][64]Bitboard
	escSrc  [NumPieces][64]Bitboard
)

func init() {
	initReachTables()
	initEscapeTables()
}

func initReachTables() {
	for p := Alfil; p < NoPieceType; p++ {
		for sq := A1; sq < NoSquare; sq++ {
			var bb Bitboard
			for _, off := range leapOffsets[p] {
				if to := sq.Offset(off[0], off[1]); to != NoSquare {
					bb = bb.Set(to)
				}
			}
			reach1[p][sq] = bb
		}
		for sq := A1; sq < NoSquare; sq++ {
			reach2[p][sq] = expand(p, reach1[p][sq])
			reach3[p][sq] = expand(p, reach2[p][sq])
		}
	}
}

// expand returns the union of one-leap destinations over all squares of from.
func expand(p Piece, from Bitboard) Bitboard {
	var bb Bitboard
	for from != 0 {
		sq := from.PopLSB()
		bb |= reach1[p][sq]
	}
	return bb
}

func initEscapeTables() {
	for p := Alfil; p < NoPieceType; p++ {
		for w := A1; w < NoSquare; w++ {
			flights := reach1[Wazir][w]
			var dest, src Bitboard
			for f := flights; f != 0; {
				d := f.PopLSB()
				dest |= reach1[p][d]
				src |= reach2[p][d]
			}
			escDest[p][w] = dest
			escSrc[p][w] = src
		}
	}
}

// Reach1 returns the one-leap destination set for piece p on square sq.
func Reach1(p Piece, sq Square) Bitboard {
	return reach1[p][sq]
}

// Reach2 returns the two-leap destination set for piece p on square sq.
func Reach2(p Piece, sq Square) Bitboard {
	return reach2[p][sq]
}

// Reach3 returns the three-leap destination set for piece p on square sq.
func Reach3(p Piece, sq Square) Bitboard {
	return reach3[p][sq]
}

// WazirAdjacent returns the 4-neighborhood of a square.
func WazirAdjacent(sq Square) Bitboard {
	return reach1[Wazir][sq]
}

// EscapeDest returns the squares from which piece p attacks a flight square
// of a wazir on w.
func EscapeDest(p Piece, w Square) Bitboard {
	return escDest[p][w]
}

// EscapeSrc returns the squares from which piece p can, in one leap, reach a
// square that attacks a flight square of a wazir on w.
func EscapeSrc(p Piece, w Square) Bitboard {
	return escSrc[p][w]
}
