package board

import "github.com/pkg/errors"

// Move encodes a regular move (jump, capture or drop) in 21 bits:
//
//	bits 0-5:   to square
//	bits 6-12:  from square (64 = drop)
//	bits 13-16: moving colored piece
//	bits 17-20: captured piece type + 1 (0 = no capture)
//
// Setup moves are a separate type; see SetupMove.
type Move uint32

// NoMove represents an invalid or null move.
const NoMove Move = 0

// NewJump creates a non-capturing piece move.
func NewJump(cp ColoredPiece, from, to Square) Move {
	return Move(to) | Move(from)<<6 | Move(cp)<<13
}

// NewCapture creates a capturing move.
func NewCapture(cp ColoredPiece, from, to Square, victim Piece) Move {
	return Move(to) | Move(from)<<6 | Move(cp)<<13 | Move(victim+1)<<17
}

// NewDrop creates a drop of a captured piece onto an empty square.
func NewDrop(cp ColoredPiece, to Square) Move {
	return Move(to) | Move(NoSquare)<<6 | Move(cp)<<13
}

// To returns the destination square.
func (m Move) To() Square {
	return Square(m & 0x3F)
}

// From returns the origin square, or NoSquare for a drop.
func (m Move) From() Square {
	return Square((m >> 6) & 0x7F)
}

// ColoredPiece returns the moving piece.
func (m Move) ColoredPiece() ColoredPiece {
	return ColoredPiece((m >> 13) & 0xF)
}

// IsDrop returns true if this move drops a captured piece.
func (m Move) IsDrop() bool {
	return m.From() == NoSquare
}

// Captured returns the captured piece type, or NoPieceType.
func (m Move) Captured() Piece {
	v := (m >> 17) & 0xF
	if v == 0 {
		return NoPieceType
	}
	return Piece(v - 1)
}

// IsCapture returns true if this move captures a piece.
func (m Move) IsCapture() bool {
	return (m>>17)&0xF != 0
}

// String returns the long notation: "Wd4-e4", "Fc3xwa1", "D@f5".
func (m Move) String() string {
	if m == NoMove {
		return "----"
	}
	cp := m.ColoredPiece()
	if m.IsDrop() {
		return cp.String() + "@" + m.To().String()
	}
	s := cp.String() + m.From().String()
	if victim := m.Captured(); victim != NoPieceType {
		s += "x" + NewColoredPiece(victim, cp.Color().Other()).String()
	} else {
		s += "-"
	}
	return s + m.To().String()
}

// Short returns the wire notation: "d4e4" for a jump or capture, "Df5" for
// a drop.
func (m Move) Short() string {
	if m.IsDrop() {
		return m.ColoredPiece().String() + m.To().String()
	}
	return m.From().String() + m.To().String()
}

// SetupMove places a side's 16 starting pieces in its setup zone.
// Pieces[i] goes on the i-th square of the mover's scan: Red fills a1..b8
// in square order, Blue fills h8..g1, the 180-degree image.
type SetupMove struct {
	Color  Color
	Pieces [16]Piece
}

// SetupSquare returns the board square of the i-th setup slot for a color.
func SetupSquare(c Color, i int) Square {
	if c == Red {
		return Square(i)
	}
	return Square(63 - i)
}

// String returns the 16-letter wire string in the mover's scan order.
func (sm SetupMove) String() string {
	var b [16]byte
	for i, p := range sm.Pieces {
		b[i] = NewColoredPiece(p, sm.Color).Char()
	}
	return string(b[:])
}

// Validate checks that the setup contains exactly the initial piece multiset.
func (sm SetupMove) Validate() error {
	var counts [NumPieces]int
	for _, p := range sm.Pieces {
		if p >= NoPieceType {
			return errors.New("setup move with invalid piece")
		}
		counts[p]++
	}
	for p := Alfil; p < NoPieceType; p++ {
		if counts[p] != p.InitialCount() {
			return errors.Errorf("setup move has %d %v, want %d", counts[p], p, p.InitialCount())
		}
	}
	return nil
}

// ParseSetupMove parses a 16-letter setup string of a single color.
func ParseSetupMove(s string) (SetupMove, error) {
	if len(s) != 16 {
		return SetupMove{}, errors.Errorf("setup move %q: want 16 letters", s)
	}
	var sm SetupMove
	for i := 0; i < 16; i++ {
		cp := ColoredPieceFromChar(s[i])
		if cp == NoPiece {
			return SetupMove{}, errors.Errorf("setup move %q: bad piece letter %q", s, s[i])
		}
		if i == 0 {
			sm.Color = cp.Color()
		} else if cp.Color() != sm.Color {
			return SetupMove{}, errors.Errorf("setup move %q: mixed colors", s)
		}
		sm.Pieces[i] = cp.Piece()
	}
	if err := sm.Validate(); err != nil {
		return SetupMove{}, err
	}
	return sm, nil
}

// MoveList is a fixed-size list of moves to avoid allocations.
type MoveList struct {
	moves [256]Move
	count int
}

// Add adds a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Contains returns true if the list contains the move.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Clear clears the list.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Slice returns the moves as a slice backed by the list.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}
