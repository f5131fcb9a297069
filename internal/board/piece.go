package board

// Color represents the color of a piece or player. Red moves first.
type Color uint8

const (
	Red Color = iota
	Blue
	NoColor Color = 2
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

// String returns the color name.
func (c Color) String() string {
	switch c {
	case Red:
		return "Red"
	case Blue:
		return "Blue"
	default:
		return "NoColor"
	}
}

// Piece represents one of the five leaper types.
type Piece uint8

const (
	Alfil Piece = iota
	Dabbaba
	Ferz
	Knight
	Wazir
	NoPieceType Piece = 5
)

// NumPieces is the number of piece types.
const NumPieces = 5

// InitialCount returns how many pieces of this type each side starts with.
func (p Piece) InitialCount() int {
	switch p {
	case Alfil:
		return 8
	case Dabbaba:
		return 4
	case Ferz:
		return 2
	case Knight, Wazir:
		return 1
	default:
		return 0
	}
}

// TotalCount returns the number of pieces of this type in the whole game.
// A side may capture up to this many: its own initial set plus the enemy's.
func (p Piece) TotalCount() int {
	return 2 * p.InitialCount()
}

// Leap offsets as (file, rank) displacements.
var leapOffsets = [NumPieces][][2]int{
	Alfil:   {{-2, -2}, {2, -2}, {-2, 2}, {2, 2}},
	Dabbaba: {{0, -2}, {-2, 0}, {2, 0}, {0, 2}},
	Ferz:    {{-1, -1}, {1, -1}, {-1, 1}, {1, 1}},
	Knight:  {{-1, -2}, {1, -2}, {-2, -1}, {2, -1}, {-2, 1}, {2, 1}, {-1, 2}, {1, 2}},
	Wazir:   {{0, -1}, {-1, 0}, {1, 0}, {0, 1}},
}

// String returns the piece type name.
func (p Piece) String() string {
	switch p {
	case Alfil:
		return "Alfil"
	case Dabbaba:
		return "Dabbaba"
	case Ferz:
		return "Ferz"
	case Knight:
		return "Knight"
	case Wazir:
		return "Wazir"
	default:
		return "None"
	}
}

// ColoredPiece combines Piece and Color into a single value.
// Encoded as pieceType*2 + color; the value 10 is the empty-square sentinel.
type ColoredPiece uint8

const (
	RedAlfil ColoredPiece = iota
	BlueAlfil
	RedDabbaba
	BlueDabbaba
	RedFerz
	BlueFerz
	RedKnight
	BlueKnight
	RedWazir
	BlueWazir
	NoPiece ColoredPiece = 10
)

// NumColoredPieces is the number of (color, piece) combinations.
const NumColoredPieces = 10

// NewColoredPiece creates a ColoredPiece from Piece and Color.
func NewColoredPiece(p Piece, c Color) ColoredPiece {
	if p >= NoPieceType || c >= NoColor {
		return NoPiece
	}
	return ColoredPiece(uint8(p)*2 + uint8(c))
}

// Piece returns the piece type.
func (cp ColoredPiece) Piece() Piece {
	if cp >= NoPiece {
		return NoPieceType
	}
	return Piece(cp / 2)
}

// Color returns the color.
func (cp ColoredPiece) Color() Color {
	if cp >= NoPiece {
		return NoColor
	}
	return Color(cp & 1)
}

// Char returns the wire letter for the piece: ADFNW for red, adfnw for blue.
func (cp ColoredPiece) Char() byte {
	if cp >= NoPiece {
		return '.'
	}
	chars := "AaDdFfNnWw"
	return chars[cp]
}

// String returns the wire letter as a string.
func (cp ColoredPiece) String() string {
	return string(cp.Char())
}

// ColoredPieceFromChar converts a wire letter to a ColoredPiece.
func ColoredPieceFromChar(b byte) ColoredPiece {
	switch b {
	case 'A':
		return RedAlfil
	case 'a':
		return BlueAlfil
	case 'D':
		return RedDabbaba
	case 'd':
		return BlueDabbaba
	case 'F':
		return RedFerz
	case 'f':
		return BlueFerz
	case 'N':
		return RedKnight
	case 'n':
		return BlueKnight
	case 'W':
		return RedWazir
	case 'w':
		return BlueWazir
	default:
		return NoPiece
	}
}
