// Package book holds the opening data: the engine's canonical Red setup
// and precomputed Blue responses keyed by canonicalized Red setups.
// The tables are produced offline by self-play; only the final picks are
// embedded here.
package book

import "github.com/tczajka/wazir-drop/internal/board"

// redSetup is the top setup for Red: wazir tucked on a7 behind the alfil
// wall, knight anchoring b1.
const redSetup = "AAAAAAWANDDDDFFA"

// responses maps a canonicalized Red setup to Blue's reply.
// The reply is stored relative to the canonical orientation and reflected
// back to match the setup actually seen.
var responses = map[string]string{
	// Mirroring the main line keeps the position symmetric.
	"AAAAAAWANDDDDFFA": "AAAAAAWANDDDDFFA",
	"AAAAAWAANDDDDFFA": "AAAAAAWANDDDDFFA",
	"AAAAAAAWNDDDDFFA": "AAAAAAWANDDDDFFA",
	"AAAAAAWADDDDNFFA": "AAAAAAWANDDDDFFA",
}

// candidates are the setups tried when Red is off-book; the façade picks
// the one whose resulting position evaluates best.
var candidates = []string{
	"AAAAAAWANDDDDFFA",
	"AAAAAWAANDDDDFFA",
	"AAAAAAWAFDDDDNFA",
	"AAAAAAWADDNDDFFA",
}

// Book implements the engine's opening oracle.
type Book struct{}

// New returns the embedded book.
func New() *Book {
	return &Book{}
}

// RedSetup returns the single best canonical Red setup.
func (b *Book) RedSetup() board.SetupMove {
	return parseRed(redSetup)
}

// BlueResponse returns the precomputed reply to Red's setup, reflected to
// match Red's actual orientation. ok is false when Red is off-book.
func (b *Book) BlueResponse(red board.SetupMove) (board.SetupMove, bool) {
	canonical, flipped := canonicalize(red.Pieces)
	reply, ok := responses[key(canonical)]
	if !ok {
		return board.SetupMove{}, false
	}
	sm := parseColored(reply, board.Blue)
	if flipped {
		sm.Pieces = flipRanks(sm.Pieces)
	}
	return sm, true
}

// BlueCandidates returns the off-book candidate setups for Blue.
func (b *Book) BlueCandidates() []board.SetupMove {
	out := make([]board.SetupMove, len(candidates))
	for i, s := range candidates {
		out[i] = parseColored(s, board.Blue)
	}
	return out
}

// canonicalize reduces a setup under the rank reflection, the only
// symmetry preserving a setup zone. Returns the canonical piece order and
// whether reflection was applied.
func canonicalize(pieces [16]board.Piece) ([16]board.Piece, bool) {
	mirrored := flipRanks(pieces)
	if key(mirrored) < key(pieces) {
		return mirrored, true
	}
	return pieces, false
}

// flipRanks reflects a setup across the middle of the board: within each
// file block of eight slots, the rank order reverses.
func flipRanks(pieces [16]board.Piece) [16]board.Piece {
	var out [16]board.Piece
	for i, p := range pieces {
		out[(i&8)|(7-(i&7))] = p
	}
	return out
}

func key(pieces [16]board.Piece) string {
	var b [16]byte
	for i, p := range pieces {
		b[i] = board.NewColoredPiece(p, board.Red).Char()
	}
	return string(b[:])
}

func parseRed(s string) board.SetupMove {
	return parseColored(s, board.Red)
}

// parseColored reads an uppercase setup string as the given color.
func parseColored(s string, c board.Color) board.SetupMove {
	sm := board.SetupMove{Color: c}
	for i := 0; i < 16; i++ {
		sm.Pieces[i] = board.ColoredPieceFromChar(s[i]).Piece()
	}
	return sm
}
