package board

import (
	"strings"

	"github.com/pkg/errors"
)

// ParsePosition builds a play-stage position from its parts: the ply
// (side to move by parity), the captured pieces as a letter string
// colored by the holder (e.g. "Fd" = Red holds a ferz, Blue a dabbaba),
// and the board diagram as eight 8-character rows, rank 8 first, '.' for
// empty squares. The inverse of Position.String plus state; used by the
// analysis tooling and the tests.
func ParsePosition(ply int, captured string, diagram string) (*Position, error) {
	if ply < 2 || ply >= MaxGamePly {
		return nil, errors.Errorf("ply %d outside the play stage", ply)
	}
	p := NewPosition()
	p.stage = StagePlay
	p.ply = uint16(ply)

	for _, b := range []byte(captured) {
		cp := ColoredPieceFromChar(b)
		if cp == NoPiece {
			return nil, errors.Errorf("bad captured letter %q", b)
		}
		p.captured[cp.Color()][cp.Piece()]++
	}

	rows := strings.Fields(diagram)
	if len(rows) != 8 {
		return nil, errors.Errorf("diagram has %d rows, want 8", len(rows))
	}
	for i, row := range rows {
		if len(row) != 8 {
			return nil, errors.Errorf("diagram row %d has %d squares, want 8", i, len(row))
		}
		rank := 7 - i
		for file := 0; file < 8; file++ {
			if row[file] == '.' {
				continue
			}
			cp := ColoredPieceFromChar(row[file])
			if cp == NoPiece {
				return nil, errors.Errorf("bad piece letter %q", row[file])
			}
			p.placePiece(cp, NewSquare(file, rank))
		}
	}

	for c := Red; c <= Blue; c++ {
		if p.byPiece[NewColoredPiece(Wazir, c)].PopCount() != 1 {
			return nil, errors.Errorf("%v must have exactly one wazir on board", c)
		}
	}
	for piece := Alfil; piece < NoPieceType; piece++ {
		total := 0
		for c := Red; c <= Blue; c++ {
			total += p.byPiece[NewColoredPiece(piece, c)].PopCount()
			total += int(p.captured[c][piece])
		}
		if total != piece.TotalCount() {
			return nil, errors.Errorf("inventory of %v is %d, want %d", piece, total, piece.TotalCount())
		}
	}

	p.hash = p.ComputeHash()
	return p, nil
}
