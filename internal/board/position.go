package board

import (
	"strings"

	"github.com/pkg/errors"
)

// Stage is the discrete phase of the game.
type Stage uint8

const (
	// StageRedSetup: Red is to place its 16 pieces.
	StageRedSetup Stage = iota
	// StageBlueSetup: Blue is to place its 16 pieces.
	StageBlueSetup
	// StagePlay: regular alternating moves.
	StagePlay
	// StageRedPseudo / StageBluePseudo: the named side is checkmated and
	// plays out the forced tail under pseudomove rules (wazir moves only,
	// moving into check allowed). No move sets these values: the stage
	// stays StagePlay, and the move generator plays the tail dynamically
	// whenever the side to move has no legal move.
	StageRedPseudo
	StageBluePseudo
	// StageOver: a wazir has been captured, or the move horizon was reached.
	StageOver
)

// NumStages is the number of stage values.
const NumStages = 6

// MaxGamePly is the total number of moves in a game, counting both setup
// moves. Reaching it with both wazirs on board is a draw.
const MaxGamePly = 102

// Position represents a complete game state.
type Position struct {
	// Redundant board views, kept in sync by make/unmake.
	squares [64]ColoredPiece
	byColor [2]Bitboard
	byPiece [NumColoredPieces]Bitboard
	empty   Bitboard

	// Captured piece counts per capturing color.
	captured [2][NumPieces]uint8

	// Cached wazir squares (NoSquare once captured).
	wazir [2]Square

	hash  uint64
	ply   uint16
	stage Stage

	// Consecutive null moves made below the current real move.
	nullMoves uint8
}

// NewPosition creates the empty pre-setup position with Red to place.
func NewPosition() *Position {
	p := &Position{stage: StageRedSetup}
	for sq := A1; sq < NoSquare; sq++ {
		p.squares[sq] = NoPiece
	}
	p.empty = UniverseBB
	p.wazir[Red] = NoSquare
	p.wazir[Blue] = NoSquare
	p.hash = ZobristStage(StageRedSetup)
	return p
}

// SideToMove returns the color to move, derived from ply parity.
func (p *Position) SideToMove() Color {
	return Color(p.ply & 1)
}

// Ply returns the number of moves played, counting setup moves.
func (p *Position) Ply() int {
	return int(p.ply)
}

// Stage returns the current game stage.
func (p *Position) Stage() Stage {
	return p.stage
}

// Hash returns the incrementally maintained Zobrist hash.
func (p *Position) Hash() uint64 {
	return p.hash
}

// PieceAt returns the piece at the given square, or NoPiece if empty.
func (p *Position) PieceAt(sq Square) ColoredPiece {
	return p.squares[sq]
}

// OccupiedBy returns the occupancy of a color.
func (p *Position) OccupiedBy(c Color) Bitboard {
	return p.byColor[c]
}

// PieceBB returns the bitboard of a colored piece.
func (p *Position) PieceBB(cp ColoredPiece) Bitboard {
	return p.byPiece[cp]
}

// EmptySquares returns the bitboard of empty squares.
func (p *Position) EmptySquares() Bitboard {
	return p.empty
}

// NumCaptured returns how many pieces of the given type the color holds.
func (p *Position) NumCaptured(c Color, piece Piece) int {
	return int(p.captured[c][piece])
}

// WazirSquare returns the square of a color's wazir, NoSquare if captured.
func (p *Position) WazirSquare(c Color) Square {
	return p.wazir[c]
}

// WazirCaptured returns true if the color's wazir is off the board.
func (p *Position) WazirCaptured(c Color) bool {
	return p.wazir[c] == NoSquare
}

// NullMoveCount returns the number of consecutive null moves made.
func (p *Position) NullMoveCount() int {
	return int(p.nullMoves)
}

func (p *Position) placePiece(cp ColoredPiece, sq Square) {
	bb := SquareBB(sq)
	p.squares[sq] = cp
	p.byColor[cp.Color()] |= bb
	p.byPiece[cp] |= bb
	p.empty &^= bb
	p.hash ^= ZobristPiece(cp, sq)
	if cp.Piece() == Wazir {
		p.wazir[cp.Color()] = sq
	}
}

func (p *Position) liftPiece(cp ColoredPiece, sq Square) {
	bb := SquareBB(sq)
	p.squares[sq] = NoPiece
	p.byColor[cp.Color()] &^= bb
	p.byPiece[cp] &^= bb
	p.empty |= bb
	p.hash ^= ZobristPiece(cp, sq)
	if cp.Piece() == Wazir {
		p.wazir[cp.Color()] = NoSquare
	}
}

func (p *Position) addCaptured(c Color, piece Piece) {
	cp := NewColoredPiece(piece, c)
	p.hash ^= ZobristCaptured(cp, int(p.captured[c][piece]))
	p.captured[c][piece]++
}

func (p *Position) removeCaptured(c Color, piece Piece) {
	p.captured[c][piece]--
	cp := NewColoredPiece(piece, c)
	p.hash ^= ZobristCaptured(cp, int(p.captured[c][piece]))
}

func (p *Position) setStage(st Stage) {
	p.hash ^= ZobristStage(p.stage) ^ ZobristStage(st)
	p.stage = st
}

func (p *Position) bumpPly() {
	p.ply++
	p.hash ^= ZobristSide()
}

// Undo stores the state needed to reverse a move. The move itself is
// passed back to Unmake.
type Undo struct {
	hash      uint64
	stage     Stage
	nullMoves uint8
}

func (p *Position) snapshot() Undo {
	return Undo{hash: p.hash, stage: p.stage, nullMoves: p.nullMoves}
}

// Make applies a regular move. It is infallible on generator output;
// callers replaying external moves must validate first (see ParseShortMove).
func (p *Position) Make(m Move) Undo {
	undo := p.snapshot()
	me := p.SideToMove()
	cp := m.ColoredPiece()
	to := m.To()

	if m.IsDrop() {
		p.removeCaptured(me, cp.Piece())
	} else {
		p.liftPiece(cp, m.From())
	}
	if victim := m.Captured(); victim != NoPieceType {
		p.liftPiece(NewColoredPiece(victim, me.Other()), to)
		p.addCaptured(me, victim)
		if victim == Wazir {
			p.setStage(StageOver)
		}
	}
	p.placePiece(cp, to)
	p.bumpPly()
	p.nullMoves = 0
	if p.ply >= MaxGamePly && p.stage != StageOver {
		p.setStage(StageOver)
	}
	return undo
}

// Unmake reverses a regular move made with Make.
func (p *Position) Unmake(m Move, undo Undo) {
	me := p.SideToMove().Other() // the mover
	cp := m.ColoredPiece()
	to := m.To()

	p.ply--
	p.liftPiece(cp, to)
	if victim := m.Captured(); victim != NoPieceType {
		p.removeCaptured(me, victim)
		p.placePiece(NewColoredPiece(victim, me.Other()), to)
	}
	if m.IsDrop() {
		p.addCaptured(me, cp.Piece())
	} else {
		p.placePiece(cp, m.From())
	}
	p.stage = undo.stage
	p.nullMoves = undo.nullMoves
	p.hash = undo.hash
}

// MakeSetup applies a setup move and advances the stage machine.
func (p *Position) MakeSetup(sm SetupMove) Undo {
	undo := p.snapshot()
	for i, piece := range sm.Pieces {
		p.placePiece(NewColoredPiece(piece, sm.Color), SetupSquare(sm.Color, i))
	}
	p.bumpPly()
	if p.ply == 2 {
		p.setStage(StagePlay)
	} else {
		p.setStage(StageBlueSetup)
	}
	return undo
}

// UnmakeSetup reverses a setup move.
func (p *Position) UnmakeSetup(sm SetupMove, undo Undo) {
	p.ply--
	for i := range sm.Pieces {
		p.liftPiece(NewColoredPiece(sm.Pieces[i], sm.Color), SetupSquare(sm.Color, i))
	}
	p.stage = undo.stage
	p.nullMoves = undo.nullMoves
	p.hash = undo.hash
}

// MakeNull passes the turn without moving, for null-move pruning.
func (p *Position) MakeNull() Undo {
	undo := p.snapshot()
	p.bumpPly()
	p.nullMoves++
	return undo
}

// UnmakeNull reverses a null move.
func (p *Position) UnmakeNull(undo Undo) {
	p.ply--
	p.stage = undo.stage
	p.nullMoves = undo.nullMoves
	p.hash = undo.hash
}

// AttackersOf returns the pieces of color c attacking square sq.
// Leaper reach is symmetric, so the attack set is a pure table lookup.
func (p *Position) AttackersOf(sq Square, c Color) Bitboard {
	var bb Bitboard
	for piece := Alfil; piece < NoPieceType; piece++ {
		bb |= reach1[piece][sq] & p.byPiece[NewColoredPiece(piece, c)]
	}
	return bb
}

// InCheck returns true if the color's wazir is attacked by the enemy.
func (p *Position) InCheck(c Color) bool {
	w := p.wazir[c]
	if w == NoSquare {
		return false
	}
	return !p.AttackersOf(w, c.Other()).Empty()
}

// LegalDropMask returns the squares where the side may drop a piece.
func (p *Position) LegalDropMask() Bitboard {
	return p.empty
}

// ComputeHash recomputes the Zobrist hash from scratch. Used only by the
// debug invariant checks and tests; play uses the incremental hash.
func (p *Position) ComputeHash() uint64 {
	var h uint64
	for sq := A1; sq < NoSquare; sq++ {
		if cp := p.squares[sq]; cp != NoPiece {
			h ^= ZobristPiece(cp, sq)
		}
	}
	for c := Red; c <= Blue; c++ {
		for piece := Alfil; piece < NoPieceType; piece++ {
			cp := NewColoredPiece(piece, c)
			for level := 0; level < int(p.captured[c][piece]); level++ {
				h ^= ZobristCaptured(cp, level)
			}
		}
	}
	if p.ply&1 == 1 {
		h ^= ZobristSide()
	}
	h ^= ZobristStage(p.stage)
	return h
}

// Validate checks the piece-inventory and bitboard invariants.
// It is cheap enough for tests and debug builds only.
func (p *Position) Validate() error {
	var occ [2]Bitboard
	for cp := RedAlfil; cp < NoPiece; cp++ {
		occ[cp.Color()] |= p.byPiece[cp]
	}
	if occ[Red] != p.byColor[Red] || occ[Blue] != p.byColor[Blue] {
		return errors.New("color occupancy disagrees with piece bitboards")
	}
	if occ[Red]&occ[Blue] != 0 {
		return errors.New("overlapping color occupancy")
	}
	if p.empty != ^(occ[Red] | occ[Blue]) {
		return errors.New("empty mask disagrees with occupancy")
	}
	for sq := A1; sq < NoSquare; sq++ {
		cp := p.squares[sq]
		if cp == NoPiece {
			if !p.empty.IsSet(sq) {
				return errors.Errorf("square %v occupied in bitboards but empty in square map", sq)
			}
			continue
		}
		if !p.byPiece[cp].IsSet(sq) {
			return errors.Errorf("square %v: %v missing from piece bitboard", sq, cp)
		}
	}
	if p.stage >= StagePlay {
		for piece := Alfil; piece < NoPieceType; piece++ {
			total := 0
			for c := Red; c <= Blue; c++ {
				total += p.byPiece[NewColoredPiece(piece, c)].PopCount()
				total += int(p.captured[c][piece])
			}
			if total != piece.TotalCount() {
				return errors.Errorf("inventory of %v is %d, want %d", piece, total, piece.TotalCount())
			}
		}
	}
	if got := p.ComputeHash(); got != p.hash {
		return errors.Errorf("incremental hash %016x != recomputed %016x", p.hash, got)
	}
	return nil
}

// ParseShortMove resolves wire notation ("d4e4", "Df5") against the
// position into a full Move. It rejects moves that are not pseudolegal.
func (p *Position) ParseShortMove(s string) (Move, error) {
	if p.stage != StagePlay {
		return NoMove, errors.Errorf("move %q outside play stage", s)
	}
	me := p.SideToMove()
	if len(s) != 3 && len(s) != 4 {
		return NoMove, errors.Errorf("invalid move %q", s)
	}

	to, err := ParseSquare(s[len(s)-2:])
	if err != nil {
		return NoMove, errors.Wrapf(err, "move %q", s)
	}

	if len(s) == 3 {
		cp := ColoredPieceFromChar(s[0])
		if cp == NoPiece || cp.Color() != me {
			return NoMove, errors.Errorf("drop %q: bad piece letter", s)
		}
		if p.NumCaptured(me, cp.Piece()) == 0 {
			return NoMove, errors.Errorf("drop %q: no %v in hand", s, cp.Piece())
		}
		if !p.empty.IsSet(to) {
			return NoMove, errors.Errorf("drop %q: square occupied", s)
		}
		return NewDrop(cp, to), nil
	}

	from, err := ParseSquare(s[:2])
	if err != nil {
		return NoMove, errors.Wrapf(err, "move %q", s)
	}
	cp := p.squares[from]
	if cp == NoPiece || cp.Color() != me {
		return NoMove, errors.Errorf("move %q: no own piece on %v", s, from)
	}
	if !reach1[cp.Piece()][from].IsSet(to) {
		return NoMove, errors.Errorf("move %q: not a %v leap", s, cp.Piece())
	}
	switch victim := p.squares[to]; {
	case victim == NoPiece:
		return NewJump(cp, from, to), nil
	case victim.Color() == me:
		return NoMove, errors.Errorf("move %q: destination holds own piece", s)
	default:
		return NewCapture(cp, from, to, victim.Piece()), nil
	}
}

// String returns a diagram of the position, rank 8 first.
func (p *Position) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		for file := 0; file < 8; file++ {
			sb.WriteByte(p.squares[NewSquare(file, rank)].Char())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
