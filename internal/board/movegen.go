package board

// Consumer receives generated moves one at a time.
// Returning false stops generation (beta cutoff).
type Consumer func(Move) bool

// GenerateMoves emits the legal moves of the side to move, ordered in the
// buckets the search wants them in:
//
//	not in check: TT move, captures, killers, drop-checks, drop
//	escape-attacks, jump-checks, jump escape-attacks, quiet jumps,
//	quiet drops;
//	in check: captures of the checker, then wazir captures, then quiet
//	wazir moves (leapers cannot be blocked, so there are no other
//	evasions).
//
// ttMove and killers are emitted in their buckets after a legality check
// and skipped when the later buckets regenerate them. If the side to move
// has no legal move at all it is checkmated (or, degenerately, stalemated)
// and the generator switches to the pseudomove tail: every wazir move,
// including moves into check.
//
// Returns false if the consumer stopped generation early.
func (p *Position) GenerateMoves(ttMove Move, killers [2]Move, emit Consumer) bool {
	g := moveGen{pos: p, emit: emit}
	me := p.SideToMove()

	if p.InCheck(me) {
		g.evasions(me)
	} else {
		if p.isViable(ttMove) {
			g.try(ttMove)
		}
		g.skip[0] = ttMove
		g.captures(me)
		for i, k := range killers {
			if k != ttMove && !k.IsCapture() && p.isViable(k) {
				g.try(k)
				g.skip[1+i] = k
			}
		}
		g.dropChecks(me)
		g.dropEscapeAttacks(me)
		g.jumpChecks(me)
		g.jumpEscapeAttacks(me)
		g.quietJumps(me)
		g.quietDrops(me)
	}

	if g.emitted == 0 && !g.stopped {
		g.pseudomoves(me)
	}
	return !g.stopped
}

// GenerateCaptures emits only capturing moves, for the quiescence search.
// The caller must not be in check.
func (p *Position) GenerateCaptures(emit Consumer) bool {
	g := moveGen{pos: p, emit: emit}
	g.captures(p.SideToMove())
	return !g.stopped
}

// LegalMoves collects the full generated move set into a list.
func (p *Position) LegalMoves() *MoveList {
	ml := &MoveList{}
	p.GenerateMoves(NoMove, [2]Move{}, func(m Move) bool {
		ml.Add(m)
		return true
	})
	return ml
}

// isViable reports whether a TT or killer move replayed from another node
// is still pseudolegal here and does not move the wazir into attack.
func (p *Position) isViable(m Move) bool {
	if m == NoMove {
		return false
	}
	cp := m.ColoredPiece()
	me := p.SideToMove()
	if cp.Color() != me {
		return false
	}
	to := m.To()

	if m.IsDrop() {
		if cp.Piece() == Wazir || m.IsCapture() {
			return false
		}
		return p.captured[me][cp.Piece()] > 0 && p.empty.IsSet(to)
	}

	from := m.From()
	if !from.IsValid() || p.squares[from] != cp || !reach1[cp.Piece()][from].IsSet(to) {
		return false
	}
	victim := m.Captured()
	if victim == NoPieceType {
		if !p.empty.IsSet(to) {
			return false
		}
	} else if p.squares[to] != NewColoredPiece(victim, me.Other()) {
		return false
	}
	if cp.Piece() == Wazir && victim != Wazir && !p.AttackersOf(to, me.Other()).Empty() {
		return false
	}
	return true
}

// moveGen is the staged generator state: restartable, allocation-free.
type moveGen struct {
	pos     *Position
	emit    Consumer
	skip    [3]Move // TT move and killers already emitted
	emitted int
	stopped bool
}

func (g *moveGen) try(m Move) {
	if g.stopped {
		return
	}
	g.emitted++
	if !g.emit(m) {
		g.stopped = true
	}
}

func (g *moveGen) trySkipping(m Move) {
	if m == g.skip[0] || m == g.skip[1] || m == g.skip[2] {
		return
	}
	g.try(m)
}

// captures emits every capture: for each enemy piece, each own attacker
// takes it. Order within the bucket is plain board-scan order.
func (g *moveGen) captures(me Color) {
	p := g.pos
	opp := me.Other()
	for targets := p.byColor[opp]; targets != 0 && !g.stopped; {
		to := targets.PopLSB()
		victim := p.squares[to].Piece()
		for attackers := p.AttackersOf(to, me); attackers != 0 && !g.stopped; {
			from := attackers.PopLSB()
			cp := p.squares[from]
			// Taking the enemy wazir ends the game at once, so it is
			// exempt from the own-wazir safety filter.
			if cp.Piece() == Wazir && victim != Wazir && !p.AttackersOf(to, opp).Empty() {
				continue
			}
			g.trySkipping(NewCapture(cp, from, to, victim))
		}
	}
}

// dropChecks emits drops that attack the enemy wazir.
func (g *moveGen) dropChecks(me Color) {
	p := g.pos
	ew := p.wazir[me.Other()]
	if ew == NoSquare {
		return
	}
	for piece := Alfil; piece < Wazir && !g.stopped; piece++ {
		if p.captured[me][piece] == 0 {
			continue
		}
		cp := NewColoredPiece(piece, me)
		for dests := reach1[piece][ew] & p.empty; dests != 0 && !g.stopped; {
			g.trySkipping(NewDrop(cp, dests.PopLSB()))
		}
	}
}

// dropEscapeAttacks emits drops that attack a flight square of the enemy
// wazir, excluding the drop-checks already emitted.
func (g *moveGen) dropEscapeAttacks(me Color) {
	p := g.pos
	ew := p.wazir[me.Other()]
	if ew == NoSquare {
		return
	}
	for piece := Alfil; piece < Wazir && !g.stopped; piece++ {
		if p.captured[me][piece] == 0 {
			continue
		}
		cp := NewColoredPiece(piece, me)
		dests := escDest[piece][ew] & p.empty &^ reach1[piece][ew]
		for dests != 0 && !g.stopped {
			g.trySkipping(NewDrop(cp, dests.PopLSB()))
		}
	}
}

// jumpChecks emits quiet jumps to squares that attack the enemy wazir.
func (g *moveGen) jumpChecks(me Color) {
	p := g.pos
	opp := me.Other()
	ew := p.wazir[opp]
	if ew == NoSquare {
		return
	}
	for piece := Alfil; piece < NoPieceType && !g.stopped; piece++ {
		cp := NewColoredPiece(piece, me)
		for froms := p.byPiece[cp] & reach2[piece][ew]; froms != 0 && !g.stopped; {
			from := froms.PopLSB()
			dests := reach1[piece][from] & reach1[piece][ew] & p.empty
			for dests != 0 && !g.stopped {
				to := dests.PopLSB()
				if piece == Wazir && !p.AttackersOf(to, opp).Empty() {
					continue
				}
				g.trySkipping(NewJump(cp, from, to))
			}
		}
	}
}

// jumpEscapeAttacks emits quiet jumps to squares that attack a flight
// square of the enemy wazir, excluding the jump-checks already emitted.
func (g *moveGen) jumpEscapeAttacks(me Color) {
	p := g.pos
	opp := me.Other()
	ew := p.wazir[opp]
	if ew == NoSquare {
		return
	}
	for piece := Alfil; piece < NoPieceType && !g.stopped; piece++ {
		cp := NewColoredPiece(piece, me)
		for froms := p.byPiece[cp] & escSrc[piece][ew]; froms != 0 && !g.stopped; {
			from := froms.PopLSB()
			dests := reach1[piece][from] & escDest[piece][ew] & p.empty &^ reach1[piece][ew]
			for dests != 0 && !g.stopped {
				to := dests.PopLSB()
				if piece == Wazir && !p.AttackersOf(to, opp).Empty() {
					continue
				}
				g.trySkipping(NewJump(cp, from, to))
			}
		}
	}
}

// quietJumps emits the remaining jumps to empty squares.
func (g *moveGen) quietJumps(me Color) {
	p := g.pos
	opp := me.Other()
	ew := p.wazir[opp]
	for piece := Alfil; piece < NoPieceType && !g.stopped; piece++ {
		cp := NewColoredPiece(piece, me)
		for froms := p.byPiece[cp]; froms != 0 && !g.stopped; {
			from := froms.PopLSB()
			dests := reach1[piece][from] & p.empty
			if ew != NoSquare {
				dests &^= reach1[piece][ew] | escDest[piece][ew]
			}
			for dests != 0 && !g.stopped {
				to := dests.PopLSB()
				if piece == Wazir && !p.AttackersOf(to, opp).Empty() {
					continue
				}
				g.trySkipping(NewJump(cp, from, to))
			}
		}
	}
}

// quietDrops emits the remaining drops. Within the bucket, drops two leaps
// from the enemy wazir come first and three leaps second: they threaten
// checks soonest.
func (g *moveGen) quietDrops(me Color) {
	p := g.pos
	ew := p.wazir[me.Other()]
	for piece := Alfil; piece < Wazir && !g.stopped; piece++ {
		if p.captured[me][piece] == 0 {
			continue
		}
		cp := NewColoredPiece(piece, me)
		dests := p.empty
		if ew != NoSquare {
			dests &^= reach1[piece][ew] | escDest[piece][ew]
		}
		waves := [3]Bitboard{dests, dests, dests}
		if ew != NoSquare {
			waves[0] &= reach2[piece][ew]
			waves[1] &= reach3[piece][ew] &^ reach2[piece][ew]
			waves[2] &^= reach2[piece][ew] | reach3[piece][ew]
		} else {
			waves[0], waves[1] = 0, 0
		}
		for _, wave := range waves {
			for wave != 0 && !g.stopped {
				g.trySkipping(NewDrop(cp, wave.PopLSB()))
			}
		}
	}
}

// evasions emits the legal responses to check: captures of the checker,
// captures of the enemy wazir (which win on the spot whatever happens to
// our own), then wazir captures, then quiet wazir moves. At most one
// piece can give check (leapers cannot discover check) outside the
// pseudomove tail, so the checker is normally unique.
func (g *moveGen) evasions(me Color) {
	p := g.pos
	opp := me.Other()
	w := p.wazir[me]
	checkers := p.AttackersOf(w, opp)
	csq := checkers.LSB()

	// Captures of the checking piece. Double check (possible only after a
	// pseudomove into attack) leaves the wazir moves as the sole evasions.
	if checkers.PopCount() == 1 {
		victim := p.squares[csq].Piece()
		for attackers := p.AttackersOf(csq, me); attackers != 0 && !g.stopped; {
			from := attackers.PopLSB()
			cp := p.squares[from]
			if cp.Piece() == Wazir && victim != Wazir && !p.AttackersOf(csq, opp).Empty() {
				continue
			}
			g.try(NewCapture(cp, from, csq, victim))
		}
	}

	// Capturing the enemy wazir ends the game before the check matters.
	if ew := p.wazir[opp]; ew != NoSquare && ew != csq {
		for attackers := p.AttackersOf(ew, me); attackers != 0 && !g.stopped; {
			from := attackers.PopLSB()
			g.try(NewCapture(p.squares[from], from, ew, Wazir))
		}
	}

	// Wazir captures of other enemy pieces.
	wcp := NewColoredPiece(Wazir, me)
	others := reach1[Wazir][w] & p.byColor[opp] &^ SquareBB(csq)
	if ew := p.wazir[opp]; ew != NoSquare {
		others = others.Clear(ew)
	}
	for dests := others; dests != 0 && !g.stopped; {
		to := dests.PopLSB()
		if !p.AttackersOf(to, opp).Empty() {
			continue
		}
		g.try(NewCapture(wcp, w, to, p.squares[to].Piece()))
	}

	// Quiet wazir moves.
	for dests := reach1[Wazir][w] & p.empty; dests != 0 && !g.stopped; {
		to := dests.PopLSB()
		if !p.AttackersOf(to, opp).Empty() {
			continue
		}
		g.try(NewJump(wcp, w, to))
	}
}

// pseudomoves plays out the forced tail of a decided game: the checkmated
// side's wazir moves anywhere it can leap, into check or not. If even the
// wazir is boxed in, any pseudolegal move is emitted so the engine always
// has a reply for the judge.
func (g *moveGen) pseudomoves(me Color) {
	p := g.pos
	opp := me.Other()
	w := p.wazir[me]
	if w == NoSquare {
		return
	}
	wcp := NewColoredPiece(Wazir, me)
	for dests := reach1[Wazir][w] & p.byColor[opp]; dests != 0 && !g.stopped; {
		to := dests.PopLSB()
		g.try(NewCapture(wcp, w, to, p.squares[to].Piece()))
	}
	for dests := reach1[Wazir][w] & p.empty; dests != 0 && !g.stopped; {
		g.try(NewJump(wcp, w, dests.PopLSB()))
	}
	if g.emitted > 0 {
		return
	}

	// Wazir completely boxed in: fall back to any pseudolegal move.
	for piece := Alfil; piece < NoPieceType && !g.stopped; piece++ {
		cp := NewColoredPiece(piece, me)
		for froms := p.byPiece[cp]; froms != 0 && !g.stopped; {
			from := froms.PopLSB()
			for dests := reach1[piece][from] & ^p.byColor[me]; dests != 0 && !g.stopped; {
				to := dests.PopLSB()
				if p.empty.IsSet(to) {
					g.try(NewJump(cp, from, to))
				} else {
					g.try(NewCapture(cp, from, to, p.squares[to].Piece()))
				}
			}
		}
	}
	for piece := Alfil; piece < Wazir && !g.stopped; piece++ {
		if p.captured[me][piece] == 0 {
			continue
		}
		cp := NewColoredPiece(piece, me)
		for dests := p.empty; dests != 0 && !g.stopped; {
			g.try(NewDrop(cp, dests.PopLSB()))
		}
	}
}
