// Package nnue implements the quantized wazir-piece-square network that
// evaluates positions for the search: feature indexing over 10 canonical
// wazir buckets, incremental first-layer accumulators, and int8 inference
// with a SIMD accumulator path and a bit-identical scalar fallback.
package nnue

import "github.com/tczajka/wazir-drop/internal/board"

// Feature space per perspective: the board is reflected so the friendly
// wazir sits on one of the 10 canonical triangle squares, then
//
//	9 piece-type-color planes x 64 squares  (own wazir is the bucket)
//	2 x 30 captured-count slots             (wazirs hold no captured slot)
//
// per bucket.
const (
	EmbeddingSize = 128

	boardPlanes       = 2*board.NumPieces - 1 // own A,D,F,N + enemy A,D,F,N,W
	capturedPerSide   = 30
	capturedOffset    = boardPlanes * 64
	FeaturesPerBucket = capturedOffset + 2*capturedPerSide
	NumFeatures       = board.NumWazirBuckets * FeaturesPerBucket
)

// capturedBase[p] is the first captured slot of a piece type; a type with
// initial count n owns 2n consecutive slots.
var capturedBase = [board.NumPieces]int{}

func init() {
	sum := 0
	for p := board.Alfil; p < board.NoPieceType; p++ {
		capturedBase[p] = sum
		sum += p.TotalCount()
	}
}

// boardFeature indexes an on-board piece from one perspective.
// isOther is true for the enemy's pieces; sq must already be normalized.
func boardFeature(bucket int, isOther bool, piece board.Piece, sq board.Square) int {
	plane := int(piece)
	if isOther {
		plane += board.NumPieces - 1
	}
	return bucket*FeaturesPerBucket + plane*64 + int(sq)
}

// capturedFeature indexes the countIdx-th captured piece of a type held by
// the perspective side (isOther false) or its opponent (isOther true).
func capturedFeature(bucket int, isOther bool, piece board.Piece, countIdx int) int {
	idx := bucket*FeaturesPerBucket + capturedOffset + capturedBase[piece] + countIdx
	if isOther {
		idx += capturedPerSide
	}
	return idx
}

// appendActiveFeatures collects the active features of one perspective.
// Exactly the pieces of both sides, on board or captured, minus the
// perspective's own wazir (its square selects the bucket).
func appendActiveFeatures(dst []int, pos *board.Position, c board.Color) []int {
	w := pos.WazirSquare(c)
	sym, bucket := board.Normalize(w)

	for _, side := range [2]board.Color{c, c.Other()} {
		isOther := side != c
		for piece := board.Alfil; piece < board.NoPieceType; piece++ {
			if piece == board.Wazir && !isOther {
				continue
			}
			cp := board.NewColoredPiece(piece, side)
			for bb := pos.PieceBB(cp); !bb.Empty(); {
				sq := bb.PopLSB()
				dst = append(dst, boardFeature(bucket, isOther, piece, sym.Apply(sq)))
			}
			if piece != board.Wazir {
				for i := 0; i < pos.NumCaptured(side, piece); i++ {
					dst = append(dst, capturedFeature(bucket, isOther, piece, i))
				}
			}
		}
	}
	return dst
}

// featureDelta returns the features added and removed for the perspective
// of color c by a regular move already made on pos. ok is false when the
// perspective must be refreshed instead: its wazir moved (the bucket
// changed) or was captured.
func featureDelta(pos *board.Position, c board.Color, m board.Move) (added, removed [2]int, nAdd, nRem int, ok bool) {
	cp := m.ColoredPiece()
	mover := cp.Color()
	if cp == board.NewColoredPiece(board.Wazir, c) {
		return added, removed, 0, 0, false
	}
	if mover != c && m.Captured() == board.Wazir {
		return added, removed, 0, 0, false
	}

	sym, bucket := board.Normalize(pos.WazirSquare(c))
	isOpp := mover != c
	piece := cp.Piece()

	if m.IsDrop() {
		// The drop vacated the slot just above the remaining count.
		removed[nRem] = capturedFeature(bucket, isOpp, piece, pos.NumCaptured(mover, piece))
	} else {
		removed[nRem] = boardFeature(bucket, isOpp, piece, sym.Apply(m.From()))
	}
	nRem++
	added[nAdd] = boardFeature(bucket, isOpp, piece, sym.Apply(m.To()))
	nAdd++

	if victim := m.Captured(); victim != board.NoPieceType {
		removed[nRem] = boardFeature(bucket, !isOpp, victim, sym.Apply(m.To()))
		nRem++
		// A captured wazir ends the game and holds no captured slot.
		if victim != board.Wazir {
			added[nAdd] = capturedFeature(bucket, isOpp, victim, pos.NumCaptured(mover, victim)-1)
			nAdd++
		}
	}
	return added, removed, nAdd, nRem, true
}
