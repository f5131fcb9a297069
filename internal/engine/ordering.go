package engine

import "github.com/tczajka/wazir-drop/internal/board"

// Killers stores, per ply, the last two quiet moves that caused a beta
// cutoff there. Capture cutoffs never enter: captures already sit in an
// early bucket.
type Killers struct {
	slots [MaxPly][2]board.Move
}

// Insert records a quiet cutoff move, FIFO within the ply.
func (k *Killers) Insert(ply int, m board.Move) {
	if k.slots[ply][0] == m {
		return
	}
	k.slots[ply][1] = k.slots[ply][0]
	k.slots[ply][0] = m
}

// Get returns the killer pair for a ply.
func (k *Killers) Get(ply int) [2]board.Move {
	return k.slots[ply]
}

// Clear wipes all slots before a new search.
func (k *Killers) Clear() {
	for i := range k.slots {
		k.slots[i][0] = board.NoMove
		k.slots[i][1] = board.NoMove
	}
}
