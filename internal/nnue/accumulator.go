package nnue

import "github.com/tczajka/wazir-drop/internal/board"

// Accumulator caches the first-layer sums of the active features, one
// vector per perspective color.
type Accumulator struct {
	values [2][EmbeddingSize]int16
}

// maxStack bounds the accumulator stack; it mirrors the search depth.
const maxStack = 160

// State is the evaluator state threaded through the search: the network
// plus an accumulator stack coupled to make/unmake.
type State struct {
	net   *Network
	stack [maxStack]Accumulator
	top   int

	scratch []int
}

// NewState creates evaluator state over loaded weights.
func NewState(net *Network) *State {
	return &State{net: net, scratch: make([]int, 0, 64)}
}

// Reset refreshes both perspectives from scratch for a new search root.
func (s *State) Reset(pos *board.Position) {
	s.top = 0
	s.refresh(pos, board.Red)
	s.refresh(pos, board.Blue)
}

func (s *State) refresh(pos *board.Position, c board.Color) {
	acc := &s.stack[s.top].values[c]
	for i := range acc {
		acc[i] = 0
	}
	if pos.WazirCaptured(c) {
		// Terminal positions are mate-scored by the search, never
		// evaluated; leave the vector zeroed.
		return
	}
	s.scratch = appendActiveFeatures(s.scratch[:0], pos, c)
	for _, f := range s.scratch {
		SIMDAddInt16(acc[:], s.net.rowsWide[f][:])
	}
}

// Push records a new frame for a regular move already made on pos:
// lazy-copy plus at most four feature deltas per perspective, or a full
// rebuild of a perspective whose wazir moved.
func (s *State) Push(pos *board.Position, m board.Move) {
	s.stack[s.top+1] = s.stack[s.top]
	s.top++
	for c := board.Red; c <= board.Blue; c++ {
		added, removed, nAdd, nRem, ok := featureDelta(pos, c, m)
		if !ok {
			s.refresh(pos, c)
			continue
		}
		acc := &s.stack[s.top].values[c]
		for i := 0; i < nRem; i++ {
			SIMDSubInt16(acc[:], s.net.rowsWide[removed[i]][:])
		}
		for i := 0; i < nAdd; i++ {
			SIMDAddInt16(acc[:], s.net.rowsWide[added[i]][:])
		}
	}
}

// PushNull records a frame for a null move: no features change.
func (s *State) PushNull() {
	s.stack[s.top+1] = s.stack[s.top]
	s.top++
}

// Pop discards the top frame.
func (s *State) Pop() {
	s.top--
}

// Evaluate runs inference from the side to move's perspective.
func (s *State) Evaluate(pos *board.Position) int {
	return s.net.Forward(&s.stack[s.top], pos.SideToMove())
}

// Current returns the top accumulator, for the equivalence tests.
func (s *State) Current() *Accumulator {
	return &s.stack[s.top]
}
