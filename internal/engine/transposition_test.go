package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tczajka/wazir-drop/internal/board"
)

func TestTTStoreProbe(t *testing.T) {
	tt := NewTransTable(1)
	m := board.NewJump(board.RedFerz, board.C3, board.B2)

	hash := uint64(0x123456789ABCDEF0)
	tt.Store(hash, 5, 1234, BoundExact, m)

	entry, ok := tt.Probe(hash)
	require.True(t, ok)
	assert.Equal(t, m, entry.Move)
	assert.Equal(t, int32(1234), entry.Score)
	assert.Equal(t, int16(5), entry.Depth)
	assert.Equal(t, BoundExact, entry.Bound)

	_, ok = tt.Probe(hash ^ 0xFFFF00000000)
	assert.False(t, ok)
}

func TestTTSamePositionOverwrites(t *testing.T) {
	tt := NewTransTable(1)
	hash := uint64(0xDEADBEEF12345678)

	tt.Store(hash, 3, 100, BoundLower, board.NoMove)
	tt.Store(hash, 7, -50, BoundExact, board.NewDrop(board.BlueAlfil, board.E4))

	entry, ok := tt.Probe(hash)
	require.True(t, ok)
	assert.Equal(t, int16(7), entry.Depth)
	assert.Equal(t, int32(-50), entry.Score)
}

func TestTTReplacementPrefersShallowVictim(t *testing.T) {
	tt := NewTransTable(1)
	// Five positions hashing into one bucket: low 32 bits equal.
	low := uint64(0x42)
	mk := func(high uint64) uint64 { return high<<32 | low }

	for i := uint64(1); i <= 4; i++ {
		tt.Store(mk(i), int(10*i), int(i), BoundExact, board.NoMove)
	}
	// Bucket full; the depth-10 entry is the shallowest and must go.
	tt.Store(mk(5), 1, 5, BoundExact, board.NoMove)

	_, ok := tt.Probe(mk(1))
	assert.False(t, ok, "shallowest entry should have been replaced")
	for i := uint64(2); i <= 5; i++ {
		_, ok := tt.Probe(mk(i))
		assert.True(t, ok, "entry %d should survive", i)
	}
}

func TestTTReplacementPrefersOldEpoch(t *testing.T) {
	tt := NewTransTable(1)
	low := uint64(0x99)
	mk := func(high uint64) uint64 { return high<<32 | low }

	// Three deep old-epoch entries and one shallow current one.
	for i := uint64(1); i <= 3; i++ {
		tt.Store(mk(i), 50, 0, BoundExact, board.NoMove)
	}
	tt.NewEpoch()
	tt.Store(mk(4), 2, 0, BoundExact, board.NoMove)

	// A new store must evict an old-epoch entry, not the shallow fresh one.
	tt.Store(mk(5), 1, 0, BoundExact, board.NoMove)
	_, ok := tt.Probe(mk(4))
	assert.True(t, ok, "current-epoch entry should survive")
	_, ok = tt.Probe(mk(5))
	assert.True(t, ok)
}

func TestScoreMateAdjustment(t *testing.T) {
	winIn7 := WinScore - 7
	stored := scoreToTT(winIn7, 3)
	assert.Equal(t, winIn7, scoreFromTT(stored, 3))
	assert.Equal(t, WinScore-4, scoreFromTT(stored, 0))

	assert.Equal(t, 1234, scoreFromTT(scoreToTT(1234, 9), 2))
}
