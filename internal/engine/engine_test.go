package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tczajka/wazir-drop/internal/board"
)

// stubBook is a single-line book for the façade tests.
type stubBook struct{}

func (stubBook) RedSetup() board.SetupMove {
	sm, _ := board.ParseSetupMove("AAAAAAWANDDDDFFA")
	return sm
}

func (stubBook) BlueResponse(red board.SetupMove) (board.SetupMove, bool) {
	if red.String() == "AAAAAAWANDDDDFFA" {
		sm, _ := board.ParseSetupMove("aaaaaawanddddffa")
		return sm, true
	}
	return board.SetupMove{}, false
}

func (stubBook) BlueCandidates() []board.SetupMove {
	sm, _ := board.ParseSetupMove("aaaaaawanddddffa")
	return []board.SetupMove{sm}
}

func newTestEngine() *Engine {
	opts := DefaultOptions()
	opts.TTSizeMB = 4
	opts.Book = stubBook{}
	return New(opts)
}

func TestRedOpening(t *testing.T) {
	e := newTestEngine()
	e.SetColor(board.Red)
	wire, err := e.Play()
	require.NoError(t, err)
	require.Len(t, wire, 16)

	sm, err := board.ParseSetupMove(wire)
	require.NoError(t, err)
	assert.Equal(t, board.Red, sm.Color)
	assert.Equal(t, board.StageBlueSetup, e.Position().Stage())
}

func TestBlueBookResponse(t *testing.T) {
	e := newTestEngine()
	e.SetColor(board.Blue)
	require.NoError(t, e.ApplyExternal("AAAAAAWANDDDDFFA"))

	wire, err := e.Play()
	require.NoError(t, err)
	assert.Equal(t, "aaaaaawanddddffa", wire)
	assert.Equal(t, board.StagePlay, e.Position().Stage())
}

func TestBlueOffBookStillAnswers(t *testing.T) {
	e := newTestEngine()
	e.SetColor(board.Blue)
	require.NoError(t, e.ApplyExternal("AAAAAAWADDDDNFFA"))

	wire, err := e.Play()
	require.NoError(t, err)
	sm, err := board.ParseSetupMove(wire)
	require.NoError(t, err)
	assert.Equal(t, board.Blue, sm.Color)
}

func TestEnginesPlayEachOther(t *testing.T) {
	red := newTestEngine()
	blue := newTestEngine()
	red.SetColor(board.Red)
	blue.SetColor(board.Blue)
	red.SetTimeLimit(500 * time.Millisecond)
	blue.SetTimeLimit(500 * time.Millisecond)

	mover, other := red, blue
	for i := 0; i < 12; i++ {
		if mover.Position().Stage() == board.StageOver {
			break
		}
		wire, err := mover.Play()
		require.NoError(t, err)
		require.NoError(t, other.ApplyExternal(wire))
		require.Equal(t, mover.Position().Hash(), other.Position().Hash())
		mover, other = other, mover
	}
	require.NoError(t, red.Position().Validate())
}

func TestRejectsIllegalOpponentMove(t *testing.T) {
	e := newTestEngine()
	e.SetColor(board.Blue)
	require.NoError(t, e.ApplyExternal("AAAAAAWANDDDDFFA"))
	_, err := e.Play()
	require.NoError(t, err)

	assert.Error(t, e.ApplyExternal("e4e5"))   // no piece on e4
	assert.Error(t, e.ApplyExternal("a1a4"))   // not a leap
	assert.Error(t, e.ApplyExternal("Wd4"))    // no wazir in hand
	assert.Error(t, e.ApplyExternal("zz9"))    // nonsense
}
