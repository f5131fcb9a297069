package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tczajka/wazir-drop/internal/board"
)

func newTestSearcher(p *board.Position, total time.Duration) *searcher {
	tc := NewTimeControl(total)
	tc.StartMove()
	return &searcher{
		pos:     p,
		eval:    MaterialEvaluator{},
		tt:      NewTransTable(4),
		killers: &Killers{},
		history: NewHistory(p.Hash()),
		tc:      tc,
		myColor: p.SideToMove(),
	}
}

func TestSearchFindsWazirCapture(t *testing.T) {
	// Blue to move, knight on c2 takes the red wazir on d4.
	p, err := board.ParsePosition(11, "AAAAAAAADDDDFFaaaaaaaaddddffn",
		`.......w
		 ........
		 ........
		 ........
		 ...W....
		 ........
		 ..n.....
		 ........`)
	require.NoError(t, err)

	s := newTestSearcher(p, time.Minute)
	result := s.Search()
	assert.Equal(t, board.Wazir, result.Move.Captured())
	assert.Equal(t, board.D4, result.Move.To())
	assert.True(t, IsWinScore(result.Score))
}

func TestRepetitionScoredAsDraw(t *testing.T) {
	// Red is two knights up, but the position already occurred: the node
	// must score as a draw regardless of material.
	p, err := board.ParsePosition(20, "AAAAAAAADDDDFFNaaaaaaaaddddff",
		`.......w
		 ........
		 ........
		 ........
		 ....N...
		 ........
		 ........
		 W.......`)
	require.NoError(t, err)

	s := newTestSearcher(p, time.Minute)
	s.history.Push(0x1234, false)
	s.history.Push(p.Hash(), false)
	score := s.negamax(5, 1, -Infinity, Infinity)
	assert.Equal(t, DrawScore, score)
	require.NotEqual(t, DrawScore, MaterialEvaluator{}.Evaluate(p))
}

func TestCheckmateScoredThroughPseudoTail(t *testing.T) {
	// Red is checkmated. The protocol still plays two half-moves: the
	// doomed wazir steps into check and is then captured, so the root
	// sees a loss in exactly two plies.
	p, err := board.ParsePosition(10, "AAAAAAAADDDNaaaaaaaaddddffn",
		`w.......
		 ........
		 ........
		 ........
		 ........
		 df......
		 ..f.....
		 W.......`)
	require.NoError(t, err)

	s := newTestSearcher(p, time.Minute)
	result := s.Search()
	assert.Equal(t, -(WinScore - 2), result.Score)
	require.NotEqual(t, board.NoMove, result.Move)
	assert.Equal(t, board.RedWazir, result.Move.ColoredPiece())
}

func TestSearchRespectsDeadline(t *testing.T) {
	p, err := board.ParsePosition(20, "AAAAADDFFNaaaaaddffn",
		`.......w
		 .....aa.
		 ....dd..
		 ........
		 ..AA....
		 .DD.....
		 .A......
		 W......a`)
	require.NoError(t, err)

	// 400ms on the game clock allocates a 10ms move budget.
	s := newTestSearcher(p, 400*time.Millisecond)
	start := time.Now()
	result := s.Search()
	elapsed := time.Since(start)

	assert.NotEqual(t, board.NoMove, result.Move)
	assert.GreaterOrEqual(t, result.Depth, 1)
	assert.Less(t, elapsed, 2*time.Second)
}

func TestDeeperIterationKeepsCompletedMove(t *testing.T) {
	// The returned move is from the deepest fully completed iteration:
	// it must be a legal move of the root position whatever depth the
	// clock allowed.
	p, err := board.ParsePosition(30, "AAAADaaaaaddffn",
		`.......w
		 .....a..
		 ....dd..
		 ...AD...
		 ..AA....
		 .DDA....
		 FAN.....
		 WFA.....`)
	require.NoError(t, err)

	s := newTestSearcher(p, 600*time.Millisecond)
	result := s.Search()
	require.NotEqual(t, board.NoMove, result.Move)
	assert.True(t, p.LegalMoves().Contains(result.Move))
}
