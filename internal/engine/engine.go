package engine

import (
	"time"

	"github.com/pkg/errors"

	"github.com/tczajka/wazir-drop/internal/board"
	"github.com/tczajka/wazir-drop/internal/nnue"
)

// OpeningBook is the setup-move oracle the engine consults before play
// begins. internal/book carries the tournament data.
type OpeningBook interface {
	// RedSetup returns the single best canonical Red setup.
	RedSetup() board.SetupMove
	// BlueResponse returns the precomputed reply to a Red setup;
	// ok is false off-book.
	BlueResponse(red board.SetupMove) (board.SetupMove, bool)
	// BlueCandidates returns the setups considered when off-book.
	BlueCandidates() []board.SetupMove
}

// Options configures an engine instance.
type Options struct {
	TTSizeMB int
	Optimism int // evaluation bias for the engine's color, x10000 units
	Book     OpeningBook
	Weights  *nnue.Network // nil falls back to the material evaluator
	OnInfo   func(SearchResult)
}

// DefaultOptions returns the tournament configuration.
func DefaultOptions() Options {
	return Options{
		TTSizeMB: 64,
		Optimism: 1000,
	}
}

// Engine binds the protocol events to the search: it owns the game
// position, the transposition table, the evaluator state, the repetition
// history and the clock.
type Engine struct {
	opts    Options
	pos     *board.Position
	tt      *TransTable
	eval    Evaluator
	killers Killers
	history *History
	tc      *TimeControl
	color   board.Color

	redSetup    board.SetupMove
	hasRedSetup bool
}

// New creates an engine with the given options.
func New(opts Options) *Engine {
	pos := board.NewPosition()
	var eval Evaluator = MaterialEvaluator{}
	if opts.Weights != nil {
		eval = nnue.NewState(opts.Weights)
	}
	return &Engine{
		opts:    opts,
		pos:     pos,
		tt:      NewTransTable(opts.TTSizeMB),
		eval:    eval,
		history: NewHistory(pos.Hash()),
		tc:      NewTimeControl(DefaultTimeLimit),
		color:   board.NoColor,
	}
}

// OnInfo returns the per-search reporting callback.
func (e *Engine) OnInfo() func(SearchResult) {
	return e.opts.OnInfo
}

// SetOnInfo installs the per-search reporting callback.
func (e *Engine) SetOnInfo(f func(SearchResult)) {
	e.opts.OnInfo = f
}

// Position returns the current game position.
func (e *Engine) Position() *board.Position {
	return e.pos
}

// Color returns the color the engine plays, NoColor before the game starts.
func (e *Engine) Color() board.Color {
	return e.color
}

// SetTimeLimit replaces the whole-game clock before the game starts.
func (e *Engine) SetTimeLimit(d time.Duration) {
	e.tc.SetRemaining(d)
}

// TimeControl exposes the clock to the protocol driver.
func (e *Engine) TimeControl() *TimeControl {
	return e.tc
}

// SetColor fixes the engine's color when the game starts.
func (e *Engine) SetColor(c board.Color) {
	e.color = c
}

// ApplyExternal replays a wire-format move (a 16-letter setup or a short
// move) from the judge: an opening prefix or the opponent's move.
func (e *Engine) ApplyExternal(wire string) error {
	if len(wire) == 16 {
		sm, err := board.ParseSetupMove(wire)
		if err != nil {
			return err
		}
		return e.applySetup(sm)
	}
	m, err := e.pos.ParseShortMove(wire)
	if err != nil {
		return err
	}
	e.applyRegular(m)
	return nil
}

func (e *Engine) applySetup(sm board.SetupMove) error {
	switch {
	case e.pos.Stage() == board.StageRedSetup && sm.Color == board.Red:
	case e.pos.Stage() == board.StageBlueSetup && sm.Color == board.Blue:
	default:
		return errors.Errorf("setup move for %v out of turn", sm.Color)
	}
	if sm.Color == board.Red {
		e.redSetup = sm
		e.hasRedSetup = true
	}
	e.pos.MakeSetup(sm)
	e.history.Push(e.pos.Hash(), true)
	return nil
}

func (e *Engine) applyRegular(m board.Move) {
	e.pos.Make(m)
	e.history.Push(e.pos.Hash(), m.IsCapture() || m.IsDrop())
}

// Play decides and applies the engine's move, returning its wire form.
func (e *Engine) Play() (string, error) {
	switch e.pos.Stage() {
	case board.StageRedSetup:
		sm := e.bookRedSetup()
		if err := e.applySetup(sm); err != nil {
			return "", err
		}
		return sm.String(), nil
	case board.StageBlueSetup:
		sm := e.chooseBlueSetup()
		if err := e.applySetup(sm); err != nil {
			return "", err
		}
		return sm.String(), nil
	case board.StagePlay, board.StageRedPseudo, board.StageBluePseudo:
		return e.playRegular()
	default:
		return "", errors.New("game is over")
	}
}

func (e *Engine) playRegular() (string, error) {
	e.tc.StartMove()
	defer e.tc.EndMove()

	e.killers.Clear()
	s := searcher{
		pos:      e.pos,
		eval:     e.eval,
		tt:       e.tt,
		killers:  &e.killers,
		history:  e.history,
		tc:       e.tc,
		optimism: e.opts.Optimism,
		myColor:  e.color,
	}
	result := s.Search()
	if result.Move == board.NoMove {
		return "", errors.New("no legal move")
	}
	if e.opts.OnInfo != nil {
		e.opts.OnInfo(result)
	}
	e.applyRegular(result.Move)
	return result.Move.Short(), nil
}

func (e *Engine) bookRedSetup() board.SetupMove {
	if e.opts.Book != nil {
		return e.opts.Book.RedSetup()
	}
	return defaultSetup(board.Red)
}

// chooseBlueSetup answers Red's setup: the precomputed response when Red
// is in book, otherwise the candidate whose resulting position evaluates
// best for Blue.
func (e *Engine) chooseBlueSetup() board.SetupMove {
	if e.opts.Book == nil {
		return defaultSetup(board.Blue)
	}
	if e.hasRedSetup {
		if sm, ok := e.opts.Book.BlueResponse(e.redSetup); ok {
			return sm
		}
	}
	best := defaultSetup(board.Blue)
	bestScore := Infinity // Red's view; Blue minimizes
	for _, sm := range e.opts.Book.BlueCandidates() {
		undo := e.pos.MakeSetup(sm)
		e.eval.Reset(e.pos)
		score := e.eval.Evaluate(e.pos)
		e.pos.UnmakeSetup(sm, undo)
		if score < bestScore {
			bestScore = score
			best = sm
		}
	}
	return best
}

// defaultSetup is the hardwired fallback placement when no book is wired.
func defaultSetup(c board.Color) board.SetupMove {
	letters := "AAAAAAWANDDDDFFA"
	var sm board.SetupMove
	sm.Color = c
	for i := 0; i < 16; i++ {
		sm.Pieces[i] = colorlessPiece(letters[i])
	}
	return sm
}

func colorlessPiece(b byte) board.Piece {
	switch b {
	case 'A':
		return board.Alfil
	case 'D':
		return board.Dabbaba
	case 'F':
		return board.Ferz
	case 'N':
		return board.Knight
	default:
		return board.Wazir
	}
}
