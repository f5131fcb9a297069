// Package protocol drives the judge protocol on standard streams: it
// parses commands, relays moves into the engine, and prints the engine's
// replies within the time budget.
package protocol

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/tczajka/wazir-drop/internal/board"
	"github.com/tczajka/wazir-drop/internal/engine"
)

// Driver runs one game over a pair of streams.
type Driver struct {
	eng *engine.Engine
	in  *bufio.Reader
	out *bufio.Writer
	log *log.Logger
}

// New creates a driver. logger may be nil to disable diagnostics.
func New(eng *engine.Engine, in io.Reader, out io.Writer, logger *log.Logger) *Driver {
	return &Driver{
		eng: eng,
		in:  bufio.NewReader(in),
		out: bufio.NewWriter(out),
		log: logger,
	}
}

// Run processes commands until Quit or EOF. Malformed input and illegal
// judge moves are fatal: the error is returned and the process exits.
func (d *Driver) Run() error {
	if d.eng.OnInfo() == nil {
		d.eng.SetOnInfo(func(r engine.SearchResult) {
			d.logf("depth %d score %d nodes %d knps %.0f pv %s",
				r.Depth, r.Score, r.Nodes,
				float64(r.Nodes)/r.Time.Seconds()/1000, r.PVString())
		})
	}

	for {
		line, err := d.in.ReadString('\n')
		if err == io.EOF && line == "" {
			d.logf("eof")
			return nil
		}
		if err != nil && err != io.EOF {
			return errors.Wrap(err, "read command")
		}
		line = strings.TrimRight(line, "\r\n")

		switch {
		case line == "Quit":
			d.logf("quit")
			return nil

		case strings.HasPrefix(line, "Time "):
			if d.eng.Color() != board.NoColor {
				return errors.New("Time command after game start")
			}
			ms, err := strconv.ParseUint(line[len("Time "):], 10, 32)
			if err != nil {
				return errors.Wrapf(err, "command %q", line)
			}
			d.logf("time limit %d ms", ms)
			d.eng.SetTimeLimit(time.Duration(ms) * time.Millisecond)

		case strings.HasPrefix(line, "Opening"):
			if d.eng.Color() != board.NoColor {
				return errors.New("Opening command after game start")
			}
			for _, wire := range strings.Fields(line)[1:] {
				d.logf("opening %s", wire)
				if err := d.eng.ApplyExternal(wire); err != nil {
					return errors.Wrapf(err, "opening move %q", wire)
				}
			}

		case line == "Start":
			if d.eng.Color() != board.NoColor {
				return errors.New("Start command after game start")
			}
			d.eng.SetColor(board.Red)
			if err := d.reply(); err != nil {
				return err
			}

		case line == "":
			return errors.New("empty command")

		default:
			// A judge-relayed opponent move; the first one tells us we
			// play Blue.
			if d.eng.Color() == board.NoColor {
				d.eng.SetColor(board.Blue)
			}
			d.logf("%d. opp %s", d.eng.Position().Ply()+1, line)
			if err := d.eng.ApplyExternal(line); err != nil {
				return errors.Wrapf(err, "opponent move %q", line)
			}
			if d.eng.Position().Stage() == board.StageOver {
				d.logf("game over")
				continue
			}
			if err := d.reply(); err != nil {
				return err
			}
		}
	}
}

// reply plays the engine's move and prints it.
func (d *Driver) reply() error {
	wire, err := d.eng.Play()
	if err != nil {
		return errors.Wrap(err, "engine move")
	}
	d.logf("%d. %s (%d ms left)", d.eng.Position().Ply(), wire,
		d.eng.TimeControl().Remaining().Milliseconds())
	if _, err := fmt.Fprintln(d.out, wire); err != nil {
		return errors.Wrap(err, "write move")
	}
	return errors.Wrap(d.out.Flush(), "flush move")
}

func (d *Driver) logf(format string, args ...interface{}) {
	if d.log != nil {
		d.log.Printf(format, args...)
	}
}
