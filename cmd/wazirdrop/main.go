// Command wazirdrop is the tournament binary: it speaks the judge
// protocol on stdin/stdout and logs diagnostics to stderr.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/tczajka/wazir-drop/internal/book"
	"github.com/tczajka/wazir-drop/internal/engine"
	"github.com/tczajka/wazir-drop/internal/nnue"
	"github.com/tczajka/wazir-drop/internal/protocol"
)

func main() {
	ttSize := flag.Int("tt", 64, "transposition table size in MB")
	optimism := flag.Int("optimism", 1000, "evaluation bias for own color (x10000 units)")
	weightsPath := flag.String("weights", "", "NNUE weight blob (material eval if empty)")
	noBook := flag.Bool("no-book", false, "disable the opening book")
	flag.Parse()

	logger := log.New(os.Stderr, "", log.Ltime|log.Lmicroseconds)

	opts := engine.DefaultOptions()
	opts.TTSizeMB = *ttSize
	opts.Optimism = *optimism
	if !*noBook {
		opts.Book = book.New()
	}

	if *weightsPath != "" {
		f, err := os.Open(*weightsPath)
		if err != nil {
			logger.Fatalf("open weights: %v", err)
		}
		net, err := nnue.Load(f)
		f.Close()
		if err != nil {
			logger.Fatalf("load weights: %v", err)
		}
		opts.Weights = net
	}

	eng := engine.New(opts)
	driver := protocol.New(eng, os.Stdin, os.Stdout, logger)
	if err := driver.Run(); err != nil {
		logger.Fatalf("error: %v", err)
	}
}
