// corvid is a UCI chess engine.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/seekerror/logw"

	"github.com/corvidchess/corvid/pkg/engine"
	"github.com/corvidchess/corvid/pkg/engine/console"
	"github.com/corvidchess/corvid/pkg/engine/uci"
)

var (
	hash    = flag.Uint("hash", 16, "Transposition table size in MB")
	threads = flag.Uint("threads", 1, "Search threads (Lazy SMP)")
	noise   = flag.Uint("noise", 0, "Evaluation noise in millipawns (zero if deterministic)")
	book    = flag.String("book", "", "Opening book file, one line per game (space-separated long algebraic moves)")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: corvid [options]

corvid is a UCI chess engine.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	opts := []engine.Option{
		engine.WithOptions(engine.Options{
			Hash:    *hash,
			Threads: *threads,
			MultiPV: 1,
			Noise:   *noise,
		}),
	}
	if *book != "" {
		lines, err := loadBook(*book)
		if err != nil {
			logw.Exitf(ctx, "Invalid book %v: %v", *book, err)
		}
		b, err := engine.NewBook(lines)
		if err != nil {
			logw.Exitf(ctx, "Invalid book %v: %v", *book, err)
		}
		opts = append(opts, engine.WithBook(b))
	}

	e := engine.New(ctx, "corvid", "corvidchess", opts...)

	in := engine.ReadStdinLines(ctx)
	switch <-in {
	case uci.ProtocolName:
		driver, out := uci.NewDriver(ctx, e, in)
		go engine.WriteStdoutLines(ctx, out)
		<-driver.Closed()

	case console.ProtocolName:
		driver, out := console.NewDriver(ctx, e, in)
		go engine.WriteStdoutLines(ctx, out)
		<-driver.Closed()

	default:
		flag.Usage()
		logw.Exitf(ctx, "Protocol not supported")
	}
}

func loadBook(path string) ([]engine.Line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []engine.Line
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if fields := strings.Fields(scanner.Text()); len(fields) > 0 {
			lines = append(lines, engine.Line(fields))
		}
	}
	return lines, scanner.Err()
}
