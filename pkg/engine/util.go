package engine

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/seekerror/logw"
)

// ReadStdinLines streams stdin lines on a channel, closed at EOF. Grounded on
// herohde-morlock/pkg/engine/util.go's ReadStdinLines; the UCI and console
// drivers both read their command loop off this instead of scanning stdin
// directly, so either can be fed from a test harness instead.
func ReadStdinLines(ctx context.Context) <-chan string {
	out := make(chan string, 1)
	go func() {
		defer close(out)

		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 1<<20), 1<<20)
		for scanner.Scan() {
			logw.Debugf(ctx, "<< %v", scanner.Text())
			out <- scanner.Text()
		}
	}()
	return out
}

// WriteStdoutLines drains lines off out to stdout until the channel closes.
func WriteStdoutLines(ctx context.Context, out <-chan string) {
	for line := range out {
		logw.Debugf(ctx, ">> %v", line)
		_, _ = fmt.Fprintln(os.Stdout, line)
	}
}
