// corvid-remote is an adaptor for using a DGT EBoard via LiveChess as a UCI
// engine: instead of searching, it proposes whatever move the physical board
// reports. Grounded on herohde-morlock/cmd/livechess-uci/main.go.
package main

import (
	"context"
	"flag"

	"github.com/herohde/livechess-go/pkg/livechess"

	"github.com/seekerror/logw"

	"github.com/corvidchess/corvid/pkg/board/fen"
	"github.com/corvidchess/corvid/pkg/engine"
	"github.com/corvidchess/corvid/pkg/engine/remote"
	"github.com/corvidchess/corvid/pkg/engine/uci"
)

var (
	serial = flag.String("serial", "auto", "Board selection by serial number")
	flip   = flag.Bool("flip", false, "Flip board")
)

func main() {
	flag.Parse()
	ctx := context.Background()

	id := livechess.EBoardSerial(*serial)
	if id == "auto" {
		auto, err := livechess.AutoDetect(ctx, livechess.DefaultClient)
		if err != nil {
			logw.Exitf(ctx, "Watch failed to autodetect board: %v", err)
		}
		id = auto
	}

	client, events, err := livechess.NewFeed(ctx, id)
	if err != nil {
		logw.Exitf(ctx, "Feed for %v failed: %v", id, err)
	}
	if *flip {
		if err := client.Flip(ctx, true); err != nil {
			logw.Exitf(ctx, "Flip board %v failed: %v", id, err)
		}
	}
	if err := client.Setup(ctx, fen.StartPos); err != nil {
		logw.Exitf(ctx, "Setup board %v failed: %v", id, err)
	}

	bridge := remote.NewBridge(ctx, client, events)
	logw.Infof(ctx, "Bridging %v", remote.DescribeBoard(id))

	e := engine.New(ctx, "corvid-remote", "corvidchess",
		engine.WithSearcherFactory(remote.NewSearcherFactory(bridge)))

	in := engine.ReadStdinLines(ctx)
	switch <-in {
	case uci.ProtocolName:
		driver, out := uci.NewDriver(ctx, e, in)
		go engine.WriteStdoutLines(ctx, out)
		<-driver.Closed()

	default:
		flag.Usage()
		logw.Exitf(ctx, "Protocol not supported")
	}
}
