package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"hwharvest/internal/config"
	"hwharvest/internal/connectors"
	sheetsconnector "hwharvest/internal/connectors/sheets"
	"hwharvest/internal/storage"
	"hwharvest/internal/watcher"
)

func main() {
	cfg, err := config.Load()
	must(err)

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	var sink connectors.TabularSink
	if cfg.WatchAutoPush {
		sheetSink, err := sheetsconnector.NewConnector(cfg)
		must(err)
		sink = sheetSink
	}

	svc := watcher.NewService(db, cfg, logger, sink)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	must(svc.Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
