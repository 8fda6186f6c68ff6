package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"hwharvest/internal"
	"hwharvest/internal/config"
	"hwharvest/internal/connectors"
	"hwharvest/internal/pipeline"
	"hwharvest/internal/site"
	"hwharvest/internal/storage"
)

// Service harvests the configured store pages on a fixed interval and
// writes a timestamped export pair after every cycle.
type Service struct {
	db     *storage.DB
	cfg    config.Config
	logger *slog.Logger
	sink   connectors.TabularSink
}

func NewService(db *storage.DB, cfg config.Config, logger *slog.Logger, sink connectors.TabularSink) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, cfg: cfg, logger: logger, sink: sink}
}

func (s *Service) Run(ctx context.Context) error {
	for {
		if err := s.runCycle(ctx); err != nil {
			s.logger.Error("watch cycle error", "err", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(s.cfg.WatchIntervalSec) * time.Second):
		}
	}
}

func (s *Service) runCycle(ctx context.Context) error {
	if len(s.cfg.StoreURLs) == 0 {
		return fmt.Errorf("no store urls configured")
	}

	runner := pipeline.NewRunner(site.NewClient(s.cfg), s.db, s.logger)
	result, err := runner.Run(ctx, s.cfg.StoreURLs)
	if err != nil {
		return err
	}

	jsonPath, xlsxPath, err := s.writeExports(result.Records)
	if err != nil {
		return err
	}

	pushed := false
	if s.cfg.WatchAutoPush && s.sink != nil {
		if err := s.sink.Push(ctx, pipeline.ImportHeader, pipeline.BuildImportRows(result.Records)); err != nil {
			return err
		}
		pushed = true
	}

	s.logger.Info("watch cycle done",
		"runId", result.Summary.ID,
		"emitted", result.Summary.Emitted,
		"json", jsonPath,
		"xlsx", xlsxPath,
		"pushed", pushed)
	return nil
}

func (s *Service) writeExports(records []*internal.ProductRecord) (string, string, error) {
	stamp := time.Now().UTC().Format("20060102_150405")

	jsonPath := filepath.Join(s.cfg.OutputDir, "watch", fmt.Sprintf("products_%s.json", stamp))
	if err := pipeline.ExportRecordsToJSON(records, jsonPath); err != nil {
		return "", "", err
	}

	xlsxPath := filepath.Join(s.cfg.OutputDir, "watch", fmt.Sprintf("import_%s.xlsx", stamp))
	if err := pipeline.ExportRecordsToXLSX(records, xlsxPath); err != nil {
		return "", "", err
	}

	return jsonPath, xlsxPath, nil
}
