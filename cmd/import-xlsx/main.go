package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"mangashelf/internal/importer"
	"mangashelf/internal/manga"
	"mangashelf/pkg/utils"
)

func main() {
	in := flag.String("file", "data/manga.xlsx", "input spreadsheet path")
	flag.Parse()

	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := utils.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	store, closeStore, err := manga.OpenStore(ctx, cfg.Store, logger)
	if err != nil {
		logger.Fatal("open store failed", zap.Error(err))
	}
	defer func() { _ = closeStore() }()

	f, err := os.Open(*in)
	if err != nil {
		logger.Fatal("open spreadsheet failed", zap.Error(err))
	}
	defer f.Close()

	rows, err := importer.ReadXLSX(f)
	if err != nil {
		logger.Fatal("read spreadsheet failed", zap.String("file", *in), zap.Error(err))
	}

	out := importer.New(store, logger).Import(ctx, rows)
	for _, msg := range out.Errors {
		logger.Warn("row skipped", zap.String("reason", msg))
	}
	logger.Info("import finished",
		zap.String("file", *in),
		zap.Int("rows", len(rows)),
		zap.Int("imported", out.Imported),
		zap.Int("errors", len(out.Errors)),
	)
}
