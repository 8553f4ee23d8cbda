package main

import (
	"context"
	"encoding/csv"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"mangashelf/internal/importer"
	"mangashelf/internal/manga"
	"mangashelf/pkg/models"
	"mangashelf/pkg/utils"
)

func main() {
	var (
		out    = flag.String("out", "data/manga-collection.xlsx", "output path; .csv writes CSV, anything else xlsx")
		search = flag.String("search", "", "only export records matching this search")
		status = flag.String("status", "", "only export records with this status")
		sortBy = flag.String("sort", "", "sort key")
		order  = flag.String("order", manga.SortAsc, "asc|desc")
	)
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

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store, closeStore, err := manga.OpenStore(ctx, cfg.Store, logger)
	if err != nil {
		logger.Fatal("open store failed", zap.Error(err))
	}
	defer func() { _ = closeStore() }()

	q := manga.Query{Search: *search, Status: *status}
	if *sortBy != "" {
		q.SortKey, q.SortDirection = *sortBy, *order
	}
	records, err := importer.Collect(ctx, store, q)
	if err != nil {
		logger.Fatal("collect records failed", zap.Error(err))
	}

	if err := write(*out, records); err != nil {
		logger.Fatal("export failed", zap.String("out", *out), zap.Error(err))
	}
	logger.Info("export finished", zap.String("out", *out), zap.Int("records", len(records)))
}

func write(path string, records []models.Manga) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		err = writeCSV(f, records)
	} else {
		err = importer.WriteXLSX(f, records)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

func writeCSV(f *os.File, records []models.Manga) error {
	w := csv.NewWriter(f)
	if err := w.Write(importer.ExportHeader()); err != nil {
		return err
	}
	for _, m := range records {
		if err := w.Write(importer.ExportRecord(m)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
