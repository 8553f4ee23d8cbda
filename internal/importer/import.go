package importer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"mangashelf/internal/manga"
	"mangashelf/pkg/models"
)

// Outcome is what an import reports back to the caller.
type Outcome struct {
	Imported int      `json:"imported"`
	Errors   []string `json:"errors"`
	IDs      []string `json:"-"`
}

// Importer reconciles rows and persists the accepted records one by one.
// A failure on one record is reported against its row; the batch goes on.
type Importer struct {
	Store manga.Store
	Log   *zap.Logger
}

func New(store manga.Store, log *zap.Logger) *Importer {
	return &Importer{Store: store, Log: log}
}

func (im *Importer) Import(ctx context.Context, rows []Row) Outcome {
	res := Reconcile(rows)
	out := Outcome{Errors: res.Errors}

	for i, in := range res.Records {
		m, err := im.Store.Create(ctx, in)
		if err != nil {
			im.Log.Warn("import row failed", zap.Int("row", res.Rows[i]), zap.Error(err))
			out.Errors = append(out.Errors, fmt.Sprintf("Row %d: %v", res.Rows[i], err))
			continue
		}
		out.Imported++
		out.IDs = append(out.IDs, m.ID)
	}

	im.Log.Info("import finished",
		zap.Int("rows", len(rows)),
		zap.Int("imported", out.Imported),
		zap.Int("errors", len(out.Errors)),
	)
	return out
}

// Collect pages through the store with q and returns every match in order.
func Collect(ctx context.Context, store manga.Store, q manga.Query) ([]models.Manga, error) {
	q.Page = 1
	q.PageSize = manga.MaxPageSize

	var all []models.Manga
	for {
		page, err := store.Query(ctx, q)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		if q.Page >= page.TotalPages {
			return all, nil
		}
		q.Page++
	}
}
