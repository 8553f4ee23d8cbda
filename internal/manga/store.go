package manga

import (
	"context"
	"time"

	"mangashelf/pkg/models"
)

// Store owns the record set. Every mutation goes through it.
//
// Query must honor the same contract as Run: filters, stable sort, paging,
// and insertion order when no sort is requested.
type Store interface {
	Query(ctx context.Context, q Query) (models.Page, error)
	All(ctx context.Context) ([]models.Manga, error)
	Get(ctx context.Context, id string) (*models.Manga, error)
	Create(ctx context.Context, in models.MangaInput) (*models.Manga, error)
	Update(ctx context.Context, id string, p models.MangaPatch) (*models.Manga, error)
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) (int, error)
	Ping(ctx context.Context) error
}

// Clock returns the current time. Stores take one so tests can pin it.
type Clock func() time.Time

func systemClock() time.Time { return time.Now() }

// stamp normalizes a timestamp to the precision every backend can hold.
func stamp(c Clock) time.Time {
	return c().UTC().Truncate(time.Microsecond)
}

// touched returns the new updatedAt, never earlier than createdAt.
func touched(c Clock, createdAt time.Time) time.Time {
	t := stamp(c)
	if t.Before(createdAt) {
		return createdAt
	}
	return t
}

func fromInput(id string, in models.MangaInput, now time.Time) models.Manga {
	return models.Manga{
		ID:            id,
		Title:         in.Title,
		Volume:        in.Volume,
		Genre:         in.Genre,
		Author:        in.Author,
		Publisher:     in.Publisher,
		ISBN:          in.ISBN,
		Language:      in.Language,
		CoverImageURL: in.CoverImageURL,
		IsRead:        in.IsRead,
		IsDuplicate:   in.IsDuplicate,
		WantToBuy:     in.WantToBuy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
