package manga

import (
	"context"
	"fmt"

	"mangashelf/pkg/models"
)

// SampleCollection is the demo data loaded by `store.seed`.
var SampleCollection = []models.MangaInput{
	{Title: "One Piece", Volume: "1", Genre: "Shonen, Abenteuer", Author: "Eiichiro Oda", Publisher: "Carlsen",
		ISBN: "978-3-551-75271-4", Language: "Deutsch", CoverImageURL: PlaceholderCover, IsRead: true},
	{Title: "Attack on Titan", Volume: "5", Genre: "Action, Drama", Author: "Hajime Isayama", Publisher: "Carlsen",
		ISBN: "978-3-551-75275-2", Language: "Deutsch", CoverImageURL: PlaceholderCover, IsDuplicate: true},
	{Title: "Demon Slayer", Volume: "3", Genre: "Shonen, Supernatural", Author: "Koyoharu Gotouge", Publisher: "Panini",
		ISBN: "978-3-741-61234-5", Language: "Deutsch", CoverImageURL: PlaceholderCover, IsRead: true, WantToBuy: true},
	{Title: "Naruto", Volume: "1", Genre: "Shonen, Ninja", Author: "Masashi Kishimoto", Publisher: "Carlsen",
		ISBN: "978-3-551-75280-6", Language: "Deutsch", CoverImageURL: PlaceholderCover, IsRead: true},
	{Title: "My Hero Academia", Volume: "2", Genre: "Shonen, Superhero", Author: "Kohei Horikoshi", Publisher: "Panini",
		ISBN: "978-3-741-61235-2", Language: "Englisch", CoverImageURL: PlaceholderCover, WantToBuy: true},
}

// Seed inserts the sample collection when the store is empty.
// It returns the number of records created.
func Seed(ctx context.Context, s Store) (int, error) {
	page, err := s.Query(ctx, Query{PageSize: 1})
	if err != nil {
		return 0, fmt.Errorf("check store: %w", err)
	}
	if page.Total > 0 {
		return 0, nil
	}
	for i, in := range SampleCollection {
		if _, err := s.Create(ctx, in); err != nil {
			return i, fmt.Errorf("seed %q: %w", in.Title, err)
		}
	}
	return len(SampleCollection), nil
}
