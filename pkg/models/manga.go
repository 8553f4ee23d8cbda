package models

import "time"

// Manga is one book of the collection as persisted by a store.
type Manga struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Volume        string    `json:"volume"`
	Genre         string    `json:"genre"` // comma separated tags
	Author        string    `json:"author"`
	Publisher     string    `json:"publisher"`
	ISBN          string    `json:"isbn"`
	Language      string    `json:"language"`
	CoverImageURL string    `json:"coverImageUrl"`
	IsRead        bool      `json:"isRead"`
	IsDuplicate   bool      `json:"isDuplicate"`
	WantToBuy     bool      `json:"wantToBuy"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// MangaInput is a normalized candidate record. Stores assign id and timestamps.
type MangaInput struct {
	Title         string `json:"title"`
	Volume        string `json:"volume"`
	Genre         string `json:"genre"`
	Author        string `json:"author"`
	Publisher     string `json:"publisher"`
	ISBN          string `json:"isbn"`
	Language      string `json:"language"`
	CoverImageURL string `json:"coverImageUrl"`
	IsRead        bool   `json:"isRead"`
	IsDuplicate   bool   `json:"isDuplicate"`
	WantToBuy     bool   `json:"wantToBuy"`
}

// MangaPatch carries a partial update. A nil field is left untouched,
// a non-nil one is applied even when it holds the zero value.
type MangaPatch struct {
	Title         *string `json:"title,omitempty"`
	Volume        *string `json:"volume,omitempty"`
	Genre         *string `json:"genre,omitempty"`
	Author        *string `json:"author,omitempty"`
	Publisher     *string `json:"publisher,omitempty"`
	ISBN          *string `json:"isbn,omitempty"`
	Language      *string `json:"language,omitempty"`
	CoverImageURL *string `json:"coverImageUrl,omitempty"`
	IsRead        *bool   `json:"isRead,omitempty"`
	IsDuplicate   *bool   `json:"isDuplicate,omitempty"`
	WantToBuy     *bool   `json:"wantToBuy,omitempty"`
}

// Apply merges the present fields of p into m.
func (p MangaPatch) Apply(m *Manga) {
	setString(&m.Title, p.Title)
	setString(&m.Volume, p.Volume)
	setString(&m.Genre, p.Genre)
	setString(&m.Author, p.Author)
	setString(&m.Publisher, p.Publisher)
	setString(&m.ISBN, p.ISBN)
	setString(&m.Language, p.Language)
	setString(&m.CoverImageURL, p.CoverImageURL)
	setBool(&m.IsRead, p.IsRead)
	setBool(&m.IsDuplicate, p.IsDuplicate)
	setBool(&m.WantToBuy, p.WantToBuy)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
