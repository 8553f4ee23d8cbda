package metadata

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mangashelf/internal/manga"
	"mangashelf/pkg/models"
)

// GoogleBooks is the primary provider.
type GoogleBooks struct {
	BaseURL string
	Client  *http.Client
}

func NewGoogleBooks(baseURL string, timeout time.Duration) *GoogleBooks {
	return &GoogleBooks{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  newHTTPClient(timeout),
	}
}

func (g *GoogleBooks) Name() string { return "googlebooks" }

// gbResponse is the subset of GET {BaseURL}/volumes?q=isbn:{isbn} we read.
type gbResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			Title       string   `json:"title"`
			Authors     []string `json:"authors"`
			Publisher   string   `json:"publisher"`
			Categories  []string `json:"categories"`
			Language    string   `json:"language"`
			Description string   `json:"description"`
			ImageLinks  *struct {
				Thumbnail      string `json:"thumbnail"`
				SmallThumbnail string `json:"smallThumbnail"`
			} `json:"imageLinks"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

func (g *GoogleBooks) Lookup(ctx context.Context, isbn string) (*models.Metadata, error) {
	endpoint := g.BaseURL + "/volumes?q=" + url.QueryEscape("isbn:"+isbn)

	var raw gbResponse
	err := getJSON(ctx, g.Client, g.Name(), endpoint, func(r io.Reader) error {
		return json.NewDecoder(r).Decode(&raw)
	})
	if err != nil {
		return nil, err
	}
	if raw.TotalItems == 0 || len(raw.Items) == 0 {
		return nil, manga.ErrNotFound
	}

	info := raw.Items[0].VolumeInfo
	md := &models.Metadata{
		ISBN:        isbn,
		Title:       info.Title,
		Author:      joinNonEmpty(info.Authors),
		Publisher:   info.Publisher,
		Genre:       joinNonEmpty(info.Categories),
		Language:    orDefault(info.Language, DefaultLanguage),
		Description: info.Description,
		Source:      g.Name(),
	}
	if info.ImageLinks != nil {
		md.CoverImageURL = orDefault(info.ImageLinks.Thumbnail, info.ImageLinks.SmallThumbnail)
	}
	return md, nil
}
