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

// OpenLibrary is the fallback provider. Its response is an object keyed by
// bibkey rather than a result list.
type OpenLibrary struct {
	BaseURL string
	Client  *http.Client
}

func NewOpenLibrary(baseURL string, timeout time.Duration) *OpenLibrary {
	return &OpenLibrary{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  newHTTPClient(timeout),
	}
}

func (o *OpenLibrary) Name() string { return "openlibrary" }

// olBook is one value of GET {BaseURL}/api/books?bibkeys=ISBN:{isbn}&format=json&jscmd=data
type olBook struct {
	Title    string `json:"title"`
	Language string `json:"language"`
	Authors  []struct {
		Name string `json:"name"`
	} `json:"authors"`
	Publishers []struct {
		Name string `json:"name"`
	} `json:"publishers"`
	Cover *struct {
		Small  string `json:"small"`
		Medium string `json:"medium"`
		Large  string `json:"large"`
	} `json:"cover"`
	Excerpts []struct {
		Text string `json:"text"`
	} `json:"excerpts"`
}

func (o *OpenLibrary) Lookup(ctx context.Context, isbn string) (*models.Metadata, error) {
	key := "ISBN:" + isbn
	q := url.Values{}
	q.Set("bibkeys", key)
	q.Set("format", "json")
	q.Set("jscmd", "data")
	endpoint := o.BaseURL + "/api/books?" + q.Encode()

	var raw map[string]olBook
	err := getJSON(ctx, o.Client, o.Name(), endpoint, func(r io.Reader) error {
		return json.NewDecoder(r).Decode(&raw)
	})
	if err != nil {
		return nil, err
	}
	book, ok := raw[key]
	if !ok {
		return nil, manga.ErrNotFound
	}

	authors := make([]string, 0, len(book.Authors))
	for _, a := range book.Authors {
		authors = append(authors, a.Name)
	}

	md := &models.Metadata{
		ISBN:     isbn,
		Title:    book.Title,
		Author:   joinNonEmpty(authors),
		Language: orDefault(book.Language, DefaultLanguage),
		Source:   o.Name(),
	}
	if len(book.Publishers) > 0 {
		md.Publisher = book.Publishers[0].Name
	}
	if book.Cover != nil {
		md.CoverImageURL = orDefault(book.Cover.Medium, orDefault(book.Cover.Large, book.Cover.Small))
	}
	if len(book.Excerpts) > 0 {
		md.Description = book.Excerpts[0].Text
	}
	return md, nil
}
