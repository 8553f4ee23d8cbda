package metadata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mangashelf/internal/manga"
	"mangashelf/pkg/models"
)

// Provider looks up one ISBN in an external bibliographic service and maps
// its response into models.Metadata.
//
// Lookup returns manga.ErrNotFound when the service has no entry and an
// error wrapping manga.ErrUpstream when the service could not be asked.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, isbn string) (*models.Metadata, error)
}

// DefaultLanguage is filled in when a provider reports no language.
const DefaultLanguage = "de"

// joinDelim joins multi-valued provider fields (authors, categories).
const joinDelim = ", "

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// getJSON performs a GET and hands the body to decode on 200.
func getJSON(ctx context.Context, client *http.Client, provider, endpoint string, decode func(io.Reader) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", provider, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: do request: %w: %w", provider, manga.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return manga.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s: status %d: %s: %w", provider, resp.StatusCode, strings.TrimSpace(string(body)), manga.ErrUpstream)
	}

	if err := decode(resp.Body); err != nil {
		return fmt.Errorf("%s: decode json: %w: %w", provider, manga.ErrUpstream, err)
	}
	return nil
}

func joinNonEmpty(values []string) string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return strings.Join(out, joinDelim)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
