package manga

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"mangashelf/pkg/models"
)

const (
	DefaultLanguage  = "Deutsch"
	PlaceholderCover = "/placeholder.svg?height=120&width=80"
)

// Fields is a loosely typed candidate record: a form body, a spreadsheet
// row after header resolution, or a metadata lookup result.
type Fields map[string]any

// fieldAliases lists accepted keys per logical field. Lookup is
// case-insensitive, first present alias wins.
var fieldAliases = struct {
	title, volume, genre, author, publisher, isbn, language, cover []string
	read, double, newBuy                                           []string
}{
	title:     []string{"title", "titel"},
	volume:    []string{"volume", "band"},
	genre:     []string{"genre"},
	author:    []string{"author", "autor"},
	publisher: []string{"publisher", "verlag"},
	isbn:      []string{"isbn"},
	language:  []string{"language", "sprache"},
	cover:     []string{"coverImageUrl", "coverImage", "cover_image_url"},
	read:      []string{"isRead", "read", "is_read"},
	double:    []string{"isDuplicate", "double", "is_duplicate"},
	newBuy:    []string{"wantToBuy", "newbuy", "new_buy", "want_to_buy"},
}

// Normalize fills defaults and coerces types, producing a complete candidate.
// It fails with a ValidationError when the title ends up empty.
func Normalize(f Fields) (models.MangaInput, error) {
	in := models.MangaInput{
		Title:         f.str(fieldAliases.title),
		Volume:        f.str(fieldAliases.volume),
		Genre:         f.str(fieldAliases.genre),
		Author:        f.str(fieldAliases.author),
		Publisher:     f.str(fieldAliases.publisher),
		ISBN:          f.str(fieldAliases.isbn),
		Language:      f.str(fieldAliases.language),
		CoverImageURL: f.str(fieldAliases.cover),
		IsRead:        Truthy(f.lookup(fieldAliases.read)),
		IsDuplicate:   Truthy(f.lookup(fieldAliases.double)),
		WantToBuy:     Truthy(f.lookup(fieldAliases.newBuy)),
	}
	if in.Language == "" {
		in.Language = DefaultLanguage
	}
	if in.CoverImageURL == "" {
		in.CoverImageURL = PlaceholderCover
	}
	if in.Title == "" {
		return models.MangaInput{}, NewValidationError("title", "Title is required")
	}
	return in, nil
}

// ValidatePatch rejects a patch that would blank out the title.
func ValidatePatch(p models.MangaPatch) error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return NewValidationError("title", "Title is required")
	}
	return nil
}

func (f Fields) lookup(aliases []string) any {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, a := range aliases {
		if v, ok := f[a]; ok && v != nil {
			return v
		}
		for _, k := range keys {
			if v := f[k]; v != nil && strings.EqualFold(k, a) {
				return v
			}
		}
	}
	return nil
}

func (f Fields) str(aliases []string) string {
	return Stringify(f.lookup(aliases))
}

// Stringify renders a scalar cell or form value as a trimmed string.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

// Truthy is the permissive boolean coercion used for form and spreadsheet values.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case int:
		return x != 0
	case int64:
		return x != 0
	case float64:
		return x != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "", "0", "false", "no", "nein", "n", "off":
			return false
		}
		return true
	default:
		return Truthy(fmt.Sprint(x))
	}
}
