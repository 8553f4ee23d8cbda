package manga

import (
	"sort"
	"strconv"
	"strings"

	"mangashelf/pkg/models"
	"mangashelf/pkg/utils"
)

// GenreTokens splits a genre field into trimmed, non-empty tags.
func GenreTokens(genre string) []string {
	parts := strings.Split(genre, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Aggregate computes the summary counts over the full record set.
func Aggregate(records []models.Manga) models.Stats {
	st := models.Stats{
		Total:       len(records),
		ByGenre:     map[string]int{},
		ByAuthor:    map[string]int{},
		ByPublisher: map[string]int{},
	}
	for _, m := range records {
		if m.IsRead {
			st.Read++
		}
		if m.IsDuplicate {
			st.Doubles++
		}
		if m.WantToBuy {
			st.NewBuys++
		}
		for _, g := range GenreTokens(m.Genre) {
			st.ByGenre[g]++
		}
		if m.Author != "" {
			st.ByAuthor[m.Author]++
		}
		if m.Publisher != "" {
			st.ByPublisher[m.Publisher]++
		}
	}
	return st
}

// BuildFacets collects the distinct filterable values of the collection.
func BuildFacets(records []models.Manga) models.Facets {
	genres := map[string]struct{}{}
	authors := map[string]struct{}{}
	publishers := map[string]struct{}{}
	languages := map[string]struct{}{}
	volumes := map[string]struct{}{}

	for _, m := range records {
		for _, g := range GenreTokens(m.Genre) {
			genres[g] = struct{}{}
		}
		addNonEmpty(authors, m.Author)
		addNonEmpty(publishers, m.Publisher)
		addNonEmpty(languages, m.Language)
		addNonEmpty(volumes, m.Volume)
	}

	vols := keys(volumes)
	sort.SliceStable(vols, func(i, j int) bool {
		a, errA := strconv.Atoi(vols[i])
		b, errB := strconv.Atoi(vols[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		}
		return vols[i] < vols[j]
	})

	return models.Facets{
		Genres:     collated(keys(genres)),
		Authors:    collated(keys(authors)),
		Publishers: collated(keys(publishers)),
		Languages:  collated(keys(languages)),
		Volumes:    vols,
	}
}

func addNonEmpty(set map[string]struct{}, v string) {
	if v = strings.TrimSpace(v); v != "" {
		set[v] = struct{}{}
	}
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func collated(values []string) []string {
	utils.NewCollator().SortStrings(values)
	return values
}
