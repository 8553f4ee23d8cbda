package models

// Stats summarizes the whole collection, independent of any query.
type Stats struct {
	Total       int            `json:"total"`
	Read        int            `json:"read"`
	Doubles     int            `json:"doubles"`
	NewBuys     int            `json:"newbuys"`
	ByGenre     map[string]int `json:"byGenre"`
	ByAuthor    map[string]int `json:"byAuthor"`
	ByPublisher map[string]int `json:"byPublisher"`
}

// Facets lists the distinct values usable as filter options.
type Facets struct {
	Genres     []string `json:"genres"`
	Authors    []string `json:"authors"`
	Publishers []string `json:"publishers"`
	Languages  []string `json:"languages"`
	Volumes    []string `json:"volumes"`
}

// Page is one slice of a query result.
type Page struct {
	Items      []Manga `json:"items"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	PageSize   int     `json:"pageSize"`
	TotalPages int     `json:"totalPages"`
}
