package models

// Metadata is the provider-independent result of an ISBN lookup.
//
// Every provider maps its own response shape into this structure; nothing
// outside the provider code looks at raw provider JSON.
type Metadata struct {
	ISBN          string `json:"isbn"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	Publisher     string `json:"publisher"`
	Genre         string `json:"genre"`
	Language      string `json:"language"`
	CoverImageURL string `json:"coverImageUrl"`
	Description   string `json:"description,omitempty"`
	Source        string `json:"source"` // provider name
}
