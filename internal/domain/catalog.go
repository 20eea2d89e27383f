package domain

import (
	"encoding/json"
	"time"
)

// RawRecord is one element of the upstream "results" array, left undecoded
// until the normalizer looks at it.
type RawRecord = json.RawMessage

type MediaRef struct {
	ID     int64  `json:"id,omitempty"`
	URL    string `json:"url"`
	IsMain bool   `json:"isMain,omitempty"`
}

// CatalogEntry is the canonical form of one upstream exercise.
type CatalogEntry struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	DescriptionText  string     `json:"descriptionText,omitempty"`
	Category         string     `json:"category"`
	PrimaryMuscles   []string   `json:"primaryMuscles"`
	SecondaryMuscles []string   `json:"secondaryMuscles"`
	Equipment        []string   `json:"equipment"`
	Images           []MediaRef `json:"images"`
	Videos           []MediaRef `json:"videos"`
}

type CatalogSource string

const (
	CatalogSourceCache    CatalogSource = "cache"
	CatalogSourceUpstream CatalogSource = "upstream"
)

// CatalogIndex is an immutable snapshot of the de-duplicated, sorted exercise
// names. A new build produces a new value; existing values are never patched.
type CatalogIndex struct {
	Names          []string
	FetchedAt      time.Time
	PagesProcessed int
	Truncated      bool

	lookup map[string]struct{}
}

func NewCatalogIndex(names []string, fetchedAt time.Time, pagesProcessed int, truncated bool) *CatalogIndex {
	lookup := make(map[string]struct{}, len(names))
	for _, name := range names {
		lookup[name] = struct{}{}
	}
	return &CatalogIndex{
		Names:          names,
		FetchedAt:      fetchedAt,
		PagesProcessed: pagesProcessed,
		Truncated:      truncated,
		lookup:         lookup,
	}
}

// Contains reports exact, case-sensitive membership.
func (ci *CatalogIndex) Contains(name string) bool {
	if ci == nil {
		return false
	}
	_, ok := ci.lookup[name]
	return ok
}

func (ci *CatalogIndex) Len() int {
	if ci == nil {
		return 0
	}
	return len(ci.Names)
}
