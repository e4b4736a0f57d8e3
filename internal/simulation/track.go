package simulation

import (
	"sort"

	"github.com/dguillot-gh/Sports-Betting-Analyzer/internal/models"
)

// Track categories used as split fallbacks.
const (
	CategoryPaved = "paved"
	CategoryRoad  = "road"
)

// DefaultTrackCategories maps the track types offered to callers onto the
// generalized category recorded in split data.
func DefaultTrackCategories() map[string]string {
	return map[string]string{
		"Intermediate":  CategoryPaved,
		"Short Track":   CategoryPaved,
		"Superspeedway": CategoryPaved,
		"Flat":          CategoryPaved,
		"Concrete":      CategoryPaved,
		"Road Course":   CategoryRoad,
	}
}

// TrackCatalog resolves a requested track type into the ordered split keys
// tried by the strength estimator.
type TrackCatalog struct {
	categories map[string]string
	known      map[string]struct{}
}

// NewTrackCatalog builds a catalog from a track type -> category map.
func NewTrackCatalog(categories map[string]string) TrackCatalog {
	c := TrackCatalog{
		categories: make(map[string]string, len(categories)),
		known:      make(map[string]struct{}),
	}
	for trackType, category := range categories {
		c.categories[trackType] = category
		c.known[category] = struct{}{}
	}
	return c
}

// SplitKeys returns the split lookup order for trackType: the exact type first,
// then its category. Unknown track types are rejected.
func (c TrackCatalog) SplitKeys(trackType string) ([]string, error) {
	if category, ok := c.categories[trackType]; ok {
		if category == trackType {
			return []string{trackType}, nil
		}
		return []string{trackType, category}, nil
	}
	if _, ok := c.known[trackType]; ok {
		return []string{trackType}, nil
	}
	return nil, models.NewInvalidRequestError("track_type", "unknown track type "+quote(trackType)+" with no fallback category")
}

// TrackTypes lists the accepted track types in lexical order.
func (c TrackCatalog) TrackTypes() []string {
	types := make([]string, 0, len(c.categories)+len(c.known))
	for trackType := range c.categories {
		types = append(types, trackType)
	}
	for category := range c.known {
		if _, dup := c.categories[category]; !dup {
			types = append(types, category)
		}
	}
	sort.Strings(types)
	return types
}

func quote(s string) string {
	return "'" + s + "'"
}
