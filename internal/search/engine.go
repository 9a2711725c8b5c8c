// Package search filters, ranks and paginates outfit listings.
package search

import (
	"sort"

	"outswap/internal/models"
)

const (
	// DefaultRadius is used when a location is given without a radius (5 miles).
	DefaultRadius = 8046.72
	// NearbyLimit caps the nearby listing.
	NearbyLimit = 50
)

// Normalize clamps paging and fills the defaults the engine relies on.
func Normalize(p models.SearchParams) models.SearchParams {
	if p.Page < 1 {
		p.Page = 1
	}
	switch {
	case p.Limit <= 0:
		p.Limit = models.DefaultSearchLimit
	case p.Limit > models.MaxSearchLimit:
		p.Limit = models.MaxSearchLimit
	}
	if p.SortBy == "" {
		p.SortBy = models.SortNewest
	}
	if p.Location != nil && !p.Location.HasCoordinates() {
		p.Location = nil
	}
	if p.Location != nil && p.Radius == 0 {
		p.Radius = DefaultRadius
	}
	return p
}

// Filter extracts the structured predicate a store can push down.
func Filter(p models.SearchParams) models.OutfitFilter {
	return models.OutfitFilter{
		Query:    p.Query,
		Category: p.Category,
		Size:     p.Size,
		MinPrice: p.MinPrice,
		MaxPrice: p.MaxPrice,
	}
}

// Matches applies the AND of every structured filter plus the free-text
// predicate. Only available outfits match.
func Matches(o models.Outfit, f models.OutfitFilter) bool {
	if !o.Available {
		return false
	}
	if f.Category != "" && o.Category != f.Category {
		return false
	}
	if f.Size != "" && o.Size != f.Size {
		return false
	}
	if f.MinPrice != nil && o.PricePerDay < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && o.PricePerDay > *f.MaxPrice {
		return false
	}
	if t := NewTerm(f.Query); t != nil && !t.Matches(o) {
		return false
	}
	return true
}

// UsesRelevance reports whether relevance ranking governs the order.
func UsesRelevance(p models.SearchParams) bool {
	return NewTerm(p.Query) != nil && (p.SortBy == "" || p.SortBy == models.SortNewest)
}

type candidate struct {
	outfit   models.Outfit
	score    int
	distance float64
}

// Run filters the candidates, orders them and returns the requested page.
// Params are normalized first, so callers may pass raw input that has
// already passed validation.
func Run(candidates []models.Outfit, p models.SearchParams) models.SearchResult {
	p = Normalize(p)
	filter := Filter(p)
	term := NewTerm(p.Query)

	matched := make([]candidate, 0, len(candidates))
	for _, o := range candidates {
		if !Matches(o, filter) {
			continue
		}
		c := candidate{outfit: o}
		if p.Location != nil {
			if !o.Location.HasCoordinates() {
				continue
			}
			c.distance = models.DistanceMeters(p.Location.Latitude, p.Location.Longitude,
				o.Location.Latitude, o.Location.Longitude)
			if c.distance > p.Radius {
				continue
			}
		}
		if term != nil {
			c.score = term.Score(o)
		}
		matched = append(matched, c)
	}

	order(matched, p)

	res := models.SearchResult{
		Items: []models.Outfit{},
		Total: len(matched),
		Page:  p.Page,
		Limit: p.Limit,
	}
	res.TotalPages = (res.Total + p.Limit - 1) / p.Limit

	skip := (p.Page - 1) * p.Limit
	if skip < len(matched) {
		end := skip + p.Limit
		if end > len(matched) {
			end = len(matched)
		}
		for _, c := range matched[skip:end] {
			res.Items = append(res.Items, c.outfit)
		}
	}
	return res
}

func order(cs []candidate, p models.SearchParams) {
	// newest first is the baseline every other ordering is stable over
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i].outfit, cs[j].outfit
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	var less func(a, b candidate) bool
	switch {
	case UsesRelevance(p):
		less = func(a, b candidate) bool { return a.score > b.score }
	case p.SortBy == models.SortPriceLow:
		less = func(a, b candidate) bool { return a.outfit.PricePerDay < b.outfit.PricePerDay }
	case p.SortBy == models.SortPriceHigh:
		less = func(a, b candidate) bool { return a.outfit.PricePerDay > b.outfit.PricePerDay }
	case p.SortBy == models.SortRatingHigh:
		less = func(a, b candidate) bool { return a.outfit.Rating > b.outfit.Rating }
	case p.SortBy == models.SortProximity && p.Location != nil:
		less = func(a, b candidate) bool { return a.distance < b.distance }
	default:
		return
	}
	sort.SliceStable(cs, func(i, j int) bool { return less(cs[i], cs[j]) })
}

// SortByDistance orders outfits nearest first from the given point and
// drops those without coordinates or beyond radius. At most limit are kept.
func SortByDistance(outfits []models.Outfit, lat, lon, radius float64, limit int) []models.Outfit {
	cs := make([]candidate, 0, len(outfits))
	for _, o := range outfits {
		if !o.Location.HasCoordinates() {
			continue
		}
		d := models.DistanceMeters(lat, lon, o.Location.Latitude, o.Location.Longitude)
		if d > radius {
			continue
		}
		cs = append(cs, candidate{outfit: o, distance: d})
	}
	sort.SliceStable(cs, func(i, j int) bool { return cs[i].distance < cs[j].distance })

	if limit > 0 && len(cs) > limit {
		cs = cs[:limit]
	}
	out := make([]models.Outfit, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.outfit)
	}
	return out
}
