package models

type SortOption string

const (
	SortNewest     SortOption = "newest"
	SortPriceLow   SortOption = "price-low"
	SortPriceHigh  SortOption = "price-high"
	SortRatingHigh SortOption = "rating-high"
	SortProximity  SortOption = "proximity"
)

const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
)

// SearchParams is the body of POST /outfits/search.
type SearchParams struct {
	Query    string         `json:"query"`
	Category OutfitCategory `json:"category" validate:"omitempty,oneof=formal casual sportswear party business wedding seasonal other"`
	Size     ClothingSize   `json:"size" validate:"omitempty,oneof=XXS XS S M L XL XXL XXXL"`
	MinPrice *float64       `json:"minPrice" validate:"omitempty,gte=0"`
	MaxPrice *float64       `json:"maxPrice" validate:"omitempty,gte=0"`
	Location *Location      `json:"location"`
	Radius   float64        `json:"radius" validate:"gte=0"`
	SortBy   SortOption     `json:"sortBy" validate:"omitempty,oneof=newest price-low price-high rating-high proximity"`
	Page     int            `json:"page"`
	Limit    int            `json:"limit"`
}

// OutfitFilter is the structured part of a search that stores push down.
// Only available outfits ever match.
type OutfitFilter struct {
	Query    string
	Category OutfitCategory
	Size     ClothingSize
	MinPrice *float64
	MaxPrice *float64
}

type SearchResult struct {
	Items      []Outfit `json:"items"`
	Total      int      `json:"total"`
	Page       int      `json:"page"`
	Limit      int      `json:"limit"`
	TotalPages int      `json:"totalPages"`
}
