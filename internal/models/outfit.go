package models

import "time"

type ClothingSize string

const (
	SizeXXS  ClothingSize = "XXS"
	SizeXS   ClothingSize = "XS"
	SizeS    ClothingSize = "S"
	SizeM    ClothingSize = "M"
	SizeL    ClothingSize = "L"
	SizeXL   ClothingSize = "XL"
	SizeXXL  ClothingSize = "XXL"
	SizeXXXL ClothingSize = "XXXL"
)

type OutfitCategory string

const (
	CategoryFormal     OutfitCategory = "formal"
	CategoryCasual     OutfitCategory = "casual"
	CategorySportswear OutfitCategory = "sportswear"
	CategoryParty      OutfitCategory = "party"
	CategoryBusiness   OutfitCategory = "business"
	CategoryWedding    OutfitCategory = "wedding"
	CategorySeasonal   OutfitCategory = "seasonal"
	CategoryOther      OutfitCategory = "other"
)

type DateRange struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

type Outfit struct {
	ID                string         `json:"id"`
	OwnerID           string         `json:"ownerId"`
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	Images            []string       `json:"images"`
	Size              ClothingSize   `json:"size"`
	Category          OutfitCategory `json:"category"`
	StyleTags         []string       `json:"styleTags"`
	PricePerHour      float64        `json:"pricePerHour"`
	PricePerDay       float64        `json:"pricePerDay"`
	Location          Location       `json:"location"`
	AvailabilityDates []DateRange    `json:"availabilityDates"`
	Rating            float64        `json:"rating"`
	TotalRatings      int            `json:"totalRatings"`
	Available         bool           `json:"available"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

// DateRangeInput keeps dates as raw strings so that unparseable values are
// reported per field instead of failing the whole body.
type DateRangeInput struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// OutfitInput is the body of a create request.
type OutfitInput struct {
	OwnerID           string           `json:"ownerId"`
	Title             string           `json:"title"`
	Description       string           `json:"description"`
	Images            []string         `json:"images"`
	Size              ClothingSize     `json:"size"`
	Category          OutfitCategory   `json:"category"`
	StyleTags         []string         `json:"styleTags"`
	PricePerHour      *float64         `json:"pricePerHour"`
	PricePerDay       *float64         `json:"pricePerDay"`
	Location          *Location        `json:"location"`
	AvailabilityDates []DateRangeInput `json:"availabilityDates"`
}

// OutfitUpdate is a partial update. Identity, ownership and the rating
// aggregate are not part of it and can never be overwritten by clients.
type OutfitUpdate struct {
	Title             *string          `json:"title"`
	Description       *string          `json:"description"`
	Images            []string         `json:"images"`
	Size              *ClothingSize    `json:"size"`
	Category          *OutfitCategory  `json:"category"`
	StyleTags         []string         `json:"styleTags"`
	PricePerHour      *float64         `json:"pricePerHour"`
	PricePerDay       *float64         `json:"pricePerDay"`
	Location          *Location        `json:"location"`
	AvailabilityDates []DateRangeInput `json:"availabilityDates"`
	Available         *bool            `json:"available"`
}
