package mongostore

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"outswap/internal/models"
)

type geoPoint struct {
	Type        string    `bson:"type"`
	Coordinates []float64 `bson:"coordinates"`
}

type locationDoc struct {
	Address     string    `bson:"address,omitempty"`
	City        string    `bson:"city"`
	State       string    `bson:"state"`
	ZipCode     string    `bson:"zipCode"`
	Country     string    `bson:"country"`
	Coordinates *geoPoint `bson:"coordinates,omitempty"`
}

type dateRangeDoc struct {
	StartDate time.Time `bson:"startDate"`
	EndDate   time.Time `bson:"endDate"`
}

type outfitDoc struct {
	ID                string         `bson:"_id"`
	OwnerID           string         `bson:"ownerId"`
	Title             string         `bson:"title"`
	Description       string         `bson:"description"`
	Images            []string       `bson:"images"`
	Size              string         `bson:"size"`
	Category          string         `bson:"category"`
	StyleTags         []string       `bson:"styleTags"`
	PricePerHour      float64        `bson:"pricePerHour"`
	PricePerDay       float64        `bson:"pricePerDay"`
	Location          locationDoc    `bson:"location"`
	AvailabilityDates []dateRangeDoc `bson:"availabilityDates"`
	Rating            float64        `bson:"rating"`
	TotalRatings      int            `bson:"totalRatings"`
	Available         bool           `bson:"available"`
	CreatedAt         time.Time      `bson:"createdAt"`
	UpdatedAt         time.Time      `bson:"updatedAt"`
}

type rentalDoc struct {
	ID           string     `bson:"_id"`
	OutfitID     string     `bson:"outfitId"`
	RenterID     string     `bson:"renterId"`
	OwnerID      string     `bson:"ownerId"`
	StartDate    time.Time  `bson:"startDate"`
	EndDate      time.Time  `bson:"endDate"`
	TotalPrice   float64    `bson:"totalPrice"`
	Status       string     `bson:"status"`
	Notes        string     `bson:"notes,omitempty"`
	CancelReason string     `bson:"cancelReason,omitempty"`
	ReturnedAt   *time.Time `bson:"returnedAt,omitempty"`
	CreatedAt    time.Time  `bson:"createdAt"`
	UpdatedAt    time.Time  `bson:"updatedAt"`
}

type targetDoc struct {
	Kind string `bson:"kind"`
	ID   string `bson:"id"`
}

type ratingDoc struct {
	ID         string     `bson:"_id"`
	Rating     int        `bson:"rating"`
	Comment    string     `bson:"comment,omitempty"`
	FromUserID string     `bson:"fromUserId"`
	Target     targetDoc  `bson:"target"`
	RentalID   string     `bson:"rentalId,omitempty"`
	CreatedAt  time.Time  `bson:"createdAt"`
	UpdatedAt  *time.Time `bson:"updatedAt,omitempty"`
}

// listingSet lists the owner-editable fields. ownerId, createdAt, rating
// and totalRatings are left out.
func listingSet(d outfitDoc) bson.M {
	return bson.M{
		"title":             d.Title,
		"description":       d.Description,
		"images":            d.Images,
		"size":              d.Size,
		"category":          d.Category,
		"styleTags":         d.StyleTags,
		"pricePerHour":      d.PricePerHour,
		"pricePerDay":       d.PricePerDay,
		"location":          d.Location,
		"availabilityDates": d.AvailabilityDates,
		"available":         d.Available,
		"updatedAt":         d.UpdatedAt,
	}
}

// GeoJSON orders coordinates as [longitude, latitude].
func toOutfitDoc(o models.Outfit) outfitDoc {
	d := outfitDoc{
		ID:           o.ID,
		OwnerID:      o.OwnerID,
		Title:        o.Title,
		Description:  o.Description,
		Images:       o.Images,
		Size:         string(o.Size),
		Category:     string(o.Category),
		StyleTags:    o.StyleTags,
		PricePerHour: o.PricePerHour,
		PricePerDay:  o.PricePerDay,
		Location: locationDoc{
			Address: o.Location.Address,
			City:    o.Location.City,
			State:   o.Location.State,
			ZipCode: o.Location.ZipCode,
			Country: o.Location.Country,
		},
		Rating:       o.Rating,
		TotalRatings: o.TotalRatings,
		Available:    o.Available,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
	if o.Location.HasCoordinates() {
		d.Location.Coordinates = &geoPoint{
			Type:        "Point",
			Coordinates: []float64{o.Location.Longitude, o.Location.Latitude},
		}
	}
	for _, r := range o.AvailabilityDates {
		d.AvailabilityDates = append(d.AvailabilityDates, dateRangeDoc{StartDate: r.StartDate, EndDate: r.EndDate})
	}
	return d
}

func (d outfitDoc) model() models.Outfit {
	o := models.Outfit{
		ID:           d.ID,
		OwnerID:      d.OwnerID,
		Title:        d.Title,
		Description:  d.Description,
		Images:       d.Images,
		Size:         models.ClothingSize(d.Size),
		Category:     models.OutfitCategory(d.Category),
		StyleTags:    d.StyleTags,
		PricePerHour: d.PricePerHour,
		PricePerDay:  d.PricePerDay,
		Location: models.Location{
			Address: d.Location.Address,
			City:    d.Location.City,
			State:   d.Location.State,
			ZipCode: d.Location.ZipCode,
			Country: d.Location.Country,
		},
		AvailabilityDates: make([]models.DateRange, 0, len(d.AvailabilityDates)),
		Rating:            d.Rating,
		TotalRatings:      d.TotalRatings,
		Available:         d.Available,
		CreatedAt:         d.CreatedAt.UTC(),
		UpdatedAt:         d.UpdatedAt.UTC(),
	}
	if p := d.Location.Coordinates; p != nil && len(p.Coordinates) == 2 {
		o.Location.Longitude, o.Location.Latitude = p.Coordinates[0], p.Coordinates[1]
	}
	for _, r := range d.AvailabilityDates {
		o.AvailabilityDates = append(o.AvailabilityDates, models.DateRange{StartDate: r.StartDate.UTC(), EndDate: r.EndDate.UTC()})
	}
	return o
}

func toRentalDoc(r models.Rental) rentalDoc {
	return rentalDoc{
		ID:           r.ID,
		OutfitID:     r.OutfitID,
		RenterID:     r.RenterID,
		OwnerID:      r.OwnerID,
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
		TotalPrice:   r.TotalPrice,
		Status:       string(r.Status),
		Notes:        r.Notes,
		CancelReason: r.CancelReason,
		ReturnedAt:   r.ReturnedAt,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func (d rentalDoc) model() models.Rental {
	r := models.Rental{
		ID:           d.ID,
		OutfitID:     d.OutfitID,
		RenterID:     d.RenterID,
		OwnerID:      d.OwnerID,
		StartDate:    d.StartDate.UTC(),
		EndDate:      d.EndDate.UTC(),
		TotalPrice:   d.TotalPrice,
		Status:       models.RentalStatus(d.Status),
		Notes:        d.Notes,
		CancelReason: d.CancelReason,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
	if d.ReturnedAt != nil {
		t := d.ReturnedAt.UTC()
		r.ReturnedAt = &t
	}
	return r
}

func toRatingDoc(r models.Rating) ratingDoc {
	return ratingDoc{
		ID:         r.ID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		FromUserID: r.FromUserID,
		Target:     targetDoc{Kind: string(r.Target.Kind), ID: r.Target.ID},
		RentalID:   r.RentalID,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func (d ratingDoc) model() models.Rating {
	r := models.Rating{
		ID:         d.ID,
		Rating:     d.Rating,
		Comment:    d.Comment,
		FromUserID: d.FromUserID,
		Target:     models.RatingTarget{Kind: models.RatingTargetKind(d.Target.Kind), ID: d.Target.ID},
		RentalID:   d.RentalID,
		CreatedAt:  d.CreatedAt.UTC(),
	}
	if d.UpdatedAt != nil {
		t := d.UpdatedAt.UTC()
		r.UpdatedAt = &t
	}
	return r
}
