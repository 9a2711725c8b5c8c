package services

import (
	"context"
	"time"

	"outswap/internal/models"
)

// Logger is the logging surface services need. *logrus.Logger satisfies it.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// OutfitStore persists listings. FindOutfits returns available outfits
// matching the pushed-down filter; callers re-apply the predicate.
type OutfitStore interface {
	CreateOutfit(ctx context.Context, o models.Outfit) (models.Outfit, error)
	GetOutfitByID(ctx context.Context, id string) (models.Outfit, error)
	GetOutfitsByIDs(ctx context.Context, ids []string) ([]models.Outfit, error)
	ListOutfitsByOwner(ctx context.Context, ownerID string) ([]models.Outfit, error)
	FindOutfits(ctx context.Context, f models.OutfitFilter) ([]models.Outfit, error)
	UpdateOutfit(ctx context.Context, o models.Outfit) (models.Outfit, error)
	DeleteOutfit(ctx context.Context, id string) error
}

// NearbyFinder is implemented by stores with a native geo index.
type NearbyFinder interface {
	NearbyOutfits(ctx context.Context, lat, lon, radius float64, limit int) ([]models.Outfit, error)
}

// OutfitLocator is an external geo index keyed by outfit id.
type OutfitLocator interface {
	Index(ctx context.Context, id string, lat, lon float64) error
	Remove(ctx context.Context, id string) error
	Nearby(ctx context.Context, lat, lon, radius float64, limit int) ([]string, error)
}

// RentalStore persists rentals. TransitionRental applies the change only
// when the current status is in t.From and reports ErrRentalNotFound or
// ErrInvalidTransition otherwise.
type RentalStore interface {
	CreateRental(ctx context.Context, r models.Rental) (models.Rental, error)
	GetRentalByID(ctx context.Context, id string) (models.Rental, error)
	ListRentalsByRenter(ctx context.Context, renterID string) ([]models.Rental, error)
	ListRentalsByOwner(ctx context.Context, ownerID string) ([]models.Rental, error)
	TransitionRental(ctx context.Context, id string, t models.RentalTransition) (models.Rental, error)
	ListDueRentals(ctx context.Context, now time.Time) ([]models.Rental, error)
}

// RatingStore persists ratings and the aggregates derived from them.
// RecomputeAggregate recalculates the average and count for a target and
// writes them onto it.
type RatingStore interface {
	CreateRating(ctx context.Context, r models.Rating) (models.Rating, error)
	GetRatingByID(ctx context.Context, id string) (models.Rating, error)
	ListRatingsByTarget(ctx context.Context, target models.RatingTarget) ([]models.Rating, error)
	UpdateRating(ctx context.Context, r models.Rating) (models.Rating, error)
	DeleteRating(ctx context.Context, id string) error
	RecomputeAggregate(ctx context.Context, target models.RatingTarget) (models.RatingAggregate, error)
}

func nowFunc(f func() time.Time) time.Time {
	if f != nil {
		return f().UTC()
	}
	return time.Now().UTC()
}
