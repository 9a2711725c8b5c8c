package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"outswap/internal/fsm"
	"outswap/internal/metrics"
	"outswap/internal/models"
	"outswap/internal/pricing"
	"outswap/internal/validation"
)

type RentalService struct {
	Rentals RentalStore
	Outfits OutfitStore
	Logger  Logger
	Now     func() time.Time
}

// CreateRental validates the request, prices it once from the outfit's
// current rates and stores it as pending.
func (s *RentalService) CreateRental(ctx context.Context, in models.RentalInput) (models.Rental, error) {
	now := nowFunc(s.Now)
	if err := validation.Rental(in, now).Err(); err != nil {
		return models.Rental{}, err
	}

	outfit, err := s.Outfits.GetOutfitByID(ctx, in.OutfitID)
	if err != nil {
		return models.Rental{}, err
	}
	if !outfit.Available {
		return models.Rental{}, &models.ValidationError{Fields: []models.FieldError{
			{Field: "outfitId", Message: "Outfit is not available for rent"},
		}}
	}

	start, _ := validation.ParseTime(in.StartDate)
	end, _ := validation.ParseTime(in.EndDate)

	rental := models.Rental{
		OutfitID:   outfit.ID,
		RenterID:   in.RenterID,
		OwnerID:    outfit.OwnerID,
		StartDate:  start,
		EndDate:    end,
		TotalPrice: pricing.Calculate(start, end, outfit.PricePerHour, outfit.PricePerDay),
		Status:     models.RentalPending,
		Notes:      in.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	created, err := s.Rentals.CreateRental(ctx, rental)
	if err != nil {
		return models.Rental{}, fmt.Errorf("create rental: %w", err)
	}
	return created, nil
}

func (s *RentalService) GetRentalByID(ctx context.Context, id string) (models.Rental, error) {
	return s.Rentals.GetRentalByID(ctx, id)
}

func (s *RentalService) ListRentalsByRenter(ctx context.Context, renterID string) ([]models.Rental, error) {
	return s.Rentals.ListRentalsByRenter(ctx, renterID)
}

func (s *RentalService) ListRentalsByOwner(ctx context.Context, ownerID string) ([]models.Rental, error) {
	return s.Rentals.ListRentalsByOwner(ctx, ownerID)
}

// ConfirmRental moves a pending rental to confirmed. When ownerID is set it
// must match the outfit owner recorded on the rental.
func (s *RentalService) ConfirmRental(ctx context.Context, id, ownerID string) (models.Rental, error) {
	if ownerID != "" {
		r, err := s.Rentals.GetRentalByID(ctx, id)
		if err != nil {
			return models.Rental{}, err
		}
		if r.OwnerID != ownerID {
			return models.Rental{}, models.ErrNotRentalOwner
		}
	}
	return s.transition(ctx, id, models.RentalTransition{To: models.RentalConfirmed})
}

// ActivateRental starts a confirmed rental once its start date is reached.
func (s *RentalService) ActivateRental(ctx context.Context, id string) (models.Rental, error) {
	r, err := s.Rentals.GetRentalByID(ctx, id)
	if err != nil {
		return models.Rental{}, err
	}
	if !fsm.CanTransition(r.Status, models.RentalActive) {
		return models.Rental{}, models.ErrInvalidTransition
	}
	if nowFunc(s.Now).Before(r.StartDate) {
		return models.Rental{}, models.ErrRentalNotStarted
	}
	return s.transition(ctx, id, models.RentalTransition{To: models.RentalActive})
}

func (s *RentalService) ReturnRental(ctx context.Context, id string) (models.Rental, error) {
	at := nowFunc(s.Now)
	return s.transition(ctx, id, models.RentalTransition{To: models.RentalReturned, ReturnedAt: &at})
}

func (s *RentalService) CancelRental(ctx context.Context, id, reason string) (models.Rental, error) {
	t := models.RentalTransition{To: models.RentalCancelled}
	if reason != "" {
		t.CancelReason = &reason
	}
	return s.transition(ctx, id, t)
}

// ActivateDue activates every confirmed rental whose start date has passed
// and returns how many were moved. Rentals changed concurrently are skipped.
func (s *RentalService) ActivateDue(ctx context.Context) (int, error) {
	now := nowFunc(s.Now)
	due, err := s.Rentals.ListDueRentals(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list due rentals: %w", err)
	}

	activated := 0
	for _, r := range due {
		if err := ctx.Err(); err != nil {
			return activated, err
		}
		_, err := s.transition(ctx, r.ID, models.RentalTransition{To: models.RentalActive})
		switch {
		case err == nil:
			activated++
		case errors.Is(err, models.ErrInvalidTransition), errors.Is(err, models.ErrRentalNotFound):
			if s.Logger != nil {
				s.Logger.Warnf("rental %s changed before activation: %v", r.ID, err)
			}
		default:
			return activated, fmt.Errorf("activate rental %s: %w", r.ID, err)
		}
	}
	return activated, nil
}

func (s *RentalService) transition(ctx context.Context, id string, t models.RentalTransition) (models.Rental, error) {
	t.From = fsm.Sources(t.To)
	t.At = nowFunc(s.Now)

	r, err := s.Rentals.TransitionRental(ctx, id, t)
	metrics.RecordTransition(string(t.To), err)
	if err != nil {
		return models.Rental{}, err
	}
	if s.Logger != nil {
		s.Logger.Infof("rental %s moved to %s", id, t.To)
	}
	return r, nil
}
