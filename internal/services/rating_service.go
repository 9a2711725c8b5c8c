package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"outswap/internal/metrics"
	"outswap/internal/models"
	"outswap/internal/validation"
)

// RatingService keeps each target's aggregate equal to the average and count
// of its ratings. Writes and recomputation for one target never interleave.
type RatingService struct {
	Ratings RatingStore
	Outfits OutfitStore
	Logger  Logger
	Now     func() time.Time

	locks keyedLock
}

func (s *RatingService) CreateRating(ctx context.Context, in models.RatingInput) (models.Rating, error) {
	in = in.Resolve()
	if err := validation.RatingInput(in).Err(); err != nil {
		return models.Rating{}, err
	}

	target := models.RatingTarget{Kind: models.RatingTargetKind(in.TargetType), ID: in.TargetID}
	if target.Kind == models.TargetOutfit {
		if _, err := s.Outfits.GetOutfitByID(ctx, target.ID); err != nil {
			return models.Rating{}, err
		}
	}

	unlock := s.locks.Lock(lockKey(target))
	defer unlock()

	created, err := s.Ratings.CreateRating(ctx, models.Rating{
		Rating:     int(math.Round(*in.Rating)),
		Comment:    in.Comment,
		FromUserID: in.FromUserID,
		Target:     target,
		RentalID:   in.RentalID,
		CreatedAt:  nowFunc(s.Now),
	})
	if err != nil {
		return models.Rating{}, fmt.Errorf("create rating: %w", err)
	}
	if _, err := s.recompute(ctx, target); err != nil {
		// a failed create leaves no rating behind
		if derr := s.Ratings.DeleteRating(ctx, created.ID); derr != nil && s.Logger != nil {
			s.Logger.Errorf("roll back rating %s: %v", created.ID, derr)
		}
		return models.Rating{}, err
	}
	return created, nil
}

func (s *RatingService) ListRatingsByTarget(ctx context.Context, target models.RatingTarget) ([]models.Rating, error) {
	return s.Ratings.ListRatingsByTarget(ctx, target)
}

func (s *RatingService) UpdateRating(ctx context.Context, id string, upd models.RatingUpdate) (models.Rating, error) {
	if err := validation.RatingUpdate(upd).Err(); err != nil {
		return models.Rating{}, err
	}

	existing, err := s.Ratings.GetRatingByID(ctx, id)
	if err != nil {
		return models.Rating{}, err
	}

	unlock := s.locks.Lock(lockKey(existing.Target))
	defer unlock()

	if upd.Rating != nil {
		existing.Rating = int(math.Round(*upd.Rating))
	}
	if upd.Comment != nil {
		existing.Comment = *upd.Comment
	}
	now := nowFunc(s.Now)
	existing.UpdatedAt = &now

	updated, err := s.Ratings.UpdateRating(ctx, existing)
	if err != nil {
		return models.Rating{}, err
	}
	if upd.Rating != nil {
		if _, err := s.recompute(ctx, existing.Target); err != nil {
			return models.Rating{}, err
		}
	}
	return updated, nil
}

func (s *RatingService) DeleteRating(ctx context.Context, id string) error {
	existing, err := s.Ratings.GetRatingByID(ctx, id)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(lockKey(existing.Target))
	defer unlock()

	if err := s.Ratings.DeleteRating(ctx, id); err != nil {
		return err
	}
	_, err = s.recompute(ctx, existing.Target)
	return err
}

func (s *RatingService) recompute(ctx context.Context, target models.RatingTarget) (models.RatingAggregate, error) {
	agg, err := s.Ratings.RecomputeAggregate(ctx, target)
	metrics.RecordRatingRecompute(string(target.Kind), err)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Errorf("recompute %s %s rating: %v", target.Kind, target.ID, err)
		}
		return models.RatingAggregate{}, fmt.Errorf("recompute rating aggregate: %w", err)
	}
	return agg, nil
}

func lockKey(t models.RatingTarget) string {
	return string(t.Kind) + ":" + t.ID
}
