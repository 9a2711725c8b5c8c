package services

import (
	"context"
	"fmt"
	"time"

	"outswap/internal/metrics"
	"outswap/internal/models"
	"outswap/internal/search"
	"outswap/internal/validation"
)

type OutfitService struct {
	Store   OutfitStore
	Locator OutfitLocator
	Logger  Logger
	Now     func() time.Time
}

func (s *OutfitService) CreateOutfit(ctx context.Context, in models.OutfitInput) (models.Outfit, error) {
	if err := validation.Outfit(in).Err(); err != nil {
		return models.Outfit{}, err
	}

	now := nowFunc(s.Now)
	o := models.Outfit{OwnerID: in.OwnerID, Available: true, CreatedAt: now, UpdatedAt: now}
	applyInput(&o, in)

	created, err := s.Store.CreateOutfit(ctx, o)
	if err != nil {
		return models.Outfit{}, fmt.Errorf("create outfit: %w", err)
	}
	s.index(ctx, created)
	return created, nil
}

func (s *OutfitService) GetOutfitByID(ctx context.Context, id string) (models.Outfit, error) {
	return s.Store.GetOutfitByID(ctx, id)
}

func (s *OutfitService) ListOutfitsByOwner(ctx context.Context, ownerID string) ([]models.Outfit, error) {
	return s.Store.ListOutfitsByOwner(ctx, ownerID)
}

// UpdateOutfit merges the partial update into the stored listing and
// validates the result as a whole.
func (s *OutfitService) UpdateOutfit(ctx context.Context, id string, upd models.OutfitUpdate) (models.Outfit, error) {
	current, err := s.Store.GetOutfitByID(ctx, id)
	if err != nil {
		return models.Outfit{}, err
	}

	in := toInput(current)
	mergeUpdate(&in, upd)
	if err := validation.Outfit(in).Err(); err != nil {
		return models.Outfit{}, err
	}

	next := current
	applyInput(&next, in)
	if upd.Available != nil {
		next.Available = *upd.Available
	}
	next.UpdatedAt = nowFunc(s.Now)

	updated, err := s.Store.UpdateOutfit(ctx, next)
	if err != nil {
		return models.Outfit{}, fmt.Errorf("update outfit %s: %w", id, err)
	}
	if updated.Available {
		s.index(ctx, updated)
	} else {
		s.unindex(ctx, updated.ID)
	}
	return updated, nil
}

func (s *OutfitService) DeleteOutfit(ctx context.Context, id string) error {
	if err := s.Store.DeleteOutfit(ctx, id); err != nil {
		return err
	}
	s.unindex(ctx, id)
	return nil
}

// SearchOutfits validates the criteria, lets the store narrow the candidate
// set and then filters, ranks and paginates in process.
func (s *OutfitService) SearchOutfits(ctx context.Context, p models.SearchParams) (models.SearchResult, error) {
	if err := validation.SearchParams(p); err != nil {
		return models.SearchResult{}, err
	}
	p = search.Normalize(p)

	candidates, err := s.Store.FindOutfits(ctx, search.Filter(p))
	if err != nil {
		return models.SearchResult{}, fmt.Errorf("find outfits: %w", err)
	}
	res := search.Run(candidates, p)

	relevance := search.UsesRelevance(p)
	metrics.RecordSearch(relevance, res.Total)
	if s.Logger != nil {
		s.Logger.Infof("outfit search query=%q category=%q size=%q sort=%s relevance=%t page=%d total=%d returned=%d pages=%d",
			p.Query, p.Category, p.Size, p.SortBy, relevance, res.Page, res.Total, len(res.Items), res.TotalPages)
	}
	return res, nil
}

// NearbyOutfits lists available outfits within radius meters of the point,
// nearest first. A non-empty locator answer is used as is; an empty one or a
// locator error falls through to the native store index, then to a scan.
func (s *OutfitService) NearbyOutfits(ctx context.Context, lat, lon, radius float64) ([]models.Outfit, error) {
	if err := validation.SearchParams(models.SearchParams{
		Location: &models.Location{Latitude: lat, Longitude: lon},
		Radius:   radius,
	}); err != nil {
		return nil, err
	}
	if radius == 0 {
		radius = search.DefaultRadius
	}

	if s.Locator != nil {
		ids, err := s.Locator.Nearby(ctx, lat, lon, radius, search.NearbyLimit)
		switch {
		case err != nil:
			s.warnf("geo locator unavailable, falling back to store: %v", err)
		case len(ids) > 0:
			outfits, err := s.Store.GetOutfitsByIDs(ctx, ids)
			if err != nil {
				return nil, fmt.Errorf("load nearby outfits: %w", err)
			}
			if found := search.SortByDistance(availableOnly(outfits), lat, lon, radius, search.NearbyLimit); len(found) > 0 {
				return found, nil
			}
		}
	}

	if finder, ok := s.Store.(NearbyFinder); ok {
		return finder.NearbyOutfits(ctx, lat, lon, radius, search.NearbyLimit)
	}

	all, err := s.Store.FindOutfits(ctx, models.OutfitFilter{})
	if err != nil {
		return nil, fmt.Errorf("find outfits: %w", err)
	}
	return search.SortByDistance(availableOnly(all), lat, lon, radius, search.NearbyLimit), nil
}

// SyncLocator indexes every available outfit that has coordinates. It runs
// at startup so listings written while the locator was down become visible.
func (s *OutfitService) SyncLocator(ctx context.Context) (int, error) {
	if s.Locator == nil {
		return 0, nil
	}
	all, err := s.Store.FindOutfits(ctx, models.OutfitFilter{})
	if err != nil {
		return 0, fmt.Errorf("find outfits: %w", err)
	}

	n := 0
	for _, o := range availableOnly(all) {
		if !o.Location.HasCoordinates() {
			continue
		}
		if err := s.Locator.Index(ctx, o.ID, o.Location.Latitude, o.Location.Longitude); err != nil {
			return n, fmt.Errorf("index outfit %s location: %w", o.ID, err)
		}
		n++
	}
	return n, nil
}

func (s *OutfitService) index(ctx context.Context, o models.Outfit) {
	if s.Locator == nil || !o.Location.HasCoordinates() {
		return
	}
	if err := s.Locator.Index(ctx, o.ID, o.Location.Latitude, o.Location.Longitude); err != nil {
		s.warnf("index outfit %s location: %v", o.ID, err)
	}
}

func (s *OutfitService) unindex(ctx context.Context, id string) {
	if s.Locator == nil {
		return
	}
	if err := s.Locator.Remove(ctx, id); err != nil {
		s.warnf("remove outfit %s from geo index: %v", id, err)
	}
}

func (s *OutfitService) warnf(format string, args ...interface{}) {
	if s.Logger != nil {
		s.Logger.Warnf(format, args...)
	}
}

func availableOnly(outfits []models.Outfit) []models.Outfit {
	out := outfits[:0:0]
	for _, o := range outfits {
		if o.Available {
			out = append(out, o)
		}
	}
	return out
}

// applyInput copies validated input onto the outfit. Dates were checked by
// validation so parse errors are impossible here.
func applyInput(o *models.Outfit, in models.OutfitInput) {
	o.Title = in.Title
	o.Description = in.Description
	o.Images = in.Images
	o.Size = in.Size
	o.Category = in.Category
	o.StyleTags = in.StyleTags
	o.PricePerHour = *in.PricePerHour
	o.PricePerDay = *in.PricePerDay
	o.Location = *in.Location

	o.AvailabilityDates = make([]models.DateRange, 0, len(in.AvailabilityDates))
	for _, r := range in.AvailabilityDates {
		start, _ := validation.ParseTime(r.StartDate)
		end, _ := validation.ParseTime(r.EndDate)
		o.AvailabilityDates = append(o.AvailabilityDates, models.DateRange{StartDate: start, EndDate: end})
	}
}

func toInput(o models.Outfit) models.OutfitInput {
	perHour, perDay, loc := o.PricePerHour, o.PricePerDay, o.Location
	in := models.OutfitInput{
		OwnerID:      o.OwnerID,
		Title:        o.Title,
		Description:  o.Description,
		Images:       o.Images,
		Size:         o.Size,
		Category:     o.Category,
		StyleTags:    o.StyleTags,
		PricePerHour: &perHour,
		PricePerDay:  &perDay,
		Location:     &loc,
	}
	for _, r := range o.AvailabilityDates {
		in.AvailabilityDates = append(in.AvailabilityDates, models.DateRangeInput{
			StartDate: r.StartDate.Format(time.RFC3339),
			EndDate:   r.EndDate.Format(time.RFC3339),
		})
	}
	return in
}

func mergeUpdate(in *models.OutfitInput, upd models.OutfitUpdate) {
	if upd.Title != nil {
		in.Title = *upd.Title
	}
	if upd.Description != nil {
		in.Description = *upd.Description
	}
	if upd.Images != nil {
		in.Images = upd.Images
	}
	if upd.Size != nil {
		in.Size = *upd.Size
	}
	if upd.Category != nil {
		in.Category = *upd.Category
	}
	if upd.StyleTags != nil {
		in.StyleTags = upd.StyleTags
	}
	if upd.PricePerHour != nil {
		in.PricePerHour = upd.PricePerHour
	}
	if upd.PricePerDay != nil {
		in.PricePerDay = upd.PricePerDay
	}
	if upd.Location != nil {
		in.Location = upd.Location
	}
	if upd.AvailabilityDates != nil {
		in.AvailabilityDates = upd.AvailabilityDates
	}
}
