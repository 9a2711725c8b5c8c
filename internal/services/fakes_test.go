package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"outswap/internal/models"
	"outswap/internal/search"
)

type fakeStore struct {
	mu      sync.Mutex
	seq     int
	outfits map[string]models.Outfit
	rentals map[string]models.Rental
	ratings map[string]models.Rating
	users   map[string]models.RatingAggregate

	recomputes   int
	recomputeErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		outfits: map[string]models.Outfit{},
		rentals: map[string]models.Rental{},
		ratings: map[string]models.Rating{},
		users:   map[string]models.RatingAggregate{},
	}
}

func (f *fakeStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s%d", prefix, f.seq)
}

func (f *fakeStore) CreateOutfit(_ context.Context, o models.Outfit) (models.Outfit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o.ID = f.nextID("o")
	f.outfits[o.ID] = o
	return o, nil
}

func (f *fakeStore) GetOutfitByID(_ context.Context, id string) (models.Outfit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.outfits[id]
	if !ok {
		return models.Outfit{}, models.ErrOutfitNotFound
	}
	return o, nil
}

func (f *fakeStore) GetOutfitsByIDs(_ context.Context, ids []string) ([]models.Outfit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Outfit
	for _, id := range ids {
		if o, ok := f.outfits[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeStore) ListOutfitsByOwner(_ context.Context, ownerID string) ([]models.Outfit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Outfit
	for _, o := range f.outfits {
		if o.OwnerID == ownerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeStore) FindOutfits(_ context.Context, filter models.OutfitFilter) ([]models.Outfit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Outfit
	for _, o := range f.outfits {
		if search.Matches(o, filter) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateOutfit(_ context.Context, o models.Outfit) (models.Outfit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.outfits[o.ID]
	if !ok {
		return models.Outfit{}, models.ErrOutfitNotFound
	}
	o.OwnerID, o.CreatedAt = cur.OwnerID, cur.CreatedAt
	o.Rating, o.TotalRatings = cur.Rating, cur.TotalRatings
	f.outfits[o.ID] = o
	return o, nil
}

func (f *fakeStore) DeleteOutfit(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.outfits[id]; !ok {
		return models.ErrOutfitNotFound
	}
	delete(f.outfits, id)
	return nil
}

func (f *fakeStore) CreateRental(_ context.Context, r models.Rental) (models.Rental, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.ID = f.nextID("r")
	f.rentals[r.ID] = r
	return r, nil
}

func (f *fakeStore) GetRentalByID(_ context.Context, id string) (models.Rental, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rentals[id]
	if !ok {
		return models.Rental{}, models.ErrRentalNotFound
	}
	return r, nil
}

func (f *fakeStore) listRentals(match func(models.Rental) bool) []models.Rental {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Rental
	for _, r := range f.rentals {
		if match(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeStore) ListRentalsByRenter(_ context.Context, id string) ([]models.Rental, error) {
	return f.listRentals(func(r models.Rental) bool { return r.RenterID == id }), nil
}

func (f *fakeStore) ListRentalsByOwner(_ context.Context, id string) ([]models.Rental, error) {
	return f.listRentals(func(r models.Rental) bool { return r.OwnerID == id }), nil
}

func (f *fakeStore) ListDueRentals(_ context.Context, now time.Time) ([]models.Rental, error) {
	return f.listRentals(func(r models.Rental) bool {
		return r.Status == models.RentalConfirmed && !r.StartDate.After(now)
	}), nil
}

// TransitionRental mirrors the guarded single-statement update of the real stores.
func (f *fakeStore) TransitionRental(_ context.Context, id string, t models.RentalTransition) (models.Rental, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rentals[id]
	if !ok {
		return models.Rental{}, models.ErrRentalNotFound
	}
	allowed := false
	for _, s := range t.From {
		if r.Status == s {
			allowed = true
		}
	}
	if !allowed {
		return models.Rental{}, models.ErrInvalidTransition
	}
	r.Status = t.To
	r.UpdatedAt = t.At
	if t.CancelReason != nil {
		r.CancelReason = *t.CancelReason
	}
	if t.ReturnedAt != nil {
		r.ReturnedAt = t.ReturnedAt
	}
	f.rentals[id] = r
	return r, nil
}

func (f *fakeStore) CreateRating(_ context.Context, r models.Rating) (models.Rating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.ID = f.nextID("rt")
	f.ratings[r.ID] = r
	return r, nil
}

func (f *fakeStore) GetRatingByID(_ context.Context, id string) (models.Rating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.ratings[id]
	if !ok {
		return models.Rating{}, models.ErrRatingNotFound
	}
	return r, nil
}

func (f *fakeStore) ListRatingsByTarget(_ context.Context, target models.RatingTarget) ([]models.Rating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Rating
	for _, r := range f.ratings {
		if r.Target == target {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateRating(_ context.Context, r models.Rating) (models.Rating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.ratings[r.ID]; !ok {
		return models.Rating{}, models.ErrRatingNotFound
	}
	f.ratings[r.ID] = r
	return r, nil
}

func (f *fakeStore) DeleteRating(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.ratings[id]; !ok {
		return models.ErrRatingNotFound
	}
	delete(f.ratings, id)
	return nil
}

func (f *fakeStore) RecomputeAggregate(_ context.Context, target models.RatingTarget) (models.RatingAggregate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recomputes++
	if f.recomputeErr != nil {
		return models.RatingAggregate{}, f.recomputeErr
	}

	sum, n := 0, 0
	for _, r := range f.ratings {
		if r.Target == target {
			sum += r.Rating
			n++
		}
	}
	agg := models.RatingAggregate{Target: target, Count: n}
	if n > 0 {
		agg.Average = float64(sum) / float64(n)
	}

	switch target.Kind {
	case models.TargetOutfit:
		o, ok := f.outfits[target.ID]
		if !ok {
			return models.RatingAggregate{}, models.ErrOutfitNotFound
		}
		o.Rating, o.TotalRatings = agg.Average, agg.Count
		f.outfits[target.ID] = o
	case models.TargetUser:
		f.users[target.ID] = agg
	default:
		return models.RatingAggregate{}, errors.New("unknown target kind")
	}
	return agg, nil
}

type fakeLocator struct {
	points map[string][2]float64
	err    error
}

func (l *fakeLocator) Index(_ context.Context, id string, lat, lon float64) error {
	if l.points == nil {
		l.points = map[string][2]float64{}
	}
	l.points[id] = [2]float64{lat, lon}
	return nil
}

func (l *fakeLocator) Remove(_ context.Context, id string) error {
	delete(l.points, id)
	return nil
}

func (l *fakeLocator) Nearby(_ context.Context, lat, lon, radius float64, limit int) ([]string, error) {
	if l.err != nil {
		return nil, l.err
	}
	var ids []string
	for id, p := range l.points {
		if models.DistanceMeters(lat, lon, p[0], p[1]) <= radius {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
