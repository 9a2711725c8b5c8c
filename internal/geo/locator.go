package geo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/redis/go-redis/v9"
)

const outfitsKey = "outfits:geo"

// OutfitLocator keeps listing coordinates in a Redis GEO set.
type OutfitLocator struct {
	rdb redis.Cmdable
}

func NewOutfitLocator(rdb redis.Cmdable) *OutfitLocator {
	return &OutfitLocator{rdb: rdb}
}

func memberName(outfitID string) string {
	return "outfit:" + outfitID
}

func parseMember(member string) (string, error) {
	id, ok := strings.CutPrefix(member, "outfit:")
	if !ok || id == "" {
		return "", fmt.Errorf("invalid member %q", member)
	}
	return id, nil
}

func checkCoords(lat, lon float64) error {
	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return fmt.Errorf("invalid coords lat=%.8f lon=%.8f", lat, lon)
	}
	if math.Abs(lon) < 1e-4 && math.Abs(lat) < 1e-4 {
		return fmt.Errorf("near-zero coords lat=%.8f lon=%.8f", lat, lon)
	}
	return nil
}

// Index adds or moves an outfit.
func (l *OutfitLocator) Index(ctx context.Context, id string, lat, lon float64) error {
	if err := checkCoords(lat, lon); err != nil {
		return err
	}
	return l.rdb.GeoAdd(ctx, outfitsKey, &redis.GeoLocation{
		Name:      memberName(id),
		Longitude: lon,
		Latitude:  lat,
	}).Err()
}

func (l *OutfitLocator) Remove(ctx context.Context, id string) error {
	return l.rdb.ZRem(ctx, outfitsKey, memberName(id)).Err()
}

// Nearby returns outfit ids within radius meters, nearest first.
func (l *OutfitLocator) Nearby(ctx context.Context, lat, lon, radius float64, limit int) ([]string, error) {
	res, err := l.rdb.GeoSearch(ctx, outfitsKey, &redis.GeoSearchQuery{
		Longitude:  lon,
		Latitude:   lat,
		Radius:     radius,
		RadiusUnit: "m",
		Sort:       "ASC",
		Count:      limit,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(res))
	for _, member := range res {
		id, err := parseMember(member)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
