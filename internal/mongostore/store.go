// Package mongostore keeps outfits, rentals and ratings in MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"outswap/internal/models"
	"outswap/internal/search"
)

const (
	outfitsCollection = "outfits"
	rentalsCollection = "rentals"
	ratingsCollection = "ratings"
	usersCollection   = "users"
)

// Logger receives index bootstrap warnings.
type Logger interface {
	Warnf(format string, args ...interface{})
}

type Store struct {
	DB *mongo.Database
}

func New(db *mongo.Database) *Store {
	return &Store{DB: db}
}

func (s *Store) outfits() *mongo.Collection { return s.DB.Collection(outfitsCollection) }
func (s *Store) rentals() *mongo.Collection { return s.DB.Collection(rentalsCollection) }
func (s *Store) ratings() *mongo.Collection { return s.DB.Collection(ratingsCollection) }
func (s *Store) users() *mongo.Collection   { return s.DB.Collection(usersCollection) }

// EnsureIndexes creates the geo, text and lookup indexes. Failures are
// logged and never stop startup.
func (s *Store) EnsureIndexes(ctx context.Context, log Logger) {
	specs := map[string][]mongo.IndexModel{
		outfitsCollection: {
			{Keys: bson.D{{Key: "location.coordinates", Value: "2dsphere"}}},
			{Keys: bson.D{{Key: "title", Value: "text"}, {Key: "description", Value: "text"}, {Key: "styleTags", Value: "text"}}},
			{Keys: bson.D{{Key: "ownerId", Value: 1}}},
			{Keys: bson.D{{Key: "available", Value: 1}, {Key: "category", Value: 1}, {Key: "size", Value: 1}}},
			{Keys: bson.D{{Key: "pricePerDay", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		rentalsCollection: {
			{Keys: bson.D{{Key: "renterId", Value: 1}}},
			{Keys: bson.D{{Key: "ownerId", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "startDate", Value: 1}}},
		},
		ratingsCollection: {
			{Keys: bson.D{{Key: "target.kind", Value: 1}, {Key: "target.id", Value: 1}}},
		},
	}
	for coll, idx := range specs {
		if _, err := s.DB.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil && log != nil {
			log.Warnf("create %s indexes: %v", coll, err)
		}
	}
}

func (s *Store) CreateOutfit(ctx context.Context, o models.Outfit) (models.Outfit, error) {
	o.ID = uuid.NewString()
	if _, err := s.outfits().InsertOne(ctx, toOutfitDoc(o)); err != nil {
		return models.Outfit{}, err
	}
	return o, nil
}

func (s *Store) GetOutfitByID(ctx context.Context, id string) (models.Outfit, error) {
	var d outfitDoc
	err := s.outfits().FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Outfit{}, models.ErrOutfitNotFound
	}
	if err != nil {
		return models.Outfit{}, err
	}
	return d.model(), nil
}

func (s *Store) GetOutfitsByIDs(ctx context.Context, ids []string) ([]models.Outfit, error) {
	if len(ids) == 0 {
		return []models.Outfit{}, nil
	}
	return s.findOutfits(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
}

func (s *Store) ListOutfitsByOwner(ctx context.Context, ownerID string) ([]models.Outfit, error) {
	return s.findOutfits(ctx, bson.M{"ownerId": ownerID}, newestFirst())
}

func (s *Store) FindOutfits(ctx context.Context, f models.OutfitFilter) ([]models.Outfit, error) {
	return s.findOutfits(ctx, outfitFilter(f), newestFirst())
}

// NearbyOutfits uses the 2dsphere index; $near returns nearest first.
func (s *Store) NearbyOutfits(ctx context.Context, lat, lon, radius float64, limit int) ([]models.Outfit, error) {
	filter := bson.M{
		"available": true,
		"location.coordinates": bson.M{
			"$near": bson.M{
				"$geometry":    bson.M{"type": "Point", "coordinates": bson.A{lon, lat}},
				"$maxDistance": radius,
			},
		},
	}
	return s.findOutfits(ctx, filter, options.Find().SetLimit(int64(limit)))
}

// UpdateOutfit sets the listing fields only, so a concurrent aggregate
// recompute is never overwritten.
func (s *Store) UpdateOutfit(ctx context.Context, o models.Outfit) (models.Outfit, error) {
	var d outfitDoc
	err := s.outfits().FindOneAndUpdate(ctx,
		bson.M{"_id": o.ID},
		bson.M{"$set": listingSet(toOutfitDoc(o))},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Outfit{}, models.ErrOutfitNotFound
	}
	if err != nil {
		return models.Outfit{}, err
	}
	return d.model(), nil
}

func (s *Store) DeleteOutfit(ctx context.Context, id string) error {
	res, err := s.outfits().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return models.ErrOutfitNotFound
	}
	return nil
}

func (s *Store) findOutfits(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Outfit, error) {
	var findOpts []*options.FindOptions
	if opts != nil {
		findOpts = append(findOpts, opts)
	}
	cur, err := s.outfits().Find(ctx, filter, findOpts...)
	if err != nil {
		return nil, err
	}
	var docs []outfitDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.Outfit, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

// outfitFilter mirrors the in-process predicate as a Mongo query.
func outfitFilter(f models.OutfitFilter) bson.M {
	filter := bson.M{"available": true}
	if f.Category != "" {
		filter["category"] = string(f.Category)
	}
	if f.Size != "" {
		filter["size"] = string(f.Size)
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		filter["pricePerDay"] = price
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		quoted := regexp.QuoteMeta(q)
		substr := primitive.Regex{Pattern: quoted, Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": substr},
			bson.M{"styleTags": substr},
			bson.M{"description": primitive.Regex{Pattern: search.WordPattern(q), Options: "i"}},
		}
	}
	return filter
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
}

func (s *Store) CreateRental(ctx context.Context, r models.Rental) (models.Rental, error) {
	r.ID = uuid.NewString()
	if _, err := s.rentals().InsertOne(ctx, toRentalDoc(r)); err != nil {
		return models.Rental{}, err
	}
	return r, nil
}

func (s *Store) GetRentalByID(ctx context.Context, id string) (models.Rental, error) {
	var d rentalDoc
	err := s.rentals().FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Rental{}, models.ErrRentalNotFound
	}
	if err != nil {
		return models.Rental{}, err
	}
	return d.model(), nil
}

func (s *Store) ListRentalsByRenter(ctx context.Context, renterID string) ([]models.Rental, error) {
	return s.findRentals(ctx, bson.M{"renterId": renterID}, newestFirst())
}

func (s *Store) ListRentalsByOwner(ctx context.Context, ownerID string) ([]models.Rental, error) {
	return s.findRentals(ctx, bson.M{"ownerId": ownerID}, newestFirst())
}

func (s *Store) ListDueRentals(ctx context.Context, now time.Time) ([]models.Rental, error) {
	filter := bson.M{"status": string(models.RentalConfirmed), "startDate": bson.M{"$lte": now}}
	return s.findRentals(ctx, filter, options.Find().SetSort(bson.D{{Key: "startDate", Value: 1}}))
}

// TransitionRental is one findAndModify guarded on the current status.
func (s *Store) TransitionRental(ctx context.Context, id string, t models.RentalTransition) (models.Rental, error) {
	from := make(bson.A, 0, len(t.From))
	for _, st := range t.From {
		from = append(from, string(st))
	}
	set := bson.M{"status": string(t.To), "updatedAt": t.At}
	if t.CancelReason != nil {
		set["cancelReason"] = *t.CancelReason
	}
	if t.ReturnedAt != nil {
		set["returnedAt"] = *t.ReturnedAt
	}

	var d rentalDoc
	err := s.rentals().FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": bson.M{"$in": from}},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&d)
	if err == nil {
		return d.model(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.Rental{}, err
	}

	n, err := s.rentals().CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return models.Rental{}, err
	}
	if n == 0 {
		return models.Rental{}, models.ErrRentalNotFound
	}
	return models.Rental{}, models.ErrInvalidTransition
}

func (s *Store) findRentals(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Rental, error) {
	cur, err := s.rentals().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []rentalDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.Rental, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (s *Store) CreateRating(ctx context.Context, r models.Rating) (models.Rating, error) {
	r.ID = uuid.NewString()
	if _, err := s.ratings().InsertOne(ctx, toRatingDoc(r)); err != nil {
		return models.Rating{}, err
	}
	return r, nil
}

func (s *Store) GetRatingByID(ctx context.Context, id string) (models.Rating, error) {
	var d ratingDoc
	err := s.ratings().FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Rating{}, models.ErrRatingNotFound
	}
	if err != nil {
		return models.Rating{}, err
	}
	return d.model(), nil
}

func (s *Store) ListRatingsByTarget(ctx context.Context, target models.RatingTarget) ([]models.Rating, error) {
	cur, err := s.ratings().Find(ctx, targetFilter(target), newestFirst())
	if err != nil {
		return nil, err
	}
	var docs []ratingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.Rating, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (s *Store) UpdateRating(ctx context.Context, r models.Rating) (models.Rating, error) {
	set := bson.M{"rating": r.Rating, "comment": r.Comment}
	if r.UpdatedAt != nil {
		set["updatedAt"] = *r.UpdatedAt
	}
	res, err := s.ratings().UpdateOne(ctx, bson.M{"_id": r.ID}, bson.M{"$set": set})
	if err != nil {
		return models.Rating{}, err
	}
	if res.MatchedCount == 0 {
		return models.Rating{}, models.ErrRatingNotFound
	}
	return r, nil
}

func (s *Store) DeleteRating(ctx context.Context, id string) error {
	res, err := s.ratings().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return models.ErrRatingNotFound
	}
	return nil
}

// RecomputeAggregate averages the target's ratings server side and writes
// the result onto the outfit, or upserts it into users.
func (s *Store) RecomputeAggregate(ctx context.Context, target models.RatingTarget) (models.RatingAggregate, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: targetFilter(target)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "avg", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := s.ratings().Aggregate(ctx, pipeline)
	if err != nil {
		return models.RatingAggregate{}, err
	}
	var rows []struct {
		Avg   float64 `bson:"avg"`
		Count int     `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return models.RatingAggregate{}, err
	}

	agg := models.RatingAggregate{Target: target}
	if len(rows) > 0 {
		agg.Average, agg.Count = rows[0].Avg, rows[0].Count
	}
	set := bson.M{"$set": bson.M{"rating": agg.Average, "totalRatings": agg.Count, "updatedAt": time.Now().UTC()}}

	switch target.Kind {
	case models.TargetOutfit:
		res, err := s.outfits().UpdateOne(ctx, bson.M{"_id": target.ID}, set)
		if err != nil {
			return models.RatingAggregate{}, err
		}
		if res.MatchedCount == 0 {
			return models.RatingAggregate{}, models.ErrOutfitNotFound
		}
	case models.TargetUser:
		_, err := s.users().UpdateOne(ctx, bson.M{"_id": target.ID}, set, options.Update().SetUpsert(true))
		if err != nil {
			return models.RatingAggregate{}, err
		}
	default:
		return models.RatingAggregate{}, fmt.Errorf("unknown rating target kind %q", target.Kind)
	}
	return agg, nil
}

func targetFilter(t models.RatingTarget) bson.M {
	return bson.M{"target.kind": string(t.Kind), "target.id": t.ID}
}
