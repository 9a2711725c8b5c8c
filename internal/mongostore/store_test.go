package mongostore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"outswap/internal/models"
	"outswap/internal/search"
)

var ts = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

func toD(t require.TestingT, v interface{}) bson.D {
	raw, err := bson.Marshal(v)
	require.NoError(t, err)
	var d bson.D
	require.NoError(t, bson.Unmarshal(raw, &d))
	return d
}

func TestOutfitDocRoundTripKeepsGeoOrder(t *testing.T) {
	o := models.Outfit{
		ID: "o1", Title: "Coat", Size: models.SizeL, Category: models.CategorySeasonal,
		Location:          models.Location{City: "Almaty", Latitude: 43.25, Longitude: 76.95},
		AvailabilityDates: []models.DateRange{{StartDate: ts, EndDate: ts.Add(24 * time.Hour)}},
		Available:         true, CreatedAt: ts, UpdatedAt: ts,
	}
	d := toOutfitDoc(o)
	require.NotNil(t, d.Location.Coordinates)
	assert.Equal(t, []float64{76.95, 43.25}, d.Location.Coordinates.Coordinates)

	back := d.model()
	assert.Equal(t, o.Location, back.Location)
	assert.Equal(t, o.AvailabilityDates, back.AvailabilityDates)

	o.Location = models.Location{City: "Nowhere"}
	assert.Nil(t, toOutfitDoc(o).Location.Coordinates)
}

func TestOutfitFilter(t *testing.T) {
	lo := 10.0
	f := outfitFilter(models.OutfitFilter{Query: "a+b", Category: models.CategoryCasual, MinPrice: &lo})

	assert.Equal(t, true, f["available"])
	assert.Equal(t, "casual", f["category"])
	assert.Equal(t, bson.M{"$gte": 10.0}, f["pricePerDay"])
	assert.NotContains(t, f, "size")

	or, ok := f["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 3)
	assert.Equal(t, bson.M{"title": primitive.Regex{Pattern: `a\+b`, Options: "i"}}, or[0])
	assert.Equal(t, bson.M{"description": primitive.Regex{Pattern: `(^|\W)a\+b(\W|$)`, Options: "i"}}, or[2])

	assert.NotContains(t, outfitFilter(models.OutfitFilter{Query: "  "}), "$or")
}

func TestListingSetLeavesAggregateAndIdentity(t *testing.T) {
	set := listingSet(toOutfitDoc(models.Outfit{
		ID: "o1", OwnerID: "u1", Title: "Coat", Rating: 4, TotalRatings: 3, CreatedAt: ts, UpdatedAt: ts,
	}))

	for _, key := range []string{"_id", "ownerId", "rating", "totalRatings", "createdAt"} {
		assert.NotContains(t, set, key)
	}
	assert.Equal(t, "Coat", set["title"])
	assert.Equal(t, ts, set["updatedAt"])
}

func TestStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("get outfit not found", func(mt *mtest.T) {
		s := New(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "outswap.outfits", mtest.FirstBatch))

		_, err := s.GetOutfitByID(context.Background(), "missing")
		assert.ErrorIs(mt, err, models.ErrOutfitNotFound)
	})

	mt.Run("find outfits", func(mt *mtest.T) {
		s := New(mt.DB)
		doc := toOutfitDoc(models.Outfit{
			ID: "o1", Title: "Coat", Category: models.CategorySeasonal, PricePerDay: 12, Available: true,
			Location: models.Location{Latitude: 43.25, Longitude: 76.95}, CreatedAt: ts, UpdatedAt: ts,
		})
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "outswap.outfits", mtest.FirstBatch, toD(mt, doc)))

		got, err := s.FindOutfits(context.Background(), models.OutfitFilter{Category: models.CategorySeasonal})
		require.NoError(mt, err)
		require.Len(mt, got, 1)
		assert.Equal(mt, 43.25, got[0].Location.Latitude)
		assert.True(mt, search.Matches(got[0], models.OutfitFilter{Category: models.CategorySeasonal}))
	})

	mt.Run("nearby outfits keep server order", func(mt *mtest.T) {
		s := New(mt.DB)
		near := toOutfitDoc(models.Outfit{ID: "near", Available: true, Location: models.Location{Latitude: 43.25, Longitude: 76.95}, CreatedAt: ts})
		far := toOutfitDoc(models.Outfit{ID: "far", Available: true, Location: models.Location{Latitude: 43.30, Longitude: 76.90}, CreatedAt: ts})
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "outswap.outfits", mtest.FirstBatch, toD(mt, near), toD(mt, far)))

		got, err := s.NearbyOutfits(context.Background(), 43.25, 76.95, search.DefaultRadius, search.NearbyLimit)
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, "near", got[0].ID)
		assert.Equal(mt, "far", got[1].ID)
	})

	mt.Run("update outfit returns stored aggregate", func(mt *mtest.T) {
		s := New(mt.DB)
		stored := toOutfitDoc(models.Outfit{
			ID: "o1", OwnerID: "u1", Title: "Coat v2", Rating: 5, TotalRatings: 1, Available: true, CreatedAt: ts, UpdatedAt: ts,
		})
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: toD(mt, stored)}))

		got, err := s.UpdateOutfit(context.Background(), models.Outfit{ID: "o1", Title: "Coat v2", Available: true, UpdatedAt: ts})
		require.NoError(mt, err)
		assert.Equal(mt, 5.0, got.Rating)
		assert.Equal(mt, 1, got.TotalRatings)
		assert.Equal(mt, "u1", got.OwnerID)
	})

	mt.Run("update missing outfit", func(mt *mtest.T) {
		s := New(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := s.UpdateOutfit(context.Background(), models.Outfit{ID: "nope"})
		assert.ErrorIs(mt, err, models.ErrOutfitNotFound)
	})

	mt.Run("transition applied", func(mt *mtest.T) {
		s := New(mt.DB)
		updated := toRentalDoc(models.Rental{
			ID: "r1", OutfitID: "o1", Status: models.RentalConfirmed, StartDate: ts, EndDate: ts, CreatedAt: ts, UpdatedAt: ts,
		})
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: toD(mt, updated)}))

		r, err := s.TransitionRental(context.Background(), "r1", models.RentalTransition{
			From: []models.RentalStatus{models.RentalPending}, To: models.RentalConfirmed, At: ts,
		})
		require.NoError(mt, err)
		assert.Equal(mt, models.RentalConfirmed, r.Status)
	})

	mt.Run("transition from wrong status", func(mt *mtest.T) {
		s := New(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, "outswap.rentals", mtest.FirstBatch, bson.D{{Key: "n", Value: int32(1)}}),
		)

		_, err := s.TransitionRental(context.Background(), "r1", models.RentalTransition{
			From: []models.RentalStatus{models.RentalActive}, To: models.RentalReturned, At: ts,
		})
		assert.ErrorIs(mt, err, models.ErrInvalidTransition)
	})

	mt.Run("transition on missing rental", func(mt *mtest.T) {
		s := New(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, "outswap.rentals", mtest.FirstBatch),
		)

		_, err := s.TransitionRental(context.Background(), "nope", models.RentalTransition{
			From: []models.RentalStatus{models.RentalActive}, To: models.RentalReturned, At: ts,
		})
		assert.ErrorIs(mt, err, models.ErrRentalNotFound)
	})

	mt.Run("recompute outfit aggregate", func(mt *mtest.T) {
		s := New(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "outswap.ratings", mtest.FirstBatch,
				bson.D{{Key: "_id", Value: nil}, {Key: "avg", Value: 4.5}, {Key: "count", Value: int32(2)}}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(1)}, bson.E{Key: "nModified", Value: int32(1)}),
		)

		target := models.RatingTarget{Kind: models.TargetOutfit, ID: "o1"}
		agg, err := s.RecomputeAggregate(context.Background(), target)
		require.NoError(mt, err)
		assert.Equal(mt, models.RatingAggregate{Target: target, Average: 4.5, Count: 2}, agg)
	})

	mt.Run("recompute for deleted outfit", func(mt *mtest.T) {
		s := New(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "outswap.ratings", mtest.FirstBatch),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(0)}, bson.E{Key: "nModified", Value: int32(0)}),
		)

		_, err := s.RecomputeAggregate(context.Background(), models.RatingTarget{Kind: models.TargetOutfit, ID: "gone"})
		assert.ErrorIs(mt, err, models.ErrOutfitNotFound)
	})
}
