package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bmizerany/pat"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outswap/internal/models"
)

func ratingMux(svc *stubRatings) *pat.PatternServeMux {
	h := NewRatingHandler(svc, testResponder())
	mux := pat.New()
	mux.Post("/api/ratings", http.HandlerFunc(h.CreateRating))
	mux.Get("/api/ratings/outfit/:id", http.HandlerFunc(h.GetOutfitRatings))
	mux.Get("/api/ratings/user/:id", http.HandlerFunc(h.GetUserRatings))
	mux.Put("/api/ratings/:id", http.HandlerFunc(h.UpdateRating))
	mux.Del("/api/ratings/:id", http.HandlerFunc(h.DeleteRating))
	return mux
}

func TestCreateRatingLegacyBody(t *testing.T) {
	svc := &stubRatings{create: func(in models.RatingInput) (models.Rating, error) {
		in = in.Resolve()
		assert.Equal(t, "outfit", in.TargetType)
		assert.Equal(t, "o1", in.TargetID)
		return models.Rating{ID: "rt1", Rating: 5, Target: models.RatingTarget{Kind: models.TargetOutfit, ID: in.TargetID}}, nil
	}}
	rec, env := serve(t, ratingMux(svc), http.MethodPost, "/api/ratings", `{"outfitId":"o1","rating":5,"fromUserId":"u1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, string(env.Data), `"kind":"outfit"`)
}

func TestListRatingsByTargetKind(t *testing.T) {
	var seen []models.RatingTarget
	svc := &stubRatings{list: func(target models.RatingTarget) ([]models.Rating, error) {
		seen = append(seen, target)
		return nil, nil
	}}
	mux := ratingMux(svc)

	rec, env := serve(t, mux, http.MethodGet, "/api/ratings/outfit/o1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(env.Data))

	rec, _ = serve(t, mux, http.MethodGet, "/api/ratings/user/u1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []models.RatingTarget{
		{Kind: models.TargetOutfit, ID: "o1"},
		{Kind: models.TargetUser, ID: "u1"},
	}, seen)
}

func TestUpdateAndDeleteRating(t *testing.T) {
	svc := &stubRatings{
		update: func(id string, upd models.RatingUpdate) (models.Rating, error) {
			if id == "missing" {
				return models.Rating{}, models.ErrRatingNotFound
			}
			require.NotNil(t, upd.Rating)
			return models.Rating{ID: id, Rating: int(*upd.Rating)}, nil
		},
		del: func(id string) error {
			return &mysql.MySQLError{Number: 1451, Message: "Cannot delete or update a parent row"}
		},
	}
	mux := ratingMux(svc)

	rec, env := serve(t, mux, http.MethodPut, "/api/ratings/rt1", `{"rating":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"rating":3`)

	rec, _ = serve(t, mux, http.MethodPut, "/api/ratings/missing", `{"rating":3}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = serve(t, mux, http.MethodDelete, "/api/ratings/rt1", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHealth(t *testing.T) {
	fixed := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	h := &HealthHandler{Now: func() time.Time { return fixed }, Responder: testResponder()}
	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{"status":"OK","timestamp":"2030-01-01T00:00:00Z"}}`, rec.Body.String())

	h.Ping = func(context.Context) error { return errors.New("no connection") }
	rec = httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNAVAILABLE")
}
