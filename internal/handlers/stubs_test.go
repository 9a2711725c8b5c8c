package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bmizerany/pat"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"outswap/internal/models"
)

type stubOutfits struct {
	create  func(models.OutfitInput) (models.Outfit, error)
	get     func(string) (models.Outfit, error)
	byOwner func(string) ([]models.Outfit, error)
	update  func(string, models.OutfitUpdate) (models.Outfit, error)
	del     func(string) error
	search  func(models.SearchParams) (models.SearchResult, error)
	nearby  func(lat, lon, radius float64) ([]models.Outfit, error)
}

func (s *stubOutfits) CreateOutfit(_ context.Context, in models.OutfitInput) (models.Outfit, error) {
	return s.create(in)
}
func (s *stubOutfits) GetOutfitByID(_ context.Context, id string) (models.Outfit, error) {
	return s.get(id)
}
func (s *stubOutfits) ListOutfitsByOwner(_ context.Context, id string) ([]models.Outfit, error) {
	return s.byOwner(id)
}
func (s *stubOutfits) UpdateOutfit(_ context.Context, id string, upd models.OutfitUpdate) (models.Outfit, error) {
	return s.update(id, upd)
}
func (s *stubOutfits) DeleteOutfit(_ context.Context, id string) error { return s.del(id) }
func (s *stubOutfits) SearchOutfits(_ context.Context, p models.SearchParams) (models.SearchResult, error) {
	return s.search(p)
}
func (s *stubOutfits) NearbyOutfits(_ context.Context, lat, lon, radius float64) ([]models.Outfit, error) {
	return s.nearby(lat, lon, radius)
}

type stubRentals struct {
	create   func(models.RentalInput) (models.Rental, error)
	get      func(string) (models.Rental, error)
	byRenter func(string) ([]models.Rental, error)
	byOwner  func(string) ([]models.Rental, error)
	confirm  func(id, ownerID string) (models.Rental, error)
	activate func(string) (models.Rental, error)
	ret      func(string) (models.Rental, error)
	cancel   func(id, reason string) (models.Rental, error)
}

func (s *stubRentals) CreateRental(_ context.Context, in models.RentalInput) (models.Rental, error) {
	return s.create(in)
}
func (s *stubRentals) GetRentalByID(_ context.Context, id string) (models.Rental, error) {
	return s.get(id)
}
func (s *stubRentals) ListRentalsByRenter(_ context.Context, id string) ([]models.Rental, error) {
	return s.byRenter(id)
}
func (s *stubRentals) ListRentalsByOwner(_ context.Context, id string) ([]models.Rental, error) {
	return s.byOwner(id)
}
func (s *stubRentals) ConfirmRental(_ context.Context, id, ownerID string) (models.Rental, error) {
	return s.confirm(id, ownerID)
}
func (s *stubRentals) ActivateRental(_ context.Context, id string) (models.Rental, error) {
	return s.activate(id)
}
func (s *stubRentals) ReturnRental(_ context.Context, id string) (models.Rental, error) {
	return s.ret(id)
}
func (s *stubRentals) CancelRental(_ context.Context, id, reason string) (models.Rental, error) {
	return s.cancel(id, reason)
}

type stubRatings struct {
	create func(models.RatingInput) (models.Rating, error)
	list   func(models.RatingTarget) ([]models.Rating, error)
	update func(string, models.RatingUpdate) (models.Rating, error)
	del    func(string) error
}

func (s *stubRatings) CreateRating(_ context.Context, in models.RatingInput) (models.Rating, error) {
	return s.create(in)
}
func (s *stubRatings) ListRatingsByTarget(_ context.Context, t models.RatingTarget) ([]models.Rating, error) {
	return s.list(t)
}
func (s *stubRatings) UpdateRating(_ context.Context, id string, upd models.RatingUpdate) (models.Rating, error) {
	return s.update(id, upd)
}
func (s *stubRatings) DeleteRating(_ context.Context, id string) error { return s.del(id) }

func testResponder() Responder {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return Responder{Log: log}
}

// envelope mirrors models.APIResponse with a raw data field.
type envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   string              `json:"error"`
	Errors  []models.FieldError `json:"errors"`
}

func serve(t *testing.T, mux *pat.PatternServeMux, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func TestNonNilKeepsEmptyListsInJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	writeData(rec, http.StatusOK, nonNil[models.Outfit](nil))
	require.JSONEq(t, `{"success":true,"data":[]}`, rec.Body.String())
}
