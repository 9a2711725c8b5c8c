package handlers

import (
	"context"
	"net/http"

	"outswap/internal/models"
)

type ratingService interface {
	CreateRating(ctx context.Context, in models.RatingInput) (models.Rating, error)
	ListRatingsByTarget(ctx context.Context, target models.RatingTarget) ([]models.Rating, error)
	UpdateRating(ctx context.Context, id string, upd models.RatingUpdate) (models.Rating, error)
	DeleteRating(ctx context.Context, id string) error
}

type RatingHandler struct {
	Service ratingService
	Responder
}

func NewRatingHandler(svc ratingService, rs Responder) *RatingHandler {
	return &RatingHandler{Service: svc, Responder: rs}
}

// CreateRating accepts either {targetId, targetType} or the older
// {outfitId} / {toUserId} body.
func (h *RatingHandler) CreateRating(w http.ResponseWriter, r *http.Request) {
	var in models.RatingInput
	if err := decodeJSON(w, r, &in, false); err != nil {
		h.badRequest(w, err)
		return
	}

	rating, err := h.Service.CreateRating(r.Context(), in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, rating)
}

func (h *RatingHandler) GetOutfitRatings(w http.ResponseWriter, r *http.Request) {
	h.listByTarget(w, r, models.TargetOutfit)
}

func (h *RatingHandler) GetUserRatings(w http.ResponseWriter, r *http.Request) {
	h.listByTarget(w, r, models.TargetUser)
}

func (h *RatingHandler) UpdateRating(w http.ResponseWriter, r *http.Request) {
	id, err := requireParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var upd models.RatingUpdate
	if err := decodeJSON(w, r, &upd, false); err != nil {
		h.badRequest(w, err)
		return
	}

	rating, err := h.Service.UpdateRating(r.Context(), id, upd)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, rating)
}

func (h *RatingHandler) DeleteRating(w http.ResponseWriter, r *http.Request) {
	id, err := requireParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.Service.DeleteRating(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Rating deleted successfully")
}

func (h *RatingHandler) listByTarget(w http.ResponseWriter, r *http.Request, kind models.RatingTargetKind) {
	id, err := requireParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	ratings, err := h.Service.ListRatingsByTarget(r.Context(), models.RatingTarget{Kind: kind, ID: id})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, nonNil(ratings))
}
