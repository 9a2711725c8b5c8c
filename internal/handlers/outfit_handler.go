package handlers

import (
	"context"
	"net/http"

	"outswap/internal/models"
)

type outfitService interface {
	CreateOutfit(ctx context.Context, in models.OutfitInput) (models.Outfit, error)
	GetOutfitByID(ctx context.Context, id string) (models.Outfit, error)
	ListOutfitsByOwner(ctx context.Context, ownerID string) ([]models.Outfit, error)
	UpdateOutfit(ctx context.Context, id string, upd models.OutfitUpdate) (models.Outfit, error)
	DeleteOutfit(ctx context.Context, id string) error
	SearchOutfits(ctx context.Context, p models.SearchParams) (models.SearchResult, error)
	NearbyOutfits(ctx context.Context, lat, lon, radius float64) ([]models.Outfit, error)
}

type OutfitHandler struct {
	Service outfitService
	Responder
}

func NewOutfitHandler(svc outfitService, rs Responder) *OutfitHandler {
	return &OutfitHandler{Service: svc, Responder: rs}
}

func (h *OutfitHandler) CreateOutfit(w http.ResponseWriter, r *http.Request) {
	var in models.OutfitInput
	if err := decodeJSON(w, r, &in, false); err != nil {
		h.badRequest(w, err)
		return
	}

	created, err := h.Service.CreateOutfit(r.Context(), in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, created)
}

// SearchOutfits accepts the criteria as a JSON body. An empty body lists
// every available outfit, newest first.
func (h *OutfitHandler) SearchOutfits(w http.ResponseWriter, r *http.Request) {
	var p models.SearchParams
	if err := decodeJSON(w, r, &p, true); err != nil {
		h.badRequest(w, err)
		return
	}

	res, err := h.Service.SearchOutfits(r.Context(), p)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	res.Items = nonNil(res.Items)
	writeData(w, http.StatusOK, res)
}

func (h *OutfitHandler) GetOutfitByID(w http.ResponseWriter, r *http.Request) {
	id, err := requireParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	outfit, err := h.Service.GetOutfitByID(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, outfit)
}

func (h *OutfitHandler) GetOutfitsByOwner(w http.ResponseWriter, r *http.Request) {
	ownerID, err := requireParam(r, "ownerId")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	outfits, err := h.Service.ListOutfitsByOwner(r.Context(), ownerID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, nonNil(outfits))
}

func (h *OutfitHandler) UpdateOutfit(w http.ResponseWriter, r *http.Request) {
	id, err := requireParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var upd models.OutfitUpdate
	if err := decodeJSON(w, r, &upd, false); err != nil {
		h.badRequest(w, err)
		return
	}

	updated, err := h.Service.UpdateOutfit(r.Context(), id, upd)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, updated)
}

func (h *OutfitHandler) DeleteOutfit(w http.ResponseWriter, r *http.Request) {
	id, err := requireParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.Service.DeleteOutfit(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Outfit deleted successfully")
}

// NearbyOutfits serves /nearby/:lat/:lon with an optional radius in meters.
func (h *OutfitHandler) NearbyOutfits(w http.ResponseWriter, r *http.Request) {
	lat, err := floatParam(r, "lat")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	lon, err := floatParam(r, "lon")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var radius float64
	if r.URL.Query().Get("radius") != "" {
		if radius, err = floatParam(r, "radius"); err != nil {
			h.respondError(w, r, err)
			return
		}
	}

	outfits, err := h.Service.NearbyOutfits(r.Context(), lat, lon, radius)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, nonNil(outfits))
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
