package handlers

import (
	"context"
	"net/http"

	"outswap/internal/models"
)

type rentalService interface {
	CreateRental(ctx context.Context, in models.RentalInput) (models.Rental, error)
	GetRentalByID(ctx context.Context, id string) (models.Rental, error)
	ListRentalsByRenter(ctx context.Context, renterID string) ([]models.Rental, error)
	ListRentalsByOwner(ctx context.Context, ownerID string) ([]models.Rental, error)
	ConfirmRental(ctx context.Context, id, ownerID string) (models.Rental, error)
	ActivateRental(ctx context.Context, id string) (models.Rental, error)
	ReturnRental(ctx context.Context, id string) (models.Rental, error)
	CancelRental(ctx context.Context, id, reason string) (models.Rental, error)
}

type RentalHandler struct {
	Service rentalService
	Responder
}

func NewRentalHandler(svc rentalService, rs Responder) *RentalHandler {
	return &RentalHandler{Service: svc, Responder: rs}
}

type confirmRentalRequest struct {
	OwnerID string `json:"ownerId"`
}

type cancelRentalRequest struct {
	Reason string `json:"reason"`
}

func (h *RentalHandler) CreateRental(w http.ResponseWriter, r *http.Request) {
	var in models.RentalInput
	if err := decodeJSON(w, r, &in, false); err != nil {
		h.badRequest(w, err)
		return
	}

	rental, err := h.Service.CreateRental(r.Context(), in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, rental)
}

func (h *RentalHandler) GetRentalByID(w http.ResponseWriter, r *http.Request) {
	id, err := requireParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	rental, err := h.Service.GetRentalByID(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, rental)
}

func (h *RentalHandler) GetRentalsByRenter(w http.ResponseWriter, r *http.Request) {
	userID, err := requireParam(r, "userId")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	rentals, err := h.Service.ListRentalsByRenter(r.Context(), userID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, nonNil(rentals))
}

func (h *RentalHandler) GetRentalsByOwner(w http.ResponseWriter, r *http.Request) {
	userID, err := requireParam(r, "userId")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	rentals, err := h.Service.ListRentalsByOwner(r.Context(), userID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, nonNil(rentals))
}

// ConfirmRental takes an optional {"ownerId"} body; when present it must
// name the owner of the rented outfit.
func (h *RentalHandler) ConfirmRental(w http.ResponseWriter, r *http.Request) {
	id, err := requireParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var req confirmRentalRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		h.badRequest(w, err)
		return
	}

	rental, err := h.Service.ConfirmRental(r.Context(), id, req.OwnerID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, rental)
}

func (h *RentalHandler) ActivateRental(w http.ResponseWriter, r *http.Request) {
	h.simpleTransition(w, r, h.Service.ActivateRental)
}

func (h *RentalHandler) ReturnRental(w http.ResponseWriter, r *http.Request) {
	h.simpleTransition(w, r, h.Service.ReturnRental)
}

func (h *RentalHandler) CancelRental(w http.ResponseWriter, r *http.Request) {
	id, err := requireParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var req cancelRentalRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		h.badRequest(w, err)
		return
	}

	rental, err := h.Service.CancelRental(r.Context(), id, req.Reason)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, rental)
}

func (h *RentalHandler) simpleTransition(w http.ResponseWriter, r *http.Request, apply func(context.Context, string) (models.Rental, error)) {
	id, err := requireParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	rental, err := apply(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, rental)
}
