package models

import "time"

type RentalStatus string

const (
	RentalPending   RentalStatus = "pending"
	RentalConfirmed RentalStatus = "confirmed"
	RentalActive    RentalStatus = "active"
	RentalReturned  RentalStatus = "returned"
	RentalCancelled RentalStatus = "cancelled"
	RentalDisputed  RentalStatus = "disputed"
)

type Rental struct {
	ID           string       `json:"id"`
	OutfitID     string       `json:"outfitId"`
	RenterID     string       `json:"renterId"`
	OwnerID      string       `json:"ownerId"`
	StartDate    time.Time    `json:"startDate"`
	EndDate      time.Time    `json:"endDate"`
	TotalPrice   float64      `json:"totalPrice"`
	Status       RentalStatus `json:"status"`
	Notes        string       `json:"notes,omitempty"`
	CancelReason string       `json:"cancelReason,omitempty"`
	ReturnedAt   *time.Time   `json:"returnedAt,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

type RentalInput struct {
	OutfitID  string `json:"outfitId"`
	RenterID  string `json:"renterId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Notes     string `json:"notes"`
}

// RentalTransition describes one guarded status change. The store applies
// it only when the current status is one of From.
type RentalTransition struct {
	From         []RentalStatus
	To           RentalStatus
	CancelReason *string
	ReturnedAt   *time.Time
	At           time.Time
}
