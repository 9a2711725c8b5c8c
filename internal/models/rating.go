package models

import "time"

type RatingTargetKind string

const (
	TargetOutfit RatingTargetKind = "outfit"
	TargetUser   RatingTargetKind = "user"
)

// RatingTarget identifies exactly one rated entity.
type RatingTarget struct {
	Kind RatingTargetKind `json:"kind"`
	ID   string           `json:"id"`
}

type Rating struct {
	ID         string       `json:"id"`
	Rating     int          `json:"rating"`
	Comment    string       `json:"comment,omitempty"`
	FromUserID string       `json:"fromUserId"`
	Target     RatingTarget `json:"target"`
	RentalID   string       `json:"rentalId,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  *time.Time   `json:"updatedAt,omitempty"`
}

type RatingInput struct {
	TargetID   string   `json:"targetId"`
	TargetType string   `json:"targetType"`
	Rating     *float64 `json:"rating"`
	Comment    string   `json:"comment"`
	FromUserID string   `json:"fromUserId"`
	RentalID   string   `json:"rentalId"`

	// Legacy body shape: exactly one of these names the target.
	OutfitID string `json:"outfitId,omitempty"`
	ToUserID string `json:"toUserId,omitempty"`
}

// Resolve fills the tagged target from the legacy fields when it is absent.
// Both legacy fields at once stay unresolved and fail validation.
func (in RatingInput) Resolve() RatingInput {
	if in.TargetType != "" || in.TargetID != "" {
		return in
	}
	switch {
	case in.OutfitID != "" && in.ToUserID == "":
		in.TargetType, in.TargetID = string(TargetOutfit), in.OutfitID
	case in.ToUserID != "" && in.OutfitID == "":
		in.TargetType, in.TargetID = string(TargetUser), in.ToUserID
	}
	return in
}

type RatingUpdate struct {
	Rating  *float64 `json:"rating"`
	Comment *string  `json:"comment"`
}

// RatingAggregate is the derived average persisted onto a target.
type RatingAggregate struct {
	Target  RatingTarget `json:"target"`
	Average float64      `json:"rating"`
	Count   int          `json:"totalRatings"`
}
