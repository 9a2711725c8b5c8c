package models

import (
	"errors"
	"strings"
)

var (
	ErrOutfitNotFound    = errors.New("outfit not found")
	ErrRentalNotFound    = errors.New("rental not found")
	ErrRatingNotFound    = errors.New("rating not found")
	ErrInvalidTransition = errors.New("rental status does not allow this action")
	ErrRentalNotStarted  = errors.New("rental start date has not arrived")
	ErrNotRentalOwner    = errors.New("only the outfit owner can perform this action")
	ErrInvalidParameter  = errors.New("invalid parameter")
)

// FieldError describes a single rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates field errors. It matches ErrInvalidParameter
// through errors.Is when Param is set, so malformed search parameters and
// rejected bodies share one HTTP mapping.
type ValidationError struct {
	Fields []FieldError
	Param  bool
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	prefix := "validation failed"
	if e.Param {
		prefix = ErrInvalidParameter.Error()
	}
	if len(msgs) == 0 {
		return prefix
	}
	return prefix + ": " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return e.Param && target == ErrInvalidParameter
}
