// Package validation holds the pure input checks for listings, rentals,
// ratings and search parameters. Nothing here performs I/O.
package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"outswap/internal/models"
)

// MaxPrice is the sanity ceiling for any listed price.
const MaxPrice = 100000

const (
	sizeEnum     = "oneof=XXS XS S M L XL XXL XXXL"
	categoryEnum = "oneof=formal casual sportswear party business wedding seasonal other"
	targetEnum   = "oneof=outfit user"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Result is the outcome of a composite validator.
type Result struct {
	IsValid bool                `json:"isValid"`
	Errors  []models.FieldError `json:"errors"`
}

// Err returns nil for a valid result and a *models.ValidationError otherwise.
func (r Result) Err() error {
	if r.IsValid {
		return nil
	}
	return &models.ValidationError{Fields: r.Errors}
}

func newResult(errs []models.FieldError) Result {
	return Result{IsValid: len(errs) == 0, Errors: errs}
}

func fieldErr(field, format string, args ...interface{}) *models.FieldError {
	return &models.FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func appendErr(errs []models.FieldError, e *models.FieldError) []models.FieldError {
	if e != nil {
		errs = append(errs, *e)
	}
	return errs
}

// Price checks a required positive price below MaxPrice.
func Price(price *float64, field, label string) *models.FieldError {
	if price == nil {
		return fieldErr(field, "%s is required", label)
	}
	if math.IsNaN(*price) || math.IsInf(*price, 0) {
		return fieldErr(field, "%s must be a valid number", label)
	}
	if *price <= 0 {
		return fieldErr(field, "%s must be greater than 0", label)
	}
	if *price > MaxPrice {
		return fieldErr(field, "%s seems unreasonably high", label)
	}
	return nil
}

var timeLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// ParseTime accepts RFC 3339 timestamps and plain dates (UTC).
func ParseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time format: %q", raw)
}

// Date checks that a date is present and parseable.
func Date(raw, field, label string) *models.FieldError {
	if strings.TrimSpace(raw) == "" {
		return fieldErr(field, "%s is required", label)
	}
	if _, err := ParseTime(raw); err != nil {
		return fieldErr(field, "%s is not a valid date", label)
	}
	return nil
}

// DateRange checks both ends and that the end is strictly after the start.
func DateRange(start, end string) []models.FieldError {
	var errs []models.FieldError
	errs = appendErr(errs, Date(start, "startDate", "Start date"))
	errs = appendErr(errs, Date(end, "endDate", "End date"))
	if len(errs) > 0 {
		return errs
	}

	s, _ := ParseTime(start)
	e, _ := ParseTime(end)
	if !e.After(s) {
		errs = append(errs, *fieldErr("endDate", "End date must be after start date"))
	}
	return errs
}

// FutureDate checks a parseable date that is not before now.
func FutureDate(raw, field, label string, now time.Time) *models.FieldError {
	if e := Date(raw, field, label); e != nil {
		return e
	}
	t, _ := ParseTime(raw)
	if t.Before(now) {
		return fieldErr(field, "%s must be in the future", label)
	}
	return nil
}

// String checks a required string whose trimmed length is within [min, max].
func String(value, field, label string, min, max int) *models.FieldError {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fieldErr(field, "%s is required", label)
	}
	n := utf8.RuneCountInString(trimmed)
	if n < min {
		return fieldErr(field, "%s must be at least %d characters", label, min)
	}
	if n > max {
		return fieldErr(field, "%s must not exceed %d characters", label, max)
	}
	return nil
}

// Array checks that a list holds at least min items.
func Array(length int, field, label string, min int) *models.FieldError {
	if length < min {
		return fieldErr(field, "%s must contain at least %d item(s)", label, min)
	}
	return nil
}

// Rating checks a required whole number between 1 and 5.
func Rating(value *float64) *models.FieldError {
	if value == nil {
		return fieldErr("rating", "Rating is required")
	}
	v := *value
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fieldErr("rating", "Rating must be a number")
	}
	if v < 1 || v > 5 {
		return fieldErr("rating", "Rating must be between 1 and 5")
	}
	if v != math.Trunc(v) {
		return fieldErr("rating", "Rating must be a whole number")
	}
	return nil
}

func oneOf(value, tag string) bool {
	return validate.Var(value, tag) == nil
}

// Outfit validates a listing as submitted by its owner.
func Outfit(in models.OutfitInput) Result {
	var errs []models.FieldError

	if strings.TrimSpace(in.OwnerID) == "" {
		errs = append(errs, *fieldErr("ownerId", "Owner ID is required"))
	}
	errs = appendErr(errs, String(in.Title, "title", "Title", 3, 100))
	errs = appendErr(errs, String(in.Description, "description", "Description", 10, 2000))
	errs = appendErr(errs, Array(len(in.Images), "images", "Images", 1))

	errs = appendErr(errs, Price(in.PricePerHour, "pricePerHour", "Price per hour"))
	errs = appendErr(errs, Price(in.PricePerDay, "pricePerDay", "Price per day"))
	if in.PricePerHour != nil && in.PricePerDay != nil && *in.PricePerHour > 0 && *in.PricePerDay > 0 &&
		*in.PricePerDay >= *in.PricePerHour*24 {
		errs = append(errs, *fieldErr("pricePerDay", "Daily price should be less than 24x hourly price"))
	}

	switch {
	case in.Size == "":
		errs = append(errs, *fieldErr("size", "Size is required"))
	case !oneOf(string(in.Size), sizeEnum):
		errs = append(errs, *fieldErr("size", "Size %q is not supported", in.Size))
	}
	switch {
	case in.Category == "":
		errs = append(errs, *fieldErr("category", "Category is required"))
	case !oneOf(string(in.Category), categoryEnum):
		errs = append(errs, *fieldErr("category", "Category %q is not supported", in.Category))
	}

	if len(in.StyleTags) == 0 {
		errs = append(errs, *fieldErr("styleTags", "At least one style tag is required"))
	}

	if in.Location == nil {
		errs = append(errs, *fieldErr("location", "Location is required"))
	} else if in.Location.Latitude == 0 || in.Location.Longitude == 0 {
		errs = append(errs, *fieldErr("location", "Valid coordinates are required"))
	}

	if e := Array(len(in.AvailabilityDates), "availabilityDates", "Availability dates", 1); e != nil {
		errs = append(errs, *e)
	} else {
		for i, r := range in.AvailabilityDates {
			for _, e := range DateRange(r.StartDate, r.EndDate) {
				errs = append(errs, models.FieldError{
					Field:   fmt.Sprintf("availabilityDates[%d].%s", i, e.Field),
					Message: e.Message,
				})
			}
		}
	}

	return newResult(errs)
}

// Rental validates a rental request against the given clock.
func Rental(in models.RentalInput, now time.Time) Result {
	var errs []models.FieldError

	if strings.TrimSpace(in.OutfitID) == "" {
		errs = append(errs, *fieldErr("outfitId", "Outfit ID is required"))
	}
	if strings.TrimSpace(in.RenterID) == "" {
		errs = append(errs, *fieldErr("renterId", "Renter ID is required"))
	}

	dateErrs := DateRange(in.StartDate, in.EndDate)
	errs = append(errs, dateErrs...)
	if len(dateErrs) == 0 {
		errs = appendErr(errs, FutureDate(in.StartDate, "startDate", "Start date", now))
	}

	return newResult(errs)
}

// RatingInput validates a new rating.
func RatingInput(in models.RatingInput) Result {
	var errs []models.FieldError

	if strings.TrimSpace(in.TargetID) == "" {
		errs = append(errs, *fieldErr("targetId", "Target ID is required"))
	}
	if in.TargetType == "" || !oneOf(in.TargetType, targetEnum) {
		errs = append(errs, *fieldErr("targetType", `Target type must be either "outfit" or "user"`))
	}
	if strings.TrimSpace(in.FromUserID) == "" {
		errs = append(errs, *fieldErr("fromUserId", "Author ID is required"))
	}
	errs = appendErr(errs, Rating(in.Rating))
	if in.Comment != "" {
		errs = appendErr(errs, String(in.Comment, "comment", "Comment", 1, 500))
	}

	return newResult(errs)
}

// RatingUpdate validates the fields present in a partial rating update.
func RatingUpdate(in models.RatingUpdate) Result {
	var errs []models.FieldError
	if in.Rating != nil {
		errs = appendErr(errs, Rating(in.Rating))
	}
	if in.Comment != nil && *in.Comment != "" {
		errs = appendErr(errs, String(*in.Comment, "comment", "Comment", 1, 500))
	}
	return newResult(errs)
}

// SearchParams rejects malformed search input. The returned error matches
// models.ErrInvalidParameter.
func SearchParams(p models.SearchParams) error {
	var errs []models.FieldError

	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", models.ErrInvalidParameter, err)
		}
		for _, fe := range verrs {
			errs = append(errs, models.FieldError{
				Field:   fe.Field(),
				Message: fmt.Sprintf("%v is not an accepted value", fe.Value()),
			})
		}
	}

	if p.MinPrice != nil && p.MaxPrice != nil && *p.MinPrice > *p.MaxPrice {
		errs = append(errs, *fieldErr("minPrice", "minPrice must not exceed maxPrice"))
	}
	if p.Location != nil {
		if p.Location.Latitude < -90 || p.Location.Latitude > 90 {
			errs = append(errs, *fieldErr("location.latitude", "latitude must be within [-90, 90]"))
		}
		if p.Location.Longitude < -180 || p.Location.Longitude > 180 {
			errs = append(errs, *fieldErr("location.longitude", "longitude must be within [-180, 180]"))
		}
	}

	if len(errs) > 0 {
		return &models.ValidationError{Fields: errs, Param: true}
	}
	return nil
}
