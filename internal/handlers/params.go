package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"outswap/internal/models"
)

// getParam returns a pat path parameter, falling back to the query string
// and the net/http PathValue API.
func getParam(r *http.Request, name string) string {
	if r == nil {
		return ""
	}
	if val := r.URL.Query().Get(":" + name); val != "" {
		return strings.TrimSpace(val)
	}
	if val := r.URL.Query().Get(name); val != "" {
		return strings.TrimSpace(val)
	}
	return strings.TrimSpace(r.PathValue(name))
}

func requireParam(r *http.Request, name string) (string, error) {
	val := getParam(r, name)
	if val == "" {
		return "", paramError(name, "is required")
	}
	return val, nil
}

func floatParam(r *http.Request, name string) (float64, error) {
	raw := getParam(r, name)
	if raw == "" {
		return 0, paramError(name, "is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, paramError(name, "must be a number")
	}
	return v, nil
}

func paramError(field, msg string) error {
	return &models.ValidationError{
		Param:  true,
		Fields: []models.FieldError{{Field: field, Message: field + " " + msg}},
	}
}
