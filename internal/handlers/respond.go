package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"outswap/internal/models"
)

const maxBodyBytes = 1 << 20

// Responder renders envelopes and maps domain errors to status codes.
// Internal error details are only exposed when Development is set.
type Responder struct {
	Log         logrus.FieldLogger
	Development bool
}

func writeJSON(w http.ResponseWriter, status int, payload models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, models.APIResponse{Success: true, Data: data})
}

type messageData struct {
	Message string `json:"message"`
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeData(w, status, messageData{Message: msg})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.APIResponse{Error: msg})
}

// decodeJSON reads a request body into dst. An empty body is accepted only
// when optional is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, optional bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) && optional {
			return nil
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (rs Responder) badRequest(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, err.Error())
}

// respondError writes the envelope matching err.
func (rs Responder) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		msg := "Validation failed"
		if verr.Param {
			msg = "Invalid parameter"
		}
		writeJSON(w, http.StatusBadRequest, models.APIResponse{Error: msg, Errors: verr.Fields})
	case errors.Is(err, models.ErrInvalidParameter):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNotRentalOwner):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, models.ErrOutfitNotFound),
		errors.Is(err, models.ErrRentalNotFound),
		errors.Is(err, models.ErrRatingNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrInvalidTransition), errors.Is(err, models.ErrRentalNotStarted):
		writeError(w, http.StatusConflict, err.Error())
	case isForeignKeyConstraintError(err):
		writeError(w, http.StatusBadRequest, "referenced record does not exist")
	case isRowReferencedError(err):
		writeError(w, http.StatusConflict, "record is still referenced by other records")
	default:
		rs.serverError(w, r, err)
	}
}

func (rs Responder) serverError(w http.ResponseWriter, r *http.Request, err error) {
	if rs.Log != nil {
		rs.Log.WithFields(logrus.Fields{
			"method": r.Method,
			"uri":    r.URL.RequestURI(),
		}).WithError(err).Error("request failed")
	}
	msg := "Internal server error"
	if rs.Development {
		msg = err.Error()
	}
	writeError(w, http.StatusInternalServerError, msg)
}
