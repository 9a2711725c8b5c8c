package main

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"outswap/internal/models"
)

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.log.WithFields(logrus.Fields{
		"method": r.Method,
		"uri":    r.URL.RequestURI(),
	}).WithError(err).Error("unhandled error")

	msg := "Internal server error"
	if app.development {
		msg = err.Error()
	}
	writeEnvelope(w, http.StatusInternalServerError, models.APIResponse{Error: msg})
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, http.StatusNotFound, models.APIResponse{Error: "Route not found"})
}

func writeEnvelope(w http.ResponseWriter, status int, payload models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
