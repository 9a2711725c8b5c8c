package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"outswap/internal/config"
	"outswap/internal/handlers"
	"outswap/internal/services"
)

type application struct {
	log         *logrus.Logger
	development bool
	limiter     *rateLimiter

	outfitHandler *handlers.OutfitHandler
	rentalHandler *handlers.RentalHandler
	ratingHandler *handlers.RatingHandler
	healthHandler *handlers.HealthHandler

	outfitService *services.OutfitService
	rentalService *services.RentalService
}

func initializeApp(st *storeSet, cfg config.Config, log *logrus.Logger) *application {
	outfitService := &services.OutfitService{Store: st.outfits, Locator: st.locator, Logger: log}
	rentalService := &services.RentalService{Rentals: st.rentals, Outfits: st.outfits, Logger: log}
	ratingService := &services.RatingService{Ratings: st.ratings, Outfits: st.outfits, Logger: log}

	rs := handlers.Responder{Log: log, Development: cfg.Development()}

	return &application{
		log:           log,
		development:   cfg.Development(),
		limiter:       newRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		outfitHandler: handlers.NewOutfitHandler(outfitService, rs),
		rentalHandler: handlers.NewRentalHandler(rentalService, rs),
		ratingHandler: handlers.NewRatingHandler(ratingService, rs),
		healthHandler: &handlers.HealthHandler{Ping: st.ping, Responder: rs},
		outfitService: outfitService,
		rentalService: rentalService,
	}
}

// syncLocator backfills the geo index from the primary store.
func (app *application) syncLocator(ctx context.Context) {
	n, err := app.outfitService.SyncLocator(ctx)
	if err != nil {
		app.log.WithError(err).Warn("sync geo locator")
		return
	}
	if n > 0 {
		app.log.WithField("outfits", n).Info("geo locator synced")
	}
}
