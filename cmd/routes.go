package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"

	"outswap/internal/metrics"
)

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, metrics.InstrumentHandler, secureHeaders, makeResponseJSON)
	apiMiddleware := standardMiddleware.Append(app.limiter.Handler)

	mux := pat.New()

	// Outfits. Fixed segments are registered before :id.
	mux.Post("/api/outfits", apiMiddleware.ThenFunc(app.outfitHandler.CreateOutfit))
	mux.Post("/api/outfits/search", apiMiddleware.ThenFunc(app.outfitHandler.SearchOutfits))
	mux.Get("/api/outfits/owner/:ownerId", apiMiddleware.ThenFunc(app.outfitHandler.GetOutfitsByOwner))
	mux.Get("/api/outfits/nearby/:lat/:lon", apiMiddleware.ThenFunc(app.outfitHandler.NearbyOutfits))
	mux.Get("/api/outfits/:id", apiMiddleware.ThenFunc(app.outfitHandler.GetOutfitByID))
	mux.Put("/api/outfits/:id", apiMiddleware.ThenFunc(app.outfitHandler.UpdateOutfit))
	mux.Del("/api/outfits/:id", apiMiddleware.ThenFunc(app.outfitHandler.DeleteOutfit))

	// Rentals
	mux.Post("/api/rentals", apiMiddleware.ThenFunc(app.rentalHandler.CreateRental))
	mux.Post("/api/rentals/:id/confirm", apiMiddleware.ThenFunc(app.rentalHandler.ConfirmRental))
	mux.Post("/api/rentals/:id/activate", apiMiddleware.ThenFunc(app.rentalHandler.ActivateRental))
	mux.Post("/api/rentals/:id/return", apiMiddleware.ThenFunc(app.rentalHandler.ReturnRental))
	mux.Post("/api/rentals/:id/cancel", apiMiddleware.ThenFunc(app.rentalHandler.CancelRental))
	mux.Get("/api/rentals/renter/:userId", apiMiddleware.ThenFunc(app.rentalHandler.GetRentalsByRenter))
	mux.Get("/api/rentals/owner/:userId", apiMiddleware.ThenFunc(app.rentalHandler.GetRentalsByOwner))
	mux.Get("/api/rentals/:id", apiMiddleware.ThenFunc(app.rentalHandler.GetRentalByID))

	// Ratings
	mux.Post("/api/ratings", apiMiddleware.ThenFunc(app.ratingHandler.CreateRating))
	mux.Get("/api/ratings/outfit/:id", apiMiddleware.ThenFunc(app.ratingHandler.GetOutfitRatings))
	mux.Get("/api/ratings/user/:id", apiMiddleware.ThenFunc(app.ratingHandler.GetUserRatings))
	mux.Put("/api/ratings/:id", apiMiddleware.ThenFunc(app.ratingHandler.UpdateRating))
	mux.Del("/api/ratings/:id", apiMiddleware.ThenFunc(app.ratingHandler.DeleteRating))

	mux.Get("/health", standardMiddleware.ThenFunc(app.healthHandler.Health))
	mux.Get("/metrics", metrics.Handler())

	mux.NotFound = standardMiddleware.ThenFunc(app.notFound)

	return mux
}
