package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"outswap/internal/config"
)

const (
	shutdownTimeout    = 15 * time.Second
	limiterIdleTimeout = 10 * time.Minute
)

func main() {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	if cfg.Development() {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	addr := flag.String("addr", cfg.Server.Address, "HTTP network address")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("open stores")
	}

	app := initializeApp(st, cfg, log)
	app.syncLocator(ctx)
	app.limiter.startCleanup(ctx, limiterIdleTimeout)

	activator, err := app.startRentalActivator(ctx, cfg.Scheduler.Activation)
	if err != nil {
		log.WithError(err).Fatal("start rental activator")
	}

	origins := []string{"http://localhost:3000"}
	if cfg.App.FrontendURL != "" {
		origins = []string{cfg.App.FrontendURL}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:         *addr,
		ErrorLog:     newStdLogger(log),
		Handler:      c.Handler(app.routes()),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"addr": *addr, "env": cfg.App.Env, "driver": cfg.Database.Driver}).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	<-activator.Stop().Done()
	if err := st.close(shutdownCtx); err != nil {
		log.WithError(err).Warn("close stores")
	}
	log.Info("server stopped")
}
