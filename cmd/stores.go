package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"outswap/internal/config"
	"outswap/internal/geo"
	"outswap/internal/migrations"
	"outswap/internal/mongostore"
	"outswap/internal/repositories"
	"outswap/internal/services"
)

const connectTimeout = 10 * time.Second

// storeSet is the persistence backend selected by configuration plus the
// optional Redis geo index.
type storeSet struct {
	outfits services.OutfitStore
	rentals services.RentalStore
	ratings services.RatingStore
	locator services.OutfitLocator

	ping    func(ctx context.Context) error
	closers []func(ctx context.Context) error
}

func (s *storeSet) close(ctx context.Context) error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func openStores(ctx context.Context, cfg config.Config, log *logrus.Logger) (*storeSet, error) {
	st := &storeSet{}

	switch cfg.Database.Driver {
	case "mongo":
		client, err := openMongo(ctx, cfg.Database.MongoURI)
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, client.Disconnect)

		store := mongostore.New(client.Database(cfg.Database.MongoDatabase))
		store.EnsureIndexes(ctx, log)
		st.outfits, st.rentals, st.ratings = store, store, store
		st.ping = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		log.WithField("database", cfg.Database.MongoDatabase).Info("connected to mongodb")
	default:
		db, err := openDB(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, func(context.Context) error { return db.Close() })

		if err := migrations.Apply(ctx, db, log); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		st.outfits = &repositories.OutfitRepository{DB: db}
		st.rentals = &repositories.RentalRepository{DB: db}
		st.ratings = &repositories.RatingRepository{DB: db}
		st.ping = db.PingContext
		log.Info("connected to mysql")
	}

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.WithError(err).Warn("redis unavailable, nearby search uses the primary store")
			_ = rdb.Close()
		} else {
			st.locator = geo.NewOutfitLocator(rdb)
			st.closers = append(st.closers, func(context.Context) error { return rdb.Close() })
			log.WithField("addr", cfg.Redis.Addr).Info("connected to redis")
		}
	}
	return st, nil
}

// openDB opens the MySQL pool. parseTime is forced on since the
// repositories scan DATETIME columns into time.Time.
func openDB(ctx context.Context, dsn string) (*sql.DB, error) {
	mc, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.ClientFoundRows = true

	db, err := sql.Open("mysql", mc.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	db.SetMaxIdleConns(35)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

func openMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, errors.New("MONGODB_URI is required for the mongo driver")
	}
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return client, nil
}
