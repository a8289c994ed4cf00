package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/go-chi/chi/v5"

	"github.com/healthdash/user-sync-service/internal/clerk"
	"github.com/healthdash/user-sync-service/internal/config"
	"github.com/healthdash/user-sync-service/internal/httpapi"
	"github.com/healthdash/user-sync-service/internal/logging"
	"github.com/healthdash/user-sync-service/internal/server"
	"github.com/healthdash/user-sync-service/internal/user"
	"github.com/healthdash/user-sync-service/internal/webhook"
)

func main() {
	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("config error: %w", err))
	}

	logger := logging.NewLogger("user-sync-service")

	var repo user.Repository
	switch cfg.Datastore {
	case config.DatastoreFirestore:
		client, err := firestore.NewClient(ctx, cfg.Firestore.ProjectID)
		if err != nil {
			panic(fmt.Errorf("firestore client: %w", err))
		}
		defer client.Close()
		repo = user.NewFirestoreRepository(client, cfg.Firestore.Collection)
	default:
		// Lazy: the Mongo handle is created on first sync, so a missing
		// connection string degrades to per-request 500s instead of a crash.
		repo = user.NewMongoRepository(user.MongoSettings{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
		})
	}

	var provider user.Fetcher
	if cfg.Clerk.SecretKey != "" {
		provider = clerk.NewClient(cfg.Clerk.SecretKey, cfg.Clerk.APIURL)
	} else {
		logger.Info("clerk secret key not set, authoritative refetch disabled")
	}

	verifier := webhook.NewVerifier(cfg.Clerk.WebhookSecret)
	if verifier == nil {
		logger.Info("webhook secret not set, signature verification disabled")
	}

	service := user.NewService(repo, provider, logger)

	router := server.NewRouter("user-sync-service", func(r chi.Router) {
		httpapi.RegisterRoutes(r, service, verifier, provider, logger)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if err := server.Run(ctx, srv, logger); err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(err)
	}
}
