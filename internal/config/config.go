package config

import (
	"fmt"

	"github.com/healthdash/user-sync-service/internal/envconfig"
)

const (
	DatastoreMongo     = "mongo"
	DatastoreFirestore = "firestore"
)

type Config struct {
	Port      string `validate:"required"`
	Datastore string `validate:"required,oneof=mongo firestore"`
	Mongo     MongoConfig
	Firestore FirestoreConfig
	Clerk     ClerkConfig
}

type MongoConfig struct {
	// URI is deliberately not required here: when it is unset, sync calls
	// fail with 500 at the storage layer while health and verify keep working.
	URI        string
	Database   string `validate:"required"`
	Collection string `validate:"required"`
}

type FirestoreConfig struct {
	ProjectID  string
	Collection string `validate:"required"`
}

type ClerkConfig struct {
	WebhookSecret string
	SecretKey     string
	APIURL        string
}

func Load() (Config, error) {
	cfg := Config{
		Port:      envconfig.Get("PORT", "8080"),
		Datastore: envconfig.Get("DATASTORE", DatastoreMongo),
		Mongo: MongoConfig{
			URI:        envconfig.Get("MONGODB_URI", ""),
			Database:   envconfig.Get("MONGODB_DATABASE", "healthdash"),
			Collection: envconfig.Get("MONGODB_COLLECTION", "users"),
		},
		Firestore: FirestoreConfig{
			ProjectID:  envconfig.Get("GCP_PROJECT_ID", ""),
			Collection: envconfig.Get("FIRESTORE_COLLECTION", "users"),
		},
		Clerk: ClerkConfig{
			WebhookSecret: envconfig.Get("CLERK_WEBHOOK_SECRET", ""),
			SecretKey:     envconfig.Get("CLERK_SECRET_KEY", ""),
			APIURL:        envconfig.Get("CLERK_API_URL", ""),
		},
	}
	if err := envconfig.Validate(cfg); err != nil {
		return cfg, err
	}
	if cfg.Datastore == DatastoreFirestore && cfg.Firestore.ProjectID == "" {
		return cfg, fmt.Errorf("GCP_PROJECT_ID is required when DATASTORE=firestore")
	}
	return cfg, nil
}
