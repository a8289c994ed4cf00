package user

import (
	"context"
	"time"
)

// Account is the canonical user document, one per external identity-provider id.
// The id is stable and never regenerated; repeated syncs overwrite in place.
type Account struct {
	ID        string  `json:"id" bson:"_id" firestore:"id"`
	Email     *string `json:"email" bson:"email" firestore:"email"`
	FirstName *string `json:"firstName" bson:"first_name" firestore:"first_name"`
	LastName  *string `json:"lastName" bson:"last_name" firestore:"last_name"`
	// CreatedAt stays zero when the provider supplied no creation time;
	// repositories then default it to the time of first sync and never
	// regenerate it afterwards.
	CreatedAt time.Time      `json:"createdAt" bson:"created_at" firestore:"created_at"`
	UpdatedAt time.Time      `json:"updatedAt" bson:"updated_at" firestore:"updated_at"`
	Raw       map[string]any `json:"-" bson:"raw" firestore:"raw"`
}

// Repository persists accounts keyed by external id.
type Repository interface {
	Upsert(ctx context.Context, account *Account) error
}

// Fetcher retrieves the identity provider's authoritative view of a user.
type Fetcher interface {
	GetUser(ctx context.Context, userID string) (map[string]any, error)
}

// Service ingests inbound user records and persists them.
type Service interface {
	Sync(ctx context.Context, record map[string]any) (*Account, error)
}
