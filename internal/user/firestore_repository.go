package user

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/healthdash/user-sync-service/internal/apperr"
)

type firestoreRepository struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreRepository returns a Repository backed by Firestore, selected
// with DATASTORE=firestore.
func NewFirestoreRepository(client *firestore.Client, collection string) Repository {
	return &firestoreRepository{client: client, collection: collection}
}

func (r *firestoreRepository) Upsert(ctx context.Context, account *Account) error {
	docRef := r.client.Collection(r.collection).Doc(account.ID)
	now := time.Now().UTC()

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		data := map[string]any{
			"id":         account.ID,
			"email":      nullable(account.Email),
			"first_name": nullable(account.FirstName),
			"last_name":  nullable(account.LastName),
			"raw":        account.Raw,
			"updated_at": now,
		}

		if !account.CreatedAt.IsZero() {
			data["created_at"] = account.CreatedAt
		} else if _, err := tx.Get(docRef); status.Code(err) == codes.NotFound {
			data["created_at"] = now
		} else if err != nil {
			return err
		}

		return tx.Set(docRef, data, firestore.MergeAll)
	})
	if err != nil {
		return apperr.Storage("failed to store user", err)
	}
	return nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
