package user

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/healthdash/user-sync-service/internal/apperr"
)

// MongoSettings locates the accounts collection. An empty URI is tolerated at
// construction; it surfaces as a configuration error on first use so the rest
// of the service (health, verify) keeps working.
type MongoSettings struct {
	URI        string
	Database   string
	Collection string
}

type mongoRepository struct {
	settings MongoSettings

	connectOnce sync.Once
	client      *mongo.Client
	connectErr  error
}

// NewMongoRepository returns a Repository backed by MongoDB. The client is
// created lazily on first use and cached for the process lifetime; it is
// never closed on the request path.
func NewMongoRepository(settings MongoSettings) Repository {
	return &mongoRepository{settings: settings}
}

func (r *mongoRepository) collection(ctx context.Context) (*mongo.Collection, error) {
	if r.settings.URI == "" {
		return nil, apperr.Configuration("storage connection string is not configured")
	}

	r.connectOnce.Do(func() {
		// The handle outlives any single request, so construction is not
		// bound to the request context. Dialing itself is deferred by the
		// driver until the first operation.
		r.client, r.connectErr = mongo.Connect(context.Background(),
			options.Client().ApplyURI(r.settings.URI))
	})
	if r.connectErr != nil {
		return nil, apperr.Storage("storage unavailable", r.connectErr)
	}
	return r.client.Database(r.settings.Database).Collection(r.settings.Collection), nil
}

func (r *mongoRepository) Upsert(ctx context.Context, account *Account) error {
	coll, err := r.collection(ctx)
	if err != nil {
		return err
	}

	filter, update := upsertDocument(account, time.Now().UTC())
	if _, err := coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return apperr.Storage("failed to store user", err)
	}
	return nil
}

// upsertDocument builds the idempotent update: mapped fields are always
// replaced, while a missing provider creation time is only written when the
// document is first inserted.
func upsertDocument(account *Account, now time.Time) (bson.M, bson.M) {
	set := bson.M{
		"email":      account.Email,
		"first_name": account.FirstName,
		"last_name":  account.LastName,
		"raw":        account.Raw,
		"updated_at": now,
	}
	update := bson.M{"$set": set}
	if account.CreatedAt.IsZero() {
		update["$setOnInsert"] = bson.M{"created_at": now}
	} else {
		set["created_at"] = account.CreatedAt
	}
	return bson.M{"_id": account.ID}, update
}
