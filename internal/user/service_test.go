package user

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/healthdash/user-sync-service/internal/apperr"
)

type fakeRepo struct {
	upsertFn func(context.Context, *Account) error
	upserts  []*Account
}

func (f *fakeRepo) Upsert(ctx context.Context, account *Account) error {
	f.upserts = append(f.upserts, account)
	if f.upsertFn != nil {
		return f.upsertFn(ctx, account)
	}
	return nil
}

type fakeFetcher struct {
	getUserFn func(context.Context, string) (map[string]any, error)
}

func (f *fakeFetcher) GetUser(ctx context.Context, userID string) (map[string]any, error) {
	if f.getUserFn != nil {
		return f.getUserFn(ctx, userID)
	}
	return nil, errors.New("getUserFn not provided")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestSyncRejectsMissingUser(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, nil, testLogger())

	_, err := svc.Sync(context.Background(), nil)
	if apperr.StatusCode(err) != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
	if len(repo.upserts) != 0 {
		t.Fatal("invalid payload must not reach storage")
	}
}

func TestSyncRejectsMissingID(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, nil, testLogger())

	for name, record := range map[string]map[string]any{
		"absent id":  {"email": "a@example.com"},
		"blank id":   {"id": "  "},
		"non-string": {"id": 42},
	} {
		if _, err := svc.Sync(context.Background(), record); apperr.StatusCode(err) != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %v", name, err)
		}
	}
	if len(repo.upserts) != 0 {
		t.Fatal("invalid payloads must not reach storage")
	}
}

func TestSyncWithoutFetcherUsesSuppliedRecord(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, nil, testLogger())

	acc, err := svc.Sync(context.Background(), map[string]any{"id": "u1", "email": "a@example.com"})
	if err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}
	if acc.ID != "u1" || acc.Email == nil || *acc.Email != "a@example.com" {
		t.Fatalf("unexpected account %+v", acc)
	}
	if acc.FirstName != nil || acc.LastName != nil {
		t.Fatal("absent name fields must stay null")
	}
	if len(repo.upserts) != 1 {
		t.Fatalf("expected one upsert, got %d", len(repo.upserts))
	}
}

func TestSyncPrefersAuthoritativeRecord(t *testing.T) {
	repo := &fakeRepo{}
	fetcher := &fakeFetcher{
		getUserFn: func(_ context.Context, userID string) (map[string]any, error) {
			return map[string]any{"id": userID, "first_name": "Ada"}, nil
		},
	}
	svc := NewService(repo, fetcher, testLogger())

	acc, err := svc.Sync(context.Background(), map[string]any{"id": "u1", "first_name": "Stale"})
	if err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}
	if acc.FirstName == nil || *acc.FirstName != "Ada" {
		t.Fatalf("expected authoritative record to win, got %v", acc.FirstName)
	}
}

func TestSyncFallsBackWhenFetchFails(t *testing.T) {
	repo := &fakeRepo{}
	fetcher := &fakeFetcher{
		getUserFn: func(context.Context, string) (map[string]any, error) {
			return nil, errors.New("provider down")
		},
	}
	svc := NewService(repo, fetcher, testLogger())

	acc, err := svc.Sync(context.Background(), map[string]any{"id": "u1", "email": "a@example.com"})
	if err != nil {
		t.Fatalf("fetch failure must not fail the sync, got %v", err)
	}
	if acc.Email == nil || *acc.Email != "a@example.com" {
		t.Fatalf("expected supplied record to be used, got %+v", acc)
	}
	if len(repo.upserts) != 1 {
		t.Fatalf("expected one upsert, got %d", len(repo.upserts))
	}
}

func TestSyncPropagatesStorageErrors(t *testing.T) {
	wantErr := apperr.Storage("failed to store user", errors.New("boom"))
	repo := &fakeRepo{
		upsertFn: func(context.Context, *Account) error { return wantErr },
	}
	svc := NewService(repo, nil, testLogger())

	_, err := svc.Sync(context.Background(), map[string]any{"id": "u1"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected %v, got %v", wantErr, err)
	}
}
