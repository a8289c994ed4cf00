package user

import (
	"context"
	"log/slog"
	"strings"

	"github.com/healthdash/user-sync-service/internal/apperr"
)

type service struct {
	repo    Repository
	fetcher Fetcher
	logger  *slog.Logger
}

// NewService returns the sync service. fetcher may be nil, which skips the
// authoritative-record refetch and trusts the supplied payload.
func NewService(repo Repository, fetcher Fetcher, logger *slog.Logger) Service {
	return &service{repo: repo, fetcher: fetcher, logger: logger}
}

// Sync validates the inbound record, optionally replaces it with the
// provider's authoritative view, maps it to the canonical shape, and upserts
// it keyed on the external id. Refetch failures degrade to the supplied
// record; validation failures never reach storage.
func (s *service) Sync(ctx context.Context, record map[string]any) (*Account, error) {
	if record == nil {
		return nil, apperr.Validation("missing user payload")
	}
	id, _ := record["id"].(string)
	if strings.TrimSpace(id) == "" {
		return nil, apperr.Validation("missing user id")
	}

	if s.fetcher != nil {
		fetched, err := s.fetcher.GetUser(ctx, id)
		switch {
		case err != nil:
			s.logger.Warn("authoritative user fetch failed, falling back to supplied record",
				"userId", id, "error", apperr.UpstreamFetch(err).Error())
		case fetched != nil:
			record = fetched
		}
	}

	account := mapRecord(id, record)
	if err := s.repo.Upsert(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}
