package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/healthdash/user-sync-service/internal/apperr"
	"github.com/healthdash/user-sync-service/internal/user"
	"github.com/healthdash/user-sync-service/internal/webhook"
)

const (
	serviceTimeout   = 8 * time.Second
	maxSyncBodyBytes = 1 << 20 // webhook payloads are a single user record
)

// RegisterRoutes mounts the sync endpoints. verifier may be nil (no shared
// secret, open endpoint) and provider may be nil (no Clerk secret key).
func RegisterRoutes(r chi.Router, service user.Service, verifier *webhook.Verifier, provider user.Fetcher, logger *slog.Logger) {
	r.Route("/api/users", func(r chi.Router) {
		r.Use(middleware.Recoverer)

		r.Post("/sync", syncUser(service, verifier, logger))
		r.Post("/verify", verifyUser(provider, logger))
	})
}

func syncUser(service user.Service, verifier *webhook.Verifier, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxSyncBodyBytes)
		defer r.Body.Close()

		body, err := io.ReadAll(r.Body)
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				writeError(w, http.StatusRequestEntityTooLarge, "payload too large")
				return
			}
			writeError(w, http.StatusBadRequest, "failed to read request body")
			return
		}

		// The signature covers the exact bytes received, before any decoding.
		if err := verifier.Verify(body, r.Header.Get(webhook.SignatureHeader)); err != nil {
			writeError(w, apperr.StatusCode(err), apperr.ClientMessage(err))
			return
		}

		var event struct {
			User map[string]any `json:"user"`
		}
		if err := json.Unmarshal(body, &event); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		if _, err := service.Sync(ctx, event.User); err != nil {
			status := apperr.StatusCode(err)
			if status >= http.StatusInternalServerError {
				logRequestError(r.Context(), logger, "failed to sync user", err)
			}
			writeError(w, status, apperr.ClientMessage(err))
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

func verifyUser(provider user.Fetcher, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if provider == nil {
			writeError(w, http.StatusNotImplemented, "identity provider is not configured")
			return
		}

		var body struct {
			UserID string `json:"userId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if strings.TrimSpace(body.UserID) == "" {
			writeError(w, http.StatusBadRequest, "missing userId")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		record, err := provider.GetUser(ctx, body.UserID)
		if err != nil {
			logRequestError(r.Context(), logger, "failed to fetch user from provider", err)
			writeError(w, http.StatusInternalServerError, "failed to fetch user")
			return
		}
		writeJSON(w, http.StatusOK, record)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func logRequestError(ctx context.Context, logger *slog.Logger, message string, err error) {
	if logger == nil || err == nil {
		return
	}
	attrs := []any{slog.Any("error", err)}
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		attrs = append(attrs, slog.String("requestId", reqID))
	}
	logger.Error(message, attrs...)
}
