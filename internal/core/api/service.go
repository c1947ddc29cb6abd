// Package api provides the HTTP runtime service for form submission
// sessions: open a session, feed value changes, partial-save, submit or
// abandon, and read the automation delivery log. Thin orchestration layer
// delegating to the settings codec, the engine session, and the database
// package. Effects are delivered off the request path.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/fieldworks/formlogic/internal/automation"
	"github.com/fieldworks/formlogic/internal/core/config"
	"github.com/fieldworks/formlogic/internal/core/db"
	"github.com/fieldworks/formlogic/internal/types"
)

// RuntimeService implements the form runtime HTTP API.
type RuntimeService struct {
	queries *db.Queries
	sender  automation.Sender
	cfg     *config.RuntimeConfig
	logger  *slog.Logger
}

// NewRuntimeService creates a service instance with dependencies.
func NewRuntimeService(queries *db.Queries, sender automation.Sender, cfg *config.RuntimeConfig, logger *slog.Logger) (*RuntimeService, error) {
	if queries == nil {
		return nil, fmt.Errorf("queries cannot be nil")
	}
	if sender == nil {
		return nil, fmt.Errorf("sender cannot be nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RuntimeService{
		queries: queries,
		sender:  sender,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

// Routes builds the service's HTTP mux.
func (s *RuntimeService) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/forms", s.handleCreateForm)
	mux.HandleFunc("GET /v1/forms/{id}", s.handleGetForm)
	mux.HandleFunc("POST /v1/forms/{id}/validate", s.handleValidateForm)
	mux.HandleFunc("POST /v1/forms/{id}/submissions", s.handleOpenSubmission)

	mux.HandleFunc("POST /v1/submissions/{id}/values", s.handleSetValues)
	mux.HandleFunc("POST /v1/submissions/{id}/partial", s.handlePartialSave)
	mux.HandleFunc("POST /v1/submissions/{id}/submit", s.handleSubmit)
	mux.HandleFunc("POST /v1/submissions/{id}/abandon", s.handleAbandon)
	mux.HandleFunc("GET /v1/submissions/{id}/deliveries", s.handleListDeliveries)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return http.MaxBytesHandler(mux, s.cfg.MaxBodyBytes)
}

// deliver hands effects to the sender off the request path and settles
// their delivery log rows. Runs with its own context: a closed request
// must not cancel an in-flight webhook.
func (s *RuntimeService) deliver(deliveryIDs []string, effects []automation.EffectRequest) {
	for i, effect := range effects {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.WebhookTimeout)
		err := s.sender.Send(ctx, effect)
		cancel()

		status, detail := "sent", ""
		if err != nil {
			// At-most-once: the fired-set was committed at dispatch, the
			// failure is recorded but never retried.
			status, detail = "failed", err.Error()
		}
		if _, dbErr := s.queries.Exec("update-delivery-status", status, detail, deliveryIDs[i]); dbErr != nil {
			s.logger.Error("failed to settle delivery row",
				"delivery_id", deliveryIDs[i], "error", dbErr)
		}
	}
}

// recordDeliveries writes queued delivery log rows for a dispatch and
// returns their ids for later settlement.
func (s *RuntimeService) recordDeliveries(submissionID types.SubmissionID, trigger automation.Trigger, effects []automation.EffectRequest) ([]string, error) {
	ids := make([]string, len(effects))
	now := time.Now().UTC()
	for i, effect := range effects {
		id := string(types.NewDeliveryID())
		ids[i] = id
		_, err := s.queries.Exec("insert-delivery",
			id, string(submissionID), string(effect.AutomationID),
			string(effect.Action), effect.Destination, string(trigger),
			"queued", "", now)
		if err != nil {
			return nil, fmt.Errorf("failed to record delivery: %w", err)
		}
	}
	return ids, nil
}
