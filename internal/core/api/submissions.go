package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fieldworks/formlogic/internal/automation"
	"github.com/fieldworks/formlogic/internal/engine"
	"github.com/fieldworks/formlogic/internal/types"
)

// handleOpenSubmission starts a new submission session for a form. The
// session's value store and fired-set begin empty; the response carries
// the default derived state so the client can render page one.
func (s *RuntimeService) handleOpenSubmission(w http.ResponseWriter, r *http.Request) {
	row, err := s.getForm(r.PathValue("id"))
	if err != nil {
		s.writeLookupError(w, err)
		return
	}
	formSettings, schema, ok := s.decodeForm(w, row)
	if !ok {
		return
	}

	session := engine.NewSession(schema, formSettings.Rules, formSettings.Automations)
	now := time.Now().UTC()
	if _, err := s.queries.Exec("insert-submission",
		string(session.ID()), row.FormID, string(session.Status()),
		[]byte("{}"), []byte("[]"), now, now); err != nil {
		s.logger.Error("failed to insert submission", "form_id", row.FormID, "error", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	derived := session.Evaluate()
	writeJSON(w, http.StatusCreated, submissionResponse{
		SubmissionID: string(session.ID()),
		FormID:       row.FormID,
		Status:       string(session.Status()),
		StartedAt:    types.SubmissionIDTime(session.ID()),
		Values:       map[string]any{},
		Derived:      toDerivedStateResponse(derived),
	})
}

// handleSetValues merges a batch of field changes into the session,
// re-evaluates, and returns the fresh derived state. Field-change
// automations dispatch off the request path.
func (s *RuntimeService) handleSetValues(w http.ResponseWriter, r *http.Request) {
	var req setValuesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if len(req.Values) == 0 {
		writeError(w, http.StatusBadRequest, "values required")
		return
	}

	session, formID, ok := s.restoreSession(w, r.PathValue("id"))
	if !ok {
		return
	}

	derived, effects, err := session.SetValues(fromValuesMap(req.Values))
	if err != nil {
		if errors.Is(err, types.ErrSessionClosed) {
			writeError(w, http.StatusConflict, "submission already closed")
			return
		}
		s.logger.Error("failed to apply values", "submission_id", session.ID(), "error", err)
		writeError(w, http.StatusInternalServerError, "evaluation error")
		return
	}

	if !s.persistSession(w, session) {
		return
	}
	s.dispatchEffects(session.ID(), automation.TriggerOnFieldChange, effects)

	writeJSON(w, http.StatusOK, submissionResponse{
		SubmissionID: string(session.ID()),
		FormID:       formID,
		Status:       string(session.Status()),
		StartedAt:    types.SubmissionIDTime(session.ID()),
		Values:       toValuesMap(session.Values()),
		Derived:      toDerivedStateResponse(derived),
	})
}

func (s *RuntimeService) handlePartialSave(w http.ResponseWriter, r *http.Request) {
	s.handleLifecycle(w, r, automation.TriggerOnPartial,
		func(session *engine.Session) ([]automation.EffectRequest, error) {
			return session.PartialSave()
		})
}

func (s *RuntimeService) handleSubmit(w http.ResponseWriter, r *http.Request) {
	s.handleLifecycle(w, r, automation.TriggerOnSubmit,
		func(session *engine.Session) ([]automation.EffectRequest, error) {
			return session.Submit()
		})
}

func (s *RuntimeService) handleAbandon(w http.ResponseWriter, r *http.Request) {
	s.handleLifecycle(w, r, automation.TriggerOnAbandon,
		func(session *engine.Session) ([]automation.EffectRequest, error) {
			return session.Abandon()
		})
}

// handleLifecycle is the shared partial/submit/abandon path: restore,
// run the lifecycle event, persist, hand effects to the sender.
func (s *RuntimeService) handleLifecycle(w http.ResponseWriter, r *http.Request, trigger automation.Trigger,
	event func(*engine.Session) ([]automation.EffectRequest, error)) {
	session, formID, ok := s.restoreSession(w, r.PathValue("id"))
	if !ok {
		return
	}

	effects, err := event(session)
	if err != nil {
		if errors.Is(err, types.ErrSessionClosed) {
			writeError(w, http.StatusConflict, "submission already closed")
			return
		}
		s.logger.Error("lifecycle event failed",
			"submission_id", session.ID(), "trigger", trigger, "error", err)
		writeError(w, http.StatusInternalServerError, "evaluation error")
		return
	}

	if !s.persistSession(w, session) {
		return
	}
	s.dispatchEffects(session.ID(), trigger, effects)

	writeJSON(w, http.StatusOK, submissionResponse{
		SubmissionID: string(session.ID()),
		FormID:       formID,
		Status:       string(session.Status()),
		StartedAt:    types.SubmissionIDTime(session.ID()),
		Values:       toValuesMap(session.Values()),
	})
}

func (s *RuntimeService) handleListDeliveries(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sub, err := s.getSubmission(id)
	if err != nil {
		s.writeLookupError(w, err)
		return
	}

	var rows []deliveryRow
	if err := s.queries.Select("list-deliveries-for-submission", &rows, sub.SubmissionID); err != nil {
		s.logger.Error("failed to list deliveries", "submission_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	out := make([]deliveryResponse, len(rows))
	for i, row := range rows {
		out[i] = deliveryResponse{
			DeliveryID:   row.DeliveryID,
			AutomationID: row.AutomationID,
			Action:       row.Action,
			Destination:  row.Destination,
			Trigger:      row.TriggerEvent,
			Status:       row.Status,
			Detail:       row.Detail,
			CreatedAt:    row.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"deliveries": out})
}

// getSubmission fetches a submission row, mapping unparseable ids and
// missing rows onto the not-found sentinel.
func (s *RuntimeService) getSubmission(id string) (*submissionRow, error) {
	if _, err := types.ParseSubmissionID(id); err != nil {
		return nil, types.ErrSubmissionNotFound
	}
	var row submissionRow
	if err := s.queries.Get("get-submission", &row, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to load submission %s: %w", id, err)
	}
	return &row, nil
}

// restoreSession rebuilds an engine session from the submission and form
// rows. The fired-set rides along in fired_json, so at-most-once delivery
// holds across processes.
func (s *RuntimeService) restoreSession(w http.ResponseWriter, id string) (*engine.Session, string, bool) {
	sub, err := s.getSubmission(id)
	if err != nil {
		s.writeLookupError(w, err)
		return nil, "", false
	}

	form, err := s.getForm(sub.FormID)
	if err != nil {
		s.writeLookupError(w, err)
		return nil, "", false
	}
	formSettings, schema, ok := s.decodeForm(w, form)
	if !ok {
		return nil, "", false
	}

	var storedValues map[string]any
	if err := json.Unmarshal(sub.ValuesJSON, &storedValues); err != nil {
		s.logger.Error("stored values failed to decode", "submission_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "stored values unreadable")
		return nil, "", false
	}
	var firedIDs []string
	if err := json.Unmarshal(sub.FiredJSON, &firedIDs); err != nil {
		s.logger.Error("stored fired-set failed to decode", "submission_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "stored fired-set unreadable")
		return nil, "", false
	}
	fired := make([]types.AutomationID, len(firedIDs))
	for i, fid := range firedIDs {
		fired[i] = types.AutomationID(fid)
	}

	session := engine.RestoreSession(
		types.SubmissionID(sub.SubmissionID), schema,
		formSettings.Rules, formSettings.Automations,
		fromValuesMap(storedValues), engine.Status(sub.Status),
		automation.NewFiredSetFromIDs(fired))
	return session, sub.FormID, true
}

// persistSession writes the session's values, fired-set and status back
// to the submission row. The fired-set must land before effects go out
// so a crash cannot double-fire.
func (s *RuntimeService) persistSession(w http.ResponseWriter, session *engine.Session) bool {
	valuesJSON, err := json.Marshal(toValuesMap(session.Values()))
	if err != nil {
		s.logger.Error("failed to encode values", "submission_id", session.ID(), "error", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return false
	}
	firedIDs := session.FiredSet().IDs()
	firedStrings := make([]string, len(firedIDs))
	for i, fid := range firedIDs {
		firedStrings[i] = string(fid)
	}
	firedJSON, err := json.Marshal(firedStrings)
	if err != nil {
		s.logger.Error("failed to encode fired-set", "submission_id", session.ID(), "error", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return false
	}

	if _, err := s.queries.Exec("update-submission",
		string(session.Status()), valuesJSON, firedJSON, time.Now().UTC(),
		string(session.ID())); err != nil {
		s.logger.Error("failed to persist submission", "submission_id", session.ID(), "error", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return false
	}
	return true
}

// dispatchEffects records queued delivery rows and sends them off the
// request path. A recording failure drops the send but never the
// response: the fired-set is already committed.
func (s *RuntimeService) dispatchEffects(submissionID types.SubmissionID, trigger automation.Trigger, effects []automation.EffectRequest) {
	if len(effects) == 0 {
		return
	}
	deliveryIDs, err := s.recordDeliveries(submissionID, trigger, effects)
	if err != nil {
		s.logger.Error("failed to record deliveries",
			"submission_id", submissionID, "trigger", trigger, "error", err)
		return
	}
	go s.deliver(deliveryIDs, effects)
}
