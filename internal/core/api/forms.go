package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fieldworks/formlogic/internal/logic"
	"github.com/fieldworks/formlogic/internal/settings"
	"github.com/fieldworks/formlogic/internal/types"
)

// handleCreateForm stores a new form. Schema and settings are validated by
// round-tripping them through the codec before the insert, so a form that
// made it into storage always decodes.
func (s *RuntimeService) handleCreateForm(w http.ResponseWriter, r *http.Request) {
	var req createFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name required")
		return
	}

	schemaJSON := []byte(`{"fields":[]}`)
	if len(req.Schema) > 0 {
		if _, err := settings.DecodeSchema(req.Schema); err != nil {
			writeError(w, http.StatusBadRequest, "invalid schema: "+err.Error())
			return
		}
		schemaJSON = req.Schema
	}

	settingsJSON := []byte(`{"schema_version":1}`)
	if len(req.Settings) > 0 {
		if _, err := settings.Decode(req.Settings); err != nil {
			if errors.Is(err, types.ErrUnsupportedSchemaVersion) {
				writeError(w, http.StatusBadRequest, "unsupported settings version")
				return
			}
			writeError(w, http.StatusBadRequest, "invalid settings: "+err.Error())
			return
		}
		settingsJSON = req.Settings
	}

	formID := types.NewFormID()
	now := time.Now().UTC()
	if _, err := s.queries.Exec("insert-form",
		string(formID), req.Name, schemaJSON, settingsJSON, now, now); err != nil {
		s.logger.Error("failed to insert form", "error", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	writeJSON(w, http.StatusCreated, formResponse{
		FormID:    string(formID),
		Name:      req.Name,
		Schema:    schemaJSON,
		Settings:  settingsJSON,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (s *RuntimeService) handleGetForm(w http.ResponseWriter, r *http.Request) {
	row, err := s.getForm(r.PathValue("id"))
	if err != nil {
		s.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, formResponse{
		FormID:    row.FormID,
		Name:      row.Name,
		Schema:    row.SchemaJSON,
		Settings:  row.SettingsJSON,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	})
}

// handleValidateForm runs the advisory rule checks and returns the
// findings. Warnings never block saving or evaluation.
func (s *RuntimeService) handleValidateForm(w http.ResponseWriter, r *http.Request) {
	row, err := s.getForm(r.PathValue("id"))
	if err != nil {
		s.writeLookupError(w, err)
		return
	}
	formSettings, schema, ok := s.decodeForm(w, row)
	if !ok {
		return
	}

	warnings := logic.Validate(formSettings.Rules, schema)
	out := make([]warningResponse, len(warnings))
	for i, warning := range warnings {
		out[i] = warningResponse{
			RuleID: string(warning.RuleID),
			Code:   string(warning.Code),
			Field:  string(warning.Field),
			Detail: warning.Detail,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"warnings": out})
}

// getForm fetches a form row. Identifiers that do not parse as UUIDs are
// reported the same as missing rows; the path never reaches the database.
func (s *RuntimeService) getForm(id string) (*formRow, error) {
	if _, err := types.ParseFormID(id); err != nil {
		return nil, types.ErrFormNotFound
	}
	var row formRow
	if err := s.queries.Get("get-form", &row, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrFormNotFound
		}
		return nil, fmt.Errorf("failed to load form %s: %w", id, err)
	}
	return &row, nil
}

// decodeForm turns a form row's JSON blobs back into settings and schema.
// Rows are validated on insert, so a decode failure here means the stored
// blob was corrupted out of band.
func (s *RuntimeService) decodeForm(w http.ResponseWriter, row *formRow) (*settings.FormSettings, *types.Schema, bool) {
	formSettings, err := settings.Decode(row.SettingsJSON)
	if err != nil {
		s.logger.Error("stored settings failed to decode", "form_id", row.FormID, "error", err)
		writeError(w, http.StatusInternalServerError, "stored settings unreadable")
		return nil, nil, false
	}
	schema, err := settings.DecodeSchema(row.SchemaJSON)
	if err != nil {
		s.logger.Error("stored schema failed to decode", "form_id", row.FormID, "error", err)
		writeError(w, http.StatusInternalServerError, "stored schema unreadable")
		return nil, nil, false
	}
	return formSettings, schema, true
}
