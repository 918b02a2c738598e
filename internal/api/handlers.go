package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/savegress/intakedesk/internal/audit"
	"github.com/savegress/intakedesk/internal/intake"
	"github.com/savegress/intakedesk/pkg/models"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	store  *intake.Store
	audit  *audit.Logger
	logger *slog.Logger
}

// NewHandlers creates new handlers
func NewHandlers(store *intake.Store, auditLog *audit.Logger, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		store:  store,
		audit:  auditLog,
		logger: logger,
	}
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "intakedesk",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// ListPatients returns summary views of records matching the query filters
func (h *Handlers) ListPatients(w http.ResponseWriter, r *http.Request) {
	filter := intake.ListFilter{
		Search: r.URL.Query().Get("search"),
		Status: r.URL.Query().Get("status"),
		Date:   r.URL.Query().Get("date"),
	}

	summaries, err := h.store.List(filter)
	if err != nil {
		h.serverError(w, r, err, audit.ActionList, "")
		return
	}

	h.logAccess(r, audit.ActionList, "", audit.OutcomeSuccess)
	respond(w, http.StatusOK, summaries)
}

// GetPatient returns the full record, including all clinical fields
func (h *Handlers) GetPatient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := h.store.Get(id)
	if errors.Is(err, intake.ErrNotFound) {
		h.logAccess(r, audit.ActionRead, id, audit.OutcomeNotFound)
		respondError(w, http.StatusNotFound, "Patient not found")
		return
	}
	if err != nil {
		h.serverError(w, r, err, audit.ActionRead, id)
		return
	}

	h.logAccess(r, audit.ActionRead, id, audit.OutcomeSuccess)
	respond(w, http.StatusOK, rec)
}

// CreatePatient handles an intake form submission
func (h *Handlers) CreatePatient(w http.ResponseWriter, r *http.Request) {
	var sub models.PatientRecord
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rec, err := h.store.Create(sub)
	if err != nil {
		var verr *intake.ValidationError
		if errors.As(err, &verr) {
			h.logAccess(r, audit.ActionCreate, "", audit.OutcomeInvalid)
			respondError(w, http.StatusBadRequest, verr.Error())
			return
		}
		h.serverError(w, r, err, audit.ActionCreate, "")
		return
	}

	h.logAccess(r, audit.ActionCreate, rec.ID, audit.OutcomeSuccess)
	respond(w, http.StatusCreated, map[string]string{
		"id":      rec.ID,
		"message": "Intake submitted successfully",
	})
}

// UpdatePatient applies a partial update (status, reviewer, notes)
func (h *Handlers) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch intake.RecordPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rec, err := h.store.Update(id, patch)
	if errors.Is(err, intake.ErrNotFound) {
		h.logAccess(r, audit.ActionUpdate, id, audit.OutcomeNotFound)
		respondError(w, http.StatusNotFound, "Patient not found")
		return
	}
	if err != nil {
		h.serverError(w, r, err, audit.ActionUpdate, id)
		return
	}

	h.logAccess(r, audit.ActionUpdate, id, audit.OutcomeSuccess)
	respond(w, http.StatusOK, rec)
}

// DeletePatient removes a record permanently
func (h *Handlers) DeletePatient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := h.store.Delete(id)
	if errors.Is(err, intake.ErrNotFound) {
		h.logAccess(r, audit.ActionDelete, id, audit.OutcomeNotFound)
		respondError(w, http.StatusNotFound, "Patient not found")
		return
	}
	if err != nil {
		h.serverError(w, r, err, audit.ActionDelete, id)
		return
	}

	h.logAccess(r, audit.ActionDelete, id, audit.OutcomeSuccess)
	respond(w, http.StatusOK, map[string]string{"message": "Record deleted"})
}

// GetStats returns the dashboard header counters. Aggregate counts are
// not per-record access, so they are not audited.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats()
	if err != nil {
		h.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respond(w, http.StatusOK, stats)
}

// ListAuditEvents lists recorded access events
func (h *Handlers) ListAuditEvents(w http.ResponseWriter, r *http.Request) {
	filter := audit.EventFilter{
		Action:   r.URL.Query().Get("action"),
		Outcome:  r.URL.Query().Get("outcome"),
		RecordID: r.URL.Query().Get("record"),
	}
	respond(w, http.StatusOK, h.audit.GetEvents(filter))
}

// GetAuditStats returns access-trail statistics
func (h *Handlers) GetAuditStats(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.audit.GetStats())
}

// serverError handles unexpected failures: the real error is logged
// server-side, the client sees a generic message.
func (h *Handlers) serverError(w http.ResponseWriter, r *http.Request, err error, action, recordID string) {
	h.logger.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	h.logAccess(r, action, recordID, audit.OutcomeError)
	respondError(w, http.StatusInternalServerError, "Internal server error")
}

func (h *Handlers) logAccess(r *http.Request, action, recordID, outcome string) {
	h.audit.LogAccess(r.Context(), &audit.AccessRequest{
		Actor:    r.Header.Get("X-Provider"),
		IP:       r.RemoteAddr,
		Action:   action,
		RecordID: recordID,
		Outcome:  outcome,
	})
}

// Helper functions

func respond(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respond(w, status, map[string]string{"error": message})
}
