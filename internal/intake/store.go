package intake

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/savegress/intakedesk/internal/storage"
	"github.com/savegress/intakedesk/pkg/models"
)

// Store enforces the patient-record lifecycle and exposes the CRUD/query
// surface over a FileStore.
//
// The whole collection is the single shared resource: every mutation runs
// the full load/mutate/save cycle under the write lock, reads run under
// the read lock. That serializes concurrent mutations instead of letting
// the second save silently overwrite the first.
type Store struct {
	files  *storage.FileStore
	logger *slog.Logger
	mu     sync.RWMutex
}

// ListFilter holds the optional list filters. All supplied filters apply
// conjunctively.
type ListFilter struct {
	// Search matches case-insensitively against "first last" name, email,
	// or chief complaint.
	Search string
	// Status matches exactly; empty or "all" disables the filter.
	Status string
	// Date prefix-matches the submission timestamp, e.g. "2024-01-05".
	Date string
}

// RecordPatch holds a partial update. Nil fields are left untouched;
// empty-string Status and ReviewedBy are ignored as well, matching the
// dashboard's PATCH semantics. Notes applies even when empty.
type RecordPatch struct {
	Status     *string `json:"status"`
	ReviewedBy *string `json:"reviewedBy"`
	Notes      *string `json:"notes"`
}

// NewStore creates a record store over the given file store.
func NewStore(files *storage.FileStore, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{files: files, logger: logger}
}

// Create validates the submission, assigns identity and lifecycle fields,
// and persists the record at the head of the collection (list order is
// most-recent-first by construction). Returns the stored record.
func (s *Store) Create(sub models.PatientRecord) (*models.PatientRecord, error) {
	if err := validateSubmission(&sub); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.files.LoadAll()
	if err != nil {
		return nil, err
	}

	rec := sub
	rec.ID = uuid.New().String()
	rec.Status = models.StatusPending
	rec.SubmittedAt = time.Now().UTC().Format(time.RFC3339)
	rec.ReviewedAt = nil
	rec.ReviewedBy = nil

	records = append([]models.PatientRecord{rec}, records...)
	if err := s.files.SaveAll(records); err != nil {
		return nil, err
	}

	s.logger.Info("intake submitted", "record_id", rec.ID)
	return &rec, nil
}

// Get returns the full record for id, including all clinical fields.
func (s *Store) Get(id string) (*models.PatientRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.files.LoadAll()
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].ID == id {
			rec := records[i]
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

// List returns summary views of the records matching the filter, in
// collection order (head = most recent).
func (s *Store) List(filter ListFilter) ([]models.PatientSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.files.LoadAll()
	if err != nil {
		return nil, err
	}

	summaries := make([]models.PatientSummary, 0, len(records))
	for i := range records {
		if matches(&records[i], filter) {
			summaries = append(summaries, records[i].Summary())
		}
	}
	return summaries, nil
}

// Update applies the patch to the record and persists the collection.
// Setting status to reviewed stamps ReviewedAt with the current time,
// even when the record was already reviewed (re-review refreshes the
// timestamp).
func (s *Store) Update(id string, patch RecordPatch) (*models.PatientRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.files.LoadAll()
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range records {
		if records[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ErrNotFound
	}

	rec := &records[idx]
	if patch.Status != nil && *patch.Status != "" {
		rec.Status = *patch.Status
	}
	if patch.ReviewedBy != nil && *patch.ReviewedBy != "" {
		by := *patch.ReviewedBy
		rec.ReviewedBy = &by
	}
	if patch.Notes != nil {
		rec.Notes = *patch.Notes
	}
	if patch.Status != nil && *patch.Status == models.StatusReviewed {
		at := time.Now().UTC().Format(time.RFC3339)
		rec.ReviewedAt = &at
	}

	if err := s.files.SaveAll(records); err != nil {
		return nil, err
	}

	out := records[idx]
	return &out, nil
}

// Delete removes the record and persists the collection. Deletion is
// destructive and final.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.files.LoadAll()
	if err != nil {
		return err
	}

	filtered := records[:0:0]
	for i := range records {
		if records[i].ID != id {
			filtered = append(filtered, records[i])
		}
	}
	if len(filtered) == len(records) {
		return ErrNotFound
	}

	if err := s.files.SaveAll(filtered); err != nil {
		return err
	}

	s.logger.Info("record deleted", "record_id", id)
	return nil
}

// Stats returns the dashboard counters. Today counts records submitted on
// the current UTC calendar date, matching the UTC submission timestamps.
func (s *Store) Stats() (*models.IntakeStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.files.LoadAll()
	if err != nil {
		return nil, err
	}

	today := time.Now().UTC().Format("2006-01-02")
	stats := &models.IntakeStats{Total: len(records)}
	for i := range records {
		switch records[i].Status {
		case models.StatusPending:
			stats.Pending++
		case models.StatusReviewed:
			stats.Reviewed++
		}
		if strings.HasPrefix(records[i].SubmittedAt, today) {
			stats.Today++
		}
	}
	return stats, nil
}

// validateSubmission checks the six required fields in fixed order and
// reports the first missing one.
func validateSubmission(r *models.PatientRecord) error {
	required := []struct {
		key   string
		value string
	}{
		{"firstName", r.FirstName},
		{"lastName", r.LastName},
		{"dateOfBirth", r.DateOfBirth},
		{"email", r.Email},
		{"phone", r.Phone},
		{"chiefComplaint", r.ChiefComplaint},
	}
	for _, f := range required {
		if f.value == "" {
			return &ValidationError{Field: f.key}
		}
	}
	return nil
}

func matches(r *models.PatientRecord, f ListFilter) bool {
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		name := strings.ToLower(r.FirstName + " " + r.LastName)
		if !strings.Contains(name, q) &&
			!strings.Contains(strings.ToLower(r.Email), q) &&
			!strings.Contains(strings.ToLower(r.ChiefComplaint), q) {
			return false
		}
	}
	if f.Status != "" && f.Status != "all" && r.Status != f.Status {
		return false
	}
	if f.Date != "" && !strings.HasPrefix(r.SubmittedAt, f.Date) {
		return false
	}
	return true
}
