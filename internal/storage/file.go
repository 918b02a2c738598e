package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/savegress/intakedesk/pkg/models"
)

// ErrCorrupt indicates the data file exists but cannot be parsed as a
// record collection.
var ErrCorrupt = errors.New("storage: data file corrupt")

// FileStore persists the whole patient-record collection as one JSON array
// file. There are no incremental writes; every save rewrites the full
// collection.
type FileStore struct {
	path   string
	logger *slog.Logger
}

// NewFileStore creates a FileStore over the given data file path.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{path: path, logger: logger}
}

// Path returns the data file path.
func (s *FileStore) Path() string {
	return s.path
}

// LoadAll reads the full collection from the data file. A missing file is
// initialized to an empty collection. A file that cannot be parsed returns
// an error wrapping ErrCorrupt.
func (s *FileStore) LoadAll() ([]models.PatientRecord, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		if err := s.write([]byte("[]\n")); err != nil {
			return nil, fmt.Errorf("storage: init %s: %w", s.path, err)
		}
		s.logger.Info("initialized empty data file", "path", s.path)
		return []models.PatientRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", s.path, err)
	}

	var records []models.PatientRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	if records == nil {
		records = []models.PatientRecord{}
	}
	return records, nil
}

// SaveAll overwrites the data file with the given collection. The write
// goes through a temp file in the same directory followed by a rename, so
// a crash mid-write leaves the previous file intact rather than a torn
// one.
func (s *FileStore) SaveAll(records []models.PatientRecord) error {
	if records == nil {
		records = []models.PatientRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: marshal collection: %w", err)
	}
	if err := s.write(append(data, '\n')); err != nil {
		return fmt.Errorf("storage: write %s: %w", s.path, err)
	}
	return nil
}

func (s *FileStore) write(data []byte) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
