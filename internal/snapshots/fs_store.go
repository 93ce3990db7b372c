package snapshots

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FSStore reads exports back from the filesystem.
type FSStore struct {
	basePath string
}

// NewFSStore constructs an FS-backed export store rooted at basePath.
func NewFSStore(basePath string) *FSStore {
	return &FSStore{basePath: basePath}
}

// Load decodes the kind export for date into payload.
func (s *FSStore) Load(kind Kind, date string, payload any) error {
	if s == nil {
		return ErrNotConfigured
	}
	if date == "" {
		return errors.New("export date required")
	}
	return decodeFile(ExportPath(s.basePath, kind, date), payload)
}

// Dates returns the retained dates of kind recorded in the manifest, oldest first.
func (s *FSStore) Dates(kind Kind) ([]string, error) {
	if s == nil {
		return nil, ErrNotConfigured
	}
	var m Manifest
	if err := decodeFile(filepath.Join(s.basePath, manifestName), &m); err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return m.Kinds[kind].Dates, nil
}

// Latest decodes the newest retained export of kind into payload and returns its date.
func (s *FSStore) Latest(kind Kind, payload any) (string, error) {
	dates, err := s.Dates(kind)
	if err != nil {
		return "", err
	}
	if len(dates) == 0 {
		return "", fmt.Errorf("no %s exports: %w", kind, os.ErrNotExist)
	}
	date := dates[len(dates)-1]
	return date, s.Load(kind, date, payload)
}

func decodeFile(path string, payload any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(payload)
}
