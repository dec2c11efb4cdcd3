package project

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Save writes a document as gzipped JSON, creating parent directories as
// needed.
func Save(path string, doc *Document) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create project file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	defer gzWriter.Close()

	encoder := json.NewEncoder(gzWriter)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode project: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("failed to flush project file: %w", err)
	}
	return nil
}

// Load reads a document written by Save and upgrades it to the current
// version. Documents newer than this build are rejected.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open project file: %w", err)
	}
	defer f.Close()

	gzReader, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}
	defer gzReader.Close()

	var doc Document
	if err := json.NewDecoder(gzReader).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode project: %w", err)
	}
	if doc.Version > CurrentVersion {
		return nil, fmt.Errorf("project version %d is newer than supported version %d", doc.Version, CurrentVersion)
	}
	migrate(&doc)
	return &doc, nil
}
