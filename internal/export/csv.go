// Package export writes the organized messages and the generated summary to disk.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"slackdigest/internal/commontypes"
)

// WriteCSV writes one DATE,MESSAGE row per entry of grouped to path,
// replacing any existing file. Fields containing commas, quotes or line
// breaks are quoted.
func WriteCSV(path string, grouped *commontypes.MessagesByDate) error {
	records := grouped.Records()

	if err := ensureDir(path); err != nil {
		return &commontypes.IOError{Path: path, Err: err}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return &commontypes.IOError{Path: path, Err: err}
	}
	if err := gocsv.MarshalFile(&records, f); err != nil {
		f.Close()
		return &commontypes.IOError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &commontypes.IOError{Path: path, Err: err}
	}
	return nil
}

// ReadCSV reads records previously written by WriteCSV.
func ReadCSV(path string) ([]commontypes.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var records []commontypes.Record
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return records, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}
