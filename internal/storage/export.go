package storage

import (
	"encoding/json"
	"io"
)

// ExportData is the JSON form of a saved run.
type ExportData struct {
	Metadata RunMetadata `json:"metadata"`
	Trace    []TraceRow  `json:"trace"`
}

// ExportJSON writes a saved run as indented JSON.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	rows, err := s.LoadTrace(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Metadata: *meta, Trace: rows})
}
