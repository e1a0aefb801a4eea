package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Run     RunMetadata        `json:"run"`
	Scalars map[string]*Series `json:"scalars"`
}

// ExportJSON writes a run's metadata and scalar histories as indented JSON.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	scalars, err := s.LoadScalars(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Run: *meta, Scalars: scalars})
}
