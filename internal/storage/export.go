package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Meta   RunMetadata `json:"meta"`
	Steps  int         `json:"steps"`
	Frames []Frame     `json:"frames"`
}

// ExportJSON writes a run and its frames as indented JSON.
func ExportJSON(w io.Writer, meta RunMetadata, frames []Frame) error {
	data := ExportData{
		Meta:   meta,
		Steps:  meta.Ticks,
		Frames: frames,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
