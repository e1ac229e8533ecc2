// Package manifest records what a binder run produced: the scanned items,
// their page counts, and the resolved Bates numbers. The manifest is written
// next to the final document and mirrored into the run catalog.
package manifest

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RunManifest describes one complete binder run.
type RunManifest struct {
	RunID         string        `json:"run_id"`
	StartedAt     time.Time     `json:"started_at"`
	Root          string        `json:"root"`
	Output        string        `json:"output"`
	BatesStart    int           `json:"bates_start"`
	ContentsPages int           `json:"contents_pages"`
	// ContentsDrift is the page-count delta between the dry and commit
	// contents renders. Non-zero means the committed Bates numbers are stale
	// by that many pages; the run flags it but does not re-iterate.
	ContentsDrift int           `json:"contents_drift"`
	Items         []ItemRecord  `json:"items"`
	Duration      time.Duration `json:"duration_ns"`
	Status        string        `json:"status"`
}

// ItemRecord is the per-item slice of a run manifest.
type ItemRecord struct {
	Index        string `json:"index"`
	Name         string `json:"name"`
	Path         string `json:"path"`
	Kind         string `json:"kind"`
	CoverPages   int    `json:"cover_pages,omitempty"`
	ContentPages int    `json:"content_pages,omitempty"`
	Bates        int    `json:"bates,omitempty"`
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// ToJSON serializes the manifest.
func (m *RunManifest) ToJSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// FromJSON deserializes a manifest.
func FromJSON(data []byte) (*RunManifest, error) {
	var m RunManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
