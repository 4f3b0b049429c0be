package models

import "time"

type DriftStatus string

const (
	DriftInSync   DriftStatus = "in-sync"
	DriftOutdated DriftStatus = "outdated"
	DriftMissing  DriftStatus = "missing"
)

func (s DriftStatus) Valid() bool {
	switch s {
	case DriftInSync, DriftOutdated, DriftMissing:
		return true
	}
	return false
}

// DriftEntry is a single audit finding. Entries are immutable once appended.
type DriftEntry struct {
	Path       string      `json:"path"`
	Status     DriftStatus `json:"status"`
	SectionID  string      `json:"sectionId,omitempty"`
	Reason     string      `json:"reason,omitempty"`
	Confidence *float64    `json:"confidence,omitempty"`
}

type DriftSummary struct {
	InSync   int `json:"inSync"`
	Outdated int `json:"outdated"`
	Missing  int `json:"missing"`
}

// Total is the number of entries the summary accounts for.
func (s DriftSummary) Total() int {
	return s.InSync + s.Outdated + s.Missing
}

// DriftReport accumulates findings for one audit run.
type DriftReport struct {
	GeneratedAt time.Time    `json:"generatedAt"`
	Score       int          `json:"score"`
	Entries     []DriftEntry `json:"entries"`
	Summary     DriftSummary `json:"summary"`
}
