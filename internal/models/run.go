package models

import "time"

type RunKind string

const (
	RunKindPlan     RunKind = "plan"
	RunKindGenerate RunKind = "generate"
	RunKindAudit    RunKind = "audit"
)

type RunStatus string

const (
	RunRunning RunStatus = "running"
	RunSuccess RunStatus = "success"
	RunError   RunStatus = "error"
)

// RunRecord is one row of the local run ledger.
type RunRecord struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	Kind       RunKind    `gorm:"size:20;not null;index:idx_run_kind" json:"kind"`
	Profile    string     `gorm:"size:100" json:"profile"`
	Status     RunStatus  `gorm:"size:20;not null" json:"status"`
	Summary    string     `gorm:"type:text" json:"summary,omitempty"`
	Error      string     `gorm:"type:text" json:"error,omitempty"`
	StartedAt  time.Time  `gorm:"not null;index" json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}
