package models

import "time"

// Strategy controls how generated content is merged into existing docs.
type Strategy string

const (
	StrategyAppend         Strategy = "append"
	StrategyRewriteSection Strategy = "rewrite-section"
	StrategySuggestOnly    Strategy = "suggest-only"
)

func (s Strategy) Valid() bool {
	switch s {
	case StrategyAppend, StrategyRewriteSection, StrategySuggestOnly:
		return true
	}
	return false
}

// GenerationMode is how a run's output lands on disk.
type GenerationMode string

const (
	ModeApplied     GenerationMode = "applied"
	ModeDryRun      GenerationMode = "dry-run"
	ModeSuggestOnly GenerationMode = "suggest-only"
)

// Staged reports whether the mode writes to the suggestions area instead of the docs tree.
func (m GenerationMode) Staged() bool {
	return m == ModeDryRun || m == ModeSuggestOnly
}

type ResultStatus string

const (
	ResultCreated ResultStatus = "created"
	ResultUpdated ResultStatus = "updated"
	ResultSkipped ResultStatus = "skipped"
)

// DefaultConfidence is assigned to results that carry no confidence of their own.
const DefaultConfidence = 0.5

// GeneratedSectionResult is one provider output. A nil or empty Content means
// the provider produced nothing actionable for the section. A nil Confidence
// means the provider gave none.
type GeneratedSectionResult struct {
	SectionID   string       `json:"sectionId"`
	TargetPath  string       `json:"targetPath"`
	Strategy    Strategy     `json:"strategy"`
	Status      ResultStatus `json:"status"`
	Confidence  *float64     `json:"confidence"`
	NeedsReview bool         `json:"needsReview"`
	Note        string       `json:"note,omitempty"`
	Content     *string      `json:"content,omitempty"`
}

// Normalize fills the defaults a provider may leave out.
func (r GeneratedSectionResult) Normalize(fallback Strategy) GeneratedSectionResult {
	if r.Strategy == "" {
		r.Strategy = fallback
	}
	if r.Strategy == "" {
		r.Strategy = StrategyAppend
	}
	if r.Status == "" {
		r.Status = ResultCreated
	}
	c := DefaultConfidence
	if r.Confidence != nil {
		c = min(max(*r.Confidence, 0), 1)
	}
	r.Confidence = &c
	return r
}

// Score is the confidence, or DefaultConfidence when none was given.
func (r GeneratedSectionResult) Score() float64 {
	if r.Confidence == nil {
		return DefaultConfidence
	}
	return *r.Confidence
}

// HasContent reports whether the result carries text to write.
func (r GeneratedSectionResult) HasContent() bool {
	return r.Content != nil && *r.Content != ""
}

// GenerationMetadata records what happened to one section in a run.
type GenerationMetadata struct {
	Path          string         `json:"path"`
	SectionID     string         `json:"sectionId"`
	Strategy      Strategy       `json:"strategy"`
	Profile       string         `json:"profile,omitempty"`
	Confidence    float64        `json:"confidence"`
	Mode          GenerationMode `json:"mode"`
	LastUpdatedAt time.Time      `json:"lastUpdatedAt"`
}

// GenerationRunMetadata is the per-run artifact persisted to the metadata directory.
type GenerationRunMetadata struct {
	RunID             string               `json:"runId"`
	PlanPath          string               `json:"planPath"`
	GeneratedAt       time.Time            `json:"generatedAt"`
	SectionsProcessed int                  `json:"sectionsProcessed"`
	Mode              GenerationMode       `json:"mode"`
	Strategy          Strategy             `json:"strategy"`
	Profile           string               `json:"profile"`
	OutputRoot        string               `json:"outputRoot"`
	Sections          []GenerationMetadata `json:"sections"`
}

// GenerationRequest is what a generation provider receives, once per run.
type GenerationRequest struct {
	Context        *ContextSnapshot
	Plan           *DocsPlan
	Strategy       Strategy
	TargetSections []DocSection
	Profile        string
	Style          StyleConfig
}

// GenerationBatch is a provider's answer, in the order sections should be applied.
type GenerationBatch struct {
	Sections []GeneratedSectionResult `json:"sections"`
}
