package models

import (
	"fmt"
	"time"
)

// SectionStatus classifies a documentation section against the files on disk.
type SectionStatus string

const (
	SectionExisting SectionStatus = "existing"
	SectionNew      SectionStatus = "new"
	SectionMissing  SectionStatus = "missing"
)

// GapSeverity ranks how urgently a plan gap should be filled.
type GapSeverity string

const (
	GapInfo     GapSeverity = "info"
	GapWarning  GapSeverity = "warning"
	GapCritical GapSeverity = "critical"
)

// DocSection is a node of the documentation plan tree. ID is unique across the
// whole flattened tree.
type DocSection struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	TargetPath string        `json:"targetPath"`
	Status     SectionStatus `json:"status"`
	Sources    []string      `json:"sources"`
	Tags       []string      `json:"tags"`
	Children   []DocSection  `json:"children"`
}

// DocsPlanGap points at a missing section.
type DocsPlanGap struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Severity    GapSeverity `json:"severity"`
	Reason      string      `json:"reason"`
	RelatedPath string      `json:"relatedPath,omitempty"`
}

// PlanInputs lists the paths consulted while building a plan.
type PlanInputs struct {
	Code  []string `json:"code"`
	Docs  []string `json:"docs"`
	Specs []string `json:"specs"`
}

// DocsPlan is the persisted snapshot produced by one planning run.
type DocsPlan struct {
	GeneratedAt time.Time     `json:"generatedAt"`
	Profile     string        `json:"profile,omitempty"`
	ConfigHash  string        `json:"configHash"`
	Sections    []DocSection  `json:"sections"`
	Gaps        []DocsPlanGap `json:"gaps"`
	Inputs      PlanInputs    `json:"inputs"`
}

// BlueprintEntry is one slot of the canonical section catalog.
type BlueprintEntry struct {
	ID    string
	Title string
}

// DefaultSectionBlueprint is the section catalog every plan is built from.
var DefaultSectionBlueprint = []BlueprintEntry{
	{ID: "overview", Title: "Overview"},
	{ID: "architecture", Title: "Architecture"},
	{ID: "getting-started", Title: "Getting Started"},
	{ID: "concepts", Title: "Concepts"},
	{ID: "api", Title: "API"},
	{ID: "operations", Title: "Operations"},
	{ID: "glossary", Title: "Glossary"},
}

// PlanSummary holds the headline counts of a plan.
type PlanSummary struct {
	Sections int `json:"sections"`
	Missing  int `json:"missing"`
	Gaps     int `json:"gaps"`
}

// FlattenSections walks sections depth-first in pre-order: a node is emitted
// before its children and children keep their listed order.
func FlattenSections(sections []DocSection, includeChildren bool) []DocSection {
	out := make([]DocSection, 0, len(sections))
	var walk func(nodes []DocSection)
	walk = func(nodes []DocSection) {
		for _, node := range nodes {
			out = append(out, node)
			if includeChildren && len(node.Children) > 0 {
				walk(node.Children)
			}
		}
	}
	walk(sections)
	return out
}

// Flatten returns the plan's sections in document order.
func (p *DocsPlan) Flatten(includeChildren bool) []DocSection {
	if p == nil {
		return nil
	}
	return FlattenSections(p.Sections, includeChildren)
}

// CountMissing counts flattened sections whose status is missing.
func (p *DocsPlan) CountMissing() int {
	count := 0
	for _, section := range p.Flatten(true) {
		if section.Status == SectionMissing {
			count++
		}
	}
	return count
}

func (p *DocsPlan) Summary() PlanSummary {
	return PlanSummary{
		Sections: len(p.Flatten(true)),
		Missing:  p.CountMissing(),
		Gaps:     len(p.Gaps),
	}
}

// IndexSections maps section ids to their flattened position. Duplicate ids
// anywhere in the tree are rejected.
func IndexSections(sections []DocSection) (map[string]int, error) {
	flat := FlattenSections(sections, true)
	index := make(map[string]int, len(flat))
	for i, section := range flat {
		if section.ID == "" {
			return nil, fmt.Errorf("section at position %d has an empty id", i)
		}
		if _, dup := index[section.ID]; dup {
			return nil, fmt.Errorf("duplicate section id %q", section.ID)
		}
		index[section.ID] = i
	}
	return index, nil
}
