package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"aidocs/internal/models"
)

// NewDriftReport returns an empty report: score 100 and zero counts.
func NewDriftReport(at time.Time) models.DriftReport {
	return models.DriftReport{
		GeneratedAt: at,
		Score:       100,
		Entries:     []models.DriftEntry{},
	}
}

// AddDriftEntry returns a copy of report with entry appended, the matching
// counter incremented, the score recomputed and the timestamp refreshed. The
// input report is left untouched. Entries with an unknown status are refused.
func AddDriftEntry(report models.DriftReport, entry models.DriftEntry, at time.Time) (models.DriftReport, error) {
	if !entry.Status.Valid() {
		return report, fmt.Errorf("drift entry %s: invalid status %q", entry.Path, entry.Status)
	}
	entries := make([]models.DriftEntry, len(report.Entries), len(report.Entries)+1)
	copy(entries, report.Entries)
	if entry.Confidence != nil {
		c := *entry.Confidence
		entry.Confidence = &c
	}
	entries = append(entries, entry)

	summary := report.Summary
	switch entry.Status {
	case models.DriftInSync:
		summary.InSync++
	case models.DriftOutdated:
		summary.Outdated++
	case models.DriftMissing:
		summary.Missing++
	}

	return models.DriftReport{
		GeneratedAt: at,
		Score:       DriftScore(summary),
		Entries:     entries,
		Summary:     summary,
	}, nil
}

// DriftScore is round(100 * inSync / max(1, total)).
func DriftScore(s models.DriftSummary) int {
	total := max(s.Total(), 1)
	return int(math.Round(100 * float64(s.InSync) / float64(total)))
}

// RenderDriftMarkdown renders the human-readable drift summary.
func RenderDriftMarkdown(report models.DriftReport) string {
	rows := make([]string, 0, len(report.Entries))
	for _, entry := range report.Entries {
		reason := entry.Reason
		if reason == "" {
			reason = "n/a"
		}
		rows = append(rows, "| "+entry.Path+" | "+string(entry.Status)+" | "+escapeCell(reason)+" |")
	}
	lines := []string{
		"# AI Docs Drift Report",
		"",
		"Score: " + strconv.Itoa(report.Score),
		"",
		"| Path | Status | Reason |",
		"| --- | --- | --- |",
		strings.Join(rows, "\n"),
	}
	return strings.Join(lines, "\n")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
