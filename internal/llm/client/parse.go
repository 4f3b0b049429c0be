package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"aidocs/internal/models"
)

type rawSection struct {
	SectionID   string   `json:"sectionId"`
	Content     *string  `json:"content"`
	Confidence  *float64 `json:"confidence"`
	NeedsReview *bool    `json:"needsReview"`
	Note        string   `json:"note"`
	Status      string   `json:"status"`
}

// ParseSections decodes a model answer into results for the requested
// sections. Unknown and repeated ids are dropped; target paths always come
// from the request.
func ParseSections(answer string, req models.GenerationRequest) (*models.GenerationBatch, error) {
	payload := extractJSONArray(answer)
	if payload == "" {
		return nil, errors.New("answer contains no JSON array")
	}
	var raw []rawSection
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("decode answer: %w", err)
	}

	targets := make(map[string]models.DocSection, len(req.TargetSections))
	for _, s := range req.TargetSections {
		targets[s.ID] = s
	}

	seen := map[string]bool{}
	results := make([]models.GeneratedSectionResult, 0, len(raw))
	for _, r := range raw {
		section, ok := targets[r.SectionID]
		if !ok || seen[r.SectionID] {
			continue
		}
		seen[r.SectionID] = true

		result := models.GeneratedSectionResult{
			SectionID:  r.SectionID,
			TargetPath: section.TargetPath,
			Strategy:   req.Strategy,
			Status:     models.ResultStatus(r.Status),
			Note:       r.Note,
			Content:    r.Content,
			Confidence: r.Confidence,
		}
		if r.NeedsReview != nil {
			result.NeedsReview = *r.NeedsReview
		}
		if result.Status == "" && section.Status == models.SectionExisting {
			result.Status = models.ResultUpdated
		}
		results = append(results, result.Normalize(req.Strategy))
	}
	return &models.GenerationBatch{Sections: results}, nil
}

// extractJSONArray strips markdown fences and surrounding prose.
func extractJSONArray(answer string) string {
	s := strings.TrimSpace(answer)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}
