package client

import (
	"context"
	"fmt"
	"strings"

	"aidocs/internal/models"
)

// MockGenerator produces deterministic placeholder content without calling a model.
type MockGenerator struct{}

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

func (m *MockGenerator) GenerateSections(ctx context.Context, req models.GenerationRequest) (*models.GenerationBatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var snapshot models.ContextSnapshot
	if req.Context != nil {
		snapshot = *req.Context
	}

	results := make([]models.GeneratedSectionResult, 0, len(req.TargetSections))
	for _, section := range req.TargetSections {
		var b strings.Builder
		fmt.Fprintf(&b, "# %s\n\n", section.Title)
		fmt.Fprintf(&b, "_Draft generated for profile %s._\n", orDefault(req.Profile, "default"))
		if len(snapshot.Modules) > 0 {
			fmt.Fprintf(&b, "\nModules: %s\n", strings.Join(snapshot.Modules, ", "))
		}
		if len(snapshot.ADR) > 0 {
			b.WriteString("\nRelated decisions:\n")
			for _, adr := range snapshot.ADR {
				fmt.Fprintf(&b, "- %s\n", adr)
			}
		}
		content := b.String()

		confidence := models.DefaultConfidence
		status := models.ResultCreated
		if section.Status == models.SectionExisting {
			status = models.ResultUpdated
		}
		results = append(results, models.GeneratedSectionResult{
			SectionID:   section.ID,
			TargetPath:  section.TargetPath,
			Strategy:    req.Strategy,
			Status:      status,
			Confidence:  &confidence,
			NeedsReview: true,
			Note:        "mock content",
			Content:     &content,
		}.Normalize(req.Strategy))
	}
	return &models.GenerationBatch{Sections: results}, nil
}
