package services

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"aidocs/internal/events"
	"aidocs/internal/models"
	"aidocs/internal/repositories"
)

// ExistenceProbe reports whether a path exists. It must return false, nil for
// a missing path and an error only for genuine I/O failures.
type ExistenceProbe func(path string) (bool, error)

// PlanParams are the inputs of BuildPlan.
type PlanParams struct {
	Blueprint   []models.BlueprintEntry
	Output      models.OutputConfig
	GeneratedAt time.Time
	ConfigHash  string
	Inputs      models.PlanInputs
	Profile     string
}

// BuildPlan classifies every blueprint entry as existing or missing and
// derives one gap per missing section, in blueprint order. Any probe error
// fails the whole build.
func BuildPlan(params PlanParams, probe ExistenceProbe) (*models.DocsPlan, error) {
	if probe == nil {
		return nil, fmt.Errorf("existence probe is required")
	}

	seen := make(map[string]bool, len(params.Blueprint))
	sections := make([]models.DocSection, 0, len(params.Blueprint))
	for _, entry := range params.Blueprint {
		if entry.ID == "" {
			return nil, fmt.Errorf("blueprint entry %q has no id", entry.Title)
		}
		if seen[entry.ID] {
			return nil, fmt.Errorf("duplicate section id %q in blueprint", entry.ID)
		}
		seen[entry.ID] = true

		target := SectionTargetPath(params.Output, entry.ID)
		exists, err := probe(target)
		if err != nil {
			return nil, fmt.Errorf("probe %s: %w", target, err)
		}
		status := models.SectionMissing
		if exists {
			status = models.SectionExisting
		}
		sections = append(sections, models.DocSection{
			ID:         entry.ID,
			Title:      entry.Title,
			TargetPath: target,
			Status:     status,
			Sources:    []string{},
			Tags:       []string{},
			Children:   []models.DocSection{},
		})
	}

	return &models.DocsPlan{
		GeneratedAt: params.GeneratedAt,
		Profile:     params.Profile,
		ConfigHash:  params.ConfigHash,
		Sections:    sections,
		Gaps:        DeriveGaps(sections),
		Inputs:      normalizeInputs(params.Inputs),
	}, nil
}

// DeriveGaps returns one warning gap per missing section in document order.
func DeriveGaps(sections []models.DocSection) []models.DocsPlanGap {
	gaps := []models.DocsPlanGap{}
	for _, section := range models.FlattenSections(sections, true) {
		if section.Status != models.SectionMissing {
			continue
		}
		gaps = append(gaps, models.DocsPlanGap{
			ID:          "gap-" + section.ID,
			Title:       section.Title,
			Severity:    models.GapWarning,
			Reason:      fmt.Sprintf("Section %s is missing", section.Title),
			RelatedPath: section.TargetPath,
		})
	}
	return gaps
}

// SectionTargetPath joins the output base path with the file name for id.
func SectionTargetPath(out models.OutputConfig, id string) string {
	base := out.BasePath
	if base == "" {
		base = DefaultDocsBasePath
	}
	format := string(out.Format)
	if format == "" {
		format = string(models.FormatMarkdown)
	}
	switch out.Naming {
	case models.NamingPascal:
		return path.Join(base, pascalCase(id)+"."+format)
	case models.NamingNested:
		return path.Join(base, id, "index."+format)
	default:
		return path.Join(base, id+"."+format)
	}
}

func pascalCase(id string) string {
	parts := strings.FieldsFunc(id, func(r rune) bool { return r == '-' || r == '_' || r == ' ' })
	var b strings.Builder
	for _, p := range parts {
		r, size := utf8.DecodeRuneInString(p)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(p[size:])
	}
	return b.String()
}

func normalizeInputs(in models.PlanInputs) models.PlanInputs {
	if in.Code == nil {
		in.Code = []string{}
	}
	if in.Docs == nil {
		in.Docs = []string{}
	}
	if in.Specs == nil {
		in.Specs = []string{}
	}
	return in
}

type PlanRequest struct {
	Profile        string
	PlanPath       string
	IncludeSources []string
	IncludeDocs    []string
}

type PlanResult struct {
	PlanPath        string           `json:"planPath"`
	Sections        int              `json:"sections"`
	MissingSections int              `json:"missingSections"`
	Gaps            int              `json:"gaps"`
	Plan            *models.DocsPlan `json:"-"`
}

// PlanService builds and persists documentation plans.
type PlanService interface {
	Plan(ctx context.Context, req PlanRequest) (*PlanResult, error)
}

type planService struct {
	rt *Runtime
}

func NewPlanService(rt *Runtime) PlanService {
	return &planService{rt: rt}
}

func (s *planService) Plan(ctx context.Context, req PlanRequest) (result *PlanResult, err error) {
	planPath := req.PlanPath
	if planPath == "" {
		planPath = repositories.PlanFile
	}
	profile := req.Profile
	if profile == "" {
		profile = DefaultProfile
	}

	ctx, run := s.rt.beginRun(ctx, models.RunKindPlan, profile)
	s.rt.emit(ctx, events.Running(events.StepPlan, map[string]any{"profile": profile, "planPath": planPath}))
	defer func() {
		if err != nil {
			err = stepErr(events.StepPlan, planPath, profile, err)
			s.rt.emit(ctx, events.Failure(events.StepPlan, err, map[string]any{"planPath": planPath}))
			run.finish(ctx, "", err)
		}
	}()

	cfg, err := s.rt.Config.Load()
	if err != nil {
		return nil, err
	}
	effective := MergeProfile(cfg, profile)

	inputs, err := s.resolveInputs(effective, req)
	if err != nil {
		return nil, err
	}

	plan, err := BuildPlan(PlanParams{
		Blueprint:   models.DefaultSectionBlueprint,
		Output:      effective.Output,
		GeneratedAt: s.rt.now().UTC(),
		ConfigHash:  ConfigHash(effective),
		Inputs:      inputs,
		Profile:     req.Profile,
	}, s.rt.Docs.FileExists)
	if err != nil {
		return nil, err
	}

	saved, err := s.rt.Docs.SavePlan(plan, planPath)
	if err != nil {
		return nil, err
	}

	summary := plan.Summary()
	s.rt.Log.Info().
		Int("sections", summary.Sections).
		Int("missing", summary.Missing).
		Str("planPath", saved).
		Msg("AI Docs plan generated")
	s.rt.emit(ctx, events.Success(events.StepPlan, map[string]any{
		"sections": summary.Sections,
		"missing":  summary.Missing,
		"planPath": saved,
	}))
	run.finish(ctx, fmt.Sprintf("%d sections, %d missing", summary.Sections, summary.Missing), nil)

	return &PlanResult{
		PlanPath:        saved,
		Sections:        summary.Sections,
		MissingSections: summary.Missing,
		Gaps:            summary.Gaps,
		Plan:            plan,
	}, nil
}

// resolveInputs prefers explicit request lists and falls back to the
// configured source globs.
func (s *planService) resolveInputs(cfg *models.AiDocsConfig, req PlanRequest) (models.PlanInputs, error) {
	inputs := models.PlanInputs{Code: req.IncludeSources, Docs: req.IncludeDocs}
	if s.rt.Sources == nil {
		return normalizeInputs(inputs), nil
	}
	resolved, err := s.rt.Sources.ResolveInputs(cfg.Sources)
	if err != nil {
		return models.PlanInputs{}, fmt.Errorf("resolve sources: %w", err)
	}
	if inputs.Code == nil {
		inputs.Code = resolved.Code
	}
	if inputs.Docs == nil {
		inputs.Docs = resolved.Docs
	}
	inputs.Specs = resolved.Specs
	return normalizeInputs(inputs), nil
}
