package services

import (
	"context"
	"fmt"
	"strings"

	"aidocs/internal/events"
	"aidocs/internal/models"
	"aidocs/internal/repositories"
)

type GenerateRequest struct {
	Profile     string
	PlanPath    string
	Sections    []string
	Strategy    models.Strategy
	DryRun      bool
	SuggestOnly bool
}

type GenerateResult struct {
	Sections        []models.GeneratedSectionResult `json:"sections"`
	MetadataPaths   []string                        `json:"metadataPaths"`
	SuggestionsPath string                          `json:"suggestionsPath,omitempty"`
	Mode            models.GenerationMode           `json:"mode"`
}

// GenerateService runs the plan → targets → context → generate → apply →
// finalize pipeline.
type GenerateService interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
}

type generateService struct {
	rt    *Runtime
	plans PlanService
}

func NewGenerateService(rt *Runtime, plans PlanService) GenerateService {
	return &generateService{rt: rt, plans: plans}
}

// ResolveMode maps the request flags onto a run mode. Dry-run wins over
// suggest-only.
func ResolveMode(req GenerateRequest) models.GenerationMode {
	switch {
	case req.DryRun:
		return models.ModeDryRun
	case req.SuggestOnly || req.Strategy == models.StrategySuggestOnly:
		return models.ModeSuggestOnly
	default:
		return models.ModeApplied
	}
}

func (s *generateService) Generate(ctx context.Context, req GenerateRequest) (result *GenerateResult, err error) {
	profile := req.Profile
	if profile == "" {
		profile = DefaultProfile
	}
	strategy := req.Strategy
	if strategy == "" {
		strategy = models.StrategyAppend
	}
	planPath := req.PlanPath
	if planPath == "" {
		planPath = repositories.PlanFile
	}
	mode := ResolveMode(req)

	ctx, run := s.rt.beginRun(ctx, models.RunKindGenerate, profile)
	s.rt.emit(ctx, events.Running(events.StepGenerate, map[string]any{
		"profile":  profile,
		"strategy": string(strategy),
		"mode":     string(mode),
	}))
	defer func() {
		if err != nil {
			err = stepErr(events.StepGenerate, planPath, profile, err)
			s.rt.emit(ctx, events.Failure(events.StepGenerate, err, map[string]any{"planPath": planPath}))
			run.finish(ctx, "", err)
		}
	}()

	if !strategy.Valid() {
		return nil, fmt.Errorf("unknown strategy %q", strategy)
	}

	cfg, err := s.rt.Config.Load()
	if err != nil {
		return nil, err
	}
	effective := MergeProfile(cfg, profile)

	plan, err := s.resolvePlan(ctx, planPath, profile)
	if err != nil {
		return nil, err
	}

	targets := SelectTargets(plan, req.Sections)
	if len(targets) == 0 {
		s.rt.Log.Info().Str("profile", profile).Msg("AI Docs generation skipped: no target sections")
		s.rt.emit(ctx, events.Success(events.StepGenerate, map[string]any{"sections": 0, "mode": string(mode)}))
		run.finish(ctx, "no target sections", nil)
		return &GenerateResult{
			Sections:      []models.GeneratedSectionResult{},
			MetadataPaths: []string{},
			Mode:          mode,
		}, nil
	}

	if limit := EvaluateThresholds(effective).MaxChangesPerRun; len(targets) > limit {
		s.rt.Log.Warn().
			Int("targets", len(targets)).
			Int("maxChangesPerRun", limit).
			Msg("target sections truncated")
		targets = targets[:limit]
	}

	snapshot, err := s.fetchContext(ctx, effective, profile, plan)
	if err != nil {
		return nil, err
	}

	batch, err := s.generate(ctx, effective, models.GenerationRequest{
		Context:        snapshot,
		Plan:           plan,
		Strategy:       strategy,
		TargetSections: targets,
		Profile:        profile,
		Style:          effective.Style,
	})
	if err != nil {
		return nil, err
	}

	applied, records, err := s.apply(batch, targets, strategy, mode, profile)
	if err != nil {
		return nil, err
	}

	result = &GenerateResult{
		Sections:      applied,
		MetadataPaths: []string{},
		Mode:          mode,
	}
	if mode.Staged() {
		result.SuggestionsPath = s.rt.Docs.SuggestionsPath()
	} else if err := s.rt.Docs.ClearSuggestions(); err != nil {
		return nil, err
	}

	metaPath, err := s.rt.Docs.SaveMetadata(&models.GenerationRunMetadata{
		RunID:             events.RunFromContext(ctx),
		PlanPath:          planPath,
		GeneratedAt:       s.rt.now().UTC(),
		SectionsProcessed: len(applied),
		Mode:              mode,
		Strategy:          strategy,
		Profile:           profile,
		OutputRoot:        effective.Output.BasePath,
		Sections:          records,
	})
	if err != nil {
		return nil, err
	}
	result.MetadataPaths = append(result.MetadataPaths, metaPath)

	s.rt.Log.Info().
		Int("sections", len(records)).
		Str("mode", string(mode)).
		Str("metadata", metaPath).
		Msg("AI Docs generation finished")
	s.rt.emit(ctx, events.Success(events.StepGenerate, map[string]any{
		"sections": len(records),
		"mode":     string(mode),
		"metadata": metaPath,
	}))
	run.finish(ctx, fmt.Sprintf("%d sections %s", len(records), mode), nil)
	return result, nil
}

// resolvePlan loads the plan, building it once when absent.
func (s *generateService) resolvePlan(ctx context.Context, planPath, profile string) (*models.DocsPlan, error) {
	plan, err := s.rt.Docs.LoadPlan(planPath)
	if err != nil {
		return nil, err
	}
	if plan != nil {
		return plan, nil
	}
	if s.plans == nil {
		return nil, ErrPlanUnavailable
	}
	s.rt.Log.Info().Str("planPath", planPath).Msg("no plan found, building one")
	if _, err := s.plans.Plan(ctx, PlanRequest{Profile: profile, PlanPath: planPath}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPlanUnavailable, err)
	}
	plan, err = s.rt.Docs.LoadPlan(planPath)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanUnavailable
	}
	return plan, nil
}

// SelectTargets flattens plan in document order and keeps the ids in allow,
// or every section when allow is empty. Unknown ids are ignored.
func SelectTargets(plan *models.DocsPlan, allow []string) []models.DocSection {
	flat := plan.Flatten(true)
	if len(allow) == 0 {
		return flat
	}
	wanted := make(map[string]bool, len(allow))
	for _, id := range allow {
		wanted[strings.TrimSpace(id)] = true
	}
	targets := make([]models.DocSection, 0, len(allow))
	for _, section := range flat {
		if wanted[section.ID] {
			targets = append(targets, section)
		}
	}
	return targets
}

func (s *generateService) fetchContext(ctx context.Context, cfg *models.AiDocsConfig, profile string, plan *models.DocsPlan) (*models.ContextSnapshot, error) {
	if s.rt.Context == nil {
		return &models.ContextSnapshot{}, nil
	}
	provider, err := s.rt.Context.ContextProvider(cfg.Provider.MindProfile)
	if err != nil {
		return nil, fmt.Errorf("resolve context provider: %w", err)
	}
	snapshot, err := provider.FetchContext(ctx, models.ContextRequest{
		Profile:        profile,
		IncludeSources: plan.Inputs.Code,
		IncludeDocs:    plan.Inputs.Docs,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch context: %w", err)
	}
	return snapshot, nil
}

func (s *generateService) generate(ctx context.Context, cfg *models.AiDocsConfig, req models.GenerationRequest) (*models.GenerationBatch, error) {
	if s.rt.Generators == nil {
		return nil, fmt.Errorf("no generation provider configured")
	}
	gen, err := s.rt.Generators.Generator(ctx, cfg.Provider.LLMProfile)
	if err != nil {
		return nil, fmt.Errorf("resolve generation provider: %w", err)
	}
	batch, err := gen.GenerateSections(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generate sections: %w", err)
	}
	if batch == nil {
		return &models.GenerationBatch{}, nil
	}
	return batch, nil
}

// apply writes or stages each result in batch order. A failed write stops the
// batch; sections written before it stay written.
func (s *generateService) apply(batch *models.GenerationBatch, targets []models.DocSection, strategy models.Strategy, mode models.GenerationMode, profile string) ([]models.GeneratedSectionResult, []models.GenerationMetadata, error) {
	byID := make(map[string]models.DocSection, len(targets))
	for _, t := range targets {
		byID[t.ID] = t
	}

	seen := make(map[string]bool, len(batch.Sections))
	results := make([]models.GeneratedSectionResult, 0, len(batch.Sections))
	records := make([]models.GenerationMetadata, 0, len(batch.Sections))
	for _, raw := range batch.Sections {
		result := raw.Normalize(strategy)
		section, ok := byID[result.SectionID]
		if !ok {
			s.rt.Log.Warn().Str("section", result.SectionID).Msg("result for untargeted section ignored")
			continue
		}
		if seen[result.SectionID] {
			s.rt.Log.Warn().Str("section", result.SectionID).Msg("repeated result for section ignored")
			continue
		}
		seen[result.SectionID] = true
		result.TargetPath = section.TargetPath

		if !result.HasContent() {
			s.rt.Log.Warn().Str("section", result.SectionID).Msg("no content generated, section skipped")
			result.Status = models.ResultSkipped
			results = append(results, result)
			continue
		}

		path := result.TargetPath
		if mode.Staged() {
			staged, err := s.rt.Docs.StageSuggestion(result.SectionID, []byte(*result.Content))
			if err != nil {
				return nil, nil, err
			}
			path = staged
		} else {
			if err := s.write(result); err != nil {
				return nil, nil, err
			}
		}

		results = append(results, result)
		records = append(records, models.GenerationMetadata{
			Path:          path,
			SectionID:     result.SectionID,
			Strategy:      result.Strategy,
			Profile:       profile,
			Confidence:    result.Score(),
			Mode:          mode,
			LastUpdatedAt: s.rt.now().UTC(),
		})
	}
	return results, records, nil
}

func (s *generateService) write(result models.GeneratedSectionResult) error {
	guard := FilePermissionsUtil{Root: s.rt.Docs.Root()}
	if ok, err := guard.CheckWritePermissions(result.TargetPath); err != nil || !ok {
		return fmt.Errorf("refusing to write %s outside the project", result.TargetPath)
	}
	existing, found, err := s.rt.Docs.ReadDoc(result.TargetPath)
	if err != nil {
		return err
	}
	var merged string
	if found {
		merged = MergeContent(string(existing), *result.Content, result.Strategy, result.SectionID)
	} else {
		merged = *result.Content
	}
	backup, err := s.rt.Docs.WriteDoc(result.TargetPath, []byte(merged), repositories.WriteOptions{Backup: true})
	if err != nil {
		return err
	}
	ev := s.rt.Log.Debug().Str("section", result.SectionID).Str("path", result.TargetPath)
	if backup != "" {
		ev = ev.Str("backup", backup)
	}
	ev.Msg("section written")
	return nil
}

// SectionMarkers returns the comments delimiting a managed block for id.
func SectionMarkers(id string) (begin, end string) {
	return "<!-- aidocs:begin " + id + " -->", "<!-- aidocs:end " + id + " -->"
}

// MergeContent combines existing file content with generated content.
// Append adds a blank line between them; rewrite-section replaces the marked
// block when both markers are present and the whole file otherwise.
func MergeContent(existing, generated string, strategy models.Strategy, id string) string {
	switch strategy {
	case models.StrategyRewriteSection:
		begin, end := SectionMarkers(id)
		start := strings.Index(existing, begin)
		if start < 0 {
			return generated
		}
		stop := strings.Index(existing[start+len(begin):], end)
		if stop < 0 {
			return generated
		}
		stop += start + len(begin)
		return existing[:start+len(begin)] + "\n" + strings.Trim(generated, "\n") + "\n" + existing[stop:]
	case models.StrategySuggestOnly:
		return generated
	default:
		if existing == "" {
			return generated
		}
		return existing + "\n\n" + generated
	}
}
