package services

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"aidocs/internal/events"
	"aidocs/internal/models"
	"aidocs/internal/repositories"
	"aidocs/internal/utils"
)

const (
	confidenceMissing      = 1.0
	confidenceRangeDrift   = 0.6
	confidenceMtimeDrift   = 0.4
	confidenceInSync       = 0.8
	defaultAuditToRevision = "HEAD"
)

type AuditRequest struct {
	FromRevision string
	ToRevision   string
	Profile      string
	PlanPath     string
}

type AuditResult struct {
	DriftPath          string              `json:"driftPath"`
	MarkdownReportPath string              `json:"markdownReportPath"`
	DriftScore         int                 `json:"driftScore"`
	Missing            int                 `json:"missing"`
	Outdated           int                 `json:"outdated"`
	Threshold          int                 `json:"threshold"`
	BelowThreshold     bool                `json:"belowThreshold"`
	Report             *models.DriftReport `json:"-"`
}

// AuditService compares the plan against the docs tree and the code history.
type AuditService interface {
	Audit(ctx context.Context, req AuditRequest) (*AuditResult, error)
}

type auditService struct {
	rt    *Runtime
	plans PlanService
}

func NewAuditService(rt *Runtime, plans PlanService) AuditService {
	return &auditService{rt: rt, plans: plans}
}

func (s *auditService) Audit(ctx context.Context, req AuditRequest) (result *AuditResult, err error) {
	profile := req.Profile
	if profile == "" {
		profile = DefaultProfile
	}
	planPath := req.PlanPath
	if planPath == "" {
		planPath = repositories.PlanFile
	}

	ctx, run := s.rt.beginRun(ctx, models.RunKindAudit, profile)
	s.rt.emit(ctx, events.Running(events.StepAudit, map[string]any{
		"profile": profile,
		"from":    req.FromRevision,
		"to":      req.ToRevision,
	}))
	defer func() {
		if err != nil {
			err = stepErr(events.StepAudit, planPath, profile, err)
			s.rt.emit(ctx, events.Failure(events.StepAudit, err, map[string]any{"planPath": planPath}))
			run.finish(ctx, "", err)
		}
	}()

	cfg, err := s.rt.Config.Load()
	if err != nil {
		return nil, err
	}
	effective := MergeProfile(cfg, profile)

	gen := &generateService{rt: s.rt, plans: s.plans}
	plan, err := gen.resolvePlan(ctx, planPath, profile)
	if err != nil {
		return nil, err
	}

	classify, err := s.classifier(req, effective, plan)
	if err != nil {
		return nil, err
	}

	report := NewDriftReport(s.rt.now().UTC())
	for _, section := range plan.Flatten(true) {
		entry, err := classify(section)
		if err != nil {
			return nil, err
		}
		report, err = AddDriftEntry(report, entry, s.rt.now().UTC())
		if err != nil {
			return nil, err
		}
	}

	paths, err := s.rt.Docs.SaveDrift(&report, RenderDriftMarkdown(report))
	if err != nil {
		return nil, err
	}

	threshold := EvaluateThresholds(effective).DriftScoreMinimum
	result = &AuditResult{
		DriftPath:          paths.JSONPath,
		MarkdownReportPath: paths.MarkdownPath,
		DriftScore:         report.Score,
		Missing:            report.Summary.Missing,
		Outdated:           report.Summary.Outdated,
		Threshold:          threshold,
		BelowThreshold:     report.Score < threshold,
		Report:             &report,
	}

	logEvt := s.rt.Log.Info()
	if result.BelowThreshold {
		logEvt = s.rt.Log.Warn()
	}
	logEvt.
		Int("score", report.Score).
		Int("threshold", threshold).
		Int("missing", result.Missing).
		Int("outdated", result.Outdated).
		Msg("AI Docs audit finished")
	s.rt.emit(ctx, events.Success(events.StepAudit, map[string]any{
		"score":          report.Score,
		"missing":        result.Missing,
		"outdated":       result.Outdated,
		"belowThreshold": result.BelowThreshold,
	}))
	run.finish(ctx, fmt.Sprintf("score %d, %d missing, %d outdated", report.Score, result.Missing, result.Outdated), nil)
	return result, nil
}

type sectionClassifier func(models.DocSection) (models.DriftEntry, error)

// classifier picks the revision-range rule when a from revision is given and
// the modification-time rule otherwise. Missing targets win in both.
func (s *auditService) classifier(req AuditRequest, cfg *models.AiDocsConfig, plan *models.DocsPlan) (sectionClassifier, error) {
	var judge func(models.DocSection) (models.DriftEntry, error)

	if req.FromRevision != "" {
		to := req.ToRevision
		if to == "" {
			to = defaultAuditToRevision
		}
		if _, ok := utils.FindGitRoot(s.rt.Docs.Root()); !ok || s.rt.Git == nil {
			return nil, fmt.Errorf("revision range %s..%s requires a git repository", req.FromRevision, to)
		}
		changed, err := s.rt.Git.ChangedFiles(s.rt.Docs.Root(), req.FromRevision, to)
		if err != nil {
			return nil, fmt.Errorf("diff %s..%s: %w", req.FromRevision, to, err)
		}
		codeChanged := codeChangedInRange(changed, plan.Inputs.Code, cfg.Output.BasePath)
		changedSet := make(map[string]bool, len(changed))
		for _, f := range changed {
			changedSet[f] = true
		}
		reason := fmt.Sprintf("Code changed between %s..%s without documentation updates", req.FromRevision, to)
		judge = func(section models.DocSection) (models.DriftEntry, error) {
			if codeChanged && !changedSet[path.Clean(section.TargetPath)] {
				return driftEntry(section, models.DriftOutdated, reason, confidenceRangeDrift), nil
			}
			return driftEntry(section, models.DriftInSync, "", confidenceInSync), nil
		}
	} else {
		newest, err := s.newestInput(plan.Inputs.Code)
		if err != nil {
			return nil, err
		}
		judge = func(section models.DocSection) (models.DriftEntry, error) {
			modTime, ok, err := s.rt.Docs.ModTime(section.TargetPath)
			if err != nil {
				return models.DriftEntry{}, err
			}
			if ok && !newest.IsZero() && modTime.Before(newest) {
				return driftEntry(section, models.DriftOutdated, "Source files modified after documentation", confidenceMtimeDrift), nil
			}
			return driftEntry(section, models.DriftInSync, "", confidenceInSync), nil
		}
	}

	return func(section models.DocSection) (models.DriftEntry, error) {
		exists, err := s.rt.Docs.FileExists(section.TargetPath)
		if err != nil {
			return models.DriftEntry{}, fmt.Errorf("probe %s: %w", section.TargetPath, err)
		}
		if !exists {
			return driftEntry(section, models.DriftMissing, fmt.Sprintf("Section %s is missing", section.Title), confidenceMissing), nil
		}
		return judge(section)
	}, nil
}

func (s *auditService) newestInput(inputs []string) (time.Time, error) {
	var newest time.Time
	for _, in := range inputs {
		t, ok, err := s.rt.Docs.ModTime(in)
		if err != nil {
			return time.Time{}, err
		}
		if ok && t.After(newest) {
			newest = t
		}
	}
	return newest, nil
}

// codeChangedInRange reports whether any changed file is a recorded code
// input. Without recorded inputs, any change outside the docs tree and .kb
// counts.
func codeChangedInRange(changed, codeInputs []string, docsBase string) bool {
	if len(codeInputs) > 0 {
		inputs := make(map[string]bool, len(codeInputs))
		for _, c := range codeInputs {
			inputs[path.Clean(c)] = true
		}
		for _, f := range changed {
			if inputs[f] {
				return true
			}
		}
		return false
	}

	if docsBase == "" {
		docsBase = DefaultDocsBasePath
	}
	docsBase = path.Clean(docsBase)
	for _, f := range changed {
		if f == docsBase || strings.HasPrefix(f, docsBase+"/") || strings.HasPrefix(f, ".kb/") {
			continue
		}
		return true
	}
	return false
}

func driftEntry(section models.DocSection, status models.DriftStatus, reason string, confidence float64) models.DriftEntry {
	return models.DriftEntry{
		Path:       section.TargetPath,
		Status:     status,
		SectionID:  section.ID,
		Reason:     reason,
		Confidence: &confidence,
	}
}
