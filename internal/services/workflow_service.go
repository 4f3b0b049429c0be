package services

import (
	"context"
	"fmt"

	"aidocs/internal/repositories"
)

type GenerateWorkflowResult struct {
	Plan     *PlanResult     `json:"plan,omitempty"`
	Generate *GenerateResult `json:"generate"`
}

type AuditWorkflowResult struct {
	Plan  *PlanResult  `json:"plan"`
	Audit *AuditResult `json:"audit"`
}

// RunGenerateWorkflow reuses an existing plan at req.PlanPath when one is
// given, and plans first otherwise.
func RunGenerateWorkflow(ctx context.Context, rt *Runtime, plans PlanService, gen GenerateService, req GenerateRequest) (*GenerateWorkflowResult, error) {
	out := &GenerateWorkflowResult{}
	reuse := false
	if req.PlanPath != "" {
		exists, err := rt.Docs.FileExists(req.PlanPath)
		if err != nil {
			return nil, err
		}
		reuse = exists
	}
	if !reuse {
		planPath := req.PlanPath
		if planPath == "" {
			planPath = repositories.PlanFile
		}
		planned, err := plans.Plan(ctx, PlanRequest{Profile: req.Profile, PlanPath: planPath})
		if err != nil {
			return nil, fmt.Errorf("workflow plan: %w", err)
		}
		out.Plan = planned
		req.PlanPath = planned.PlanPath
	}

	generated, err := gen.Generate(ctx, req)
	if err != nil {
		return out, fmt.Errorf("workflow generate: %w", err)
	}
	out.Generate = generated
	return out, nil
}

// RunAuditWorkflow refreshes the plan and audits against it.
func RunAuditWorkflow(ctx context.Context, plans PlanService, audit AuditService, req AuditRequest) (*AuditWorkflowResult, error) {
	planned, err := plans.Plan(ctx, PlanRequest{Profile: req.Profile, PlanPath: req.PlanPath})
	if err != nil {
		return nil, fmt.Errorf("workflow plan: %w", err)
	}
	req.PlanPath = planned.PlanPath

	audited, err := audit.Audit(ctx, req)
	if err != nil {
		return &AuditWorkflowResult{Plan: planned}, fmt.Errorf("workflow audit: %w", err)
	}
	return &AuditWorkflowResult{Plan: planned, Audit: audited}, nil
}
