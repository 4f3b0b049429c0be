package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"aidocs/internal/models"
	"aidocs/internal/services"
)

func newInitCmd() *cobra.Command {
	var req services.InitRequest
	var format string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config and a docs skeleton",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Format = models.OutputFormat(format)
			res, err := app.svc.Init.Init(app.ctx, req)
			if err != nil {
				return err
			}
			return render(cmd, res, func(w io.Writer) {
				fmt.Fprintf(w, "Config: %s\n", res.ConfigPath)
				fmt.Fprintf(w, "Docs:   %s\n", res.DocsPath)
				for _, f := range res.CreatedFiles {
					fmt.Fprintf(w, "  created %s\n", f)
				}
			})
		},
	}
	cmd.Flags().StringVar(&req.DocsPath, "docs-path", "", "Base path for generated docs")
	cmd.Flags().StringVar(&format, "format", "", "Output format: md or mdx")
	cmd.Flags().StringVar(&req.Language, "language", "", "Documentation language")
	cmd.Flags().StringVar(&req.Profile, "profile", "", "Profile recorded in the config")
	cmd.Flags().BoolVar(&req.Force, "force", false, "Overwrite existing config and skeleton files")
	return cmd
}

func newPlanCmd() *cobra.Command {
	var req services.PlanRequest
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Build the documentation plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.acquireRunLock(); err != nil {
				return err
			}
			req.IncludeSources = splitList(req.IncludeSources)
			req.IncludeDocs = splitList(req.IncludeDocs)
			res, err := app.svc.Plans.Plan(app.ctx, req)
			if err != nil {
				return err
			}
			return render(cmd, res, func(w io.Writer) { printPlan(w, res) })
		},
	}
	cmd.Flags().StringVar(&req.Profile, "profile", "", "Config profile")
	cmd.Flags().StringVar(&req.PlanPath, "plan-path", "", "Where to write the plan")
	cmd.Flags().StringSliceVar(&req.IncludeSources, "include-sources", nil, "Code inputs to record instead of the configured globs")
	cmd.Flags().StringSliceVar(&req.IncludeDocs, "include-docs", nil, "Doc inputs to record instead of the configured globs")
	return cmd
}

func printPlan(w io.Writer, res *services.PlanResult) {
	fmt.Fprintf(w, "Plan written to %s: %d sections, %d missing\n", res.PlanPath, res.Sections, res.MissingSections)
	if res.Plan == nil {
		return
	}
	for _, gap := range res.Plan.Gaps {
		fmt.Fprintf(w, "  [%s] %s\n", gap.Severity, gap.Reason)
	}
}

type generateFlags struct {
	req      services.GenerateRequest
	strategy string
}

func (f *generateFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.req.Profile, "profile", "", "Config profile")
	cmd.Flags().StringVar(&f.req.PlanPath, "plan-path", "", "Plan to generate from")
	cmd.Flags().StringSliceVar(&f.req.Sections, "sections", nil, "Only generate these section ids")
	cmd.Flags().StringVar(&f.strategy, "strategy", string(models.StrategyAppend), "append, rewrite-section or suggest-only")
	cmd.Flags().BoolVar(&f.req.DryRun, "dry-run", false, "Stage results as suggestions without touching docs")
	cmd.Flags().BoolVar(&f.req.SuggestOnly, "suggest-only", false, "Stage results as suggestions for review")
}

func (f *generateFlags) request() services.GenerateRequest {
	req := f.req
	req.Strategy = models.Strategy(f.strategy)
	req.Sections = splitList(req.Sections)
	return req
}

func newGenerateCmd() *cobra.Command {
	var flags generateFlags
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate documentation for the plan's sections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.acquireRunLock(); err != nil {
				return err
			}
			res, err := app.svc.Generate.Generate(app.ctx, flags.request())
			if err != nil {
				return err
			}
			return render(cmd, res, func(w io.Writer) { printGenerate(w, res) })
		},
	}
	flags.bind(cmd)
	return cmd
}

func printGenerate(w io.Writer, res *services.GenerateResult) {
	fmt.Fprintf(w, "Mode: %s, %d sections\n", res.Mode, len(res.Sections))
	for _, s := range res.Sections {
		review := ""
		if s.NeedsReview {
			review = " (needs review)"
		}
		fmt.Fprintf(w, "  %-8s %s -> %s confidence=%.2f%s\n", s.Status, s.SectionID, s.TargetPath, s.Score(), review)
	}
	if res.SuggestionsPath != "" {
		fmt.Fprintf(w, "Suggestions staged in %s\n", res.SuggestionsPath)
	}
	for _, p := range res.MetadataPaths {
		fmt.Fprintf(w, "Metadata: %s\n", p)
	}
}

type auditFlags struct {
	req    services.AuditRequest
	strict bool
}

func (f *auditFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.req.FromRevision, "from", "", "Compare code changes starting at this revision")
	cmd.Flags().StringVar(&f.req.ToRevision, "to", "", "End revision (default HEAD)")
	cmd.Flags().StringVar(&f.req.Profile, "profile", "", "Config profile")
	cmd.Flags().StringVar(&f.req.PlanPath, "plan-path", "", "Plan to audit")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "Fail when the drift score is below the threshold")
}

func newAuditCmd() *cobra.Command {
	var flags auditFlags
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Score documentation drift",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.acquireRunLock(); err != nil {
				return err
			}
			res, err := app.svc.Audit.Audit(app.ctx, flags.req)
			if err != nil {
				return err
			}
			if err := render(cmd, res, func(w io.Writer) { printAudit(w, res) }); err != nil {
				return err
			}
			return strictErr(flags.strict, res)
		},
	}
	flags.bind(cmd)
	return cmd
}

func printAudit(w io.Writer, res *services.AuditResult) {
	fmt.Fprintf(w, "Drift score %d (threshold %d), %d missing, %d outdated\n", res.DriftScore, res.Threshold, res.Missing, res.Outdated)
	fmt.Fprintf(w, "Report: %s\n", res.MarkdownReportPath)
}

func strictErr(strict bool, res *services.AuditResult) error {
	if strict && res.BelowThreshold {
		return fmt.Errorf("drift score %d is below threshold %d", res.DriftScore, res.Threshold)
	}
	return nil
}

func newWorkflowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflow",
		Short: "Run plan followed by generate or audit",
	}

	var gen generateFlags
	genCmd := &cobra.Command{
		Use:   "generate",
		Short: "Plan, then generate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.acquireRunLock(); err != nil {
				return err
			}
			res, err := services.RunGenerateWorkflow(app.ctx, app.svc.Runtime, app.svc.Plans, app.svc.Generate, gen.request())
			if err != nil {
				return err
			}
			return render(cmd, res, func(w io.Writer) {
				if res.Plan != nil {
					printPlan(w, res.Plan)
				}
				printGenerate(w, res.Generate)
			})
		},
	}
	gen.bind(genCmd)

	var audit auditFlags
	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Plan, then audit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.acquireRunLock(); err != nil {
				return err
			}
			res, err := services.RunAuditWorkflow(app.ctx, app.svc.Plans, app.svc.Audit, audit.req)
			if err != nil {
				return err
			}
			if err := render(cmd, res, func(w io.Writer) {
				printPlan(w, res.Plan)
				printAudit(w, res.Audit)
			}); err != nil {
				return err
			}
			return strictErr(audit.strict, res.Audit)
		},
	}
	audit.bind(auditCmd)

	cmd.AddCommand(genCmd, auditCmd)
	return cmd
}
