package services

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yargevad/filepathx"

	"aidocs/internal/models"
	"aidocs/internal/utils"
)

// IgnoreFile lists path prefixes excluded from source resolution.
const IgnoreFile = ".aidocsignore"

// MockMindProfile selects the fixed context snapshot.
const MockMindProfile = "mock"

// alwaysIgnored prefixes never count as sources.
var alwaysIgnored = []string{".git", ".kb", "node_modules", "vendor"}

// SourceResolver expands configured source globs into concrete plan inputs.
type SourceResolver interface {
	ResolveInputs(src models.SourcesConfig) (models.PlanInputs, error)
}

// ContextProvider gathers the knowledge snapshot for a generation run.
type ContextProvider interface {
	FetchContext(ctx context.Context, req models.ContextRequest) (*models.ContextSnapshot, error)
}

// ContextProviderResolver picks a ContextProvider for a provider.mindProfile value.
type ContextProviderResolver interface {
	ContextProvider(mindProfile string) (ContextProvider, error)
}

type fixedContextResolver struct {
	provider ContextProvider
}

// FixedContext resolves every mind profile to p.
func FixedContext(p ContextProvider) ContextProviderResolver {
	return fixedContextResolver{provider: p}
}

func (r fixedContextResolver) ContextProvider(string) (ContextProvider, error) {
	return r.provider, nil
}

type workspaceSources struct {
	root   string
	ignore []string
}

// NewWorkspaceSources resolves globs relative to root, honoring .aidocsignore.
func NewWorkspaceSources(root string) (SourceResolver, error) {
	ignore, err := utils.ReadPatternLines(filepath.Join(root, IgnoreFile))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", IgnoreFile, err)
	}
	return &workspaceSources{root: root, ignore: append(append([]string{}, alwaysIgnored...), ignore...)}, nil
}

func (w *workspaceSources) ResolveInputs(src models.SourcesConfig) (models.PlanInputs, error) {
	code, err := w.expand(src.Code)
	if err != nil {
		return models.PlanInputs{}, err
	}
	docs, err := w.expand(src.Docs)
	if err != nil {
		return models.PlanInputs{}, err
	}
	specs := []string{}
	for _, spec := range src.APISpecs {
		if _, err := os.Stat(filepath.Join(w.root, filepath.FromSlash(spec))); err == nil {
			specs = append(specs, path.Clean(filepath.ToSlash(spec)))
		}
	}
	return models.PlanInputs{Code: code, Docs: docs, Specs: specs}, nil
}

// expand returns sorted, de-duplicated slash paths of regular files matching patterns.
func (w *workspaceSources) expand(patterns []string) ([]string, error) {
	seen := map[string]bool{}
	for _, pattern := range patterns {
		if strings.TrimSpace(pattern) == "" {
			continue
		}
		matches, err := filepathx.Glob(filepath.Join(w.root, filepath.FromSlash(pattern)))
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || info.IsDir() {
				continue
			}
			rel, err := filepath.Rel(w.root, m)
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			if w.ignored(rel) {
				continue
			}
			seen[rel] = true
		}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

func (w *workspaceSources) ignored(rel string) bool {
	for _, prefix := range w.ignore {
		if rel == prefix || strings.HasPrefix(rel, prefix+"/") {
			return true
		}
		for _, seg := range strings.Split(rel, "/") {
			if seg == prefix {
				return true
			}
		}
	}
	return false
}

type mockContextProvider struct{}

// NewMockContextProvider returns a provider with a fixed snapshot.
func NewMockContextProvider() ContextProvider {
	return mockContextProvider{}
}

func (mockContextProvider) FetchContext(_ context.Context, req models.ContextRequest) (*models.ContextSnapshot, error) {
	return &models.ContextSnapshot{
		Modules: []string{"core", "api", "infra"},
		ADR:     []string{"ADR-001: Use AI Docs", "ADR-002: Enforce drift auditing"},
		Domains: []string{"engineering-docs"},
		Notes:   contextNotes(req),
	}, nil
}

func contextNotes(req models.ContextRequest) []string {
	profile := req.Profile
	if profile == "" {
		profile = DefaultProfile
	}
	return []string{
		"profile=" + profile,
		fmt.Sprintf("sources=%d", len(req.IncludeSources)),
		fmt.Sprintf("docs=%d", len(req.IncludeDocs)),
	}
}

type workspaceContextProvider struct {
	root string
}

// NewWorkspaceContextProvider derives the snapshot from the files under root.
func NewWorkspaceContextProvider(root string) ContextProvider {
	return &workspaceContextProvider{root: root}
}

func (p *workspaceContextProvider) FetchContext(ctx context.Context, req models.ContextRequest) (*models.ContextSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	moduleSet := map[string]bool{}
	for _, src := range req.IncludeSources {
		dir := path.Dir(filepath.ToSlash(src))
		if i := strings.Index(dir, "/"); i >= 0 {
			dir = dir[:i]
		}
		moduleSet[dir] = true
	}
	modules := make([]string, 0, len(moduleSet))
	for m := range moduleSet {
		modules = append(modules, m)
	}
	sort.Strings(modules)

	adr, err := p.decisionRecords()
	if err != nil {
		return nil, err
	}

	domains := []string{}
	if mod := p.modulePath(); mod != "" {
		domains = append(domains, mod)
	}

	return &models.ContextSnapshot{
		Modules: modules,
		ADR:     adr,
		Domains: domains,
		Notes:   contextNotes(req),
	}, nil
}

// decisionRecords returns the first heading of each docs/adr/*.md file.
func (p *workspaceContextProvider) decisionRecords() ([]string, error) {
	dir := filepath.Join(p.root, "docs", "adr")
	if !utils.DirectoryExists(dir) {
		return []string{}, nil
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	records := []string{}
	for _, m := range matches {
		title := firstHeading(m)
		if title == "" {
			title = strings.TrimSuffix(filepath.Base(m), ".md")
		}
		records = append(records, title)
	}
	return records, nil
}

func (p *workspaceContextProvider) modulePath() string {
	f, err := os.Open(filepath.Join(p.root, "go.mod"))
	if err != nil {
		return ""
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if strings.HasPrefix(line, "module ") {
			return strings.Trim(strings.TrimSpace(strings.TrimPrefix(line, "module ")), `"`)
		}
	}
	return ""
}

func firstHeading(file string) string {
	f, err := os.Open(file)
	if err != nil {
		return ""
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if strings.HasPrefix(line, "#") {
			return strings.TrimSpace(strings.TrimLeft(line, "#"))
		}
	}
	return ""
}

type contextResolver struct {
	root string
}

// NewContextResolver maps "mock" to the fixed snapshot and any other mind
// profile to the workspace provider rooted at root.
func NewContextResolver(root string) ContextProviderResolver {
	return &contextResolver{root: root}
}

func (r *contextResolver) ContextProvider(mindProfile string) (ContextProvider, error) {
	if mindProfile == MockMindProfile {
		return NewMockContextProvider(), nil
	}
	return NewWorkspaceContextProvider(r.root), nil
}
