package services

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"aidocs/internal/models"
	"aidocs/internal/repositories"
)

const (
	DefaultDocsBasePath      = "docs/ai-docs"
	DefaultDriftScoreMinimum = 70
	DefaultMaxChangesPerRun  = 25
	DefaultProfile           = "default"
)

var ErrInvalidConfig = errors.New("invalid ai docs config")

// ConfigError lists every schema problem found in a persisted config.
type ConfigError struct {
	Path   string
	Issues []string
}

func (e *ConfigError) Error() string {
	where := "config"
	if e.Path != "" {
		where = e.Path
	}
	return fmt.Sprintf("%s: %s", where, strings.Join(e.Issues, "; "))
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// DefaultConfig returns the configuration used when the repository has none.
func DefaultConfig() *models.AiDocsConfig {
	drift := DefaultDriftScoreMinimum
	changes := DefaultMaxChangesPerRun
	return &models.AiDocsConfig{
		Sources: models.SourcesConfig{
			Code:     []string{"**/*.go", "go.mod"},
			Docs:     []string{"docs/**/*.md", "README.md"},
			APISpecs: []string{},
		},
		Output: models.OutputConfig{
			BasePath: DefaultDocsBasePath,
			Format:   models.FormatMarkdown,
			Naming:   models.NamingKebab,
		},
		Style: models.StyleConfig{
			Language:    "en",
			Formality:   models.FormalityNeutral,
			Preferences: []string{},
		},
		Profiles: []models.Profile{
			{ID: "internal", Description: "Default AI Docs profile"},
		},
		Provider: models.ProviderConfig{
			MindProfile: "default",
			LLMProfile:  MockLLMProfile,
		},
		Thresholds: models.ThresholdsConfig{
			DriftScoreMinimum: &drift,
			MaxChangesPerRun:  &changes,
		},
	}
}

// ValidateConfig collects every schema problem in cfg. It returns nil for a valid config.
func ValidateConfig(cfg *models.AiDocsConfig) []string {
	if cfg == nil {
		return []string{"config is empty"}
	}
	var issues []string

	if strings.TrimSpace(cfg.Output.BasePath) == "" {
		issues = append(issues, "output.basePath must not be empty")
	}
	switch cfg.Output.Format {
	case models.FormatMarkdown, models.FormatMDX:
	default:
		issues = append(issues, fmt.Sprintf("output.format %q must be one of md, mdx", cfg.Output.Format))
	}
	switch cfg.Output.Naming {
	case models.NamingKebab, models.NamingPascal, models.NamingNested:
	default:
		issues = append(issues, fmt.Sprintf("output.naming %q must be one of kebab, pascal, nested", cfg.Output.Naming))
	}
	if !validFormality(cfg.Style.Formality) {
		issues = append(issues, fmt.Sprintf("style.formality %q must be one of casual, neutral, formal", cfg.Style.Formality))
	}
	issues = append(issues, validatePreferences("style.preferences", cfg.Style.Preferences)...)

	seen := make(map[string]bool, len(cfg.Profiles))
	for i, p := range cfg.Profiles {
		if strings.TrimSpace(p.ID) == "" {
			issues = append(issues, fmt.Sprintf("profiles[%d].id must not be empty", i))
			continue
		}
		if seen[p.ID] {
			issues = append(issues, fmt.Sprintf("profiles[%d].id %q is duplicated", i, p.ID))
		}
		seen[p.ID] = true
		if p.Style != nil {
			if p.Style.Formality != nil && !validFormality(*p.Style.Formality) {
				issues = append(issues, fmt.Sprintf("profiles[%d].style.formality %q is invalid", i, *p.Style.Formality))
			}
			issues = append(issues, validatePreferences(fmt.Sprintf("profiles[%d].style.preferences", i), p.Style.Preferences)...)
		}
	}

	if v := cfg.Thresholds.DriftScoreMinimum; v != nil && (*v < 0 || *v > 100) {
		issues = append(issues, fmt.Sprintf("thresholds.driftScoreMinimum %d must be within 0..100", *v))
	}
	if v := cfg.Thresholds.MaxChangesPerRun; v != nil && *v < 1 {
		issues = append(issues, fmt.Sprintf("thresholds.maxChangesPerRun %d must be at least 1", *v))
	}
	return issues
}

func validFormality(f models.Formality) bool {
	switch f {
	case models.FormalityCasual, models.FormalityNeutral, models.FormalityFormal:
		return true
	}
	return false
}

func validatePreferences(field string, prefs []string) []string {
	var issues []string
	for _, p := range prefs {
		switch p {
		case models.PreferenceExamples, models.PreferenceDiagrams, models.PreferenceTextFirst,
			models.PreferenceOps, models.PreferenceAPI:
		default:
			issues = append(issues, fmt.Sprintf("%s contains unknown preference %q", field, p))
		}
	}
	return issues
}

// MergeProfile overlays the named profile's sources, style and provider onto
// base, field by field. An unknown profile returns base unchanged. base is
// never modified.
func MergeProfile(base *models.AiDocsConfig, profileID string) *models.AiDocsConfig {
	if base == nil {
		return nil
	}
	profile := base.FindProfile(profileID)
	if profile == nil {
		return base
	}

	merged := *base
	merged.Sources = mergeSources(base.Sources, profile.Sources)
	merged.Style = mergeStyle(base.Style, profile.Style)
	merged.Provider = mergeProvider(base.Provider, profile.Provider)
	return &merged
}

func mergeSources(base models.SourcesConfig, o *models.ProfileSources) models.SourcesConfig {
	if o == nil {
		return base
	}
	if o.Code != nil {
		base.Code = cloneStrings(o.Code)
	}
	if o.Docs != nil {
		base.Docs = cloneStrings(o.Docs)
	}
	if o.APISpecs != nil {
		base.APISpecs = cloneStrings(o.APISpecs)
	}
	return base
}

func mergeStyle(base models.StyleConfig, o *models.ProfileStyle) models.StyleConfig {
	if o == nil {
		return base
	}
	if o.Language != nil {
		base.Language = *o.Language
	}
	if o.Formality != nil {
		base.Formality = *o.Formality
	}
	if o.Preferences != nil {
		base.Preferences = cloneStrings(o.Preferences)
	}
	return base
}

func mergeProvider(base models.ProviderConfig, o *models.ProfileProvider) models.ProviderConfig {
	if o == nil {
		return base
	}
	if o.MindProfile != nil {
		base.MindProfile = *o.MindProfile
	}
	if o.LLMProfile != nil {
		base.LLMProfile = *o.LLMProfile
	}
	return base
}

// EvaluateThresholds applies defaults to absent thresholds and clamps the
// drift minimum to [0,100] and max changes to at least 1.
func EvaluateThresholds(cfg *models.AiDocsConfig) models.Thresholds {
	out := models.Thresholds{
		DriftScoreMinimum: DefaultDriftScoreMinimum,
		MaxChangesPerRun:  DefaultMaxChangesPerRun,
	}
	if cfg == nil {
		return out
	}
	if v := cfg.Thresholds.DriftScoreMinimum; v != nil {
		out.DriftScoreMinimum = min(max(*v, 0), 100)
	}
	if v := cfg.Thresholds.MaxChangesPerRun; v != nil {
		out.MaxChangesPerRun = max(*v, 1)
	}
	return out
}

// ConfigHash fingerprints a config by hashing its canonical JSON form.
func ConfigHash(cfg *models.AiDocsConfig) string {
	data, err := json.Marshal(cfg)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// ConfigService loads, validates and persists the repository config.
type ConfigService interface {
	// Load returns the persisted config, or defaults when there is none.
	Load() (*models.AiDocsConfig, error)
	// LoadPersisted returns nil when no config has been saved yet.
	LoadPersisted() (*models.AiDocsConfig, error)
	Save(cfg *models.AiDocsConfig) (string, error)
	Path() string
}

type configService struct {
	repo repositories.ConfigRepository
}

func NewConfigService(repo repositories.ConfigRepository) ConfigService {
	return &configService{repo: repo}
}

func (s *configService) Path() string {
	return s.repo.Path()
}

func (s *configService) LoadPersisted() (*models.AiDocsConfig, error) {
	cfg, err := s.repo.Load()
	if err != nil {
		return nil, &ConfigError{Path: s.repo.Path(), Issues: []string{err.Error()}}
	}
	if cfg == nil {
		return nil, nil
	}
	fillConfigDefaults(cfg)
	if issues := ValidateConfig(cfg); len(issues) > 0 {
		return nil, &ConfigError{Path: s.repo.Path(), Issues: issues}
	}
	return cfg, nil
}

func (s *configService) Load() (*models.AiDocsConfig, error) {
	cfg, err := s.LoadPersisted()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return DefaultConfig(), nil
	}
	return cfg, nil
}

func (s *configService) Save(cfg *models.AiDocsConfig) (string, error) {
	if issues := ValidateConfig(cfg); len(issues) > 0 {
		return "", &ConfigError{Path: s.repo.Path(), Issues: issues}
	}
	return s.repo.Save(cfg)
}

// fillConfigDefaults completes sub-objects a hand-written config may omit.
func fillConfigDefaults(cfg *models.AiDocsConfig) {
	def := DefaultConfig()
	if cfg.Sources.Code == nil {
		cfg.Sources.Code = def.Sources.Code
	}
	if cfg.Sources.Docs == nil {
		cfg.Sources.Docs = def.Sources.Docs
	}
	if cfg.Sources.APISpecs == nil {
		cfg.Sources.APISpecs = []string{}
	}
	if cfg.Output.BasePath == "" {
		cfg.Output.BasePath = def.Output.BasePath
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = def.Output.Format
	}
	if cfg.Output.Naming == "" {
		cfg.Output.Naming = def.Output.Naming
	}
	if cfg.Style.Language == "" {
		cfg.Style.Language = def.Style.Language
	}
	if cfg.Style.Formality == "" {
		cfg.Style.Formality = def.Style.Formality
	}
	if cfg.Style.Preferences == nil {
		cfg.Style.Preferences = []string{}
	}
	if cfg.Profiles == nil {
		cfg.Profiles = def.Profiles
	}
	if cfg.Provider.MindProfile == "" {
		cfg.Provider.MindProfile = def.Provider.MindProfile
	}
	if cfg.Provider.LLMProfile == "" {
		cfg.Provider.LLMProfile = def.Provider.LLMProfile
	}
}
