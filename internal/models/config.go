package models

type OutputFormat string

const (
	FormatMarkdown OutputFormat = "md"
	FormatMDX      OutputFormat = "mdx"
)

type NamingConvention string

const (
	NamingKebab  NamingConvention = "kebab"
	NamingPascal NamingConvention = "pascal"
	NamingNested NamingConvention = "nested"
)

type Formality string

const (
	FormalityCasual  Formality = "casual"
	FormalityNeutral Formality = "neutral"
	FormalityFormal  Formality = "formal"
)

// Style preferences accepted in StyleConfig.Preferences.
const (
	PreferenceExamples  = "examples"
	PreferenceDiagrams  = "diagrams"
	PreferenceTextFirst = "text-first"
	PreferenceOps       = "ops"
	PreferenceAPI       = "api"
)

type SourcesConfig struct {
	Code     []string `json:"code" yaml:"code"`
	Docs     []string `json:"docs" yaml:"docs"`
	APISpecs []string `json:"apiSpecs" yaml:"apiSpecs"`
}

type OutputConfig struct {
	BasePath string           `json:"basePath" yaml:"basePath"`
	Format   OutputFormat     `json:"format" yaml:"format"`
	Naming   NamingConvention `json:"naming" yaml:"naming"`
}

type StyleConfig struct {
	Language    string    `json:"language" yaml:"language"`
	Formality   Formality `json:"formality" yaml:"formality"`
	Preferences []string  `json:"preferences" yaml:"preferences"`
}

type ProviderConfig struct {
	MindProfile string `json:"mindProfile" yaml:"mindProfile"`
	LLMProfile  string `json:"llmProfile" yaml:"llmProfile"`
}

// ThresholdsConfig leaves fields nil when the config file omits them.
type ThresholdsConfig struct {
	DriftScoreMinimum *int `json:"driftScoreMinimum,omitempty" yaml:"driftScoreMinimum,omitempty"`
	MaxChangesPerRun  *int `json:"maxChangesPerRun,omitempty" yaml:"maxChangesPerRun,omitempty"`
}

// Thresholds is the normalized form of ThresholdsConfig.
type Thresholds struct {
	DriftScoreMinimum int `json:"driftScoreMinimum"`
	MaxChangesPerRun  int `json:"maxChangesPerRun"`
}

// ProfileSources overrides sources. A nil slice means "keep the base value".
type ProfileSources struct {
	Code     []string `json:"code,omitempty" yaml:"code,omitempty"`
	Docs     []string `json:"docs,omitempty" yaml:"docs,omitempty"`
	APISpecs []string `json:"apiSpecs,omitempty" yaml:"apiSpecs,omitempty"`
}

type ProfileStyle struct {
	Language    *string    `json:"language,omitempty" yaml:"language,omitempty"`
	Formality   *Formality `json:"formality,omitempty" yaml:"formality,omitempty"`
	Preferences []string   `json:"preferences,omitempty" yaml:"preferences,omitempty"`
}

type ProfileProvider struct {
	MindProfile *string `json:"mindProfile,omitempty" yaml:"mindProfile,omitempty"`
	LLMProfile  *string `json:"llmProfile,omitempty" yaml:"llmProfile,omitempty"`
}

// Profile is a named partial override bundle layered onto the base config.
type Profile struct {
	ID          string           `json:"id" yaml:"id"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
	Sources     *ProfileSources  `json:"sources,omitempty" yaml:"sources,omitempty"`
	Style       *ProfileStyle    `json:"style,omitempty" yaml:"style,omitempty"`
	Provider    *ProfileProvider `json:"provider,omitempty" yaml:"provider,omitempty"`
}

type AiDocsConfig struct {
	Sources    SourcesConfig    `json:"sources" yaml:"sources"`
	Output     OutputConfig     `json:"output" yaml:"output"`
	Style      StyleConfig      `json:"style" yaml:"style"`
	Profiles   []Profile        `json:"profiles" yaml:"profiles"`
	Provider   ProviderConfig   `json:"provider" yaml:"provider"`
	Thresholds ThresholdsConfig `json:"thresholds" yaml:"thresholds"`
}

// FindProfile returns the profile with the given id, or nil.
func (c *AiDocsConfig) FindProfile(id string) *Profile {
	for i := range c.Profiles {
		if c.Profiles[i].ID == id {
			return &c.Profiles[i]
		}
	}
	return nil
}
