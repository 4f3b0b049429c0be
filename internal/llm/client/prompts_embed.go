package client

import (
	"embed"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"aidocs/internal/models"
)

// embeddedPrompts holds the built-in prompt templates so packaged executables
// can load them without needing access to the source tree.
//
//go:embed prompts/*.txt
var embeddedPrompts embed.FS

const systemPrompt = "You write accurate, concise repository documentation and always answer with valid JSON."

var (
	sectionsTmplOnce sync.Once
	sectionsTmpl     *template.Template
	sectionsTmplErr  error
)

type promptData struct {
	Language    string
	Formality   string
	Preferences []string
	Strategy    string
	Context     models.ContextSnapshot
	Sections    []models.DocSection
}

func renderSectionsPrompt(req models.GenerationRequest) (string, error) {
	sectionsTmplOnce.Do(func() {
		raw, err := embeddedPrompts.ReadFile("prompts/generate_sections.txt")
		if err != nil {
			sectionsTmplErr = err
			return
		}
		sectionsTmpl, sectionsTmplErr = template.New("sections").
			Funcs(template.FuncMap{"join": strings.Join}).
			Parse(string(raw))
	})
	if sectionsTmplErr != nil {
		return "", fmt.Errorf("load prompt: %w", sectionsTmplErr)
	}

	data := promptData{
		Language:    orDefault(req.Style.Language, "en"),
		Formality:   orDefault(string(req.Style.Formality), "neutral"),
		Preferences: req.Style.Preferences,
		Strategy:    string(req.Strategy),
		Sections:    req.TargetSections,
	}
	if req.Context != nil {
		data.Context = *req.Context
	}

	var b strings.Builder
	if err := sectionsTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return b.String(), nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
