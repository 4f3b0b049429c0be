package repositories

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"aidocs/internal/models"
)

const (
	// DefaultConfigFile holds the config under the ConfigKey entry.
	DefaultConfigFile = "kb.config.json"
	ConfigKey         = "aiDocs"
)

// yamlConfigFiles take precedence over DefaultConfigFile when present.
var yamlConfigFiles = []string{"aidocs.yaml", "aidocs.yml"}

// ConfigRepository loads and saves the repository's AI docs configuration.
type ConfigRepository interface {
	Path() string
	Load() (*models.AiDocsConfig, error)
	Save(cfg *models.AiDocsConfig) (string, error)
}

type configRepository struct {
	path string
}

// NewConfigRepository picks the config file for root. An explicit path wins;
// otherwise a YAML file is used if one exists, else kb.config.json.
func NewConfigRepository(root, explicit string) ConfigRepository {
	if explicit != "" {
		if !filepath.IsAbs(explicit) {
			explicit = filepath.Join(root, explicit)
		}
		return &configRepository{path: explicit}
	}
	for _, name := range yamlConfigFiles {
		candidate := filepath.Join(root, name)
		if _, err := os.Stat(candidate); err == nil {
			return &configRepository{path: candidate}
		}
	}
	return &configRepository{path: filepath.Join(root, DefaultConfigFile)}
}

func (r *configRepository) Path() string {
	return r.path
}

// Load returns nil without error when the config file or the aiDocs entry is absent.
func (r *configRepository) Load() (*models.AiDocsConfig, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read config %s: %w", r.path, err)
	}

	if r.isYAML() {
		if len(bytes.TrimSpace(data)) == 0 {
			return nil, nil
		}
		var cfg models.AiDocsConfig
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", r.path, err)
		}
		return &cfg, nil
	}

	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", r.path, err)
	}
	raw, ok := root[ConfigKey]
	if !ok || string(raw) == "null" {
		return nil, nil
	}
	var cfg models.AiDocsConfig
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode %s in %s: %w", ConfigKey, r.path, err)
	}
	return &cfg, nil
}

// Save writes cfg. For JSON files, other top-level keys are preserved.
func (r *configRepository) Save(cfg *models.AiDocsConfig) (string, error) {
	if cfg == nil {
		return "", fmt.Errorf("config is required")
	}

	if r.isYAML() {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return "", fmt.Errorf("encode config: %w", err)
		}
		if err := enc.Close(); err != nil {
			return "", fmt.Errorf("encode config: %w", err)
		}
		if err := writeFileAtomic(r.path, buf.Bytes()); err != nil {
			return "", fmt.Errorf("write config %s: %w", r.path, err)
		}
		return r.path, nil
	}

	root := map[string]json.RawMessage{}
	if data, err := os.ReadFile(r.path); err == nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &root); err != nil {
			return "", fmt.Errorf("decode config %s: %w", r.path, err)
		}
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("read config %s: %w", r.path, err)
	}

	encoded, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	root[ConfigKey] = encoded

	out, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	out = append(out, '\n')
	if err := writeFileAtomic(r.path, out); err != nil {
		return "", fmt.Errorf("write config %s: %w", r.path, err)
	}
	return r.path, nil
}

func (r *configRepository) isYAML() bool {
	ext := strings.ToLower(filepath.Ext(r.path))
	return ext == ".yaml" || ext == ".yml"
}
