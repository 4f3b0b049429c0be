package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"aidocs/internal/assets"
	"aidocs/internal/models"
	"aidocs/internal/repositories"
)

var (
	ErrModelNotFound = errors.New("model not found in catalog")
	ErrModelDisabled = errors.New("model is disabled")
)

// ModelConfigService exposes the embedded model catalog and the persisted
// enablement of each entry.
type ModelConfigService interface {
	Load(ctx context.Context) error
	ListModelGroups() ([]models.LLMModelGroup, error)
	SetModelEnabled(ctx context.Context, modelKey string, enabled bool) (*models.LLMModel, error)
	SetProviderEnabled(ctx context.Context, provider string, enabled bool) ([]models.LLMModel, error)
	GetModel(modelKey string) (*models.LLMModel, error)
}

type modelConfigService struct {
	repo    repositories.ModelSettingRepository
	catalog []byte

	mu            sync.RWMutex
	providerOrder []string
	providerNames map[string]string
	models        map[string]*catalogModel
	settings      map[string]bool
}

type catalogModel struct {
	Key         string
	ProviderID  string
	Provider    string
	DisplayName string
	APIName     string

	ReasoningEffort string
	Thinking        *bool
}

type rawModelFile struct {
	Providers []rawProvider `json:"providers"`
}

type rawProvider struct {
	ID          string     `json:"id"`
	DisplayName string     `json:"displayName"`
	Models      []rawModel `json:"models"`
}

type rawModel struct {
	DisplayName     string `json:"displayName"`
	APIName         string `json:"apiName"`
	ReasoningEffort string `json:"reasoningEffort,omitempty"`
	Thinking        *bool  `json:"thinking,omitempty"`
}

// NewModelConfigService reads the embedded catalog. repo may be nil, in which
// case every catalog model is enabled and toggles are not persisted.
func NewModelConfigService(repo repositories.ModelSettingRepository) ModelConfigService {
	return newModelConfigService(repo, assets.ModelsData)
}

func newModelConfigService(repo repositories.ModelSettingRepository, catalog []byte) *modelConfigService {
	return &modelConfigService{
		repo:          repo,
		catalog:       catalog,
		models:        make(map[string]*catalogModel),
		settings:      make(map[string]bool),
		providerNames: make(map[string]string),
	}
}

// Load parses the catalog and seeds an enabled setting for every model the
// store has not seen yet.
func (s *modelConfigService) Load(ctx context.Context) error {
	var parsed rawModelFile
	if err := json.Unmarshal(s.catalog, &parsed); err != nil {
		return fmt.Errorf("parse models asset: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.providerOrder = make([]string, 0, len(parsed.Providers))
	for _, provider := range parsed.Providers {
		providerID := strings.TrimSpace(provider.ID)
		if providerID == "" {
			continue
		}
		s.providerNames[providerID] = strings.TrimSpace(provider.DisplayName)
		s.providerOrder = append(s.providerOrder, providerID)
		for _, mdl := range provider.Models {
			key := computeModelKey(providerID, mdl)
			s.models[key] = &catalogModel{
				Key:             key,
				ProviderID:      providerID,
				Provider:        s.providerNames[providerID],
				DisplayName:     strings.TrimSpace(mdl.DisplayName),
				APIName:         strings.TrimSpace(mdl.APIName),
				ReasoningEffort: strings.TrimSpace(mdl.ReasoningEffort),
				Thinking:        mdl.Thinking,
			}
		}
	}

	if s.repo == nil {
		for key := range s.models {
			s.settings[key] = true
		}
		return nil
	}

	existing, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("load model settings: %w", err)
	}
	for _, setting := range existing {
		s.settings[setting.ModelKey] = setting.Enabled
	}
	for key, def := range s.models {
		if _, ok := s.settings[key]; ok {
			continue
		}
		if _, err := s.repo.Upsert(ctx, key, def.ProviderID, true); err != nil {
			return fmt.Errorf("seed model setting for %s: %w", key, err)
		}
		s.settings[key] = true
	}
	return nil
}

func (s *modelConfigService) ListModelGroups() ([]models.LLMModelGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make([]models.LLMModelGroup, 0, len(s.providerOrder))
	for _, providerID := range s.providerOrder {
		group := models.LLMModelGroup{
			ProviderID:   providerID,
			ProviderName: s.providerName(providerID),
		}
		var forProvider []models.LLMModel
		for _, mdl := range s.models {
			if mdl.ProviderID == providerID {
				forProvider = append(forProvider, s.toLLMModel(mdl))
			}
		}
		sortModels(forProvider)
		group.Models = forProvider
		groups = append(groups, group)
	}
	return groups, nil
}

func (s *modelConfigService) SetModelEnabled(ctx context.Context, modelKey string, enabled bool) (*models.LLMModel, error) {
	modelKey = strings.TrimSpace(modelKey)
	if modelKey == "" {
		return nil, fmt.Errorf("model key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	catalog, ok := s.models[modelKey]
	if !ok {
		return nil, fmt.Errorf("%s: %w", modelKey, ErrModelNotFound)
	}
	if s.repo != nil {
		if _, err := s.repo.Upsert(ctx, modelKey, catalog.ProviderID, enabled); err != nil {
			return nil, err
		}
	}
	s.settings[modelKey] = enabled
	model := s.toLLMModel(catalog)
	return &model, nil
}

func (s *modelConfigService) SetProviderEnabled(ctx context.Context, provider string, enabled bool) ([]models.LLMModel, error) {
	provider = strings.TrimSpace(provider)
	if provider == "" {
		return nil, fmt.Errorf("provider is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.providerNames[provider]; !ok {
		return nil, fmt.Errorf("provider %s: %w", provider, ErrModelNotFound)
	}
	if s.repo != nil {
		if err := s.repo.SetProviderEnabled(ctx, provider, enabled); err != nil {
			return nil, err
		}
	}

	updated := make([]models.LLMModel, 0)
	for _, mdl := range s.models {
		if mdl.ProviderID != provider {
			continue
		}
		s.settings[mdl.Key] = enabled
		updated = append(updated, s.toLLMModel(mdl))
	}
	sortModels(updated)
	return updated, nil
}

func (s *modelConfigService) GetModel(modelKey string) (*models.LLMModel, error) {
	modelKey = strings.TrimSpace(modelKey)
	if modelKey == "" {
		return nil, fmt.Errorf("model key is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	catalog, ok := s.models[modelKey]
	if !ok {
		return nil, fmt.Errorf("%s: %w", modelKey, ErrModelNotFound)
	}
	model := s.toLLMModel(catalog)
	return &model, nil
}

func (s *modelConfigService) providerName(providerID string) string {
	if name, ok := s.providerNames[providerID]; ok && strings.TrimSpace(name) != "" {
		return name
	}
	return providerID
}

func (s *modelConfigService) toLLMModel(mdl *catalogModel) models.LLMModel {
	return models.LLMModel{
		Key:             mdl.Key,
		DisplayName:     mdl.DisplayName,
		APIName:         mdl.APIName,
		ProviderID:      mdl.ProviderID,
		ProviderName:    mdl.Provider,
		ReasoningEffort: mdl.ReasoningEffort,
		Thinking:        mdl.Thinking,
		Enabled:         s.settings[mdl.Key],
	}
}

func sortModels(list []models.LLMModel) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := strings.ToLower(list[i].DisplayName), strings.ToLower(list[j].DisplayName)
		if a != b {
			return a < b
		}
		return list[i].Key < list[j].Key
	})
}

// computeModelKey builds "provider|apiName[|attrs]" with attrs sorted.
func computeModelKey(providerID string, mdl rawModel) string {
	parts := []string{strings.TrimSpace(providerID), strings.TrimSpace(mdl.APIName)}

	var attrs []string
	if re := strings.TrimSpace(mdl.ReasoningEffort); re != "" {
		attrs = append(attrs, "reasoning="+re)
	}
	if mdl.Thinking != nil {
		attrs = append(attrs, fmt.Sprintf("thinking=%t", *mdl.Thinking))
	}
	if len(attrs) > 0 {
		sort.Strings(attrs)
		parts = append(parts, strings.Join(attrs, ","))
	}
	return strings.Join(parts, "|")
}
