package services

import (
	"context"
	"path"

	"aidocs/internal/events"
	"aidocs/internal/models"
)

// skeletonDocs are written by init under the docs base path.
var skeletonDocs = []struct {
	name    string
	content string
}{
	{"overview", "# Project Overview\n\nDescribe the mission and scope.\n"},
	{"architecture", "# Architecture\n\nHigh-level diagrams, modules, and data flows.\n"},
	{"getting-started", "# Getting Started\n\nCommands, prerequisites, and environments.\n"},
	{"conventions", "# Conventions\n\nCoding, testing, release, and documentation rules.\n"},
}

type InitRequest struct {
	DocsPath string
	Format   models.OutputFormat
	Language string
	Profile  string
	Force    bool
}

type InitResult struct {
	DocsPath     string   `json:"docsPath"`
	ConfigPath   string   `json:"configPath"`
	CreatedFiles []string `json:"createdFiles"`
	Profile      string   `json:"profile"`
}

// InitService bootstraps the config file and a docs skeleton.
type InitService interface {
	Init(ctx context.Context, req InitRequest) (*InitResult, error)
}

type initService struct {
	rt *Runtime
}

func NewInitService(rt *Runtime) InitService {
	return &initService{rt: rt}
}

func (s *initService) Init(ctx context.Context, req InitRequest) (result *InitResult, err error) {
	profile := req.Profile
	if profile == "" {
		profile = DefaultProfile
	}
	s.rt.emit(ctx, events.Running(events.StepInit, map[string]any{"profile": profile}))
	defer func() {
		if err != nil {
			err = stepErr(events.StepInit, s.rt.Config.Path(), profile, err)
			s.rt.emit(ctx, events.Failure(events.StepInit, err, nil))
		}
	}()

	cfg, err := s.rt.Config.Load()
	if err != nil {
		return nil, err
	}
	if req.DocsPath != "" {
		cfg.Output.BasePath = path.Clean(req.DocsPath)
	}
	if req.Format != "" {
		cfg.Output.Format = req.Format
	}
	if req.Language != "" {
		cfg.Style.Language = req.Language
	}

	configPath, err := s.rt.Config.Save(cfg)
	if err != nil {
		return nil, err
	}

	files := make(map[string]string, len(skeletonDocs))
	for _, doc := range skeletonDocs {
		files[path.Join(cfg.Output.BasePath, doc.name+"."+string(cfg.Output.Format))] = doc.content
	}
	created, err := s.rt.Docs.WriteSkeleton(files, req.Force)
	if err != nil {
		return nil, err
	}

	s.rt.Log.Info().
		Str("docsPath", cfg.Output.BasePath).
		Str("config", configPath).
		Int("created", len(created)).
		Msg("AI Docs initialized")
	s.rt.emit(ctx, events.Success(events.StepInit, map[string]any{
		"docsPath": cfg.Output.BasePath,
		"created":  len(created),
	}))

	return &InitResult{
		DocsPath:     s.rt.Docs.Resolve(cfg.Output.BasePath),
		ConfigPath:   configPath,
		CreatedFiles: created,
		Profile:      profile,
	}, nil
}
