package main

import (
	"fmt"

	"github.com/kalambet/hireagent/internal/composer"
	"github.com/kalambet/hireagent/internal/config"
	"github.com/kalambet/hireagent/internal/engine"
	"github.com/kalambet/hireagent/internal/followup"
	"github.com/kalambet/hireagent/internal/intent"
	"github.com/kalambet/hireagent/internal/recommend"
	"github.com/kalambet/hireagent/internal/session"
	"github.com/kalambet/hireagent/internal/storage"
	"github.com/kalambet/hireagent/internal/transcript"
)

// app is the process-wide wiring shared by serve and chat.
type app struct {
	cfg     config.Config
	backend engine.Backend
	store   *storage.Store
	orch    *session.Orchestrator
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	level, _ := config.ParseLevel(cfg.Log.Level)
	setupLogging(level)
	return cfg, nil
}

func engineConfig(cfg config.Config) (engine.Config, error) {
	timeout, err := cfg.LLMTimeout()
	if err != nil {
		return engine.Config{}, err
	}
	return engine.Config{
		Provider:    cfg.LLM.Provider,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		Temperature: cfg.LLM.Temperature,
		Timeout:     timeout,
	}, nil
}

func newApp(cfg config.Config) (*app, error) {
	ec, err := engineConfig(cfg)
	if err != nil {
		return nil, err
	}
	llm, backend, err := engine.New(ec)
	if err != nil {
		return nil, fmt.Errorf("configuring language model: %w", err)
	}

	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	orch := session.NewOrchestrator(session.Deps{
		Extractor:     intent.NewExtractor(llm),
		Recommender:   recommend.New(llm),
		Composer:      composer.New(llm),
		Responder:     followup.New(llm),
		Store:         store,
		Exporter:      transcript.NewExporter(cfg.Export.Dir),
		StrictCatalog: cfg.Recommend.StrictCatalog,
	})

	return &app{cfg: cfg, backend: backend, store: store, orch: orch}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
