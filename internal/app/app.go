package app

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/tusharj03/EMT-AI-Agent/config"
	"github.com/tusharj03/EMT-AI-Agent/internal/audio"
	"github.com/tusharj03/EMT-AI-Agent/internal/domain/encounter"
	"github.com/tusharj03/EMT-AI-Agent/internal/domain/encounter/usecases"
	"github.com/tusharj03/EMT-AI-Agent/internal/store"
)

type App struct {
	Store          *encounter.Store
	Settings       *encounter.SettingsStore
	StartEncounter *usecases.StartEncounter
	StopEncounter  *usecases.StopEncounter
	Pipeline       *usecases.Pipeline
	ExportFHIR     *usecases.ExportFHIR
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	kv, err := newKV(cfg)
	if err != nil {
		return nil, err
	}

	recStore, err := encounter.NewStore(ctx, kv, logger)
	if err != nil {
		return nil, err
	}
	settings, err := encounter.NewSettingsStore(ctx, kv, logger)
	if err != nil {
		return nil, err
	}

	recorder := audio.NewRecorder()
	transcriber := usecases.NewHTTPTranscriber(cfg.TranscribeBaseURL, cfg.RequestTimeout, logger)

	var reports usecases.ReportSource
	if cfg.OfflineMode {
		reports = usecases.NewOfflineReportSource()
	} else {
		reports = usecases.NewAIReportSource(cfg.AIEndpointURL, cfg.ExtractionPrompt, cfg.RequestTimeout, logger)
	}

	startEncounter := &usecases.StartEncounter{
		Store:    recStore,
		Settings: settings,
		Recorder: recorder,
		DataDir:  cfg.DataDir,
		Logger:   logger,
	}

	stopEncounter := &usecases.StopEncounter{
		Store:    recStore,
		Recorder: recorder,
		Logger:   logger,
	}

	pipeline := &usecases.Pipeline{
		Store:       recStore,
		Settings:    settings,
		Transcriber: transcriber,
		Reports:     reports,
		DataDir:     cfg.DataDir,
		Logger:      logger,
	}

	exportFHIR := &usecases.ExportFHIR{
		Store:     recStore,
		Settings:  settings,
		Converter: usecases.NewAIFHIRConverter(cfg.AIEndpointURL, cfg.FHIRPrompt, cfg.RequestTimeout, logger),
		Logger:    logger,
	}

	return &App{
		Store:          recStore,
		Settings:       settings,
		StartEncounter: startEncounter,
		StopEncounter:  stopEncounter,
		Pipeline:       pipeline,
		ExportFHIR:     exportFHIR,
	}, nil
}

func newKV(cfg *config.Config) (store.KV, error) {
	switch cfg.Storage {
	case "", "file":
		return store.NewFileKV(cfg.DataDir)
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return store.NewRedisKV(client), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
}
