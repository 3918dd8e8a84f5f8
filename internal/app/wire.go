package app

import (
	"context"
	"fmt"

	"github.com/deusflow/thainews/internal/config"
	"github.com/deusflow/thainews/internal/gemini"
	"github.com/deusflow/thainews/internal/logger"
	"github.com/deusflow/thainews/internal/metrics"
	"github.com/deusflow/thainews/internal/rss"
	"github.com/deusflow/thainews/internal/storage"
	"github.com/deusflow/thainews/internal/translate"
)

// NewTranslator picks the translation backend named by cfg.Provider.
// The returned close func is always non-nil.
func NewTranslator(ctx context.Context, cfg *config.Config) (translate.Translator, func(), error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		t, err := gemini.NewTranslator(ctx, gemini.Options{
			APIKey:          cfg.GeminiAPIKey,
			Model:           cfg.GeminiModel,
			TargetLanguage:  cfg.TargetLanguage,
			MaxOutputTokens: cfg.MaxOutputTokens,
			Timeout:         cfg.RequestTimeout,
		})
		if err != nil {
			return nil, func() {}, err
		}
		return t, t.Close, nil
	case config.ProviderOpenAI, "":
		return translate.NewClient(translate.Options{
			APIKey:          cfg.APIKey,
			APIKeyName:      config.APIKeyEnv,
			APIURL:          cfg.APIURL,
			Model:           cfg.Model,
			TargetLanguage:  cfg.TargetLanguage,
			MaxOutputTokens: cfg.MaxOutputTokens,
			Timeout:         cfg.RequestTimeout,
		}), func() {}, nil
	default:
		return nil, func() {}, fmt.Errorf("unknown translator provider %q", cfg.Provider)
	}
}

// Build wires the production collaborators for cfg. The returned cleanup
// releases the translator and the optional archive connection.
func Build(ctx context.Context, cfg *config.Config) (*Runner, func(), error) {
	translator, closeTranslator, err := NewTranslator(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Provider != config.ProviderGemini && cfg.APIKey == "" {
		logger.Warn(config.APIKeyEnv + " is not set, every new item will carry a translation error")
	}

	opts := []Option{WithMetrics(metrics.New())}
	cleanup := closeTranslator

	if cfg.DatabaseURL != "" {
		archive, err := storage.NewPostgresArchive(ctx, cfg.DatabaseURL)
		if err != nil {
			// The file store is the source of truth; run without the mirror.
			logger.Warn("postgres archive disabled", "error", err)
		} else {
			opts = append(opts, WithArchive(archive))
			cleanup = func() {
				closeTranslator()
				if err := archive.Close(); err != nil {
					logger.Warn("failed to close archive", "error", err)
				}
			}
		}
	}

	runner := NewRunner(
		cfg,
		rss.NewFetcher(cfg.FeedTimeout),
		translator,
		storage.NewFileStore(cfg.StorePath),
		opts...,
	)
	return runner, cleanup, nil
}
