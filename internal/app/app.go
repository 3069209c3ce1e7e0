// Package app wires configuration, the model client and the intel service
// together for the server and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dgallion1/intelsheet/internal/api"
	"github.com/dgallion1/intelsheet/internal/config"
	"github.com/dgallion1/intelsheet/internal/intel"
	"github.com/dgallion1/intelsheet/internal/llm"
)

type App struct {
	Config config.Config
	Log    *slog.Logger
	Model  *llm.Timed
	Intel  *intel.Service

	client llm.Completer
}

// New builds the model client for the configured provider.
func New(cfg config.Config, log *slog.Logger) (*App, error) {
	baseURL := ""
	if cfg.LLMProvider == llm.ProviderOpenAI {
		baseURL = cfg.OpenAIBaseURL
	}
	client, err := llm.New(cfg.LLMProvider, cfg.ProviderKey(), cfg.Model(), llm.Options{
		Temperature: cfg.LLMTemperature,
		MaxTokens:   cfg.LLMMaxTokens,
		Timeout:     cfg.LLMTimeout,
		BaseURL:     baseURL,
	})
	if err != nil {
		return nil, err
	}
	return NewWithModel(cfg, client, log), nil
}

// NewWithModel uses model instead of a provider client.
func NewWithModel(cfg config.Config, model llm.Completer, log *slog.Logger) *App {
	timed := llm.NewTimed(model, llm.NewStats(time.Hour), log)
	return &App{
		Config: cfg,
		Log:    log,
		Model:  timed,
		Intel:  intel.NewService(cfg.SchemaPath, timed, log),
		client: model,
	}
}

// Close releases the model client's idle connections.
func (a *App) Close() {
	if c, ok := a.client.(interface{ Close() }); ok {
		c.Close()
	}
}

// Handler returns the HTTP API.
func (a *App) Handler() http.Handler {
	return api.NewServer(a.Intel, a.Model.Stats(), a.Log, a.Config)
}

// Serve runs the HTTP API until ctx is cancelled, then drains in-flight
// requests for up to ten seconds.
func (a *App) Serve(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         ":" + a.Config.Port,
		Handler:      a.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: a.Config.LLMTimeout*2 + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("starting intelsheet", "port", a.Config.Port, "provider", a.Config.LLMProvider, "model", a.Model.Model())
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	a.Log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
