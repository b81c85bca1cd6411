package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/kapu/chzzk-recorder-panel/internal/backend"
	"github.com/kapu/chzzk-recorder-panel/internal/config"
	"github.com/kapu/chzzk-recorder-panel/internal/constants"
	"github.com/kapu/chzzk-recorder-panel/internal/i18n"
	"github.com/kapu/chzzk-recorder-panel/internal/metrics"
	"github.com/kapu/chzzk-recorder-panel/internal/panel"
	"github.com/kapu/chzzk-recorder-panel/internal/prefs"
	"github.com/kapu/chzzk-recorder-panel/internal/preview"
	"github.com/kapu/chzzk-recorder-panel/internal/render"
	"github.com/kapu/chzzk-recorder-panel/internal/store"
	"github.com/kapu/chzzk-recorder-panel/internal/web"
)

// Container bundles the assembled panel runtime.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	Panel  *panel.Panel
	Server *web.Server

	closers []func()
}

// Close releases storage handles in reverse construction order.
func (c *Container) Close() {
	if c == nil {
		return
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Build assembles every panel component. Preference storage is opened here so
// a misconfigured backend fails fast before the HTTP listener starts.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	// Preferences and locale
	prefStore, err := prefs.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open preference store: %w", err)
	}
	closers = append(closers, func() {
		_ = prefStore.Close()
	})

	catalog, err := i18n.LoadBundledCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to load locale catalog: %w", err)
	}
	fallback, ok := i18n.ParseCode(cfg.Locale.Default)
	if !ok {
		logger.Warn("Unknown default locale, using English", zap.String("locale", cfg.Locale.Default))
		fallback = i18n.Fallback
	}
	ui := i18n.NewUIState(catalog, prefStore, fallback, logger)

	// View state
	channels := store.NewChannelStore()
	doc := web.NewDocument(render.New(cfg.Preview.LiveURL), ui, channels, logger)

	// Metrics
	registry := prometheus.NewRegistry()
	recorder := metrics.New(cfg.Metrics.Enabled, registry, channels.Len)
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metricsHandler = recorder.Handler()
	}

	// Recorder backend
	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, logger)
	events := backend.NewEventStream(
		cfg.Backend.PushURL,
		constants.WebSocketConfig.MaxReconnectAttempts,
		constants.WebSocketConfig.ReconnectDelay,
		constants.WebSocketConfig.HandshakeTimeout,
		logger,
	)

	previews := preview.NewClient(preview.Config{
		BaseURL:     cfg.Preview.BaseURL,
		Timeout:     cfg.Backend.Timeout,
		CacheSizeMB: cfg.Preview.CacheSizeMB,
		CacheTTL:    cfg.Preview.CacheTTL,
	}, recorder, logger)

	p := panel.New(panel.Deps{
		Backend:  client,
		Push:     events,
		Previews: previews,
		Store:    channels,
		Document: doc,
		UI:       ui,
		Metrics:  recorder,
		Logger:   logger,
	}, panel.Options{
		StatusInterval: cfg.Refresh.StatusInterval,
		LogInterval:    cfg.Refresh.LogInterval,
	})

	server := web.NewServer(cfg.Panel.ListenAddr, doc, p, metricsHandler, logger)

	logger.Info("Panel assembled",
		zap.String("backend", cfg.Backend.BaseURL),
		zap.String("push", cfg.Backend.PushURL),
		zap.String("prefs", cfg.Prefs.Backend),
		zap.String("default_locale", fallback.String()),
		zap.Bool("metrics", cfg.Metrics.Enabled),
	)

	return &Container{
		Config:  cfg,
		Logger:  logger,
		Panel:   p,
		Server:  server,
		closers: closers,
	}, nil
}
