// Package panel owns the client-side sync layer: it feeds backend snapshots
// and push deltas into the channel store and the mounted document through a
// single run loop.
package panel

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/chzzk-recorder-panel/internal/backend"
	"github.com/kapu/chzzk-recorder-panel/internal/constants"
	"github.com/kapu/chzzk-recorder-panel/internal/domain"
	"github.com/kapu/chzzk-recorder-panel/internal/i18n"
	"github.com/kapu/chzzk-recorder-panel/internal/metrics"
	"github.com/kapu/chzzk-recorder-panel/internal/preview"
	"github.com/kapu/chzzk-recorder-panel/internal/store"
	"github.com/kapu/chzzk-recorder-panel/internal/web"
)

// Backend is the recorder REST surface the panel consumes.
type Backend interface {
	GetChannels(ctx context.Context) ([]domain.Channel, error)
	AddChannel(ctx context.Context, channelID string) (*domain.CommandResult, error)
	DeleteChannel(ctx context.Context, channelID string) error
	GetConfig(ctx context.Context) (domain.ConfigDocument, error)
	UpdateConfig(ctx context.Context, section string, values domain.ConfigSection) error
	GetStatus(ctx context.Context) (domain.StatusSnapshot, error)
	GetLogs(ctx context.Context) ([]domain.LogEntry, error)
}

// PushSource is the persistent event connection.
type PushSource interface {
	Connect(ctx context.Context) error
	OnStatusUpdate(callback backend.StatusUpdateCallback) func()
	OnStateChange(callback backend.StateCallback) func()
	Close() error
}

type PreviewLookup interface {
	Lookup(ctx context.Context, channelID string) (*preview.Preview, error)
}

type Deps struct {
	Backend  Backend
	Push     PushSource
	Previews PreviewLookup
	Store    *store.ChannelStore
	Document *web.Document
	UI       *i18n.UIState
	Metrics  metrics.Recorder
	Logger   *zap.Logger
}

type Options struct {
	StatusInterval time.Duration
	LogInterval    time.Duration
}

type Panel struct {
	backend   Backend
	push      PushSource
	previews  PreviewLookup
	store     *store.ChannelStore
	doc       *web.Document
	ui        *i18n.UIState
	metrics   metrics.Recorder
	loop      *Loop
	scheduler *Scheduler
	logger    *zap.Logger
	now       func() time.Time
}

func New(deps Deps, opts Options) *Panel {
	if deps.Metrics == nil {
		deps.Metrics = metrics.Noop()
	}

	p := &Panel{
		backend:  deps.Backend,
		push:     deps.Push,
		previews: deps.Previews,
		store:    deps.Store,
		doc:      deps.Document,
		ui:       deps.UI,
		metrics:  deps.Metrics,
		loop:     NewLoop(deps.Logger),
		logger:   deps.Logger,
		now:      time.Now,
	}
	p.scheduler = NewScheduler(opts.StatusInterval, opts.LogInterval, p.refreshStatus, p.refreshLogs, deps.Logger)

	p.store.Subscribe(p.doc.OnStoreChange)
	p.ui.OnLocaleChange(func(*i18n.Localizer) { p.doc.RenderAll() })
	p.bindPush()

	return p
}

// Start restores the locale, starts the run loop, the push connection, the
// initial load and both refresh timers. Everything runs until ctx ends.
func (p *Panel) Start(ctx context.Context) {
	p.ui.Init(ctx)
	p.doc.RenderAll()

	go p.loop.Run(ctx)

	if p.push != nil {
		go func() {
			if err := p.push.Connect(ctx); err != nil {
				p.logger.Warn("Push connection not established, retrying in background", zap.Error(err))
			}
		}()
	}

	go func() {
		loadCtx, cancel := context.WithTimeout(ctx, constants.LoadConfig.InitialLoadTimeout)
		defer cancel()
		_ = p.InitialLoad(loadCtx)
	}()

	p.scheduler.Start(ctx)
	go p.expireAlerts(ctx)

	p.logger.Info("Panel started")
}

// Stop halts the timers and closes the push connection.
func (p *Panel) Stop() {
	p.scheduler.Stop()
	if p.push != nil {
		if err := p.push.Close(); err != nil {
			p.logger.Warn("Failed to close push connection", zap.Error(err))
		}
	}
}

func (p *Panel) expireAlerts(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			now := p.now()
			p.loop.Post(func() { p.doc.ExpireAlerts(now) })
		case <-ctx.Done():
			return
		}
	}
}
