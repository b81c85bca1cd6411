package panel

import (
	"context"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/kapu/chzzk-recorder-panel/internal/backend"
	"github.com/kapu/chzzk-recorder-panel/internal/domain"
	"github.com/kapu/chzzk-recorder-panel/internal/metrics"
)

// InitialLoad fetches the four slices concurrently. Each slice is applied as
// soon as it arrives; a failing slice does not hold back the others.
func (p *Panel) InitialLoad(ctx context.Context) error {
	loads := pool.New().WithErrors().WithContext(ctx)
	loads.Go(p.loadChannels)
	loads.Go(p.loadConfig)
	loads.Go(p.loadStatus)
	loads.Go(p.loadLogs)

	if err := loads.Wait(); err != nil {
		p.logger.Warn("Initial load incomplete", zap.Error(err))
		p.notify(ctx, domain.AlertDanger, "messages.load_failed")
		return err
	}
	p.logger.Info("Initial load complete", zap.Int("channels", p.store.Len()))
	return nil
}

func (p *Panel) refreshStatus(ctx context.Context) {
	if err := p.loadStatus(ctx); err != nil {
		p.logger.Warn("Status refresh failed", zap.Error(err))
	}
}

func (p *Panel) refreshLogs(ctx context.Context) {
	if err := p.loadLogs(ctx); err != nil {
		p.logger.Warn("Log refresh failed", zap.Error(err))
	}
}

func (p *Panel) loadChannels(ctx context.Context) error {
	start := time.Now()
	channels, err := p.backend.GetChannels(ctx)
	p.metrics.ObserveFetch(metrics.SliceChannels, time.Since(start), err)
	if err != nil {
		return err
	}
	return p.loop.Do(ctx, func() { p.store.ReplaceAll(channels) })
}

func (p *Panel) loadConfig(ctx context.Context) error {
	start := time.Now()
	doc, err := p.backend.GetConfig(ctx)
	p.metrics.ObserveFetch(metrics.SliceConfig, time.Since(start), err)
	if err != nil {
		return err
	}
	return p.loop.Do(ctx, func() {
		if kept := p.doc.PopulateConfig(doc); len(kept) > 0 {
			p.logger.Debug("Kept staged config sections", zap.Strings("sections", kept))
		}
	})
}

func (p *Panel) loadStatus(ctx context.Context) error {
	start := time.Now()
	snap, err := p.backend.GetStatus(ctx)
	p.metrics.ObserveFetch(metrics.SliceStatus, time.Since(start), err)
	if err != nil {
		return err
	}
	return p.loop.Do(ctx, func() { p.doc.SetSnapshot(snap) })
}

func (p *Panel) loadLogs(ctx context.Context) error {
	start := time.Now()
	entries, err := p.backend.GetLogs(ctx)
	p.metrics.ObserveFetch(metrics.SliceLogs, time.Since(start), err)
	if err != nil {
		return err
	}
	return p.loop.Do(ctx, func() { p.doc.SetLogs(entries) })
}

// bindPush wires the push connection: state changes drive the connectivity
// indicator, status updates merge channel deltas and advance the update time
// as two separate tasks.
func (p *Panel) bindPush() {
	if p.push == nil {
		return
	}

	p.push.OnStateChange(func(state backend.StreamState) {
		switch state {
		case backend.StreamConnected:
			p.metrics.SetConnected(true)
			p.loop.Post(func() { p.doc.SetConnected(true) })
		case backend.StreamDisconnected, backend.StreamReconnecting, backend.StreamFailed:
			p.metrics.SetConnected(false)
			p.loop.Post(func() { p.doc.SetConnected(false) })
		}
	})

	p.push.OnStatusUpdate(func(update backend.StatusUpdate) {
		p.metrics.IncPushEvents()

		patches := update.Channels
		p.loop.Post(func() {
			p.store.MergePush(patches...)
			p.metrics.AddMergedChannels(len(patches))
		})

		ts := domain.ParseTimestamp(update.Timestamp)
		p.loop.Post(func() { p.doc.SetLastUpdate(ts) })
	})
}
