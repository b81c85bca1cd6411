package panel

import (
	"context"
	stderrors "errors"
	"strings"

	"go.uber.org/zap"

	"github.com/kapu/chzzk-recorder-panel/internal/constants"
	"github.com/kapu/chzzk-recorder-panel/internal/domain"
	"github.com/kapu/chzzk-recorder-panel/internal/i18n"
	"github.com/kapu/chzzk-recorder-panel/internal/preview"
	"github.com/kapu/chzzk-recorder-panel/pkg/errors"
)

// Operator commands. Each runs its backend call on the caller's goroutine,
// applies the outcome through the run loop and returns once the document
// reflects it. Commands are not cancelled when the caller goes away.

func (p *Panel) AddChannel(ctx context.Context, raw string) {
	ctx, cancel := p.commandContext(ctx)
	defer cancel()

	channelID := strings.TrimSpace(raw)
	if channelID == "" {
		p.notify(ctx, domain.AlertWarning, "messages.channel_id_required")
		return
	}

	_, err := p.backend.AddChannel(ctx, channelID)
	p.metrics.IncCommand("add_channel", err == nil)
	if err != nil {
		p.logger.Warn("Add channel failed", zap.String("channel_id", channelID), zap.Error(err))
		p.notifyFailure(ctx, err, "messages.add_failed")
		return
	}

	p.notify(ctx, domain.AlertSuccess, "messages.channel_added")
	_ = p.loop.Do(ctx, func() { p.doc.ShowPreview(nil) })
	if err := p.loadChannels(ctx); err != nil {
		p.logger.Warn("Channel list reload failed", zap.Error(err))
	}
}

func (p *Panel) DeleteChannel(ctx context.Context, channelID string) {
	ctx, cancel := p.commandContext(ctx)
	defer cancel()

	err := p.backend.DeleteChannel(ctx, channelID)
	p.metrics.IncCommand("delete_channel", err == nil)
	if err != nil {
		p.logger.Warn("Delete channel failed", zap.String("channel_id", channelID), zap.Error(err))
		p.notifyFailure(ctx, err, "messages.delete_failed")
		return
	}

	_ = p.loop.Do(ctx, func() { p.store.Remove(channelID) })
	p.notify(ctx, domain.AlertSuccess, "messages.channel_deleted")
	if err := p.loadChannels(ctx); err != nil {
		p.logger.Warn("Channel list reload failed", zap.Error(err))
	}
}

// SaveConfig sends one section. On success the saved values are echoed into
// the form before the server copy is re-fetched; on failure they stay staged.
func (p *Panel) SaveConfig(ctx context.Context, section string, values domain.ConfigSection) {
	ctx, cancel := p.commandContext(ctx)
	defer cancel()

	if _, ok := domain.LookupSection(section); !ok {
		p.notify(ctx, domain.AlertWarning, "messages.invalid_value")
		return
	}

	err := p.backend.UpdateConfig(ctx, section, values)
	p.metrics.IncCommand("save_config", err == nil)
	if err != nil {
		p.logger.Warn("Save config failed", zap.String("section", section), zap.Error(err))
		_ = p.loop.Do(ctx, func() { p.doc.StageConfig(section, values) })
		p.notifyFailure(ctx, err, "messages.save_failed")
		return
	}

	_ = p.loop.Do(ctx, func() { p.doc.CommitConfig(section, values) })
	p.notify(ctx, domain.AlertSuccess, "messages.config_saved")
	if err := p.loadConfig(ctx); err != nil {
		p.logger.Warn("Config reload failed", zap.Error(err))
	}
}

// StageConfig keeps operator edits for section without sending them.
func (p *Panel) StageConfig(ctx context.Context, section string, values domain.ConfigSection) {
	if _, ok := domain.LookupSection(section); !ok {
		return
	}
	_ = p.loop.Do(ctx, func() { p.doc.StageConfig(section, values) })
}

func (p *Panel) DiscardConfig(ctx context.Context, section string) {
	_ = p.loop.Do(ctx, func() { p.doc.DiscardConfig(section) })
}

// SetLocale switches the UI language; unknown codes change nothing. The
// switch and relabel run on the loop, the preference write after it.
func (p *Panel) SetLocale(ctx context.Context, raw string) {
	ctx, cancel := p.commandContext(ctx)
	defer cancel()

	var (
		code     i18n.Code
		switched bool
	)
	if err := p.loop.Do(ctx, func() { code, switched = p.ui.Switch(raw) }); err != nil {
		return
	}
	if !switched {
		p.logger.Debug("Ignored unknown locale", zap.String("code", raw))
		return
	}
	p.ui.Persist(ctx, code)
}

func (p *Panel) DismissAlert(ctx context.Context, id string) {
	_ = p.loop.Do(ctx, func() { p.doc.DismissAlert(id) })
}

func (p *Panel) RefreshLogs(ctx context.Context) {
	ctx, cancel := p.commandContext(ctx)
	defer cancel()
	p.refreshLogs(ctx)
}

// Preview looks up the add-channel preview; any failure hides the panel.
func (p *Panel) Preview(ctx context.Context, raw string) {
	ctx, cancel := p.commandContext(ctx)
	defer cancel()

	channelID := strings.TrimSpace(raw)
	if p.previews == nil || !preview.Eligible(channelID) {
		_ = p.loop.Do(ctx, func() { p.doc.ShowPreview(nil) })
		return
	}

	found, err := p.previews.Lookup(ctx, channelID)
	if err != nil {
		p.logger.Debug("Preview hidden", zap.String("channel_id", channelID), zap.Error(err))
		found = nil
	}
	_ = p.loop.Do(ctx, func() { p.doc.ShowPreview(found) })
}

// Notify raises an alert whose text is the translation of messagePath.
func (p *Panel) Notify(ctx context.Context, kind domain.AlertKind, messagePath string) {
	p.notify(ctx, kind, messagePath)
}

func (p *Panel) notify(ctx context.Context, kind domain.AlertKind, messagePath string) {
	message := p.ui.Localizer().T(messagePath)
	_ = p.loop.Do(ctx, func() { p.doc.PushAlert(kind, message, p.now()) })
}

// notifyFailure prefers the backend's own message and falls back to the
// localized generic one.
func (p *Panel) notifyFailure(ctx context.Context, err error, fallbackPath string) {
	message := p.ui.Localizer().T(fallbackPath)
	var serverErr *errors.ServerError
	if stderrors.As(err, &serverErr) && serverErr.ServerMessage != "" {
		message = serverErr.ServerMessage
	}
	_ = p.loop.Do(ctx, func() { p.doc.PushAlert(domain.AlertDanger, message, p.now()) })
}

func (p *Panel) commandContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), constants.LoadConfig.CommandTimeout)
}
