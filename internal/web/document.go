package web

import (
	"html/template"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/chzzk-recorder-panel/internal/constants"
	"github.com/kapu/chzzk-recorder-panel/internal/domain"
	"github.com/kapu/chzzk-recorder-panel/internal/i18n"
	"github.com/kapu/chzzk-recorder-panel/internal/preview"
	"github.com/kapu/chzzk-recorder-panel/internal/render"
	"github.com/kapu/chzzk-recorder-panel/internal/store"
)

// LocaleSource supplies the locale snapshot for each render pass.
type LocaleSource interface {
	Localizer() *i18n.Localizer
}

// Document is the mounted panel UI: the view state of every slice plus the
// rendered fragment for each mount point. It re-renders the affected
// fragments after every change so HTTP readers always see a finished render.
type Document struct {
	mu        sync.RWMutex
	renderer  *render.Renderer
	locale    LocaleSource
	channels  *store.ChannelStore
	logger    *zap.Logger
	fragments map[string]template.HTML

	snapshot   domain.StatusSnapshot
	logs       []domain.LogEntry
	logsLoaded bool
	connected  bool
	form       *ConfigForm
	alerts     *AlertBoard
	preview    *preview.Preview
}

func NewDocument(renderer *render.Renderer, locale LocaleSource, channels *store.ChannelStore, logger *zap.Logger) *Document {
	d := &Document{
		renderer:  renderer,
		locale:    locale,
		channels:  channels,
		logger:    logger,
		fragments: make(map[string]template.HTML, len(render.Fragments)),
		form:      NewConfigForm(),
		alerts:    NewAlertBoard(constants.UIConfig.AlertLifetime, constants.UIConfig.MaxAlerts),
	}
	d.RenderAll()
	return d
}

// OnStoreChange re-renders everything derived from the channel list.
func (d *Document) OnStoreChange(store.ChangeKind) {
	d.mu.Lock()
	defer d.mu.Unlock()
	l := d.locale.Localizer()
	d.renderChannels(l)
	d.renderStats(l)
}

// RenderAll re-runs every fragment, e.g. after a locale switch.
func (d *Document) RenderAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	l := d.locale.Localizer()
	d.renderChannels(l)
	d.renderStats(l)
	d.renderLogs(l)
	d.renderConnectivity(l)
	d.renderConfig(l)
	d.renderAlerts(l)
	d.renderPreview(l)
}

// SetSnapshot replaces counters and timestamp from a status fetch.
func (d *Document) SetSnapshot(snap domain.StatusSnapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.snapshot = snap
	d.renderStats(d.locale.Localizer())
}

// SetLastUpdate advances only the displayed update time; zero is ignored.
func (d *Document) SetLastUpdate(ts time.Time) {
	if ts.IsZero() {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.snapshot.Timestamp = ts
	d.renderStats(d.locale.Localizer())
}

func (d *Document) SetLogs(entries []domain.LogEntry) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.logs = domain.TailLogs(entries, constants.UIConfig.LogTailLines)
	d.logsLoaded = true
	d.renderLogs(d.locale.Localizer())
}

func (d *Document) SetConnected(connected bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.connected == connected && d.fragments[render.FragmentConnectivity] != "" {
		return
	}
	d.connected = connected
	d.renderConnectivity(d.locale.Localizer())
}

// PopulateConfig applies a server document without touching staged sections.
func (d *Document) PopulateConfig(doc domain.ConfigDocument) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	kept := d.form.Populate(doc)
	d.renderConfig(d.locale.Localizer())
	return kept
}

func (d *Document) StageConfig(section string, values domain.ConfigSection) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.form.Stage(section, values)
	d.renderConfig(d.locale.Localizer())
}

func (d *Document) CommitConfig(section string, values domain.ConfigSection) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.form.Commit(section, values)
	d.renderConfig(d.locale.Localizer())
}

// DiscardConfig drops the staged edits for section so it shows the server copy again.
func (d *Document) DiscardConfig(section string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.form.Discard(section)
	d.renderConfig(d.locale.Localizer())
}

// ConfigSection returns what the form currently shows for section.
func (d *Document) ConfigSection(section string) domain.ConfigSection {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.form.Display()[section].Clone()
}

func (d *Document) IsDirty(section string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.form.IsDirty(section)
}

func (d *Document) PushAlert(kind domain.AlertKind, message string, now time.Time) domain.Alert {
	d.mu.Lock()
	defer d.mu.Unlock()
	alert := d.alerts.Push(kind, message, now)
	d.renderAlerts(d.locale.Localizer())
	return alert
}

func (d *Document) DismissAlert(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.alerts.Dismiss(id) {
		return false
	}
	d.renderAlerts(d.locale.Localizer())
	return true
}

func (d *Document) ExpireAlerts(now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.alerts.Expire(now) {
		d.renderAlerts(d.locale.Localizer())
	}
}

func (d *Document) Alerts() []domain.Alert {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.alerts.List()
}

// ShowPreview mounts p; nil hides the preview panel.
func (d *Document) ShowPreview(p *preview.Preview) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.preview = p
	d.renderPreview(d.locale.Localizer())
}

func (d *Document) Snapshot() domain.StatusSnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snapshot
}

func (d *Document) Connected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

func (d *Document) Fragment(name string) (template.HTML, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	html, ok := d.fragments[name]
	return html, ok
}

// Page renders the full document around the current fragments.
func (d *Document) Page() (template.HTML, error) {
	d.mu.RLock()
	fragments := make(map[string]template.HTML, len(d.fragments))
	for name, html := range d.fragments {
		fragments[name] = html
	}
	d.mu.RUnlock()

	return d.renderer.Page(d.locale.Localizer(), fragments)
}

// render* must be called with mu held.

func (d *Document) renderChannels(l *i18n.Localizer) {
	d.mount(render.FragmentChannels)(d.renderer.ChannelRows(l, d.channels.All()))
}

func (d *Document) renderStats(l *i18n.Localizer) {
	d.mount(render.FragmentStats)(d.renderer.StatCards(l, d.snapshot, d.channels.All()))
}

func (d *Document) renderLogs(l *i18n.Localizer) {
	d.mount(render.FragmentLogs)(d.renderer.LogPanel(l, d.logs, d.logsLoaded))
}

func (d *Document) renderConnectivity(l *i18n.Localizer) {
	d.mount(render.FragmentConnectivity)(d.renderer.Connectivity(l, d.connected))
}

func (d *Document) renderConfig(l *i18n.Localizer) {
	d.mount(render.FragmentConfig)(d.renderer.ConfigForm(l, d.form.Display(), d.form.Dirty()))
}

func (d *Document) renderAlerts(l *i18n.Localizer) {
	d.mount(render.FragmentAlerts)(d.renderer.Alerts(l, d.alerts.List()))
}

func (d *Document) renderPreview(l *i18n.Localizer) {
	d.mount(render.FragmentPreview)(d.renderer.Preview(l, d.preview))
}

// mount stores a rendered fragment; on error the previous render stays.
func (d *Document) mount(name string) func(template.HTML, error) {
	return func(html template.HTML, err error) {
		if err != nil {
			d.logger.Error("Failed to render fragment",
				zap.String("fragment", name),
				zap.Error(err),
			)
			return
		}
		d.fragments[name] = html
	}
}
