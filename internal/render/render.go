// Package render turns panel state into escaped HTML fragments. Every function
// is a pure transform of its arguments and the given Localizer.
package render

import (
	"html/template"
	"net/url"
	"strings"

	"github.com/kapu/chzzk-recorder-panel/internal/constants"
	"github.com/kapu/chzzk-recorder-panel/internal/domain"
	"github.com/kapu/chzzk-recorder-panel/internal/i18n"
	"github.com/kapu/chzzk-recorder-panel/internal/preview"
	"github.com/kapu/chzzk-recorder-panel/internal/util"
)

// Fragment names double as the element ids the page mounts them under.
const (
	FragmentChannels     = "channels-table"
	FragmentStats        = "stats"
	FragmentLogs         = "log-container"
	FragmentConnectivity = "status-indicator"
	FragmentConfig       = "config-form"
	FragmentAlerts       = "alerts"
	FragmentPreview      = "channel-preview"
)

// Fragments lists every fragment in mount order.
var Fragments = []string{
	FragmentConnectivity,
	FragmentAlerts,
	FragmentStats,
	FragmentChannels,
	FragmentConfig,
	FragmentLogs,
	FragmentPreview,
}

type Renderer struct {
	liveURL string
}

func New(liveURL string) *Renderer {
	return &Renderer{liveURL: strings.TrimRight(liveURL, "/")}
}

type channelRow struct {
	ID         string
	Name       string
	Title      string
	Image      string
	Live       bool
	Viewers    string
	PreviewURL string
	DeleteURL  string
}

type channelsView struct {
	L    *i18n.Localizer
	Rows []channelRow
}

// ChannelRows renders the table body: one row per channel in store order, or
// a single informational row when there are none.
func (r *Renderer) ChannelRows(l *i18n.Localizer, channels []domain.Channel) (template.HTML, error) {
	rows := make([]channelRow, 0, len(channels))
	for _, ch := range channels {
		image := ch.ChannelImage
		if !ch.HasImage() {
			image = constants.UIConfig.DefaultAvatar
		}
		rows = append(rows, channelRow{
			ID:         ch.ChannelID,
			Name:       util.TruncateString(ch.DisplayName(), constants.StringLimits.ChannelName),
			Title:      ch.LiveTitle,
			Image:      image,
			Live:       ch.IsLive,
			Viewers:    l.Count(ch.Viewers()),
			PreviewURL: r.liveURL + "/" + url.PathEscape(ch.ChannelID),
			DeleteURL:  "/channels/" + url.PathEscape(ch.ChannelID) + "/delete",
		})
	}
	return execute("channels", channelsView{L: l, Rows: rows})
}

// Counters picks the snapshot counters when a status fetch has resolved,
// otherwise recomputes total and live from the channel list.
func Counters(snap domain.StatusSnapshot, channels []domain.Channel) domain.StatusCounters {
	if snap.Counters != nil {
		return *snap.Counters
	}
	live := 0
	for _, ch := range channels {
		if ch.IsLive {
			live++
		}
	}
	return domain.StatusCounters{TotalChannels: len(channels), LiveChannels: live}
}

type statsView struct {
	L          *i18n.Localizer
	Total      string
	Live       string
	Recording  string
	LastUpdate string
}

func (r *Renderer) StatCards(l *i18n.Localizer, snap domain.StatusSnapshot, channels []domain.Channel) (template.HTML, error) {
	c := Counters(snap, channels)
	lastUpdate := l.Clock(snap.Timestamp)
	if lastUpdate == "" {
		lastUpdate = "-"
	}
	return execute("stats", statsView{
		L:          l,
		Total:      l.Count(int64(c.TotalChannels)),
		Live:       l.Count(int64(c.LiveChannels)),
		Recording:  l.Count(int64(c.RecordingChannels)),
		LastUpdate: lastUpdate,
	})
}

type logLine struct {
	Text   string
	Class  string
	Newest bool
}

type logsView struct {
	L       *i18n.Localizer
	Loaded  bool
	Entries []logLine
}

// LogPanel renders entries in arrival order; the newest carries the scroll anchor.
func (r *Renderer) LogPanel(l *i18n.Localizer, entries []domain.LogEntry, loaded bool) (template.HTML, error) {
	lines := make([]logLine, 0, len(entries))
	for i, e := range entries {
		lines = append(lines, logLine{
			Text:   util.TruncateString(e.Text, constants.StringLimits.LogLine),
			Class:  e.Severity.CSSClass(),
			Newest: i == len(entries)-1,
		})
	}
	return execute("logs", logsView{L: l, Loaded: loaded, Entries: lines})
}

type connectivityView struct {
	L         *i18n.Localizer
	Connected bool
}

func (r *Renderer) Connectivity(l *i18n.Localizer, connected bool) (template.HTML, error) {
	return execute("connectivity", connectivityView{L: l, Connected: connected})
}

type formField struct {
	ID      string
	Key     string
	Label   string
	Kind    string
	Value   string
	Checked bool
	Secret  bool
}

type formSection struct {
	Name   string
	Title  string
	Dirty  bool
	Fields []formField
}

type configView struct {
	L        *i18n.Localizer
	Sections []formSection
}

// ConfigForm renders every schema section from values; sections named in
// dirty are flagged as holding unsaved operator edits.
func (r *Renderer) ConfigForm(l *i18n.Localizer, values domain.ConfigDocument, dirty map[string]bool) (template.HTML, error) {
	sections := make([]formSection, 0, len(domain.ConfigSchema))
	for _, spec := range domain.ConfigSchema {
		section := values[spec.Name]
		fs := formSection{
			Name:  spec.Name,
			Title: l.T(spec.Title),
			Dirty: dirty[spec.Name],
		}
		for _, field := range spec.Fields {
			v := section.Value(field)
			ff := formField{
				ID:     spec.Name + "-" + strings.ReplaceAll(field.Key, "_", "-"),
				Key:    field.Key,
				Label:  l.T(field.Label),
				Kind:   string(field.Kind),
				Value:  domain.FormatScalar(v),
				Secret: field.Secret,
			}
			if field.Kind == domain.FieldBool {
				ff.Checked = domain.Truthy(v)
			}
			fs.Fields = append(fs.Fields, ff)
		}
		sections = append(sections, fs)
	}
	return execute("config", configView{L: l, Sections: sections})
}

type alertItem struct {
	ID      string
	Kind    string
	Message string
}

type alertsView struct {
	L      *i18n.Localizer
	Alerts []alertItem
}

func (r *Renderer) Alerts(l *i18n.Localizer, alerts []domain.Alert) (template.HTML, error) {
	items := make([]alertItem, 0, len(alerts))
	for _, a := range alerts {
		items = append(items, alertItem{ID: a.ID, Kind: string(a.Kind), Message: a.Message})
	}
	return execute("alerts", alertsView{L: l, Alerts: items})
}

type previewView struct {
	L       *i18n.Localizer
	Visible bool
	ID      string
	Name    string
	Image   string
}

// Preview renders the add-channel preview; a nil preview renders it hidden.
func (r *Renderer) Preview(l *i18n.Localizer, p *preview.Preview) (template.HTML, error) {
	if p == nil {
		return execute("preview", previewView{L: l})
	}
	name := p.Name
	if !p.Known {
		name = l.T("preview.unknown_channel")
	}
	return execute("preview", previewView{L: l, Visible: true, ID: p.ChannelID, Name: name, Image: p.ImageURL})
}

type languageOption struct {
	Code     string
	Label    string
	Selected bool
}

type pageView struct {
	L         *i18n.Localizer
	Lang      string
	Languages []languageOption
	Fragments map[string]template.HTML
	Poll      []string
}

// Page renders the full document around already-rendered fragments.
func (r *Renderer) Page(l *i18n.Localizer, fragments map[string]template.HTML) (template.HTML, error) {
	languages := make([]languageOption, 0, len(i18n.Supported))
	for _, code := range i18n.Supported {
		languages = append(languages, languageOption{
			Code:     code.String(),
			Label:    l.T("language." + code.String()),
			Selected: code == l.Code(),
		})
	}
	return execute("page", pageView{
		L:         l,
		Lang:      l.Code().String(),
		Languages: languages,
		Fragments: fragments,
		Poll:      []string{FragmentConnectivity, FragmentAlerts, FragmentStats, FragmentChannels, FragmentLogs},
	})
}
