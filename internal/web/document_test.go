package web

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/kapu/chzzk-recorder-panel/internal/constants"
	"github.com/kapu/chzzk-recorder-panel/internal/domain"
	"github.com/kapu/chzzk-recorder-panel/internal/i18n"
	"github.com/kapu/chzzk-recorder-panel/internal/render"
	"github.com/kapu/chzzk-recorder-panel/internal/store"
)

type fixedLocale struct {
	l *i18n.Localizer
}

func (f *fixedLocale) Localizer() *i18n.Localizer { return f.l }

func newLocale(t *testing.T, code i18n.Code) *fixedLocale {
	t.Helper()
	catalog, err := i18n.LoadBundledCatalog()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	dict, _ := catalog.Dictionary(code)
	return &fixedLocale{l: i18n.NewLocalizer(code, dict)}
}

func newTestDocument(t *testing.T) (*Document, *store.ChannelStore, *fixedLocale) {
	t.Helper()
	locale := newLocale(t, i18n.English)
	channels := store.NewChannelStore()
	doc := NewDocument(render.New("https://chzzk.naver.com/live"), locale, channels, zap.NewNop())
	channels.Subscribe(doc.OnStoreChange)
	return doc, channels, locale
}

func fragmentDoc(t *testing.T, doc *Document, name string) *goquery.Document {
	t.Helper()
	html, ok := doc.Fragment(name)
	if !ok {
		t.Fatalf("fragment %s not mounted", name)
	}
	wrapped := string(html)
	if name == render.FragmentChannels {
		wrapped = "<table><tbody>" + wrapped + "</tbody></table>"
	}
	parsed, err := goquery.NewDocumentFromReader(strings.NewReader(wrapped))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return parsed
}

func TestDocumentMountsEveryFragment(t *testing.T) {
	doc, _, _ := newTestDocument(t)
	for _, name := range render.Fragments {
		if _, ok := doc.Fragment(name); !ok {
			t.Errorf("fragment %s not mounted", name)
		}
	}
}

func TestDocumentRerendersOnStoreChange(t *testing.T) {
	doc, channels, _ := newTestDocument(t)

	live := true
	channels.MergePush(domain.ChannelPatch{ChannelID: "c1", IsLive: &live})

	rows := fragmentDoc(t, doc, render.FragmentChannels).Find("tr[data-channel-id]")
	if rows.Length() != 1 {
		t.Fatalf("expected store change to re-render rows, got %d", rows.Length())
	}
	if got := fragmentDoc(t, doc, render.FragmentStats).Find("#live-channels").Text(); got != "1" {
		t.Fatalf("expected computed live count 1, got %q", got)
	}
}

func TestDocumentLastUpdateIsIndependentOfCounters(t *testing.T) {
	doc, channels, _ := newTestDocument(t)
	channels.ReplaceAll([]domain.Channel{{ChannelID: "a"}, {ChannelID: "b"}})

	doc.SetSnapshot(domain.StatusSnapshot{Counters: &domain.StatusCounters{TotalChannels: 5}})
	doc.SetLastUpdate(time.Date(2024, 1, 1, 8, 9, 10, 0, time.Local))

	stats := fragmentDoc(t, doc, render.FragmentStats)
	if stats.Find("#total-channels").Text() != "5" {
		t.Fatalf("expected snapshot counters to survive a timestamp update, got %q", stats.Find("#total-channels").Text())
	}
	if stats.Find("#last-update").Text() != "08:09:10" {
		t.Fatalf("unexpected last update %q", stats.Find("#last-update").Text())
	}
}

func TestDocumentPopulateKeepsStagedSection(t *testing.T) {
	doc, _, _ := newTestDocument(t)

	doc.PopulateConfig(domain.ConfigDocument{
		domain.SectionRecording: {"quality": "best"},
		domain.SectionSystem:    {"zmq_port": int64(5555)},
	})
	doc.StageConfig(domain.SectionSystem, domain.ConfigSection{"zmq_port": int64(6000)})

	kept := doc.PopulateConfig(domain.ConfigDocument{
		domain.SectionRecording: {"quality": "720p"},
		domain.SectionSystem:    {"zmq_port": int64(7000)},
	})
	if len(kept) != 1 || kept[0] != domain.SectionSystem {
		t.Fatalf("expected system section kept, got %v", kept)
	}

	form := fragmentDoc(t, doc, render.FragmentConfig)
	if v, _ := form.Find("#system-zmq-port").Attr("value"); v != "6000" {
		t.Fatalf("expected staged value to survive repopulation, got %q", v)
	}
	if v, _ := form.Find("#recording-quality").Attr("value"); v != "720p" {
		t.Fatalf("expected clean section repopulated, got %q", v)
	}

	if form.Find(`button[formaction="/config/system/discard"]`).Length() != 1 {
		t.Fatal("expected discard button on the staged section")
	}
	doc.DiscardConfig(domain.SectionSystem)
	if got := doc.ConfigSection(domain.SectionSystem)["zmq_port"]; got != int64(7000) {
		t.Fatalf("expected server copy after discard, got %#v", got)
	}

	doc.StageConfig(domain.SectionSystem, domain.ConfigSection{"zmq_port": int64(6000)})
	doc.CommitConfig(domain.SectionSystem, domain.ConfigSection{"zmq_port": int64(6000)})
	if doc.IsDirty(domain.SectionSystem) {
		t.Fatal("expected commit to clear the draft")
	}
	if got := doc.ConfigSection(domain.SectionSystem)["zmq_port"]; got != int64(6000) {
		t.Fatalf("expected echoed value, got %#v", got)
	}
}

func TestDocumentAlertsExpireAndDismiss(t *testing.T) {
	doc, _, _ := newTestDocument(t)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	first := doc.PushAlert(domain.AlertSuccess, "saved", now)
	doc.PushAlert(domain.AlertDanger, "later", now.Add(3*time.Second))

	if !doc.DismissAlert(first.ID) || doc.DismissAlert(first.ID) {
		t.Fatal("expected dismiss to succeed exactly once")
	}

	doc.ExpireAlerts(now.Add(10 * time.Second))
	if len(doc.Alerts()) != 0 {
		t.Fatalf("expected alerts to expire, got %+v", doc.Alerts())
	}
	if fragmentDoc(t, doc, render.FragmentAlerts).Find(".alert").Length() != 0 {
		t.Fatal("expected alerts fragment to be empty")
	}
}

func TestAlertBoardCapsOldest(t *testing.T) {
	board := NewAlertBoard(time.Minute, 2)
	now := time.Now()
	board.Push(domain.AlertInfo, "one", now)
	board.Push(domain.AlertInfo, "two", now)
	board.Push(domain.AlertInfo, "three", now)

	list := board.List()
	if len(list) != 2 || list[0].Message != "two" || list[1].Message != "three" {
		t.Fatalf("unexpected alerts %+v", list)
	}
	if list[0].ID == "" || list[0].ID == list[1].ID {
		t.Fatal("expected unique alert ids")
	}
}

func TestDocumentSetLogsIsBounded(t *testing.T) {
	doc, _, _ := newTestDocument(t)
	lines := make([]string, 250)
	for i := range lines {
		lines[i] = "INFO line " + strconv.Itoa(i)
	}

	doc.SetLogs(domain.NewLogEntries(lines))

	entries := fragmentDoc(t, doc, render.FragmentLogs).Find(".log-entry")
	if entries.Length() != constants.UIConfig.LogTailLines {
		t.Fatalf("expected %d rendered lines, got %d", constants.UIConfig.LogTailLines, entries.Length())
	}
	if got := strings.TrimSpace(entries.Last().Text()); got != "INFO line 249" {
		t.Fatalf("expected newest line last, got %q", got)
	}
}

func TestDocumentSetConnected(t *testing.T) {
	doc, _, locale := newTestDocument(t)

	doc.SetConnected(true)
	if fragmentDoc(t, doc, render.FragmentConnectivity).Find(".status-running").Text() != locale.l.T("nav.status.running") {
		t.Fatal("expected running indicator")
	}
	doc.SetConnected(false)
	if fragmentDoc(t, doc, render.FragmentConnectivity).Find(".status-disconnected").Length() != 1 {
		t.Fatal("expected disconnected indicator")
	}
}

func TestDocumentRenderAllFollowsLocale(t *testing.T) {
	doc, _, locale := newTestDocument(t)
	before, _ := doc.Fragment(render.FragmentChannels)

	locale.l = newLocale(t, i18n.Korean).l
	doc.RenderAll()
	after, _ := doc.Fragment(render.FragmentChannels)

	if before == after {
		t.Fatal("expected relabeled empty-state row after locale change")
	}
}
