package i18n

import (
	"context"
	"errors"
	"testing"

	"github.com/kapu/chzzk-recorder-panel/internal/constants"
	"go.uber.org/zap"
)

type fakePrefs struct {
	values map[string]string
	getErr error
	setErr error
	sets   int
}

func newFakePrefs() *fakePrefs {
	return &fakePrefs{values: map[string]string{}}
}

func (f *fakePrefs) Get(_ context.Context, key string) (string, bool, error) {
	if f.getErr != nil {
		return "", false, f.getErr
	}
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *fakePrefs) Set(_ context.Context, key, value string) error {
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	f.values[key] = value
	return nil
}

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	catalog, err := NewCatalog(map[Code]Dictionary{
		English: {"channels": map[string]any{"live": "Live"}},
		Chinese: {"channels": map[string]any{"live": "直播中"}},
		Korean:  {"channels": map[string]any{"live": "라이브"}},
	})
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	return catalog
}

func TestUIStateInitRestoresPersistedLocale(t *testing.T) {
	prefs := newFakePrefs()
	prefs.values[constants.PrefsConfig.LanguageKey] = "zh"

	state := NewUIState(testCatalog(t), prefs, English, zap.NewNop())
	state.Init(context.Background())

	if state.Current() != Chinese {
		t.Fatalf("expected zh restored, got %s", state.Current())
	}
	if got := state.Localizer().T("channels.live"); got != "直播中" {
		t.Fatalf("expected zh translation, got %q", got)
	}
}

func TestUIStateInitFallsBackOnUnknownOrBrokenStorage(t *testing.T) {
	prefs := newFakePrefs()
	prefs.values[constants.PrefsConfig.LanguageKey] = "fr"
	state := NewUIState(testCatalog(t), prefs, English, zap.NewNop())
	state.Init(context.Background())
	if state.Current() != English {
		t.Fatalf("expected fallback for unknown locale, got %s", state.Current())
	}

	broken := newFakePrefs()
	broken.getErr = errors.New("disk gone")
	state = NewUIState(testCatalog(t), broken, English, zap.NewNop())
	state.Init(context.Background())
	if state.Current() != English {
		t.Fatalf("expected fallback when storage fails, got %s", state.Current())
	}
}

func TestUIStateSetLocalePersistsAndRelabels(t *testing.T) {
	prefs := newFakePrefs()
	state := NewUIState(testCatalog(t), prefs, English, zap.NewNop())

	var relabeled []string
	state.OnLocaleChange(func(l *Localizer) {
		relabeled = append(relabeled, l.T("channels.live"))
	})

	if !state.SetLocale(context.Background(), "ko") {
		t.Fatalf("expected ko to be accepted")
	}
	if prefs.values[constants.PrefsConfig.LanguageKey] != "ko" {
		t.Fatalf("expected ko persisted, got %v", prefs.values)
	}
	if len(relabeled) != 1 || relabeled[0] != "라이브" {
		t.Fatalf("expected one relabel pass in ko, got %v", relabeled)
	}
}

func TestUIStateSetLocaleUnknownIsNoop(t *testing.T) {
	prefs := newFakePrefs()
	state := NewUIState(testCatalog(t), prefs, English, zap.NewNop())
	state.SetLocale(context.Background(), "zh")

	calls := 0
	state.OnLocaleChange(func(*Localizer) { calls++ })
	setsBefore := prefs.sets

	if state.SetLocale(context.Background(), "xx") {
		t.Fatalf("expected unknown locale to be rejected")
	}
	if state.Current() != Chinese {
		t.Fatalf("expected zh to remain current, got %s", state.Current())
	}
	if calls != 0 {
		t.Fatalf("expected no relabel for rejected locale")
	}
	if prefs.sets != setsBefore {
		t.Fatalf("expected nothing persisted for rejected locale")
	}
}

func TestUIStateSetLocaleSurvivesPersistFailure(t *testing.T) {
	prefs := newFakePrefs()
	prefs.setErr = errors.New("read-only")
	state := NewUIState(testCatalog(t), prefs, English, zap.NewNop())

	if !state.SetLocale(context.Background(), "ko") {
		t.Fatalf("expected switch to succeed despite storage failure")
	}
	if state.Current() != Korean {
		t.Fatalf("expected ko current, got %s", state.Current())
	}
}

func TestUIStateSwitchDoesNotPersist(t *testing.T) {
	prefs := newFakePrefs()
	state := NewUIState(testCatalog(t), prefs, English, zap.NewNop())

	code, ok := state.Switch("zh")
	if !ok || code != Chinese || state.Current() != Chinese {
		t.Fatalf("expected switch to zh, got %s ok=%v", code, ok)
	}
	if prefs.sets != 0 {
		t.Fatalf("expected no write from Switch, got %d", prefs.sets)
	}

	state.Persist(context.Background(), code)
	if prefs.sets != 1 {
		t.Fatalf("expected one write from Persist, got %d", prefs.sets)
	}
	if _, ok := state.Switch("xx"); ok {
		t.Fatal("expected unknown code rejected")
	}
}
