package i18n

import (
	"context"
	"sync"

	"github.com/kapu/chzzk-recorder-panel/internal/constants"
	"go.uber.org/zap"
)

// Preferences is the durable client storage the selected locale is persisted to.
type Preferences interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// LocaleListener re-renders mounted labels after a locale switch.
type LocaleListener func(l *Localizer)

// UIState is the process-wide locale/session state. It lives for the whole
// panel process; there is no teardown.
type UIState struct {
	catalog  *Catalog
	prefs    Preferences
	fallback Code
	logger   *zap.Logger

	mu        sync.RWMutex
	current   Code
	listeners []LocaleListener
}

func NewUIState(catalog *Catalog, prefs Preferences, fallback Code, logger *zap.Logger) *UIState {
	if _, ok := catalog.Dictionary(fallback); !ok {
		fallback = Fallback
	}
	return &UIState{
		catalog:  catalog,
		prefs:    prefs,
		fallback: fallback,
		logger:   logger,
		current:  fallback,
	}
}

// Init restores the persisted locale. A missing, unreadable or unrecognized
// value leaves the fallback locale selected.
func (s *UIState) Init(ctx context.Context) {
	if s.prefs == nil {
		return
	}

	stored, found, err := s.prefs.Get(ctx, constants.PrefsConfig.LanguageKey)
	if err != nil {
		s.logger.Warn("Failed to restore locale, using fallback",
			zap.String("fallback", s.fallback.String()),
			zap.Error(err))
		return
	}
	if !found {
		return
	}

	code, ok := ParseCode(stored)
	if !ok {
		s.logger.Warn("Ignoring unrecognized persisted locale", zap.String("locale", stored))
		return
	}

	s.mu.Lock()
	s.current = code
	s.mu.Unlock()

	s.logger.Info("Locale restored", zap.String("locale", code.String()))
}

// SetLocale switches the current locale, re-runs every registered listener
// and persists the choice. Unknown codes are a no-op and return false.
func (s *UIState) SetLocale(ctx context.Context, raw string) bool {
	code, ok := s.Switch(raw)
	if !ok {
		return false
	}
	s.Persist(ctx, code)
	return true
}

// Switch makes raw the current locale and relabels without touching storage.
func (s *UIState) Switch(raw string) (Code, bool) {
	code, ok := ParseCode(raw)
	if !ok {
		s.logger.Debug("Ignoring unknown locale", zap.String("locale", raw))
		return "", false
	}
	if _, ok := s.catalog.Dictionary(code); !ok {
		return "", false
	}

	s.mu.Lock()
	s.current = code
	listeners := make([]LocaleListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	localizer := s.Localizer()
	for _, listener := range listeners {
		listener(localizer)
	}
	return code, true
}

// Persist stores code as the preferred locale. A storage failure is logged;
// the switched locale stays in effect for this process.
func (s *UIState) Persist(ctx context.Context, code Code) {
	if s.prefs == nil {
		return
	}
	if err := s.prefs.Set(ctx, constants.PrefsConfig.LanguageKey, code.String()); err != nil {
		s.logger.Warn("Failed to persist locale", zap.String("locale", code.String()), zap.Error(err))
	}
}

// Current returns the selected locale code.
func (s *UIState) Current() Code {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Localizer snapshots the current locale.
func (s *UIState) Localizer() *Localizer {
	code := s.Current()
	dict, _ := s.catalog.Dictionary(code)
	return NewLocalizer(code, dict)
}

// OnLocaleChange registers a relabel listener.
func (s *UIState) OnLocaleChange(listener LocaleListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, listener)
}
