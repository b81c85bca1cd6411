package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNoopWhenDisabled(t *testing.T) {
	m := New(false, nil, nil)
	if _, ok := m.(noopRecorder); !ok {
		t.Fatalf("expected noop recorder, got %T", m)
	}

	m.ObserveFetch(SliceStatus, time.Millisecond, errors.New("x"))
	m.IncPushEvents()
	m.AddMergedChannels(3)
	m.SetConnected(true)
	m.IncCommand("add", true)
	m.IncPreviewCache(true)
	m.SetBreakerOpen("preview", true)
}

func TestRecorderExposesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(true, reg, func() int { return 7 })

	m.ObserveFetch(SliceStatus, 10*time.Millisecond, nil)
	m.ObserveFetch(SliceLogs, 10*time.Millisecond, errors.New("boom"))
	m.IncPushEvents()
	m.AddMergedChannels(2)
	m.SetConnected(true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	for _, want := range []string{
		`panel_fetch_total{result="ok",slice="status"} 1`,
		`panel_fetch_total{result="error",slice="logs"} 1`,
		`panel_push_events_total 1`,
		`panel_push_merged_channels_total 2`,
		`panel_push_connected 1`,
		`panel_channels 7`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected metrics output to contain %q", want)
		}
	}
}
