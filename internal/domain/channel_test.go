package domain

import (
	"reflect"
	"testing"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func intPtr(n int64) *int64   { return &n }

func TestChannelApplyOverwritesOnlyPresentFields(t *testing.T) {
	base := Channel{
		ChannelID:   "c1",
		ChannelName: "Pekora",
		LiveTitle:   "morning",
		IsLive:      true,
		ViewerCount: intPtr(10),
	}

	got := base.Apply(ChannelPatch{ChannelID: "c1", IsLive: boolPtr(false)})

	if got.IsLive {
		t.Fatalf("expected is_live to be overwritten")
	}
	if got.ChannelName != "Pekora" || got.LiveTitle != "morning" {
		t.Fatalf("expected untouched display fields, got %+v", got)
	}
	if got.Viewers() != 10 {
		t.Fatalf("expected viewer count to stay 10, got %d", got.Viewers())
	}
}

func TestChannelApplyIsIdempotent(t *testing.T) {
	patch := ChannelPatch{
		ChannelID:   "c1",
		ChannelName: strPtr("Miko"),
		IsLive:      boolPtr(true),
		ViewerCount: intPtr(120),
	}

	once := NewChannel("c1").Apply(patch)
	twice := once.Apply(patch)

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("expected idempotent apply, got %+v then %+v", once, twice)
	}
}

func TestChannelApplyClampsNegativeViewers(t *testing.T) {
	got := NewChannel("c1").Apply(ChannelPatch{ChannelID: "c1", ViewerCount: intPtr(-4)})
	if got.Viewers() != 0 {
		t.Fatalf("expected negative viewer count clamped to 0, got %d", got.Viewers())
	}
}

func TestChannelCloneDetachesViewerCount(t *testing.T) {
	orig := Channel{ChannelID: "c1", ViewerCount: intPtr(5)}
	clone := orig.Clone()
	*clone.ViewerCount = 99

	if orig.Viewers() != 5 {
		t.Fatalf("expected original untouched, got %d", orig.Viewers())
	}
}

func TestChannelNormalizeClampsListedViewers(t *testing.T) {
	got := Channel{ChannelID: "c1", ViewerCount: intPtr(-5)}.Normalize()
	if got.ViewerCount == nil || *got.ViewerCount != 0 {
		t.Fatalf("expected clamped count, got %+v", got.ViewerCount)
	}
	if untouched := NewChannel("c2").Normalize(); untouched.ViewerCount != nil {
		t.Fatal("expected absent viewer count to stay absent")
	}
}
