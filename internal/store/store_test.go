package store

import (
	"reflect"
	"testing"

	"github.com/kapu/chzzk-recorder-panel/internal/domain"
)

func boolPtr(b bool) *bool    { return &b }
func intPtr(n int64) *int64   { return &n }
func strPtr(s string) *string { return &s }

func ids(channels []domain.Channel) []string {
	out := make([]string, 0, len(channels))
	for _, ch := range channels {
		out = append(out, ch.ChannelID)
	}
	return out
}

func TestMergePushIntoEmptyStoreCreatesDefaultedChannel(t *testing.T) {
	s := NewChannelStore()
	s.MergePush(domain.ChannelPatch{ChannelID: "c1", IsLive: boolPtr(true), ViewerCount: intPtr(120)})

	all := s.All()
	if len(all) != 1 {
		t.Fatalf("expected one channel, got %d", len(all))
	}
	got := all[0]
	if got.ChannelID != "c1" || !got.IsLive || got.Viewers() != 120 {
		t.Fatalf("unexpected channel %+v", got)
	}
	if got.ChannelName != "" || got.ChannelImage != "" || got.LiveTitle != "" {
		t.Fatalf("expected defaulted display fields, got %+v", got)
	}
}

func TestMergePushIsIdempotent(t *testing.T) {
	s := NewChannelStore()
	s.ReplaceAll([]domain.Channel{{ChannelID: "c1", ChannelName: "one"}, {ChannelID: "c2"}})

	patch := domain.ChannelPatch{ChannelID: "c3", LiveTitle: strPtr("hi"), IsLive: boolPtr(true)}
	s.MergePush(patch)
	once := s.All()
	s.MergePush(patch)
	twice := s.All()

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("expected idempotent merge, got %+v then %+v", once, twice)
	}
}

func TestMergePushKeepsUntouchedFields(t *testing.T) {
	s := NewChannelStore()
	s.ReplaceAll([]domain.Channel{{ChannelID: "c1", ChannelName: "Pekora", ViewerCount: intPtr(5)}})

	s.MergePush(domain.ChannelPatch{ChannelID: "c1", IsLive: boolPtr(true)})

	got, _ := s.Get("c1")
	if got.ChannelName != "Pekora" || got.Viewers() != 5 || !got.IsLive {
		t.Fatalf("unexpected merge result %+v", got)
	}
}

func TestReplaceAllReturnsExactListInOrder(t *testing.T) {
	s := NewChannelStore()
	s.MergePush(domain.ChannelPatch{ChannelID: "stale", IsLive: boolPtr(true)})

	input := []domain.Channel{
		{ChannelID: "b", ChannelName: "B"},
		{ChannelID: "a", ChannelName: "A", IsLive: true, ViewerCount: intPtr(3)},
		{ChannelID: "c"},
	}
	s.ReplaceAll(input)

	if !reflect.DeepEqual(s.All(), input) {
		t.Fatalf("expected exactly %+v, got %+v", input, s.All())
	}
}

func TestRemoveThenPushRecreatesChannel(t *testing.T) {
	s := NewChannelStore()
	s.ReplaceAll([]domain.Channel{
		{ChannelID: "c1", ChannelName: "one", ViewerCount: intPtr(50)},
		{ChannelID: "c2", ChannelName: "two"},
	})
	s.Remove("c1")
	s.MergePush(domain.ChannelPatch{ChannelID: "c1", IsLive: boolPtr(true)})

	all := s.All()
	if !reflect.DeepEqual(ids(all), []string{"c2", "c1"}) {
		t.Fatalf("expected c2 then re-created c1, got %v", ids(all))
	}
	c1 := all[1]
	if !c1.IsLive || c1.ChannelName != "" || c1.ViewerCount != nil {
		t.Fatalf("expected freshly defaulted c1, got %+v", c1)
	}
}

func TestRemoveUnknownIsNoop(t *testing.T) {
	s := NewChannelStore()
	s.ReplaceAll([]domain.Channel{{ChannelID: "c1"}})

	notified := 0
	s.Subscribe(func(ChangeKind) { notified++ })
	s.Remove("missing")

	if s.Len() != 1 || notified != 0 {
		t.Fatalf("expected no change, len=%d notified=%d", s.Len(), notified)
	}
}

func TestNeverSeenIDsNeverAppear(t *testing.T) {
	s := NewChannelStore()
	s.ReplaceAll([]domain.Channel{{ChannelID: "a"}})
	s.MergePush(domain.ChannelPatch{ChannelID: "b"}, domain.ChannelPatch{ChannelID: ""})
	s.Remove("a")

	for _, ch := range s.All() {
		if ch.ChannelID != "b" {
			t.Fatalf("unexpected channel %q in store", ch.ChannelID)
		}
	}
}

func TestNotificationsAreSynchronousPerMutation(t *testing.T) {
	s := NewChannelStore()
	var kinds []ChangeKind
	var seenLen []int
	s.Subscribe(func(kind ChangeKind) {
		kinds = append(kinds, kind)
		seenLen = append(seenLen, s.Len())
	})

	s.ReplaceAll([]domain.Channel{{ChannelID: "c1"}, {ChannelID: "c2"}})
	s.MergePush(domain.ChannelPatch{ChannelID: "c3"})
	s.Remove("c1")

	want := []ChangeKind{ChangeReplace, ChangeMerge, ChangeRemove}
	if !reflect.DeepEqual(kinds, want) {
		t.Fatalf("expected %v, got %v", want, kinds)
	}
	if !reflect.DeepEqual(seenLen, []int{2, 3, 2}) {
		t.Fatalf("expected listener to observe post-mutation state, got %v", seenLen)
	}
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	s := NewChannelStore()
	calls := 0
	unsubscribe := s.Subscribe(func(ChangeKind) { calls++ })
	s.MergePush(domain.ChannelPatch{ChannelID: "c1"})
	unsubscribe()
	s.MergePush(domain.ChannelPatch{ChannelID: "c2"})

	if calls != 1 {
		t.Fatalf("expected one notification before unsubscribe, got %d", calls)
	}
}

func TestAllReturnsDetachedCopies(t *testing.T) {
	s := NewChannelStore()
	s.MergePush(domain.ChannelPatch{ChannelID: "c1", ViewerCount: intPtr(1)})

	all := s.All()
	*all[0].ViewerCount = 999

	got, _ := s.Get("c1")
	if got.Viewers() != 1 {
		t.Fatalf("expected store to be unaffected by caller mutation, got %d", got.Viewers())
	}
}

func TestCounts(t *testing.T) {
	s := NewChannelStore()
	s.ReplaceAll([]domain.Channel{{ChannelID: "a", IsLive: true}, {ChannelID: "b"}, {ChannelID: "c", IsLive: true}})

	total, live := s.Counts()
	if total != 3 || live != 2 {
		t.Fatalf("expected 3/2, got %d/%d", total, live)
	}
}

func TestReplaceAllClampsNegativeViewersLikePush(t *testing.T) {
	listed := NewChannelStore()
	listed.ReplaceAll([]domain.Channel{{ChannelID: "c1", ViewerCount: intPtr(-5)}})

	pushed := NewChannelStore()
	pushed.MergePush(domain.ChannelPatch{ChannelID: "c1", ViewerCount: intPtr(-5)})

	fromList, _ := listed.Get("c1")
	fromPush, _ := pushed.Get("c1")
	if fromList.Viewers() != 0 {
		t.Fatalf("expected list viewer count clamped to 0, got %d", fromList.Viewers())
	}
	if !reflect.DeepEqual(fromList, fromPush) {
		t.Fatalf("expected both sources to converge, got list=%+v push=%+v", fromList, fromPush)
	}
}
