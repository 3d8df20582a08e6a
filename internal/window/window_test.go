package window

import (
	"testing"
	"time"

	"github.com/SakshiKukreja04/BabyCare-sub002/internal/event"
)

var now = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func feedAt(id string, ago time.Duration) event.Event {
	ev := event.New(event.Feeding, map[string]any{"timestamp": now.Add(-ago).Format(time.RFC3339)})
	ev.ID = id
	return ev
}

// #region select-tests

func TestSelect_Empty(t *testing.T) {
	sel := Select(nil, now, DefaultPolicy())
	if sel.Found() || sel.InRecentWindow {
		t.Fatalf("expected empty selection, got %+v", sel)
	}
	if _, ok := sel.Since(now); ok {
		t.Error("expected Since to report no time for empty selection")
	}
}

func TestSelect_RecentTierPicksNewest(t *testing.T) {
	events := []event.Event{
		feedAt("old", 90*time.Minute),
		feedAt("newest", 20*time.Minute),
		feedAt("stale", 4*time.Hour),
	}
	sel := Select(events, now, DefaultPolicy())
	if !sel.Found() || sel.Event.ID != "newest" {
		t.Fatalf("expected newest event, got %+v", sel.Event)
	}
	if !sel.InRecentWindow {
		t.Error("expected recent tier")
	}
	if d, _ := sel.Since(now); d != 20*time.Minute {
		t.Errorf("expected 20m since, got %s", d)
	}
}

func TestSelect_ExtendedTier(t *testing.T) {
	events := []event.Event{
		feedAt("five", 5*time.Hour),
		feedAt("three", 3*time.Hour),
		feedAt("ten", 10*time.Hour),
	}
	sel := Select(events, now, DefaultPolicy())
	if sel.Event.ID != "three" {
		t.Fatalf("expected newest extended event, got %s", sel.Event.ID)
	}
	if sel.InRecentWindow {
		t.Error("extended tier is not recent")
	}
}

func TestSelect_AnyTierFallback(t *testing.T) {
	events := []event.Event{
		feedAt("day", 24*time.Hour),
		feedAt("ten", 10*time.Hour),
	}
	sel := Select(events, now, DefaultPolicy())
	if sel.Event.ID != "ten" || sel.InRecentWindow {
		t.Fatalf("expected newest stale fallback, got %s recent=%v", sel.Event.ID, sel.InRecentWindow)
	}
}

func TestSelect_TierBoundaries(t *testing.T) {
	sel := Select([]event.Event{feedAt("edge", 2*time.Hour)}, now, DefaultPolicy())
	if !sel.InRecentWindow {
		t.Error("exactly 2h old should still be recent")
	}
	sel = Select([]event.Event{feedAt("edge", 2*time.Hour+time.Second)}, now, DefaultPolicy())
	if sel.InRecentWindow {
		t.Error("just over 2h should be extended")
	}
}

func TestSelect_UnresolvableSortsLast(t *testing.T) {
	bad := event.New(event.Feeding, map[string]any{"timestamp": "never"})
	bad.ID = "bad"
	events := []event.Event{bad, feedAt("day", 30*time.Hour)}
	sel := Select(events, now, DefaultPolicy())
	if sel.Event.ID != "day" {
		t.Fatalf("expected timed event to win over unresolvable, got %s", sel.Event.ID)
	}

	sel = Select([]event.Event{bad}, now, DefaultPolicy())
	if !sel.Found() || sel.HasTime || sel.InRecentWindow {
		t.Fatalf("expected untimed fallback selection, got %+v", sel)
	}
}

func TestSelect_FutureEventCountsAsRecent(t *testing.T) {
	sel := Select([]event.Event{feedAt("future", -10*time.Minute)}, now, DefaultPolicy())
	if !sel.InRecentWindow {
		t.Error("future-dated event should be treated as fresh")
	}
}

func TestSelect_DoesNotReorderInput(t *testing.T) {
	events := []event.Event{feedAt("a", 3*time.Hour), feedAt("b", time.Hour)}
	Select(events, now, DefaultPolicy())
	if events[0].ID != "a" || events[1].ID != "b" {
		t.Error("Select must not reorder caller slice")
	}
}

// #endregion select-tests

// #region sleep-tests

func TestWake_StartPlusDuration(t *testing.T) {
	start := now.Add(-3 * time.Hour)
	ev := event.New(event.Sleep, map[string]any{
		"start_time": start.Format(time.RFC3339),
		"duration":   90,
	})
	wake, ok := Wake(ev)
	if !ok {
		t.Fatal("expected wake time")
	}
	if want := start.Add(90 * time.Minute); !wake.Equal(want) {
		t.Errorf("got %s, want %s", wake, want)
	}
}

func TestWake_ExplicitField(t *testing.T) {
	woke := now.Add(-30 * time.Minute)
	ev := event.New(event.Sleep, map[string]any{
		"start_time": now.Add(-2 * time.Hour).Format(time.RFC3339),
		"duration":   10,
		"woke_at":    woke.Format(time.RFC3339),
	})
	got, ok := Wake(ev)
	if !ok || !got.Equal(woke) {
		t.Errorf("expected explicit woke_at, got %s ok=%v", got, ok)
	}
}

func TestWake_NoDuration(t *testing.T) {
	ev := event.New(event.Sleep, map[string]any{"start_time": now.Format(time.RFC3339)})
	if _, ok := Wake(ev); ok {
		t.Error("expected no wake time without duration")
	}
}

func TestSleepStart_FallsBackToTimestamp(t *testing.T) {
	ev := event.New(event.Sleep, map[string]any{"createdAt": now.Format(time.RFC3339)})
	got, ok := SleepStart(ev)
	if !ok || !got.Equal(now) {
		t.Errorf("expected createdAt fallback, got %s ok=%v", got, ok)
	}
}

// #endregion sleep-tests
