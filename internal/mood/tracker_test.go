package mood_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/RichardoC/lumi/internal/db"
	"github.com/RichardoC/lumi/internal/models"
	"github.com/RichardoC/lumi/internal/mood"
)

func newTracker(t *testing.T, kv db.KV) *mood.Tracker {
	t.Helper()
	fixed := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	n := 0
	return mood.NewTracker(context.Background(), db.NewCollections(kv, nil),
		mood.WithClock(func() time.Time { return fixed }),
		mood.WithIDs(func() string { n++; return fmt.Sprintf("mood-%d", n) }),
	)
}

func TestQuickSequenceFluctuates(t *testing.T) {
	ctx := context.Background()
	tr := newTracker(t, db.NewMemoryStore())

	// Same timestamp for all three: insertion order decides recency.
	for _, m := range []models.Mood{models.MoodGreat, models.MoodTerrible, models.MoodGreat} {
		if _, err := tr.Add(ctx, m, ""); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	if got := tr.Trend(); got != mood.TrendFluctuating {
		t.Fatalf("Trend() = %q, want %q", got, mood.TrendFluctuating)
	}
}

func TestTrendUsesChronologicalOrder(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	tr := mood.NewTracker(ctx, db.NewCollections(db.NewMemoryStore(), nil),
		mood.WithClock(func() time.Time { clock = clock.Add(time.Hour); return clock }),
	)

	for _, m := range []models.Mood{models.MoodBad, models.MoodOkay, models.MoodGreat} {
		if _, err := tr.Add(ctx, m, ""); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if got := tr.Trend(); got != mood.TrendImproving {
		t.Fatalf("Trend() = %q, want %q", got, mood.TrendImproving)
	}

	hist := tr.History()
	if hist[0].Mood != models.MoodGreat || hist[2].Mood != models.MoodBad {
		t.Fatalf("History() not newest first: %+v", hist)
	}
}

func TestAddRejectsOutOfScaleMood(t *testing.T) {
	tr := newTracker(t, db.NewMemoryStore())

	for _, m := range []models.Mood{0, 6, -1} {
		if _, err := tr.Add(context.Background(), m, ""); !errors.Is(err, models.ErrInvalidMood) {
			t.Errorf("Add(%d): expected ErrInvalidMood, got %v", m, err)
		}
	}
	if n := len(tr.Logs()); n != 0 {
		t.Fatalf("expected empty log, got %d entries", n)
	}
}

func TestLogPersistsAndClears(t *testing.T) {
	ctx := context.Background()
	kv := db.NewMemoryStore()

	tr := newTracker(t, kv)
	if _, err := tr.Add(ctx, models.MoodOkay, "  long day  "); err != nil {
		t.Fatalf("Add: %v", err)
	}

	reloaded := newTracker(t, kv)
	logs := reloaded.Logs()
	if len(logs) != 1 || logs[0].Mood != models.MoodOkay || logs[0].Note != "long day" {
		t.Fatalf("unexpected reloaded log: %+v", logs)
	}

	reloaded.Clear(ctx)
	if n := len(newTracker(t, kv).Logs()); n != 0 {
		t.Fatalf("expected cleared log after reload, got %d entries", n)
	}
}

func TestQuickCheckMessages(t *testing.T) {
	for _, m := range models.Moods {
		if mood.QuickCheckMessage(m) == "" {
			t.Errorf("no quick check message for %s", m)
		}
	}
}

// downKV rejects writes while down is set.
type downKV struct {
	*db.MemoryStore
	down bool
}

func (d *downKV) Set(ctx context.Context, key string, value []byte) error {
	if d.down {
		return errors.New("store unavailable")
	}
	return d.MemoryStore.Set(ctx, key, value)
}

func TestPersistWritesEntriesMissedByAFailedSave(t *testing.T) {
	ctx := context.Background()
	kv := &downKV{MemoryStore: db.NewMemoryStore(), down: true}
	tr := newTracker(t, kv)

	if _, err := tr.Add(ctx, models.MoodGood, ""); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := tr.Persist(ctx); err == nil {
		t.Fatal("expected Persist to report the store failure")
	}

	kv.down = false
	if err := tr.Persist(ctx); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	stored := db.NewCollections(kv, nil).LoadMoodLogs(ctx)
	if len(stored) != 1 || stored[0].Mood != models.MoodGood {
		t.Fatalf("stored log = %+v, want the one entry", stored)
	}
}
