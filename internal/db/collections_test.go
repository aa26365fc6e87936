package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/RichardoC/lumi/internal/db"
	"github.com/RichardoC/lumi/internal/models"
)

// countingKV records how many writes reach the backend.
type countingKV struct {
	*db.MemoryStore
	sets int
}

func (c *countingKV) Set(ctx context.Context, key string, value []byte) error {
	c.sets++
	return c.MemoryStore.Set(ctx, key, value)
}

func sampleMessages() []models.Message {
	ts := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	return []models.Message{
		{ID: "m1", Role: models.RoleAssistant, Content: "Hi there!", Timestamp: ts},
		{ID: "m2", Role: models.RoleUser, Content: "hello", Timestamp: ts.Add(time.Second)},
		{ID: "m3", Role: models.RoleSystem, Content: "", Timestamp: ts.Add(2 * time.Second)},
	}
}

func TestMessagesRoundTrip(t *testing.T) {
	ctx := context.Background()
	cols := db.NewCollections(db.NewMemoryStore(), nil)

	want := sampleMessages()
	if err := cols.SaveMessages(ctx, want); err != nil {
		t.Fatalf("SaveMessages: %v", err)
	}

	got := cols.LoadMessages(ctx, nil)
	if len(got) != len(want) {
		t.Fatalf("got %d messages, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].Role != want[i].Role || got[i].Content != want[i].Content {
			t.Errorf("message %d: got %+v, want %+v", i, got[i], want[i])
		}
		if !got[i].Timestamp.Equal(want[i].Timestamp) {
			t.Errorf("message %d: timestamp %v, want %v", i, got[i].Timestamp, want[i].Timestamp)
		}
	}
}

func TestMoodLogsRoundTrip(t *testing.T) {
	ctx := context.Background()
	cols := db.NewCollections(db.NewMemoryStore(), nil)

	ts := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	want := []models.MoodEntry{
		{ID: "a", Mood: models.MoodGreat, Timestamp: ts},
		{ID: "b", Mood: models.MoodTerrible, Note: "rough night", Timestamp: ts.Add(time.Hour)},
	}
	if err := cols.SaveMoodLogs(ctx, want); err != nil {
		t.Fatalf("SaveMoodLogs: %v", err)
	}

	got := cols.LoadMoodLogs(ctx)
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].Mood != want[i].Mood || got[i].Note != want[i].Note {
			t.Errorf("entry %d: got %+v, want %+v", i, got[i], want[i])
		}
		if !got[i].Timestamp.Equal(want[i].Timestamp) {
			t.Errorf("entry %d: timestamp %v, want %v", i, got[i].Timestamp, want[i].Timestamp)
		}
	}
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	def := []models.Message{{ID: "greeting", Role: models.RoleAssistant, Content: "hi"}}

	tests := []struct {
		name string
		key  string
		raw  string
	}{
		{"not json", db.KeyMessages, "{{{"},
		{"wrong shape", db.KeyMessages, `{"id":"x"}`},
		{"unknown role", db.KeyMessages, `[{"id":"x","role":"robot","content":"","timestamp":"2024-05-01T09:30:00Z"}]`},
		{"missing id", db.KeyMessages, `[{"role":"user","content":"","timestamp":"2024-05-01T09:30:00Z"}]`},
		{"unknown mood", db.KeyMoodLogs, `[{"id":"x","mood":"ecstatic","timestamp":"2024-05-01T09:30:00Z"}]`},
		{"numeric mood", db.KeyMoodLogs, `[{"id":"x","mood":5,"timestamp":"2024-05-01T09:30:00Z"}]`},
		{"null", db.KeyMoodLogs, `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := db.NewMemoryStore()
			if err := kv.Set(ctx, tt.key, []byte(tt.raw)); err != nil {
				t.Fatalf("Set: %v", err)
			}
			cols := db.NewCollections(kv, nil)

			switch tt.key {
			case db.KeyMessages:
				got := cols.LoadMessages(ctx, def)
				if len(got) != 1 || got[0].ID != "greeting" {
					t.Fatalf("expected default messages, got %+v", got)
				}
			case db.KeyMoodLogs:
				got := cols.LoadMoodLogs(ctx)
				if got == nil || len(got) != 0 {
					t.Fatalf("expected empty mood log, got %+v", got)
				}
			}
		})
	}
}

func TestLoadMissingUsesDefault(t *testing.T) {
	ctx := context.Background()
	cols := db.NewCollections(db.NewMemoryStore(), nil)

	if got := cols.LoadMessages(ctx, sampleMessages()); len(got) != 3 {
		t.Fatalf("expected default, got %d messages", len(got))
	}
	if got := cols.LoadTheme(ctx, models.ThemeSystem); got != models.ThemeSystem {
		t.Fatalf("expected system theme, got %q", got)
	}
	if got := cols.LoadPreferences(ctx); got != models.DefaultPreferences() {
		t.Fatalf("expected default preferences, got %+v", got)
	}
}

func TestLoadThemeAcceptsBareValue(t *testing.T) {
	ctx := context.Background()
	kv := db.NewMemoryStore()
	cols := db.NewCollections(kv, nil)

	for raw, want := range map[string]models.Theme{
		`"dark"`:  models.ThemeDark,
		`light`:   models.ThemeLight,
		"system ": models.ThemeSystem,
		`purple`:  models.ThemeSystem,
		`"":`:     models.ThemeSystem,
	} {
		if err := kv.Set(ctx, db.KeyTheme, []byte(raw)); err != nil {
			t.Fatalf("Set: %v", err)
		}
		if got := cols.LoadTheme(ctx, models.ThemeSystem); got != want {
			t.Errorf("LoadTheme(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestSaveSkipsIdenticalPayload(t *testing.T) {
	ctx := context.Background()
	kv := &countingKV{MemoryStore: db.NewMemoryStore()}
	cols := db.NewCollections(kv, nil)

	msgs := sampleMessages()
	for i := 0; i < 3; i++ {
		if err := cols.SaveMessages(ctx, msgs); err != nil {
			t.Fatalf("SaveMessages: %v", err)
		}
	}
	if kv.sets != 1 {
		t.Fatalf("expected 1 write, got %d", kv.sets)
	}

	msgs = append(msgs, models.Message{ID: "m4", Role: models.RoleUser, Content: "more"})
	if err := cols.SaveMessages(ctx, msgs); err != nil {
		t.Fatalf("SaveMessages: %v", err)
	}
	if kv.sets != 2 {
		t.Fatalf("expected 2 writes, got %d", kv.sets)
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	ctx := context.Background()
	cols := db.NewCollections(db.NewMemoryStore(), nil)

	want := models.Preferences{FontSize: models.FontLarge, Language: "spanish", Notifications: false, TextToSpeech: true}
	if err := cols.SavePreferences(ctx, want); err != nil {
		t.Fatalf("SavePreferences: %v", err)
	}
	if got := cols.LoadPreferences(ctx); got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}
