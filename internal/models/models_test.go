package models_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/RichardoC/lumi/internal/models"
)

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := models.NewID()
		if id == "" {
			t.Fatal("empty id")
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q after %d draws", id, i)
		}
		seen[id] = struct{}{}
	}
}

func TestMoodJSONUsesLabels(t *testing.T) {
	raw, err := json.Marshal(models.MoodEntry{ID: "1", Mood: models.MoodOkay})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc["mood"] != "okay" {
		t.Errorf("expected label, got %v", doc["mood"])
	}
	if _, ok := doc["note"]; ok {
		t.Error("empty note should be omitted")
	}

	var m models.Mood
	if err := json.Unmarshal([]byte(`"fantastic"`), &m); !errors.Is(err, models.ErrInvalidMood) {
		t.Errorf("expected ErrInvalidMood, got %v", err)
	}
	if err := json.Unmarshal([]byte(`3`), &m); !errors.Is(err, models.ErrInvalidMood) {
		t.Errorf("numeric moods are not accepted, got %v", err)
	}
	if _, err := json.Marshal(models.Mood(0)); err == nil {
		t.Error("expected an error marshalling an invalid mood")
	}
}

func TestParsers(t *testing.T) {
	if _, err := models.ParseRole("robot"); !errors.Is(err, models.ErrInvalidRole) {
		t.Errorf("expected ErrInvalidRole, got %v", err)
	}
	if _, err := models.ParseTheme("sepia"); !errors.Is(err, models.ErrInvalidTheme) {
		t.Errorf("expected ErrInvalidTheme, got %v", err)
	}
	for _, m := range models.Moods {
		got, err := models.ParseMood(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMood(%q) = %v, %v", m.String(), got, err)
		}
	}
}

func TestPreferencesValidate(t *testing.T) {
	if err := models.DefaultPreferences().Validate(); err != nil {
		t.Fatalf("defaults should be valid: %v", err)
	}

	bad := models.DefaultPreferences()
	bad.FontSize = "huge"
	if bad.Validate() == nil {
		t.Error("expected an error for an unknown font size")
	}

	bad = models.DefaultPreferences()
	bad.Language = ""
	if bad.Validate() == nil {
		t.Error("expected an error for an empty language")
	}
}
