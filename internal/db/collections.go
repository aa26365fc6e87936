package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/RichardoC/lumi/internal/models"
	"github.com/cespare/xxhash/v2"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"
)

const messagesSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "role", "content", "timestamp"],
    "properties": {
      "id": {"type": "string", "minLength": 1},
      "role": {"enum": ["user", "assistant", "system"]},
      "content": {"type": "string"},
      "timestamp": {"type": "string"}
    }
  }
}`

const moodLogsSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "mood", "timestamp"],
    "properties": {
      "id": {"type": "string", "minLength": 1},
      "mood": {"enum": ["terrible", "bad", "okay", "good", "great"]},
      "note": {"type": "string"},
      "timestamp": {"type": "string"}
    }
  }
}`

const themeSchema = `{"enum": ["light", "dark", "system"]}`

const preferencesSchema = `{
  "type": "object",
  "required": ["font_size", "language"],
  "properties": {
    "font_size": {"enum": ["small", "medium", "large"]},
    "language": {"type": "string", "minLength": 1},
    "notifications": {"type": "boolean"},
    "text_to_speech": {"type": "boolean"}
  }
}`

var (
	messagesValidator    = jsonschema.MustCompileString("chat-messages.json", messagesSchema)
	moodLogsValidator    = jsonschema.MustCompileString("mood-logs.json", moodLogsSchema)
	themeValidator       = jsonschema.MustCompileString("theme.json", themeSchema)
	preferencesValidator = jsonschema.MustCompileString("preferences.json", preferencesSchema)
)

// Collections reads and writes the named collections as whole JSON documents.
//
// Loads never fail: absent, unreadable or malformed values are logged and the
// caller's default is returned instead. Saves overwrite the full collection;
// a save whose payload is byte-identical to the last one seen for that key is
// skipped.
type Collections struct {
	kv     KV
	logger *zap.Logger

	mu      sync.Mutex
	digests map[string]uint64
}

func NewCollections(kv KV, logger *zap.Logger) *Collections {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collections{
		kv:      kv,
		logger:  logger,
		digests: make(map[string]uint64),
	}
}

func (c *Collections) LoadMessages(ctx context.Context, def []models.Message) []models.Message {
	var msgs []models.Message
	if !c.load(ctx, KeyMessages, messagesValidator, &msgs) {
		return def
	}
	return msgs
}

func (c *Collections) SaveMessages(ctx context.Context, msgs []models.Message) error {
	if msgs == nil {
		msgs = []models.Message{}
	}
	return c.save(ctx, KeyMessages, msgs)
}

func (c *Collections) LoadMoodLogs(ctx context.Context) []models.MoodEntry {
	var entries []models.MoodEntry
	if !c.load(ctx, KeyMoodLogs, moodLogsValidator, &entries) {
		return []models.MoodEntry{}
	}
	return entries
}

func (c *Collections) SaveMoodLogs(ctx context.Context, entries []models.MoodEntry) error {
	if entries == nil {
		entries = []models.MoodEntry{}
	}
	return c.save(ctx, KeyMoodLogs, entries)
}

// LoadTheme also accepts a bare, unquoted value such as dark.
func (c *Collections) LoadTheme(ctx context.Context, def models.Theme) models.Theme {
	raw, ok := c.read(ctx, KeyTheme)
	if !ok {
		return def
	}

	var theme models.Theme
	if err := decode(raw, themeValidator, &theme); err == nil {
		c.remember(KeyTheme, raw)
		return theme
	}
	if t, err := models.ParseTheme(strings.TrimSpace(string(raw))); err == nil {
		return t
	}

	c.logger.Warn("malformed stored value, using default",
		zap.String("key", KeyTheme),
		zap.String("default", string(def)))
	return def
}

func (c *Collections) SaveTheme(ctx context.Context, theme models.Theme) error {
	return c.save(ctx, KeyTheme, theme)
}

func (c *Collections) LoadPreferences(ctx context.Context) models.Preferences {
	var prefs models.Preferences
	if !c.load(ctx, KeyPreferences, preferencesValidator, &prefs) {
		return models.DefaultPreferences()
	}
	return prefs
}

func (c *Collections) SavePreferences(ctx context.Context, prefs models.Preferences) error {
	return c.save(ctx, KeyPreferences, prefs)
}

func (c *Collections) read(ctx context.Context, key string) ([]byte, bool) {
	raw, err := c.kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("failed to read stored value, using default",
			zap.String("key", key),
			zap.Error(err))
		return nil, false
	}
	return raw, true
}

func (c *Collections) load(ctx context.Context, key string, schema *jsonschema.Schema, dst any) bool {
	raw, ok := c.read(ctx, key)
	if !ok {
		return false
	}
	if err := decode(raw, schema, dst); err != nil {
		c.logger.Warn("malformed stored value, using default",
			zap.String("key", key),
			zap.Error(err))
		return false
	}
	c.remember(key, raw)
	return true
}

func decode(raw []byte, schema *jsonschema.Schema, dst any) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

func (c *Collections) save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}

	sum := xxhash.Sum64(raw)
	c.mu.Lock()
	prev, seen := c.digests[key]
	c.mu.Unlock()
	if seen && prev == sum {
		return nil
	}

	if err := c.kv.Set(ctx, key, raw); err != nil {
		return err
	}
	c.remember(key, raw)
	return nil
}

func (c *Collections) remember(key string, raw []byte) {
	c.mu.Lock()
	c.digests[key] = xxhash.Sum64(raw)
	c.mu.Unlock()
}
