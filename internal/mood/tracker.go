// Package mood keeps the append-only mood log and derives its trend.
package mood

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/RichardoC/lumi/internal/models"
	"go.uber.org/zap"
)

// Store persists the whole mood log.
type Store interface {
	LoadMoodLogs(ctx context.Context) []models.MoodEntry
	SaveMoodLogs(ctx context.Context, entries []models.MoodEntry) error
}

var quickCheckMessages = map[models.Mood]string{
	models.MoodGreat:    "I'm feeling really great today! I have a lot of positive energy and things are going well.",
	models.MoodGood:     "I'm feeling pretty good today. Things are going smoothly and I'm in a positive mood.",
	models.MoodOkay:     "I'm feeling okay today - not particularly good or bad, just somewhere in the middle.",
	models.MoodBad:      "I'm not feeling very well today. I've been experiencing some negative emotions that are bringing me down.",
	models.MoodTerrible: "I'm feeling really terrible right now. It's been a very difficult time and I'm struggling emotionally.",
}

// QuickCheckMessage is the first-person chat line sent on the user's behalf
// when they pick a mood from the quick check.
func QuickCheckMessage(m models.Mood) string {
	return quickCheckMessages[m]
}

type Tracker struct {
	mu      sync.Mutex
	entries []models.MoodEntry

	store  Store
	newID  func() string
	now    func() time.Time
	logger *zap.Logger
}

type Option func(*Tracker)

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func WithIDs(newID func() string) Option {
	return func(t *Tracker) { t.newID = newID }
}

func WithLogger(logger *zap.Logger) Option {
	return func(t *Tracker) { t.logger = logger }
}

// NewTracker loads the persisted log from store.
func NewTracker(ctx context.Context, store Store, opts ...Option) *Tracker {
	t := &Tracker{
		store:  store,
		newID:  models.NewID,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.entries = store.LoadMoodLogs(ctx)
	return t
}

// Add appends a mood entry and persists the log.
func (t *Tracker) Add(ctx context.Context, m models.Mood, note string) (models.MoodEntry, error) {
	if !m.Valid() {
		return models.MoodEntry{}, fmt.Errorf("%w: %d", models.ErrInvalidMood, int(m))
	}

	entry := models.MoodEntry{
		ID:        t.newID(),
		Mood:      m,
		Note:      strings.TrimSpace(note),
		Timestamp: t.now().UTC(),
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = append(t.entries, entry)
	t.persistLocked(ctx)

	t.logger.Info("mood logged", zap.String("mood", m.String()), zap.Int("count", len(t.entries)))
	return entry, nil
}

// Clear empties the log.
func (t *Tracker) Clear(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = []models.MoodEntry{}
	t.persistLocked(ctx)
	t.logger.Info("mood log cleared")
}

// Logs returns a snapshot in insertion order.
func (t *Tracker) Logs() []models.MoodEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]models.MoodEntry(nil), t.entries...)
}

// History returns a snapshot ordered newest first.
func (t *Tracker) History() []models.MoodEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	return newestFirst(t.entries)
}

func (t *Tracker) Trend() Trend {
	return Analyze(t.History())
}

// Persist saves the current log.
func (t *Tracker) Persist(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.store.SaveMoodLogs(ctx, t.entries)
}

func (t *Tracker) persistLocked(ctx context.Context) {
	if err := t.store.SaveMoodLogs(ctx, t.entries); err != nil {
		t.logger.Error("failed to save mood log", zap.Error(err))
	}
}
