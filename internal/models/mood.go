package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrInvalidMood = errors.New("invalid mood")

// Mood is a point on the five-step scale, terrible=1 through great=5.
type Mood int

const (
	MoodTerrible Mood = iota + 1
	MoodBad
	MoodOkay
	MoodGood
	MoodGreat
)

var moodLabels = map[Mood]string{
	MoodTerrible: "terrible",
	MoodBad:      "bad",
	MoodOkay:     "okay",
	MoodGood:     "good",
	MoodGreat:    "great",
}

// Moods lists the scale from best to worst, the order the mood panel shows it.
var Moods = []Mood{MoodGreat, MoodGood, MoodOkay, MoodBad, MoodTerrible}

func ParseMood(s string) (Mood, error) {
	for m, label := range moodLabels {
		if label == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMood, s)
}

func (m Mood) Valid() bool {
	_, ok := moodLabels[m]
	return ok
}

func (m Mood) String() string {
	if label, ok := moodLabels[m]; ok {
		return label
	}
	return fmt.Sprintf("Mood(%d)", int(m))
}

// Moods are stored by label so persisted logs stay readable.
func (m Mood) MarshalJSON() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMood, int(m))
	}
	return json.Marshal(moodLabels[m])
}

func (m *Mood) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidMood, data)
	}
	parsed, err := ParseMood(label)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

type MoodEntry struct {
	ID        string    `json:"id"`
	Mood      Mood      `json:"mood"`
	Note      string    `json:"note,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
