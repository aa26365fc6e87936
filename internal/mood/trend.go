package mood

import (
	"sort"

	"github.com/RichardoC/lumi/internal/models"
)

type Trend string

const (
	TrendImproving    Trend = "improving"
	TrendDeclining    Trend = "declining"
	TrendStable       Trend = "stable"
	TrendFluctuating  Trend = "fluctuating"
	TrendInsufficient Trend = "insufficient"
)

const (
	// MinEntries is the fewest entries a trend is reported for.
	MinEntries = 3
	// Window is how many of the most recent entries a trend looks at.
	Window = 7
)

var trendMessages = map[Trend]string{
	TrendImproving:    "Your mood seems to be improving. Keep up the good work!",
	TrendDeclining:    "Your mood appears to be declining. Would you like to talk about what's bothering you?",
	TrendStable:       "Your mood has been stable lately.",
	TrendFluctuating:  "Your mood has been fluctuating. This is normal - emotions naturally vary.",
	TrendInsufficient: "Log your mood regularly to see trends and patterns.",
}

// Message is the sentence the mood panel shows for t.
func (t Trend) Message() string {
	return trendMessages[t]
}

// Analyze classifies entries, ordered newest first, into a trend. Only the
// Window most recent entries count, compared oldest to newest. An all-equal
// window is stable rather than improving or declining.
func Analyze(entries []models.MoodEntry) Trend {
	if len(entries) < MinEntries {
		return TrendInsufficient
	}

	window := entries
	if len(window) > Window {
		window = window[:Window]
	}

	nonDecreasing, nonIncreasing := true, true
	for i := len(window) - 1; i > 0; i-- {
		older, newer := window[i].Mood, window[i-1].Mood
		if newer < older {
			nonDecreasing = false
		}
		if newer > older {
			nonIncreasing = false
		}
	}

	switch {
	case nonDecreasing && nonIncreasing:
		return TrendStable
	case nonDecreasing:
		return TrendImproving
	case nonIncreasing:
		return TrendDeclining
	default:
		return TrendFluctuating
	}
}

// newestFirst returns a copy of entries, given in insertion order, sorted by
// timestamp descending. Entries sharing a timestamp keep reverse insertion
// order, so the later append counts as more recent.
func newestFirst(entries []models.MoodEntry) []models.MoodEntry {
	out := make([]models.MoodEntry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}
