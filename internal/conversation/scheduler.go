package conversation

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Task is a scheduled callback that can be cancelled before it runs.
type Task interface {
	// Stop prevents the callback from running. It reports false when the
	// callback already started or was stopped.
	Stop() bool
}

// Scheduler runs callbacks after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Task
}

// TimerScheduler schedules on the runtime timer.
type TimerScheduler struct{}

func (TimerScheduler) AfterFunc(d time.Duration, f func()) Task {
	return time.AfterFunc(d, f)
}

// UniformDelay returns a delay source drawing from [lo, hi).
func UniformDelay(lo, hi time.Duration, rng *rand.Rand) func() time.Duration {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if hi <= lo {
		return func() time.Duration { return lo }
	}
	var mu sync.Mutex
	return func() time.Duration {
		mu.Lock()
		defer mu.Unlock()
		return lo + time.Duration(rng.Int64N(int64(hi-lo)))
	}
}
