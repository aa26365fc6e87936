// Package theme resolves the light/dark/system preference.
package theme

import (
	"context"
	"sync"

	"github.com/RichardoC/lumi/internal/models"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Store persists the theme preference.
type Store interface {
	LoadTheme(ctx context.Context, def models.Theme) models.Theme
	SaveTheme(ctx context.Context, theme models.Theme) error
}

// Service holds the theme preference and whether it currently resolves to
// dark. While the preference is system, changes of the OS signal are tracked
// live.
type Service struct {
	mu    sync.Mutex
	theme models.Theme
	dark  *atomic.Bool

	store       Store
	signal      Signal
	unsubscribe func()
	logger      *zap.Logger
}

func New(ctx context.Context, store Store, signal Signal, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		theme:  store.LoadTheme(ctx, models.ThemeSystem),
		dark:   atomic.NewBool(false),
		store:  store,
		signal: signal,
		logger: logger,
	}
	s.resolveLocked()
	s.unsubscribe = signal.Subscribe(s.onSignal)
	return s
}

func (s *Service) Theme() models.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

func (s *Service) IsDark() bool {
	return s.dark.Load()
}

func (s *Service) SetTheme(ctx context.Context, theme models.Theme) error {
	if _, err := models.ParseTheme(string(theme)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.theme = theme
	dark := s.resolveLocked()
	if err := s.store.SaveTheme(ctx, theme); err != nil {
		s.logger.Error("failed to save theme", zap.Error(err))
	}
	s.logger.Info("theme changed", zap.String("theme", string(theme)), zap.Bool("dark", dark))
	return nil
}

// Persist saves the current preference.
func (s *Service) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.SaveTheme(ctx, s.theme)
}

// Close stops following the OS signal.
func (s *Service) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

func (s *Service) onSignal(dark bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.theme != models.ThemeSystem {
		return
	}
	s.resolveLocked()
	s.logger.Debug("system color scheme changed", zap.Bool("dark", dark))
}

// resolveLocked updates the dark flag from the theme; s.mu must be held once
// the service is shared.
func (s *Service) resolveLocked() bool {
	var dark bool
	switch s.theme {
	case models.ThemeDark:
		dark = true
	case models.ThemeLight:
		dark = false
	default:
		dark = s.signal.PrefersDark()
	}
	s.dark.Store(dark)
	return dark
}
