// Package settings keeps the user's display and accessibility preferences.
package settings

import (
	"context"
	"fmt"
	"sync"

	"github.com/RichardoC/lumi/internal/models"
	"go.uber.org/zap"
)

type Store interface {
	LoadPreferences(ctx context.Context) models.Preferences
	SavePreferences(ctx context.Context, prefs models.Preferences) error
}

type Service struct {
	mu     sync.Mutex
	prefs  models.Preferences
	store  Store
	logger *zap.Logger
}

func New(ctx context.Context, store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{prefs: store.LoadPreferences(ctx), store: store, logger: logger}
}

func (s *Service) Get() models.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

// Update replaces the preferences after validating them.
func (s *Service) Update(ctx context.Context, prefs models.Preferences) error {
	if err := prefs.Validate(); err != nil {
		return fmt.Errorf("invalid preferences: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.prefs = prefs
	if err := s.store.SavePreferences(ctx, prefs); err != nil {
		s.logger.Error("failed to save preferences", zap.Error(err))
	}
	return nil
}

// Persist saves the current preferences.
func (s *Service) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.SavePreferences(ctx, s.prefs)
}
