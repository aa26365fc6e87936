// Package app assembles one companion session: the chat engine, mood log,
// theme and preferences, all backed by a single store.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/RichardoC/lumi/internal/config"
	"github.com/RichardoC/lumi/internal/conversation"
	"github.com/RichardoC/lumi/internal/db"
	"github.com/RichardoC/lumi/internal/llm"
	"github.com/RichardoC/lumi/internal/models"
	"github.com/RichardoC/lumi/internal/mood"
	"github.com/RichardoC/lumi/internal/resources"
	"github.com/RichardoC/lumi/internal/settings"
	"github.com/RichardoC/lumi/internal/theme"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ErrNoSession is the panic value when the session surface is used on a nil
// or closed App.
var ErrNoSession = errors.New("app: no active session")

type App struct {
	closed *atomic.Bool
	kv     db.KV

	chat      *conversation.Engine
	moods     *mood.Tracker
	theme     *theme.Service
	signal    *theme.StaticSignal
	settings  *settings.Service
	resources *resources.Catalog
	logger    *zap.Logger
}

type options struct {
	kv       db.KV
	chatOpts []conversation.Option
	moodOpts []mood.Option
}

type Option func(*options)

// WithStore uses kv instead of opening the store named by the config.
// The App takes ownership and closes it.
func WithStore(kv db.KV) Option {
	return func(o *options) { o.kv = kv }
}

func WithChatOptions(opts ...conversation.Option) Option {
	return func(o *options) { o.chatOpts = append(o.chatOpts, opts...) }
}

func WithMoodOptions(opts ...mood.Option) Option {
	return func(o *options) { o.moodOpts = append(o.moodOpts, opts...) }
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	catalog := llm.DefaultCatalog()
	if cfg.CatalogPath != "" {
		c, err := llm.LoadCatalog(cfg.CatalogPath)
		if err != nil {
			return nil, err
		}
		catalog = c
	}

	kv := o.kv
	if kv == nil {
		var err error
		if kv, err = OpenStore(ctx, cfg); err != nil {
			return nil, err
		}
	}
	collections := db.NewCollections(kv, logger.Named("db"))

	responder := llm.NewScripted(llm.NewClassifier(catalog, nil), logger.Named("llm"))
	chatOpts := append([]conversation.Option{
		conversation.WithDelay(conversation.UniformDelay(cfg.ReplyDelayMin, cfg.ReplyDelayMax, nil)),
		conversation.WithReplyTimeout(cfg.ReplyTimeout),
		conversation.WithLogger(logger.Named("chat")),
	}, o.chatOpts...)
	moodOpts := append([]mood.Option{mood.WithLogger(logger.Named("mood"))}, o.moodOpts...)

	signal := theme.NewStaticSignal(cfg.PrefersDark)

	a := &App{
		closed:    atomic.NewBool(false),
		kv:        kv,
		chat:      conversation.New(ctx, collections, responder, chatOpts...),
		moods:     mood.NewTracker(ctx, collections, moodOpts...),
		theme:     theme.New(ctx, collections, signal, logger.Named("theme")),
		signal:    signal,
		settings:  settings.New(ctx, collections, logger.Named("settings")),
		resources: resources.Default(),
		logger:    logger,
	}

	logger.Info("session started",
		zap.String("store", string(cfg.Store)),
		zap.Int("messages", len(a.chat.Messages())),
		zap.Int("mood_logs", len(a.moods.Logs())))
	return a, nil
}

// OpenStore opens the KV backend selected by cfg.Store.
func OpenStore(ctx context.Context, cfg *config.Config) (db.KV, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		database, err := db.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store %s: %w", cfg.DBPath, err)
		}
		return database, nil
	case config.StoreRedis:
		return db.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPrefix)
	case config.StoreMemory:
		return db.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

func (a *App) active() {
	if a == nil || a.closed.Load() {
		panic(ErrNoSession)
	}
}

func (a *App) Chat() *conversation.Engine {
	a.active()
	return a.chat
}

func (a *App) Mood() *mood.Tracker {
	a.active()
	return a.moods
}

func (a *App) Theme() *theme.Service {
	a.active()
	return a.theme
}

// Signal is the OS color-scheme signal the theme follows while set to system.
func (a *App) Signal() *theme.StaticSignal {
	a.active()
	return a.signal
}

func (a *App) Settings() *settings.Service {
	a.active()
	return a.settings
}

func (a *App) Resources() *resources.Catalog {
	a.active()
	return a.resources
}

// QuickMoodCheck sends the first-person line for m to the chat and records
// m in the mood log. While a reply is pending it fails with
// conversation.ErrComposing and records nothing.
func (a *App) QuickMoodCheck(ctx context.Context, m models.Mood, note string) (models.MoodEntry, models.Message, error) {
	a.active()

	if !m.Valid() {
		return models.MoodEntry{}, models.Message{}, fmt.Errorf("%w: %d", models.ErrInvalidMood, int(m))
	}

	msg, err := a.chat.AddUserMessage(ctx, mood.QuickCheckMessage(m))
	if err != nil {
		return models.MoodEntry{}, models.Message{}, err
	}

	entry, err := a.moods.Add(ctx, m, note)
	if err != nil {
		return models.MoodEntry{}, msg, err
	}
	return entry, msg, nil
}

// Close ends the session: pending replies are cancelled and the store is
// closed. Further use of the accessors panics.
func (a *App) Close() error {
	if a == nil || !a.closed.CompareAndSwap(false, true) {
		return nil
	}

	a.chat.Close()
	a.theme.Close()

	err := a.flush(context.Background())
	if cerr := a.kv.Close(); cerr != nil {
		err = multierr.Append(err, fmt.Errorf("closing store: %w", cerr))
	}
	a.logger.Info("session closed", zap.Error(err))
	return err
}

// Flush writes every collection back to the store. Collections whose
// content is unchanged since the last successful save are skipped, so this
// only retries saves that failed earlier.
func (a *App) Flush(ctx context.Context) error {
	a.active()
	return a.flush(ctx)
}

func (a *App) flush(ctx context.Context) error {
	return multierr.Combine(
		a.chat.Persist(ctx),
		a.moods.Persist(ctx),
		a.theme.Persist(ctx),
		a.settings.Persist(ctx),
	)
}
