// Package conversation owns the chat log and sequences the assistant's turns.
//
// A user message is appended immediately and moves the engine into the
// composing state; after a simulated typing delay the responder is asked for
// a reply, which is appended as an assistant message, and composing ends.
// Only one reply is ever pending. Clear cancels it, so a reply scheduled
// before a clear never lands in the fresh conversation.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/RichardoC/lumi/internal/models"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Greeting opens every new or cleared conversation.
const Greeting = "Hi there! I'm Lumi, your mental health companion. How are you feeling today?"

var (
	// ErrComposing is returned by AddUserMessage while a reply is pending.
	ErrComposing = errors.New("assistant is still composing a reply")
	// ErrEmptyMessage is returned by AddUserMessage for blank content.
	ErrEmptyMessage = errors.New("message content is empty")
)

// Responder produces the assistant's reply to the latest user utterance.
type Responder interface {
	Reply(ctx context.Context, utterance string, history []models.Message) (string, error)
}

// Store persists the whole message log.
type Store interface {
	LoadMessages(ctx context.Context, def []models.Message) []models.Message
	SaveMessages(ctx context.Context, msgs []models.Message) error
}

type Engine struct {
	mu       sync.Mutex
	messages []models.Message
	pending  *pendingReply
	typing   *atomic.Bool

	responder    Responder
	store        Store
	scheduler    Scheduler
	delay        func() time.Duration
	newID        func() string
	now          func() time.Time
	replyTimeout time.Duration
	logger       *zap.Logger
}

type pendingReply struct {
	task   Task
	cancel context.CancelFunc
}

func (p *pendingReply) stop() {
	p.task.Stop()
	p.cancel()
}

type Option func(*Engine)

func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.scheduler = s }
}

// WithDelay sets the source of simulated typing delays.
func WithDelay(delay func() time.Duration) Option {
	return func(e *Engine) { e.delay = delay }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithIDs(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

func WithReplyTimeout(d time.Duration) Option {
	return func(e *Engine) { e.replyTimeout = d }
}

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New restores the log from store, starting from the greeting when nothing
// usable is stored.
func New(ctx context.Context, store Store, responder Responder, opts ...Option) *Engine {
	e := &Engine{
		typing:       atomic.NewBool(false),
		responder:    responder,
		store:        store,
		scheduler:    TimerScheduler{},
		delay:        UniformDelay(time.Second, 3*time.Second, nil),
		newID:        models.NewID,
		now:          time.Now,
		replyTimeout: 30 * time.Second,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.messages = store.LoadMessages(ctx, e.initialMessages())
	e.logger.Debug("conversation restored", zap.Int("messages", len(e.messages)))
	return e
}

func (e *Engine) initialMessages() []models.Message {
	return []models.Message{{
		ID:        e.newID(),
		Role:      models.RoleAssistant,
		Content:   Greeting,
		Timestamp: e.now().UTC(),
	}}
}

// AddMessage appends a message and persists the log. A user message also
// starts a reply cycle; if one is already pending it is replaced so that only
// the newest utterance gets answered. Callers acting for a person should
// reject blank input before calling.
func (e *Engine) AddMessage(ctx context.Context, content string, role models.Role) (models.Message, error) {
	if _, err := models.ParseRole(string(role)); err != nil {
		return models.Message{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	msg := e.appendLocked(ctx, role, content)
	if role == models.RoleUser {
		e.scheduleLocked(content)
	}
	return msg, nil
}

// AddUserMessage is the guarded entry point for a person typing into the
// chat: content is trimmed, blank content is rejected with ErrEmptyMessage
// and, while a reply is pending, the message is rejected with ErrComposing
// instead of superseding that reply.
func (e *Engine) AddUserMessage(ctx context.Context, content string) (models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Message{}, ErrEmptyMessage
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.pending != nil {
		return models.Message{}, ErrComposing
	}
	msg := e.appendLocked(ctx, models.RoleUser, content)
	e.scheduleLocked(content)
	return msg, nil
}

// Persist saves the current log.
func (e *Engine) Persist(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.store.SaveMessages(ctx, e.messages)
}

// Clear resets the log to the greeting and cancels any pending reply.
func (e *Engine) Clear(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.pending != nil {
		e.pending.stop()
		e.pending = nil
	}
	e.typing.Store(false)

	e.messages = e.initialMessages()
	e.persistLocked(ctx)
	e.logger.Info("conversation cleared")
}

// Messages returns a snapshot of the log.
func (e *Engine) Messages() []models.Message {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]models.Message(nil), e.messages...)
}

// IsTyping reports whether an assistant reply is pending.
func (e *Engine) IsTyping() bool {
	return e.typing.Load()
}

// Close cancels a pending reply without touching the log.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.pending != nil {
		e.pending.stop()
		e.pending = nil
		e.typing.Store(false)
	}
}

func (e *Engine) appendLocked(ctx context.Context, role models.Role, content string) models.Message {
	msg := models.Message{
		ID:        e.newID(),
		Role:      role,
		Content:   content,
		Timestamp: e.now().UTC(),
	}
	e.messages = append(e.messages, msg)
	e.persistLocked(ctx)
	return msg
}

func (e *Engine) persistLocked(ctx context.Context) {
	if err := e.store.SaveMessages(ctx, e.messages); err != nil {
		e.logger.Error("failed to save messages", zap.Error(err))
	}
}

func (e *Engine) scheduleLocked(utterance string) {
	if e.pending != nil {
		e.logger.Debug("replacing pending reply with a newer utterance")
		e.pending.stop()
	}

	history := append([]models.Message(nil), e.messages...)
	ctx, cancel := context.WithCancel(context.Background())
	p := &pendingReply{cancel: cancel}

	delay := e.delay()
	p.task = e.scheduler.AfterFunc(delay, func() {
		e.complete(ctx, p, utterance, history)
	})
	e.pending = p
	e.typing.Store(true)

	e.logger.Debug("reply scheduled", zap.Duration("delay", delay))
}

func (e *Engine) complete(ctx context.Context, p *pendingReply, utterance string, history []models.Message) {
	defer p.cancel()

	rctx, cancel := context.WithTimeout(ctx, e.replyTimeout)
	reply, err := e.responder.Reply(rctx, utterance, history)
	cancel()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.pending != p {
		e.logger.Debug("dropping reply for a cancelled turn")
		return
	}
	e.pending = nil
	defer e.typing.Store(false)

	if err != nil {
		e.logger.Error("failed to generate reply", zap.Error(fmt.Errorf("reply cycle: %w", err)))
		return
	}
	e.appendLocked(context.Background(), models.RoleAssistant, reply)
}
