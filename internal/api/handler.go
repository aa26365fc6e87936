package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/RichardoC/lumi/internal/app"
	"github.com/RichardoC/lumi/internal/conversation"
	"github.com/RichardoC/lumi/internal/models"
	"github.com/RichardoC/lumi/internal/mood"
	"github.com/RichardoC/lumi/internal/observability"
	"github.com/RichardoC/lumi/internal/resources"
	"go.uber.org/zap"
)

type Handler struct {
	app    *app.App
	logger *zap.Logger
}

func NewHandler(a *app.App, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		app:    a,
		logger: logger,
	}
}

// Routes registers the API and, when staticDir is set, the web front-end.
func (h *Handler) Routes(staticDir string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/messages", h.Messages)
	mux.HandleFunc("/api/moods", h.Moods)
	mux.HandleFunc("/api/moods/trend", h.MoodTrend)
	mux.HandleFunc("/api/moods/quick", h.QuickMood)
	mux.HandleFunc("/api/theme", h.Theme)
	mux.HandleFunc("/api/theme/system", h.SystemTheme)
	mux.HandleFunc("/api/preferences", h.Preferences)
	mux.HandleFunc("/api/resources", h.Resources)

	if staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}

	return chainMiddlewares(mux,
		withCORS,
		h.withAccessLog,
		withRequestID,
	)
}

type MessageRequest struct {
	Content string `json:"content"`
}

type MessagesResponse struct {
	Messages []models.Message `json:"messages"`
	IsTyping bool             `json:"is_typing"`
}

type MoodRequest struct {
	Mood models.Mood `json:"mood"`
	Note string      `json:"note,omitempty"`
}

type QuickMoodResponse struct {
	Entry   models.MoodEntry `json:"entry"`
	Message models.Message   `json:"message"`
}

type TrendResponse struct {
	Trend   mood.Trend `json:"trend"`
	Message string     `json:"message"`
}

type ThemeRequest struct {
	Theme models.Theme `json:"theme"`
}

type ThemeResponse struct {
	Theme  models.Theme `json:"theme"`
	IsDark bool         `json:"is_dark"`
}

type SystemThemeRequest struct {
	Dark bool `json:"dark"`
}

func (h *Handler) Messages(w http.ResponseWriter, r *http.Request) {
	chat := h.app.Chat()

	switch r.Method {
	case http.MethodGet:
		h.writeJSON(w, r, http.StatusOK, MessagesResponse{
			Messages: chat.Messages(),
			IsTyping: chat.IsTyping(),
		})

	case http.MethodPost:
		var req MessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		msg, err := chat.AddUserMessage(r.Context(), req.Content)
		switch {
		case errors.Is(err, conversation.ErrEmptyMessage):
			http.Error(w, "Message content must not be empty", http.StatusBadRequest)
		case errors.Is(err, conversation.ErrComposing):
			http.Error(w, "Lumi is still replying", http.StatusConflict)
		case err != nil:
			h.serverError(w, r, "Failed to add message", err)
		default:
			h.writeJSON(w, r, http.StatusAccepted, msg)
		}

	case http.MethodDelete:
		chat.Clear(r.Context())
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) Moods(w http.ResponseWriter, r *http.Request) {
	tracker := h.app.Mood()

	switch r.Method {
	case http.MethodGet:
		h.writeJSON(w, r, http.StatusOK, tracker.History())

	case http.MethodPost:
		var req MoodRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		entry, err := tracker.Add(r.Context(), req.Mood, req.Note)
		if errors.Is(err, models.ErrInvalidMood) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err != nil {
			h.serverError(w, r, "Failed to log mood", err)
			return
		}
		h.writeJSON(w, r, http.StatusCreated, entry)

	case http.MethodDelete:
		tracker.Clear(r.Context())
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) MoodTrend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	trend := h.app.Mood().Trend()
	h.writeJSON(w, r, http.StatusOK, TrendResponse{
		Trend:   trend,
		Message: trend.Message(),
	})
}

// QuickMood logs a mood and sends the matching chat line in one step.
func (h *Handler) QuickMood(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req MoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	entry, msg, err := h.app.QuickMoodCheck(r.Context(), req.Mood, req.Note)
	switch {
	case errors.Is(err, models.ErrInvalidMood):
		http.Error(w, "Invalid mood", http.StatusBadRequest)
	case errors.Is(err, conversation.ErrComposing):
		http.Error(w, "Lumi is still replying", http.StatusConflict)
	case err != nil:
		h.serverError(w, r, "Failed to record quick mood check", err)
	default:
		h.writeJSON(w, r, http.StatusAccepted, QuickMoodResponse{Entry: entry, Message: msg})
	}
}

func (h *Handler) Theme(w http.ResponseWriter, r *http.Request) {
	svc := h.app.Theme()

	switch r.Method {
	case http.MethodGet:

	case http.MethodPut:
		var req ThemeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := svc.SetTheme(r.Context(), req.Theme); err != nil {
			if errors.Is(err, models.ErrInvalidTheme) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			h.serverError(w, r, "Failed to set theme", err)
			return
		}

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, r, http.StatusOK, ThemeResponse{Theme: svc.Theme(), IsDark: svc.IsDark()})
}

// SystemTheme receives the OS color-scheme preference from the front-end.
func (h *Handler) SystemTheme(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SystemThemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	h.app.Signal().Set(req.Dark)

	svc := h.app.Theme()
	h.writeJSON(w, r, http.StatusOK, ThemeResponse{Theme: svc.Theme(), IsDark: svc.IsDark()})
}

func (h *Handler) Preferences(w http.ResponseWriter, r *http.Request) {
	svc := h.app.Settings()

	switch r.Method {
	case http.MethodGet:

	case http.MethodPut:
		var prefs models.Preferences
		if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := svc.Update(r.Context(), prefs); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, r, http.StatusOK, svc.Get())
}

func (h *Handler) Resources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	results := h.app.Resources().Search(q.Get("q"), resources.Category(q.Get("category")))

	h.logger.Debug("Searched resources",
		zap.String("q", q.Get("q")),
		zap.Int("count", len(results)))
	h.writeJSON(w, r, http.StatusOK, results)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		observability.LoggerFromContext(r.Context(), h.logger).
			Error("Failed to encode response", zap.Error(err))
	}
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	observability.LoggerFromContext(r.Context(), h.logger).Error(msg,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path))
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
