package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"celestialview/internal/reading"
	"celestialview/internal/session"
)

const (
	cookieName      = "celestial-session"
	sessionIDKey    = "sid"
	maxRequestBytes = 1 << 20
)

// ReadingHandlerDeps зависимости HTTP-обработчиков чтений.
type ReadingHandlerDeps struct {
	Sessions *session.Store
	Cookies  sessions.Store
	Logger   *slog.Logger
}

// ReadingHandler exposes one controller per visitor over JSON.
type ReadingHandler struct {
	sessions *session.Store
	cookies  sessions.Store
	logger   *slog.Logger
}

func NewReadingHandler(deps ReadingHandlerDeps) *ReadingHandler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ReadingHandler{
		sessions: deps.Sessions,
		cookies:  deps.Cookies,
		logger:   logger,
	}
}

// NewCookieStore создаёт хранилище cookie для идентификатора посетителя.
func NewCookieStore(key []byte, secure bool, maxAge int) *sessions.CookieStore {
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

type topicView struct {
	Code  reading.Topic `json:"code"`
	Label string        `json:"label"`
}

func (h *ReadingHandler) Topics(w http.ResponseWriter, r *http.Request) {
	topics := reading.Topics()
	views := make([]topicView, 0, len(topics))
	for _, t := range topics {
		views = append(views, topicView{Code: t, Label: t.Label()})
	}
	WriteJSON(w, http.StatusOK, map[string]any{"topics": views})
}

type cardView struct {
	ID       reading.CardID `json:"cardId"`
	Arcana   reading.Arcana `json:"arcana"`
	Suit     reading.Suit   `json:"suit,omitempty"`
	SuitName string         `json:"suitName,omitempty"`
	RankName string         `json:"rankName,omitempty"`
	ImageURL string         `json:"imageUrl"`
}

// Cards lists the whole deck so the client can preload card images.
func (h *ReadingHandler) Cards(w http.ResponseWriter, r *http.Request) {
	ids := reading.AllCardIDs()
	views := make([]cardView, 0, len(ids))
	for _, id := range ids {
		views = append(views, cardView{
			ID:       id,
			Arcana:   id.Arcana(),
			Suit:     id.Suit(),
			SuitName: id.Suit().Name(),
			RankName: id.RankName(),
			ImageURL: id.ImageURL(),
		})
	}
	WriteJSON(w, http.StatusOK, map[string]any{"cards": views})
}

func (h *ReadingHandler) State(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, c.Snapshot())
}

type modeRequest struct {
	Mode string `json:"mode"`
}

func (h *ReadingHandler) SwitchMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if !h.decode(w, r, &req) {
		return
	}
	mode, err := reading.ParseKind(req.Mode)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "unknown_mode", err.Error())
		return
	}

	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	snap, err := c.SwitchMode(mode)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "unknown_mode", err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, snap)
}

type fortuneRequest struct {
	Birthdate string `json:"birthdate"`
	Topic     string `json:"topic"`
}

// SubmitFortune starts a fortune reading and answers once it settles.
func (h *ReadingHandler) SubmitFortune(w http.ResponseWriter, r *http.Request) {
	var body fortuneRequest
	if !h.decode(w, r, &body) {
		return
	}
	topic, err := reading.ParseTopic(body.Topic)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	req := reading.FortuneRequest{Birthdate: body.Birthdate, Topic: topic}
	if err := req.Validate(); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	pending, err := c.SubmitFortune(r.Context(), req)
	h.await(w, r, c, pending, err)
}

func (h *ReadingHandler) DrawTarot(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	pending, err := c.DrawTarot(r.Context())
	h.await(w, r, c, pending, err)
}

func (h *ReadingHandler) Reset(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, c.Reset())
}

func (h *ReadingHandler) await(w http.ResponseWriter, r *http.Request, c *session.Controller, pending *session.Pending, err error) {
	switch {
	case errors.Is(err, session.ErrBusy):
		WriteJSONError(w, http.StatusConflict, "busy", err.Error())
		return
	case errors.Is(err, session.ErrWrongMode):
		WriteJSONError(w, http.StatusConflict, "wrong_mode", err.Error())
		return
	case err != nil:
		h.logger.Error("start reading", slog.String("error", err.Error()))
		WriteJSONError(w, http.StatusInternalServerError, "internal_error", reading.MessageUnexpected)
		return
	}

	select {
	case <-pending.Done():
		WriteJSON(w, http.StatusOK, c.Snapshot())
	case <-r.Context().Done():
		// Клиент ушёл; результат останется в состоянии сессии.
	}
}

// controller resolves the visitor's controller from the session cookie,
// issuing a new session id when the cookie is missing or unreadable.
func (h *ReadingHandler) controller(w http.ResponseWriter, r *http.Request) (*session.Controller, bool) {
	sess, err := h.cookies.Get(r, cookieName)
	if err != nil {
		// Повреждённая или устаревшая cookie: store отдаёт новую сессию.
		h.logger.Debug("session cookie rejected", slog.String("error", err.Error()))
	}
	if sess == nil {
		h.logger.Error("session unavailable", slog.Any("error", err))
		WriteJSONError(w, http.StatusInternalServerError, "internal_error", reading.MessageUnexpected)
		return nil, false
	}

	id, _ := sess.Values[sessionIDKey].(string)
	if _, parseErr := uuid.Parse(id); parseErr != nil {
		id = uuid.NewString()
		sess.Values[sessionIDKey] = id
	}

	// Cookie перевыпускается на каждый запрос, чтобы продлевать MaxAge.
	if err := sess.Save(r, w); err != nil {
		h.logger.Error("save session", slog.String("error", err.Error()))
		WriteJSONError(w, http.StatusInternalServerError, "internal_error", reading.MessageUnexpected)
		return nil, false
	}

	c, created := h.sessions.GetOrCreate(id)
	if created {
		h.logger.Debug("session started", slog.String("session_id", id))
	}
	return c, true
}

func (h *ReadingHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", fmt.Sprintf("invalid JSON body: %v", err))
		return false
	}
	return true
}
