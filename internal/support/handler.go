package support

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Vovarama1992/rental-support-bridge/internal/apperr"
	"github.com/Vovarama1992/rental-support-bridge/internal/logger"
)

type Handler struct {
	svc Service
	log logger.Logger
}

func NewHandler(svc Service, log logger.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// PostMessage — a message typed into the chat widget.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID string `json:"user_id"`
		Text   string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeError(w, apperr.NewInvalidInput("invalid json"))
		return
	}

	reply, err := h.svc.HandleUserMessage(r.Context(), payload.UserID, payload.Text)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.GetSession(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *Handler) ListNotifications(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Notifications())
}

func (h *Handler) GetNotification(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Notification(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// Respond — employee reply; the resolve sentinel closes the conversation.
func (h *Handler) Respond(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeError(w, apperr.NewInvalidInput("invalid json"))
		return
	}

	n, err := h.svc.Respond(r.Context(), chi.URLParam(r, "id"), payload.Text)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Resolve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *Handler) Counts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Counts())
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)

	var ae *apperr.AppError
	if !errors.As(err, &ae) {
		ae = &apperr.AppError{Code: "INTERNAL", Message: "internal error"}
	}
	if status >= http.StatusInternalServerError {
		h.log.WithError(err).Error("request failed", map[string]interface{}{"code": ae.Code})
	}
	writeJSON(w, status, map[string]any{"error": ae})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
