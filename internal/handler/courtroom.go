package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SARVESHVARADKAR123/courtroom/internal/application"
	"github.com/SARVESHVARADKAR123/courtroom/internal/transport"
)

// CourtroomHandler exposes the live courtroom state and its user actions.
type CourtroomHandler struct {
	svc *application.Service
}

func NewCourtroomHandler(svc *application.Service) *CourtroomHandler {
	return &CourtroomHandler{svc: svc}
}

type stageInfo struct {
	Index         int    `json:"index"`
	Name          string `json:"name"`
	Messages      int    `json:"messages"`
	ReminderMinMS int64  `json:"reminder_min_ms"`
	ReminderMaxMS int64  `json:"reminder_max_ms"`
}

// Snapshot GET /api/courtroom
func (h *CourtroomHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	transport.WriteJSON(w, http.StatusOK, h.svc.Snapshot())
}

// Stages GET /api/courtroom/stages
func (h *CourtroomHandler) Stages(w http.ResponseWriter, r *http.Request) {
	stages := h.svc.Catalog().ListStages()
	out := make([]stageInfo, 0, len(stages))
	for i, st := range stages {
		out = append(out, stageInfo{
			Index:         i,
			Name:          st.Name,
			Messages:      len(st.Templates),
			ReminderMinMS: st.MinReminder.Milliseconds(),
			ReminderMaxMS: st.MaxReminder.Milliseconds(),
		})
	}
	transport.WriteJSON(w, http.StatusOK, out)
}

// SelectStage PUT /api/courtroom/stage
func (h *CourtroomHandler) SelectStage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index *int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Index == nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid_body", "index is required")
		return
	}
	view, err := h.svc.SelectStage(r.Context(), *req.Index)
	if err != nil {
		transport.MapError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, view)
}

// StartCountdown POST /api/courtroom/countdown
func (h *CourtroomHandler) StartCountdown(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Seconds *int `json:"seconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Seconds == nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid_body", "seconds is required")
		return
	}
	view, err := h.svc.StartCountdown(r.Context(), *req.Seconds)
	if err != nil {
		transport.MapError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, view)
}

// StopCountdown DELETE /api/courtroom/countdown
func (h *CourtroomHandler) StopCountdown(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.StopCountdown(r.Context())
	if err != nil {
		transport.MapError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, view)
}

// Reset POST /api/courtroom/reset
func (h *CourtroomHandler) Reset(w http.ResponseWriter, r *http.Request) {
	transport.WriteJSON(w, http.StatusOK, h.svc.ResetAll(r.Context()))
}

// Resolve POST /api/courtroom/messages/{id}/resolve
func (h *CourtroomHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.ResolveMessage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		transport.MapError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, m)
}

// BeginChallenge GET /api/courtroom/messages/{id}/challenge
func (h *CourtroomHandler) BeginChallenge(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.BeginCodeChallenge(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		transport.MapError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, view)
}

// SubmitChallenge POST /api/courtroom/messages/{id}/challenge
func (h *CourtroomHandler) SubmitChallenge(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid_body", "invalid json")
		return
	}
	res, err := h.svc.SubmitCodeChallenge(r.Context(), chi.URLParam(r, "id"), req.Code)
	if err != nil {
		transport.MapError(w, r, err)
		return
	}
	status := http.StatusOK
	if !res.Accepted {
		status = http.StatusUnprocessableEntity
	}
	transport.WriteJSON(w, status, res)
}

// ShowAnswer GET /api/courtroom/messages/{id}/challenge/answer
func (h *CourtroomHandler) ShowAnswer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	answer, err := h.svc.ShowAnswer(r.Context(), id)
	if err != nil {
		transport.MapError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]string{"message_id": id, "solution": answer})
}

// DismissVerdict DELETE /api/courtroom/verdict
func (h *CourtroomHandler) DismissVerdict(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DismissVerdict(r.Context()); err != nil {
		transport.MapError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
