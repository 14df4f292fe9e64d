package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/SARVESHVARADKAR123/courtroom/internal/application"
	"github.com/SARVESHVARADKAR123/courtroom/internal/domain"
	"github.com/SARVESHVARADKAR123/courtroom/internal/transport"
)

// RecordHandler serves CRUD on stored message records.
type RecordHandler struct {
	svc *application.RecordService
}

func NewRecordHandler(svc *application.RecordService) *RecordHandler {
	return &RecordHandler{svc: svc}
}

type createRecordRequest struct {
	Text      string          `json:"text"`
	From      *string         `json:"from"`
	Level     domain.Severity `json:"level"`
	Timestamp *time.Time      `json:"timestamp"`
}

func recordID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		transport.WriteError(w, http.StatusBadRequest, "invalid_argument", "invalid id")
		return 0, false
	}
	return id, true
}

// List GET /api/messages
func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	recs, err := h.svc.List(r.Context())
	if err != nil {
		transport.MapError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, recs)
}

// Create POST /api/messages
func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid_body", "invalid json")
		return
	}

	cmd := application.CreateRecordCommand{Text: req.Text, From: req.From, Level: req.Level}
	if req.Timestamp != nil {
		cmd.Timestamp = *req.Timestamp
	}
	rec, err := h.svc.Create(r.Context(), cmd)
	if err != nil {
		transport.MapError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusCreated, rec)
}

// Get GET /api/messages/{id}
func (h *RecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}
	rec, err := h.svc.Get(r.Context(), id)
	if err != nil {
		transport.MapError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, rec)
}

// Update PUT /api/messages/{id}
func (h *RecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}
	var patch domain.RecordPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid_body", "invalid json")
		return
	}
	rec, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		transport.MapError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, rec)
}

// Delete DELETE /api/messages/{id}
func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		transport.MapError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]string{"message": "Deleted successfully"})
}
