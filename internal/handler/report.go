package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/SARVESHVARADKAR123/courtroom/internal/application"
	"github.com/SARVESHVARADKAR123/courtroom/internal/domain"
	"github.com/SARVESHVARADKAR123/courtroom/internal/report"
	"github.com/SARVESHVARADKAR123/courtroom/internal/transport"
)

// ReportHandler renders HTML reports of stored records or the live courtroom.
type ReportHandler struct {
	renderer report.Renderer
	records  *application.RecordService
	core     *application.Service
}

// NewReportHandler builds the handler; records may be nil when persistence is off.
func NewReportHandler(renderer report.Renderer, records *application.RecordService, core *application.Service) *ReportHandler {
	return &ReportHandler{renderer: renderer, records: records, core: core}
}

type generateRequest struct {
	Messages       []report.Entry `json:"messages"`
	Theme          string         `json:"theme"`
	Title          string         `json:"title"`
	Heading        string         `json:"heading"`
	FetchFromStore bool           `json:"fetchFromStore"`
}

// Generate POST /api/generate-html
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid_body", "invalid input: messages array required")
		return
	}

	if req.FetchFromStore {
		if h.records == nil {
			transport.MapError(w, r, fmt.Errorf("%w: no record store configured", domain.ErrValidation))
			return
		}
		recs, err := h.records.List(r.Context())
		if err != nil {
			transport.MapError(w, r, err)
			return
		}
		req.Messages = report.FromRecords(recs)
	} else if req.Messages == nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid_argument", "invalid input: messages array required")
		return
	}

	if req.Theme == "" {
		req.Theme = report.ThemeLight
	}
	h.render(w, r, report.Request{Title: req.Title, Heading: req.Heading, Theme: req.Theme, Messages: req.Messages})
}

// Courtroom GET /api/courtroom/report
func (h *ReportHandler) Courtroom(w http.ResponseWriter, r *http.Request) {
	theme := r.URL.Query().Get("theme")
	if theme == "" {
		theme = report.ThemeLight
	}
	snap := h.core.Snapshot()
	h.render(w, r, report.Request{
		Heading:  fmt.Sprintf("%s stage", snap.Stage.Name),
		Theme:    theme,
		Messages: report.FromMessages(snap.Messages),
	})
}

func (h *ReportHandler) render(w http.ResponseWriter, r *http.Request, req report.Request) {
	html, err := h.renderer.Render(r.Context(), req)
	if err != nil {
		transport.MapError(w, r, err)
		return
	}
	transport.WriteHTML(w, http.StatusOK, html)
}
