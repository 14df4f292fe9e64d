package report

import (
	"bytes"
	"context"
	_ "embed"
	"html/template"
	"time"

	"github.com/SARVESHVARADKAR123/courtroom/internal/domain"
)

const (
	DefaultTitle   = "CourtRoom Report"
	DefaultHeading = "CourtRoom Messages"
	ThemeLight     = "light"
	ThemeDark      = "dark"

	timeLayout = "2 Jan 2006 15:04:05 MST"
)

//go:embed report.html.tmpl
var pageSource string

var page = template.Must(template.New("report").Parse(pageSource))

// Entry is one message line in a report.
type Entry struct {
	Text      string          `json:"text"`
	From      string          `json:"from,omitempty"`
	Level     domain.Severity `json:"level,omitempty"`
	Timestamp *time.Time      `json:"timestamp,omitempty"`
}

type Request struct {
	Title    string  `json:"title,omitempty"`
	Heading  string  `json:"heading,omitempty"`
	Theme    string  `json:"theme"`
	Messages []Entry `json:"messages"`
}

// Renderer turns a report request into a complete HTML document.
type Renderer interface {
	Render(ctx context.Context, req Request) (string, error)
}

type palette struct {
	Background, Surface, Card, Text, Muted, Accent string
}

var palettes = map[string]palette{
	ThemeLight: {Background: "#f5f5f5", Surface: "white", Card: "#f9f9f9", Text: "#333", Muted: "#666", Accent: "#2563eb"},
	ThemeDark:  {Background: "#1a1a1a", Surface: "#2a2a2a", Card: "#363636", Text: "#e0e0e0", Muted: "#888", Accent: "#4a9eff"},
}

type totals struct {
	All, Info, Warning, Urgent int
}

type line struct {
	Text, From, Time string
	Level            domain.Severity
}

type view struct {
	Title, Heading, Theme, GeneratedAt string
	Palette                            palette
	Totals                             totals
	Messages                           []line
}

// Render builds the document. Unknown themes render as light.
func Render(req Request, generatedAt time.Time) (string, error) {
	v := view{
		Title:       orDefault(req.Title, DefaultTitle),
		Heading:     orDefault(req.Heading, DefaultHeading),
		Theme:       req.Theme,
		GeneratedAt: generatedAt.UTC().Format(timeLayout),
		Messages:    make([]line, 0, len(req.Messages)),
	}
	if _, ok := palettes[v.Theme]; !ok {
		v.Theme = ThemeLight
	}
	v.Palette = palettes[v.Theme]

	for _, e := range req.Messages {
		l := line{
			Text:  e.Text,
			From:  orDefault(e.From, "System"),
			Level: e.Level,
			Time:  "Just now",
		}
		if !l.Level.Valid() {
			l.Level = domain.SeverityInfo
		}
		if e.Timestamp != nil {
			l.Time = e.Timestamp.UTC().Format(timeLayout)
		}

		v.Totals.All++
		switch l.Level {
		case domain.SeverityInfo:
			v.Totals.Info++
		case domain.SeverityWarning:
			v.Totals.Warning++
		case domain.SeverityUrgent:
			v.Totals.Urgent++
		}
		v.Messages = append(v.Messages, l)
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// Local renders in process.
type Local struct {
	Now func() time.Time
}

func (l Local) Render(ctx context.Context, req Request) (string, error) {
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	return Render(req, now())
}

func FromRecords(recs []*domain.Record) []Entry {
	out := make([]Entry, 0, len(recs))
	for _, r := range recs {
		e := Entry{Text: r.Text, Level: r.Level}
		if r.From != nil {
			e.From = *r.From
		}
		ts := r.Timestamp
		e.Timestamp = &ts
		out = append(out, e)
	}
	return out
}

func FromMessages(msgs []domain.Message) []Entry {
	out := make([]Entry, 0, len(msgs))
	for _, m := range msgs {
		ts := m.CreatedAt
		out = append(out, Entry{Text: m.Text, From: m.Origin, Level: m.Severity, Timestamp: &ts})
	}
	return out
}
