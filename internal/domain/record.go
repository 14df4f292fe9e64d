package domain

import (
	"fmt"
	"strings"
	"time"
)

// Record is the persisted form of a message.
type Record struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	From      *string   `json:"from"`
	Level     Severity  `json:"level"`
	Timestamp time.Time `json:"timestamp"`
	Resolved  bool      `json:"resolved"`
}

func NewRecord(text string, from *string, level Severity, ts time.Time) (*Record, error) {
	var missing []string
	if text == "" {
		missing = append(missing, "text")
	}
	if level == "" {
		missing = append(missing, "level")
	}
	if ts.IsZero() {
		missing = append(missing, "timestamp")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required fields: %s", ErrValidation, strings.Join(missing, ", "))
	}
	if !level.Valid() {
		return nil, fmt.Errorf("%w: invalid level %q", ErrValidation, level)
	}
	if from != nil && *from == "" {
		from = nil
	}

	return &Record{
		Text:      text,
		From:      from,
		Level:     level,
		Timestamp: ts,
	}, nil
}

// RecordPatch is a partial update; nil fields are left unchanged.
type RecordPatch struct {
	Text     *string   `json:"text"`
	From     *string   `json:"from"`
	Level    *Severity `json:"level"`
	Resolved *bool     `json:"resolved"`
}

func (p RecordPatch) Validate() error {
	if p.Text != nil && *p.Text == "" {
		return fmt.Errorf("%w: text cannot be empty", ErrValidation)
	}
	if p.Level != nil && !p.Level.Valid() {
		return fmt.Errorf("%w: invalid level %q", ErrValidation, *p.Level)
	}
	return nil
}

func (p RecordPatch) Apply(r *Record) {
	if p.Text != nil {
		r.Text = *p.Text
	}
	if p.From != nil {
		if *p.From == "" {
			r.From = nil
		} else {
			from := *p.From
			r.From = &from
		}
	}
	if p.Level != nil {
		r.Level = *p.Level
	}
	if p.Resolved != nil {
		r.Resolved = *p.Resolved
	}
}
