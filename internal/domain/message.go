package domain

import (
	"fmt"
	"time"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityUrgent  Severity = "urgent"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityUrgent:
		return true
	}
	return false
}

// Rank orders severities so that info < warning < urgent.
func (s Severity) Rank() int {
	switch s {
	case SeverityWarning:
		return 1
	case SeverityUrgent:
		return 2
	default:
		return 0
	}
}

// SeverityForEscalations is the fixed escalation ladder: 0 → info, 1 → warning, 2+ → urgent.
func SeverityForEscalations(n int) Severity {
	switch {
	case n <= 0:
		return SeverityInfo
	case n == 1:
		return SeverityWarning
	default:
		return SeverityUrgent
	}
}

type ConsequenceKind string

const (
	ConsequenceNone           ConsequenceKind = "none"
	ConsequenceAccessibility  ConsequenceKind = "accessibility"
	ConsequenceLegalLiability ConsequenceKind = "legal_liability"
	ConsequenceInsolvency     ConsequenceKind = "insolvency"
)

func (k ConsequenceKind) Valid() bool {
	switch k {
	case ConsequenceNone, ConsequenceAccessibility, ConsequenceLegalLiability, ConsequenceInsolvency:
		return true
	}
	return false
}

// Message Invariants:
// 1. Timers: at most one of NextReminderAt / TerminalAt is set.
// 2. Resolution: Resolved implies both timers are cleared, and it is never undone except by a full reset.
// 3. Ladder: Severity == SeverityForEscalations(EscalationCount) and never decreases while unresolved.
type Message struct {
	ID              string          `json:"id"`
	Text            string          `json:"text"`
	Origin          string          `json:"from"`
	Severity        Severity        `json:"level"`
	CreatedAt       time.Time       `json:"timestamp"`
	Resolved        bool            `json:"resolved"`
	EscalationCount int             `json:"escalations"`
	NextReminderAt  *time.Time      `json:"next_reminder_at,omitempty"`
	TerminalAt      *time.Time      `json:"terminal_at,omitempty"`
	Consequence     ConsequenceKind `json:"consequence"`
}

// NewMessage builds an unresolved info-level message from a template with its first
// reminder scheduled reminderDelay after now.
func NewMessage(id string, tpl Template, now time.Time, reminderDelay time.Duration) (*Message, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: message id is required", ErrValidation)
	}
	if tpl.Text == "" {
		return nil, fmt.Errorf("%w: message text is required", ErrValidation)
	}

	kind := tpl.Consequence
	if !kind.Valid() {
		kind = ConsequenceNone
	}
	origin := tpl.Origin
	if origin == "" {
		origin = "system"
	}

	remindAt := now.Add(reminderDelay)
	return &Message{
		ID:             id,
		Text:           tpl.Text,
		Origin:         origin,
		Severity:       SeverityInfo,
		CreatedAt:      now,
		NextReminderAt: &remindAt,
		Consequence:    kind,
	}, nil
}

// Resolve marks the message resolved and drops any pending timer.
func (m *Message) Resolve() {
	m.Resolved = true
	m.NextReminderAt = nil
	m.TerminalAt = nil
}

// Clone returns a deep copy that shares no timer pointers with m.
func (m *Message) Clone() Message {
	c := *m
	if m.NextReminderAt != nil {
		t := *m.NextReminderAt
		c.NextReminderAt = &t
	}
	if m.TerminalAt != nil {
		t := *m.TerminalAt
		c.TerminalAt = &t
	}
	return c
}
