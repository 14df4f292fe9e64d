package consequence

import (
	"fmt"
	"strings"

	"github.com/SARVESHVARADKAR123/courtroom/internal/domain"
)

// Verdict is the user-facing outcome of a terminated message.
type Verdict struct {
	MessageID           string                 `json:"message_id"`
	Kind                domain.ConsequenceKind `json:"kind"`
	Title               string                 `json:"title"`
	Body                string                 `json:"body"`
	DisablesApplication bool                   `json:"disables_application"`
}

type notice struct {
	title   string
	body    string
	lockout bool
}

var notices = map[domain.ConsequenceKind]notice{
	domain.ConsequenceAccessibility: {
		title: "Accessibility Hearing",
		body:  `You ignored accessibility issues ("%s"), this can violate disability laws. Court action initiated.`,
	},
	domain.ConsequenceLegalLiability: {
		title: "Court of Law - Laws of Tort",
		body:  `A critical security or validation issue ("%s") was not fixed and led to failure/harm. Legal action: Laws of Tort.`,
	},
	domain.ConsequenceInsolvency: {
		title:   "Bankruptcy Notice",
		body:    `Failure to fix "%s" caused loss of revenue / trust, declared bankruptcy. The app is disabled.`,
		lockout: true,
	},
}

var fallback = notice{
	title: "Court Action",
	body:  `An urgent issue escalated: "%s".`,
}

// Present is total: unknown kinds get the generic notice.
func Present(m domain.Message) Verdict {
	n, ok := notices[m.Consequence]
	kind := m.Consequence
	if !ok {
		n = fallback
		kind = domain.ConsequenceNone
	}
	return Verdict{
		MessageID:           m.ID,
		Kind:                kind,
		Title:               n.title,
		Body:                fmt.Sprintf(n.body, m.Text),
		DisablesApplication: n.lockout,
	}
}

// labels accepts both canonical kinds and the legacy flavor labels.
var labels = map[string]domain.ConsequenceKind{
	"none":            domain.ConsequenceNone,
	"accessibility":   domain.ConsequenceAccessibility,
	"legal_liability": domain.ConsequenceLegalLiability,
	"legalliability":  domain.ConsequenceLegalLiability,
	"tort":            domain.ConsequenceLegalLiability,
	"hacked":          domain.ConsequenceLegalLiability,
	"insolvency":      domain.ConsequenceInsolvency,
	"bankruptcy":      domain.ConsequenceInsolvency,
}

// ParseKind maps a label to a kind, defaulting to none.
func ParseKind(label string) domain.ConsequenceKind {
	if k, ok := labels[strings.ToLower(strings.TrimSpace(label))]; ok {
		return k
	}
	return domain.ConsequenceNone
}

type textRule struct {
	keyword string
	kind    domain.ConsequenceKind
}

// textRules is checked in order; the first keyword contained in the text wins.
var textRules = []textRule{
	{keyword: "alt in img", kind: domain.ConsequenceAccessibility},
	{keyword: "accessibility", kind: domain.ConsequenceAccessibility},
	{keyword: "user login", kind: domain.ConsequenceInsolvency},
	{keyword: "input validation", kind: domain.ConsequenceLegalLiability},
	{keyword: "secure database", kind: domain.ConsequenceLegalLiability},
	{keyword: "sqli", kind: domain.ConsequenceLegalLiability},
	{keyword: "regression", kind: domain.ConsequenceLegalLiability},
}

// KindForText infers a kind from message text for templates that do not declare one.
func KindForText(text string) domain.ConsequenceKind {
	lower := strings.ToLower(text)
	for _, r := range textRules {
		if strings.Contains(lower, r.keyword) {
			return r.kind
		}
	}
	return domain.ConsequenceNone
}
