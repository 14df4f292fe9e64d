package consequence

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SARVESHVARADKAR123/courtroom/internal/domain"
)

func TestPresent(t *testing.T) {
	tests := []struct {
		name        string
		kind        domain.ConsequenceKind
		wantKind    domain.ConsequenceKind
		wantTitle   string
		wantLockout bool
	}{
		{"Accessibility", domain.ConsequenceAccessibility, domain.ConsequenceAccessibility, "Accessibility Hearing", false},
		{"Legal liability", domain.ConsequenceLegalLiability, domain.ConsequenceLegalLiability, "Court of Law - Laws of Tort", false},
		{"Insolvency locks the app", domain.ConsequenceInsolvency, domain.ConsequenceInsolvency, "Bankruptcy Notice", true},
		{"None", domain.ConsequenceNone, domain.ConsequenceNone, "Court Action", false},
		{"Unknown", domain.ConsequenceKind("meteor"), domain.ConsequenceNone, "Court Action", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Present(domain.Message{ID: "m1", Text: "Fix User login", Consequence: tt.kind})
			assert.Equal(t, "m1", v.MessageID)
			assert.Equal(t, tt.wantKind, v.Kind)
			assert.Equal(t, tt.wantTitle, v.Title)
			assert.Equal(t, tt.wantLockout, v.DisablesApplication)
			assert.Contains(t, v.Body, `"Fix User login"`)
		})
	}
}

func TestParseKind(t *testing.T) {
	tests := map[string]domain.ConsequenceKind{
		"tort":            domain.ConsequenceLegalLiability,
		"hacked":          domain.ConsequenceLegalLiability,
		"bankruptcy":      domain.ConsequenceInsolvency,
		" Accessibility ": domain.ConsequenceAccessibility,
		"legal_liability": domain.ConsequenceLegalLiability,
		"":                domain.ConsequenceNone,
		"whatever":        domain.ConsequenceNone,
	}
	for label, want := range tests {
		assert.Equal(t, want, ParseKind(label), "label=%q", label)
	}
}

func TestKindForText(t *testing.T) {
	assert.Equal(t, domain.ConsequenceAccessibility, KindForText("Fix alt in img1"))
	assert.Equal(t, domain.ConsequenceInsolvency, KindForText("Fix User login"))
	assert.Equal(t, domain.ConsequenceLegalLiability, KindForText("Pen test found SQLi"))
	assert.Equal(t, domain.ConsequenceNone, KindForText("Are you done with sprint 1?"))
}
