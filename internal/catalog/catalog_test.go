package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SARVESHVARADKAR123/courtroom/internal/domain"
)

func TestDefault(t *testing.T) {
	c := Default()
	stages := c.ListStages()
	require.Len(t, stages, 3)

	assert.Equal(t, "Debugging", stages[0].Name)
	assert.Equal(t, 20*time.Second, stages[0].MinReminder)
	assert.Equal(t, 30*time.Second, stages[0].MaxReminder)
	assert.Len(t, stages[0].Templates, 7)

	assert.Equal(t, "Release", stages[1].Name)
	assert.Equal(t, "Audit", stages[2].Name)
	assert.Equal(t, 120*time.Second, stages[2].MaxReminder)

	for _, tpl := range stages[0].Templates {
		if tpl.Text == "Fix User login" {
			assert.Equal(t, domain.ConsequenceInsolvency, tpl.Consequence)
		}
	}
}

func TestGetStage(t *testing.T) {
	c := Default()

	st, err := c.GetStage(1)
	require.NoError(t, err)
	assert.Equal(t, "Release", st.Name)

	for _, idx := range []int{-1, 3, 100} {
		_, err := c.GetStage(idx)
		assert.ErrorIs(t, err, domain.ErrOutOfRange, "index=%d", idx)
	}
}

func TestListStagesIsACopy(t *testing.T) {
	c := Default()
	s := c.ListStages()
	s[0].Name = "mutated"

	st, _ := c.GetStage(0)
	assert.Equal(t, "Debugging", st.Name)
}

func TestParse(t *testing.T) {
	t.Run("Legacy labels and inferred kinds", func(t *testing.T) {
		c, err := Parse([]byte(`
stages:
  - name: Ops
    reminder_min_ms: 1000
    reminder_max_ms: 2000
    messages:
      - text: Fix Secure Database
        from: ops
        consequence: hacked
      - text: Fix User login
        from: payment
`))
		require.NoError(t, err)
		st, err := c.GetStage(0)
		require.NoError(t, err)
		assert.Equal(t, domain.ConsequenceLegalLiability, st.Templates[0].Consequence)
		assert.Equal(t, domain.ConsequenceInsolvency, st.Templates[1].Consequence)
	})

	tests := []struct {
		name string
		yaml string
	}{
		{"Empty", `stages: []`},
		{"Malformed", `stages: [`},
		{"No name", "stages:\n  - reminder_min_ms: 1\n    reminder_max_ms: 2\n    messages: [{text: a}]"},
		{"Inverted range", "stages:\n  - name: x\n    reminder_min_ms: 5\n    reminder_max_ms: 2\n    messages: [{text: a}]"},
		{"No messages", "stages:\n  - name: x\n    reminder_min_ms: 1\n    reminder_max_ms: 2"},
		{"Blank text", "stages:\n  - name: x\n    reminder_min_ms: 1\n    reminder_max_ms: 2\n    messages: [{from: a}]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestLoad(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	path := filepath.Join(t.TempDir(), "stages.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
stages:
  - name: Only
    reminder_min_ms: 10
    reminder_max_ms: 10
    messages:
      - text: hello
`), 0o600))

	c, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
