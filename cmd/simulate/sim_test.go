package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SARVESHVARADKAR123/courtroom/internal/application"
	"github.com/SARVESHVARADKAR123/courtroom/internal/catalog"
	"github.com/SARVESHVARADKAR123/courtroom/internal/challenge"
	"github.com/SARVESHVARADKAR123/courtroom/internal/domain"
)

const lockoutStages = `
stages:
  - name: Payments
    reminder_min_ms: 1000
    reminder_max_ms: 1000
    messages:
      - text: Fix User login
        from: payment
        consequence: insolvency
`

func baseOptions() simOptions {
	return simOptions{
		Seed:      7,
		Duration:  10 * time.Minute,
		Step:      time.Second,
		Countdown: 3600,
		Core: application.Config{
			EscalateWait:       10 * time.Second,
			ChallengeInterval:  20 * time.Second,
			AmbientProbability: 0.05,
		},
	}
}

func TestSimulateIsDeterministic(t *testing.T) {
	run := func() (string, simSummary) {
		var out bytes.Buffer
		sum, err := simulate(context.Background(), catalog.Default(), challenge.Default(), baseOptions(), &out)
		require.NoError(t, err)
		return out.String(), sum
	}

	out1, sum1 := run()
	out2, sum2 := run()

	assert.Equal(t, out1, out2)
	assert.Equal(t, sum1.Created, sum2.Created)
	assert.Positive(t, sum1.Created)
	assert.Contains(t, out1, "coding-")
}

func TestSimulateStopsAtLockout(t *testing.T) {
	stages, err := catalog.Parse([]byte(lockoutStages))
	require.NoError(t, err)

	var out bytes.Buffer
	sum, err := simulate(context.Background(), stages, challenge.Default(), baseOptions(), &out)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Lockouts)
	assert.True(t, sum.Final.Locked)
	require.NotNil(t, sum.Final.Verdict)
	assert.Equal(t, domain.ConsequenceInsolvency, sum.Final.Verdict.Kind)
	assert.Less(t, sum.Ticks, 600)
	assert.Contains(t, out.String(), "LOCKED")
}

func TestSimulateResetOnLockKeepsPlaying(t *testing.T) {
	stages, err := catalog.Parse([]byte(lockoutStages))
	require.NoError(t, err)

	opts := baseOptions()
	opts.ResetOnLock = true

	var out bytes.Buffer
	sum, err := simulate(context.Background(), stages, challenge.Default(), opts, &out)
	require.NoError(t, err)

	assert.Equal(t, 600, sum.Ticks)
	assert.Greater(t, sum.Lockouts, 1)
	assert.Contains(t, out.String(), "reset")
}

func TestSimulateDiligentPlayerAvoidsLockout(t *testing.T) {
	stages, err := catalog.Parse([]byte(lockoutStages))
	require.NoError(t, err)

	opts := baseOptions()
	opts.ResolveProbability = 1

	var out bytes.Buffer
	sum, err := simulate(context.Background(), stages, challenge.Default(), opts, &out)
	require.NoError(t, err)

	assert.Zero(t, sum.Lockouts)
	assert.Equal(t, sum.Created, sum.Resolved)
}

func TestSimulateRejectsUnknownStage(t *testing.T) {
	opts := baseOptions()
	opts.Stage = 9
	_, err := simulate(context.Background(), catalog.Default(), challenge.Default(), opts, &bytes.Buffer{})
	assert.ErrorIs(t, err, domain.ErrOutOfRange)
}

func TestRunCommandWritesReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.html")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"run", "--seed", "3", "--duration", "2m", "--report", path, "--theme", "dark"})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	assert.Contains(t, out.String(), "Ticks:       120")
	html, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Simulated Debugging session (seed 3)")
}
