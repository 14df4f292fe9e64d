package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/SARVESHVARADKAR123/courtroom/internal/application"
	"github.com/SARVESHVARADKAR123/courtroom/internal/catalog"
	"github.com/SARVESHVARADKAR123/courtroom/internal/challenge"
	"github.com/SARVESHVARADKAR123/courtroom/internal/escalation"
	"github.com/SARVESHVARADKAR123/courtroom/internal/injector"
	"github.com/SARVESHVARADKAR123/courtroom/internal/report"
)

var runFlags struct {
	seed           int64
	duration       time.Duration
	step           time.Duration
	stage          int
	countdown      int
	resolve        float64
	resetOnLock    bool
	gate           bool
	escalateWait   time.Duration
	challengeEvery time.Duration
	ambient        float64
	stagesFile     string
	challengesFile string
	reportFile     string
	theme          string
	jsonOut        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate a session and print every event",
	RunE:  runSimulation,
}

func init() {
	f := runCmd.Flags()
	f.Int64Var(&runFlags.seed, "seed", 1, "Random seed for injection and the simulated player")
	f.DurationVar(&runFlags.duration, "duration", 30*time.Minute, "Simulated session length")
	f.DurationVar(&runFlags.step, "step", time.Second, "Simulated tick interval")
	f.IntVar(&runFlags.stage, "stage", 0, "Stage index to play")
	f.IntVar(&runFlags.countdown, "countdown", 3600, "Countdown length in seconds")
	f.Float64Var(&runFlags.resolve, "resolve-probability", 0.02, "Chance per step that the player resolves the oldest open message")
	f.BoolVar(&runFlags.resetOnLock, "reset-on-lock", false, "Reset and keep playing after a lockout instead of stopping")
	f.BoolVar(&runFlags.gate, "gate-escalation", false, "Pause escalation while the countdown is stopped")
	f.DurationVar(&runFlags.escalateWait, "escalate-wait", escalation.DefaultEscalateWait, "Delay between later escalation steps")
	f.DurationVar(&runFlags.challengeEvery, "challenge-interval", injector.DefaultChallengeInterval, "Scheduled code-challenge interval")
	f.Float64Var(&runFlags.ambient, "ambient-probability", injector.DefaultAmbientProbability, "Ambient injection probability per tick")
	f.StringVar(&runFlags.stagesFile, "stages-file", "", "Stage catalog YAML (embedded default when empty)")
	f.StringVar(&runFlags.challengesFile, "challenges-file", "", "Code-challenge YAML (embedded default when empty)")
	f.StringVar(&runFlags.reportFile, "report", "", "Write an HTML report of the final messages to this file")
	f.StringVar(&runFlags.theme, "theme", report.ThemeLight, "Report theme: light or dark")
	f.BoolVar(&runFlags.jsonOut, "json", false, "Print the final snapshot as JSON")
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	stages, err := catalog.Load(runFlags.stagesFile)
	if err != nil {
		return fmt.Errorf("load stages: %w", err)
	}
	challenges, err := challenge.Load(runFlags.challengesFile)
	if err != nil {
		return fmt.Errorf("load challenges: %w", err)
	}

	out := cmd.OutOrStdout()
	sum, err := simulate(cmd.Context(), stages, challenges, simOptions{
		Seed:               runFlags.seed,
		Duration:           runFlags.duration,
		Step:               runFlags.step,
		Stage:              runFlags.stage,
		Countdown:          runFlags.countdown,
		ResolveProbability: runFlags.resolve,
		ResetOnLock:        runFlags.resetOnLock,
		Core: application.Config{
			EscalateWait:       runFlags.escalateWait,
			ChallengeInterval:  runFlags.challengeEvery,
			AmbientProbability: runFlags.ambient,
			GateEscalation:     runFlags.gate,
		},
	}, out)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\nTicks:       %d\n", sum.Ticks)
	fmt.Fprintf(out, "Created:     %d\n", sum.Created)
	fmt.Fprintf(out, "Escalations: %d\n", sum.Escalated)
	fmt.Fprintf(out, "Resolved:    %d\n", sum.Resolved)
	fmt.Fprintf(out, "Verdicts:    %d\n", sum.Terminated)
	fmt.Fprintf(out, "Lockouts:    %d\n", sum.Lockouts)
	fmt.Fprintf(out, "Locked:      %t\n", sum.Final.Locked)

	if runFlags.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(sum.Final); err != nil {
			return err
		}
	}

	if runFlags.reportFile != "" {
		html, err := report.Render(report.Request{
			Heading:  fmt.Sprintf("Simulated %s session (seed %d)", sum.Final.Stage.Name, runFlags.seed),
			Theme:    runFlags.theme,
			Messages: report.FromMessages(sum.Final.Messages),
		}, sum.Final.TakenAt)
		if err != nil {
			return fmt.Errorf("render report: %w", err)
		}
		if err := os.WriteFile(runFlags.reportFile, []byte(html), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Fprintf(out, "Report:      %s\n", runFlags.reportFile)
	}
	return nil
}
