package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/SARVESHVARADKAR123/courtroom/internal/catalog"
	"github.com/SARVESHVARADKAR123/courtroom/internal/challenge"
)

var stagesFlags struct {
	stagesFile     string
	challengesFile string
}

var stagesCmd = &cobra.Command{
	Use:   "stages",
	Short: "List stages, their message pools and which messages carry a code challenge",
	RunE:  runStages,
}

func init() {
	f := stagesCmd.Flags()
	f.StringVar(&stagesFlags.stagesFile, "stages-file", "", "Stage catalog YAML (embedded default when empty)")
	f.StringVar(&stagesFlags.challengesFile, "challenges-file", "", "Code-challenge YAML (embedded default when empty)")
}

func runStages(cmd *cobra.Command, _ []string) error {
	stages, err := catalog.Load(stagesFlags.stagesFile)
	if err != nil {
		return fmt.Errorf("load stages: %w", err)
	}
	challenges, err := challenge.Load(stagesFlags.challengesFile)
	if err != nil {
		return fmt.Errorf("load challenges: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for i, st := range stages.ListStages() {
		fmt.Fprintf(w, "[%d] %s\treminder %s-%s\n", i, st.Name, st.MinReminder, st.MaxReminder)
		for _, tpl := range st.Templates {
			mark := ""
			if c, ok := challenges.Find(tpl.Text); ok {
				mark = "challenge: " + c.Keyword
			}
			fmt.Fprintf(w, "    %s\t%s\t%s\t%s\n", tpl.Text, tpl.Origin, tpl.Consequence, mark)
		}
	}
	return w.Flush()
}
