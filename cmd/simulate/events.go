package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/courtroom/internal/application"
	"github.com/SARVESHVARADKAR123/courtroom/internal/kafka"
)

var eventsFlags struct {
	brokers string
	prefix  string
	group   string
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Tail the events a running courtroom server publishes to Kafka",
	RunE:  runEvents,
}

func init() {
	f := eventsCmd.Flags()
	f.StringVar(&eventsFlags.brokers, "brokers", "localhost:9092", "Comma separated Kafka brokers")
	f.StringVar(&eventsFlags.prefix, "topic-prefix", "courtroom", "Topic prefix used by the server")
	f.StringVar(&eventsFlags.group, "group", "courtroom-simulate", "Consumer group id")
}

func runEvents(cmd *cobra.Command, _ []string) error {
	log, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	brokers := strings.Split(eventsFlags.brokers, ",")
	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)

	return kafka.Consume(cmd.Context(), brokers, eventsFlags.prefix, eventsFlags.group, log, func(ev application.Event) error {
		fmt.Fprintf(out, "%s %s ", ev.OccurredAt.Format("15:04:05"), ev.Type)
		return enc.Encode(ev)
	})
}
