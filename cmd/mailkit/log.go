package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/mailkit/internal/store"
)

var logLimit int

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show recent dispatches from the local send log",
	RunE:  runLog,
}

func init() {
	logCmd.Flags().IntVar(&logLimit, "limit", 20, "maximum entries to show")
}

func runLog(_ *cobra.Command, _ []string) error {
	s, err := store.NewSQLiteStore(store.DefaultDBPath())
	if err != nil {
		return err
	}
	defer s.Close()

	dispatches, err := s.ListDispatches(context.Background(), logLimit)
	if err != nil {
		return err
	}
	if len(dispatches) == 0 {
		fmt.Println("send log is empty")
		return nil
	}

	for _, d := range dispatches {
		line := fmt.Sprintf(
			"%s  %-6s  %q to %s via %s",
			d.SentAt.Local().Format("2006-01-02 15:04"),
			d.Status, d.Subject, strings.Join(d.Recipients, ","), d.Host,
		)
		if d.Detail != "" {
			line += "  (" + d.Detail + ")"
		}
		fmt.Println(line)
	}
	return nil
}
