package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"visualjobs.local/internal/report"
)

func newReportCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Fetch once and print the summary and flows",
		Long: `Fetch the tracker database, build the snapshot and print it.

Formats:
  text - summary cards, stage distribution and flows
  json - the full snapshot
  yaml - the full snapshot`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			e, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = e.log.Sync() }()

			snap, err := e.loadSnapshot(cmd.Context(), nil)
			if err != nil {
				e.log.Error("fetch failed", zap.Error(err))
				return err
			}
			return report.Render(cmd.OutOrStdout(), snap, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", report.FormatText, "output format: text, json or yaml")
	return cmd
}

func checkFormat(format string) error {
	switch strings.ToLower(format) {
	case report.FormatText, report.FormatJSON, report.FormatYAML:
		return nil
	}
	return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
}
