package main

import (
	"context"

	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Show how the CSV headers map to canonical fields",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(context.Background())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), s.ingest)
	},
}
