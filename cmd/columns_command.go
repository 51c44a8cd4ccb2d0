package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okian/gradematch/internal/domain/columns"
)

func newColumnsCommand(ctx *commandContext) *cobra.Command {
	var responses, roster string

	cmd := &cobra.Command{
		Use:   "columns",
		Short: "Show which columns would be used for matching",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig(cmd.Context())
			if err != nil {
				return err
			}
			schema, err := ctx.newService(cfg).Detect(cmd.Context(), responses, roster)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderSchema(schema))
			return nil
		},
	}

	cmd.Flags().StringVarP(&responses, "responses", "r", "", "Responses file (xlsx, xlsm or csv)")
	cmd.Flags().StringVarP(&roster, "roster", "R", "", "Roster file (xlsx, xlsm or csv)")
	_ = cmd.MarkFlagRequired("responses")
	_ = cmd.MarkFlagRequired("roster")

	return cmd
}

func renderSchema(s columns.Schema) string {
	var slots []string
	for _, col := range s.RosterSlots {
		if col != "" {
			slots = append(slots, col)
		}
	}
	rows := [][]string{
		{"responses", "name", orNone(s.ResponseName)},
		{"responses", "score", orNone(s.ResponseScore)},
		{"responses", "identifier", orNone(s.ResponseIdentifier)},
		{"responses", "time", orNone(s.ResponseTime)},
		{"roster", "name", orNone(s.RosterName)},
		{"roster", "identifier", orNone(s.RosterIdentifier)},
		{"roster", "existing slots", orNone(strings.Join(slots, ", "))},
	}
	return renderTable([]string{"Table", "Role", "Column"}, rows, nil)
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
