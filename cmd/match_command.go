package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	service "github.com/okian/gradematch/internal/app"
)

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var responses, roster, out string

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match a responses file against a roster and write the result workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig(cmd.Context())
			if err != nil {
				return err
			}
			svc := ctx.newService(cfg)

			stderr := cmd.ErrOrStderr()
			bar := newProgressBar(stderr)
			hooks := service.Hooks{
				LineLogger: func(msg string) {
					if bar != nil {
						_ = bar.Clear()
					}
					fmt.Fprintf(stderr, "[%s] %s\n", time.Now().Format("15:04:05"), msg)
				},
			}
			if bar != nil {
				hooks.Progress = func(p int) { _ = bar.Set(p) }
			}

			report, err := svc.Run(cmd.Context(), service.Request{
				ResponsesPath: responses,
				RosterPath:    roster,
				OutputPath:    out,
				Hooks:         hooks,
			})
			if bar != nil {
				_ = bar.Finish()
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderReport(report))
			return nil
		},
	}

	cmd.Flags().StringVarP(&responses, "responses", "r", "", "Responses file (xlsx, xlsm or csv)")
	cmd.Flags().StringVarP(&roster, "roster", "R", "", "Roster file (xlsx, xlsm or csv)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file; defaults to the configured output name next to the roster")
	_ = cmd.MarkFlagRequired("responses")
	_ = cmd.MarkFlagRequired("roster")

	return cmd
}

// newProgressBar returns nil unless w is a terminal.
func newProgressBar(w io.Writer) *progressbar.ProgressBar {
	if !isTerminal(w) {
		return nil
	}
	return progressbar.NewOptions(100,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("matching"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func renderReport(r service.Report) string {
	rows := [][]string{
		{"Run", r.RunID},
		{"Responses", strconv.Itoa(r.Responses)},
		{"Roster records", strconv.Itoa(r.RosterSize)},
		{"Matched by name", strconv.Itoa(r.Match.Name)},
		{"Matched by identifier", strconv.Itoa(r.Match.Identifier)},
		{"Matched by similarity", strconv.Itoa(r.Match.Fuzzy)},
		{"Unmatched", strconv.Itoa(len(r.Match.Unmatched))},
		{"Dropped (all slots filled)", strconv.Itoa(r.Match.Dropped)},
		{"SCORE from slot 1", strconv.Itoa(r.Scores.Slot1)},
		{"SCORE fallback", strconv.Itoa(r.Scores.Fallback)},
		{"No SCORE", strconv.Itoa(r.Scores.Empty)},
		{"Output", r.OutputPath},
	}
	return renderTable([]string{"Item", "Value"}, rows, []columnAlignment{alignLeft, alignRight})
}
