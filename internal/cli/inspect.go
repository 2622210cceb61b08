package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/raysh454/thamos/internal/analyzer"
	"github.com/raysh454/thamos/internal/model"
)

func newLogCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "log [ANALYSIS_ID]",
		Short: "Print the log of an analysis, the last submitted one by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := s.resolveID(cmd.Context(), args)
			if err != nil {
				return err
			}
			return s.app.WithAPIClient(cmd.Context(), func(ctx context.Context, an *analyzer.Analyzer) error {
				log, err := an.GetLog(ctx, id)
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), log)
				return err
			})
		},
	}
}

func newStatusCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "status [ANALYSIS_ID]",
		Short: "Print the status of an analysis, the last submitted one by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := s.resolveID(cmd.Context(), args)
			if err != nil {
				return err
			}
			return s.app.WithAPIClient(cmd.Context(), func(ctx context.Context, an *analyzer.Analyzer) error {
				status, err := an.GetStatus(ctx, id)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), model.AnalysisStatusResponse{AnalysisID: id, Status: status})
			})
		},
	}
}

func newHistoryCmd(s *session) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List analyses submitted from this machine, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := s.history()
			if err != nil {
				return err
			}
			analyses, err := reg.List(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list analyses: %w", err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ANALYSIS ID\tKIND\tHOST\tSUBMITTED\tOUTCOME")
			for _, a := range analyses {
				outcome := a.Outcome
				if a.FinishedAt.IsZero() {
					outcome = "pending"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					a.AnalysisID, a.Kind, a.Host, a.SubmittedAt.Local().Format(time.DateTime), outcome)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of analyses to list, 0 lists all")
	return cmd
}
