package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/alfredjeanlab/phonecheck/internal/client"
	"github.com/alfredjeanlab/phonecheck/internal/ui"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show the shared lock and today's usage",
	GroupID: "status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		s, err := statusStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		st, err := s.FetchStatus(ctx)
		if err != nil {
			return fmt.Errorf("fetching status: %w", err)
		}

		// Only the status service knows who has been active.
		var ops *client.OperatorsResponse
		if c, ok := s.(*client.HTTPClient); ok {
			if ops, err = c.Operators(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "warning: listing operators: %v\n", err)
			}
		}

		if jsonOutput {
			out := map[string]any{"status": st.Normalize(), "remaining": st.Remaining()}
			if ops != nil {
				out["operators"] = ops.Operators
			}
			return printJSON(cmd.OutOrStdout(), out)
		}

		w := cmd.OutOrStdout()
		printStatus(w, st)
		if ops != nil && len(ops.Operators) > 0 {
			fmt.Fprintln(w)
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "OPERATOR\tLAST ACTION\tSEEN")
			now := time.Now()
			for _, o := range ops.Operators {
				fmt.Fprintf(tw, "%s\t%s\t%s ago\n", o.Name, o.LastAction, formatAgo(now, o.LastSeen))
			}
			tw.Flush()
		}
		if st.Locked {
			fmt.Fprintln(w, ui.RenderMuted("\nA stale lock can be cleared with `phonecheck unlock --force`."))
		}
		return nil
	},
}
