package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var unlockForce bool

var unlockCmd = &cobra.Command{
	Use:   "unlock --force",
	Short: "Clear a stale shared lock",
	Long: `Clear the shared lock unconditionally.

Use this only when the session holding the lock is gone (crashed, closed
without releasing). Clearing a lock held by a live run lets a second run start
alongside it.`,
	GroupID: "status",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !unlockForce {
			return errors.New("refusing to clear the lock without --force")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		s, err := statusStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		before, err := s.FetchStatus(ctx)
		if err != nil {
			return fmt.Errorf("fetching status: %w", err)
		}
		if err := s.ReleaseLock(ctx); err != nil {
			return fmt.Errorf("releasing lock: %w", err)
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"released":   before.Locked,
				"previously": before.LockedBy,
			})
		}
		switch {
		case !before.Locked:
			fmt.Fprintln(cmd.OutOrStdout(), "lock was not held")
		case before.LockedBy != "":
			fmt.Fprintf(cmd.OutOrStdout(), "lock released (was held by %s)\n", before.LockedBy)
		default:
			fmt.Fprintln(cmd.OutOrStdout(), "lock released")
		}
		return nil
	},
}

func init() {
	unlockCmd.Flags().BoolVar(&unlockForce, "force", false, "confirm clearing the lock")
}
