package main

import (
	"context"
	"fmt"
	"time"

	"github.com/alfredjeanlab/phonecheck/internal/client"
	"github.com/spf13/cobra"
)

var healthGRPCAddr string

var healthCmd = &cobra.Command{
	Use:     "health",
	Short:   "Check the health of the status service",
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		var (
			status string
			want   string
		)
		if healthGRPCAddr != "" {
			hc, err := client.NewGRPCHealthClient(healthGRPCAddr, session.Token)
			if err != nil {
				return err
			}
			defer hc.Close()
			if status, err = hc.Health(ctx, client.StatusServiceName); err != nil {
				return fmt.Errorf("checking health: %w", err)
			}
			want = "SERVING"
		} else {
			var err error
			if status, err = serviceClient().Health(ctx); err != nil {
				return fmt.Errorf("checking health: %w", err)
			}
			want = "ok"
		}

		if jsonOutput {
			if err := printJSON(cmd.OutOrStdout(), map[string]string{"status": status}); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Health: %s\n", status)
		}

		if status != want {
			return fmt.Errorf("unhealthy: %s", status)
		}
		return nil
	},
}

func init() {
	healthCmd.Flags().StringVar(&healthGRPCAddr, "grpc", "", "check the gRPC health service at this address instead of HTTP")
}
