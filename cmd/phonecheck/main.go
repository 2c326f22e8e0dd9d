package main

import (
	"os"
	"os/exec"
	"strings"

	"github.com/alfredjeanlab/phonecheck/internal/config"
	"github.com/spf13/cobra"
)

var (
	serverURL  string
	authToken  string
	jsonOutput bool
	operator   string

	session *config.Session
)

func defaultOperator() string {
	out, err := exec.Command("git", "config", "user.name").Output()
	if err == nil {
		name := strings.TrimSpace(string(out))
		if name != "" {
			return name
		}
	}
	return "unknown"
}

var rootCmd = &cobra.Command{
	Use:          "phonecheck <command>",
	Short:        "Rate-limited phone number lookups shared between operators",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := config.LoadSession()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("server") {
			s.ServerURL = serverURL
		}
		if cmd.Flags().Changed("token") {
			s.Token = authToken
		}
		session = s
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "status service URL (default $PHONECHECK_SERVER or http://localhost:8080)")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", "", "bearer token for the status service (default $PHONECHECK_TOKEN)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().StringVar(&operator, "operator", defaultOperator(), "operator name recorded on the lock and in reports")

	rootCmd.AddGroup(
		&cobra.Group{ID: "runs", Title: "Runs:"},
		&cobra.Group{ID: "status", Title: "Status:"},
		&cobra.Group{ID: "profiles", Title: "Profiles:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false
	rootCmd.SetHelpFunc(colorizedHelpFunc())

	// Runs
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(parseCmd)

	// Status
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(unlockCmd)

	// Profiles
	rootCmd.AddCommand(profileCmd)

	// System
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(healthCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
