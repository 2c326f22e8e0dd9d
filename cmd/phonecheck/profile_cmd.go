package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:     "profile",
	Short:   "Manage saved client profiles (credentials and report target)",
	GroupID: "profiles",
}

var profileAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add or update a named profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		cfg, err := loadProfiles()
		if err != nil {
			return err
		}

		p := cfg.Profiles[name]
		for flag, dst := range map[string]*string{
			"api-id":   &p.APIID,
			"api-hash": &p.APIHash,
			"sheet":    &p.SheetID,
			"label":    &p.Label,
			"operator": &p.Operator,
		} {
			if cmd.Flags().Changed(flag) {
				*dst, _ = cmd.Flags().GetString(flag)
			}
		}
		cfg.Profiles[name] = p
		if cfg.Active == "" {
			cfg.Active = name
		}
		if err := saveProfiles(cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "profile %q saved\n", name)
		return nil
	},
}

var profileUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Make a profile the default for run and parse",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		cfg, err := loadProfiles()
		if err != nil {
			return err
		}
		if _, ok := cfg.Profiles[name]; !ok {
			return fmt.Errorf("profile %q not found", name)
		}
		cfg.Active = name
		if err := saveProfiles(cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "using profile %q\n", name)
		return nil
	},
}

var profileRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a named profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		cfg, err := loadProfiles()
		if err != nil {
			return err
		}
		if _, ok := cfg.Profiles[name]; !ok {
			return fmt.Errorf("profile %q not found", name)
		}
		delete(cfg.Profiles, name)
		if cfg.Active == name {
			cfg.Active = ""
		}
		if err := saveProfiles(cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "profile %q removed\n", name)
		return nil
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadProfiles()
		if err != nil {
			return err
		}
		if jsonOutput {
			// Secrets stay out of machine-readable output too.
			type row struct {
				Name    string `json:"name"`
				Active  bool   `json:"active"`
				APIID   string `json:"api_id"`
				SheetID string `json:"sheet_id"`
				Label   string `json:"label"`
			}
			rows := make([]row, 0, len(cfg.Profiles))
			for _, name := range sortedProfileNames(cfg) {
				p := cfg.Profiles[name]
				rows = append(rows, row{name, name == cfg.Active, p.APIID, p.SheetID, p.Label})
			}
			return printJSON(cmd.OutOrStdout(), rows)
		}
		if len(cfg.Profiles) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no profiles configured")
			return nil
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  NAME\tLABEL\tSHEET\tAPI ID\tAPI HASH")
		for _, name := range sortedProfileNames(cfg) {
			p := cfg.Profiles[name]
			marker := " "
			if name == cfg.Active {
				marker = "*"
			}
			fmt.Fprintf(w, "%s %s\t%s\t%s\t%s\t%s\n", marker, name, p.Label, p.SheetID, p.APIID, maskSecret(p.APIHash))
		}
		return w.Flush()
	},
}

func sortedProfileNames(cfg ProfilesConfig) []string {
	names := make([]string, 0, len(cfg.Profiles))
	for name := range cfg.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// maskSecret keeps the last four characters of s.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

func init() {
	profileAddCmd.Flags().String("api-id", "", "lookup API id")
	profileAddCmd.Flags().String("api-hash", "", "lookup API hash")
	profileAddCmd.Flags().String("sheet", "", "report spreadsheet id")
	profileAddCmd.Flags().String("label", "", "report worksheet label (usually the client name)")

	profileCmd.AddCommand(profileAddCmd)
	profileCmd.AddCommand(profileUseCmd)
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileRemoveCmd)
}
