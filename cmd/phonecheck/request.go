package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alfredjeanlab/phonecheck/internal/model"
	"github.com/spf13/cobra"
)

// requestFlags are the batch-request flags shared by run and parse. Empty
// values fall back to the selected profile.
type requestFlags struct {
	profile string
	apiID   string
	apiHash string
	sheetID string
	label   string
	file    string
}

func addRequestFlags(cmd *cobra.Command, f *requestFlags) {
	cmd.Flags().StringVarP(&f.profile, "profile", "p", "", "profile to use (default: the active profile)")
	cmd.Flags().StringVar(&f.apiID, "api-id", "", "lookup API id")
	cmd.Flags().StringVar(&f.apiHash, "api-hash", "", "lookup API hash")
	cmd.Flags().StringVar(&f.sheetID, "sheet", "", "report spreadsheet id")
	cmd.Flags().StringVar(&f.label, "label", "", "report worksheet label")
	cmd.Flags().StringVarP(&f.file, "file", "f", "", `read numbers from a file, one per line ("-" for stdin)`)
}

// buildRequest assembles the batch request from the profile, the flags and
// the identifiers given as arguments or via --file.
func buildRequest(cmd *cobra.Command, f *requestFlags, args []string, stdin io.Reader) (model.BatchRequest, error) {
	p, err := resolveProfile(f.profile)
	if err != nil {
		return model.BatchRequest{}, err
	}
	ids, err := readIdentifiers(f.file, args, stdin)
	if err != nil {
		return model.BatchRequest{}, err
	}
	op := operator
	if !cmd.Flags().Changed("operator") && p.Operator != "" {
		op = p.Operator
	}
	return mergeRequest(p, *f, op, ids), nil
}

func mergeRequest(p Profile, f requestFlags, op string, ids []string) model.BatchRequest {
	pick := func(flag, fallback string) string {
		if flag != "" {
			return flag
		}
		return fallback
	}
	return model.BatchRequest{
		Credentials: model.Credentials{
			APIID:   pick(f.apiID, p.APIID),
			APIHash: pick(f.apiHash, p.APIHash),
		},
		ReportTarget: model.ReportTarget{
			SheetID: pick(f.sheetID, p.SheetID),
			Label:   pick(f.label, p.Label),
		},
		Identifiers: ids,
		Operator:    op,
	}
}

// readIdentifiers parses numbers from args followed by the contents of file.
func readIdentifiers(file string, args []string, stdin io.Reader) ([]string, error) {
	var b strings.Builder
	for _, a := range args {
		b.WriteString(a)
		b.WriteByte('\n')
	}
	switch file {
	case "":
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		b.Write(data)
	default:
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading numbers: %w", err)
		}
		b.Write(data)
	}
	return model.ParseIdentifiers(b.String()), nil
}
