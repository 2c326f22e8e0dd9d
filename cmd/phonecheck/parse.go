package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/alfredjeanlab/phonecheck/internal/model"
	"github.com/alfredjeanlab/phonecheck/internal/quota"
	"github.com/alfredjeanlab/phonecheck/internal/ui"
	"github.com/spf13/cobra"
)

var parseFlags requestFlags

var parseCmd = &cobra.Command{
	Use:     "parse [numbers...]",
	Short:   "Show how input would be parsed and whether it would be admitted",
	GroupID: "runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := buildRequest(cmd, &parseFlags, args, os.Stdin)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		var (
			st       model.SystemStatus
			statusOK bool
		)
		if s, err := statusStore(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		} else {
			defer s.Close()
			if st, err = s.FetchStatus(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "warning: fetching status: %v\n", err)
			} else {
				statusOK = true
			}
		}

		var decision *quota.Decision
		if statusOK {
			d := quota.CanAdmit(st, len(req.Identifiers))
			decision = &d
		}
		validation := model.ValidateBatchRequest(&req)

		if jsonOutput {
			out := map[string]any{
				"identifiers": req.Identifiers,
				"count":       len(req.Identifiers),
			}
			if decision != nil {
				out["status"] = st.Normalize()
				out["admit"] = decision.Admit
				out["remaining"] = decision.Remaining
				if decision.Reason != nil {
					out["reason"] = decision.Reason.Error()
				}
			}
			if validation != nil {
				out["validation"] = validation.Error()
			}
			return printJSON(cmd.OutOrStdout(), out)
		}

		w := cmd.OutOrStdout()
		for i, id := range req.Identifiers {
			fmt.Fprintf(w, "%4d  %s\n", i+1, id)
		}
		fmt.Fprintf(w, "\n%d numbers\n", len(req.Identifiers))

		var ve *model.ValidationError
		if errors.As(validation, &ve) {
			for _, fe := range ve.Errors {
				fmt.Fprintln(w, ui.RenderWarning(fmt.Sprintf("missing %s: %s", fe.Field, fe.Message)))
			}
		}

		switch {
		case decision == nil:
			fmt.Fprintln(w, ui.RenderMuted("status unavailable; admission not checked"))
		case decision.Admit:
			fmt.Fprintln(w, ui.RenderSuccess(fmt.Sprintf("would be admitted (%d remaining today)", decision.Remaining)))
		case decision.Reason != nil:
			fmt.Fprintln(w, ui.RenderError(decision.Reason.Error()))
		default:
			fmt.Fprintln(w, ui.RenderMuted("nothing to check"))
		}
		return nil
	},
}

func init() {
	addRequestFlags(parseCmd, &parseFlags)
}
