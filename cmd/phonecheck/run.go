package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alfredjeanlab/phonecheck/internal/config"
	"github.com/alfredjeanlab/phonecheck/internal/events"
	"github.com/alfredjeanlab/phonecheck/internal/lock"
	"github.com/alfredjeanlab/phonecheck/internal/lookup"
	"github.com/alfredjeanlab/phonecheck/internal/model"
	"github.com/alfredjeanlab/phonecheck/internal/report"
	"github.com/alfredjeanlab/phonecheck/internal/runner"
	"github.com/alfredjeanlab/phonecheck/internal/status"
	"github.com/alfredjeanlab/phonecheck/internal/ui"
	"github.com/spf13/cobra"
	"google.golang.org/api/option"
)

var (
	runFlags  requestFlags
	noReport  bool
	noArchive bool
)

var runCmd = &cobra.Command{
	Use:   "run [numbers...]",
	Short: "Check a batch of numbers and write the found ones to the report sheet",
	Long: `Check a batch of numbers against the lookup service.

The run is refused when another operator holds the shared lock or when the
batch is larger than what is left of today's shared limit. Numbers are checked
one at a time with a 40-80 second pause in between; found numbers are written
to the report sheet when the batch ends. Ctrl-C stops after the current number
and still writes what was found.`,
	GroupID: "runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		if !ui.ShouldUseColor() {
			ui.ForceNoColor()
		}

		req, err := buildRequest(cmd, &runFlags, args, os.Stdin)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := statusStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		mirror := status.NewMirror(st, session.StatusInterval, logger)
		if err := mirror.Refresh(ctx); err != nil {
			return fmt.Errorf("fetching shared status: %w", err)
		}
		mirror.Start()
		defer mirror.Stop()

		reporter, err := buildReporter(ctx, session)
		if err != nil {
			return err
		}

		log := events.NewLog()
		log.Subscribe(func(e model.LogEntry) {
			if jsonOutput {
				_ = printJSONLine(os.Stdout, e)
				return
			}
			fmt.Println(ui.FormatEntry(e))
		})

		var r *runner.Runner
		if session.NATSURL != "" {
			pub, err := events.NewNATSPublisher(session.NATSURL)
			if err != nil {
				logger.Warn("run log mirroring disabled", "nats_url", session.NATSURL, "err", err)
			} else {
				defer pub.Close()
				log.Subscribe(events.Forward(pub, func() string { return r.Status().RunID }, req.Operator, logger))
			}
		}

		r = runner.New(runner.Config{
			Mirror:   mirror,
			Lock:     lock.NewCoordinator(st, mirror, logger),
			Lookup:   lookup.NewHTTPClient(session.LookupURL, session.LookupToken),
			Reporter: reporter,
			Usage:    st,
			Log:      log,
			Pacing: runner.Pacing{
				Min:  session.PauseMin,
				Max:  session.PauseMax,
				Unit: session.PauseUnit,
			},
			Logger: logger,
		})

		summary, err := r.Run(ctx, req)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(os.Stdout, newSummaryView(summary))
		}
		if summary.Interrupted {
			return fmt.Errorf("run interrupted after %d of %d numbers", summary.Attempted, summary.Total)
		}
		return nil
	},
}

// buildReporter wires the Google Sheets sink and, when configured, the S3
// archive of every report payload.
func buildReporter(ctx context.Context, s *config.Session) (report.Reporter, error) {
	var multi report.Multi
	if !noReport {
		var opts []option.ClientOption
		if s.GoogleCredentials != "" {
			opts = append(opts, option.WithCredentialsFile(s.GoogleCredentials))
		}
		if s.SheetsEndpoint != "" {
			opts = append(opts, option.WithEndpoint(s.SheetsEndpoint))
		}
		sheets, err := report.NewSheetsReporter(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("creating sheets client: %w", err)
		}
		multi = append(multi, report.Named{Name: "sheets", Reporter: sheets})
	}
	if s.ArchiveS3Bucket != "" && !noArchive {
		archive, err := report.NewS3Archive(ctx, s.ArchiveS3Bucket, s.ArchiveS3Prefix, s.ArchiveS3Region, s.ArchiveS3Endpoint)
		if err != nil {
			return nil, fmt.Errorf("creating S3 archive: %w", err)
		}
		multi = append(multi, report.Named{Name: "s3 archive", Reporter: archive})
	}
	if len(multi) == 0 {
		return report.Noop{}, nil
	}
	return multi, nil
}

func init() {
	addRequestFlags(runCmd, &runFlags)
	runCmd.Flags().BoolVar(&noReport, "no-report", false, "do not write found numbers to the report sheet")
	runCmd.Flags().BoolVar(&noArchive, "no-archive", false, "do not archive the report payload to S3")
}
