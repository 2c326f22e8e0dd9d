package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/alfredjeanlab/phonecheck/internal/events"
	"github.com/alfredjeanlab/phonecheck/internal/model"
	"github.com/alfredjeanlab/phonecheck/internal/store"
	"github.com/alfredjeanlab/phonecheck/internal/ui"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Short:   "Follow lock changes, usage and other operators' runs live",
	GroupID: "status",
	RunE: func(cmd *cobra.Command, args []string) error {
		interval, _ := cmd.Flags().GetDuration("interval")
		if !ui.ShouldUseColor() {
			ui.ForceNoColor()
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		if session.NATSURL != "" {
			return watchNATS(ctx, cmd.OutOrStdout(), session.NATSURL)
		}

		s, err := statusStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()
		return watchPoll(ctx, cmd.OutOrStdout(), s, interval)
	},
}

// watchNATS prints every phonecheck event until ctx is done.
func watchNATS(ctx context.Context, w io.Writer, natsURL string) error {
	sub, err := events.NewNATSSubscriber(natsURL,
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats: disconnected", "err", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			slog.Info("nats: reconnected")
		}),
	)
	if err != nil {
		return fmt.Errorf("connecting to NATS: %w", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(events.TopicAll)
	if err != nil {
		return fmt.Errorf("subscribing to events: %w", err)
	}
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case env, ok := <-ch:
			if !ok {
				return nil
			}
			if jsonOutput {
				_ = printJSONLine(w, env)
				continue
			}
			if line, ok := describeEnvelope(env); ok {
				fmt.Fprintln(w, line)
			}
		}
	}
}

// describeEnvelope renders an event as one terminal line. Unknown topics
// report false.
func describeEnvelope(env events.Envelope) (string, bool) {
	ts := ui.RenderMuted(env.Sent.Local().Format("15:04:05"))
	switch env.Topic {
	case events.TopicLockAcquired:
		var ev events.LockAcquired
		if env.Decode(&ev) != nil {
			return "", false
		}
		return ts + "  " + ui.RenderWarning("lock acquired by "+ev.Operator), true
	case events.TopicLockReleased:
		var ev events.LockReleased
		if env.Decode(&ev) != nil {
			return "", false
		}
		msg := "lock released"
		if ev.Operator != "" {
			msg += " by " + ev.Operator
		}
		return ts + "  " + ui.RenderSuccess(msg), true
	case events.TopicUsageRecorded:
		var ev events.UsageRecorded
		if env.Decode(&ev) != nil {
			return "", false
		}
		return fmt.Sprintf("%s  usage +%d (%d/%d today)", ts, ev.Count, ev.DailyUsed, model.DailyLimit), true
	}

	var ev events.RunLogged
	if env.Decode(&ev) != nil || ev.RunID == "" || env.Topic != events.RunLogTopic(ev.RunID) {
		return "", false
	}
	e := ev.Entry
	return ui.RenderMuted(e.Timestamp.Local().Format("15:04:05")) + "  " +
		ui.RenderAccent("["+ev.Operator+"]") + " " + ui.RenderLevel(e.Level, e.Message), true
}

// watchPoll prints the status whenever it changes.
func watchPoll(ctx context.Context, w io.Writer, s store.StatusReader, interval time.Duration) error {
	var (
		last  model.SystemStatus
		first = true
	)
	check := func() {
		st, err := s.FetchStatus(ctx)
		if err != nil {
			if ctx.Err() == nil {
				slog.Warn("fetching status failed", "err", err)
			}
			return
		}
		st = st.Normalize()
		if !first && st == last {
			return
		}
		first = false
		last = st
		if jsonOutput {
			_ = printJSONLine(w, st)
			return
		}
		fmt.Fprintln(w, ui.RenderMuted(time.Now().Format("15:04:05")))
		printStatus(w, st)
	}

	check()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			check()
		}
	}
}

func init() {
	watchCmd.Flags().Duration("interval", 10*time.Second, "poll interval when NATS is not configured")
}
