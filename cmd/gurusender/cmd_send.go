package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"gurusender/internal/dispatch"
	"gurusender/internal/sender"
)

var (
	sendFile        string
	sendMessage     string
	sendMessageFile string
	sendDryRun      bool
)

// sendCmd runs a batch without the interactive shell
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send the message to every contact of a spreadsheet",
	Long: `Loads the spreadsheet, renders the message for each contact and opens
one chat link per contact, pausing between sends. Ctrl+C stops the batch and
skips the remaining contacts.

Example:
  gurusender send -f contatos.xlsx -m "Olá {nome}, tudo bem?"
  gurusender send -f contatos.csv --message-file convite.txt --dry-run`,
	Args: cobra.NoArgs,
	RunE: runSend,
}

func runSend(cmd *cobra.Command, args []string) error {
	text, err := readMessage(sendMessage, sendMessageFile)
	if err != nil {
		return err
	}
	plan, err := sender.Prepare(sendFile, text, cfg.ContactOptions(), cfg.Message.Placeholder)
	if err != nil {
		return err
	}

	// The dry-run opener and the event printer write from different goroutines.
	out := zapcore.Lock(zapcore.AddSync(cmd.OutOrStdout()))
	kind := cfg.Dispatch.Opener
	if sendDryRun {
		kind = dispatch.KindDryRun
	}
	opener, release, err := newOpener(cfg, kind, out, logs)
	if err != nil {
		return err
	}
	defer release()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := newRunner(cfg, logs, opener, newWordList(cfg))
	events := make(chan sender.Event)

	var (
		g   errgroup.Group
		sum sender.Summary
	)
	g.Go(func() error {
		var err error
		sum, err = runner.Run(ctx, plan, events)
		return err
	})
	g.Go(func() error {
		for ev := range events {
			printEvent(out, ev)
		}
		return nil
	})
	runErr := g.Wait()

	printSummary(out, sum)
	if errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("interrupted: %d contacts skipped", sum.Skipped)
	}
	return runErr
}

func printEvent(w io.Writer, ev sender.Event) {
	p := ev.Progress
	switch ev.Kind {
	case sender.EventStarted:
		fmt.Fprintf(w, "Sending to %d contacts (run %s)\n", p.Total, ev.RunID)
	case sender.EventSent:
		fmt.Fprintf(w, "[%d/%d] sent    row %d  %s (%s)\n", p.Done(), p.Total, ev.Row, ev.Name, ev.Phone)
	case sender.EventFailed:
		fmt.Fprintf(w, "[%d/%d] failed  row %d  %s: %v\n", p.Done(), p.Total, ev.Row, ev.Reason, ev.Err)
	case sender.EventWaiting:
		fmt.Fprintf(w, "        waiting %s\n", ev.Delay)
	}
}

func printSummary(w io.Writer, s sender.Summary) {
	fmt.Fprintf(w, "\nTotal: %d  Sent: %d  Failed: %d  Skipped: %d\n", s.Total, s.Sent, s.Failed, s.Skipped)
	reasons := make([]sender.Reason, 0, len(s.Failures))
	for r := range s.Failures {
		reasons = append(reasons, r)
	}
	slices.Sort(reasons)
	for _, r := range reasons {
		fmt.Fprintf(w, "  %s: %d\n", r, s.Failures[r])
	}
}
