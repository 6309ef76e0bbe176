package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gurusender/internal/sender"
)

// checkCmd previews a batch without opening anything
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Render and screen every row without sending",
	Long: `Runs the same per-row checks as send (required cells, banned words,
phone validation, link building) and prints the outcome of each row.
Exits with an error if any row would fail.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	text, err := readMessage(sendMessage, sendMessageFile)
	if err != nil {
		return err
	}
	plan, err := sender.Prepare(sendFile, text, cfg.ContactOptions(), cfg.Message.Placeholder)
	if err != nil {
		return err
	}

	runner := newRunner(cfg, logs, nil, newWordList(cfg))
	results := runner.Check(plan)

	out := cmd.OutOrStdout()
	failed := 0
	for _, r := range results {
		if r.OK() {
			fmt.Fprintf(out, "ok      row %d  %s  %s\n", r.Row, r.Phone, r.Link)
			continue
		}
		failed++
		fmt.Fprintf(out, "FAIL    row %d  %s: %v\n", r.Row, r.Reason, r.Err)
	}
	fmt.Fprintf(out, "\n%d rows, %d ok, %d failing\n", len(results), len(results)-failed, failed)

	if failed > 0 {
		return fmt.Errorf("%d of %d rows would fail", failed, len(results))
	}
	return nil
}
