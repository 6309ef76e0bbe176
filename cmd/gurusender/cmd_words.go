package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gurusender/internal/compliance"
	"gurusender/internal/config"
	"gurusender/internal/logging"
)

// wordsCmd groups the banned-word commands
var wordsCmd = &cobra.Command{
	Use:   "words",
	Short: "Show or edit the banned-word list",
	RunE:  runWordsList,
}

var wordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the banned words",
	Args:  cobra.NoArgs,
	RunE:  runWordsList,
}

var wordsAddCmd = &cobra.Command{
	Use:   "add [word]...",
	Short: "Add banned words to the config file",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWordsAdd,
}

var wordsRemoveCmd = &cobra.Command{
	Use:   "remove [word]...",
	Short: "Remove banned words from the config file",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWordsRemove,
}

func runWordsList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for _, w := range cfg.Compliance.BannedWords {
		fmt.Fprintln(out, w)
	}
	return nil
}

func runWordsAdd(cmd *cobra.Command, args []string) error {
	return editWords(cmd, func(l *compliance.List) error {
		for _, w := range args {
			added, err := l.Add(w)
			if err != nil {
				return err
			}
			if !added {
				fmt.Fprintf(cmd.OutOrStdout(), "%q is already banned\n", w)
			}
		}
		return nil
	})
}

func runWordsRemove(cmd *cobra.Command, args []string) error {
	return editWords(cmd, func(l *compliance.List) error {
		for _, w := range args {
			if !l.Remove(w) {
				fmt.Fprintf(cmd.OutOrStdout(), "%q is not in the list\n", w)
			}
		}
		return nil
	})
}

// editWords applies edit to the list stored in the file, without env overrides.
func editWords(cmd *cobra.Command, edit func(*compliance.List) error) error {
	stored, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}
	list := compliance.NewList(stored.Compliance.BannedWords)
	if err := edit(list); err != nil {
		return err
	}
	if err := config.SaveWords(configPath, list.Words()); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	logs.Get(logging.CategorySettings).Info("banned words updated",
		zap.String("path", configPath), zap.Int("count", list.Len()))
	fmt.Fprintf(cmd.OutOrStdout(), "%d banned words saved to %s\n", list.Len(), configPath)
	return nil
}
