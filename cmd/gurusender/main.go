package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gurusender/cmd/gurusender/shell"
	"gurusender/cmd/gurusender/ui"
	"gurusender/internal/config"
	"gurusender/internal/logging"
	"gurusender/internal/ux"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Loaded in PersistentPreRunE
	cfg  *config.Config
	logs *logging.Logger
	feed *logging.Feed
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gurusender",
	Short: "Send a personalised chat message to every contact of a spreadsheet",
	Long: `gurusender reads contacts from an .xlsx or .csv file, fills a message
template for each one and opens a chat link per contact, pausing a random
interval between sends.

Run without arguments to start the interactive interface.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config %s: %w", configPath, err)
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		opts := logging.Options{Level: level, File: cfg.Logging.File}
		switch {
		case !cmd.HasParent():
			// The shell shows log lines in its own pane.
			feed = logging.NewFeed(0)
			opts.Sinks = append(opts.Sinks, feed)
		case verbose:
			opts.Sinks = append(opts.Sinks, os.Stderr)
		}

		logs, err = logging.New(opts)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logs.Get(logging.CategoryBoot).Debug("config loaded",
			zap.String("path", configPath),
			zap.String("opener", cfg.Dispatch.Opener),
			zap.String("region", cfg.Phone.Region),
		)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logs != nil {
			_ = logs.Close()
		}
	},
	RunE: runShell,
}

func runShell(cmd *cobra.Command, args []string) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("the interactive interface needs a terminal; use `gurusender send` instead")
	}

	words := newWordList(cfg)
	opener, closeOpener, err := newOpener(cfg, cfg.Dispatch.Opener, nil, logs)
	if err != nil {
		return err
	}
	defer closeOpener()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	bootLog := logs.Get(logging.CategoryBoot)
	prefs := ux.NewPreferencesManager(filepath.Dir(configPath))
	if err := prefs.Load(); err != nil {
		bootLog.Warn("preferences reset", zap.String("path", prefs.Path()), zap.Error(err))
	}
	prefs.StartSession()
	defer func() {
		if err := prefs.Save(); err != nil {
			bootLog.Warn("failed to save preferences", zap.Error(err))
		}
	}()

	model := shell.New(shell.Options{
		Runner:     newRunner(cfg, logs, opener, words),
		Words:      words,
		Config:     cfg,
		ConfigPath: configPath,
		Feed:       feed,
		Prefs:      prefs,
		Logger:     logs.Get(logging.CategorySettings),
		Styles:     ui.NewStyles(ui.ThemeByName(cfg.UI.Theme)),
		Context:    ctx,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	cfgLog := logs.Get(logging.CategoryConfig)
	watcher, err := config.NewWatcher(configPath, cfgLog, func(c *config.Config) {
		words.Replace(c.Compliance.BannedWords)
		p.Send(shell.WordsReloadedMsg{})
	})
	if err != nil {
		cfgLog.Warn("config watcher disabled", zap.Error(err))
	} else if err := watcher.Start(ctx); err != nil {
		watcher.Stop()
		cfgLog.Warn("config watcher disabled", zap.Error(err))
	} else {
		defer watcher.Stop()
	}

	bootLog.Info("shell started", zap.String("config", configPath))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("shell: %w", err)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "Path to the config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	sendCmd.Flags().StringVarP(&sendFile, "file", "f", "", "Contacts spreadsheet (.xlsx or .csv)")
	sendCmd.Flags().StringVarP(&sendMessage, "message", "m", "", "Message template")
	sendCmd.Flags().StringVar(&sendMessageFile, "message-file", "", "Read the message template from a file")
	sendCmd.Flags().BoolVar(&sendDryRun, "dry-run", false, "Print links instead of opening them")

	checkCmd.Flags().StringVarP(&sendFile, "file", "f", "", "Contacts spreadsheet (.xlsx or .csv)")
	checkCmd.Flags().StringVarP(&sendMessage, "message", "m", "", "Message template")
	checkCmd.Flags().StringVar(&sendMessageFile, "message-file", "", "Read the message template from a file")

	wordsCmd.AddCommand(wordsListCmd, wordsAddCmd, wordsRemoveCmd)

	rootCmd.AddCommand(sendCmd, checkCmd, wordsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
