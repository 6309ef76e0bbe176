package main

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"gurusender/internal/compliance"
	"gurusender/internal/config"
	"gurusender/internal/dispatch"
	"gurusender/internal/logging"
	"gurusender/internal/pacing"
	"gurusender/internal/phone"
	"gurusender/internal/sender"
)

func newWordList(c *config.Config) *compliance.List {
	return compliance.NewList(c.Compliance.BannedWords)
}

// newOpener builds the configured opener. The returned func releases it.
func newOpener(c *config.Config, kind string, out io.Writer, logs *logging.Logger) (dispatch.Opener, func(), error) {
	log := logs.Get(logging.CategoryDispatch)
	o, err := dispatch.NewOpener(kind, c.BrowserOptions(), out, log)
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		if closer, ok := o.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				log.Warn("failed to close opener", zap.Error(err))
			}
		}
	}
	return o, release, nil
}

func newRunner(c *config.Config, logs *logging.Logger, opener dispatch.Opener, words *compliance.List) *sender.Runner {
	return sender.New(sender.Deps{
		Opener:    opener,
		Validator: phone.New(c.Phone.Region),
		Words:     words,
		Pacer:     pacing.New(c.GetMinDelay(), c.GetMaxDelay()),
		BaseURL:   c.Dispatch.BaseURL,
		Logger:    logs.Get(logging.CategoryCampaign),
	})
}

// readMessage returns the template text from the flag or the file.
func readMessage(text, path string) (string, error) {
	if path == "" {
		return text, nil
	}
	if text != "" {
		return "", fmt.Errorf("--message and --message-file are mutually exclusive")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read message file: %w", err)
	}
	return string(data), nil
}
