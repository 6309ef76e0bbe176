package sender

import (
	"strings"

	"gurusender/internal/contacts"
	"gurusender/internal/message"
)

// Prepare parses the template and loads the contacts file. The template is
// checked first so a bad message is reported without touching the file.
// Every failure is an *AbortError.
func Prepare(path, text string, opts contacts.Options, placeholder string) (*Plan, error) {
	if strings.TrimSpace(path) == "" {
		return nil, &AbortError{Stage: StageInput, Err: ErrNoFile}
	}

	tmpl, err := message.Parse(text, placeholder)
	if err != nil {
		return nil, &AbortError{Stage: StageTemplate, Err: err}
	}

	book, err := contacts.Load(path, opts)
	if err != nil {
		return nil, &AbortError{Stage: StageLoad, Err: err}
	}

	if err := tmpl.CheckFields(book.Header); err != nil {
		return nil, &AbortError{Stage: StageTemplate, Err: err}
	}

	return &Plan{Book: book, Template: tmpl}, nil
}
