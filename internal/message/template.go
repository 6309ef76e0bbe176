// Package message parses and renders the per-contact message template.
//
// Templates use single-brace placeholders such as "Olá {nome}!". Keys are
// case-insensitive and refer to spreadsheet column headers. A doubled brace
// ("{{" or "}}") produces a literal brace.
package message

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrEmptyTemplate is returned for a template that is blank after trimming.
var ErrEmptyTemplate = errors.New("message template is empty")

// SyntaxError reports a malformed placeholder.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("template syntax error at offset %d: %s", e.Offset, e.Msg)
}

// MissingKeyError reports that the template lacks the required placeholder.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("template must contain the {%s} placeholder", e.Key)
}

// UnknownKeyError lists placeholders no spreadsheet column provides.
type UnknownKeyError struct {
	Keys []string
}

func (e *UnknownKeyError) Error() string {
	wrapped := make([]string, len(e.Keys))
	for i, k := range e.Keys {
		wrapped[i] = "{" + k + "}"
	}
	return "template references unknown columns: " + strings.Join(wrapped, ", ")
}

type segment struct {
	text  string
	isKey bool
}

// Template is a parsed message template.
type Template struct {
	source   string
	segments []segment
	keys     []string
}

// Parse trims text and parses it. When required is not empty the template
// must reference that key.
func Parse(text, required string) (*Template, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyTemplate
	}

	t := &Template{source: text}
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			t.segments = append(t.segments, segment{text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(text); i++ {
		switch c := text[i]; c {
		case '{':
			if i+1 < len(text) && text[i+1] == '{' {
				lit.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(text[i+1:], '}')
			if end < 0 {
				return nil, &SyntaxError{Offset: i, Msg: "unterminated placeholder"}
			}
			key := normalizeKey(text[i+1 : i+1+end])
			if key == "" {
				return nil, &SyntaxError{Offset: i, Msg: "empty placeholder"}
			}
			if strings.ContainsRune(key, '{') {
				return nil, &SyntaxError{Offset: i, Msg: "nested placeholder"}
			}
			flush()
			t.segments = append(t.segments, segment{text: key, isKey: true})
			if !slices.Contains(t.keys, key) {
				t.keys = append(t.keys, key)
			}
			i += end + 1
		case '}':
			if i+1 < len(text) && text[i+1] == '}' {
				lit.WriteByte('}')
				i++
				continue
			}
			return nil, &SyntaxError{Offset: i, Msg: "single '}' encountered"}
		default:
			lit.WriteByte(c)
		}
	}
	flush()

	if required = normalizeKey(required); required != "" && !slices.Contains(t.keys, required) {
		return nil, &MissingKeyError{Key: required}
	}
	return t, nil
}

// Source returns the trimmed template text.
func (t *Template) Source() string { return t.source }

// Keys returns the distinct placeholder keys in order of first appearance.
func (t *Template) Keys() []string { return slices.Clone(t.keys) }

// CheckFields verifies that every placeholder is among the available column
// names (compared case-insensitively).
func (t *Template) CheckFields(available []string) error {
	have := make(map[string]struct{}, len(available))
	for _, a := range available {
		have[normalizeKey(a)] = struct{}{}
	}
	var unknown []string
	for _, k := range t.keys {
		if _, ok := have[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		return &UnknownKeyError{Keys: unknown}
	}
	return nil
}

// Render substitutes fields into the template. Field keys are matched
// case-insensitively; a missing field renders as an empty string.
func (t *Template) Render(fields map[string]string) string {
	lookup := make(map[string]string, len(fields))
	for k, v := range fields {
		lookup[normalizeKey(k)] = v
	}

	var sb strings.Builder
	sb.Grow(len(t.source))
	for _, s := range t.segments {
		if s.isKey {
			sb.WriteString(lookup[s.text])
			continue
		}
		sb.WriteString(s.text)
	}
	return sb.String()
}

func normalizeKey(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}
