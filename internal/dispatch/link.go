// Package dispatch turns a validated contact and rendered message into a
// chat deep link and hands it to something that can open it.
package dispatch

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// DefaultBaseURL is the click-to-chat endpoint.
const DefaultBaseURL = "https://wa.me"

// ErrInvalidPhone is returned when the phone is not a plain digit string.
var ErrInvalidPhone = errors.New("phone must contain only digits")

// BuildLink returns "<base>/<phone>?text=<message>". Spaces are escaped as
// %20 rather than "+", which some chat web clients render literally, and "/"
// is left as is.
func BuildLink(base, phone, text string) (string, error) {
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("base url %q must be http or https", base)
	}
	if u.Host == "" {
		return "", fmt.Errorf("base url %q has no host", base)
	}
	if !digitsOnly(phone) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPhone, phone)
	}

	escaped := strings.NewReplacer("+", "%20", "%2F", "/").Replace(url.QueryEscape(text))
	return strings.TrimRight(base, "/") + "/" + phone + "?text=" + escaped, nil
}

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
