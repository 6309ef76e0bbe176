package dispatch

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/pkg/browser"
	"go.uber.org/zap"

	navigator "gurusender/internal/browser"
)

// Opener kinds accepted by NewOpener.
const (
	KindSystem = "system"
	KindRod    = "rod"
	KindDryRun = "dry-run"
)

// Kinds lists the valid opener kinds.
func Kinds() []string {
	return []string{KindSystem, KindRod, KindDryRun}
}

// Opener opens a chat link. Success means only that the link was handed
// over without error; delivery is never confirmed.
type Opener interface {
	Open(ctx context.Context, link string) error
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(ctx context.Context, link string) error

func (f OpenerFunc) Open(ctx context.Context, link string) error { return f(ctx, link) }

// LaunchError wraps a failure to open a link.
type LaunchError struct {
	Link string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("open link: %v", e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// SystemOpener hands links to the operating system's default browser.
type SystemOpener struct {
	open func(string) error
}

var quietOnce sync.Once

// NewSystemOpener returns an opener backed by xdg-open, open or
// rundll32 depending on the platform.
func NewSystemOpener() *SystemOpener {
	// The helper programs print to the terminal, which corrupts the TUI.
	quietOnce.Do(func() {
		browser.Stdout = io.Discard
		browser.Stderr = io.Discard
	})
	return &SystemOpener{open: browser.OpenURL}
}

func (o *SystemOpener) Open(ctx context.Context, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := o.open(link); err != nil {
		return &LaunchError{Link: link, Err: err}
	}
	return nil
}

// RodOpener opens links in a Chrome tab driven through go-rod.
type RodOpener struct {
	nav *navigator.Navigator
}

// NewRodOpener wraps a navigator built from cfg.
func NewRodOpener(cfg navigator.Config, log *zap.Logger) *RodOpener {
	return &RodOpener{nav: navigator.NewNavigator(cfg, log)}
}

func (o *RodOpener) Open(ctx context.Context, link string) error {
	if err := o.nav.Open(ctx, link); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &LaunchError{Link: link, Err: err}
	}
	return nil
}

// Close shuts down the driven browser.
func (o *RodOpener) Close() error { return o.nav.Close() }

// DryRunOpener records links instead of opening them.
type DryRunOpener struct {
	mu    sync.Mutex
	out   io.Writer
	links []string
}

// NewDryRunOpener returns an opener that writes each link to out, if non-nil.
func NewDryRunOpener(out io.Writer) *DryRunOpener {
	return &DryRunOpener{out: out}
}

func (o *DryRunOpener) Open(ctx context.Context, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.links = append(o.links, link)
	if o.out != nil {
		fmt.Fprintf(o.out, "[dry-run] %s\n", link)
	}
	return nil
}

// Links returns the links opened so far.
func (o *DryRunOpener) Links() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.links)
}

// NewOpener builds the opener named by kind. The caller closes the result
// if it implements io.Closer.
func NewOpener(kind string, bcfg navigator.Config, out io.Writer, log *zap.Logger) (Opener, error) {
	switch kind {
	case "", KindSystem:
		return NewSystemOpener(), nil
	case KindRod:
		return NewRodOpener(bcfg, log), nil
	case KindDryRun:
		return NewDryRunOpener(out), nil
	default:
		return nil, fmt.Errorf("unknown opener %q (valid: %v)", kind, Kinds())
	}
}
