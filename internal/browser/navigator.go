// Package browser drives a Chrome instance over the DevTools protocol to
// open chat links in a single reusable tab.
//
// Unlike handing links to the OS, a driven browser keeps one profile (and its
// chat web session) alive across the whole run and reports navigation
// failures instead of firing and forgetting.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// Config holds browser configuration.
type Config struct {
	Bin               string   // Chrome binary; empty lets rod locate or download one
	Flags             []string // extra launch flags, e.g. "--lang=pt-BR"
	DebuggerURL       string   // attach to a running Chrome instead of launching
	UserDataDir       string   // persistent profile so the chat session survives restarts
	Headless          bool
	NavigationTimeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Headless:          false,
		NavigationTimeout: 30 * time.Second,
	}
}

// navigationTimeout returns the navigation timeout.
func (c Config) navigationTimeout() time.Duration {
	if c.NavigationTimeout <= 0 {
		return 30 * time.Second
	}
	return c.NavigationTimeout
}

// Navigator owns the Chrome connection and the tab links are opened in.
type Navigator struct {
	cfg        Config
	log        *zap.Logger
	mu         sync.Mutex
	browser    *rod.Browser
	page       *rod.Page
	launched   bool // we started Chrome and must close it
	controlURL string
}

// NewNavigator creates a navigator. Chrome is started lazily on first Open.
func NewNavigator(cfg Config, log *zap.Logger) *Navigator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Navigator{cfg: cfg, log: log}
}

// Start connects to an existing Chrome or launches a new one.
func (n *Navigator) Start(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.startLocked(ctx)
}

func (n *Navigator) startLocked(ctx context.Context) error {
	if n.browser != nil {
		if _, err := n.browser.Version(); err == nil {
			return nil
		}
		n.log.Warn("stale browser connection, reconnecting")
		_ = n.resetLocked()
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	controlURL := n.cfg.DebuggerURL
	launched := false
	if controlURL == "" {
		l := launcher.New().Headless(n.cfg.Headless)
		if n.cfg.Bin != "" {
			l = l.Bin(n.cfg.Bin)
		}
		if n.cfg.UserDataDir != "" {
			l = l.UserDataDir(n.cfg.UserDataDir)
		}
		for _, raw := range n.cfg.Flags {
			name, val, hasVal := strings.Cut(strings.TrimLeft(raw, "-"), "=")
			if hasVal {
				l = l.Set(flags.Flag(name), val)
			} else {
				l = l.Set(flags.Flag(name))
			}
		}
		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("launch chrome: %w", err)
		}
		controlURL = u
		launched = true
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return fmt.Errorf("connect to chrome: %w", err)
	}

	n.browser = b
	n.launched = launched
	n.controlURL = controlURL
	n.log.Info("browser connected", zap.String("control_url", controlURL), zap.Bool("launched", launched))
	return nil
}

// ControlURL returns the WebSocket debugger URL, empty before Start.
func (n *Navigator) ControlURL() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.controlURL
}

// Open navigates the navigator's tab to link, creating the tab on first use.
func (n *Navigator) Open(ctx context.Context, link string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err := n.startLocked(ctx); err != nil {
		return err
	}
	if n.page == nil {
		page, err := n.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
		if err != nil {
			return fmt.Errorf("create page: %w", err)
		}
		n.page = page
	}

	if err := n.page.Context(ctx).Timeout(n.cfg.navigationTimeout()).Navigate(link); err != nil {
		return fmt.Errorf("navigate: %w", err)
	}
	_, _ = n.page.Activate()
	return nil
}

// Close closes the tab, and Chrome itself if the navigator launched it.
func (n *Navigator) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.resetLocked()
}

func (n *Navigator) resetLocked() error {
	var errs []error
	if n.page != nil {
		errs = append(errs, n.page.Close())
		n.page = nil
	}
	if n.browser != nil && n.launched {
		errs = append(errs, n.browser.Close())
	}
	n.browser = nil
	n.launched = false
	n.controlURL = ""
	return errors.Join(errs...)
}
