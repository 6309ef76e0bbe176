package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"gurusender/internal/browser"
	"gurusender/internal/compliance"
	"gurusender/internal/contacts"
	"gurusender/internal/dispatch"
	"gurusender/internal/pacing"
	"gurusender/internal/phone"
)

// Config holds all gurusender configuration.
type Config struct {
	// Spreadsheet layout
	Contacts ContactsConfig `yaml:"contacts"`

	// Message template
	Message MessageConfig `yaml:"message"`

	// Phone validation
	Phone PhoneConfig `yaml:"phone"`

	// Banned words screened before every send
	Compliance ComplianceConfig `yaml:"compliance"`

	// Delay between sends
	Pacing PacingConfig `yaml:"pacing"`

	// How chat links are opened
	Dispatch DispatchConfig `yaml:"dispatch"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Interactive shell
	UI UIConfig `yaml:"ui"`
}

// ContactsConfig names the spreadsheet columns.
type ContactsConfig struct {
	NameColumn  string `yaml:"name_column"`
	PhoneColumn string `yaml:"phone_column"`
	Sheet       string `yaml:"sheet"` // empty = first sheet
}

// MessageConfig configures the message template.
type MessageConfig struct {
	Placeholder string `yaml:"placeholder"` // key every template must reference
}

// PhoneConfig configures phone validation.
type PhoneConfig struct {
	Region string `yaml:"region"` // ISO 3166-1 alpha-2
}

// ComplianceConfig holds the persisted banned-word list.
type ComplianceConfig struct {
	BannedWords []string `yaml:"banned_words"`
}

// PacingConfig bounds the random delay between sends.
type PacingConfig struct {
	MinDelay string `yaml:"min_delay"`
	MaxDelay string `yaml:"max_delay"`
}

// DispatchConfig configures link opening.
type DispatchConfig struct {
	BaseURL string        `yaml:"base_url"`
	Opener  string        `yaml:"opener"` // system, rod, dry-run
	Browser BrowserConfig `yaml:"browser"`
}

// BrowserConfig configures the rod opener.
type BrowserConfig struct {
	Bin               string   `yaml:"bin"`
	Flags             []string `yaml:"flags"`
	DebuggerURL       string   `yaml:"debugger_url"`
	UserDataDir       string   `yaml:"user_data_dir"`
	Headless          bool     `yaml:"headless"`
	NavigationTimeout string   `yaml:"navigation_timeout"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	cols := contacts.DefaultColumns()
	return &Config{
		Contacts: ContactsConfig{
			NameColumn:  cols.Name,
			PhoneColumn: cols.Phone,
		},

		Message: MessageConfig{
			Placeholder: cols.Name,
		},

		Phone: PhoneConfig{
			Region: phone.DefaultRegion,
		},

		Compliance: ComplianceConfig{
			BannedWords: compliance.DefaultWords(),
		},

		Pacing: PacingConfig{
			MinDelay: pacing.DefaultMin.String(),
			MaxDelay: pacing.DefaultMax.String(),
		},

		Dispatch: DispatchConfig{
			BaseURL: dispatch.DefaultBaseURL,
			Opener:  dispatch.KindSystem,
			Browser: BrowserConfig{
				NavigationTimeout: "30s",
			},
		},

		Logging: LoggingConfig{
			Level: "info",
			File:  "gurusender.log",
		},

		UI: UIConfig{
			Theme: ThemeAuto,
		},
	}
}

// DefaultPath returns ~/.gurusender/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".gurusender", "config.yaml")
	}
	return filepath.Join(home, ".gurusender", "config.yaml")
}

// Load loads configuration from a YAML file and applies environment
// overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// LoadFile loads configuration without environment overrides. Use it when
// the result will be written back with Save.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// SaveWords replaces the banned-word list stored at path, leaving every other
// setting in the file untouched.
func SaveWords(path string, words []string) error {
	cfg, err := LoadFile(path)
	if err != nil {
		return err
	}
	cfg.Compliance.BannedWords = slices.Clone(words)
	return cfg.Save(path)
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("GURUSENDER_REGION"); v != "" {
		c.Phone.Region = v
	}
	if v := os.Getenv("GURUSENDER_OPENER"); v != "" {
		c.Dispatch.Opener = v
	}
	if v := os.Getenv("GURUSENDER_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv("GURUSENDER_MIN_DELAY"); v != "" {
		c.Pacing.MinDelay = v
	}
	if v := os.Getenv("GURUSENDER_MAX_DELAY"); v != "" {
		c.Pacing.MaxDelay = v
	}

	// Attaching to a running Chrome only makes sense for the rod opener.
	if v := os.Getenv("GURUSENDER_CHROME_URL"); v != "" {
		c.Dispatch.Browser.DebuggerURL = v
		c.Dispatch.Opener = dispatch.KindRod
	}
}

// GetMinDelay returns the minimum pacing delay as a duration.
func (c *Config) GetMinDelay() time.Duration {
	d, err := time.ParseDuration(c.Pacing.MinDelay)
	if err != nil {
		return pacing.DefaultMin
	}
	return d
}

// GetMaxDelay returns the maximum pacing delay as a duration.
func (c *Config) GetMaxDelay() time.Duration {
	d, err := time.ParseDuration(c.Pacing.MaxDelay)
	if err != nil {
		return pacing.DefaultMax
	}
	return d
}

// GetNavigationTimeout returns the rod navigation timeout as a duration.
func (c *Config) GetNavigationTimeout() time.Duration {
	d, err := time.ParseDuration(c.Dispatch.Browser.NavigationTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// ContactOptions converts the contacts section for contacts.Load.
func (c *Config) ContactOptions() contacts.Options {
	return contacts.Options{
		Columns: contacts.Columns{Name: c.Contacts.NameColumn, Phone: c.Contacts.PhoneColumn},
		Sheet:   c.Contacts.Sheet,
	}
}

// BrowserOptions converts the browser section for the rod opener.
func (c *Config) BrowserOptions() browser.Config {
	b := c.Dispatch.Browser
	return browser.Config{
		Bin:               b.Bin,
		Flags:             slices.Clone(b.Flags),
		DebuggerURL:       b.DebuggerURL,
		UserDataDir:       b.UserDataDir,
		Headless:          b.Headless,
		NavigationTimeout: c.GetNavigationTimeout(),
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Contacts.NameColumn == "" || c.Contacts.PhoneColumn == "" {
		return fmt.Errorf("contacts.name_column and contacts.phone_column must be set")
	}
	if c.Message.Placeholder == "" {
		return fmt.Errorf("message.placeholder must be set")
	}
	if !phone.ValidRegion(c.Phone.Region) {
		return fmt.Errorf("invalid phone region: %s", c.Phone.Region)
	}

	minDelay, err := time.ParseDuration(c.Pacing.MinDelay)
	if err != nil {
		return fmt.Errorf("invalid pacing.min_delay: %w", err)
	}
	maxDelay, err := time.ParseDuration(c.Pacing.MaxDelay)
	if err != nil {
		return fmt.Errorf("invalid pacing.max_delay: %w", err)
	}
	if minDelay < 0 || maxDelay < minDelay {
		return fmt.Errorf("pacing delays must satisfy 0 <= min_delay <= max_delay (got %s, %s)", minDelay, maxDelay)
	}

	if !slices.Contains(dispatch.Kinds(), c.Dispatch.Opener) {
		return fmt.Errorf("invalid dispatch opener: %s (valid: %v)", c.Dispatch.Opener, dispatch.Kinds())
	}
	if _, err := dispatch.BuildLink(c.Dispatch.BaseURL, "1", ""); err != nil {
		return fmt.Errorf("invalid dispatch.base_url: %w", err)
	}
	if t := c.Dispatch.Browser.NavigationTimeout; t != "" {
		if _, err := time.ParseDuration(t); err != nil {
			return fmt.Errorf("invalid dispatch.browser.navigation_timeout: %w", err)
		}
	}

	if err := c.Logging.validate(); err != nil {
		return err
	}
	return c.UI.validate()
}
