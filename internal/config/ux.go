package config

import "fmt"

// Theme names accepted by ui.theme.
const (
	ThemeAuto  = "auto"
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// UIConfig holds user interface configuration.
type UIConfig struct {
	// Theme is auto, light or dark. Auto follows the terminal background.
	Theme string `yaml:"theme"`
}

func (c UIConfig) validate() error {
	switch c.Theme {
	case "", ThemeAuto, ThemeLight, ThemeDark:
		return nil
	}
	return fmt.Errorf("invalid ui theme: %s (valid: auto, light, dark)", c.Theme)
}
