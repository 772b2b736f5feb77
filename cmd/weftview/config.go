package main

import (
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/juju/errors"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds the settings read from the TOML config file. Flags given
// on the command line override whatever the file says.
type Config struct {
	Theme    string `toml:"theme"`
	TabWidth int    `toml:"tab_width"`
	Wrap     bool   `toml:"wrap"`
	LogFile  string `toml:"log_file"`
	LogLevel string `toml:"log_level"`
}

func defaultConfig() Config {
	return Config{
		Theme:    "default",
		TabWidth: 4,
		LogLevel: "info",
	}
}

// configDir returns the directory holding weftview's config and themes.
func configDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "weftview")
}

// loadConfig reads the TOML config at path, or the default location when
// path is empty. A missing file is not an error and yields the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		dir := configDir()
		if dir == "" {
			return cfg, nil
		}
		path = filepath.Join(dir, "config.toml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Annotatef(err, "reading config file %s", path)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Annotatef(err, "parsing config file %s", path)
	}
	if cfg.TabWidth <= 0 {
		cfg.TabWidth = defaultConfig().TabWidth
	}
	return cfg, nil
}

// ThemeStyle is one role's visual style in a theme file. Colors accept
// tcell color names ("yellow") or hex ("#ffcc00"); empty means the
// terminal default.
type ThemeStyle struct {
	FG      string `yaml:"fg"`
	BG      string `yaml:"bg"`
	Bold    bool   `yaml:"bold"`
	Reverse bool   `yaml:"reverse"`
}

func (ts ThemeStyle) style() tcell.Style {
	st := tcell.StyleDefault
	if ts.FG != "" {
		st = st.Foreground(tcell.GetColor(ts.FG))
	}
	if ts.BG != "" {
		st = st.Background(tcell.GetColor(ts.BG))
	}
	if ts.Bold {
		st = st.Bold(true)
	}
	if ts.Reverse {
		st = st.Reverse(true)
	}
	return st
}

// Theme maps display roles to styles. Roles absent from a theme file
// keep the built-in default.
type Theme struct {
	Name         string     `yaml:"name"`
	Text         ThemeStyle `yaml:"text"`
	LineNumber   ThemeStyle `yaml:"line_number"`
	Match        ThemeStyle `yaml:"match"`
	CurrentMatch ThemeStyle `yaml:"current_match"`
	StatusBar    ThemeStyle `yaml:"status_bar"`
}

func defaultTheme() Theme {
	return Theme{
		Name:         "default",
		LineNumber:   ThemeStyle{FG: "gray"},
		Match:        ThemeStyle{FG: "black", BG: "yellow"},
		CurrentMatch: ThemeStyle{FG: "black", BG: "orange", Bold: true},
		StatusBar:    ThemeStyle{Reverse: true},
	}
}

// loadTheme resolves a theme by name from <dir>/themes/<name>.yaml.
// The built-in default is returned for "", "default", or a missing file.
func loadTheme(name, dir string) (Theme, error) {
	theme := defaultTheme()
	if name == "" || name == "default" {
		return theme, nil
	}

	if dir == "" {
		return theme, errors.Errorf("no config directory to resolve theme %q", name)
	}
	path := filepath.Join(dir, "themes", name+".yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return theme, nil
		}
		return theme, errors.Annotatef(err, "reading theme file %s", path)
	}

	if err := yaml.Unmarshal(data, &theme); err != nil {
		return defaultTheme(), errors.Annotatef(err, "parsing theme file %s", path)
	}
	return theme, nil
}

// styleSet is the theme compiled into tcell styles for the renderer.
type styleSet struct {
	text         tcell.Style
	lineNumber   tcell.Style
	match        tcell.Style
	currentMatch tcell.Style
	statusBar    tcell.Style
}

func (t Theme) styles() styleSet {
	return styleSet{
		text:         t.Text.style(),
		lineNumber:   t.LineNumber.style(),
		match:        t.Match.style(),
		currentMatch: t.CurrentMatch.style(),
		statusBar:    t.StatusBar.style(),
	}
}
