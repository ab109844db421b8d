// Package config loads the bar configuration from a TOML file and
// resolves it for use: color values are checked strictly here, so that a
// typo in the config surfaces as an error instead of silently drawing
// black the way the lenient drawing-layer parser would.
package config

import (
	"fmt"
	"regexp"

	"github.com/BurntSushi/toml"

	"github.com/BlackSnak89/i3/drawutil"
)

// Config is the bar configuration. Absent keys keep their defaults.
type Config struct {
	StatusCommand string `toml:"status_command"` // run with sh -c; empty means no statusline
	StatusPty     bool   `toml:"status_pty"`     // run the status command on a pseudo-terminal

	Font     string `toml:"font"`     // core font name or XLFD pattern
	Position string `toml:"position"` // "top" or "bottom"
	Height   int    `toml:"height"`   // bar height in pixels; 0 derives it from the font

	WorkspaceButtons bool   `toml:"workspace_buttons"`
	SeparatorSymbol  string `toml:"separator_symbol"` // drawn between blocks; empty means a plain line

	Mode        string `toml:"mode"`         // "dock" or "hide"
	HiddenState string `toml:"hidden_state"` // initial state in hide mode: "hide" or "show"

	Colors Colors `toml:"colors"`
}

// Colors is the configured palette, as hex text.
type Colors struct {
	Background string `toml:"background"`
	Statusline string `toml:"statusline"`
	Separator  string `toml:"separator"`

	FocusedWorkspace  WorkspaceColors `toml:"focused_workspace"`
	ActiveWorkspace   WorkspaceColors `toml:"active_workspace"`
	InactiveWorkspace WorkspaceColors `toml:"inactive_workspace"`
	UrgentWorkspace   WorkspaceColors `toml:"urgent_workspace"`
}

// WorkspaceColors is one workspace button's triple.
type WorkspaceColors struct {
	Border     string `toml:"border"`
	Background string `toml:"background"`
	Text       string `toml:"text"`
}

// Default returns the stock configuration: the default bar palette, the
// core fixed font, workspace buttons on a bottom dock.
func Default() *Config {
	return &Config{
		Font:             "fixed",
		Position:         "bottom",
		WorkspaceButtons: true,
		Mode:             "dock",
		HiddenState:      "show",
		Colors: Colors{
			Background:        "#000000",
			Statusline:        "#ffffff",
			Separator:         "#666666",
			FocusedWorkspace:  WorkspaceColors{Border: "#4c7899", Background: "#285577", Text: "#ffffff"},
			ActiveWorkspace:   WorkspaceColors{Border: "#333333", Background: "#5f676a", Text: "#ffffff"},
			InactiveWorkspace: WorkspaceColors{Border: "#333333", Background: "#222222", Text: "#888888"},
			UrgentWorkspace:   WorkspaceColors{Border: "#2f343a", Background: "#900000", Text: "#ffffff"},
		},
	}
}

// Load reads the TOML file at path over the defaults. An empty path
// loads the defaults alone. The result is validated.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, c); err != nil {
			return nil, fmt.Errorf("cannot load bar config %s: %v", path, err)
		}
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	switch c.Position {
	case "top", "bottom":
	default:
		return fmt.Errorf("position %q, want top or bottom", c.Position)
	}
	switch c.Mode {
	case "dock", "hide":
	default:
		return fmt.Errorf("mode %q, want dock or hide", c.Mode)
	}
	switch c.HiddenState {
	case "hide", "show":
	default:
		return fmt.Errorf("hidden_state %q, want hide or show", c.HiddenState)
	}
	_, err := c.Palette()
	return err
}

// Palette is the configured palette resolved for drawing.
type Palette struct {
	Background drawutil.Color
	Statusline drawutil.Color
	Separator  drawutil.Color

	Focused  WorkspacePalette
	Active   WorkspacePalette
	Inactive WorkspacePalette
	Urgent   WorkspacePalette
}

// WorkspacePalette is one workspace button's resolved triple.
type WorkspacePalette struct {
	Border     drawutil.Color
	Background drawutil.Color
	Text       drawutil.Color
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}([0-9a-fA-F]{2})?$`)

// parseColor enforces well-formed hex at the config boundary before
// handing the text to the lenient drawing-layer parser.
func parseColor(key, s string) (drawutil.Color, error) {
	if !hexColor.MatchString(s) {
		return drawutil.Color{}, fmt.Errorf("colors.%s: malformed color %q, want #rrggbb or #rrggbbaa", key, s)
	}
	return drawutil.HexToColor(s), nil
}

// Palette resolves every configured color, strictly.
func (c *Config) Palette() (Palette, error) {
	var p Palette
	var err error
	set := func(dst *drawutil.Color, key, s string) {
		if err != nil {
			return
		}
		*dst, err = parseColor(key, s)
	}
	set(&p.Background, "background", c.Colors.Background)
	set(&p.Statusline, "statusline", c.Colors.Statusline)
	set(&p.Separator, "separator", c.Colors.Separator)
	ws := func(dst *WorkspacePalette, key string, src WorkspaceColors) {
		set(&dst.Border, key+".border", src.Border)
		set(&dst.Background, key+".background", src.Background)
		set(&dst.Text, key+".text", src.Text)
	}
	ws(&p.Focused, "focused_workspace", c.Colors.FocusedWorkspace)
	ws(&p.Active, "active_workspace", c.Colors.ActiveWorkspace)
	ws(&p.Inactive, "inactive_workspace", c.Colors.InactiveWorkspace)
	ws(&p.Urgent, "urgent_workspace", c.Colors.UrgentWorkspace)
	return p, err
}
