// Package config holds the resolved monitor configuration and the
// file-backed defaults for battmon flags.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// offsetBottom mirrors render.OffsetBottom: the legend rows below the bar
// baseline. The top usable row must stay above them.
const offsetBottom = 3

// Config is the resolved, immutable runtime configuration. Voltages are in
// tenths of a volt. Components receive it by value and never read ambient
// state.
type Config struct {
	ScreenHeight     int
	BarWidth         int
	SpaceBetweenBars int
	VoltsMin         int
	VoltsMax         int
	MaxLineLength    int
	FrameInterval    time.Duration
	OutputFile       string
}

// OffsetTop is the topmost usable screen row.
func (c Config) OffsetTop() int {
	return c.ScreenHeight - 1
}

// Validate rejects configurations that cannot produce a drawable panel.
func (c Config) Validate() error {
	if c.OffsetTop() <= offsetBottom {
		return fmt.Errorf("screen height must be at least %d lines", offsetBottom+2)
	}
	if c.BarWidth < 1 {
		return errors.New("bar width must be at least 1 column")
	}
	if c.SpaceBetweenBars < 0 {
		return errors.New("space between bars cannot be negative")
	}
	if c.VoltsMax <= c.VoltsMin {
		return errors.New("volts-max must be greater than volts-min")
	}
	if c.MaxLineLength < 1 {
		return errors.New("max line length must be at least 1 byte")
	}
	if c.FrameInterval < 0 {
		return errors.New("frame interval cannot be negative")
	}
	return nil
}

// File holds default values for battmon flags, in flag units: whole volts
// and milliseconds.
type File struct {
	ScreenHeight     int    `json:"screen_height"`
	BarWidth         int    `json:"bar_width"`
	SpaceBetweenBars int    `json:"space_between_bars"`
	VoltsMin         int    `json:"volts_min"`
	VoltsMax         int    `json:"volts_max"`
	MaxLineLength    int    `json:"max_line_length"`
	FrameIntervalMS  int    `json:"frame_interval_ms"`
	OutputFile       string `json:"output_file"`
}

// Default returns the flag defaults used when no config file exists.
// A zero screen height means "detect from the terminal at startup".
func Default() File {
	return File{
		ScreenHeight:     0,
		BarWidth:         3,
		SpaceBetweenBars: 3,
		VoltsMin:         8,
		VoltsMax:         15,
		MaxLineLength:    512,
		FrameIntervalMS:  0,
		OutputFile:       "",
	}
}

// Resolve converts flag units into the runtime configuration: whole volts
// become tenths and the frame interval becomes a duration.
func Resolve(f File) Config {
	return Config{
		ScreenHeight:     f.ScreenHeight,
		BarWidth:         f.BarWidth,
		SpaceBetweenBars: f.SpaceBetweenBars,
		VoltsMin:         10 * f.VoltsMin,
		VoltsMax:         10 * f.VoltsMax,
		MaxLineLength:    f.MaxLineLength,
		FrameInterval:    time.Duration(f.FrameIntervalMS) * time.Millisecond,
		OutputFile:       f.OutputFile,
	}
}

// Path returns the OS-appropriate config file path.
// Linux: $XDG_CONFIG_HOME/battmon/battmon.json or $HOME/.config/battmon/battmon.json
// Windows: %APPDATA%\battmon\battmon.json
// macOS: $HOME/Library/Application Support/battmon/battmon.json
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}
	return filepath.Join(dir, "battmon", "battmon.json"), nil
}

// Load reads flag defaults from the default path. If the file does not
// exist, the directory and file are created with default values and those
// defaults are returned. The second return value is true when the config
// file was created (first run).
func Load() (File, bool, error) {
	p, err := Path()
	if err != nil {
		return File{}, false, err
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			f := Default()
			if writeErr := Save(f); writeErr != nil {
				return f, false, fmt.Errorf("creating default config: %w", writeErr)
			}
			return f, true, nil
		}
		return File{}, false, fmt.Errorf("reading config: %w", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return File{}, false, fmt.Errorf("parsing config: %w", err)
	}
	return f, false, nil
}

// Save writes f to the default config path, creating the directory if needed.
func Save(f File) error {
	p, err := Path()
	if err != nil {
		return err
	}

	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(p, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
