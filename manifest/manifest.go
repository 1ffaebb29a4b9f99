// Package manifest handles scry.toml session configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
)

// Manifest represents a scry.toml debugging-session configuration.
type Manifest struct {
	Session     Session      `toml:"session"`
	Image       Image        `toml:"image"`
	Logging     Logging      `toml:"logging"`
	Breakpoints []Breakpoint `toml:"breakpoint"`

	// Dir is the directory containing the scry.toml file (set at load time).
	Dir string `toml:"-"`
}

// Session contains session metadata.
type Session struct {
	Name string `toml:"name"`

	// ID identifies the session; generated at load time when empty.
	ID string `toml:"id"`
}

// Image configures the chunk image to debug.
type Image struct {
	Path string `toml:"path"`
}

// Logging configures log output.
type Logging struct {
	Verbosity int `toml:"verbosity"`
}

// Breakpoint is a breakpoint preset applied before the session starts.
// Offset selects an exact bytecode offset; otherwise Line resolves to
// every entry offset the script records for that line.
type Breakpoint struct {
	Line   uint32  `toml:"line"`
	Offset *uint32 `toml:"offset"`
}

// Load parses a scry.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "scry.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	if m.Session.ID == "" {
		m.Session.ID = uuid.NewString()
	}
	return &m, nil
}

// FindAndLoad walks up from startDir to find a scry.toml file, then
// loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, "scry.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// ImagePath returns the configured image path resolved against the
// manifest directory, empty when no image is configured.
func (m *Manifest) ImagePath() string {
	if m.Image.Path == "" {
		return ""
	}
	if filepath.IsAbs(m.Image.Path) {
		return m.Image.Path
	}
	return filepath.Join(m.Dir, m.Image.Path)
}
