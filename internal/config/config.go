// Package config loads flowdis.toml.
package config

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"flowdis/internal/disasm"
	"flowdis/internal/flowscript"
)

// FileName is the configuration file looked up by FindAndLoad.
const FileName = "flowdis.toml"

const (
	EndianAuto   = "auto"
	EndianLittle = "little"
	EndianBig    = "big"
)

// Config holds disassembly settings shared by all commands.
type Config struct {
	Header            string `toml:"header" json:"header" jsonschema:"title=Header,description=Comment written on the first line of every listing"`
	Endian            string `toml:"endian" json:"endian" jsonschema:"title=Byte Order,enum=auto,enum=little,enum=big,description=Byte order of input binaries"`
	LenientReferences bool   `toml:"lenient-references" json:"lenientReferences" jsonschema:"title=Lenient References,description=Render unresolved label references as placeholders instead of failing"`
	NoColor           bool   `toml:"no-color" json:"noColor" jsonschema:"title=No Color,description=Disable syntax highlighting on terminals"`
	MaxSections       int    `toml:"max-sections" json:"maxSections" jsonschema:"title=Max Sections,minimum=1,description=Upper bound on the section count read from a header"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-" json:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Header:      disasm.DefaultHeader,
		Endian:      EndianAuto,
		MaxSections: flowscript.DefaultMaxSections,
	}
}

// Load parses the config file at path. Missing keys keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.Path = path
	return c, nil
}

// FindAndLoad walks up from startDir looking for FileName. Defaults are
// returned when no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", startDir, err)
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

// Validate checks enumerated and bounded fields.
func (c *Config) Validate() error {
	switch c.Endian {
	case EndianAuto, EndianLittle, EndianBig:
	default:
		return fmt.Errorf("invalid endian %q (want auto, little or big)", c.Endian)
	}
	if c.MaxSections < 1 {
		return fmt.Errorf("max-sections must be positive, got %d", c.MaxSections)
	}
	return nil
}

// LoadOptions translates the config into loader options.
func (c *Config) LoadOptions() []flowscript.LoadOption {
	opts := []flowscript.LoadOption{flowscript.WithMaxSections(c.MaxSections)}
	switch c.Endian {
	case EndianLittle:
		opts = append(opts, flowscript.WithByteOrder(binary.LittleEndian))
	case EndianBig:
		opts = append(opts, flowscript.WithByteOrder(binary.BigEndian))
	}
	return opts
}

// DisasmOptions translates the config into disassembler options.
func (c *Config) DisasmOptions() []disasm.Option {
	opts := []disasm.Option{disasm.WithHeader(c.Header)}
	if c.LenientReferences {
		opts = append(opts, disasm.WithLenientReferences())
	}
	return opts
}
