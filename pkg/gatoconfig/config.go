// Package gatoconfig reads and writes the per-repository TOML
// configuration file that lives in a repository's working directory,
// alongside the tracked files themselves.
package gatoconfig

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"github.com/odvcencio/gato/pkg/objhash"
)

// FileName is the fixed name of the per-repo configuration file,
// always present at the root of a repository's working directory.
// It is one of the two fixed entries staging always adds to the
// ignore set (the other is metaDirName, see pkg/repo).
const FileName = ".gato.toml"

// Config mirrors the TOML schema exactly: title, id, author, email,
// description, ignore, and an optional [compression] table.
type Config struct {
	Title       string      `toml:"title"`
	ID          string      `toml:"id"`
	Author      string      `toml:"author"`
	Email       string      `toml:"email,omitempty"`
	Description string      `toml:"description"`
	Ignore      []string    `toml:"ignore"`
	Compression Compression `toml:"compression"`
}

// Compression holds the optional [compression] table.
type Compression struct {
	Level int `toml:"level,omitempty"`
}

// Level returns the configured Zstd level, defaulting when unset.
func (c *Config) Level() int {
	if c.Compression.Level == 0 {
		return objhash.DefaultLevel
	}
	return c.Compression.Level
}

// Validate checks that every required field is present and that id
// parses as a UUID and the compression level (if set) is in range.
func (c *Config) Validate() error {
	if c.Title == "" {
		return fmt.Errorf("gatoconfig: %w: title", ErrMissingField)
	}
	if c.ID == "" {
		return fmt.Errorf("gatoconfig: %w: id", ErrMissingField)
	}
	if _, err := uuid.Parse(c.ID); err != nil {
		return fmt.Errorf("gatoconfig: id %q is not a valid UUID: %w", c.ID, err)
	}
	if c.Author == "" {
		return fmt.Errorf("gatoconfig: %w: author", ErrMissingField)
	}
	if c.Description == "" {
		return fmt.Errorf("gatoconfig: %w: description", ErrMissingField)
	}
	if c.Compression.Level != 0 && (c.Compression.Level < objhash.MinLevel || c.Compression.Level > objhash.MaxLevel) {
		return fmt.Errorf("gatoconfig: compression level %d out of range [%d, %d]",
			c.Compression.Level, objhash.MinLevel, objhash.MaxLevel)
	}
	return nil
}

// ErrMissingField is wrapped by Validate to name the absent field.
var ErrMissingField = fmt.Errorf("missing required field")

// Path returns the config file path for a working directory.
func Path(workDir string) string {
	return filepath.Join(workDir, FileName)
}

// Load reads and validates the configuration at workDir/FileName.
func Load(workDir string) (*Config, error) {
	path := Path(workDir)
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("gatoconfig: decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save atomically writes cfg to workDir/FileName via a temp file and
// rename, matching the write discipline the core uses for every other
// persisted file (refs, HEAD, the index).
func Save(workDir string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("gatoconfig: encode: %w", err)
	}

	path := Path(workDir)
	tmp, err := os.CreateTemp(workDir, ".gato.toml-tmp-*")
	if err != nil {
		return fmt.Errorf("gatoconfig: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("gatoconfig: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("gatoconfig: close: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("gatoconfig: rename into place: %w", err)
	}
	return nil
}
