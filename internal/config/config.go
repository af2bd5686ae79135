// Package config loads the optional ~/.zipcore/config.ini file consulted by cmd/zipdemo for its default
// extraction output directory. CompressionLevel is exposed for future writer-side commands. A missing
// config file is not an error; callers simply get zero-value defaults.
package config

import (
	"errors"
	"log"
	"os"
	"path/filepath"

	"github.com/go-ini/ini"
)

// Defaults holds the settings read from the "defaults" section of the config file.
type Defaults struct {
	// CompressionLevel is the sticky DEFLATE level new archives are written with, -3..9. Zero means
	// "unset", in which case callers fall back to their own built-in default.
	CompressionLevel int
	// OutputDir is the directory extracted files are written to when none is given on the command line.
	OutputDir string
}

// Load reads ~/.zipcore/config.ini, returning zero-value Defaults (not an error) if the file does not
// exist.
func Load() (Defaults, error) {
	var d Defaults

	dir, err := os.UserHomeDir()
	if err != nil {
		return d, err
	}

	cfg, err := ini.Load(filepath.Join(dir, ".zipcore", "config.ini"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return d, nil
		}
		return d, err
	}

	sec, err := cfg.GetSection("defaults")
	if err != nil {
		// no [defaults] section is not an error; it simply means nothing is overridden.
		return d, nil
	}

	if k := sec.Key("compression-level"); k != nil {
		if v, err := k.Int(); err == nil {
			d.CompressionLevel = v
		} else {
			log.Printf("zipcore: ignoring malformed compression-level in config: %v", err)
		}
	}
	d.OutputDir = sec.Key("output-dir").Value()

	return d, nil
}
