package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/Faultbox/meshflat/internal/config"
)

// cmdConfig writes the effective configuration, flags and environment
// applied, to path or to the user's config directory.
func cmdConfig(out io.Writer, cfg *config.Config, args []string) error {
	if len(args) > 1 {
		return errors.New("usage: gltool config [file.yaml|file.toml]")
	}

	if len(args) == 0 {
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(out, "Wrote %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
		return nil
	}

	if err := cfg.SaveTo(args[0]); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Fprintf(out, "Wrote %s\n", args[0])
	return nil
}
