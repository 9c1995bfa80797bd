package main

import (
	"errors"
	"fmt"
	"os"

	"ttdl-lunar-calendar/internal/config"

	"github.com/spf13/cobra"
)

// runConfigInit writes the default configuration file.
func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	if path == "" {
		return errors.New("no config path: set --config or XDG_CONFIG_HOME")
	}

	if _, err := os.Stat(path); err == nil && !forceInit {
		return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
	}
	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
