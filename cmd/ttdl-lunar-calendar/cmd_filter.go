package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"ttdl-lunar-calendar/internal/logging"
	"ttdl-lunar-calendar/internal/lunar"
	"ttdl-lunar-calendar/internal/plugin"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// runFilter reads one record from stdin and writes the result to stdout.
func runFilter(cmd *cobra.Command, args []string) error {
	input, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	out, err := plugin.New(lunar.NewConverter(), logs).Run(input)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if !bytes.HasSuffix(out, []byte("\n")) {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

// runDate converts the lunar date in args[0].
func runDate(cmd *cobra.Command, args []string) error {
	solar, err := lunar.ToSolarString(lunar.NewConverter(), args[0])
	if err != nil {
		if errors.Is(err, lunar.ErrBadFormat) {
			return fmt.Errorf("unexpected format for %q: %w", args[0], err)
		}
		return fmt.Errorf("unexpected value for %q: %w", args[0], err)
	}

	logs.Get(logging.CategoryCalendar).Debug("date converted",
		zap.String("lunar", args[0]),
		zap.String("solar", solar))
	fmt.Fprintln(cmd.OutOrStdout(), solar)
	return nil
}
