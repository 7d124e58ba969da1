package main

import (
	"io"
	"strings"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

func disclaimerLines(version string) []string {
	return []string{
		"DMX-Emulator Copyright © 2019 Dave Hocker (AtHomeX10@gmail.com)",
		"Version " + version,
		"",
		"This program comes with ABSOLUTELY NO WARRANTY; for details see the LICENSE file.",
		"This is free software, and you are welcome to redistribute it",
		"under certain conditions; see the LICENSE file for details.",
	}
}

// printDisclaimer shows the GPL notice on w.
func printDisclaimer(w io.Writer, version string) {
	pterm.DefaultBox.
		WithTitle("dmxemu").
		WithWriter(w).
		Println(strings.Join(disclaimerLines(version), "\n"))
	pterm.Fprintln(w, "Use ctrl-c to shutdown emulator")
	pterm.Fprintln(w)
}

// logDisclaimer records the notice in the log so it survives in log files.
func logDisclaimer(logger zerolog.Logger, version string) {
	for _, line := range disclaimerLines(version) {
		if line == "" {
			continue
		}
		logger.Info().Msg(line)
	}
}
