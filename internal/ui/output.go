package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pleimann/marionette/internal/keymap"
	"github.com/pleimann/marionette/internal/macro"
)

// PrintResult shows the outcome of one execution.
func PrintResult(w io.Writer, description string, elapsed time.Duration, err error) {
	took := DurationStyle.Render(fmt.Sprintf("%dms", elapsed.Milliseconds()))
	if err != nil {
		fmt.Fprintln(w, Error("Execution failed")+" "+Muted("after")+" "+took)
		if description != "" {
			fmt.Fprintln(w, BoxStyle.Render(description))
		}
		fmt.Fprintln(w, ErrorBoxStyle.Render(err.Error()))
		return
	}

	fmt.Fprintln(w, Success("Executed")+" "+Muted("in")+" "+took)
	fmt.Fprintln(w, BoxStyle.Render(description))
}

// PrintMacroList displays a styled list of configured macros
func PrintMacroList(w io.Writer, macros []macro.Macro) {
	if len(macros) == 0 {
		fmt.Fprintln(w, Warning("No macros configured"))
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, Title("Macros"))
	fmt.Fprintln(w, Muted(fmt.Sprintf("%d configured", len(macros))))
	fmt.Fprintln(w)

	width := 0
	for _, m := range macros {
		width = max(width, len(m.Name))
	}
	for _, m := range macros {
		name := NameStyle.Render("  " + m.Name + strings.Repeat(" ", width-len(m.Name)))
		line := name + "  " + ValueStyle.Render(m.Action.Type())
		if m.Description != "" {
			line += " " + DescriptionStyle.Render(m.Description)
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)
}

// PrintKeyTable lists every logical key with its physical code.
func PrintKeyTable(w io.Writer, entries []keymap.Entry) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, Title("Key map"))
	fmt.Fprintln(w)

	for _, e := range entries {
		code := string(e.Code)
		if e.Left != "" {
			code = fmt.Sprintf("%s (left %s, right %s)", code, e.Left, e.Right)
		}
		fmt.Fprintf(w, "  %s %s\n", NameStyle.Render(fmt.Sprintf("%-14s", e.Key.String())), ValueStyle.Render(code))
	}
	fmt.Fprintln(w)
}

// PrintConfigCreated shows a success message after writing a starter config
func PrintConfigCreated(w io.Writer, configPath string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, Success("Configuration created"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s %s\n", Muted("Config:"), configPath)
	fmt.Fprintf(w, "  %s %s\n", Muted("Try:"), Code("marionette macro list --config "+configPath))
	fmt.Fprintln(w)
}
