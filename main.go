package main

import (
	"fmt"
	"os"

	"github.com/pleimann/marionette/internal/ui"
)

const Version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Error(err.Error()))
		os.Exit(1)
	}
}
