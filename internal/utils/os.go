package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// ExecutableName returns the base name of the running binary without any
// platform extension.
func ExecutableName() string {
	executable, err := os.Executable()
	if err != nil {
		return "marionette"
	}

	return strings.TrimSuffix(filepath.Base(executable), filepath.Ext(executable))
}
