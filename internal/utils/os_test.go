package utils

import (
	"strings"
	"testing"
)

func TestExecutableName(t *testing.T) {
	name := ExecutableName()
	if name == "" {
		t.Fatal("ExecutableName() returned empty string")
	}
	if strings.ContainsAny(name, `/\`) {
		t.Errorf("ExecutableName() = %q, want a base name", name)
	}
}
