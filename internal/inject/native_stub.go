//go:build !robotgo

package inject

import "fmt"

// NewNative returns the desktop injector. This build has no desktop
// support; rebuild with -tags robotgo.
func NewNative() (Injector, error) {
	return nil, fmt.Errorf("native backend: %w (build with -tags robotgo)", ErrUnsupported)
}
