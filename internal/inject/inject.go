// Package inject defines the OS input-injection primitive and its backends.
package inject

import (
	"errors"
	"fmt"
)

// KeyCode is the physical key name a backend understands, e.g. "lshift",
// "pagedown", "a". Single-character codes name the character itself.
type KeyCode string

// ButtonCode is a physical mouse button number (X11 numbering).
type ButtonCode uint8

const (
	ButtonPrimary   ButtonCode = 1
	ButtonMiddle    ButtonCode = 2
	ButtonSecondary ButtonCode = 3
	ButtonBack      ButtonCode = 8
	ButtonForward   ButtonCode = 9
)

func (b ButtonCode) String() string {
	switch b {
	case ButtonPrimary:
		return "primary"
	case ButtonMiddle:
		return "middle"
	case ButtonSecondary:
		return "secondary"
	case ButtonBack:
		return "back"
	case ButtonForward:
		return "forward"
	default:
		return fmt.Sprintf("button%d", uint8(b))
	}
}

// Direction is press or release.
type Direction int

const (
	Press Direction = iota
	Release
)

func (d Direction) String() string {
	if d == Press {
		return "down"
	}
	return "up"
}

// Axis selects the scroll axis.
type Axis int

const (
	Vertical Axis = iota
	Horizontal
)

func (a Axis) String() string {
	if a == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Injector generates synthetic input events.
type Injector interface {
	MovePointer(x, y int) error
	InjectButton(code ButtonCode, dir Direction) error
	InjectKey(code KeyCode, dir Direction) error
	InjectText(text string) error
	InjectScroll(axis Axis, delta int) error
}

// ScreenSizer is implemented by injectors that know their target's size.
type ScreenSizer interface {
	ScreenSize() (width, height int, err error)
}

// ErrUnsupported is returned by a backend for an event it cannot produce.
var ErrUnsupported = errors.New("unsupported by backend")

// Error reports an event the injection primitive rejected.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("inject %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap returns nil for a nil err, otherwise an *Error for op.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var ie *Error
	if errors.As(err, &ie) {
		return err
	}
	return &Error{Op: op, Err: err}
}
