//go:build robotgo

package inject

import (
	"fmt"
	"sync"

	"github.com/go-vgo/robotgo"
)

// Native injects into the local desktop session through robotgo.
type Native struct {
	mu sync.Mutex
}

// NewNative returns the desktop injector.
func NewNative() (Injector, error) {
	w, h := robotgo.GetScreenSize()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("no display available")
	}
	return &Native{}, nil
}

func toggleArg(dir Direction) string {
	if dir == Press {
		return "down"
	}
	return "up"
}

var robotgoButtons = map[ButtonCode]string{
	ButtonPrimary:   "left",
	ButtonMiddle:    "center",
	ButtonSecondary: "right",
}

func (n *Native) MovePointer(x, y int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	robotgo.Move(x, y)
	return nil
}

func (n *Native) InjectButton(code ButtonCode, dir Direction) error {
	name, ok := robotgoButtons[code]
	if !ok {
		return fmt.Errorf("button %s: %w", code, ErrUnsupported)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return robotgo.Toggle(name, toggleArg(dir))
}

func (n *Native) InjectKey(code KeyCode, dir Direction) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if typedAsText(code) {
		if dir == Press {
			robotgo.TypeStr(string(code))
		}
		return nil
	}
	return robotgo.KeyToggle(string(code), toggleArg(dir))
}

func (n *Native) InjectText(text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	robotgo.TypeStr(text)
	return nil
}

func (n *Native) InjectScroll(axis Axis, delta int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if axis == Vertical {
		robotgo.Scroll(0, delta)
	} else {
		robotgo.Scroll(delta, 0)
	}
	return nil
}

func (n *Native) ScreenSize() (int, int, error) {
	w, h := robotgo.GetScreenSize()
	return w, h, nil
}
