package actuator

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/pleimann/marionette/internal/action"
	"github.com/pleimann/marionette/internal/inject"
	"github.com/pleimann/marionette/internal/keymap"
)

// DragSteps is the number of interpolated moves in a drag.
const DragSteps = 20

// Mouse drives the pointer and mouse buttons.
type Mouse struct {
	inj   inject.Injector
	sleep Sleeper
	log   zerolog.Logger
}

// NewMouse creates a mouse actuator over inj.
func NewMouse(inj inject.Injector, sleep Sleeper, log zerolog.Logger) *Mouse {
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Mouse{inj: inj, sleep: sleep, log: log}
}

func (m *Mouse) button(b action.Button) inject.ButtonCode {
	code, substituted := keymap.MapButton(b)
	if substituted {
		m.log.Warn().
			Stringer("button", b).
			Stringer("substitute", code).
			Msg("Unrecognised mouse button, using primary button")
	}
	return code
}

// MoveTo moves the pointer to (x, y).
func (m *Mouse) MoveTo(x, y int) error {
	return inject.Wrap("move", m.inj.MovePointer(x, y))
}

// ButtonDown presses b without moving.
func (m *Mouse) ButtonDown(b action.Button) error {
	return m.buttonEvent(m.button(b), inject.Press)
}

// ButtonUp releases b without moving.
func (m *Mouse) ButtonUp(b action.Button) error {
	return m.buttonEvent(m.button(b), inject.Release)
}

func (m *Mouse) buttonEvent(code inject.ButtonCode, dir inject.Direction) error {
	return inject.Wrap("button "+dir.String(), m.inj.InjectButton(code, dir))
}

func (m *Mouse) clickCode(code inject.ButtonCode) error {
	if err := m.buttonEvent(code, inject.Press); err != nil {
		return err
	}
	return m.buttonEvent(code, inject.Release)
}

// Click moves to (x, y) and clicks b once.
func (m *Mouse) Click(b action.Button, x, y int) error {
	code := m.button(b)
	if err := m.MoveTo(x, y); err != nil {
		return err
	}
	return m.clickCode(code)
}

// DoubleClick moves to (x, y) and clicks b twice back to back.
func (m *Mouse) DoubleClick(b action.Button, x, y int) error {
	code := m.button(b)
	if err := m.MoveTo(x, y); err != nil {
		return err
	}
	if err := m.clickCode(code); err != nil {
		return err
	}
	return m.clickCode(code)
}

// Scroll scrolls vertically by dy then horizontally by dx. Zero deltas
// are not injected.
func (m *Mouse) Scroll(dx, dy int) error {
	if dy != 0 {
		if err := inject.Wrap("scroll", m.inj.InjectScroll(inject.Vertical, dy)); err != nil {
			return err
		}
	}
	if dx != 0 {
		return inject.Wrap("scroll", m.inj.InjectScroll(inject.Horizontal, dx))
	}
	return nil
}

// Press moves to (x, y) and holds b for hold before releasing it.
func (m *Mouse) Press(b action.Button, x, y int, hold time.Duration) error {
	code := m.button(b)
	if err := m.MoveTo(x, y); err != nil {
		return err
	}
	if err := m.buttonEvent(code, inject.Press); err != nil {
		return err
	}
	m.sleep(hold)
	return m.buttonEvent(code, inject.Release)
}

// Drag presses b at the start point, moves to the end point in DragSteps
// linear steps spread over total, then releases b. Step i is computed from
// the endpoints directly, so the last step lands exactly on the end point.
// The button is released even when a move fails.
func (m *Mouse) Drag(b action.Button, startX, startY, endX, endY int, total time.Duration) error {
	code := m.button(b)
	if err := m.MoveTo(startX, startY); err != nil {
		return err
	}
	if err := m.buttonEvent(code, inject.Press); err != nil {
		return err
	}

	step := total / DragSteps
	var moveErr error
	for i := 1; i <= DragSteps; i++ {
		x := startX + (endX-startX)*i/DragSteps
		y := startY + (endY-startY)*i/DragSteps
		if moveErr = m.MoveTo(x, y); moveErr != nil {
			break
		}
		m.sleep(step)
	}

	upErr := m.buttonEvent(code, inject.Release)
	if moveErr != nil {
		return moveErr
	}
	return upErr
}
