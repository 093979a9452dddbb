package engine

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pleimann/marionette/internal/action"
	"github.com/pleimann/marionette/internal/actuator"
)

// interpreter walks an action tree against one Session.
type interpreter struct {
	keyboard *actuator.Keyboard
	mouse    *actuator.Mouse
	sleep    actuator.Sleeper
	log      zerolog.Logger
}

func newInterpreter(s *Session, sleep actuator.Sleeper, log zerolog.Logger) *interpreter {
	return &interpreter{
		keyboard: actuator.NewKeyboard(s, sleep, log),
		mouse:    actuator.NewMouse(s, sleep, log),
		sleep:    sleep,
		log:      log,
	}
}

func millis(ms uint64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func describeKey(k action.Key, loc *action.Location) string {
	if loc == nil || *loc == action.LocationStandard {
		return k.String()
	}
	return fmt.Sprintf("%s (%s)", k, *loc)
}

// evaluate performs a and returns a description of what was done. On
// failure the description covers whatever completed before the error.
func (in *interpreter) evaluate(a action.Action) (string, error) {
	switch v := a.(type) {
	case action.MouseMove:
		return fmt.Sprintf("Moved to (%d, %d)", v.X, v.Y), in.mouse.MoveTo(v.X, v.Y)

	case action.MouseClick:
		return fmt.Sprintf("Clicked %s at (%d, %d)", v.Button, v.X, v.Y),
			in.mouse.Click(v.Button, v.X, v.Y)

	case action.MouseDoubleClick:
		return fmt.Sprintf("Double clicked %s at (%d, %d)", v.Button, v.X, v.Y),
			in.mouse.DoubleClick(v.Button, v.X, v.Y)

	case action.MousePress:
		return fmt.Sprintf("Pressed %s at (%d, %d) for %dms", v.Button, v.X, v.Y, v.DurationMs),
			in.mouse.Press(v.Button, v.X, v.Y, millis(v.DurationMs))

	case action.MouseDrag:
		return fmt.Sprintf("Dragged %s from (%d, %d) to (%d, %d) over %dms",
				v.Button, v.StartX, v.StartY, v.EndX, v.EndY, v.DurationMs),
			in.mouse.Drag(v.Button, v.StartX, v.StartY, v.EndX, v.EndY, millis(v.DurationMs))

	case action.MouseScroll:
		return fmt.Sprintf("Scrolled: horizontal %d, vertical %d", v.DeltaX, v.DeltaY),
			in.mouse.Scroll(v.DeltaX, v.DeltaY)

	case action.KeyPress:
		return "Pressed key " + describeKey(v.Key, v.Location), in.keyboard.PressKey(v.Key, v.Location)

	case action.KeyDown:
		return "Key down: " + describeKey(v.Key, v.Location), in.keyboard.KeyDown(v.Key, v.Location)

	case action.KeyUp:
		return "Key up: " + describeKey(v.Key, v.Location), in.keyboard.KeyUp(v.Key, v.Location)

	case action.KeySequence:
		var delay time.Duration
		if v.KeyDelayMs != nil {
			delay = millis(*v.KeyDelayMs)
		}
		return fmt.Sprintf("Pressed sequence of %d keys", len(v.Keys)),
			in.keyboard.PressSequence(v.Keys, delay)

	case action.TypeText:
		desc := "Typed text: " + v.Text
		if v.CharDelayMs != nil {
			return desc, in.keyboard.TypeTextPaced(v.Text, millis(*v.CharDelayMs))
		}
		return desc, in.keyboard.TypeText(v.Text)

	case action.Hotkey:
		return fmt.Sprintf("Pressed hotkey: modifiers %v + %s", v.Modifiers, describeKey(v.Key, v.Location)),
			in.keyboard.Hotkey(v.Modifiers, v.Key, v.Location)

	case action.Delay:
		in.sleep(millis(v.Milliseconds))
		return fmt.Sprintf("Delayed for %dms", v.Milliseconds), nil

	case action.Sequence:
		return in.sequence(v.Actions)

	case action.Parallel:
		return in.parallel(v.Actions)

	default:
		return "", fmt.Errorf("unsupported action %T", a)
	}
}

// sequence runs children in order and stops at the first failure.
func (in *interpreter) sequence(children []action.Action) (string, error) {
	lines := make([]string, 0, len(children))
	for i, child := range children {
		result, err := in.evaluate(child)
		if err != nil {
			lines = append(lines, fmt.Sprintf("Step %d: %s (failed: %v)", i+1, result, err))
			report := fmt.Sprintf("Sequence aborted at step %d of %d:\n%s", i+1, len(children), strings.Join(lines, "\n"))
			return report, fmt.Errorf("step %d: %w", i+1, err)
		}
		lines = append(lines, fmt.Sprintf("Step %d: %s", i+1, result))
	}
	return "Sequence completed:\n" + strings.Join(lines, "\n"), nil
}

// parallel runs every child in its own goroutine against the shared
// session and waits for all of them. Results are listed in child order.
func (in *interpreter) parallel(children []action.Action) (string, error) {
	results := make([]string, len(children))
	errs := make([]error, len(children))

	var wg sync.WaitGroup
	for i, child := range children {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = in.evaluate(child)
		}()
	}
	wg.Wait()

	lines := make([]string, len(children))
	var failed []error
	for i := range children {
		if errs[i] != nil {
			lines[i] = fmt.Sprintf("Task %d: %s (failed: %v)", i+1, results[i], errs[i])
			failed = append(failed, fmt.Errorf("task %d: %w", i+1, errs[i]))
			continue
		}
		lines[i] = fmt.Sprintf("Task %d: %s", i+1, results[i])
	}

	if len(failed) > 0 {
		return "Parallel finished with errors:\n" + strings.Join(lines, "\n"), errors.Join(failed...)
	}
	return "Parallel completed:\n" + strings.Join(lines, "\n"), nil
}
