package actuator

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pleimann/marionette/internal/action"
	"github.com/pleimann/marionette/internal/inject"
)

type sleepLog struct {
	calls []time.Duration
}

func (s *sleepLog) sleep(d time.Duration) { s.calls = append(s.calls, d) }

func newKeyboard() (*Keyboard, *inject.Recorder, *sleepLog) {
	rec := inject.NewRecorder(800, 600)
	sl := &sleepLog{}
	return NewKeyboard(rec, sl.sleep, zerolog.Nop()), rec, sl
}

func newMouse() (*Mouse, *inject.Recorder, *sleepLog) {
	rec := inject.NewRecorder(800, 600)
	sl := &sleepLog{}
	return NewMouse(rec, sl.sleep, zerolog.Nop()), rec, sl
}

func TestHotkeyReleasesInReverseOrder(t *testing.T) {
	kb, rec, _ := newKeyboard()

	require.NoError(t, kb.Hotkey([]action.Key{action.KeyCtrl, action.KeyShift}, action.KeyA, nil))

	assert.Equal(t, []string{
		"key ctrl down",
		"key shift down",
		"key a down",
		"key a up",
		"key shift up",
		"key ctrl up",
	}, rec.Strings())
}

func TestHotkeyReleasesHeldModifiersOnFailure(t *testing.T) {
	kb, rec, _ := newKeyboard()
	boom := errors.New("rejected")
	rec.Fail = func(e inject.Event) error {
		if e.Kind == inject.EventKey && e.Key == "alt" && e.Dir == inject.Press {
			return boom
		}
		return nil
	}

	err := kb.Hotkey([]action.Key{action.KeyCtrl, action.KeyShift, action.KeyAlt}, action.KeyDelete, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var ie *inject.Error
	assert.True(t, errors.As(err, &ie))

	assert.Equal(t, []string{
		"key ctrl down",
		"key shift down",
		"key shift up",
		"key ctrl up",
	}, rec.Strings())
}

func TestUnmappedKeyIsNoOp(t *testing.T) {
	kb, rec, _ := newKeyboard()

	require.NoError(t, kb.PressKey(action.OtherKey(99), nil))
	require.NoError(t, kb.KeyDown(action.OtherKey(99), action.At(action.LocationLeft)))
	assert.Empty(t, rec.Events())
}

func TestKeyDownTwiceInjectsTwice(t *testing.T) {
	kb, rec, _ := newKeyboard()

	require.NoError(t, kb.KeyDown(action.KeyShift, action.At(action.LocationRight)))
	require.NoError(t, kb.KeyDown(action.KeyShift, action.At(action.LocationRight)))
	assert.Equal(t, []string{"key rshift down", "key rshift down"}, rec.Strings())
}

func TestTypeText(t *testing.T) {
	kb, rec, sl := newKeyboard()

	require.NoError(t, kb.TypeText("hello"))
	assert.Equal(t, []string{`text "hello"`}, rec.Strings())
	assert.Empty(t, sl.calls)
}

func TestTypeTextPacedPairsPressAndRelease(t *testing.T) {
	kb, rec, sl := newKeyboard()

	require.NoError(t, kb.TypeTextPaced("hé!", 30*time.Millisecond))

	assert.Equal(t, []string{
		"key h down", "key h up",
		"key é down", "key é up",
		"key ! down", "key ! up",
	}, rec.Strings())
	assert.Equal(t, []time.Duration{30 * time.Millisecond, 30 * time.Millisecond}, sl.calls)
}

func TestPressSequence(t *testing.T) {
	kb, rec, sl := newKeyboard()

	require.NoError(t, kb.PressSequence([]action.Key{action.KeyH, action.KeyI, action.KeyEnter}, 10*time.Millisecond))
	assert.Equal(t, []string{
		"key h down", "key h up",
		"key i down", "key i up",
		"key enter down", "key enter up",
	}, rec.Strings())
	assert.Len(t, sl.calls, 2)
}

func TestDragInterpolates(t *testing.T) {
	m, rec, sl := newMouse()

	require.NoError(t, m.Drag(action.ButtonLeft, 0, 0, 103, -47, time.Second))

	events := rec.Events()
	// initial move, press, 20 steps, release
	require.Len(t, events, DragSteps+3)

	assert.Equal(t, "move 0,0", events[0].String())
	assert.Equal(t, "button primary down", events[1].String())

	moves := 0
	for _, e := range events[2 : len(events)-1] {
		assert.Equal(t, inject.EventMove, e.Kind)
		moves++
	}
	assert.Equal(t, DragSteps, moves)

	last := events[len(events)-2]
	assert.Equal(t, 103, last.X)
	assert.Equal(t, -47, last.Y)
	assert.Equal(t, "button primary up", events[len(events)-1].String())

	require.Len(t, sl.calls, DragSteps)
	for _, d := range sl.calls {
		assert.Equal(t, 50*time.Millisecond, d)
	}
}

func TestDragStepsAreMonotonic(t *testing.T) {
	m, rec, _ := newMouse()

	require.NoError(t, m.Drag(action.ButtonRight, 10, 10, 30, 10, 0))

	prev := 10
	for _, e := range rec.Events() {
		if e.Kind != inject.EventMove {
			continue
		}
		assert.GreaterOrEqual(t, e.X, prev)
		assert.Equal(t, 10, e.Y)
		prev = e.X
	}
	assert.Equal(t, 30, prev)
}

func TestDragReleasesButtonWhenMoveFails(t *testing.T) {
	m, rec, _ := newMouse()
	moves := 0
	rec.Fail = func(e inject.Event) error {
		if e.Kind == inject.EventMove {
			moves++
			if moves == 5 {
				return errors.New("pointer grab lost")
			}
		}
		return nil
	}

	err := m.Drag(action.ButtonLeft, 0, 0, 100, 100, 0)
	require.Error(t, err)

	events := rec.Strings()
	assert.Equal(t, "button primary up", events[len(events)-1])
}

func TestClickAndDoubleClick(t *testing.T) {
	m, rec, _ := newMouse()

	require.NoError(t, m.Click(action.ButtonRight, 5, 6))
	require.NoError(t, m.DoubleClick(action.ButtonLeft, 7, 8))

	assert.Equal(t, []string{
		"move 5,6",
		"button secondary down", "button secondary up",
		"move 7,8",
		"button primary down", "button primary up",
		"button primary down", "button primary up",
	}, rec.Strings())
}

func TestUnknownButtonFallsBackToPrimary(t *testing.T) {
	m, rec, _ := newMouse()

	require.NoError(t, m.Click(action.OtherButton(12), 1, 1))
	assert.Equal(t, []string{"move 1,1", "button primary down", "button primary up"}, rec.Strings())
}

func TestPressHolds(t *testing.T) {
	m, rec, sl := newMouse()

	require.NoError(t, m.Press(action.ButtonMiddle, 3, 4, 750*time.Millisecond))
	assert.Equal(t, []string{"move 3,4", "button middle down", "button middle up"}, rec.Strings())
	assert.Equal(t, []time.Duration{750 * time.Millisecond}, sl.calls)
}

func TestScroll(t *testing.T) {
	m, rec, _ := newMouse()

	require.NoError(t, m.Scroll(-2, 3))
	require.NoError(t, m.Scroll(0, -1))
	assert.Equal(t, []string{"scroll vertical 3", "scroll horizontal -2", "scroll vertical -1"}, rec.Strings())
}
