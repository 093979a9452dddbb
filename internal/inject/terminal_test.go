package inject

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTTY struct {
	bytes.Buffer
	rows, cols uint16
	closed     bool
}

func (f *fakeTTY) Size() (uint16, uint16, error) { return f.rows, f.cols, nil }

func (f *fakeTTY) Close() error {
	f.closed = true
	return nil
}

func newTerm() (*Terminal, *fakeTTY) {
	tty := &fakeTTY{rows: 24, cols: 80}
	return NewTerminal(tty), tty
}

func chord(t *testing.T, term *Terminal, mods []KeyCode, key KeyCode) {
	t.Helper()
	for _, m := range mods {
		require.NoError(t, term.InjectKey(m, Press))
	}
	require.NoError(t, term.InjectKey(key, Press))
	require.NoError(t, term.InjectKey(key, Release))
	for i := len(mods) - 1; i >= 0; i-- {
		require.NoError(t, term.InjectKey(mods[i], Release))
	}
}

func TestTerminalKeys(t *testing.T) {
	tests := []struct {
		name string
		mods []KeyCode
		key  KeyCode
		want string
	}{
		{"letter", nil, "a", "a"},
		{"shift letter", []KeyCode{"lshift"}, "a", "A"},
		{"shift digit", []KeyCode{"shift"}, "1", "!"},
		{"ctrl letter", []KeyCode{"ctrl"}, "c", "\x03"},
		{"ctrl shift letter", []KeyCode{"rctrl", "shift"}, "z", "\x1a"},
		{"ctrl bracket", []KeyCode{"ctrl"}, "[", "\x1b"},
		{"alt letter", []KeyCode{"alt"}, "x", "\x1bx"},
		{"meta letter", []KeyCode{"cmd"}, "b", "\x1bb"},
		{"enter", nil, "enter", "\r"},
		{"numpad enter", nil, "num_enter", "\r"},
		{"tab", nil, "tab", "\t"},
		{"shift tab", []KeyCode{"shift"}, "tab", "\x1b[Z"},
		{"escape", nil, "esc", "\x1b"},
		{"backspace", nil, "backspace", "\x7f"},
		{"ctrl space", []KeyCode{"ctrl"}, "space", "\x00"},
		{"arrow", nil, "up", "\x1b[A"},
		{"ctrl arrow", []KeyCode{"ctrl"}, "right", "\x1b[1;5C"},
		{"shift alt arrow", []KeyCode{"shift", "alt"}, "left", "\x1b[1;4D"},
		{"home", nil, "home", "\x1b[H"},
		{"f1", nil, "f1", "\x1bOP"},
		{"shift f1", []KeyCode{"shift"}, "f1", "\x1b[1;2P"},
		{"f5", nil, "f5", "\x1b[15~"},
		{"delete", nil, "delete", "\x1b[3~"},
		{"ctrl pagedown", []KeyCode{"ctrl"}, "pagedown", "\x1b[6;5~"},
		{"numpad digit", nil, "num7", "7"},
		{"numpad operator", nil, "num_mul", "*"},
		{"unicode", nil, "é", "é"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term, tty := newTerm()
			chord(t, term, tt.mods, tt.key)
			assert.Equal(t, tt.want, tty.String())
		})
	}
}

func TestTerminalModifiersAloneWriteNothing(t *testing.T) {
	term, tty := newTerm()
	chord(t, term, []KeyCode{"ctrl", "shift", "alt"}, "lshift")
	assert.Empty(t, tty.String())
	assert.Zero(t, term.held())
}

func TestTerminalUnsupportedKey(t *testing.T) {
	term, tty := newTerm()

	err := term.InjectKey("audio_vol_up", Press)
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.Empty(t, tty.String())

	// releases never fail
	assert.NoError(t, term.InjectKey("audio_vol_up", Release))
}

func TestTerminalText(t *testing.T) {
	term, tty := newTerm()
	require.NoError(t, term.InjectText("héllo\n"))
	assert.Equal(t, "héllo\n", tty.String())
}

func TestTerminalMouse(t *testing.T) {
	term, tty := newTerm()

	require.NoError(t, term.MovePointer(4, 2))
	assert.Empty(t, tty.String(), "motion without a button is not reported")

	require.NoError(t, term.InjectButton(ButtonPrimary, Press))
	require.NoError(t, term.MovePointer(6, 3))
	require.NoError(t, term.InjectButton(ButtonPrimary, Release))

	assert.Equal(t, "\x1b[<0;5;3M\x1b[<32;7;4M\x1b[<0;7;4m", tty.String())
}

func TestTerminalMouseButtonsAndModifiers(t *testing.T) {
	term, tty := newTerm()

	require.NoError(t, term.InjectKey("ctrl", Press))
	require.NoError(t, term.InjectButton(ButtonSecondary, Press))
	require.NoError(t, term.InjectButton(ButtonSecondary, Release))
	require.NoError(t, term.InjectKey("ctrl", Release))
	require.NoError(t, term.InjectButton(ButtonBack, Press))

	assert.Equal(t, "\x1b[<18;1;1M\x1b[<18;1;1m\x1b[<128;1;1M", tty.String())
	assert.ErrorIs(t, term.InjectButton(ButtonCode(42), Press), ErrUnsupported)
}

func TestTerminalScroll(t *testing.T) {
	term, tty := newTerm()

	require.NoError(t, term.InjectScroll(Vertical, 2))
	require.NoError(t, term.InjectScroll(Vertical, -1))
	require.NoError(t, term.InjectScroll(Horizontal, 1))
	require.NoError(t, term.InjectScroll(Horizontal, -1))
	require.NoError(t, term.InjectScroll(Vertical, 0))

	assert.Equal(t,
		"\x1b[<64;1;1M\x1b[<64;1;1M\x1b[<65;1;1M\x1b[<67;1;1M\x1b[<66;1;1M",
		tty.String())
}

type brokenTTY struct{}

func (brokenTTY) Write([]byte) (int, error)       { return 0, errors.New("pty closed") }
func (brokenTTY) Size() (uint16, uint16, error) { return 0, 0, errors.New("pty closed") }

func TestTerminalWriteErrors(t *testing.T) {
	term := NewTerminal(brokenTTY{})
	assert.Error(t, term.InjectText("x"))
	_, _, err := term.ScreenSize()
	assert.Error(t, err)
	assert.NoError(t, term.Close())
}

func TestTerminalScreenSizeAndClose(t *testing.T) {
	term, tty := newTerm()

	w, h, err := term.ScreenSize()
	require.NoError(t, err)
	assert.Equal(t, 80, w)
	assert.Equal(t, 24, h)

	require.NoError(t, term.Close())
	assert.True(t, tty.closed)
}
