package inject

import (
	"fmt"
	"io"
	"strconv"
	"sync"
	"unicode"
	"unicode/utf8"
)

// TerminalDevice is the input side of a terminal, such as a PTY.
type TerminalDevice interface {
	io.Writer
	Size() (rows, cols uint16, err error)
}

type modifier uint8

const (
	modShift modifier = 1 << iota
	modAlt
	modCtrl
	modMeta
)

var modifierCodes = map[KeyCode]modifier{
	"shift":  modShift,
	"lshift": modShift,
	"rshift": modShift,
	"ctrl":   modCtrl,
	"lctrl":  modCtrl,
	"rctrl":  modCtrl,
	"alt":    modAlt,
	"cmd":    modMeta,
}

// Terminal injects input into a terminal program by writing the byte
// sequences an xterm-compatible terminal would send. Pointer coordinates
// are zero-based cells; mouse events use SGR (1006) encoding. Terminals
// have no key-up events, so key releases only update modifier state.
type Terminal struct {
	mu      sync.Mutex
	dev     TerminalDevice
	mods    map[modifier]int
	buttons map[ButtonCode]bool
	x, y    int
}

// NewTerminal creates a Terminal writing to dev.
func NewTerminal(dev TerminalDevice) *Terminal {
	return &Terminal{
		dev:     dev,
		mods:    make(map[modifier]int),
		buttons: make(map[ButtonCode]bool),
	}
}

func (t *Terminal) held() modifier {
	var m modifier
	for mod, n := range t.mods {
		if n > 0 {
			m |= mod
		}
	}
	return m
}

func (t *Terminal) write(p []byte) error {
	_, err := t.dev.Write(p)
	return err
}

func (t *Terminal) InjectKey(code KeyCode, dir Direction) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if mod, ok := modifierCodes[code]; ok {
		if dir == Press {
			t.mods[mod]++
		} else if t.mods[mod] > 0 {
			t.mods[mod]--
		}
		return nil
	}
	if dir == Release {
		return nil
	}

	seq, err := encodeKey(code, t.held())
	if err != nil {
		return err
	}
	return t.write(seq)
}

func (t *Terminal) InjectText(text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.write([]byte(text))
}

func (t *Terminal) MovePointer(x, y int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.x, t.y = max(x, 0), max(y, 0)

	// motion is only reported while a button is held
	for _, b := range []ButtonCode{ButtonPrimary, ButtonMiddle, ButtonSecondary} {
		if t.buttons[b] {
			cb, _ := sgrButton(b)
			return t.write(t.sgr(cb+32, true))
		}
	}
	return nil
}

func (t *Terminal) InjectButton(code ButtonCode, dir Direction) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	cb, ok := sgrButton(code)
	if !ok {
		return fmt.Errorf("button %s: %w", code, ErrUnsupported)
	}
	t.buttons[code] = dir == Press
	return t.write(t.sgr(cb, dir == Press))
}

// InjectScroll sends one wheel event per unit of delta. Positive vertical
// deltas scroll up, positive horizontal deltas scroll right.
func (t *Terminal) InjectScroll(axis Axis, delta int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var cb int
	switch {
	case axis == Vertical && delta > 0:
		cb = 64
	case axis == Vertical:
		cb = 65
	case delta > 0:
		cb = 67
	default:
		cb = 66
	}

	n := delta
	if n < 0 {
		n = -n
	}
	for i := 0; i < n; i++ {
		if err := t.write(t.sgr(cb, true)); err != nil {
			return err
		}
	}
	return nil
}

// ScreenSize reports the terminal size in cells.
func (t *Terminal) ScreenSize() (int, int, error) {
	rows, cols, err := t.dev.Size()
	if err != nil {
		return 0, 0, err
	}
	return int(cols), int(rows), nil
}

// Close closes the device when it supports closing.
func (t *Terminal) Close() error {
	if c, ok := t.dev.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func sgrButton(b ButtonCode) (int, bool) {
	switch b {
	case ButtonPrimary:
		return 0, true
	case ButtonMiddle:
		return 1, true
	case ButtonSecondary:
		return 2, true
	case ButtonBack:
		return 128, true
	case ButtonForward:
		return 129, true
	}
	return 0, false
}

func (t *Terminal) sgr(cb int, press bool) []byte {
	m := t.held()
	if m&modShift != 0 {
		cb |= 4
	}
	if m&(modAlt|modMeta) != 0 {
		cb |= 8
	}
	if m&modCtrl != 0 {
		cb |= 16
	}
	final := 'm'
	if press {
		final = 'M'
	}
	return fmt.Appendf(nil, "\x1b[<%d;%d;%d%c", cb, t.x+1, t.y+1, final)
}

// csiKeys end in a letter: ESC [ X, or ESC [ 1 ; m X with modifiers.
var csiKeys = map[KeyCode]byte{
	"up":    'A',
	"down":  'B',
	"right": 'C',
	"left":  'D',
	"home":  'H',
	"end":   'F',
}

// ss3Keys are sent as ESC O X without modifiers.
var ss3Keys = map[KeyCode]byte{
	"f1": 'P',
	"f2": 'Q',
	"f3": 'R',
	"f4": 'S',
}

// tildeKeys are sent as ESC [ n ~, or ESC [ n ; m ~ with modifiers.
var tildeKeys = map[KeyCode]int{
	"insert":   2,
	"delete":   3,
	"pageup":   5,
	"pagedown": 6,
	"f5":       15,
	"f6":       17,
	"f7":       18,
	"f8":       19,
	"f9":       20,
	"f10":      21,
	"f11":      23,
	"f12":      24,
}

var plainKeys = map[KeyCode]string{
	"enter":       "\r",
	"num_enter":   "\r",
	"tab":         "\t",
	"esc":         "\x1b",
	"space":       " ",
	"backspace":   "\x7f",
	"num0":        "0",
	"num1":        "1",
	"num2":        "2",
	"num3":        "3",
	"num4":        "4",
	"num5":        "5",
	"num6":        "6",
	"num7":        "7",
	"num8":        "8",
	"num9":        "9",
	"num_mul":     "*",
	"num_plus":    "+",
	"num_minus":   "-",
	"num_decimal": ".",
	"num_div":     "/",
}

// shiftedChars is the US layout shift row.
var shiftedChars = map[rune]rune{
	'1': '!', '2': '@', '3': '#', '4': '$', '5': '%',
	'6': '^', '7': '&', '8': '*', '9': '(', '0': ')',
	'-': '_', '=': '+', '[': '{', ']': '}', '\\': '|',
	';': ':', '\'': '"', ',': '<', '.': '>', '/': '?', '`': '~',
}

// xterm modifier parameter: 1 + shift(1) + alt(2) + ctrl(4) + meta(8).
func modParam(m modifier) int {
	return 1 + int(m)
}

func encodeKey(code KeyCode, m modifier) ([]byte, error) {
	if c, ok := csiKeys[code]; ok {
		if m == 0 {
			return []byte{0x1b, '[', c}, nil
		}
		return fmt.Appendf(nil, "\x1b[1;%d%c", modParam(m), c), nil
	}
	if c, ok := ss3Keys[code]; ok {
		if m == 0 {
			return []byte{0x1b, 'O', c}, nil
		}
		return fmt.Appendf(nil, "\x1b[1;%d%c", modParam(m), c), nil
	}
	if n, ok := tildeKeys[code]; ok {
		if m == 0 {
			return []byte("\x1b[" + strconv.Itoa(n) + "~"), nil
		}
		return fmt.Appendf(nil, "\x1b[%d;%d~", n, modParam(m)), nil
	}

	switch {
	case code == "tab" && m&modShift != 0:
		return []byte("\x1b[Z"), nil
	case code == "space" && m&modCtrl != 0:
		return withAlt([]byte{0}, m), nil
	}

	if s, ok := plainKeys[code]; ok {
		return withAlt([]byte(s), m), nil
	}

	r, size := utf8.DecodeRuneInString(string(code))
	if r == utf8.RuneError || size != len(code) {
		return nil, fmt.Errorf("key %s: %w", code, ErrUnsupported)
	}

	if m&modShift != 0 {
		if s, ok := shiftedChars[r]; ok {
			r = s
		} else {
			r = unicode.ToUpper(r)
		}
	}

	if m&modCtrl != 0 {
		if b, ok := controlByte(r); ok {
			return withAlt([]byte{b}, m), nil
		}
	}

	return withAlt([]byte(string(r)), m), nil
}

func withAlt(seq []byte, m modifier) []byte {
	if m&(modAlt|modMeta) == 0 {
		return seq
	}
	return append([]byte{0x1b}, seq...)
}

// controlByte returns the C0 byte for ctrl+r.
func controlByte(r rune) (byte, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return byte(r-'a') + 1, true
	case r >= 'A' && r <= 'Z':
		return byte(r-'A') + 1, true
	}
	switch r {
	case '@', ' ', '2':
		return 0x00, true
	case '[':
		return 0x1b, true
	case '\\':
		return 0x1c, true
	case ']':
		return 0x1d, true
	case '^', '6':
		return 0x1e, true
	case '_', '-', '/':
		return 0x1f, true
	case '?':
		return 0x7f, true
	}
	return 0, false
}
