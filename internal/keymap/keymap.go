// Package keymap translates logical keys and buttons into the physical
// codes the injection backends expect.
package keymap

import (
	"github.com/pleimann/marionette/internal/action"
	"github.com/pleimann/marionette/internal/inject"
)

// keyCodes is the location-independent table. Shift and Ctrl have
// side-specific codes in sidedCodes.
var keyCodes = map[action.Key]inject.KeyCode{
	action.KeyBackspace:   "backspace",
	action.KeyTab:         "tab",
	action.KeyEnter:       "enter",
	action.KeyShift:       "shift",
	action.KeyCtrl:        "ctrl",
	action.KeyAlt:         "alt",
	action.KeyCapsLock:    "capslock",
	action.KeyEscape:      "esc",
	action.KeySpace:       "space",
	action.KeyPageUp:      "pageup",
	action.KeyPageDown:    "pagedown",
	action.KeyEnd:         "end",
	action.KeyHome:        "home",
	action.KeyArrowLeft:   "left",
	action.KeyArrowUp:     "up",
	action.KeyArrowRight:  "right",
	action.KeyArrowDown:   "down",
	action.KeyPrintScreen: "printscreen",
	action.KeyInsert:      "insert",
	action.KeyDelete:      "delete",

	action.KeyNum0: "0",
	action.KeyNum1: "1",
	action.KeyNum2: "2",
	action.KeyNum3: "3",
	action.KeyNum4: "4",
	action.KeyNum5: "5",
	action.KeyNum6: "6",
	action.KeyNum7: "7",
	action.KeyNum8: "8",
	action.KeyNum9: "9",

	action.KeyA: "a",
	action.KeyB: "b",
	action.KeyC: "c",
	action.KeyD: "d",
	action.KeyE: "e",
	action.KeyF: "f",
	action.KeyG: "g",
	action.KeyH: "h",
	action.KeyI: "i",
	action.KeyJ: "j",
	action.KeyK: "k",
	action.KeyL: "l",
	action.KeyM: "m",
	action.KeyN: "n",
	action.KeyO: "o",
	action.KeyP: "p",
	action.KeyQ: "q",
	action.KeyR: "r",
	action.KeyS: "s",
	action.KeyT: "t",
	action.KeyU: "u",
	action.KeyV: "v",
	action.KeyW: "w",
	action.KeyX: "x",
	action.KeyY: "y",
	action.KeyZ: "z",

	action.KeyF1:  "f1",
	action.KeyF2:  "f2",
	action.KeyF3:  "f3",
	action.KeyF4:  "f4",
	action.KeyF5:  "f5",
	action.KeyF6:  "f6",
	action.KeyF7:  "f7",
	action.KeyF8:  "f8",
	action.KeyF9:  "f9",
	action.KeyF10: "f10",
	action.KeyF11: "f11",
	action.KeyF12: "f12",

	action.KeySemicolon:    ";",
	action.KeyEqual:        "=",
	action.KeyComma:        ",",
	action.KeyMinus:        "-",
	action.KeyPeriod:       ".",
	action.KeySlash:        "/",
	action.KeyBackquote:    "`",
	action.KeyLeftBracket:  "[",
	action.KeyBackslash:    "\\",
	action.KeyRightBracket: "]",
	action.KeyQuote:        "'",

	action.KeyNumpad0:        "num0",
	action.KeyNumpad1:        "num1",
	action.KeyNumpad2:        "num2",
	action.KeyNumpad3:        "num3",
	action.KeyNumpad4:        "num4",
	action.KeyNumpad5:        "num5",
	action.KeyNumpad6:        "num6",
	action.KeyNumpad7:        "num7",
	action.KeyNumpad8:        "num8",
	action.KeyNumpad9:        "num9",
	action.KeyNumpadMultiply: "num_mul",
	action.KeyNumpadAdd:      "num_plus",
	action.KeyNumpadSubtract: "num_minus",
	action.KeyNumpadDecimal:  "num_decimal",
	action.KeyNumpadDivide:   "num_div",
	action.KeyNumpadEnter:    "num_enter",

	action.KeyMeta:               "cmd",
	action.KeyContextMenu:        "menu",
	action.KeyVolumeMute:         "audio_mute",
	action.KeyVolumeDown:         "audio_vol_down",
	action.KeyVolumeUp:           "audio_vol_up",
	action.KeyMediaPlayPause:     "audio_play",
	action.KeyMediaStop:          "audio_stop",
	action.KeyMediaNextTrack:     "audio_next",
	action.KeyMediaPreviousTrack: "audio_prev",
}

type sided struct {
	left, right inject.KeyCode
}

var sidedCodes = map[action.Key]sided{
	action.KeyShift: {left: "lshift", right: "rshift"},
	action.KeyCtrl:  {left: "lctrl", right: "rctrl"},
}

var buttonCodes = map[action.Button]inject.ButtonCode{
	action.ButtonLeft:    inject.ButtonPrimary,
	action.ButtonRight:   inject.ButtonSecondary,
	action.ButtonMiddle:  inject.ButtonMiddle,
	action.ButtonBack:    inject.ButtonBack,
	action.ButtonForward: inject.ButtonForward,
}

// MapKey returns the physical code for key. Left and Right locations only
// change the result for keys with side-specific codes; every other key
// maps the same regardless of location. ok is false for keys that have no
// physical code, which callers treat as a no-op.
func MapKey(key action.Key, loc *action.Location) (code inject.KeyCode, ok bool) {
	if loc != nil {
		if s, found := sidedCodes[key]; found {
			switch *loc {
			case action.LocationLeft:
				return s.left, true
			case action.LocationRight:
				return s.right, true
			}
		}
	}
	code, ok = keyCodes[key]
	return code, ok
}

// MapButton returns the physical code for button. Unrecognised buttons
// fall back to the primary button; substituted reports when that happened.
func MapButton(button action.Button) (code inject.ButtonCode, substituted bool) {
	if code, ok := buttonCodes[button]; ok {
		return code, false
	}
	return inject.ButtonPrimary, true
}

// Entry is one row of the key table.
type Entry struct {
	Key   action.Key
	Code  inject.KeyCode
	Left  inject.KeyCode
	Right inject.KeyCode
}

// Table lists every named logical key with its resolved codes. Keys
// without a code have an empty Code.
func Table() []Entry {
	keys := action.Keys()
	out := make([]Entry, 0, len(keys))
	for _, k := range keys {
		e := Entry{Key: k, Code: keyCodes[k]}
		if s, ok := sidedCodes[k]; ok {
			e.Left, e.Right = s.left, s.right
		}
		out = append(out, e)
	}
	return out
}
