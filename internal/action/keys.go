package action

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Key is a platform-independent keyboard key. Named keys come from the
// enumeration below; OtherKey carries an opaque numeric code for anything
// the enumeration does not cover.
type Key struct {
	name  string
	code  uint32
	other bool
}

// Logical keys
var (
	KeyBackspace   = Key{name: "Backspace"}
	KeyTab         = Key{name: "Tab"}
	KeyEnter       = Key{name: "Enter"}
	KeyShift       = Key{name: "Shift"}
	KeyCtrl        = Key{name: "Ctrl"}
	KeyAlt         = Key{name: "Alt"}
	KeyCapsLock    = Key{name: "CapsLock"}
	KeyEscape      = Key{name: "Escape"}
	KeySpace       = Key{name: "Space"}
	KeyPageUp      = Key{name: "PageUp"}
	KeyPageDown    = Key{name: "PageDown"}
	KeyEnd         = Key{name: "End"}
	KeyHome        = Key{name: "Home"}
	KeyArrowLeft   = Key{name: "ArrowLeft"}
	KeyArrowUp     = Key{name: "ArrowUp"}
	KeyArrowRight  = Key{name: "ArrowRight"}
	KeyArrowDown   = Key{name: "ArrowDown"}
	KeyPrintScreen = Key{name: "PrintScreen"}
	KeyInsert      = Key{name: "Insert"}
	KeyDelete      = Key{name: "Delete"}

	KeyNum0 = Key{name: "Num0"}
	KeyNum1 = Key{name: "Num1"}
	KeyNum2 = Key{name: "Num2"}
	KeyNum3 = Key{name: "Num3"}
	KeyNum4 = Key{name: "Num4"}
	KeyNum5 = Key{name: "Num5"}
	KeyNum6 = Key{name: "Num6"}
	KeyNum7 = Key{name: "Num7"}
	KeyNum8 = Key{name: "Num8"}
	KeyNum9 = Key{name: "Num9"}

	KeyA = Key{name: "A"}
	KeyB = Key{name: "B"}
	KeyC = Key{name: "C"}
	KeyD = Key{name: "D"}
	KeyE = Key{name: "E"}
	KeyF = Key{name: "F"}
	KeyG = Key{name: "G"}
	KeyH = Key{name: "H"}
	KeyI = Key{name: "I"}
	KeyJ = Key{name: "J"}
	KeyK = Key{name: "K"}
	KeyL = Key{name: "L"}
	KeyM = Key{name: "M"}
	KeyN = Key{name: "N"}
	KeyO = Key{name: "O"}
	KeyP = Key{name: "P"}
	KeyQ = Key{name: "Q"}
	KeyR = Key{name: "R"}
	KeyS = Key{name: "S"}
	KeyT = Key{name: "T"}
	KeyU = Key{name: "U"}
	KeyV = Key{name: "V"}
	KeyW = Key{name: "W"}
	KeyX = Key{name: "X"}
	KeyY = Key{name: "Y"}
	KeyZ = Key{name: "Z"}

	KeyF1  = Key{name: "F1"}
	KeyF2  = Key{name: "F2"}
	KeyF3  = Key{name: "F3"}
	KeyF4  = Key{name: "F4"}
	KeyF5  = Key{name: "F5"}
	KeyF6  = Key{name: "F6"}
	KeyF7  = Key{name: "F7"}
	KeyF8  = Key{name: "F8"}
	KeyF9  = Key{name: "F9"}
	KeyF10 = Key{name: "F10"}
	KeyF11 = Key{name: "F11"}
	KeyF12 = Key{name: "F12"}

	KeySemicolon    = Key{name: "Semicolon"}
	KeyEqual        = Key{name: "Equal"}
	KeyComma        = Key{name: "Comma"}
	KeyMinus        = Key{name: "Minus"}
	KeyPeriod       = Key{name: "Period"}
	KeySlash        = Key{name: "Slash"}
	KeyBackquote    = Key{name: "Backquote"}
	KeyLeftBracket  = Key{name: "LeftBracket"}
	KeyBackslash    = Key{name: "Backslash"}
	KeyRightBracket = Key{name: "RightBracket"}
	KeyQuote        = Key{name: "Quote"}

	KeyNumpad0        = Key{name: "Numpad0"}
	KeyNumpad1        = Key{name: "Numpad1"}
	KeyNumpad2        = Key{name: "Numpad2"}
	KeyNumpad3        = Key{name: "Numpad3"}
	KeyNumpad4        = Key{name: "Numpad4"}
	KeyNumpad5        = Key{name: "Numpad5"}
	KeyNumpad6        = Key{name: "Numpad6"}
	KeyNumpad7        = Key{name: "Numpad7"}
	KeyNumpad8        = Key{name: "Numpad8"}
	KeyNumpad9        = Key{name: "Numpad9"}
	KeyNumpadMultiply = Key{name: "NumpadMultiply"}
	KeyNumpadAdd      = Key{name: "NumpadAdd"}
	KeyNumpadSubtract = Key{name: "NumpadSubtract"}
	KeyNumpadDecimal  = Key{name: "NumpadDecimal"}
	KeyNumpadDivide   = Key{name: "NumpadDivide"}
	KeyNumpadEnter    = Key{name: "NumpadEnter"}

	KeyMeta               = Key{name: "Meta"}
	KeyContextMenu        = Key{name: "ContextMenu"}
	KeyVolumeMute         = Key{name: "VolumeMute"}
	KeyVolumeDown         = Key{name: "VolumeDown"}
	KeyVolumeUp           = Key{name: "VolumeUp"}
	KeyMediaPlayPause     = Key{name: "MediaPlayPause"}
	KeyMediaStop          = Key{name: "MediaStop"}
	KeyMediaNextTrack     = Key{name: "MediaNextTrack"}
	KeyMediaPreviousTrack = Key{name: "MediaPreviousTrack"}
)

var namedKeys = []Key{
	KeyBackspace, KeyTab, KeyEnter, KeyShift, KeyCtrl, KeyAlt, KeyCapsLock,
	KeyEscape, KeySpace, KeyPageUp, KeyPageDown, KeyEnd, KeyHome,
	KeyArrowLeft, KeyArrowUp, KeyArrowRight, KeyArrowDown, KeyPrintScreen,
	KeyInsert, KeyDelete,
	KeyNum0, KeyNum1, KeyNum2, KeyNum3, KeyNum4, KeyNum5, KeyNum6, KeyNum7, KeyNum8, KeyNum9,
	KeyA, KeyB, KeyC, KeyD, KeyE, KeyF, KeyG, KeyH, KeyI, KeyJ, KeyK, KeyL, KeyM,
	KeyN, KeyO, KeyP, KeyQ, KeyR, KeyS, KeyT, KeyU, KeyV, KeyW, KeyX, KeyY, KeyZ,
	KeyF1, KeyF2, KeyF3, KeyF4, KeyF5, KeyF6, KeyF7, KeyF8, KeyF9, KeyF10, KeyF11, KeyF12,
	KeySemicolon, KeyEqual, KeyComma, KeyMinus, KeyPeriod, KeySlash, KeyBackquote,
	KeyLeftBracket, KeyBackslash, KeyRightBracket, KeyQuote,
	KeyNumpad0, KeyNumpad1, KeyNumpad2, KeyNumpad3, KeyNumpad4,
	KeyNumpad5, KeyNumpad6, KeyNumpad7, KeyNumpad8, KeyNumpad9,
	KeyNumpadMultiply, KeyNumpadAdd, KeyNumpadSubtract, KeyNumpadDecimal,
	KeyNumpadDivide, KeyNumpadEnter,
	KeyMeta, KeyContextMenu, KeyVolumeMute, KeyVolumeDown, KeyVolumeUp,
	KeyMediaPlayPause, KeyMediaStop, KeyMediaNextTrack, KeyMediaPreviousTrack,
}

var keysByName = func() map[string]Key {
	m := make(map[string]Key, len(namedKeys))
	for _, k := range namedKeys {
		m[k.name] = k
	}
	return m
}()

// Keys returns every named logical key in declaration order.
func Keys() []Key {
	out := make([]Key, len(namedKeys))
	copy(out, namedKeys)
	return out
}

// KeyByName returns the named key with the exact variant name, e.g. "PageUp".
func KeyByName(name string) (Key, bool) {
	k, ok := keysByName[name]
	return k, ok
}

// OtherKey returns the escape-hatch key carrying an opaque code.
func OtherKey(code uint32) Key {
	return Key{code: code, other: true}
}

// Name returns the variant name, or "" for OtherKey values.
func (k Key) Name() string { return k.name }

// Other reports the opaque code for keys built with OtherKey.
func (k Key) Other() (uint32, bool) { return k.code, k.other }

// IsZero reports whether k is the unset zero Key.
func (k Key) IsZero() bool { return k == Key{} }

// Known reports whether k is one of the enumerated keys.
func (k Key) Known() bool {
	_, ok := keysByName[k.name]
	return ok && !k.other
}

func (k Key) String() string {
	if k.other {
		return fmt.Sprintf("Other(%d)", k.code)
	}
	if k.name == "" {
		return "<none>"
	}
	return k.name
}

type otherKeyJSON struct {
	Other uint32 `json:"Other"`
}

func (k Key) MarshalJSON() ([]byte, error) {
	switch {
	case k.other:
		return json.Marshal(otherKeyJSON{Other: k.code})
	case k.name == "":
		return []byte("null"), nil
	default:
		return json.Marshal(k.name)
	}
}

// UnmarshalJSON accepts "Name" or {"Other": code}. Names outside the
// enumeration are kept as-is so newer payloads still decode; they map to
// no physical key.
func (k *Key) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*k = Key{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		if name == "" {
			return fmt.Errorf("empty key name")
		}
		if named, ok := keysByName[name]; ok {
			*k = named
			return nil
		}
		*k = Key{name: name}
		return nil
	case len(data) > 0 && data[0] == '{':
		var o otherKeyJSON
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&o); err != nil {
			return fmt.Errorf("invalid key object: %w", err)
		}
		*k = OtherKey(o.Other)
		return nil
	default:
		return fmt.Errorf("invalid key %s", data)
	}
}

// Location disambiguates physically distinct keys sharing a logical identity.
type Location string

const (
	LocationStandard Location = "Standard"
	LocationLeft     Location = "Left"
	LocationRight    Location = "Right"
	LocationNumpad   Location = "Numpad"
)

func (l Location) valid() bool {
	switch l {
	case LocationStandard, LocationLeft, LocationRight, LocationNumpad:
		return true
	}
	return false
}

// At returns a pointer to l, for the optional location fields.
func At(l Location) *Location { return &l }

// Button is a mouse button. OtherButton carries an opaque code.
type Button struct {
	name  string
	code  uint8
	other bool
}

var (
	ButtonLeft    = Button{name: "Left"}
	ButtonRight   = Button{name: "Right"}
	ButtonMiddle  = Button{name: "Middle"}
	ButtonBack    = Button{name: "Back"}
	ButtonForward = Button{name: "Forward"}
)

var buttonsByName = map[string]Button{
	"Left":    ButtonLeft,
	"Right":   ButtonRight,
	"Middle":  ButtonMiddle,
	"Back":    ButtonBack,
	"Forward": ButtonForward,
}

// OtherButton returns the escape-hatch button carrying an opaque code.
func OtherButton(code uint8) Button {
	return Button{code: code, other: true}
}

// Name returns the variant name, or "" for OtherButton values.
func (b Button) Name() string { return b.name }

// Other reports the opaque code for buttons built with OtherButton.
func (b Button) Other() (uint8, bool) { return b.code, b.other }

// IsZero reports whether b is the unset zero Button.
func (b Button) IsZero() bool { return b == Button{} }

// Known reports whether b is one of the enumerated buttons.
func (b Button) Known() bool {
	_, ok := buttonsByName[b.name]
	return ok && !b.other
}

func (b Button) String() string {
	if b.other {
		return fmt.Sprintf("Other(%d)", b.code)
	}
	if b.name == "" {
		return "<none>"
	}
	return b.name
}

type otherButtonJSON struct {
	Other uint8 `json:"Other"`
}

func (b Button) MarshalJSON() ([]byte, error) {
	switch {
	case b.other:
		return json.Marshal(otherButtonJSON{Other: b.code})
	case b.name == "":
		return []byte("null"), nil
	default:
		return json.Marshal(b.name)
	}
}

func (b *Button) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*b = Button{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		if name == "" {
			return fmt.Errorf("empty button name")
		}
		if named, ok := buttonsByName[name]; ok {
			*b = named
			return nil
		}
		*b = Button{name: name}
		return nil
	case len(data) > 0 && data[0] == '{':
		var o otherButtonJSON
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&o); err != nil {
			return fmt.Errorf("invalid button object: %w", err)
		}
		*b = OtherButton(o.Other)
		return nil
	default:
		return fmt.Errorf("invalid button %s", data)
	}
}
