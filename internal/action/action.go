// Package action defines the declarative input actions the engine executes.
//
// An Action is a closed set of variants: leaf variants describe a single
// mouse or keyboard gesture, Sequence and Parallel compose child actions.
// Actions are values; they are built once (programmatically or by Decode)
// and never mutated.
package action

// Action is implemented only by the variant types in this package.
type Action interface {
	// Type returns the variant name used as the wire tag.
	Type() string
	isAction()
}

// MouseMove moves the pointer to absolute screen coordinates.
type MouseMove struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// MouseClick moves to (X, Y) and clicks Button once.
type MouseClick struct {
	Button Button `json:"button"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

// MouseDoubleClick moves to (X, Y) and clicks Button twice.
type MouseDoubleClick struct {
	Button Button `json:"button"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

// MousePress holds Button down at (X, Y) for DurationMs.
type MousePress struct {
	Button     Button `json:"button"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	DurationMs uint64 `json:"duration_ms"`
}

// MouseDrag drags from the start point to the end point over DurationMs.
type MouseDrag struct {
	Button     Button `json:"button"`
	StartX     int    `json:"start_x"`
	StartY     int    `json:"start_y"`
	EndX       int    `json:"end_x"`
	EndY       int    `json:"end_y"`
	DurationMs uint64 `json:"duration_ms"`
}

// MouseScroll scrolls by the given deltas.
type MouseScroll struct {
	DeltaX int `json:"delta_x"`
	DeltaY int `json:"delta_y"`
}

// KeyPress presses and releases a key.
type KeyPress struct {
	Key      Key       `json:"key"`
	Location *Location `json:"location"`
}

// KeyDown presses a key without releasing it.
type KeyDown struct {
	Key      Key       `json:"key"`
	Location *Location `json:"location"`
}

// KeyUp releases a key.
type KeyUp struct {
	Key      Key       `json:"key"`
	Location *Location `json:"location"`
}

// KeySequence presses each key in order, optionally pausing between keys.
type KeySequence struct {
	Keys       []Key   `json:"keys"`
	KeyDelayMs *uint64 `json:"key_delay_ms"`
}

// TypeText types a string. With CharDelayMs set it is typed one
// character at a time.
type TypeText struct {
	Text        string  `json:"text"`
	CharDelayMs *uint64 `json:"char_delay_ms"`
}

// Hotkey holds Modifiers in order, taps Key, then releases the modifiers
// in reverse order.
type Hotkey struct {
	Modifiers []Key     `json:"modifiers"`
	Key       Key       `json:"key"`
	Location  *Location `json:"location"`
}

// Delay pauses without injecting anything.
type Delay struct {
	Milliseconds uint64 `json:"milliseconds"`
}

// Sequence runs Actions one after another.
type Sequence struct {
	Actions []Action `json:"actions"`
}

// Parallel runs Actions concurrently.
type Parallel struct {
	Actions []Action `json:"actions"`
}

func (MouseMove) Type() string        { return "MouseMove" }
func (MouseClick) Type() string       { return "MouseClick" }
func (MouseDoubleClick) Type() string { return "MouseDoubleClick" }
func (MousePress) Type() string       { return "MousePress" }
func (MouseDrag) Type() string        { return "MouseDrag" }
func (MouseScroll) Type() string      { return "MouseScroll" }
func (KeyPress) Type() string         { return "KeyPress" }
func (KeyDown) Type() string          { return "KeyDown" }
func (KeyUp) Type() string            { return "KeyUp" }
func (KeySequence) Type() string      { return "KeySequence" }
func (TypeText) Type() string         { return "TypeText" }
func (Hotkey) Type() string           { return "Hotkey" }
func (Delay) Type() string            { return "Delay" }
func (Sequence) Type() string         { return "Sequence" }
func (Parallel) Type() string         { return "Parallel" }

func (MouseMove) isAction()        {}
func (MouseClick) isAction()       {}
func (MouseDoubleClick) isAction() {}
func (MousePress) isAction()       {}
func (MouseDrag) isAction()        {}
func (MouseScroll) isAction()      {}
func (KeyPress) isAction()         {}
func (KeyDown) isAction()          {}
func (KeyUp) isAction()            {}
func (KeySequence) isAction()      {}
func (TypeText) isAction()         {}
func (Hotkey) isAction()           {}
func (Delay) isAction()            {}
func (Sequence) isAction()         {}
func (Parallel) isAction()         {}

// Millis returns a pointer to ms, for the optional delay fields.
func Millis(ms uint64) *uint64 { return &ms }
