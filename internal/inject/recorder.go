package inject

import (
	"fmt"
	"sync"
)

// EventKind identifies a recorded injection call.
type EventKind int

const (
	EventMove EventKind = iota
	EventButton
	EventKey
	EventText
	EventScroll
)

// Event is one call made against an Injector.
type Event struct {
	Kind   EventKind
	X, Y   int
	Button ButtonCode
	Key    KeyCode
	Dir    Direction
	Text   string
	Axis   Axis
	Delta  int
}

func (e Event) String() string {
	switch e.Kind {
	case EventMove:
		return fmt.Sprintf("move %d,%d", e.X, e.Y)
	case EventButton:
		return fmt.Sprintf("button %s %s", e.Button, e.Dir)
	case EventKey:
		return fmt.Sprintf("key %s %s", e.Key, e.Dir)
	case EventText:
		return fmt.Sprintf("text %q", e.Text)
	case EventScroll:
		return fmt.Sprintf("scroll %s %d", e.Axis, e.Delta)
	default:
		return "unknown"
	}
}

// Recorder is an Injector that records every event instead of touching
// the OS. It backs dry runs and tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	width  int
	height int

	// Fail, when set, is consulted before recording; a non-nil return is
	// reported as the backend's error and the event is not recorded.
	Fail func(Event) error
}

// NewRecorder creates a recorder reporting the given screen size.
func NewRecorder(width, height int) *Recorder {
	return &Recorder{width: width, height: height}
}

func (r *Recorder) record(e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		if err := r.Fail(e); err != nil {
			return err
		}
	}
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) MovePointer(x, y int) error {
	return r.record(Event{Kind: EventMove, X: x, Y: y})
}

func (r *Recorder) InjectButton(code ButtonCode, dir Direction) error {
	return r.record(Event{Kind: EventButton, Button: code, Dir: dir})
}

func (r *Recorder) InjectKey(code KeyCode, dir Direction) error {
	return r.record(Event{Kind: EventKey, Key: code, Dir: dir})
}

func (r *Recorder) InjectText(text string) error {
	return r.record(Event{Kind: EventText, Text: text})
}

func (r *Recorder) InjectScroll(axis Axis, delta int) error {
	return r.record(Event{Kind: EventScroll, Axis: axis, Delta: delta})
}

func (r *Recorder) ScreenSize() (int, int, error) {
	return r.width, r.height, nil
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Strings returns the recorded events in their String form.
func (r *Recorder) Strings() []string {
	events := r.Events()
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.String()
	}
	return out
}

// Reset clears the recording.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
