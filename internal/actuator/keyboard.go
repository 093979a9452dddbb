// Package actuator turns logical keyboard and mouse gestures into calls on
// the injection primitive.
package actuator

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/pleimann/marionette/internal/action"
	"github.com/pleimann/marionette/internal/inject"
	"github.com/pleimann/marionette/internal/keymap"
)

// Sleeper pauses the calling goroutine. Every suspension point in the
// actuators goes through it.
type Sleeper func(time.Duration)

// Keyboard sequences key events. It keeps no per-key state: pressing a
// key twice without releasing it simply injects two presses.
type Keyboard struct {
	inj   inject.Injector
	sleep Sleeper
	log   zerolog.Logger
}

// NewKeyboard creates a keyboard actuator over inj.
func NewKeyboard(inj inject.Injector, sleep Sleeper, log zerolog.Logger) *Keyboard {
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Keyboard{inj: inj, sleep: sleep, log: log}
}

// KeyDown presses key. Keys without a physical code are skipped.
func (k *Keyboard) KeyDown(key action.Key, loc *action.Location) error {
	return k.key(key, loc, inject.Press)
}

// KeyUp releases key. Keys without a physical code are skipped.
func (k *Keyboard) KeyUp(key action.Key, loc *action.Location) error {
	return k.key(key, loc, inject.Release)
}

func (k *Keyboard) key(key action.Key, loc *action.Location, dir inject.Direction) error {
	code, ok := keymap.MapKey(key, loc)
	if !ok {
		k.log.Debug().Stringer("key", key).Msg("No physical code for key, skipping")
		return nil
	}
	return inject.Wrap("key "+dir.String(), k.inj.InjectKey(code, dir))
}

// PressKey presses then releases key with nothing in between.
func (k *Keyboard) PressKey(key action.Key, loc *action.Location) error {
	if err := k.KeyDown(key, loc); err != nil {
		return err
	}
	return k.KeyUp(key, loc)
}

// PressSequence presses each key in order, pausing delay between keys.
func (k *Keyboard) PressSequence(keys []action.Key, delay time.Duration) error {
	for i, key := range keys {
		if err := k.PressKey(key, nil); err != nil {
			return err
		}
		if delay > 0 && i < len(keys)-1 {
			k.sleep(delay)
		}
	}
	return nil
}

// TypeText injects text as a single text event.
func (k *Keyboard) TypeText(text string) error {
	if text == "" {
		return nil
	}
	return inject.Wrap("text", k.inj.InjectText(text))
}

// TypeTextPaced types text one character at a time. Each character is
// pressed and released, then the keyboard pauses delay before the next.
func (k *Keyboard) TypeTextPaced(text string, delay time.Duration) error {
	runes := []rune(text)
	for i, r := range runes {
		code := inject.KeyCode(string(r))
		if err := inject.Wrap("key down", k.inj.InjectKey(code, inject.Press)); err != nil {
			return err
		}
		if err := inject.Wrap("key up", k.inj.InjectKey(code, inject.Release)); err != nil {
			return err
		}
		if i < len(runes)-1 {
			k.sleep(delay)
		}
	}
	return nil
}

// Hotkey holds modifiers down in order, taps key, and releases the
// modifiers in reverse order. If a press fails, the modifiers already
// held are still released before the error is returned.
func (k *Keyboard) Hotkey(modifiers []action.Key, key action.Key, loc *action.Location) error {
	held := 0
	var err error
	for _, m := range modifiers {
		if err = k.KeyDown(m, nil); err != nil {
			break
		}
		held++
	}

	if err == nil {
		err = k.PressKey(key, loc)
	}

	for i := held - 1; i >= 0; i-- {
		if upErr := k.KeyUp(modifiers[i], nil); upErr != nil && err == nil {
			err = upErr
		}
	}
	return err
}
