package action

import (
	"fmt"
	"unicode/utf8"
)

// MaxDepth bounds composite nesting.
const MaxDepth = 64

// ErrTooDeep is returned for trees nested deeper than MaxDepth.
var ErrTooDeep = fmt.Errorf("actions nested deeper than %d", MaxDepth)

// Validate checks that a and all of its children are self-consistent.
// The interpreter relies on this having been done once at construction.
func Validate(a Action) error {
	return validate(a, 0)
}

func validate(a Action, depth int) error {
	if depth > MaxDepth {
		return ErrTooDeep
	}
	switch v := a.(type) {
	case nil:
		return fmt.Errorf("missing action")
	case MouseMove, MouseScroll, Delay:
		return nil
	case MouseClick:
		return checkButton(v.Button)
	case MouseDoubleClick:
		return checkButton(v.Button)
	case MousePress:
		return checkButton(v.Button)
	case MouseDrag:
		return checkButton(v.Button)
	case KeyPress:
		return checkKey(v.Key, v.Location)
	case KeyDown:
		return checkKey(v.Key, v.Location)
	case KeyUp:
		return checkKey(v.Key, v.Location)
	case KeySequence:
		for i, k := range v.Keys {
			if err := checkKey(k, nil); err != nil {
				return fmt.Errorf("keys[%d]: %w", i, err)
			}
		}
		return nil
	case TypeText:
		if !utf8.ValidString(v.Text) {
			return fmt.Errorf("text is not valid UTF-8")
		}
		return nil
	case Hotkey:
		for i, m := range v.Modifiers {
			if err := checkKey(m, nil); err != nil {
				return fmt.Errorf("modifiers[%d]: %w", i, err)
			}
		}
		return checkKey(v.Key, v.Location)
	case Sequence:
		return validateChildren(v.Type(), v.Actions, depth)
	case Parallel:
		return validateChildren(v.Type(), v.Actions, depth)
	default:
		return fmt.Errorf("unsupported action %T", a)
	}
}

func validateChildren(kind string, children []Action, depth int) error {
	for i, child := range children {
		if err := validate(child, depth+1); err != nil {
			return fmt.Errorf("%s[%d]: %w", kind, i, err)
		}
	}
	return nil
}

func checkKey(k Key, loc *Location) error {
	if k.IsZero() {
		return fmt.Errorf("key is required")
	}
	if loc != nil && !loc.valid() {
		return fmt.Errorf("invalid key location %q", *loc)
	}
	return nil
}

func checkButton(b Button) error {
	if b.IsZero() {
		return fmt.Errorf("button is required")
	}
	return nil
}
