package action

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// keyAliases maps lower-case names used in hotkey strings to logical keys.
var keyAliases = map[string]Key{
	"enter":       KeyEnter,
	"return":      KeyEnter,
	"tab":         KeyTab,
	"esc":         KeyEscape,
	"escape":      KeyEscape,
	"space":       KeySpace,
	"backspace":   KeyBackspace,
	"delete":      KeyDelete,
	"del":         KeyDelete,
	"insert":      KeyInsert,
	"ins":         KeyInsert,
	"home":        KeyHome,
	"end":         KeyEnd,
	"pageup":      KeyPageUp,
	"pgup":        KeyPageUp,
	"pagedown":    KeyPageDown,
	"pgdn":        KeyPageDown,
	"up":          KeyArrowUp,
	"down":        KeyArrowDown,
	"left":        KeyArrowLeft,
	"right":       KeyArrowRight,
	"capslock":    KeyCapsLock,
	"printscreen": KeyPrintScreen,
	"menu":        KeyContextMenu,
	"ctrl":        KeyCtrl,
	"control":     KeyCtrl,
	"alt":         KeyAlt,
	"option":      KeyAlt,
	"shift":       KeyShift,
	"meta":        KeyMeta,
	"cmd":         KeyMeta,
	"command":     KeyMeta,
	"win":         KeyMeta,
	"super":       KeyMeta,
	";":           KeySemicolon,
	"=":           KeyEqual,
	",":           KeyComma,
	"-":           KeyMinus,
	".":           KeyPeriod,
	"/":           KeySlash,
	"`":           KeyBackquote,
	"[":           KeyLeftBracket,
	"\\":          KeyBackslash,
	"]":           KeyRightBracket,
	"'":           KeyQuote,
}

var modifierAliases = map[string]Key{
	"ctrl":    KeyCtrl,
	"control": KeyCtrl,
	"alt":     KeyAlt,
	"option":  KeyAlt,
	"shift":   KeyShift,
	"meta":    KeyMeta,
	"cmd":     KeyMeta,
	"command": KeyMeta,
	"win":     KeyMeta,
	"super":   KeyMeta,
}

// LookupKey resolves a human key name such as "a", "f5", "pgdn" or
// "PageDown" to a logical key.
func LookupKey(name string) (Key, bool) {
	if k, ok := keysByName[name]; ok {
		return k, true
	}
	lower := strings.ToLower(name)
	if k, ok := keyAliases[lower]; ok {
		return k, true
	}
	if utf8.RuneCountInString(lower) == 1 {
		c := lower[0]
		switch {
		case c >= 'a' && c <= 'z':
			return keysByName[strings.ToUpper(lower)], true
		case c >= '0' && c <= '9':
			return keysByName["Num"+lower], true
		}
	}
	if len(lower) >= 2 && lower[0] == 'f' {
		if k, ok := keysByName["F"+lower[1:]]; ok {
			return k, true
		}
	}
	for _, k := range namedKeys {
		if strings.EqualFold(k.name, name) {
			return k, true
		}
	}
	return Key{}, false
}

// ParseHotkey parses a key string like "ctrl+shift+c" into a Hotkey.
// Modifiers keep the order they were written in.
func ParseHotkey(s string) (Hotkey, error) {
	var hk Hotkey

	parts := strings.Split(s, "+")
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		// Last part is the actual key
		if i == len(parts)-1 {
			k, ok := LookupKey(part)
			if !ok {
				return Hotkey{}, fmt.Errorf("invalid key: %s", part)
			}
			hk.Key = k
			break
		}

		mod, ok := modifierAliases[strings.ToLower(part)]
		if !ok {
			return Hotkey{}, fmt.Errorf("unknown modifier: %s", part)
		}
		hk.Modifiers = append(hk.Modifiers, mod)
	}

	if hk.Key.IsZero() {
		return Hotkey{}, fmt.Errorf("no key specified")
	}

	return hk, nil
}
