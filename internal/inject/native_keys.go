package inject

import (
	"strings"
	"unicode/utf8"
)

// unshiftedKeys are the single-character key names the desktop backend
// can toggle directly.
const unshiftedKeys = "abcdefghijklmnopqrstuvwxyz0123456789`-=[]\\;',./"

// typedAsText reports whether code is a bare character with no key of its
// own, such as "A" or "!", which has to be typed rather than toggled.
func typedAsText(code KeyCode) bool {
	r, size := utf8.DecodeRuneInString(string(code))
	if size == 0 || size != len(code) || r == utf8.RuneError {
		return false
	}
	return !strings.ContainsRune(unshiftedKeys, r)
}
