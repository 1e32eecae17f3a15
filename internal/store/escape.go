package store

import (
	"strconv"
	"strings"
)

// EscapeFilename keeps lowercase letters and digits and replaces every other
// character with "_" followed by its code point, so ids that differ only by
// case never collide on case-insensitive filesystems.
func EscapeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
		b.WriteString(strconv.Itoa(int(r)))
	}
	return b.String()
}
