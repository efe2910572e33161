// Package utils provides shared utilities for text, math, and logging.
package utils

// TruncateRunes returns s cut to maxRunes characters with "..." appended when it was
// longer. Multi-byte characters are never split. maxRunes <= 0 returns s unchanged.
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i] + "..."
		}
		n++
	}
	return s
}
