package model

import (
	"strconv"
	"strings"
)

// ClockHour returns the hour component of an "HH:mm" wall-clock string.
// Parsing is lenient: leading whitespace is skipped and only the leading
// digits of the hour field count ("9", "09" and "09:30" all yield 9).
// ok is false when the hour field has no leading digits.
func ClockHour(s string) (int, bool) {
	field, _, _ := strings.Cut(s, ":")
	return leadingInt(field)
}

// ClockMinute returns the minute component of an "HH:mm" string with the
// same leniency as ClockHour. A missing minute field reports ok=false.
func ClockMinute(s string) (int, bool) {
	_, field, found := strings.Cut(s, ":")
	if !found {
		return 0, false
	}
	return leadingInt(field)
}

func leadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t")
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
