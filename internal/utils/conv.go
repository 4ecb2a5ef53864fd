package utils

import (
	"strconv"
)

// StringToInt converts string to int, returns 0 if error
func StringToInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}

// IntOr parses s and falls back to def when s is empty, malformed or not positive.
func IntOr(s string, def int) int {
	if i := StringToInt(s); i > 0 {
		return i
	}
	return def
}
