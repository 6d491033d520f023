package export

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const maxSheetName = 31

var forbiddenSheetChars = strings.NewReplacer(
	"[", "", "]", "", ":", "", "*", "", "?", "", "/", "", "\\", "", "'", "",
)

// sheetNamer hands out unique, Excel-legal sheet names.
type sheetNamer struct {
	used map[string]struct{}
}

func newSheetNamer() *sheetNamer {
	return &sheetNamer{used: make(map[string]struct{})}
}

// name sanitizes base and appends " (2)", " (3)" and so on until the
// result is unused. Excel compares sheet names case-insensitively.
func (n *sheetNamer) name(base string) string {
	base = strings.TrimSpace(forbiddenSheetChars.Replace(base))
	if base == "" {
		base = "Sheet"
	}
	candidate := truncateRunes(base, maxSheetName)
	for i := 2; n.taken(candidate); i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		candidate = strings.TrimSpace(truncateRunes(base, maxSheetName-len(suffix))) + suffix
	}
	n.used[strings.ToLower(candidate)] = struct{}{}
	return candidate
}

func (n *sheetNamer) taken(name string) bool {
	_, ok := n.used[strings.ToLower(name)]
	return ok
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max])
}
