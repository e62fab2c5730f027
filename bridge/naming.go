package bridge

import (
	"strings"
	"unicode"
)

// scriptName converts an exported Go method name to the name script sees.
// The leading word is lowercased (Greet -> greet, HTTPGet -> httpGet,
// ID -> id) and an overload suffix after the last underscore is dropped
// (Greet_Twice -> greet), so several Go methods can share one script name.
func scriptName(goName string) string {
	if i := strings.LastIndexByte(goName, '_'); i > 0 {
		goName = goName[:i]
	}
	if goName == "" {
		return ""
	}

	runes := []rune(goName)
	upperEnd := 0
	for upperEnd < len(runes) && unicode.IsUpper(runes[upperEnd]) {
		upperEnd++
	}

	// Last uppercase before lowercase starts the next word, not part of acronym
	if upperEnd > 1 && upperEnd < len(runes) && unicode.IsLower(runes[upperEnd]) {
		upperEnd--
	}
	if upperEnd == 0 {
		return goName
	}

	for i := 0; i < upperEnd; i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}
