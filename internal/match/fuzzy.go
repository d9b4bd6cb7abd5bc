// Package match implements the launcher's text matching and ranking math.
//
// Both functions expect lowercased input. They operate on bytes, which keeps
// the hot path allocation-free; multi-byte runes simply need every byte to
// fall inside the window.
package match

import "strings"

// Window is the maximum number of target bytes scanned for each pattern
// byte after the previous hit.
const Window = 5

// Matches reports whether pattern occurs in target as a sparse substring:
// the first pattern byte anchors the walk and every following byte must
// appear within Window bytes of the previous hit. Every anchor is tried
// left to right until one walk consumes the whole pattern.
func Matches(target, pattern string) bool {
	if pattern == "" {
		return true
	}
	if target == "" {
		return false
	}

	first := pattern[0]
	rest := target
	for {
		pos := strings.IndexByte(rest, first)
		if pos < 0 {
			return false
		}
		if walk(pattern, rest[pos:]) {
			return true
		}
		if pos+1 >= len(rest) {
			return false
		}
		rest = rest[pos+1:]
	}
}

// walk checks pattern[1:] against target, where target[0] is the anchor.
func walk(pattern, target string) bool {
	cursor := 1
	for i := 1; i < len(pattern); i++ {
		limit := cursor + Window
		if limit > len(target) {
			limit = len(target)
		}
		found := false
		for cursor < limit {
			c := target[cursor]
			cursor++
			if c == pattern[i] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
