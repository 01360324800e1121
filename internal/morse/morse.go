// internal/morse/morse.go
// Package morse holds the letter table and the press classification rule.
package morse

import (
	"strings"
	"time"
)

// Symbol is a single element of a sequence.
type Symbol byte

const (
	// Dot is a short press
	Dot Symbol = '.'
	// Dash is a long press
	Dash Symbol = '-'
)

// DashRatio is the fixed multiplier between the configured unit duration
// and the short/long boundary. A press shorter than unit*DashRatio is a dot.
const DashRatio = 3

// Unknown is emitted for sequences that are not in the table.
const Unknown = '?'

// MaxDepth is the number of elements in the longest letter.
const MaxDepth = 4

// Tree is the A-Z table laid out as a binary heap.
// Index 1 is the origin, dot child of i is 2i, dash child is 2i+1.
var Tree = [1 << (MaxDepth + 1)]rune{
	0,   // 0: unused
	0,   // 1: origin
	'E', // 2: .
	'T', // 3: -
	'I', // 4: ..
	'A', // 5: .-
	'N', // 6: -.
	'M', // 7: --
	'S', // 8: ...
	'U', // 9: ..-
	'R', // 10: .-.
	'W', // 11: .--
	'D', // 12: -..
	'K', // 13: -.-
	'G', // 14: --.
	'O', // 15: ---
	'H', // 16: ....
	'V', // 17: ...-
	'F', // 18: ..-.
	0,   // 19: ..--
	'L', // 20: .-..
	0,   // 21: .-.-
	'P', // 22: .--.
	'J', // 23: .---
	'B', // 24: -...
	'X', // 25: -..-
	'C', // 26: -.-.
	'Y', // 27: -.--
	'Z', // 28: --..
	'Q', // 29: --.-
	0,   // 30: ---.
	0,   // 31: ----
}

// Classify maps a press duration to a symbol.
// The boundary itself (duration == unit*DashRatio) is a dash.
func Classify(duration, unit time.Duration) Symbol {
	if duration < unit*DashRatio {
		return Dot
	}
	return Dash
}

// Index returns the heap position of seq in Tree.
// ok is false for the empty string, for sequences deeper than MaxDepth
// and for strings containing anything but dots and dashes.
func Index(seq string) (int, bool) {
	if seq == "" || len(seq) > MaxDepth {
		return 0, false
	}
	idx := 1
	for i := 0; i < len(seq); i++ {
		switch Symbol(seq[i]) {
		case Dot:
			idx = idx * 2
		case Dash:
			idx = idx*2 + 1
		default:
			return 0, false
		}
	}
	return idx, true
}

// Lookup returns the letter for an exact sequence match.
func Lookup(seq string) (rune, bool) {
	idx, ok := Index(seq)
	if !ok || Tree[idx] == 0 {
		return 0, false
	}
	return Tree[idx], true
}

// Letter is Lookup with Unknown for misses.
func Letter(seq string) rune {
	if r, ok := Lookup(seq); ok {
		return r
	}
	return Unknown
}

// Code returns the sequence for an uppercase or lowercase letter.
func Code(letter rune) (string, bool) {
	if letter >= 'a' && letter <= 'z' {
		letter -= 'a' - 'A'
	}
	for idx, r := range Tree {
		if r != 0 && r == letter {
			return PathOf(idx), true
		}
	}
	return "", false
}

// PathOf converts a heap index back into its sequence.
func PathOf(idx int) string {
	if idx < 2 {
		return ""
	}
	var b strings.Builder
	for bit := highBit(idx) >> 1; bit > 0; bit >>= 1 {
		if idx&bit != 0 {
			b.WriteByte(byte(Dash))
		} else {
			b.WriteByte(byte(Dot))
		}
	}
	return b.String()
}

// Valid reports whether seq only contains dots and dashes.
func Valid(seq string) bool {
	for i := 0; i < len(seq); i++ {
		if s := Symbol(seq[i]); s != Dot && s != Dash {
			return false
		}
	}
	return true
}

// Letters returns A-Z with their sequences in alphabetical order.
func Letters() []Entry {
	entries := make([]Entry, 0, 26)
	for r := 'A'; r <= 'Z'; r++ {
		code, _ := Code(r)
		entries = append(entries, Entry{Letter: r, Code: code})
	}
	return entries
}

// Entry is one row of the table.
type Entry struct {
	Letter rune
	Code   string
}

func highBit(v int) int {
	b := 1
	for v > 1 {
		v >>= 1
		b <<= 1
	}
	return b
}
