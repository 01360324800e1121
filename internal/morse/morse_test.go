package morse

import (
	"testing"
	"time"
)

var canonical = map[string]rune{
	".-": 'A', "-...": 'B', "-.-.": 'C', "-..": 'D', ".": 'E',
	"..-.": 'F', "--.": 'G', "....": 'H', "..": 'I', ".---": 'J',
	"-.-": 'K', ".-..": 'L', "--": 'M', "-.": 'N', "---": 'O',
	".--.": 'P', "--.-": 'Q', ".-.": 'R', "...": 'S', "-": 'T',
	"..-": 'U', "...-": 'V', ".--": 'W', "-..-": 'X', "-.--": 'Y',
	"--..": 'Z',
}

func TestLookup_AllLetters(t *testing.T) {
	if len(canonical) != 26 {
		t.Fatalf("canonical table has %d entries, want 26", len(canonical))
	}
	for seq, want := range canonical {
		got, ok := Lookup(seq)
		if !ok {
			t.Errorf("Lookup(%q) found nothing, want %c", seq, want)
			continue
		}
		if got != want {
			t.Errorf("Lookup(%q) = %c, want %c", seq, got, want)
		}
	}
}

func TestLookup_Misses(t *testing.T) {
	tests := []string{
		"",
		"......",
		"...---...",
		"..--",
		".-.-",
		"---.",
		"----",
		".....",
		"abc",
		".x",
	}
	for _, seq := range tests {
		t.Run(seq, func(t *testing.T) {
			if r, ok := Lookup(seq); ok {
				t.Errorf("Lookup(%q) = %c, want no match", seq, r)
			}
			if got := Letter(seq); got != Unknown {
				t.Errorf("Letter(%q) = %c, want %c", seq, got, Unknown)
			}
		})
	}
}

func TestTree_NoDuplicateLetters(t *testing.T) {
	seen := make(map[rune]int)
	for idx, r := range Tree {
		if r == 0 {
			continue
		}
		if prev, dup := seen[r]; dup {
			t.Errorf("letter %c at index %d and %d", r, prev, idx)
		}
		seen[r] = idx
	}
	if len(seen) != 26 {
		t.Errorf("tree holds %d letters, want 26", len(seen))
	}
}

func TestClassify(t *testing.T) {
	unit := 50 * time.Millisecond

	tests := []struct {
		name     string
		duration time.Duration
		want     Symbol
	}{
		{"zero", 0, Dot},
		{"one unit", 50 * time.Millisecond, Dot},
		{"just below boundary", 149 * time.Millisecond, Dot},
		{"boundary", 150 * time.Millisecond, Dash},
		{"above boundary", 200 * time.Millisecond, Dash},
		{"very long", 10 * time.Second, Dash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.duration, unit); got != tt.want {
				t.Errorf("Classify(%v, %v) = %c, want %c", tt.duration, unit, got, tt.want)
			}
		})
	}
}

func TestClassify_Sweep(t *testing.T) {
	for _, unitMs := range []int{1, 7, 50, 120} {
		unit := time.Duration(unitMs) * time.Millisecond
		boundary := unit * DashRatio
		for d := time.Duration(0); d < boundary*2; d += time.Millisecond {
			want := Dot
			if d >= boundary {
				want = Dash
			}
			if got := Classify(d, unit); got != want {
				t.Fatalf("unit %v: Classify(%v) = %c, want %c", unit, d, got, want)
			}
		}
	}
}

func TestCode_RoundTrip(t *testing.T) {
	for seq, letter := range canonical {
		code, ok := Code(letter)
		if !ok || code != seq {
			t.Errorf("Code(%c) = %q, %v; want %q", letter, code, ok, seq)
		}
	}
	if code, ok := Code('q'); !ok || code != "--.-" {
		t.Errorf("Code('q') = %q, %v; want --.-", code, ok)
	}
	if _, ok := Code('5'); ok {
		t.Error("Code('5') should not be supported")
	}
}

func TestIndex(t *testing.T) {
	tests := []struct {
		seq    string
		want   int
		wantOK bool
	}{
		{".", 2, true},
		{"-", 3, true},
		{".-", 5, true},
		{"--.-", 29, true},
		{"", 0, false},
		{".....", 0, false},
		{".a", 0, false},
	}
	for _, tt := range tests {
		got, ok := Index(tt.seq)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Index(%q) = %d, %v; want %d, %v", tt.seq, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestPathOf(t *testing.T) {
	for idx := 2; idx < len(Tree); idx++ {
		seq := PathOf(idx)
		back, ok := Index(seq)
		if !ok || back != idx {
			t.Errorf("Index(PathOf(%d)) = %d, %v", idx, back, ok)
		}
	}
	if got := PathOf(1); got != "" {
		t.Errorf("PathOf(1) = %q, want empty", got)
	}
}

func TestValid(t *testing.T) {
	if !Valid("") || !Valid(".-.-") {
		t.Error("dot/dash strings should be valid")
	}
	if Valid(". -") || Valid("x") {
		t.Error("strings with other characters should be invalid")
	}
}

func TestLetters(t *testing.T) {
	entries := Letters()
	if len(entries) != 26 {
		t.Fatalf("Letters() returned %d entries, want 26", len(entries))
	}
	if entries[0].Letter != 'A' || entries[0].Code != ".-" {
		t.Errorf("first entry = %+v, want A .-", entries[0])
	}
	if entries[25].Letter != 'Z' || entries[25].Code != "--.." {
		t.Errorf("last entry = %+v, want Z --..", entries[25])
	}
}
