package tui

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestEditRuneTyping(t *testing.T) {
	tests := []struct {
		name  string
		start string
		key   string
		want  string
	}{
		{"first letter", "", "M", "M"},
		{"digit in age field", "1", "0", "10"},
		{"at sign in email", "mom", "@", "mom@"},
		{"space key name", "Saturday", "space", "Saturday "},
		{"literal space", "Saturday", " ", "Saturday "},
		{"accented letter", "Zo", "é", "Zoé"},
		{"emoji", "see you ", "\U0001f44b", "see you \U0001f44b"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := editRune(tc.start, tc.key); got != tc.want {
				t.Errorf("editRune(%q, %q) = %q, want %q", tc.start, tc.key, got, tc.want)
			}
		})
	}
}

func TestEditRuneBackspaceRemovesWholeRune(t *testing.T) {
	tests := []struct {
		start string
		want  string
	}{
		{"", ""},
		{"a", ""},
		{"Maya", "May"},
		{"Zoé", "Zo"},
		{"hi \U0001f44b", "hi "},
		{"你好", "你"},
	}
	for _, tc := range tests {
		if got := editRune(tc.start, "backspace"); got != tc.want {
			t.Errorf("editRune(%q, backspace) = %q, want %q", tc.start, got, tc.want)
		}
	}
}

func TestEditRuneIgnoresNamedKeys(t *testing.T) {
	// Navigation and submit keys reach editRune from every form; none of
	// them may end up in the text.
	keys := []string{
		"enter", "esc", "tab", "shift+tab", "up", "down", "left", "right",
		"ctrl+c", "ctrl+s", "shift+enter", "alt+enter", "f1", "pgup", "home",
	}
	for _, key := range keys {
		t.Run(key, func(t *testing.T) {
			if got := editRune("Leo", key); got != "Leo" {
				t.Errorf("editRune(%q, %q) = %q, want unchanged", "Leo", key, got)
			}
		})
	}
}

func TestEditRuneMultiRuneStringIgnored(t *testing.T) {
	// Only single runes are typed; anything longer is a key name.
	if got := editRune("", "hello world"); got != "" {
		t.Errorf("editRune with multi-rune key = %q, want empty", got)
	}
}

func TestEditRuneClampsAtMaxInputLen(t *testing.T) {
	full := strings.Repeat("x", maxInputLen)
	if got := editRune(full, "y"); got != full {
		t.Errorf("typing at the limit grew input to %d runes", utf8.RuneCountInString(got))
	}
	if got := editRune(full[:maxInputLen-1], "y"); utf8.RuneCountInString(got) != maxInputLen {
		t.Errorf("typing below the limit: got %d runes, want %d", utf8.RuneCountInString(got), maxInputLen)
	}
	if got := editRune(full, "backspace"); utf8.RuneCountInString(got) != maxInputLen-1 {
		t.Error("backspace should still work at the limit")
	}

	wide := strings.Repeat("好", maxInputLen)
	if got := editRune(wide, "好"); got != wide {
		t.Error("limit counts runes, not bytes")
	}
}

func TestTruncateToHeight(t *testing.T) {
	body := "Maya\nLeo\nIvy\nNoah\nZara\n"
	tests := []struct {
		name     string
		maxLines int
		want     string
	}{
		{"cuts after limit", 2, "Maya\nLeo\n"},
		{"exact fit", 5, body},
		{"room to spare", 10, body},
		{"zero means no limit", 0, body},
		{"negative means no limit", -3, body},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := truncateToHeight(body, tc.maxLines); got != tc.want {
				t.Errorf("truncateToHeight(%d) = %q, want %q", tc.maxLines, got, tc.want)
			}
		})
	}
}

func TestRenderInputStates(t *testing.T) {
	tests := []struct {
		name        string
		value       string
		focused     bool
		contains    []string
		notContains []string
	}{
		{"placeholder when idle", "", false, []string{"reply > ", "say hi"}, []string{"█"}},
		{"cursor only when focused and empty", "", true, []string{"█"}, []string{"say hi"}},
		{"value with cursor", "see you", true, []string{"see you", "█"}, []string{"say hi"}},
		{"value without cursor", "see you", false, []string{"see you"}, []string{"█", "say hi"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := renderInput("reply > ", tc.value, "say hi", tc.focused)
			for _, s := range tc.contains {
				if !strings.Contains(got, s) {
					t.Errorf("renderInput = %q, missing %q", got, s)
				}
			}
			for _, s := range tc.notContains {
				if strings.Contains(got, s) {
					t.Errorf("renderInput = %q, should not contain %q", got, s)
				}
			}
		})
	}
}

func TestMask(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"secret1", "•••••••"},
		{"pässwd", "••••••"},
	}
	for _, tc := range tests {
		if got := mask(tc.in); got != tc.want {
			t.Errorf("mask(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
