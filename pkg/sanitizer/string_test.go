package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"only spaces", "    ", ""},
		{"leading and trailing spaces", "  Maria Lopez  ", "Maria Lopez"},
		{"internal runs collapse", "Maria   \t Lopez", "Maria Lopez"},
		{"newlines collapse", "Maria\nLopez", "Maria Lopez"},
		{"already normalized", "Maria Lopez", "Maria Lopez"},
		{"unicode preserved", "José  Álvarez", "José Álvarez"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.expected {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTrimAndNormalize_Idempotent(t *testing.T) {
	inputs := []string{"  a  b ", "x", "", "  José\t\tÁlvarez \n"}

	for _, in := range inputs {
		once := TrimAndNormalize(in)
		twice := TrimAndNormalize(once)
		if once != twice {
			t.Errorf("not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  Spouse ", "spouse"},
		{"CHILD", "child"},
		{"Family   Friend", "family friend"},
	}

	for _, tt := range tests {
		got := NormalizeLabel(tt.input)
		if got != tt.expected {
			t.Errorf("NormalizeLabel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
