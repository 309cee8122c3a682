package services

import "testing"

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{"spaces", "King Edward Medical University", "King-Edward-Medical-University"},
		{"parens", "Aga Khan University (Karachi)", "Aga-Khan-University-Karachi"},
		{"slashes", `a/b\c:d`, "a-b-c-d"},
		{"quotes", `"x"`, "x"},
		{"empty", "  ", "checklist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.input); got != tt.expect {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}
