package compose

import (
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain name unchanged",
			in:   "P1_Smart Greenhouse",
			want: "P1_Smart Greenhouse",
		},
		{
			name: "unsafe characters replaced",
			in:   `a<b>c:d"e/f\g|h?i*j`,
			want: "a_b_c_d_e_f_g_h_i_j",
		},
		{
			name: "repeated separators collapse",
			in:   "a  b__c",
			want: "a b_c",
		},
		{
			name: "leading and trailing dots and spaces trimmed",
			in:   " .name. ",
			want: "name",
		},
		{
			name: "very long names truncated",
			in:   strings.Repeat("x", 300),
			want: strings.Repeat("x", maxFilenameLength),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.in); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatOutputName(t *testing.T) {
	got := FormatOutputName("{project_id}_{project_name}", "P1", "My/Project")
	if got != "P1_My_Project" {
		t.Errorf("FormatOutputName() = %q, want %q", got, "P1_My_Project")
	}

	// Placeholders are optional in the pattern.
	if got := FormatOutputName("poster-{project_id}", "P2", "ignored"); got != "poster-P2" {
		t.Errorf("FormatOutputName() = %q, want %q", got, "poster-P2")
	}
}
