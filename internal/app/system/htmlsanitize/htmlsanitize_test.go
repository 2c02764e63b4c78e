package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/projecthub/internal/app/system/htmlsanitize"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain text", "Hello, World!", "Hello, World!"},
		{"safe html", "<p><strong>Bold</strong> and <em>italic</em></p>", "<p><strong>Bold</strong> and <em>italic</em></p>"},
		{"removes script", "<p>Hello</p><script>alert('xss')</script>", "<p>Hello</p>"},
		{"lists", "<ul><li>One</li><li>Two</li></ul>", "<ul><li>One</li><li>Two</li></ul>"},
		{"table class", `<table class="grid"><tr><td>x</td></tr></table>`, `<table class="grid"><tr><td>x</td></tr></table>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := htmlsanitize.Sanitize(tt.input)
			if got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitize_RemovesDangerousAttributes(t *testing.T) {
	inputs := []string{
		`<button onclick="alert('xss')">Click</button>`,
		`<a href="javascript:alert('xss')">Click</a>`,
		`<img src="x" onerror="alert(1)">`,
	}
	for _, in := range inputs {
		got := htmlsanitize.Sanitize(in)
		if strings.Contains(got, "alert") {
			t.Errorf("Sanitize(%q) = %q, expected script removed", in, got)
		}
	}
}

func TestSanitize_AllowsSafeLinks(t *testing.T) {
	got := htmlsanitize.Sanitize(`<a href="https://example.com">Link</a>`)
	if !strings.Contains(got, "https://example.com") {
		t.Errorf("expected safe link preserved, got %q", got)
	}
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain", "Looks great!", "Looks great!"},
		{"strips tags", "<b>Nice</b> work", "Nice work"},
		{"drops script content", "<script>alert(1)</script>ok", "ok"},
		{"keeps ampersand", "A & B", "A & B"},
		{"trims", "  hi  ", "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := htmlsanitize.PlainText(tt.input)
			if got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsPlainText(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"Hello, World!", true},
		{"5 < 10", true},
		{"5 > 3", true},
		{"<p>Hello</p>", false},
		{"text</div>", false},
	}
	for _, tt := range tests {
		if got := htmlsanitize.IsPlainText(tt.input); got != tt.want {
			t.Errorf("IsPlainText(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
