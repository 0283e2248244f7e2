package application

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/yuin/goldmark/parser"
)

func TestSanitizeMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Digit comparisons",
			input:    "value <5 and 10> limit",
			expected: "value &lt;5 and 10&gt; limit",
		},
		{
			name:     "Latency shorthand",
			input:    "responses in <100ms",
			expected: "responses in &lt;100ms",
		},
		{
			name:     "Unmatched opening bracket",
			input:    "see [the docs for details",
			expected: "see &#91;the docs for details",
		},
		{
			name:     "Matched brackets untouched",
			input:    "see [the docs](https://example.com)",
			expected: "see [the docs](https://example.com)",
		},
		{
			name:     "Link text with inline markup untouched",
			input:    "see [the <strong>docs</strong>](https://example.com)",
			expected: "see [the <strong>docs</strong>](https://example.com)",
		},
		{
			name:     "Unmatched bracket before inline markup escaped",
			input:    "see [the <strong>docs</strong> for details",
			expected: "see &#91;the <strong>docs</strong> for details",
		},
		{
			name:     "Unknown tag escaped",
			input:    "hello <script>alert(1)</script>",
			expected: "hello &lt;script&gt;alert(1)&lt;/script&gt;",
		},
		{
			name:     "Safe tag kept",
			input:    "a <strong>bold</strong> claim",
			expected: "a <strong>bold</strong> claim",
		},
		{
			name:     "Callout component normalized",
			input:    "<Callout>heads up</Callout>",
			expected: `<div class="callout">heads up</div>`,
		},
		{
			name:     "Digit inside kept tag attribute untouched",
			input:    `<img src="x" width=900>`,
			expected: `<img src="x" width=900>`,
		},
		{
			name:     "Plain text untouched",
			input:    "nothing special here",
			expected: "nothing special here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeMarkdown(tt.input)
			if got != tt.expected {
				t.Errorf("SanitizeMarkdown(%q) = %q, want %q", tt.input, got, tt.expected)
			}

			// Deterministic and idempotent: a second pass changes nothing.
			if again := SanitizeMarkdown(got); again != got {
				t.Errorf("SanitizeMarkdown is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestRenderHeadingsGetAnchors(t *testing.T) {
	r := NewMarkdownRenderer("example.com", false)

	out := string(r.Render("## Getting Started\n\ntext\n\n## Getting Started\n\nmore"))

	if !strings.Contains(out, `id="getting-started"`) {
		t.Errorf("expected slugified heading anchor, got %q", out)
	}
	if !strings.Contains(out, `id="getting-started-1"`) {
		t.Errorf("expected duplicate heading to get a counter suffix, got %q", out)
	}
}

func TestRenderLinks(t *testing.T) {
	r := NewMarkdownRenderer("example.com", false)

	out := string(r.Render("[external](https://other.example.org/page) and [internal](/about) and [own-host](https://example.com/hire)"))

	if !strings.Contains(out, `href="https://other.example.org/page" target="_blank" rel="noopener noreferrer"`) {
		t.Errorf("external link missing safety attributes: %q", out)
	}
	if strings.Contains(out, `href="/about" target=`) {
		t.Errorf("internal link should not open a new context: %q", out)
	}
	if strings.Contains(out, `href="https://example.com/hire" target=`) {
		t.Errorf("same-host link should not be treated as external: %q", out)
	}
}

func TestRenderImagesHaveDimensions(t *testing.T) {
	r := NewMarkdownRenderer("example.com", false)

	out := string(r.Render("![diagram](https://cdn.example.com/d.png)"))

	if !strings.Contains(out, `width="900"`) || !strings.Contains(out, `height="600"`) {
		t.Errorf("image missing intrinsic dimensions: %q", out)
	}
	if !strings.Contains(out, `alt="diagram"`) {
		t.Errorf("image missing alt text: %q", out)
	}
}

func TestRenderTable(t *testing.T) {
	r := NewMarkdownRenderer("example.com", false)

	out := string(r.Render("| a | b |\n|---|---|\n| 1 | 2 |\n"))

	if !strings.Contains(out, "<table>") {
		t.Errorf("expected table extension output, got %q", out)
	}
}

func TestRenderEmptyBody(t *testing.T) {
	r := NewMarkdownRenderer("example.com", false)

	for _, body := range []string{"", "   ", "\n\n"} {
		out := string(r.Render(body))
		if !strings.Contains(out, "No content available") {
			t.Errorf("Render(%q) = %q, want placeholder", body, out)
		}
	}
}

func TestRenderMalformedComponentDoesNotPanic(t *testing.T) {
	r := NewMarkdownRenderer("example.com", false)

	// Unbalanced custom component tag plus assorted breakage.
	out := string(r.Render("<Callout>\nvalue <5\n\n[broken link"))

	if out == "" {
		t.Fatal("expected output for malformed body, got empty string")
	}
	if strings.Contains(out, "<Callout>") {
		t.Errorf("raw component tag leaked into output: %q", out)
	}
}

type failingConverter struct{}

func (failingConverter) Convert(source []byte, w io.Writer, opts ...parser.ParseOption) error {
	return errors.New("compile exploded")
}

func TestRenderFallbackOnCompileError(t *testing.T) {
	r := &markdownRendererImpl{converter: failingConverter{}, debug: false}

	out := string(r.Render("# anything"))
	if !strings.Contains(out, "render-error") {
		t.Errorf("expected fallback block, got %q", out)
	}
	if strings.Contains(out, "compile exploded") {
		t.Errorf("raw error leaked outside debug mode: %q", out)
	}

	debug := &markdownRendererImpl{converter: failingConverter{}, debug: true}
	out = string(debug.Render("# anything"))
	if !strings.Contains(out, "compile exploded") {
		t.Errorf("debug fallback should include the raw error, got %q", out)
	}
}
