package application

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

var (
	// Authors paste text like "<5ms" or "CPU <3". A "<" straight into a digit
	// reads as an unclosed tag to the markup parser, so it is escaped up
	// front.
	reLtDigit = regexp.MustCompile(`<(\d)`)
	reDigitGt = regexp.MustCompile(`(\d)>`)

	reTag = regexp.MustCompile(`</?([A-Za-z][A-Za-z0-9-]*)([^<>]*)>`)
)

// safeTags is the inline HTML allowed to pass through to the compiler
// untouched. Anything tag-shaped outside this list is escaped to entities.
var safeTags = map[string]bool{
	"a": true, "abbr": true, "b": true, "blockquote": true, "br": true,
	"code": true, "del": true, "details": true, "div": true, "em": true,
	"figcaption": true, "figure": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "hr": true, "i": true, "img": true,
	"kbd": true, "li": true, "mark": true, "ol": true, "p": true, "pre": true,
	"small": true, "span": true, "strong": true, "sub": true, "summary": true,
	"sup": true, "table": true, "tbody": true, "td": true, "th": true,
	"thead": true, "tr": true, "ul": true,
}

// componentTags maps custom component names authors may use in post bodies to
// plain markup. Names are matched case-insensitively.
var componentTags = map[string]struct{ open, close string }{
	"callout": {open: `<div class="callout">`, close: `</div>`},
	"aside":   {open: `<aside class="callout">`, close: `</aside>`},
}

// SanitizeMarkdown applies a fixed sequence of textual rewrites that
// neutralize constructs known to break markup parsing. It is deterministic
// and idempotent: sanitizing already-sanitized text is a no-op.
func SanitizeMarkdown(body string) string {
	// "<" into a digit is never a tag.
	body = reLtDigit.ReplaceAllString(body, "&lt;$1")

	// Normalize tag-shaped runs: known custom components become plain markup,
	// unknown tag names are escaped.
	body = reTag.ReplaceAllStringFunc(body, func(m string) string {
		sub := reTag.FindStringSubmatch(m)
		name := strings.ToLower(sub[1])
		if comp, ok := componentTags[name]; ok {
			if strings.HasPrefix(m, "</") {
				return comp.close
			}
			return comp.open
		}
		if safeTags[name] {
			return m
		}
		return strings.ReplaceAll(strings.ReplaceAll(m, "<", "&lt;"), ">", "&gt;")
	})

	// Remaining digit-adjacent ">" and unmatched "[" are handled only outside
	// the tags kept above.
	body = applyOutsideTags(body, func(seg string) string {
		return reDigitGt.ReplaceAllString(seg, "$1&gt;")
	})
	body = escapeUnmatchedBrackets(body)

	return body
}

// applyOutsideTags applies fn only to text segments outside HTML tags, so the
// rewrites never corrupt attribute values inside tags kept by the allowlist.
func applyOutsideTags(s string, fn func(string) string) string {
	var buf strings.Builder
	for len(s) > 0 {
		lt := strings.Index(s, "<")
		if lt < 0 {
			buf.WriteString(fn(s))
			break
		}
		gt := strings.Index(s[lt:], ">")
		if gt < 0 {
			buf.WriteString(fn(s))
			break
		}
		buf.WriteString(fn(s[:lt]))
		buf.WriteString(s[lt : lt+gt+1])
		s = s[lt+gt+1:]
	}
	return buf.String()
}

// escapeUnmatchedBrackets escapes any "[" outside a tag that has no closing
// "]" later on the same line. A dangling opener would otherwise swallow the
// rest of the line as a half-parsed link. Matchedness is decided against the
// whole remainder of the line, so a "]" sitting after inline markup still
// counts as the closer.
func escapeUnmatchedBrackets(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if !strings.Contains(line, "[") {
			continue
		}
		var buf strings.Builder
		inTag := false
		for j := 0; j < len(line); j++ {
			switch line[j] {
			case '<':
				inTag = true
			case '>':
				inTag = false
			case '[':
				if !inTag && !strings.Contains(line[j+1:], "]") {
					buf.WriteString("&#91;")
					continue
				}
			}
			buf.WriteByte(line[j])
		}
		lines[i] = buf.String()
	}
	return strings.Join(lines, "\n")
}

// converter is the compile stage. goldmark.Markdown satisfies it; tests can
// substitute a failing implementation to exercise the fallback path.
type converter interface {
	Convert(source []byte, writer io.Writer, opts ...parser.ParseOption) error
}

// MarkdownRenderer turns raw post bodies into safe HTML fragments. A body
// that cannot be compiled never fails the page; it renders as a marked
// fallback block instead.
type MarkdownRenderer interface {
	Render(body string) template.HTML
}

type markdownRendererImpl struct {
	converter converter
	debug     bool
}

// NewMarkdownRenderer builds the pipeline. siteHost is the host of this site;
// links pointing anywhere else open in a new context with referrer
// suppression. debug includes raw compile errors in fallback output and must
// stay off in production.
func NewMarkdownRenderer(siteHost string, debug bool) MarkdownRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Table,
			extension.Strikethrough,
			extension.TaskList,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			htmlrenderer.WithXHTML(),
			htmlrenderer.WithUnsafe(),
			renderer.WithNodeRenderers(
				util.Prioritized(&componentRenderer{siteHost: siteHost}, 100),
			),
		),
	)

	return &markdownRendererImpl{
		converter: md,
		debug:     debug,
	}
}

func (r *markdownRendererImpl) Render(body string) (out template.HTML) {
	if strings.TrimSpace(body) == "" {
		return `<p class="content-empty">No content available.</p>`
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Any("panic", rec).Msg("Markdown renderer panicked")
			out = r.fallback(fmt.Errorf("renderer panic: %v", rec))
		}
	}()

	sanitized := SanitizeMarkdown(body)

	var buf bytes.Buffer
	if err := r.converter.Convert([]byte(sanitized), &buf); err != nil {
		log.Error().Err(err).Msg("Failed to compile markdown body")
		return r.fallback(err)
	}

	return template.HTML(buf.String())
}

// fallback is the clearly marked block shown in place of content that could
// not be rendered. The raw error is exposed in debug mode only.
func (r *markdownRendererImpl) fallback(err error) template.HTML {
	var buf strings.Builder
	buf.WriteString(`<div class="render-error"><p><strong>Error rendering content:</strong> `)
	buf.WriteString(`there was an issue parsing this post.</p>`)
	if r.debug && err != nil {
		buf.WriteString(`<pre>`)
		buf.WriteString(html.EscapeString(err.Error()))
		buf.WriteString(`</pre>`)
	}
	buf.WriteString(`</div>`)
	return template.HTML(buf.String())
}

// componentRenderer substitutes custom output for a fixed set of node kinds.
// Each kind maps to one render function registered below; the pipeline stays
// agnostic to which kinds are overridden.
type componentRenderer struct {
	siteHost string
}

func (r *componentRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindImage, r.renderImage)
	reg.Register(ast.KindLink, r.renderLink)
}

// renderImage always emits explicit intrinsic dimensions so images cannot
// cause layout shift while loading.
func (r *componentRenderer) renderImage(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.Image)

	_, _ = w.WriteString(`<img src="`)
	_, _ = w.Write(util.EscapeHTML(util.URLEscape(n.Destination, true)))
	_, _ = w.WriteString(`" alt="`)
	_, _ = w.Write(util.EscapeHTML(n.Text(source)))
	_, _ = w.WriteString(`" width="900" height="600" loading="lazy" decoding="async" />`)

	return ast.WalkSkipChildren, nil
}

// renderLink sends off-site links to a new context with referrer suppression;
// in-app links render as plain navigation.
func (r *componentRenderer) renderLink(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Link)
	if !entering {
		_, _ = w.WriteString(`</a>`)
		return ast.WalkContinue, nil
	}

	_, _ = w.WriteString(`<a href="`)
	_, _ = w.Write(util.EscapeHTML(util.URLEscape(n.Destination, true)))
	_, _ = w.WriteString(`"`)
	if n.Title != nil {
		_, _ = w.WriteString(` title="`)
		_, _ = w.Write(util.EscapeHTML(n.Title))
		_, _ = w.WriteString(`"`)
	}
	if r.isExternal(string(n.Destination)) {
		_, _ = w.WriteString(` target="_blank" rel="noopener noreferrer"`)
	}
	_, _ = w.WriteString(`>`)

	return ast.WalkContinue, nil
}

func (r *componentRenderer) isExternal(dest string) bool {
	if !strings.HasPrefix(dest, "http://") && !strings.HasPrefix(dest, "https://") {
		return false
	}
	u, err := url.Parse(dest)
	if err != nil {
		return false
	}
	return u.Host != r.siteHost
}
