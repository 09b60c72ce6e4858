// Package sanitize turns stored rich-text content into safely displayable
// output. Content is stored verbatim and sanitized only when read.
//
// Two modes exist:
//   - Excerpt strips every tag and yields escaped plain text for previews.
//   - Article keeps a small set of structural and inline tags.
//
// In both modes script and style elements are dropped together with their
// content, while the text of any other stripped element is preserved.
// Output is deterministic and idempotent.
package sanitize

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// Mode selects a sanitization profile.
type Mode int

const (
	ModeExcerpt Mode = iota
	ModeArticle
)

func (m Mode) String() string {
	switch m {
	case ModeExcerpt:
		return "excerpt"
	case ModeArticle:
		return "article"
	default:
		return "unknown"
	}
}

// ArticleElements is the allow-list applied in article mode, besides links.
var ArticleElements = []string{
	"b", "strong", "i", "em", "u", "br", "p",
	"h1", "h2", "h3", "ul", "ol", "li",
}

const ellipsis = "…"

// Sanitizer applies the excerpt and article policies. Policies are built
// once; a Sanitizer is safe for concurrent use.
type Sanitizer struct {
	excerpt *bluemonday.Policy
	article *bluemonday.Policy
}

func New() *Sanitizer {
	return &Sanitizer{
		excerpt: excerptPolicy(),
		article: articlePolicy(),
	}
}

func excerptPolicy() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return p
}

func articlePolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(ArticleElements...)

	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto")
	p.AllowRelativeURLs(false)
	p.RequireParseableURLs(true)
	p.RequireNoFollowOnFullyQualifiedLinks(true)
	return p
}

// Apply sanitizes content in the given mode.
func (s *Sanitizer) Apply(mode Mode, content string) string {
	if mode == ModeArticle {
		return s.Article(content)
	}
	return s.Excerpt(content, 0)
}

// Article keeps the allow-listed tags and strips everything else.
func (s *Sanitizer) Article(content string) string {
	return s.article.Sanitize(content)
}

// Excerpt strips all markup and collapses whitespace. When limit > 0 the
// text is cut to at most limit runes, ellipsis included. Truncation works
// on unescaped text, so an entity is never split.
func (s *Sanitizer) Excerpt(content string, limit int) string {
	text := html.UnescapeString(s.excerpt.Sanitize(content))
	text = strings.Join(strings.Fields(text), " ")

	if limit > 0 && utf8.RuneCountInString(text) > limit {
		text = truncate(text, limit)
	}
	return html.EscapeString(text)
}

func truncate(text string, limit int) string {
	keep := limit - utf8.RuneCountInString(ellipsis)
	if keep <= 0 {
		return string([]rune(ellipsis)[:limit])
	}
	runes := []rune(text)
	return strings.TrimRight(string(runes[:keep]), " ") + ellipsis
}

var std = New()

// Excerpt sanitizes with the package default Sanitizer.
func Excerpt(content string, limit int) string {
	return std.Excerpt(content, limit)
}

// Article sanitizes with the package default Sanitizer.
func Article(content string) string {
	return std.Article(content)
}
