// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rst converts Sphinx-style reStructuredText documents to Markdown.
//
// The converter makes a single forward pass over the document's lines:
// heading detection (title+underline and overline+title+underline forms),
// block-directive dispatch (fenced code, labeled blockquotes, dropped
// bookkeeping directives, hyperlink targets), and ordered inline rewrites
// for everything else. It is deliberately not a full reStructuredText
// parser; malformed markup falls through as plain text instead of failing
// the batch.
package rst

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// adornmentChars is the punctuation set accepted as heading underline and
// overline characters.
const adornmentChars = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// isAdornment reports whether line is a heading adornment: at least two
// characters after trailing-whitespace removal, all drawn from
// adornmentChars. Leading indentation disqualifies the line.
func isAdornment(line string) bool {
	stripped := strings.TrimRightFunc(line, unicode.IsSpace)
	if len(stripped) < 2 {
		return false
	}
	for i := 0; i < len(stripped); i++ {
		if !strings.ContainsRune(adornmentChars, rune(stripped[i])) {
			return false
		}
	}
	return true
}

var (
	// directiveRe matches a block directive line: (indent).. name:: rest.
	directiveRe = regexp.MustCompile(`^(\s*)\.\.\s+(\w[\w-]*)::(.*)$`)

	// optionLineRe matches a directive field option such as "   :linenos:".
	optionLineRe = regexp.MustCompile(`^\s+:\w`)

	// linkTargetRe matches a hyperlink target definition: .. _name: url.
	linkTargetRe = regexp.MustCompile(`^\.\. _([^:]+):\s*(.+)$`)
)

// fenceDirectives render their body as a fenced code block, with the inline
// argument as the language tag.
var fenceDirectives = map[string]bool{
	"code-block": true,
	"code":       true,
	"sourcecode": true,
}

// quoteDirectives render as a single blockquote line with an upper-cased
// label.
var quoteDirectives = map[string]bool{
	"note":           true,
	"warning":        true,
	"danger":         true,
	"important":      true,
	"tip":            true,
	"hint":           true,
	"caution":        true,
	"attention":      true,
	"deprecated":     true,
	"versionadded":   true,
	"versionchanged": true,
	"seealso":        true,
	"todo":           true,
}

// dropDirectives are consumed together with their indented body and emit
// nothing: build bookkeeping, autodoc stubs, and constructs Markdown has no
// line-oriented equivalent for.
var dropDirectives = map[string]bool{
	"toctree":        true,
	"automodule":     true,
	"autoclass":      true,
	"autofunction":   true,
	"automethod":     true,
	"autoattribute":  true,
	"autosummary":    true,
	"contents":       true,
	"index":          true,
	"only":           true,
	"include":        true,
	"literalinclude": true,
	"image":          true,
	"figure":         true,
	"csv-table":      true,
	"list-table":     true,
	"math":           true,
	"testsetup":      true,
	"testcleanup":    true,
	"doctest":        true,
	"rubric":         true,
	"highlight":      true,
	"default-domain": true,
	"currentmodule":  true,
	"tabularcolumns": true,
	"centered":       true,
	"hlist":          true,
	"raw":            true,
}

// Converter rewrites one reStructuredText document into Markdown. It is
// stateless: per-document state lives on the stack of each Convert call, so
// a single value may be shared by goroutines converting different documents.
type Converter struct{}

// NewConverter returns a Converter ready for use.
func NewConverter() *Converter {
	return &Converter{}
}

// Convert transforms one document. It is total: any input, however
// malformed, yields output without error. Constructs the converter does not
// understand pass through verbatim.
func (c *Converter) Convert(doc string) string {
	lines := splitLines(doc)
	out := make([]string, 0, len(lines))

	// Adornment characters are assigned levels in encounter order and keep
	// them for the rest of the document.
	var seen []byte

	i := 0
	for i < len(lines) {
		line := lines[i]

		// Overline + title + underline.
		if i+2 < len(lines) &&
			isAdornment(line) &&
			strings.TrimSpace(lines[i+1]) != "" &&
			!isAdornment(lines[i+1]) &&
			isAdornment(lines[i+2]) &&
			line[0] == lines[i+2][0] {
			title := strings.TrimSpace(lines[i+1])
			out = append(out, heading(headingLevel(line[0], &seen), title), "")
			i += 3
			continue
		}

		// Title + underline. The underline must be at least as long as the
		// title.
		if i+1 < len(lines) &&
			isAdornment(lines[i+1]) &&
			strings.TrimSpace(line) != "" &&
			!isAdornment(line) &&
			trimmedWidth(lines[i+1]) >= trimmedWidth(line) {
			title := strings.TrimSpace(line)
			out = append(out, heading(headingLevel(lines[i+1][0], &seen), title), "")
			i += 2
			continue
		}

		if emitted, next, ok := dispatchDirective(lines, i); ok {
			out = append(out, emitted...)
			i = next
			continue
		}

		out = append(out, rewriteInline(line))
		i++
	}

	return strings.Join(out, "\n")
}

// headingLevel returns the 1-based level for an adornment character,
// assigning the next unused level on first sight. seen is the per-document
// encounter-order record, threaded through by the caller.
func headingLevel(ch byte, seen *[]byte) int {
	for idx, c := range *seen {
		if c == ch {
			return idx + 1
		}
	}
	*seen = append(*seen, ch)
	return len(*seen)
}

func heading(level int, title string) string {
	return strings.Repeat("#", level) + " " + title
}

// trimmedWidth is the rune count of line with trailing whitespace removed.
func trimmedWidth(line string) int {
	return utf8.RuneCountInString(strings.TrimRightFunc(line, unicode.IsSpace))
}

// dispatchDirective handles the block directive or hyperlink target at
// lines[i]. It returns the rendered lines, the index of the first
// unconsumed line, and whether anything was recognized.
func dispatchDirective(lines []string, i int) ([]string, int, bool) {
	line := lines[i]

	if m := directiveRe.FindStringSubmatch(line); m != nil {
		name := strings.ToLower(m[2])
		rest := strings.TrimSpace(m[3])

		switch {
		case fenceDirectives[name]:
			body, next := fenceBody(lines, i+1)
			return []string{"```" + rest, body, "```", ""}, next, true

		case quoteDirectives[name]:
			block, next := collectIndented(lines, i+1)
			var parts []string
			for _, l := range block {
				if s := strings.TrimSpace(rewriteInline(l)); s != "" {
					parts = append(parts, s)
				}
			}
			body := strings.Join(parts, " ")
			if rest != "" {
				if body != "" {
					body = rest + " " + body
				} else {
					body = rest
				}
			}
			quote := "> **" + strings.ToUpper(name) + ":** " + body
			return []string{quote, ""}, next, true

		case dropDirectives[name]:
			return nil, skipIndented(lines, i+1), true

		case linkTargetRe.MatchString(line):
			// Directive-shaped target such as ".. _name:: url" — a single
			// line, no body.
			return nil, i + 1, true

		default:
			// Unrecognized directive: same treatment as the drop set.
			return nil, skipIndented(lines, i+1), true
		}
	}

	// Hyperlink target definition: consumed, never emitted. Named
	// references render without their URL (see rewriteInline).
	if linkTargetRe.MatchString(line) {
		return nil, i + 1, true
	}

	return nil, i, false
}

// fenceBody consumes a code directive's body starting at lines[i]: field
// option lines, then blank separators, then the indented block. Trailing
// blank lines are trimmed and a three-space dedent is applied per line when
// present. The body is returned as a single newline-joined string, empty
// when the directive has no body.
func fenceBody(lines []string, i int) (string, int) {
	for i < len(lines) && optionLineRe.MatchString(lines[i]) {
		i++
	}
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}

	block, next := collectIndented(lines, i)
	for len(block) > 0 && strings.TrimSpace(block[len(block)-1]) == "" {
		block = block[:len(block)-1]
	}

	dedented := make([]string, len(block))
	for j, l := range block {
		dedented[j] = strings.TrimPrefix(l, "   ")
	}
	return strings.Join(dedented, "\n"), next
}

// collectIndented gathers the run of lines starting at i that are blank or
// indented by at least three spaces. It returns the block and the index of
// the first line past it.
func collectIndented(lines []string, i int) ([]string, int) {
	var block []string
	for i < len(lines) && (strings.HasPrefix(lines[i], "   ") || strings.TrimSpace(lines[i]) == "") {
		block = append(block, lines[i])
		i++
	}
	return block, i
}

// skipIndented is collectIndented without retaining the block.
func skipIndented(lines []string, i int) int {
	for i < len(lines) && (strings.HasPrefix(lines[i], "   ") || strings.TrimSpace(lines[i]) == "") {
		i++
	}
	return i
}

var (
	// anonLinkRe matches `text <url>`_ and `text <url>`__ hyperlinks.
	anonLinkRe = regexp.MustCompile("`([^`<]+)\\s*<([^>]+)>`__?")

	// namedRefRe matches `text`_ and `text`__ references. The
	// double-underscore form must survive untouched; RE2 has no negative
	// lookahead, so the filter lives in the replacement callback.
	namedRefRe = regexp.MustCompile("`([^`]+)`__?")

	// roleRe matches cross-reference roles such as :func:`name` and
	// :ref:`Title <target>`.
	roleRe = regexp.MustCompile(":(?:ref|class|func|meth|attr|mod|data|doc|obj|exc|py:\\w+|any):`([^`]*)`")

	// roleTargetRe splits "Title <target>" role bodies.
	roleTargetRe = regexp.MustCompile(`^(.*?)\s*<[^>]+>$`)

	// inlineCodeRe matches ``code`` literals.
	inlineCodeRe = regexp.MustCompile("``([^`]+)``")

	// substRefRe matches substitution references such as |version|.
	substRefRe = regexp.MustCompile(`\|([^|]+)\|`)
)

// rewriteInline applies the inline markup rewrites to a single line. The
// order is fixed: anonymous links before named references, roles before
// inline code — later patterns must not re-match text produced by earlier
// ones.
func rewriteInline(line string) string {
	// `text <url>`_ → [text](url)
	line = anonLinkRe.ReplaceAllString(line, "[${1}](${2})")

	// `text`_ → **text**; without a target map the URL cannot be resolved.
	line = namedRefRe.ReplaceAllStringFunc(line, func(m string) string {
		if strings.HasSuffix(m, "__") {
			return m
		}
		return "**" + m[1:len(m)-2] + "**"
	})

	// :func:`name` → `name`; :ref:`Title <target>` keeps only the title.
	line = roleRe.ReplaceAllStringFunc(line, func(m string) string {
		text := roleRe.FindStringSubmatch(m)[1]
		if t := roleTargetRe.FindStringSubmatch(text); t != nil {
			text = strings.TrimSpace(t[1])
		}
		return "`" + text + "`"
	})

	// ``code`` → `code`
	line = inlineCodeRe.ReplaceAllString(line, "`${1}`")

	// |name| → (name)
	return substRefRe.ReplaceAllString(line, "(${1})")
}

// splitLines splits a document into lines, normalizing CRLF and lone CR
// endings. A trailing newline does not produce a trailing empty line.
func splitLines(doc string) []string {
	if doc == "" {
		return nil
	}
	doc = strings.ReplaceAll(doc, "\r\n", "\n")
	doc = strings.ReplaceAll(doc, "\r", "\n")
	doc = strings.TrimSuffix(doc, "\n")
	return strings.Split(doc, "\n")
}
