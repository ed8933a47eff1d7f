// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// skipElements are subtrees that carry no documentation content: page
// chrome, embedded code, and media.
var skipElements = map[string]bool{
	"head":     true,
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"svg":      true,
	"iframe":   true,
	"form":     true,
	"button":   true,
	"img":      true,
	"nav":      true,
	"footer":   true,
}

var blankRunRe = regexp.MustCompile(`\n{3,}`)

// HTMLToMarkdown renders a fetched documentation page as line-oriented
// Markdown: headings, paragraphs, fenced code blocks, lists, blockquotes,
// tables, and inline links/emphasis/code. Relative link targets are
// resolved against pageURL. Navigation chrome, scripts, and images are
// dropped.
func HTMLToMarkdown(page, pageURL string) string {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return ""
	}
	base, _ := url.Parse(pageURL)

	r := &mdRenderer{base: base}
	r.block(doc)

	out := blankRunRe.ReplaceAllString(r.sb.String(), "\n\n")
	out = strings.TrimSpace(out)
	if out == "" {
		return ""
	}
	return out + "\n"
}

type mdRenderer struct {
	sb   strings.Builder
	base *url.URL
}

// block walks block-level structure, emitting one Markdown construct per
// recognized element and recursing through everything else (divs, sections,
// article wrappers).
func (r *mdRenderer) block(n *html.Node) {
	if n.Type == html.ElementNode {
		if skipElements[n.Data] {
			return
		}
		switch n.Data {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			level := int(n.Data[1] - '0')
			if text := r.inline(n); text != "" {
				r.paragraph(strings.Repeat("#", level) + " " + text)
			}
			return
		case "p":
			if text := r.inline(n); text != "" {
				r.paragraph(text)
			}
			return
		case "pre":
			r.pre(n)
			return
		case "ul", "ol":
			r.list(n, 0)
			r.sb.WriteString("\n")
			return
		case "blockquote":
			if text := r.inline(n); text != "" {
				r.paragraph("> " + text)
			}
			return
		case "table":
			r.table(n)
			return
		case "hr":
			r.paragraph("---")
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.block(c)
	}
}

func (r *mdRenderer) paragraph(text string) {
	r.sb.WriteString(text + "\n\n")
}

// inline renders the node's content as a single line, whitespace collapsed.
func (r *mdRenderer) inline(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.inlineNode(c, &sb)
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

func (r *mdRenderer) inlineNode(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.ElementNode:
		if skipElements[n.Data] {
			return
		}
		switch n.Data {
		case "a":
			r.anchor(n, sb)
			return
		case "code", "tt", "samp", "kbd":
			if text := r.inline(n); text != "" {
				sb.WriteString("`" + text + "`")
			}
			return
		case "strong", "b":
			if text := r.inline(n); text != "" {
				sb.WriteString("**" + text + "**")
			}
			return
		case "em", "i":
			if text := r.inline(n); text != "" {
				sb.WriteString("*" + text + "*")
			}
			return
		case "br":
			sb.WriteString(" ")
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.inlineNode(c, sb)
	}
}

// anchor renders a link, resolving relative targets. Anchors without a
// usable target degrade to their text.
func (r *mdRenderer) anchor(n *html.Node, sb *strings.Builder) {
	text := r.inline(n)
	if text == "" {
		return
	}
	href := attrVal(n, "href")
	if href == "" || strings.HasPrefix(href, "#") {
		sb.WriteString(text)
		return
	}
	target := href
	if r.base != nil {
		if ref, err := url.Parse(href); err == nil {
			target = r.base.ResolveReference(ref).String()
		}
	}
	fmt.Fprintf(sb, "[%s](%s)", text, target)
}

// pre emits a fenced code block. The language tag comes from a nested
// <code class="language-..."> when present (the common highlighter
// convention); Sphinx-style highlight divs carry no such hint and produce a
// bare fence.
func (r *mdRenderer) pre(n *html.Node) {
	lang := ""
	if code := findElement(n, "code"); code != nil {
		for _, cls := range strings.Fields(attrVal(code, "class")) {
			if strings.HasPrefix(cls, "language-") {
				lang = strings.TrimPrefix(cls, "language-")
				break
			}
		}
	}
	text := strings.Trim(rawText(n), "\n")
	r.sb.WriteString("```" + lang + "\n" + text + "\n```\n\n")
}

func (r *mdRenderer) list(n *html.Node, depth int) {
	ordered := n.Data == "ol"
	idx := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "li" {
			continue
		}
		idx++
		marker := "- "
		if ordered {
			marker = fmt.Sprintf("%d. ", idx)
		}
		if text := r.itemText(c); text != "" {
			r.sb.WriteString(strings.Repeat("  ", depth) + marker + text + "\n")
		}
		for g := c.FirstChild; g != nil; g = g.NextSibling {
			if g.Type == html.ElementNode && (g.Data == "ul" || g.Data == "ol") {
				r.list(g, depth+1)
			}
		}
	}
}

// itemText renders a list item's own content, leaving nested lists to the
// caller.
func (r *mdRenderer) itemText(li *html.Node) string {
	var sb strings.Builder
	for c := li.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
			continue
		}
		r.inlineNode(c, &sb)
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// table renders rows as a pipe table with a separator after the first row.
func (r *mdRenderer) table(n *html.Node) {
	var rows [][]string

	var walk func(*html.Node)
	walk = func(m *html.Node) {
		if m.Type == html.ElementNode && m.Data == "tr" {
			var cells []string
			for c := m.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					cells = append(cells, strings.ReplaceAll(r.inline(c), "|", `\|`))
				}
			}
			if len(cells) > 0 {
				rows = append(rows, cells)
			}
			return
		}
		for c := m.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	if len(rows) == 0 {
		return
	}
	for i, row := range rows {
		r.sb.WriteString("| " + strings.Join(row, " | ") + " |\n")
		if i == 0 {
			sep := make([]string, len(row))
			for j := range sep {
				sep[j] = "---"
			}
			r.sb.WriteString("| " + strings.Join(sep, " | ") + " |\n")
		}
	}
	r.sb.WriteString("\n")
}

// findElement returns the first descendant element with the given tag name.
func findElement(n *html.Node, name string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == name {
			return c
		}
		if found := findElement(c, name); found != nil {
			return found
		}
	}
	return nil
}

// rawText concatenates every text node under n verbatim, preserving
// newlines and indentation (used for code blocks).
func rawText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(m *html.Node) {
		if m.Type == html.TextNode {
			sb.WriteString(m.Data)
			return
		}
		for c := m.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
