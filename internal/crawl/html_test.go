// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import "testing"

func TestHTMLToMarkdown(t *testing.T) {
	tests := []struct {
		name string
		page string
		want string
	}{
		{
			name: "headings and paragraphs",
			page: `<html><body><h1>Title</h1><p>Hello  <em>world</em>.</p></body></html>`,
			want: "# Title\n\nHello *world*.\n",
		},
		{
			name: "heading levels",
			page: `<body><h2>Usage</h2><h3>Details</h3></body>`,
			want: "## Usage\n\n### Details\n",
		},
		{
			name: "relative link resolved",
			page: `<body><p>See <a href="api/raw">the <code>Raw</code> API</a>.</p></body>`,
			want: "See [the `Raw` API](https://scanpy.dev/docs/api/raw).\n",
		},
		{
			name: "fragment link degrades to text",
			page: `<body><p><a href="#top">Back to top</a></p></body>`,
			want: "Back to top\n",
		},
		{
			name: "code block with language class",
			page: "<body><pre><code class=\"language-python\">x = 1\ny = 2</code></pre></body>",
			want: "```python\nx = 1\ny = 2\n```\n",
		},
		{
			name: "bare pre block",
			page: "<body><div class=\"highlight\"><pre>import scanpy\n</pre></div></body>",
			want: "```\nimport scanpy\n```\n",
		},
		{
			name: "nested lists",
			page: `<body><ul><li>One</li><li>Two<ul><li>Sub</li></ul></li></ul></body>`,
			want: "- One\n- Two\n  - Sub\n",
		},
		{
			name: "ordered list",
			page: `<body><ol><li>First</li><li>Second</li></ol></body>`,
			want: "1. First\n2. Second\n",
		},
		{
			name: "table with header row",
			page: `<body><table><tr><th>Name</th><th>Kind</th></tr><tr><td>Raw</td><td>type</td></tr></table></body>`,
			want: "| Name | Kind |\n| --- | --- |\n| Raw | type |\n",
		},
		{
			name: "chrome and scripts dropped",
			page: `<body><nav><a href="x">Nav</a></nav><script>var x = 1;</script><p>Body</p><footer>fine print</footer></body>`,
			want: "Body\n",
		},
		{
			name: "blockquote",
			page: `<body><blockquote><p>Quoted text</p></blockquote></body>`,
			want: "> Quoted text\n",
		},
		{
			name: "strong and inline code",
			page: `<body><p><strong>Note:</strong> call <code>sc.pp.log1p</code></p></body>`,
			want: "**Note:** call `sc.pp.log1p`\n",
		},
		{
			name: "horizontal rule",
			page: `<body><p>a</p><hr><p>b</p></body>`,
			want: "a\n\n---\n\nb\n",
		},
		{
			name: "images ignored",
			page: `<body><p>Figure: <img src="fig.png" alt="plot"> caption</p></body>`,
			want: "Figure: caption\n",
		},
		{
			name: "empty page",
			page: `<html><body></body></html>`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HTMLToMarkdown(tt.page, "https://scanpy.dev/docs/index")
			if got != tt.want {
				t.Errorf("HTMLToMarkdown(%q) = %q, want %q", tt.page, got, tt.want)
			}
		})
	}
}

func TestHTMLToMarkdownAbsoluteLink(t *testing.T) {
	page := `<body><p><a href="https://anndata.dev/">anndata</a></p></body>`
	want := "[anndata](https://anndata.dev/)\n"
	if got := HTMLToMarkdown(page, "https://scanpy.dev/docs"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
