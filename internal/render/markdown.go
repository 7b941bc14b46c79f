// Package render turns markdown summaries into HTML.
package render

import (
	"fmt"
	"html"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// MarkdownToHTML renders md as an HTML fragment.
func MarkdownToHTML(md string) string {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(md))

	htmlFlags := mdhtml.CommonFlags | mdhtml.HrefTargetBlank
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: htmlFlags})

	return string(markdown.Render(doc, renderer))
}

// Document wraps an HTML fragment in a styled standalone page.
func Document(title, body string) string {
	return fmt.Sprintf(documentTemplate, html.EscapeString(title), body)
}

const documentTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>%s</title>
<style>
	body {
		font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
		line-height: 1.6;
		color: #333;
		max-width: 800px;
		margin: 0 auto;
		padding: 20px;
	}
	h1, h2, h3 { color: #2c3e50; margin-top: 24px; margin-bottom: 16px; }
	a { color: #3498db; text-decoration: none; }
	a:hover { text-decoration: underline; }
	ul { padding-left: 20px; }
	li { margin: 8px 0; }
	code {
		background-color: #f8f9fa;
		padding: 2px 4px;
		border-radius: 3px;
		font-family: Monaco, monospace;
		font-size: 0.9em;
	}
</style>
</head>
<body>
%s
</body>
</html>`
