package export

import (
	"os"

	"slackdigest/internal/commontypes"
	"slackdigest/internal/render"
)

// WriteSummary writes the generated summary verbatim.
func WriteSummary(path, summary string) error {
	if err := ensureDir(path); err != nil {
		return &commontypes.IOError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, []byte(summary), 0644); err != nil {
		return &commontypes.IOError{Path: path, Err: err}
	}
	return nil
}

// WriteSummaryHTML renders the markdown summary into a standalone HTML page.
func WriteSummaryHTML(path, title, summary string) error {
	return WriteSummary(path, render.Document(title, render.MarkdownToHTML(summary)))
}
