package output

import (
	"bytes"
	"fmt"
	"html"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/pxkundu/awdx/internal/meta"
)

// HTMLFormatter renders the Markdown report as a standalone HTML page.
// Raw HTML inside issue text is dropped by the renderer.
type HTMLFormatter struct {
	Markdown MarkdownFormatter
}

const htmlStyle = `body{font-family:-apple-system,BlinkMacSystemFont,"Segoe UI",Helvetica,Arial,sans-serif;max-width:960px;margin:2em auto;padding:0 1em;line-height:1.5;color:#1f2328}
table{border-collapse:collapse}th,td{border:1px solid #d0d7de;padding:4px 12px}
pre{background:#f6f8fa;padding:12px;overflow:auto}code{font-size:90%}`

func (f *HTMLFormatter) Format(w io.Writer, s *meta.Summary) error {
	var src bytes.Buffer
	if err := f.Markdown.Format(&src, s); err != nil {
		return err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var body bytes.Buffer
	if err := md.Convert(src.Bytes(), &body); err != nil {
		return fmt.Errorf("rendering html report: %w", err)
	}

	title := fmt.Sprintf("AWDX Security Scan Report (%d/100)", s.Score)
	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n<style>%s</style>\n</head>\n<body>\n%s</body>\n</html>\n",
		html.EscapeString(title), htmlStyle, body.String())
	return err
}
