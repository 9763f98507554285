package audit

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
)

var reportTmpl = template.Must(template.New("report").Parse(`<article>
<h1>Accessibility report: {{if .Title}}{{.Title}}{{else}}{{.Source}}{{end}}</h1>
<p>Source: {{.Source}}<br>Report: {{.ID}}<br>Created: {{.CreatedAt.Format "2006-01-02 15:04:05 MST"}}</p>
<table>
<thead><tr><th>Score</th><th>Nodes</th><th>Critical</th><th>Serious</th><th>Moderate</th><th>Minor</th></tr></thead>
<tbody><tr><td>{{.Score}}</td><td>{{.Nodes}}</td><td>{{.Count "critical"}}</td><td>{{.Count "serious"}}</td><td>{{.Count "moderate"}}</td><td>{{.Count "minor"}}</td></tr></tbody>
</table>
{{range .Sections}}<h2>{{.Name}} ({{.Score}}/100)</h2>
{{if .Issues}}<ul>
{{range .Issues}}<li><strong>{{.Severity}}</strong> {{.Type}}: {{.Message}}</li>
{{end}}</ul>
{{else}}<p>No issues.</p>
{{end}}{{end}}</article>
`))

// policy keeps the markup the report template emits and nothing else a
// document name could smuggle in.
var policy = bluemonday.UGCPolicy()

var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(),
	),
)

// RenderHTML renders r as an HTML fragment.
func RenderHTML(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, r); err != nil {
		return nil, fmt.Errorf("audit: render html: %w", err)
	}
	return policy.SanitizeBytes(buf.Bytes()), nil
}

// RenderMarkdown renders r as Markdown.
func RenderMarkdown(r *Report) (string, error) {
	html, err := RenderHTML(r)
	if err != nil {
		return "", err
	}
	md, err := mdConverter.ConvertString(string(html))
	if err != nil {
		return "", fmt.Errorf("audit: render markdown: %w", err)
	}
	return md, nil
}
