package generators

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/opensdd/relnotes/core"
	"github.com/opensdd/relnotes/core/notes"
	"github.com/opensdd/relnotes/core/report"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// DefaultWikiColumns are the column headings of the wiki table.
var DefaultWikiColumns = [4]string{"Change", "Internal ticket", "Cross-references", "Release note"}

// HungarianWikiColumns are the column headings used with the hu keyword
// preset.
var HungarianWikiColumns = [4]string{"Fejlesztés/javítás", "Szállító belső issue", "Redmine, RT jegy", "Megjegyzés"}

// noCrossReferences fills the cross-reference cell of a record without any.
const noCrossReferences = "N/A"

const wikiTableTemplate = `<table><tbody><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
{{range .Rows}}<tr><td>{{.Summary}}</td><td><a href="{{.TicketURL}}">{{.TicketID}}</a></td><td>{{.Links}}</td><td>{{.Note}}</td></tr>
{{end}}</tbody></table>`

// cellHeading matches heading tags, which would otherwise be taken for
// section boundaries of the page.
var cellHeading = regexp.MustCompile(`(?i)<(/?)h[1-6]([\s>/])`)

var (
	wikiTableTpl = template.Must(template.New("wikiTable").Parse(wikiTableTemplate))

	noteMarkdown     goldmark.Markdown
	noteMarkdownOnce sync.Once
)

func getNoteMarkdown() goldmark.Markdown {
	noteMarkdownOnce.Do(func() {
		noteMarkdown = goldmark.New(
			goldmark.WithExtensions(extension.Strikethrough),
			goldmark.WithRendererOptions(
				gmhtml.WithHardWraps(),
				gmhtml.WithXHTML(),
			),
		)
	})
	return noteMarkdown
}

// WikiTable renders records as a Confluence storage-format table with one
// row per record.
type WikiTable struct {
	// Columns overrides DefaultWikiColumns when set.
	Columns [4]string

	// convert turns note Markdown into XHTML; nil means goldmark.
	convert func(src []byte, w io.Writer) error
}

type wikiRow struct {
	Summary   string
	TicketID  string
	TicketURL string
	Links     template.HTML
	Note      template.HTML
}

// Render returns the table markup of records.
func (g *WikiTable) Render(records []report.Record) (string, error) {
	columns := g.Columns
	if columns == ([4]string{}) {
		columns = DefaultWikiColumns
	}
	rows := make([]wikiRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, wikiRow{
			Summary:   r.Summary,
			TicketID:  r.TicketID,
			TicketURL: r.TicketURL,
			Links:     renderCrossReferences(r),
			Note:      g.renderNote(r),
		})
	}

	var out bytes.Buffer
	data := struct {
		Columns [4]string
		Rows    []wikiRow
	}{Columns: columns, Rows: rows}
	if err := wikiTableTpl.Execute(&out, data); err != nil {
		return "", fmt.Errorf("%w: failed to execute wiki table template: %v", core.ErrRender, err)
	}
	return out.String(), nil
}

func renderCrossReferences(r report.Record) template.HTML {
	if len(r.CrossReferences) == 0 {
		return noCrossReferences
	}
	parts := make([]string, 0, len(r.CrossReferences))
	for _, ref := range r.CrossReferences {
		parts = append(parts, fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(ref.URL), html.EscapeString(ref.Title)))
	}
	return template.HTML(strings.Join(parts, ", "))
}

// renderNote converts the formatted note to XHTML. When conversion fails the
// cell falls back to the escaped plain composite.
func (g *WikiTable) renderNote(r report.Record) template.HTML {
	if r.Note.IsUnfilled() {
		return template.HTML(`<span style="color: red;"><strong>` + notes.Unfilled + `</strong></span>`)
	}
	convert := g.convert
	if convert == nil {
		convert = func(src []byte, w io.Writer) error { return getNoteMarkdown().Convert(src, w) }
	}
	var buf bytes.Buffer
	if err := convert([]byte(notes.Format(r.Note)), &buf); err != nil {
		slog.Warn("Failed to render release note, using plain text", "ticket", r.TicketID, "error", err)
		return plainTextCell(notes.PlainText(r.Note))
	}
	return template.HTML(demoteHeadings(strings.TrimSpace(buf.String())))
}

// demoteHeadings turns heading elements inside a cell into paragraphs.
func demoteHeadings(s string) string {
	return cellHeading.ReplaceAllString(s, "<${1}p${2}")
}

func plainTextCell(s string) template.HTML {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = html.EscapeString(l)
	}
	return template.HTML(strings.Join(lines, "<br />"))
}
