package export

import (
	"html"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	"github.com/use-agent/sift/models"
)

// markdownConverter is goroutine-safe and shared by every export.
var markdownConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(
			table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
		),
	),
)

// ToMarkdown renders records as a Markdown table: the records are laid out
// as an HTML table and converted with html-to-markdown.
func ToMarkdown(records []models.Record) ([]byte, error) {
	cols := columns(records)
	if len(cols) == 0 {
		return nil, nil
	}

	var b strings.Builder
	b.WriteString("<table><thead><tr>")
	for _, c := range cols {
		b.WriteString("<th>" + html.EscapeString(c) + "</th>")
	}
	b.WriteString("</tr></thead><tbody>")
	for _, r := range records {
		b.WriteString("<tr>")
		for _, c := range cols {
			b.WriteString("<td>" + html.EscapeString(cell(r, c)) + "</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")

	md, err := markdownConverter.ConvertString(b.String())
	if err != nil {
		return nil, err
	}
	return []byte(strings.TrimSpace(md) + "\n"), nil
}
