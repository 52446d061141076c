package extractor

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/sift/dom"
	"github.com/use-agent/sift/models"
)

// Table converts an HTML table to records. The header row is the first row
// made only of <th> cells. Every other row with at least one <td> becomes a
// record mapping header text to cell text by position, so a leading <th>
// row label lands under the first header. Cells without a header are named
// "Column N", 1-based.
func Table(table *goquery.Selection) []models.Record {
	var headers []string
	var records []models.Record

	header := -1
	rows := table.Find("tr")
	rows.EachWithBreak(func(i int, tr *goquery.Selection) bool {
		cells := rowCells(tr)
		if cells.Length() == 0 || cells.Length() != cells.Filter("th").Length() {
			return true
		}
		header = i
		cells.Each(func(_ int, th *goquery.Selection) {
			headers = append(headers, dom.Text(th))
		})
		return false
	})

	rows.Each(func(i int, tr *goquery.Selection) {
		if i == header {
			return
		}
		cells := rowCells(tr)
		if cells.Filter("td").Length() == 0 {
			return
		}
		rec := models.NewRecord()
		cells.Each(func(j int, cell *goquery.Selection) {
			rec.Set(columnName(headers, j), models.Scalar(dom.Text(cell)))
		})
		records = append(records, rec)
	})
	return records
}

// rowCells returns the row's own cells in document order.
func rowCells(tr *goquery.Selection) *goquery.Selection {
	return tr.Children().Filter("td, th")
}

func columnName(headers []string, i int) string {
	if i < len(headers) && headers[i] != "" {
		return headers[i]
	}
	return fmt.Sprintf("Column %d", i+1)
}
