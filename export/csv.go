package export

import (
	"bytes"
	"strings"

	"github.com/use-agent/sift/models"
)

// ToCSV renders a header row of all keys followed by one row per record.
// Every field is quoted and embedded quotes are doubled, so spreadsheet
// tools never reinterpret values such as leading zeros or commas.
func ToCSV(records []models.Record) []byte {
	cols := columns(records)
	if len(cols) == 0 {
		return nil
	}

	var buf bytes.Buffer
	writeRow(&buf, cols)
	row := make([]string, len(cols))
	for _, r := range records {
		for i, c := range cols {
			row[i] = cell(r, c)
		}
		writeRow(&buf, row)
	}
	return buf.Bytes()
}

func writeRow(buf *bytes.Buffer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(f, `"`, `""`))
		buf.WriteByte('"')
	}
	buf.WriteString("\r\n")
}
