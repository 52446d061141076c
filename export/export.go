// Package export serializes records. Encoders are pure: they never look at
// pages or selectors, only at record keys and values.
package export

import (
	"encoding/json"
	"fmt"

	"github.com/use-agent/sift/models"
)

// Supported formats.
const (
	FormatCSV      = "csv"
	FormatJSON     = "json"
	FormatXML      = "xml"
	FormatMarkdown = "markdown"
)

// listSeparator joins list values in flat formats.
const listSeparator = "; "

// Formats lists every supported format.
var Formats = []string{FormatCSV, FormatJSON, FormatXML, FormatMarkdown}

// Encoded is the output of Encode.
type Encoded struct {
	Body        []byte
	ContentType string
	Extension   string
}

// Encode serializes records in the given format. An empty format means JSON.
func Encode(format string, records []models.Record) (*Encoded, error) {
	switch format {
	case FormatCSV:
		return &Encoded{Body: ToCSV(records), ContentType: "text/csv; charset=utf-8", Extension: "csv"}, nil
	case FormatJSON, "":
		body, err := ToJSON(records)
		if err != nil {
			return nil, err
		}
		return &Encoded{Body: body, ContentType: "application/json; charset=utf-8", Extension: "json"}, nil
	case FormatXML:
		return &Encoded{Body: ToXML(records), ContentType: "application/xml; charset=utf-8", Extension: "xml"}, nil
	case FormatMarkdown:
		body, err := ToMarkdown(records)
		if err != nil {
			return nil, err
		}
		return &Encoded{Body: body, ContentType: "text/markdown; charset=utf-8", Extension: "md"}, nil
	default:
		return nil, models.NewInvalidInputError(fmt.Sprintf("unsupported export format %q", format))
	}
}

// ToJSON renders records as an indented JSON array. List values stay arrays.
func ToJSON(records []models.Record) ([]byte, error) {
	if records == nil {
		records = []models.Record{}
	}
	return json.MarshalIndent(records, "", "  ")
}

// columns returns the union of record keys in first-seen order.
func columns(records []models.Record) []string {
	seen := make(map[string]struct{})
	var cols []string
	for _, r := range records {
		for _, k := range r.Keys() {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			cols = append(cols, k)
		}
	}
	return cols
}

// cell returns the flattened value of a column, or "" if absent.
func cell(r models.Record, col string) string {
	v, ok := r.Get(col)
	if !ok {
		return ""
	}
	return v.Join(listSeparator)
}
