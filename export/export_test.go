package export

import (
	"encoding/json"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/sift/models"
)

func record(kv ...any) models.Record {
	r := models.NewRecord()
	for i := 0; i < len(kv); i += 2 {
		switch v := kv[i+1].(type) {
		case string:
			r.Set(kv[i].(string), models.Scalar(v))
		case []string:
			r.Set(kv[i].(string), models.Value(v))
		}
	}
	return r
}

func sample() []models.Record {
	return []models.Record{
		record("Name", "Lamp", "Tags", []string{"home", "light"}),
		record("Name", `The "Desk", oak`, "Price", "$40"),
	}
}

func TestToCSV(t *testing.T) {
	got := string(ToCSV(sample()))
	want := "\"Name\",\"Tags\",\"Price\"\r\n" +
		"\"Lamp\",\"home; light\",\"\"\r\n" +
		"\"The \"\"Desk\"\", oak\",\"\",\"$40\"\r\n"
	assert.Equal(t, want, got)
}

func TestToCSV_Empty(t *testing.T) {
	assert.Empty(t, ToCSV(nil))
}

func TestToJSON(t *testing.T) {
	body, err := ToJSON(sample())
	require.NoError(t, err)
	assert.JSONEq(t, `[{"Name":"Lamp","Tags":["home","light"]},{"Name":"The \"Desk\", oak","Price":"$40"}]`, string(body))

	body, err = ToJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(body))
}

func TestToXML(t *testing.T) {
	records := append(sample(), record("Country Name", "a ]]> b"))
	body := ToXML(records)

	s := string(body)
	assert.Contains(t, s, `<item id="1">`)
	assert.Contains(t, s, `<item id="3">`)
	assert.Contains(t, s, `<Tags><![CDATA[home; light]]></Tags>`)

	var doc struct {
		Items []struct {
			ID     string `xml:"id,attr"`
			Fields []struct {
				XMLName xml.Name
				Value   string `xml:",chardata"`
			} `xml:",any"`
		} `xml:"item"`
	}
	require.NoError(t, xml.Unmarshal(body, &doc))
	require.Len(t, doc.Items, 3)
	assert.Equal(t, "2", doc.Items[1].ID)
	assert.Equal(t, `The "Desk", oak`, doc.Items[1].Fields[0].Value)
	assert.Equal(t, "Country_Name", doc.Items[2].Fields[0].XMLName.Local)
	assert.Equal(t, "a ]]> b", doc.Items[2].Fields[0].Value)
}

func TestElementName(t *testing.T) {
	tests := map[string]string{
		"Name":          "Name",
		"Country Name":  "Country_Name",
		"Price ($)":     "Price_",
		"2nd column":    "_2nd_column",
		"":              "field",
		"xmlns":         "_xmlns",
		"Email Address": "Email_Address",
	}
	for in, want := range tests {
		assert.Equal(t, want, elementName(in), in)
	}
}

func TestToMarkdown(t *testing.T) {
	body, err := ToMarkdown(sample())
	require.NoError(t, err)

	md := string(body)
	lines := strings.Split(strings.TrimSpace(md), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Name")
	assert.Contains(t, lines[0], "Price")
	assert.Contains(t, lines[2], "home; light")
	assert.True(t, strings.HasPrefix(lines[0], "|"))

	empty, err := ToMarkdown(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestEncode(t *testing.T) {
	for _, f := range Formats {
		out, err := Encode(f, sample())
		require.NoError(t, err, f)
		assert.NotEmpty(t, out.Body, f)
		assert.NotEmpty(t, out.ContentType, f)
	}

	out, err := Encode("", sample())
	require.NoError(t, err)
	assert.Equal(t, "json", out.Extension)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(out.Body, &decoded))
	assert.Len(t, decoded, 2)

	_, err = Encode("yaml", sample())
	assert.True(t, models.HasCode(err, models.ErrCodeInvalidInput))
}
