package csvimport

import "strings"

// TemplateFileName is the download name for serialized templates.
const TemplateFileName = "template.csv"

// TemplateContentType is the MIME type served with template downloads.
const TemplateContentType = "text/csv; charset=utf-8"

// SerializeTemplate renders template headers as a single CSV line ending in "\n".
// Headers that need it are quoted, so Parse reads the same names back.
func SerializeTemplate(headers []string) string {
	cells := make([]string, len(headers))
	for i, h := range headers {
		cells[i] = quoteCell(h)
	}
	return strings.Join(cells, ",") + "\n"
}

func quoteCell(s string) string {
	if !strings.ContainsAny(s, ",\"\r\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
