package csvimport

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnterminatedQuote is reported by ParseStrict when a line ends inside a quoted field.
var ErrUnterminatedQuote = errors.New("unterminated quoted field")

// ParseError locates a strict parsing failure.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid csv: line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// SplitLine splits a single CSV line into its fields.
//
// A '"' toggles quoting, except that "" inside a quoted field is a literal quote.
// Commas outside quotes separate fields. The last field is always emitted, even
// when empty.
func SplitLine(line string) []string {
	fields, _ := splitLine(line)
	return fields
}

// splitLine also reports whether the line ended inside quotes.
func splitLine(line string) ([]string, bool) {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				current.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}

	fields = append(fields, current.String())
	return fields, inQuotes
}

// Parse converts CSV text into rows keyed by the trimmed header cells.
// Malformed quoting never fails; see ParseStrict.
func Parse(text string) []RawRow {
	rows, _ := parse(text, false)
	return rows
}

// ParseStrict is Parse but fails with a *ParseError wrapping ErrUnterminatedQuote
// when any line ends inside a quoted field.
func ParseStrict(text string) ([]RawRow, error) {
	return parse(text, true)
}

type sourceLine struct {
	number int
	text   string
}

func parse(text string, strict bool) ([]RawRow, error) {
	lines := nonBlankLines(text)
	if len(lines) == 0 {
		return []RawRow{}, nil
	}

	headerCells, open := splitLine(lines[0].text)
	if strict && open {
		return nil, &ParseError{Line: lines[0].number, Err: ErrUnterminatedQuote}
	}
	headers := trimAll(headerCells)

	records := make([]sourceRecord, 0, len(lines)-1)
	for _, ln := range lines[1:] {
		cells, open := splitLine(ln.text)
		if strict && open {
			return nil, &ParseError{Line: ln.number, Err: ErrUnterminatedQuote}
		}
		if len(cells) == 1 && cells[0] == "" {
			continue
		}
		records = append(records, sourceRecord{line: ln.number, cells: cells})
	}

	return zipRows(headers, records), nil
}

// nonBlankLines splits on LF, strips a trailing CR and drops whitespace-only lines.
func nonBlankLines(text string) []sourceLine {
	parts := strings.Split(text, "\n")
	lines := make([]sourceLine, 0, len(parts))
	for i, p := range parts {
		p = strings.TrimSuffix(p, "\r")
		if strings.TrimSpace(p) == "" {
			continue
		}
		lines = append(lines, sourceLine{number: i + 1, text: p})
	}
	return lines
}

type sourceRecord struct {
	line  int
	cells []string
}

// zipRows pairs header names with cells by position.
func zipRows(headers []string, records []sourceRecord) []RawRow {
	rows := make([]RawRow, 0, len(records))
	for _, rec := range records {
		row := RawRow{Line: rec.line}
		for i, h := range headers {
			v := ""
			if i < len(rec.cells) {
				v = strings.TrimSpace(rec.cells[i])
			}
			row.Set(h, v)
		}
		rows = append(rows, row)
	}
	return rows
}

func trimAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}
