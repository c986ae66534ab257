package csvimport

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrNoSheet is returned when a workbook has no usable worksheet.
var ErrNoSheet = errors.New("workbook has no worksheet")

// ReadXLSX reads one worksheet of an .xlsx workbook into rows.
// An empty sheet name selects the first sheet. Rows whose cells are all blank
// are skipped; the first remaining row is the header.
func ReadXLSX(r io.Reader, sheet string, opts ReadOptions) ([]RawRow, error) {
	data, err := readAll(r, opts.maxBytes())
	if err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrNoSheet
		}
		sheet = sheets[0]
	}

	grid, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	return rowsFromGrid(grid), nil
}

// rowsFromGrid applies the CSV header and blank-row rules to spreadsheet cells.
func rowsFromGrid(grid [][]string) []RawRow {
	var (
		headers []string
		records []sourceRecord
	)

	for i, cells := range grid {
		if isBlank(cells) {
			continue
		}
		if headers == nil {
			headers = trimAll(cells)
			continue
		}
		records = append(records, sourceRecord{line: i + 1, cells: cells})
	}

	if headers == nil {
		return []RawRow{}
	}
	return zipRows(headers, records)
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
