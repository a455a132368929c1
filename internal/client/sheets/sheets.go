// Package sheets reads and writes the xlsx workbooks the back office
// exchanges with its users: table exports and spare-part imports.
package sheets

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrEmptySheet     = errors.New("spreadsheet has no header row")
	ErrMissingColumns = errors.New("spreadsheet is missing columns")
)

const maxSheetName = 31

// Export writes one sheet named after title with a bold header row.
func Export(w io.Writer, title string, header []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	name := sheetName(title)
	if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	hdr := make([]any, len(header))
	for i, h := range header {
		hdr[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if len(header) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(header), 1)
		if err := f.SetCellStyle(name, "A1", last, bold); err != nil {
			return err
		}
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for n, row := range rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = v
			if i < len(widths) && len(v) > widths[i] {
				widths[i] = len(v)
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, n+2)
		if err := f.SetSheetRow(name, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", n+1, err)
		}
	}
	for i, wd := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(name, col, col, float64(min(wd+2, 60))); err != nil {
			return err
		}
	}

	_, err = f.WriteTo(w)
	return err
}

// sheetName strips the characters Excel forbids and trims to its limit.
func sheetName(title string) string {
	s := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return -1
		}
		return r
	}, strings.TrimSpace(title))
	if s == "" {
		s = "Sheet1"
	}
	if r := []rune(s); len(r) > maxSheetName {
		s = string(r[:maxSheetName])
	}
	return s
}

// CheckImport opens the workbook at path and verifies its first sheet's
// header row names every required column (case-insensitive). It returns
// the number of data rows.
func CheckImport(path string, required []string) (int, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return 0, ErrEmptySheet
	}

	have := make(map[string]bool, len(rows[0]))
	for _, h := range rows[0] {
		have[strings.ToLower(strings.TrimSpace(h))] = true
	}
	var missing []string
	for _, c := range required {
		if !have[strings.ToLower(c)] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return 0, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return len(rows) - 1, nil
}
