package service

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

var leadSheetColumns = []string{"name", "email", "phone", "company", "source"}

// ParseLeadSheet reads the first sheet of an XLSX workbook. The first row is a
// header; columns are matched by name so their order does not matter.
func ParseLeadSheet(r io.Reader) ([]ImportLeadRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet is empty")
	}

	index := make(map[string]int, len(leadSheetColumns))
	for i, h := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := index["name"]; !ok {
		return nil, fmt.Errorf("missing required column %q", "name")
	}

	cell := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	out := make([]ImportLeadRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		out = append(out, ImportLeadRow{
			Name:    cell(row, "name"),
			Email:   cell(row, "email"),
			Phone:   cell(row, "phone"),
			Company: cell(row, "company"),
			Source:  cell(row, "source"),
		})
	}
	return out, nil
}

// LeadSheetTemplate builds an empty workbook with the import header row
func LeadSheetTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, col := range leadSheetColumns {
		name, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, name, col); err != nil {
			return err
		}
	}
	return f.Write(w)
}
