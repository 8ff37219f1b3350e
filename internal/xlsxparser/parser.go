// =============================================================================
// Offer Document Generator - XLSX Table Parser
// =============================================================================
//
// This module reads one sheet of an XLSX workbook into a types.Table. The
// first row holds the column names; every following row is one record.
//
// SHEET STRUCTURE (Expected Layout):
//
//   | Column A | Column B | Column C | Column D | ...
//   |----------|----------|----------|----------|
//   | 姓名     | 任职职位 | 所属部门 | 基本工资 |      <- header row
//   | 张三     | 产品经理 | 产品部   | 15000    |      <- record
//   | 李四     | 工程师   | 研发部   |          |      <- empty cell = missing
//
// CELL TYPING:
//   - Empty cells become missing values
//   - With AsText, every non-empty cell is text (no numeric coercion), which
//     keeps identity matching exact
//   - Otherwise numeric cells become numbers and all other cells text
//   - TextColumns are text regardless of AsText
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/offer-docgen/internal/types"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options controls how a sheet is read.
type Options struct {
	// AsText loads every cell as text.
	AsText bool

	// TextColumns are always loaded as text, e.g. the identity column.
	TextColumns []string

	// HeaderRow is the 0-based row holding column names.
	// Default: 0 (Row 1)
	HeaderRow int
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads the named sheet of an XLSX workbook.
//
// PARAMETERS:
//   - workbookPath: The path to the XLSX file.
//   - sheetName:    The sheet to read, e.g. "offer信息".
//   - opts:         Typing and layout options.
//
// RETURNS:
//   - The loaded table, records in sheet order.
//   - An error if the file cannot be opened or the sheet does not exist.
func Parse(workbookPath, sheetName string, opts Options) (*types.Table, error) {
	f, err := excelize.OpenFile(workbookPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return ParseFile(f, sheetName, opts)
}

// ParseFile reads the named sheet of an already opened workbook.
func ParseFile(f *excelize.File, sheetName string, opts Options) (*types.Table, error) {
	if idx, err := f.GetSheetIndex(sheetName); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found (available: %s)", sheetName, strings.Join(f.GetSheetList(), ", "))
	}

	// Raw values: the displayed number format must not leak into records.
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	table := &types.Table{Name: sheetName}
	if len(rows) <= opts.HeaderRow {
		return table, nil
	}

	table.Columns = cleanHeaders(rows[opts.HeaderRow])
	asText := make([]bool, len(table.Columns))
	for col, name := range table.Columns {
		asText[col] = opts.AsText || slices.Contains(opts.TextColumns, name)
	}

	for i := opts.HeaderRow + 1; i < len(rows); i++ {
		row := rows[i]

		// Skip rows with no content at all.
		if isRowEmpty(row) {
			continue
		}

		values := make([]types.Value, len(table.Columns))
		for col := range table.Columns {
			if col >= len(row) {
				values[col] = types.Missing()
				continue
			}
			v, err := cellValue(f, sheetName, col, i, row[col], asText[col])
			if err != nil {
				return nil, fmt.Errorf("error reading row %d: %w", i+1, err)
			}
			values[col] = v
		}

		table.Records = append(table.Records, types.NewRecord(table.Columns, values))
	}

	return table, nil
}

// cellValue types one raw cell.
func cellValue(f *excelize.File, sheet string, col, row int, raw string, asText bool) (types.Value, error) {
	if strings.TrimSpace(raw) == "" {
		return types.Missing(), nil
	}
	if asText {
		return types.Text(raw), nil
	}

	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return types.Value{}, err
	}
	cellType, err := f.GetCellType(sheet, cell)
	if err != nil {
		return types.Value{}, fmt.Errorf("failed to read type of %s: %w", cell, err)
	}

	switch cellType {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return types.Number(n), nil
		}
	}
	return types.Text(raw), nil
}

// cleanHeaders trims header names and names empty ones after their position.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}
	return cleaned
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
