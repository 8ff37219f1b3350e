// =============================================================================
// Offer Document Generator - CSV Table Parser
// =============================================================================
//
// This module reads a CSV export of the offer or approval table into a
// types.Table. It handles the formats spreadsheet software produces when a
// sheet is saved as CSV:
//   - UTF-8 with or without BOM
//   - UTF-16 with BOM ("Unicode text")
//   - GBK / GB18030, the default ANSI code page of Chinese Windows
//
// CELL TYPING follows the XLSX parser: empty cells are missing; with AsText
// every other cell is text. Otherwise only plain decimals become numbers:
// "Nan", "Inf", "1e5" and zero-padded values such as "0101234" stay text.
//
// =============================================================================

package csvparser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/offer-docgen/internal/types"
)

// =============================================================================
// SETTINGS
// =============================================================================

// Settings controls how a CSV file is read.
type Settings struct {
	// Delimiter separates fields. Default: ','
	Delimiter rune

	// AsText loads every cell as text.
	AsText bool

	// TextColumns are always loaded as text, e.g. the identity column.
	TextColumns []string
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// decimalPattern matches the numbers a CSV cell may be coerced from.
var decimalPattern = regexp.MustCompile(`^[+-]?(0|[1-9][0-9]*)(\.[0-9]+)?$`)

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file into a table named after the file.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: Delimiter and typing settings.
//
// RETURNS:
//   - The loaded table, records in file order.
//   - An error if the file cannot be read, decoded or parsed.
func Parse(filePath string, settings Settings) (*types.Table, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	table, err := ParseBytes(data, settings)
	if err != nil {
		return nil, err
	}
	table.Name = filePath
	return table, nil
}

// ParseBytes parses CSV content.
func ParseBytes(data []byte, settings Settings) (*types.Table, error) {
	decoded, _, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode CSV: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	configureReader(reader, settings)

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	table := &types.Table{}
	if len(allRows) == 0 {
		return table, nil
	}

	table.Columns = cleanHeaders(allRows[0])
	asText := make([]bool, len(table.Columns))
	for col, name := range table.Columns {
		asText[col] = settings.AsText || slices.Contains(settings.TextColumns, name)
	}

	for _, row := range allRows[1:] {
		if isRowEmpty(row) {
			continue
		}
		values := make([]types.Value, len(table.Columns))
		for col := range table.Columns {
			if col >= len(row) {
				values[col] = types.Missing()
				continue
			}
			values[col] = cellValue(row[col], asText[col])
		}
		table.Records = append(table.Records, types.NewRecord(table.Columns, values))
	}

	return table, nil
}

// Decode detects the encoding of data and returns it as UTF-8 along with
// the detected encoding name.
func Decode(data []byte) ([]byte, string, error) {
	var (
		enc  encoding.Encoding
		name string
	)

	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return data[len(bomUTF8):], "utf-8-bom", nil
	case bytes.HasPrefix(data, bomUTF16LE):
		enc, name = unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), "utf-16le"
	case bytes.HasPrefix(data, bomUTF16BE):
		enc, name = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), "utf-16be"
	case utf8.Valid(data):
		return data, "utf-8", nil
	default:
		enc, name = simplifiedchinese.GB18030, "gb18030"
	}

	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), enc.NewDecoder()))
	if err != nil {
		return nil, "", fmt.Errorf("%s decode failed: %w", name, err)
	}
	return decoded, name, nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings Settings) {
	if settings.Delimiter != 0 {
		reader.Comma = settings.Delimiter
	}

	// Allow variable number of fields per row.
	reader.FieldsPerRecord = -1

	// Spreadsheet exports are not always strict about quoting.
	reader.LazyQuotes = true
}

func cellValue(raw string, asText bool) types.Value {
	if strings.TrimSpace(raw) == "" {
		return types.Missing()
	}
	if asText {
		return types.Text(raw)
	}
	trimmed := strings.TrimSpace(raw)
	if !decimalPattern.MatchString(trimmed) {
		return types.Text(raw)
	}
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return types.Number(n)
	}
	return types.Text(raw)
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

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
