// Package tables loads input tables from .xlsx workbooks or .csv files.
package tables

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/offer-docgen/internal/config"
	"github.com/ginjaninja78/offer-docgen/internal/csvparser"
	"github.com/ginjaninja78/offer-docgen/internal/types"
	"github.com/ginjaninja78/offer-docgen/internal/xlsxparser"
)

// Load reads the table described by src. path overrides src.Path when set,
// which lets callers pass the located absolute path.
func Load(src config.TableSource, path string) (*types.Table, error) {
	if path == "" {
		path = src.Path
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		return xlsxparser.Parse(path, src.Sheet, xlsxparser.Options{AsText: src.AsText, TextColumns: src.TextColumns})
	case ".csv":
		table, err := csvparser.Parse(path, csvparser.Settings{AsText: src.AsText, TextColumns: src.TextColumns})
		if err != nil {
			return nil, err
		}
		if src.Sheet != "" {
			table.Name = src.Sheet
		}
		return table, nil
	default:
		return nil, fmt.Errorf("unsupported table format %q: %s", ext, path)
	}
}
