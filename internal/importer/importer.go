// Package importer loads report items from spreadsheet, YAML and JSON files.
package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"report_gen/internal/models"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFile is returned for file types that cannot hold items.
var ErrUnsupportedFile = errors.New("unsupported item file")

// LoadFile reads items from path, choosing the decoder by extension.
func LoadFile(path string) ([]models.Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open item file: %w", err)
	}
	defer f.Close()

	return Read(f, filepath.Base(path))
}

// Read decodes items from r. name is only used for its extension.
func Read(r io.Reader, name string) ([]models.Item, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		return ReadSpreadsheet(r)
	case ".yaml", ".yml":
		return ReadYAML(r)
	case ".json":
		return ReadJSON(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFile, name)
	}
}

// ReadYAML decodes a YAML sequence of items.
func ReadYAML(r io.Reader) ([]models.Item, error) {
	var items []models.Item
	if err := yaml.NewDecoder(r).Decode(&items); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode yaml items: %w", err)
	}
	return items, nil
}

// ReadJSON decodes a JSON array of items.
func ReadJSON(r io.Reader) ([]models.Item, error) {
	var items []models.Item
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode json items: %w", err)
	}
	return items, nil
}

// ReadSpreadsheet reads items from the first sheet of an xlsx workbook. The
// first row is a header naming the ID, Name and Value columns in any order;
// empty rows are skipped.
func ReadSpreadsheet(r io.Reader) ([]models.Item, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cols, err := headerColumns(rows[0])
	if err != nil {
		return nil, err
	}

	var items []models.Item
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		line := i + 2
		raw := cell(row, cols["value"])
		value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid value %q: %w", line, raw, err)
		}
		items = append(items, models.Item{
			ID:    models.ItemID(strings.TrimSpace(cell(row, cols["id"]))),
			Name:  cell(row, cols["name"]),
			Value: value,
		})
	}
	return items, nil
}

func headerColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, 3)
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if key == "id" || key == "name" || key == "value" {
			cols[key] = i
		}
	}
	for _, required := range []string{"id", "name", "value"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("spreadsheet header is missing the %q column", required)
		}
	}
	return cols, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
