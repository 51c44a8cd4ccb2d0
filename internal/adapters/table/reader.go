// Package table reads and writes the spreadsheets a matching run works on.
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/okian/gradematch/internal/domain/model"
)

// ReadFile loads the first sheet of an xlsx/xlsm workbook or a CSV file.
func ReadFile(path string) (model.Table, error) {
	format, err := FormatOf(path)
	if err != nil {
		return model.Table{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return model.Table{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return Decode(f, filepath.Base(path), format)
}

// Decode reads a table in the given format. name labels the table in errors.
func Decode(r io.Reader, name string, format Format) (model.Table, error) {
	var (
		records [][]string
		err     error
	)
	switch format {
	case FormatXLSX:
		records, err = readXLSX(r)
	case FormatCSV:
		records, err = readCSV(r)
	default:
		return model.Table{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return model.Table{}, fmt.Errorf("read %s: %w", name, err)
	}
	return fromRecords(name, records)
}

func readXLSX(r io.Reader) ([][]string, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoHeader
	}
	return wb.GetRows(sheets[0], excelize.Options{RawCellValue: true})
}

func readCSV(r io.Reader) ([][]string, error) {
	dec := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(dec)
	cr.FieldsPerRecord = -1
	return cr.ReadAll()
}

// fromRecords turns raw rows into a Table. The first row is the header;
// blank headers become "Unnamed: <i>" and repeated headers get ".1", ".2"
// suffixes. Short rows are padded and fully blank rows are skipped.
func fromRecords(name string, records [][]string) (model.Table, error) {
	if len(records) == 0 {
		return model.Table{}, fmt.Errorf("%s: %w", name, ErrNoHeader)
	}

	header := records[0]
	width := len(header)
	for _, rec := range records[1:] {
		width = max(width, len(rec))
	}

	t := model.Table{Name: name, Columns: headerNames(header, width)}
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		row := make(model.Row, width)
		for i, col := range t.Columns {
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func headerNames(header []string, width int) []string {
	names := make([]string, width)
	seen := make(map[string]int, width)
	for i := range names {
		h := ""
		if i < len(header) {
			h = header[i]
		}
		if strings.TrimSpace(h) == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		if n, dup := seen[h]; dup {
			seen[h] = n + 1
			h = h + "." + strconv.Itoa(n+1)
		} else {
			seen[h] = 0
		}
		names[i] = h
	}
	return names
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
