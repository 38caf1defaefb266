package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// IsSpreadsheet reports whether name has an extension ReadGrid understands.
func IsSpreadsheet(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm", ".csv":
		return true
	}
	return false
}

// ReadGrid decodes the first sheet of a workbook, or a delimited file,
// into rows of raw cell text.
func ReadGrid(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	defer f.Close()
	return ReadGridFrom(f, path)
}

// ReadGridFrom decodes a grid from r, choosing the decoder by the extension of name.
func ReadGridFrom(r io.Reader, name string) ([][]string, error) {
	var (
		grid [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		grid, err = readWorkbook(r)
	case ".csv":
		grid, err = readDelimited(r)
	default:
		err = fmt.Errorf("unsupported spreadsheet type %q", filepath.Ext(name))
	}
	if err != nil {
		return nil, &ReadError{Path: name, Err: err}
	}
	return grid, nil
}

func readWorkbook(r io.Reader) ([][]string, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	rows, err := wb.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

// sniffLines is how many leading lines sniffDelimiter inspects.
const sniffLines = 10

// sniffDelimiter picks ';' when any of the leading lines contains one.
// Comma-decimal sheets are only readable with ';' as the delimiter.
func sniffDelimiter(text string) rune {
	for i, line := range strings.SplitN(text, "\n", sniffLines+1) {
		if i == sniffLines {
			break
		}
		if strings.Contains(line, ";") {
			return ';'
		}
	}
	return ','
}

func readDelimited(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text, err := DecodeText(data, "auto")
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(strings.NewReader(text))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.Comma = sniffDelimiter(text)

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading delimited grid: %w", err)
	}
	return rows, nil
}
