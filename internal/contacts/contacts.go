// Package contacts loads the recipient list from a spreadsheet.
//
// Supported formats are Excel workbooks (.xlsx, .xlsm, .xltx) and CSV files
// separated by commas or semicolons. The first non-empty row is the header;
// the name and phone columns are located by header text.
package contacts

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for file extensions the loader cannot read.
var ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

// ErrNoHeader is returned when the sheet has no non-empty row.
var ErrNoHeader = errors.New("spreadsheet has no header row")

// ColumnError reports a required column missing from the header row.
type ColumnError struct {
	Column string
	Header []string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("column %q not found in header [%s]", e.Column, strings.Join(e.Header, ", "))
}

// Columns names the header cells holding the contact name and phone.
type Columns struct {
	Name  string
	Phone string
}

// DefaultColumns matches the Portuguese headers used by existing lists.
func DefaultColumns() Columns {
	return Columns{Name: "nome", Phone: "telefone"}
}

// Options control how a spreadsheet is read.
type Options struct {
	Columns Columns
	// Sheet selects a worksheet by name; empty means the first sheet.
	// Ignored for CSV.
	Sheet string
}

// Contact is one data row.
type Contact struct {
	Row    int // 1-based row number in the source file
	Name   string
	Phone  string
	Fields map[string]string // every column keyed by lower-cased header
}

// Book is the parsed content of a spreadsheet.
type Book struct {
	Path     string
	Header   []string
	Contacts []Contact
}

// Extensions lists the file extensions Load accepts.
func Extensions() []string {
	return []string{".xlsx", ".xlsm", ".xltx", ".csv"}
}

// Load reads path and extracts its contacts.
func Load(path string, opts Options) (*Book, error) {
	cols := opts.Columns
	def := DefaultColumns()
	if strings.TrimSpace(cols.Name) == "" {
		cols.Name = def.Name
	}
	if strings.TrimSpace(cols.Phone) == "" {
		cols.Phone = def.Phone
	}

	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx":
		rows, err = readWorkbook(path, opts.Sheet)
	case ".csv":
		rows, err = readCSV(path)
	case ".xls":
		return nil, fmt.Errorf("%w: %s is a legacy Excel 97-2003 file; save it as .xlsx or .csv",
			ErrUnsupportedFormat, filepath.Base(path))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}
	if err != nil {
		return nil, err
	}

	book, err := buildBook(rows, cols)
	if err != nil {
		return nil, err
	}
	book.Path = path
	return book, nil
}

func buildBook(rows [][]string, cols Columns) (*Book, error) {
	start := -1
	for i, r := range rows {
		if !blankRow(r) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, ErrNoHeader
	}

	header := make([]string, len(rows[start]))
	keys := make([]string, len(rows[start]))
	for i, h := range rows[start] {
		header[i] = strings.TrimSpace(h)
		keys[i] = strings.ToLower(header[i])
	}

	nameIdx := indexOf(keys, cols.Name)
	if nameIdx < 0 {
		return nil, &ColumnError{Column: cols.Name, Header: header}
	}
	phoneIdx := indexOf(keys, cols.Phone)
	if phoneIdx < 0 {
		return nil, &ColumnError{Column: cols.Phone, Header: header}
	}

	book := &Book{Header: header}
	for i := start + 1; i < len(rows); i++ {
		r := rows[i]
		if blankRow(r) {
			continue
		}
		c := Contact{
			Row:    i + 1,
			Name:   cell(r, nameIdx),
			Phone:  cell(r, phoneIdx),
			Fields: make(map[string]string, len(keys)),
		}
		for j, k := range keys {
			if k == "" {
				continue
			}
			if _, dup := c.Fields[k]; dup {
				continue
			}
			c.Fields[k] = cell(r, j)
		}
		book.Contacts = append(book.Contacts, c)
	}
	return book, nil
}

func indexOf(keys []string, want string) int {
	want = strings.ToLower(strings.TrimSpace(want))
	for i, k := range keys {
		if k == want {
			return i
		}
	}
	return -1
}

func cell(r []string, i int) string {
	if i >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[i])
}

func blankRow(r []string) bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
