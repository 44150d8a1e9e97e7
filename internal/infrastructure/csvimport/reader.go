// Package csvimport reads spreadsheet exports for bulk ledger imports.
// Headers are matched case-insensitively and values are trimmed.
package csvimport

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

var (
	ErrEmptyFile       = errors.New("csv file is empty")
	ErrInvalidEncoding = errors.New("csv file is not valid UTF-8")
	ErrMissingHeader   = errors.New("csv file has no header row")
	ErrTooManyRows     = errors.New("csv file has too many rows")
)

const encodingSniffLen = 4096

// Row is one data line keyed by lower-cased header
type Row struct {
	Line   int
	fields map[string]string
}

// Get returns the trimmed value of column, or "" when absent
func (r Row) Get(column string) string {
	return r.fields[strings.ToLower(column)]
}

func (r Row) empty() bool {
	for _, v := range r.fields {
		if v != "" {
			return false
		}
	}
	return true
}

// Reader yields rows of a headed CSV file
type Reader struct {
	csv     *csv.Reader
	headers []string
	line    int
	rows    int
	maxRows int
	comma   rune
	legacy  encoding.Encoding
}

// Option configures a Reader
type Option func(*Reader)

// WithDelimiter sets the field separator (default comma)
func WithDelimiter(d rune) Option {
	return func(r *Reader) { r.comma = d }
}

// WithLegacyEncoding decodes files that are not UTF-8 with enc instead of
// rejecting them. Spreadsheet exports on Windows are usually Windows-1252.
func WithLegacyEncoding(enc encoding.Encoding) Option {
	return func(r *Reader) { r.legacy = enc }
}

// WithMaxRows caps the number of data rows; zero means no cap
func WithMaxRows(n int) Option {
	return func(r *Reader) { r.maxRows = n }
}

// NewReader strips a UTF-8 BOM, checks the encoding and reads the header.
// The header must contain every column in required.
func NewReader(src io.Reader, required []string, opts ...Option) (*Reader, error) {
	r := &Reader{comma: ','}
	for _, opt := range opts {
		opt(r)
	}

	buf := bufio.NewReader(src)
	if bom, _ := buf.Peek(3); len(bom) == 3 && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		_, _ = buf.Discard(3)
	}
	head, err := buf.Peek(encodingSniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(head) == 0 {
		return nil, ErrEmptyFile
	}

	var body io.Reader = buf
	if !utf8.Valid(trimPartialRune(head)) {
		if r.legacy == nil {
			return nil, ErrInvalidEncoding
		}
		body = transform.NewReader(buf, r.legacy.NewDecoder())
	}

	r.csv = csv.NewReader(body)
	r.csv.Comma = r.comma
	r.csv.LazyQuotes = true
	r.csv.TrimLeadingSpace = true
	r.csv.FieldsPerRecord = -1

	header, err := r.csv.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	r.line = 1
	for _, h := range header {
		r.headers = append(r.headers, strings.ToLower(strings.TrimSpace(h)))
	}

	var missing []string
	for _, col := range required {
		if !r.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing column(s) %s", ErrMissingHeader, strings.Join(missing, ", "))
	}
	return r, nil
}

// HasColumn reports whether the header names column
func (r *Reader) HasColumn(column string) bool {
	column = strings.ToLower(column)
	for _, h := range r.headers {
		if h == column {
			return true
		}
	}
	return false
}

// Next returns the next non-blank row, or io.EOF
func (r *Reader) Next() (Row, error) {
	for {
		record, err := r.csv.Read()
		if errors.Is(err, io.EOF) {
			return Row{}, io.EOF
		}
		r.line++
		if err != nil {
			return Row{}, fmt.Errorf("line %d: %w", r.line, err)
		}

		row := Row{Line: r.line, fields: make(map[string]string, len(r.headers))}
		for i, h := range r.headers {
			if i < len(record) {
				row.fields[h] = strings.TrimSpace(record[i])
			}
		}
		if row.empty() {
			continue
		}
		r.rows++
		if r.maxRows > 0 && r.rows > r.maxRows {
			return Row{}, fmt.Errorf("%w: limit is %d", ErrTooManyRows, r.maxRows)
		}
		return row, nil
	}
}

// trimPartialRune drops a multi-byte sequence cut off by the sniff window
func trimPartialRune(b []byte) []byte {
	for i := 0; i < utf8.UTFMax && i < len(b); i++ {
		if utf8.RuneStart(b[len(b)-1-i]) {
			if !utf8.FullRune(b[len(b)-1-i:]) {
				return b[:len(b)-1-i]
			}
			break
		}
	}
	return b
}
