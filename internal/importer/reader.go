package importer

// reader.go parses one CSV feed against a declared field mapping.
//
// Feeds arrive in two layouts: name-bound columns located through a header
// row (matched case-insensitively), and position-bound columns for the
// headerless price variant. The delimiter is explicit per mapping and never
// inferred. Malformed rows either fail the read with the row's position and
// raw content (strict, the default) or are skipped and counted (tolerant).

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// ColumnBinding binds one raw field to a CSV column. A non-empty Name means
// the column is located through the header row; otherwise Index addresses
// it positionally.
type ColumnBinding struct {
	Field string
	Name  string
	Index int
}

// FieldMapping declares how one feed's rows map onto raw fields.
type FieldMapping struct {
	Source    string
	Delimiter rune
	HasHeader bool
	Columns   []ColumnBinding
}

// ReadOptions controls the bad-row policy for one read.
type ReadOptions struct {
	// TolerateBadRows skips structurally malformed rows instead of failing
	// the whole read. Default is strict: fail loudly.
	TolerateBadRows bool
}

// SkippedRow records one malformed row dropped under the tolerant policy.
type SkippedRow struct {
	Line   int    `json:"line"`
	Raw    string `json:"raw"`
	Reason string `json:"reason"`
}

// ReadReport summarizes one feed read.
type ReadReport struct {
	Source  string       `json:"source"`
	Rows    int          `json:"rows"`
	Skipped []SkippedRow `json:"skipped,omitempty"`
}

// ReadRecords parses the CSV source into raw rows per the mapping.
// The input is consumed fully in a single pass; the returned rows are in
// feed order. Empty rows are dropped silently.
func ReadRecords(r io.Reader, m FieldMapping, opts ReadOptions) ([]RawRow, *ReadReport, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", m.Source, err)
	}
	data = skipBOM(data)
	data = sanitizeUTF8(data)

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = m.Delimiter
	cr.FieldsPerRecord = -1

	var headerIdx HeaderIndex
	if m.HasHeader {
		header, err := cr.Read()
		if err == io.EOF {
			return nil, &ReadReport{Source: m.Source}, nil
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%s: read header: %w", m.Source, err)
		}
		headerIdx = MakeHeaderIndex(header)
	}

	report := &ReadReport{Source: m.Source}
	var rows []RawRow

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line, raw := offendingRow(err, data)
			if opts.TolerateBadRows {
				report.Skipped = append(report.Skipped, SkippedRow{
					Line:   line,
					Raw:    raw,
					Reason: err.Error(),
				})
				continue
			}
			return nil, nil, fmt.Errorf("%s: bad CSV data at row %d (%q): %w", m.Source, line, raw, err)
		}

		if isEmptyRow(record) {
			continue
		}

		row := make(RawRow, len(m.Columns))
		for _, col := range m.Columns {
			row[col.Field] = extractCell(record, headerIdx, col)
		}
		rows = append(rows, row)
		report.Rows++
	}

	return rows, report, nil
}

// extractCell resolves one bound column from a record. Columns missing from
// the header or beyond the record's width yield an empty string; the feeds
// are string-typed here and coerced later.
func extractCell(record []string, headerIdx HeaderIndex, col ColumnBinding) string {
	pos := col.Index
	if col.Name != "" {
		p, ok := headerIdx[strings.ToLower(col.Name)]
		if !ok {
			return ""
		}
		pos = p
	}
	if pos < 0 || pos >= len(record) {
		return ""
	}
	return CleanCell(record[pos])
}

// HeaderIndex maps lowercased column names to their position in the row.
type HeaderIndex map[string]int

// MakeHeaderIndex builds a case-insensitive header index.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		idx[strings.ToLower(CleanCell(h))] = i
	}
	return idx
}

// CleanCell removes common CSV artifacts from a cell value: surrounding
// whitespace, the Excel formula prefix (="..."), and stray quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}
	return strings.Trim(s, `"'`)
}

func isEmptyRow(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// skipBOM drops a leading UTF-8 byte order mark, commonly present in
// Windows-exported feeds.
func skipBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}

// sanitizeUTF8 replaces invalid UTF-8 sequences with the replacement
// character so downstream parsing never chokes on encoding damage.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('\uFFFD')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}
	return buf.Bytes()
}

// offendingRow pulls the row position and raw line content out of a CSV
// parse error for error reporting.
func offendingRow(err error, data []byte) (int, string) {
	var pe *csv.ParseError
	if !errors.As(err, &pe) {
		return 0, ""
	}
	lines := bytes.Split(data, []byte{'\n'})
	if pe.Line >= 1 && pe.Line <= len(lines) {
		return pe.Line, string(bytes.TrimRight(lines[pe.Line-1], "\r"))
	}
	return pe.Line, ""
}
