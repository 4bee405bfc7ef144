// Package csvio reads and writes the catalogue's CSV interchange format.
//
// The reader is line oriented: input is split into lines before fields are
// tokenized, so a quoted field cannot span lines. Quoting otherwise follows
// RFC 4180.
package csvio

import (
	"bytes"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type Row map[string]string

type Table struct {
	Headers []string
	Rows    []Row
}

// Empty reports whether the table has no header.
func (t Table) Empty() bool { return len(t.Headers) == 0 }

// Column returns the first header equal to name ignoring case.
func (t Table) Column(name string) (string, bool) {
	for _, h := range t.Headers {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return h, true
		}
	}
	return "", false
}

// Parse tokenizes buf. Fewer than two non-blank lines yields an empty Table.
func Parse(buf []byte) Table {
	buf = bytes.TrimPrefix(buf, utf8BOM)

	var lines []string
	for _, line := range strings.Split(string(buf), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) < 2 {
		return Table{Headers: []string{}, Rows: []Row{}}
	}

	headers := splitFields(lines[0])
	rows := make([]Row, 0, len(lines)-1)
	for _, line := range lines[1:] {
		values := splitFields(line)
		row := make(Row, len(headers))
		for i, h := range headers {
			if _, dup := row[h]; dup {
				continue
			}
			if i < len(values) {
				row[h] = values[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return Table{Headers: headers, Rows: rows}
}

// splitFields tokenizes one line. Quotes toggle literal mode anywhere in a
// field; "" inside a quoted section is a literal quote.
func splitFields(line string) []string {
	var (
		fields  []string
		cur     strings.Builder
		inQuote bool
	)
	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"' && inQuote && i+1 < len(line) && line[i+1] == '"':
			cur.WriteByte('"')
			i++
		case ch == '"':
			inQuote = !inQuote
		case ch == ',' && !inQuote:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	return append(fields, cur.String())
}
