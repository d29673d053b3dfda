package util

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

var ansiCodes = regexp.MustCompile("\x1b\\[[0-9;]*m")

// TableColumn represents a column in a table
type TableColumn struct {
	Header string
	Key    string // key to extract from a row
	Width  int    // calculated width
}

// RenderTable writes rows aligned under the column headers. Values may
// contain ANSI color codes.
func RenderTable(w io.Writer, columns []TableColumn, rows []map[string]string) error {
	for i := range columns {
		columns[i].Width = displayWidth(columns[i].Header)
		for _, row := range rows {
			if width := displayWidth(row[columns[i].Key]); width > columns[i].Width {
				columns[i].Width = width
			}
		}
	}

	headers := make([]string, len(columns))
	separators := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = pad(col.Header, col.Width)
		separators[i] = strings.Repeat("-", col.Width)
	}
	lines := []string{
		strings.TrimRight(strings.Join(headers, " "), " "),
		strings.Join(separators, " "),
	}

	for _, row := range rows {
		values := make([]string, len(columns))
		for i, col := range columns {
			values[i] = pad(row[col.Key], col.Width)
		}
		lines = append(lines, strings.TrimRight(strings.Join(values, " "), " "))
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func displayWidth(s string) int {
	return utf8.RuneCountInString(ansiCodes.ReplaceAllString(s, ""))
}

func pad(s string, width int) string {
	if n := displayWidth(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
