package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// readCSV returns the first record as headers and the rest as raw cells.
// The delimiter is sniffed from the header line: spreadsheets saved with a
// comma decimal separator export semicolon-delimited files.
func readCSV(r io.Reader) ([]string, [][]interface{}, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}
	text := strings.TrimPrefix(string(data), "\ufeff")

	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = sniffDelimiter(text)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("file is empty")
	}

	rows := make([][]interface{}, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make([]interface{}, len(rec))
		for i, cell := range rec {
			row[i] = cell
		}
		rows = append(rows, row)
	}
	return records[0], rows, nil
}

func sniffDelimiter(text string) rune {
	header := text
	if i := strings.IndexAny(text, "\r\n"); i >= 0 {
		header = text[:i]
	}
	best, bestCount := ',', strings.Count(header, ",")
	for _, d := range []rune{';', '\t'} {
		if n := strings.Count(header, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}
