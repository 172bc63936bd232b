package extract

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ReadCSV parses a CSV stream into rows, using the first record as the
// header. Records shorter than the header leave the trailing columns
// absent; longer records have their extras ignored.
func ReadCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	rows := make([]Row, 0)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv record %d: %w", len(rows)+1, err)
		}
		row := make(Row, len(header))
		for i, col := range header {
			if i >= len(record) {
				break
			}
			row[col] = record[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}
