package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// LoadCSV reads a headered CSV file into a frame. Every cell below the header
// must parse as a float64; parse failures report the 1-based row and the
// column name.
func LoadCSV(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	if len(header) == 0 {
		return nil, fmt.Errorf("empty header in %s", path)
	}

	cols := make([][]float64, len(header))
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d of %s: %w", row+2, path, err)
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("row %d of %s: expected %d columns, got %d",
				row+2, path, len(header), len(record))
		}

		for j, cell := range record {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q of %s: parse %q: %w",
					row+2, header[j], path, cell, err)
			}
			cols[j] = append(cols[j], v)
		}
		row++
	}

	frame := New()
	for j, name := range header {
		values := cols[j]
		if values == nil {
			values = []float64{}
		}
		if err := frame.AddColumn(name, values); err != nil {
			return nil, fmt.Errorf("column %q of %s: %w", name, path, err)
		}
	}
	return frame, nil
}

// WriteCSV writes the frame to a headered CSV file, columns in insertion
// order. Values use the shortest round-trippable float formatting.
func (f *Frame) WriteCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(f.names); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(f.names))
	for i := 0; i < f.rows; i++ {
		for j, name := range f.names {
			record[j] = strconv.FormatFloat(f.cols[name][i], 'g', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}
