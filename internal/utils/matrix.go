package utils

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
)

// WriteFloat64Matrix writes rows as a raw row-major little-endian
// float64 matrix, the layout numpy.fromfile reads without a header.
func WriteFloat64Matrix(path string, rows [][]float64) error {
	if len(rows) == 0 {
		return fmt.Errorf("matrix %s: no rows to write", path)
	}
	width := len(rows[0])
	for i, row := range rows {
		if len(row) != width {
			return fmt.Errorf("matrix %s: row %d has %d columns, want %d", path, i, len(row), width)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create %s: %w", path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for _, row := range rows {
		if err := binary.Write(w, binary.LittleEndian, row); err != nil {
			return fmt.Errorf("error writing %s: %w", path, err)
		}
	}
	return w.Flush()
}
