package prop

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// dataPathEnv overrides the directory tabulated data files are loaded from.
const dataPathEnv = "COSMORAY_DATA_PATH"

// DataPath resolves a logical dataset name to a filesystem path.
func DataPath(filename string) string {
	if dir := os.Getenv(dataPathEnv); dir != "" {
		return filepath.Join(dir, filename)
	}
	return filepath.Join("data", filename)
}

// readTable reads a line-oriented numeric table: whitespace-separated
// columns, one row per line, blank lines and lines starting with '#'
// skipped. Every data row must have exactly cols columns.
func readTable(path string, cols int) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table %s: %w", path, err)
	}
	defer f.Close()

	var rows [][]float64
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != cols {
			return nil, fmt.Errorf("%s:%d: expected %d columns, got %d", path, lineNo, cols, len(fields))
		}
		row := make([]float64, cols)
		for i, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: column %d: %w", path, lineNo, i+1, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read table %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("table %s contains no data rows", path)
	}
	return rows, nil
}

// readColumn reads a single-column table into a slice.
func readColumn(path string) ([]float64, error) {
	rows, err := readTable(path, 1)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		out[i] = row[0]
	}
	return out, nil
}
