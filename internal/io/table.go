package io

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
)

// WriteTable writes a tab separated table with a header row
func WriteTable(path string, header []string, records [][]string) error {
	if err := ensureParent(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("[WriteTable] failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = '\t'

	if err := w.Write(header); err != nil {
		return fmt.Errorf("[WriteTable] failed to write %s: %w", path, err)
	}
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("[WriteTable] failed to write %s: %w", path, err)
	}

	return f.Close()
}

// FormatFloat renders a table cell; NaN becomes an empty cell
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}

	return strconv.FormatFloat(v, 'g', -1, 64)
}
