package io

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// Mat64toCSV saves a matrix as a csv file
func Mat64toCSV(path string, matrix *mat.Dense) error {
	if err := ensureParent(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("[Mat64toCSV] failed to open %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	rows, _ := matrix.Dims()

	stride := runtime.NumCPU()
	parsed := make([]string, stride)

	for row := 0; row < rows; row += stride {
		var wg sync.WaitGroup
		jobMark := stride

		if row+stride >= rows {
			jobMark = rows - row
		}

		wg.Add(jobMark)
		for offset := 0; offset < jobMark; offset++ {
			go formatLine(matrix, parsed, offset, row, &wg)
		}
		wg.Wait()

		for i := 0; i < jobMark; i++ {
			if _, err := fmt.Fprintf(w, "%s\n", parsed[i]); err != nil {
				return fmt.Errorf("[Mat64toCSV] failed to write %s: %w", path, err)
			}
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("[Mat64toCSV] failed to write %s: %w", path, err)
	}

	return f.Close()
}

func formatLine(matrix *mat.Dense, parsed []string, offset int, row int, wg *sync.WaitGroup) {
	defer wg.Done()

	values := matrix.RawRowView(row + offset)
	fields := make([]string, len(values))
	for i, v := range values {
		fields[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}

	parsed[offset] = strings.Join(fields, ", ")
}

// CSVtoMat64 reads a comma delimited file as a matrix
func CSVtoMat64(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: [CSVtoMat64] failed to open file: %v", ErrInputFormat, err)
	}
	defer f.Close()

	csvReader := csv.NewReader(f)
	csvReader.Comment = '#'
	csvReader.TrimLeadingSpace = true

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: [CSVtoMat64] failed to parse %s: %v", ErrInputFormat, path, err)
	}

	matrix, err := recordsToMat64(records)
	if err != nil {
		return nil, fmt.Errorf("[CSVtoMat64] %s: %w", path, err)
	}

	return matrix, nil
}

// TXTtoMat64 reads a whitespace delimited file as a matrix
func TXTtoMat64(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: [TXTtoMat64] failed to open file: %v", ErrInputFormat, err)
	}
	defer f.Close()

	var records [][]string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		records = append(records, strings.Fields(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: [TXTtoMat64] failed to read %s: %v", ErrInputFormat, path, err)
	}

	matrix, err := recordsToMat64(records)
	if err != nil {
		return nil, fmt.Errorf("[TXTtoMat64] %s: %w", path, err)
	}

	return matrix, nil
}

func recordsToMat64(records [][]string) (*mat.Dense, error) {
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, fmt.Errorf("%w: no numeric content", ErrInputFormat)
	}

	rows, cols := len(records), len(records[0])
	data := make([]float64, 0, rows*cols)

	for i, record := range records {
		if len(record) != cols {
			return nil, fmt.Errorf("%w: line %d has %d fields, want %d", ErrInputFormat, i+1, len(record), cols)
		}

		for _, field := range record {
			value, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				var numErr *strconv.NumError
				if errors.As(err, &numErr) {
					err = numErr.Err
				}
				return nil, fmt.Errorf("%w: line %d: %q: %v", ErrInputFormat, i+1, field, err)
			}
			data = append(data, value)
		}
	}

	return mat.NewDense(rows, cols, data), nil
}
