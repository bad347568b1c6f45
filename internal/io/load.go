package io

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// ErrInputFormat reports an unsupported file type or malformed numeric content
var ErrInputFormat = errors.New("input format error")

// LoadMatrix reads a dense matrix from .npy, .csv (comma delimited) or .txt (whitespace delimited)
func LoadMatrix(path string) (*mat.Dense, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".npy":
		return NpytoMat64(path)
	case ".csv":
		return CSVtoMat64(path)
	case ".txt":
		return TXTtoMat64(path)
	}

	return nil, fmt.Errorf("%w: %s: want .npy, .csv or .txt", ErrInputFormat, path)
}

// LoadVector reads a one dimensional array; either matrix dimension may hold the values
func LoadVector(path string) ([]float64, error) {
	matrix, err := LoadMatrix(path)
	if err != nil {
		return nil, err
	}

	rows, cols := matrix.Dims()
	switch {
	case cols == 1:
		return mat.Col(nil, 0, matrix), nil
	case rows == 1:
		return mat.Row(nil, 0, matrix), nil
	}

	return nil, fmt.Errorf("%w: %s: want a vector, got %d by %d", ErrInputFormat, path, rows, cols)
}

// LoadGradients reads a gradient basis from an npz container (key G) or a plain matrix file
func LoadGradients(path string) (*mat.Dense, error) {
	if strings.ToLower(filepath.Ext(path)) == ".npz" {
		return LoadNpz(path, GradientKey)
	}

	return LoadMatrix(path)
}

// SaveMatrix writes a matrix as .npy or .csv depending on the extension of path
func SaveMatrix(path string, matrix *mat.Dense) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".npy":
		return Mat64toNpy(path, matrix)
	case ".csv":
		return Mat64toCSV(path, matrix)
	}

	return fmt.Errorf("%w: %s: want .npy or .csv", ErrInputFormat, path)
}

func ensureParent(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	return nil
}
