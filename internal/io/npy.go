package io

import (
	"fmt"
	"os"

	"github.com/kshedden/gonpy"
	"gonum.org/v1/gonum/mat"
)

// Mat64toNpy writes a matrix to Python numpy npy binary file
func Mat64toNpy(path string, matrix *mat.Dense) error {
	if err := ensureParent(path); err != nil {
		return err
	}

	w, err := gonpy.NewFileWriter(path)
	if err != nil {
		return fmt.Errorf("[Mat64toNpy] failed to open file: %w", err)
	}

	if err := writeNpy(w, matrix); err != nil {
		os.Remove(path)
		return fmt.Errorf("[Mat64toNpy] failed to write file: %w", err)
	}

	return nil
}

// F64SliceToNpy writes a float64 slice as a one dimensional npy array
func F64SliceToNpy(path string, slice []float64) error {
	if err := ensureParent(path); err != nil {
		return err
	}

	w, err := gonpy.NewFileWriter(path)
	if err != nil {
		return fmt.Errorf("[F64SliceToNpy] failed to open file: %w", err)
	}
	w.Shape = []int{len(slice)}
	w.Version = 2

	if err := w.WriteFloat64(slice); err != nil {
		os.Remove(path)
		return fmt.Errorf("[F64SliceToNpy] failed to write file: %w", err)
	}

	return nil
}

// NpytoMat64 reads Python numpy npy binary file as a matrix
func NpytoMat64(path string) (*mat.Dense, error) {
	r, err := gonpy.NewFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: [NpytoMat64] failed to open %s: %v", ErrInputFormat, path, err)
	}

	matrix, err := readNpy(r)
	if err != nil {
		return nil, fmt.Errorf("[NpytoMat64] %s: %w", path, err)
	}

	return matrix, nil
}

func writeNpy(w *gonpy.NpyWriter, matrix *mat.Dense) error {
	rows, cols := matrix.Dims()
	w.Shape = []int{rows, cols}
	w.Version = 2

	return w.WriteFloat64(rawData(matrix))
}

func readNpy(r *gonpy.NpyReader) (*mat.Dense, error) {
	data, err := r.GetFloat64()
	if err != nil {
		return nil, fmt.Errorf("%w: only float64 arrays are supported: %v", ErrInputFormat, err)
	}

	var rows, cols int
	switch len(r.Shape) {
	case 1:
		rows, cols = r.Shape[0], 1
	case 2:
		rows, cols = r.Shape[0], r.Shape[1]
	default:
		return nil, fmt.Errorf("%w: array has %d dimensions, want 1 or 2", ErrInputFormat, len(r.Shape))
	}

	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("%w: empty array of shape %v", ErrInputFormat, r.Shape)
	}
	if rows*cols != len(data) {
		return nil, fmt.Errorf("%w: shape %v does not match %d values", ErrInputFormat, r.Shape, len(data))
	}

	if r.ColumnMajor && cols > 1 {
		// Fortran order stores the transpose row by row
		t := mat.NewDense(cols, rows, data)
		return mat.DenseCopyOf(t.T()), nil
	}

	return mat.NewDense(rows, cols, data), nil
}

// rawData returns the row-major backing values of matrix, copying when it is a strided view
func rawData(matrix *mat.Dense) []float64 {
	rows, cols := matrix.Dims()
	raw := matrix.RawMatrix()
	if raw.Stride == cols {
		return raw.Data[:rows*cols]
	}

	data := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		data = append(data, matrix.RawRowView(i)...)
	}

	return data
}
