package io

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadMatrix_UnsupportedExtension(t *testing.T) {
	path := writeFile(t, "fc.mat", "1 2\n3 4\n")

	_, err := LoadMatrix(path)
	require.ErrorIs(t, err, ErrInputFormat)
}

func TestLoadMatrix_CSV(t *testing.T) {
	path := writeFile(t, "fc.csv", "# fc\n1, 0.5\n0.5, 1\n")

	m, err := LoadMatrix(path)
	require.NoError(t, err)
	assert.True(t, mat.Equal(m, mat.NewDense(2, 2, []float64{1, 0.5, 0.5, 1})))
}

func TestLoadMatrix_TXT(t *testing.T) {
	path := writeFile(t, "fc.txt", "1 2 3\n\n4\t5 6\n")

	m, err := LoadMatrix(path)
	require.NoError(t, err)
	assert.True(t, mat.Equal(m, mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})))
}

func TestLoadMatrix_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"ragged csv", "a.csv", "1,2\n3\n"},
		{"ragged txt", "a.txt", "1 2\n3\n"},
		{"not a number", "a.csv", "1,x\n"},
		{"empty", "a.txt", "\n# nothing\n"},
		{"bad npy", "a.npy", "not an array"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadMatrix(writeFile(t, tt.file, tt.content))
			assert.ErrorIs(t, err, ErrInputFormat)
		})
	}
}

func TestNpyMatrix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "m.npy")
	m := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})

	require.NoError(t, Mat64toNpy(path, m))

	got, err := LoadMatrix(path)
	require.NoError(t, err)
	assert.True(t, mat.Equal(m, got))
}

func TestNpyStridedView(t *testing.T) {
	path := filepath.Join(t.TempDir(), "view.npy")
	m := mat.NewDense(3, 3, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9})
	view := m.Slice(0, 3, 1, 3).(*mat.Dense)

	require.NoError(t, Mat64toNpy(path, view))

	got, err := NpytoMat64(path)
	require.NoError(t, err)
	assert.True(t, mat.Equal(mat.NewDense(3, 2, []float64{2, 3, 5, 6, 8, 9}), got))
}

func TestLoadVector(t *testing.T) {
	dir := t.TempDir()

	vecPath := filepath.Join(dir, "g.npy")
	require.NoError(t, F64SliceToNpy(vecPath, []float64{0.1, 0.2, 0.3}))
	v, err := LoadVector(vecPath)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, v)

	rowPath := writeFile(t, "row.csv", "1,2,3\n")
	v, err = LoadVector(rowPath)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, v)

	_, err = LoadVector(writeFile(t, "m.csv", "1,2\n3,4\n"))
	assert.ErrorIs(t, err, ErrInputFormat)
}

func TestNpzGradients(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gradients.npz")
	g := mat.NewDense(4, 2, []float64{1, 2, 3, 4, 5, 6, 7, 8})
	other := mat.NewDense(1, 1, []float64{42})

	require.NoError(t, SaveNpz(path, []NpzEntry{{Key: "extra", Matrix: other}, {Key: GradientKey, Matrix: g}}))

	got, err := LoadGradients(path)
	require.NoError(t, err)
	assert.True(t, mat.Equal(g, got))

	entries, err := ReadNpz(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "extra", entries[0].Key)
	assert.Equal(t, GradientKey, entries[1].Key)

	_, err = LoadNpz(path, "missing")
	assert.ErrorIs(t, err, ErrInputFormat)
}

func TestMat64toCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.csv")
	m := mat.NewDense(3, 2, []float64{0.25, -1, 3e-9, 4, 5, 6.5})

	require.NoError(t, SaveMatrix(path, m))

	got, err := LoadMatrix(path)
	require.NoError(t, err)
	assert.True(t, mat.Equal(m, got))
}

func TestWriteTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.tsv")

	require.NoError(t, WriteTable(path, []string{"subject", "corr"}, [][]string{{"sub-01", FormatFloat(0.5)}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "subject\tcorr\nsub-01\t0.5\n", string(data))
}
