package anal

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/KyungWonPark/lsdgrad/internal/calc"
	"github.com/KyungWonPark/lsdgrad/internal/io"
)

func TestParseMetric(t *testing.T) {
	for _, name := range []string{"corr", "EUCLID", " both "} {
		_, err := ParseMetric(name)
		assert.NoError(t, err, name)
	}

	_, err := ParseMetric("cosine")
	assert.ErrorIs(t, err, ErrUnsupportedMetric)
}

func TestSimilarity(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{2, 4, 7}

	res, err := Similarity(a, b, Both)
	require.NoError(t, err)
	assert.InDelta(t, stat.Correlation(a, b, nil), res["corr"], 1e-12)
	assert.InDelta(t, math.Sqrt(1+4+16), res["euclid"], 1e-12)

	res, err = Similarity(a, b, Corr)
	require.NoError(t, err)
	assert.NotContains(t, res, "euclid")

	_, err = Similarity(a, []float64{1}, Corr)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestZScore(t *testing.T) {
	z := ZScore([]float64{2, 4, 6, 8})

	mean, std := stat.PopMeanStdDev(z, nil)
	assert.InDelta(t, 0, mean, 1e-12)
	assert.InDelta(t, 1, std, 1e-12)
}

func writeGradient(t *testing.T, dir, name string, v []float64) {
	t.Helper()
	require.NoError(t, io.F64SliceToNpy(filepath.Join(dir, name+".npy"), v))
}

func TestLoadGroup(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "lsd")
	writeGradient(t, dir, "sub-02", []float64{1, 2, 3})
	writeGradient(t, dir, "sub-01", []float64{3, 2, 1})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0644))

	g, err := LoadGroup(dir)
	require.NoError(t, err)
	assert.Equal(t, "lsd", g.Name)
	require.Len(t, g.Subjects, 2)
	assert.Equal(t, "sub-01", g.Subjects[0].Name)
	assert.InDelta(t, 1.224744871391589, g.Subjects[0].Gradient[0], 1e-12)

	_, err = LoadGroup(t.TempDir())
	assert.ErrorIs(t, err, ErrNoSubjects)
}

func TestCompareToReference(t *testing.T) {
	groups := []Group{{Name: "lsd", Subjects: []Subject{{Name: "sub-01", Gradient: []float64{1, 2, 3}}}}}

	rows, err := CompareToReference(groups, []float64{1, 2, 3}, Both)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.InDelta(t, 1, rows[0].Metrics["corr"], 1e-12)
	assert.InDelta(t, 0, rows[0].Metrics["euclid"], 1e-12)

	header, records := SimilarityTable(rows, Both, false)
	assert.Equal(t, []string{"subject", "group", "corr", "euclid"}, header)
	assert.Equal(t, []string{"sub-01", "lsd"}, records[0][:2])
	assert.Equal(t, "0", records[0][3])

	_, err = CompareToReference(groups, []float64{1, 2}, Corr)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestComparePairs(t *testing.T) {
	a := Group{Name: "lsd", Subjects: []Subject{
		{Name: "sub-01", Gradient: []float64{1, 2, 3}},
		{Name: "sub-02", Gradient: []float64{1, 2, 3}},
	}}
	b := Group{Name: "placebo", Subjects: []Subject{
		{Name: "sub-02", Gradient: []float64{3, 2, 1}},
		{Name: "sub-03", Gradient: []float64{3, 2, 1}},
	}}

	rows, err := ComparePairs(a, b, Corr)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "sub-02", rows[0].Subject)
	assert.InDelta(t, -1, rows[0].Metrics["corr"], 1e-12)

	header, records := SimilarityTable(rows, Corr, true)
	assert.Equal(t, []string{"subject", "groupA", "groupB", "corr"}, header)
	assert.Equal(t, []string{"sub-02", "lsd", "placebo"}, records[0][:3])

	_, err = ComparePairs(a, Group{Name: "none", Subjects: []Subject{{Name: "x", Gradient: []float64{1}}}}, Corr)
	assert.ErrorIs(t, err, ErrNoSubjects)
}

func TestAlign(t *testing.T) {
	gradient := []float64{1, 2, 3, 4}
	ts := mat.NewDense(3, 4, []float64{
		10, 20, 30, 40,
		4, 3, 2, 1,
		1, 2, 3, 4.5,
	})

	a, err := Align(calc.Init(2), "lsd", "sub-01", ts, gradient)
	require.NoError(t, err)
	assert.Equal(t, 3, a.NTimepoints)
	assert.InDelta(t, 1, a.Series[0], 1e-12)
	assert.InDelta(t, -1, a.Series[1], 1e-12)
	assert.InDelta(t, stat.Mean(a.Series, nil), a.MeanR, 1e-12)
	assert.InDelta(t, math.Atanh(a.MeanR), a.MeanZ, 1e-12)

	header, records := AlignmentTable([]Alignment{a})
	assert.Equal(t, []string{"group", "subject", "n_timepoints", "mean_r", "mean_z"}, header)
	assert.Equal(t, "3", records[0][2])
}

func TestAlign_ParcelMismatch(t *testing.T) {
	_, err := Align(calc.Init(1), "lsd", "sub-01", mat.NewDense(2, 3, nil), []float64{1, 2})
	assert.ErrorIs(t, err, ErrLengthMismatch)
}
