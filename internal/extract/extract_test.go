package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/KyungWonPark/lsdgrad/internal/calc"
	"github.com/KyungWonPark/lsdgrad/internal/metrics"
)

type fakeVolume struct {
	dims   [4]int
	values map[[4]int]float64
}

func (v *fakeVolume) Dims() [4]int { return v.dims }

func (v *fakeVolume) At(x, y, z, t int) float64 {
	return v.values[[4]int{x, y, z, t}]
}

// labels [[1,2],[2,0]] on a 2x2x1 grid
func testAtlas(t *testing.T) *Atlas {
	v := &fakeVolume{dims: [4]int{2, 2, 1, 1}, values: map[[4]int]float64{
		{0, 0, 0, 0}: 1,
		{1, 0, 0, 0}: 2,
		{0, 1, 0, 0}: 2,
	}}

	a, err := NewAtlas(v)
	require.NoError(t, err)
	return a
}

// three timepoints; voxel (x,y) at t holds (t+1)*(x+2y+1)
func testImage() *fakeVolume {
	v := &fakeVolume{dims: [4]int{2, 2, 1, 3}, values: map[[4]int]float64{}}
	for tp := 0; tp < 3; tp++ {
		for y := 0; y < 2; y++ {
			for x := 0; x < 2; x++ {
				v.values[[4]int{x, y, 0, tp}] = float64((tp + 1) * (x + 2*y + 1))
			}
		}
	}
	return v
}

func TestNewAtlas(t *testing.T) {
	a := testAtlas(t)
	assert.Equal(t, []int{1, 2}, a.Labels)
	assert.Equal(t, 2, a.Len())

	require.Error(t, a.SetNames([]string{"only-one"}))
	require.NoError(t, a.SetNames([]string{"Vis", "Default"}))
	assert.Equal(t, []string{"Vis", "Default"}, a.Names)
}

func TestNewAtlas_Empty(t *testing.T) {
	_, err := NewAtlas(&fakeVolume{dims: [4]int{2, 2, 1, 1}})
	assert.ErrorIs(t, err, ErrGeometry)
}

func TestExtract_ParcelMeans(t *testing.T) {
	e := NewExtractor(calc.Init(2), testAtlas(t), "atlas")

	ts, err := e.Extract(testImage())
	require.NoError(t, err)

	rows, cols := ts.Dims()
	require.Equal(t, 3, rows)
	require.Equal(t, 2, cols)

	for tp := 0; tp < 3; tp++ {
		scale := float64(tp + 1)
		assert.InDelta(t, scale*1, ts.At(tp, 0), 1e-12)
		// parcel 2 holds voxel values 2 and 3
		assert.InDelta(t, scale*2.5, ts.At(tp, 1), 1e-12)
	}
}

func TestExtract_Standardize(t *testing.T) {
	e := NewExtractor(calc.Init(2), testAtlas(t), "atlas")
	e.Standardize = true

	ts, err := e.Extract(testImage())
	require.NoError(t, err)

	for p := 0; p < 2; p++ {
		col := mat.Col(nil, p, ts)
		var sum float64
		for _, v := range col {
			sum += v
		}
		assert.InDelta(t, 0, sum, 1e-9)
		assert.InDelta(t, -1.224744871391589, col[0], 1e-9)
	}
}

func TestExtract_GeometryMismatch(t *testing.T) {
	e := NewExtractor(calc.Init(1), testAtlas(t), "atlas")

	_, err := e.Extract(&fakeVolume{dims: [4]int{3, 2, 1, 4}})
	assert.ErrorIs(t, err, ErrGeometry)
}

func TestSplitKey(t *testing.T) {
	s := Series{Group: "LSD", Subject: "sub-01"}
	group, subject := SplitKey(s.Key())
	assert.Equal(t, "LSD", group)
	assert.Equal(t, "sub-01", subject)

	group, subject = SplitKey("lonely")
	assert.Empty(t, group)
	assert.Equal(t, "lonely", subject)
}

func TestSubjectName(t *testing.T) {
	assert.Equal(t, "sub-01_bold", SubjectName("/data/LSD/sub-01_bold.nii.gz"))
	assert.Equal(t, "sub-02", SubjectName("sub-02.nii"))
}

func TestDiskCache_EvictsLeastRecentlyUsed(t *testing.T) {
	dir := t.TempDir()
	c, err := NewDiskCache(dir, 2)
	require.NoError(t, err)

	m := mat.NewDense(1, 2, []float64{1, 2})
	require.NoError(t, c.Put("a", m))
	require.NoError(t, c.Put("b", m))

	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "a.npy"), old, old))
	require.NoError(t, os.Chtimes(filepath.Join(dir, "b.npy"), old.Add(time.Minute), old.Add(time.Minute)))

	// touching a makes b the oldest entry
	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2}, got.RawRowView(0))

	require.NoError(t, c.Put("c", m))
	assert.Equal(t, 2, c.Len())

	_, ok = c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestNewDiskCache_RejectsZeroEntries(t *testing.T) {
	_, err := NewDiskCache(t.TempDir(), 0)
	assert.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, Fingerprint("a", "b"), Fingerprint("a", "b"))
	assert.NotEqual(t, Fingerprint("a", "b"), Fingerprint("ab"))
	assert.Len(t, Fingerprint("x"), 64)
}

func TestExtractDirs_UsesCache(t *testing.T) {
	root := t.TempDir()
	group := filepath.Join(root, "PLCB")
	require.NoError(t, os.Mkdir(group, 0755))
	for _, name := range []string{"sub-02.nii.gz", "sub-01.nii", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(group, name), []byte(name), 0644))
	}

	cache, err := NewDiskCache(filepath.Join(root, "cache"), 8)
	require.NoError(t, err)

	opened := 0
	e := NewExtractor(calc.Init(2), testAtlas(t), "atlas")
	e.Cache = cache
	e.Metrics = metrics.New()
	e.Open = func(string) (Volume, error) {
		opened++
		return testImage(), nil
	}

	series, err := e.ExtractDirs(context.Background(), []string{group}, DefaultPattern)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, "PLCB/sub-01", series[0].Key())
	assert.Equal(t, "PLCB/sub-02", series[1].Key())
	assert.Equal(t, 2, opened)

	again, err := e.ExtractDirs(context.Background(), []string{group}, DefaultPattern)
	require.NoError(t, err)
	require.Len(t, again, 2)
	assert.Equal(t, 2, opened)
	assert.True(t, mat.Equal(series[0].Matrix, again[0].Matrix))
}

func TestExtractDirs_MissingDirectory(t *testing.T) {
	e := NewExtractor(calc.Init(1), testAtlas(t), "atlas")
	_, err := e.ExtractDirs(context.Background(), []string{filepath.Join(t.TempDir(), "nope")}, DefaultPattern)
	assert.Error(t, err)
}

func TestLoadLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.txt")
	require.NoError(t, os.WriteFile(path, []byte("1\t7Networks_LH_Vis_1\n\n2\t7Networks_LH_Default_1\n"), 0644))

	labels, err := LoadLabels(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"7Networks_LH_Vis_1", "7Networks_LH_Default_1"}, labels)
}

func TestExtractDirs_Cancelled(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub-01.nii"), nil, 0644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewExtractor(calc.Init(1), testAtlas(t), "atlas")
	e.Open = func(string) (Volume, error) { return testImage(), nil }
	_, err := e.ExtractDirs(ctx, []string{dir}, DefaultPattern)
	assert.ErrorIs(t, err, context.Canceled)
}
