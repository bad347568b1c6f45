package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"github.com/KyungWonPark/lsdgrad/internal/calc"
	"github.com/KyungWonPark/lsdgrad/internal/metrics"
)

// DefaultPattern selects NIfTI files, compressed or not
const DefaultPattern = "*.nii*"

// Series is one subject's T×P parcel time series
type Series struct {
	Group   string
	Subject string
	Matrix  *mat.Dense
}

// Key returns the npz member name of the series
func (s Series) Key() string {
	return s.Group + "/" + s.Subject
}

// SplitKey is the inverse of Series.Key
func SplitKey(key string) (group, subject string) {
	if i := strings.Index(key, "/"); i >= 0 {
		return key[:i], key[i+1:]
	}

	return "", key
}

// Extractor averages fMRI volumes within the parcels of an atlas
type Extractor struct {
	Atlas       *Atlas
	AtlasKey    string
	Standardize bool
	Cache       Cache
	Metrics     *metrics.Recorder
	Open        func(path string) (Volume, error)

	pl *calc.PipeLine
}

// NewExtractor returns an Extractor without cache; atlasKey identifies the atlas in cache keys
func NewExtractor(pl *calc.PipeLine, atlas *Atlas, atlasKey string) *Extractor {
	return &Extractor{
		Atlas:    atlas,
		AtlasKey: atlasKey,
		Cache:    NopCache{},
		Open:     OpenVolume,
		pl:       pl,
	}
}

// Extract returns the T×P matrix of parcel means of v
func (e *Extractor) Extract(v Volume) (*mat.Dense, error) {
	d := v.Dims()
	if d[0] != e.Atlas.dims[0] || d[1] != e.Atlas.dims[1] || d[2] != e.Atlas.dims[2] {
		return nil, fmt.Errorf("%w: image is %dx%dx%d but atlas is %dx%dx%d", ErrGeometry, d[0], d[1], d[2], e.Atlas.dims[0], e.Atlas.dims[1], e.Atlas.dims[2])
	}

	timePoints := d[3]
	ts := mat.NewDense(timePoints, e.Atlas.Len(), nil)

	e.pl.Each(timePoints, func(t int) {
		row := ts.RawRowView(t)
		for p, parcel := range e.Atlas.parcels {
			var acc float64
			for _, vox := range parcel {
				acc += v.At(vox.x, vox.y, vox.z, t)
			}
			row[p] = acc / float64(len(parcel))
		}
	})

	if !e.Standardize {
		return ts, nil
	}

	byRegion := mat.DenseCopyOf(ts.T())
	if err := e.pl.ZScoring(byRegion, byRegion); err != nil {
		return nil, err
	}

	return mat.DenseCopyOf(byRegion.T()), nil
}

// ExtractFile extracts one image, consulting the cache first
func (e *Extractor) ExtractFile(path string) (*mat.Dense, error) {
	key, err := FileKey(path, e.AtlasKey, strconv.FormatBool(e.Standardize))
	if err != nil {
		return nil, err
	}

	if ts, ok := e.Cache.Get(key); ok {
		e.Metrics.Cache(true)
		log.Debug().Str("file", path).Msg("time series cache hit")
		return ts, nil
	}
	e.Metrics.Cache(false)

	v, err := e.Open(path)
	if err != nil {
		return nil, err
	}

	ts, err := e.Extract(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if err := e.Cache.Put(key, ts); err != nil {
		log.Warn().Err(err).Str("file", path).Msg("failed to cache time series")
	}

	return ts, nil
}

// SubjectName strips the NIfTI extensions from a file name
func SubjectName(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, ".gz")
	return strings.TrimSuffix(name, ".nii")
}

// ExtractDirs extracts every file matching pattern in each directory; the directory name is the group
func (e *Extractor) ExtractDirs(ctx context.Context, dirs []string, pattern string) ([]Series, error) {
	var out []Series

	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return nil, fmt.Errorf("input directory not found: %s", dir)
		}

		files, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		sort.Strings(files)

		group := filepath.Base(filepath.Clean(dir))
		for _, f := range files {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if info, err := os.Stat(f); err != nil || !info.Mode().IsRegular() {
				continue
			}

			ts, err := e.ExtractFile(f)
			if err != nil {
				return nil, err
			}

			out = append(out, Series{Group: group, Subject: SubjectName(f), Matrix: ts})
			e.Metrics.Subject("extract")
			log.Info().Str("group", group).Str("file", f).Int("timepoints", ts.RawMatrix().Rows).Msg("extracted")
		}
	}

	return out, nil
}
