package anal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KyungWonPark/lsdgrad/internal/io"
)

var (
	// ErrLengthMismatch reports gradients or signals over different parcellations
	ErrLengthMismatch = errors.New("length mismatch")
	// ErrUnsupportedMetric reports an unknown similarity metric name
	ErrUnsupportedMetric = errors.New("unsupported metric")
	// ErrNoSubjects reports a group without any subject gradient
	ErrNoSubjects = errors.New("no subjects")
)

// Metric selects which similarity columns are computed
type Metric string

// Similarity metrics
const (
	Corr   Metric = "corr"
	Euclid Metric = "euclid"
	Both   Metric = "both"
)

// ParseMetric resolves a metric name
func ParseMetric(name string) (Metric, error) {
	switch m := Metric(strings.ToLower(strings.TrimSpace(name))); m {
	case Corr, Euclid, Both:
		return m, nil
	}

	return "", fmt.Errorf("%w: %q (supported: corr, euclid, both)", ErrUnsupportedMetric, name)
}

// Columns returns the table columns the metric produces
func (m Metric) Columns() []string {
	switch m {
	case Corr:
		return []string{"corr"}
	case Euclid:
		return []string{"euclid"}
	case Both:
		return []string{"corr", "euclid"}
	}

	return nil
}

// Similarity compares two gradient vectors
func Similarity(a, b []float64, m Metric) (map[string]float64, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(a), len(b))
	}

	res := make(map[string]float64, 2)
	for _, col := range m.Columns() {
		switch col {
		case "corr":
			res[col] = stat.Correlation(a, b, nil)
		case "euclid":
			res[col] = floats.Distance(a, b, 2)
		}
	}

	return res, nil
}

// ZScore standardises v with the population standard deviation
func ZScore(v []float64) []float64 {
	mean, std := stat.PopMeanStdDev(v, nil)

	z := make([]float64, len(v))
	for i, x := range v {
		z[i] = (x - mean) / std
	}

	return z
}

// Subject is one subject's z-scored gradient
type Subject struct {
	Name     string
	Gradient []float64
}

// Group is a named set of subjects, sorted by name
type Group struct {
	Name     string
	Subjects []Subject
}

// LoadGradient reads a gradient vector and z-scores it
func LoadGradient(path string) ([]float64, error) {
	v, err := io.LoadVector(path)
	if err != nil {
		return nil, err
	}

	return ZScore(v), nil
}

// LoadGroup reads every <subject>.npy gradient of dir; the group takes the directory name
func LoadGroup(dir string) (Group, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return Group{}, fmt.Errorf("gradient directory: %w", err)
	}
	if !info.IsDir() {
		return Group{}, fmt.Errorf("gradient directory: %s is not a directory", dir)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.npy"))
	if err != nil {
		return Group{}, err
	}
	sort.Strings(files)

	g := Group{Name: filepath.Base(filepath.Clean(dir))}
	for _, f := range files {
		v, err := LoadGradient(f)
		if err != nil {
			return Group{}, err
		}
		g.Subjects = append(g.Subjects, Subject{Name: strings.TrimSuffix(filepath.Base(f), ".npy"), Gradient: v})
	}

	if len(g.Subjects) == 0 {
		return Group{}, fmt.Errorf("%w: no .npy gradients found in %s", ErrNoSubjects, dir)
	}

	return g, nil
}

// SimilarityRow is one line of a similarity table
type SimilarityRow struct {
	Subject string
	Group   string
	GroupA  string
	GroupB  string
	Metrics map[string]float64
}

// CompareToReference scores every subject of every group against ref
func CompareToReference(groups []Group, ref []float64, m Metric) ([]SimilarityRow, error) {
	var rows []SimilarityRow

	for _, g := range groups {
		for _, s := range g.Subjects {
			if len(s.Gradient) != len(ref) {
				return nil, fmt.Errorf("%w: gradient length mismatch for %s: %d vs %d", ErrLengthMismatch, s.Name, len(s.Gradient), len(ref))
			}

			metrics, err := Similarity(s.Gradient, ref, m)
			if err != nil {
				return nil, err
			}
			rows = append(rows, SimilarityRow{Subject: s.Name, Group: g.Name, Metrics: metrics})
		}
	}

	return rows, nil
}

// ComparePairs scores the subjects two groups share, matched by name
func ComparePairs(a, b Group, m Metric) ([]SimilarityRow, error) {
	byName := make(map[string][]float64, len(b.Subjects))
	for _, s := range b.Subjects {
		byName[s.Name] = s.Gradient
	}

	var rows []SimilarityRow
	for _, s := range a.Subjects {
		other, ok := byName[s.Name]
		if !ok {
			continue
		}
		if len(s.Gradient) != len(other) {
			return nil, fmt.Errorf("%w: gradient length mismatch for %s: %d vs %d", ErrLengthMismatch, s.Name, len(s.Gradient), len(other))
		}

		metrics, err := Similarity(s.Gradient, other, m)
		if err != nil {
			return nil, err
		}
		rows = append(rows, SimilarityRow{Subject: s.Name, GroupA: a.Name, GroupB: b.Name, Metrics: metrics})
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no overlapping subject filenames between %s and %s", ErrNoSubjects, a.Name, b.Name)
	}

	return rows, nil
}

// SimilarityTable renders rows; paired tables carry groupA/groupB instead of group
func SimilarityTable(rows []SimilarityRow, m Metric, paired bool) ([]string, [][]string) {
	header := []string{"subject", "group"}
	if paired {
		header = []string{"subject", "groupA", "groupB"}
	}
	header = append(header, m.Columns()...)

	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		record := []string{r.Subject, r.Group}
		if paired {
			record = []string{r.Subject, r.GroupA, r.GroupB}
		}
		for _, col := range m.Columns() {
			record = append(record, io.FormatFloat(r.Metrics[col]))
		}
		records = append(records, record)
	}

	return header, records
}
