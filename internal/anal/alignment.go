package anal

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/KyungWonPark/lsdgrad/internal/calc"
	"github.com/KyungWonPark/lsdgrad/internal/io"
)

// Alignment is a subject's agreement with a reference gradient over time
type Alignment struct {
	Group       string
	Subject     string
	NTimepoints int
	MeanR       float64
	MeanZ       float64
	Series      []float64
}

// CorrelateTimepoints correlates every timepoint (row) of a T×P series with the gradient
func CorrelateTimepoints(pl *calc.PipeLine, ts *mat.Dense, gradient []float64) ([]float64, error) {
	rows, cols := ts.Dims()
	if cols != len(gradient) {
		return nil, fmt.Errorf("%w: gradient length %d but %d parcels", ErrLengthMismatch, len(gradient), cols)
	}

	z := mat.NewDense(rows, cols, nil)
	if err := pl.ZScoring(ts, z); err != nil {
		return nil, err
	}

	return pl.PearsonVector(z, ZScore(gradient))
}

// Align computes the alignment of one subject's T×P series with the gradient
func Align(pl *calc.PipeLine, group, subject string, ts *mat.Dense, gradient []float64) (Alignment, error) {
	series, err := CorrelateTimepoints(pl, ts, gradient)
	if err != nil {
		return Alignment{}, fmt.Errorf("%s/%s: %w", group, subject, err)
	}

	meanR := stat.Mean(series, nil)

	return Alignment{
		Group:       group,
		Subject:     subject,
		NTimepoints: len(series),
		MeanR:       meanR,
		MeanZ:       math.Atanh(meanR),
		Series:      series,
	}, nil
}

// AlignmentTable renders alignments as table rows
func AlignmentTable(alignments []Alignment) ([]string, [][]string) {
	header := []string{"group", "subject", "n_timepoints", "mean_r", "mean_z"}

	records := make([][]string, 0, len(alignments))
	for _, a := range alignments {
		records = append(records, []string{
			a.Group,
			a.Subject,
			fmt.Sprintf("%d", a.NTimepoints),
			io.FormatFloat(a.MeanR),
			io.FormatFloat(a.MeanZ),
		})
	}

	return header, records
}
