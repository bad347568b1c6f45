package calc

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Pearson does Pearson's correlation between every pair of rows of a region by time matrix
func (p *PipeLine) Pearson(timeSeriesMat *mat.Dense, outputMat *mat.Dense) error {
	inputRows, inputCols := timeSeriesMat.Dims()
	outputRows, outputCols := outputMat.Dims()

	{ // Check input matrix and output matrix dimensions
		if outputRows != inputRows || outputCols != inputRows {
			return fmt.Errorf("%w: Pearson: input is %d by %d but output is %d by %d", ErrDimensionMismatch, inputRows, inputCols, outputRows, outputCols)
		}
	}

	stats := make([]statistic, inputRows)

	{ // Get statistics for each region timeseries
		p.Each(inputRows, func(index int) {
			stats[index] = getStat(timeSeriesMat.RawRowView(index))
		})
	}

	{ // Calculate Pearson's correlation
		p.Each(inputRows, func(from int) {
			x := timeSeriesMat.RawRowView(from)

			for to := from; to < inputRows; to++ {
				y := timeSeriesMat.RawRowView(to)

				var accProd float64
				for t := range x {
					accProd += x[t] * y[t]
				}

				cov := (accProd / float64(inputCols)) - (stats[from].avg * stats[to].avg)
				pearson := cov / (stats[from].std * stats[to].std)

				outputMat.Set(from, to, pearson)
				outputMat.Set(to, from, pearson)
			}
		})
	}

	return nil
}

// PearsonVector correlates each row of inputMat with vec
func (p *PipeLine) PearsonVector(inputMat *mat.Dense, vec []float64) ([]float64, error) {
	rows, cols := inputMat.Dims()
	if cols != len(vec) {
		return nil, fmt.Errorf("%w: PearsonVector: input is %d by %d but vector has %d elements", ErrDimensionMismatch, rows, cols, len(vec))
	}

	r := make([]float64, rows)

	p.Each(rows, func(index int) {
		r[index] = stat.Correlation(inputMat.RawRowView(index), vec, nil)
	})

	return r, nil
}
