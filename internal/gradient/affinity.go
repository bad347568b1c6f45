package gradient

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/KyungWonPark/lsdgrad/internal/io"
)

// DefaultEpsilon keeps the normalisation of all-constant rows finite.
const DefaultEpsilon = 1e-8

// Affinity returns the cosine-like similarity between the connectivity profiles of fc:
// every row is centred on its mean, divided by its L2 norm plus eps, and the result
// is multiplied by its own transpose.
func Affinity(fc mat.Matrix, eps float64) (*mat.Dense, error) {
	rows, cols := fc.Dims()
	if rows != cols {
		return nil, fmt.Errorf("%w: connectivity matrix is %d by %d, want square", ErrDimensionMismatch, rows, cols)
	}

	x := mat.DenseCopyOf(fc)
	for i := 0; i < rows; i++ {
		row := x.RawRowView(i)
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: connectivity entry (%d, %d) is %g", io.ErrInputFormat, i, j, v)
			}
		}
		floats.AddConst(-stat.Mean(row, nil), row)
		floats.Scale(1/(floats.Norm(row, 2)+eps), row)
	}

	var aff mat.Dense
	aff.Mul(x, x.T())

	return &aff, nil
}
