package gradient

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Project maps a region by time signal (P×T) onto a gradient basis (P×k), giving a k×T trajectory
func Project(signal mat.Matrix, basis mat.Matrix) (*mat.Dense, error) {
	signalRows, signalCols := signal.Dims()
	basisRows, basisCols := basis.Dims()

	if signalRows != basisRows {
		return nil, fmt.Errorf("%w: gradient basis is %d by %d but signal is %d by %d (regions must match)", ErrDimensionMismatch, basisRows, basisCols, signalRows, signalCols)
	}

	var traj mat.Dense
	traj.Mul(basis.T(), signal)

	return &traj, nil
}
