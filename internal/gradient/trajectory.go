package gradient

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Dynamics summarises a trajectory in gradient space
type Dynamics struct {
	PerGradientStd    []float64 `json:"per_gradient_std"`
	MeanEuclideanStep float64   `json:"mean_euclidean_step"`
}

// ComponentStd returns the population standard deviation of every trajectory row over time
func ComponentStd(traj mat.Matrix) []float64 {
	k, _ := traj.Dims()

	std := make([]float64, k)
	for i := 0; i < k; i++ {
		std[i] = stat.PopStdDev(mat.Row(nil, i, traj), nil)
	}

	return std
}

// MeanStep returns the mean Euclidean distance between temporally adjacent trajectory columns
func MeanStep(traj mat.Matrix) (float64, error) {
	_, t := traj.Dims()
	if t < 2 {
		return 0, fmt.Errorf("%w: mean step needs at least 2 timepoints, have %d", ErrInsufficientData, t)
	}

	prev := mat.Col(nil, 0, traj)
	next := make([]float64, len(prev))

	var acc float64
	for j := 1; j < t; j++ {
		mat.Col(next, j, traj)
		acc += floats.Distance(prev, next, 2)
		prev, next = next, prev
	}

	return acc / float64(t-1), nil
}

// Summarize projects signal onto basis and computes its Dynamics
func Summarize(signal mat.Matrix, basis mat.Matrix) (Dynamics, error) {
	traj, err := Project(signal, basis)
	if err != nil {
		return Dynamics{}, err
	}

	step, err := MeanStep(traj)
	if err != nil {
		return Dynamics{}, err
	}

	return Dynamics{
		PerGradientStd:    ComponentStd(traj),
		MeanEuclideanStep: step,
	}, nil
}
