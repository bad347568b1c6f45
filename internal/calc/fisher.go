package calc

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// FisherClip bounds correlations before the Fisher transform so the unit diagonal stays finite
const FisherClip = 0.999999

// FisherZ does the Fisher r-to-z transform of every entry
func (p *PipeLine) FisherZ(inputMat *mat.Dense, outputMat *mat.Dense) error {
	if err := checkSameDims("FisherZ", inputMat, outputMat); err != nil {
		return err
	}

	rows, _ := inputMat.Dims()

	p.Each(rows, func(index int) {
		in := inputMat.RawRowView(index)
		out := outputMat.RawRowView(index)

		for t, value := range in {
			out[t] = math.Atanh(math.Max(-FisherClip, math.Min(FisherClip, value)))
		}
	})

	return nil
}

// InvFisherZ maps Fisher z values back to correlations
func (p *PipeLine) InvFisherZ(inputMat *mat.Dense, outputMat *mat.Dense) error {
	if err := checkSameDims("InvFisherZ", inputMat, outputMat); err != nil {
		return err
	}

	rows, _ := inputMat.Dims()

	p.Each(rows, func(index int) {
		in := inputMat.RawRowView(index)
		out := outputMat.RawRowView(index)

		for t, value := range in {
			out[t] = math.Tanh(value)
		}
	})

	return nil
}

// FisherMean averages correlation matrices in Fisher z space: tanh(mean(atanh(r_i)))
func (p *PipeLine) FisherMean(mats []*mat.Dense) (*mat.Dense, error) {
	if len(mats) == 0 {
		return nil, fmt.Errorf("FisherMean: no matrices to average")
	}

	rows, cols := mats[0].Dims()
	acc := mat.NewDense(rows, cols, nil)
	z := mat.NewDense(rows, cols, nil)

	for _, m := range mats {
		if err := p.FisherZ(m, z); err != nil {
			return nil, err
		}
		if err := p.Acc(z, acc); err != nil {
			return nil, err
		}
	}

	if err := p.Avg(acc, acc, float64(len(mats))); err != nil {
		return nil, err
	}
	if err := p.InvFisherZ(acc, acc); err != nil {
		return nil, err
	}

	return acc, nil
}
