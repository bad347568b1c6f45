package calc

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// Avg does averaging of an accumulated matrix over div samples
func (p *PipeLine) Avg(inputMat *mat.Dense, outputMat *mat.Dense, div float64) error {
	if err := checkSameDims("Avg", inputMat, outputMat); err != nil {
		return err
	}
	if div == 0 {
		return errors.New("Avg: cannot average over zero samples")
	}

	rows, _ := inputMat.Dims()

	p.Each(rows, func(index int) {
		in := inputMat.RawRowView(index)
		out := outputMat.RawRowView(index)

		for t, value := range in {
			out[t] = value / div
		}
	})

	return nil
}
