package calc

import (
	"gonum.org/v1/gonum/mat"
)

// Acc does accumulation: outputMat += inputMat
func (p *PipeLine) Acc(inputMat *mat.Dense, outputMat *mat.Dense) error {
	if err := checkSameDims("Acc", inputMat, outputMat); err != nil {
		return err
	}

	rows, _ := inputMat.Dims()

	p.Each(rows, func(index int) {
		in := inputMat.RawRowView(index)
		out := outputMat.RawRowView(index)

		for t, value := range in {
			out[t] += value
		}
	})

	return nil
}
