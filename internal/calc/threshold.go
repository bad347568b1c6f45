package calc

import (
	"gonum.org/v1/gonum/mat"
)

// Threshold does thresholding: every value <= thr is replaced by sub
func (p *PipeLine) Threshold(inputMat *mat.Dense, outputMat *mat.Dense, thr float64, sub float64) error {
	if err := checkSameDims("Threshold", inputMat, outputMat); err != nil {
		return err
	}

	rows, _ := inputMat.Dims()

	p.Each(rows, func(index int) {
		in := inputMat.RawRowView(index)
		out := outputMat.RawRowView(index)

		for t, value := range in {
			if thr >= value {
				value = sub
			}

			out[t] = value
		}
	})

	return nil
}
