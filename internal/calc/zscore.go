package calc

import (
	"gonum.org/v1/gonum/mat"
)

// ZScoring does z-scoring on each row with the population standard deviation.
// Constant rows become zero.
func (p *PipeLine) ZScoring(inputMat *mat.Dense, outputMat *mat.Dense) error {
	if err := checkSameDims("ZScoring", inputMat, outputMat); err != nil {
		return err
	}

	rows, _ := inputMat.Dims()

	p.Each(rows, func(index int) {
		in := inputMat.RawRowView(index)
		out := outputMat.RawRowView(index)
		s := getStat(in)

		for t, value := range in {
			if s.std == 0 {
				out[t] = 0
				continue
			}
			out[t] = (value - s.avg) / s.std
		}
	})

	return nil
}
