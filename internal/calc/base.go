package calc

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ErrDimensionMismatch reports input and output matrices of incompatible shapes
var ErrDimensionMismatch = errors.New("dimension mismatch")

// PipeLine represents a row-parallel compute pipeline
type PipeLine struct {
	numWorkers int
}

// Init returns a compute PipeLine; numWorkers < 1 means one worker per CPU
func Init(numWorkers int) *PipeLine {
	if numWorkers < 1 {
		numWorkers = runtime.NumCPU()
	}

	return &PipeLine{numWorkers: numWorkers}
}

// Workers returns the number of goroutines a kernel fans out to
func (p *PipeLine) Workers() int {
	return p.numWorkers
}

// Each runs work for every index in [0, n) across the pipeline workers and waits for all of them
func (p *PipeLine) Each(n int, work func(index int)) {
	order := make(chan int, p.numWorkers)
	var wg sync.WaitGroup

	wg.Add(n)

	for i := 0; i < p.numWorkers; i++ {
		go func() {
			for index := range order {
				work(index)
				wg.Done()
			}
		}()
	}

	for i := 0; i < n; i++ {
		order <- i
	}

	wg.Wait()
	close(order)
}

/*
	Workflow:

	Init -> kernel (ZScoring, Pearson, Threshold, ...) -> Each
*/

type statistic struct {
	avg float64
	std float64
}

func getStat(row []float64) statistic {
	avg, std := stat.PopMeanStdDev(row, nil)
	return statistic{avg: avg, std: std}
}

func checkSameDims(kernel string, inputMat mat.Matrix, outputMat mat.Matrix) error {
	inputRows, inputCols := inputMat.Dims()
	outputRows, outputCols := outputMat.Dims()

	if inputRows != outputRows || inputCols != outputCols {
		return fmt.Errorf("%w: %s: input dims: %d by %d when output dims: %d by %d", ErrDimensionMismatch, kernel, inputRows, inputCols, outputRows, outputCols)
	}

	return nil
}
