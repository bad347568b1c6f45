package gradient

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Method names a gradient embedding technique
type Method string

// PCA embeds by principal component analysis
const PCA Method = "pca"

// DefaultComponents is the number of gradients kept when none is requested
const DefaultComponents = 3

// Methods lists every supported embedding
var Methods = []Method{PCA}

// ParseMethod resolves a method name; unknown names are an error, never a fallback
func ParseMethod(name string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Methods {
		if m == known {
			return m, nil
		}
	}

	return "", fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedMethod, name, PCA)
}

// Embed reduces affinity to k gradients, returning a P×k matrix
func Embed(affinity mat.Matrix, k int, method Method) (*mat.Dense, error) {
	switch method {
	case PCA:
		return embedPCA(affinity, k)
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, method)
}

func embedPCA(affinity mat.Matrix, k int) (*mat.Dense, error) {
	n, d := affinity.Dims()
	if k < 1 || k > n || k > d {
		return nil, fmt.Errorf("%w: requested %d components from a %d by %d affinity matrix", ErrDimensionality, k, n, d)
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(affinity, nil); !ok {
		return nil, errors.New("gradient: principal component decomposition did not converge")
	}

	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	basis := mat.DenseCopyOf(vecs.Slice(0, d, 0, k))
	flipSigns(basis)

	centred := mat.DenseCopyOf(affinity)
	for j := 0; j < d; j++ {
		col := mat.Col(nil, j, centred)
		mean := stat.Mean(col, nil)
		for i := range col {
			centred.Set(i, j, col[i]-mean)
		}
	}

	var embedding mat.Dense
	embedding.Mul(centred, basis)

	return &embedding, nil
}

// flipSigns makes the largest magnitude loading of every component positive,
// so the sign of a gradient does not depend on the SVD implementation.
func flipSigns(basis *mat.Dense) {
	rows, cols := basis.Dims()

	for j := 0; j < cols; j++ {
		var pivot float64
		for i := 0; i < rows; i++ {
			if v := basis.At(i, j); math.Abs(v) > math.Abs(pivot) {
				pivot = v
			}
		}

		if pivot < 0 {
			for i := 0; i < rows; i++ {
				basis.Set(i, j, -basis.At(i, j))
			}
		}
	}
}
