package calc

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// SymCheck checks symmetry within precision pre
func SymCheck(matrix mat.Matrix, pre float64) bool {
	rows, cols := matrix.Dims()
	if rows != cols {
		return false
	}

	pre = math.Abs(pre)
	isSymm := make([]bool, rows)

	Init(0).Each(rows, func(index int) {
		isSymm[index] = true
		for i := index; i < cols; i++ {
			if !(math.Abs(matrix.At(index, i)-matrix.At(i, index)) <= pre) {
				isSymm[index] = false
				break
			}
		}
	})

	symm := true
	for i := 0; i < rows; i++ {
		symm = symm && isSymm[i]
	}

	return symm
}
