// Package connectivity summarises a functional connectivity matrix.
package connectivity

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"github.com/KyungWonPark/lsdgrad/internal/calc"
	"github.com/KyungWonPark/lsdgrad/internal/cluster"
)

// ErrNotSquare reports a connectivity matrix that is not P×P
var ErrNotSquare = errors.New("connectivity matrix must be square")

// Estimate is a score that may be unavailable. It encodes as a JSON number, or null when not Valid.
type Estimate struct {
	Value  float64
	Valid  bool
	Reason string
}

// MarshalJSON implements json.Marshaler
func (e Estimate) MarshalJSON() ([]byte, error) {
	if !e.Valid {
		return []byte("null"), nil
	}

	return []byte(strconv.FormatFloat(e.Value, 'g', -1, 64)), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (e *Estimate) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*e = Estimate{}
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*e = Estimate{Value: v, Valid: true}

	return nil
}

func valid(v float64) Estimate {
	return Estimate{Value: v, Valid: true}
}

func invalid(reason string) Estimate {
	return Estimate{Value: math.NaN(), Reason: reason}
}

// Summary is the connectivity record written by the connectivity command
type Summary struct {
	Atlas       string   `json:"atlas"`
	GFC         Estimate `json:"gfc"`
	Modularity  Estimate `json:"modularity"`
	Communities int      `json:"communities"`
}

// GlobalFC returns the mean Fisher z of the strict upper triangle of fc, skipping NaN entries.
// The result is NaN when no finite entry exists.
func GlobalFC(fc mat.Matrix) (float64, error) {
	rows, cols := fc.Dims()
	if rows != cols {
		return math.NaN(), fmt.Errorf("%w: got %d by %d", ErrNotSquare, rows, cols)
	}

	var acc float64
	cnt := 0
	for i := 0; i < rows; i++ {
		for j := i + 1; j < cols; j++ {
			r := fc.At(i, j)
			if math.IsNaN(r) {
				continue
			}

			acc += math.Atanh(math.Max(-calc.FisherClip, math.Min(calc.FisherClip, r)))
			cnt++
		}
	}

	if cnt == 0 {
		return math.NaN(), nil
	}

	return acc / float64(cnt), nil
}

// Modularity partitions the positive part of fc with Louvain and scores the partition.
// Failure degrades to an invalid Estimate carrying the reason.
func Modularity(pl *calc.PipeLine, fc *mat.Dense, resolution float64) (Estimate, []cluster.Cluster) {
	rows, cols := fc.Dims()
	positive := mat.NewDense(rows, cols, nil)
	if err := pl.Threshold(fc, positive, 0, 0); err != nil {
		return invalid(err.Error()), nil
	}

	clusters, q, err := cluster.Louvain(positive, resolution)
	if err != nil {
		log.Warn().Err(err).Msg("modularity unavailable")
		return invalid(err.Error()), nil
	}

	return valid(q), clusters
}

// Summarize computes the connectivity record of fc
func Summarize(pl *calc.PipeLine, fc *mat.Dense, atlas string, resolution float64) (Summary, error) {
	gfc, err := GlobalFC(fc)
	if err != nil {
		return Summary{}, err
	}

	if !calc.SymCheck(fc, 1e-8) {
		log.Warn().Msg("connectivity matrix is not symmetric; using its upper triangle")
	}

	s := Summary{Atlas: atlas, GFC: valid(gfc)}
	if math.IsNaN(gfc) {
		s.GFC = invalid("no finite off-diagonal entries")
	}

	var clusters []cluster.Cluster
	s.Modularity, clusters = Modularity(pl, fc, resolution)
	s.Communities = len(clusters)

	return s, nil
}
