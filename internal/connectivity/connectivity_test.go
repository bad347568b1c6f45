package connectivity

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/KyungWonPark/lsdgrad/internal/calc"
)

func TestGlobalFC(t *testing.T) {
	fc := mat.NewDense(3, 3, []float64{
		1, 0.5, 1,
		0.5, 1, -0.5,
		1, -0.5, 1,
	})

	gfc, err := GlobalFC(fc)
	require.NoError(t, err)

	want := (math.Atanh(0.5) + math.Atanh(calc.FisherClip) + math.Atanh(-0.5)) / 3
	assert.InDelta(t, want, gfc, 1e-12)
}

func TestGlobalFC_SkipsNaN(t *testing.T) {
	fc := mat.NewDense(3, 3, []float64{
		1, 0.5, math.NaN(),
		0.5, 1, math.NaN(),
		math.NaN(), math.NaN(), 1,
	})

	gfc, err := GlobalFC(fc)
	require.NoError(t, err)
	assert.InDelta(t, math.Atanh(0.5), gfc, 1e-12)
}

func TestGlobalFC_NotSquare(t *testing.T) {
	_, err := GlobalFC(mat.NewDense(2, 3, nil))
	require.ErrorIs(t, err, ErrNotSquare)
}

func TestModularity_TwoModules(t *testing.T) {
	fc := mat.NewDense(4, 4, []float64{
		1, 0.8, -0.3, -0.2,
		0.8, 1, -0.1, -0.4,
		-0.3, -0.1, 1, 0.7,
		-0.2, -0.4, 0.7, 1,
	})

	q, clusters := Modularity(calc.Init(2), fc, 1)
	require.True(t, q.Valid)
	assert.InDelta(t, 1-(1.6*1.6+1.4*1.4)/9, q.Value, 1e-9)
	assert.Len(t, clusters, 2)
}

func TestModularity_DegradesWithoutPositiveEdges(t *testing.T) {
	fc := mat.NewDense(2, 2, []float64{1, -0.5, -0.5, 1})

	q, clusters := Modularity(calc.Init(1), fc, 1)
	assert.False(t, q.Valid)
	assert.NotEmpty(t, q.Reason)
	assert.Nil(t, clusters)
}

func TestSummarize_JSON(t *testing.T) {
	fc := mat.NewDense(2, 2, []float64{1, -0.5, -0.5, 1})

	s, err := Summarize(calc.Init(1), fc, "Schaefer100", 1)
	require.NoError(t, err)

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &record))
	assert.Equal(t, "Schaefer100", record["atlas"])
	assert.InDelta(t, math.Atanh(-0.5), record["gfc"], 1e-12)
	assert.Nil(t, record["modularity"])
	assert.Equal(t, 0.0, record["communities"])

	var back Summary
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.GFC.Valid)
	assert.False(t, back.Modularity.Valid)
}
