package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := New()

	r.Subject("align")
	r.Subject("align")
	r.Cache(true)
	r.Cache(false)
	r.Cache(false)
	r.ObserveStage("embed", time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(r.Subjects.WithLabelValues("align")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.CacheRequests.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.CacheRequests.WithLabelValues("miss")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.StageDuration))
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder

	assert.NotPanics(t, func() {
		r.Subject("x")
		r.Cache(true)
		r.ObserveStage("x", time.Now())
	})
	assert.NoError(t, r.WriteTextfile("ignored.prom"))
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.Subject("extract")
	path := filepath.Join(t.TempDir(), "lsdgrad.prom")

	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `lsdgrad_subjects_total{command="extract"} 1`)
}
