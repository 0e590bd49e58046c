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

func TestRecorderCounts(t *testing.T) {
	r := New()
	r.JobFinished(StatusOK, 25)
	r.JobFinished(StatusOK, 5)
	r.JobFinished(StatusFailed, 99)
	r.ObserveStage("frames", 2*time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.jobsTotal.WithLabelValues(StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.jobsTotal.WithLabelValues(StatusFailed)))
	assert.Equal(t, 30.0, testutil.ToFloat64(r.framesTotal))
	assert.Greater(t, testutil.ToFloat64(r.lastSuccessful), 0.0)
	assert.Equal(t, 1, testutil.CollectAndCount(r.stageDuration))
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	r.JobFinished(StatusOK, 1)
	r.ObserveStage("clip", time.Second)
	assert.NoError(t, r.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.JobFinished(StatusOK, 3)

	path := filepath.Join(t.TempDir(), "videotoframe.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `videotoframe_jobs_total{status="ok"} 1`)
	assert.Contains(t, string(data), "videotoframe_frames_extracted_total 3")
}
