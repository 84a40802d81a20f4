package camunda

import (
	"errors"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	commonerrors "inventory-workers/internal/common/errors"
	"inventory-workers/internal/common/metrics"
)

func TestInstrument_CallsHandlerAndReleasesGauge(t *testing.T) {
	var seen int64
	handle := Instrument("test-task", func(_ worker.JobClient, job entities.Job) {
		seen = job.Key
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.WorkerJobsActive.WithLabelValues("test-task")))
	}, nil)

	handle(nil, entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 42}})

	assert.Equal(t, int64(42), seen)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.WorkerJobsActive.WithLabelValues("test-task")))
}

func TestIsRetryableZeebeError(t *testing.T) {
	tests := []struct {
		err  string
		want bool
	}{
		{"rpc error: code = Unavailable desc = connection refused", true},
		{"context deadline exceeded", true},
		{"NOT_FOUND: no such process", false},
		{"permission denied", false},
	}
	for _, tt := range tests {
		t.Run(tt.err, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableZeebeError(errors.New(tt.err)))
		})
	}
}

func TestMapZeebeError(t *testing.T) {
	err := mapZeebeError(errors.New("deadline exceeded"), "topology", 2)
	assert.True(t, commonerrors.IsCode(err, "TIMEOUT_ERROR"))
	assert.Contains(t, err.(*commonerrors.StandardError).Details, "after 3 attempts")

	err = mapZeebeError(errors.New("connection refused"), "topology", 0)
	assert.True(t, commonerrors.IsCode(err, "EXTERNAL_SERVICE_ERROR"))
}

func TestBackoff(t *testing.T) {
	rc := &RetryConfig{MaxRetries: 5, BaseDelay: time.Second, MaxDelay: 5 * time.Second}
	assert.Equal(t, time.Second, backoff(rc, 0))
	assert.Equal(t, 4*time.Second, backoff(rc, 2))
	assert.Equal(t, 5*time.Second, backoff(rc, 3))
}
