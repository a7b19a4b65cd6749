package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"queuesense/pkg/estimation"
	"queuesense/services/device-service/internal/evaluator"
)

func TestDisabledPublisherIsNoOp(t *testing.T) {
	t.Parallel()

	publisher, err := NewPublisher("", "device-1", "queuesense/estimate", zap.NewNop())
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		publisher.PublishEstimate(evaluator.Degraded(estimation.ErrCodeNoData, time.Unix(0, 0)))
		publisher.Close()
	})
}
