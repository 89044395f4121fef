package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordDelivery(t *testing.T) {
	const service = "metrics-test-delivery"

	RecordDelivery(service, nil)
	RecordDelivery(service, nil)
	RecordDelivery(service, errors.New("buffer full"))

	assert.InDelta(t, 2, testutil.ToFloat64(RelayDeliveriesTotal.WithLabelValues(service, StatusSuccess)), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(RelayDeliveriesTotal.WithLabelValues(service, StatusError)), 1e-9)
}

func TestRecordRegistry(t *testing.T) {
	const service = "metrics-test-registry"

	RecordRegistry(service, 2, 5)

	assert.InDelta(t, 2, testutil.ToFloat64(RelayShopsGauge.WithLabelValues(service)), 1e-9)
	assert.InDelta(t, 5, testutil.ToFloat64(WebSocketConnectionsGauge.WithLabelValues(service)), 1e-9)
}

func TestRecordCloseAndMessage(t *testing.T) {
	const service = "metrics-test-close"

	RecordClose(service, "unauthorized")
	RecordMessage(service, StatusDropped)
	RecordHTTPMetrics(service, "GET", "/health", 200, time.Millisecond)
	RecordAuth(service, nil, time.Millisecond)

	assert.InDelta(t, 1, testutil.ToFloat64(RelayClosedTotal.WithLabelValues(service, "unauthorized")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(RelayMessagesTotal.WithLabelValues(service, StatusDropped)), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(HttpRequestsTotal.WithLabelValues(service, "GET", "/health", "200")), 1e-9)
}
