package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/NasaVasa/coinalert/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleRequest() domain.AlertRequest {
	return domain.AlertRequest{
		SubmitterID: 1,
		AssetID:     1,
		AssetName:   "Bitcoin",
		Kind:        domain.ConditionPrice,
		Threshold:   decimal.NewFromInt(45000),
		Method:      domain.DeliveryEmail,
	}
}

func TestExecutorFetchCatalog(t *testing.T) {
	metrics := &recordingMetrics{}
	exec := NewExecutor(&fakeSource{assets: testAssets()}, &fakeGateway{}, metrics, zap.NewNop())

	action := exec.Run(context.Background(), FetchCatalog{})

	loaded, ok := action.(CatalogLoaded)
	require.True(t, ok)
	assert.Len(t, loaded.Assets, 3)
	assert.Equal(t, []string{"success"}, metrics.refreshes)
}

func TestExecutorFetchCatalogFailure(t *testing.T) {
	metrics := &recordingMetrics{}
	exec := NewExecutor(&fakeSource{err: errors.New("boom")}, &fakeGateway{}, metrics, zap.NewNop())

	action := exec.Run(context.Background(), FetchCatalog{})

	failed, ok := action.(CatalogFailed)
	require.True(t, ok)
	assert.EqualError(t, failed.Err, "boom")
	assert.Equal(t, []string{"failure"}, metrics.refreshes)
}

func TestExecutorCreateAlertAccepted(t *testing.T) {
	id := int64(17)
	gw := &fakeGateway{receipt: &domain.AlertReceipt{AlertID: &id, Status: "success"}}
	metrics := &recordingMetrics{}
	exec := NewExecutor(&fakeSource{}, gw, metrics, zap.NewNop())

	action := exec.Run(context.Background(), CreateAlert{Request: sampleRequest()})

	accepted, ok := action.(SubmissionAccepted)
	require.True(t, ok)
	assert.Equal(t, domain.NewSubmittedAlert(sampleRequest()), accepted.Alert)
	assert.Equal(t, []string{"accepted"}, metrics.submissions)
	assert.Len(t, gw.Requests(), 1)
}

func TestExecutorCreateAlertRejected(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		reason string
	}{
		{"network", fmt.Errorf("%w: refused", domain.ErrNetworkFailure), domain.ErrNetworkFailure, "network_failure"},
		{"service", fmt.Errorf("%w: status 500", domain.ErrServiceFailure), domain.ErrServiceFailure, "service_failure"},
		{"timeout", context.DeadlineExceeded, domain.ErrNetworkFailure, "network_failure"},
		{"other", errors.New("bad payload"), domain.ErrServiceFailure, "service_failure"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := &recordingMetrics{}
			exec := NewExecutor(&fakeSource{}, &fakeGateway{err: tt.err}, metrics, zap.NewNop())

			action := exec.Run(context.Background(), CreateAlert{Request: sampleRequest()})

			rejected, ok := action.(SubmissionRejected)
			require.True(t, ok)
			assert.ErrorIs(t, rejected.Err, tt.target)
			assert.Equal(t, []string{tt.reason}, metrics.submissions)
		})
	}
}

func TestValidationReason(t *testing.T) {
	reason, ok := ValidationReason(ErrMissingThreshold)
	assert.True(t, ok)
	assert.Equal(t, "missing_threshold", reason)

	_, ok = ValidationReason(ErrInvalidTransition)
	assert.False(t, ok)
}
