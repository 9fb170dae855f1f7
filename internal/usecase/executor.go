package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NasaVasa/coinalert/internal/domain"
	"go.uber.org/zap"
)

type Metrics interface {
	ObserveRefresh(outcome string, duration time.Duration)
	ObserveSubmission(outcome string, duration time.Duration)
	IncValidationFailure(reason string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveRefresh(string, time.Duration)    {}
func (noopMetrics) ObserveSubmission(string, time.Duration) {}
func (noopMetrics) IncValidationFailure(string)             {}

// Executor runs workflow effects against the alert API. It never retries.
type Executor struct {
	source  domain.AssetSource
	gateway domain.AlertGateway
	metrics Metrics
	logger  *zap.Logger
}

func NewExecutor(source domain.AssetSource, gateway domain.AlertGateway, metrics Metrics, logger *zap.Logger) *Executor {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Executor{source: source, gateway: gateway, metrics: metrics, logger: logger}
}

func (e *Executor) Run(ctx context.Context, effect Effect) Action {
	switch eff := effect.(type) {
	case FetchCatalog:
		return e.fetchCatalog(ctx)
	case CreateAlert:
		return e.createAlert(ctx, eff.Request)
	}
	e.logger.Warn("unknown effect", zap.String("effect", effect.effectName()))
	return nil
}

func (e *Executor) fetchCatalog(ctx context.Context) Action {
	start := time.Now()
	assets, err := e.source.ListAssets(ctx)
	if err != nil {
		e.metrics.ObserveRefresh("failure", time.Since(start))
		return CatalogFailed{Err: err}
	}
	e.metrics.ObserveRefresh("success", time.Since(start))
	return CatalogLoaded{Assets: assets}
}

func (e *Executor) createAlert(ctx context.Context, request domain.AlertRequest) Action {
	start := time.Now()
	receipt, err := e.gateway.CreateAlert(ctx, request)
	if err != nil {
		err = classifySubmissionError(err)
		e.metrics.ObserveSubmission(RejectionReason(err), time.Since(start))
		e.logger.Warn(
			"alert submission rejected",
			zap.Int64("user_id", int64(request.SubmitterID)),
			zap.Int64("crypto_id", int64(request.AssetID)),
			zap.Error(err),
		)
		return SubmissionRejected{Err: err}
	}

	e.metrics.ObserveSubmission("accepted", time.Since(start))
	fields := []zap.Field{
		zap.Int64("user_id", int64(request.SubmitterID)),
		zap.Int64("crypto_id", int64(request.AssetID)),
	}
	if receipt != nil && receipt.AlertID != nil {
		fields = append(fields, zap.Int64("alert_id", *receipt.AlertID))
	}
	e.logger.Info("alert submission accepted", fields...)
	return SubmissionAccepted{Alert: domain.NewSubmittedAlert(request)}
}

func classifySubmissionError(err error) error {
	switch {
	case errors.Is(err, domain.ErrNetworkFailure), errors.Is(err, domain.ErrServiceFailure):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %w", domain.ErrNetworkFailure, err)
	default:
		return fmt.Errorf("%w: %w", domain.ErrServiceFailure, err)
	}
}

// RejectionReason names a submission failure for logs and metrics.
func RejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrNetworkFailure):
		return "network_failure"
	case errors.Is(err, domain.ErrServiceFailure):
		return "service_failure"
	default:
		return "unknown"
	}
}

// ValidationReason names a local validation failure for metrics.
func ValidationReason(err error) (string, bool) {
	switch {
	case errors.Is(err, ErrMissingThreshold):
		return "missing_threshold", true
	case errors.Is(err, ErrThresholdNotNumeric):
		return "threshold_not_numeric", true
	case errors.Is(err, ErrUnknownAsset):
		return "unknown_asset", true
	}
	return "", false
}
