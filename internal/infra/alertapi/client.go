package alertapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/NasaVasa/coinalert/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInvalidPayload marks a request the client refused to send. It is reported
// as a service failure.
var ErrInvalidPayload = errors.New("invalid alert payload")

// Client talks to the alert service. It implements domain.AssetSource and
// domain.AlertGateway and never retries a request.
type Client struct {
	baseURL  string
	client   *http.Client
	validate *validator.Validate
	logger   *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		validate: validator.New(),
		logger:   logger,
	}
}

func (c *Client) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	endpoint := c.baseURL + "/cryptocurrencies/"
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	response, err := c.do(request)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRefreshFailure, err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", domain.ErrRefreshFailure, response.StatusCode)
	}

	var payload []cryptocurrencyResponse
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode cryptocurrencies: %w", domain.ErrRefreshFailure, err)
	}

	assets := make([]domain.Asset, 0, len(payload))
	for _, item := range payload {
		assets = append(assets, domain.Asset{
			ID:           domain.AssetID(item.ID),
			Name:         item.Name,
			MarketCap:    item.MarketCap.Ptr(),
			Price:        item.HourlyPrice.Ptr(),
			HourlyChange: item.HourlyPercentage.Ptr(),
			UpdatedAt:    item.TimeUpdated.Time,
		})
	}
	return assets, nil
}

func (c *Client) CreateAlert(ctx context.Context, alert domain.AlertRequest) (*domain.AlertReceipt, error) {
	payload := newAlertPayload(alert)
	if err := c.validate.StructCtx(ctx, payload); err != nil {
		return nil, fmt.Errorf("%w: %w: %w", domain.ErrServiceFailure, ErrInvalidPayload, err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL + "/alerts/"
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.do(request)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrNetworkFailure, err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		c.logger.Warn(
			"alert api rejected alert",
			zap.Int("status", response.StatusCode),
			zap.ByteString("body", snippet),
		)
		return nil, fmt.Errorf("%w: status %d", domain.ErrServiceFailure, response.StatusCode)
	}

	var decoded alertResponse
	if err := json.NewDecoder(response.Body).Decode(&decoded); err != nil {
		c.logger.Warn("alert api response not decoded", zap.Error(err))
		return &domain.AlertReceipt{}, nil
	}
	return &domain.AlertReceipt{AlertID: decoded.AlertID, Status: decoded.Status, Message: decoded.Message}, nil
}

func (c *Client) do(request *http.Request) (*http.Response, error) {
	requestID := uuid.NewString()
	request.Header.Set("Accept", "application/json")
	request.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	c.logger.Info(
		"alert api request start",
		zap.String("method", request.Method),
		zap.String("url", request.URL.String()),
		zap.String("request_id", requestID),
	)
	response, err := c.client.Do(request)
	if err != nil {
		c.logger.Error(
			"alert api request failed",
			zap.String("method", request.Method),
			zap.String("url", request.URL.String()),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return nil, err
	}

	c.logger.Info(
		"alert api request complete",
		zap.String("method", request.Method),
		zap.String("url", request.URL.String()),
		zap.String("request_id", requestID),
		zap.Int("status", response.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)
	return response, nil
}

func newAlertPayload(alert domain.AlertRequest) alertPayload {
	threshold := alert.Threshold.InexactFloat64()
	payload := alertPayload{
		UserID:             int64(alert.SubmitterID),
		CryptoID:           int64(alert.AssetID),
		ThresholdPrice:     threshold,
		NotificationMethod: string(alert.Method),
	}
	if alert.Kind == domain.ConditionPercentage {
		payload.ThresholdPercentage = &threshold
	}
	return payload
}
