package alertapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type cryptocurrencyResponse struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	MarketCap        NullableDecimal `json:"market_cap"`
	HourlyPrice      NullableDecimal `json:"hourly_price"`
	HourlyPercentage NullableDecimal `json:"hourly_percentage"`
	TimeUpdated      Timestamp       `json:"time_updated"`
}

type alertPayload struct {
	UserID              int64    `json:"user_id" validate:"required"`
	CryptoID            int64    `json:"crypto_id" validate:"required"`
	ThresholdPrice      float64  `json:"threshold_price"`
	ThresholdPercentage *float64 `json:"threshold_percentage,omitempty"`
	NotificationMethod  string   `json:"notification_method" validate:"required,oneof=Email SMS 'Phone Call' Whatsapp Slack Discord"`
}

type alertResponse struct {
	Status  string `json:"status"`
	AlertID *int64 `json:"alert_id"`
	Message string `json:"message"`
}

type NullableDecimal struct {
	Decimal decimal.Decimal
	Valid   bool
}

func (n *NullableDecimal) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		n.Valid = false
		return nil
	}
	trimmed := strings.TrimSpace(string(data))
	if len(trimmed) == 0 {
		n.Valid = false
		return nil
	}
	if trimmed[0] == '"' && trimmed[len(trimmed)-1] == '"' {
		trimmed = strings.Trim(trimmed, "\"")
	}
	dec, err := decimal.NewFromString(trimmed)
	if err != nil {
		n.Valid = false
		return err
	}
	n.Decimal = dec
	n.Valid = true
	return nil
}

func (n NullableDecimal) Ptr() *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	value := n.Decimal
	return &value
}

// Timestamp accepts RFC 3339 and the zone-less ISO 8601 form the alert API
// emits. Zone-less values are taken as UTC.
type Timestamp struct {
	Time time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unexpected timestamp format: %s", raw)
}
