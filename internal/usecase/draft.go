package usecase

import (
	"errors"
	"strconv"
	"strings"

	"github.com/NasaVasa/coinalert/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrMissingThreshold      = errors.New("missing threshold")
	ErrThresholdNotNumeric   = errors.New("threshold is not numeric")
	ErrUnknownAsset          = errors.New("unknown asset")
	ErrUnknownConditionKind  = errors.New("unknown condition kind")
	ErrUnknownDeliveryMethod = errors.New("unknown delivery method")
)

// Draft is the alert configuration being edited. Threshold keeps the raw
// user input; it is parsed on every submission attempt.
type Draft struct {
	AssetID   domain.AssetID
	Kind      domain.ConditionKind
	Threshold string
	Method    domain.DeliveryMethod
}

func NewDraft(defaultAsset *domain.Asset) Draft {
	draft := Draft{
		Kind:   domain.ConditionPrice,
		Method: domain.DeliveryEmail,
	}
	if defaultAsset != nil {
		draft.AssetID = defaultAsset.ID
	}
	return draft
}

func (d Draft) Validate() error {
	_, err := ParseThreshold(d.Threshold)
	return err
}

// Values below this decimal magnitude are zero as a float64, which is what
// the alert API receives.
const minThresholdMagnitude = -400

// ParseThreshold accepts any finite decimal regardless of sign or magnitude.
// Values that overflow a float64 are rejected. The decimal exponent is never
// expanded, so inputs like 1e-2000000000 parse in constant time.
func ParseThreshold(input string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return decimal.Decimal{}, ErrMissingThreshold
	}
	value, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Decimal{}, ErrThresholdNotNumeric
	}
	if _, err := strconv.ParseFloat(trimmed, 64); err != nil {
		return decimal.Decimal{}, ErrThresholdNotNumeric
	}
	if value.IsZero() || int64(value.Exponent())+int64(value.NumDigits()) < minThresholdMagnitude {
		return decimal.Zero, nil
	}
	return value, nil
}

func (d Draft) request(submitter domain.SubmitterID, asset domain.Asset) (domain.AlertRequest, error) {
	threshold, err := ParseThreshold(d.Threshold)
	if err != nil {
		return domain.AlertRequest{}, err
	}
	return domain.AlertRequest{
		SubmitterID: submitter,
		AssetID:     asset.ID,
		AssetName:   asset.Name,
		Kind:        d.Kind,
		Threshold:   threshold,
		Method:      d.Method,
	}, nil
}
