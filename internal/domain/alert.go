package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type ConditionKind string

const (
	ConditionPrice      ConditionKind = "Price"
	ConditionPercentage ConditionKind = "Percentage"
)

var ConditionKinds = []ConditionKind{ConditionPrice, ConditionPercentage}

type DeliveryMethod string

const (
	DeliveryEmail     DeliveryMethod = "Email"
	DeliverySMS       DeliveryMethod = "SMS"
	DeliveryPhoneCall DeliveryMethod = "Phone Call"
	DeliveryWhatsapp  DeliveryMethod = "Whatsapp"
	DeliverySlack     DeliveryMethod = "Slack"
	DeliveryDiscord   DeliveryMethod = "Discord"
)

var DeliveryMethods = []DeliveryMethod{
	DeliveryEmail,
	DeliverySMS,
	DeliveryPhoneCall,
	DeliveryWhatsapp,
	DeliverySlack,
	DeliveryDiscord,
}

func (k ConditionKind) Valid() bool {
	for _, known := range ConditionKinds {
		if k == known {
			return true
		}
	}
	return false
}

func (m DeliveryMethod) Valid() bool {
	for _, known := range DeliveryMethods {
		if m == known {
			return true
		}
	}
	return false
}

func ParseConditionKind(input string) (ConditionKind, error) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	for _, kind := range ConditionKinds {
		if strings.ToLower(string(kind)) == normalized {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown condition kind %q", input)
}

func ParseDeliveryMethod(input string) (DeliveryMethod, error) {
	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(input), " ", ""))
	for _, method := range DeliveryMethods {
		if strings.ToLower(strings.ReplaceAll(string(method), " ", "")) == normalized {
			return method, nil
		}
	}
	return "", fmt.Errorf("unknown delivery method %q", input)
}

// AlertRequest is a validated draft ready to be sent to the alert API.
type AlertRequest struct {
	SubmitterID SubmitterID
	AssetID     AssetID
	AssetName   string
	Kind        ConditionKind
	Threshold   decimal.Decimal
	Method      DeliveryMethod
}

// AlertReceipt is what the alert API answered for an accepted request.
type AlertReceipt struct {
	AlertID *int64
	Status  string
	Message string
}

// SubmittedAlert is the immutable snapshot shown after the API accepted a
// request.
type SubmittedAlert struct {
	SubmitterID SubmitterID
	AssetID     AssetID
	AssetName   string
	Kind        ConditionKind
	Threshold   decimal.Decimal
	Method      DeliveryMethod
}

func NewSubmittedAlert(request AlertRequest) SubmittedAlert {
	return SubmittedAlert{
		SubmitterID: request.SubmitterID,
		AssetID:     request.AssetID,
		AssetName:   request.AssetName,
		Kind:        request.Kind,
		Threshold:   request.Threshold,
		Method:      request.Method,
	}
}
