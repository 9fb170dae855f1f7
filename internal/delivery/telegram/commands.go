package telegram

import (
	"errors"
	"strconv"
	"strings"

	"github.com/NasaVasa/coinalert/internal/domain"
	"github.com/NasaVasa/coinalert/internal/usecase"
)

const HelpText = `Commands:
/start - configure a new alert
/cancel - discard the alert being configured
/help - show this help

Pick a cryptocurrency, a condition and a notification method with the buttons,
then send the threshold as a plain number, for example 65000 or 2.5.
Press Submit when you are done.`

const (
	callbackRefresh = "refresh"
	callbackSubmit  = "submit"
	callbackModify  = "modify"
	callbackDone    = "done"

	prefixAsset  = "asset:"
	prefixKind   = "kind:"
	prefixMethod = "method:"
)

var ErrInvalidCallback = errors.New("invalid callback data")

// ParseCallback turns inline keyboard callback data into a workflow action.
func ParseCallback(data string) (usecase.Action, error) {
	data = strings.TrimSpace(data)
	switch data {
	case callbackRefresh:
		return usecase.RefreshRequested{}, nil
	case callbackSubmit:
		return usecase.SubmitRequested{}, nil
	case callbackModify:
		return usecase.ModifyRequested{}, nil
	case callbackDone:
		return usecase.Acknowledged{}, nil
	}

	switch {
	case strings.HasPrefix(data, prefixAsset):
		value, err := strconv.ParseInt(strings.TrimPrefix(data, prefixAsset), 10, 64)
		if err != nil {
			return nil, ErrInvalidCallback
		}
		return usecase.AssetSelected{ID: domain.AssetID(value)}, nil
	case strings.HasPrefix(data, prefixKind):
		kind, err := domain.ParseConditionKind(strings.TrimPrefix(data, prefixKind))
		if err != nil {
			return nil, ErrInvalidCallback
		}
		return usecase.ConditionSelected{Kind: kind}, nil
	case strings.HasPrefix(data, prefixMethod):
		method, err := domain.ParseDeliveryMethod(strings.TrimPrefix(data, prefixMethod))
		if err != nil {
			return nil, ErrInvalidCallback
		}
		return usecase.DeliverySelected{Method: method}, nil
	}
	return nil, ErrInvalidCallback
}

func assetCallback(id domain.AssetID) string {
	return prefixAsset + strconv.FormatInt(int64(id), 10)
}

func kindCallback(kind domain.ConditionKind) string {
	return prefixKind + string(kind)
}

func methodCallback(method domain.DeliveryMethod) string {
	return prefixMethod + string(method)
}
