package domain

import (
	"context"
	"errors"
)

var (
	ErrRefreshFailure = errors.New("catalog refresh failed")
	ErrNetworkFailure = errors.New("alert service unreachable")
	ErrServiceFailure = errors.New("alert service error")
)

type AssetSource interface {
	ListAssets(ctx context.Context) ([]Asset, error)
}

type AlertGateway interface {
	CreateAlert(ctx context.Context, request AlertRequest) (*AlertReceipt, error)
}
