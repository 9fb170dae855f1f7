package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AssetID int64

// Asset is one market snapshot as served by the alert API. Snapshot fields
// are nil when the service has no value for them.
type Asset struct {
	ID           AssetID
	Name         string
	MarketCap    *decimal.Decimal
	Price        *decimal.Decimal
	HourlyChange *decimal.Decimal
	UpdatedAt    time.Time
}
