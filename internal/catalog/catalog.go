// Package catalog holds the list of assets a user can configure alerts for.
//
// A Catalog is owned by one workflow session and is not safe for concurrent
// use: refreshes are started with BeginRefresh and finished with
// CompleteRefresh from the same goroutine, while the fetch itself may run
// elsewhere.
package catalog

import (
	"errors"
	"fmt"

	"github.com/NasaVasa/coinalert/internal/domain"
	"go.uber.org/zap"
)

var (
	ErrRefreshInFlight = errors.New("catalog refresh already in progress")
	ErrDuplicateAsset  = errors.New("duplicate asset id")
)

type Catalog struct {
	assets  []domain.Asset
	index   map[domain.AssetID]int
	loading bool
	err     error
	logger  *zap.Logger
}

func New(logger *zap.Logger) *Catalog {
	return &Catalog{index: make(map[domain.AssetID]int), logger: logger}
}

// BeginRefresh marks a refresh as outstanding. It returns false when one is
// already running.
func (c *Catalog) BeginRefresh() bool {
	if c.loading {
		return false
	}
	c.loading = true
	return true
}

// CompleteRefresh finishes the outstanding refresh. On success the held list
// is swapped in one step; on failure the previous list stays and the error is
// recorded and returned.
func (c *Catalog) CompleteRefresh(assets []domain.Asset, fetchErr error) error {
	c.loading = false

	if fetchErr != nil {
		c.err = wrapRefresh(fetchErr)
		c.logger.Warn("catalog refresh failed", zap.Error(fetchErr), zap.Int("kept", len(c.assets)))
		return c.err
	}

	next := make([]domain.Asset, 0, len(assets))
	index := make(map[domain.AssetID]int, len(assets))
	for _, asset := range assets {
		if _, ok := index[asset.ID]; ok {
			c.err = wrapRefresh(fmt.Errorf("%w: %d", ErrDuplicateAsset, asset.ID))
			c.logger.Warn("catalog refresh rejected", zap.Int64("asset_id", int64(asset.ID)), zap.Error(c.err))
			return c.err
		}
		if held, ok := c.FindByID(asset.ID); ok && asset.UpdatedAt.Before(held.UpdatedAt) {
			c.logger.Warn(
				"stale asset snapshot ignored",
				zap.Int64("asset_id", int64(asset.ID)),
				zap.Time("held", held.UpdatedAt),
				zap.Time("received", asset.UpdatedAt),
			)
			asset = held
		}
		index[asset.ID] = len(next)
		next = append(next, asset)
	}

	c.assets = next
	c.index = index
	c.err = nil
	c.logger.Debug("catalog refreshed", zap.Int("count", len(next)))
	return nil
}

func (c *Catalog) List() []domain.Asset {
	out := make([]domain.Asset, len(c.assets))
	copy(out, c.assets)
	return out
}

func (c *Catalog) FindByID(id domain.AssetID) (domain.Asset, bool) {
	i, ok := c.index[id]
	if !ok {
		return domain.Asset{}, false
	}
	return c.assets[i], true
}

// Default is the asset a fresh draft starts with.
func (c *Catalog) Default() (domain.Asset, bool) {
	if len(c.assets) == 0 {
		return domain.Asset{}, false
	}
	return c.assets[0], true
}

func (c *Catalog) Loading() bool { return c.loading }

func (c *Catalog) Err() error { return c.err }

func wrapRefresh(err error) error {
	if errors.Is(err, domain.ErrRefreshFailure) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrRefreshFailure, err)
}
