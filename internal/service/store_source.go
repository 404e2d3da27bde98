package service

import (
	"context"
	"time"

	"github.com/guttosm/tickerlens/internal/domain/models"
	"github.com/guttosm/tickerlens/internal/normalize"
	"github.com/guttosm/tickerlens/internal/provider"
	"github.com/guttosm/tickerlens/internal/storage"
)

// storeSource serves history from the ingested price_bars table.
type storeSource struct {
	repo storage.PriceRepository
}

// NewStoreSource exposes repo as a history source.
func NewStoreSource(repo storage.PriceRepository) provider.SeriesSource {
	return storeSource{repo: repo}
}

func (storeSource) ID() normalize.ProviderID { return normalize.Store }

func (s storeSource) Series(ctx context.Context, symbol string, start time.Time) (models.PriceSeries, error) {
	return s.repo.GetPriceSeries(ctx, symbol, start)
}
