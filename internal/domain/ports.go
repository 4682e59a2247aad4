package domain

import (
	"context"
	"time"
)

// PricingData is the combined candidate set for a stay: every rate and
// inventory row for (hotel, room type) whose start date falls inside
// the requested range. One fetch per quote, no per-night lookups.
type PricingData struct {
	Rates     []RateRecord
	Inventory []InventoryRecord
}

// SyncRepository is the persistence port shared by the ingestion write
// path and the pricing read path. Upserts are keyed by the natural
// identity tuples and must be idempotent under redelivery; a batch
// either commits whole or not at all.
type SyncRepository interface {
	// Write paths
	UpsertInventory(ctx context.Context, recs []InventoryRecord) error
	UpsertRates(ctx context.Context, recs []RateRecord) error

	// Read paths. from is inclusive, to exclusive (the checkout day).
	FetchPricingData(ctx context.Context, hotelCode, invTypeCode string, from, to time.Time) (PricingData, error)
	FetchInventory(ctx context.Context, hotelCode, invTypeCode string, from, to time.Time) ([]InventoryRecord, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
