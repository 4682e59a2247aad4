package domain

import "time"

// InventoryRecord is one night of sellable rooms for a room type.
// Identity is (HotelCode, InvTypeCode, StartDate); the count is
// authoritative for that single night only. EndDate comes from the feed
// but is informational, it never participates in range matching.
type InventoryRecord struct {
	HotelCode   string
	HotelName   string
	InvTypeCode string
	StartDate   time.Time
	EndDate     time.Time
	Count       int
}
