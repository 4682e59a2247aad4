package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"wincloud_hotel/internal/adapters/observability"
	"wincloud_hotel/internal/domain"
)

// PricingService answers stay quotes and availability queries against
// the synced inventory/rate snapshot. Reads are cache-aside with keys
// scoped by the sync generation, so a feed write expires stale quotes.
type PricingService struct {
	repo         domain.SyncRepository
	cache        domain.Cache
	cacheTTL     time.Duration
	nightWorkers int
}

func NewPricingService(r domain.SyncRepository, c domain.Cache, ttl time.Duration, nightWorkers int) *PricingService {
	if nightWorkers <= 0 {
		nightWorkers = 4
	}
	return &PricingService{repo: r, cache: c, cacheTTL: ttl, nightWorkers: nightWorkers}
}

// Quote prices the stay night by night. Every night in
// [startDate, endDate) must resolve to the cheapest applicable rate
// record for this party, or the whole quote fails.
func (s *PricingService) Quote(ctx context.Context, req domain.StayRequest) (domain.PriceQuote, error) {
	start, end, err := validateStay(req)
	if err != nil {
		observability.ObservePricing("input_error")
		return domain.PriceQuote{}, err
	}

	key := s.quoteKey(ctx, req)
	if s.cache != nil && key != "" {
		var cached domain.PriceQuote
		if ok, _ := s.cache.Get(ctx, key, &cached); ok {
			observability.ObservePricing("cache_hit")
			return cached, nil
		}
	}

	data, ferr := s.repo.FetchPricingData(ctx, req.HotelCode, req.InvTypeCode, start, end)
	if ferr != nil {
		observability.ObservePricing("error")
		return domain.PriceQuote{}, fmt.Errorf("fetch pricing data: %w", ferr)
	}

	nights := nightCount(start, end)

	// Availability gate. Zero inventory rows means the room type is not
	// tracked; pricing proceeds on rates alone.
	minAvail, shortfall := gateAvailability(data.Inventory, start, nights, req.NoOfRooms)
	if shortfall != nil {
		observability.ObservePricing("unavailable")
		return domain.PriceQuote{}, shortfall
	}

	// Nights are independent; fan out, aggregate after all resolve.
	// Any single night failing short-circuits the whole quote.
	charges := make([]domain.NightCharge, nights)
	var g errgroup.Group
	g.SetLimit(s.nightWorkers)
	for i := 0; i < nights; i++ {
		i := i
		g.Go(func() error {
			night := start.AddDate(0, 0, i)
			nc, nerr := priceNight(data.Rates, night, req.NoOfAdults, req.NoOfChildren, req.NoOfRooms)
			if nerr != nil {
				return nerr
			}
			charges[i] = nc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		observability.ObservePricing("no_rate")
		return domain.PriceQuote{}, err
	}

	quote := assembleQuote(charges, nights, req.NoOfRooms, minAvail)
	if s.cache != nil && key != "" {
		if b, _ := json.Marshal(quote); len(b) < 1_000_000 {
			_ = s.cache.Set(ctx, key, quote, int(s.cacheTTL.Seconds()))
		}
	}
	observability.ObservePricing("success")
	return quote, nil
}

// Availability reports whether the requested rooms fit on every tracked
// night of the range.
func (s *PricingService) Availability(ctx context.Context, req domain.AvailabilityRequest) (domain.AvailabilityResult, error) {
	if req.HotelCode == "" || req.InvTypeCode == "" {
		return domain.AvailabilityResult{}, domain.InputError("hotelCode and invTypeCode are required")
	}
	if req.NoOfRooms < 1 {
		return domain.AvailabilityResult{}, domain.InputError("noOfRooms must be at least 1, got %d", req.NoOfRooms)
	}
	start, end, err := parseStayDates(req.StartDate, req.EndDate)
	if err != nil {
		return domain.AvailabilityResult{}, err
	}

	key := s.availabilityKey(ctx, req)
	if s.cache != nil && key != "" {
		var cached domain.AvailabilityResult
		if ok, _ := s.cache.Get(ctx, key, &cached); ok {
			return cached, nil
		}
	}

	rows, ferr := s.repo.FetchInventory(ctx, req.HotelCode, req.InvTypeCode, start, end)
	if ferr != nil {
		return domain.AvailabilityResult{}, fmt.Errorf("fetch inventory: %w", ferr)
	}

	res := domain.AvailabilityResult{DemandedRooms: req.NoOfRooms}
	switch {
	case len(rows) == 0:
		res.IsAvailable = true
		res.Message = fmt.Sprintf("availability is not tracked for room type %s at hotel %s", req.InvTypeCode, req.HotelCode)
	default:
		nights := nightCount(start, end)
		minAvail, shortfall := gateAvailability(rows, start, nights, req.NoOfRooms)
		res.TotalAvailableRooms = minAvail
		res.IsAvailable = shortfall == nil
		if shortfall != nil {
			res.Message = shortfall.Message
		}
	}

	if s.cache != nil && key != "" {
		_ = s.cache.Set(ctx, key, res, int(s.cacheTTL.Seconds()))
	}
	return res, nil
}

// ---- internals ----

func validateStay(req domain.StayRequest) (time.Time, time.Time, error) {
	if req.HotelCode == "" || req.InvTypeCode == "" {
		return time.Time{}, time.Time{}, domain.InputError("hotelCode and invTypeCode are required")
	}
	if req.NoOfAdults < 1 {
		return time.Time{}, time.Time{}, domain.InputError("noOfAdults must be at least 1, got %d", req.NoOfAdults)
	}
	if req.NoOfChildren < 0 {
		return time.Time{}, time.Time{}, domain.InputError("noOfChildren must not be negative, got %d", req.NoOfChildren)
	}
	if req.NoOfRooms < 1 {
		return time.Time{}, time.Time{}, domain.InputError("noOfRooms must be at least 1, got %d", req.NoOfRooms)
	}
	return parseStayDates(req.StartDate, req.EndDate)
}

func parseStayDates(startStr, endStr string) (time.Time, time.Time, error) {
	if startStr == "" || endStr == "" {
		return time.Time{}, time.Time{}, domain.InputError("startDate and endDate are required")
	}
	start, err := time.ParseInLocation(dateLayout, startStr, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, domain.InputError("startDate %q is not a valid YYYY-MM-DD date", startStr)
	}
	end, err := time.ParseInLocation(dateLayout, endStr, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, domain.InputError("endDate %q is not a valid YYYY-MM-DD date", endStr)
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, domain.InputError("startDate %s must be before endDate %s", startStr, endStr)
	}
	return start, end, nil
}

func nightCount(start, end time.Time) int {
	return int(end.Sub(start) / (24 * time.Hour))
}

// gateAvailability computes the minimum nightly count over the range.
// Only nights that have an inventory row participate; a range with no
// rows at all returns (nil, nil) meaning "not tracked". A tracked night
// with fewer rooms than requested fails the whole query.
func gateAvailability(rows []domain.InventoryRecord, start time.Time, nights, rooms int) (*int, *domain.QuoteError) {
	if len(rows) == 0 {
		return nil, nil
	}
	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.StartDate.Format(dateLayout)] = r.Count
	}

	var minAvail *int
	for i := 0; i < nights; i++ {
		night := start.AddDate(0, 0, i).Format(dateLayout)
		c, ok := counts[night]
		if !ok {
			continue
		}
		if minAvail == nil || c < *minAvail {
			v := c
			minAvail = &v
		}
	}
	if minAvail != nil && *minAvail < rooms {
		endStr := start.AddDate(0, 0, nights).Format(dateLayout)
		return minAvail, domain.BusinessError(
			"only %d room(s) available between %s and %s, %d requested",
			*minAvail, start.Format(dateLayout), endStr, rooms)
	}
	return minAvail, nil
}

// priceNight selects the applicable rate for one night: start date must
// equal the night exactly (end date is ignored for matching) and the
// night's weekday must not be explicitly excluded. Among applicable
// records the one yielding the lowest total for this party wins; ties
// keep the earlier record in fetch order.
func priceNight(rates []domain.RateRecord, night time.Time, adults, children, rooms int) (domain.NightCharge, error) {
	var bestRate *domain.RateRecord
	var best roomCharge
	for i := range rates {
		r := &rates[i]
		if !r.StartDate.Equal(night) {
			continue
		}
		if !r.Days.AppliesOn(night.Weekday()) {
			continue
		}
		rc := calcRoomCharge(*r, adults, children)
		if bestRate == nil || rc.totalPerRoom < best.totalPerRoom {
			bestRate, best = r, rc
		}
	}
	if bestRate == nil {
		return domain.NightCharge{}, domain.BusinessError("no rate found for %s", night.Format(dateLayout))
	}

	return domain.NightCharge{
		Date:              night.Format(dateLayout),
		DayOfWeek:         night.Weekday().String(),
		RatePlanCode:      bestRate.RatePlanCode,
		BaseRate:          best.baseRate,
		AdditionalCharges: best.adultCharges + best.childCharges,
		TotalPerRoom:      best.totalPerRoom,
		TotalForAllRooms:  best.totalPerRoom * float64(rooms),
		CurrencyCode:      bestRate.CurrencyCode,
		ChildrenCharges:   best.childBreakdown,
	}, nil
}

// assembleQuote folds the per-night charges into totals and averages.
// Amounts stay before tax; the feed carries no tax data, so tax is the
// consumer's concern.
func assembleQuote(charges []domain.NightCharge, nights, rooms int, minAvail *int) domain.PriceQuote {
	var totalBase, totalAdditional, total float64
	for _, c := range charges {
		totalBase += c.BaseRate * float64(rooms)
		totalAdditional += c.AdditionalCharges * float64(rooms)
		total += c.TotalForAllRooms
	}

	perNightRooms := float64(nights) * float64(rooms)
	q := domain.PriceQuote{
		TotalAmount:            total,
		NumberOfNights:         nights,
		BaseRatePerNight:       totalBase / perNightRooms,
		AdditionalGuestCharges: totalAdditional / perNightRooms,
		CurrencyCode:           charges[0].CurrencyCode,
		Breakdown: domain.QuoteBreakdown{
			TotalBaseAmount:        totalBase,
			TotalAdditionalCharges: totalAdditional,
			TotalAmount:            total,
			NumberOfNights:         nights,
			AveragePerNight:        total / float64(nights),
		},
		DailyBreakdown: charges,
		AvailableRooms: minAvail,
		RequestedRooms: rooms,
	}
	return q
}

// quoteKey builds the generation-scoped cache key for a stay request.
// The generation is created lazily; a missing cache yields "" and the
// read path skips caching.
func (s *PricingService) quoteKey(ctx context.Context, req domain.StayRequest) string {
	return s.readKey(ctx, "quote", req.HotelCode, req.InvTypeCode, req)
}

func (s *PricingService) availabilityKey(ctx context.Context, req domain.AvailabilityRequest) string {
	return s.readKey(ctx, "avail", req.HotelCode, req.InvTypeCode, req)
}

func (s *PricingService) readKey(ctx context.Context, prefix, hotelCode, invTypeCode string, req any) string {
	if s.cache == nil {
		return ""
	}
	genKey := GenerationKey(hotelCode, invTypeCode)
	var gen string
	if ok, _ := s.cache.Get(ctx, genKey, &gen); !ok || gen == "" {
		gen = uuid.NewString()
		if err := s.cache.Set(ctx, genKey, gen, 0); err != nil {
			return ""
		}
	}
	b, err := json.Marshal(req)
	if err != nil {
		return ""
	}
	sum := sha1.Sum(b)
	return fmt.Sprintf("%s:%s:%s", prefix, gen, hex.EncodeToString(sum[:]))
}
