package app_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wincloud_hotel/internal/app"
	"wincloud_hotel/internal/domain"
)

// ---- fakes ----

type fakeRepo struct {
	rates     []domain.RateRecord
	inventory []domain.InventoryRecord

	inventoryUpserts map[string]domain.InventoryRecord
	rateUpserts      map[string]domain.RateRecord
	upsertErr        error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		inventoryUpserts: map[string]domain.InventoryRecord{},
		rateUpserts:      map[string]domain.RateRecord{},
	}
}

func (f *fakeRepo) UpsertInventory(ctx context.Context, recs []domain.InventoryRecord) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	for _, r := range recs {
		f.inventoryUpserts[r.HotelCode+"|"+r.InvTypeCode+"|"+r.StartDate.Format("2006-01-02")] = r
	}
	return nil
}

func (f *fakeRepo) UpsertRates(ctx context.Context, recs []domain.RateRecord) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	for _, r := range recs {
		f.rateUpserts[r.HotelCode+"|"+r.InvTypeCode+"|"+r.RatePlanCode+"|"+r.StartDate.Format("2006-01-02")] = r
	}
	return nil
}

func (f *fakeRepo) FetchPricingData(ctx context.Context, hotelCode, invTypeCode string, from, to time.Time) (domain.PricingData, error) {
	return domain.PricingData{Rates: f.rates, Inventory: f.inventory}, nil
}

func (f *fakeRepo) FetchInventory(ctx context.Context, hotelCode, invTypeCode string, from, to time.Time) ([]domain.InventoryRecord, error) {
	return f.inventory, nil
}

type fakeCache struct {
	store   map[string][]byte
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: map[string][]byte{}}
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.deleted = append(c.deleted, key)
	delete(c.store, key)
	return nil
}

// ---- helpers ----

func date(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func nightlyRate(plan, start string, tiers []domain.GuestTier, surcharges ...domain.GuestSurcharge) domain.RateRecord {
	return domain.RateRecord{
		HotelCode:              "H1",
		InvTypeCode:            "DLX",
		RatePlanCode:           plan,
		StartDate:              date(start),
		EndDate:                date(start).AddDate(0, 0, 1),
		CurrencyCode:           "USD",
		BaseByGuestAmts:        tiers,
		AdditionalGuestAmounts: surcharges,
	}
}

func stay(start, end string, adults, children, rooms int) domain.StayRequest {
	return domain.StayRequest{
		HotelCode:   "H1",
		InvTypeCode: "DLX",
		StartDate:   start,
		EndDate:     end,
		NoOfAdults:  adults, NoOfChildren: children, NoOfRooms: rooms,
	}
}

func newPricing(repo *fakeRepo) *app.PricingService {
	return app.NewPricingService(repo, nil, time.Minute, 2)
}

// ---- tests ----

func TestQuote_EndToEnd(t *testing.T) {
	repo := newFakeRepo()
	tiers := []domain.GuestTier{{NumberOfGuests: 2, AmountBeforeTax: 100}}
	repo.rates = []domain.RateRecord{
		nightlyRate("BAR", "2025-06-01", tiers),
		nightlyRate("BAR", "2025-06-02", tiers),
	}

	q, err := newPricing(repo).Quote(context.Background(), stay("2025-06-01", "2025-06-03", 2, 0, 1))
	require.NoError(t, err)

	assert.Equal(t, 200.0, q.TotalAmount)
	assert.Equal(t, 2, q.NumberOfNights)
	require.Len(t, q.DailyBreakdown, 2)
	for _, n := range q.DailyBreakdown {
		assert.Equal(t, 100.0, n.TotalPerRoom)
	}
	assert.Equal(t, "USD", q.CurrencyCode)
	assert.Equal(t, 100.0, q.BaseRatePerNight)
	assert.Equal(t, 1, q.RequestedRooms)
	assert.Nil(t, q.AvailableRooms, "no inventory rows means not tracked")
}

func TestQuote_NightlyAdditivity(t *testing.T) {
	repo := newFakeRepo()
	repo.rates = []domain.RateRecord{
		nightlyRate("BAR", "2025-06-01", []domain.GuestTier{{NumberOfGuests: 2, AmountBeforeTax: 90}}),
		nightlyRate("BAR", "2025-06-02", []domain.GuestTier{{NumberOfGuests: 2, AmountBeforeTax: 110}}),
		nightlyRate("BAR", "2025-06-03", []domain.GuestTier{{NumberOfGuests: 2, AmountBeforeTax: 130}}),
	}

	q, err := newPricing(repo).Quote(context.Background(), stay("2025-06-01", "2025-06-04", 2, 0, 2))
	require.NoError(t, err)

	var sum float64
	for _, n := range q.DailyBreakdown {
		sum += n.TotalForAllRooms
	}
	assert.Equal(t, sum, q.TotalAmount)
	assert.Equal(t, 660.0, q.TotalAmount) // (90+110+130) * 2 rooms
}

func TestQuote_ExactStartDateMatchOnly(t *testing.T) {
	repo := newFakeRepo()
	// A rate whose range merely contains the night but starts earlier
	// must never be selected.
	spanning := nightlyRate("SPAN", "2025-06-01", []domain.GuestTier{{NumberOfGuests: 2, AmountBeforeTax: 50}})
	spanning.EndDate = date("2025-06-10")
	repo.rates = []domain.RateRecord{spanning}

	_, err := newPricing(repo).Quote(context.Background(), stay("2025-06-02", "2025-06-03", 2, 0, 1))
	require.Error(t, err)
	qe := domain.AsQuoteError(err)
	require.NotNil(t, qe)
	assert.Equal(t, domain.QuoteBusiness, qe.Kind)
	assert.Contains(t, qe.Message, "2025-06-02")
}

func TestQuote_DayOfWeekExclusion(t *testing.T) {
	repo := newFakeRepo()
	f := false
	// 2025-06-01 is a Sunday; the only rate for that night excludes Sundays.
	r := nightlyRate("BAR", "2025-06-01", []domain.GuestTier{{NumberOfGuests: 2, AmountBeforeTax: 100}})
	r.Days = domain.DayFlags{Sun: &f}
	repo.rates = []domain.RateRecord{r}

	_, err := newPricing(repo).Quote(context.Background(), stay("2025-06-01", "2025-06-02", 2, 0, 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no rate found for 2025-06-01")
}

func TestQuote_CheapestApplicableRateWins(t *testing.T) {
	repo := newFakeRepo()
	repo.rates = []domain.RateRecord{
		nightlyRate("EXPENSIVE", "2025-06-01", []domain.GuestTier{{NumberOfGuests: 2, AmountBeforeTax: 300}}),
		nightlyRate("CHEAP", "2025-06-01", []domain.GuestTier{{NumberOfGuests: 2, AmountBeforeTax: 120}}),
	}

	q, err := newPricing(repo).Quote(context.Background(), stay("2025-06-01", "2025-06-02", 2, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, "CHEAP", q.DailyBreakdown[0].RatePlanCode)
	assert.Equal(t, 120.0, q.TotalAmount)
}

func TestQuote_AvailabilityGate(t *testing.T) {
	repo := newFakeRepo()
	repo.rates = []domain.RateRecord{
		nightlyRate("BAR", "2025-06-01", []domain.GuestTier{{NumberOfGuests: 2, AmountBeforeTax: 100}}),
		nightlyRate("BAR", "2025-06-02", []domain.GuestTier{{NumberOfGuests: 2, AmountBeforeTax: 100}}),
	}
	repo.inventory = []domain.InventoryRecord{
		{HotelCode: "H1", InvTypeCode: "DLX", StartDate: date("2025-06-01"), Count: 5},
		{HotelCode: "H1", InvTypeCode: "DLX", StartDate: date("2025-06-02"), Count: 2},
	}

	// min over the range is 2; 3 rooms must fail without pricing
	_, err := newPricing(repo).Quote(context.Background(), stay("2025-06-01", "2025-06-03", 2, 0, 3))
	require.Error(t, err)
	qe := domain.AsQuoteError(err)
	require.NotNil(t, qe)
	assert.Equal(t, domain.QuoteBusiness, qe.Kind)
	assert.Contains(t, qe.Message, "only 2 room(s) available")
	assert.Contains(t, qe.Message, "2025-06-01")

	// 2 rooms fit; the quote carries the minimum
	q, err := newPricing(repo).Quote(context.Background(), stay("2025-06-01", "2025-06-03", 2, 0, 2))
	require.NoError(t, err)
	require.NotNil(t, q.AvailableRooms)
	assert.Equal(t, 2, *q.AvailableRooms)
}

func TestQuote_SoldOutNightStillExists(t *testing.T) {
	repo := newFakeRepo()
	repo.rates = []domain.RateRecord{
		nightlyRate("BAR", "2025-06-01", []domain.GuestTier{{NumberOfGuests: 2, AmountBeforeTax: 100}}),
	}
	repo.inventory = []domain.InventoryRecord{
		{HotelCode: "H1", InvTypeCode: "DLX", StartDate: date("2025-06-01"), Count: 0},
	}

	_, err := newPricing(repo).Quote(context.Background(), stay("2025-06-01", "2025-06-02", 2, 0, 1))
	require.Error(t, err, "a zero count is sold out, not untracked")
}

func TestQuote_InputValidation(t *testing.T) {
	svc := newPricing(newFakeRepo())
	cases := []struct {
		name string
		req  domain.StayRequest
	}{
		{"missing hotel", stay("2025-06-01", "2025-06-02", 2, 0, 1)},
		{"zero adults", stay("2025-06-01", "2025-06-02", 0, 0, 1)},
		{"negative children", stay("2025-06-01", "2025-06-02", 2, -1, 1)},
		{"zero rooms", stay("2025-06-01", "2025-06-02", 2, 0, 0)},
		{"start equals end", stay("2025-06-01", "2025-06-01", 2, 0, 1)},
		{"start after end", stay("2025-06-03", "2025-06-01", 2, 0, 1)},
		{"bad date", stay("June 1st", "2025-06-02", 2, 0, 1)},
	}
	cases[0].req.HotelCode = ""

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Quote(context.Background(), tc.req)
			require.Error(t, err)
			qe := domain.AsQuoteError(err)
			require.NotNil(t, qe)
			assert.Equal(t, domain.QuoteInput, qe.Kind)
		})
	}
}

func TestQuote_AdditionalGuestChargesFlowThrough(t *testing.T) {
	repo := newFakeRepo()
	repo.rates = []domain.RateRecord{
		nightlyRate("BAR", "2025-06-01",
			[]domain.GuestTier{{NumberOfGuests: 2, AmountBeforeTax: 100}},
			domain.GuestSurcharge{AgeQualifyingCode: domain.AgeCodeAdult, Amount: 30},
			domain.GuestSurcharge{AgeQualifyingCode: domain.AgeCodeChild, Amount: 15},
		),
	}

	// 3 adults + 1 child over a 2-guest base: 1 extra adult (30) and the
	// child (15) on top of 100.
	q, err := newPricing(repo).Quote(context.Background(), stay("2025-06-01", "2025-06-02", 3, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, 145.0, q.TotalAmount)
	n := q.DailyBreakdown[0]
	assert.Equal(t, 100.0, n.BaseRate)
	assert.Equal(t, 45.0, n.AdditionalCharges)
	require.Len(t, n.ChildrenCharges, 1)
	assert.Equal(t, 15.0, n.ChildrenCharges[0].Charge)
}

func TestQuote_CacheRoundTrip(t *testing.T) {
	repo := newFakeRepo()
	repo.rates = []domain.RateRecord{
		nightlyRate("BAR", "2025-06-01", []domain.GuestTier{{NumberOfGuests: 2, AmountBeforeTax: 100}}),
	}
	cache := newFakeCache()
	svc := app.NewPricingService(repo, cache, time.Minute, 2)
	req := stay("2025-06-01", "2025-06-02", 2, 0, 1)

	first, err := svc.Quote(context.Background(), req)
	require.NoError(t, err)

	// The repo no longer has the rate; a second identical request must be
	// served from cache.
	repo.rates = nil
	second, err := svc.Quote(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first.TotalAmount, second.TotalAmount)
}

func TestAvailability(t *testing.T) {
	repo := newFakeRepo()
	repo.inventory = []domain.InventoryRecord{
		{HotelCode: "H1", InvTypeCode: "DLX", StartDate: date("2025-06-01"), Count: 4},
		{HotelCode: "H1", InvTypeCode: "DLX", StartDate: date("2025-06-02"), Count: 1},
	}
	svc := newPricing(repo)

	req := domain.AvailabilityRequest{
		HotelCode: "H1", InvTypeCode: "DLX",
		StartDate: "2025-06-01", EndDate: "2025-06-03", NoOfRooms: 2,
	}
	res, err := svc.Availability(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, res.IsAvailable)
	require.NotNil(t, res.TotalAvailableRooms)
	assert.Equal(t, 1, *res.TotalAvailableRooms)
	assert.Equal(t, 2, res.DemandedRooms)
	assert.NotEmpty(t, res.Message)

	req.NoOfRooms = 1
	res, err = svc.Availability(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.IsAvailable)
}

func TestAvailability_Untracked(t *testing.T) {
	svc := newPricing(newFakeRepo())
	res, err := svc.Availability(context.Background(), domain.AvailabilityRequest{
		HotelCode: "H1", InvTypeCode: "DLX",
		StartDate: "2025-06-01", EndDate: "2025-06-02", NoOfRooms: 1,
	})
	require.NoError(t, err)
	assert.True(t, res.IsAvailable)
	assert.Nil(t, res.TotalAvailableRooms)
	assert.Contains(t, res.Message, "not tracked")
}
