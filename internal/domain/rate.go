package domain

import "time"

// OTA age qualifying codes used by AdditionalGuestAmount tariffs.
const (
	AgeCodeAdult  = 10
	AgeCodeChild  = 8
	AgeCodeInfant = 7
)

// GuestTier is one base-by-guest price: the amount covers up to
// NumberOfGuests guests with no surcharge.
type GuestTier struct {
	NumberOfGuests  int     `json:"numberOfGuests"`
	AmountBeforeTax float64 `json:"amountBeforeTax"`
}

// GuestSurcharge is a per-extra-guest amount keyed by age category.
type GuestSurcharge struct {
	AgeQualifyingCode int     `json:"ageQualifyingCode"`
	Amount            float64 `json:"amount"`
}

// DayFlags holds the seven weekday applicability flags of a rate.
// A nil flag means the feed did not send it; per protocol that counts
// as applicable, only an explicit false excludes the day.
type DayFlags struct {
	Mon *bool `json:"mon,omitempty"`
	Tue *bool `json:"tue,omitempty"`
	Wed *bool `json:"wed,omitempty"`
	Thu *bool `json:"thu,omitempty"`
	Fri *bool `json:"fri,omitempty"`
	Sat *bool `json:"sat,omitempty"`
	Sun *bool `json:"sun,omitempty"`
}

func (d DayFlags) flag(w time.Weekday) *bool {
	switch w {
	case time.Monday:
		return d.Mon
	case time.Tuesday:
		return d.Tue
	case time.Wednesday:
		return d.Wed
	case time.Thursday:
		return d.Thu
	case time.Friday:
		return d.Fri
	case time.Saturday:
		return d.Sat
	default:
		return d.Sun
	}
}

// AppliesOn reports whether the rate may price a night falling on w.
func (d DayFlags) AppliesOn(w time.Weekday) bool {
	f := d.flag(w)
	return f == nil || *f
}

// AppliesAnyDay reports whether at least one weekday is applicable.
// A rate with all seven flags explicitly false can never price a night.
func (d DayFlags) AppliesAnyDay() bool {
	for w := time.Sunday; w <= time.Saturday; w++ {
		if d.AppliesOn(w) {
			return true
		}
	}
	return false
}

// RateRecord is one priced night for a room type under a rate plan.
// Identity is (HotelCode, InvTypeCode, RatePlanCode, StartDate); the
// pricing engine matches nights by exact StartDate equality, EndDate is
// stored but ignored for matching.
type RateRecord struct {
	HotelCode              string
	HotelName              string
	InvTypeCode            string
	RatePlanCode           string
	StartDate              time.Time
	EndDate                time.Time
	CurrencyCode           string
	Days                   DayFlags
	BaseByGuestAmts        []GuestTier
	AdditionalGuestAmounts []GuestSurcharge
}

// SurchargeFor returns the additional-guest amount for an age code, or
// zero when no such tariff exists. A missing tariff means the extra
// guest rides free; it is not an error.
func (r RateRecord) SurchargeFor(ageCode int) float64 {
	for _, s := range r.AdditionalGuestAmounts {
		if s.AgeQualifyingCode == ageCode {
			return s.Amount
		}
	}
	return 0
}
