package domain

// StayRequest describes a priced stay: who, where, and for which
// nights. EndDate is the checkout day and is never priced.
type StayRequest struct {
	HotelCode    string `json:"hotelCode"`
	InvTypeCode  string `json:"invTypeCode"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	NoOfAdults   int    `json:"noOfAdults"`
	NoOfChildren int    `json:"noOfChildren"`
	NoOfInfants  int    `json:"noOfInfants"` // informational, never charged
	NoOfRooms    int    `json:"noOfRooms"`
}

// AvailabilityRequest asks whether enough rooms exist over a range.
type AvailabilityRequest struct {
	HotelCode   string `json:"hotelCode"`
	InvTypeCode string `json:"invTypeCode"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	NoOfRooms   int    `json:"noOfRooms"`
}

// ChildCharge is the per-child slot entry of a night's breakdown.
type ChildCharge struct {
	ChildNumber int     `json:"childNumber"`
	Charge      float64 `json:"charge"`
	Note        string  `json:"note"`
}

// NightCharge is one night of the daily breakdown.
type NightCharge struct {
	Date              string        `json:"date"`
	DayOfWeek         string        `json:"dayOfWeek"`
	RatePlanCode      string        `json:"ratePlanCode"`
	BaseRate          float64       `json:"baseRate"`
	AdditionalCharges float64       `json:"additionalCharges"`
	TotalPerRoom      float64       `json:"totalPerRoom"`
	TotalForAllRooms  float64       `json:"totalForAllRooms"`
	CurrencyCode      string        `json:"currencyCode"`
	ChildrenCharges   []ChildCharge `json:"childrenChargesBreakdown"`
}

// QuoteBreakdown summarizes a quote's totals.
type QuoteBreakdown struct {
	TotalBaseAmount        float64 `json:"totalBaseAmount"`
	TotalAdditionalCharges float64 `json:"totalAdditionalCharges"`
	TotalAmount            float64 `json:"totalAmount"`
	NumberOfNights         int     `json:"numberOfNights"`
	AveragePerNight        float64 `json:"averagePerNight"`
}

// PriceQuote is the full answer to a stay request. Amounts are before
// tax, as carried by the feed; the currency code is propagated from the
// selected rates. AvailableRooms is nil when inventory is not tracked
// for the room type.
type PriceQuote struct {
	TotalAmount            float64        `json:"totalAmount"`
	NumberOfNights         int            `json:"numberOfNights"`
	BaseRatePerNight       float64        `json:"baseRatePerNight"`
	AdditionalGuestCharges float64        `json:"additionalGuestCharges"`
	CurrencyCode           string         `json:"currencyCode"`
	Breakdown              QuoteBreakdown `json:"breakdown"`
	DailyBreakdown         []NightCharge  `json:"dailyBreakdown"`
	AvailableRooms         *int           `json:"availableRooms,omitempty"`
	RequestedRooms         int            `json:"requestedRooms"`
}

// AvailabilityResult answers an AvailabilityRequest.
type AvailabilityResult struct {
	IsAvailable         bool   `json:"isAvailable"`
	TotalAvailableRooms *int   `json:"totalAvailableRooms,omitempty"`
	DemandedRooms       int    `json:"demandedRooms"`
	Message             string `json:"message,omitempty"`
}
