package app

import (
	"strconv"
	"time"

	"wincloud_hotel/internal/adapters/wincloud"
	"wincloud_hotel/internal/domain"
)

const dateLayout = "2006-01-02"

// parseFeedDates applies the shared ingestion rule: both dates must be
// valid calendar dates, neither may precede today (compared at
// start-of-day so time-of-day and timezone never flip the verdict), and
// start must not follow end.
func parseFeedDates(p domain.Protocol, startStr, endStr string, today time.Time) (time.Time, time.Time, *domain.Fault) {
	start, err := time.ParseInLocation(dateLayout, startStr, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, domain.ValidationFault(domain.FaultInvalidDate, p, "Start date %q is not a valid YYYY-MM-DD date", startStr)
	}
	end, err := time.ParseInLocation(dateLayout, endStr, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, domain.ValidationFault(domain.FaultInvalidDate, p, "End date %q is not a valid YYYY-MM-DD date", endStr)
	}
	if start.Before(today) {
		return time.Time{}, time.Time{}, domain.ValidationFault(domain.FaultPastDate, p, "Start date %s is in the past", startStr)
	}
	if end.Before(today) {
		return time.Time{}, time.Time{}, domain.ValidationFault(domain.FaultPastDate, p, "End date %s is in the past", endStr)
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, domain.ValidationFault(domain.FaultInvalidDateRange, p, "Start date %s is after end date %s", startStr, endStr)
	}
	return start, end, nil
}

// mapInventory turns a validated inventory message into normalized
// records. The codec already guaranteed structure and digit-only
// counts; this layer owns the date business rules.
func mapInventory(rq *wincloud.InvCountNotifRQ, today time.Time) ([]domain.InventoryRecord, *domain.Fault) {
	invs := rq.Inventories
	out := make([]domain.InventoryRecord, 0, len(invs.Inventory))
	for _, inv := range invs.Inventory {
		sac := inv.StatusApplicationControl
		start, end, f := parseFeedDates(domain.ProtocolInventory, sac.Start, sac.End, today)
		if f != nil {
			return nil, f
		}
		count, err := strconv.Atoi(inv.InvCounts.InvCount.Count)
		if err != nil {
			return nil, domain.StructuralFault(domain.FaultInvalidCount, domain.ProtocolInventory, "Count %q is not an integer", inv.InvCounts.InvCount.Count)
		}
		out = append(out, domain.InventoryRecord{
			HotelCode:   invs.HotelCode,
			HotelName:   invs.HotelName,
			InvTypeCode: sac.InvTypeCode,
			StartDate:   start,
			EndDate:     end,
			Count:       count,
		})
	}
	return out, nil
}

// mapRates turns a validated rate message into normalized records,
// enforcing the weekday rule: a rate that applies on no day of the week
// can never price anything and is rejected outright.
func mapRates(rq *wincloud.RateAmountNotifRQ, today time.Time) ([]domain.RateRecord, *domain.Fault) {
	msgs := rq.RateAmountMessages
	out := make([]domain.RateRecord, 0, len(msgs.RateAmountMessage))
	for _, msg := range msgs.RateAmountMessage {
		sac := msg.StatusApplicationControl
		start, end, f := parseFeedDates(domain.ProtocolRates, sac.Start, sac.End, today)
		if f != nil {
			return nil, f
		}
		rate := msg.Rates.Rate

		days := domain.DayFlags{
			Mon: parseDayFlag(rate.Mon),
			Tue: parseDayFlag(rate.Tue),
			Wed: parseDayFlag(rate.Weds),
			Thu: parseDayFlag(rate.Thur),
			Fri: parseDayFlag(rate.Fri),
			Sat: parseDayFlag(rate.Sat),
			Sun: parseDayFlag(rate.Sun),
		}
		if !days.AppliesAnyDay() {
			return nil, domain.ValidationFault(domain.FaultInvalidRateDays, domain.ProtocolRates,
				"Invalid Rate Days: rate %s/%s starting %s applies on no day of the week", sac.InvTypeCode, sac.RatePlanCode, sac.Start)
		}

		tiers := make([]domain.GuestTier, 0, len(rate.BaseByGuestAmts.BaseByGuestAmt))
		for _, t := range rate.BaseByGuestAmts.BaseByGuestAmt {
			guests, _ := strconv.Atoi(t.NumberOfGuests)
			amount, _ := strconv.ParseFloat(t.AmountBeforeTax, 64)
			tiers = append(tiers, domain.GuestTier{NumberOfGuests: guests, AmountBeforeTax: amount})
		}

		var surcharges []domain.GuestSurcharge
		if rate.AdditionalGuestAmounts != nil {
			for _, ag := range rate.AdditionalGuestAmounts.AdditionalGuestAmount {
				code, _ := strconv.Atoi(ag.AgeQualifyingCode)
				amount, _ := strconv.ParseFloat(ag.Amount, 64)
				surcharges = append(surcharges, domain.GuestSurcharge{AgeQualifyingCode: code, Amount: amount})
			}
		}

		out = append(out, domain.RateRecord{
			HotelCode:              msgs.HotelCode,
			HotelName:              msgs.HotelName,
			InvTypeCode:            sac.InvTypeCode,
			RatePlanCode:           sac.RatePlanCode,
			StartDate:              start,
			EndDate:                end,
			CurrencyCode:           rate.CurrencyCode,
			Days:                   days,
			BaseByGuestAmts:        tiers,
			AdditionalGuestAmounts: surcharges,
		})
	}
	return out, nil
}

// parseDayFlag maps a wire attribute to a tri-state flag: absent stays
// nil (applicable), "0"/"false" is an explicit exclusion, anything else
// counts as true.
func parseDayFlag(s string) *bool {
	if s == "" {
		return nil
	}
	v := true
	switch s {
	case "0", "false", "False", "FALSE":
		v = false
	}
	return &v
}
