package app

import (
	"sort"

	"wincloud_hotel/internal/domain"
)

const (
	noteCoveredByBase = "covered by base rate"
	noteChargedExtra  = "charged as additional guest"
)

// roomCharge is the per-room cost of one night under one rate record.
type roomCharge struct {
	baseRate           float64
	baseGuestsIncluded int
	adultCharges       float64
	childCharges       float64
	totalPerRoom       float64
	childBreakdown     []domain.ChildCharge
}

// calcRoomCharge prices one room for one night. Tier selection picks
// the cheapest tier still covering the whole party; a party larger than
// every tier uses the largest tier as base and pays the excess as
// additional guests. Adults absorb base capacity before children; this
// ordering is a pricing policy callers depend on, as is the rule that a
// missing tariff makes the extra guest free rather than failing.
func calcRoomCharge(rate domain.RateRecord, adults, children int) roomCharge {
	tiers := make([]domain.GuestTier, len(rate.BaseByGuestAmts))
	copy(tiers, rate.BaseByGuestAmts)
	sort.SliceStable(tiers, func(i, j int) bool { return tiers[i].NumberOfGuests < tiers[j].NumberOfGuests })

	totalGuests := adults + children

	// Smallest tier covering everyone, else the largest tier.
	tier := tiers[len(tiers)-1]
	for _, t := range tiers {
		if t.NumberOfGuests >= totalGuests {
			tier = t
			break
		}
	}

	rc := roomCharge{
		baseRate:           tier.AmountBeforeTax,
		baseGuestsIncluded: tier.NumberOfGuests,
	}

	extraAdults := 0
	chargedChildren := 0
	if totalGuests > rc.baseGuestsIncluded {
		if rc.baseGuestsIncluded >= adults {
			// All adults fit; only children beyond the remaining
			// capacity pay.
			chargedChildren = totalGuests - rc.baseGuestsIncluded
		} else {
			extraAdults = adults - rc.baseGuestsIncluded
			chargedChildren = children
		}
	}

	adultAmount := rate.SurchargeFor(domain.AgeCodeAdult)
	childAmount := rate.SurchargeFor(domain.AgeCodeChild)

	rc.adultCharges = float64(extraAdults) * adultAmount
	rc.childCharges = float64(chargedChildren) * childAmount

	if children > 0 {
		rc.childBreakdown = make([]domain.ChildCharge, 0, children)
		covered := children - chargedChildren
		for i := 1; i <= children; i++ {
			cc := domain.ChildCharge{ChildNumber: i, Note: noteCoveredByBase}
			if i > covered {
				cc.Charge = childAmount
				cc.Note = noteChargedExtra
			}
			rc.childBreakdown = append(rc.childBreakdown, cc)
		}
	}

	rc.totalPerRoom = rc.baseRate + rc.adultCharges + rc.childCharges
	return rc
}
