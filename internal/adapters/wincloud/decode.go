package wincloud

import (
	"bytes"
	"encoding/xml"
	"regexp"
	"strings"

	"wincloud_hotel/internal/domain"
)

// countPattern is deliberately strict: "3" is a count, "3.0", " 3" and
// "-3" are not.
var countPattern = regexp.MustCompile(`^[0-9]+$`)

var numberPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// RequestInfo is the immutable per-request context captured by
// SniffRoot before full decoding. It travels with the request so a
// failure anywhere downstream can still echo the token back; the raw
// body is never re-parsed on the fault path.
type RequestInfo struct {
	Root      string
	EchoToken string
	Protocol  domain.Protocol
}

// ResponseRoot is the RS element name matching the request root.
func (ri RequestInfo) ResponseRoot() string {
	if strings.HasSuffix(ri.Root, "RQ") {
		return strings.TrimSuffix(ri.Root, "RQ") + "RS"
	}
	return "OTA_ErrorRS"
}

// SniffRoot scans for the document's root element and lifts out its
// name and EchoToken. It never fails: unparseable input yields an empty
// root and the sentinel token.
func SniffRoot(body []byte) RequestInfo {
	ri := RequestInfo{EchoToken: UnknownEchoToken}
	dec := xml.NewDecoder(bytes.NewReader(body))
	for {
		tok, err := dec.Token()
		if err != nil {
			return ri
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		ri.Root = se.Name.Local
		for _, a := range se.Attr {
			if a.Name.Local == "EchoToken" && a.Value != "" {
				ri.EchoToken = a.Value
			}
		}
		switch se.Name.Local {
		case RootInvCountNotif:
			ri.Protocol = domain.ProtocolInventory
		case RootRateAmountNotif:
			ri.Protocol = domain.ProtocolRates
		}
		return ri
	}
}

// DecodeInventory parses and structurally validates an inventory
// notification. Every missing required piece yields a distinct fault
// naming the field and where it was expected.
func DecodeInventory(body []byte) (*InvCountNotifRQ, *domain.Fault) {
	const p = domain.ProtocolInventory

	var rq InvCountNotifRQ
	if err := xml.Unmarshal(body, &rq); err != nil {
		return nil, domain.StructuralFault(domain.FaultMalformedXML, p, "cannot parse %s: %v", RootInvCountNotif, err)
	}
	if f := requireRootAttrs(p, RootInvCountNotif, rq.EchoToken, rq.TimeStamp, rq.Target, rq.Version); f != nil {
		return nil, f
	}
	if rq.POS == nil || rq.POS.Source == nil || rq.POS.Source.RequestorID == nil {
		return nil, domain.StructuralFault(domain.FaultMissingElement, p, "POS.Source.RequestorID is required")
	}
	if rq.Inventories == nil {
		return nil, domain.StructuralFault(domain.FaultMissingElement, p, "Inventories element is required")
	}
	if rq.Inventories.HotelCode == "" {
		return nil, domain.StructuralFault(domain.FaultMissingAttribute, p, "HotelCode attribute is required on Inventories")
	}
	if len(rq.Inventories.Inventory) == 0 {
		return nil, domain.StructuralFault(domain.FaultMissingElement, p, "at least one Inventory entry is required")
	}
	for i, inv := range rq.Inventories.Inventory {
		sac := inv.StatusApplicationControl
		if sac == nil {
			return nil, domain.StructuralFault(domain.FaultMissingElement, p, "StatusApplicationControl missing on Inventory entry %d", i+1)
		}
		if f := requireSACAttrs(p, "Inventory", i, sac, false); f != nil {
			return nil, f
		}
		if inv.InvCounts == nil || inv.InvCounts.InvCount == nil {
			return nil, domain.StructuralFault(domain.FaultMissingElement, p, "InvCounts.InvCount missing on Inventory entry %d (%s)", i+1, sac.InvTypeCode)
		}
		count := inv.InvCounts.InvCount.Count
		if count == "" {
			return nil, domain.StructuralFault(domain.FaultMissingAttribute, p, "Count attribute missing on InvCount for Inventory entry %d (%s)", i+1, sac.InvTypeCode)
		}
		if !countPattern.MatchString(count) {
			return nil, domain.StructuralFault(domain.FaultInvalidCount, p, "Count %q on Inventory entry %d (%s) is not a non-negative integer", count, i+1, sac.InvTypeCode)
		}
	}
	return &rq, nil
}

// DecodeRates parses and structurally validates a rate-amount
// notification.
func DecodeRates(body []byte) (*RateAmountNotifRQ, *domain.Fault) {
	const p = domain.ProtocolRates

	var rq RateAmountNotifRQ
	if err := xml.Unmarshal(body, &rq); err != nil {
		return nil, domain.StructuralFault(domain.FaultMalformedXML, p, "cannot parse %s: %v", RootRateAmountNotif, err)
	}
	if f := requireRootAttrs(p, RootRateAmountNotif, rq.EchoToken, rq.TimeStamp, rq.Target, rq.Version); f != nil {
		return nil, f
	}
	msgs := rq.RateAmountMessages
	if msgs == nil {
		return nil, domain.StructuralFault(domain.FaultMissingElement, p, "RateAmountMessages element is required")
	}
	if msgs.HotelCode == "" {
		return nil, domain.StructuralFault(domain.FaultMissingAttribute, p, "HotelCode attribute is required on RateAmountMessages")
	}
	if msgs.HotelName == "" {
		return nil, domain.StructuralFault(domain.FaultMissingAttribute, p, "HotelName attribute is required on RateAmountMessages")
	}
	if len(msgs.RateAmountMessage) == 0 {
		return nil, domain.StructuralFault(domain.FaultMissingElement, p, "at least one RateAmountMessage entry is required")
	}
	for i, msg := range msgs.RateAmountMessage {
		sac := msg.StatusApplicationControl
		if sac == nil {
			return nil, domain.StructuralFault(domain.FaultMissingElement, p, "StatusApplicationControl missing on RateAmountMessage entry %d", i+1)
		}
		if f := requireSACAttrs(p, "RateAmountMessage", i, sac, true); f != nil {
			return nil, f
		}
		if msg.Rates == nil || msg.Rates.Rate == nil {
			return nil, domain.StructuralFault(domain.FaultMissingElement, p, "Rates.Rate missing on RateAmountMessage entry %d (%s/%s)", i+1, sac.InvTypeCode, sac.RatePlanCode)
		}
		rate := msg.Rates.Rate
		if rate.CurrencyCode == "" {
			return nil, domain.StructuralFault(domain.FaultMissingAttribute, p, "CurrencyCode attribute missing on Rate for entry %d (%s/%s)", i+1, sac.InvTypeCode, sac.RatePlanCode)
		}
		if rate.BaseByGuestAmts == nil || len(rate.BaseByGuestAmts.BaseByGuestAmt) == 0 {
			return nil, domain.StructuralFault(domain.FaultMissingElement, p, "BaseByGuestAmts must carry at least one BaseByGuestAmt for entry %d (%s/%s)", i+1, sac.InvTypeCode, sac.RatePlanCode)
		}
		for j, tier := range rate.BaseByGuestAmts.BaseByGuestAmt {
			if tier.NumberOfGuests == "" || !countPattern.MatchString(tier.NumberOfGuests) {
				return nil, domain.StructuralFault(domain.FaultInvalidCount, p, "NumberOfGuests %q on BaseByGuestAmt %d of entry %d is not a positive integer", tier.NumberOfGuests, j+1, i+1)
			}
			if tier.AmountBeforeTax == "" || !numberPattern.MatchString(tier.AmountBeforeTax) {
				return nil, domain.StructuralFault(domain.FaultInvalidAmount, p, "AmountBeforeTax %q on BaseByGuestAmt %d of entry %d is not a number", tier.AmountBeforeTax, j+1, i+1)
			}
		}
		if rate.AdditionalGuestAmounts != nil {
			for j, ag := range rate.AdditionalGuestAmounts.AdditionalGuestAmount {
				if ag.AgeQualifyingCode == "" || !countPattern.MatchString(ag.AgeQualifyingCode) {
					return nil, domain.StructuralFault(domain.FaultInvalidCount, p, "AgeQualifyingCode %q on AdditionalGuestAmount %d of entry %d is not an integer code", ag.AgeQualifyingCode, j+1, i+1)
				}
				if ag.Amount == "" || !numberPattern.MatchString(ag.Amount) {
					return nil, domain.StructuralFault(domain.FaultInvalidAmount, p, "Amount %q on AdditionalGuestAmount %d of entry %d is not a number", ag.Amount, j+1, i+1)
				}
			}
		}
	}
	return &rq, nil
}

func requireRootAttrs(p domain.Protocol, root, echoToken, timeStamp, target, version string) *domain.Fault {
	for _, attr := range []struct{ name, val string }{
		{"EchoToken", echoToken},
		{"TimeStamp", timeStamp},
		{"Target", target},
		{"Version", version},
	} {
		if attr.val == "" {
			return domain.StructuralFault(domain.FaultMissingAttribute, p, "%s attribute is required on %s", attr.name, root)
		}
	}
	return nil
}

func requireSACAttrs(p domain.Protocol, entry string, idx int, sac *StatusApplicationControl, ratePlan bool) *domain.Fault {
	if sac.InvTypeCode == "" {
		return domain.StructuralFault(domain.FaultMissingAttribute, p, "InvTypeCode missing on StatusApplicationControl of %s entry %d", entry, idx+1)
	}
	if ratePlan && sac.RatePlanCode == "" {
		return domain.StructuralFault(domain.FaultMissingAttribute, p, "RatePlanCode missing on StatusApplicationControl of %s entry %d (%s)", entry, idx+1, sac.InvTypeCode)
	}
	if sac.Start == "" {
		return domain.StructuralFault(domain.FaultMissingAttribute, p, "Start missing on StatusApplicationControl of %s entry %d (%s)", entry, idx+1, sac.InvTypeCode)
	}
	if sac.End == "" {
		return domain.StructuralFault(domain.FaultMissingAttribute, p, "End missing on StatusApplicationControl of %s entry %d (%s)", entry, idx+1, sac.InvTypeCode)
	}
	return nil
}
