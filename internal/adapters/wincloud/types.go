package wincloud

import "encoding/xml"

// Wire schema for the two supported OTA notification messages. Every
// attribute is decoded as a string and optional elements as pointers;
// nothing here is trusted until Decode* has validated it. Access at the
// point of use never reaches through an unchecked optional.

const (
	Namespace = "http://www.opentravel.org/OTA/2003/05"

	RootInvCountNotif   = "OTA_HotelInvCountNotifRQ"
	RootRateAmountNotif = "OTA_HotelRateAmountNotifRQ"

	// UnknownEchoToken is echoed when the request root was never
	// identified, so even garbage input gets a correlatable response.
	UnknownEchoToken = "MISSING_ECHO_TOKEN"
)

// ---- OTA_HotelInvCountNotifRQ ----

type InvCountNotifRQ struct {
	XMLName   xml.Name `xml:"OTA_HotelInvCountNotifRQ"`
	EchoToken string   `xml:"EchoToken,attr"`
	TimeStamp string   `xml:"TimeStamp,attr"`
	Target    string   `xml:"Target,attr"`
	Version   string   `xml:"Version,attr"`

	POS         *POS         `xml:"POS"`
	Inventories *Inventories `xml:"Inventories"`
}

type POS struct {
	Source *POSSource `xml:"Source"`
}

type POSSource struct {
	RequestorID *RequestorID `xml:"RequestorID"`
}

type RequestorID struct {
	ID   string `xml:"ID,attr"`
	Type string `xml:"Type,attr"`
}

type Inventories struct {
	HotelCode string      `xml:"HotelCode,attr"`
	HotelName string      `xml:"HotelName,attr"`
	Inventory []Inventory `xml:"Inventory"`
}

type Inventory struct {
	StatusApplicationControl *StatusApplicationControl `xml:"StatusApplicationControl"`
	InvCounts                *InvCounts                `xml:"InvCounts"`
}

type StatusApplicationControl struct {
	InvTypeCode  string `xml:"InvTypeCode,attr"`
	RatePlanCode string `xml:"RatePlanCode,attr"`
	Start        string `xml:"Start,attr"`
	End          string `xml:"End,attr"`
}

type InvCounts struct {
	InvCount *InvCount `xml:"InvCount"`
}

type InvCount struct {
	CountType string `xml:"CountType,attr"`
	Count     string `xml:"Count,attr"`
}

// ---- OTA_HotelRateAmountNotifRQ ----

type RateAmountNotifRQ struct {
	XMLName   xml.Name `xml:"OTA_HotelRateAmountNotifRQ"`
	EchoToken string   `xml:"EchoToken,attr"`
	TimeStamp string   `xml:"TimeStamp,attr"`
	Target    string   `xml:"Target,attr"`
	Version   string   `xml:"Version,attr"`

	POS                *POS                `xml:"POS"`
	RateAmountMessages *RateAmountMessages `xml:"RateAmountMessages"`
}

type RateAmountMessages struct {
	HotelCode         string              `xml:"HotelCode,attr"`
	HotelName         string              `xml:"HotelName,attr"`
	RateAmountMessage []RateAmountMessage `xml:"RateAmountMessage"`
}

type RateAmountMessage struct {
	StatusApplicationControl *StatusApplicationControl `xml:"StatusApplicationControl"`
	Rates                    *RateList                 `xml:"Rates"`
}

type RateList struct {
	Rate *Rate `xml:"Rate"`
}

type Rate struct {
	CurrencyCode string `xml:"CurrencyCode,attr"`
	Mon          string `xml:"Mon,attr"`
	Tue          string `xml:"Tue,attr"`
	Weds         string `xml:"Weds,attr"`
	Thur         string `xml:"Thur,attr"`
	Fri          string `xml:"Fri,attr"`
	Sat          string `xml:"Sat,attr"`
	Sun          string `xml:"Sun,attr"`

	BaseByGuestAmts        *BaseByGuestAmts        `xml:"BaseByGuestAmts"`
	AdditionalGuestAmounts *AdditionalGuestAmounts `xml:"AdditionalGuestAmounts"`
}

type BaseByGuestAmts struct {
	BaseByGuestAmt []BaseByGuestAmt `xml:"BaseByGuestAmt"`
}

type BaseByGuestAmt struct {
	NumberOfGuests    string `xml:"NumberOfGuests,attr"`
	AmountBeforeTax   string `xml:"AmountBeforeTax,attr"`
	AgeQualifyingCode string `xml:"AgeQualifyingCode,attr"`
}

type AdditionalGuestAmounts struct {
	AdditionalGuestAmount []AdditionalGuestAmount `xml:"AdditionalGuestAmount"`
}

type AdditionalGuestAmount struct {
	AgeQualifyingCode string `xml:"AgeQualifyingCode,attr"`
	Amount            string `xml:"Amount,attr"`
}

// ---- Responses ----

type ResponseErrors struct {
	Error []ResponseError `xml:"Error"`
}

type ResponseError struct {
	Type      string `xml:"Type,attr"`
	Code      string `xml:"Code,attr,omitempty"`
	ShortText string `xml:"ShortText,attr,omitempty"`
	Message   string `xml:",chardata"`
}

// Response is the RS document for either message type; the root name is
// filled in per request.
type Response struct {
	XMLName   xml.Name
	Xmlns     string          `xml:"xmlns,attr"`
	EchoToken string          `xml:"EchoToken,attr"`
	TimeStamp string          `xml:"TimeStamp,attr"`
	Version   string          `xml:"Version,attr"`
	Success   *struct{}       `xml:"Success"`
	Errors    *ResponseErrors `xml:"Errors"`
}
