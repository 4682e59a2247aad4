package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Protocol names the sync message family a fault belongs to.
type Protocol string

const (
	ProtocolUnknown   Protocol = ""
	ProtocolInventory Protocol = "inventory"
	ProtocolRates     Protocol = "rates"
)

// FaultKind is the machine-readable label rendered as the Error Type
// attribute of an XML fault response.
type FaultKind string

const (
	FaultUnsupportedRequest FaultKind = "UnsupportedRequest"
	FaultMalformedXML       FaultKind = "MalformedXML"
	FaultMissingAttribute   FaultKind = "MissingRequiredAttribute"
	FaultMissingElement     FaultKind = "MissingRequiredElement"
	FaultInvalidCount       FaultKind = "InvalidCount"
	FaultInvalidAmount      FaultKind = "InvalidAmount"
	FaultInvalidDate        FaultKind = "InvalidDate"
	FaultPastDate           FaultKind = "DateInPast"
	FaultInvalidDateRange   FaultKind = "InvalidDateRange"
	FaultInvalidRateDays    FaultKind = "InvalidRateDays"
	FaultProcessing         FaultKind = "ProcessingFailed"
)

// Fault is the single tagged error variant shared by both ingestion
// paths. Status is the HTTP status the sync endpoint responds with:
// structural faults carry 400, domain-validation faults on a
// well-formed message carry 200 (the fault travels in-band in the XML
// body), unexpected failures carry 500.
type Fault struct {
	Kind     FaultKind
	Message  string
	Status   int
	Protocol Protocol
}

func (f *Fault) Error() string { return string(f.Kind) + ": " + f.Message }

// StructuralFault is a schema defect: wrong root, missing attribute or
// element, non-numeric count.
func StructuralFault(kind FaultKind, p Protocol, format string, args ...any) *Fault {
	return &Fault{Kind: kind, Message: fmt.Sprintf(format, args...), Status: http.StatusBadRequest, Protocol: p}
}

// ValidationFault is a business-rule defect in an otherwise well-formed
// message; it is answered in-band with HTTP 200.
func ValidationFault(kind FaultKind, p Protocol, format string, args ...any) *Fault {
	return &Fault{Kind: kind, Message: fmt.Sprintf(format, args...), Status: http.StatusOK, Protocol: p}
}

// ProcessingFault wraps an unexpected error (storage, panic recovery).
func ProcessingFault(p Protocol, err error) *Fault {
	return &Fault{Kind: FaultProcessing, Message: err.Error(), Status: http.StatusInternalServerError, Protocol: p}
}

// QuoteErrorKind separates caller bugs from legitimate "try other
// dates" outcomes on the pricing surface.
type QuoteErrorKind int

const (
	// QuoteInput: bad party composition or date range; a client bug.
	QuoteInput QuoteErrorKind = iota
	// QuoteBusiness: no rate for a night, or not enough rooms.
	QuoteBusiness
)

// QuoteError is the error family of the pricing and availability
// queries. Both kinds render as {success:false, message} to callers.
type QuoteError struct {
	Kind    QuoteErrorKind
	Message string
}

func (e *QuoteError) Error() string { return e.Message }

func InputError(format string, args ...any) *QuoteError {
	return &QuoteError{Kind: QuoteInput, Message: fmt.Sprintf(format, args...)}
}

func BusinessError(format string, args ...any) *QuoteError {
	return &QuoteError{Kind: QuoteBusiness, Message: fmt.Sprintf(format, args...)}
}

// AsQuoteError extracts a *QuoteError from an error chain, or nil.
func AsQuoteError(err error) *QuoteError {
	var qe *QuoteError
	if errors.As(err, &qe) {
		return qe
	}
	return nil
}
