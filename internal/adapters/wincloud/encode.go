package wincloud

import (
	"encoding/xml"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"wincloud_hotel/internal/domain"
)

// responseTimestamp is UTC truncated to second precision, as the
// protocol stamps every RS document.
func responseTimestamp(now time.Time) string {
	return now.UTC().Truncate(time.Second).Format("2006-01-02T15:04:05Z")
}

// SuccessResponse renders the RS document carrying a bare <Success/>.
func SuccessResponse(ri RequestInfo, now time.Time) []byte {
	return marshalResponse(Response{
		XMLName:   xml.Name{Local: ri.ResponseRoot()},
		Xmlns:     Namespace,
		EchoToken: ri.EchoToken,
		TimeStamp: responseTimestamp(now),
		Version:   "1.0",
		Success:   &struct{}{},
	})
}

// FaultResponse renders the RS document carrying one Error element per
// fault, echoing the request token.
func FaultResponse(ri RequestInfo, now time.Time, faults ...*domain.Fault) []byte {
	errs := make([]ResponseError, 0, len(faults))
	for _, f := range faults {
		errs = append(errs, ResponseError{
			Type:      string(f.Kind),
			Code:      strconv.Itoa(f.Status),
			ShortText: string(f.Kind),
			Message:   f.Message,
		})
	}
	return marshalResponse(Response{
		XMLName:   xml.Name{Local: ri.ResponseRoot()},
		Xmlns:     Namespace,
		EchoToken: ri.EchoToken,
		TimeStamp: responseTimestamp(now),
		Version:   "1.0",
		Errors:    &ResponseErrors{Error: errs},
	})
}

func marshalResponse(rs Response) []byte {
	b, err := xml.Marshal(rs)
	if err != nil {
		// Marshaling a value type with no cycles cannot realistically
		// fail; log and return an empty document rather than panic.
		log.Error().Err(err).Str("root", rs.XMLName.Local).Msg("marshal sync response failed")
		return []byte(xml.Header)
	}
	return append([]byte(xml.Header), b...)
}
