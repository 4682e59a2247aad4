package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"wincloud_hotel/internal/adapters/observability"
	"wincloud_hotel/internal/adapters/wincloud"
	"wincloud_hotel/internal/domain"
)

// SyncService is the dispatcher for the channel-manager feed: it sniffs
// the root element, routes to the inventory or rate path, and always
// answers with a protocol-conformant RS document carrying the request's
// echo token.
type SyncService struct {
	repo  domain.SyncRepository
	cache domain.Cache
	now   func() time.Time
}

func NewSyncService(r domain.SyncRepository, cache domain.Cache) *SyncService {
	return &SyncService{repo: r, cache: cache, now: time.Now}
}

// SyncResult is the rendered response plus the HTTP status to send it
// with.
type SyncResult struct {
	Body   []byte
	Status int
}

// Process runs one feed request end to end. It never returns an error:
// every failure mode becomes a fault response. The echo token captured
// by SniffRoot travels in ri, so a failure at any later stage still
// echoes it without re-parsing the body.
func (s *SyncService) Process(ctx context.Context, body []byte) SyncResult {
	ri := wincloud.SniffRoot(body)

	log.Info().
		Str("batch", uuid.NewString()).
		Str("root", ri.Root).
		Str("echo_token", ri.EchoToken).
		Int("bytes", len(body)).
		Msg("sync request received")

	switch ri.Protocol {
	case domain.ProtocolInventory:
		return s.processInventory(ctx, ri, body)
	case domain.ProtocolRates:
		return s.processRates(ctx, ri, body)
	default:
		f := domain.StructuralFault(domain.FaultUnsupportedRequest, domain.ProtocolUnknown,
			"unsupported request root %q", ri.Root)
		return s.fault(ri, f)
	}
}

func (s *SyncService) processInventory(ctx context.Context, ri wincloud.RequestInfo, body []byte) SyncResult {
	rq, f := wincloud.DecodeInventory(body)
	if f != nil {
		return s.fault(ri, f)
	}
	recs, f := mapInventory(rq, s.today())
	if f != nil {
		return s.fault(ri, f)
	}
	if err := s.repo.UpsertInventory(ctx, recs); err != nil {
		return s.fault(ri, domain.ProcessingFault(domain.ProtocolInventory, err))
	}
	s.invalidateGenerations(ctx, inventoryKeys(recs))

	log.Info().
		Str("hotel", rq.Inventories.HotelCode).
		Int("entries", len(recs)).
		Msg("inventory batch upserted")
	observability.ObserveSync(string(domain.ProtocolInventory), "success")
	return SyncResult{Body: wincloud.SuccessResponse(ri, s.now()), Status: http.StatusOK}
}

func (s *SyncService) processRates(ctx context.Context, ri wincloud.RequestInfo, body []byte) SyncResult {
	rq, f := wincloud.DecodeRates(body)
	if f != nil {
		return s.fault(ri, f)
	}
	recs, f := mapRates(rq, s.today())
	if f != nil {
		return s.fault(ri, f)
	}
	if err := s.repo.UpsertRates(ctx, recs); err != nil {
		return s.fault(ri, domain.ProcessingFault(domain.ProtocolRates, err))
	}
	s.invalidateGenerations(ctx, rateKeys(recs))

	log.Info().
		Str("hotel", rq.RateAmountMessages.HotelCode).
		Int("entries", len(recs)).
		Msg("rate batch upserted")
	observability.ObserveSync(string(domain.ProtocolRates), "success")
	return SyncResult{Body: wincloud.SuccessResponse(ri, s.now()), Status: http.StatusOK}
}

func (s *SyncService) fault(ri wincloud.RequestInfo, f *domain.Fault) SyncResult {
	log.Warn().
		Str("root", ri.Root).
		Str("echo_token", ri.EchoToken).
		Str("kind", string(f.Kind)).
		Int("status", f.Status).
		Msg(f.Message)
	observability.ObserveSync(string(f.Protocol), string(f.Kind))
	return SyncResult{Body: wincloud.FaultResponse(ri, s.now(), f), Status: f.Status}
}

// today is start-of-day UTC; the past-date rule compares against this,
// never against current time-of-day.
func (s *SyncService) today() time.Time {
	n := s.now().UTC()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// GenerationKey scopes cached quotes/availability to a write
// generation; a sync write deletes the key, orphaning every cached
// value built under the old generation.
func GenerationKey(hotelCode, invTypeCode string) string {
	return fmt.Sprintf("sync:gen:%s:%s", hotelCode, invTypeCode)
}

func (s *SyncService) invalidateGenerations(ctx context.Context, keys []string) {
	if s.cache == nil {
		return
	}
	for _, key := range keys {
		_ = s.cache.Del(ctx, key)
	}
}

func inventoryKeys(recs []domain.InventoryRecord) []string {
	seen := map[string]struct{}{}
	var keys []string
	for _, r := range recs {
		key := GenerationKey(r.HotelCode, r.InvTypeCode)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}

func rateKeys(recs []domain.RateRecord) []string {
	seen := map[string]struct{}{}
	var keys []string
	for _, r := range recs {
		key := GenerationKey(r.HotelCode, r.InvTypeCode)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}
