package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"wincloud_hotel/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

const dateLayout = "2006-01-02"

// UpsertInventory writes a feed batch in one transaction. A failure on
// any entry rolls back the whole batch and names the offending entry,
// so redelivery retries it whole.
func (r *Repo) UpsertInventory(ctx context.Context, recs []domain.InventoryRecord) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i, rec := range recs {
		_, err := tx.ExecContext(ctx, upsertInventorySQL,
			rec.HotelCode,
			nullStr(rec.HotelName),
			rec.InvTypeCode,
			rec.StartDate.Format(dateLayout),
			rec.EndDate.Format(dateLayout),
			rec.Count,
		)
		if err != nil {
			return fmt.Errorf("upsert inventory entry %d (%s/%s %s): %w",
				i+1, rec.HotelCode, rec.InvTypeCode, rec.StartDate.Format(dateLayout), err)
		}
	}
	return tx.Commit()
}

// UpsertRates writes a rate batch in one transaction, same contract as
// UpsertInventory. The list-shaped attributes go in as JSON columns.
func (r *Repo) UpsertRates(ctx context.Context, recs []domain.RateRecord) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i, rec := range recs {
		days, err := json.Marshal(rec.Days)
		if err != nil {
			return fmt.Errorf("marshal day flags for entry %d: %w", i+1, err)
		}
		tiers, err := json.Marshal(rec.BaseByGuestAmts)
		if err != nil {
			return fmt.Errorf("marshal base amounts for entry %d: %w", i+1, err)
		}
		extras, err := json.Marshal(rec.AdditionalGuestAmounts)
		if err != nil {
			return fmt.Errorf("marshal additional amounts for entry %d: %w", i+1, err)
		}
		_, err = tx.ExecContext(ctx, upsertRateSQL,
			rec.HotelCode,
			nullStr(rec.HotelName),
			rec.InvTypeCode,
			rec.RatePlanCode,
			rec.StartDate.Format(dateLayout),
			rec.EndDate.Format(dateLayout),
			rec.CurrencyCode,
			string(days),
			string(tiers),
			string(extras),
		)
		if err != nil {
			return fmt.Errorf("upsert rate entry %d (%s/%s/%s %s): %w",
				i+1, rec.HotelCode, rec.InvTypeCode, rec.RatePlanCode, rec.StartDate.Format(dateLayout), err)
		}
	}
	return tx.Commit()
}

// FetchPricingData is the combined read for a quote: all candidate
// rates plus all inventory rows for the range, one call.
func (r *Repo) FetchPricingData(ctx context.Context, hotelCode, invTypeCode string, from, to time.Time) (domain.PricingData, error) {
	rates, err := r.fetchRates(ctx, hotelCode, invTypeCode, from, to)
	if err != nil {
		return domain.PricingData{}, err
	}
	inv, err := r.FetchInventory(ctx, hotelCode, invTypeCode, from, to)
	if err != nil {
		return domain.PricingData{}, err
	}
	return domain.PricingData{Rates: rates, Inventory: inv}, nil
}

func (r *Repo) fetchRates(ctx context.Context, hotelCode, invTypeCode string, from, to time.Time) ([]domain.RateRecord, error) {
	rows, err := r.db.QueryContext(ctx, selectRatesSQL,
		hotelCode, invTypeCode, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RateRecord
	for rows.Next() {
		var rec domain.RateRecord
		var hotelName sql.NullString
		var start, end time.Time
		var days, tiers, extras []byte
		if err := rows.Scan(
			&rec.HotelCode,
			&hotelName,
			&rec.InvTypeCode,
			&rec.RatePlanCode,
			&start,
			&end,
			&rec.CurrencyCode,
			&days,
			&tiers,
			&extras,
		); err != nil {
			return nil, err
		}
		if hotelName.Valid {
			rec.HotelName = hotelName.String
		}
		rec.StartDate = toUTCDate(start)
		rec.EndDate = toUTCDate(end)
		if err := json.Unmarshal(days, &rec.Days); err != nil {
			return nil, fmt.Errorf("unmarshal day flags for %s/%s: %w", rec.InvTypeCode, rec.RatePlanCode, err)
		}
		if err := json.Unmarshal(tiers, &rec.BaseByGuestAmts); err != nil {
			return nil, fmt.Errorf("unmarshal base amounts for %s/%s: %w", rec.InvTypeCode, rec.RatePlanCode, err)
		}
		if len(extras) > 0 {
			if err := json.Unmarshal(extras, &rec.AdditionalGuestAmounts); err != nil {
				return nil, fmt.Errorf("unmarshal additional amounts for %s/%s: %w", rec.InvTypeCode, rec.RatePlanCode, err)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *Repo) FetchInventory(ctx context.Context, hotelCode, invTypeCode string, from, to time.Time) ([]domain.InventoryRecord, error) {
	rows, err := r.db.QueryContext(ctx, selectInventorySQL,
		hotelCode, invTypeCode, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.InventoryRecord
	for rows.Next() {
		var rec domain.InventoryRecord
		var hotelName sql.NullString
		var start, end time.Time
		if err := rows.Scan(
			&rec.HotelCode,
			&hotelName,
			&rec.InvTypeCode,
			&start,
			&end,
			&rec.Count,
		); err != nil {
			return nil, err
		}
		if hotelName.Valid {
			rec.HotelName = hotelName.String
		}
		rec.StartDate = toUTCDate(start)
		rec.EndDate = toUTCDate(end)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// toUTCDate normalizes a scanned DATE to midnight UTC so equality
// checks against feed dates hold regardless of the session location.
func toUTCDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
