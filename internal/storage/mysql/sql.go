package mysql

// Upserts are keyed by the natural identity tuples; the unique indexes
// in migrations/001_schema.sql make redelivery of the same feed payload
// a no-op overwrite, never a duplicate row.

const upsertInventorySQL = `
INSERT INTO room_inventory
  (hotel_code, hotel_name, inv_type_code, start_date, end_date, available_count)
VALUES
  (?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  hotel_name      = VALUES(hotel_name),
  end_date        = VALUES(end_date),
  available_count = VALUES(available_count),
  updated_at      = CURRENT_TIMESTAMP
`

const upsertRateSQL = `
INSERT INTO room_rates
  (hotel_code, hotel_name, inv_type_code, rate_plan_code, start_date, end_date,
   currency_code, day_flags, base_amounts, additional_amounts)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  hotel_name         = VALUES(hotel_name),
  end_date           = VALUES(end_date),
  currency_code      = VALUES(currency_code),
  day_flags          = VALUES(day_flags),
  base_amounts       = VALUES(base_amounts),
  additional_amounts = VALUES(additional_amounts),
  updated_at         = CURRENT_TIMESTAMP
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// Range bounds: start_date >= from AND start_date < to. The checkout
// day never matches; end_date is carried along but never filtered on.
// Deterministic ordering keeps pricing tie-breaks stable.

const selectRatesSQL = `
SELECT
  hotel_code,
  hotel_name,
  inv_type_code,
  rate_plan_code,
  start_date,
  end_date,
  currency_code,
  day_flags,
  base_amounts,
  additional_amounts
FROM room_rates
WHERE hotel_code = ? AND inv_type_code = ?
  AND start_date >= ? AND start_date < ?
ORDER BY start_date, rate_plan_code
`

const selectInventorySQL = `
SELECT
  hotel_code,
  hotel_name,
  inv_type_code,
  start_date,
  end_date,
  available_count
FROM room_inventory
WHERE hotel_code = ? AND inv_type_code = ?
  AND start_date >= ? AND start_date < ?
ORDER BY start_date
`
