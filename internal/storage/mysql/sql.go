package mysql

// One row per finalize attempt; a prebook can fail and later succeed.
const insertOutcomeSQL = `
INSERT INTO booking_outcomes
  (prebook_id, transaction_id, booking_id, status, confirmation_code,
   hotel_name, guest_email, missing, error_detail, raw, created_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP(3)))
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// Latest attempt wins; ties on created_at fall back to insert order.
const getOutcomeSQL = `
SELECT
  prebook_id,
  transaction_id,
  booking_id,
  status,
  confirmation_code,
  hotel_name,
  guest_email,
  missing,
  error_detail,
  raw,
  created_at
FROM booking_outcomes
WHERE prebook_id = ?
ORDER BY created_at DESC, id DESC
LIMIT 1
`
