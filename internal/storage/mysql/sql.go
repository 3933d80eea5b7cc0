package mysql

const insertUserSQL = `
INSERT INTO users (id, name, email, password, role, is_active)
VALUES (?, ?, ?, ?, ?, ?)
`

const getUserSQL = `
SELECT id, name, email, password, role, is_active
FROM users
WHERE id = ?
`

const findUserByCredentialsSQL = `
SELECT id, name, email, password, role, is_active
FROM users
WHERE email = ? AND password = ? AND is_active = 1
`

// The UNIQUE index on unique_code makes this a conditional insert: two
// concurrent creations probing the same code serialize on the index and
// exactly one wins.
const insertPropertySQL = `
INSERT INTO properties
  (id, owner_id, house_number, street, city, state, pincode, description, unique_code)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const propertyColumns = `
  id, owner_id, house_number, street, city, state, pincode, description,
  unique_code, rating_sum, rating_count, created_at`

const getPropertySQL = `
SELECT` + propertyColumns + `
FROM properties
WHERE id = ?
`

const findPropertyByCodeSQL = `
SELECT` + propertyColumns + `
FROM properties
WHERE unique_code = ? AND owner_id = ?
`

const insertRoomSQL = `
INSERT INTO rooms (id, property_id, title, price, photos, available)
VALUES (?, ?, ?, ?, ?, ?)
`

const roomColumns = `
  id, property_id, title, price, photos, available, rating_sum, rating_count, created_at`

const getRoomSQL = `
SELECT` + roomColumns + `
FROM rooms
WHERE id = ?
`

const insertRatingSQL = `
INSERT INTO ratings (id, user_id, room_id, property_id, score, comment)
VALUES (?, ?, ?, ?, ?, ?)
`

// Aggregate increments are one atomic statement each; together with the
// rating insert they commit in a single transaction.
const incRoomAggregateSQL = `
UPDATE rooms SET rating_sum = rating_sum + ?, rating_count = rating_count + 1
WHERE id = ?
`

const incPropertyAggregateSQL = `
UPDATE properties SET rating_sum = rating_sum + ?, rating_count = rating_count + 1
WHERE id = ?
`

// Full-scan repair path: recompute sum/count from the ratings table in one
// correlated UPDATE per subject.
const recomputeRoomAggregateSQL = `
UPDATE rooms r
SET r.rating_sum   = (SELECT COALESCE(SUM(score), 0) FROM ratings WHERE room_id = r.id),
    r.rating_count = (SELECT COUNT(*) FROM ratings WHERE room_id = r.id)
WHERE r.id = ?
`

const recomputePropertyAggregateSQL = `
UPDATE properties p
SET p.rating_sum   = (SELECT COALESCE(SUM(score), 0) FROM ratings WHERE property_id = p.id),
    p.rating_count = (SELECT COUNT(*) FROM ratings WHERE property_id = p.id)
WHERE p.id = ?
`

const insertRentalSQL = `
INSERT INTO rentals
  (id, room_id, user_id, owner_id, property_id, property_code,
   rent_day_of_month, start_date, status, aadhaar_number, agreement_url)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const rentalColumns = `
  id, room_id, user_id, owner_id, property_id, property_code,
  rent_day_of_month, start_date, status, aadhaar_number, agreement_url, created_at`

const getRentalSQL = `
SELECT` + rentalColumns + `
FROM rentals
WHERE id = ?
`

const insertPaymentSQL = `
INSERT INTO payments
  (id, rental_id, amount, paid_at, owner_signature_url, user_signature_url, emailed)
VALUES
  (?, ?, ?, ?, ?, ?, 0)
`

const markPaymentEmailedSQL = `
UPDATE payments SET emailed = 1 WHERE id = ?
`

const insertMaintenanceSQL = `
INSERT INTO maintenance_requests (id, rental_id, user_id, description, status)
VALUES (?, ?, ?, ?, ?)
`

const maintenanceColumns = `
  id, rental_id, user_id, description, status, created_at`

const insertEmailLogSQL = `
INSERT INTO email_log (id, recipients, subject, body, sent_at)
VALUES (?, ?, ?, ?, ?)
`
