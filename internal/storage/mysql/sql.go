package mysql

const (
	tableHotels = "hotels"

	colID          = "id"
	colTitle       = "title"
	colDescription = "description"
	colCity        = "city"
	colRating      = "rating"

	dialectMySQL = "mysql"
)

const insertHotelSQL = `
INSERT INTO hotels
  (title, description, city, rating)
VALUES
  (?, ?, ?, ?)
`

// MySQL reports 0 affected rows for an update that writes identical values,
// so existence is checked with lockHotelSQL first.
const updateHotelSQL = `
UPDATE hotels
SET
  title       = ?,
  description = ?,
  city        = ?,
  rating      = ?,
  updated_at  = CURRENT_TIMESTAMP
WHERE id = ?
`

const getHotelSQL = `
SELECT id, title, description, city, rating
FROM hotels
WHERE id = ?
`

const lockHotelSQL = `
SELECT 1 FROM hotels WHERE id = ? FOR UPDATE
`

const deleteHotelSQL = `
DELETE FROM hotels WHERE id = ?
`

// Each run of digits in the title becomes a single '*' (MySQL 8+).
const redactTitleSQL = `
UPDATE hotels
SET
  title      = REGEXP_REPLACE(title, '[0-9]+', '*'),
  updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`
