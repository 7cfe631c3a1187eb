package entity

import "time"

// Competitor mirrors the `competitors` PostgreSQL table schema.
type Competitor struct {
	ID           string
	ProductID    string
	URL          string
	Name         string
	CurrentPrice float64
	LastChecked  time.Time
	ImageURL     string // empty when the page had no image
}

// PriceDifference compares the competitor's price with yourPrice. The
// percentage is relative to yourPrice and is only reported when yourPrice is
// non-zero.
func (c *Competitor) PriceDifference(yourPrice float64) (diff float64, pct float64, hasPct bool) {
	diff = c.CurrentPrice - yourPrice
	if yourPrice == 0 {
		return diff, 0, false
	}
	return diff, diff / yourPrice * 100, true
}
