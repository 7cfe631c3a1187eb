package entity

import "time"

// Extraction is the normalized result of extracting a competitor page.
type Extraction struct {
	URL       string
	Name      string
	Price     float64
	ImageURL  string
	CheckedAt time.Time
}
