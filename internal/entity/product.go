package entity

import "time"

// Product mirrors the `products` PostgreSQL table schema. Competitors is
// populated by the repository read operations.
type Product struct {
	ID          string
	Name        string
	YourPrice   float64
	URL         string
	CreatedAt   time.Time
	Competitors []*Competitor
}

// LowestCompetitorPrice returns the cheapest competitor price, or false when
// the product has no competitors.
func (p *Product) LowestCompetitorPrice() (float64, bool) {
	if len(p.Competitors) == 0 {
		return 0, false
	}
	lowest := p.Competitors[0].CurrentPrice
	for _, c := range p.Competitors[1:] {
		if c.CurrentPrice < lowest {
			lowest = c.CurrentPrice
		}
	}
	return lowest, true
}
