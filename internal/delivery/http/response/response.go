package response

import (
	"time"

	"github.com/user/price-tracker/internal/entity"
)

// CompetitorResponse is a DTO for a competitor listing. The price difference
// fields are only filled when the owning product's price is known.
type CompetitorResponse struct {
	ID                 string    `json:"id"`
	ProductID          string    `json:"product_id"`
	URL                string    `json:"url"`
	Name               string    `json:"name"`
	CurrentPrice       float64   `json:"current_price"`
	LastChecked        time.Time `json:"last_checked"`
	ImageURL           string    `json:"image_url,omitempty"`
	PriceDifference    *float64  `json:"price_difference,omitempty"`
	PriceDifferencePct *float64  `json:"price_difference_pct,omitempty"`
}

type ProductResponse struct {
	ID                    string               `json:"id"`
	Name                  string               `json:"name"`
	YourPrice             float64              `json:"your_price"`
	URL                   string               `json:"url,omitempty"`
	CreatedAt             time.Time            `json:"created_at"`
	LowestCompetitorPrice *float64             `json:"lowest_competitor_price,omitempty"`
	Competitors           []CompetitorResponse `json:"competitors"`
}

type RefreshFailureResponse struct {
	CompetitorID string `json:"competitor_id"`
	URL          string `json:"url"`
	Reason       string `json:"reason"`
}

type RefreshReportResponse struct {
	StartedAt  time.Time                `json:"started_at"`
	FinishedAt time.Time                `json:"finished_at"`
	Total      int                      `json:"total"`
	Updated    int                      `json:"updated"`
	Failed     int                      `json:"failed"`
	Skipped    int                      `json:"skipped"`
	Failures   []RefreshFailureResponse `json:"failures"`
}

func NewCompetitorResponse(c *entity.Competitor, yourPrice *float64) CompetitorResponse {
	resp := CompetitorResponse{
		ID:           c.ID,
		ProductID:    c.ProductID,
		URL:          c.URL,
		Name:         c.Name,
		CurrentPrice: c.CurrentPrice,
		LastChecked:  c.LastChecked,
		ImageURL:     c.ImageURL,
	}
	if yourPrice != nil {
		diff, pct, hasPct := c.PriceDifference(*yourPrice)
		resp.PriceDifference = &diff
		if hasPct {
			resp.PriceDifferencePct = &pct
		}
	}
	return resp
}

func NewProductResponse(p *entity.Product) ProductResponse {
	resp := ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		YourPrice:   p.YourPrice,
		URL:         p.URL,
		CreatedAt:   p.CreatedAt,
		Competitors: make([]CompetitorResponse, 0, len(p.Competitors)),
	}
	if lowest, ok := p.LowestCompetitorPrice(); ok {
		resp.LowestCompetitorPrice = &lowest
	}
	for _, c := range p.Competitors {
		resp.Competitors = append(resp.Competitors, NewCompetitorResponse(c, &p.YourPrice))
	}
	return resp
}

func NewRefreshReportResponse(r *entity.RefreshReport) RefreshReportResponse {
	resp := RefreshReportResponse{
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Total:      r.Total,
		Updated:    r.Updated,
		Failed:     r.Failed,
		Skipped:    r.Skipped,
		Failures:   make([]RefreshFailureResponse, 0, len(r.Failures)),
	}
	for _, f := range r.Failures {
		resp.Failures = append(resp.Failures, RefreshFailureResponse{
			CompetitorID: f.CompetitorID,
			URL:          f.URL,
			Reason:       f.Reason,
		})
	}
	return resp
}
