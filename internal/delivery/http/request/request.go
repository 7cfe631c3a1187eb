package request

type CreateProductRequest struct {
	Name      string   `json:"name"`
	YourPrice *float64 `json:"your_price"`
	URL       string   `json:"url"`
}

type CreateCompetitorRequest struct {
	URL string `json:"url"`
}
