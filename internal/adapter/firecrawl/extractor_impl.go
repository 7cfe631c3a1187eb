package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/user/price-tracker/internal/entity"
	"github.com/user/price-tracker/internal/repository"
	"github.com/user/price-tracker/pkg/metrics"
	"github.com/user/price-tracker/pkg/utils"
)

const (
	scrapePath = "/v1/scrape"
	// Error bodies from the service are truncated to this size in failure reasons.
	maxErrorBody = 512
)

// productSchema is the JSON schema the service extracts from a competitor page.
var productSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"name": map[string]any{
			"type":        "string",
			"description": "The name/title of the product",
		},
		"price": map[string]any{
			"type":        "number",
			"description": "The current price of the product",
		},
		"image_url": map[string]any{
			"type":        "string",
			"description": "URL of the main product image",
		},
	},
	"required": []string{"name", "price"},
}

type scrapeRequest struct {
	URL         string      `json:"url"`
	Formats     []string    `json:"formats"`
	JSONOptions jsonOptions `json:"jsonOptions"`
}

type jsonOptions struct {
	Schema map[string]any `json:"schema"`
}

type scrapeResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		JSON    json.RawMessage `json:"json"`
		Extract json.RawMessage `json:"extract"` // older API versions
	} `json:"data"`
}

type productFields struct {
	Name     *string  `json:"name"`
	Price    *float64 `json:"price"`
	ImageURL *string  `json:"image_url"`
}

// Extractor calls the Firecrawl scrape endpoint with a product JSON schema.
type Extractor struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	now        func() time.Time
}

// NewExtractor creates a Firecrawl-backed repository.Extractor. timeout bounds
// every request; the service gives no upper bound of its own.
func NewExtractor(baseURL, apiKey string, timeout time.Duration) *Extractor {
	return &Extractor{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

var _ repository.Extractor = (*Extractor)(nil)

// Extract resolves a competitor page into an entity.Extraction. It performs
// exactly one request and never retries.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (*entity.Extraction, error) {
	if !utils.IsWebURL(pageURL) {
		metrics.ExtractionsTotal.WithLabelValues("failure").Inc()
		return nil, fmt.Errorf("%w: invalid url %q", repository.ErrExtractionFailed, pageURL)
	}

	start := time.Now()
	extraction, err := e.scrape(ctx, pageURL)
	metrics.ExtractionDuration.WithLabelValues(utils.Hostname(pageURL)).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ExtractionsTotal.WithLabelValues("failure").Inc()
		return nil, fmt.Errorf("%w: %s: %v", repository.ErrExtractionFailed, pageURL, err)
	}
	metrics.ExtractionsTotal.WithLabelValues("success").Inc()
	return extraction, nil
}

func (e *Extractor) scrape(ctx context.Context, pageURL string) (*entity.Extraction, error) {
	body, err := json.Marshal(scrapeRequest{
		URL:         pageURL,
		Formats:     []string{"json"},
		JSONOptions: jsonOptions{Schema: productSchema},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+scrapePath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var sr scrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("malformed response: %w", err)
	}
	if !sr.Success {
		if sr.Error == "" {
			sr.Error = "unknown error"
		}
		return nil, fmt.Errorf("service reported failure: %s", sr.Error)
	}

	raw := sr.Data.JSON
	if len(raw) == 0 || string(raw) == "null" {
		raw = sr.Data.Extract
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, errors.New("response contains no extracted data")
	}

	var fields productFields
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("extracted data does not match schema: %w", err)
	}
	return e.normalize(pageURL, fields)
}

func (e *Extractor) normalize(pageURL string, f productFields) (*entity.Extraction, error) {
	if f.Name == nil || strings.TrimSpace(*f.Name) == "" {
		return nil, errors.New("extracted data is missing a product name")
	}
	if f.Price == nil {
		return nil, errors.New("extracted data is missing a price")
	}
	price := *f.Price
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return nil, fmt.Errorf("extracted price %v is not a valid amount", price)
	}

	var imageURL string
	if f.ImageURL != nil {
		imageURL = strings.TrimSpace(*f.ImageURL)
	}

	return &entity.Extraction{
		URL:       pageURL,
		Name:      strings.TrimSpace(*f.Name),
		Price:     price,
		ImageURL:  imageURL,
		CheckedAt: e.now().UTC(),
	}, nil
}
