package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/user/price-tracker/internal/adapter/memory"
	"github.com/user/price-tracker/internal/entity"
	"github.com/user/price-tracker/internal/repository"
)

type fakeResult struct {
	name  string
	price float64
	fail  bool
}

// fakeExtractor returns queued results per URL; the last result repeats.
type fakeExtractor struct {
	mu      sync.Mutex
	results map[string][]fakeResult
	calls   map[string]int
}

func newFakeExtractor() *fakeExtractor {
	return &fakeExtractor{results: map[string][]fakeResult{}, calls: map[string]int{}}
}

func (f *fakeExtractor) on(url string, results ...fakeResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[url] = append(f.results[url], results...)
}

func (f *fakeExtractor) callCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

func (f *fakeExtractor) Extract(_ context.Context, url string) (*entity.Extraction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := f.calls[url]
	f.calls[url]++
	queue := f.results[url]
	if len(queue) == 0 {
		return nil, fmt.Errorf("%w: no fake result for %s", repository.ErrExtractionFailed, url)
	}
	r := queue[len(queue)-1]
	if n < len(queue) {
		r = queue[n]
	}
	if r.fail {
		return nil, fmt.Errorf("%w: page could not be parsed", repository.ErrExtractionFailed)
	}
	return &entity.Extraction{URL: url, Name: r.name, Price: r.price, CheckedAt: time.Now().UTC()}, nil
}

var errStorageDown = errors.New("storage unavailable")

// flakyCompetitorRepo fails UpdatePrice for one competitor id.
type flakyCompetitorRepo struct {
	*memory.CompetitorRepo
	failID string
}

func (r *flakyCompetitorRepo) UpdatePrice(ctx context.Context, id string, price float64, checkedAt time.Time) error {
	if id == r.failID {
		return errStorageDown
	}
	return r.CompetitorRepo.UpdatePrice(ctx, id, price, checkedAt)
}
