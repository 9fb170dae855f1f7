package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/NasaVasa/coinalert/internal/domain"
)

var testTime = time.Date(2024, 10, 10, 10, 0, 0, 0, time.UTC)

func testAssets() []domain.Asset {
	return []domain.Asset{
		{ID: 1, Name: "Bitcoin", UpdatedAt: testTime},
		{ID: 2, Name: "Ethereum", UpdatedAt: testTime},
		{ID: 3, Name: "Cardano", UpdatedAt: testTime},
	}
}

type fakeSource struct {
	mu     sync.Mutex
	assets []domain.Asset
	err    error
	calls  int
}

func (f *fakeSource) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.assets, f.err
}

func (f *fakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeGateway struct {
	mu       sync.Mutex
	err      error
	receipt  *domain.AlertReceipt
	requests []domain.AlertRequest
}

func (f *fakeGateway) CreateAlert(ctx context.Context, request domain.AlertRequest) (*domain.AlertReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, request)
	if f.err != nil {
		return nil, f.err
	}
	return f.receipt, nil
}

func (f *fakeGateway) Requests() []domain.AlertRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.AlertRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

func (f *fakeGateway) SetErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

type recordingMetrics struct {
	mu          sync.Mutex
	refreshes   []string
	submissions []string
	validations []string
}

func (r *recordingMetrics) ObserveRefresh(outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refreshes = append(r.refreshes, outcome)
}

func (r *recordingMetrics) ObserveSubmission(outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submissions = append(r.submissions, outcome)
}

func (r *recordingMetrics) IncValidationFailure(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validations = append(r.validations, reason)
}
