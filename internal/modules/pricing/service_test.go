package pricing

import (
	"context"
	"errors"
	"testing"
)

type stubSource struct {
	policy Policy
	err    error
	calls  int
}

func (s *stubSource) ActivePolicy(_ context.Context) (Policy, error) {
	s.calls++
	return s.policy, s.err
}

func TestServiceQuote_UsesStoredPolicy(t *testing.T) {
	stored := testPolicy()
	stored.HandlingNearFee = 75
	svc := NewService(&stubSource{policy: stored}, testPolicy())

	b := svc.Quote(context.Background(), 1.0, 1000)
	if b.HandlingFee != 75 {
		t.Errorf("handling = %d, want stored policy value 75", b.HandlingFee)
	}
}

func TestServiceQuote_FallbackOnSourceError(t *testing.T) {
	svc := NewService(&stubSource{err: errors.New("db down")}, testPolicy())

	b := svc.Quote(context.Background(), 1.0, 1000)
	if b.CourierFee != 120 || b.HandlingFee != 60 {
		t.Errorf("fallback quote = %d/%d, want 120/60", b.CourierFee, b.HandlingFee)
	}
}

func TestServiceQuote_FallbackOnInvalidPolicy(t *testing.T) {
	bad := testPolicy()
	bad.Bands = nil
	bad.PerKmFee = 0
	svc := NewService(&stubSource{policy: bad}, testPolicy())

	b := svc.Quote(context.Background(), 3.0, 1000)
	if b.CourierFee != 180 {
		t.Errorf("fallback quote courier = %d, want 180", b.CourierFee)
	}
}

func TestServiceQuote_CachesPolicy(t *testing.T) {
	src := &stubSource{policy: testPolicy()}
	svc := NewService(src, testPolicy())

	svc.Quote(context.Background(), 1.0, 0)
	svc.Quote(context.Background(), 2.0, 0)
	svc.Quote(context.Background(), 3.0, 0)
	if src.calls != 1 {
		t.Errorf("source called %d times, want 1 (cached)", src.calls)
	}
}
