// README: Pricing service serves fee quotes from the active policy.
package pricing

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// PolicySource loads the active fee policy from wherever the operator
// maintains it.
type PolicySource interface {
	ActivePolicy(ctx context.Context) (Policy, error)
}

type Service struct {
	source   PolicySource
	fallback Policy
	ttl      time.Duration

	mu       sync.Mutex
	cached   Policy
	loadedAt time.Time
}

// NewService builds a pricing service. fallback must be a valid policy; it
// is used whenever the source is unavailable so a quote is always produced.
func NewService(source PolicySource, fallback Policy) *Service {
	return &Service{
		source:   source,
		fallback: fallback,
		ttl:      time.Minute,
	}
}

// Quote computes the fee breakdown using the current policy. It never
// fails: a broken policy source degrades to the configured fallback.
func (s *Service) Quote(ctx context.Context, distanceKm float64, subtotal int64) Breakdown {
	return s.policy(ctx).Quote(distanceKm, subtotal)
}

func (s *Service) policy(ctx context.Context) Policy {
	s.mu.Lock()
	defer s.mu.Unlock()

	if time.Since(s.loadedAt) < s.ttl && s.cached.Currency != "" {
		return s.cached
	}
	if s.source == nil {
		return s.fallback
	}
	p, err := s.source.ActivePolicy(ctx)
	if err != nil {
		slog.Warn("pricing: policy load failed, using fallback", "error", err)
		return s.fallback
	}
	if err := p.Validate(); err != nil {
		slog.Warn("pricing: stored policy invalid, using fallback", "error", err)
		return s.fallback
	}
	s.cached = p
	s.loadedAt = time.Now()
	return p
}
