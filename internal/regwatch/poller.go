package regwatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gxpgovern/internal/draft/models"
	"gxpgovern/internal/regwatch/metrics"
)

// Proposer accepts candidate drafts synthesized by the poller. The review
// service implements it; accepted=false means the candidate was a duplicate
// and was dropped with a notice rather than an error.
type Proposer interface {
	ProposeAutomated(ctx context.Context, draft models.DraftContent) (accepted bool, err error)
}

// Poller periodically queries the signal source, routes each reference to a
// target module, and hands synthesized drafts to the proposer. It owns its
// own start/stop handle; construct one per pipeline instance instead of
// keeping global timer state.
type Poller struct {
	source   Source
	routes   RoutingTable
	proposer Proposer
	logger   *slog.Logger
	metrics  *metrics.Metrics

	mu      sync.Mutex
	quit    chan struct{}
	done    chan struct{}
	running bool
}

type Option func(*Poller)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Poller) { p.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Poller) { p.metrics = m }
}

func WithRouting(routes RoutingTable) Option {
	return func(p *Poller) { p.routes = routes }
}

func New(source Source, proposer Proposer, opts ...Option) (*Poller, error) {
	if source == nil {
		return nil, fmt.Errorf("regwatch source is required")
	}
	if proposer == nil {
		return nil, fmt.Errorf("draft proposer is required")
	}
	p := &Poller{
		source:   source,
		routes:   DefaultRouting(),
		proposer: proposer,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Start begins periodic cycles and returns an idempotent stop handle. One
// cycle runs immediately; subsequent cycles fire on the interval. Dispatch of
// proposals happens off the ticker goroutine so a slow proposer never delays
// the next cycle. After stop returns, no further cycle fires.
func (p *Poller) Start(ctx context.Context, interval time.Duration) (stop func()) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return func() {}
	}
	p.running = true
	p.quit = make(chan struct{})
	p.done = make(chan struct{})
	quit, done := p.quit, p.done
	p.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		p.dispatchCycle(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-quit:
				return
			case <-ticker.C:
				p.dispatchCycle(ctx)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(quit)
			<-done
			p.mu.Lock()
			p.running = false
			p.mu.Unlock()
		})
	}
}

// CheckNow runs a single synchronous cycle, bypassing the timer, and returns
// the newly proposed drafts.
func (p *Poller) CheckNow(ctx context.Context) ([]models.DraftContent, error) {
	return p.cycle(ctx)
}

// dispatchCycle runs a cycle asynchronously and shields the timer loop from
// proposer panics. A failed cycle is logged and retried on the next interval,
// never fatal to the poller.
func (p *Poller) dispatchCycle(ctx context.Context) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				p.logger.ErrorContext(ctx, "regwatch cycle panicked", "panic", r)
			}
		}()
		if _, err := p.cycle(ctx); err != nil {
			p.logger.WarnContext(ctx, "regwatch cycle failed, retrying next interval",
				"error", err,
			)
		}
	}()
}

// cycle fetches references, synthesizes drafts, and proposes them.
func (p *Poller) cycle(ctx context.Context) ([]models.DraftContent, error) {
	p.metrics.IncrementCycles()

	refs, err := p.source.Fetch(ctx)
	if err != nil {
		p.metrics.IncrementSourceFailures()
		return nil, fmt.Errorf("fetch regulatory signals: %w", err)
	}

	now := time.Now()
	var proposed []models.DraftContent
	for _, ref := range refs {
		draft := Synthesize(ref, p.routes.Route(ref.Authority), now)
		accepted, err := p.proposer.ProposeAutomated(ctx, draft)
		if err != nil {
			p.logger.WarnContext(ctx, "draft proposal failed",
				"module_id", draft.ModuleID,
				"authority", ref.Authority,
				"error", err,
			)
			continue
		}
		if !accepted {
			p.metrics.IncrementDuplicatesIgnored()
			p.logger.InfoContext(ctx, "duplicate draft ignored",
				"module_id", draft.ModuleID,
				"authority", ref.Authority,
				"document", ref.Document,
			)
			continue
		}
		p.metrics.IncrementDraftsProposed()
		proposed = append(proposed, draft)
	}

	p.logger.InfoContext(ctx, "regwatch cycle complete",
		"references", len(refs),
		"proposed", len(proposed),
	)
	return proposed, nil
}
