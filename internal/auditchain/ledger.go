package auditchain

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	dErrors "gxpgovern/pkg/domain-errors"
)

var (
	entriesAppended = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gxpgovern_audit_entries_appended_total",
		Help: "Audit trail entries appended, by action.",
	}, []string{"action"})
	verifyFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gxpgovern_audit_verify_failures_total",
		Help: "Audit chain verifications that detected a broken link.",
	})
)

// Store persists the ordered audit chain.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	List(ctx context.Context) ([]Entry, error)
	Tail(ctx context.Context) (*Entry, error)
}

// Publisher mirrors committed entries to an external sink. Publishing is
// best-effort: a sink failure never rolls back the committed entry.
type Publisher interface {
	Publish(ctx context.Context, entry Entry) error
}

// Ledger is the single writer for the audit chain. All appends are serialized
// so the prev-hash linkage never races.
type Ledger struct {
	store     Store
	publisher Publisher
	logger    *slog.Logger

	mu   sync.Mutex
	tail *Entry
}

type LedgerOption func(*Ledger)

func WithLedgerLogger(logger *slog.Logger) LedgerOption {
	return func(l *Ledger) {
		l.logger = logger
	}
}

func WithPublisher(publisher Publisher) LedgerOption {
	return func(l *Ledger) {
		l.publisher = publisher
	}
}

func NewLedger(store Store, opts ...LedgerOption) (*Ledger, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	l := &Ledger{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}

	// Resume the chain from whatever the store already holds.
	tail, err := store.Tail(context.Background())
	if err != nil {
		return nil, fmt.Errorf("load audit tail: %w", err)
	}
	l.tail = tail
	return l, nil
}

// Append builds a committed entry from the partial one, links it to the
// current tail and persists it. The returned entry carries its final id,
// timestamp and hashes.
func (l *Ledger) Append(ctx context.Context, partial Entry) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, err := Build(partial, l.tail)
	if err != nil {
		return Entry{}, err
	}
	if err := l.store.Append(ctx, entry); err != nil {
		return Entry{}, fmt.Errorf("append audit entry: %w", err)
	}
	l.tail = &entry
	entriesAppended.WithLabelValues(entry.Action).Inc()

	if l.publisher != nil {
		if err := l.publisher.Publish(ctx, entry); err != nil {
			l.logger.WarnContext(ctx, "audit entry publish failed",
				slog.String("entry_id", entry.ID),
				slog.String("action", entry.Action),
				slog.Any("error", err))
		}
	}
	return entry, nil
}

// Entries returns the full chain in append order.
func (l *Ledger) Entries(ctx context.Context) ([]Entry, error) {
	return l.store.List(ctx)
}

// VerifyChain re-validates every link of the stored chain.
func (l *Ledger) VerifyChain(ctx context.Context) (int, error) {
	entries, err := l.store.List(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "load audit chain")
	}
	if err := Verify(entries); err != nil {
		verifyFailures.Inc()
		return len(entries), err
	}
	return len(entries), nil
}
