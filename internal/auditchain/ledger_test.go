package auditchain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
)

// memStore is a minimal in-package store so ledger tests avoid importing the
// store package.
type memStore struct {
	mu      sync.Mutex
	entries []Entry
}

func (m *memStore) Append(_ context.Context, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memStore) List(_ context.Context) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

func (m *memStore) Tail(_ context.Context) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) == 0 {
		return nil, nil
	}
	tail := m.entries[len(m.entries)-1]
	return &tail, nil
}

type recordingPublisher struct {
	mu        sync.Mutex
	published []Entry
	err       error
}

func (p *recordingPublisher) Publish(_ context.Context, entry Entry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, entry)
	return nil
}

type LedgerSuite struct {
	suite.Suite
	ctx    context.Context
	store  *memStore
	ledger *Ledger
}

func (s *LedgerSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = &memStore{}

	var err error
	s.ledger, err = NewLedger(s.store)
	s.Require().NoError(err)
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerSuite))
}

func (s *LedgerSuite) partial(resourceID string) Entry {
	return Entry{
		UserID:     "u-100",
		UserName:   "Dana Reviewer",
		ActorRole:  "instructor",
		Origin:     OriginHuman,
		Action:     ActionContentProposed,
		Resource:   "draft_content",
		ResourceID: resourceID,
	}
}

func (s *LedgerSuite) TestAppendLinksEntries() {
	first, err := s.ledger.Append(s.ctx, s.partial("d-1"))
	s.Require().NoError(err)
	s.Empty(first.PrevHash)

	second, err := s.ledger.Append(s.ctx, s.partial("d-2"))
	s.Require().NoError(err)
	s.Equal(first.Hash, second.PrevHash)

	entries, err := s.ledger.Entries(s.ctx)
	s.Require().NoError(err)
	s.Len(entries, 2)
	s.NoError(Verify(entries))
}

func (s *LedgerSuite) TestConcurrentAppendsKeepLinkage() {
	const writers = 16

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := s.ledger.Append(s.ctx, s.partial(fmt.Sprintf("d-%d", n)))
			s.NoError(err)
		}(i)
	}
	wg.Wait()

	length, err := s.ledger.VerifyChain(s.ctx)
	s.Require().NoError(err)
	s.Equal(writers, length)
}

func (s *LedgerSuite) TestResumesFromStoredTail() {
	first, err := s.ledger.Append(s.ctx, s.partial("d-1"))
	s.Require().NoError(err)

	// A fresh ledger over the same store picks up the existing tail.
	resumed, err := NewLedger(s.store)
	s.Require().NoError(err)
	second, err := resumed.Append(s.ctx, s.partial("d-2"))
	s.Require().NoError(err)
	s.Equal(first.Hash, second.PrevHash)

	entries, err := resumed.Entries(s.ctx)
	s.Require().NoError(err)
	s.NoError(Verify(entries))
}

func (s *LedgerSuite) TestVerifyDetectsTampering() {
	_, err := s.ledger.Append(s.ctx, s.partial("d-1"))
	s.Require().NoError(err)

	s.store.mu.Lock()
	s.store.entries[0].UserID = "mallory"
	s.store.mu.Unlock()

	_, err = s.ledger.VerifyChain(s.ctx)
	s.Error(err)
}

func (s *LedgerSuite) TestPublisherReceivesEntries() {
	pub := &recordingPublisher{}
	ledger, err := NewLedger(&memStore{}, WithPublisher(pub))
	s.Require().NoError(err)

	entry, err := ledger.Append(s.ctx, s.partial("d-1"))
	s.Require().NoError(err)

	pub.mu.Lock()
	defer pub.mu.Unlock()
	s.Require().Len(pub.published, 1)
	s.Equal(entry.Hash, pub.published[0].Hash)
}

func (s *LedgerSuite) TestPublisherFailureDoesNotRollBack() {
	pub := &recordingPublisher{err: errors.New("broker down")}
	ledger, err := NewLedger(&memStore{}, WithPublisher(pub))
	s.Require().NoError(err)

	_, err = ledger.Append(s.ctx, s.partial("d-1"))
	s.Require().NoError(err)

	entries, err := ledger.Entries(s.ctx)
	s.Require().NoError(err)
	s.Len(entries, 1)
}

func (s *LedgerSuite) TestNilStoreRejected() {
	_, err := NewLedger(nil)
	s.Error(err)
}
