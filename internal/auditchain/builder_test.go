package auditchain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dErrors "gxpgovern/pkg/domain-errors"
)

type BuilderSuite struct {
	suite.Suite
}

func TestBuilderSuite(t *testing.T) {
	suite.Run(t, new(BuilderSuite))
}

func (s *BuilderSuite) partial(action string) Entry {
	return Entry{
		UserID:     "u-100",
		UserName:   "Dana Reviewer",
		ActorRole:  "instructor",
		Origin:     OriginHuman,
		Action:     action,
		Resource:   "draft_content",
		ResourceID: "d-1",
		Details:    map[string]any{"moduleId": "mod-003"},
	}
}

func (s *BuilderSuite) chain(actions ...string) []Entry {
	var (
		chain []Entry
		prev  *Entry
	)
	for _, action := range actions {
		entry, err := Build(s.partial(action), prev)
		s.Require().NoError(err)
		chain = append(chain, entry)
		prev = &chain[len(chain)-1]
	}
	return chain
}

func (s *BuilderSuite) TestBuild() {
	s.Run("genesis entry has no prev hash", func() {
		entry, err := Build(s.partial(ActionContentProposed), nil)
		s.Require().NoError(err)
		s.Empty(entry.PrevHash)
		s.NotEmpty(entry.ID)
		s.NotEmpty(entry.Hash)
		s.False(entry.Timestamp.IsZero())
	})

	s.Run("subsequent entry links to predecessor", func() {
		chain := s.chain(ActionContentProposed, ActionContentApproved)
		s.Equal(chain[0].Hash, chain[1].PrevHash)
	})

	s.Run("hash is a 64 char hex digest", func() {
		entry, err := Build(s.partial(ActionContentProposed), nil)
		s.Require().NoError(err)
		s.Len(entry.Hash, 64)
	})

	s.Run("identical payloads produce distinct entries", func() {
		a, err := Build(s.partial(ActionContentProposed), nil)
		s.Require().NoError(err)
		b, err := Build(s.partial(ActionContentProposed), nil)
		s.Require().NoError(err)
		s.NotEqual(a.ID, b.ID)
	})
}

// TestTimestampSurvivesMicrosecondStorage replays the precision loss of a
// TIMESTAMPTZ round trip and verifies the stored chain still validates.
func (s *BuilderSuite) TestTimestampSurvivesMicrosecondStorage() {
	chain := s.chain(ActionContentProposed, ActionContentApproved, ActionContentRejected)
	for i := range chain {
		s.Zero(chain[i].Timestamp.Nanosecond()%1000, "entry %d carries sub-microsecond precision", i)
		chain[i].Timestamp = chain[i].Timestamp.Truncate(time.Microsecond)
	}
	s.NoError(Verify(chain))
}

func (s *BuilderSuite) TestVerify() {
	s.Run("valid chain verifies", func() {
		chain := s.chain(ActionContentProposed, ActionContentApproved, ActionContentRejected)
		s.NoError(Verify(chain))
	})

	s.Run("empty chain verifies", func() {
		s.NoError(Verify(nil))
	})

	s.Run("non-empty genesis prev hash fails", func() {
		chain := s.chain(ActionContentProposed)
		chain[0].PrevHash = "deadbeef"
		err := Verify(chain)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeIntegrity))
	})

	s.Run("broken linkage fails", func() {
		chain := s.chain(ActionContentProposed, ActionContentApproved)
		middle, err := Build(s.partial(ActionDenied), nil)
		s.Require().NoError(err)
		chain[1] = middle
		s.Error(Verify(chain))
	})
}

// TestTamperDetection mutates each audited field in turn and verifies the
// recomputed hash no longer matches.
func (s *BuilderSuite) TestTamperDetection() {
	tampers := map[string]func(*Entry){
		"user":      func(e *Entry) { e.UserID = "u-999" },
		"user name": func(e *Entry) { e.UserName = "Mallory" },
		"role":      func(e *Entry) { e.ActorRole = "admin" },
		"origin":    func(e *Entry) { e.Origin = OriginAutomated },
		"action":    func(e *Entry) { e.Action = ActionContentApproved },
		"resource":  func(e *Entry) { e.ResourceID = "d-2" },
		"details":   func(e *Entry) { e.Details["moduleId"] = "mod-001" },
		"timestamp": func(e *Entry) { e.Timestamp = e.Timestamp.AddDate(0, 0, 1) },
	}

	for name, tamper := range tampers {
		s.Run(name, func() {
			chain := s.chain(ActionContentProposed, ActionContentApproved)
			tamper(&chain[0])
			err := Verify(chain)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeIntegrity))
		})
	}
}

func (s *BuilderSuite) TestStableJSONDeterminism() {
	payload := map[string]any{
		"b": 2,
		"a": map[string]any{"z": true, "y": []any{"1", "2"}},
	}
	first, err := StableJSON(payload)
	s.Require().NoError(err)
	second, err := StableJSON(payload)
	s.Require().NoError(err)
	s.Equal(first, second)
}
