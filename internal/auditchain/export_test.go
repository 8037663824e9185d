package auditchain

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ExportSuite struct {
	suite.Suite
}

func TestExportSuite(t *testing.T) {
	suite.Run(t, new(ExportSuite))
}

func (s *ExportSuite) entry() Entry {
	return Entry{
		ID:         "e-1",
		Timestamp:  time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC),
		UserID:     "u-100",
		UserName:   `Dana "DR" Reviewer`,
		ActorRole:  "instructor",
		Origin:     OriginHuman,
		Action:     ActionContentApproved,
		Resource:   "draft_content",
		ResourceID: "d-1",
		IPAddress:  "10.0.0.7",
		UserAgent:  "Chrome 120.0 (Linux)",
		Details:    map[string]any{"comment": "looks good, ship it"},
		PrevHash:   "aa11",
		Hash:       "bb22",
	}
}

func (s *ExportSuite) TestCSV() {
	out, err := ExportCSV([]Entry{s.entry()})
	s.Require().NoError(err)

	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	s.Require().Len(lines, 2)
	s.Equal(`"id","timestamp","userId","userName","actorRole","origin","action","resource","resourceId","ipAddress","userAgent","prevHash","hash","details"`, lines[0])

	// A strict CSV reader must round-trip the embedded quotes and commas.
	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	s.Require().NoError(err)
	s.Require().Len(records, 2)

	row := records[1]
	s.Equal("e-1", row[0])
	s.Equal("2025-06-01T10:30:00Z", row[1])
	s.Equal(`Dana "DR" Reviewer`, row[3])
	s.Equal("CONTENT_APPROVED", row[6])
	s.JSONEq(`{"comment":"looks good, ship it"}`, row[13])
}

func (s *ExportSuite) TestCSVEmptyChain() {
	out, err := ExportCSV(nil)
	s.Require().NoError(err)
	s.Equal(1, strings.Count(string(out), "\n"))
}

func (s *ExportSuite) TestJSON() {
	out, err := ExportJSON([]Entry{s.entry()})
	s.Require().NoError(err)

	var decoded []Entry
	s.Require().NoError(json.Unmarshal(out, &decoded))
	s.Require().Len(decoded, 1)
	s.Equal("e-1", decoded[0].ID)
	s.Equal("bb22", decoded[0].Hash)
}

func (s *ExportSuite) TestJSONEmptyChain() {
	out, err := ExportJSON(nil)
	s.Require().NoError(err)
	s.Equal("[]", string(out))
}
