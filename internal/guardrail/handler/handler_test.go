package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"gxpgovern/internal/guardrail"
)

type HandlerSuite struct {
	suite.Suite
	router chi.Router
}

func (s *HandlerSuite) SetupTest() {
	s.router = chi.NewRouter()
	h := New(guardrail.New(guardrail.DefaultConfig()), slog.Default())
	h.Register(s.router)
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) validate(body string) (*httptest.ResponseRecorder, guardrail.Report) {
	req := httptest.NewRequest(http.MethodPost, "/guardrail/validate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var report guardrail.Report
	if rec.Code == http.StatusOK {
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &report))
	}
	return rec, report
}

func (s *HandlerSuite) TestValidateCleanDraft() {
	rec, report := s.validate(`{
		"moduleId": "mod-003",
		"content": "Update GMP curriculum covering CAPA workflows, deviation handling and batch review under ALCOA+ principles.",
		"rationale": "New FDA guidance on manufacturing data integrity.",
		"regulatoryTrigger": {
			"authority": "FDA",
			"document": "Data Integrity and Compliance with Drug CGMP",
			"section": "Guidance",
			"effectiveDate": "2025-06-01",
			"url": "https://www.fda.gov/regulatory-information/guidance"
		}
	}`)

	s.Equal(http.StatusOK, rec.Code)
	s.True(report.OK)
	s.Empty(report.Issues)
}

func (s *HandlerSuite) TestValidateFlagsProblems() {
	rec, report := s.validate(`{
		"moduleId": "mod-002",
		"content": "short",
		"rationale": "short",
		"regulatoryTrigger": {
			"authority": "EMA",
			"document": "Draft consultation paper",
			"effectiveDate": "not-a-date",
			"url": "https://random.example.org/paper"
		}
	}`)

	s.Equal(http.StatusOK, rec.Code)
	s.True(report.BlockApprove)
	s.Len(report.Issues, 6)
}

func (s *HandlerSuite) TestValidateRejectsMalformedBody() {
	rec, _ := s.validate(`{not json`)
	s.Equal(http.StatusBadRequest, rec.Code)
}
