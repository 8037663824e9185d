package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type TokenSuite struct {
	suite.Suite
	manager *Manager
}

func (s *TokenSuite) SetupTest() {
	var err error
	s.manager, err = NewManager("test-signing-key")
	s.Require().NoError(err)
}

func TestTokenSuite(t *testing.T) {
	suite.Run(t, new(TokenSuite))
}

func (s *TokenSuite) TestRoundTrip() {
	signed, err := s.manager.Issue("u-100", "Dana Reviewer", "instructor", time.Hour)
	s.Require().NoError(err)

	actor, err := s.manager.ValidateToken(signed)
	s.Require().NoError(err)
	s.Equal("u-100", actor.UserID)
	s.Equal("Dana Reviewer", actor.UserName)
	s.Equal("instructor", actor.Role)
	s.False(actor.Automated)
}

func (s *TokenSuite) TestRejectsExpiredToken() {
	signed, err := s.manager.Issue("u-100", "Dana Reviewer", "instructor", -time.Minute)
	s.Require().NoError(err)

	_, err = s.manager.ValidateToken(signed)
	s.Error(err)
}

func (s *TokenSuite) TestRejectsWrongKey() {
	other, err := NewManager("different-key")
	s.Require().NoError(err)

	signed, err := other.Issue("u-100", "Dana Reviewer", "instructor", time.Hour)
	s.Require().NoError(err)

	_, err = s.manager.ValidateToken(signed)
	s.Error(err)
}

func (s *TokenSuite) TestRejectsGarbage() {
	_, err := s.manager.ValidateToken("not.a.token")
	s.Error(err)
}

func (s *TokenSuite) TestRequiresSigningKey() {
	_, err := NewManager("")
	s.Error(err)
}
