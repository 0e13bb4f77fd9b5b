package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorsSuite struct {
	suite.Suite
}

func (s *ErrorsSuite) TestSentinelIdentity() {
	sentinel := Rule("insufficient balance")
	wrapped := fmt.Errorf("create stake: %w", sentinel)
	s.Require().True(errors.Is(wrapped, sentinel))
	s.Require().False(errors.Is(wrapped, Rule("insufficient balance")))
	s.Require().Equal(KindRule, As(wrapped).Kind)
}

func (s *ErrorsSuite) TestPersistence() {
	s.Require().NoError(Persistence("noop", nil))

	cause := errors.New("connection reset")
	err := Persistence("insert donation", cause)
	s.Require().True(errors.Is(err, cause))
	e := As(err)
	s.Require().Equal(KindPersistence, e.Kind)
	s.Require().Equal(PersistenceMessage, e.Public())
	s.Require().Equal(http.StatusInternalServerError, e.Kind.HTTPStatus())

	nf := NotFound("campaign not found")
	s.Require().Same(nf, Persistence("update campaign", nf))
}

func (s *ErrorsSuite) TestStatus() {
	s.Require().Equal(http.StatusBadRequest, Validation("x").Kind.HTTPStatus())
	s.Require().Equal(http.StatusBadRequest, Rule("x").Kind.HTTPStatus())
	s.Require().Equal(http.StatusNotFound, NotFound("x").Kind.HTTPStatus())
	s.Require().Equal(http.StatusConflict, Conflict("x").Kind.HTTPStatus())
	s.Require().Equal(http.StatusUnauthorized, Unauthorized("x").Kind.HTTPStatus())
	s.Require().Equal("amount must be positive", Validation("amount must be %s", "positive").Public())
}

func (s *ErrorsSuite) TestAsPlainError() {
	e := As(errors.New("boom"))
	s.Require().Equal(KindPersistence, e.Kind)
}

func TestErrors(t *testing.T) {
	suite.Run(t, new(ErrorsSuite))
}
