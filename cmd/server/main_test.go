package main_test

import (
	"io"
	"net/http"
	"testing"

	"github.com/amirasaad/lendrix/pkg/testutils"
	webtestutils "github.com/amirasaad/lendrix/webapi/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"
)

func TestMain(m *testing.M) { testutils.Main(m) }

type MainTestSuite struct {
	webtestutils.E2ETestSuite
}

func TestMainTestSuite(t *testing.T) {
	suite.Run(t, new(MainTestSuite))
}

func (s *MainTestSuite) TestRootRoute() {
	resp := s.MakeRequest(http.MethodGet, "/", "", "")
	s.Equal(fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Equal("lendrix API is running", string(body))
}

func (s *MainTestSuite) TestUnknownRoute() {
	resp := s.MakeRequest(http.MethodGet, "/nope", "", "")
	s.Equal(fiber.StatusNotFound, resp.StatusCode)
	s.DecodeProblem(resp)
}

func (s *MainTestSuite) TestRateLimit() {
	s.Env.Config.RateLimit.MaxRequests = 2
	s.SetupTestApp()

	for i := range 2 {
		resp := s.MakeRequest(http.MethodGet, "/", "", "")
		s.Equal(fiber.StatusOK, resp.StatusCode, "request %d", i+1)
	}
	resp := s.MakeRequest(http.MethodGet, "/", "", "")
	s.Equal(fiber.StatusTooManyRequests, resp.StatusCode)
	s.Equal("Too Many Requests", s.DecodeProblem(resp).Title)
}
