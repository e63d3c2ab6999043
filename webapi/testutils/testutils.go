// Package testutils runs the HTTP API against a fresh in-memory database for
// handler tests.
package testutils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"

	infraprovider "github.com/amirasaad/lendrix/infra/provider"
	"github.com/amirasaad/lendrix/pkg/app"
	"github.com/amirasaad/lendrix/pkg/currency"
	"github.com/amirasaad/lendrix/pkg/testutils"
	"github.com/amirasaad/lendrix/webapi"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"
)

// E2ETestSuite gives every test its own database and Fiber app.
type E2ETestSuite struct {
	suite.Suite
	Env     *testutils.Env
	Lendrix *app.App
	app     *fiber.App
}

// TestUser is a user registered through the API.
type TestUser struct {
	ID            string
	Username      string
	Email         string
	AccountNumber string
	Token         string
}

// SetupTest starts from an empty database.
func (s *E2ETestSuite) SetupTest() {
	s.Env = testutils.NewEnv(s.T())
	s.SetupTestApp()
}

// SetupTestApp rebuilds the services and routes from s.Env, picking up any
// change made to s.Env.Config.
func (s *E2ETestSuite) SetupTestApp() {
	s.Lendrix = app.New(&app.Deps{
		Uow:          s.Env.Uow,
		Numbers:      s.Env.Numbers,
		ExchangeRate: infraprovider.NewStaticExchangeRate(currency.USD, infraprovider.DefaultStaticRates()),
		EventBus:     s.Env.Bus,
		Logger:       s.Env.Logger,
	}, s.Env.Config)
	s.app = webapi.SetupApp(s.Lendrix)
}

// MakeRequest is a helper for making HTTP requests in tests
func (s *E2ETestSuite) MakeRequest(method, path, body, token string) *http.Response {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// Decode reads the success envelope and unmarshals its data into out.
func (s *E2ETestSuite) Decode(resp *http.Response, out any) {
	var envelope struct {
		Status  int             `json:"status"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&envelope))
	if out != nil {
		s.Require().NoError(json.Unmarshal(envelope.Data, out))
	}
}

// Problem is the RFC 9457 body of a failed request.
type Problem struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

// DecodeProblem checks the problem+json content type and returns the body.
func (s *E2ETestSuite) DecodeProblem(resp *http.Response) Problem {
	s.Require().Equal("application/problem+json", resp.Header.Get(fiber.HeaderContentType))
	var p Problem
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&p))
	return p
}

// LoginUser makes an actual HTTP request to login and returns the JWT token
func (s *E2ETestSuite) LoginUser(identity string) string {
	body := fmt.Sprintf(`{"identity":%q,"password":%q}`, identity, testutils.Password)
	resp := s.MakeRequest(http.MethodPost, "/auth/login", body, "")
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	var data struct {
		Token string `json:"token"`
	}
	s.Decode(resp, &data)
	s.Require().NotEmpty(data.Token)
	return data.Token
}

// CreateTestUser registers username through the API with a USD account and
// logs in.
func (s *E2ETestSuite) CreateTestUser(username string) *TestUser {
	email := username + "@example.com"
	body := fmt.Sprintf(`{"username":%q,"email":%q,"password":%q}`, username, email, testutils.Password)
	resp := s.MakeRequest(http.MethodPost, "/user/register", body, "")
	s.Require().Equal(fiber.StatusCreated, resp.StatusCode)

	var data struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		Account struct {
			Number string `json:"number"`
		} `json:"account"`
	}
	s.Decode(resp, &data)
	return &TestUser{
		ID:            data.User.ID,
		Username:      username,
		Email:         email,
		AccountNumber: data.Account.Number,
		Token:         s.LoginUser(email),
	}
}

// Deposit funds the user's account in code through the API.
func (s *E2ETestSuite) Deposit(u *TestUser, code, amount string) {
	body := fmt.Sprintf(`{"account_code":%q,"amount":%q}`, code, amount)
	resp := s.MakeRequest(http.MethodPost, "/accounts/deposit", body, u.Token)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
}
