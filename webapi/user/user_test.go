package user_test

import (
	"net/http"
	"testing"

	"github.com/amirasaad/lendrix/pkg/testutils"
	webtestutils "github.com/amirasaad/lendrix/webapi/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"
)

func TestMain(m *testing.M) { testutils.Main(m) }

type UserTestSuite struct {
	webtestutils.E2ETestSuite
}

func TestUserTestSuite(t *testing.T) {
	suite.Run(t, new(UserTestSuite))
}

func (s *UserTestSuite) TestRegister() {
	resp := s.MakeRequest(http.MethodPost, "/user/register",
		`{"username":"alice","email":"Alice@Example.com","password":"password123","firstname":"Alice","dob":"1990-04-01","currency":"gbp"}`, "")
	s.Require().Equal(fiber.StatusCreated, resp.StatusCode)

	var reg struct {
		User struct {
			ID    string `json:"id"`
			Email string `json:"email"`
			Tag   string `json:"tag"`
			DOB   string `json:"dob"`
		} `json:"user"`
		Account struct {
			Number   string `json:"number"`
			Currency string `json:"currency"`
		} `json:"account"`
	}
	s.Decode(resp, &reg)
	s.NotEmpty(reg.User.ID)
	s.Equal("alice@example.com", reg.User.Email)
	s.Equal("lendrix_alice", reg.User.Tag)
	s.Equal("1990-04-01", reg.User.DOB)
	s.Equal("GBP", reg.Account.Currency)
	s.NotEmpty(reg.Account.Number)
}

func (s *UserTestSuite) TestRegister_Failures() {
	s.CreateTestUser("alice")

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"invalid email", `{"username":"bob","email":"bob","password":"password123"}`, fiber.StatusBadRequest},
		{"short password", `{"username":"bob","email":"bob@example.com","password":"123"}`, fiber.StatusBadRequest},
		{"bad dob", `{"username":"bob","email":"bob@example.com","password":"password123","dob":"01/04/1990"}`, fiber.StatusBadRequest},
		{"unsupported currency", `{"username":"bob","email":"bob@example.com","password":"password123","currency":"XXX"}`, fiber.StatusBadRequest},
		{"username taken", `{"username":"alice","email":"other@example.com","password":"password123"}`, fiber.StatusConflict},
		{"email taken", `{"username":"bob","email":"alice@example.com","password":"password123"}`, fiber.StatusConflict},
		{"malformed json", `{"username":`, fiber.StatusBadRequest},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			resp := s.MakeRequest(http.MethodPost, "/user/register", tt.body, "")
			s.Equal(tt.status, resp.StatusCode)
			s.DecodeProblem(resp)
		})
	}
}

func (s *UserTestSuite) TestLoginAndMe() {
	alice := s.CreateTestUser("alice")

	// username works as identity too
	token := s.LoginUser("alice")

	resp := s.MakeRequest(http.MethodGet, "/user/me", "", token)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	var me struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	s.Decode(resp, &me)
	s.Equal(alice.ID, me.ID)
	s.Equal("alice", me.Username)
}

func (s *UserTestSuite) TestLogin_Unauthorized() {
	s.CreateTestUser("alice")

	for _, body := range []string{
		`{"identity":"alice","password":"wrong-password"}`,
		`{"identity":"nobody@example.com","password":"password123"}`,
	} {
		resp := s.MakeRequest(http.MethodPost, "/auth/login", body, "")
		s.Equal(fiber.StatusUnauthorized, resp.StatusCode)
		s.Equal("Invalid identity or password", s.DecodeProblem(resp).Title)
	}

	resp := s.MakeRequest(http.MethodPost, "/auth/login", `{"identity":"alice"}`, "")
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
}
