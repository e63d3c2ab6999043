package account_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/amirasaad/lendrix/pkg/testutils"
	webtestutils "github.com/amirasaad/lendrix/webapi/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

func TestMain(m *testing.M) { testutils.Main(m) }

type money struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type accountResp struct {
	ID       string `json:"id"`
	Number   string `json:"number"`
	Currency string `json:"currency"`
	Balance  money  `json:"balance"`
}

type AccountTestSuite struct {
	webtestutils.E2ETestSuite
}

func TestAccountTestSuite(t *testing.T) {
	suite.Run(t, new(AccountTestSuite))
}

func (s *AccountTestSuite) balances(u *webtestutils.TestUser) map[string]string {
	resp := s.MakeRequest(http.MethodGet, "/accounts", "", u.Token)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	var accounts []accountResp
	s.Decode(resp, &accounts)
	out := make(map[string]string, len(accounts))
	for _, a := range accounts {
		out[a.Currency] = a.Balance.Amount
	}
	return out
}

func (s *AccountTestSuite) TestCreateAccount() {
	alice := s.CreateTestUser("alice")

	resp := s.MakeRequest(http.MethodPost, "/accounts", `{"currency":"eur"}`, alice.Token)
	s.Equal(fiber.StatusCreated, resp.StatusCode)
	var created accountResp
	s.Decode(resp, &created)
	s.Equal("EUR", created.Currency)
	s.Equal(money{Amount: "0.00", Currency: "EUR"}, created.Balance)

	resp = s.MakeRequest(http.MethodPost, "/accounts", `{"currency":"EUR"}`, alice.Token)
	s.Equal(fiber.StatusConflict, resp.StatusCode)

	resp = s.MakeRequest(http.MethodPost, "/accounts", `{"currency":"XYZ"}`, alice.Token)
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)

	resp = s.MakeRequest(http.MethodPost, "/accounts", `{}`, alice.Token)
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
	s.Equal("Validation failed", s.DecodeProblem(resp).Title)

	s.Equal(map[string]string{"USD": "0.00", "EUR": "0.00"}, s.balances(alice))
}

func (s *AccountTestSuite) TestRequiresToken() {
	resp := s.MakeRequest(http.MethodGet, "/accounts", "", "")
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)

	resp = s.MakeRequest(http.MethodGet, "/accounts", "", "not-a-jwt")
	s.Equal(fiber.StatusUnauthorized, resp.StatusCode)
}

func (s *AccountTestSuite) TestDeposit() {
	alice := s.CreateTestUser("alice")

	resp := s.MakeRequest(http.MethodPost, "/accounts/deposit",
		`{"account_code":"USD","amount":"10.005","payment_method":"card"}`, alice.Token)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	var tx struct {
		Type        string `json:"type"`
		Description string `json:"description"`
	}
	s.Decode(resp, &tx)
	s.Equal("DEPOSIT", tx.Type)
	s.Equal("Deposit via card", tx.Description)
	s.Equal("10.01", s.balances(alice)["USD"])

	resp = s.MakeRequest(http.MethodPost, "/accounts/deposit", `{"account_code":"GBP","amount":5}`, alice.Token)
	s.Equal(fiber.StatusNotFound, resp.StatusCode)

	resp = s.MakeRequest(http.MethodPost, "/accounts/deposit", `{"account_code":"USD","amount":-5}`, alice.Token)
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
}

func (s *AccountTestSuite) TestTransfer() {
	alice := s.CreateTestUser("alice")
	bob := s.CreateTestUser("bob")
	s.Deposit(alice, "USD", "100")

	body := fmt.Sprintf(`{"sender_code":"USD","recipient_account_number":%q,"amount":"40.00"}`, bob.AccountNumber)
	resp := s.MakeRequest(http.MethodPost, "/accounts/transfer", body, alice.Token)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)

	s.Equal("60.00", s.balances(alice)["USD"])
	s.Equal("40.00", s.balances(bob)["USD"])

	resp = s.MakeRequest(http.MethodGet, "/accounts/transactions", "", bob.Token)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	var txs []struct {
		Type   string `json:"type"`
		Amount string `json:"amount"`
	}
	s.Decode(resp, &txs)
	s.Require().Len(txs, 1)
	s.Equal("CREDIT", txs[0].Type)
	s.True(decimal.RequireFromString("40").Equal(decimal.RequireFromString(txs[0].Amount)))
}

func (s *AccountTestSuite) TestListAccountTransactions() {
	alice := s.CreateTestUser("alice")
	s.Deposit(alice, "USD", "100")
	resp := s.MakeRequest(http.MethodPost, "/accounts", `{"currency":"EUR"}`, alice.Token)
	s.Require().Equal(fiber.StatusCreated, resp.StatusCode)

	type tx struct {
		Type      string `json:"type"`
		AccountID string `json:"account_id"`
	}
	resp = s.MakeRequest(http.MethodGet, "/accounts/usd/transactions", "", alice.Token)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	var usd []tx
	s.Decode(resp, &usd)
	s.Require().Len(usd, 1)
	s.Equal("DEPOSIT", usd[0].Type)
	s.NotEmpty(usd[0].AccountID)

	resp = s.MakeRequest(http.MethodGet, "/accounts/EUR/transactions", "", alice.Token)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	var eur []tx
	s.Decode(resp, &eur)
	s.Empty(eur)

	resp = s.MakeRequest(http.MethodGet, "/accounts/GBP/transactions", "", alice.Token)
	s.Equal(fiber.StatusNotFound, resp.StatusCode)
}

func (s *AccountTestSuite) TestTransfer_Failures() {
	alice := s.CreateTestUser("alice")
	bob := s.CreateTestUser("bob")
	s.Deposit(alice, "USD", "100")

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{
			name:   "insufficient funds",
			body:   fmt.Sprintf(`{"sender_code":"USD","recipient_account_number":%q,"amount":"100.01"}`, bob.AccountNumber),
			status: fiber.StatusUnprocessableEntity,
		},
		{
			name:   "unknown recipient",
			body:   `{"sender_code":"USD","recipient_account_number":"42","amount":"1"}`,
			status: fiber.StatusNotFound,
		},
		{
			name:   "non-numeric recipient",
			body:   `{"sender_code":"USD","recipient_account_number":"abc","amount":"1"}`,
			status: fiber.StatusBadRequest,
		},
		{
			name:   "missing sender code",
			body:   fmt.Sprintf(`{"recipient_account_number":%q,"amount":"1"}`, bob.AccountNumber),
			status: fiber.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			resp := s.MakeRequest(http.MethodPost, "/accounts/transfer", tt.body, alice.Token)
			s.Equal(tt.status, resp.StatusCode)
			s.DecodeProblem(resp)
		})
	}
	s.Equal("100.00", s.balances(alice)["USD"])
}

func (s *AccountTestSuite) TestTransfer_DailyLimit() {
	alice := s.CreateTestUser("alice")
	bob := s.CreateTestUser("bob")
	s.Deposit(alice, "USD", "3000")

	body := func(amount string) string {
		return fmt.Sprintf(`{"sender_code":"USD","recipient_account_number":%q,"amount":%q}`, bob.AccountNumber, amount)
	}
	resp := s.MakeRequest(http.MethodPost, "/accounts/transfer", body("2000.00"), alice.Token)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)

	resp = s.MakeRequest(http.MethodPost, "/accounts/transfer", body("0.01"), alice.Token)
	s.Equal(fiber.StatusForbidden, resp.StatusCode)
	s.Equal("Daily transfer limit exceeded.", s.DecodeProblem(resp).Detail)
	s.Equal("1000.00", s.balances(alice)["USD"])
}

func (s *AccountTestSuite) TestConvert() {
	alice := s.CreateTestUser("alice")
	s.Deposit(alice, "USD", "100")
	resp := s.MakeRequest(http.MethodPost, "/accounts", `{"currency":"EUR"}`, alice.Token)
	s.Require().Equal(fiber.StatusCreated, resp.StatusCode)

	resp = s.MakeRequest(http.MethodPost, "/accounts/convert",
		`{"from_currency":"USD","to_currency":"EUR","amount":"100"}`, alice.Token)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	var result struct {
		Credited money  `json:"credited"`
		Rate     string `json:"rate"`
	}
	s.Decode(resp, &result)
	s.Equal(money{Amount: "90.00", Currency: "EUR"}, result.Credited)
	s.Equal(map[string]string{"USD": "0.00", "EUR": "90.00"}, s.balances(alice))

	resp = s.MakeRequest(http.MethodPost, "/accounts/convert",
		`{"from_currency":"EUR","to_currency":"EUR","amount":"1"}`, alice.Token)
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
}

func (s *AccountTestSuite) TestGetRates() {
	resp := s.MakeRequest(http.MethodGet, "/accounts/rates", "", "")
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	var table struct {
		Base  string            `json:"base"`
		Rates map[string]string `json:"rates"`
	}
	s.Decode(resp, &table)
	s.Equal("USD", table.Base)
	s.True(decimal.RequireFromString("0.90").Equal(decimal.RequireFromString(table.Rates["EUR"])))
}
