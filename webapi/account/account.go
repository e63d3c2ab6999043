package account

import (
	"github.com/amirasaad/lendrix/pkg/config"
	"github.com/amirasaad/lendrix/pkg/middleware"
	accountsvc "github.com/amirasaad/lendrix/pkg/service/account"
	authsvc "github.com/amirasaad/lendrix/pkg/service/auth"
	"github.com/amirasaad/lendrix/pkg/service/exchange"
	"github.com/amirasaad/lendrix/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// Routes registers the ledger endpoints. Everything except the rate table
// requires a valid JWT.
//
// Routes:
//   - GET    /accounts              : List the caller's accounts.
//   - POST   /accounts              : Open an account in a currency.
//   - GET    /accounts/rates        : Current exchange rate table.
//   - POST   /accounts/transfer     : Send money to another account number.
//   - POST   /accounts/convert      : Move money between own currencies.
//   - POST   /accounts/deposit      : Credit money from outside the ledger.
//   - GET    /accounts/transactions : The caller's transaction history.
//   - GET    /accounts/:code/transactions : History of one account.
func Routes(
	app *fiber.App,
	accountSvc *accountsvc.Service,
	exchangeSvc *exchange.Service,
	authSvc *authsvc.Service,
	cfg *config.App,
) {
	protected := middleware.JwtProtected(cfg.Auth.Jwt)
	app.Get("/accounts/rates", GetRates(exchangeSvc))
	app.Get("/accounts", protected, ListAccounts(accountSvc, authSvc))
	app.Post("/accounts", protected, CreateAccount(accountSvc, authSvc))
	app.Post("/accounts/transfer", protected, Transfer(accountSvc, authSvc))
	app.Post("/accounts/convert", protected, Convert(exchangeSvc, authSvc))
	app.Post("/accounts/deposit", protected, Deposit(accountSvc, authSvc))
	app.Get("/accounts/transactions", protected, ListTransactions(accountSvc, authSvc))
	app.Get("/accounts/:code/transactions", protected, ListAccountTransactions(accountSvc, authSvc))
}

// ListAccounts returns the caller's accounts.
// @Summary List accounts
// @Tags accounts
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Router /accounts [get]
// @Security Bearer
func ListAccounts(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		accounts, err := accountSvc.ListAccounts(c.Context(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list accounts", err)
		}
		resp := make([]AccountResponse, 0, len(accounts))
		for _, a := range accounts {
			resp = append(resp, ToAccountResponse(a))
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Accounts fetched", resp)
	}
}

// CreateAccount opens a zero-balance account for the caller.
// @Summary Create a new account
// @Description Opens an account in the requested currency. A user holds at most one account per currency.
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body CreateAccountRequest true "Account currency"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Router /accounts [post]
// @Security Bearer
func CreateAccount(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[CreateAccountRequest](c)
		if input == nil {
			return err
		}
		a, err := accountSvc.CreateAccount(c.Context(), userID, input.Currency)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to create account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Account created", ToAccountResponse(a))
	}
}

// Transfer sends money to another user's account.
// @Summary Transfer funds
// @Description Debits the caller's account in sender_code and credits the account with recipient_account_number. Subject to daily and weekly transfer caps.
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body TransferRequest true "Transfer details"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails "Transfer limit exceeded"
// @Failure 404 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails "Insufficient funds"
// @Router /accounts/transfer [post]
// @Security Bearer
func Transfer(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[TransferRequest](c)
		if input == nil {
			return err
		}
		result, err := accountSvc.Transfer(c.Context(), userID, accountsvc.TransferInput{
			SenderCode:             input.SenderCode,
			RecipientAccountNumber: input.RecipientAccountNumber,
			Amount:                 input.Amount,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Transfer failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transfer successful", TransferResponse{
			Transaction: ToTransactionResponse(result.Debit),
		})
	}
}

// Convert exchanges money between two of the caller's accounts.
// @Summary Convert between own accounts
// @Description Debits the from_currency account and credits the to_currency account at the provider rate, less the conversion fee.
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body ConvertRequest true "Conversion details"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails "Insufficient funds"
// @Failure 500 {object} common.ProblemDetails "Rate provider unavailable"
// @Router /accounts/convert [post]
// @Security Bearer
func Convert(exchangeSvc *exchange.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[ConvertRequest](c)
		if input == nil {
			return err
		}
		result, err := exchangeSvc.Convert(c.Context(), userID, exchange.ConvertInput{
			FromCurrency: input.FromCurrency,
			ToCurrency:   input.ToCurrency,
			Amount:       input.Amount,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Conversion failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Conversion successful", toConversionResponse(result))
	}
}

// Deposit credits the caller's account in account_code.
// @Summary Deposit funds
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body DepositRequest true "Deposit details"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /accounts/deposit [post]
// @Security Bearer
func Deposit(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[DepositRequest](c)
		if input == nil {
			return err
		}
		tx, err := accountSvc.Deposit(c.Context(), userID, accountsvc.DepositInput{
			AccountCode:   input.AccountCode,
			Amount:        input.Amount,
			PaymentMethod: input.PaymentMethod,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to deposit", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Deposit successful", ToTransactionResponse(tx))
	}
}

// ListTransactions returns every transaction the caller owns.
// @Summary Transaction history
// @Tags accounts
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Router /accounts/transactions [get]
// @Security Bearer
func ListTransactions(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		txs, err := accountSvc.ListTransactions(c.Context(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list transactions", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transactions fetched", ToTransactionResponses(txs))
	}
}

// ListAccountTransactions returns the history of the caller's account in code.
// @Summary Account history
// @Tags accounts
// @Produce json
// @Param code path string true "Account currency code"
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /accounts/{code}/transactions [get]
// @Security Bearer
func ListAccountTransactions(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		txs, err := accountSvc.ListAccountTransactions(c.Context(), userID, c.Params("code"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list transactions", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transactions fetched", ToTransactionResponses(txs))
	}
}

// GetRates returns the exchange rate table relative to its base currency.
// @Summary Exchange rates
// @Tags accounts
// @Produce json
// @Success 200 {object} common.Response
// @Failure 500 {object} common.ProblemDetails
// @Router /accounts/rates [get]
func GetRates(exchangeSvc *exchange.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		table, err := exchangeSvc.Rates(c.Context())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to fetch exchange rates", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Exchange rates fetched", table)
	}
}
