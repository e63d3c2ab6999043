package card

import (
	"context"

	"github.com/amirasaad/lendrix/pkg/config"
	"github.com/amirasaad/lendrix/pkg/domain/account"
	"github.com/amirasaad/lendrix/pkg/middleware"
	authsvc "github.com/amirasaad/lendrix/pkg/service/auth"
	cardsvc "github.com/amirasaad/lendrix/pkg/service/card"
	accountweb "github.com/amirasaad/lendrix/webapi/account"
	"github.com/amirasaad/lendrix/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Routes registers the card endpoints; all of them require a valid JWT.
func Routes(app *fiber.App, cardSvc *cardsvc.Service, authSvc *authsvc.Service, cfg *config.App) {
	protected := middleware.JwtProtected(cfg.Auth.Jwt)
	app.Get("/card", protected, GetCard(cardSvc, authSvc))
	app.Get("/card/transactions", protected, ListTransactions(cardSvc, authSvc))
	app.Post("/card", protected, CreateCard(cardSvc, authSvc))
	app.Post("/card/credit", protected, Credit(cardSvc, authSvc))
	app.Post("/card/debit", protected, Debit(cardSvc, authSvc))
	app.Delete("/card", protected, DeleteCard(cardSvc, authSvc))
}

// CreateCard issues the caller's card, funded from their account in currency.
// @Summary Issue a card
// @Tags cards
// @Accept json
// @Produce json
// @Param request body CreateCardRequest true "Card funding details"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails
// @Router /card [post]
// @Security Bearer
func CreateCard(cardSvc *cardsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[CreateCardRequest](c)
		if input == nil {
			return err
		}
		issued, err := cardSvc.CreateCard(c.Context(), userID, input.Amount, input.BillingAddress, input.PIN, input.Currency)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to create card", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Card created", toIssuedCardResponse(issued))
	}
}

// GetCard returns the caller's card with the number masked.
// @Summary Get card
// @Tags cards
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /card [get]
// @Security Bearer
func GetCard(cardSvc *cardsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		found, err := cardSvc.GetCard(c.Context(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Card not found", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Card fetched", ToCardResponse(found))
	}
}

type moveFunc func(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*account.Transaction, error)

func move(authSvc *authsvc.Service, fn moveFunc, failure, success string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[AmountRequest](c)
		if input == nil {
			return err
		}
		tx, err := fn(c.Context(), userID, input.Amount)
		if err != nil {
			return common.ProblemDetailsJSON(c, failure, err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, success, accountweb.ToTransactionResponse(tx))
	}
}

// Credit tops the card up from the matching account.
// @Summary Credit card
// @Tags cards
// @Accept json
// @Produce json
// @Param request body AmountRequest true "Amount"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /card/credit [post]
// @Security Bearer
func Credit(cardSvc *cardsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return move(authSvc, cardSvc.CreditCard, "Failed to credit card", "Card credited")
}

// Debit spends from the card and the matching account.
// @Summary Debit card
// @Tags cards
// @Accept json
// @Produce json
// @Param request body AmountRequest true "Amount"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails "Insufficient funds"
// @Router /card/debit [post]
// @Security Bearer
func Debit(cardSvc *cardsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return move(authSvc, cardSvc.DebitCard, "Failed to debit card", "Card debited")
}

// DeleteCard removes the caller's card. Any remaining card balance stays on
// the deleted card.
// @Summary Delete card
// @Tags cards
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /card [delete]
// @Security Bearer
func DeleteCard(cardSvc *cardsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		if err := cardSvc.DeleteCard(c.Context(), userID); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to delete card", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Card deleted", nil)
	}
}

// ListTransactions returns the card-side history of the caller's card.
// @Summary Card history
// @Tags cards
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /card/transactions [get]
// @Security Bearer
func ListTransactions(cardSvc *cardsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		txs, err := cardSvc.ListCardTransactions(c.Context(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list card transactions", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Card transactions fetched", accountweb.ToTransactionResponses(txs))
	}
}
