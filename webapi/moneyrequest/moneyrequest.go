package moneyrequest

import (
	"context"

	"github.com/amirasaad/lendrix/pkg/config"
	"github.com/amirasaad/lendrix/pkg/domain/moneyrequest"
	"github.com/amirasaad/lendrix/pkg/middleware"
	authsvc "github.com/amirasaad/lendrix/pkg/service/auth"
	mrsvc "github.com/amirasaad/lendrix/pkg/service/moneyrequest"
	"github.com/amirasaad/lendrix/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Routes registers the money request endpoints; all of them require a valid JWT.
func Routes(app *fiber.App, mrSvc *mrsvc.Service, authSvc *authsvc.Service, cfg *config.App) {
	protected := middleware.JwtProtected(cfg.Auth.Jwt)
	app.Post("/requests", protected, RequestMoney(mrSvc, authSvc))
	app.Post("/requests/:id/respond", protected, Respond(mrSvc, authSvc))
	app.Get("/requests/incoming", protected, Incoming(mrSvc, authSvc))
	app.Get("/requests/outgoing", protected, Outgoing(mrSvc, authSvc))
}

func currentUsername(c *fiber.Ctx, authSvc *authsvc.Service) (string, bool, error) {
	token, _ := c.Locals("user").(*jwt.Token)
	name, err := authSvc.CurrentUsername(token)
	if err != nil {
		return "", false, common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
	}
	return name, true, nil
}

// RequestMoney asks another user for money in the settlement currency.
// @Summary Request money
// @Tags requests
// @Accept json
// @Produce json
// @Param request body CreateRequest true "Recipient username and amount"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /requests [post]
// @Security Bearer
func RequestMoney(mrSvc *mrsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		requester, ok, err := currentUsername(c, authSvc)
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[CreateRequest](c)
		if input == nil {
			return err
		}
		req, err := mrSvc.RequestMoney(c.Context(), requester, input.Recipient, input.Amount)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to request money", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Money requested", ToMoneyRequestResponse(req))
	}
}

// Respond approves or rejects a pending request addressed to the caller.
// Approval pays the requester from the caller's settlement account.
// @Summary Respond to a money request
// @Description Approving moves the amount from the caller's settlement account to the requester. Only the recipient may respond, and only while the request is pending.
// @Tags requests
// @Accept json
// @Produce json
// @Param id path string true "Money request ID"
// @Param request body RespondRequest true "Approve or reject"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails "Caller is not the recipient"
// @Failure 404 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails "Request already processed"
// @Failure 422 {object} common.ProblemDetails "Insufficient funds"
// @Router /requests/{id}/respond [post]
// @Security Bearer
func Respond(mrSvc *mrsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		requestID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid request ID", nil, "Request ID must be a valid UUID", fiber.StatusBadRequest)
		}
		input, err := common.BindAndValidate[RespondRequest](c)
		if input == nil {
			return err
		}
		req, err := mrSvc.RespondToRequest(c.Context(), requestID, userID, *input.Approve)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to respond to request", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Request "+string(req.Status), ToMoneyRequestResponse(req))
	}
}

// Incoming lists the requests addressed to the caller.
// @Summary Incoming money requests
// @Tags requests
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Router /requests/incoming [get]
// @Security Bearer
func Incoming(mrSvc *mrsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return list(mrSvc.GetRequestsForUser, authSvc)
}

// Outgoing lists the requests the caller has made.
// @Summary Outgoing money requests
// @Tags requests
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Router /requests/outgoing [get]
// @Security Bearer
func Outgoing(mrSvc *mrsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return list(mrSvc.GetRequestsByUser, authSvc)
}

type lister func(ctx context.Context, username string) ([]*moneyrequest.MoneyRequest, error)

func list(fn lister, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username, ok, err := currentUsername(c, authSvc)
		if !ok {
			return err
		}
		reqs, err := fn(c.Context(), username)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list requests", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Requests fetched", toResponses(reqs))
	}
}
