package user

import (
	"time"

	"github.com/amirasaad/lendrix/pkg/config"
	"github.com/amirasaad/lendrix/pkg/middleware"
	authsvc "github.com/amirasaad/lendrix/pkg/service/auth"
	usersvc "github.com/amirasaad/lendrix/pkg/service/user"
	"github.com/amirasaad/lendrix/webapi/common"
	"github.com/gofiber/fiber/v2"
)

func Routes(app *fiber.App, userSvc *usersvc.Service, authSvc *authsvc.Service, cfg *config.App) {
	app.Post("/user/register", Register(userSvc))
	app.Get("/user/me", middleware.JwtProtected(cfg.Auth.Jwt), Me(userSvc, authSvc))
}

// Register creates a user together with their first account.
// @Summary Register a new user
// @Tags users
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "User registration data"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Router /user/register [post]
func Register(userSvc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[RegisterRequest](c)
		if input == nil {
			return err
		}
		var dob time.Time
		if input.DOB != "" {
			// format already checked by the validator
			dob, _ = time.Parse(time.DateOnly, input.DOB)
		}
		reg, err := userSvc.Register(c.Context(), usersvc.RegisterInput{
			Username:        input.Username,
			Email:           input.Email,
			Password:        input.Password,
			Firstname:       input.Firstname,
			Lastname:        input.Lastname,
			DOB:             dob,
			AccountCurrency: input.Currency,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't create user", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Created user", toRegistrationResponse(reg.User, reg.Account))
	}
}

// Me returns the authenticated user.
// @Summary Current user
// @Tags users
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /user/me [get]
// @Security Bearer
func Me(userSvc *usersvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := common.CurrentUserID(c, authSvc)
		if !ok {
			return err
		}
		u, err := userSvc.GetUser(c.Context(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "User not found", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "User found", ToUserResponse(u))
	}
}
