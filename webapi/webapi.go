// Package webapi exposes the banking services over HTTP. Handlers live in
// sub-packages per area:
// - account: accounts, transfers, conversion, deposits and rates
// - auth: login
// - card: card issue, top-up, spend and removal
// - moneyrequest: requests between users
// - user: registration and profile
package webapi

import (
	"errors"
	"strings"

	"github.com/amirasaad/lendrix/pkg/app"
	accountweb "github.com/amirasaad/lendrix/webapi/account"
	authweb "github.com/amirasaad/lendrix/webapi/auth"
	cardweb "github.com/amirasaad/lendrix/webapi/card"
	"github.com/amirasaad/lendrix/webapi/common"
	moneyrequestweb "github.com/amirasaad/lendrix/webapi/moneyrequest"
	userweb "github.com/amirasaad/lendrix/webapi/user"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// SetupApp Initialize Fiber with custom configuration
func SetupApp(a *app.App) *fiber.App {
	fiberApp := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})

	// Behind a proxy the client is the first X-Forwarded-For hop, then
	// X-Real-IP, then the peer address.
	fiberApp.Use(limiter.New(limiter.Config{
		Max:        a.Config.RateLimit.MaxRequests,
		Expiration: a.Config.RateLimit.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
				if commaIndex := strings.Index(forwardedFor, ","); commaIndex != -1 {
					return strings.TrimSpace(forwardedFor[:commaIndex])
				}
				return strings.TrimSpace(forwardedFor)
			}
			if realIP := c.Get("X-Real-IP"); realIP != "" {
				return realIP
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return common.ProblemDetailsJSON(
				c,
				"Too Many Requests",
				errors.New("rate limit exceeded"),
				fiber.StatusTooManyRequests,
			)
		},
	}))
	fiberApp.Use(recover.New())
	if a.Config.Env != "test" {
		fiberApp.Use(logger.New())
	}

	fiberApp.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("lendrix API is running")
	})

	accountweb.Routes(fiberApp, a.AccountService, a.ExchangeService, a.AuthService, a.Config)
	authweb.Routes(fiberApp, a.AuthService)
	cardweb.Routes(fiberApp, a.CardService, a.AuthService, a.Config)
	moneyrequestweb.Routes(fiberApp, a.MoneyRequestService, a.AuthService, a.Config)
	userweb.Routes(fiberApp, a.UserService, a.AuthService, a.Config)
	return fiberApp
}
