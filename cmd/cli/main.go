package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/amirasaad/lendrix/infra/initializer"
	"github.com/amirasaad/lendrix/pkg/app"
	"github.com/amirasaad/lendrix/pkg/config"
	"github.com/amirasaad/lendrix/pkg/currency"
	accountsvc "github.com/amirasaad/lendrix/pkg/service/account"
	"github.com/shopspring/decimal"
)

const usage = `Usage: cli <command> [arguments]
Commands:
  accounts <username>                 list a user's accounts
  deposit <username> <code> <amount>  credit a user's account
  limits <username> <amount>          check a transfer against the caps
  rates                               print the exchange rate table`

var errUsage = errors.New(usage)

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		return
	}
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Println("Failed to load configuration:", err)
		os.Exit(1)
	}
	deps, cleanup, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		fmt.Println("Failed to initialize:", err)
		os.Exit(1)
	}
	defer cleanup()

	if err := run(context.Background(), app.New(deps, cfg), os.Args[1:], os.Stdout); err != nil {
		fmt.Println(err)
		cleanup()
		os.Exit(1)
	}
}

func run(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	switch args[0] {
	case "accounts":
		if len(args) < 2 {
			return errUsage
		}
		u, err := a.UserService.GetByUsername(ctx, args[1])
		if err != nil {
			return err
		}
		accounts, err := a.AccountService.ListAccounts(ctx, u.ID)
		if err != nil {
			return err
		}
		for _, acc := range accounts {
			fmt.Fprintf(out, "%d\t%s\n", acc.Number, acc.Balance)
		}
	case "deposit":
		if len(args) < 4 {
			return errUsage
		}
		amount, err := decimal.NewFromString(args[3])
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
		u, err := a.UserService.GetByUsername(ctx, args[1])
		if err != nil {
			return err
		}
		tx, err := a.AccountService.Deposit(ctx, u.ID, accountsvc.DepositInput{
			AccountCode:   args[2],
			Amount:        amount,
			PaymentMethod: "operator",
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Deposited %s %s (transaction %s)\n", tx.Amount.StringFixed(currency.Decimals(tx.Currency)), tx.Currency, tx.ID)
	case "limits":
		if len(args) < 3 {
			return errUsage
		}
		amount, err := decimal.NewFromString(args[2])
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
		u, err := a.UserService.GetByUsername(ctx, args[1])
		if err != nil {
			return err
		}
		daily, err := a.LimitService.IsWithinDailyLimit(ctx, u.ID, amount)
		if err != nil {
			return err
		}
		weekly, err := a.LimitService.IsWithinWeeklyLimit(ctx, u.ID, amount)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "daily: %t\nweekly: %t\n", daily, weekly)
	case "rates":
		table, err := a.ExchangeService.Rates(ctx)
		if err != nil {
			return err
		}
		codes := make([]string, 0, len(table.Rates))
		for code := range table.Rates {
			codes = append(codes, code.String())
		}
		sort.Strings(codes)
		fmt.Fprintf(out, "base %s (%s)\n", table.Base, table.Source)
		for _, code := range codes {
			fmt.Fprintf(out, "%s\t%s\n", code, table.Rates[currency.Code(code)])
		}
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
	return nil
}
