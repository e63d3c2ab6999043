package moneyrequest_test

import (
	"context"
	"testing"

	"github.com/amirasaad/lendrix/pkg/config"
	"github.com/amirasaad/lendrix/pkg/currency"
	"github.com/amirasaad/lendrix/pkg/domain"
	"github.com/amirasaad/lendrix/pkg/domain/account"
	"github.com/amirasaad/lendrix/pkg/domain/events"
	"github.com/amirasaad/lendrix/pkg/domain/moneyrequest"
	mrsvc "github.com/amirasaad/lendrix/pkg/service/moneyrequest"
	"github.com/amirasaad/lendrix/pkg/testutils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) { testutils.Main(m) }

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	env              *testutils.Env
	svc              *mrsvc.Service
	aliceID, bobID   uuid.UUID
	aliceUSD, bobUSD uuid.UUID
}

// alice requests money from bob; bob holds 100.00 USD.
func newFixture(t *testing.T) fixture {
	env := testutils.NewEnv(t)
	alice := env.SeedUser(t, "alice")
	bob := env.SeedUser(t, "bob")
	return fixture{
		env:      env,
		svc:      mrsvc.New(env.Uow, env.Config.Settlement, env.Bus, env.Logger),
		aliceID:  alice.ID,
		bobID:    bob.ID,
		aliceUSD: env.SeedAccount(t, alice.ID, currency.USD, "0").ID,
		bobUSD:   env.SeedAccount(t, bob.ID, currency.USD, "100.00").ID,
	}
}

func TestRequestMoney(t *testing.T) {
	f := newFixture(t)

	req, err := f.svc.RequestMoney(context.Background(), "alice", "bob", d("25.00"))
	require.NoError(t, err)
	assert.Equal(t, moneyrequest.StatusPending, req.Status)
	assert.Equal(t, f.aliceID, req.RequesterID)
	assert.Equal(t, f.bobID, req.RecipientID)
	assert.Equal(t, "25.00 USD", req.Amount.String())

	incoming, err := f.svc.GetRequestsForUser(context.Background(), "bob")
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, req.ID, incoming[0].ID)

	outgoing, err := f.svc.GetRequestsByUser(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, outgoing, 1)

	none, err := f.svc.GetRequestsForUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRequestMoney_Failures(t *testing.T) {
	tests := []struct {
		name      string
		requester string
		recipient string
		amount    string
		wantErr   error
	}{
		{"self request", "alice", "alice", "1.00", moneyrequest.ErrSelfRequest},
		{"unknown recipient", "alice", "carol", "1.00", domain.ErrNotFound},
		{"unknown requester", "carol", "bob", "1.00", domain.ErrNotFound},
		{"non-positive amount", "alice", "bob", "0", moneyrequest.ErrAmountMustBePositive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.RequestMoney(context.Background(), tt.requester, tt.recipient, d(tt.amount))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRespondToRequest_Approve(t *testing.T) {
	f := newFixture(t)
	req, err := f.svc.RequestMoney(context.Background(), "alice", "bob", d("25.00"))
	require.NoError(t, err)

	resolved, err := f.svc.RespondToRequest(context.Background(), req.ID, f.bobID, true)
	require.NoError(t, err)
	assert.Equal(t, moneyrequest.StatusApproved, resolved.Status)
	assert.NotNil(t, resolved.ResolvedAt)

	assert.Equal(t, "75.00 USD", f.env.Balance(t, f.bobUSD))
	assert.Equal(t, "25.00 USD", f.env.Balance(t, f.aliceUSD))

	bobTxs := f.env.Transactions(t, f.bobID)
	require.Len(t, bobTxs, 1)
	assert.Equal(t, account.TypeTransfer, bobTxs[0].Type)
	aliceTxs := f.env.Transactions(t, f.aliceID)
	require.Len(t, aliceTxs, 1)
	assert.Equal(t, account.TypeCredit, aliceTxs[0].Type)

	var types []string
	for _, e := range f.env.Bus.Published() {
		types = append(types, e.Type())
	}
	assert.Equal(t, []string{
		events.MoneyRequestedType.String(),
		events.MoneyRequestResolvedType.String(),
		events.TransferCompletedType.String(),
	}, types)

	_, err = f.svc.RespondToRequest(context.Background(), req.ID, f.bobID, true)
	assert.ErrorIs(t, err, moneyrequest.ErrAlreadyProcessed)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	assert.Equal(t, "75.00 USD", f.env.Balance(t, f.bobUSD))
}

func TestRespondToRequest_Reject(t *testing.T) {
	f := newFixture(t)
	req, err := f.svc.RequestMoney(context.Background(), "alice", "bob", d("25.00"))
	require.NoError(t, err)

	resolved, err := f.svc.RespondToRequest(context.Background(), req.ID, f.bobID, false)
	require.NoError(t, err)
	assert.Equal(t, moneyrequest.StatusRejected, resolved.Status)
	assert.Equal(t, "100.00 USD", f.env.Balance(t, f.bobUSD))
	assert.Empty(t, f.env.Transactions(t, f.bobID))

	_, err = f.svc.RespondToRequest(context.Background(), req.ID, f.bobID, true)
	assert.ErrorIs(t, err, moneyrequest.ErrAlreadyProcessed)
}

func TestRespondToRequest_OnlyRecipient(t *testing.T) {
	f := newFixture(t)
	req, err := f.svc.RequestMoney(context.Background(), "alice", "bob", d("25.00"))
	require.NoError(t, err)

	_, err = f.svc.RespondToRequest(context.Background(), req.ID, f.aliceID, true)
	assert.ErrorIs(t, err, moneyrequest.ErrNotRecipient)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, "100.00 USD", f.env.Balance(t, f.bobUSD))
}

func TestRespondToRequest_FailedPaymentStaysPending(t *testing.T) {
	f := newFixture(t)
	req, err := f.svc.RequestMoney(context.Background(), "alice", "bob", d("100.01"))
	require.NoError(t, err)

	_, err = f.svc.RespondToRequest(context.Background(), req.ID, f.bobID, true)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	incoming, err := f.svc.GetRequestsForUser(context.Background(), "bob")
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, moneyrequest.StatusPending, incoming[0].Status)
	assert.Equal(t, "100.00 USD", f.env.Balance(t, f.bobUSD))
	assert.Equal(t, "0.00 USD", f.env.Balance(t, f.aliceUSD))

	// the recipient can still reject it afterwards
	resolved, err := f.svc.RespondToRequest(context.Background(), req.ID, f.bobID, false)
	require.NoError(t, err)
	assert.Equal(t, moneyrequest.StatusRejected, resolved.Status)
}

func TestRespondToRequest_UnknownRequest(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.RespondToRequest(context.Background(), uuid.New(), f.bobID, true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSettlementCurrencyFromConfig(t *testing.T) {
	env := testutils.NewEnv(t)
	alice := env.SeedUser(t, "alice")
	bob := env.SeedUser(t, "bob")
	env.SeedAccount(t, bob.ID, currency.USD, "100.00")
	aliceEUR := env.SeedAccount(t, alice.ID, currency.EUR, "0")
	bobEUR := env.SeedAccount(t, bob.ID, currency.EUR, "40.00")

	svc := mrsvc.New(env.Uow, &config.Settlement{Currency: "EUR"}, env.Bus, env.Logger)
	assert.Equal(t, currency.EUR, svc.SettlementCurrency())

	req, err := svc.RequestMoney(context.Background(), "alice", "bob", d("10"))
	require.NoError(t, err)
	assert.Equal(t, "10.00 EUR", req.Amount.String())

	_, err = svc.RespondToRequest(context.Background(), req.ID, bob.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "30.00 EUR", env.Balance(t, bobEUR.ID))
	assert.Equal(t, "10.00 EUR", env.Balance(t, aliceEUR.ID))
}

func TestApprove_MissingSettlementAccount(t *testing.T) {
	env := testutils.NewEnv(t)
	env.SeedUser(t, "alice")
	bob := env.SeedUser(t, "bob")
	env.SeedAccount(t, bob.ID, currency.USD, "100.00")
	svc := mrsvc.New(env.Uow, env.Config.Settlement, env.Bus, env.Logger)

	req, err := svc.RequestMoney(context.Background(), "alice", "bob", d("10"))
	require.NoError(t, err)
	_, err = svc.RespondToRequest(context.Background(), req.ID, bob.ID, true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "Requester has no USD account")
}
