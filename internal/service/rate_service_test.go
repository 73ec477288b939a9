package service

import (
	"errors"
	"testing"

	"carebill/internal/model"
	"carebill/pkg/caldate"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) caldate.Date {
	t.Helper()
	d, err := caldate.Parse(s)
	require.NoError(t, err)
	return d
}

func TestResolveRatePayerWinsOverDefault(t *testing.T) {
	svc := newServices(t)
	payer := seedPayer(t, svc.db)
	client := seedClient(t, svc.db, &payer.ID)

	seedRate(t, svc.db, nil, model.ServicePersonalCare, "28.00", "2026-01-01")
	seedRate(t, svc.db, &payer.ID, model.ServicePersonalCare, "33.00", "2026-01-01")

	resolved, err := svc.rate.ResolveRate(testCtx(), client, model.ServicePersonalCare, mustDate(t, "2026-06-15"))
	require.NoError(t, err)
	assert.True(t, resolved.Rate.Equal(decimal.RequireFromString("33.00")),
		"expected payer rate, got %s", resolved.Rate)
}

func TestResolveRateLatestEffectiveWins(t *testing.T) {
	svc := newServices(t)
	payer := seedPayer(t, svc.db)
	client := seedClient(t, svc.db, &payer.ID)

	seedRate(t, svc.db, &payer.ID, model.ServicePersonalCare, "30.00", "2025-01-01")
	seedRate(t, svc.db, &payer.ID, model.ServicePersonalCare, "33.00", "2026-03-01")
	// Future-dated card never applies yet.
	seedRate(t, svc.db, &payer.ID, model.ServicePersonalCare, "36.00", "2027-01-01")

	resolved, err := svc.rate.ResolveRate(testCtx(), client, model.ServicePersonalCare, mustDate(t, "2026-06-15"))
	require.NoError(t, err)
	assert.True(t, resolved.Rate.Equal(decimal.RequireFromString("33.00")),
		"expected most recent effective rate, got %s", resolved.Rate)

	// Before the March card took effect the older one still governs.
	resolved, err = svc.rate.ResolveRate(testCtx(), client, model.ServicePersonalCare, mustDate(t, "2026-02-28"))
	require.NoError(t, err)
	assert.True(t, resolved.Rate.Equal(decimal.RequireFromString("30.00")))
}

func TestResolveRateFallsBackToPrivateDefault(t *testing.T) {
	svc := newServices(t)
	payer := seedPayer(t, svc.db)
	client := seedClient(t, svc.db, &payer.ID)

	// Payer contracts cover skilled nursing only; companion care falls
	// through to the house default.
	seedRate(t, svc.db, &payer.ID, model.ServiceSkilledNursing, "55.00", "2026-01-01")
	seedRate(t, svc.db, nil, model.ServiceCompanionCare, "26.00", "2026-01-01")

	resolved, err := svc.rate.ResolveRate(testCtx(), client, model.ServiceCompanionCare, mustDate(t, "2026-06-15"))
	require.NoError(t, err)
	assert.True(t, resolved.Rate.Equal(decimal.RequireFromString("26.00")))
}

func TestResolveRateNotFound(t *testing.T) {
	svc := newServices(t)
	client := seedClient(t, svc.db, nil)

	_, err := svc.rate.ResolveRate(testCtx(), client, model.ServiceRespite, mustDate(t, "2026-06-15"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRateNotFound))
}

func TestHourlyRatePer15MinNormalization(t *testing.T) {
	quarter := ResolvedRate{Rate: decimal.RequireFromString("8.25"), UnitType: model.UnitPer15Min}
	assert.True(t, quarter.HourlyRate().Equal(decimal.RequireFromString("33.00")))

	hourly := ResolvedRate{Rate: decimal.RequireFromString("33.00"), UnitType: model.UnitHourly}
	assert.True(t, hourly.HourlyRate().Equal(decimal.RequireFromString("33.00")))
}

func TestCreateRateCardValidation(t *testing.T) {
	svc := newServices(t)

	_, err := svc.rate.CreateRateCard(testCtx(), CreateRateCardRequest{
		ServiceType:   model.ServicePersonalCare,
		Rate:          "0",
		EffectiveFrom: "2026-01-01",
	}, "")
	assert.True(t, errors.Is(err, ErrValidation), "zero rate must be rejected")

	_, err = svc.rate.CreateRateCard(testCtx(), CreateRateCardRequest{
		ServiceType:   model.ServicePersonalCare,
		Rate:          "33.00",
		EffectiveFrom: "01/15/2026",
	}, "")
	assert.Error(t, err, "non-ISO effective date must be rejected")
}

func TestCreateRateCardRejectsDuplicateEffectiveDate(t *testing.T) {
	svc := newServices(t)

	req := CreateRateCardRequest{
		ServiceType:   model.ServicePersonalCare,
		Rate:          "33.00",
		EffectiveFrom: "2026-01-01",
	}
	_, err := svc.rate.CreateRateCard(testCtx(), req, "")
	require.NoError(t, err)

	_, err = svc.rate.CreateRateCard(testCtx(), req, "")
	assert.True(t, errors.Is(err, ErrValidation),
		"second card for same payer/service/date must be rejected")
}
