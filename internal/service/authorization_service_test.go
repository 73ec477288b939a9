package service

import (
	"errors"
	"testing"

	"carebill/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAuthFixture(t *testing.T, svc *services) (*model.Payer, *model.Client) {
	t.Helper()
	payer := seedPayer(t, svc.db)
	client := seedClient(t, svc.db, &payer.ID)
	seedRate(t, svc.db, &payer.ID, model.ServicePersonalCare, "33.00", "2026-01-01")
	return payer, client
}

// billEntries commits the given shifts through invoice generation so they
// show up as billed line items.
func billEntries(t *testing.T, svc *services, clientID uuid.UUID, dates []string, start, end string) {
	t.Helper()
	for _, d := range dates {
		seedEntry(t, svc.db, clientID, d, start, end)
	}
	_, err := svc.invoice.GenerateInvoice(testCtx(), GenerateInvoiceRequest{
		ClientID:    clientID.String(),
		PeriodStart: "2026-06-01",
		PeriodEnd:   "2026-06-30",
	}, "")
	require.NoError(t, err)
}

func TestCreateAuthorizationUnused(t *testing.T) {
	svc := newServices(t)
	payer, client := seedAuthFixture(t, svc)

	util, err := svc.auth.CreateAuthorization(testCtx(), CreateAuthorizationRequest{
		ClientID:        client.ID.String(),
		PayerID:         payer.ID.String(),
		AuthNumber:      "AUTH-2026-001",
		ServiceType:     model.ServicePersonalCare,
		AuthorizedUnits: "40",
		StartDate:       "2026-06-01",
		EndDate:         "2030-12-31",
	}, "")
	require.NoError(t, err)

	assert.Equal(t, model.AuthUnitHours, util.UnitType, "unit type defaults to hours")
	assert.Equal(t, "0.00", util.Used)
	assert.Equal(t, "40.00", util.Remaining)
	assert.Equal(t, "0.0", util.PercentageUsed)
	assert.Equal(t, model.AuthStatusActive, util.Status)
	assert.Equal(t, payer.Name, util.PayerName)
}

func TestUtilizationLowAtEightyPercent(t *testing.T) {
	svc := newServices(t)
	payer, client := seedAuthFixture(t, svc)

	// Four nine-hour shifts billed: 36 of 40 authorized hours.
	billEntries(t, svc, client.ID, []string{"2026-06-02", "2026-06-04", "2026-06-09", "2026-06-11"}, "08:00", "17:00")

	util, err := svc.auth.CreateAuthorization(testCtx(), CreateAuthorizationRequest{
		ClientID:        client.ID.String(),
		PayerID:         payer.ID.String(),
		AuthNumber:      "AUTH-2026-002",
		ServiceType:     model.ServicePersonalCare,
		AuthorizedUnits: "40",
		StartDate:       "2026-06-01",
		EndDate:         "2030-12-31",
	}, "")
	require.NoError(t, err)

	assert.Equal(t, "36.00", util.Used)
	assert.Equal(t, "4.00", util.Remaining)
	assert.Equal(t, "90.0", util.PercentageUsed)
	assert.Equal(t, model.AuthStatusLow, util.Status)
}

func TestUtilizationOverDelivered(t *testing.T) {
	svc := newServices(t)
	payer, client := seedAuthFixture(t, svc)

	// Five nine-hour shifts: 45 against 40 authorized.
	billEntries(t, svc, client.ID, []string{"2026-06-01", "2026-06-02", "2026-06-03", "2026-06-04", "2026-06-05"}, "08:00", "17:00")

	util, err := svc.auth.CreateAuthorization(testCtx(), CreateAuthorizationRequest{
		ClientID:        client.ID.String(),
		PayerID:         payer.ID.String(),
		AuthNumber:      "AUTH-2026-003",
		ServiceType:     model.ServicePersonalCare,
		AuthorizedUnits: "40",
		StartDate:       "2026-06-01",
		EndDate:         "2030-12-31",
	}, "")
	require.NoError(t, err)

	assert.Equal(t, "45.00", util.Used)
	assert.Equal(t, "-5.00", util.Remaining, "over-delivery is reported, not clamped")
	assert.Equal(t, model.AuthStatusLow, util.Status)
}

func TestUtilizationExpired(t *testing.T) {
	svc := newServices(t)
	payer, client := seedAuthFixture(t, svc)

	util, err := svc.auth.CreateAuthorization(testCtx(), CreateAuthorizationRequest{
		ClientID:        client.ID.String(),
		PayerID:         payer.ID.String(),
		AuthNumber:      "AUTH-2025-017",
		ServiceType:     model.ServicePersonalCare,
		AuthorizedUnits: "40",
		StartDate:       "2025-01-01",
		EndDate:         "2025-12-31",
	}, "")
	require.NoError(t, err)
	assert.Equal(t, model.AuthStatusExpired, util.Status)
}

func TestUtilizationCountsVisits(t *testing.T) {
	svc := newServices(t)
	payer, client := seedAuthFixture(t, svc)

	billEntries(t, svc, client.ID, []string{"2026-06-02", "2026-06-04", "2026-06-09"}, "09:00", "11:00")

	util, err := svc.auth.CreateAuthorization(testCtx(), CreateAuthorizationRequest{
		ClientID:        client.ID.String(),
		PayerID:         payer.ID.String(),
		AuthNumber:      "AUTH-2026-004",
		ServiceType:     model.ServicePersonalCare,
		AuthorizedUnits: "12",
		UnitType:        model.AuthUnitVisits,
		StartDate:       "2026-06-01",
		EndDate:         "2030-12-31",
	}, "")
	require.NoError(t, err)

	assert.Equal(t, "3.00", util.Used, "each billed line item is one visit")
	assert.Equal(t, "25.0", util.PercentageUsed)
	assert.Equal(t, model.AuthStatusActive, util.Status)
}

func TestUtilizationIgnoresOutOfWindowItems(t *testing.T) {
	svc := newServices(t)
	payer, client := seedAuthFixture(t, svc)

	billEntries(t, svc, client.ID, []string{"2026-06-02", "2026-06-20"}, "08:00", "17:00")

	util, err := svc.auth.CreateAuthorization(testCtx(), CreateAuthorizationRequest{
		ClientID:        client.ID.String(),
		PayerID:         payer.ID.String(),
		AuthNumber:      "AUTH-2026-005",
		ServiceType:     model.ServicePersonalCare,
		AuthorizedUnits: "40",
		StartDate:       "2026-06-01",
		EndDate:         "2026-06-15",
	}, "")
	require.NoError(t, err)

	assert.Equal(t, "9.00", util.Used, "only the in-window shift counts")
}

func TestCreateAuthorizationValidation(t *testing.T) {
	svc := newServices(t)
	payer, client := seedAuthFixture(t, svc)

	_, err := svc.auth.CreateAuthorization(testCtx(), CreateAuthorizationRequest{
		ClientID:        uuid.NewString(),
		PayerID:         payer.ID.String(),
		AuthNumber:      "AUTH-X",
		ServiceType:     model.ServicePersonalCare,
		AuthorizedUnits: "40",
		StartDate:       "2026-06-01",
		EndDate:         "2026-12-31",
	}, "")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = svc.auth.CreateAuthorization(testCtx(), CreateAuthorizationRequest{
		ClientID:        client.ID.String(),
		PayerID:         payer.ID.String(),
		AuthNumber:      "AUTH-X",
		ServiceType:     model.ServicePersonalCare,
		AuthorizedUnits: "0",
		StartDate:       "2026-06-01",
		EndDate:         "2026-12-31",
	}, "")
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = svc.auth.CreateAuthorization(testCtx(), CreateAuthorizationRequest{
		ClientID:        client.ID.String(),
		PayerID:         payer.ID.String(),
		AuthNumber:      "AUTH-X",
		ServiceType:     model.ServicePersonalCare,
		AuthorizedUnits: "40",
		StartDate:       "2026-12-31",
		EndDate:         "2026-06-01",
	}, "")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestGetUtilizationNotFound(t *testing.T) {
	svc := newServices(t)
	_, err := svc.auth.GetUtilization(testCtx(), uuid.NewString())
	assert.True(t, errors.Is(err, ErrNotFound))
}
