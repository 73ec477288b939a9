package service

import (
	"context"
	"testing"

	"carebill/internal/model"
	"carebill/internal/repository"
	"carebill/pkg/caldate"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Payer{},
		&model.Client{},
		&model.Caregiver{},
		&model.RateCard{},
		&model.TimeEntry{},
		&model.Invoice{},
		&model.LineItem{},
		&model.Payment{},
		&model.Adjustment{},
		&model.Authorization{},
		&model.AuditLog{},
	))
	return db
}

// services bundles the full engine wired over one test database. The
// websocket hub is nil; broadcasts are no-ops in tests.
type services struct {
	db        *gorm.DB
	rate      RateService
	invoice   InvoiceService
	ledger    LedgerService
	aging     AgingService
	auth      AuthorizationService
	timeEntry TimeEntryService
}

func newServices(t *testing.T) *services {
	t.Helper()
	db := setupTestDB(t)

	txManager := repository.NewTransactionManager(db)
	auditRepo := repository.NewAuditRepository(db)
	clientRepo := repository.NewClientRepository(db)
	rateRepo := repository.NewRateCardRepository(db)
	entryRepo := repository.NewTimeEntryRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	authRepo := repository.NewAuthorizationRepository(db)

	rate := NewRateService(rateRepo, auditRepo)
	return &services{
		db:        db,
		rate:      rate,
		invoice:   NewInvoiceService(invoiceRepo, entryRepo, clientRepo, rate, auditRepo, txManager, nil),
		ledger:    NewLedgerService(invoiceRepo, entryRepo, auditRepo, txManager, nil),
		aging:     NewAgingService(invoiceRepo),
		auth:      NewAuthorizationService(authRepo, clientRepo, auditRepo),
		timeEntry: NewTimeEntryService(entryRepo, clientRepo, rate, auditRepo),
	}
}

// --- Fixtures ---

func seedPayer(t *testing.T, db *gorm.DB) *model.Payer {
	t.Helper()
	payer := &model.Payer{Name: "Evergreen County Aging Services", Type: model.PayerTypeAgency, IsActive: true}
	require.NoError(t, db.Create(payer).Error)
	return payer
}

func seedClient(t *testing.T, db *gorm.DB, payerID *uuid.UUID) *model.Client {
	t.Helper()
	client := &model.Client{
		FirstName:          "Dorothy",
		LastName:           "Mills",
		PayerID:            payerID,
		DefaultServiceType: model.ServicePersonalCare,
		CareStatus:         model.CareStatusActive,
	}
	require.NoError(t, db.Create(client).Error)
	return client
}

func seedRate(t *testing.T, db *gorm.DB, payerID *uuid.UUID, serviceType, rate, effectiveFrom string) *model.RateCard {
	t.Helper()
	from, err := caldate.Parse(effectiveFrom)
	require.NoError(t, err)
	card := &model.RateCard{
		PayerID:       payerID,
		ServiceType:   serviceType,
		Rate:          decimal.RequireFromString(rate),
		UnitType:      model.UnitHourly,
		EffectiveFrom: from.Time(),
	}
	require.NoError(t, db.Create(card).Error)
	return card
}

func seedEntry(t *testing.T, db *gorm.DB, clientID uuid.UUID, serviceDate, start, end string) *model.TimeEntry {
	t.Helper()
	day, err := caldate.Parse(serviceDate)
	require.NoError(t, err)
	entry := &model.TimeEntry{
		ClientID:    clientID,
		ServiceDate: day.Time(),
		StartTime:   start,
		EndTime:     end,
		ServiceType: model.ServicePersonalCare,
		Status:      model.EntryStatusCommitted,
	}
	require.NoError(t, db.Create(entry).Error)
	return entry
}

func seedInvoice(t *testing.T, db *gorm.DB, clientID uuid.UUID, invoiceNo, total string, dueDate caldate.Date) *model.Invoice {
	t.Helper()
	amount := decimal.RequireFromString(total)
	inv := &model.Invoice{
		InvoiceNo:   invoiceNo,
		ClientID:    clientID,
		PeriodStart: dueDate.AddDays(-44).Time(),
		PeriodEnd:   dueDate.AddDays(-31).Time(),
		IssueDate:   dueDate.AddDays(-30).Time(),
		DueDate:     dueDate.Time(),
		Subtotal:    amount,
		Total:       amount,
		AmountPaid:  decimal.Zero,
		Status:      model.InvoiceStatusPending,
		Source:      model.InvoiceSourceAuto,
	}
	require.NoError(t, db.Create(inv).Error)
	return inv
}

func testCtx() context.Context {
	return context.Background()
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}
