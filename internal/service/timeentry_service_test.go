package service

import (
	"errors"
	"testing"

	"carebill/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTimeEntryDefaultsServiceType(t *testing.T) {
	svc := newServices(t)
	client := seedClient(t, svc.db, nil)

	entry, err := svc.timeEntry.CreateTimeEntry(testCtx(), CreateTimeEntryRequest{
		ClientID:    client.ID.String(),
		ServiceDate: "2026-06-03",
		StartTime:   "08:00",
		EndTime:     "12:15",
	})
	require.NoError(t, err)

	assert.Equal(t, model.ServicePersonalCare, entry.ServiceType, "inherits the client default")
	assert.Equal(t, "4.25", entry.Hours)
	assert.Equal(t, model.EntryStatusDraft, entry.Status)
	assert.False(t, entry.Billed)
}

func TestCreateTimeEntryRejectsBadClock(t *testing.T) {
	svc := newServices(t)
	client := seedClient(t, svc.db, nil)

	_, err := svc.timeEntry.CreateTimeEntry(testCtx(), CreateTimeEntryRequest{
		ClientID:    client.ID.String(),
		ServiceDate: "2026-06-03",
		StartTime:   "9am",
		EndTime:     "12:00",
	})
	assert.Error(t, err)
}

func TestCommitTimeEntryWithRateLock(t *testing.T) {
	svc := newServices(t)
	payer := seedPayer(t, svc.db)
	client := seedClient(t, svc.db, &payer.ID)
	seedRate(t, svc.db, &payer.ID, model.ServicePersonalCare, "33.00", "2026-01-01")

	entry, err := svc.timeEntry.CreateTimeEntry(testCtx(), CreateTimeEntryRequest{
		ClientID:    client.ID.String(),
		ServiceDate: "2026-06-03",
		StartTime:   "08:00",
		EndTime:     "17:00",
	})
	require.NoError(t, err)

	committed, err := svc.timeEntry.CommitTimeEntry(testCtx(), entry.ID, CommitTimeEntryRequest{LockRate: true}, "")
	require.NoError(t, err)

	assert.Equal(t, model.EntryStatusCommitted, committed.Status)
	require.NotNil(t, committed.LockedRate)
	assert.Equal(t, "33.00", *committed.LockedRate)

	// Committing twice is a no-go.
	_, err = svc.timeEntry.CommitTimeEntry(testCtx(), entry.ID, CommitTimeEntryRequest{}, "")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestUpdateCommittedEntryRejected(t *testing.T) {
	svc := newServices(t)
	payer := seedPayer(t, svc.db)
	client := seedClient(t, svc.db, &payer.ID)
	seedRate(t, svc.db, &payer.ID, model.ServicePersonalCare, "33.00", "2026-01-01")

	entry, err := svc.timeEntry.CreateTimeEntry(testCtx(), CreateTimeEntryRequest{
		ClientID:    client.ID.String(),
		ServiceDate: "2026-06-03",
		StartTime:   "08:00",
		EndTime:     "17:00",
	})
	require.NoError(t, err)

	_, err = svc.timeEntry.CommitTimeEntry(testCtx(), entry.ID, CommitTimeEntryRequest{}, "")
	require.NoError(t, err)

	_, err = svc.timeEntry.UpdateTimeEntry(testCtx(), entry.ID, UpdateTimeEntryRequest{EndTime: "18:00"})
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestUpdateDraftEntryRecomputesHours(t *testing.T) {
	svc := newServices(t)
	client := seedClient(t, svc.db, nil)

	entry, err := svc.timeEntry.CreateTimeEntry(testCtx(), CreateTimeEntryRequest{
		ClientID:    client.ID.String(),
		ServiceDate: "2026-06-03",
		StartTime:   "08:00",
		EndTime:     "12:00",
	})
	require.NoError(t, err)

	updated, err := svc.timeEntry.UpdateTimeEntry(testCtx(), entry.ID, UpdateTimeEntryRequest{EndTime: "16:45"})
	require.NoError(t, err)
	assert.Equal(t, "8.75", updated.Hours)
}

func TestCommitWithoutRateLockLeavesRateFloating(t *testing.T) {
	svc := newServices(t)
	payer := seedPayer(t, svc.db)
	client := seedClient(t, svc.db, &payer.ID)
	seedRate(t, svc.db, &payer.ID, model.ServicePersonalCare, "33.00", "2026-01-01")

	entry, err := svc.timeEntry.CreateTimeEntry(testCtx(), CreateTimeEntryRequest{
		ClientID:    client.ID.String(),
		ServiceDate: "2026-06-03",
		StartTime:   "08:00",
		EndTime:     "17:00",
	})
	require.NoError(t, err)

	committed, err := svc.timeEntry.CommitTimeEntry(testCtx(), entry.ID, CommitTimeEntryRequest{}, "")
	require.NoError(t, err)
	assert.Nil(t, committed.LockedRate, "rate resolves at invoice time instead")
}
