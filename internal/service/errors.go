package service

import "errors"

// Sentinel errors of the billing engine. Handlers translate these into HTTP
// statuses; callers distinguish them with errors.Is. Each maps to a distinct
// corrective action for the accounting operator: enter time, configure a
// rate, fix a date, or pick a different invoice.
var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrRateNotFound       = errors.New("no applicable rate")
	ErrNoBillableActivity = errors.New("no billable activity in period")
	ErrEmptyInvoice       = errors.New("no valid line items")
	ErrDuplicateInvoice   = errors.New("invoice already exists for this period")
)
