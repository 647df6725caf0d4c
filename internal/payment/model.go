package payment

import (
	"errors"
	"time"
)

// ErrFrequencyLocked indicates an explicit scheduled-execution attempt on a
// beneficiary whose cadence interval has not elapsed (or whose cadence is
// manual and therefore never due via automation).
var ErrFrequencyLocked = errors.New("frequency lock active")

// Kind distinguishes manual sends from scheduled executions.
type Kind string

const (
	KindManual    Kind = "manual"
	KindScheduled Kind = "scheduled"
)

// Status is the terminal outcome of a payment attempt.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Record is an append-only history entry created as a side effect of every
// completed payment attempt; it is never mutated afterwards.
type Record struct {
	ID            string
	Kind          Kind
	Status        Status
	SenderID      string
	BeneficiaryID string
	Recipient     string
	Asset         string
	Gross         int64
	Fee           int64
	Note          string
	Reason        string
	CreatedAt     time.Time
}

// BatchEntry names one scheduled-payment attempt inside a batch.
type BatchEntry struct {
	UserID        string
	BeneficiaryID string
}

// BatchStatus is the per-entry outcome of a batch run.
type BatchStatus string

const (
	BatchSuccess BatchStatus = "success"
	BatchSkipped BatchStatus = "skipped"
	BatchFailed  BatchStatus = "failed"
)

// BatchResult reports one entry's outcome; a failure never unwinds or blocks
// other entries.
type BatchResult struct {
	Entry    BatchEntry
	Status   BatchStatus
	RecordID string
	Reason   string
}
