// Package snapshot persists the whole customer registry as a single document.
// There are no incremental writes: every Save replaces the previous snapshot.
package snapshot

import (
	"context"
	"errors"
	"time"

	"retail-ledger/models"

	"github.com/shopspring/decimal"
)

// Version of the snapshot layout written by this package.
const Version = 1

var (
	// ErrNotFound means no snapshot has been saved yet.
	ErrNotFound = errors.New("snapshot not found")
	// ErrCorrupt means a snapshot exists but cannot be decoded.
	ErrCorrupt = errors.New("snapshot corrupt")
)

// Meta describes where and when a snapshot was written.
type Meta struct {
	Storage   string    `json:"storage"`
	Version   int       `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// Limits carries the system-wide policies alongside the data.
type Limits struct {
	DailyTransfer     decimal.Decimal `json:"dailyTransferLimit"`
	MonthlyWithdrawal decimal.Decimal `json:"monthlyWithdrawalLimit"`
}

// Snapshot is the complete persisted state of the ledger.
type Snapshot struct {
	Meta      Meta                   `json:"_meta"`
	Limits    Limits                 `json:"limits"`
	Customers []models.CustomerState `json:"customers"`
}

// Store loads and saves snapshots.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}
