package repository

import (
	"context"
	"time"

	"saman-gateway-mock/internal/domain/model"
)

// -----------------------------
// Payment transactions
// -----------------------------

type TransactionRepository interface {
	Save(ctx context.Context, tx Tx, t *model.PaymentTransaction) error
	FindByToken(ctx context.Context, tx Tx, token string) (*model.PaymentTransaction, error)
	FindByRefNum(ctx context.Context, tx Tx, terminalID uint64, refNum string) (*model.PaymentTransaction, error)

	// UpdateStatus writes the decision-specific columns; nil fields of upd
	// keep their stored values. Implementations report
	// domain.ErrTransactionNotFound for an unknown id. Callers that need
	// at-most-once finalization must check the status under a row lock
	// first (FindByToken inside a tx takes FOR UPDATE).
	UpdateStatus(ctx context.Context, tx Tx, id uint64, upd model.StatusUpdate) error

	// SweepExpired marks overdue in_progress transactions expired and
	// returns how many rows changed.
	SweepExpired(ctx context.Context, tx Tx, now time.Time, limit int) (int, error)
}
