// File: internal/usecase/receipt_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"saman-gateway-mock/internal/domain"
	"saman-gateway-mock/internal/domain/model"
	"saman-gateway-mock/internal/domain/ports/repository"
)

// Compile-time check
var _ ReceiptUseCase = (*receiptUC)(nil)

// ReceiptQuery locates a finalized transaction either by refNum or by token.
type ReceiptQuery struct {
	TerminalNumber      uint64
	RefNum              *string
	Token               *string
	TxnRandomSessionKey *int64
	RRN                 *int64
}

type ReceiptUseCase interface {
	// Receipt returns the payment receipt for a finalized transaction.
	Receipt(ctx context.Context, q *ReceiptQuery) (*model.PaymentReceipt, error)
	// Verify confirms a submitted payment before its verify deadline.
	Verify(ctx context.Context, terminalNumber uint64, refNum string) (*model.TransactionDetail, error)
	// Reverse rolls back a submitted payment before its reverse deadline.
	Reverse(ctx context.Context, terminalNumber uint64, refNum string) (*model.TransactionDetail, error)
}

type receiptUC struct {
	transactions repository.TransactionRepository
	tm           repository.TransactionManager
	now          func() time.Time
	log          *zerolog.Logger
}

func NewReceiptUseCase(transactions repository.TransactionRepository, tm repository.TransactionManager, logger *zerolog.Logger) *receiptUC {
	l := logger.With().Str("component", "ReceiptUC").Logger()
	return &receiptUC{transactions: transactions, tm: tm, now: time.Now, log: &l}
}

func (u *receiptUC) lookup(ctx context.Context, tx repository.Tx, q *ReceiptQuery) (*model.PaymentTransaction, error) {
	var trx *model.PaymentTransaction
	var err error
	switch {
	case q.RefNum != nil && *q.RefNum != "":
		trx, err = u.transactions.FindByRefNum(ctx, tx, q.TerminalNumber, *q.RefNum)
	case q.Token != nil && *q.Token != "":
		trx, err = u.transactions.FindByToken(ctx, tx, *q.Token)
	default:
		return nil, domain.ErrInvalidArgument
	}
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	if trx.TerminalID != q.TerminalNumber {
		return nil, domain.ErrTransactionNotFound
	}
	return trx, nil
}

func (u *receiptUC) Receipt(ctx context.Context, q *ReceiptQuery) (*model.PaymentReceipt, error) {
	trx, err := u.lookup(ctx, nil, q)
	if err != nil {
		return nil, err
	}
	// A transaction issued with a session key only yields its receipt to a
	// caller presenting the same key.
	if trx.TxnRandomSessionKey != nil {
		if q.TxnRandomSessionKey == nil || *q.TxnRandomSessionKey != *trx.TxnRandomSessionKey {
			return nil, domain.ErrSessionKeyMismatch
		}
	}
	if q.RRN != nil && (trx.RRN == nil || *trx.RRN != *q.RRN) {
		return nil, domain.ErrTransactionNotFound
	}
	if trx.ReceiptExpiresAt.Before(u.now()) {
		return nil, domain.ErrReceiptExpired
	}
	return receiptFrom(trx), nil
}

func (u *receiptUC) Verify(ctx context.Context, terminalNumber uint64, refNum string) (*model.TransactionDetail, error) {
	var detail *model.TransactionDetail
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		trx, err := u.lookup(ctx, tx, &ReceiptQuery{TerminalNumber: terminalNumber, RefNum: &refNum})
		if err != nil {
			return err
		}
		if trx.Status != model.TransactionStatusOK {
			return domain.ErrTransactionNotFound
		}
		if trx.VerifiedAt != nil {
			return domain.ErrAlreadyVerified
		}
		now := u.now()
		if trx.VerifyDeadline != nil && trx.VerifyDeadline.Before(now) {
			return domain.ErrVerifyDeadlinePassed
		}
		if err := u.transactions.UpdateStatus(ctx, tx, trx.ID, model.StatusUpdate{
			Status:     model.TransactionStatusOK,
			VerifiedAt: &now,
		}); err != nil {
			return err
		}
		detail = detailFrom(trx)
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info().Uint64("terminal", terminalNumber).Str("ref_num", refNum).Msg("transaction verified")
	return detail, nil
}

func (u *receiptUC) Reverse(ctx context.Context, terminalNumber uint64, refNum string) (*model.TransactionDetail, error) {
	var detail *model.TransactionDetail
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		trx, err := u.lookup(ctx, tx, &ReceiptQuery{TerminalNumber: terminalNumber, RefNum: &refNum})
		if err != nil {
			return err
		}
		if trx.Status == model.TransactionStatusReversed {
			return domain.ErrAlreadyReversed
		}
		if trx.Status != model.TransactionStatusOK {
			return domain.ErrTransactionNotFound
		}
		now := u.now()
		if trx.ReverseDeadline != nil && trx.ReverseDeadline.Before(now) {
			return domain.ErrReverseDeadlinePassed
		}
		if err := u.transactions.UpdateStatus(ctx, tx, trx.ID, model.StatusUpdate{
			Status:     model.TransactionStatusReversed,
			ReversedAt: &now,
		}); err != nil {
			return err
		}
		trx.Status = model.TransactionStatusReversed
		detail = detailFrom(trx)
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info().Uint64("terminal", terminalNumber).Str("ref_num", refNum).Msg("transaction reversed")
	return detail, nil
}

func receiptFrom(trx *model.PaymentTransaction) *model.PaymentReceipt {
	r := &model.PaymentReceipt{
		State:      trx.Status.State(),
		Status:     trx.Status.StatusCode(),
		TerminalID: trx.TerminalID,
		Token:      trx.Token,
		ResNum:     trx.ResNum,
		Amount:     trx.Amount,
	}
	if trx.RefNum != nil {
		r.RefNum = *trx.RefNum
	}
	if trx.TraceNo != nil {
		r.TraceNo = *trx.TraceNo
	}
	if trx.RRN != nil {
		r.RRN = *trx.RRN
	}
	if trx.AffectiveAmount != nil {
		r.AffectiveAmount = *trx.AffectiveAmount
	}
	if trx.HashedPaidCard != nil {
		r.HashedCardNumber = *trx.HashedPaidCard
	}
	return r
}

func detailFrom(trx *model.PaymentTransaction) *model.TransactionDetail {
	d := &model.TransactionDetail{
		TerminalNumber: trx.TerminalID,
		OriginalAmount: trx.Amount,
	}
	if trx.RRN != nil {
		d.RRN = *trx.RRN
	}
	if trx.RefNum != nil {
		d.RefNum = *trx.RefNum
	}
	if trx.SecurePan != nil {
		d.MaskedPan = *trx.SecurePan
	}
	if trx.HashedPaidCard != nil {
		d.HashedPan = *trx.HashedPaidCard
	}
	if trx.AffectiveAmount != nil {
		d.AffectiveAmount = *trx.AffectiveAmount
	}
	if trx.SubmittedAt != nil {
		d.StraceDate = *trx.SubmittedAt
	}
	if trx.TraceNo != nil {
		d.StraceNo = *trx.TraceNo
	}
	return d
}
