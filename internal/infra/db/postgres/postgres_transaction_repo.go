package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"saman-gateway-mock/internal/domain"
	"saman-gateway-mock/internal/domain/model"
	"saman-gateway-mock/internal/domain/ports/repository"
)

var _ repository.TransactionRepository = (*transactionRepo)(nil)

type transactionRepo struct{ pool *pgxpool.Pool }

func NewTransactionRepo(pool *pgxpool.Pool) *transactionRepo {
	return &transactionRepo{pool: pool}
}

const transactionColumns = `
id, terminal_id, token, amount, res_num, res_num1, res_num2, res_num3, res_num4,
redirect_url, wage, affective_amount, cell_number, token_expiry_min,
hashed_card_number, txn_random_session_key, status,
created_at, expires_at, receipt_expires_at,
submitted_at, verify_deadline, reverse_deadline, rrn, ref_num, trace_no,
paid_card_number, hashed_paid_card, secure_pan,
failed_at, cancelled_at, verified_at, reversed_at`

func (r *transactionRepo) Save(ctx context.Context, tx repository.Tx, t *model.PaymentTransaction) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO transactions (
  terminal_id, token, amount, res_num, res_num1, res_num2, res_num3, res_num4,
  redirect_url, wage, affective_amount, cell_number, token_expiry_min,
  hashed_card_number, txn_random_session_key, status,
  created_at, expires_at, receipt_expires_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19
) RETURNING id;`
	err = ex.QueryRow(ctx, q,
		t.TerminalID, t.Token, t.Amount, t.ResNum, t.ResNum1, t.ResNum2, t.ResNum3, t.ResNum4,
		t.RedirectURL, t.Wage, t.AffectiveAmount, t.CellNumber, t.TokenExpiryMin,
		t.HashedCardNumber, t.TxnRandomSessionKey, t.Status,
		t.CreatedAt, t.ExpiresAt, t.ReceiptExpiresAt,
	).Scan(&t.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// UNIQUE(terminal_id, res_num)
			return domain.ErrDuplicateResNum
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func scanTransaction(row pgx.Row) (*model.PaymentTransaction, error) {
	t := &model.PaymentTransaction{}
	err := row.Scan(
		&t.ID, &t.TerminalID, &t.Token, &t.Amount, &t.ResNum, &t.ResNum1, &t.ResNum2, &t.ResNum3, &t.ResNum4,
		&t.RedirectURL, &t.Wage, &t.AffectiveAmount, &t.CellNumber, &t.TokenExpiryMin,
		&t.HashedCardNumber, &t.TxnRandomSessionKey, &t.Status,
		&t.CreatedAt, &t.ExpiresAt, &t.ReceiptExpiresAt,
		&t.SubmittedAt, &t.VerifyDeadline, &t.ReverseDeadline, &t.RRN, &t.RefNum, &t.TraceNo,
		&t.PaidCardNumber, &t.HashedPaidCard, &t.SecurePan,
		&t.FailedAt, &t.CancelledAt, &t.VerifiedAt, &t.ReversedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return t, nil
}

func (r *transactionRepo) FindByToken(ctx context.Context, tx repository.Tx, token string) (*model.PaymentTransaction, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	q := `SELECT ` + transactionColumns + ` FROM transactions WHERE token=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	return scanTransaction(ex.QueryRow(ctx, q, token))
}

func (r *transactionRepo) FindByRefNum(ctx context.Context, tx repository.Tx, terminalID uint64, refNum string) (*model.PaymentTransaction, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	q := `SELECT ` + transactionColumns + ` FROM transactions WHERE terminal_id=$1 AND ref_num=$2`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	return scanTransaction(ex.QueryRow(ctx, q, terminalID, refNum))
}

func (r *transactionRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id uint64, upd model.StatusUpdate) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const q = `
UPDATE transactions SET
  status=$2,
  submitted_at=COALESCE($3, submitted_at),
  verify_deadline=COALESCE($4, verify_deadline),
  reverse_deadline=COALESCE($5, reverse_deadline),
  rrn=COALESCE($6, rrn),
  ref_num=COALESCE($7, ref_num),
  trace_no=COALESCE($8, trace_no),
  paid_card_number=COALESCE($9, paid_card_number),
  hashed_paid_card=COALESCE($10, hashed_paid_card),
  secure_pan=COALESCE($11, secure_pan),
  failed_at=COALESCE($12, failed_at),
  cancelled_at=COALESCE($13, cancelled_at),
  verified_at=COALESCE($14, verified_at),
  reversed_at=COALESCE($15, reversed_at)
WHERE id=$1;`
	tag, err := ex.Exec(ctx, q, id, upd.Status,
		upd.SubmittedAt, upd.VerifyDeadline, upd.ReverseDeadline,
		upd.RRN, upd.RefNum, upd.TraceNo,
		upd.PaidCardNumber, upd.HashedPaidCard, upd.SecurePan,
		upd.FailedAt, upd.CancelledAt, upd.VerifiedAt, upd.ReversedAt,
	)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

func (r *transactionRepo) SweepExpired(ctx context.Context, tx repository.Tx, now time.Time, limit int) (int, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	const q = `
UPDATE transactions SET status=$3
WHERE id IN (
  SELECT id FROM transactions
  WHERE status=$1 AND expires_at < $2
  ORDER BY expires_at
  LIMIT $4
);`
	tag, err := ex.Exec(ctx, q, model.TransactionStatusInProgress, now, model.TransactionStatusExpired, limit)
	if err != nil {
		return 0, domain.ErrOperationFailed
	}
	return int(tag.RowsAffected()), nil
}
