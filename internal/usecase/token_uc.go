// File: internal/usecase/token_uc.go
package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"saman-gateway-mock/internal/domain"
	"saman-gateway-mock/internal/domain/model"
	"saman-gateway-mock/internal/domain/ports/repository"
	"saman-gateway-mock/internal/infra/metrics"
)

// Compile-time check
var _ TokenUseCase = (*tokenUC)(nil)

// IssueRequest is the merchant-side token request, mirroring the fields the
// real OnlinePG endpoint accepts.
type IssueRequest struct {
	Action              string  `json:"action"`
	TerminalID          string  `json:"terminalId"`
	Amount              int64   `json:"amount"`
	ResNum              string  `json:"resNum"`
	ResNum1             *string `json:"resNum1"`
	ResNum2             *string `json:"resNum2"`
	ResNum3             *string `json:"resNum3"`
	ResNum4             *string `json:"resNum4"`
	RedirectURL         string  `json:"redirectURL"`
	Wage                *int64  `json:"wage,omitempty"`
	AffectiveAmount     *int64  `json:"affectiveAmount,omitempty"`
	CellNumber          *string `json:"cellNumber,omitempty"`
	TokenExpiryInMin    int     `json:"tokenExpiryInMin"`
	HashedCardNumber    *string `json:"hashedCardNumber,omitempty"`
	TxnRandomSessionKey *int64  `json:"txnRandomSessionKey,omitempty"`
}

// TokenLimits clamp and time the token lifecycle; they come from config.
type TokenLimits struct {
	MinExpiryMin    int
	MaxExpiryMin    int
	ReceiptTTL      time.Duration
	VerifyDeadline  time.Duration
	ReverseDeadline time.Duration
	Website         string
}

type TokenUseCase interface {
	// Issue creates a payment token for a merchant terminal.
	Issue(ctx context.Context, req *IssueRequest) (*model.PaymentTransaction, error)
	// Resolve fetches the public, non-sensitive projection for the payment page.
	Resolve(ctx context.Context, token string) (*model.PublicTokenInfo, error)
	// Finalize applies the payer's decision and produces the redirect payload.
	// A transaction is finalized at most once; later calls report
	// domain.ErrTransactionNotFound.
	Finalize(ctx context.Context, token string, d model.Decision) (*model.FinalizeResponse, error)
	// SweepExpired moves overdue in-progress transactions to expired.
	SweepExpired(ctx context.Context) (int, error)
}

var phoneNumber = regexp.MustCompile(`^(09\d{9}|9\d{9})$`)
var cardHashDelimiters = regexp.MustCompile(`[|,;]`)

type tokenUC struct {
	transactions repository.TransactionRepository
	terminals    repository.TerminalRepository
	tm           repository.TransactionManager
	limits       TokenLimits
	now          func() time.Time
	log          *zerolog.Logger
}

func NewTokenUseCase(
	transactions repository.TransactionRepository,
	terminals repository.TerminalRepository,
	tm repository.TransactionManager,
	limits TokenLimits,
	logger *zerolog.Logger,
) *tokenUC {
	l := logger.With().Str("component", "TokenUC").Logger()
	return &tokenUC{
		transactions: transactions,
		terminals:    terminals,
		tm:           tm,
		limits:       limits,
		now:          time.Now,
		log:          &l,
	}
}

func (u *tokenUC) clampExpiry(minute int) int {
	if minute <= u.limits.MinExpiryMin {
		return u.limits.MinExpiryMin
	}
	if minute >= u.limits.MaxExpiryMin {
		return u.limits.MaxExpiryMin
	}
	return minute
}

func validateRedirectURL(raw string) error {
	parsed, err := url.ParseRequestURI(raw)
	if err != nil {
		return domain.ErrInvalidRedirectURL
	}
	if parsed.Host == "" {
		return domain.ErrInvalidRedirectURL
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return domain.ErrInvalidURLScheme
	}
	return nil
}

func (u *tokenUC) Issue(ctx context.Context, req *IssueRequest) (*model.PaymentTransaction, error) {
	if req.Action != "token" {
		return nil, domain.ErrInvalidAction
	}
	if req.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if req.CellNumber != nil && !phoneNumber.MatchString(*req.CellNumber) {
		return nil, domain.ErrInvalidPhoneNumber
	}
	if req.HashedCardNumber != nil {
		hashes := cardHashDelimiters.Split(*req.HashedCardNumber, -1)
		if len(hashes) > 10 {
			return nil, domain.ErrInvalidNumberOfCards
		}
		for _, h := range hashes {
			if strings.TrimSpace(h) == "" {
				return nil, domain.ErrInvalidCardHash
			}
		}
	}
	if err := validateRedirectURL(req.RedirectURL); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ResNum) == "" {
		return nil, domain.ErrEmptyResNum
	}

	terminalID, err := strconv.ParseUint(req.TerminalID, 10, 64)
	if err != nil {
		return nil, domain.ErrTerminalNotFound
	}
	exists, err := u.terminals.Exists(ctx, nil, terminalID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrTerminalNotFound
	}

	now := u.now()
	expiryMin := u.clampExpiry(req.TokenExpiryInMin)

	trx := &model.PaymentTransaction{
		TerminalID:          terminalID,
		Token:               uuid.NewString(),
		Amount:              req.Amount,
		ResNum:              req.ResNum,
		ResNum1:             req.ResNum1,
		ResNum2:             req.ResNum2,
		ResNum3:             req.ResNum3,
		ResNum4:             req.ResNum4,
		RedirectURL:         req.RedirectURL,
		Wage:                req.Wage,
		AffectiveAmount:     req.AffectiveAmount,
		CellNumber:          req.CellNumber,
		TokenExpiryMin:      expiryMin,
		HashedCardNumber:    req.HashedCardNumber,
		TxnRandomSessionKey: req.TxnRandomSessionKey,
		Status:              model.TransactionStatusInProgress,
		CreatedAt:           now,
		ExpiresAt:           now.Add(time.Duration(expiryMin) * time.Minute),
		ReceiptExpiresAt:    now.Add(u.limits.ReceiptTTL),
	}
	if err := u.transactions.Save(ctx, nil, trx); err != nil {
		return nil, err
	}
	metrics.IncTokenIssued()
	u.log.Info().Uint64("terminal_id", terminalID).Str("res_num", req.ResNum).Msg("token issued")
	return trx, nil
}

func (u *tokenUC) Resolve(ctx context.Context, token string) (*model.PublicTokenInfo, error) {
	if token == "" {
		return nil, domain.ErrTokenNotFound
	}
	trx, err := u.transactions.FindByToken(ctx, nil, token)
	if err != nil {
		if err == domain.ErrNotFound {
			metrics.IncTokenResolveFailure("not_found")
			return nil, domain.ErrTokenNotFound
		}
		return nil, err
	}
	if trx.Expired(u.now()) || trx.Status == model.TransactionStatusExpired {
		metrics.IncTokenResolveFailure("expired")
		return nil, domain.ErrTokenExpired
	}
	if trx.Status != model.TransactionStatusInProgress {
		metrics.IncTokenResolveFailure("finalized")
		return nil, domain.ErrTokenNoLongerAvailable
	}
	terminal, err := u.terminals.FindByID(ctx, nil, trx.TerminalID)
	if err != nil {
		return nil, err
	}
	return &model.PublicTokenInfo{
		TerminalName: terminal.Name,
		TerminalID:   trx.TerminalID,
		Website:      u.limits.Website,
		Amount:       trx.Amount,
		ExpiresAt:    trx.ExpiresAt,
	}, nil
}

func (u *tokenUC) Finalize(ctx context.Context, token string, d model.Decision) (*model.FinalizeResponse, error) {
	if token == "" {
		return nil, domain.ErrTokenNotFound
	}
	if d.Kind == model.DecisionSubmit {
		if d.Card == nil || !model.ValidCardNumber(d.Card.CardNumber) {
			return nil, domain.ErrInvalidCardNumber
		}
	}

	var trx *model.PaymentTransaction
	now := u.now()

	// Decision-specific columns are computed up front; the transaction
	// below only decides whether they are applied.
	upd, extras := u.buildUpdate(d, now)

	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		found, txErr := u.transactions.FindByToken(ctx, tx, token)
		if txErr != nil {
			if txErr == domain.ErrNotFound {
				return domain.ErrTransactionNotFound
			}
			return txErr
		}
		if found.Status != model.TransactionStatusInProgress {
			return domain.ErrTransactionNotFound
		}
		if txErr := u.transactions.UpdateStatus(ctx, tx, found.ID, upd); txErr != nil {
			return txErr
		}
		trx = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp, err := u.finalizeResponse(trx, d, upd, extras)
	if err != nil {
		return nil, err
	}
	metrics.IncTokenFinalized(string(d.Kind))
	u.log.Info().Str("decision", string(d.Kind)).Uint64("terminal_id", trx.TerminalID).Msg("token finalized")
	return resp, nil
}

// submitExtras are the values generated for a successful submission.
type submitExtras struct {
	rrn     int64
	refNum  string
	traceNo int64
}

func (u *tokenUC) buildUpdate(d model.Decision, now time.Time) (model.StatusUpdate, *submitExtras) {
	switch d.Kind {
	case model.DecisionSubmit:
		extras := &submitExtras{
			rrn:     rand.Int63(),
			refNum:  uuid.NewString(),
			traceNo: rand.Int63n(1_000_000),
		}
		hash := sha256.Sum256([]byte(d.Card.CardNumber))
		hashed := hex.EncodeToString(hash[:])
		secure := model.MaskPan(d.Card.CardNumber)
		verifyBy := now.Add(u.limits.VerifyDeadline)
		reverseBy := now.Add(u.limits.ReverseDeadline)
		return model.StatusUpdate{
			Status:          model.TransactionStatusOK,
			SubmittedAt:     &now,
			VerifyDeadline:  &verifyBy,
			ReverseDeadline: &reverseBy,
			RRN:             &extras.rrn,
			RefNum:          &extras.refNum,
			TraceNo:         &extras.traceNo,
			PaidCardNumber:  &d.Card.CardNumber,
			HashedPaidCard:  &hashed,
			SecurePan:       &secure,
		}, extras
	case model.DecisionFail:
		return model.StatusUpdate{
			Status:   model.TransactionStatusFailed,
			FailedAt: &now,
		}, nil
	default:
		return model.StatusUpdate{
			Status:      model.TransactionStatusCancelled,
			CancelledAt: &now,
		}, nil
	}
}

func (u *tokenUC) finalizeResponse(trx *model.PaymentTransaction, d model.Decision, upd model.StatusUpdate, extras *submitExtras) (*model.FinalizeResponse, error) {
	redirect, err := url.Parse(trx.RedirectURL)
	if err != nil {
		return nil, err
	}
	query := redirect.Query()
	query.Set("Token", trx.Token)

	cb := &model.CallbackData{
		MID:        fmt.Sprint(trx.TerminalID),
		TerminalID: fmt.Sprint(trx.TerminalID),
		State:      upd.Status.State(),
		Status:     fmt.Sprint(upd.Status.StatusCode()),
		Token:      trx.Token,
	}

	if d.Kind == model.DecisionSubmit {
		query.Set("RefNum", extras.refNum)
		cb.RRN = fmt.Sprint(extras.rrn)
		cb.RefNum = extras.refNum
		cb.TraceNo = fmt.Sprint(extras.traceNo)
		cb.ResNum = trx.ResNum
		cb.Amount = fmt.Sprint(trx.Amount)
		if trx.AffectiveAmount != nil {
			cb.AffectiveAmount = fmt.Sprint(*trx.AffectiveAmount)
		}
		if trx.Wage != nil {
			cb.Wage = fmt.Sprint(*trx.Wage)
		}
		if upd.HashedPaidCard != nil {
			cb.HashedCardNumber = *upd.HashedPaidCard
		}
		if upd.SecurePan != nil {
			cb.SecurePan = *upd.SecurePan
		}
	}

	redirect.RawQuery = query.Encode()
	return &model.FinalizeResponse{
		RedirectURL:  redirect.String(),
		CallbackData: cb,
	}, nil
}

func (u *tokenUC) SweepExpired(ctx context.Context) (int, error) {
	return u.transactions.SweepExpired(ctx, nil, u.now(), 500)
}
