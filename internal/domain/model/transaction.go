package model

import "time"

type TransactionStatus string

const (
	TransactionStatusInProgress TransactionStatus = "in_progress" // token issued, awaiting the payer's decision
	TransactionStatusCancelled  TransactionStatus = "cancelled"   // payer aborted before submitting
	TransactionStatusOK         TransactionStatus = "ok"          // payer submitted card details
	TransactionStatusFailed     TransactionStatus = "failed"      // payer declared failure (simulated decline)
	TransactionStatusExpired    TransactionStatus = "expired"     // token outlived its validity window
	TransactionStatusReversed   TransactionStatus = "reversed"    // merchant reversed a submitted payment
)

// State is the legacy wire spelling of the status, delivered to merchants
// in callback payloads and receipts. These exact strings are parsed by
// downstream integrations.
func (s TransactionStatus) State() string {
	switch s {
	case TransactionStatusInProgress:
		return "InProgress"
	case TransactionStatusCancelled:
		return "CanceledByUser"
	case TransactionStatusOK:
		return "OK"
	case TransactionStatusFailed:
		return "Failed"
	case TransactionStatusExpired:
		return "Expired"
	case TransactionStatusReversed:
		return "Reversed"
	}
	return "Unknown"
}

// StatusCode is the numeric status the legacy callback carries alongside
// the state string.
func (s TransactionStatus) StatusCode() int {
	switch s {
	case TransactionStatusInProgress:
		return 0
	case TransactionStatusCancelled:
		return 1
	case TransactionStatusOK:
		return 2
	case TransactionStatusFailed:
		return 3
	case TransactionStatusExpired:
		return 4
	case TransactionStatusReversed:
		return 5
	}
	return -1
}

// Terminal returns whether the status admits no further decisions.
func (s TransactionStatus) Terminal() bool {
	return s != TransactionStatusInProgress
}

// PaymentTransaction records one pending charge from token issuance through
// its terminal outcome. The token is the sole correlation key across the
// payer-facing resolve/submit/fail/cancel calls.
type PaymentTransaction struct {
	ID         uint64
	TerminalID uint64

	// opaque token handed to the merchant and embedded in the payment link
	Token string

	// amount of payment in IRR
	Amount int64

	// reservation number generated merchant-side to prevent double-spending
	ResNum string

	// optional extra resnums, used for reporting
	ResNum1 *string
	ResNum2 *string
	ResNum3 *string
	ResNum4 *string

	// where to send the payer after the transaction is finalized
	RedirectURL string

	// optional fee of the transaction
	Wage *int64

	// amount actually reduced from the payer's card; the mock stores it verbatim
	AffectiveAmount *int64

	// optional payer phone number, used by the real bank to auto-fill card info
	CellNumber *string

	// validity of the token in minutes, clamped at issuance
	TokenExpiryMin int

	// optional md5 card hashes restricting which cards may pay
	HashedCardNumber *string

	// if provided, receipts require the same key
	TxnRandomSessionKey *int64

	Status TransactionStatus

	CreatedAt        time.Time
	ExpiresAt        time.Time
	ReceiptExpiresAt time.Time

	// set on submit
	SubmittedAt     *time.Time
	VerifyDeadline  *time.Time
	ReverseDeadline *time.Time
	RRN             *int64
	RefNum          *string
	TraceNo         *int64
	PaidCardNumber  *string
	HashedPaidCard  *string
	SecurePan       *string

	FailedAt    *time.Time
	CancelledAt *time.Time
	VerifiedAt  *time.Time
	ReversedAt  *time.Time
}

// Expired reports whether the token's validity window has passed at now.
func (t *PaymentTransaction) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}

// StatusUpdate carries the columns written when a transaction leaves
// in_progress. Nil fields stay untouched.
type StatusUpdate struct {
	Status TransactionStatus

	SubmittedAt     *time.Time
	VerifyDeadline  *time.Time
	ReverseDeadline *time.Time
	RRN             *int64
	RefNum          *string
	TraceNo         *int64
	PaidCardNumber  *string
	HashedPaidCard  *string
	SecurePan       *string

	FailedAt    *time.Time
	CancelledAt *time.Time
	VerifiedAt  *time.Time
	ReversedAt  *time.Time
}

// PublicTokenInfo is the read-only projection of a pending charge that is
// safe to show to an unauthenticated payer.
type PublicTokenInfo struct {
	TerminalName string    `json:"terminalName"`
	TerminalID   uint64    `json:"terminalId"`
	Website      string    `json:"website"`
	Amount       int64     `json:"amount"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// CallbackData is the legacy, bank-defined field set delivered to the
// merchant when a token is finalized. Field names (and their JSON
// spellings) are a wire-compatibility surface.
type CallbackData struct {
	MID              string `json:"MID"`
	TerminalID       string `json:"terminalId"`
	State            string `json:"state"`
	Status           string `json:"status"`
	RRN              string `json:"rrn"`
	RefNum           string `json:"refNum"`
	ResNum           string `json:"resNum"`
	TraceNo          string `json:"traceNo"`
	Amount           string `json:"amount"`
	AffectiveAmount  string `json:"affectiveAmount"`
	Wage             string `json:"wage"`
	SecurePan        string `json:"securePan"`
	HashedCardNumber string `json:"hashedCardNumber"`
	Token            string `json:"token"`
}

// FinalizeResponse is produced exactly once per transaction, by whichever
// decision ends it, and drives the one-shot redirect back to the merchant.
type FinalizeResponse struct {
	RedirectURL  string        `json:"redirectURL"`
	CallbackData *CallbackData `json:"callbackData"`
}
