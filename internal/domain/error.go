package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid execution context")
	ErrOperationFailed    = errors.New("operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")

	// Terminal management
	ErrEmptyTerminalName   = errors.New("name can't be empty")
	ErrInvalidTerminalName = errors.New("name is not valid")

	// Token lifecycle
	ErrTokenNotFound          = errors.New("token not found")
	ErrTokenExpired           = errors.New("token expired")
	ErrTokenNoLongerAvailable = errors.New("token no longer available")
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrInvalidCardNumber      = errors.New("card number must be 16 digits")

	// Merchant-side issuance (Saman wire error identifiers)
	ErrTerminalNotFound     = errors.New("TerminalNotFound")
	ErrTerminalIsDisabled   = errors.New("TerminalIsDisabled")
	ErrResourceNotFound     = errors.New("ResourceNotFound")
	ErrInvalidAction        = errors.New("InvalidAction")
	ErrInvalidAmount        = errors.New("InvalidAmount")
	ErrInvalidPhoneNumber   = errors.New("InvalidPhoneNumber")
	ErrInvalidRedirectURL   = errors.New("InvalidRedirectURL")
	ErrInvalidURLScheme     = errors.New("InvalidRedirectURLScheme")
	ErrEmptyResNum          = errors.New("EmptyResNum")
	ErrDuplicateResNum      = errors.New("DuplicateResNum")
	ErrInvalidNumberOfCards = errors.New("InvalidNumberOfCards")
	ErrInvalidCardHash      = errors.New("InvalidCardHash")
	ErrInvalidRequest       = errors.New("InvalidRequest")

	// Verify / reverse / receipt
	ErrVerifyDeadlinePassed  = errors.New("verify deadline passed")
	ErrReverseDeadlinePassed = errors.New("reverse deadline passed")
	ErrAlreadyVerified       = errors.New("transaction already verified")
	ErrAlreadyReversed       = errors.New("transaction already reversed")
	ErrReceiptExpired        = errors.New("receipt expired")
	ErrSessionKeyMismatch    = errors.New("txn random session key mismatch")
)

// SamanErrorCode maps issuance errors to the numeric codes the real
// gateway returns in errorCode. Anything unmapped is -1.
func SamanErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrTerminalIsDisabled):
		return 12
	case errors.Is(err, ErrResourceNotFound):
		return 404
	}
	return -1
}
