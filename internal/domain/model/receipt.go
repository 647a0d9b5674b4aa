package model

import "time"

// PaymentReceipt is what merchants read back after a token is finalized.
type PaymentReceipt struct {
	State            string `json:"State"`
	Status           int    `json:"Status"`
	TerminalID       uint64 `json:"TerminalId"`
	Token            string `json:"Token"`
	RefNum           string `json:"RefNum"`
	ResNum           string `json:"ResNum"`
	TraceNo          int64  `json:"TraceNo"`
	Amount           int64  `json:"Amount"`
	AffectiveAmount  int64  `json:"AffectiveAmount"`
	RRN              int64  `json:"Rrn"`
	HashedCardNumber string `json:"HashedCardNumber"`
}

// TransactionDetail is returned by the verify and reverse operations.
type TransactionDetail struct {
	RRN             int64     `json:"RRN"`
	RefNum          string    `json:"RefNum"`
	MaskedPan       string    `json:"MaskedPan"`
	HashedPan       string    `json:"HashedPan"`
	TerminalNumber  uint64    `json:"TerminalNumber"`
	OriginalAmount  int64     `json:"OriginalAmount"`
	AffectiveAmount int64     `json:"AffectiveAmount"`
	StraceDate      time.Time `json:"StraceDate"`
	StraceNo        int64     `json:"StraceNo"`
}
