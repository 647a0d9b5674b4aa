package model

import "strings"

type DecisionKind string

const (
	DecisionSubmit DecisionKind = "submit"
	DecisionFail   DecisionKind = "fail"
	DecisionCancel DecisionKind = "cancel"
)

// CardDetails are the transient payer-entered fields. They are forwarded
// verbatim; beyond the card-number length/digit check the mock performs no
// validation, mirroring the bank's test gateway.
type CardDetails struct {
	CardNumber   string `json:"cardNumber"`
	CVV          int32  `json:"cvv"`
	ExpiryMonth  int32  `json:"expiryMonth"`
	ExpiryYear   int32  `json:"expiryYear"`
	CardPassword string `json:"cardPassword"`
	Captcha      string `json:"captcha"`
}

// Decision is the payer's one of three mutually exclusive outcomes for a
// token. Only a submit carries card details; fail and cancel carry nothing.
type Decision struct {
	Kind DecisionKind
	Card *CardDetails // non-nil iff Kind == DecisionSubmit
}

func SubmitDecision(card CardDetails) Decision {
	return Decision{Kind: DecisionSubmit, Card: &card}
}

func FailDecision() Decision { return Decision{Kind: DecisionFail} }

func CancelDecision() Decision { return Decision{Kind: DecisionCancel} }

// ValidCardNumber reports whether s is exactly 16 numeric characters, the
// only precondition the gateway enforces before accepting a submit.
func ValidCardNumber(s string) bool {
	if len(s) != 16 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// MaskPan hides the third quarter of a 16-digit PAN, the way the bank
// reports SecurePan.
func MaskPan(pan string) string {
	if len(pan) != 16 {
		return strings.Repeat("*", len(pan))
	}
	return pan[:8] + "****" + pan[12:]
}
