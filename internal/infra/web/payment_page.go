package web

import (
	"errors"
	"net/http"
	"time"

	"saman-gateway-mock/internal/domain"
	"saman-gateway-mock/internal/domain/model"
	"saman-gateway-mock/internal/infra/logging"
)

func writeHTML(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
}

func (s *Server) renderInvalid(w http.ResponseWriter, status int, reason string) {
	writeHTML(w, status)
	_ = invalidPage.Execute(w, &invalidPageData{
		Title:  "Invalid payment link",
		Reason: reason,
	})
}

func (s *Server) renderPaymentPage(w http.ResponseWriter, token string, info *model.PublicTokenInfo, notice string, card cardEcho) {
	writeHTML(w, http.StatusOK)
	_ = paymentPage.Execute(w, &paymentPageData{
		Token:        token,
		TerminalName: info.TerminalName,
		Website:      info.Website,
		Amount:       info.Amount,
		ExpiresAt:    info.ExpiresAt.Format(time.RFC3339),
		Remaining:    remainingString(info.ExpiresAt, s.now()),
		Notice:       notice,
		Card:         card,
	})
}

// handlePaymentPage serves the hosted payment page. An absent token never
// reaches the backend; everything else is resolved and either rendered or
// explained on the invalid page.
func (s *Server) handlePaymentPage(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		s.renderInvalid(w, http.StatusBadRequest, domain.ErrTokenNotFound.Error())
		return
	}
	info, err := s.tokenUC.Resolve(r.Context(), token)
	if err != nil {
		s.renderResolveError(w, r, err)
		return
	}
	s.renderPaymentPage(w, token, info, "", cardEcho{})
}

func (s *Server) renderResolveError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrTokenNotFound),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenNoLongerAvailable):
		s.renderInvalid(w, http.StatusBadRequest, err.Error())
	default:
		l := logging.With(r.Context(), s.log)
		l.Error().Err(err).Msg("payment page resolve failed")
		s.renderInvalid(w, http.StatusInternalServerError, "The payment page is temporarily unavailable. Please try again.")
	}
}

func decisionFromForm(r *http.Request) (model.Decision, cardEcho) {
	card := cardEcho{
		CardNumber:   r.FormValue("cardNumber"),
		CVV:          r.FormValue("cvv"),
		ExpiryMonth:  r.FormValue("expiryMonth"),
		ExpiryYear:   r.FormValue("expiryYear"),
		CardPassword: r.FormValue("cardPassword"),
		Captcha:      r.FormValue("captcha"),
	}
	switch r.FormValue("decision") {
	case "fail":
		return model.FailDecision(), card
	case "cancel":
		return model.CancelDecision(), card
	default:
		return model.SubmitDecision(model.CardDetails{
			CardNumber:   card.CardNumber,
			CardPassword: card.CardPassword,
			Captcha:      card.Captcha,
		}), card
	}
}

// handlePaymentDecision applies the payer's choice and renders the redirect
// document. Submit and fail both require a plausible card number; cancel
// goes through regardless.
func (s *Server) handlePaymentDecision(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderInvalid(w, http.StatusBadRequest, domain.ErrInvalidRequest.Error())
		return
	}
	token := r.FormValue("token")
	if token == "" {
		s.renderInvalid(w, http.StatusBadRequest, domain.ErrTokenNotFound.Error())
		return
	}

	d, card := decisionFromForm(r)
	if d.Kind != model.DecisionCancel && !model.ValidCardNumber(card.CardNumber) {
		s.rerenderWithNotice(w, r, token, domain.ErrInvalidCardNumber.Error(), card)
		return
	}

	resp, err := s.finalizeToken(r.Context(), token, d)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCardNumber):
			s.rerenderWithNotice(w, r, token, err.Error(), card)
		case errors.Is(err, errTooManyDecisions), errors.Is(err, errDecisionInFlight):
			s.rerenderWithNotice(w, r, token, err.Error(), card)
		case errors.Is(err, domain.ErrTransactionNotFound):
			s.renderInvalid(w, http.StatusBadRequest, domain.ErrTokenNoLongerAvailable.Error())
		default:
			s.renderResolveError(w, r, err)
		}
		return
	}

	writeHTML(w, http.StatusOK)
	_ = redirectPage.Execute(w, &redirectPageData{
		Outcome:     resp.CallbackData.State,
		RedirectURL: resp.RedirectURL,
		Fields:      callbackFields(resp.CallbackData),
	})
}

// rerenderWithNotice shows the payment page again with the payer's input
// preserved. If the token died in the meantime the invalid page wins.
func (s *Server) rerenderWithNotice(w http.ResponseWriter, r *http.Request, token, notice string, card cardEcho) {
	info, err := s.tokenUC.Resolve(r.Context(), token)
	if err != nil {
		s.renderResolveError(w, r, err)
		return
	}
	s.renderPaymentPage(w, token, info, notice, card)
}

// callbackFields lays out the hidden inputs of the redirect form in the
// order merchants have always received them. OrginalAmount repeats Amount
// under its historical misspelled name.
func callbackFields(cb *model.CallbackData) []formField {
	return []formField{
		{Name: "MID", Value: cb.MID},
		{Name: "TerminalId", Value: cb.TerminalID},
		{Name: "AffectiveAmount", Value: cb.AffectiveAmount},
		{Name: "OrginalAmount", Value: cb.Amount},
		{Name: "Amount", Value: cb.Amount},
		{Name: "HashedCardNumber", Value: cb.HashedCardNumber},
		{Name: "RefNum", Value: cb.RefNum},
		{Name: "ResNum", Value: cb.ResNum},
		{Name: "RRN", Value: cb.RRN},
		{Name: "SecurePan", Value: cb.SecurePan},
		{Name: "State", Value: cb.State},
		{Name: "Status", Value: cb.Status},
		{Name: "Token", Value: cb.Token},
		{Name: "TraceNo", Value: cb.TraceNo},
		{Name: "Wage", Value: cb.Wage},
	}
}
