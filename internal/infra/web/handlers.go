package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"saman-gateway-mock/internal/domain"
	"saman-gateway-mock/internal/domain/model"
	"saman-gateway-mock/internal/infra/logging"
	"saman-gateway-mock/internal/infra/redis"
	"saman-gateway-mock/internal/usecase"
)

var (
	errTooManyDecisions = errors.New("too many requests")
	errDecisionInFlight = errors.New("a decision for this token is already being processed")
)

// ---- terminal management ----

type createTerminalRequest struct {
	Name string `json:"name"`
}

type terminalEndpoints struct {
	PaymentToken       string `json:"paymentToken"`
	PaymentGateway     string `json:"paymentGateway"`
	Receipt            string `json:"receipt"`
	VerifyTransaction  string `json:"verifyTransaction"`
	ReverseTransaction string `json:"reverseTransaction"`
}

type terminalResponse struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type listTerminalsResponse struct {
	Terminals []*terminalResponse `json:"terminals"`
	Endpoints terminalEndpoints   `json:"endpoints"`
}

// endpoints advertises the legacy wire paths with their historical casing;
// routing accepts any case but integrations copy these strings verbatim.
func (s *Server) endpoints() terminalEndpoints {
	base := "https://" + s.publicHost + BankPrefix
	return terminalEndpoints{
		PaymentToken:       base + pathOnlinePG,
		PaymentGateway:     base + pathSendToken,
		Receipt:            base + pathGetReceipt,
		VerifyTransaction:  base + pathVerifyTransaction,
		ReverseTransaction: base + pathReverseTransaction,
	}
}

func terminalFromModel(t *model.Terminal) *terminalResponse {
	return &terminalResponse{
		ID:       t.ID,
		Name:     t.Name,
		Username: t.Username,
		Password: t.Password,
	}
}

func (s *Server) handleCreateTerminal(w http.ResponseWriter, r *http.Request) {
	l := logging.With(r.Context(), s.log)
	var req createTerminalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, l, domain.ErrInvalidRequest)
		return
	}
	t, err := s.terminalUC.Create(r.Context(), req.Name)
	if err != nil {
		writeError(w, l, err)
		return
	}
	writeJSON(w, http.StatusCreated, terminalFromModel(t))
}

func (s *Server) handleListTerminals(w http.ResponseWriter, r *http.Request) {
	l := logging.With(r.Context(), s.log)
	terminals, err := s.terminalUC.List(r.Context())
	if err != nil {
		writeError(w, l, err)
		return
	}
	out := &listTerminalsResponse{
		Terminals: make([]*terminalResponse, 0, len(terminals)),
		Endpoints: s.endpoints(),
	}
	for _, t := range terminals {
		out.Terminals = append(out.Terminals, terminalFromModel(t))
	}
	writeJSON(w, http.StatusOK, out)
}

// ---- token issuance (merchant side) ----

type issueOKResponse struct {
	Status int    `json:"status"`
	Token  string `json:"token"`
}

type issueErrorResponse struct {
	Status    int    `json:"status"`
	ErrorCode int    `json:"errorCode"`
	ErrorDesc string `json:"errorDesc"`
}

// issuanceErrors are reported on the legacy status/errorCode envelope rather
// than the JSON error envelope.
var issuanceErrors = []error{
	domain.ErrInvalidAction,
	domain.ErrInvalidAmount,
	domain.ErrInvalidPhoneNumber,
	domain.ErrInvalidNumberOfCards,
	domain.ErrInvalidCardHash,
	domain.ErrInvalidRedirectURL,
	domain.ErrInvalidURLScheme,
	domain.ErrEmptyResNum,
	domain.ErrDuplicateResNum,
	domain.ErrTerminalNotFound,
	domain.ErrTerminalIsDisabled,
}

// handlePaymentGateway serves the legacy OnlinePG endpoint. A browser form
// POST carrying Token is bounced to the payment page; a merchant JSON body
// requests a new token.
func (s *Server) handlePaymentGateway(w http.ResponseWriter, r *http.Request) {
	l := logging.With(r.Context(), s.log)

	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/x-www-form-urlencoded") || strings.HasPrefix(ct, "multipart/form-data") {
		_ = r.ParseForm()
		if tok := r.FormValue("Token"); tok != "" {
			target := BankPrefix + pathSendToken + "?token=" + url.QueryEscape(tok)
			http.Redirect(w, r, target, http.StatusTemporaryRedirect)
			return
		}
	}

	var req usecase.IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusOK, &issueErrorResponse{
			Status:    -1,
			ErrorCode: domain.SamanErrorCode(domain.ErrInvalidRequest),
			ErrorDesc: domain.ErrInvalidRequest.Error(),
		})
		return
	}
	trx, err := s.tokenUC.Issue(r.Context(), &req)
	if err != nil {
		for _, known := range issuanceErrors {
			if errors.Is(err, known) {
				writeJSON(w, http.StatusOK, &issueErrorResponse{
					Status:    -1,
					ErrorCode: domain.SamanErrorCode(known),
					ErrorDesc: known.Error(),
				})
				return
			}
		}
		writeError(w, l, err)
		return
	}
	writeJSON(w, http.StatusOK, &issueOKResponse{Status: 1, Token: trx.Token})
}

// ---- public token info ----

func (s *Server) handleTokenInfo(w http.ResponseWriter, r *http.Request) {
	l := logging.With(r.Context(), s.log)
	info, err := s.tokenUC.Resolve(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		writeError(w, l, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// ---- payer decisions (JSON management surface) ----

type decisionRequest struct {
	Token string `json:"token"`
	model.CardDetails
}

// finalizeToken runs the rate limiter and the per-token lock around the
// finalize use case. The lock is advisory; the status guard inside Finalize
// stays authoritative.
func (s *Server) finalizeToken(ctx context.Context, token string, d model.Decision) (*model.FinalizeResponse, error) {
	ctx = logging.WithToken(ctx, token)
	allowed, err := s.limiter.Allow(ctx, redis.TokenDecisionKey(token), s.gateway.DecisionRateLimit, s.gateway.DecisionRateWindow)
	if err != nil {
		// fail open: a flaky limiter must not block payments
		logging.With(ctx, s.log).Warn().Err(err).Msg("rate limiter unavailable")
	} else if !allowed {
		return nil, errTooManyDecisions
	}

	lockToken, err := s.locker.TryLock(ctx, redis.FinalizeLockKey(token), finalizeLockTTL)
	if err != nil {
		return nil, errDecisionInFlight
	}
	defer func() {
		_ = s.locker.Unlock(ctx, redis.FinalizeLockKey(token), lockToken)
	}()

	return s.tokenUC.Finalize(ctx, token, d)
}

func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request, build func(decisionRequest) model.Decision) {
	ctx := r.Context()
	l := logging.With(ctx, s.log)
	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, l, domain.ErrInvalidRequest)
		return
	}
	resp, err := s.finalizeToken(ctx, req.Token, build(req))
	if err != nil {
		switch {
		case errors.Is(err, errTooManyDecisions):
			writeJSON(w, http.StatusTooManyRequests, &userErrorResponse{Success: false, Error: err.Error()})
		case errors.Is(err, errDecisionInFlight):
			writeJSON(w, http.StatusConflict, &userErrorResponse{Success: false, Error: err.Error()})
		default:
			writeError(w, l, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubmitToken(w http.ResponseWriter, r *http.Request) {
	s.handleDecision(w, r, func(req decisionRequest) model.Decision {
		return model.SubmitDecision(req.CardDetails)
	})
}

func (s *Server) handleFailToken(w http.ResponseWriter, r *http.Request) {
	s.handleDecision(w, r, func(decisionRequest) model.Decision {
		return model.FailDecision()
	})
}

func (s *Server) handleCancelToken(w http.ResponseWriter, r *http.Request) {
	s.handleDecision(w, r, func(decisionRequest) model.Decision {
		return model.CancelDecision()
	})
}

// ---- receipt / verify / reverse (merchant back channel) ----

type receiptRequest struct {
	TerminalNumber      uint64  `json:"terminalNumber"`
	RefNum              *string `json:"refNum"`
	Token               *string `json:"token"`
	TxnRandomSessionKey *int64  `json:"txnRandomSessionKey"`
	RRN                 *int64  `json:"rrn"`
}

type receiptResponse struct {
	HasError bool                  `json:"HasError"`
	Data     *model.PaymentReceipt `json:"Data"`
}

func (s *Server) handleReceipt(w http.ResponseWriter, r *http.Request) {
	l := logging.With(r.Context(), s.log)
	var req receiptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, l, domain.ErrInvalidRequest)
		return
	}
	receipt, err := s.receiptUC.Receipt(r.Context(), &usecase.ReceiptQuery{
		TerminalNumber:      req.TerminalNumber,
		RefNum:              req.RefNum,
		Token:               req.Token,
		TxnRandomSessionKey: req.TxnRandomSessionKey,
		RRN:                 req.RRN,
	})
	if err != nil {
		writeError(w, l, err)
		return
	}
	writeJSON(w, http.StatusOK, &receiptResponse{HasError: false, Data: receipt})
}

type verifyRequest struct {
	RefNum         string `json:"RefNum"`
	TerminalNumber uint64 `json:"TerminalNumber"`
}

type verifyResponse struct {
	TransactionDetail *model.TransactionDetail `json:"TransactionDetail"`
	ResultCode        int                      `json:"ResultCode"`
	ResultDescription string                   `json:"ResultDescription"`
	Success           bool                     `json:"Success"`
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	l := logging.With(r.Context(), s.log)
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, l, domain.ErrInvalidRequest)
		return
	}
	detail, err := s.receiptUC.Verify(r.Context(), req.TerminalNumber, req.RefNum)
	if err != nil {
		writeError(w, l, err)
		return
	}
	writeJSON(w, http.StatusOK, &verifyResponse{
		TransactionDetail: detail,
		ResultCode:        0,
		ResultDescription: "Operation completed successfully",
		Success:           true,
	})
}

func (s *Server) handleReverse(w http.ResponseWriter, r *http.Request) {
	l := logging.With(r.Context(), s.log)
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, l, domain.ErrInvalidRequest)
		return
	}
	detail, err := s.receiptUC.Reverse(r.Context(), req.TerminalNumber, req.RefNum)
	if err != nil {
		writeError(w, l, err)
		return
	}
	writeJSON(w, http.StatusOK, &verifyResponse{
		TransactionDetail: detail,
		ResultCode:        0,
		ResultDescription: "Operation completed successfully",
		Success:           true,
	})
}
