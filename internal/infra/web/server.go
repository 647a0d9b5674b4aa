package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"saman-gateway-mock/internal/config"
	"saman-gateway-mock/internal/infra/redis"
	"saman-gateway-mock/internal/usecase"
)

// Legacy wire paths, spelled the way the real gateway advertises them.
// Routing itself is case-insensitive under the bank prefix.
const (
	BankPrefix             = "/banks/saman"
	pathOnlinePG           = "/OnlinePG/OnlinePG"
	pathSendToken          = "/OnlinePG/SendToken"
	pathGetReceipt         = "/verifyTxnRandomSessionkey/api/v2/ipg/payment/receipt"
	pathVerifyTransaction  = "/verifyTxnRandomSessionkey/ipg/VerifyTransaction"
	pathReverseTransaction = "/verifyTxnRandomSessionkey/ipg/ReverseTransaction"
)

const finalizeLockTTL = 10 * time.Second

type Server struct {
	terminalUC usecase.TerminalUseCase
	tokenUC    usecase.TokenUseCase
	receiptUC  usecase.ReceiptUseCase
	limiter    redis.Limiter
	locker     redis.Locker
	gateway    config.GatewayConfig
	publicHost string
	now        func() time.Time
	log        *zerolog.Logger
}

func NewServer(
	terminalUC usecase.TerminalUseCase,
	tokenUC usecase.TokenUseCase,
	receiptUC usecase.ReceiptUseCase,
	limiter redis.Limiter,
	locker redis.Locker,
	cfg *config.Config,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "Web").Logger()
	return &Server{
		terminalUC: terminalUC,
		tokenUC:    tokenUC,
		receiptUC:  receiptUC,
		limiter:    limiter,
		locker:     locker,
		gateway:    cfg.Gateway,
		publicHost: cfg.Server.PublicHostname,
		now:        time.Now,
		log:        &l,
	}
}

// RegisterRoutes sets up the gateway routing. Route patterns are lowercase;
// LowercaseBankPaths folds incoming paths to match.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route(BankPrefix, func(r chi.Router) {
		r.Post("/management/terminal", s.handleCreateTerminal)
		r.Get("/management/terminal", s.handleListTerminals)

		r.Get("/public/token", s.handleTokenInfo)
		r.Get("/public/token/", s.handleTokenInfo)

		r.Post("/management/token/submit", s.handleSubmitToken)
		r.Post("/management/token/fail", s.handleFailToken)
		r.Post("/management/token/cancel", s.handleCancelToken)

		r.Post(strings.ToLower(pathOnlinePG), s.handlePaymentGateway)
		r.Get(strings.ToLower(pathSendToken), s.handlePaymentPage)
		r.Post(strings.ToLower(pathSendToken), s.handlePaymentDecision)

		r.Post(strings.ToLower(pathGetReceipt), s.handleReceipt)
		r.Post(strings.ToLower(pathVerifyTransaction), s.handleVerify)
		r.Post(strings.ToLower(pathReverseTransaction), s.handleReverse)
	})
}
