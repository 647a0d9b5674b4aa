// File: internal/infra/web/mocks_test.go
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"saman-gateway-mock/internal/config"
	"saman-gateway-mock/internal/domain/model"
	"saman-gateway-mock/internal/infra/redis"
	"saman-gateway-mock/internal/usecase"
)

type mockTerminalUC struct {
	createFn func(ctx context.Context, name string) (*model.Terminal, error)
	listFn   func(ctx context.Context) ([]*model.Terminal, error)
}

func (m *mockTerminalUC) Create(ctx context.Context, name string) (*model.Terminal, error) {
	if m.createFn == nil {
		return nil, errors.New("unexpected Create call")
	}
	return m.createFn(ctx, name)
}

func (m *mockTerminalUC) List(ctx context.Context) ([]*model.Terminal, error) {
	if m.listFn == nil {
		return nil, errors.New("unexpected List call")
	}
	return m.listFn(ctx)
}

type mockTokenUC struct {
	issueFn    func(ctx context.Context, req *usecase.IssueRequest) (*model.PaymentTransaction, error)
	resolveFn  func(ctx context.Context, token string) (*model.PublicTokenInfo, error)
	finalizeFn func(ctx context.Context, token string, d model.Decision) (*model.FinalizeResponse, error)

	resolveCalls  int
	finalizeCalls int
}

func (m *mockTokenUC) Issue(ctx context.Context, req *usecase.IssueRequest) (*model.PaymentTransaction, error) {
	if m.issueFn == nil {
		return nil, errors.New("unexpected Issue call")
	}
	return m.issueFn(ctx, req)
}

func (m *mockTokenUC) Resolve(ctx context.Context, token string) (*model.PublicTokenInfo, error) {
	m.resolveCalls++
	if m.resolveFn == nil {
		return nil, errors.New("unexpected Resolve call")
	}
	return m.resolveFn(ctx, token)
}

func (m *mockTokenUC) Finalize(ctx context.Context, token string, d model.Decision) (*model.FinalizeResponse, error) {
	m.finalizeCalls++
	if m.finalizeFn == nil {
		return nil, errors.New("unexpected Finalize call")
	}
	return m.finalizeFn(ctx, token, d)
}

func (m *mockTokenUC) SweepExpired(ctx context.Context) (int, error) { return 0, nil }

type mockReceiptUC struct {
	receiptFn func(ctx context.Context, q *usecase.ReceiptQuery) (*model.PaymentReceipt, error)
	verifyFn  func(ctx context.Context, terminalNumber uint64, refNum string) (*model.TransactionDetail, error)
	reverseFn func(ctx context.Context, terminalNumber uint64, refNum string) (*model.TransactionDetail, error)
}

func (m *mockReceiptUC) Receipt(ctx context.Context, q *usecase.ReceiptQuery) (*model.PaymentReceipt, error) {
	if m.receiptFn == nil {
		return nil, errors.New("unexpected Receipt call")
	}
	return m.receiptFn(ctx, q)
}

func (m *mockReceiptUC) Verify(ctx context.Context, terminalNumber uint64, refNum string) (*model.TransactionDetail, error) {
	if m.verifyFn == nil {
		return nil, errors.New("unexpected Verify call")
	}
	return m.verifyFn(ctx, terminalNumber, refNum)
}

func (m *mockReceiptUC) Reverse(ctx context.Context, terminalNumber uint64, refNum string) (*model.TransactionDetail, error) {
	if m.reverseFn == nil {
		return nil, errors.New("unexpected Reverse call")
	}
	return m.reverseFn(ctx, terminalNumber, refNum)
}

// denyLimiter refuses every request; used to exercise the 429 path.
type denyLimiter struct{}

func (denyLimiter) Allow(context.Context, string, int, time.Duration) (bool, error) {
	return false, nil
}

// heldLocker simulates a finalize already in flight elsewhere.
type heldLocker struct{}

func (heldLocker) TryLock(context.Context, string, time.Duration) (string, error) {
	return "", redis.ErrLockHeld
}

func (heldLocker) Unlock(context.Context, string, string) error { return nil }

type serverDeps struct {
	terminals *mockTerminalUC
	tokens    *mockTokenUC
	receipts  *mockReceiptUC
	limiter   redis.Limiter
	locker    redis.Locker
}

func newServerDeps() *serverDeps {
	return &serverDeps{
		terminals: &mockTerminalUC{},
		tokens:    &mockTokenUC{},
		receipts:  &mockReceiptUC{},
		limiter:   redis.NoopLimiter{},
		locker:    redis.NoopLocker{},
	}
}

func (d *serverDeps) build() (*Server, http.Handler) {
	cfg := &config.Config{}
	cfg.Server.PublicHostname = "sep.example.com"
	cfg.Gateway.DecisionRateLimit = 30
	cfg.Gateway.DecisionRateWindow = time.Minute

	logger := zerolog.Nop()
	srv := NewServer(d.terminals, d.tokens, d.receipts, d.limiter, d.locker, cfg, &logger)
	router := chi.NewRouter()
	srv.RegisterRoutes(router)
	return srv, Chain(router, LowercaseBankPaths(BankPrefix))
}

func (d *serverDeps) handler() http.Handler {
	_, h := d.build()
	return h
}
