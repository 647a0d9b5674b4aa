// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"saman-gateway-mock/internal/domain"
	"saman-gateway-mock/internal/domain/model"
	"saman-gateway-mock/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// memTerminalRepo is a small in-memory implementation used by unit tests.
type memTerminalRepo struct {
	mu      sync.RWMutex
	store   map[uint64]*model.Terminal
	nextID  uint64
	saveErr error // used by tests to simulate save failures
}

func newMemTerminalRepo() *memTerminalRepo {
	return &memTerminalRepo{store: make(map[uint64]*model.Terminal), nextID: 1}
}

func (m *memTerminalRepo) Save(ctx context.Context, tx repository.Tx, t *model.Terminal) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == 0 {
		t.ID = m.nextID
		m.nextID++
	}
	cp := *t
	m.store[t.ID] = &cp
	return nil
}

func (m *memTerminalRepo) FindByID(ctx context.Context, tx repository.Tx, id uint64) (*model.Terminal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTerminalRepo) List(ctx context.Context, tx repository.Tx) ([]*model.Terminal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Terminal, 0, len(m.store))
	for id := uint64(1); id < m.nextID; id++ {
		if t, ok := m.store[id]; ok {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memTerminalRepo) Exists(ctx context.Context, tx repository.Tx, id uint64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.store[id]
	return ok, nil
}

// memTransactionRepo keeps transactions keyed by token and mirrors the
// exactly-once UpdateStatus contract of the real repository.
type memTransactionRepo struct {
	mu     sync.RWMutex
	store  map[uint64]*model.PaymentTransaction
	nextID uint64

	updateCalls int // how many times UpdateStatus was invoked
}

func newMemTransactionRepo() *memTransactionRepo {
	return &memTransactionRepo{store: make(map[uint64]*model.PaymentTransaction), nextID: 1}
}

func (m *memTransactionRepo) Save(ctx context.Context, tx repository.Tx, t *model.PaymentTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.store {
		if existing.TerminalID == t.TerminalID && existing.ResNum == t.ResNum {
			return domain.ErrDuplicateResNum
		}
	}
	if t.ID == 0 {
		t.ID = m.nextID
		m.nextID++
	}
	cp := *t
	m.store[t.ID] = &cp
	return nil
}

func (m *memTransactionRepo) FindByToken(ctx context.Context, tx repository.Tx, token string) (*model.PaymentTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.store {
		if t.Token == token {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memTransactionRepo) FindByRefNum(ctx context.Context, tx repository.Tx, terminalID uint64, refNum string) (*model.PaymentTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.store {
		if t.TerminalID == terminalID && t.RefNum != nil && *t.RefNum == refNum {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memTransactionRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id uint64, upd model.StatusUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	t, ok := m.store[id]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	t.Status = upd.Status
	if upd.SubmittedAt != nil {
		t.SubmittedAt = upd.SubmittedAt
	}
	if upd.VerifyDeadline != nil {
		t.VerifyDeadline = upd.VerifyDeadline
	}
	if upd.ReverseDeadline != nil {
		t.ReverseDeadline = upd.ReverseDeadline
	}
	if upd.RRN != nil {
		t.RRN = upd.RRN
	}
	if upd.RefNum != nil {
		t.RefNum = upd.RefNum
	}
	if upd.TraceNo != nil {
		t.TraceNo = upd.TraceNo
	}
	if upd.PaidCardNumber != nil {
		t.PaidCardNumber = upd.PaidCardNumber
	}
	if upd.HashedPaidCard != nil {
		t.HashedPaidCard = upd.HashedPaidCard
	}
	if upd.SecurePan != nil {
		t.SecurePan = upd.SecurePan
	}
	if upd.FailedAt != nil {
		t.FailedAt = upd.FailedAt
	}
	if upd.CancelledAt != nil {
		t.CancelledAt = upd.CancelledAt
	}
	if upd.VerifiedAt != nil {
		t.VerifiedAt = upd.VerifiedAt
	}
	if upd.ReversedAt != nil {
		t.ReversedAt = upd.ReversedAt
	}
	return nil
}

func (m *memTransactionRepo) SweepExpired(ctx context.Context, tx repository.Tx, now time.Time, limit int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.store {
		if n >= limit {
			break
		}
		if t.Status == model.TransactionStatusInProgress && t.ExpiresAt.Before(now) {
			t.Status = model.TransactionStatusExpired
			n++
		}
	}
	return n, nil
}

// put stores a transaction directly, bypassing issuance.
func (m *memTransactionRepo) put(t *model.PaymentTransaction) *model.PaymentTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == 0 {
		t.ID = m.nextID
		m.nextID++
	}
	cp := *t
	m.store[t.ID] = &cp
	return t
}

// memTxManager runs the callback without a real database transaction.
type memTxManager struct {
	calls int
}

func (m *memTxManager) WithTx(ctx context.Context, opts pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.calls++
	return fn(ctx, nil)
}

var _ repository.TerminalRepository = (*memTerminalRepo)(nil)
var _ repository.TransactionRepository = (*memTransactionRepo)(nil)
var _ repository.TransactionManager = (*memTxManager)(nil)
