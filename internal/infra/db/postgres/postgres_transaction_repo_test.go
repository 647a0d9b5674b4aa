//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"saman-gateway-mock/internal/domain"
	"saman-gateway-mock/internal/domain/model"
)

func seedTerminal(t *testing.T) *model.Terminal {
	t.Helper()
	term := &model.Terminal{Name: "Demo Shop", Username: uuid.NewString(), Password: uuid.NewString()}
	if err := NewTerminalRepo(testPool).Save(context.Background(), nil, term); err != nil {
		t.Fatalf("failed to save terminal: %v", err)
	}
	return term
}

func pendingTransaction(terminalID uint64) *model.PaymentTransaction {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &model.PaymentTransaction{
		TerminalID:       terminalID,
		Token:            uuid.NewString(),
		Amount:           150000,
		ResNum:           uuid.NewString(),
		RedirectURL:      "https://merchant.example.com/callback",
		TokenExpiryMin:   20,
		Status:           model.TransactionStatusInProgress,
		CreatedAt:        now,
		ExpiresAt:        now.Add(20 * time.Minute),
		ReceiptExpiresAt: now.Add(time.Hour),
	}
}

func TestTransactionRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}
	ctx := context.Background()
	repo := NewTransactionRepo(testPool)

	t.Run("should save and find a transaction by token", func(t *testing.T) {
		cleanup(t)
		term := seedTerminal(t)
		trx := pendingTransaction(term.ID)

		if err := repo.Save(ctx, nil, trx); err != nil {
			t.Fatalf("save: %v", err)
		}
		if trx.ID == 0 {
			t.Fatal("expected an id to be assigned")
		}

		found, err := repo.FindByToken(ctx, nil, trx.Token)
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if found.Token != trx.Token || found.Amount != trx.Amount || found.Status != model.TransactionStatusInProgress {
			t.Errorf("round trip mismatch: %+v", found)
		}
		if !found.ExpiresAt.Equal(trx.ExpiresAt) {
			t.Errorf("expected expiry %v, got %v", trx.ExpiresAt, found.ExpiresAt)
		}
	})

	t.Run("should reject a duplicate resNum per terminal", func(t *testing.T) {
		cleanup(t)
		term := seedTerminal(t)
		first := pendingTransaction(term.ID)
		if err := repo.Save(ctx, nil, first); err != nil {
			t.Fatalf("save first: %v", err)
		}

		dup := pendingTransaction(term.ID)
		dup.ResNum = first.ResNum
		if err := repo.Save(ctx, nil, dup); !errors.Is(err, domain.ErrDuplicateResNum) {
			t.Errorf("expected ErrDuplicateResNum, got %v", err)
		}
	})

	t.Run("should report a missing token", func(t *testing.T) {
		cleanup(t)
		if _, err := repo.FindByToken(ctx, nil, "no-such-token"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("should find a transaction by refNum scoped to its terminal", func(t *testing.T) {
		cleanup(t)
		term := seedTerminal(t)
		trx := pendingTransaction(term.ID)
		if err := repo.Save(ctx, nil, trx); err != nil {
			t.Fatalf("save: %v", err)
		}
		refNum := uuid.NewString()
		if err := repo.UpdateStatus(ctx, nil, trx.ID, model.StatusUpdate{
			Status: model.TransactionStatusOK,
			RefNum: &refNum,
		}); err != nil {
			t.Fatalf("update: %v", err)
		}

		found, err := repo.FindByRefNum(ctx, nil, term.ID, refNum)
		if err != nil {
			t.Fatalf("find by refNum: %v", err)
		}
		if found.ID != trx.ID {
			t.Errorf("expected id %d, got %d", trx.ID, found.ID)
		}

		if _, err := repo.FindByRefNum(ctx, nil, term.ID+1, refNum); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("other terminal: expected ErrNotFound, got %v", err)
		}
	})

	t.Run("should write decision columns and keep earlier values", func(t *testing.T) {
		cleanup(t)
		term := seedTerminal(t)
		trx := pendingTransaction(term.ID)
		if err := repo.Save(ctx, nil, trx); err != nil {
			t.Fatalf("save: %v", err)
		}

		now := time.Now().UTC().Truncate(time.Millisecond)
		refNum := uuid.NewString()
		rrn := int64(987654321)
		if err := repo.UpdateStatus(ctx, nil, trx.ID, model.StatusUpdate{
			Status:      model.TransactionStatusOK,
			SubmittedAt: &now,
			RefNum:      &refNum,
			RRN:         &rrn,
		}); err != nil {
			t.Fatalf("first update: %v", err)
		}

		verified := now.Add(time.Minute)
		if err := repo.UpdateStatus(ctx, nil, trx.ID, model.StatusUpdate{
			Status:     model.TransactionStatusOK,
			VerifiedAt: &verified,
		}); err != nil {
			t.Fatalf("second update: %v", err)
		}

		found, err := repo.FindByToken(ctx, nil, trx.Token)
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if found.RefNum == nil || *found.RefNum != refNum {
			t.Error("refNum must survive a later partial update")
		}
		if found.VerifiedAt == nil || !found.VerifiedAt.Equal(verified) {
			t.Error("expected verified_at to be written")
		}
	})

	t.Run("should report an unknown id on update", func(t *testing.T) {
		cleanup(t)
		err := repo.UpdateStatus(ctx, nil, 9999, model.StatusUpdate{Status: model.TransactionStatusCancelled})
		if !errors.Is(err, domain.ErrTransactionNotFound) {
			t.Errorf("expected ErrTransactionNotFound, got %v", err)
		}
	})

	t.Run("should sweep only overdue in-progress transactions", func(t *testing.T) {
		cleanup(t)
		term := seedTerminal(t)

		stale := pendingTransaction(term.ID)
		stale.ExpiresAt = time.Now().Add(-time.Minute)
		if err := repo.Save(ctx, nil, stale); err != nil {
			t.Fatalf("save stale: %v", err)
		}
		live := pendingTransaction(term.ID)
		if err := repo.Save(ctx, nil, live); err != nil {
			t.Fatalf("save live: %v", err)
		}
		finalized := pendingTransaction(term.ID)
		finalized.ExpiresAt = time.Now().Add(-time.Minute)
		if err := repo.Save(ctx, nil, finalized); err != nil {
			t.Fatalf("save finalized: %v", err)
		}
		if err := repo.UpdateStatus(ctx, nil, finalized.ID, model.StatusUpdate{Status: model.TransactionStatusCancelled}); err != nil {
			t.Fatalf("finalize: %v", err)
		}

		n, err := repo.SweepExpired(ctx, nil, time.Now(), 100)
		if err != nil {
			t.Fatalf("sweep: %v", err)
		}
		if n != 1 {
			t.Fatalf("expected 1 swept row, got %d", n)
		}
		swept, _ := repo.FindByToken(ctx, nil, stale.Token)
		if swept.Status != model.TransactionStatusExpired {
			t.Errorf("expected stale transaction expired, got %s", swept.Status)
		}
		kept, _ := repo.FindByToken(ctx, nil, live.Token)
		if kept.Status != model.TransactionStatusInProgress {
			t.Errorf("expected live transaction untouched, got %s", kept.Status)
		}
	})
}

func TestTerminalRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}
	ctx := context.Background()
	repo := NewTerminalRepo(testPool)

	t.Run("should save, find and list terminals", func(t *testing.T) {
		cleanup(t)
		first := &model.Terminal{Name: "First", Username: "u1", Password: "p1"}
		second := &model.Terminal{Name: "Second", Username: "u2", Password: "p2"}
		for _, term := range []*model.Terminal{first, second} {
			if err := repo.Save(ctx, nil, term); err != nil {
				t.Fatalf("save %s: %v", term.Name, err)
			}
		}

		found, err := repo.FindByID(ctx, nil, first.ID)
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if found.Name != "First" || found.Username != "u1" {
			t.Errorf("round trip mismatch: %+v", found)
		}

		all, err := repo.List(ctx, nil)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(all) != 2 || all[0].ID != first.ID || all[1].ID != second.ID {
			t.Errorf("expected both terminals in id order, got %+v", all)
		}
	})

	t.Run("should report existence", func(t *testing.T) {
		cleanup(t)
		term := seedTerminal(t)

		ok, err := repo.Exists(ctx, nil, term.ID)
		if err != nil || !ok {
			t.Errorf("expected the terminal to exist, got ok=%v err=%v", ok, err)
		}
		ok, err = repo.Exists(ctx, nil, term.ID+100)
		if err != nil || ok {
			t.Errorf("expected no terminal, got ok=%v err=%v", ok, err)
		}
	})

	t.Run("should report a missing terminal", func(t *testing.T) {
		cleanup(t)
		if _, err := repo.FindByID(ctx, nil, 12345); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}
