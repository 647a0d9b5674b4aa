//go:build !integration

// File: internal/infra/web/payment_page_test.go
package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"saman-gateway-mock/internal/domain"
	"saman-gateway-mock/internal/domain/model"
)

func fixedNow() time.Time {
	return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
}

func pageInfo(expiresAt time.Time) *model.PublicTokenInfo {
	return &model.PublicTokenInfo{
		TerminalName: "Demo Shop",
		TerminalID:   7,
		Website:      "mock.example.com",
		Amount:       150000,
		ExpiresAt:    expiresAt,
	}
}

func getPage(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func postForm(t *testing.T, h http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPaymentPage_Get(t *testing.T) {
	t.Run("should render the page with the initial countdown", func(t *testing.T) {
		deps := newServerDeps()
		deps.tokens.resolveFn = func(ctx context.Context, token string) (*model.PublicTokenInfo, error) {
			return pageInfo(fixedNow().Add(5 * time.Minute)), nil
		}
		srv, h := deps.build()
		srv.now = fixedNow

		rec := getPage(t, h, "/banks/saman/OnlinePG/SendToken?token=tok-1")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := rec.Body.String()
		if !strings.Contains(body, ">05:00<") {
			t.Error("expected the initial countdown to read 05:00")
		}
		if !strings.Contains(body, `value="tok-1"`) {
			t.Error("expected the token hidden input")
		}
		if !strings.Contains(body, "Demo Shop") || !strings.Contains(body, "150000") {
			t.Error("expected merchant name and amount on the page")
		}
		if !strings.Contains(body, `data-expires-at="`+fixedNow().Add(5*time.Minute).Format(time.RFC3339)+`"`) {
			t.Error("expected the absolute expiry for the countdown script")
		}
	})

	t.Run("should not resolve an absent token", func(t *testing.T) {
		deps := newServerDeps()
		_, h := deps.build()

		rec := getPage(t, h, "/banks/saman/OnlinePG/SendToken")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if deps.tokens.resolveCalls != 0 {
			t.Error("an empty token must short-circuit before the use case")
		}
		if !strings.Contains(rec.Body.String(), "token not found") {
			t.Error("expected the invalid page to explain the missing token")
		}
	})

	t.Run("should explain an expired token", func(t *testing.T) {
		deps := newServerDeps()
		deps.tokens.resolveFn = func(ctx context.Context, token string) (*model.PublicTokenInfo, error) {
			return nil, domain.ErrTokenExpired
		}
		_, h := deps.build()

		rec := getPage(t, h, "/banks/saman/OnlinePG/SendToken?token=stale")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "token expired") {
			t.Error("expected the exact expiry message")
		}
	})
}

func TestPaymentPage_Decision(t *testing.T) {
	submitted := &model.FinalizeResponse{
		RedirectURL: "https://m.example.com/cb?RefNum=ref-1&Token=tok-1",
		CallbackData: &model.CallbackData{
			MID: "7", TerminalID: "7", State: "OK", Status: "2",
			RRN: "987654321", RefNum: "ref-1", ResNum: "order-1", TraceNo: "4242",
			Amount: "150000", SecurePan: "62198610****5678",
			HashedCardNumber: "deadbeef", Token: "tok-1",
		},
	}

	t.Run("should render the redirect form after a submit", func(t *testing.T) {
		deps := newServerDeps()
		deps.tokens.finalizeFn = func(ctx context.Context, token string, d model.Decision) (*model.FinalizeResponse, error) {
			if d.Kind != model.DecisionSubmit || d.Card.CardNumber != "6219861012345678" {
				t.Errorf("unexpected decision %+v", d)
			}
			return submitted, nil
		}
		_, h := deps.build()

		rec := postForm(t, h, "/banks/saman/OnlinePG/SendToken", url.Values{
			"token":      {"tok-1"},
			"decision":   {"submit"},
			"cardNumber": {"6219861012345678"},
			"cvv":        {"123"},
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := rec.Body.String()

		if !strings.Contains(body, `action="`+"https://m.example.com/cb?RefNum=ref-1&amp;Token=tok-1"+`"`) {
			t.Error("expected the form to target the merchant redirect URL")
		}
		// Amount is duplicated under the historical OrginalAmount spelling
		if !strings.Contains(body, `name="OrginalAmount" value="150000"`) {
			t.Error("expected the OrginalAmount field")
		}
		if !strings.Contains(body, `name="Amount" value="150000"`) {
			t.Error("expected the Amount field")
		}
		for _, field := range []string{
			"MID", "TerminalId", "AffectiveAmount", "HashedCardNumber", "RefNum",
			"ResNum", "RRN", "SecurePan", "State", "Status", "Token", "TraceNo", "Wage",
		} {
			if !strings.Contains(body, `name="`+field+`"`) {
				t.Errorf("expected hidden field %s", field)
			}
		}
		if !strings.Contains(body, `name="Token" value="tok-1"`) {
			t.Error("expected the token in the callback fields")
		}
	})

	t.Run("should let a cancel through without a card number", func(t *testing.T) {
		deps := newServerDeps()
		deps.tokens.finalizeFn = func(ctx context.Context, token string, d model.Decision) (*model.FinalizeResponse, error) {
			if d.Kind != model.DecisionCancel {
				t.Errorf("expected cancel, got %s", d.Kind)
			}
			return &model.FinalizeResponse{
				RedirectURL: "https://m.example.com/cb?Token=tok-1",
				CallbackData: &model.CallbackData{
					MID: "7", TerminalID: "7", State: "CanceledByUser", Status: "1", Token: "tok-1",
				},
			}, nil
		}
		_, h := deps.build()

		rec := postForm(t, h, "/banks/saman/OnlinePG/SendToken", url.Values{
			"token":    {"tok-1"},
			"decision": {"cancel"},
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "CanceledByUser") {
			t.Error("expected the cancelled outcome on the page")
		}
	})

	t.Run("should re-render the form when the card number is bad", func(t *testing.T) {
		for _, decision := range []string{"submit", "fail"} {
			deps := newServerDeps()
			deps.tokens.resolveFn = func(ctx context.Context, token string) (*model.PublicTokenInfo, error) {
				return pageInfo(time.Now().Add(5 * time.Minute)), nil
			}
			_, h := deps.build()

			rec := postForm(t, h, "/banks/saman/OnlinePG/SendToken", url.Values{
				"token":      {"tok-1"},
				"decision":   {decision},
				"cardNumber": {"1234"},
				"cvv":        {"123"},
			})
			if rec.Code != http.StatusOK {
				t.Fatalf("%s: expected 200, got %d", decision, rec.Code)
			}
			if deps.tokens.finalizeCalls != 0 {
				t.Errorf("%s: finalize must not run with a bad card number", decision)
			}
			body := rec.Body.String()
			if !strings.Contains(body, "card number must be 16 digits") {
				t.Errorf("%s: expected the card notice", decision)
			}
			if !strings.Contains(body, `value="1234"`) {
				t.Errorf("%s: expected the payer's input to be preserved", decision)
			}
		}
	})

	t.Run("should show the invalid page when the token is already finalized", func(t *testing.T) {
		deps := newServerDeps()
		deps.tokens.finalizeFn = func(ctx context.Context, token string, d model.Decision) (*model.FinalizeResponse, error) {
			return nil, domain.ErrTransactionNotFound
		}
		_, h := deps.build()

		rec := postForm(t, h, "/banks/saman/OnlinePG/SendToken", url.Values{
			"token":    {"tok-1"},
			"decision": {"cancel"},
		})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "token no longer available") {
			t.Error("expected the no-longer-available message")
		}
	})
}

func TestRemainingString(t *testing.T) {
	now := fixedNow()
	cases := []struct {
		left time.Duration
		want string
	}{
		{5 * time.Minute, "05:00"},
		{90 * time.Second, "01:30"},
		{59 * time.Second, "00:59"},
		{time.Second, "00:01"},
		{0, "00:00"},
		{-time.Minute, "00:00"},
		{65 * time.Minute, "65:00"},
	}
	for _, tc := range cases {
		if got := remainingString(now.Add(tc.left), now); got != tc.want {
			t.Errorf("left=%v: expected %q, got %q", tc.left, tc.want, got)
		}
	}
}
