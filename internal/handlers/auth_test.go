package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/vaughan-dsouza/certportal/internal/auth"
	"github.com/vaughan-dsouza/certportal/internal/metrics"
	"github.com/vaughan-dsouza/certportal/internal/middleware"
	"github.com/vaughan-dsouza/certportal/internal/models"
	"github.com/vaughan-dsouza/certportal/internal/store"
	dbtest "github.com/vaughan-dsouza/certportal/internal/testutil"
)

type fakeLimiter struct {
	allow  bool
	err    error
	keys   []string
	resets []string
}

func (f *fakeLimiter) Allow(_ context.Context, key string) (bool, error) {
	f.keys = append(f.keys, key)
	return f.allow, f.err
}

func (f *fakeLimiter) Reset(_ context.Context, key string) error {
	f.resets = append(f.resets, key)
	return nil
}

// countingHasher records dummy comparisons on top of a real Hasher.
type countingHasher struct {
	*auth.Hasher
	dummies int
}

func (c *countingHasher) CompareDummy(password string) {
	c.dummies++
	c.Hasher.CompareDummy(password)
}

type authFixture struct {
	h       *AuthHandler
	hasher  *countingHasher
	metrics *metrics.Metrics
	admin   models.Admin
}

func newAuthFixture(t *testing.T, limiter LoginLimiter) *authFixture {
	t.Helper()
	clock := clockwork.NewFakeClock()
	admins := store.NewAdminStore(dbtest.NewDB(t), clock)

	inner, err := auth.NewHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	hasher := &countingHasher{Hasher: inner}
	hash, err := hasher.Hash("secret1")
	if err != nil {
		t.Fatal(err)
	}
	admin := models.Admin{Email: "admin@certificados.com", PasswordHash: hash, Role: models.RoleAdmin}
	if err := admins.Create(context.Background(), &admin); err != nil {
		t.Fatal(err)
	}

	tokens, err := auth.NewTokenService("0123456789abcdef", time.Hour, clock)
	if err != nil {
		t.Fatal(err)
	}

	m := metrics.New()
	d := Deps{
		Admins:  admins,
		Tokens:  tokens,
		Hasher:  hasher,
		Metrics: m,
		Log:     zaptest.NewLogger(t).Sugar(),
	}
	if limiter != nil {
		d.Limiter = limiter
	}
	return &authFixture{h: NewAuthHandler(d), hasher: hasher, metrics: m, admin: admin}
}

func loginRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.RemoteAddr = "203.0.113.7:51234"
	return req
}

func TestLoginOutcomes(t *testing.T) {
	cases := []struct {
		name        string
		body        string
		wantStatus  int
		wantDummies int
		outcome     string
	}{
		{"success", `{"email":"admin@certificados.com","password":"secret1"}`, http.StatusOK, 0, "success"},
		{"wrong password", `{"email":"admin@certificados.com","password":"nope"}`, http.StatusUnauthorized, 0, "failure"},
		{"unknown email", `{"email":"ghost@certificados.com","password":"secret1"}`, http.StatusUnauthorized, 1, "failure"},
		{"missing password", `{"email":"admin@certificados.com"}`, http.StatusBadRequest, 0, ""},
		{"unknown field", `{"email":"a","password":"b","extra":1}`, http.StatusBadRequest, 0, ""},
		{"not json", `email=a`, http.StatusBadRequest, 0, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newAuthFixture(t, nil)
			rec := httptest.NewRecorder()
			f.h.Login(rec, loginRequest(tc.body))

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tc.wantStatus, rec.Body)
			}
			if f.hasher.dummies != tc.wantDummies {
				t.Errorf("dummy comparisons = %d, want %d", f.hasher.dummies, tc.wantDummies)
			}
			if tc.outcome != "" {
				want := fmt.Sprintf(`
# HELP certportal_logins_total Login attempts by outcome.
# TYPE certportal_logins_total counter
certportal_logins_total{outcome=%q} 1
`, tc.outcome)
				if err := testutil.GatherAndCompare(f.metrics.Registry(), strings.NewReader(want), "certportal_logins_total"); err != nil {
					t.Error(err)
				}
			}
		})
	}
}

func TestLoginThrottled(t *testing.T) {
	lim := &fakeLimiter{allow: false}
	f := newAuthFixture(t, lim)

	rec := httptest.NewRecorder()
	f.h.Login(rec, loginRequest(`{"email":"admin@certificados.com","password":"secret1"}`))

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "too many login attempts") {
		t.Errorf("body = %s", rec.Body)
	}
	if len(lim.keys) != 1 || lim.keys[0] != "203.0.113.7" {
		t.Errorf("limiter keys = %v", lim.keys)
	}
	if len(lim.resets) != 0 {
		t.Errorf("throttled login reset the counter")
	}
}

func TestLoginLimiterFailsOpen(t *testing.T) {
	lim := &fakeLimiter{allow: true, err: errors.New("connection refused")}
	f := newAuthFixture(t, lim)

	rec := httptest.NewRecorder()
	f.h.Login(rec, loginRequest(`{"email":"admin@certificados.com","password":"secret1"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(lim.resets) != 1 {
		t.Errorf("resets = %v", lim.resets)
	}
}

func TestMeWithoutIdentity(t *testing.T) {
	f := newAuthFixture(t, nil)

	rec := httptest.NewRecorder()
	f.h.Me(rec, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}

	ctx := middleware.WithIdentity(context.Background(), middleware.Identity{Subject: f.admin.ID, Role: models.RoleAdmin})
	rec = httptest.NewRecorder()
	f.h.Me(rec, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil).WithContext(ctx))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
