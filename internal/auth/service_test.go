package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ariefcatur/evn-storefront/internal/apperr"
	"github.com/ariefcatur/evn-storefront/internal/mail"
	"github.com/ariefcatur/evn-storefront/internal/redisx"
	"github.com/ariefcatur/evn-storefront/internal/users"
)

type outbox struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (o *outbox) Send(_ context.Context, m mail.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, m)
	return nil
}

type fixedCodes []string

func (f *fixedCodes) Generate() (string, error) {
	c := (*f)[0]
	if len(*f) > 1 {
		*f = (*f)[1:]
	}
	return c, nil
}

type env struct {
	svc   *Service
	store *users.MemStore
	box   *outbox
	mr    *miniredis.Miniredis
	now   *time.Time
}

func newEnv(t *testing.T, codes ...string) env {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redisx.New(mr.Addr())
	t.Cleanup(func() { _ = rdb.Close() })

	now := time.Now().UTC()
	store := users.NewMemStore()
	box := &outbox{}
	svc := NewService(store, box, rdb, NewTokens("test-secret", 7*24*time.Hour, 24*time.Hour))
	if len(codes) == 0 {
		codes = []string{"123456"}
	}
	fc := fixedCodes(codes)
	svc.Codes = &fc
	e := env{svc: svc, store: store, box: box, mr: mr, now: &now}
	svc.Now = func() time.Time { return *e.now }
	return e
}

func (e env) advance(d time.Duration) {
	*e.now = e.now.Add(d)
	e.mr.FastForward(d)
}

func TestRegisterVerifyLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u, err := e.svc.Register(ctx, RegisterInput{Name: "Ana", Email: " Ana@Example.com", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.EmailVerified || u.Email != "ana@example.com" {
		t.Fatalf("new user: %+v", u)
	}
	if len(e.box.sent) != 1 || !strings.Contains(e.box.sent[0].Body, "123456") {
		t.Fatalf("otp mail not sent: %+v", e.box.sent)
	}

	_, err = e.svc.Login(ctx, LoginInput{Email: "ana@example.com", Password: "hunter2hunter2"})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("login before verification: got %v", err)
	}

	sess, err := e.svc.VerifyOTP(ctx, VerifyInput{Email: "ana@example.com", OTP: "123456"})
	if err != nil {
		t.Fatalf("VerifyOTP: %v", err)
	}
	if sess.Token == "" || !sess.User.EmailVerified {
		t.Fatalf("session: %+v", sess)
	}
	stored, _ := e.store.GetByEmail(ctx, "ana@example.com")
	if stored.OTPCode != "" || stored.OTPExpiresAt != nil || stored.OTPAttempts != 0 {
		t.Fatalf("otp fields not cleared: %+v", stored)
	}

	if _, err := e.svc.Login(ctx, LoginInput{Email: "ana@example.com", Password: "wrong-password"}); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("bad password: got %v", err)
	}
	sess, err = e.svc.Login(ctx, LoginInput{Email: "ANA@example.com", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	got, err := e.svc.Authenticate(ctx, sess.Token)
	if err != nil || got.ID != u.ID {
		t.Fatalf("Authenticate: %+v %v", got, err)
	}

	if _, err := e.svc.Register(ctx, RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "hunter2hunter2"}); !apperr.Is(err, apperr.KindBusiness) {
		t.Fatalf("duplicate email: got %v", err)
	}
}

func TestVerifyLocksAfterFiveFailures(t *testing.T) {
	e := newEnv(t, "111111", "222222")
	ctx := context.Background()
	if err := e.svc.RequestOTP(ctx, OTPRequest{Email: "bo@example.com"}); err != nil {
		t.Fatalf("RequestOTP: %v", err)
	}
	for i := 0; i < MaxOTPAttempts; i++ {
		if _, err := e.svc.VerifyOTP(ctx, VerifyInput{Email: "bo@example.com", OTP: "000000"}); !apperr.Is(err, apperr.KindBusiness) {
			t.Fatalf("attempt %d: got %v", i+1, err)
		}
	}
	// the correct code no longer works
	if _, err := e.svc.VerifyOTP(ctx, VerifyInput{Email: "bo@example.com", OTP: "111111"}); !apperr.Is(err, apperr.KindBusiness) {
		t.Fatalf("6th attempt with correct code: got %v", err)
	}

	e.advance(61 * time.Second)
	if err := e.svc.ResendOTP(ctx, "bo@example.com"); err != nil {
		t.Fatalf("ResendOTP: %v", err)
	}
	u, _ := e.store.GetByEmail(ctx, "bo@example.com")
	if u.OTPAttempts != 0 {
		t.Fatalf("attempts not reset on new code: %d", u.OTPAttempts)
	}
	if _, err := e.svc.VerifyOTP(ctx, VerifyInput{Email: "bo@example.com", OTP: "222222"}); err != nil {
		t.Fatalf("verify fresh code: %v", err)
	}
}

func TestRequestOTPCreatesUserLazily(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	if err := e.svc.RequestOTP(ctx, OTPRequest{Email: "new@example.com"}); err != nil {
		t.Fatalf("RequestOTP: %v", err)
	}
	u, err := e.store.GetByEmail(ctx, "new@example.com")
	if err != nil {
		t.Fatalf("user not created: %v", err)
	}
	if u.Name != "new" || u.PasswordHash != "" || u.Role != users.RoleUser {
		t.Fatalf("lazy user: %+v", u)
	}
	sess, err := e.svc.VerifyOTP(ctx, VerifyInput{Email: "new@example.com", OTP: "123456"})
	if err != nil || sess.User.ID != u.ID {
		t.Fatalf("VerifyOTP: %+v %v", sess, err)
	}
}

func TestOTPExpiresAndCooldown(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	if err := e.svc.RequestOTP(ctx, OTPRequest{Email: "cy@example.com", Name: "Cy"}); err != nil {
		t.Fatalf("RequestOTP: %v", err)
	}
	if err := e.svc.ResendOTP(ctx, "cy@example.com"); !apperr.Is(err, apperr.KindBusiness) {
		t.Fatalf("resend inside cooldown: got %v", err)
	}
	if len(e.box.sent) != 1 {
		t.Fatalf("cooldown must not send mail, sent %d", len(e.box.sent))
	}

	e.advance(OTPValidFor + time.Second)
	if _, err := e.svc.VerifyOTP(ctx, VerifyInput{Email: "cy@example.com", OTP: "123456"}); !apperr.Is(err, apperr.KindBusiness) {
		t.Fatalf("expired code: got %v", err)
	}
	if err := e.svc.ResendOTP(ctx, "nobody@example.com"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("resend unknown: got %v", err)
	}
}

type flakyUpdates struct {
	users.Store
	fail bool
}

func (f *flakyUpdates) Update(ctx context.Context, u users.User) error {
	if f.fail {
		return errors.New("connection reset")
	}
	return f.Store.Update(ctx, u)
}

func TestFailedOTPSaveReleasesCooldown(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	flaky := &flakyUpdates{Store: e.store, fail: true}
	e.svc.Users = flaky

	if err := e.svc.RequestOTP(ctx, OTPRequest{Email: "dee@example.com"}); !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("save failure: got %v", err)
	}
	if len(e.box.sent) != 0 {
		t.Fatal("no mail when the code was not saved")
	}
	if e.mr.Exists(fmt.Sprintf(redisx.KeyOTPCooldown, "dee@example.com")) {
		t.Fatal("cooldown must be released")
	}

	flaky.fail = false
	if err := e.svc.RequestOTP(ctx, OTPRequest{Email: "dee@example.com"}); err != nil {
		t.Fatalf("retry right away: %v", err)
	}
	if len(e.box.sent) != 1 {
		t.Fatalf("sent %d", len(e.box.sent))
	}
}

func TestAuthenticateRejectsDeactivatedAndForged(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()
	u := users.User{ID: "u-1", Email: "d@example.com", Name: "D", Role: users.RoleUser, IsActive: true, CreatedAt: now}
	if err := e.store.Create(ctx, u); err != nil {
		t.Fatal(err)
	}
	tok, _, err := e.svc.Tokens.Issue(u)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := e.svc.Authenticate(ctx, tok); err != nil {
		t.Fatalf("live user: %v", err)
	}

	u.IsActive = false
	_ = e.store.Update(ctx, u)
	if _, err := e.svc.Authenticate(ctx, tok); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("deactivated user: got %v", err)
	}

	other := NewTokens("other-secret", time.Hour, time.Hour)
	forged, _, _ := other.Issue(u)
	if _, err := e.svc.Authenticate(ctx, forged); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("forged token: got %v", err)
	}
	if _, err := e.svc.Authenticate(ctx, "not-a-jwt"); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("garbage token: got %v", err)
	}
}

func TestTokenTTLByRole(t *testing.T) {
	issued := time.Now()
	tokens := NewTokens("s", 7*24*time.Hour, 24*time.Hour)
	tokens.Now = func() time.Time { return issued }

	_, exp, _ := tokens.Issue(users.User{ID: "a", Role: users.RoleAdmin})
	if exp.Sub(issued) != 24*time.Hour {
		t.Fatalf("admin ttl = %s", exp.Sub(issued))
	}
	tok, exp, _ := tokens.Issue(users.User{ID: "u", Role: users.RoleUser})
	if exp.Sub(issued) != 7*24*time.Hour {
		t.Fatalf("user ttl = %s", exp.Sub(issued))
	}
	claims, err := tokens.Parse(tok)
	if err != nil || claims.UserID != "u" || claims.Role != users.RoleUser {
		t.Fatalf("Parse: %+v %v", claims, err)
	}

	tokens.Now = func() time.Time { return issued.Add(-8 * 24 * time.Hour) }
	stale, _, _ := tokens.Issue(users.User{ID: "u", Role: users.RoleUser})
	if _, err := tokens.Parse(stale); err != ErrInvalidToken {
		t.Fatalf("expired token: got %v", err)
	}
}

func TestRandomCodes(t *testing.T) {
	for i := 0; i < 50; i++ {
		c, err := RandomCodes{}.Generate()
		if err != nil || len(c) != OTPLength || strings.Trim(c, "0123456789") != "" {
			t.Fatalf("bad code %q %v", c, err)
		}
	}
}
