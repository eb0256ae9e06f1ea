// Package auth signs users in: password login gated by email verification,
// and passwordless OTP login that creates the account on first request.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ariefcatur/evn-storefront/internal/apperr"
	"github.com/ariefcatur/evn-storefront/internal/mail"
	"github.com/ariefcatur/evn-storefront/internal/redisx"
	"github.com/ariefcatur/evn-storefront/internal/users"
	"github.com/ariefcatur/evn-storefront/internal/validate"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	Users  users.Store
	Mail   mail.Sender
	Redis  redis.Cmdable // nil disables the resend cooldown
	Tokens Tokens
	Codes  CodeGenerator
	Now    func() time.Time
}

func NewService(store users.Store, sender mail.Sender, rdb redis.Cmdable, tokens Tokens) *Service {
	return &Service{Users: store, Mail: sender, Redis: rdb, Tokens: tokens, Codes: RandomCodes{}, Now: time.Now}
}

// Session is what a successful sign-in returns to the client.
type Session struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      users.User `json:"user"`
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2,max=80"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type OTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"omitempty,max=80"`
}

type VerifyInput struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

func invalid(v any) error {
	if msgs := validate.Struct(v); msgs != nil {
		return apperr.Validation("validation failed", msgs...)
	}
	return nil
}

func normalize(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Register creates an unverified account and emails the first code. The
// account cannot log in until VerifyOTP succeeds.
func (s *Service) Register(ctx context.Context, in RegisterInput) (users.User, error) {
	in.Email = normalize(in.Email)
	if err := invalid(in); err != nil {
		return users.User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return users.User{}, apperr.Internal("hash password", err)
	}
	now := s.Now().UTC()
	u := users.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: string(hash),
		Role:         users.RoleUser,
		IsActive:     true,
		Addresses:    []users.Address{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, users.ErrDuplicateEmail) {
			return users.User{}, apperr.Business("email is already registered")
		}
		return users.User{}, apperr.Internal("create user", err)
	}
	if err := s.sendOTP(ctx, &u); err != nil {
		return users.User{}, err
	}
	return u, nil
}

func (s *Service) Login(ctx context.Context, in LoginInput) (Session, error) {
	in.Email = normalize(in.Email)
	if err := invalid(in); err != nil {
		return Session{}, err
	}
	u, err := s.Users.GetByEmail(ctx, in.Email)
	if errors.Is(err, users.ErrNotFound) {
		return Session{}, apperr.Unauthorized("invalid email or password")
	}
	if err != nil {
		return Session{}, apperr.Internal("load user", err)
	}
	if u.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		return Session{}, apperr.Unauthorized("invalid email or password")
	}
	if !u.IsActive {
		return Session{}, apperr.Unauthorized("account is deactivated")
	}
	if !u.EmailVerified {
		return Session{}, apperr.Forbidden("email is not verified, check your inbox for the code")
	}
	return s.signIn(ctx, u)
}

// RequestOTP is the passwordless entry point; unknown emails get an account.
func (s *Service) RequestOTP(ctx context.Context, in OTPRequest) error {
	in.Email = normalize(in.Email)
	if err := invalid(in); err != nil {
		return err
	}
	u, err := s.Users.GetByEmail(ctx, in.Email)
	if errors.Is(err, users.ErrNotFound) {
		u, err = s.createPasswordless(ctx, in)
	}
	if err != nil {
		return apperr.Internal("load user", err)
	}
	if !u.IsActive {
		return apperr.Unauthorized("account is deactivated")
	}
	return s.sendOTP(ctx, &u)
}

func (s *Service) createPasswordless(ctx context.Context, in OTPRequest) (users.User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = in.Email[:strings.Index(in.Email, "@")]
	}
	now := s.Now().UTC()
	u := users.User{
		ID:        uuid.NewString(),
		Email:     in.Email,
		Name:      name,
		Role:      users.RoleUser,
		IsActive:  true,
		Addresses: []users.Address{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		// request paralel untuk email yang sama
		if errors.Is(err, users.ErrDuplicateEmail) {
			return s.Users.GetByEmail(ctx, in.Email)
		}
		return users.User{}, err
	}
	return u, nil
}

func (s *Service) ResendOTP(ctx context.Context, email string) error {
	email = normalize(email)
	if err := invalid(OTPRequest{Email: email}); err != nil {
		return err
	}
	u, err := s.Users.GetByEmail(ctx, email)
	if errors.Is(err, users.ErrNotFound) {
		return apperr.NotFound("no account for this email")
	}
	if err != nil {
		return apperr.Internal("load user", err)
	}
	if u.EmailVerified && u.PasswordHash != "" {
		return apperr.Business("email is already verified")
	}
	return s.sendOTP(ctx, &u)
}

// VerifyOTP checks the lockout before the code, so once the attempts are
// used up even the right code fails until a new one is issued.
func (s *Service) VerifyOTP(ctx context.Context, in VerifyInput) (Session, error) {
	in.Email = normalize(in.Email)
	if err := invalid(in); err != nil {
		return Session{}, err
	}
	u, err := s.Users.GetByEmail(ctx, in.Email)
	if errors.Is(err, users.ErrNotFound) {
		return Session{}, apperr.Business("invalid or expired code")
	}
	if err != nil {
		return Session{}, apperr.Internal("load user", err)
	}
	if !u.IsActive {
		return Session{}, apperr.Unauthorized("account is deactivated")
	}
	if u.OTPAttempts >= MaxOTPAttempts {
		return Session{}, apperr.Business("too many attempts, request a new code")
	}
	if u.OTPCode == "" || u.OTPExpiresAt == nil || !s.Now().Before(*u.OTPExpiresAt) {
		return Session{}, apperr.Business("invalid or expired code")
	}
	if subtle.ConstantTimeCompare([]byte(u.OTPCode), []byte(in.OTP)) != 1 {
		u.OTPAttempts++
		if err := s.Users.Update(ctx, u); err != nil {
			return Session{}, apperr.Internal("save attempt", err)
		}
		if left := MaxOTPAttempts - u.OTPAttempts; left > 0 {
			return Session{}, apperr.Business("invalid code, %d attempts left", left)
		}
		return Session{}, apperr.Business("too many attempts, request a new code")
	}

	u.ClearOTP()
	u.EmailVerified = true
	return s.signIn(ctx, u)
}

// Authenticate resolves a bearer token to the live user. Deleted and
// deactivated accounts are rejected even while the token is unexpired.
func (s *Service) Authenticate(ctx context.Context, raw string) (users.User, error) {
	claims, err := s.Tokens.Parse(raw)
	if err != nil {
		return users.User{}, apperr.Unauthorized("invalid or expired token")
	}
	u, err := s.Users.GetByID(ctx, claims.UserID)
	if errors.Is(err, users.ErrNotFound) {
		return users.User{}, apperr.Unauthorized("user no longer exists")
	}
	if err != nil {
		return users.User{}, apperr.Internal("load user", err)
	}
	if !u.IsActive {
		return users.User{}, apperr.Unauthorized("account is deactivated")
	}
	return u, nil
}

func (s *Service) signIn(ctx context.Context, u users.User) (Session, error) {
	now := s.Now().UTC()
	u.LastLoginAt = &now
	u.UpdatedAt = now
	if err := s.Users.Update(ctx, u); err != nil {
		return Session{}, apperr.Internal("save user", err)
	}
	tok, exp, err := s.Tokens.Issue(u)
	if err != nil {
		return Session{}, apperr.Internal("issue token", err)
	}
	return Session{Token: tok, ExpiresAt: exp, User: u}, nil
}

// sendOTP issues a fresh code (resetting attempts) under the resend
// cooldown. A failed email is logged; the code stays valid.
func (s *Service) sendOTP(ctx context.Context, u *users.User) error {
	// release dipanggil kalau kode tidak sampai ke user, cooldown tidak
	// boleh menahan permintaan berikutnya
	release := func() {}
	if s.Redis != nil {
		key := fmt.Sprintf(redisx.KeyOTPCooldown, u.Email)
		won, err := redisx.Claim(ctx, s.Redis, key, redisx.TTLOTPCooldown)
		switch {
		case err != nil:
			log.Printf("auth: otp cooldown check failed for %s: %v", u.Email, err)
		case !won:
			return apperr.Business("please wait a minute before requesting another code")
		default:
			release = func() {
				if err := s.Redis.Del(context.WithoutCancel(ctx), key).Err(); err != nil {
					log.Printf("auth: release otp cooldown for %s: %v", u.Email, err)
				}
			}
		}
	}
	code, err := s.Codes.Generate()
	if err != nil {
		release()
		return apperr.Internal("generate otp", err)
	}
	exp := s.Now().UTC().Add(OTPValidFor)
	u.OTPCode = code
	u.OTPExpiresAt = &exp
	u.OTPAttempts = 0
	u.UpdatedAt = s.Now().UTC()
	if err := s.Users.Update(ctx, *u); err != nil {
		release()
		return apperr.Internal("save otp", err)
	}

	m, err := mail.OTP(u.Email, mail.OTPData{Name: u.Name, Code: code, ValidMinutes: int(OTPValidFor / time.Minute)})
	if err == nil {
		err = s.Mail.Send(ctx, m)
	}
	if err != nil {
		log.Printf("auth: otp mail to %s failed: %v", u.Email, err)
		release()
	}
	return nil
}
