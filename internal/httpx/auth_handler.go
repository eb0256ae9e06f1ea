package httpx

import (
	"net/http"

	"github.com/ariefcatur/evn-storefront/internal/auth"
)

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	var in auth.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		a.fail(w, r, err)
		return
	}
	u, err := a.Auth.Register(r.Context(), in)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ok(w, http.StatusCreated, "registered, check your email for the verification code", map[string]any{"user": u})
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var in auth.LoginInput
	if err := decodeJSON(r, &in); err != nil {
		a.fail(w, r, err)
		return
	}
	sess, err := a.Auth.Login(r.Context(), in)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "logged in", sess)
}

func (a *API) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var in auth.VerifyInput
	if err := decodeJSON(r, &in); err != nil {
		a.fail(w, r, err)
		return
	}
	sess, err := a.Auth.VerifyOTP(r.Context(), in)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "verified", sess)
}

func (a *API) resendOTP(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &in); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.Auth.ResendOTP(r.Context(), in.Email); err != nil {
		a.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "a new code has been sent", nil)
}

func (a *API) requestOTP(w http.ResponseWriter, r *http.Request) {
	var in auth.OTPRequest
	if err := decodeJSON(r, &in); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.Auth.RequestOTP(r.Context(), in); err != nil {
		a.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, "code sent", nil)
}

func (a *API) me(w http.ResponseWriter, r *http.Request) {
	ok(w, http.StatusOK, "", currentUser(r))
}
