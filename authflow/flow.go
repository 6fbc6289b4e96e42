/*
 * Copyright (C) 2025 DXTR Asia Pte. Ltd.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

// Package authflow drives the two-phase sign-in exchange against the
// dashboard gateway: credential submission, OTP verification, the dashboard
// session guard and the authenticated market fetch with forced sign-out.
package authflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dxtrasia/cryptodash-middleware/models"
	"github.com/dxtrasia/cryptodash-middleware/store"
	"github.com/dxtrasia/cryptodash-middleware/utils"
)

var (
	// ErrInvalidOTPLength is returned before any network call when the OTP
	// input is not exactly 6 digits.
	ErrInvalidOTPLength = errors.New("enter a valid 6 digit OTP")

	// ErrVerifyFailed is the fallback when OTP verification fails without an
	// upstream message.
	ErrVerifyFailed = errors.New("verification failed, try again or check your connection")

	// ErrSessionExpired signals a forced sign-out: the upstream rejected the
	// session token and the session has been cleared.
	ErrSessionExpired = errors.New("session expired")

	// ErrFetchFailed is the fallback for unexplained list fetch failures.
	ErrFetchFailed = errors.New("failed to load data")
)

const defaultLoginError = "Login failed. Check your email/phone and password."

// The session guard waits this long before looking at the session, so a
// redirect does not flash during initial load.
const guardDelay = 300 * time.Millisecond

var otpPattern = regexp.MustCompile(`^[0-9]{6}$`)

var validate = validator.New()

type emailCredential struct {
	Email string `validate:"required"`
}

type phoneCredential struct {
	DialCode string `validate:"required"`
	Number   string `validate:"required"`
}

// Flow orchestrates the sign-in state machine. BaseURL is the gateway proxy
// base, e.g. "http://127.0.0.1:8080/api/proxy". All session mutations go
// through Session, which enforces the slot invariant.
type Flow struct {
	BaseURL string
	Client  *http.Client
	Session *store.SessionStore
}

func New(baseURL string, session *store.SessionStore) *Flow {
	return &Flow{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Client:  &http.Client{},
		Session: session,
	}
}

type loginResponseData struct {
	OTP   string `json:"otp"`
	Token string `json:"token"`
	Phone string `json:"phone"`
	Field string `json:"field"`
}

type loginResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    loginResponseData `json:"data"`
}

// SubmitCredential validates the credential locally, posts it to
// /auth/login and, on success, moves the session to pending and returns the
// phone number the confirm step correlates on. On any failure the session is
// left untouched and a FieldError names the input to highlight; when the
// upstream does not name a field, "email" is highlighted.
func (f *Flow) SubmitCredential(ctx context.Context, cred models.Credential, password string) (string, *models.FieldError) {
	payload := models.LoginJson{Password: password}

	switch cred.Kind {
	case models.CredentialEmail:
		if err := validate.Struct(emailCredential{Email: cred.Email}); err != nil {
			return "", &models.FieldError{Message: "email is required", Field: "email"}
		}
		payload.Email = cred.Email

	case models.CredentialPhone:
		number := utils.Digits(cred.NationalNumber)
		if err := validate.Struct(phoneCredential{DialCode: cred.DialCode, Number: number}); err != nil {
			return "", &models.FieldError{Message: "phone number and country are required", Field: "phone"}
		}
		payload.Phone = strings.TrimPrefix(cred.DialCode, "+") + number

	default:
		return "", &models.FieldError{Message: "unsupported credential", Field: "email"}
	}

	status, body, err := f.post(ctx, "/auth/login", "", payload)
	if err != nil {
		return "", &models.FieldError{Message: defaultLoginError, Field: "email"}
	}

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &models.FieldError{Message: defaultLoginError, Field: "email"}
	}

	if status < 200 || status >= 300 || !resp.Success {
		fieldErr := &models.FieldError{Message: resp.Message, Field: resp.Data.Field}
		if fieldErr.Message == "" {
			fieldErr.Message = defaultLoginError
		}
		if fieldErr.Field == "" {
			fieldErr.Field = "email"
		}
		return "", fieldErr
	}

	f.Session.SetPending(resp.Data.OTP, resp.Data.Token)

	return resp.Data.Phone, nil
}

// VerifyOTP promotes the pending session to authenticated. The 6-digit check
// runs before any network round trip; on upstream failure the pending session
// is kept so the user can retry.
func (f *Flow) VerifyOTP(ctx context.Context, phone string, otp string) error {
	if !otpPattern.MatchString(otp) {
		return ErrInvalidOTPLength
	}

	payload := models.OTPJson{Phone: phone, OTP: otp}

	status, body, err := f.post(ctx, "/auth/verify-otp", f.Session.PendingToken(), payload)
	if err != nil {
		return ErrVerifyFailed
	}

	var resp models.Envelope
	if err := json.Unmarshal(body, &resp); err != nil {
		return ErrVerifyFailed
	}

	if status < 200 || status >= 300 || !resp.Success {
		if resp.Message != "" {
			return errors.New(resp.Message)
		}
		return ErrVerifyFailed
	}

	return f.Session.Promote()
}

// CheckSession is the dashboard guard: after a short fixed delay it reports
// whether an authenticated session token is present. It never touches the
// network; real authorization is enforced upstream.
func (f *Flow) CheckSession(ctx context.Context) bool {
	timer := time.NewTimer(guardDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
	}

	return f.Session.Token() != ""
}

type cryptoListResponse struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message"`
	StatusCode int                 `json:"status_code"`
	Data       []models.CryptoItem `json:"data"`
}

// FetchCryptoList loads the market list with the session token. A rejected
// request whose error payload carries status_code 401 clears the session and
// returns ErrSessionExpired; the caller is expected to navigate to sign-in.
func (f *Flow) FetchCryptoList(ctx context.Context) ([]models.CryptoItem, error) {
	status, body, err := f.get(ctx, "/list-crypto", f.Session.Token())
	if err != nil {
		return nil, ErrFetchFailed
	}

	var resp cryptoListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, ErrFetchFailed
	}

	if status < 200 || status >= 300 {
		if resp.StatusCode == http.StatusUnauthorized {
			f.Session.Clear()
			return nil, ErrSessionExpired
		}
		if resp.Message != "" {
			return nil, errors.New(resp.Message)
		}
		return nil, ErrFetchFailed
	}

	if !resp.Success {
		if resp.Message != "" {
			return nil, errors.New(resp.Message)
		}
		return nil, ErrFetchFailed
	}

	return resp.Data, nil
}

type countriesResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    []models.Country `json:"data"`
}

// FetchCountries loads the country list shown on the sign-in page. No
// authentication required.
func (f *Flow) FetchCountries(ctx context.Context) ([]models.Country, error) {
	status, body, err := f.get(ctx, "/countries", "")
	if err != nil {
		return nil, ErrFetchFailed
	}

	var resp countriesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, ErrFetchFailed
	}

	if status < 200 || status >= 300 || !resp.Success {
		if resp.Message != "" {
			return nil, errors.New(resp.Message)
		}
		return nil, ErrFetchFailed
	}

	return resp.Data, nil
}

// SignOut destroys the session, whatever its state.
func (f *Flow) SignOut() {
	f.Session.Clear()
}

func (f *Flow) post(ctx context.Context, path string, bearer string, payload interface{}) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	return f.do(req)
}

func (f *Flow) get(ctx context.Context, path string, bearer string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+path, nil)
	if err != nil {
		return 0, nil, err
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	return f.do(req)
}

func (f *Flow) do(req *http.Request) (int, []byte, error) {
	resp, err := f.Client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}

	return resp.StatusCode, body, nil
}
