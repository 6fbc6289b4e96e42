/*
 * Copyright (C) 2025 DXTR Asia Pte. Ltd.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/pquerna/otp/totp"
)

// Fixed test account served by the mock upstream.
const (
	TestEmail    = "a@b.com"
	TestPassword = "secret123"
	TestPhone    = "6281234567890"

	testJWTSecret  = "test-secret-jwt"
	testTOTPSecret = "JBSWY3DPEHPK3PXP"
)

// MockUpstream is a stand-in for the remote dashboard API. It implements the
// consumed contract: /auth/login issuing an OTP challenge plus a
// verification-scoped bearer token, /auth/verify-otp, /countries and
// /list-crypto guarded by the verified token.
type MockUpstream struct {
	Server *httptest.Server

	mutex    sync.Mutex
	otps     map[string]string // phone -> issued OTP
	verified map[string]bool   // token -> OTP verified
	requests int
}

func NewMockUpstream() *MockUpstream {
	m := &MockUpstream{
		otps:     make(map[string]string),
		verified: make(map[string]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", requireMethod(http.MethodPost, m.handleLogin))
	mux.HandleFunc("/api/v1/auth/verify-otp", requireMethod(http.MethodPost, m.handleVerifyOTP))
	mux.HandleFunc("/api/v1/countries", requireMethod(http.MethodGet, m.handleCountries))
	mux.HandleFunc("/api/v1/list-crypto", requireMethod(http.MethodGet, m.handleListCrypto))

	m.Server = httptest.NewServer(mux)
	return m
}

// requireMethod restricts a handler to one HTTP method, matching the
// method-prefixed ServeMux patterns available from Go 1.22 onward.
func requireMethod(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

func (m *MockUpstream) Close() {
	m.Server.Close()
}

// URL returns the mock server base, e.g. "http://127.0.0.1:54321".
func (m *MockUpstream) URL() string {
	return m.Server.URL
}

// RequestCount returns how many calls reached the mock upstream.
func (m *MockUpstream) RequestCount() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.requests
}

func (m *MockUpstream) count() {
	m.mutex.Lock()
	m.requests++
	m.mutex.Unlock()
}

func (m *MockUpstream) handleLogin(w http.ResponseWriter, r *http.Request) {
	m.count()

	var payload struct {
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "request fields malformed",
			"data":    map[string]string{"field": "email"},
		})
		return
	}

	if payload.Password != TestPassword {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"success": false,
			"message": "Invalid credentials",
			"data":    map[string]string{"field": "password"},
		})
		return
	}

	// email logins resolve to the account phone, phone logins echo theirs
	phone := payload.Phone
	if payload.Email != "" {
		phone = TestPhone
	}
	if phone == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "missing email or phone",
			"data":    map[string]string{},
		})
		return
	}

	code, err := totp.GenerateCode(testTOTPSecret, time.Now())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": "failed to generate OTP",
		})
		return
	}

	token, err := mintVerificationToken(phone)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": "failed to generate token",
		})
		return
	}

	m.mutex.Lock()
	m.otps[phone] = code
	m.verified[token] = false
	m.mutex.Unlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]string{
			"otp":   code,
			"token": "Bearer " + token,
			"phone": phone,
		},
	})
}

func (m *MockUpstream) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	m.count()

	token := bearerToken(r)

	m.mutex.Lock()
	_, known := m.verified[token]
	m.mutex.Unlock()

	if !known {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"success":     false,
			"message":     "Unauthorized",
			"status_code": 401,
		})
		return
	}

	var payload struct {
		Phone string `json:"phone"`
		OTP   string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "request fields malformed",
		})
		return
	}

	m.mutex.Lock()
	expected := m.otps[payload.Phone]
	m.mutex.Unlock()

	if expected == "" || payload.OTP != expected {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Invalid OTP",
		})
		return
	}

	m.mutex.Lock()
	m.verified[token] = true
	delete(m.otps, payload.Phone)
	m.mutex.Unlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}

func (m *MockUpstream) handleCountries(w http.ResponseWriter, r *http.Request) {
	m.count()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": []map[string]string{
			{"name": "Indonesia", "code": "ID", "dial_code": "+62"},
			{"name": "Malaysia", "code": "MY", "dial_code": "+60"},
			{"name": "Singapore", "code": "SG", "dial_code": "+65"},
		},
	})
}

func (m *MockUpstream) handleListCrypto(w http.ResponseWriter, r *http.Request) {
	m.count()

	token := bearerToken(r)

	m.mutex.Lock()
	ok := m.verified[token]
	m.mutex.Unlock()

	if !ok || !validVerificationToken(token) {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"success":     false,
			"message":     "Unauthorized",
			"status_code": 401,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": []map[string]interface{}{
			{"id": "bitcoin", "name": "Bitcoin", "symbol": "BTC", "price_idr": "1000000000", "change_percent": "1.2", "isPositive": true, "hot": true, "type": "cryptocurrency"},
			{"id": "ethereum", "name": "Ethereum", "symbol": "ETH", "price_idr": "50000000", "change_percent": "-0.8", "type": "cryptocurrency"},
		},
	})
}

// RevokeAll marks every issued token as rejected, so the next authenticated
// call gets the 401-style payload that triggers a forced sign-out.
func (m *MockUpstream) RevokeAll() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for token := range m.verified {
		m.verified[token] = false
	}
}

func mintVerificationToken(phone string) (string, error) {
	now := time.Now()
	claims := jwtv5.MapClaims{
		"phone": phone,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}
	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return token.SignedString([]byte(testJWTSecret))
}

func validVerificationToken(tokenString string) bool {
	parsed, err := jwtv5.Parse(tokenString, func(token *jwtv5.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	return err == nil && parsed.Valid
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && auth[:7] == "Bearer " {
		return auth[7:]
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
