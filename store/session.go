/*
 * Copyright (C) 2025 DXTR Asia Pte. Ltd.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package store

import (
	"errors"
	"strings"
	"sync"
)

// Storage keys, kept identical to the browser sessionStorage keys the
// dashboard frontend uses.
const (
	KeyTempOTP   = "temp_otp"
	KeyTempToken = "temp_token"
	KeyToken     = "tkn"
)

// SessionState is the position of a session in its lifecycle.
type SessionState string

const (
	SessionAnonymous     SessionState = "anonymous"
	SessionPending       SessionState = "pending"
	SessionAuthenticated SessionState = "authenticated"
)

var ErrNotPending = errors.New("no pending session to promote")

// SessionStore holds the three session slots of a single sign-in flow.
// Exactly one of the three states holds at any time: no keys (anonymous),
// temp_otp+temp_token (pending) or tkn (authenticated). The invariant is
// enforced inside SetPending, Promote and Clear rather than at call sites.
type SessionStore struct {
	mutex sync.Mutex
	slots map[string]string
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		slots: make(map[string]string),
	}
}

// SetPending records a successful credential submission: the OTP challenge
// value and the verification-scoped token. Any "Bearer " prefix on the token
// is stripped before storing. A previously authenticated session is replaced.
func (s *SessionStore) SetPending(otp string, token string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.slots[KeyTempOTP] = otp
	s.slots[KeyTempToken] = strings.TrimPrefix(token, "Bearer ")
	delete(s.slots, KeyToken)
}

// Promote moves the pending token into the authenticated slot and clears
// both pending slots in the same step.
func (s *SessionStore) Promote() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	token, pending := s.slots[KeyTempToken]
	if !pending {
		return ErrNotPending
	}

	s.slots[KeyToken] = token
	delete(s.slots, KeyTempOTP)
	delete(s.slots, KeyTempToken)

	return nil
}

// Clear destroys the session, whatever its state. Used on explicit sign-out
// and on forced sign-out after an upstream authorization failure.
func (s *SessionStore) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.slots = make(map[string]string)
}

func (s *SessionStore) State() SessionState {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.slots[KeyToken]; ok {
		return SessionAuthenticated
	}
	if _, ok := s.slots[KeyTempToken]; ok {
		return SessionPending
	}
	return SessionAnonymous
}

// Token returns the authenticated session token, empty when not authenticated.
func (s *SessionStore) Token() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.slots[KeyToken]
}

// PendingOTP returns the OTP challenge value placed by SetPending.
func (s *SessionStore) PendingOTP() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.slots[KeyTempOTP]
}

// PendingToken returns the verification-scoped token placed by SetPending.
func (s *SessionStore) PendingToken() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.slots[KeyTempToken]
}

// Snapshot returns a copy of the raw slots.
func (s *SessionStore) Snapshot() map[string]string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	snapshot := make(map[string]string, len(s.slots))
	for key, value := range s.slots {
		snapshot[key] = value
	}
	return snapshot
}
