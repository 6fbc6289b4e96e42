/*
 * Copyright (C) 2025 DXTR Asia Pte. Ltd.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package models

// CredentialKind discriminates the two ways a user can sign in.
type CredentialKind string

const (
	CredentialEmail CredentialKind = "email"
	CredentialPhone CredentialKind = "phone"
)

// Credential is built from user input at submission time and never persisted.
type Credential struct {
	Kind           CredentialKind
	Email          string
	DialCode       string
	NationalNumber string
}

// LoginJson is the payload sent to the upstream /auth/login endpoint.
// Exactly one of Email or Phone is set, depending on the credential kind.
type LoginJson struct {
	Password string `json:"password" structs:"password"`
	Email    string `json:"email,omitempty" structs:"email,omitempty"`
	Phone    string `json:"phone,omitempty" structs:"phone,omitempty"`
}

// OTPJson is the payload sent to the upstream /auth/verify-otp endpoint.
type OTPJson struct {
	Phone string `json:"phone" structs:"phone"`
	OTP   string `json:"otp" structs:"otp"`
}

// FieldError is an upstream business error attached to a specific input field.
type FieldError struct {
	Message string `json:"message"`
	Field   string `json:"field"`
}

func (e *FieldError) Error() string {
	return e.Message
}
