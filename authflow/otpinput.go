/*
 * Copyright (C) 2025 DXTR Asia Pte. Ltd.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package authflow

// OTPDigits is the number of cells in the OTP entry widget.
const OTPDigits = 6

// OTPInput models the six-cell OTP entry as a plain state machine over a
// fixed-size digit array and a cursor, decoupled from any UI toolkit. A zero
// byte marks an empty cell.
type OTPInput struct {
	digits [OTPDigits]byte
	cursor int
}

func NewOTPInput() *OTPInput {
	return &OTPInput{}
}

// Prefill replaces the whole input, digits only, truncated to six cells. The
// cursor lands on the last filled cell.
func (o *OTPInput) Prefill(value string) {
	o.reset()

	i := 0
	for _, r := range value {
		if r < '0' || r > '9' {
			continue
		}
		if i == OTPDigits {
			break
		}
		o.digits[i] = byte(r)
		i++
	}

	if i > 0 {
		o.cursor = i - 1
	}
}

// Type puts a digit in the current cell and advances the cursor. Non-digit
// input is ignored.
func (o *OTPInput) Type(r rune) {
	if r < '0' || r > '9' {
		return
	}

	o.digits[o.cursor] = byte(r)
	if o.cursor < OTPDigits-1 {
		o.cursor++
	}
}

// Backspace clears the current cell, or moves back and clears the previous
// cell when the current one is already empty.
func (o *OTPInput) Backspace() {
	if o.digits[o.cursor] == 0 && o.cursor > 0 {
		o.cursor--
	}
	o.digits[o.cursor] = 0
}

// Paste behaves like Prefill: clipboard content wins over whatever was typed.
func (o *OTPInput) Paste(value string) {
	o.Prefill(value)
}

// Value returns the digits typed so far, in cell order, skipping empty cells.
func (o *OTPInput) Value() string {
	out := make([]byte, 0, OTPDigits)
	for _, d := range o.digits {
		if d != 0 {
			out = append(out, d)
		}
	}
	return string(out)
}

// Complete reports whether all six cells are filled.
func (o *OTPInput) Complete() bool {
	for _, d := range o.digits {
		if d == 0 {
			return false
		}
	}
	return true
}

// Cursor returns the index of the active cell.
func (o *OTPInput) Cursor() int {
	return o.cursor
}

func (o *OTPInput) reset() {
	o.digits = [OTPDigits]byte{}
	o.cursor = 0
}
