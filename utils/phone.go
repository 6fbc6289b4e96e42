/*
 * Copyright (C) 2025 DXTR Asia Pte. Ltd.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package utils

import (
	"strings"
)

// Known country calling codes, checked in this order. The first match wins,
// even when a longer code would also match.
var possibleCodes = []string{"62", "60", "65", "63", "66", "84", "1", "44", "81", "86"}

// FormatPhoneNumber turns a raw digit string into a display string with the
// country calling code split off and the remainder grouped 3-3-2-rest,
// e.g. "6281234567890" -> "+62 812 345 67 890". Inputs too short to carry a
// country code are returned unchanged.
func FormatPhoneNumber(phone string) string {
	if phone == "" {
		return ""
	}

	digits := Digits(phone)

	if len(digits) < 3 {
		return phone
	}

	countryCode := ""
	numberPart := ""

	for _, code := range possibleCodes {
		if strings.HasPrefix(digits, code) {
			countryCode = "+" + code
			numberPart = digits[len(code):]
			break
		}
	}

	// unknown code: assume the first two digits are the country code
	if countryCode == "" {
		countryCode = "+" + digits[:2]
		numberPart = digits[2:]
	}

	formatted := ""
	remaining := numberPart

	if len(remaining) >= 3 {
		formatted += remaining[:3]
		remaining = remaining[3:]
	}

	if len(remaining) >= 3 {
		formatted += " " + remaining[:3]
		remaining = remaining[3:]
	}

	if len(remaining) >= 2 {
		formatted += " " + remaining[:2]
		remaining = remaining[2:]
	}

	if len(remaining) > 0 {
		formatted += " " + remaining
	}

	return countryCode + " " + strings.TrimSpace(formatted)
}

// Digits strips everything but ASCII digits from value.
func Digits(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
