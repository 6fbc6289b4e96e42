/*
 * Copyright (C) 2025 DXTR Asia Pte. Ltd.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package utils

import (
	"strings"
)

// Offset from an uppercase ASCII letter to its regional indicator symbol.
const regionalIndicatorOffset = 127397

// FlagEmoji maps an ISO 3166-1 alpha-2 country code to its flag emoji.
func FlagEmoji(countryCode string) string {
	if countryCode == "" {
		return ""
	}

	var b strings.Builder
	for _, r := range strings.ToUpper(countryCode) {
		b.WriteRune(r + regionalIndicatorOffset)
	}
	return b.String()
}
