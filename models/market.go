/*
 * Copyright (C) 2025 DXTR Asia Pte. Ltd.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package models

// Country represents an entry of the upstream /countries list.
type Country struct {
	Name     string `json:"name"`
	Code     string `json:"code"`
	DialCode string `json:"dial_code"`
}

// CryptoItem represents an entry of the upstream /list-crypto list.
type CryptoItem struct {
	ID            string `json:"id"`
	Name          string `json:"name,omitempty"`
	Symbol        string `json:"symbol,omitempty"`
	Image         string `json:"image,omitempty"`
	PriceIDR      string `json:"price_idr,omitempty"`
	ChangePercent string `json:"change_percent,omitempty"`
	IsPositive    bool   `json:"isPositive,omitempty"`
	Hot           bool   `json:"hot,omitempty"`
	IsFavorite    bool   `json:"isFavorite,omitempty"`
	Type          string `json:"type,omitempty"`
}

// Envelope is the generic upstream response wrapper.
type Envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	StatusCode int         `json:"status_code,omitempty"`
	Data       interface{} `json:"data,omitempty"`
}
