/*
 * Copyright (C) 2025 DXTR Asia Pte. Ltd.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/dxtrasia/cryptodash-middleware/configuration"
	"github.com/dxtrasia/cryptodash-middleware/logs"
	"github.com/dxtrasia/cryptodash-middleware/models"
)

var (
	countriesMutex     sync.RWMutex
	countries          []models.Country
	countriesFetchedAt time.Time
)

type countriesEnvelope struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    []models.Country `json:"data"`
}

// CountriesInit resets the countries cache.
func CountriesInit() {
	countriesMutex.Lock()
	defer countriesMutex.Unlock()

	countries = nil
	countriesFetchedAt = time.Time{}
}

// Countries returns a copy of the cached country list.
func Countries() []models.Country {
	countriesMutex.RLock()
	defer countriesMutex.RUnlock()

	list := make([]models.Country, len(countries))
	copy(list, countries)
	return list
}

// CountriesFetchedAt returns the time of the last successful refresh.
func CountriesFetchedAt() time.Time {
	countriesMutex.RLock()
	defer countriesMutex.RUnlock()

	return countriesFetchedAt
}

// RefreshCountries pulls the country list from the upstream API and swaps the
// cache. On failure the previous cache is kept.
func RefreshCountries() error {
	url := configuration.UpstreamBase() + "/countries"

	// create HTTP client with timeout
	client := &http.Client{
		Timeout: time.Second * 10,
	}

	resp, err := client.Get(url)
	if err != nil {
		logs.Log("[ERROR][COUNTRIES] refresh failed url=" + url + " err=" + err.Error())
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logs.Log(fmt.Sprintf("[ERROR][COUNTRIES] refresh failed url=%s status=%d", url, resp.StatusCode))
		return fmt.Errorf("countries refresh returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logs.Log("[ERROR][COUNTRIES] failed to read refresh response: " + err.Error())
		return err
	}

	var envelope countriesEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		logs.Log("[ERROR][COUNTRIES] failed to decode refresh response: " + err.Error())
		return err
	}

	if !envelope.Success {
		logs.Log("[ERROR][COUNTRIES] upstream refused refresh: " + envelope.Message)
		return errors.New("countries refresh refused by upstream")
	}

	countriesMutex.Lock()
	countries = envelope.Data
	countriesFetchedAt = time.Now()
	countriesMutex.Unlock()

	logs.Log(fmt.Sprintf("[INFO][COUNTRIES] cache refreshed, %d entries", len(envelope.Data)))
	return nil
}
