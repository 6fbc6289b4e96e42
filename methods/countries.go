/*
 * Copyright (C) 2025 DXTR Asia Pte. Ltd.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package methods

import (
	"net/http"

	"github.com/fatih/structs"
	"github.com/gin-gonic/gin"

	"github.com/dxtrasia/cryptodash-middleware/models"
	"github.com/dxtrasia/cryptodash-middleware/store"
)

// GetCountries serves the cached country list. The cache is filled lazily on
// the first request and refreshed on a schedule by the cron in main.
func GetCountries(c *gin.Context) {
	countries := store.Countries()

	// lazy first fetch
	if len(countries) == 0 {
		if err := store.RefreshCountries(); err != nil {
			c.JSON(http.StatusServiceUnavailable, structs.Map(models.StatusServiceUnavailable{
				Code:    503,
				Message: "countries list not available",
				Data:    nil,
			}))
			return
		}
		countries = store.Countries()
	}

	c.JSON(http.StatusOK, structs.Map(models.StatusOK{
		Code:    200,
		Message: "countries list",
		Data:    countries,
	}))
}
