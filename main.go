/*
 * Copyright (C) 2025 DXTR Asia Pte. Ltd.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package main

import (
	"io"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"github.com/dxtrasia/cryptodash-middleware/configuration"
	"github.com/dxtrasia/cryptodash-middleware/logs"
	"github.com/dxtrasia/cryptodash-middleware/methods"
	"github.com/dxtrasia/cryptodash-middleware/store"
	"github.com/dxtrasia/cryptodash-middleware/utils"
)

func main() {
	// init logger
	logs.Init("cryptodash-middleware")

	// init configuration
	configuration.Init()

	// init countries cache
	store.CountriesInit()

	// create router
	router := createRouter()

	// create cron to keep the countries cache warm
	c := cron.New()
	c.AddFunc(configuration.Config.CountriesSchedule, func() {
		if err := store.RefreshCountries(); err != nil {
			utils.LogError(err)
		}
	})
	c.Start()

	// run server
	router.Run(configuration.Config.ListenAddress)
}

func createRouter() *gin.Engine {
	// disable log to stdout when running in release mode
	if gin.Mode() == gin.ReleaseMode {
		gin.DefaultWriter = io.Discard
	}

	// init routers
	router := gin.New()
	router.RedirectTrailingSlash = false
	router.Use(
		gin.LoggerWithWriter(gin.DefaultWriter),
		gin.Recovery(),
	)

	// add default compression
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// cors configuration only in debug mode GIN_MODE=debug (default)
	if gin.Mode() == gin.DebugMode {
		// gin gonic cors conf
		corsConf := cors.DefaultConfig()
		corsConf.AllowHeaders = []string{"Authorization", "Content-Type", "Accept"}
		corsConf.AllowAllOrigins = true
		router.Use(cors.New(corsConf))
	}

	// define api group
	api := router.Group("/")

	// proxy gateway: every dashboard call to the upstream API goes through here
	api.GET("/api/proxy/*path", methods.ProxyRequest)
	api.POST("/api/proxy/*path", methods.ProxyRequest)
	api.OPTIONS("/api/proxy/*path", methods.ProxyPreflight)

	// cached countries list for the sign-in page
	api.GET("/api/countries", methods.GetCountries)

	// Test endpoint (not authenticated)
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "healthy",
			"status":  "ok",
		})
	})

	return router
}
