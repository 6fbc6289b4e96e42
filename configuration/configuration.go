/*
 * Copyright (C) 2025 DXTR Asia Pte. Ltd.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package configuration

import (
	"os"

	"github.com/joho/godotenv"
)

type Configuration struct {
	ListenAddress     string `json:"listen_address"`
	UpstreamProtocol  string `json:"upstream_protocol"`
	UpstreamEndpoint  string `json:"upstream_endpoint"`
	UpstreamApiPath   string `json:"upstream_api_path"`
	ProxyPrefix       string `json:"proxy_prefix"`
	CountriesSchedule string `json:"countries_schedule"`
}

var Config = Configuration{}

func Init() {
	// load local .env file, if present
	_ = godotenv.Load()

	// set listen address
	if os.Getenv("LISTEN_ADDRESS") != "" {
		Config.ListenAddress = os.Getenv("LISTEN_ADDRESS")
	} else {
		Config.ListenAddress = "127.0.0.1:8080"
	}

	// set upstream API protocol
	if os.Getenv("UPSTREAM_PROTOCOL") != "" {
		Config.UpstreamProtocol = os.Getenv("UPSTREAM_PROTOCOL")
	} else {
		Config.UpstreamProtocol = "https"
	}

	// set upstream API endpoint
	if os.Getenv("UPSTREAM_ENDPOINT") != "" {
		Config.UpstreamEndpoint = os.Getenv("UPSTREAM_ENDPOINT")
	} else {
		Config.UpstreamEndpoint = "fe-technical-assignment.dxtr.asia"
	}

	// set upstream API path
	if os.Getenv("UPSTREAM_API_PATH") != "" {
		Config.UpstreamApiPath = os.Getenv("UPSTREAM_API_PATH")
	} else {
		Config.UpstreamApiPath = "/api/v1"
	}

	// set proxy route prefix
	if os.Getenv("PROXY_PREFIX") != "" {
		Config.ProxyPrefix = os.Getenv("PROXY_PREFIX")
	} else {
		Config.ProxyPrefix = "/api/proxy/"
	}

	// set countries cache refresh schedule
	if os.Getenv("COUNTRIES_SCHEDULE") != "" {
		Config.CountriesSchedule = os.Getenv("COUNTRIES_SCHEDULE")
	} else {
		Config.CountriesSchedule = "@hourly"
	}
}

// UpstreamBase returns the base URL all forwarded requests are resolved against.
func UpstreamBase() string {
	return Config.UpstreamProtocol + "://" + Config.UpstreamEndpoint + Config.UpstreamApiPath
}
