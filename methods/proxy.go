/*
 * Copyright (C) 2025 DXTR Asia Pte. Ltd.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package methods

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dxtrasia/cryptodash-middleware/configuration"
	"github.com/dxtrasia/cryptodash-middleware/logs"
)

// No timeout: forwarded calls run as long as the upstream takes.
var proxyClient = &http.Client{}

// ProxyRequest forwards a dashboard call to the upstream API. The proxy
// prefix is stripped from the incoming path and the remainder appended to the
// upstream base URL as-is. The response body is parsed as JSON and re-emitted
// with the upstream status code. Every failure along the way collapses to a
// generic 500 so the client never sees a raw transport error.
func ProxyRequest(c *gin.Context) {
	requestID := uuid.New().String()

	// strip the proxy route prefix from the incoming path
	path := strings.Replace(c.Request.URL.Path, configuration.Config.ProxyPrefix, "", 1)
	targetURL := configuration.UpstreamBase() + "/" + path

	logs.Log(fmt.Sprintf("[INFO][PROXY] %s -> %s request_id=%s", c.Request.Method, targetURL, requestID))

	var outBody io.Reader

	// POST bodies are round-tripped through a JSON parse and re-serialize,
	// not forwarded byte-exact. Upstream content negotiation depends on it.
	if c.Request.Method == http.MethodPost {
		inBody, err := io.ReadAll(c.Request.Body)
		if err != nil {
			proxyError(c, requestID, err)
			return
		}

		var payload interface{}
		if err := json.Unmarshal(inBody, &payload); err != nil {
			proxyError(c, requestID, err)
			return
		}

		forwarded, err := json.Marshal(payload)
		if err != nil {
			proxyError(c, requestID, err)
			return
		}

		outBody = bytes.NewReader(forwarded)
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, targetURL, outBody)
	if err != nil {
		proxyError(c, requestID, err)
		return
	}

	// copy headers from the original request, Authorization included.
	// Accept-Encoding stays behind: a user-set value disables the
	// transport's transparent gzip decompression and compressed bytes
	// would reach the JSON parse below.
	for name, values := range c.Request.Header {
		if strings.EqualFold(name, "Accept-Encoding") {
			continue
		}
		for _, value := range values {
			req.Header.Add(name, value)
		}
	}

	// force JSON on requests carrying a body
	if outBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := proxyClient.Do(req)
	if err != nil {
		proxyError(c, requestID, err)
		return
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		proxyError(c, requestID, err)
		return
	}

	var data interface{}
	if err := json.Unmarshal(respBody, &data); err != nil {
		proxyError(c, requestID, err)
		return
	}

	// mirror the upstream status code exactly
	c.JSON(resp.StatusCode, data)
}

// ProxyPreflight answers CORS preflight locally, without contacting upstream.
func ProxyPreflight(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
	c.Status(http.StatusNoContent)
}

func proxyError(c *gin.Context, requestID string, err error) {
	logs.Log(fmt.Sprintf("[ERROR][PROXY] request failed request_id=%s err=%v", requestID, err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Proxy error"})
}
