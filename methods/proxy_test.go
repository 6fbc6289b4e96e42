/*
 * Copyright (C) 2025 DXTR Asia Pte. Ltd.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package methods

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dxtrasia/cryptodash-middleware/configuration"
	"github.com/dxtrasia/cryptodash-middleware/logs"
)

func init() {
	// Initialize logs for tests
	logs.Init("cryptodash-test")
}

type recordedRequest struct {
	Method      string
	Path        string
	Body        string
	ContentType string
	Authz       string
}

// upstreamStub records what reaches it and replies with a fixed status/body.
type upstreamStub struct {
	server *httptest.Server
	status int
	body   string
	hits   atomic.Int64
	last   atomic.Value
}

func newUpstreamStub(status int, body string) *upstreamStub {
	u := &upstreamStub{status: status, body: body}
	u.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.hits.Add(1)
		raw, _ := io.ReadAll(r.Body)
		u.last.Store(recordedRequest{
			Method:      r.Method,
			Path:        r.URL.Path,
			Body:        string(raw),
			ContentType: r.Header.Get("Content-Type"),
			Authz:       r.Header.Get("Authorization"),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(u.status)
		_, _ = w.Write([]byte(u.body))
	}))
	return u
}

func (u *upstreamStub) lastRequest() recordedRequest {
	req, _ := u.last.Load().(recordedRequest)
	return req
}

func newProxyRouter(t *testing.T, upstreamURL string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	configuration.Config.UpstreamProtocol = "http"
	configuration.Config.UpstreamEndpoint = strings.TrimPrefix(upstreamURL, "http://")
	configuration.Config.UpstreamApiPath = "/api/v1"
	configuration.Config.ProxyPrefix = "/api/proxy/"

	router := gin.New()
	router.GET("/api/proxy/*path", ProxyRequest)
	router.POST("/api/proxy/*path", ProxyRequest)
	router.OPTIONS("/api/proxy/*path", ProxyPreflight)
	return router
}

func TestProxyPathMapping(t *testing.T) {
	upstream := newUpstreamStub(http.StatusOK, `{"success":true}`)
	defer upstream.server.Close()
	router := newProxyRouter(t, upstream.server.URL)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/proxy/list-crypto", nil)
	req.Header.Set("Authorization", "Bearer abc")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	forwarded := upstream.lastRequest()
	assert.Equal(t, "/api/v1/list-crypto", forwarded.Path)
	assert.Equal(t, "GET", forwarded.Method)
	assert.Equal(t, "Bearer abc", forwarded.Authz, "inbound headers must be forwarded unchanged")
	assert.Empty(t, forwarded.Body, "GET must not carry a body")
}

func TestProxyNestedPathForwardedVerbatim(t *testing.T) {
	upstream := newUpstreamStub(http.StatusOK, `{"success":true}`)
	defer upstream.server.Close()
	router := newProxyRouter(t, upstream.server.URL)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/proxy/auth/some/deep/path", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, "/api/v1/auth/some/deep/path", upstream.lastRequest().Path)
}

func TestProxyPostJSONRoundTrip(t *testing.T) {
	upstream := newUpstreamStub(http.StatusOK, `{"success":true}`)
	defer upstream.server.Close()
	router := newProxyRouter(t, upstream.server.URL)

	w := httptest.NewRecorder()
	body := strings.NewReader("{\n  \"email\": \"a@b.com\",\n  \"password\": \"x\"\n}")
	req, _ := http.NewRequest("POST", "/api/proxy/auth/login", body)
	req.Header.Set("Content-Type", "text/plain")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	forwarded := upstream.lastRequest()
	assert.Equal(t, "/api/v1/auth/login", forwarded.Path)
	// body is re-serialized, not passed through byte-exact
	assert.JSONEq(t, `{"email":"a@b.com","password":"x"}`, forwarded.Body)
	assert.NotContains(t, forwarded.Body, "\n")
	// Content-Type is forced to JSON whatever the client sent
	assert.Equal(t, "application/json", forwarded.ContentType)
}

func TestProxyUpstreamGzipResponse(t *testing.T) {
	// upstream compresses when the request advertises gzip support, the way
	// any real server behind the gateway does for browser traffic
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			w.Header().Set("Content-Encoding", "gzip")
			gz := gzip.NewWriter(w)
			_, _ = gz.Write([]byte(`{"success":true}`))
			_ = gz.Close()
			return
		}
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer upstream.Close()
	router := newProxyRouter(t, upstream.URL)

	// browsers send Accept-Encoding: gzip on every request
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/proxy/list-crypto", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
}

func TestProxyStatusFidelity(t *testing.T) {
	upstream := newUpstreamStub(http.StatusTeapot, `{"error":"teapot","detail":[1,2,3]}`)
	defer upstream.server.Close()
	router := newProxyRouter(t, upstream.server.URL)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/proxy/list-crypto", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.JSONEq(t, `{"error":"teapot","detail":[1,2,3]}`, w.Body.String())
}

func TestProxyUpstreamErrorPayloadPassedThrough(t *testing.T) {
	upstream := newUpstreamStub(http.StatusUnauthorized, `{"success":false,"message":"Unauthorized","status_code":401}`)
	defer upstream.server.Close()
	router := newProxyRouter(t, upstream.server.URL)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/proxy/list-crypto", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Unauthorized","status_code":401}`, w.Body.String())
}

func TestProxyMalformedUpstreamJSON(t *testing.T) {
	upstream := newUpstreamStub(http.StatusOK, "<html>not json</html>")
	defer upstream.server.Close()
	router := newProxyRouter(t, upstream.server.URL)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/proxy/list-crypto", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Proxy error"}`, w.Body.String())
}

func TestProxyUpstreamUnreachable(t *testing.T) {
	upstream := newUpstreamStub(http.StatusOK, `{}`)
	router := newProxyRouter(t, upstream.server.URL)
	upstream.server.Close()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/proxy/list-crypto", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Proxy error"}`, w.Body.String())
}

func TestProxyInvalidPostBody(t *testing.T) {
	upstream := newUpstreamStub(http.StatusOK, `{}`)
	defer upstream.server.Close()
	router := newProxyRouter(t, upstream.server.URL)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/proxy/auth/login", strings.NewReader("not json at all"))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Proxy error"}`, w.Body.String())
	assert.Equal(t, int64(0), upstream.hits.Load(), "invalid body must fail before contacting upstream")
}

func TestProxyPreflight(t *testing.T) {
	upstream := newUpstreamStub(http.StatusOK, `{}`)
	defer upstream.server.Close()
	router := newProxyRouter(t, upstream.server.URL)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("OPTIONS", "/api/proxy/anything/at/all", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type, Authorization", w.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, int64(0), upstream.hits.Load(), "preflight must never reach upstream")
}
