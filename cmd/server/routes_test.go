package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"tipsats.backend/internal/interfaces/http/handlers"
)

func testRouteDeps() routeDeps {
	deny := func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false})
	}
	return routeDeps{
		authHandler:    &handlers.AuthHandler{},
		walletHandler:  &handlers.WalletHandler{},
		tipHandler:     &handlers.TipHandler{},
		creatorHandler: &handlers.CreatorHandler{},
		authMiddleware: deny,
		optionalAuth:   func(c *gin.Context) { c.Next() },
	}
}

func TestRegisterAPIV1Routes_RegistersKeyRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	registerAPIV1Routes(r, testRouteDeps())

	expects := []struct {
		method string
		path   string
	}{
		{"POST", "/api/v1/auth/send-otp"},
		{"POST", "/api/v1/auth/verify-otp"},
		{"POST", "/api/v1/auth/refresh"},
		{"POST", "/api/v1/auth/logout"},
		{"GET", "/api/v1/auth/me"},
		{"POST", "/api/v1/wallet/create"},
		{"GET", "/api/v1/wallet/:address/balance"},
		{"POST", "/api/v1/tip/send"},
		{"GET", "/api/v1/tx/:txId/status"},
		{"POST", "/api/v1/creator/register"},
		{"GET", "/api/v1/creator/:username"},
		{"GET", "/api/v1/dashboard"},
	}

	routes := r.Routes()
	if len(routes) != len(expects) {
		t.Fatalf("expected %d routes, got %d", len(expects), len(routes))
	}
	for _, exp := range expects {
		found := false
		for _, route := range routes {
			if route.Method == exp.method && route.Path == exp.path {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("route %s %s not registered", exp.method, exp.path)
		}
	}
}

func TestRegisterAPIV1Routes_ProtectedRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	registerAPIV1Routes(r, testRouteDeps())

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/dashboard"},
		{http.MethodGet, "/api/v1/auth/me"},
		{http.MethodPost, "/api/v1/creator/register"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestRegisterAPIV1Routes_IdempotencyRequired(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	deps := testRouteDeps()
	deps.requireIdempotency = true
	registerAPIV1Routes(r, deps)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tip/send", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without Idempotency-Key, got %d", rec.Code)
	}
}
