package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func authTestHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetAPIKey(r.Context()) == "" && r.Method != http.MethodOptions {
			t.Error("api key missing from context")
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAPIKeyAuthMissingHeader(t *testing.T) {
	h := APIKeyAuth("secret")(authTestHandler(t))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/honeypot", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAPIKeyAuthWrongKey(t *testing.T) {
	h := APIKeyAuth("secret")(authTestHandler(t))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/honeypot", nil)
	req.Header.Set("X-API-Key", "wrong")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAPIKeyAuthValidKey(t *testing.T) {
	h := APIKeyAuth("secret")(authTestHandler(t))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/honeypot", nil)
	req.Header.Set("X-API-Key", "secret")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestAPIKeyAuthSkipsPreflight(t *testing.T) {
	h := APIKeyAuth("secret")(authTestHandler(t))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/honeypot", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("preflight status = %d, want 200", w.Code)
	}
}
