package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		wantOK bool
	}{
		{"valid bearer", "Bearer abc123", "abc123", true},
		{"missing header", "", "", false},
		{"wrong scheme", "Basic abc123", "", false},
		{"empty token", "Bearer ", "", false},
		{"token with padding space", "Bearer  abc123", "abc123", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			got, ok := bearerToken(r)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("bearerToken = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestRequireSignedIn_Anonymous(t *testing.T) {
	h := RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run for anonymous request")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orgs", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
}

func TestRequireSignedIn_WithUser(t *testing.T) {
	called := false
	h := RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		u, ok := CurrentUser(r)
		if !ok || u.Email != "user@example.com" {
			t.Errorf("CurrentUser = (%v, %v)", u, ok)
		}
	}))
	r := httptest.NewRequest(http.MethodGet, "/orgs", nil)
	r = withUser(r, &SessionUser{ID: "656f1f77bcf86cd799439011", Email: "user@example.com"})
	h.ServeHTTP(httptest.NewRecorder(), r)
	if !called {
		t.Error("handler did not run for authenticated request")
	}
}

func TestCurrentUser_Empty(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if u, ok := CurrentUser(r); ok || u != nil {
		t.Errorf("CurrentUser on bare request = (%v, %v), want (nil, false)", u, ok)
	}
}
