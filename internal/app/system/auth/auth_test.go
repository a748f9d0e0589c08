package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/trazilica/server/internal/app/system/auth"
)

func newTestSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		24*time.Hour,
		false,
		zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

func withTestUser(r *http.Request, role string) *http.Request {
	user := &auth.SessionUser{
		ID:    "507f1f77bcf86cd799439011", // Valid ObjectID hex
		Name:  "Test User",
		Email: "test@example.com",
		Role:  role,
	}
	return auth.WithTestUser(r, user)
}

func TestRequireSignedIn_NoUser_Returns401(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/tasks", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("expected JSON error body, got Content-Type %q", ct)
	}
}

func TestRequireSignedIn_WithUser_Proceeds(t *testing.T) {
	sm := newTestSessionManager(t)

	called := false
	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := withTestUser(httptest.NewRequest("GET", "/tasks", nil), "student")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called {
		t.Error("expected handler to be called")
	}
}

func TestRequireRole_NoUser_Returns401(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireRole("teacher")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/tasks", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestRequireRole_WrongRole_Returns403(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireRole("teacher")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := withTestUser(httptest.NewRequest("POST", "/tasks", nil), "student")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
}

func TestRequireRole_CorrectRole_Proceeds(t *testing.T) {
	sm := newTestSessionManager(t)

	called := false
	handler := sm.RequireRole("teacher")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := withTestUser(httptest.NewRequest("POST", "/tasks", nil), "teacher")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called {
		t.Error("expected handler to be called")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestRequireRole_CaseInsensitive(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireRole("teacher")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := withTestUser(httptest.NewRequest("POST", "/tasks", nil), "TEACHER")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d for uppercase role, got %d", http.StatusOK, rec.Code)
	}
}

func TestRequireRole_MultipleRoles(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireRole("teacher", "student")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		role     string
		expected int
	}{
		{"teacher", http.StatusOK},
		{"student", http.StatusOK},
		{"visitor", http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.role, func(t *testing.T) {
			req := withTestUser(httptest.NewRequest("GET", "/leaderboard", nil), tc.role)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.expected {
				t.Errorf("role %q: expected status %d, got %d", tc.role, tc.expected, rec.Code)
			}
		})
	}
}

func TestCurrentUser_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)

	user, ok := auth.CurrentUser(req)

	if ok {
		t.Error("expected ok to be false when no user in context")
	}
	if user != nil {
		t.Error("expected user to be nil when no user in context")
	}
}

func TestCurrentUser_WithUser(t *testing.T) {
	req := withTestUser(httptest.NewRequest("GET", "/", nil), "teacher")

	user, ok := auth.CurrentUser(req)

	if !ok {
		t.Error("expected ok to be true when user in context")
	}
	if user == nil {
		t.Fatal("expected user to not be nil")
	}
	if user.Role != "teacher" {
		t.Errorf("expected role 'teacher', got %q", user.Role)
	}
}

func TestLoadSessionUser_BearerToken(t *testing.T) {
	sm := newTestSessionManager(t)

	want := &auth.SessionUser{
		ID:    "507f1f77bcf86cd799439011",
		Name:  "Ivana",
		Email: "ivana@example.com",
		Role:  "student",
	}
	token, err := sm.Tokens().Issue(want)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	var got *auth.SessionUser
	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got == nil {
		t.Fatal("expected user in context")
	}
	if got.ID != want.ID || got.Name != want.Name || got.Email != want.Email || got.Role != want.Role {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestLoadSessionUser_BadBearerToken(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.CurrentUser(r); ok {
			t.Error("expected no user in context for a garbage token")
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/tasks", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
}

func TestLoadSessionUser_Cookie(t *testing.T) {
	sm := newTestSessionManager(t)

	u := &auth.SessionUser{
		ID:    "507f1f77bcf86cd799439011",
		Name:  "Marko",
		Email: "marko@example.com",
		Role:  "teacher",
	}

	// Sign in to capture the cookie.
	signinRec := httptest.NewRecorder()
	signinReq := httptest.NewRequest("POST", "/login", nil)
	if err := sm.SignIn(signinRec, signinReq, u); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	cookies := signinRec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie to be set")
	}

	var got *auth.SessionUser
	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/tasks", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got == nil {
		t.Fatal("expected user in context from session cookie")
	}
	if got.ID != u.ID || got.Role != u.Role {
		t.Errorf("got %+v, want %+v", got, u)
	}
}

func TestTokenIssuer_Expired(t *testing.T) {
	ti := auth.NewTokenIssuer([]byte("test-session-key-must-be-32-chars-long"), time.Minute)

	token, err := ti.Issue(&auth.SessionUser{ID: "507f1f77bcf86cd799439011", Role: "student"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// A fresh token parses.
	if _, err := ti.Parse(token); err != nil {
		t.Fatalf("parse fresh token: %v", err)
	}

	// Tampering invalidates it.
	if _, err := ti.Parse(token + "x"); err == nil {
		t.Error("expected tampered token to be rejected")
	}

	// A token signed with a different key is rejected.
	other := auth.NewTokenIssuer([]byte("another-key-entirely-also-32-chars!!"), time.Minute)
	if _, err := other.Parse(token); err == nil {
		t.Error("expected foreign-key token to be rejected")
	}
}
