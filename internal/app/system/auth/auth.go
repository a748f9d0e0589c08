// internal/app/system/auth/auth.go

// Package auth holds session and token authentication for the API.
// A signed-in user is represented by a SessionUser carried in the
// request context; LoadSessionUser resolves it from either a bearer
// token (mobile clients) or the session cookie (browser clients).
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/trazilica/server/internal/app/system/httpjson"
)

const (
	isAuthKey    = "is_authenticated"
	userIDKey    = "user_id"
	userNameKey  = "user_name"
	userEmailKey = "user_email"
	userRoleKey  = "user_role"
)

// SessionUser is what we cache in the session & inject into r.Context().
type SessionUser struct {
	ID    string
	Name  string
	Email string
	Role  string
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// WithTestUser injects a user into the request context. Test helper;
// simulates what LoadSessionUser does for a valid credential.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

// SessionManager owns the cookie store and the token issuer and
// provides the authentication middleware.
type SessionManager struct {
	store       *sessions.CookieStore
	sessionName string
	tokens      *TokenIssuer
	log         *zap.Logger
}

// NewSessionManager builds a SessionManager. sessionKey signs both the
// cookie store and the bearer tokens; tokenTTL bounds token lifetime.
// The secure flag controls the cookie Secure attribute and SameSite
// mode: production wants Secure + SameSite=None so cookies survive
// cross-site use over HTTPS, local dev over http://localhost needs
// secure=false or the browser drops the cookie.
func NewSessionManager(sessionKey, sessionName, domain string, tokenTTL time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if sessionName == "" {
		sessionName = "trazilica-session"
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{
		store:       store,
		sessionName: sessionName,
		tokens:      NewTokenIssuer([]byte(sessionKey), tokenTTL),
		log:         logger,
	}, nil
}

// Tokens exposes the issuer so the login handler can mint a bearer
// token alongside the cookie.
func (sm *SessionManager) Tokens() *TokenIssuer { return sm.tokens }

// SignIn persists the user in the session cookie.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, u *SessionUser) error {
	sess, _ := sm.store.Get(r, sm.sessionName)
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = u.ID
	sess.Values[userNameKey] = u.Name
	sess.Values[userEmailKey] = u.Email
	sess.Values[userRoleKey] = u.Role
	return sess.Save(r, w)
}

// SignOut clears the session cookie.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.store.Get(r, sm.sessionName)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// LoadSessionUser injects the user into context if the request carries
// a valid credential. Bearer tokens win over cookies because mobile
// clients send only the Authorization header.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := sm.userFromBearer(r); ok {
			next.ServeHTTP(w, withUser(r, u))
			return
		}
		if u, ok := sm.userFromCookie(r); ok {
			next.ServeHTTP(w, withUser(r, u))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures there is a user in context (set by
// LoadSessionUser); otherwise responds 401 with the JSON error shape.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		httpjson.Error(w, http.StatusUnauthorized, httpjson.CodeUnauthorized, "sign in required")
	})
}

// RequireRole ensures the context user holds one of the allowed roles.
// Missing user is 401, wrong role is 403. Role comparison is
// case-insensitive.
func (sm *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				httpjson.Error(w, http.StatusUnauthorized, httpjson.CodeUnauthorized, "sign in required")
				return
			}
			if _, has := set[strings.ToLower(u.Role)]; !has {
				httpjson.Error(w, http.StatusForbidden, httpjson.CodeForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// helpers

func (sm *SessionManager) userFromBearer(r *http.Request) (*SessionUser, bool) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return nil, false
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, false
	}
	u, err := sm.tokens.Parse(strings.TrimSpace(parts[1]))
	if err != nil {
		sm.log.Debug("bearer token rejected", zap.Error(err))
		return nil, false
	}
	return u, true
}

func (sm *SessionManager) userFromCookie(r *http.Request) (*SessionUser, bool) {
	sess, err := sm.store.Get(r, sm.sessionName)
	if err != nil {
		// A cookie signed with a rotated key fails to decode; treat it
		// as signed out rather than an error.
		if scErr, ok := err.(securecookie.Error); ok && scErr.IsDecode() {
			sm.log.Debug("undecodable session cookie ignored", zap.Error(err))
		}
		return nil, false
	}
	if isAuth, _ := sess.Values[isAuthKey].(bool); !isAuth {
		return nil, false
	}
	u := &SessionUser{
		ID:    getString(sess, userIDKey),
		Name:  getString(sess, userNameKey),
		Email: getString(sess, userEmailKey),
		Role:  getString(sess, userRoleKey),
	}
	if u.ID == "" {
		return nil, false
	}
	return u, true
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// getString safely extracts a string from a session value.
func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}
