// internal/app/features/login/handler.go
package login

import (
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	userstore "github.com/trazilica/server/internal/app/store/users"
	"github.com/trazilica/server/internal/app/system/auth"
	"github.com/trazilica/server/internal/app/system/httpjson"
	"github.com/trazilica/server/internal/app/system/normalize"
	"github.com/trazilica/server/internal/domain/models"
)

type Handler struct {
	Users *userstore.Store
	SM    *auth.SessionManager
	Log   *zap.Logger
}

func NewHandler(db *mongo.Database, sm *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{Users: userstore.New(db), SM: sm, Log: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// HandleLogin handles POST /login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, httpjson.CodeBadRequest, err.Error())
		return
	}

	email := normalize.Email(req.Email)
	if email == "" || req.Password == "" {
		httpjson.Error(w, http.StatusBadRequest, httpjson.CodeBadRequest, "email and password are required")
		return
	}

	user, err := h.Users.GetByEmail(r.Context(), email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Same answer as a wrong password, so the endpoint does not
		// leak which emails have accounts.
		httpjson.Error(w, http.StatusUnauthorized, httpjson.CodeUnauthorized, "invalid email or password")
		return
	}
	if err != nil {
		h.Log.Error("login: lookup failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, httpjson.CodeStoreUnavailable, "could not sign in")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		httpjson.Error(w, http.StatusUnauthorized, httpjson.CodeUnauthorized, "invalid email or password")
		return
	}

	su := &auth.SessionUser{ID: user.ID.Hex(), Name: user.Name, Email: user.Email, Role: user.Role}
	token, err := h.SM.Tokens().Issue(su)
	if err != nil {
		h.Log.Error("login: issue token failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, httpjson.CodeStoreUnavailable, "could not sign in")
		return
	}
	if err := h.SM.SignIn(w, r, su); err != nil {
		h.Log.Warn("login: session sign-in failed", zap.Error(err))
	}

	h.Log.Info("user signed in", zap.String("user_id", user.ID.Hex()))

	httpjson.Write(w, http.StatusOK, loginResponse{Token: token, User: user})
}

// HandleLogout handles POST /logout.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.SM.SignOut(w, r); err != nil {
		h.Log.Warn("logout: session clear failed", zap.Error(err))
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "signed_out"})
}
