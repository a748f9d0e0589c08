// internal/app/features/register/handler.go
package register

import (
	"errors"
	"net/http"
	"regexp"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	scorestore "github.com/trazilica/server/internal/app/store/scores"
	userstore "github.com/trazilica/server/internal/app/store/users"
	"github.com/trazilica/server/internal/app/system/auth"
	"github.com/trazilica/server/internal/app/system/httpjson"
	"github.com/trazilica/server/internal/app/system/normalize"
	"github.com/trazilica/server/internal/domain/models"
	"github.com/trazilica/server/internal/domain/scope"
)

var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const minPasswordLen = 6

type Handler struct {
	Users  *userstore.Store
	Scores *scorestore.Store
	SM     *auth.SessionManager
	Log    *zap.Logger
}

func NewHandler(db *mongo.Database, sm *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Users:  userstore.New(db),
		Scores: scorestore.New(db),
		SM:     sm,
		Log:    logger,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type registerResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// HandleRegister handles POST /register.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, httpjson.CodeBadRequest, err.Error())
		return
	}

	name := normalize.Name(req.Name)
	email := normalize.Email(req.Email)
	role := normalize.Role(req.Role)

	switch {
	case name == "":
		httpjson.Error(w, http.StatusBadRequest, httpjson.CodeBadRequest, "name is required")
		return
	case !emailRx.MatchString(email):
		httpjson.Error(w, http.StatusBadRequest, httpjson.CodeBadRequest, "a valid email is required")
		return
	case len(req.Password) < minPasswordLen:
		httpjson.Error(w, http.StatusBadRequest, httpjson.CodeBadRequest, "password must be at least 6 characters")
		return
	case role != models.RoleTeacher && role != models.RoleStudent:
		httpjson.Error(w, http.StatusBadRequest, httpjson.CodeBadRequest, "role must be teacher or student")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.Log.Error("register: bcrypt failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, httpjson.CodeStoreUnavailable, "could not create account")
		return
	}

	user, err := h.Users.Create(r.Context(), models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		httpjson.Error(w, http.StatusConflict, httpjson.CodeDuplicateEmail, "an account with this email already exists")
		return
	}
	if err != nil {
		h.Log.Error("register: create user failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, httpjson.CodeStoreUnavailable, "could not create account")
		return
	}

	// New users appear on the global board at zero immediately.
	if err := h.Scores.EnsureZero(r.Context(), scope.Global(), user.ID); err != nil {
		h.Log.Error("register: ensure global score failed",
			zap.String("user_id", user.ID.Hex()), zap.Error(err))
	}

	su := &auth.SessionUser{ID: user.ID.Hex(), Name: user.Name, Email: user.Email, Role: user.Role}
	token, err := h.SM.Tokens().Issue(su)
	if err != nil {
		h.Log.Error("register: issue token failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, httpjson.CodeStoreUnavailable, "could not create session")
		return
	}
	if err := h.SM.SignIn(w, r, su); err != nil {
		h.Log.Warn("register: session sign-in failed", zap.Error(err))
	}

	h.Log.Info("user registered",
		zap.String("user_id", user.ID.Hex()),
		zap.String("role", user.Role))

	httpjson.Write(w, http.StatusCreated, registerResponse{Token: token, User: user})
}
