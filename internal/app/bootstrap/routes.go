// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	detectfeature "github.com/trazilica/server/internal/app/features/detect"
	groupsfeature "github.com/trazilica/server/internal/app/features/groups"
	healthfeature "github.com/trazilica/server/internal/app/features/health"
	leaderboardfeature "github.com/trazilica/server/internal/app/features/leaderboard"
	loginfeature "github.com/trazilica/server/internal/app/features/login"
	registerfeature "github.com/trazilica/server/internal/app/features/register"
	tasksfeature "github.com/trazilica/server/internal/app/features/tasks"
	"github.com/trazilica/server/internal/app/scoring"
	"github.com/trazilica/server/internal/app/services/vision"
	"github.com/trazilica/server/internal/app/system/auth"
	"github.com/trazilica/server/internal/app/system/timeouts"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. Trazilica builds the session manager,
// the vision client, and the scoring reconciler here, then mounts the
// JSON feature routers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(
		appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain,
		appCfg.TokenTTL, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	visionCfg := vision.Config{
		Endpoint: appCfg.VisionEndpoint,
		APIKey:   appCfg.VisionAPIKey,
		Timeout:  timeouts.Long(),
	}
	if appCfg.VisionCredentialsFile != "" {
		raw, err := os.ReadFile(appCfg.VisionCredentialsFile)
		if err != nil {
			logger.Error("reading vision credentials file failed", zap.Error(err))
			return nil, err
		}
		visionCfg.CredentialsJSON = string(raw)
	}
	visionClient, err := vision.New(context.Background(), visionCfg, logger)
	if err != nil {
		logger.Error("vision client init failed", zap.Error(err))
		return nil, err
	}

	db := deps.TrazilicaMongoDatabase
	reconciler := scoring.NewReconciler(db, appCfg.PointsPerFind, logger)

	r := chi.NewRouter()

	// Mobile and browser clients live on other origins.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   splitOrigins(appCfg.CORSOrigins),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Global auth middleware: loads SessionUser into context from a
	// bearer token or a session cookie, whichever the client sent.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.TrazilicaMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Accounts
	registerHandler := registerfeature.NewHandler(db, sessionMgr, logger)
	r.Mount("/register", registerfeature.Routes(registerHandler))

	loginHandler := loginfeature.NewHandler(db, sessionMgr, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))
	r.Mount("/logout", loginfeature.LogoutRoutes(loginHandler))

	// Task catalogs (global catalog; group catalogs mount under /groups)
	tasksHandler := tasksfeature.NewHandler(db, reconciler, logger)
	r.Mount("/tasks", tasksfeature.Routes(tasksHandler, sessionMgr))

	// Groups: create/join/list, group leaderboards, group task catalogs
	groupsHandler := groupsfeature.NewHandler(db, logger)
	r.Mount("/groups", groupsfeature.Routes(groupsHandler, tasksHandler, sessionMgr))

	// Global leaderboard
	leaderboardHandler := leaderboardfeature.NewHandler(db, logger)
	r.Mount("/leaderboard", leaderboardfeature.Routes(leaderboardHandler, sessionMgr))

	// Photo classification and scoring
	detectHandler := detectfeature.NewHandler(db, visionClient, reconciler, logger)
	r.Mount("/detect", detectfeature.Routes(detectHandler, sessionMgr))

	return r, nil
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return origins
}
