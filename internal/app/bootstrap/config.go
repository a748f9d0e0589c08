// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// devSessionKey is the default signing key for local development. Prod
// startup refuses to run with it.
const devSessionKey = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for Trazilica.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: TRAZILICA_MONGO_URI, TRAZILICA_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "trazilica", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "session_key", Default: devSessionKey, Desc: "Session/token signing key (must be strong in production)"},
	{Name: "session_name", Default: "trazilica-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "token_ttl", Default: "720h", Desc: "Bearer token lifetime (e.g., 720h for 30 days)"},

	// Label-detection service
	{Name: "vision_endpoint", Default: "", Desc: "Annotate URL override (blank uses the production endpoint)"},
	{Name: "vision_api_key", Default: "", Desc: "Vision API key"},
	{Name: "vision_credentials_file", Default: "", Desc: "Path to a service-account JSON file (wins over the API key)"},

	// Scoring
	{Name: "points_per_find", Default: 1, Desc: "Points awarded per successful find"},

	// CORS
	{Name: "cors_origins", Default: "*", Desc: "Comma-separated allowed origins for browser clients"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, TRAZILICA_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "TRAZILICA", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		TokenTTL:      appValues.Duration("token_ttl", 720*time.Hour),

		VisionEndpoint:        appValues.String("vision_endpoint"),
		VisionAPIKey:          appValues.String("vision_api_key"),
		VisionCredentialsFile: appValues.String("vision_credentials_file"),

		PointsPerFind: appValues.Int("points_per_find"),

		CORSOrigins: appValues.String("cors_origins"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// This is the right place to enforce required fields or invariants that
// involve both the core and app configs.
//
// Trazilica validates the MongoDB URI format and the label-detection
// credentials to catch configuration errors early, before attempting
// to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.VisionAPIKey == "" && appCfg.VisionCredentialsFile == "" {
		return fmt.Errorf("either vision_api_key or vision_credentials_file must be set")
	}

	if appCfg.PointsPerFind <= 0 {
		return fmt.Errorf("points_per_find must be positive, got %d", appCfg.PointsPerFind)
	}

	if coreCfg.Env == "prod" && appCfg.SessionKey == devSessionKey {
		return fmt.Errorf("session_key must be changed from the dev default in production")
	}

	return nil
}
