// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration: WAFFLE's CoreConfig
// handles framework-level settings like ports, TLS, and logging.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session and token configuration. The same key signs session
	// cookies (browser clients) and bearer tokens (mobile clients).
	SessionKey    string
	SessionName   string        // Cookie name for sessions (default: trazilica-session)
	SessionDomain string        // Cookie domain (blank means current host)
	TokenTTL      time.Duration // Bearer token lifetime

	// Label-detection service configuration. Either an API key or a
	// service-account credentials file must be set; the credentials
	// file wins when both are present.
	VisionEndpoint        string // Annotate URL override (blank uses the production endpoint)
	VisionAPIKey          string
	VisionCredentialsFile string // Path to a service-account JSON file

	// Scoring
	PointsPerFind int // Points awarded per successful find

	// CORS allowed origins for browser clients, comma separated
	CORSOrigins string
}
