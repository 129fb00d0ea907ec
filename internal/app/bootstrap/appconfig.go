// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP/HTTPS
// ports, TLS, logging level, and request limits. AppConfig is where
// everything specific to this application lives.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Token lifecycle configuration
	TokenSigningKey string        // HMAC key for signing access tokens (must be strong in production)
	AccessTokenTTL  time.Duration // Access token lifetime (default: 15m)
	RefreshTokenTTL time.Duration // Refresh token lifetime (default: 720h)

	// Cookie session configuration (browser/OAuth flows)
	SessionKey    string // Secret key for signing session cookies
	SessionDomain string // Cookie domain (blank means current host)

	// Invitation workflow
	InviteTTL time.Duration // How long invitations stay acceptable (default: 168h)

	// Background maintenance
	SweepInterval time.Duration // How often expired rows are swept (default: 1h)

	// File storage configuration
	StorageLocalPath string // Local storage path for uploaded blobs (e.g., "./uploads")

	// Email/SMTP configuration
	MailSMTPHost string // SMTP server host
	MailSMTPPort int    // SMTP server port
	MailSMTPUser string // SMTP username (empty disables AUTH)
	MailSMTPPass string // SMTP password
	MailFrom     string // From email address

	// Email deliverability checking (blank endpoint disables the check)
	EmailVerifyEndpoint string // HTTP verification endpoint
	EmailVerifyKey      string // API key for the verification endpoint

	// Google OAuth configuration
	GoogleClientID     string
	GoogleClientSecret string

	// Site identity for email templates and links
	SiteName string // Display name used in invitation emails
	BaseURL  string // e.g., "https://example.com" or "http://localhost:3000"
}
