// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for tenantkit.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, token_signing_key, etc.
//   - Environment variables: TENANTKIT_MONGO_URI, TENANTKIT_TOKEN_SIGNING_KEY, etc.
//   - Command-line flags: --mongo_uri, --token_signing_key, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "tenantkit", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	// Token lifecycle
	{Name: "token_signing_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "HMAC key for signing access tokens (must be strong in production)"},
	{Name: "access_token_ttl", Default: "15m", Desc: "Access token lifetime (e.g., 15m, 1h)"},
	{Name: "refresh_token_ttl", Default: "720h", Desc: "Refresh token lifetime (e.g., 720h for 30 days)"},

	// Cookie sessions (browser/OAuth flows)
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session cookie signing key"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// Invitations
	{Name: "invite_ttl", Default: "168h", Desc: "Invitation lifetime (e.g., 168h for 7 days)"},

	// Background maintenance
	{Name: "sweep_interval", Default: "1h", Desc: "Interval between expired-row sweeps"},

	// File storage
	{Name: "storage_local_path", Default: "./uploads", Desc: "Local storage path for uploaded blobs"},

	// Email/SMTP
	{Name: "mail_smtp_host", Default: "localhost", Desc: "SMTP server host"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username (empty disables AUTH)"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@example.com", Desc: "From email address"},

	// Email deliverability checking
	{Name: "email_verify_endpoint", Default: "", Desc: "HTTP endpoint for email deliverability checks (blank disables)"},
	{Name: "email_verify_key", Default: "", Desc: "API key for the email verification endpoint"},

	// Google OAuth
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},

	// Site identity
	{Name: "site_name", Default: "TenantKit", Desc: "Display name used in invitation emails"},
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL for email links and OAuth callbacks"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, TENANTKIT_* for app), and
// command-line flags, merged with precedence: flags > env > files >
// defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "TENANTKIT", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		TokenSigningKey: appValues.String("token_signing_key"),
		AccessTokenTTL:  appValues.Duration("access_token_ttl", 15*time.Minute),
		RefreshTokenTTL: appValues.Duration("refresh_token_ttl", 720*time.Hour),

		SessionKey:    appValues.String("session_key"),
		SessionDomain: appValues.String("session_domain"),

		InviteTTL:     appValues.Duration("invite_ttl", 168*time.Hour),
		SweepInterval: appValues.Duration("sweep_interval", time.Hour),

		StorageLocalPath: appValues.String("storage_local_path"),

		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),

		EmailVerifyEndpoint: appValues.String("email_verify_endpoint"),
		EmailVerifyKey:      appValues.String("email_verify_key"),

		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),

		SiteName: appValues.String("site_name"),
		BaseURL:  appValues.String("base_url"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// tenantkit validates the MongoDB URI early, before attempting to
// connect, and refuses to start without signing keys.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.TokenSigningKey == "" {
		return fmt.Errorf("token_signing_key must be set")
	}
	if appCfg.SessionKey == "" {
		return fmt.Errorf("session_key must be set")
	}
	if appCfg.AccessTokenTTL <= 0 || appCfg.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}
	if appCfg.RefreshTokenTTL <= appCfg.AccessTokenTTL {
		return fmt.Errorf("refresh_token_ttl must exceed access_token_ttl")
	}
	return nil
}
