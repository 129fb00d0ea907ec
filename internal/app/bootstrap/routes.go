// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	authfeature "github.com/averymorin/tenantkit/internal/app/features/auth"
	authgooglefeature "github.com/averymorin/tenantkit/internal/app/features/authgoogle"
	healthfeature "github.com/averymorin/tenantkit/internal/app/features/health"
	orgsfeature "github.com/averymorin/tenantkit/internal/app/features/orgs"
	credentialstore "github.com/averymorin/tenantkit/internal/app/store/credentials"
	invitationstore "github.com/averymorin/tenantkit/internal/app/store/invitations"
	membershipstore "github.com/averymorin/tenantkit/internal/app/store/memberships"
	"github.com/averymorin/tenantkit/internal/app/store/oauthstate"
	organizationstore "github.com/averymorin/tenantkit/internal/app/store/organizations"
	userstore "github.com/averymorin/tenantkit/internal/app/store/users"
	"github.com/averymorin/tenantkit/internal/app/system/auth"
	"github.com/averymorin/tenantkit/internal/app/system/blobstore"
	"github.com/averymorin/tenantkit/internal/app/system/emailcheck"
	"github.com/averymorin/tenantkit/internal/app/system/invites"
	"github.com/averymorin/tenantkit/internal/app/system/mailer"
	"github.com/averymorin/tenantkit/internal/app/system/orgdirectory"
	"github.com/averymorin/tenantkit/internal/app/system/roster"
	"github.com/averymorin/tenantkit/internal/app/system/session"
	"github.com/averymorin/tenantkit/internal/app/system/tokens"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. tenantkit builds its stores and domain
// services here, installs the global user-loading middleware, and mounts
// the JSON feature routers: health, credential auth, Google OAuth, and the
// organization directory.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Cookie session store for the browser/OAuth flows. Secure cookies are
	// enabled in production mode.
	secure := coreCfg.Env == "prod"
	if err := auth.InitSessionStore(appCfg.SessionKey, appCfg.SessionDomain, secure, logger); err != nil {
		logger.Error("session store init failed", zap.Error(err))
		return nil, err
	}

	// Stores.
	users := userstore.New(deps.MongoDatabase)
	orgs := organizationstore.New(deps.MongoDatabase)
	members := membershipstore.New(deps.MongoDatabase)
	invitations := invitationstore.New(deps.MongoDatabase)
	credentials := credentialstore.New(deps.MongoDatabase)
	oauthStates := oauthstate.New(deps.MongoDatabase)

	// Token lifecycle.
	codec, err := tokens.NewCodec(appCfg.TokenSigningKey)
	if err != nil {
		logger.Error("token codec init failed", zap.Error(err))
		return nil, err
	}
	sessions := session.NewManager(codec, credentials, appCfg.AccessTokenTTL, appCfg.RefreshTokenTTL, logger)

	// Blob storage for organization logos.
	blobs, err := blobstore.NewLocal(appCfg.StorageLocalPath)
	if err != nil {
		logger.Error("blob storage init failed", zap.Error(err))
		return nil, err
	}

	// Domain services.
	rosterEng := roster.New(members, logger)
	directory := orgdirectory.New(orgs, users, members, invitations, rosterEng, blobs, logger)

	var verifier emailcheck.Verifier = emailcheck.AlwaysDeliverable{}
	if appCfg.EmailVerifyEndpoint != "" {
		verifier = emailcheck.NewHTTPVerifier(appCfg.EmailVerifyEndpoint, appCfg.EmailVerifyKey, logger)
	}
	sender := mailer.NewSMTPSender(appCfg.MailSMTPHost, appCfg.MailSMTPPort, appCfg.MailSMTPUser, appCfg.MailSMTPPass, appCfg.MailFrom, logger)
	invitesSvc := invites.New(invitations, members, orgs, users, rosterEng, verifier, sender,
		appCfg.SiteName, appCfg.BaseURL, appCfg.InviteTTL, logger)

	r := chi.NewRouter()

	// Global auth middleware: resolves the bearer token or cookie session
	// into a request-scoped user for every handler.
	authenticator := auth.NewAuthenticator(sessions, users, logger)
	r.Use(authenticator.LoadUser)

	// Health check endpoint for load balancers and orchestrators.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Credential auth: sign-up, sign-in, token refresh, sign-out. The Google
	// OAuth browser flow rides under the same /auth prefix.
	authHandler := authfeature.NewHandler(users, sessions, logger)
	authRouter := authfeature.Routes(authHandler)
	googleHandler := authgooglefeature.NewHandler(users, oauthStates,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
	authRouter.Mount("/google", authgooglefeature.Routes(googleHandler))
	r.Mount("/auth", authRouter)

	// Organization directory, membership, and invitations.
	orgsHandler := orgsfeature.NewHandler(directory, rosterEng, invitesSvc, orgs, members, blobs, logger)
	r.Mount("/orgs", orgsfeature.Routes(orgsHandler))
	r.Mount("/invitations", orgsfeature.InvitationRoutes(orgsHandler))

	return r, nil
}
