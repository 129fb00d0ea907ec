// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	credentialstore "github.com/averymorin/tenantkit/internal/app/store/credentials"
	invitationstore "github.com/averymorin/tenantkit/internal/app/store/invitations"
	"github.com/averymorin/tenantkit/internal/app/store/oauthstate"
	"github.com/averymorin/tenantkit/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// sweeper is the background expiry worker; started here, stopped in Shutdown.
var sweeper *workers.ExpirySweep

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. tenantkit
// uses it to start the background sweep that removes expired invitations,
// credentials, and OAuth states.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	sweeper = workers.NewExpirySweep(
		invitationstore.New(deps.MongoDatabase),
		credentialstore.New(deps.MongoDatabase),
		oauthstate.New(deps.MongoDatabase),
		logger,
		appCfg.SweepInterval,
	)
	sweeper.Start()
	logger.Info("expiry sweep started", zap.Duration("interval", appCfg.SweepInterval))
	return nil
}
