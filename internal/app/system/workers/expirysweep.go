// internal/app/system/workers/expirysweep.go
package workers

import (
	"context"
	"sync"
	"time"

	credentialstore "github.com/averymorin/tenantkit/internal/app/store/credentials"
	invitationstore "github.com/averymorin/tenantkit/internal/app/store/invitations"
	"github.com/averymorin/tenantkit/internal/app/store/oauthstate"
	"go.uber.org/zap"
)

// ExpirySweep is a background worker that deletes expired rows: invitations,
// credentials of both kinds, and oauth states. Queries already treat expired
// rows as absent, so the sweep is purely hygiene; nothing changes behavior if
// a run is late or skipped.
type ExpirySweep struct {
	invitations *invitationstore.Store
	credentials *credentialstore.Store
	oauthStates *oauthstate.Store
	log         *zap.Logger
	interval    time.Duration
	stopCh      chan struct{}
	wg          sync.WaitGroup
}

// NewExpirySweep creates an expiry sweep worker that runs every interval.
func NewExpirySweep(
	invitations *invitationstore.Store,
	credentials *credentialstore.Store,
	oauthStates *oauthstate.Store,
	logger *zap.Logger,
	interval time.Duration,
) *ExpirySweep {
	return &ExpirySweep{
		invitations: invitations,
		credentials: credentials,
		oauthStates: oauthStates,
		log:         logger,
		interval:    interval,
		stopCh:      make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (w *ExpirySweep) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("expiry sweep worker started",
		zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *ExpirySweep) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("expiry sweep worker stopped")
}

func (w *ExpirySweep) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Sweep()
		}
	}
}

// Sweep runs one pass over all expirable collections. Exported so tests and
// admin tooling can trigger a pass without the ticker.
func (w *ExpirySweep) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now().UTC()
	var invites, creds, states int64

	n, err := w.invitations.DeleteExpiredBefore(ctx, now)
	if err != nil {
		w.log.Error("failed to sweep expired invitations", zap.Error(err))
	} else {
		invites = n
	}

	n, err = w.credentials.DeleteExpiredBefore(ctx, now)
	if err != nil {
		w.log.Error("failed to sweep expired credentials", zap.Error(err))
	} else {
		creds = n
	}

	n, err = w.oauthStates.DeleteExpiredBefore(ctx, now)
	if err != nil {
		w.log.Error("failed to sweep expired oauth states", zap.Error(err))
	} else {
		states = n
	}

	if invites+creds+states > 0 {
		w.log.Info("swept expired rows",
			zap.Int64("invitations", invites),
			zap.Int64("credentials", creds),
			zap.Int64("oauth_states", states))
	}
}
