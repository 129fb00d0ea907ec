// internal/app/features/errors/errors.go

// Package errors maps domain errors onto JSON API responses. Handlers pass
// whatever their service returned; the mapping table decides the status code
// and the client-visible message, and anything unknown becomes an opaque 500.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/averymorin/tenantkit/internal/app/policy/orgpolicy"
	membershipstore "github.com/averymorin/tenantkit/internal/app/store/memberships"
	userstore "github.com/averymorin/tenantkit/internal/app/store/users"
	"github.com/averymorin/tenantkit/internal/app/system/invites"
	"github.com/averymorin/tenantkit/internal/app/system/orgdirectory"
	"github.com/averymorin/tenantkit/internal/app/system/roster"
	"github.com/averymorin/tenantkit/internal/app/system/session"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// errorBody is the JSON error envelope.
type errorBody struct {
	Error string `json:"error"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a JSON error envelope with the given status.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, errorBody{Error: msg})
}

// statusFor resolves a domain error to an HTTP status. The bool reports
// whether the error is a known domain error whose message is safe to show.
func statusFor(err error) (int, bool) {
	switch {
	// Authentication
	case stderrors.Is(err, session.ErrInvalidCredential):
		return http.StatusUnauthorized, true

	// Authorization
	case stderrors.Is(err, orgpolicy.ErrNotAuthorized),
		stderrors.Is(err, orgpolicy.ErrTargetIsOwner),
		stderrors.Is(err, invites.ErrEmailMismatch):
		return http.StatusForbidden, true

	// Bad input
	case stderrors.Is(err, orgpolicy.ErrBadRole),
		stderrors.Is(err, orgpolicy.ErrSelfModification),
		stderrors.Is(err, orgpolicy.ErrCannotGrantOwner),
		stderrors.Is(err, roster.ErrSuccessorRequired),
		stderrors.Is(err, roster.ErrInvalidSuccessor),
		stderrors.Is(err, orgdirectory.ErrBadName),
		stderrors.Is(err, invites.ErrBadEmail),
		stderrors.Is(err, invites.ErrBadInviteRole):
		return http.StatusBadRequest, true

	// Conflicts
	case stderrors.Is(err, userstore.ErrDuplicateEmail),
		stderrors.Is(err, membershipstore.ErrDuplicateMembership),
		stderrors.Is(err, membershipstore.ErrStaleRole),
		stderrors.Is(err, orgdirectory.ErrSlugTaken),
		stderrors.Is(err, orgdirectory.ErrSlugExhausted),
		stderrors.Is(err, invites.ErrAlreadyMember):
		return http.StatusConflict, true

	// Unprocessable
	case stderrors.Is(err, invites.ErrUndeliverable):
		return http.StatusUnprocessableEntity, true

	// Gone
	case stderrors.Is(err, invites.ErrInvitationExpired):
		return http.StatusGone, true

	// Not found
	case stderrors.Is(err, roster.ErrNotMember),
		stderrors.Is(err, invites.ErrInvitationNotFound),
		stderrors.Is(err, mongo.ErrNoDocuments):
		return http.StatusNotFound, true
	}
	return http.StatusInternalServerError, false
}

// WriteDomainError translates err and writes it. Unknown errors are logged
// and surfaced as an opaque 500; known domain errors carry their own message.
func WriteDomainError(w http.ResponseWriter, log *zap.Logger, err error) {
	status, known := statusFor(err)
	if !known {
		if log != nil {
			log.Error("request failed", zap.Error(err))
		}
		WriteError(w, status, "internal error")
		return
	}
	msg := err.Error()
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		msg = "not found"
	}
	WriteError(w, status, msg)
}
