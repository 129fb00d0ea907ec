// internal/app/system/roster/roster.go

// Package roster is the membership authorization engine: it reads membership
// state, applies the orgpolicy table, and performs the mutation with
// stale-read guards. Every transition either requires a successor or is
// forbidden outright, so no sequence of operations can leave an organization
// without an owner.
package roster

import (
	"context"
	"errors"

	membershipstore "github.com/averymorin/tenantkit/internal/app/store/memberships"
	"github.com/averymorin/tenantkit/internal/app/policy/orgpolicy"
	"github.com/averymorin/tenantkit/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	// ErrNotMember is returned when the actor, target, or successor holds no
	// membership in the organization.
	ErrNotMember = errors.New("user is not a member of this organization")
	// ErrSuccessorRequired is returned when the sole owner tries to leave
	// without naming a successor.
	ErrSuccessorRequired = errors.New("sole owner must name a successor before leaving")
	// ErrInvalidSuccessor is returned when the named successor cannot take
	// ownership (e.g. the leaving owner named themselves).
	ErrInvalidSuccessor = errors.New("successor is not eligible")
)

// Engine enforces role-based policy for membership mutations.
type Engine struct {
	members *membershipstore.Store
	log     *zap.Logger
}

func New(members *membershipstore.Store, logger *zap.Logger) *Engine {
	return &Engine{members: members, log: logger}
}

// Role returns the actor's role in the organization, or ErrNotMember.
// Other services (orgdirectory, invites) use this for their own gates.
func (e *Engine) Role(ctx context.Context, orgID, userID primitive.ObjectID) (string, error) {
	m, err := e.members.Get(ctx, orgID, userID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return "", ErrNotMember
		}
		return "", err
	}
	return m.Role, nil
}

// UpdateRole changes the target's role. Ownership cannot be granted here and
// owners cannot be demoted; both move only through TransferOwnership. The
// write is conditioned on the role read in this call, so a concurrent change
// surfaces as membershipstore.ErrStaleRole instead of clobbering it.
func (e *Engine) UpdateRole(ctx context.Context, orgID, actorID, targetID primitive.ObjectID, newRole string) error {
	actor, err := e.members.Get(ctx, orgID, actorID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrNotMember
		}
		return err
	}
	target, err := e.members.Get(ctx, orgID, targetID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrNotMember
		}
		return err
	}
	if err := orgpolicy.CheckUpdateRole(actor.Role, target.Role, newRole, actorID == targetID); err != nil {
		return err
	}
	return e.members.UpdateRoleFrom(ctx, orgID, targetID, target.Role, newRole)
}

// Remove deletes the target's membership. Owners cannot be removed and the
// actor cannot remove themselves (that is Leave).
func (e *Engine) Remove(ctx context.Context, orgID, actorID, targetID primitive.ObjectID) error {
	actor, err := e.members.Get(ctx, orgID, actorID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrNotMember
		}
		return err
	}
	target, err := e.members.Get(ctx, orgID, targetID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrNotMember
		}
		return err
	}
	if err := orgpolicy.CheckRemove(actor.Role, target.Role, actorID == targetID); err != nil {
		return err
	}
	return e.members.RemoveIfRole(ctx, orgID, targetID, target.Role)
}

// Leave removes the actor's own membership. A sole owner must name a
// successor, who is promoted to owner before the actor's row is deleted, so
// the organization is never observable without an owner.
func (e *Engine) Leave(ctx context.Context, orgID, actorID primitive.ObjectID, successorID *primitive.ObjectID) error {
	actor, err := e.members.Get(ctx, orgID, actorID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrNotMember
		}
		return err
	}

	if actor.Role == models.RoleOwner {
		owners, err := e.members.CountByOrgRole(ctx, orgID, models.RoleOwner)
		if err != nil {
			return err
		}
		if owners <= 1 {
			if successorID == nil {
				return ErrSuccessorRequired
			}
			if *successorID == actorID {
				return ErrInvalidSuccessor
			}
			succ, err := e.members.Get(ctx, orgID, *successorID)
			if err != nil {
				if err == mongo.ErrNoDocuments {
					return ErrNotMember
				}
				return err
			}
			if err := e.members.UpdateRoleFrom(ctx, orgID, succ.UserID, succ.Role, models.RoleOwner); err != nil {
				return err
			}
			e.log.Info("ownership passed to successor on leave",
				zap.String("org_id", orgID.Hex()),
				zap.String("successor_id", succ.UserID.Hex()))
		}
	}

	return e.members.RemoveIfRole(ctx, orgID, actorID, actor.Role)
}

// TransferOwnership promotes the successor to owner and demotes the current
// owner to admin (not removed). Promotion lands first so the owner count
// never passes through zero.
func (e *Engine) TransferOwnership(ctx context.Context, orgID, actorID, successorID primitive.ObjectID) error {
	actor, err := e.members.Get(ctx, orgID, actorID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrNotMember
		}
		return err
	}
	if err := orgpolicy.CheckTransferOwnership(actor.Role, actorID == successorID); err != nil {
		return err
	}
	succ, err := e.members.Get(ctx, orgID, successorID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrNotMember
		}
		return err
	}

	if err := e.members.UpdateRoleFrom(ctx, orgID, succ.UserID, succ.Role, models.RoleOwner); err != nil {
		return err
	}
	if err := e.members.UpdateRoleFrom(ctx, orgID, actorID, models.RoleOwner, models.RoleAdmin); err != nil {
		// Roll the promotion back so the org does not end up with two owners.
		if rbErr := e.members.UpdateRoleFrom(ctx, orgID, succ.UserID, models.RoleOwner, succ.Role); rbErr != nil {
			e.log.Error("ownership transfer rollback failed",
				zap.String("org_id", orgID.Hex()),
				zap.Error(rbErr))
		}
		return err
	}

	e.log.Info("ownership transferred",
		zap.String("org_id", orgID.Hex()),
		zap.String("from", actorID.Hex()),
		zap.String("to", successorID.Hex()))
	return nil
}
