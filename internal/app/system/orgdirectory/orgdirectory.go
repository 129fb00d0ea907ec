// internal/app/system/orgdirectory/orgdirectory.go

// Package orgdirectory manages the organization catalog: creation with
// unique slug allocation, profile updates, and deletion with its cascades.
// Role gates come from orgpolicy; membership reads go through roster.
package orgdirectory

import (
	"context"
	"errors"

	"github.com/averymorin/tenantkit/internal/app/policy/orgpolicy"
	invitationstore "github.com/averymorin/tenantkit/internal/app/store/invitations"
	membershipstore "github.com/averymorin/tenantkit/internal/app/store/memberships"
	organizationstore "github.com/averymorin/tenantkit/internal/app/store/organizations"
	userstore "github.com/averymorin/tenantkit/internal/app/store/users"
	"github.com/averymorin/tenantkit/internal/app/system/roster"
	"github.com/averymorin/tenantkit/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// BlobStore is the slice of the file backend the directory needs: removing
// logo blobs during replacement and deletion. The waffle storage backends
// satisfy it.
type BlobStore interface {
	Delete(ctx context.Context, path string) error
}

var (
	// ErrSlugExhausted is returned when Create cannot find a free slug after
	// maxSlugAttempts suffixed candidates.
	ErrSlugExhausted = errors.New("could not allocate a unique slug for this name")
	// ErrSlugTaken is returned when an explicit slug change collides with an
	// existing organization. Unlike Create, updates never auto-suffix.
	ErrSlugTaken = errors.New("that slug is already taken")
	// ErrBadName is returned when the organization name is empty or yields no
	// usable slug.
	ErrBadName = errors.New("organization name is required")
)

// Service is the organization directory.
type Service struct {
	orgs    *organizationstore.Store
	users   *userstore.Store
	members *membershipstore.Store
	invites *invitationstore.Store
	roster  *roster.Engine
	files   BlobStore
	log     *zap.Logger
}

func New(
	orgs *organizationstore.Store,
	users *userstore.Store,
	members *membershipstore.Store,
	invites *invitationstore.Store,
	rosterEng *roster.Engine,
	files BlobStore,
	logger *zap.Logger,
) *Service {
	return &Service{
		orgs:    orgs,
		users:   users,
		members: members,
		invites: invites,
		roster:  rosterEng,
		files:   files,
		log:     logger,
	}
}

// Create inserts a new organization, makes the actor its owner, and points
// the actor's active-organization reference at it. The slug derives from the
// name; collisions are resolved by retrying the insert with numeric suffixes
// (-2, -3, ...) against the unique index, so two concurrent creates with the
// same name cannot both win the same slug.
func (s *Service) Create(ctx context.Context, actorID primitive.ObjectID, name, plan string) (models.Organization, error) {
	base := Slugify(name)
	if base == "" {
		return models.Organization{}, ErrBadName
	}

	var org models.Organization
	var err error
	for n := 1; ; n++ {
		if n > maxSlugAttempts {
			return models.Organization{}, ErrSlugExhausted
		}
		org, err = s.orgs.Create(ctx, models.Organization{
			Name: name,
			Slug: candidateSlug(base, n),
			Plan: plan,
		})
		if err == nil {
			break
		}
		if !errors.Is(err, organizationstore.ErrDuplicateSlug) {
			return models.Organization{}, err
		}
	}

	if _, err := s.members.Add(ctx, org.ID, actorID, models.RoleOwner); err != nil {
		// Orphaned org doc; remove it so the slug is not squatted.
		if _, delErr := s.orgs.Delete(ctx, org.ID); delErr != nil {
			s.log.Error("failed to remove org after owner seed failed",
				zap.String("org_id", org.ID.Hex()), zap.Error(delErr))
		}
		return models.Organization{}, err
	}
	if err := s.users.SetActiveOrganization(ctx, actorID, org.ID); err != nil {
		s.log.Warn("could not set active organization for creator",
			zap.String("user_id", actorID.Hex()), zap.Error(err))
	}

	s.log.Info("organization created",
		zap.String("org_id", org.ID.Hex()),
		zap.String("slug", org.Slug),
		zap.String("owner_id", actorID.Hex()))
	return org, nil
}

// UpdateProfile applies name, slug, and logo changes. The actor must be an
// owner or admin. An explicit slug that belongs to another organization is a
// conflict; the name is not re-slugged on rename.
func (s *Service) UpdateProfile(ctx context.Context, orgID, actorID primitive.ObjectID, upd organizationstore.Update) error {
	role, err := s.roster.Role(ctx, orgID, actorID)
	if err != nil {
		return err
	}
	if !orgpolicy.CanManageOrg(role) {
		return orgpolicy.ErrNotAuthorized
	}

	// Replacing or clearing the logo orphans the old blob; remove it first.
	if upd.LogoRef != nil {
		if current, err := s.orgs.GetByID(ctx, orgID); err == nil && current.LogoRef != "" {
			if err := s.files.Delete(ctx, current.LogoRef); err != nil {
				s.log.Warn("failed to delete old logo",
					zap.String("path", current.LogoRef), zap.Error(err))
			}
		}
	}

	if err := s.orgs.Apply(ctx, orgID, upd); err != nil {
		if errors.Is(err, organizationstore.ErrDuplicateSlug) {
			return ErrSlugTaken
		}
		return err
	}
	return nil
}

// Delete removes an organization and everything hanging off it: memberships,
// pending invitations, the logo blob, and users' active-organization
// references. Only the owner may delete. Users left pointing at the deleted
// org are repointed to another of their organizations, or cleared when they
// have none.
func (s *Service) Delete(ctx context.Context, orgID, actorID primitive.ObjectID) error {
	role, err := s.roster.Role(ctx, orgID, actorID)
	if err != nil {
		return err
	}
	if !orgpolicy.CanDeleteOrg(role) {
		return orgpolicy.ErrNotAuthorized
	}

	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		return err
	}

	// Take the org doc out first so the slug frees up and no new invitations
	// or memberships can attach mid-cascade.
	if _, err := s.orgs.Delete(ctx, orgID); err != nil {
		return err
	}

	if n, err := s.members.DeleteByOrg(ctx, orgID); err != nil {
		s.log.Error("membership cascade failed",
			zap.String("org_id", orgID.Hex()), zap.Error(err))
	} else {
		s.log.Info("organization deleted",
			zap.String("org_id", orgID.Hex()),
			zap.String("slug", org.Slug),
			zap.Int64("memberships_removed", n))
	}
	if _, err := s.invites.DeleteByOrg(ctx, orgID); err != nil {
		s.log.Error("invitation cascade failed",
			zap.String("org_id", orgID.Hex()), zap.Error(err))
	}
	if org.LogoRef != "" {
		if err := s.files.Delete(ctx, org.LogoRef); err != nil {
			s.log.Warn("failed to delete logo",
				zap.String("path", org.LogoRef), zap.Error(err))
		}
	}

	return s.repointActiveUsers(ctx, orgID)
}

// repointActiveUsers walks users whose active-organization reference named
// the deleted org and moves each to another of their organizations, or
// clears the reference when no membership remains.
func (s *Service) repointActiveUsers(ctx context.Context, orgID primitive.ObjectID) error {
	affected, err := s.users.ListByActiveOrganization(ctx, orgID)
	if err != nil {
		return err
	}
	for _, u := range affected {
		remaining, err := s.members.ListByUser(ctx, u.ID)
		if err != nil {
			return err
		}
		if len(remaining) > 0 {
			err = s.users.SetActiveOrganization(ctx, u.ID, remaining[0].OrganizationID)
		} else {
			err = s.users.ClearActiveOrganization(ctx, u.ID)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// SwitchActive points the user's active-organization reference at orgID,
// provided they are a member.
func (s *Service) SwitchActive(ctx context.Context, userID, orgID primitive.ObjectID) error {
	if _, err := s.roster.Role(ctx, orgID, userID); err != nil {
		return err
	}
	return s.users.SetActiveOrganization(ctx, userID, orgID)
}
