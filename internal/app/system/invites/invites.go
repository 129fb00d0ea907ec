// internal/app/system/invites/invites.go

// Package invites runs the invitation workflow: owners and admins invite an
// email address into an organization with a role, the invitee accepts, and
// the acceptance converts atomically into a membership.
package invites

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/averymorin/tenantkit/internal/app/policy/orgpolicy"
	invitationstore "github.com/averymorin/tenantkit/internal/app/store/invitations"
	membershipstore "github.com/averymorin/tenantkit/internal/app/store/memberships"
	organizationstore "github.com/averymorin/tenantkit/internal/app/store/organizations"
	userstore "github.com/averymorin/tenantkit/internal/app/store/users"
	"github.com/averymorin/tenantkit/internal/app/system/emailcheck"
	"github.com/averymorin/tenantkit/internal/app/system/inputval"
	"github.com/averymorin/tenantkit/internal/app/system/mailer"
	"github.com/averymorin/tenantkit/internal/app/system/normalize"
	"github.com/averymorin/tenantkit/internal/app/system/roster"
	"github.com/averymorin/tenantkit/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// DefaultInviteTTL is how long an invitation stays acceptable.
const DefaultInviteTTL = 7 * 24 * time.Hour

var (
	// ErrBadEmail is returned for a syntactically invalid address.
	ErrBadEmail = errors.New("invalid email address")
	// ErrUndeliverable is returned when the verification provider says the
	// address cannot receive mail. The invitation is not created.
	ErrUndeliverable = errors.New("email address is not deliverable")
	// ErrBadInviteRole is returned when the invitation names a role other
	// than admin or member.
	ErrBadInviteRole = errors.New(`invitation role must be "admin" or "member"`)
	// ErrInvitationNotFound is returned on accept when no invitation exists
	// with that id, including one already consumed by a concurrent accept.
	ErrInvitationNotFound = errors.New("invitation not found")
	// ErrInvitationExpired is returned on accept when the invitation's expiry
	// has passed.
	ErrInvitationExpired = errors.New("invitation has expired")
	// ErrEmailMismatch is returned when the accepting user's email does not
	// match the invited address.
	ErrEmailMismatch = errors.New("invitation was issued to a different email address")
	// ErrAlreadyMember is returned on accept when the user already belongs to
	// the organization.
	ErrAlreadyMember = errors.New("user is already a member of this organization")
)

// Service drives the invitation workflow.
type Service struct {
	invites  *invitationstore.Store
	members  *membershipstore.Store
	orgs     *organizationstore.Store
	users    *userstore.Store
	roster   *roster.Engine
	verifier emailcheck.Verifier
	sender   mailer.Sender

	siteName string
	baseURL  string
	ttl      time.Duration
	log      *zap.Logger
}

func New(
	invites *invitationstore.Store,
	members *membershipstore.Store,
	orgs *organizationstore.Store,
	users *userstore.Store,
	rosterEng *roster.Engine,
	verifier emailcheck.Verifier,
	sender mailer.Sender,
	siteName, baseURL string,
	ttl time.Duration,
	logger *zap.Logger,
) *Service {
	if ttl <= 0 {
		ttl = DefaultInviteTTL
	}
	return &Service{
		invites:  invites,
		members:  members,
		orgs:     orgs,
		users:    users,
		roster:   rosterEng,
		verifier: verifier,
		sender:   sender,
		siteName: siteName,
		baseURL:  baseURL,
		ttl:      ttl,
		log:      logger,
	}
}

// Invite creates (or refreshes) the invitation for (org, email) and emails
// the invitee. A failed deliverability check is fatal; a failed send is not,
// since the invitation already exists and can be accepted by link.
func (s *Service) Invite(ctx context.Context, orgID, actorID primitive.ObjectID, email, role string) (models.Invitation, error) {
	actorRole, err := s.roster.Role(ctx, orgID, actorID)
	if err != nil {
		return models.Invitation{}, err
	}
	if !orgpolicy.CanManageOrg(actorRole) {
		return models.Invitation{}, orgpolicy.ErrNotAuthorized
	}

	email = normalize.Email(email)
	if !inputval.IsValidEmail(email) {
		return models.Invitation{}, ErrBadEmail
	}
	role = normalize.Role(role)
	if role != models.RoleAdmin && role != models.RoleMember {
		return models.Invitation{}, ErrBadInviteRole
	}

	check, err := s.verifier.Verify(ctx, email)
	if err != nil {
		return models.Invitation{}, fmt.Errorf("verify email: %w", err)
	}
	if !check.Deliverable {
		s.log.Info("invitation refused, address undeliverable",
			zap.String("org_id", orgID.Hex()),
			zap.String("reason", check.Reason))
		return models.Invitation{}, ErrUndeliverable
	}

	inv, err := s.invites.Upsert(ctx, models.Invitation{
		OrganizationID: orgID,
		Email:          email,
		InviterID:      actorID,
		Role:           role,
		ExpiresAt:      time.Now().UTC().Add(s.ttl),
	})
	if err != nil {
		return models.Invitation{}, err
	}

	s.sendInviteMail(ctx, inv)
	return inv, nil
}

// BulkResult is the outcome for one address of a BulkInvite call.
type BulkResult struct {
	Email      string             `json:"email"`
	Invitation *models.Invitation `json:"invitation,omitempty"`
	Err        error              `json:"-"`
}

// BulkInvite invites every address in emails with the same role. Items fail
// independently; one bad address never blocks the rest. The actor's role is
// still checked once up front.
func (s *Service) BulkInvite(ctx context.Context, orgID, actorID primitive.ObjectID, emails []string, role string) ([]BulkResult, error) {
	actorRole, err := s.roster.Role(ctx, orgID, actorID)
	if err != nil {
		return nil, err
	}
	if !orgpolicy.CanManageOrg(actorRole) {
		return nil, orgpolicy.ErrNotAuthorized
	}

	results := make([]BulkResult, 0, len(emails))
	for _, email := range emails {
		inv, err := s.Invite(ctx, orgID, actorID, email, role)
		res := BulkResult{Email: normalize.Email(email), Err: err}
		if err == nil {
			res.Invitation = &inv
		}
		results = append(results, res)
	}
	return results, nil
}

// Revoke deletes a pending invitation. Owners and admins only.
func (s *Service) Revoke(ctx context.Context, orgID, actorID, invitationID primitive.ObjectID) error {
	actorRole, err := s.roster.Role(ctx, orgID, actorID)
	if err != nil {
		return err
	}
	if !orgpolicy.CanManageOrg(actorRole) {
		return orgpolicy.ErrNotAuthorized
	}
	inv, err := s.invites.GetByID(ctx, invitationID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrInvitationNotFound
		}
		return err
	}
	if inv.OrganizationID != orgID {
		return ErrInvitationNotFound
	}
	return s.invites.Delete(ctx, invitationID)
}

// ListPending returns the unexpired invitations of an organization. Owners
// and admins only.
func (s *Service) ListPending(ctx context.Context, orgID, actorID primitive.ObjectID) ([]models.Invitation, error) {
	actorRole, err := s.roster.Role(ctx, orgID, actorID)
	if err != nil {
		return nil, err
	}
	if !orgpolicy.CanManageOrg(actorRole) {
		return nil, orgpolicy.ErrNotAuthorized
	}
	all, err := s.invites.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	live := all[:0]
	for _, inv := range all {
		if !inv.Expired(now) {
			live = append(live, inv)
		}
	}
	return live, nil
}

// Accept converts an invitation into a membership for the given user. The
// user's email must match the invited address. Consumption is a single
// find-and-delete, so of two concurrent accepts exactly one succeeds and the
// other sees ErrInvitationNotFound. Expired invitations are rejected and
// removed. If the user has no active organization yet, the joined one
// becomes it.
func (s *Service) Accept(ctx context.Context, invitationID, userID primitive.ObjectID) (models.OrgMembership, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return models.OrgMembership{}, err
	}

	// Check the email before consuming so a mismatched accept does not burn
	// the invitation for its rightful recipient.
	peek, err := s.invites.GetByID(ctx, invitationID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.OrgMembership{}, ErrInvitationNotFound
		}
		return models.OrgMembership{}, err
	}
	if peek.EmailCI != text.Fold(user.Email) {
		return models.OrgMembership{}, ErrEmailMismatch
	}

	inv, err := s.invites.Consume(ctx, invitationID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.OrgMembership{}, ErrInvitationNotFound
		}
		return models.OrgMembership{}, err
	}
	if inv.Expired(time.Now().UTC()) {
		return models.OrgMembership{}, ErrInvitationExpired
	}

	m, err := s.members.Add(ctx, inv.OrganizationID, userID, inv.Role)
	if err != nil {
		if errors.Is(err, membershipstore.ErrDuplicateMembership) {
			return models.OrgMembership{}, ErrAlreadyMember
		}
		return models.OrgMembership{}, err
	}

	if user.ActiveOrganizationID == nil {
		if err := s.users.SetActiveOrganization(ctx, userID, inv.OrganizationID); err != nil {
			s.log.Warn("could not set active organization after accept",
				zap.String("user_id", userID.Hex()), zap.Error(err))
		}
	}

	s.log.Info("invitation accepted",
		zap.String("org_id", inv.OrganizationID.Hex()),
		zap.String("user_id", userID.Hex()),
		zap.String("role", inv.Role))
	return m, nil
}

// sendInviteMail emails the invitation. Failures are logged, not returned:
// the invitation row already exists and remains acceptable.
func (s *Service) sendInviteMail(ctx context.Context, inv models.Invitation) {
	org, err := s.orgs.GetByID(ctx, inv.OrganizationID)
	if err != nil {
		s.log.Warn("could not load org for invitation email", zap.Error(err))
		return
	}
	inviterName := "A member"
	if inviter, err := s.users.GetByID(ctx, inv.InviterID); err == nil && inviter.Name != "" {
		inviterName = inviter.Name
	}

	msg := mailer.BuildInvitationEmail(mailer.InvitationEmailData{
		SiteName:    s.siteName,
		OrgName:     org.Name,
		InviterName: inviterName,
		Role:        inv.Role,
		AcceptLink:  fmt.Sprintf("%s/invitations/%s/accept", s.baseURL, inv.ID.Hex()),
		ExpiresIn:   formatTTL(s.ttl),
	})
	msg.To = inv.Email

	if err := s.sender.Send(ctx, msg); err != nil {
		s.log.Warn("invitation email send failed",
			zap.String("org_id", inv.OrganizationID.Hex()), zap.Error(err))
	}
}

func formatTTL(d time.Duration) string {
	if days := int(d.Hours() / 24); days >= 1 {
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
	hours := int(d.Hours())
	if hours <= 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
