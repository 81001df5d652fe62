// Package auth implements the login and organization signup flows. Login
// consults two disjoint principal sources — platform administrators first,
// then tenant users — and issues a signed token on success; the token is the
// only thing downstream requests present.
package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nexthr/nexthr-backend/internal/ratelimit"
	"github.com/nexthr/nexthr-backend/internal/store"
	"github.com/nexthr/nexthr-backend/internal/token"
)

// Role names carried in tokens and checked by the authorization policy.
const (
	RoleSysAdmin = "ROLE_SYS_ADMIN"
	RoleOrgAdmin = "ROLE_ORG_ADMIN"
	RoleHRStaff  = "ROLE_HR_STAFF"
)

// SystemUserStore is the platform administrator credential source.
type SystemUserStore interface {
	ByEmail(ctx context.Context, email string) (*store.SystemUser, error)
	StampLastLogin(ctx context.Context, id int64) error
}

// AppUserStore is the tenant user credential source.
type AppUserStore interface {
	ByEmail(ctx context.Context, email string) (*store.AppUser, error)
	Insert(ctx context.Context, u *store.AppUser) error
	StampLastLogin(ctx context.Context, id int64) error
	ActivateByOrganization(ctx context.Context, orgUUID string) error
}

// OrganizationStore resolves and mutates tenant accounts.
type OrganizationStore interface {
	ByUUID(ctx context.Context, uuid string) (*store.Organization, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Insert(ctx context.Context, o *store.Organization) error
	UpdateStatus(ctx context.Context, uuid, status string) error
}

// PasswordVerifier checks and derives credential hashes.
type PasswordVerifier interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

// Service wires the credential stores, hasher, issuer, and limiter into the
// login and signup flows.
type Service struct {
	systemUsers SystemUserStore
	appUsers    AppUserStore
	orgs        OrganizationStore
	passwords   PasswordVerifier
	issuer      *token.Issuer
	limiter     *ratelimit.LoginLimiter
	log         *zap.Logger
}

// NewService creates the auth service. limiter may be nil to disable login
// throttling.
func NewService(
	systemUsers SystemUserStore,
	appUsers AppUserStore,
	orgs OrganizationStore,
	passwords PasswordVerifier,
	issuer *token.Issuer,
	limiter *ratelimit.LoginLimiter,
	log *zap.Logger,
) *Service {
	return &Service{
		systemUsers: systemUsers,
		appUsers:    appUsers,
		orgs:        orgs,
		passwords:   passwords,
		issuer:      issuer,
		limiter:     limiter,
		log:         log,
	}
}

// LoginResult is returned to the caller on successful authentication.
// OrganizationUUID is nil for platform administrators.
type LoginResult struct {
	Token            string  `json:"token"`
	UserID           int64   `json:"userId"`
	Email            string  `json:"email"`
	FullName         string  `json:"fullName"`
	Roles            string  `json:"roles"`
	OrganizationUUID *string `json:"organizationUuid"`
	OrganizationName string  `json:"organizationName"`
	UserType         string  `json:"userType"`
}

// Login authenticates an email/password pair against both principal sources.
//
// Platform administrators are checked first. A tenant user's organization
// must be ACTIVE; the pending-approval rejection is intentionally specific
// while unknown-email and wrong-password collapse into ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, pass string) (*LoginResult, error) {
	ip := clientIPFromContext(ctx)

	if err := s.limiter.Check(ctx, email, ip); err != nil {
		return nil, err
	}

	sysUser, err := s.systemUsers.ByEmail(ctx, email)
	switch {
	case err == nil:
		return s.loginSystemUser(ctx, sysUser, email, pass, ip)
	case errors.Is(err, store.ErrNotFound):
		// Fall through to the tenant user source.
	default:
		return nil, err
	}

	appUser, err := s.appUsers.ByEmail(ctx, email)
	switch {
	case err == nil:
		return s.loginAppUser(ctx, appUser, email, pass, ip)
	case errors.Is(err, store.ErrNotFound):
		return nil, s.failLogin(ctx, email, ip)
	default:
		return nil, err
	}
}

func (s *Service) loginSystemUser(ctx context.Context, u *store.SystemUser, email, pass, ip string) (*LoginResult, error) {
	if !u.IsActive {
		return nil, ErrAccountInactive
	}

	ok, err := s.passwords.Verify(pass, u.PasswordHash)
	if err != nil || !ok {
		return nil, s.failLogin(ctx, email, ip)
	}

	tok, err := s.issuer.IssueAdminToken(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, err
	}

	s.finishLogin(ctx, email, ip, func() error { return s.systemUsers.StampLastLogin(ctx, u.ID) })
	return &LoginResult{
		Token:            tok,
		UserID:           u.ID,
		Email:            u.Email,
		FullName:         u.FullName,
		Roles:            u.Role,
		OrganizationName: "NextHR Platform",
		UserType:         token.UserTypeSystemAdmin,
	}, nil
}

func (s *Service) loginAppUser(ctx context.Context, u *store.AppUser, email, pass, ip string) (*LoginResult, error) {
	if !u.IsActive {
		return nil, ErrAccountInactive
	}

	ok, err := s.passwords.Verify(pass, u.PasswordHash)
	if err != nil || !ok {
		return nil, s.failLogin(ctx, email, ip)
	}

	org, err := s.orgs.ByUUID(ctx, u.OrganizationUUID)
	if err != nil {
		return nil, err
	}
	if org.Status != store.OrgStatusActive {
		return nil, ErrTenantNotApproved
	}

	tok, err := s.issuer.IssueUserToken(u.ID, u.Email, org.UUID, u.Roles)
	if err != nil {
		return nil, err
	}

	s.finishLogin(ctx, email, ip, func() error { return s.appUsers.StampLastLogin(ctx, u.ID) })
	orgUUID := org.UUID
	return &LoginResult{
		Token:            tok,
		UserID:           u.ID,
		Email:            u.Email,
		FullName:         u.FullName,
		Roles:            u.Roles,
		OrganizationUUID: &orgUUID,
		OrganizationName: org.Name,
		UserType:         token.UserTypeOrgUser,
	}, nil
}

// failLogin counts the attempt and returns the generic credential error.
func (s *Service) failLogin(ctx context.Context, email, ip string) error {
	if err := s.limiter.RecordFailure(ctx, email, ip); err != nil {
		if errors.Is(err, ratelimit.ErrLoginRateLimited) {
			return err
		}
		s.log.Warn("login limiter unavailable", zap.Error(err))
	}
	return ErrInvalidCredentials
}

// finishLogin resets throttling and stamps last login, both best-effort.
func (s *Service) finishLogin(ctx context.Context, email, ip string, stamp func() error) {
	if err := s.limiter.Reset(ctx, email, ip); err != nil {
		s.log.Warn("login limiter reset failed", zap.Error(err))
	}
	if err := stamp(); err != nil {
		s.log.Warn("last login stamp failed", zap.Error(err))
	}
}

// SignupRequest carries the organization self-registration payload.
type SignupRequest struct {
	OrganizationName string `json:"organizationName"`
	AdminEmail       string `json:"adminEmail"`
	AdminName        string `json:"adminName"`
	Password         string `json:"password"`
}

// SignupOrganization registers a new organization in PENDING_APPROVAL status
// together with its first admin user. The admin stays inactive until a
// platform administrator approves the organization.
func (s *Service) SignupOrganization(ctx context.Context, req SignupRequest) (*store.Organization, error) {
	if req.OrganizationName == "" || req.AdminEmail == "" || req.Password == "" {
		return nil, errors.New("organization name, admin email, and password are required")
	}

	taken, err := s.orgs.ExistsByEmail(ctx, req.AdminEmail)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := s.passwords.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	org := &store.Organization{
		UUID:   uuid.NewString(),
		Name:   req.OrganizationName,
		Email:  req.AdminEmail,
		Status: store.OrgStatusPendingApproval,
	}
	if err := s.orgs.Insert(ctx, org); err != nil {
		return nil, err
	}

	admin := &store.AppUser{
		OrganizationUUID: org.UUID,
		Email:            req.AdminEmail,
		Username:         usernameFromEmail(req.AdminEmail),
		FullName:         req.AdminName,
		PasswordHash:     hash,
		Roles:            RoleOrgAdmin,
		IsActive:         false,
	}
	if err := s.appUsers.Insert(ctx, admin); err != nil {
		return nil, err
	}

	s.log.Info("organization registered",
		zap.String("organization_uuid", org.UUID),
		zap.String("name", org.Name),
	)
	return org, nil
}

// ApproveOrganization transitions a pending organization to ACTIVE and
// enables its users. Reached only through the SYS_ADMIN-guarded route.
func (s *Service) ApproveOrganization(ctx context.Context, orgUUID string) error {
	if err := s.orgs.UpdateStatus(ctx, orgUUID, store.OrgStatusActive); err != nil {
		return err
	}
	if err := s.appUsers.ActivateByOrganization(ctx, orgUUID); err != nil {
		return err
	}

	s.log.Info("organization approved", zap.String("organization_uuid", orgUUID))
	return nil
}

func usernameFromEmail(email string) string {
	for i := 0; i < len(email); i++ {
		if email[i] == '@' {
			return email[:i]
		}
	}
	return email
}
