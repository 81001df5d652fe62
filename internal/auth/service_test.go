package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nexthr/nexthr-backend/internal/password"
	"github.com/nexthr/nexthr-backend/internal/ratelimit"
	"github.com/nexthr/nexthr-backend/internal/store"
	"github.com/nexthr/nexthr-backend/internal/token"
)

type fakeSystemUsers struct {
	byEmail map[string]*store.SystemUser
	stamped []int64
}

func (f *fakeSystemUsers) ByEmail(_ context.Context, email string) (*store.SystemUser, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeSystemUsers) StampLastLogin(_ context.Context, id int64) error {
	f.stamped = append(f.stamped, id)
	return nil
}

type fakeAppUsers struct {
	byEmail  map[string]*store.AppUser
	inserted []*store.AppUser
	actived  []string
}

func (f *fakeAppUsers) ByEmail(_ context.Context, email string) (*store.AppUser, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeAppUsers) Insert(_ context.Context, u *store.AppUser) error {
	u.ID = int64(len(f.inserted) + 1)
	f.inserted = append(f.inserted, u)
	if f.byEmail == nil {
		f.byEmail = map[string]*store.AppUser{}
	}
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeAppUsers) StampLastLogin(context.Context, int64) error { return nil }

func (f *fakeAppUsers) ActivateByOrganization(_ context.Context, orgUUID string) error {
	f.actived = append(f.actived, orgUUID)
	for _, u := range f.byEmail {
		if u.OrganizationUUID == orgUUID {
			u.IsActive = true
		}
	}
	return nil
}

type fakeOrgs struct {
	byUUID   map[string]*store.Organization
	inserted []*store.Organization
}

func (f *fakeOrgs) ByUUID(_ context.Context, uuid string) (*store.Organization, error) {
	if o, ok := f.byUUID[uuid]; ok {
		return o, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeOrgs) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, o := range f.byUUID {
		if o.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeOrgs) Insert(_ context.Context, o *store.Organization) error {
	o.ID = int64(len(f.inserted) + 1)
	o.CreatedAt = time.Now()
	f.inserted = append(f.inserted, o)
	if f.byUUID == nil {
		f.byUUID = map[string]*store.Organization{}
	}
	f.byUUID[o.UUID] = o
	return nil
}

func (f *fakeOrgs) UpdateStatus(_ context.Context, uuid, status string) error {
	o, ok := f.byUUID[uuid]
	if !ok {
		return store.ErrNotFound
	}
	o.Status = status
	return nil
}

type serviceFixture struct {
	service     *Service
	codec       *token.Codec
	systemUsers *fakeSystemUsers
	appUsers    *fakeAppUsers
	orgs        *fakeOrgs
}

func newServiceFixture(t *testing.T, limiter *ratelimit.LoginLimiter) *serviceFixture {
	t.Helper()

	codec, err := token.NewCodec([]byte("service-test-secret-0123456789ab"))
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}
	issuer, err := token.NewIssuer(codec, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer failed: %v", err)
	}
	hasher, err := password.NewHasher(password.Config{
		Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 16,
	})
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}

	hash, err := hasher.Hash("correct-password")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	systemUsers := &fakeSystemUsers{byEmail: map[string]*store.SystemUser{
		"admin@platform": {
			ID: 1, Email: "admin@platform", FullName: "Platform Admin",
			PasswordHash: hash, Role: RoleSysAdmin, IsActive: true,
		},
		"retired@platform": {
			ID: 2, Email: "retired@platform", FullName: "Retired Admin",
			PasswordHash: hash, Role: RoleSysAdmin, IsActive: false,
		},
	}}
	appUsers := &fakeAppUsers{byEmail: map[string]*store.AppUser{
		"hr@acme.test": {
			ID: 10, OrganizationUUID: "org-active", Email: "hr@acme.test",
			FullName: "Acme HR", PasswordHash: hash,
			Roles: RoleOrgAdmin + "," + RoleHRStaff, IsActive: true,
		},
		"hr@pending.test": {
			ID: 11, OrganizationUUID: "org-pending", Email: "hr@pending.test",
			FullName: "Pending HR", PasswordHash: hash,
			Roles: RoleOrgAdmin, IsActive: true,
		},
		"dormant@acme.test": {
			ID: 12, OrganizationUUID: "org-active", Email: "dormant@acme.test",
			FullName: "Dormant", PasswordHash: hash,
			Roles: RoleHRStaff, IsActive: false,
		},
	}}
	orgs := &fakeOrgs{byUUID: map[string]*store.Organization{
		"org-active": {ID: 1, UUID: "org-active", Name: "Acme", Email: "hr@acme.test",
			Status: store.OrgStatusActive},
		"org-pending": {ID: 2, UUID: "org-pending", Name: "Pending Co", Email: "hr@pending.test",
			Status: store.OrgStatusPendingApproval},
	}}

	return &serviceFixture{
		service:     NewService(systemUsers, appUsers, orgs, hasher, issuer, limiter, zap.NewNop()),
		codec:       codec,
		systemUsers: systemUsers,
		appUsers:    appUsers,
		orgs:        orgs,
	}
}

func TestLoginSystemAdmin(t *testing.T) {
	fx := newServiceFixture(t, nil)

	res, err := fx.service.Login(context.Background(), "admin@platform", "correct-password")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if res.UserType != token.UserTypeSystemAdmin {
		t.Fatalf("userType = %q", res.UserType)
	}
	if res.OrganizationUUID != nil {
		t.Fatalf("system admin must have no organization, got %v", *res.OrganizationUUID)
	}

	claims, err := fx.codec.Decode(res.Token)
	if err != nil {
		t.Fatalf("issued token does not decode: %v", err)
	}
	if claims.Org != nil || claims.UserType != token.UserTypeSystemAdmin {
		t.Fatalf("unexpected admin claims: org=%v type=%q", claims.Org, claims.UserType)
	}
	if len(fx.systemUsers.stamped) != 1 || fx.systemUsers.stamped[0] != 1 {
		t.Fatalf("last login not stamped: %v", fx.systemUsers.stamped)
	}
}

func TestLoginTenantUser(t *testing.T) {
	fx := newServiceFixture(t, nil)

	res, err := fx.service.Login(context.Background(), "hr@acme.test", "correct-password")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if res.UserType != token.UserTypeOrgUser {
		t.Fatalf("userType = %q", res.UserType)
	}
	if res.OrganizationUUID == nil || *res.OrganizationUUID != "org-active" {
		t.Fatalf("organization = %v", res.OrganizationUUID)
	}

	claims, err := fx.codec.Decode(res.Token)
	if err != nil {
		t.Fatalf("issued token does not decode: %v", err)
	}
	if claims.Org == nil || *claims.Org != "org-active" {
		t.Fatalf("org claim = %v", claims.Org)
	}
	if got := claims.RoleList(); len(got) != 2 {
		t.Fatalf("roles = %v", got)
	}
}

func TestLoginCredentialFailuresAreIndistinguishable(t *testing.T) {
	fx := newServiceFixture(t, nil)

	for _, tc := range []struct{ email, pass string }{
		{"hr@acme.test", "wrong-password"},
		{"nobody@nowhere.test", "whatever"},
		{"admin@platform", "wrong-password"},
	} {
		_, err := fx.service.Login(context.Background(), tc.email, tc.pass)
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("Login(%q): expected ErrInvalidCredentials, got %v", tc.email, err)
		}
	}
}

func TestLoginInactiveAccounts(t *testing.T) {
	fx := newServiceFixture(t, nil)

	if _, err := fx.service.Login(context.Background(), "retired@platform", "correct-password"); !errors.Is(err, ErrAccountInactive) {
		t.Fatalf("inactive admin: expected ErrAccountInactive, got %v", err)
	}
	if _, err := fx.service.Login(context.Background(), "dormant@acme.test", "correct-password"); !errors.Is(err, ErrAccountInactive) {
		t.Fatalf("inactive user: expected ErrAccountInactive, got %v", err)
	}
}

func TestLoginPendingOrganization(t *testing.T) {
	fx := newServiceFixture(t, nil)

	res, err := fx.service.Login(context.Background(), "hr@pending.test", "correct-password")
	if !errors.Is(err, ErrTenantNotApproved) {
		t.Fatalf("expected ErrTenantNotApproved, got %v", err)
	}
	if res != nil {
		t.Fatal("no token may be issued for an unapproved organization")
	}
}

func TestLoginRateLimiting(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter := ratelimit.NewLoginLimiter(client, ratelimit.Config{
		MaxAttempts: 2, Cooldown: time.Minute,
	})
	fx := newServiceFixture(t, limiter)

	for i := 0; i < 2; i++ {
		if _, err := fx.service.Login(context.Background(), "hr@acme.test", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: %v", i, err)
		}
	}

	// Budget exhausted: even the correct password is refused until the
	// window passes.
	if _, err := fx.service.Login(context.Background(), "hr@acme.test", "correct-password"); !errors.Is(err, ratelimit.ErrLoginRateLimited) {
		t.Fatalf("expected ErrLoginRateLimited, got %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := fx.service.Login(context.Background(), "hr@acme.test", "correct-password"); err != nil {
		t.Fatalf("post-window login failed: %v", err)
	}
}

func TestSignupCreatesPendingOrganization(t *testing.T) {
	fx := newServiceFixture(t, nil)

	org, err := fx.service.SignupOrganization(context.Background(), SignupRequest{
		OrganizationName: "Globex",
		AdminEmail:       "admin@globex.test",
		AdminName:        "Globex Admin",
		Password:         "initial-password",
	})
	if err != nil {
		t.Fatalf("SignupOrganization failed: %v", err)
	}
	if org.Status != store.OrgStatusPendingApproval {
		t.Fatalf("status = %q", org.Status)
	}
	if org.UUID == "" {
		t.Fatal("organization UUID not generated")
	}

	admin := fx.appUsers.byEmail["admin@globex.test"]
	if admin == nil {
		t.Fatal("admin user not created")
	}
	if admin.IsActive {
		t.Fatal("admin must stay inactive until approval")
	}
	if admin.Roles != RoleOrgAdmin {
		t.Fatalf("admin roles = %q", admin.Roles)
	}
	if admin.PasswordHash == "initial-password" {
		t.Fatal("password stored unhashed")
	}

	// Pending org blocks login even with correct credentials.
	if _, err := fx.service.Login(context.Background(), "admin@globex.test", "initial-password"); !errors.Is(err, ErrAccountInactive) {
		t.Fatalf("expected ErrAccountInactive before approval, got %v", err)
	}
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	fx := newServiceFixture(t, nil)

	_, err := fx.service.SignupOrganization(context.Background(), SignupRequest{
		OrganizationName: "Acme Again",
		AdminEmail:       "hr@acme.test",
		AdminName:        "Someone",
		Password:         "whatever-password",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestApproveOrganizationEnablesLogin(t *testing.T) {
	fx := newServiceFixture(t, nil)

	if _, err := fx.service.SignupOrganization(context.Background(), SignupRequest{
		OrganizationName: "Globex",
		AdminEmail:       "admin@globex.test",
		AdminName:        "Globex Admin",
		Password:         "initial-password",
	}); err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	orgUUID := fx.orgs.inserted[0].UUID
	if err := fx.service.ApproveOrganization(context.Background(), orgUUID); err != nil {
		t.Fatalf("ApproveOrganization failed: %v", err)
	}

	res, err := fx.service.Login(context.Background(), "admin@globex.test", "initial-password")
	if err != nil {
		t.Fatalf("post-approval login failed: %v", err)
	}
	if res.OrganizationUUID == nil || *res.OrganizationUUID != orgUUID {
		t.Fatalf("organization = %v", res.OrganizationUUID)
	}
}
