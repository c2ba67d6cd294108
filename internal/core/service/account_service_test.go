package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/authcore/account-service/internal/core/domain"
	"github.com/authcore/account-service/internal/core/ports"
	"github.com/authcore/account-service/internal/pkg/password"
	"github.com/authcore/account-service/internal/pkg/token"
)

type stubUserRepo struct {
	users  map[string]*domain.User // keyed by id
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Insert(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == user.Username {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	copy := cloneUser(user)
	copy.ID = fmt.Sprintf("id-%d", r.nextID)
	r.users[copy.ID] = cloneUser(copy)
	return copy, nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, ok := r.users[user.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	for id, u := range r.users {
		if id != user.ID && u.Username == user.Username {
			return nil, domain.ErrUserExists
		}
	}
	r.users[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

type stubTracker struct {
	logins map[string]time.Time
}

func newStubTracker() *stubTracker {
	return &stubTracker{logins: make(map[string]time.Time)}
}

func (t *stubTracker) RecordLogin(_ context.Context, username string, at time.Time) error {
	t.logins[username] = at
	return nil
}

func (t *stubTracker) LastLogin(_ context.Context, username string) (time.Time, error) {
	return t.logins[username], nil
}

func newTestService(repo ports.UserRepository, tracker ports.ActivityTracker) *AccountService {
	hasher := password.NewHasher(bcrypt.MinCost)
	issuer := token.NewIssuer("test-secret", time.Hour)
	return NewAccountService(repo, hasher, issuer, tracker, zerolog.Nop())
}

func TestAccountService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, nil)

	user, err := svc.Register(context.Background(), "alice", "p1")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected store-assigned id")
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("expected role user, got %s", user.Role)
	}
	if user.PasswordHash == "p1" {
		t.Fatalf("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("p1")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAccountService_Register_Validation(t *testing.T) {
	svc := newTestService(newStubUserRepo(), nil)

	if _, err := svc.Register(context.Background(), "", "p"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty username, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "alice", ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty password, got %v", err)
	}
}

func TestAccountService_Register_Duplicate(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, nil)

	if _, err := svc.Register(context.Background(), "bob", "p1"); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), "bob", "p2"); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if len(repo.users) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(repo.users))
	}
}

func TestAccountService_Authenticate_UniformFailure(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, nil)

	if _, err := svc.Register(context.Background(), "real-user", "right"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, _, ghostErr := svc.Authenticate(context.Background(), "ghost", "x")
	_, _, wrongErr := svc.Authenticate(context.Background(), "real-user", "wrong-password")

	if !errors.Is(ghostErr, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", ghostErr)
	}
	if !errors.Is(wrongErr, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", wrongErr)
	}
	if ghostErr != wrongErr {
		t.Fatalf("unknown-user and wrong-password must be indistinguishable")
	}
}

func TestAccountService_Authenticate_Success(t *testing.T) {
	repo := newStubUserRepo()
	tracker := newStubTracker()
	svc := newTestService(repo, tracker)

	if _, err := svc.Register(context.Background(), "carol", "s3cret"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	tkn, user, err := svc.Authenticate(context.Background(), "carol", "s3cret")
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if tkn == "" {
		t.Fatalf("expected token")
	}
	if user.Username != "carol" {
		t.Fatalf("unexpected user: %+v", user)
	}

	subject, err := token.NewIssuer("test-secret", time.Hour).Verify(tkn)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if subject != "carol" {
		t.Fatalf("expected subject carol, got %q", subject)
	}

	if tracker.logins["carol"].IsZero() {
		t.Fatalf("expected login activity to be recorded")
	}
}

func TestAccountService_Profile(t *testing.T) {
	repo := newStubUserRepo()
	tracker := newStubTracker()
	svc := newTestService(repo, tracker)

	if _, err := svc.Register(context.Background(), "dave", "pw"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, _, err := svc.Authenticate(context.Background(), "dave", "pw"); err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}

	p, err := svc.Profile(context.Background(), "dave")
	if err != nil {
		t.Fatalf("profile failed: %v", err)
	}
	if p.User.Username != "dave" || p.User.Role != domain.RoleUser {
		t.Fatalf("unexpected profile: %+v", p.User)
	}
	if p.LastLoginAt.IsZero() {
		t.Fatalf("expected last login timestamp")
	}

	if _, err := svc.Profile(context.Background(), "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAccountService_UpdateProfile_PasswordChange(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, nil)

	if _, err := svc.Register(context.Background(), "alice", "p1"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	newPass := "p2"
	if _, err := svc.UpdateProfile(context.Background(), "alice", ports.UpdateProfileInput{Password: &newPass}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if _, _, err := svc.Authenticate(context.Background(), "alice", "p1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password must no longer authenticate, got %v", err)
	}
	if _, _, err := svc.Authenticate(context.Background(), "alice", "p2"); err != nil {
		t.Fatalf("new password must authenticate: %v", err)
	}
}

func TestAccountService_UpdateProfile_Rename(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, nil)

	if _, err := svc.Register(context.Background(), "alice", "p1"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	newName := "alicia"
	updated, err := svc.UpdateProfile(context.Background(), "alice", ports.UpdateProfileInput{Username: &newName})
	if err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	if updated.Username != "alicia" {
		t.Fatalf("expected renamed user, got %s", updated.Username)
	}

	// Old credentials keep working under the new name.
	if _, _, err := svc.Authenticate(context.Background(), "alicia", "p1"); err != nil {
		t.Fatalf("authenticate after rename failed: %v", err)
	}
}

func TestAccountService_UpdateProfile_RenameCollision(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, nil)

	if _, err := svc.Register(context.Background(), "alice", "p1"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), "bob", "p2"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	taken := "bob"
	if _, err := svc.UpdateProfile(context.Background(), "alice", ports.UpdateProfileInput{Username: &taken}); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists on rename collision, got %v", err)
	}
}

func TestAccountService_UpdateProfile_NotFound(t *testing.T) {
	svc := newTestService(newStubUserRepo(), nil)

	pass := "p"
	if _, err := svc.UpdateProfile(context.Background(), "ghost", ports.UpdateProfileInput{Password: &pass}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAccountService_DeleteSelf(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, nil)

	if _, err := svc.Register(context.Background(), "alice", "p1"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := svc.DeleteSelf(context.Background(), "alice"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if len(repo.users) != 0 {
		t.Fatalf("expected empty store, got %d records", len(repo.users))
	}
	if err := svc.DeleteSelf(context.Background(), "alice"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound on second delete, got %v", err)
	}
}

func TestAccountService_DeleteByID(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, nil)

	user, err := svc.Register(context.Background(), "alice", "p1")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := svc.DeleteByID(context.Background(), user.ID); err != nil {
		t.Fatalf("delete by id failed: %v", err)
	}
	if err := svc.DeleteByID(context.Background(), "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAccountService_ListUsers(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, nil)

	for _, name := range []string{"alice", "bob", "carol"} {
		if _, err := svc.Register(context.Background(), name, "pw"); err != nil {
			t.Fatalf("register %s failed: %v", name, err)
		}
	}

	users, err := svc.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(users))
	}
}
