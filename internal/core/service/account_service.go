package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/authcore/account-service/internal/core/domain"
	"github.com/authcore/account-service/internal/core/ports"
	"github.com/authcore/account-service/internal/pkg/password"
	"github.com/authcore/account-service/internal/pkg/token"
)

// AccountService implements registration, login and profile management.
type AccountService struct {
	repo     ports.UserRepository
	hasher   *password.Hasher
	tokens   *token.Issuer
	activity ports.ActivityTracker
	log      zerolog.Logger

	// dummyHash keeps the unknown-username path doing the same bcrypt
	// work as the wrong-password path.
	dummyHash string
}

func NewAccountService(
	repo ports.UserRepository,
	hasher *password.Hasher,
	tokens *token.Issuer,
	activity ports.ActivityTracker,
	log zerolog.Logger,
) *AccountService {
	dummy, err := hasher.Hash("account-service-timing-pad")
	if err != nil {
		dummy = ""
	}
	return &AccountService{
		repo:      repo,
		hasher:    hasher,
		tokens:    tokens,
		activity:  activity,
		log:       log,
		dummyHash: dummy,
	}
}

// Register creates a new account with role "user". The store's unique
// index is the authority on username collisions; the duplicate error
// surfaces as domain.ErrUserExists.
func (s *AccountService) Register(ctx context.Context, username, pass string) (*domain.User, error) {
	if username == "" || pass == "" {
		return nil, domain.ErrInvalidInput
	}

	hash, err := s.hasher.Hash(pass)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := s.repo.Insert(ctx, &domain.User{
		Username:     username,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("username", created.Username).Str("user_id", created.ID).Msg("account registered")
	return created, nil
}

// Authenticate checks credentials and issues a bearer token. Unknown
// username and wrong password produce the same error so callers cannot
// enumerate accounts.
func (s *AccountService) Authenticate(ctx context.Context, username, pass string) (string, *domain.User, error) {
	if username == "" || pass == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.hasher.Verify(pass, s.dummyHash)
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !s.hasher.Verify(pass, user.PasswordHash) {
		return "", nil, domain.ErrInvalidCredentials
	}

	tkn, err := s.tokens.Issue(user.Username)
	if err != nil {
		return "", nil, err
	}

	if s.activity != nil {
		if err := s.activity.RecordLogin(ctx, user.Username, time.Now().UTC()); err != nil {
			s.log.Warn().Err(err).Str("username", user.Username).Msg("failed to record login activity")
		}
	}

	s.log.Info().Str("username", user.Username).Msg("login succeeded")
	return tkn, user, nil
}

// Profile returns the user record plus last-login activity when the
// tracker has one. Activity lookup failures degrade to a zero timestamp.
func (s *AccountService) Profile(ctx context.Context, username string) (*ports.Profile, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	p := &ports.Profile{User: user}
	if s.activity != nil {
		last, err := s.activity.LastLogin(ctx, username)
		if err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("failed to read login activity")
		} else {
			p.LastLoginAt = last
		}
	}
	return p, nil
}

// UpdateProfile applies the provided fields only. A username change is
// checked for uniqueness up front and again by the store's unique index
// on write, so a racing rename still cannot create a duplicate.
func (s *AccountService) UpdateProfile(ctx context.Context, username string, in ports.UpdateProfileInput) (*domain.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if in.Username != nil && *in.Username != user.Username {
		if *in.Username == "" {
			return nil, domain.ErrInvalidInput
		}
		if _, err := s.repo.FindByUsername(ctx, *in.Username); err == nil {
			return nil, domain.ErrUserExists
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		user.Username = *in.Username
	}

	if in.Password != nil {
		if *in.Password == "" {
			return nil, domain.ErrInvalidInput
		}
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	user.UpdatedAt = time.Now().UTC()
	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", updated.ID).Str("username", updated.Username).Msg("profile updated")
	return updated, nil
}

// DeleteSelf removes the caller's own account.
func (s *AccountService) DeleteSelf(ctx context.Context, username string) error {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, user.ID); err != nil {
		return err
	}
	s.log.Info().Str("username", username).Msg("account deleted by owner")
	return nil
}

// ListUsers returns every account. Admin gating happens in the HTTP
// layer before this is reached.
func (s *AccountService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx)
}

// DeleteByID removes an account by store id.
func (s *AccountService) DeleteByID(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("user_id", id).Msg("account deleted by admin")
	return nil
}
