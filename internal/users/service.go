package users

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/fittrack/pkg"

	gocache "github.com/patrickmn/go-cache"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

const adminCacheTTL = time.Minute

type usersRepo interface {
	Create(ctx context.Context, user User) (*User, error)
	ByUsername(ctx context.Context, username string) (*User, error)
	IsAdmin(ctx context.Context, userID int) (bool, error)
	AddAdmin(ctx context.Context, userID int) error
	RemoveAdmin(ctx context.Context, userID int) error
	ListAdmins(ctx context.Context) ([]string, error)
}

type Service struct {
	repo            usersRepo
	bootstrapAdmins map[string]bool
	adminCache      *gocache.Cache

	// ability to inject a cheaper hash func in tests
	HashPasswordFunc func(password string) (string, error)
}

func NewService(repo usersRepo, bootstrapAdmins []string) *Service {
	return &Service{
		repo: repo,
		bootstrapAdmins: lo.SliceToMap(bootstrapAdmins, func(username string) (string, bool) {
			return strings.TrimSpace(username), true
		}),
		adminCache:       gocache.New(adminCacheTTL, 2*adminCacheTTL),
		HashPasswordFunc: pkg.HashPassword,
	}
}

func (s *Service) IsBootstrapAdmin(username string) bool {
	return s.bootstrapAdmins[username]
}

// Register creates a new user. Usernames from the bootstrap list become admins.
func (s *Service) Register(ctx context.Context, username, email, password string) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}

	passwordHash, err := s.HashPasswordFunc(password)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Create(ctx, User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		return nil, err
	}

	s.ensureBootstrapAdmin(ctx, user)
	return user, nil
}

// Authenticate checks the credentials and returns the matching user.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.ByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !pkg.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	s.ensureBootstrapAdmin(ctx, user)
	return user, nil
}

func (s *Service) ensureBootstrapAdmin(ctx context.Context, user *User) {
	if !s.IsBootstrapAdmin(user.Username) {
		return
	}
	if err := s.repo.AddAdmin(ctx, user.ID); err != nil {
		log.Errorf("failed to grant admin to bootstrap user %s: %s", user.Username, err)
		return
	}
	s.adminCache.Delete(strconv.Itoa(user.ID))
}

// IsAdmin checks the admin role, results are cached for a short while.
func (s *Service) IsAdmin(ctx context.Context, userID int) (bool, error) {
	key := strconv.Itoa(userID)
	if cached, found := s.adminCache.Get(key); found {
		return cached.(bool), nil
	}

	isAdmin, err := s.repo.IsAdmin(ctx, userID)
	if err != nil {
		return false, err
	}
	s.adminCache.SetDefault(key, isAdmin)
	return isAdmin, nil
}

func (s *Service) ListAdmins(ctx context.Context) ([]string, error) {
	return s.repo.ListAdmins(ctx)
}

func (s *Service) AddAdmin(ctx context.Context, username string) error {
	user, err := s.repo.ByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return err
	}
	if err := s.repo.AddAdmin(ctx, user.ID); err != nil {
		return fmt.Errorf("add admin %s: %w", username, err)
	}
	s.adminCache.Delete(strconv.Itoa(user.ID))
	return nil
}

func (s *Service) RemoveAdmin(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if s.IsBootstrapAdmin(username) {
		return ErrBootstrapAdmin
	}
	user, err := s.repo.ByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err := s.repo.RemoveAdmin(ctx, user.ID); err != nil {
		return fmt.Errorf("remove admin %s: %w", username, err)
	}
	s.adminCache.Delete(strconv.Itoa(user.ID))
	return nil
}
