// Package users holds accounts, their addresses and settings, and the
// register/login flows that hand out bearer tokens.
package users

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/auth"
	"github.com/01moynul/storefront-golang/internal/models"
	"golang.org/x/sync/errgroup"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrAddressNotFound = errors.New("address not found")
)

// invalidCredentials is shared by every login failure so that an unknown
// email and a wrong password look the same to the caller.
const invalidCredentials = "Invalid email or password"

// Store persists users, addresses and settings.
type Store interface {
	// Create inserts u together with a default settings row. A taken email
	// yields ErrEmailTaken.
	Create(ctx context.Context, u *models.User) error
	ByEmail(ctx context.Context, email string) (models.User, error)
	ByID(ctx context.Context, id int64) (models.User, error)
	UpdateProfile(ctx context.Context, id int64, p ProfilePatch) (models.User, error)
	SetPassword(ctx context.Context, id int64, hash string) error
	SetAvatar(ctx context.Context, id int64, url string) (models.User, error)

	Addresses(ctx context.Context, userID int64) ([]models.Address, error)
	// SaveAddress inserts (a.ID == 0) or updates the address. When
	// a.IsDefault is set every other address of the user loses the flag.
	SaveAddress(ctx context.Context, a *models.Address) error
	DeleteAddress(ctx context.Context, userID, id int64) (bool, error)
	CountAddresses(ctx context.Context, userID int64) (int64, error)

	// Settings returns the stored settings, creating the defaults first
	// when the user has none.
	Settings(ctx context.Context, userID int64) (models.UserSettings, error)
	SaveSettings(ctx context.Context, s *models.UserSettings) error
}

// CountFunc counts something a user owns.
type CountFunc func(ctx context.Context, userID int64) (int64, error)

// StatsSources feeds the profile dashboard.
type StatsSources struct {
	Orders   CountFunc
	Wishlist CountFunc
	Unread   CountFunc
}

type Service struct {
	store  Store
	tokens *auth.TokenManager
	stats  StatsSources
	log    *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewService(store Store, tokens *auth.TokenManager, stats StatsSources, log *slog.Logger) *Service {
	return &Service{store: store, tokens: tokens, stats: stats, log: log}
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

type RegisterInput struct {
	Name     string `json:"name" validate:"notblank"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Phone    string `json:"phone"`
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	// 1. --- Validate ---
	in.Email = auth.NormalizeEmail(in.Email)
	if len(models.InvalidFields(in)) > 0 {
		return AuthResult{}, apperr.Validation("Name, email and password are required")
	}
	name, email := strings.TrimSpace(in.Name), in.Email
	if !auth.ValidEmail(email) {
		return AuthResult{}, apperr.Validation("Invalid email address")
	}
	if msg := auth.CheckPassword(in.Password); msg != "" {
		return AuthResult{}, apperr.Validation(msg)
	}

	// 2. --- Hash ---
	var pw models.Password
	if err := pw.Set(in.Password); err != nil {
		return AuthResult{}, apperr.Internal("Failed to register", err)
	}

	// 3. --- Insert ---
	u := models.User{Name: name, Email: email, PasswordHash: pw.Hash}
	if phone := strings.TrimSpace(in.Phone); phone != "" {
		u.Phone = &phone
	}
	if err := s.store.Create(ctx, &u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return AuthResult{}, apperr.Conflict("Email already registered")
		}
		return AuthResult{}, apperr.Internal("Failed to register", err)
	}

	// 4. --- Issue token ---
	token, err := s.tokens.GenerateToken(u.ID)
	if err != nil {
		return AuthResult{}, apperr.Internal("Failed to register", err)
	}
	s.log.InfoContext(ctx, "user registered", "user_id", u.ID)
	return AuthResult{User: u, Token: token}, nil
}

// dummy returns a hash to compare against when the email is unknown, so both
// failure paths spend the same bcrypt time.
func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		var pw models.Password
		if err := pw.Set("not-a-real-password-Z9"); err == nil {
			s.dummyHash = pw.Hash
		}
	})
	return s.dummyHash
}

func (s *Service) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = auth.NormalizeEmail(email)
	if email == "" || password == "" {
		return AuthResult{}, apperr.Validation("Email and password are required")
	}

	u, err := s.store.ByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			return AuthResult{}, apperr.Internal("Failed to log in", err)
		}
		pw := models.Password{Hash: s.dummy()}
		_, _ = pw.Matches(password)
		return AuthResult{}, apperr.Auth(invalidCredentials)
	}

	pw := models.Password{Hash: u.PasswordHash}
	ok, err := pw.Matches(password)
	if err != nil {
		return AuthResult{}, apperr.Internal("Failed to log in", err)
	}
	if !ok {
		return AuthResult{}, apperr.Auth(invalidCredentials)
	}

	token, err := s.tokens.GenerateToken(u.ID)
	if err != nil {
		return AuthResult{}, apperr.Internal("Failed to log in", err)
	}
	return AuthResult{User: u, Token: token}, nil
}

// Profile is a user with their saved addresses.
type Profile struct {
	models.User
	Addresses []models.Address `json:"addresses"`
}

// Me loads the user and their addresses concurrently.
func (s *Service) Me(ctx context.Context, userID int64) (Profile, error) {
	var p Profile
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.store.ByID(gctx, userID)
		p.User = u
		return err
	})
	g.Go(func() error {
		addrs, err := s.store.Addresses(gctx, userID)
		p.Addresses = addrs
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return Profile{}, apperr.NotFound("User not found")
		}
		return Profile{}, apperr.Internal("Failed to load profile", err)
	}
	if p.Addresses == nil {
		p.Addresses = []models.Address{}
	}
	return p, nil
}

// ProfilePatch is a partial profile update. Nil fields are left unchanged.
type ProfilePatch struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

func (s *Service) UpdateProfile(ctx context.Context, userID int64, p ProfilePatch) (models.User, error) {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return models.User{}, apperr.Validation("Name cannot be empty")
		}
		p.Name = &name
	}
	if p.Email != nil {
		email := auth.NormalizeEmail(*p.Email)
		if !auth.ValidEmail(email) {
			return models.User{}, apperr.Validation("Invalid email address")
		}
		p.Email = &email
	}
	if p.Phone != nil {
		phone := strings.TrimSpace(*p.Phone)
		p.Phone = &phone
	}

	u, err := s.store.UpdateProfile(ctx, userID, p)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailTaken):
			return models.User{}, apperr.Conflict("Email already registered")
		case errors.Is(err, ErrUserNotFound):
			return models.User{}, apperr.NotFound("User not found")
		}
		return models.User{}, apperr.Internal("Failed to update profile", err)
	}
	return u, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	u, err := s.store.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return apperr.NotFound("User not found")
		}
		return apperr.Internal("Failed to change password", err)
	}

	pw := models.Password{Hash: u.PasswordHash}
	ok, err := pw.Matches(current)
	if err != nil {
		return apperr.Internal("Failed to change password", err)
	}
	if !ok {
		return apperr.Auth("Current password is incorrect")
	}
	if msg := auth.CheckPassword(next); msg != "" {
		return apperr.Validation(msg)
	}
	if err := pw.Set(next); err != nil {
		return apperr.Internal("Failed to change password", err)
	}
	if err := s.store.SetPassword(ctx, userID, pw.Hash); err != nil {
		return apperr.Internal("Failed to change password", err)
	}
	return nil
}

func (s *Service) SetAvatar(ctx context.Context, userID int64, url string) (models.User, error) {
	u, err := s.store.SetAvatar(ctx, userID, url)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return models.User{}, apperr.NotFound("User not found")
		}
		return models.User{}, apperr.Internal("Failed to update avatar", err)
	}
	return u, nil
}

// Stats gathers the dashboard counters concurrently. Missing sources
// count as zero.
func (s *Service) Stats(ctx context.Context, userID int64) (models.UserStats, error) {
	var st models.UserStats
	g, gctx := errgroup.WithContext(ctx)
	run := func(fn CountFunc, dst *int64) {
		if fn == nil {
			return
		}
		g.Go(func() error {
			n, err := fn(gctx, userID)
			*dst = n
			return err
		})
	}
	run(s.stats.Orders, &st.Orders)
	run(s.stats.Wishlist, &st.WishlistItems)
	run(s.stats.Unread, &st.Unread)
	run(s.store.CountAddresses, &st.Addresses)
	if err := g.Wait(); err != nil {
		return models.UserStats{}, apperr.Internal("Failed to load stats", err)
	}
	return st, nil
}
