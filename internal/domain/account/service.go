package account

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/stepwise/internal/domain/catalog"
	"github.com/rpggio/stepwise/internal/repository"
)

// Service handles account operations.
type Service struct {
	repo     Repository
	verifier CredentialVerifier
	logger   *slog.Logger
}

// NewService creates a new account service. A nil verifier stores plaintext.
func NewService(repo Repository, verifier CredentialVerifier, logger *slog.Logger) *Service {
	if verifier == nil {
		verifier = PlaintextVerifier{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{repo: repo, verifier: verifier, logger: logger}
}

// SignupRequest defines account creation inputs.
type SignupRequest struct {
	Name     string
	Username string
	Password string
	// Role defaults to RoleUser. Only operator tooling sets it.
	Role Role
}

// ProfileUpdate carries a partial profile update; nil fields are left unchanged.
type ProfileUpdate struct {
	Name        *string
	Username    *string
	Preferences *Preferences
}

// Create registers a new account.
func (s *Service) Create(ctx context.Context, req SignupRequest) (*User, error) {
	input := signupInput{
		Name:     strings.TrimSpace(req.Name),
		Username: strings.TrimSpace(req.Username),
		Password: req.Password,
	}
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	role := req.Role
	switch role {
	case "":
		role = RoleUser
	case RoleUser, RoleAdmin:
	default:
		return nil, &InputError{Field: "role", Message: fmt.Sprintf("role %q is not valid", role)}
	}

	stored, err := s.verifier.Prepare(input.Password)
	if err != nil {
		return nil, fmt.Errorf("preparing credentials: %w", err)
	}

	now := time.Now().UTC()
	user := &User{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Username:    input.Username,
		Password:    stored,
		Role:        role,
		Preferences: DefaultPreferences(),
		Badges:      []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user created", "user_id", user.ID, "username", user.Username, "role", user.Role)
	return user, nil
}

// Authenticate checks a username and password pair.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}

	if !s.verifier.Verify(user.Password, password) {
		s.logger.Debug("login rejected", "username", username)
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Get fetches a user by ID.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrUserNotFound
	}
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return user, nil
}

// GetByUsername fetches a user by username.
func (s *Service) GetByUsername(ctx context.Context, username string) (*User, error) {
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return user, nil
}

// UpdateProfile changes name, username, or preferences.
func (s *Service) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	updated := *user
	if update.Name != nil {
		updated.Name = strings.TrimSpace(*update.Name)
	}
	if update.Username != nil {
		updated.Username = strings.TrimSpace(*update.Username)
	}
	if err := validateStruct(profileInput{Name: updated.Name, Username: updated.Username}); err != nil {
		return nil, err
	}

	if update.Preferences != nil {
		prefs := *update.Preferences
		if prefs.SkillGoals == nil {
			prefs.SkillGoals = []catalog.Category{}
		}
		if prefs.DifficultyPreference == "" {
			prefs.DifficultyPreference = user.Preferences.DifficultyPreference
		}
		if prefs.AvailableTime == 0 {
			prefs.AvailableTime = user.Preferences.AvailableTime
		}
		if err := validateStruct(preferencesInput(prefs)); err != nil {
			return nil, err
		}
		updated.Preferences = prefs
	}
	updated.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, &updated); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrUsernameTaken
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("updating user: %w", err)
	}
	return &updated, nil
}

// UpdatePassword replaces the password after checking the current one.
func (s *Service) UpdatePassword(ctx context.Context, userID, current, next string) error {
	if current == "" || next == "" {
		return &InputError{Field: "password", Message: "current and new password are required"}
	}
	if err := validatePassword(next); err != nil {
		return err
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !s.verifier.Verify(user.Password, current) {
		return ErrWrongPassword
	}

	stored, err := s.verifier.Prepare(next)
	if err != nil {
		return fmt.Errorf("preparing credentials: %w", err)
	}
	user.Password = stored
	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("updating password: %w", err)
	}

	s.logger.Info("password updated", "user_id", userID)
	return nil
}

// Delete removes an account. Its user-activities and journal go with it.
func (s *Service) Delete(ctx context.Context, userID string) error {
	if err := s.repo.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("deleting user: %w", err)
	}
	s.logger.Info("user deleted", "user_id", userID)
	return nil
}

// RecordStreak persists a recalculated streak and badge list.
func (s *Service) RecordStreak(ctx context.Context, userID string, streak Streak, badges []string) error {
	if badges == nil {
		badges = []string{}
	}
	if err := s.repo.UpdateStreak(ctx, userID, streak, badges); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("recording streak: %w", err)
	}
	return nil
}
