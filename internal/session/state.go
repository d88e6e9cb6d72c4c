package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"quizmaster/internal/quiz"
)

var ErrNotLoggedIn = errors.New("not logged in")

// AuthAPI is the part of the remote service that Session State talks to.
type AuthAPI interface {
	Register(ctx context.Context, name, email, password string) error
	Login(ctx context.Context, email, password string) error
	Me(ctx context.Context) (quiz.Identity, error)
	Logout(ctx context.Context) error
}

// State holds the authenticated identity for the lifetime of one client run.
type State struct {
	api    AuthAPI
	logger *zap.Logger

	mu       sync.RWMutex
	identity *quiz.Identity
}

func New(api AuthAPI, logger *zap.Logger) *State {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &State{
		api:    api,
		logger: logger,
	}
}

// Register creates an account. It does not log the user in.
func (s *State) Register(ctx context.Context, name, email, password string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return &quiz.ValidationError{Message: "name, email and password are required"}
	}
	return s.api.Register(ctx, name, email, password)
}

// Login authenticates and then fetches the current identity. Both calls must
// succeed; on any failure the stored identity is cleared.
func (s *State) Login(ctx context.Context, email, password string) (quiz.Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return quiz.Identity{}, &quiz.ValidationError{Message: "email and password are required"}
	}

	s.Clear()

	if err := s.api.Login(ctx, email, password); err != nil {
		return quiz.Identity{}, err
	}

	identity, err := s.api.Me(ctx)
	if err != nil {
		s.logger.Warn("identity fetch after login failed", zap.Error(err))
		return quiz.Identity{}, fmt.Errorf("fetch identity: %w", err)
	}

	s.mu.Lock()
	s.identity = &identity
	s.mu.Unlock()

	s.logger.Info("logged in", zap.String("user_id", identity.ID), zap.String("role", string(identity.Role)))
	return identity, nil
}

// Logout always clears the local identity. A failed remote call is only
// logged.
func (s *State) Logout(ctx context.Context) {
	s.Clear()
	if err := s.api.Logout(ctx); err != nil {
		s.logger.Warn("remote logout failed", zap.Error(err))
	}
}

func (s *State) Identity() (quiz.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return quiz.Identity{}, false
	}
	return *s.identity, true
}

func (s *State) LoggedIn() bool {
	_, ok := s.Identity()
	return ok
}

func (s *State) IsAdmin() bool {
	identity, ok := s.Identity()
	return ok && identity.IsAdmin()
}

func (s *State) Clear() {
	s.mu.Lock()
	s.identity = nil
	s.mu.Unlock()
}
