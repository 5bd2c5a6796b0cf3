package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/sirupsen/logrus"
)

// CredentialStore owns who the browser session is logged in as. The bearer token itself is
// persisted by the gateway; this store persists the identity half.
type CredentialStore struct {
	api      AuthAPI
	sessions storage.SessionStore
	key      string
	log      logrus.FieldLogger

	mu      sync.RWMutex
	session domain.Session
	loading bool
}

func NewCredentialStore(api AuthAPI, sessions storage.SessionStore, key string, log logrus.FieldLogger) *CredentialStore {
	return &CredentialStore{
		api:      api,
		sessions: sessions,
		key:      key,
		log:      log.WithField("component", "credential_store"),
		session:  domain.Session{Phase: domain.PhaseUninitialized},
	}
}

// Rehydrate restores the persisted identity. A persisted login whose token is gone or expired
// is wiped and the session starts anonymous. Calling it again once the phase is known does nothing.
func (s *CredentialStore) Rehydrate(ctx context.Context) error {
	if s.Phase() != domain.PhaseUninitialized {
		return nil
	}

	persisted, err := s.sessions.LoadSession(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		s.settle(domain.Session{Phase: domain.PhaseAnonymous})
		return nil
	}
	if err != nil {
		s.settle(domain.Session{Phase: domain.PhaseAnonymous})
		return fmt.Errorf("load persisted session: %w", err)
	}
	if !persisted.Authenticated || persisted.User == nil {
		s.settle(domain.Session{Phase: domain.PhaseAnonymous})
		return nil
	}

	present, expired, err := s.api.HasToken(ctx)
	if err != nil {
		s.settle(domain.Session{Phase: domain.PhaseAnonymous})
		return fmt.Errorf("inspect bearer token: %w", err)
	}
	if !present || expired {
		s.log.WithField("expired", expired).Info("persisted login has no live token, starting anonymous")
		s.clearDurable(ctx)
		s.settle(domain.Session{Phase: domain.PhaseAnonymous})
		return nil
	}

	s.settle(domain.Session{User: persisted.User, Authenticated: true, Phase: domain.PhaseRestored})
	return nil
}

// settle applies the rehydration result unless a login or logout already moved the phase on.
func (s *CredentialStore) settle(session domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.Phase == domain.PhaseUninitialized {
		s.session = session
	}
}

func (s *CredentialStore) Current() (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session.Phase == domain.PhaseUninitialized {
		return domain.Session{Phase: domain.PhaseUninitialized}, ErrNotRehydrated
	}
	return copySession(s.session), nil
}

func (s *CredentialStore) Phase() domain.Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Phase
}

func (s *CredentialStore) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Authenticated
}

func (s *CredentialStore) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *CredentialStore) Login(ctx context.Context, email, password string) (*domain.User, error) {
	return s.authenticate(ctx, func() (*domain.User, error) {
		return s.api.Login(ctx, email, password)
	})
}

func (s *CredentialStore) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	return s.authenticate(ctx, func() (*domain.User, error) {
		return s.api.Register(ctx, email, password, name)
	})
}

func (s *CredentialStore) authenticate(ctx context.Context, call func() (*domain.User, error)) (*domain.User, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	user, err := call()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.session = domain.Session{User: user, Authenticated: true, Phase: domain.PhaseAuthenticated}
	s.mu.Unlock()

	s.persist(ctx, user)
	copied := *user
	return &copied, nil
}

// Logout forgets the token and the identity, in memory and in storage. Storage failures are
// logged, never returned.
func (s *CredentialStore) Logout(ctx context.Context) {
	s.forceClear(ctx)
}

// FetchCurrentUser re-validates the stored token. Any failure drops the identity so a dead
// token is never paired with a live-looking user; the error is still returned for logging.
func (s *CredentialStore) FetchCurrentUser(ctx context.Context) (*domain.User, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	user, err := s.api.GetCurrentUser(ctx)
	if err != nil {
		s.forceClear(ctx)
		return nil, fmt.Errorf("fetch current user: %w", err)
	}

	s.mu.Lock()
	s.session = domain.Session{User: user, Authenticated: true, Phase: domain.PhaseAuthenticated}
	s.mu.Unlock()

	s.persist(ctx, user)
	copied := *user
	return &copied, nil
}

// HandleUnauthorized is the gateway's 401 hook. The gateway already dropped the token.
func (s *CredentialStore) HandleUnauthorized() {
	s.log.Info("backend rejected the session credential, logging out")
	s.forceClear(context.Background())
}

func (s *CredentialStore) forceClear(ctx context.Context) {
	s.mu.Lock()
	s.session = domain.Session{Phase: domain.PhaseAnonymous}
	s.mu.Unlock()

	if err := s.api.Logout(ctx); err != nil {
		s.log.WithField("error", err).Error("failed to clear bearer token")
	}
	s.clearDurable(ctx)
}

func (s *CredentialStore) clearDurable(ctx context.Context) {
	if err := s.sessions.ClearSession(ctx, s.key); err != nil {
		s.log.WithField("error", err).Error("failed to clear persisted session")
	}
}

func (s *CredentialStore) persist(ctx context.Context, user *domain.User) {
	err := s.sessions.SaveSession(ctx, s.key, &domain.PersistedSession{User: user, Authenticated: true})
	if err != nil {
		s.log.WithField("error", err).Error("failed to persist session")
	}
}

func (s *CredentialStore) setLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}

func copySession(session domain.Session) domain.Session {
	if session.User != nil {
		user := *session.User
		session.User = &user
	}
	return session
}
