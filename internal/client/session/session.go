// Package session holds the authenticated identity of the back office: the
// bearer token and the user profile that came with it. Both live in memory
// for the running process and in the local kv store so a restart resumes
// the session.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/backoffice/internal/client/api"
	"github.com/dmitrijs2005/backoffice/internal/client/models"
	"github.com/dmitrijs2005/backoffice/internal/client/repositories/kv"
	"github.com/dmitrijs2005/backoffice/internal/dbx"
	"github.com/dmitrijs2005/backoffice/internal/logging"
)

// Storage keys. The token and the user are always written and removed together.
const (
	TokenKey = "auth_token"
	UserKey  = "auth_user"
)

// Authenticator exchanges credentials for a token. *api.Client implements it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (api.LoginResult, error)
}

// State is a copy of the session at one moment.
type State struct {
	Token   string
	User    *models.User
	Loading bool
}

// Result is what Login reports to the login form.
type Result struct {
	OK      bool
	Message string
}

// Store is safe for concurrent use.
type Store struct {
	db     *sql.DB
	auth   Authenticator
	logger logging.Logger

	mu      sync.RWMutex
	token   string
	user    *models.User
	loading bool

	obsMu     sync.Mutex
	observers []func(State)
}

// New returns a store in the loading state; call Restore to leave it.
func New(db *sql.DB, auth Authenticator, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Store{db: db, auth: auth, logger: logger, loading: true}
}

// Login authenticates and, on success, replaces the current session. A
// failure leaves the session as it was and carries the message to show.
func (s *Store) Login(ctx context.Context, email, password string) Result {
	res, err := s.auth.Login(ctx, email, password)
	if err != nil {
		s.logger.Warn(ctx, "login failed", "email", email, "error", err)
		return Result{Message: api.Message(err)}
	}

	user := res.User
	if err := s.persist(ctx, res.Token, user); err != nil {
		// The session still works for this run; it just won't survive a restart.
		s.logger.Error(ctx, "saving session failed", "error", err)
	}

	s.mu.Lock()
	s.token, s.user = res.Token, &user
	s.mu.Unlock()

	s.logger.Info(ctx, "logged in", "user_id", user.ID, "role", user.RoleName())
	s.notify()
	return Result{OK: true}
}

// Logout drops the session locally. It never calls the backend and may be
// called any number of times.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.token, s.user = "", nil
	s.mu.Unlock()

	if err := s.clear(ctx); err != nil {
		s.logger.Error(ctx, "clearing session failed", "error", err)
	}
	s.notify()
}

// Restore rehydrates the session saved by an earlier run. Incomplete or
// unreadable data is discarded and the store comes up logged out.
func (s *Store) Restore(ctx context.Context) {
	token, user, err := s.load(ctx)
	if err != nil {
		s.logger.Warn(ctx, "discarding saved session", "error", err)
		if err := s.clear(ctx); err != nil {
			s.logger.Error(ctx, "clearing session failed", "error", err)
		}
		token, user = "", nil
	}

	s.mu.Lock()
	s.token, s.user, s.loading = token, user, false
	s.mu.Unlock()
	s.notify()
}

var errPartialSession = errors.New("saved session is incomplete")

func (s *Store) load(ctx context.Context) (string, *models.User, error) {
	all, err := kv.NewSQLiteRepository(s.db).List(ctx)
	if err != nil {
		return "", nil, err
	}
	token, hasToken := all[TokenKey]
	raw, hasUser := all[UserKey]

	switch {
	case !hasToken && !hasUser:
		return "", nil, nil
	case !hasToken || !hasUser || token == "":
		return "", nil, errPartialSession
	}

	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return "", nil, fmt.Errorf("decode saved user: %w", err)
	}
	if !u.Valid() {
		return "", nil, errPartialSession
	}
	return token, &u, nil
}

func (s *Store) persist(ctx context.Context, token string, u models.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := kv.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, TokenKey, token); err != nil {
			return err
		}
		return repo.Set(ctx, UserKey, string(raw))
	})
}

func (s *Store) clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return kv.NewSQLiteRepository(tx).Delete(ctx, TokenKey, UserKey)
	})
}

// Token is the token source read by the API client on every request.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

func (s *Store) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.IsAdmin()
}

// Loading is true until Restore has run.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// User returns a copy of the profile, or nil when logged out.
func (s *Store) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := State{Token: s.token, Loading: s.loading}
	if s.user != nil {
		u := *s.user
		st.User = &u
	}
	return st
}

// OnChange registers fn to run after every login, logout and restore.
func (s *Store) OnChange(fn func(State)) {
	s.obsMu.Lock()
	s.observers = append(s.observers, fn)
	s.obsMu.Unlock()
}

func (s *Store) notify() {
	st := s.State()
	s.obsMu.Lock()
	obs := append([]func(State){}, s.observers...)
	s.obsMu.Unlock()
	for _, fn := range obs {
		fn(st)
	}
}
