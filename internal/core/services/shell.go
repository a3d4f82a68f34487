package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/kamal-hamza/assetctl/internal/core/domain"
	"github.com/kamal-hamza/assetctl/internal/core/ports"
)

// AuthState is the state of the view shell
type AuthState int

const (
	Unauthenticated AuthState = iota
	Authenticated
)

func (s AuthState) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Route names a page of the application
type Route string

const (
	RouteLogin       Route = "login"
	RouteRegister    Route = "register"
	RouteDashboard   Route = "dashboard"
	RouteAssets      Route = "assets"
	RouteTransfers   Route = "transfers"
	RouteAssignments Route = "assignments"
	RouteProfile     Route = "profile"
)

// ProtectedRoutes lists the pages that need a session, in navigation order
var ProtectedRoutes = []Route{
	RouteDashboard,
	RouteAssets,
	RouteTransfers,
	RouteAssignments,
	RouteProfile,
}

// IsProtected reports whether route requires authentication
func (r Route) IsProtected() bool {
	return r != RouteLogin && r != RouteRegister
}

// memberRole stands in for users the backend returned without a role
const memberRole = "member"

// Shell owns the session and the authentication state machine
type Shell struct {
	mu      sync.RWMutex
	store   ports.SessionStore
	auth    ports.AuthGateway
	caps    *Capabilities
	clock   clockwork.Clock
	logger  *logrus.Entry
	session *domain.Session
}

// NewShell creates a shell and loads any persisted session
func NewShell(store ports.SessionStore, auth ports.AuthGateway, caps *Capabilities, clock clockwork.Clock, logger *logrus.Logger) (*Shell, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	var entry *logrus.Entry
	if logger != nil {
		entry = logger.WithField("component", "shell")
	} else {
		entry = logrus.WithField("component", "shell")
	}

	s := &Shell{
		store:  store,
		auth:   auth,
		caps:   caps,
		clock:  clock,
		logger: entry,
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// State returns Authenticated iff a token is present and not expired
func (s *Shell) State() AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session.Valid(s.clock.Now()) {
		return Authenticated
	}
	return Unauthenticated
}

// Session returns a copy of the current session, or nil
func (s *Shell) Session() *domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.session.Valid(s.clock.Now()) {
		return nil
	}
	copied := *s.session
	return &copied
}

// User returns the acting user, or nil when unauthenticated
func (s *Shell) User() *domain.User {
	sess := s.Session()
	if sess == nil {
		return nil
	}
	return &sess.User
}

// Reload re-reads the persisted session, picking up logins and logouts
// made by another process
func (s *Shell) Reload() error {
	sess, err := s.store.Load()
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	s.apply(sess)
	return nil
}

// Apply replaces the in-memory session without touching the store
func (s *Shell) Apply(sess *domain.Session) {
	s.apply(sess)
}

func (s *Shell) apply(sess *domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.session.Valid(s.clock.Now())
	s.session = sess
	after := s.session.Valid(s.clock.Now())
	if before != after {
		s.logger.WithField("authenticated", after).Info("session state changed")
	}
}

// Login authenticates against the backend and persists the session
func (s *Shell) Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	res, err := s.auth.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	return s.establish(res)
}

// Register creates an account and logs into it
func (s *Shell) Register(ctx context.Context, reg domain.Registration) (*domain.Session, error) {
	res, err := s.auth.Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	return s.establish(res)
}

func (s *Shell) establish(res *domain.AuthResult) (*domain.Session, error) {
	if res == nil || res.Token == "" {
		return nil, fmt.Errorf("backend returned no token")
	}
	sess := NewSession(res.Token, res.User)
	if err := s.store.Save(sess); err != nil {
		return nil, err
	}
	s.apply(sess)
	return sess, nil
}

// Logout forgets the session locally and on disk
func (s *Shell) Logout() error {
	if err := s.store.Clear(); err != nil {
		return err
	}
	s.apply(nil)
	return nil
}

// UpdateUser replaces the user snapshot after a profile change
func (s *Shell) UpdateUser(user domain.User) error {
	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return ErrNotAuthenticated
	}
	updated := *s.session
	updated.User = user
	s.session = &updated
	s.mu.Unlock()
	return s.store.Save(&updated)
}

// Guard resolves the route to show: protected routes redirect to login
// without a session
func (s *Shell) Guard(route Route) Route {
	if route.IsProtected() && s.State() != Authenticated {
		return RouteLogin
	}
	return route
}

// Can reports whether the acting user may perform action on resource
func (s *Shell) Can(resource Resource, action Action) bool {
	user := s.User()
	if user == nil || s.caps == nil {
		return false
	}
	return s.caps.Can(roleOf(*user), resource, action)
}

// Require returns ErrForbidden or ErrNotAuthenticated when Can would deny
func (s *Shell) Require(resource Resource, action Action) error {
	if s.State() != Authenticated {
		return ErrNotAuthenticated
	}
	if !s.Can(resource, action) {
		return fmt.Errorf("%w: cannot %s %s", ErrForbidden, action, resource)
	}
	return nil
}

func roleOf(u domain.User) string {
	if u.Role == "" {
		return memberRole
	}
	return u.Role
}

// NewSession builds a session, taking the expiry from the token's exp claim
// when it carries one. The signature is not verified: the backend does that.
func NewSession(token string, user domain.User) *domain.Session {
	sess := &domain.Session{Token: token, User: user}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err == nil && claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return sess
}

// ExpiresIn returns how long the session has left, or 0 without expiry
func ExpiresIn(sess *domain.Session, now time.Time) time.Duration {
	if sess == nil || sess.ExpiresAt.IsZero() {
		return 0
	}
	return sess.ExpiresAt.Sub(now)
}
