package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/wintercup/portal/internal/domain"
	"github.com/wintercup/portal/internal/gateway"
	"github.com/wintercup/portal/internal/storage"
)

// Persistence keys, shared with the browser build of the portal.
const (
	UserKey  = "tournament_user"
	ThemeKey = "theme"
)

// Topic is the event topic for session and theme transitions.
const Topic = "session"

// Theme is the persisted UI color scheme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Session is either Anonymous or Authenticated with an Identity.
type Session struct {
	identity *domain.Identity
}

// Anonymous is the initial session state.
var Anonymous = Session{}

// Authenticated builds an authenticated session for id.
func Authenticated(id domain.Identity) Session {
	return Session{identity: &id}
}

// IsAuthenticated reports whether an identity is held.
func (s Session) IsAuthenticated() bool { return s.identity != nil }

// Identity returns the held identity, if any.
func (s Session) Identity() (domain.Identity, bool) {
	if s.identity == nil {
		return domain.Identity{}, false
	}
	return *s.identity, true
}

// Exchanger trades a provider credential for a portal identity.
type Exchanger interface {
	ExchangeIdentity(ctx context.Context, provider gateway.Provider, data any) (*domain.Identity, *gateway.Envelope, error)
}

// EventPublisher receives session transitions.
type EventPublisher interface {
	Publish(e domain.Event)
}

// Store owns the authenticated identity and is the only writer of the
// persisted user and theme keys.
type Store struct {
	mu       sync.RWMutex
	current  Session
	theme    Theme
	storage  storage.Store
	exchange Exchanger
	notifier domain.Notifier
	events   EventPublisher
	logger   *slog.Logger
}

// NewStore creates a session store in the Anonymous state. notifier and
// events may be nil.
func NewStore(st storage.Store, exchange Exchanger, notifier domain.Notifier, events EventPublisher, logger *slog.Logger) *Store {
	if notifier == nil {
		notifier = domain.DiscardNotifier
	}
	return &Store{
		current:  Anonymous,
		theme:    ThemeLight,
		storage:  st,
		exchange: exchange,
		notifier: notifier,
		events:   events,
		logger:   logger,
	}
}

// State returns the current session.
func (s *Store) State() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Identity returns the current identity, if authenticated.
func (s *Store) Identity() (domain.Identity, bool) {
	return s.State().Identity()
}

// RestoreFromPersistence loads the persisted identity and theme. The stored
// identity is trusted as-is; no network call is made. A malformed record is
// discarded and the session stays Anonymous.
func (s *Store) RestoreFromPersistence(ctx context.Context) (Session, error) {
	if err := s.restoreTheme(ctx); err != nil {
		return s.State(), err
	}

	raw, err := s.storage.Get(ctx, UserKey)
	if errors.Is(err, storage.ErrNotFound) {
		return s.State(), nil
	}
	if err != nil {
		return s.State(), fmt.Errorf("read persisted identity: %w", err)
	}

	var id domain.Identity
	if err := json.Unmarshal(raw, &id); err != nil || !id.Valid() {
		s.logger.Warn("discarding malformed persisted identity", "error", err)
		if err := s.storage.Delete(ctx, UserKey); err != nil {
			s.logger.Error("clear malformed identity failed", "error", err)
		}
		return s.State(), nil
	}

	next := Authenticated(id)
	s.set(next)
	s.logger.Info("session restored", "user_id", id.ID)
	return next, nil
}

func (s *Store) restoreTheme(ctx context.Context) error {
	raw, err := s.storage.Get(ctx, ThemeKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read theme: %w", err)
	}
	switch t := Theme(raw); t {
	case ThemeLight, ThemeDark:
		s.mu.Lock()
		s.theme = t
		s.mu.Unlock()
	default:
		s.logger.Warn("ignoring unknown persisted theme", "theme", string(raw))
	}
	return nil
}

// Authenticate exchanges cred for an identity. On success any previous
// identity is replaced and the new one persisted; on failure the session is
// left unchanged. There is no retry.
func (s *Store) Authenticate(ctx context.Context, cred ProviderCredential) (domain.Identity, error) {
	user, env, err := s.exchange.ExchangeIdentity(ctx, cred.Provider(), cred)
	if err != nil {
		s.logger.Warn("identity exchange failed", "provider", cred.Provider(), "error", err)
		s.notifier.Notify(domain.Notice{
			Level:   domain.NoticeError,
			Title:   "Sign-in failed",
			Message: fmt.Sprintf("Could not sign in with %s", cred.Provider()),
		})
		return domain.Identity{}, domain.ErrAuthFailed("identity exchange failed", err)
	}
	if user == nil || !user.Valid() {
		msg := "identity provider rejected the credential"
		if env != nil && env.ErrorMessage() != "" {
			msg = env.ErrorMessage()
		}
		s.logger.Warn("identity exchange rejected", "provider", cred.Provider(), "reason", msg)
		s.notifier.Notify(domain.Notice{Level: domain.NoticeError, Title: "Sign-in failed", Message: msg})
		return domain.Identity{}, domain.ErrAuthFailed(msg, nil)
	}

	s.set(Authenticated(*user))
	if err := storage.SetJSON(ctx, s.storage, UserKey, user); err != nil {
		s.logger.Error("persist identity failed", "user_id", user.ID, "error", err)
	}

	s.logger.Info("signed in", "user_id", user.ID, "provider", cred.Provider())
	s.notifier.Notify(domain.Notice{
		Level:   domain.NoticeSuccess,
		Title:   "Signed in",
		Message: fmt.Sprintf("Welcome, %s!", user.DisplayName()),
	})
	return *user, nil
}

// Logout drops the identity and clears the persisted record. Calling it while
// Anonymous only clears persistence.
func (s *Store) Logout(ctx context.Context) error {
	wasAuthenticated := s.State().IsAuthenticated()
	s.set(Anonymous)

	if err := s.storage.Delete(ctx, UserKey); err != nil {
		return fmt.Errorf("clear persisted identity: %w", err)
	}
	if wasAuthenticated {
		s.logger.Info("signed out")
		s.notifier.Notify(domain.Notice{Level: domain.NoticeInfo, Title: "Signed out"})
	}
	return nil
}

// Theme returns the current theme preference.
func (s *Store) Theme() Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// SetTheme changes and persists the theme preference.
func (s *Store) SetTheme(ctx context.Context, t Theme) error {
	if t != ThemeLight && t != ThemeDark {
		return domain.ErrValidation(fmt.Sprintf("unknown theme %q", t))
	}
	s.mu.Lock()
	s.theme = t
	s.mu.Unlock()

	if err := s.storage.Set(ctx, ThemeKey, []byte(t)); err != nil {
		return fmt.Errorf("persist theme: %w", err)
	}
	s.publish(domain.NewEvent(domain.EventThemeChanged, Topic, t))
	return nil
}

func (s *Store) set(next Session) {
	s.mu.Lock()
	s.current = next
	s.mu.Unlock()

	var data any
	if id, ok := next.Identity(); ok {
		data = id
	}
	s.publish(domain.NewEvent(domain.EventSessionChanged, Topic, data))
}

func (s *Store) publish(e domain.Event) {
	if s.events != nil {
		s.events.Publish(e)
	}
}
