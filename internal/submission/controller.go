package submission

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/wintercup/portal/internal/cache"
	"github.com/wintercup/portal/internal/domain"
	"github.com/wintercup/portal/internal/gateway"
)

// IdentitySource gates writes and stamps ownership (session.Store).
type IdentitySource interface {
	Identity() (domain.Identity, bool)
}

// Poster performs the create call (gateway.Client).
type Poster interface {
	Post(ctx context.Context, endpoint string, body any) (*gateway.Envelope, error)
}

// Refresher is the collection that owns the created records (cache.Cache).
type Refresher interface {
	RefreshAfter(ctx context.Context, result cache.Outcome) error
}

// EventPublisher receives submission outcomes.
type EventPublisher interface {
	Publish(e domain.Event)
}

// Config wires a Controller. Refresher, Notifier and Events may be nil.
type Config[D Draft] struct {
	Topic     string
	Endpoint  string
	Default   func() D
	Session   IdentitySource
	Poster    Poster
	Refresher Refresher
	Notifier  domain.Notifier
	Events    EventPublisher
	Logger    *slog.Logger
}

// Controller validates and submits one kind of draft. Concurrent Submit
// calls are not serialized: a double click sends two requests.
type Controller[D Draft] struct {
	cfg Config[D]

	mu    sync.Mutex
	draft D
	open  bool
}

// New creates a controller holding the default draft with its surface closed.
func New[D Draft](cfg Config[D]) *Controller[D] {
	if cfg.Notifier == nil {
		cfg.Notifier = domain.DiscardNotifier
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	cfg.Logger = cfg.Logger.With("form", cfg.Topic)
	return &Controller[D]{cfg: cfg, draft: cfg.Default()}
}

// Draft returns the current draft.
func (c *Controller[D]) Draft() D {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// SetDraft replaces the draft (a form edit).
func (c *Controller[D]) SetDraft(d D) {
	c.mu.Lock()
	c.draft = d
	c.mu.Unlock()
}

// Edit applies fn to the draft in place.
func (c *Controller[D]) Edit(fn func(*D)) {
	c.mu.Lock()
	fn(&c.draft)
	c.mu.Unlock()
}

// Open shows the input surface.
func (c *Controller[D]) Open() {
	c.mu.Lock()
	c.open = true
	c.mu.Unlock()
}

// Close hides the input surface without touching the draft.
func (c *Controller[D]) Close() {
	c.mu.Lock()
	c.open = false
	c.mu.Unlock()
}

// IsOpen reports whether the input surface is shown.
func (c *Controller[D]) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// Submit checks, in order, that an identity is present and that the draft's
// required fields are filled, then posts the draft stamped with the user id.
// On success the draft resets, the surface closes and the owning collection
// reloads once. On failure the draft is kept for a retry.
func (c *Controller[D]) Submit(ctx context.Context) (*gateway.Envelope, error) {
	d := c.Draft()
	label := d.Label()

	id, ok := c.cfg.Session.Identity()
	if !ok {
		return nil, c.reject(domain.ErrAuthRequired(fmt.Sprintf("sign in to submit a %s", label)), "Sign-in required")
	}

	if err := d.Validate(); err != nil {
		return nil, c.reject(domain.ErrValidation(err.Error()), "Fill in all fields")
	}

	env, err := c.cfg.Poster.Post(ctx, c.cfg.Endpoint, d.Payload(id.ID))
	if err != nil {
		return nil, c.reject(domain.ErrSubmission(fmt.Sprintf("could not submit %s", label), err), "Error")
	}
	if !env.Success() {
		msg := env.ErrorMessage()
		if msg == "" {
			msg = fmt.Sprintf("%s was not accepted", label)
		}
		return env, c.reject(domain.ErrSubmission(msg, nil), "Error")
	}

	c.mu.Lock()
	c.draft = c.cfg.Default()
	c.open = false
	c.mu.Unlock()

	c.cfg.Logger.Info("submission accepted", "user_id", id.ID, "status", env.Status())
	c.cfg.Notifier.Notify(domain.Notice{
		Level:   domain.NoticeSuccess,
		Title:   "Submitted",
		Message: fmt.Sprintf("Your %s was submitted", label),
	})
	c.publish(domain.NewEvent(domain.EventSubmissionAccepted, c.cfg.Topic, env.Status()))

	if c.cfg.Refresher != nil {
		// Fetch failures are logged by the cache and never surfaced here.
		_ = c.cfg.Refresher.RefreshAfter(ctx, env)
	}
	return env, nil
}

func (c *Controller[D]) reject(err *domain.AppError, title string) error {
	c.cfg.Logger.Info("submission rejected", "code", err.Code, "error", err)
	c.cfg.Notifier.Notify(domain.Notice{Level: domain.NoticeError, Title: title, Message: err.Message})
	c.publish(domain.NewEvent(domain.EventSubmissionRejected, c.cfg.Topic, err.Code))
	return err
}

func (c *Controller[D]) publish(e domain.Event) {
	if c.cfg.Events != nil {
		c.cfg.Events.Publish(e)
	}
}
