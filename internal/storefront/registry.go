package storefront

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/pizzeria/internal/amount"
	"github.com/angelmondragon/pizzeria/internal/cart"
	"github.com/angelmondragon/pizzeria/internal/catalog"
	"github.com/angelmondragon/pizzeria/internal/checkout"
	pkgerrors "github.com/angelmondragon/pizzeria/pkg/errors"
	"github.com/angelmondragon/pizzeria/pkg/logger"
	"github.com/angelmondragon/pizzeria/pkg/metrics"
)

// RegistryParams configures a Registry. IdleTTL and MaxSessions are
// disabled when zero.
type RegistryParams struct {
	Source      catalog.Source
	Submitter   checkout.Submitter
	Amount      amount.Settings
	Cart        cart.Settings
	Logger      *logger.Logger
	Metrics     *metrics.Storefront
	IdleTTL     time.Duration
	MaxSessions int
}

type entry struct {
	session  *Session
	cancel   context.CancelFunc
	lastSeen time.Time
}

// Registry keeps one Session per shopper id. Each new session calls
// Source.Load once; existing sessions keep the catalog they opened with.
type Registry struct {
	params RegistryParams
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
	// sessions being opened; they count against MaxSessions
	opening int
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewRegistry(p RegistryParams) (*Registry, error) {
	if p.Source == nil {
		return nil, fmt.Errorf("catalog source required")
	}
	if p.Submitter == nil {
		return nil, fmt.Errorf("order submitter required")
	}
	if p.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		params:   p,
		now:      time.Now,
		sessions: map[string]*entry{},
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Get returns the session for id. An empty or unknown id opens a new session
// under a fresh id; the caller reads the id back from the session.
func (r *Registry) Get(ctx context.Context, id string) (*Session, error) {
	r.mu.Lock()
	if e, ok := r.sessions[id]; ok && id != "" {
		e.lastSeen = r.now()
		r.mu.Unlock()
		return e.session, nil
	}
	if r.ctx.Err() != nil {
		r.mu.Unlock()
		return nil, errSessionClosed()
	}
	if r.full() {
		r.mu.Unlock()
		r.Sweep()
		r.mu.Lock()
		if r.full() {
			r.mu.Unlock()
			return nil, pkgerrors.New(pkgerrors.CodeUnavailable, "too many storefront sessions")
		}
	}
	r.opening++
	r.mu.Unlock()

	session, err := r.open(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.opening--
	if err != nil {
		return nil, err
	}
	if r.ctx.Err() != nil {
		return nil, errSessionClosed()
	}
	loopCtx, cancel := context.WithCancel(r.ctx)
	r.sessions[session.ID()] = &entry{session: session, cancel: cancel, lastSeen: r.now()}
	go session.Run(loopCtx)

	r.params.Logger.Info(r.params.Logger.WithSessionID(ctx, session.ID()), "storefront.session_opened")
	return session, nil
}

func (r *Registry) full() bool {
	return r.params.MaxSessions > 0 && len(r.sessions)+r.opening >= r.params.MaxSessions
}

func (r *Registry) open(ctx context.Context) (*Session, error) {
	cat, err := r.params.Source.Load(ctx)
	if err != nil {
		if pkgerrors.As(err) == nil {
			err = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "catalog unavailable")
		}
		return nil, err
	}
	session, err := NewSession(Params{
		ID:        uuid.NewString(),
		Catalog:   cat,
		Submitter: r.params.Submitter,
		Amount:    r.params.Amount,
		Cart:      r.params.Cart,
		Logger:    r.params.Logger,
		Metrics:   r.params.Metrics,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "open storefront session")
	}
	return session, nil
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes sessions idle for longer than IdleTTL and returns how many
// were closed.
func (r *Registry) Sweep() int {
	if r.params.IdleTTL <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.params.IdleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()
	closed := 0
	for id, e := range r.sessions {
		if e.lastSeen.Before(cutoff) {
			e.cancel()
			delete(r.sessions, id)
			closed++
		}
	}
	return closed
}

// Start sweeps idle sessions every interval until ctx is done.
func (r *Registry) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 || r.params.IdleTTL <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.params.Logger.Info(r.params.Logger.WithField(ctx, "sessions", n), "storefront.sessions_swept")
			}
		}
	}
}

// Close stops every session loop. Later calls to Get fail.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancel()
	for id := range r.sessions {
		delete(r.sessions, id)
	}
}
