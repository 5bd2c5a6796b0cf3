// Package workspace keeps the stores of every live browser session in memory.
package workspace

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/gateway"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/fjod/go_cart/storefront/internal/store"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultIdleTTL is how long an untouched workspace stays in memory. Durable session
	// state outlives it, so an evicted session rehydrates on its next request.
	DefaultIdleTTL = 30 * time.Minute

	// CleanupInterval is how often the background eviction runs
	CleanupInterval = time.Minute

	// CheckoutIdleTTL bounds how long a workspace holding an unfinished checkout outlives the
	// idle TTL. The cached order is the only anchor for resuming checkout.
	CheckoutIdleTTL = 24 * time.Hour
)

var timeNow = time.Now

type Registry struct {
	transport *gateway.Transport
	storage   storage.Store
	log       logrus.FieldLogger
	idleTTL   time.Duration

	mu         sync.RWMutex
	workspaces map[string]*Workspace
	creating   singleflight.Group

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

func NewRegistry(transport *gateway.Transport, st storage.Store, idleTTL time.Duration, log logrus.FieldLogger) *Registry {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	r := &Registry{
		transport:   transport,
		storage:     st,
		log:         log,
		idleTTL:     idleTTL,
		workspaces:  make(map[string]*Workspace),
		stopCleanup: make(chan struct{}),
	}

	r.wg.Add(1)
	go r.cleanupLoop()

	return r
}

// Get returns the workspace for a session id, creating and rehydrating it on first use.
// Concurrent first requests for the same id share one creation.
func (r *Registry) Get(ctx context.Context, id string) *Workspace {
	r.mu.RLock()
	ws, ok := r.workspaces[id]
	r.mu.RUnlock()
	if ok {
		ws.touch(timeNow())
		return ws
	}

	v, _, _ := r.creating.Do(id, func() (any, error) {
		r.mu.RLock()
		existing, ok := r.workspaces[id]
		r.mu.RUnlock()
		if ok {
			return existing, nil
		}

		ws := r.build(id)
		if err := ws.Credentials.Rehydrate(context.WithoutCancel(ctx)); err != nil {
			r.log.WithField("workspace", id).WithField("error", err).Warn("rehydration failed, session starts anonymous")
		}
		if session, err := ws.Credentials.Current(); err == nil && session.User != nil {
			ws.owner = session.User.ID
		}

		r.mu.Lock()
		r.workspaces[id] = ws
		r.mu.Unlock()
		return ws, nil
	})

	ws = v.(*Workspace)
	ws.touch(timeNow())
	return ws
}

func (r *Registry) build(id string) *Workspace {
	log := r.log.WithField("workspace", id)
	client := gateway.NewClient(r.transport, r.storage, id)
	ws := &Workspace{
		ID:          id,
		Credentials: store.NewCredentialStore(client, r.storage, id, log),
		Cart:        store.NewCartStore(client, log),
		Checkout:    store.NewCheckoutStore(client, log),
		Gateway:     client,
	}
	client.OnUnauthorized(ws.HandleUnauthorized)
	return ws
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.workspaces)
}

func (r *Registry) cleanupLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.evictIdle(timeNow())
		case <-r.stopCleanup:
			return
		}
	}
}

// evictIdle drops workspaces untouched for longer than the idle TTL. A workspace with an order
// in checkout is kept until CheckoutIdleTTL.
func (r *Registry) evictIdle(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, ws := range r.workspaces {
		idle := now.Sub(ws.LastSeen())
		if idle <= r.idleTTL {
			continue
		}
		if ws.Checkout.HasCurrentOrder() && idle <= CheckoutIdleTTL {
			continue
		}
		delete(r.workspaces, id)
		evicted++
	}
	if evicted > 0 {
		r.log.WithField("evicted", evicted).Debug("evicted idle workspaces")
	}
	return evicted
}

// Close stops the background eviction and waits for it to finish
func (r *Registry) Close() error {
	close(r.stopCleanup)
	r.wg.Wait()
	return nil
}
